// Пакет pipeline собирает полный путь преобразования HTML в документ:
// декодирование кодировки, нормализация разметки, очистка, выделение фрагмента, разбор, преобразование и NFC нормализация текста.
//
// Необязательные этапы включаются в Options. Pipeline не хранит состояния между вызовами и безопасен для конкурентного использования.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/aisa-it/html2doc/internal/html2doc/doctree"
	"github.com/aisa-it/html2doc/internal/html2doc/extract"
	"github.com/aisa-it/html2doc/internal/html2doc/mapper"
	"github.com/aisa-it/html2doc/internal/html2doc/sanitize"
	stack_error "github.com/aisa-it/html2doc/internal/html2doc/stack-error"
	"github.com/dustin/go-humanize"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrBadSelector        = errors.New("bad selector")
	ErrMinify             = errors.New("minify input")
	ErrUnsupportedCharset = errors.New("unsupported charset")
	ErrNoMatch            = extract.ErrNoMatch
)

var minifier *minify.M = minify.New()

func init() {
	minifier.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
}

type Options struct {
	Sanitize    bool
	MinifyInput bool
	NFC         bool
	Select      string
	Strip       []string
	KeepAttrs   []string

	Logger *slog.Logger
}

type Pipeline struct {
	opts      Options
	log       *slog.Logger
	extractor *extract.Extractor
	converter *mapper.Converter
}

// New проверяет селекторы и готовит преобразователь. Некорректный селектор возвращает ErrBadSelector.
func New(opts Options) (*Pipeline, error) {
	p := &Pipeline{opts: opts, log: opts.Logger}
	if p.log == nil {
		p.log = slog.Default()
	}

	ex, err := extract.New(opts.Select, opts.Strip)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSelector, err)
	}
	if !ex.Empty() {
		p.extractor = ex
	}

	p.converter = mapper.New(mapper.Options{Logger: p.log, KeepAttrs: opts.KeepAttrs})
	return p, nil
}

func (p *Pipeline) Options() Options {
	return p.opts
}

// Decode читает HTML и перекодирует его в UTF-8. Кодировка берется из Content-Type,
// при ее отсутствии определяется по BOM и meta тегам.
func Decode(r io.Reader, contentType string) (string, error) {
	var label string
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			label = strings.TrimSpace(params["charset"])
		}
	}

	var reader io.Reader
	if label != "" {
		if enc, _ := charset.Lookup(label); enc == nil {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedCharset, label)
		}
		var err error
		reader, err = charset.NewReaderLabel(label, r)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnsupportedCharset, err)
		}
	} else {
		var err error
		reader, err = charset.NewReader(r, contentType)
		if err != nil {
			return "", fmt.Errorf("detect charset: %w", err)
		}
	}

	b, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(b), nil
}

// Convert декодирует вход и преобразует его.
func (p *Pipeline) Convert(ctx context.Context, r io.Reader, contentType string) (*doctree.Node, error) {
	src, err := Decode(r, contentType)
	if err != nil {
		return nil, err
	}
	return p.ConvertString(ctx, src)
}

// Этапы преобразования для контекста ошибок и метрик
const (
	StageMinify   = "minify"
	StageSanitize = "sanitize"
	StageExtract  = "extract"
	StageParse    = "parse"
)

// ConvertString выполняет этапы в порядке: minify, sanitize, extract, разбор, преобразование, NFC.
// Ошибка этапа оборачивается в stack_error.TrackerError с ключом stage.
func (p *Pipeline) ConvertString(ctx context.Context, src string) (doc *doctree.Node, err error) {
	start := time.Now()
	inputBytes.Add(float64(len(src)))
	defer func() {
		if err != nil {
			conversions.WithLabelValues("error").Inc()
			return
		}
		conversions.WithLabelValues("ok").Inc()
	}()

	if p.opts.MinifyInput {
		if err := ctx.Err(); err != nil {
			return nil, stageError(StageMinify, err)
		}
		if src, err = minifier.String("text/html", src); err != nil {
			return nil, stageError(StageMinify, fmt.Errorf("%w: %w", ErrMinify, err))
		}
	}

	if p.opts.Sanitize {
		if err := ctx.Err(); err != nil {
			return nil, stageError(StageSanitize, err)
		}
		src = sanitize.HTML(src)
	}

	if p.extractor != nil {
		if err := ctx.Err(); err != nil {
			return nil, stageError(StageExtract, err)
		}
		if src, err = p.extractor.Extract(src); err != nil {
			return nil, stageError(StageExtract, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, stageError(StageParse, err)
	}
	doc, err = p.converter.ConvertReader(strings.NewReader(src))
	if err != nil {
		return nil, stageError(StageParse, fmt.Errorf("parse html: %w", err))
	}

	if p.opts.NFC {
		normalize(doc)
	}

	st := doctree.CollectStats(doc)
	convertedNodes.Observe(float64(st.Nodes))
	p.log.Debug("Document converted",
		"input", humanize.Bytes(uint64(len(src))),
		"nodes", st.Nodes,
		"depth", st.Depth,
		"untyped", st.Untyped,
		"took", time.Since(start),
	)
	return doc, nil
}

func stageError(stage string, err error) error {
	stageErrors.WithLabelValues(stage).Inc()
	return stack_error.TrackErrorStack(err).AddContext("stage", stage)
}

// normalize приводит текст и строковые атрибуты к NFC
func normalize(doc *doctree.Node) {
	doctree.Walk(doc, func(n *doctree.Node, _ int) bool {
		if n.Text != "" {
			n.Text = norm.NFC.String(n.Text)
		}
		normalizeAttrs(n.Attrs)
		for _, m := range n.Marks {
			normalizeAttrs(m.Attrs)
		}
		return true
	})
}

func normalizeAttrs(attrs *doctree.Attrs) {
	for _, key := range attrs.Keys() {
		v, _ := attrs.Get(key)
		if s, ok := v.Str(); ok && !norm.NFC.IsNormalString(s) {
			attrs.Set(key, doctree.String(norm.NFC.String(s)))
		}
	}
}
