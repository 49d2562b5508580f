package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aisa-it/html2doc/internal/html2doc/config"
	"github.com/aisa-it/html2doc/internal/html2doc/encode"
	"github.com/aisa-it/html2doc/internal/html2doc/pipeline"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagOutputDir string
	flagFormat    string
	flagCharset   string
	flagSelect    string
	flagStrip     []string
	flagKeepAttr  []string
	flagSanitize  bool
	flagMinify    bool
	flagNFC       bool
	flagWorkers   int
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert HTML files to editor documents",
	Long: `Convert reads HTML from files (or stdin when no files are given) and writes the document tree.

Stdin and a single file without --output are written to stdout, several inputs are
written next to the source files. Flags override the config file and environment.

Examples:
  html2doc convert page.html
  cat page.html | html2doc convert --format yaml
  html2doc convert *.html -o ./out --select article --strip nav,footer --sanitize`,
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&flagOutputDir, "output", "o", "", "Output directory")
	f.StringVarP(&flagFormat, "format", "f", "json", "Output format: json, json-pretty, yaml, msgpack, text")
	f.StringVar(&flagCharset, "charset", "", "Input charset (detected from BOM and meta tags by default)")
	f.StringVar(&flagSelect, "select", "", "CSS selector of the fragment to convert")
	f.StringSliceVar(&flagStrip, "strip", nil, "CSS selectors removed before conversion")
	f.StringSliceVar(&flagKeepAttr, "keep-attr", nil, "Extra attributes copied as is (src, alt, ...)")
	f.BoolVar(&flagSanitize, "sanitize", false, "Sanitize input with UGC policy")
	f.BoolVar(&flagMinify, "minify", false, "Minify input before parsing")
	f.BoolVar(&flagNFC, "nfc", false, "Normalize text to Unicode NFC")
	f.IntVarP(&flagWorkers, "workers", "w", 0, "Parallel conversions")
}

// convertJob параметры пакетного преобразования
type convertJob struct {
	pipeline    *pipeline.Pipeline
	format      encode.Format
	contentType string
	outputDir   string
	workers     int
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := readConfig()
	applyFlags(cmd, cfg)

	format, err := encode.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipelineOptions(cfg))
	if err != nil {
		return err
	}

	job := &convertJob{
		pipeline:    p,
		format:      format,
		contentType: charsetContentType(flagCharset),
		outputDir:   flagOutputDir,
		workers:     cfg.Workers,
	}

	ctx := cmd.Context()
	if len(args) > 1 || (len(args) == 1 && job.outputDir != "") {
		return job.convertFiles(ctx, args)
	}

	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok && format == encode.Msgpack && isTerminal(f) {
		return errors.New("refusing to write msgpack to a terminal, use --output or redirect stdout")
	}
	if len(args) == 0 {
		return job.convertStream(ctx, cmd.InOrStdin(), out)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	return job.convertStream(ctx, f, out)
}

// applyFlags переносит явно заданные флаги поверх конфигурации из окружения.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("select") {
		cfg.Select = flagSelect
	}
	if flags.Changed("strip") {
		cfg.Strip = flagStrip
	}
	if flags.Changed("keep-attr") {
		cfg.KeepAttrs = flagKeepAttr
	}
	if flags.Changed("sanitize") {
		cfg.Sanitize = flagSanitize
	}
	if flags.Changed("minify") {
		cfg.MinifyInput = flagMinify
	}
	if flags.Changed("nfc") {
		cfg.NFC = flagNFC
	}
	if flags.Changed("workers") {
		cfg.Workers = flagWorkers
		// повторная нормализация ограничивает число воркеров
		if err := cfg.Normalize(); err != nil {
			slog.Warn("Normalize config", "err", err)
		}
	}
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Sanitize:    cfg.Sanitize,
		MinifyInput: cfg.MinifyInput,
		NFC:         cfg.NFC,
		Select:      cfg.Select,
		Strip:       cfg.Strip,
		KeepAttrs:   cfg.KeepAttrs,
		Logger:      slog.Default(),
	}
}

func charsetContentType(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	return "text/html; charset=" + label
}

func (j *convertJob) convertStream(ctx context.Context, r io.Reader, w io.Writer) error {
	doc, err := j.pipeline.Convert(ctx, r, j.contentType)
	if err != nil {
		return err
	}
	return encode.Write(w, doc, j.format)
}

// convertFiles преобразует файлы параллельно. Ошибка одного файла не останавливает остальные,
// все ошибки возвращаются вместе.
func (j *convertJob) convertFiles(ctx context.Context, files []string) error {
	if j.outputDir != "" {
		if err := os.MkdirAll(j.outputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	dsts, err := j.destinations(files)
	if err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		errs []error
	)

	g := new(errgroup.Group)
	g.SetLimit(max(j.workers, 1))
	for i, src := range files {
		g.Go(func() error {
			if err := j.convertFile(ctx, src, dsts[i]); err != nil {
				slog.Error("Convert file", "src", src, "err", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", src, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	if len(errs) > 0 {
		slog.Warn("Some files failed", "failed", len(errs), "total", len(files))
	}
	return errors.Join(errs...)
}

// destinations пути результатов в порядке files. Два входа с одним путем результата
// (одинаковое имя файла из разных каталогов при общем --output) считаются ошибкой.
func (j *convertJob) destinations(files []string) ([]string, error) {
	dsts := make([]string, len(files))
	seen := make(map[string]string, len(files))
	for i, src := range files {
		dst := outputPath(src, j.outputDir, j.format.Ext())
		if prev, ok := seen[dst]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, src, dst)
		}
		seen[dst] = src
		dsts[i] = dst
	}
	return dsts, nil
}

func (j *convertJob) convertFile(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	doc, err := j.pipeline.Convert(ctx, in, j.contentType)
	if err != nil {
		return err
	}

	out, err := encode.Marshal(doc, j.format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return err
	}

	slog.Info("Written", "src", src, "dst", dst, "size", humanize.Bytes(uint64(len(out))))
	return nil
}

// outputPath имя результата: исходное имя с расширением формата, в outputDir или рядом с исходным файлом.
func outputPath(src, outputDir, ext string) string {
	base := filepath.Base(src)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ext
	if outputDir == "" {
		return filepath.Join(filepath.Dir(src), name)
	}
	return filepath.Join(outputDir, name)
}
