// Package extract вырезает из HTML страницы нужный фрагмент перед преобразованием.
//
// Сначала удаляются ноды по селекторам Strip, затем остается первая нода, подходящая под Select.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var ErrNoMatch = errors.New("selector matched nothing")

// Extractor хранит скомпилированные селекторы и может использоваться конкурентно.
type Extractor struct {
	selectRaw string
	sel       cascadia.Selector
	strip     []cascadia.Selector
}

// New компилирует селекторы. Пустой selector оставляет все содержимое <body>.
func New(selector string, strip []string) (*Extractor, error) {
	e := &Extractor{selectRaw: strings.TrimSpace(selector)}

	if e.selectRaw != "" {
		m, err := cascadia.Compile(e.selectRaw)
		if err != nil {
			return nil, fmt.Errorf("select %q: %w", e.selectRaw, err)
		}
		e.sel = m
	}

	for _, s := range strip {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		m, err := cascadia.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("strip %q: %w", s, err)
		}
		e.strip = append(e.strip, m)
	}
	return e, nil
}

// Empty сообщает, что экстрактор ничего не меняет.
func (e *Extractor) Empty() bool {
	return e == nil || (e.sel == nil && len(e.strip) == 0)
}

// Extract возвращает HTML фрагмент: внешний HTML первого совпадения или содержимое <body>.
// Если селектор ничего не нашел, возвращается ErrNoMatch.
func (e *Extractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, m := range e.strip {
		doc.FindMatcher(m).Remove()
	}

	if e.sel == nil {
		result, err := doc.Find("body").Html()
		if err != nil {
			return "", fmt.Errorf("serializing body: %w", err)
		}
		return result, nil
	}

	content := doc.FindMatcher(e.sel)
	if content.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoMatch, e.selectRaw)
	}

	result, err := goquery.OuterHtml(content.First())
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}
	return result, nil
}
