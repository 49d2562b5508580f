package mapper

import (
	"regexp"
	"strconv"

	"github.com/aisa-it/html2doc/internal/html2doc/doctree"
)

// TagType соответствие HTML тега семантическому типу ноды
type TagType struct {
	Tag  string `json:"tag"`
	Type string `json:"type"`
}

// Порядок важен только для документации (cmd/typesgen)
var tagTypes = []TagType{
	{"p", doctree.TypeParagraph},
	{"h1", doctree.TypeHeading},
	{"h2", doctree.TypeHeading},
	{"h3", doctree.TypeHeading},
	{"h4", doctree.TypeHeading},
	{"h5", doctree.TypeHeading},
	{"h6", doctree.TypeHeading},
	{"ul", doctree.TypeBulletList},
	{"ol", doctree.TypeOrderedList},
	{"li", doctree.TypeListItem},
	{"blockquote", doctree.TypeBlockquote},
	{"pre", doctree.TypeCodeBlock},
	{"a", doctree.TypeLink},
	{"img", doctree.TypeImage},
	{"br", doctree.TypeHardBreak},
	{"em", doctree.TypeEm},
	{"strong", doctree.TypeStrong},
	{"code", doctree.TypeCode},
	{"del", doctree.TypeStrike},
	{"hr", doctree.TypeHorizontalRule},
	{"table", doctree.TypeTable},
	{"thead", doctree.TypeTableBody},
	{"tbody", doctree.TypeTableBody},
	{"tfoot", doctree.TypeTableBody},
	{"tr", doctree.TypeTableRow},
	{"th", doctree.TypeTableHeader},
	{"td", doctree.TypeTableCell},
	{"div", doctree.TypeParagraph},
	{"span", doctree.TypeSpan},
	{"b", doctree.TypeStrong},
	{"i", doctree.TypeEm},
	{"u", doctree.TypeUnderline},
	{"s", doctree.TypeStrike},
	{"sub", doctree.TypeSubscript},
	{"sup", doctree.TypeSuperscript},
	{"font", doctree.TypeText},
	{"center", doctree.TypeParagraph},
}

var tagIndex = func() map[string]string {
	m := make(map[string]string, len(tagTypes))
	for _, tt := range tagTypes {
		m[tt.Tag] = tt.Type
	}
	return m
}()

var headingReg = regexp.MustCompile(`^h(\d+)$`)

// TypeFor возвращает семантический тип для тега или пустую строку для неизвестного тега.
func TypeFor(tag string) string {
	return tagIndex[tag]
}

// Types возвращает копию таблицы соответствия тегов и типов.
func Types() []TagType {
	res := make([]TagType, len(tagTypes))
	copy(res, tagTypes)
	return res
}

func headingLevel(tag string) (int, bool) {
	m := headingReg.FindStringSubmatch(tag)
	if m == nil {
		return 0, false
	}
	level, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return level, true
}

// Типы, которые не могут содержать инлайн ноды напрямую
func needsBlockContent(t string) bool {
	switch t {
	case doctree.TypeTableCell, doctree.TypeTableHeader, doctree.TypeCollapseContent, doctree.TypeListItem:
		return true
	}
	return false
}

// Дети, которые допустимы в блочных контейнерах без обертки в параграф
func isBlockChild(t string) bool {
	switch t {
	case doctree.TypeParagraph, doctree.TypeCollapse, doctree.TypeTable:
		return true
	}
	return false
}

func isTableCell(t string) bool {
	return t == doctree.TypeTableCell || t == doctree.TypeTableHeader
}

// span и алиасы текста (font) сворачиваются в текстовую ноду
func collapsesToText(t string) bool {
	return t == doctree.TypeSpan || t == doctree.TypeText
}
