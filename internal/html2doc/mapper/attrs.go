package mapper

import (
	"strings"

	"github.com/aisa-it/html2doc/internal/html2doc/doctree"
	"github.com/iancoleman/strcase"
	"golang.org/x/net/html"
)

const (
	dataPrefix  = "data-"
	classPrefix = "ct-"
)

// elementAttrs результат разбора атрибутов элемента
type elementAttrs struct {
	attrs    *doctree.Attrs
	marks    []doctree.Mark
	override string // тип из класса ct-*
}

func (c *Converter) readAttrs(list []html.Attribute) elementAttrs {
	res := elementAttrs{attrs: doctree.NewAttrs()}

	for _, attr := range list {
		if attr.Namespace != "" {
			continue
		}

		switch {
		case strings.HasPrefix(attr.Key, dataPrefix):
			readDataAttr(res.attrs, attr)
		case attr.Key == "class":
			if t := classType(attr.Val); t != "" {
				res.override = t
			}
		case attr.Key == "style":
			res.marks = append(res.marks, readStyle(res.attrs, attr.Val)...)
		case attr.Key == "colspan", attr.Key == "rowspan":
			res.attrs.Set(attr.Key, numberOrString(attr.Val))
		case attr.Key == "href", attr.Key == "title", attr.Key == "id":
			res.attrs.Set(attr.Key, doctree.String(attr.Val))
		default:
			if _, ok := c.keepAttrs[attr.Key]; ok {
				res.attrs.Set(attr.Key, doctree.String(attr.Val))
			}
		}
	}

	return res
}

func readDataAttr(attrs *doctree.Attrs, attr html.Attribute) {
	switch attr.Key {
	case "data-borderwidth":
		attrs.Set("borderWidth", numberOrString(attr.Val))
	case "data-colwidth":
		attrs.Set("colwidth", numberList(attr.Val))
	default:
		key := strcase.ToLowerCamel(strings.TrimPrefix(attr.Key, dataPrefix))
		if key == "" {
			return
		}
		attrs.Set(key, coerceData(attr.Val))
	}
}

// classType возвращает тип из последнего класса вида ct-some-type (some_type).
func classType(val string) string {
	var t string
	for _, class := range strings.Fields(val) {
		if !strings.HasPrefix(class, classPrefix) {
			continue
		}
		if snake := strcase.ToSnake(strings.TrimPrefix(class, classPrefix)); snake != "" {
			t = snake
		}
	}
	return t
}

// readStyle переносит CSS свойства в атрибуты, цвет текста возвращается маркой.
// Объявления без двоеточия пропускаются.
func readStyle(attrs *doctree.Attrs, val string) []doctree.Mark {
	var marks []doctree.Mark
	for _, decl := range strings.Split(val, ";") {
		prop, value, found := strings.Cut(decl, ":")
		prop = strings.TrimSpace(prop)
		if !found || prop == "" {
			continue
		}
		value = strings.TrimSpace(value)

		if strings.EqualFold(prop, "color") {
			marks = append(marks, doctree.NewColorMark(value))
			continue
		}

		key := strcase.ToLowerCamel(prop)
		if key == "" {
			continue
		}
		attrs.Set(key, doctree.String(value))
	}
	return marks
}
