// Пакет mapper преобразует HTML дерево (golang.org/x/net/html) в дерево документа редактора (doctree).
//
// Преобразование выполняется за один рекурсивный проход: тип ноды определяется по тегу или классу ct-*,
// атрибуты приводятся к типам, цвет из style выносится в марку, после чего структура ремонтируется
// (обертка инлайн нод в параграфы, раскрытие tbody, значения по умолчанию для ячеек и ссылок, свертка strong и span).
//
// Основные возможности:
//   - Convert для корня документа или фрагмента.
//   - ConvertString для разбора строки как фрагмента внутри <body>.
//   - Converter с настройками (логгер, дополнительные сохраняемые атрибуты).
package mapper

import (
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/aisa-it/html2doc/internal/html2doc/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options настройки преобразования
type Options struct {
	// Logger для отладочных сообщений, по умолчанию slog.Default()
	Logger *slog.Logger

	// KeepAttrs атрибуты, копируемые в attrs как есть в дополнение к href, title и id (например src, alt)
	KeepAttrs []string
}

// Converter не хранит состояния между вызовами и безопасен для конкурентного использования.
type Converter struct {
	log       *slog.Logger
	keepAttrs map[string]struct{}
}

var defaultConverter = New(Options{})

func New(opts Options) *Converter {
	c := &Converter{
		log:       opts.Logger,
		keepAttrs: make(map[string]struct{}, len(opts.KeepAttrs)),
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	for _, a := range opts.KeepAttrs {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			c.keepAttrs[a] = struct{}{}
		}
	}
	return c
}

// Convert преобразует дерево с настройками по умолчанию.
func Convert(root *html.Node) *doctree.Node {
	return defaultConverter.Convert(root)
}

// ConvertString разбирает строку как HTML фрагмент и преобразует его с настройками по умолчанию.
func ConvertString(markup string) (*doctree.Node, error) {
	return defaultConverter.ConvertReader(strings.NewReader(markup))
}

// ParseFragment разбирает HTML как содержимое <template> и возвращает корень-документ с разобранными нодами.
// В этом контексте строки и ячейки таблиц верхнего уровня (<td>, <tr>, <tbody>) не отбрасываются.
func ParseFragment(r io.Reader) (*html.Node, error) {
	tmpl := &html.Node{Type: html.ElementNode, Data: "template", DataAtom: atom.Template}
	nodes, err := html.ParseFragment(r, tmpl)
	if err != nil {
		return nil, err
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		root.AppendChild(n)
	}
	return root, nil
}

func (c *Converter) ConvertReader(r io.Reader) (*doctree.Node, error) {
	root, err := ParseFragment(r)
	if err != nil {
		return nil, err
	}
	return c.Convert(root), nil
}

// Convert преобразует корень документа в ноду doc. Любая другая нода оборачивается в doc.
func (c *Converter) Convert(root *html.Node) *doctree.Node {
	doc := &doctree.Node{Type: doctree.TypeDoc, Content: []*doctree.Node{}}
	if root == nil {
		return doc
	}
	if root.Type == html.DocumentNode {
		doc.Content = append(doc.Content, spliceTableBodies(c.mapChildren(root))...)
	} else {
		doc.Content = append(doc.Content, spliceTableBodies(c.mapNode(root))...)
	}
	return doc
}

// mapNode возвращает ноль нод (нода отброшена), одну или несколько (раскрытый strong).
func (c *Converter) mapNode(n *html.Node) []*doctree.Node {
	switch n.Type {
	case html.DocumentNode:
		return []*doctree.Node{{
			Type:    doctree.TypeDoc,
			Content: append([]*doctree.Node{}, c.mapChildren(n)...),
		}}
	case html.TextNode:
		if isBlank(n.Data) {
			return nil
		}
		return []*doctree.Node{doctree.NewText(n.Data)}
	case html.ElementNode:
		return c.mapElement(n)
	default:
		// комментарии, doctype
		return nil
	}
}

func (c *Converter) mapChildren(n *html.Node) []*doctree.Node {
	var res []*doctree.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		res = append(res, c.mapNode(child)...)
	}
	return res
}

func (c *Converter) mapElement(n *html.Node) []*doctree.Node {
	ea := c.readAttrs(n.Attr)

	if level, ok := headingLevel(n.Data); ok {
		ea.attrs.Set("level", doctree.Number(float64(level)))
	}

	nodeType := ea.override
	if nodeType == "" {
		nodeType = TypeFor(n.Data)
	}
	if nodeType == "" {
		c.log.Debug("Unknown node kind", "tag", n.Data)
	}

	node := &doctree.Node{Type: nodeType, Attrs: ea.attrs}
	if len(ea.marks) > 0 {
		node.Marks = ea.marks
	}

	if collapsesToText(nodeType) {
		text := flattenText(n)
		if text == "" {
			return nil
		}
		node.Type = doctree.TypeText
		node.Text = text
		return []*doctree.Node{node}
	}

	node.Content = spliceTableBodies(c.mapChildren(n))

	switch {
	case needsBlockContent(nodeType):
		node.Content = wrapInline(node.Content)
	case nodeType == doctree.TypeLink:
		defaultLinkTitle(node)
	}

	if isTableCell(nodeType) {
		defaultCellAttrs(node.Attrs)
	}

	if nodeType == doctree.TypeStrong {
		return c.collapseStrong(node)
	}

	return []*doctree.Node{node}
}

// flattenText собирает текст всех потомков без удаления пробелов.
func flattenText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			f(child)
		}
	}
	f(n)
	return sb.String()
}

// spliceTableBodies заменяет table_body на его содержимое (на один уровень).
// Пустой результат возвращается как nil.
func spliceTableBodies(children []*doctree.Node) []*doctree.Node {
	if len(children) == 0 {
		return nil
	}
	res := make([]*doctree.Node, 0, len(children))
	for _, child := range children {
		if child.Type == doctree.TypeTableBody {
			res = append(res, child.Content...)
			continue
		}
		res = append(res, child)
	}
	if len(res) == 0 {
		return nil
	}
	return res
}

// wrapInline оборачивает в параграф всех детей, кроме paragraph, collapse и table.
// Пустой контейнер получает один пустой параграф.
func wrapInline(children []*doctree.Node) []*doctree.Node {
	if len(children) == 0 {
		return []*doctree.Node{doctree.NewParagraph()}
	}
	res := make([]*doctree.Node, len(children))
	for i, child := range children {
		if isBlockChild(child.Type) {
			res[i] = child
		} else {
			res[i] = doctree.NewParagraph(child)
		}
	}
	return res
}

func defaultLinkTitle(node *doctree.Node) {
	if title, ok := node.Attrs.Get("title"); ok {
		if s, isStr := title.Str(); !isStr || s != "" {
			return
		}
	}
	if len(node.Content) == 0 || node.Content[0].Text == "" {
		return
	}
	node.Attrs.Set("title", doctree.String(node.Content[0].Text))
}

func defaultCellAttrs(attrs *doctree.Attrs) {
	if !attrs.Has("colspan") {
		attrs.Set("colspan", doctree.Number(1))
	}
	if !attrs.Has("rowspan") {
		attrs.Set("rowspan", doctree.Number(1))
	}
	if !attrs.Has("colwidth") {
		attrs.Set("colwidth", doctree.NumberList(0))
	}
}

// collapseStrong убирает обертку strong: каждый ребенок получает марки обертки и марку strong.
// Пустой strong отбрасывается.
func (c *Converter) collapseStrong(node *doctree.Node) []*doctree.Node {
	if len(node.Content) == 0 {
		c.log.Debug("Drop empty strong")
		return nil
	}

	res := make([]*doctree.Node, len(node.Content))
	for i, child := range node.Content {
		marked := *child
		marked.Marks = slices.Concat(child.Marks, node.Marks, []doctree.Mark{{Type: doctree.MarkStrong}})
		res[i] = &marked
	}
	return res
}
