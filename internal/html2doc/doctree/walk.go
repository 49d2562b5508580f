package doctree

import (
	"strings"
	"unicode/utf8"
)

// ToString склеивает текст всех текстовых нод поддерева в порядке обхода в глубину.
func ToString(n *Node) string {
	var sb strings.Builder
	writeText(&sb, n)
	return sb.String()
}

func writeText(sb *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	if n.Type == TypeText {
		sb.WriteString(n.Text)
		return
	}
	for _, child := range n.Content {
		writeText(sb, child)
	}
}

// Walk обходит дерево в прямом порядке. Если f возвращает false, потомки ноды пропускаются.
func Walk(n *Node, f func(n *Node, depth int) bool) {
	walk(n, 0, f)
}

func walk(n *Node, depth int, f func(*Node, int) bool) {
	if n == nil || !f(n, depth) {
		return
	}
	for _, child := range n.Content {
		walk(child, depth+1, f)
	}
}

// Stats сводка по дереву документа
type Stats struct {
	Nodes    int            `json:"nodes"`
	Depth    int            `json:"depth"`
	Chars    int            `json:"chars"`
	Untyped  int            `json:"untyped"`
	ByType   map[string]int `json:"by_type"`
	MarksNum int            `json:"marks"`
}

func CollectStats(root *Node) Stats {
	st := Stats{ByType: make(map[string]int)}
	Walk(root, func(n *Node, depth int) bool {
		st.Nodes++
		st.MarksNum += len(n.Marks)
		if depth > st.Depth {
			st.Depth = depth
		}
		if n.Type == "" {
			st.Untyped++
		} else {
			st.ByType[n.Type]++
		}
		if n.Type == TypeText {
			st.Chars += utf8.RuneCountInString(n.Text)
		}
		return true
	})
	return st
}
