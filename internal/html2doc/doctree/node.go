package doctree

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Node нода документа.
//
// Content == nil означает отсутствие содержимого (ключ не сериализуется),
// непустой срез нулевой длины сериализуется как [].
// Text заполняется только у нод типа text и взаимоисключающ с Content.
type Node struct {
	Type    string
	Attrs   *Attrs
	Content []*Node
	Text    string
	Marks   []Mark
}

// Mark марка форматирования (strong, color и т.д.).
type Mark struct {
	Type  string
	Attrs *Attrs
}

func NewText(text string) *Node {
	return &Node{Type: TypeText, Text: text}
}

// NewParagraph создает параграф с пустыми атрибутами. Без детей содержимое сериализуется как [].
func NewParagraph(children ...*Node) *Node {
	content := make([]*Node, 0, len(children))
	content = append(content, children...)
	return &Node{Type: TypeParagraph, Attrs: NewAttrs(), Content: content}
}

func NewColorMark(color string) Mark {
	attrs := NewAttrs()
	attrs.Set("color", String(color))
	return Mark{Type: MarkColor, Attrs: attrs}
}

func (n *Node) hasText() bool {
	return n.Text != "" || (n.Type == TypeText && n.Content == nil)
}

// MarshalJSON пишет ключи в порядке type, attrs, content, text, marks.
// Пустой type (неизвестный тег) не выводится.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	field := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteByte('"')
		buf.WriteString(key)
		buf.WriteString(`":`)
		buf.Write(b)
		return nil
	}

	if n.Type != "" {
		if err := field("type", n.Type); err != nil {
			return nil, err
		}
	}
	if n.Attrs != nil {
		if err := field("attrs", n.Attrs); err != nil {
			return nil, err
		}
	}
	if n.Content != nil {
		if err := field("content", n.Content); err != nil {
			return nil, err
		}
	}
	if n.hasText() {
		if err := field("text", n.Text); err != nil {
			return nil, err
		}
	}
	if len(n.Marks) > 0 {
		if err := field("marks", n.Marks); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m Mark) MarshalJSON() ([]byte, error) {
	type plain struct {
		Type  string `json:"type"`
		Attrs *Attrs `json:"attrs,omitempty"`
	}
	return json.Marshal(plain{Type: m.Type, Attrs: m.Attrs})
}

func (n *Node) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	add := func(key string, v any) error {
		var vn yaml.Node
		if err := vn.Encode(v); err != nil {
			return err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, &vn)
		return nil
	}

	if n.Type != "" {
		if err := add("type", n.Type); err != nil {
			return nil, err
		}
	}
	if n.Attrs != nil {
		if err := add("attrs", n.Attrs); err != nil {
			return nil, err
		}
	}
	if n.Content != nil {
		if err := add("content", n.Content); err != nil {
			return nil, err
		}
	}
	if n.hasText() {
		if err := add("text", n.Text); err != nil {
			return nil, err
		}
	}
	if len(n.Marks) > 0 {
		if err := add("marks", n.Marks); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (m Mark) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "type"},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Type},
	)
	if m.Attrs != nil {
		var vn yaml.Node
		if err := vn.Encode(m.Attrs); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "attrs"}, &vn)
	}
	return node, nil
}

func (n *Node) EncodeMsgpack(enc *msgpack.Encoder) error {
	fields := 0
	if n.Type != "" {
		fields++
	}
	if n.Attrs != nil {
		fields++
	}
	if n.Content != nil {
		fields++
	}
	if n.hasText() {
		fields++
	}
	if len(n.Marks) > 0 {
		fields++
	}
	if err := enc.EncodeMapLen(fields); err != nil {
		return err
	}

	if n.Type != "" {
		if err := encodeMsgpackField(enc, "type", n.Type); err != nil {
			return err
		}
	}
	if n.Attrs != nil {
		if err := encodeMsgpackField(enc, "attrs", n.Attrs); err != nil {
			return err
		}
	}
	if n.Content != nil {
		if err := enc.EncodeString("content"); err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(len(n.Content)); err != nil {
			return err
		}
		for _, child := range n.Content {
			if err := child.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
	}
	if n.hasText() {
		if err := encodeMsgpackField(enc, "text", n.Text); err != nil {
			return err
		}
	}
	if len(n.Marks) > 0 {
		if err := enc.EncodeString("marks"); err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(len(n.Marks)); err != nil {
			return err
		}
		for _, m := range n.Marks {
			if err := m.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m Mark) EncodeMsgpack(enc *msgpack.Encoder) error {
	fields := 1
	if m.Attrs != nil {
		fields++
	}
	if err := enc.EncodeMapLen(fields); err != nil {
		return err
	}
	if err := encodeMsgpackField(enc, "type", m.Type); err != nil {
		return err
	}
	if m.Attrs != nil {
		return encodeMsgpackField(enc, "attrs", m.Attrs)
	}
	return nil
}

func encodeMsgpackField(enc *msgpack.Encoder, key string, v any) error {
	if err := enc.EncodeString(key); err != nil {
		return err
	}
	return enc.Encode(v)
}
