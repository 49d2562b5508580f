package doctree

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

func sampleDoc() *Node {
	cellAttrs := NewAttrs()
	cellAttrs.Set("colspan", Number(1))
	cellAttrs.Set("rowspan", Number(1))
	cellAttrs.Set("colwidth", NumberList(0))

	text := NewText("hi")
	text.Marks = []Mark{NewColorMark("red"), {Type: MarkStrong}}

	return &Node{
		Type: TypeDoc,
		Content: []*Node{
			NewParagraph(text),
			{
				Type:    TypeTableCell,
				Attrs:   cellAttrs,
				Content: []*Node{NewParagraph()},
			},
		},
	}
}

func TestNodeMarshalJSON(t *testing.T) {
	b, err := json.Marshal(sampleDoc())
	require.NoError(t, err)
	assert.Equal(t,
		`{"type":"doc","content":[`+
			`{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"hi","marks":[{"type":"color","attrs":{"color":"red"}},{"type":"strong"}]}]},`+
			`{"type":"table_cell","attrs":{"colspan":1,"rowspan":1,"colwidth":[0]},"content":[{"type":"paragraph","attrs":{},"content":[]}]}`+
			`]}`,
		string(b))
}

func TestNodeMarshalJSONOmitted(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"nil content", &Node{Type: TypeParagraph, Attrs: NewAttrs()}, `{"type":"paragraph","attrs":{}}`},
		{"empty content", &Node{Type: TypeParagraph, Content: []*Node{}}, `{"type":"paragraph","content":[]}`},
		{"untyped", &Node{Attrs: NewAttrs()}, `{"attrs":{}}`},
		{"empty text", NewText(""), `{"type":"text","text":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestToString(t *testing.T) {
	doc := sampleDoc()
	doc.Content = append(doc.Content, NewParagraph(NewText(" a "), &Node{Type: TypeHardBreak}, NewText("b")))

	assert.Equal(t, "hi a b", ToString(doc))
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "", ToString(NewParagraph()))
}

func TestNonFiniteNumbers(t *testing.T) {
	attrs := NewAttrs()
	attrs.Set("nan", Number(math.NaN()))
	attrs.Set("inf", Number(math.Inf(1)))
	attrs.Set("list", NumberList(1, math.Inf(-1)))

	b, err := json.Marshal(attrs)
	require.NoError(t, err)
	assert.Equal(t, `{"nan":null,"inf":null,"list":[1,null]}`, string(b))
}

func TestNodeMarshalYAML(t *testing.T) {
	b, err := yaml.Marshal(sampleDoc())
	require.NoError(t, err)

	out := string(b)
	assert.True(t, strings.HasPrefix(out, "type: doc\n"), out)
	assert.Contains(t, out, "colwidth: [0]")
	assert.Contains(t, out, "colspan: 1")
	assert.Contains(t, out, "color: red")

	var generic map[string]any
	require.NoError(t, yaml.Unmarshal(b, &generic))
	assert.Len(t, generic["content"], 2)
}

func TestNodeEncodeMsgpack(t *testing.T) {
	b, err := msgpack.Marshal(sampleDoc())
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, msgpack.Unmarshal(b, &generic))
	assert.Equal(t, "doc", generic["type"])

	content, ok := generic["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 2)

	cell := content[1].(map[string]any)
	attrs := cell["attrs"].(map[string]any)
	assert.EqualValues(t, 1, attrs["colspan"])
	assert.Len(t, attrs["colwidth"], 1)
}

func TestCollectStats(t *testing.T) {
	st := CollectStats(sampleDoc())
	assert.Equal(t, 5, st.Nodes)
	assert.Equal(t, 2, st.Depth)
	assert.Equal(t, 2, st.Chars)
	assert.Equal(t, 2, st.MarksNum)
	assert.Equal(t, 2, st.ByType[TypeParagraph])
	assert.Zero(t, st.Untyped)
}

func TestWalkSkipsSubtree(t *testing.T) {
	var seen []string
	Walk(sampleDoc(), func(n *Node, _ int) bool {
		seen = append(seen, n.Type)
		return n.Type != TypeTableCell
	})
	assert.Equal(t, []string{TypeDoc, TypeParagraph, TypeText, TypeTableCell}, seen)
}
