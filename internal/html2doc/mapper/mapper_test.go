package mapper

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/aisa-it/html2doc/internal/html2doc/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convertJSON(t *testing.T, c *Converter, src string) string {
	t.Helper()
	doc, err := c.ConvertReader(strings.NewReader(src))
	require.NoError(t, err)
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(b)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "empty input",
			html: "",
			want: `{"type":"doc","content":[]}`,
		},
		{
			name: "whitespace text dropped",
			html: "<p>   \n\t </p>",
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{}}]}`,
		},
		{
			name: "comment dropped",
			html: "<p>a<!-- note --></p>",
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"a"}]}]}`,
		},
		{
			name: "empty table cell gets defaults",
			html: "<table><tr><td></td></tr></table>",
			want: `{"type":"doc","content":[{"type":"table","attrs":{},"content":[{"type":"table_row","attrs":{},"content":[
				{"type":"table_cell","attrs":{"colspan":1,"rowspan":1,"colwidth":[0]},"content":[{"type":"paragraph","attrs":{},"content":[]}]}
			]}]}]}`,
		},
		{
			name: "table body flattened",
			html: "<table><tbody><tr><td>a</td></tr></tbody></table>",
			want: `{"type":"doc","content":[{"type":"table","attrs":{},"content":[{"type":"table_row","attrs":{},"content":[
				{"type":"table_cell","attrs":{"colspan":1,"rowspan":1,"colwidth":[0]},"content":[
					{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"a"}]}
				]}
			]}]}]}`,
		},
		{
			name: "thead and tbody flattened",
			html: "<table><thead><tr><th>h</th></tr></thead><tbody><tr><td>d</td></tr></tbody></table>",
			want: `{"type":"doc","content":[{"type":"table","attrs":{},"content":[
				{"type":"table_row","attrs":{},"content":[{"type":"table_header","attrs":{"colspan":1,"rowspan":1,"colwidth":[0]},"content":[
					{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"h"}]}
				]}]},
				{"type":"table_row","attrs":{},"content":[{"type":"table_cell","attrs":{"colspan":1,"rowspan":1,"colwidth":[0]},"content":[
					{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"d"}]}
				]}]}
			]}]}`,
		},
		{
			name: "cell attributes",
			html: `<table data-borderwidth="2"><tr><td colspan="2" rowspan="x" data-colwidth="100,200">a</td></tr></table>`,
			want: `{"type":"doc","content":[{"type":"table","attrs":{"borderWidth":2},"content":[{"type":"table_row","attrs":{},"content":[
				{"type":"table_cell","attrs":{"colspan":2,"rowspan":"x","colwidth":[100,200]},"content":[
					{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"a"}]}
				]}
			]}]}]}`,
		},
		{
			name: "list item text wrapped",
			html: "<ul><li>text</li></ul>",
			want: `{"type":"doc","content":[{"type":"bullet_list","attrs":{},"content":[{"type":"list_item","attrs":{},"content":[
				{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"text"}]}
			]}]}]}`,
		},
		{
			name: "list item keeps paragraph",
			html: "<ol><li><p>a</p></li></ol>",
			want: `{"type":"doc","content":[{"type":"ordered_list","attrs":{},"content":[{"type":"list_item","attrs":{},"content":[
				{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"a"}]}
			]}]}]}`,
		},
		{
			name: "class override",
			html: `<div class="ct-collapse">x</div>`,
			want: `{"type":"doc","content":[{"type":"collapse","attrs":{},"content":[{"type":"text","text":"x"}]}]}`,
		},
		{
			name: "last class override wins and wraps content",
			html: `<div class="note ct-info-block ct-collapse-content">x</div>`,
			want: `{"type":"doc","content":[{"type":"collapse_content","attrs":{},"content":[
				{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"x"}]}
			]}]}`,
		},
		{
			name: "color as mark",
			html: `<p style="color:red">hi</p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"hi"}],
				"marks":[{"type":"color","attrs":{"color":"red"}}]}]}`,
		},
		{
			name: "style properties camel cased",
			html: `<p style="text-align: center; font-size:12px;">t</p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{"textAlign":"center","fontSize":"12px"},"content":[{"type":"text","text":"t"}]}]}`,
		},
		{
			name: "span collapsed to text with marks",
			html: `<p><span style="color:red">hi</span></p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{},"content":[
				{"type":"text","attrs":{},"text":"hi","marks":[{"type":"color","attrs":{"color":"red"}}]}
			]}]}`,
		},
		{
			name: "span text flattened without trimming",
			html: `<p><span><i>a</i> <i>b</i></span></p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{},"content":[{"type":"text","attrs":{},"text":"a b"}]}]}`,
		},
		{
			name: "empty span dropped",
			html: `<p><span></span></p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{}}]}`,
		},
		{
			name: "font collapsed to text",
			html: `<p><font color="red">hi</font></p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{},"content":[{"type":"text","attrs":{},"text":"hi"}]}]}`,
		},
		{
			name: "strong collapsed into child",
			html: `<p><strong><em>x</em></strong></p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{},"content":[
				{"type":"em","attrs":{},"content":[{"type":"text","text":"x"}],"marks":[{"type":"strong"}]}
			]}]}`,
		},
		{
			name: "strong with several children marks each",
			html: `<p><b>a<i>b</i></b></p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{},"content":[
				{"type":"text","text":"a","marks":[{"type":"strong"}]},
				{"type":"em","attrs":{},"content":[{"type":"text","text":"b"}],"marks":[{"type":"strong"}]}
			]}]}`,
		},
		{
			name: "strong keeps own color",
			html: `<p><b style="color:red">x</b></p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{},"content":[
				{"type":"text","text":"x","marks":[{"type":"color","attrs":{"color":"red"}},{"type":"strong"}]}
			]}]}`,
		},
		{
			name: "empty strong dropped",
			html: `<p>a<b></b></p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"a"}]}]}`,
		},
		{
			name: "strong inside list item",
			html: `<ul><li><b>x</b></li></ul>`,
			want: `{"type":"doc","content":[{"type":"bullet_list","attrs":{},"content":[{"type":"list_item","attrs":{},"content":[
				{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"x","marks":[{"type":"strong"}]}]}
			]}]}]}`,
		},
		{
			name: "link title from text",
			html: `<p><a href="/x">Go</a></p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{},"content":[
				{"type":"link","attrs":{"href":"/x","title":"Go"},"content":[{"type":"text","text":"Go"}]}
			]}]}`,
		},
		{
			name: "explicit link title kept",
			html: `<p><a href="/x" title="T">Go</a></p>`,
			want: `{"type":"doc","content":[{"type":"paragraph","attrs":{},"content":[
				{"type":"link","attrs":{"href":"/x","title":"T"},"content":[{"type":"text","text":"Go"}]}
			]}]}`,
		},
		{
			name: "heading level",
			html: `<h2 id="a">T</h2>`,
			want: `{"type":"doc","content":[{"type":"heading","attrs":{"id":"a","level":2},"content":[{"type":"text","text":"T"}]}]}`,
		},
		{
			name: "code block",
			html: "<pre><code>x := 1</code></pre>",
			want: `{"type":"doc","content":[{"type":"code_block","attrs":{},"content":[{"type":"code","attrs":{},"content":[{"type":"text","text":"x := 1"}]}]}]}`,
		},
		{
			name: "void elements",
			html: "<p>a<br>b</p><hr>",
			want: `{"type":"doc","content":[
				{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"a"},{"type":"hard_break","attrs":{}},{"type":"text","text":"b"}]},
				{"type":"horizontal_rule","attrs":{}}
			]}`,
		},
		{
			name: "unknown tag passed through without type",
			html: "<article>x</article>",
			want: `{"type":"doc","content":[{"attrs":{},"content":[{"type":"text","text":"x"}]}]}`,
		},
		{
			name: "ignored attributes",
			html: `<img src="a.png" alt="x" width="10">`,
			want: `{"type":"doc","content":[{"type":"image","attrs":{}}]}`,
		},
	}

	c := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, convertJSON(t, c, tt.html))
		})
	}
}

func TestConvertKeepsAttrOrder(t *testing.T) {
	got := convertJSON(t, New(Options{}), `<p data-b="1" id="x" style="width:10px">t</p>`)
	assert.Equal(t,
		`{"type":"doc","content":[{"type":"paragraph","attrs":{"b":1,"id":"x","width":"10px"},"content":[{"type":"text","text":"t"}]}]}`,
		got)
}

func TestConvertKeepAttrs(t *testing.T) {
	c := New(Options{KeepAttrs: []string{" SRC ", "alt", ""}})
	got := convertJSON(t, c, `<img src="a.png" alt="x" width="10">`)
	assert.JSONEq(t, `{"type":"doc","content":[{"type":"image","attrs":{"src":"a.png","alt":"x"}}]}`, got)
}

func TestDataAttrs(t *testing.T) {
	doc, err := ConvertString(`<div data-checked="true" data-off="false" data-count="42" data-ratio="1.5"
		data-name=" foo " data-empty="" data-null="null" data-undef="undefined" data-blank="   "
		data-hex="0x1F" data-icon-color="red" data-inf="-Infinity"></div>`)
	require.NoError(t, err)
	require.Len(t, doc.Content, 1)

	attrs := doc.Content[0].Attrs
	assert.Equal(t, []string{"checked", "off", "count", "ratio", "name", "empty", "null", "undef", "blank", "hex", "iconColor", "inf"}, attrs.Keys())

	want := map[string]any{
		"checked":   true,
		"off":       false,
		"count":     float64(42),
		"ratio":     1.5,
		"name":      "foo",
		"empty":     true,
		"null":      true,
		"undef":     true,
		"blank":     true,
		"hex":       float64(31),
		"iconColor": "red",
	}
	for k, v := range want {
		got, ok := attrs.Get(k)
		require.True(t, ok, k)
		assert.Equal(t, v, got.Interface(), k)
	}

	inf, _ := attrs.Get("inf")
	f, ok := inf.Num()
	require.True(t, ok)
	assert.True(t, f < 0 && f*2 == f)
}

func TestConvertStringTopLevelTableParts(t *testing.T) {
	cell := func(content string) string {
		return `{"type":"table_cell","attrs":{"colspan":1,"rowspan":1,"colwidth":[0]},"content":[{"type":"paragraph","attrs":{},"content":[` + content + `]}]}`
	}
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "cell",
			html: "<td></td>",
			want: `{"type":"doc","content":[` + cell("") + `]}`,
		},
		{
			name: "header cell",
			html: "<th>h</th>",
			want: `{"type":"doc","content":[{"type":"table_header","attrs":{"colspan":1,"rowspan":1,"colwidth":[0]},"content":[
				{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"h"}]}
			]}]}`,
		},
		{
			name: "row",
			html: "<tr><td>a</td></tr>",
			want: `{"type":"doc","content":[{"type":"table_row","attrs":{},"content":[` + cell(`{"type":"text","text":"a"}`) + `]}]}`,
		},
		{
			name: "body spliced into doc",
			html: "<tbody><tr><td>a</td></tr></tbody>",
			want: `{"type":"doc","content":[{"type":"table_row","attrs":{},"content":[` + cell(`{"type":"text","text":"a"}`) + `]}]}`,
		},
		{
			name: "flow content unaffected",
			html: "<p>x</p><li>y</li>",
			want: `{"type":"doc","content":[
				{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"x"}]},
				{"type":"list_item","attrs":{},"content":[{"type":"paragraph","attrs":{},"content":[{"type":"text","text":"y"}]}]}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ConvertString(tt.html)
			require.NoError(t, err)
			b, err := json.Marshal(doc)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestConvertIdempotent(t *testing.T) {
	c := New(Options{})
	for _, tt := range Types() {
		src := "<" + tt.Tag + ` class="x" data-a="1">text</` + tt.Tag + ">"
		assert.Equal(t, convertJSON(t, c, src), convertJSON(t, c, src), tt.Tag)
	}
}

func TestConvertConcurrent(t *testing.T) {
	const src = `<table><tr><td><b>a</b> <span style="color:blue">b</span></td></tr></table><ul><li>c</li></ul>`
	c := New(Options{})
	want := convertJSON(t, c, src)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := c.ConvertReader(strings.NewReader(src))
			if err != nil {
				return
			}
			b, _ := json.Marshal(doc)
			results[i] = string(b)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestConvertNonDocumentRoot(t *testing.T) {
	root, err := ParseFragment(strings.NewReader("<p>x</p>"))
	require.NoError(t, err)

	doc := Convert(root.FirstChild)
	assert.Equal(t, doctree.TypeDoc, doc.Type)
	require.Len(t, doc.Content, 1)
	assert.Equal(t, doctree.TypeParagraph, doc.Content[0].Type)

	assert.Empty(t, Convert(nil).Content)
}

func TestInvariants(t *testing.T) {
	const src = `<div>intro <span> </span><b>bold</b></div>
		<table><tbody><tr><th>h</th><td><ul><li></li><li>x<p>y</p></li></ul></td></tr></tbody></table>
		<p><a href="#">link</a><font>f</font></p>`

	doc, err := ConvertString(src)
	require.NoError(t, err)

	doctree.Walk(doc, func(n *doctree.Node, _ int) bool {
		assert.NotEqual(t, doctree.TypeTableBody, n.Type)
		assert.NotEqual(t, doctree.TypeStrong, n.Type)
		assert.NotEqual(t, doctree.TypeSpan, n.Type)
		assert.False(t, n.Text != "" && n.Content != nil, "text and content on %s", n.Type)

		if isTableCell(n.Type) {
			for _, key := range []string{"colspan", "rowspan", "colwidth"} {
				assert.True(t, n.Attrs.Has(key), key)
			}
		}
		if needsBlockContent(n.Type) {
			assert.NotEmpty(t, n.Content)
			for _, child := range n.Content {
				assert.True(t, isBlockChild(child.Type), "%s inside %s", child.Type, n.Type)
			}
		}
		return true
	})
}
