package markup_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/razortag/pkg/markup"
)

func TestParse(t *testing.T) {
	src := `<div><Counter Value="1" @bind-Value:event="oninput" disabled /></div><input type=text><p title="a &amp; b" class="">x</p>`

	doc, err := markup.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Tags, 4)
	assert.Empty(t, doc.Prefix)

	div, counter, input, p := doc.Tags[0], doc.Tags[1], doc.Tags[2], doc.Tags[3]

	assert.Equal(t, "div", div.Name)
	assert.Empty(t, div.ParentName)
	assert.Equal(t, 0, div.Offset)

	assert.Equal(t, "Counter", counter.Name)
	assert.Equal(t, "div", counter.ParentName)
	assert.True(t, counter.SelfClosing)
	assert.Equal(t, strings.Index(src, "<Counter"), counter.Offset)
	assert.Equal(t, []markup.Attribute{
		{Name: "Value", Value: "1", HasValue: true},
		{Name: "@bind-Value:event", Value: "oninput", HasValue: true},
		{Name: "disabled"},
	}, counter.Attributes)

	assert.Equal(t, "input", input.Name)
	assert.Empty(t, input.ParentName)
	assert.False(t, input.SelfClosing)
	assert.Equal(t, []markup.Attribute{{Name: "type", Value: "text", HasValue: true}}, input.Attributes)

	assert.Equal(t, "p", p.Name)
	assert.Empty(t, p.ParentName, "void input is never an open parent")
	assert.Equal(t, []markup.Attribute{
		{Name: "title", Value: "a & b", HasValue: true},
		{Name: "class", Value: "", HasValue: true},
	}, p.Attributes)
}

func TestParse_Parents(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		parents map[string]string
	}{
		{
			name: "nested components",
			src:  `<Grid><ChildContent><span>x</span></ChildContent><Footer /></Grid>`,
			parents: map[string]string{
				"Grid":         "",
				"ChildContent": "Grid",
				"span":         "ChildContent",
				"Footer":       "Grid",
			},
		},
		{
			name: "void and self closing siblings",
			src:  `<form><br><input name="a"/><label>l</label></form>`,
			parents: map[string]string{
				"form":  "",
				"br":    "form",
				"input": "form",
				"label": "form",
			},
		},
		{
			name: "end tag matched case insensitively",
			src:  `<Outer><Inner></inner><Sibling></Sibling></OUTER><after></after>`,
			parents: map[string]string{
				"Outer":   "",
				"Inner":   "Outer",
				"Sibling": "Outer",
				"after":   "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := markup.Parse([]byte(tt.src))
			require.NoError(t, err)
			require.Len(t, doc.Tags, len(tt.parents))

			got := map[string]string{}
			for _, tag := range doc.Tags {
				got[tag.Name] = tag.ParentName
			}
			assert.Equal(t, tt.parents, got)
		})
	}
}

func TestParse_Prefix(t *testing.T) {
	src := "@tagHelperPrefix \"th:\"\n<th:highlight color=\"red\"></th:highlight>"

	doc, err := markup.Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "th:", doc.Prefix)
	require.Len(t, doc.Tags, 1)
	assert.Equal(t, "th:highlight", doc.Tags[0].Name)
	assert.Equal(t, strings.Index(src, "<th:"), doc.Tags[0].Offset)
}

func TestTag_Attribute(t *testing.T) {
	tag := markup.Tag{
		Name: "input",
		Attributes: []markup.Attribute{
			{Name: "@bind", Value: "x", HasValue: true},
			{Name: "Type", Value: "checkbox", HasValue: true},
		},
	}

	a, ok := tag.Attribute("type")
	require.True(t, ok)
	assert.Equal(t, "checkbox", a.Value)
	assert.False(t, a.IsDirective())

	a, ok = tag.Attribute("@bind")
	require.True(t, ok)
	assert.True(t, a.IsDirective())

	_, ok = tag.Attribute("value")
	assert.False(t, ok)
}
