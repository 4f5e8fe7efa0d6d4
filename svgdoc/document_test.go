package svgdoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" encoding="utf-8"?>
<!-- Generator: Illustrator -->
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="24px" height="24px" xml:space="preserve">
  <defs><linearGradient id="g"><stop offset="0"/></linearGradient></defs>
  <path d="M0 0h10v10z" fill="url(#g)"/>
  <use xlink:href="#g"/>
  <text>a &amp; b</text>
</svg>
`

func TestDocument_RoundTrip(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, s, "<!-- Generator: Illustrator -->")
	assert.Contains(t, s, `xmlns:xlink="http://www.w3.org/1999/xlink"`)
	assert.Contains(t, s, `<use xlink:href="#g"/>`)
	assert.Contains(t, s, `xml:space="preserve"`)
	assert.Contains(t, s, `<text>a &amp; b</text>`)
	assert.NotContains(t, s, "ns0")

	// A second pass must be stable.
	doc2, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	out2, err := doc2.Bytes()
	require.NoError(t, err)
	assert.Equal(t, s, string(out2))
}

func TestDocument_ParseErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  error
	}{
		{"not svg", `<html/>`, ErrNotSVG},
		{"empty", `<?xml version="1.0"?>`, ErrEmpty},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	for _, input := range []string{
		`<svg><g></svg>`,
		`<svg>`,
		`<svg></svg><svg></svg>`,
		`<svg width="1></svg>`,
	} {
		_, err := Parse(strings.NewReader(input))
		assert.Error(t, err, input)
	}
}

func TestElement_Attributes(t *testing.T) {
	assert := assert.New(t)

	doc, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	root := doc.Root

	assert.Equal("24px", root.Get("width"))
	assert.True(root.Has("xml:space"))
	assert.False(root.Has("viewBox"))

	root.Set("viewBox", "0 0 24 24")
	root.Set("width", "48")
	assert.Equal("48", root.Get("width"))
	assert.Equal("viewBox", root.Attrs[len(root.Attrs)-1].Name.Local)

	assert.True(root.Remove("xml:space"))
	assert.False(root.Remove("xml:space"))

	use := doc.Root.Elements()[2]
	assert.Equal("use", use.Tag())
	assert.Equal("#g", use.Get("xlink:href"))
	assert.Equal("", use.Get("href"))

	assert.NotNil(doc.ElementByID("g"))
	assert.Nil(doc.ElementByID("missing"))
}

func TestElement_WalkAndRemove(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	var tags []string
	doc.Root.Walk(func(el, parent *Element) bool {
		tags = append(tags, el.Tag())
		return el.Tag() != "defs"
	})
	assert.Equal(t, []string{"svg", "defs", "path", "use", "text"}, tags)

	n := doc.Root.RemoveChildren(func(el *Element) bool { return el.Tag() == "defs" })
	assert.Equal(t, 1, n)
	assert.Len(t, doc.Root.Elements(), 3)

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "linearGradient")
}

func TestParseLength(t *testing.T) {
	testCases := []struct {
		in   string
		want float64
		err  bool
	}{
		{"24", 24, false},
		{"24px", 24, false},
		{" 1.5em", 1.5, false},
		{".5", 0.5, false},
		{"100%", 100, false},
		{"-3", -3, false},
		{"auto", 0, true},
		{"", 0, true},
	}
	for _, tc := range testCases {
		got, err := ParseLength(tc.in)
		if tc.err {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestViewBox(t *testing.T) {
	vb, err := ParseViewBox("0,0 24 12.5")
	require.NoError(t, err)
	assert.Equal(t, ViewBox{0, 0, 24, 12.5}, vb)
	assert.Equal(t, "0 0 24 12.5", vb.String())
	assert.Equal(t, 24.0, vb.Rect().MaxX)

	_, err = ParseViewBox("0 0 24")
	assert.Error(t, err)
	_, err = ParseViewBox("0 0 -1 1")
	assert.Error(t, err)
}
