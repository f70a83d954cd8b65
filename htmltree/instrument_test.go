package htmltree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/kode4food/domtimeline"
	"github.com/kode4food/domtimeline/htmltree"
)

type Node = *html.Node

func instrumented(
	t *testing.T,
) (*domtimeline.History[Node], *htmltree.Instrumented) {
	t.Helper()
	doc := parse(t)
	cfg := domtimeline.DefaultConfig()
	cfg.TrackCallstacks = false
	h := domtimeline.New[Node](doc, doc, domtimeline.WithConfig[Node](cfg))
	return h, htmltree.Instrument(doc, h)
}

func labels(h *domtimeline.History[Node]) []string {
	var res []string
	for _, e := range h.Past() {
		res = append(res, e.Attribution.Label)
	}
	return res
}

func TestInstrumentedLabels(t *testing.T) {
	h, in := instrumented(t)
	doc := in.Document()
	list := find(t, doc, "list")
	one := find(t, doc, "one")
	two := find(t, doc, "two")
	original := htmltree.Render(doc.Root())

	require.NoError(t, in.SetAttribute(list, "class", "menu"))
	require.NoError(t, in.RemoveAttribute(list, "class"))
	require.NoError(t, in.SetText(one.FirstChild, "uno"))
	three := htmltree.NewElement("li")
	require.NoError(t, in.InsertBefore(list, three, two))
	require.NoError(t, in.AppendChild(list, htmltree.NewElement("li")))
	require.NoError(t, in.ReplaceChild(list, htmltree.NewElement("li"), three))
	require.NoError(t, in.Remove(two))

	assert.Equal(t, []string{
		"setAttribute",
		"removeAttribute",
		"set nodeValue",
		"insertBefore",
		"appendChild",
		"replaceChild",
		"remove",
	}, labels(h))

	undone, err := h.Rewind()
	assert.NoError(t, err)
	assert.Equal(t, 7, undone)
	assert.Equal(t, original, htmltree.Render(doc.Root()))
}

func TestInstrumentedErrors(t *testing.T) {
	h, in := instrumented(t)

	err := in.Remove(htmltree.NewElement("li"))
	assert.ErrorIs(t, err, htmltree.ErrDetached)
	assert.Empty(t, h.Past())
}

func TestStyleProxy(t *testing.T) {
	h, in := instrumented(t)
	doc := in.Document()
	one := find(t, doc, "one")
	style := in.Style(one)

	require.NoError(t, style.Set("color", "red"))
	require.NoError(t, style.Set("Margin", "0"))
	require.NoError(t, style.Set("color", "blue"))
	assert.Equal(t, "blue", style.Get("color"))
	assert.Equal(t, "0", style.Get("margin"))
	assert.Equal(t,
		domtimeline.StringValue("color: blue; margin: 0;"),
		doc.Attribute(one, "style"),
	)

	require.NoError(t, style.Set("color", ""))
	require.NoError(t, style.Set("margin", ""))
	require.NoError(t, style.Set("padding", ""))
	assert.Equal(t, domtimeline.NullValue, doc.Attribute(one, "style"))
	assert.Equal(t, "", style.Get("color"))

	assert.Equal(t, []string{
		"set style.color",
		"set style.Margin",
		"set style.color",
		"set style.color",
		"set style.margin",
	}, labels(h))

	require.NoError(t, h.Undo())
	assert.Equal(t, "0", style.Get("margin"))
	require.NoError(t, h.Undo())
	assert.Equal(t, "blue", style.Get("color"))
}
