package domtimeline_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/kode4food/domtimeline"
	"github.com/kode4food/domtimeline/htmltree"
)

type (
	Node = *html.Node

	// failingDocument refuses attribute writes while fail is set
	failingDocument struct {
		*htmltree.Document
		fail bool
	}

	// reentrantDocument reports back into its History from inside every
	// attribute write, the way a synchronous watcher callback would
	reentrantDocument struct {
		*htmltree.Document
		history  *domtimeline.History[Node]
		flushErr error
		claims   int
	}
)

const testPage = `<html><head></head><body>` +
	`<div id="box" class="a"><p id="s">text</p></div>` +
	`</body></html>`

var errBoom = errors.New("boom")

func (d *failingDocument) SetAttribute(
	n Node, name string, value domtimeline.Value,
) error {
	if d.fail {
		return errBoom
	}
	return d.Document.SetAttribute(n, name, value)
}

func (d *reentrantDocument) SetAttribute(
	n Node, name string, value domtimeline.Value,
) error {
	if err := d.Document.SetAttribute(n, name, value); err != nil {
		return err
	}
	if d.history == nil {
		return nil
	}
	d.flushErr = d.history.OnFlush(
		d.Document.Drain(), domtimeline.Attribution{Label: "nested"},
	)
	return d.history.Claim("nested", func() error {
		d.claims++
		return d.Document.SetAttribute(n, "data-nested", value)
	})
}

func parsePage(t *testing.T) *htmltree.Document {
	t.Helper()
	doc, err := htmltree.Parse(testPage)
	require.NoError(t, err)
	return doc
}

func newHistory(
	t *testing.T, opts ...domtimeline.Option[Node],
) (*domtimeline.History[Node], *htmltree.Document) {
	t.Helper()
	doc := parsePage(t)
	return domtimeline.New[Node](doc, doc, opts...), doc
}

func find(t *testing.T, doc *htmltree.Document, id string) Node {
	t.Helper()
	n := htmltree.Find(doc.Root(), id)
	require.NotNil(t, n, id)
	return n
}

func render(doc *htmltree.Document) string {
	return htmltree.Render(doc.Root())
}

func str(s string) domtimeline.Value {
	return domtimeline.StringValue(s)
}
