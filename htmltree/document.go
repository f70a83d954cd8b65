// Package htmltree is a domtimeline backend for golang.org/x/net/html
// trees. A Document mutates the parsed nodes and records every change the
// way a DOM mutation observer would, old values included
package htmltree

import (
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/kode4food/domtimeline"
)

type (
	// Document is a mutable HTML tree that records its own changes. It is
	// not safe for concurrent use
	Document struct {
		root    *html.Node
		pending []*domtimeline.RawEvent[*html.Node]
	}

	// RawEvent is a change notification about an HTML node
	RawEvent = domtimeline.RawEvent[*html.Node]
)

var (
	ErrNilNode          = errors.New("node is nil")
	ErrNotElement       = errors.New("node is not an element")
	ErrNotCharacterData = errors.New("node does not hold character data")
	ErrNotChild         = errors.New("reference node is not a child of parent")
	ErrDetached         = errors.New("node is detached")
	ErrHierarchy        = errors.New("node would become its own ancestor")
)

var (
	_ domtimeline.Tree[*html.Node]    = (*Document)(nil)
	_ domtimeline.Watcher[*html.Node] = (*Document)(nil)
)

// Parse parses src as a full HTML document
func Parse(src string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	return NewDocument(root), nil
}

// NewDocument wraps an existing tree
func NewDocument(root *html.Node) *Document {
	return &Document{root: root}
}

// Root returns the document node
func (d *Document) Root() *html.Node {
	return d.root
}

// Drain returns the changes recorded since the previous Drain, oldest
// first
func (d *Document) Drain() []*RawEvent {
	res := d.pending
	d.pending = nil
	return res
}

// Pending returns the number of changes waiting to be drained
func (d *Document) Pending() int {
	return len(d.pending)
}

func (d *Document) Attribute(n *html.Node, name string) domtimeline.Value {
	if n == nil {
		return domtimeline.NullValue
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return domtimeline.StringValue(a.Val)
		}
	}
	return domtimeline.NullValue
}

// SetAttribute sets the named attribute, or removes it when value is not
// valid
func (d *Document) SetAttribute(
	n *html.Node, name string, value domtimeline.Value,
) error {
	if n == nil {
		return ErrNilNode
	}
	if n.Type != html.ElementNode {
		return ErrNotElement
	}

	old := d.Attribute(n, name)
	if !old.Valid && !value.Valid {
		return nil
	}
	d.record(&RawEvent{
		Kind:          domtimeline.KindAttribute,
		Target:        n,
		AttributeName: name,
		OldValue:      old,
	})

	for i, a := range n.Attr {
		if a.Namespace != "" || a.Key != name {
			continue
		}
		if value.Valid {
			n.Attr[i].Val = value.Data
		} else {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
		}
		return nil
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value.Data})
	return nil
}

// RemoveAttribute removes the named attribute if present
func (d *Document) RemoveAttribute(n *html.Node, name string) error {
	return d.SetAttribute(n, name, domtimeline.NullValue)
}

func (d *Document) Text(n *html.Node) domtimeline.Value {
	if !isCharacterData(n) {
		return domtimeline.NullValue
	}
	return domtimeline.StringValue(n.Data)
}

// SetText replaces the data of a text or comment node. An invalid value
// empties it
func (d *Document) SetText(n *html.Node, value domtimeline.Value) error {
	if n == nil {
		return ErrNilNode
	}
	if !isCharacterData(n) {
		return ErrNotCharacterData
	}
	d.record(&RawEvent{
		Kind:     domtimeline.KindText,
		Target:   n,
		OldValue: domtimeline.StringValue(n.Data),
	})
	n.Data = value.Data
	return nil
}

// InsertBefore moves child under parent, right before ref. A nil ref
// appends. A child that is already attached elsewhere is detached first,
// which is recorded as a separate change
func (d *Document) InsertBefore(parent, child, ref *html.Node) error {
	if parent == nil || child == nil {
		return ErrNilNode
	}
	if ref != nil && ref.Parent != parent {
		return ErrNotChild
	}
	if isInclusiveAncestor(child, parent) {
		return ErrHierarchy
	}
	if ref == child {
		ref = child.NextSibling
	}

	if child.Parent != nil {
		d.detach(child)
	}
	d.record(&RawEvent{
		Kind:        domtimeline.KindChildList,
		Target:      parent,
		AddedNodes:  []*html.Node{child},
		NextSibling: ref,
	})
	parent.InsertBefore(child, ref)
	return nil
}

// AppendChild moves child to the end of parent's children
func (d *Document) AppendChild(parent, child *html.Node) error {
	return d.InsertBefore(parent, child, nil)
}

// Remove detaches n from its parent
func (d *Document) Remove(n *html.Node) error {
	if n == nil {
		return ErrNilNode
	}
	if n.Parent == nil {
		return ErrDetached
	}
	d.detach(n)
	return nil
}

// ReplaceChild puts child in place of old, recorded as a single change
func (d *Document) ReplaceChild(parent, child, old *html.Node) error {
	if parent == nil || child == nil || old == nil {
		return ErrNilNode
	}
	if old.Parent != parent {
		return ErrNotChild
	}
	if child == old {
		return nil
	}
	if isInclusiveAncestor(child, parent) {
		return ErrHierarchy
	}

	if child.Parent != nil {
		d.detach(child)
	}
	next := old.NextSibling
	d.record(&RawEvent{
		Kind:         domtimeline.KindChildList,
		Target:       parent,
		AddedNodes:   []*html.Node{child},
		RemovedNodes: []*html.Node{old},
		NextSibling:  next,
	})
	parent.InsertBefore(child, old)
	parent.RemoveChild(old)
	return nil
}

func (d *Document) detach(n *html.Node) {
	parent := n.Parent
	d.record(&RawEvent{
		Kind:         domtimeline.KindChildList,
		Target:       parent,
		RemovedNodes: []*html.Node{n},
		NextSibling:  n.NextSibling,
	})
	parent.RemoveChild(n)
}

func (d *Document) record(ev *RawEvent) {
	d.pending = append(d.pending, ev)
}

func isCharacterData(n *html.Node) bool {
	return n != nil && (n.Type == html.TextNode || n.Type == html.CommentNode)
}

func isInclusiveAncestor(a, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}
