package htmltree

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/kode4food/domtimeline"
)

type (
	// Instrumented wraps a Document so that every mutation is claimed
	// under the name of the operation that made it
	Instrumented struct {
		doc     *Document
		claimer domtimeline.Claimer
	}

	// StyleProxy edits the declarations of an element's style attribute,
	// claiming each property write separately
	StyleProxy struct {
		in   *Instrumented
		node *html.Node
	}

	declaration struct {
		prop  string
		value string
	}
)

// Instrument attributes the mutations made through the returned value to
// claimer
func Instrument(doc *Document, claimer domtimeline.Claimer) *Instrumented {
	return &Instrumented{doc: doc, claimer: claimer}
}

// Document returns the wrapped Document
func (i *Instrumented) Document() *Document {
	return i.doc
}

func (i *Instrumented) SetAttribute(n *html.Node, name, value string) error {
	return i.claimer.Claim("setAttribute", func() error {
		return i.doc.SetAttribute(n, name, domtimeline.StringValue(value))
	})
}

func (i *Instrumented) RemoveAttribute(n *html.Node, name string) error {
	return i.claimer.Claim("removeAttribute", func() error {
		return i.doc.RemoveAttribute(n, name)
	})
}

func (i *Instrumented) SetText(n *html.Node, data string) error {
	return i.claimer.Claim("set nodeValue", func() error {
		return i.doc.SetText(n, domtimeline.StringValue(data))
	})
}

func (i *Instrumented) InsertBefore(parent, child, ref *html.Node) error {
	return i.claimer.Claim("insertBefore", func() error {
		return i.doc.InsertBefore(parent, child, ref)
	})
}

func (i *Instrumented) AppendChild(parent, child *html.Node) error {
	return i.claimer.Claim("appendChild", func() error {
		return i.doc.AppendChild(parent, child)
	})
}

func (i *Instrumented) ReplaceChild(parent, child, old *html.Node) error {
	return i.claimer.Claim("replaceChild", func() error {
		return i.doc.ReplaceChild(parent, child, old)
	})
}

func (i *Instrumented) Remove(n *html.Node) error {
	return i.claimer.Claim("remove", func() error {
		return i.doc.Remove(n)
	})
}

// Style returns a proxy over n's inline style
func (i *Instrumented) Style(n *html.Node) *StyleProxy {
	return &StyleProxy{in: i, node: n}
}

// Get returns the value of a style property, or "" if it is not set
func (s *StyleProxy) Get(prop string) string {
	prop = strings.ToLower(strings.TrimSpace(prop))
	for _, d := range parseStyle(s.in.doc.Attribute(s.node, "style").Data) {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// Set writes a style property. An empty value removes it. The write is
// claimed as "set style.<prop>"
func (s *StyleProxy) Set(prop, value string) error {
	return s.in.claimer.Claim("set style."+prop, func() error {
		decls := parseStyle(s.in.doc.Attribute(s.node, "style").Data)
		decls = setDeclaration(decls, prop, value)
		if len(decls) == 0 {
			return s.in.doc.RemoveAttribute(s.node, "style")
		}
		return s.in.doc.SetAttribute(
			s.node, "style", domtimeline.StringValue(formatStyle(decls)),
		)
	})
}

func parseStyle(style string) []declaration {
	var res []declaration
	for _, part := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(part, ":")
		prop = strings.TrimSpace(prop)
		if !ok || prop == "" {
			continue
		}
		res = append(res, declaration{
			prop:  strings.ToLower(prop),
			value: strings.TrimSpace(value),
		})
	}
	return res
}

func setDeclaration(decls []declaration, prop, value string) []declaration {
	prop = strings.ToLower(strings.TrimSpace(prop))
	for i, d := range decls {
		if d.prop != prop {
			continue
		}
		if value == "" {
			return append(decls[:i], decls[i+1:]...)
		}
		decls[i].value = value
		return decls
	}
	if value == "" {
		return decls
	}
	return append(decls, declaration{prop: prop, value: value})
}

func formatStyle(decls []declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value
	}
	return strings.Join(parts, "; ") + ";"
}
