package htmltree

import (
	"strings"

	"golang.org/x/net/html"
)

// Render serializes n and its descendants. Errors from the renderer are
// reported as an empty string
func Render(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// Find returns the first element under n whose id attribute equals id
func Find(n *html.Node, id string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Namespace == "" && a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, id); found != nil {
			return found
		}
	}
	return nil
}

// NewElement creates a detached element with the given attributes, given
// as key/value pairs
func NewElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// NewText creates a detached text node
func NewText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// NodeName names a node for journals and logs: "tag#id" for elements
// with an id, "tag" for other elements and "#text" or "#comment" for
// character data
func NodeName(n *html.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case html.ElementNode:
		for _, a := range n.Attr {
			if a.Namespace == "" && a.Key == "id" {
				return n.Data + "#" + a.Val
			}
		}
		return n.Data
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		return "#document"
	default:
		return "#node"
	}
}
