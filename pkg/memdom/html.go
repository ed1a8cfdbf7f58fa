package memdom

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vireo-ui/vireo/pkg/vdom"
)

// voidElements never get a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// RenderHTML serializes a node to HTML. Attributes come out in sorted
// order so the output is stable across runs.
func RenderHTML(n *MemNode) string {
	var b strings.Builder
	renderNode(&b, n)
	return b.String()
}

// RenderChildren serializes only the node's children, typically the body
// content of a server-rendered page.
func RenderChildren(n *MemNode) string {
	var b strings.Builder
	for _, c := range n.Children {
		renderNode(&b, c)
	}
	return b.String()
}

func renderNode(b *strings.Builder, n *MemNode) {
	switch n.Kind {
	case vdom.KindText:
		b.WriteString(escapeText(n.Text))
	case vdom.KindComment:
		b.WriteString("<!--")
		b.WriteString(n.Text)
		b.WriteString("-->")
	default:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		for _, key := range sortedKeys(n.Attrs) {
			b.WriteByte(' ')
			b.WriteString(key)
			if v := n.Attrs[key]; v != "" {
				b.WriteString(`="`)
				b.WriteString(escapeAttr(v))
				b.WriteByte('"')
			}
		}
		b.WriteByte('>')
		if voidElements[n.Tag] {
			return
		}
		for _, c := range n.Children {
			renderNode(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	return strings.ReplaceAll(s, `"`, "&quot;")
}

// ParseHTML parses an HTML fragment into nodes owned by the document.
// The nodes are detached; the caller decides where to attach them. This
// is the hydration source: server-rendered markup parsed back into a
// backing tree the patcher can bind to.
func (d *Document) ParseHTML(fragment string) ([]*MemNode, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, err
	}
	var out []*MemNode
	for _, hn := range parsed {
		if n := d.fromHTMLNode(hn); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

func (d *Document) fromHTMLNode(hn *html.Node) *MemNode {
	switch hn.Type {
	case html.TextNode:
		n := d.newNode(vdom.KindText)
		n.Text = hn.Data
		return n
	case html.CommentNode:
		n := d.newNode(vdom.KindComment)
		n.Text = hn.Data
		return n
	case html.ElementNode:
		n := d.newNode(vdom.KindElement)
		n.Tag = hn.Data
		for _, a := range hn.Attr {
			if n.Attrs == nil {
				n.Attrs = make(map[string]string)
			}
			n.Attrs[a.Key] = a.Val
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if child := d.fromHTMLNode(c); child != nil {
				child.Parent = n
				n.Children = append(n.Children, child)
			}
		}
		return n
	default:
		return nil
	}
}
