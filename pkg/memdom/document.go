package memdom

import (
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// Document is an in-memory node tree implementing the vdom backend
// interfaces. It is not safe for concurrent use; the runtime drives it
// from the scheduler goroutine.
type Document struct {
	root   *MemNode
	nextID uint64
}

// NewDocument creates a document with an empty body element as root.
func NewDocument() *Document {
	d := &Document{}
	d.root = d.newNode(vdom.KindElement)
	d.root.Tag = "body"
	return d
}

// Root returns the document's body element.
func (d *Document) Root() *MemNode {
	return d.root
}

// FindByID returns the attached node with the given ID, or nil.
func (d *Document) FindByID(id uint64) *MemNode {
	var found *MemNode
	d.root.Walk(func(n *MemNode) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Attached reports whether n is reachable from the document root.
func (d *Document) Attached(n *MemNode) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == d.root {
			return true
		}
	}
	return false
}

func (d *Document) newNode(kind vdom.Kind) *MemNode {
	d.nextID++
	return &MemNode{ID: d.nextID, Kind: kind}
}

func asMem(n vdom.Node) *MemNode {
	if n == nil {
		return nil
	}
	return n.(*MemNode)
}

// Backend implementation.

func (d *Document) CreateElement(tag, ns string) vdom.Node {
	n := d.newNode(vdom.KindElement)
	n.Tag = tag
	n.NS = ns
	return n
}

func (d *Document) CreateText(text string) vdom.Node {
	n := d.newNode(vdom.KindText)
	n.Text = text
	return n
}

func (d *Document) CreateComment(text string) vdom.Node {
	n := d.newNode(vdom.KindComment)
	n.Text = text
	return n
}

func (d *Document) InsertBefore(parent, node, ref vdom.Node) {
	p, n, r := asMem(parent), asMem(node), asMem(ref)
	n.detach()
	if r == nil {
		p.Children = append(p.Children, n)
	} else {
		idx := r.IndexIn(p)
		if idx < 0 {
			p.Children = append(p.Children, n)
		} else {
			p.Children = append(p.Children, nil)
			copy(p.Children[idx+1:], p.Children[idx:])
			p.Children[idx] = n
		}
	}
	n.Parent = p
}

func (d *Document) AppendChild(parent, child vdom.Node) {
	p, c := asMem(parent), asMem(child)
	c.detach()
	p.Children = append(p.Children, c)
	c.Parent = p
}

func (d *Document) RemoveChild(parent, child vdom.Node) {
	c := asMem(child)
	if c.Parent == asMem(parent) {
		c.detach()
	}
}

func (d *Document) ParentNode(node vdom.Node) vdom.Node {
	p := asMem(node).Parent
	if p == nil {
		return nil
	}
	return p
}

func (d *Document) NextSibling(node vdom.Node) vdom.Node {
	s := asMem(node).NextSibling()
	if s == nil {
		return nil
	}
	return s
}

func (d *Document) SetTextContent(node vdom.Node, text string) {
	n := asMem(node)
	if n.Kind == vdom.KindText || n.Kind == vdom.KindComment {
		n.Text = text
		return
	}
	n.Children = nil
	if text != "" {
		t := asMem(d.CreateText(text))
		t.Parent = n
		n.Children = []*MemNode{t}
	}
}

func (d *Document) TagName(node vdom.Node) string {
	return asMem(node).Tag
}

func (d *Document) SetScopeAttr(node vdom.Node, scopeID string) {
	d.SetAttribute(node, "data-v-"+scopeID, "")
}

func (d *Document) TagNamespace(tag string) string {
	switch tag {
	case "svg":
		return "svg"
	case "math":
		return "math"
	default:
		return ""
	}
}

// AttrBackend implementation.

func (d *Document) SetAttribute(node vdom.Node, key, value string) {
	n := asMem(node)
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
}

func (d *Document) RemoveAttribute(node vdom.Node, key string) {
	delete(asMem(node).Attrs, key)
}

func (d *Document) AddEventListener(node vdom.Node, event string, h vdom.EventHandler) {
	n := asMem(node)
	if n.Listeners == nil {
		n.Listeners = make(map[string]vdom.EventHandler)
	}
	n.Listeners[event] = h
}

func (d *Document) RemoveEventListener(node vdom.Node, event string) {
	delete(asMem(node).Listeners, event)
}

func (d *Document) SetProperty(node vdom.Node, key string, value any) {
	n := asMem(node)
	if value == nil {
		delete(n.Props, key)
		return
	}
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	n.Props[key] = value
}

// HydrationBackend implementation.

func (d *Document) ChildNodes(node vdom.Node) []vdom.Node {
	n := asMem(node)
	out := make([]vdom.Node, len(n.Children))
	for i, c := range n.Children {
		out[i] = c
	}
	return out
}

func (d *Document) NodeKind(node vdom.Node) vdom.Kind {
	return asMem(node).Kind
}

func (d *Document) NodeText(node vdom.Node) string {
	n := asMem(node)
	if n.Kind == vdom.KindText || n.Kind == vdom.KindComment {
		return n.Text
	}
	if len(n.Children) == 1 && n.Children[0].Kind == vdom.KindText {
		return n.Children[0].Text
	}
	return ""
}

func (d *Document) OuterHTML(node vdom.Node) string {
	return RenderHTML(asMem(node))
}
