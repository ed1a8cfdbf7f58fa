package memdom

import (
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// MemNode is one node of an in-memory document tree.
type MemNode struct {
	ID   uint64
	Kind vdom.Kind
	Tag  string
	NS   string
	Text string

	Attrs     map[string]string
	Props     map[string]any
	Listeners map[string]vdom.EventHandler

	Parent   *MemNode
	Children []*MemNode
}

// IndexIn returns the node's position under parent, or -1.
func (n *MemNode) IndexIn(parent *MemNode) int {
	for i, c := range parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// NextSibling returns the node following n under its parent, or nil.
func (n *MemNode) NextSibling() *MemNode {
	if n.Parent == nil {
		return nil
	}
	idx := n.IndexIn(n.Parent)
	if idx < 0 || idx+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[idx+1]
}

// detach removes n from its parent, if any.
func (n *MemNode) detach() {
	if n.Parent == nil {
		return
	}
	p := n.Parent
	if idx := n.IndexIn(p); idx >= 0 {
		p.Children = append(p.Children[:idx], p.Children[idx+1:]...)
	}
	n.Parent = nil
}

// Dispatch invokes the node's listener for the event type, if any. It
// returns whether a listener handled the event.
func (n *MemNode) Dispatch(ev vdom.Event) bool {
	h, ok := n.Listeners[ev.Type]
	if !ok {
		return false
	}
	ev.Target = n
	h(ev)
	return true
}

// Walk visits n and every descendant in document order until fn returns
// false.
func (n *MemNode) Walk(fn func(*MemNode) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
