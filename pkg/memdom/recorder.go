package memdom

import (
	"fmt"
	"sort"

	"github.com/vireo-ui/vireo/pkg/protocol"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// Recorder is a backend that applies every mutation to an underlying
// Document and records the mutations touching the attached tree as wire
// patches. A remote client that replays the patches against its copy of
// the tree converges on the same document.
//
// Mutations on detached subtrees are not recorded individually; the
// whole subtree is captured in one InsertNode patch when its root is
// attached.
type Recorder struct {
	doc     *Document
	patches []protocol.Patch
}

// NewRecorder wraps a document.
func NewRecorder(doc *Document) *Recorder {
	return &Recorder{doc: doc}
}

// Document returns the underlying document.
func (r *Recorder) Document() *Document {
	return r.doc
}

// Take returns the recorded patches and clears the buffer.
func (r *Recorder) Take() []protocol.Patch {
	p := r.patches
	r.patches = nil
	return p
}

// Pending returns the number of recorded patches.
func (r *Recorder) Pending() int {
	return len(r.patches)
}

// Frame wraps the recorded patches in a sequenced frame and clears the
// buffer.
func (r *Recorder) Frame(seq uint64) *protocol.PatchesFrame {
	return &protocol.PatchesFrame{Seq: seq, Patches: r.Take()}
}

func (r *Recorder) record(p protocol.Patch) {
	r.patches = append(r.patches, p)
}

// Backend delegation.

func (r *Recorder) CreateElement(tag, ns string) vdom.Node { return r.doc.CreateElement(tag, ns) }
func (r *Recorder) CreateText(text string) vdom.Node       { return r.doc.CreateText(text) }
func (r *Recorder) CreateComment(text string) vdom.Node    { return r.doc.CreateComment(text) }
func (r *Recorder) ParentNode(n vdom.Node) vdom.Node       { return r.doc.ParentNode(n) }
func (r *Recorder) NextSibling(n vdom.Node) vdom.Node      { return r.doc.NextSibling(n) }
func (r *Recorder) TagName(n vdom.Node) string             { return r.doc.TagName(n) }
func (r *Recorder) TagNamespace(tag string) string         { return r.doc.TagNamespace(tag) }

func (r *Recorder) InsertBefore(parent, node, ref vdom.Node) {
	n := asMem(node)
	wasAttached := r.doc.Attached(n)
	r.doc.InsertBefore(parent, node, ref)
	r.recordAttach(n, asMem(parent), asMem(ref), wasAttached)
}

func (r *Recorder) AppendChild(parent, child vdom.Node) {
	c := asMem(child)
	wasAttached := r.doc.Attached(c)
	r.doc.AppendChild(parent, child)
	r.recordAttach(c, asMem(parent), nil, wasAttached)
}

func (r *Recorder) recordAttach(n, parent, ref *MemNode, wasAttached bool) {
	if !r.doc.Attached(n) {
		return
	}
	var refID uint64
	if ref != nil {
		refID = ref.ID
	}
	if wasAttached {
		r.record(protocol.Patch{Op: protocol.PatchMoveNode, Node: n.ID, Parent: parent.ID, Ref: refID})
		return
	}
	r.record(protocol.Patch{
		Op:     protocol.PatchInsertNode,
		Node:   n.ID,
		Parent: parent.ID,
		Ref:    refID,
		Tree:   wireFromMem(n),
	})
}

func (r *Recorder) RemoveChild(parent, child vdom.Node) {
	c := asMem(child)
	wasAttached := r.doc.Attached(c)
	r.doc.RemoveChild(parent, child)
	if wasAttached {
		r.record(protocol.Patch{Op: protocol.PatchRemoveNode, Node: c.ID})
	}
}

func (r *Recorder) SetTextContent(node vdom.Node, text string) {
	r.doc.SetTextContent(node, text)
	if n := asMem(node); r.doc.Attached(n) {
		r.record(protocol.Patch{Op: protocol.PatchSetText, Node: n.ID, Value: text})
	}
}

func (r *Recorder) SetScopeAttr(node vdom.Node, scopeID string) {
	r.SetAttribute(node, "data-v-"+scopeID, "")
}

// AttrBackend delegation.

func (r *Recorder) SetAttribute(node vdom.Node, key, value string) {
	r.doc.SetAttribute(node, key, value)
	if n := asMem(node); r.doc.Attached(n) {
		r.record(protocol.Patch{Op: protocol.PatchSetAttr, Node: n.ID, Key: key, Value: value})
	}
}

func (r *Recorder) RemoveAttribute(node vdom.Node, key string) {
	r.doc.RemoveAttribute(node, key)
	if n := asMem(node); r.doc.Attached(n) {
		r.record(protocol.Patch{Op: protocol.PatchRemoveAttr, Node: n.ID, Key: key})
	}
}

func (r *Recorder) AddEventListener(node vdom.Node, event string, h vdom.EventHandler) {
	r.doc.AddEventListener(node, event, h)
	if n := asMem(node); r.doc.Attached(n) {
		r.record(protocol.Patch{Op: protocol.PatchAddEvent, Node: n.ID, Key: event})
	}
}

func (r *Recorder) RemoveEventListener(node vdom.Node, event string) {
	r.doc.RemoveEventListener(node, event)
	if n := asMem(node); r.doc.Attached(n) {
		r.record(protocol.Patch{Op: protocol.PatchRemoveEvent, Node: n.ID, Key: event})
	}
}

func (r *Recorder) SetProperty(node vdom.Node, key string, value any) {
	r.doc.SetProperty(node, key, value)
	if n := asMem(node); r.doc.Attached(n) {
		val := ""
		if value != nil {
			val = fmt.Sprint(value)
		}
		r.record(protocol.Patch{Op: protocol.PatchSetProp, Node: n.ID, Key: key, Value: val})
	}
}

// HydrationBackend delegation, so a session patcher can bind to
// server-rendered markup through the recorder.

func (r *Recorder) ChildNodes(n vdom.Node) []vdom.Node { return r.doc.ChildNodes(n) }
func (r *Recorder) NodeKind(n vdom.Node) vdom.Kind     { return r.doc.NodeKind(n) }
func (r *Recorder) NodeText(n vdom.Node) string        { return r.doc.NodeText(n) }
func (r *Recorder) OuterHTML(n vdom.Node) string       { return r.doc.OuterHTML(n) }

// wireFromMem projects an attached subtree into the wire format.
func wireFromMem(n *MemNode) *protocol.WireNode {
	w := &protocol.WireNode{
		Kind: n.Kind,
		Tag:  n.Tag,
		ID:   n.ID,
		Text: n.Text,
	}
	if len(n.Attrs) > 0 {
		w.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			w.Attrs[k] = v
		}
	}
	if len(n.Listeners) > 0 {
		for ev := range n.Listeners {
			w.Events = append(w.Events, ev)
		}
		sort.Strings(w.Events)
	}
	for _, c := range n.Children {
		w.Children = append(w.Children, wireFromMem(c))
	}
	return w
}
