package vdom

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindComment               // Comment node
	KindComponent             // Placeholder for a nested component
	KindAsync                 // Placeholder for a not-yet-resolved component
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindComponent:
		return "Component"
	case KindAsync:
		return "Async"
	default:
		return "Unknown"
	}
}

// Node is an opaque handle to a backing-tree node. Only the Backend that
// created it understands its concrete type.
type Node any

// EventHandler handles a backing-tree event.
type EventHandler func(Event)

// Event is the minimal event surface the runtime routes to handlers.
type Event struct {
	Type   string
	Target Node
	Value  string
}

// Hooks are per-vnode lifecycle callbacks, used by the component layer to
// observe patch timing and to substitute component output for placeholder
// nodes.
type Hooks struct {
	// Init runs before the patcher would create a backing node for the
	// vnode. It may construct a component instance and set vnode.Elm to
	// the component's rendered root, in which case the patcher inserts
	// that instead of creating an element.
	Init func(vnode *VNode)

	// Prepatch runs before an in-place diff of two same-nodes.
	Prepatch func(old, vnode *VNode)

	// Update runs during an in-place diff, after module update hooks.
	Update func(old, vnode *VNode)

	// Postpatch runs after an in-place diff completed, children included.
	Postpatch func(old, vnode *VNode)

	// Insert runs once the vnode's backing node is in the tree.
	Insert func(vnode *VNode)

	// Destroy runs when the vnode's subtree is being destroyed.
	Destroy func(vnode *VNode)
}

// NodeData is the attribute/event/directive bag of an element vnode.
// A nil NodeData on an element is meaningful: the same-node rule treats
// data presence as part of node identity.
type NodeData struct {
	Attrs map[string]string
	Class map[string]bool
	Style map[string]string
	Props map[string]any
	On    map[string]EventHandler

	// ScopeID is the scoped-style attribute stamped on created elements.
	ScopeID string

	Hooks *Hooks
}

// VNode describes one node of the rendered output tree. VNodes are created
// fresh each render pass; the previous pass's tree is retained only as the
// "old tree" for one diff cycle.
type VNode struct {
	Kind     Kind
	Tag      string
	NS       string
	Data     *NodeData
	Children []*VNode
	Text     string

	// Key is the identity key used by the keyed child-list diff.
	Key string

	// Elm is the bound backing-tree node, filled in during patch.
	Elm Node

	// Component associates the vnode with a nested component instance,
	// filled by the Init hook.
	Component any

	// Static marks render-once subtrees that the in-place diff may
	// short-circuit. Cloned and Once qualify which static reuse is legal.
	Static bool
	Cloned bool
	Once   bool
}

// HasChildren reports whether the vnode has a child list.
func (v *VNode) HasChildren() bool {
	return len(v.Children) > 0
}

// hooks returns the vnode's hook set, or nil.
func (v *VNode) hooks() *Hooks {
	if v.Data == nil {
		return nil
	}
	return v.Data.Hooks
}

// emptyVNode is the zero-value old node passed to module create hooks.
var emptyVNode = &VNode{}

// sameVNode is the reuse-vs-recreate rule: two vnodes are "the same" when
// they agree on identity key, kind, tag, data presence, and input subtype.
func sameVNode(a, b *VNode) bool {
	return a.Key == b.Key &&
		a.Kind == b.Kind &&
		a.Tag == b.Tag &&
		(a.Data == nil) == (b.Data == nil) &&
		sameInputType(a, b)
}

// sameInputType compares the type attribute of input elements; inputs of
// different subtypes are never reused in place.
func sameInputType(a, b *VNode) bool {
	if a.Tag != "input" {
		return true
	}
	return inputType(a) == inputType(b)
}

func inputType(v *VNode) string {
	if v.Data == nil || v.Data.Attrs == nil {
		return ""
	}
	return v.Data.Attrs["type"]
}
