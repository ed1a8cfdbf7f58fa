package vdom

// Backend provides the structural tree-mutation primitives the patcher
// applies its operations through. These are pure structure: the patcher
// never touches attributes directly (that is module territory).
type Backend interface {
	CreateElement(tag, ns string) Node
	CreateText(text string) Node
	CreateComment(text string) Node

	InsertBefore(parent, node, ref Node)
	AppendChild(parent, child Node)
	RemoveChild(parent, child Node)

	ParentNode(node Node) Node
	NextSibling(node Node) Node

	SetTextContent(node Node, text string)
	TagName(node Node) string

	// SetScopeAttr stamps the scoped-style attribute on a created element.
	SetScopeAttr(node Node, scopeID string)

	// TagNamespace resolves the namespace for a tag (e.g. "svg", "math").
	// Empty means the default namespace.
	TagNamespace(tag string) string
}

// AttrBackend is the per-attribute capability surface consumed by the
// default modules.
type AttrBackend interface {
	SetAttribute(node Node, key, value string)
	RemoveAttribute(node Node, key string)
	AddEventListener(node Node, event string, h EventHandler)
	RemoveEventListener(node Node, event string)
	SetProperty(node Node, key string, value any)
}

// HydrationBackend extends Backend with the read operations hydration
// needs to match an existing backing subtree against a vnode tree.
type HydrationBackend interface {
	Backend

	ChildNodes(node Node) []Node
	NodeKind(node Node) Kind
	NodeText(node Node) string

	// OuterHTML serializes the node for mismatch reports.
	OuterHTML(node Node) string
}
