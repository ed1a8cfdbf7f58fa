package vdom

// Element builds an element vnode.
func Element(tag string, data *NodeData, children ...*VNode) *VNode {
	return &VNode{Kind: KindElement, Tag: tag, Data: data, Children: children}
}

// KeyedElement builds an element vnode with an identity key.
func KeyedElement(key, tag string, data *NodeData, children ...*VNode) *VNode {
	v := Element(tag, data, children...)
	v.Key = key
	return v
}

// Text builds a text vnode.
func Text(text string) *VNode {
	return &VNode{Kind: KindText, Text: text}
}

// Comment builds a comment vnode.
func Comment(text string) *VNode {
	return &VNode{Kind: KindComment, Text: text}
}

// Placeholder builds the empty comment node used where a component
// rendered nothing.
func Placeholder() *VNode {
	return &VNode{Kind: KindComment}
}

// Clone makes a shallow copy of a vnode marked as cloned, used to reuse
// static subtrees across renders without aliasing the original's Elm
// binding.
func Clone(v *VNode) *VNode {
	c := *v
	c.Cloned = true
	if len(v.Children) > 0 {
		c.Children = append([]*VNode(nil), v.Children...)
	}
	return &c
}
