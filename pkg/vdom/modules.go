package vdom

import (
	"reflect"
	"sort"
	"strings"
)

// Module supplies lifecycle callbacks for one attribute category
// (attributes, classes, styles, events, DOM properties). The patcher
// invokes them at the corresponding backing-node lifecycle points and is
// agnostic to what they do.
type Module struct {
	Name string

	// Create runs when a backing node is created for vnode.
	// old is always the empty vnode.
	Create func(old, vnode *VNode)

	// Update runs during an in-place diff of two same-nodes.
	Update func(old, vnode *VNode)

	// Destroy runs when vnode's subtree is destroyed.
	Destroy func(vnode *VNode)

	// Activate runs when a kept-alive subtree is re-inserted.
	Activate func(old, vnode *VNode)
}

// DefaultModules returns the standard module set wired to an AttrBackend.
func DefaultModules(b AttrBackend) []Module {
	return []Module{
		AttrsModule(b),
		ClassModule(b),
		StyleModule(b),
		EventsModule(b),
		PropsModule(b),
	}
}

// AttrsModule reconciles plain attributes.
func AttrsModule(b AttrBackend) Module {
	update := func(old, vnode *VNode) {
		oldAttrs := attrsOf(old)
		newAttrs := attrsOf(vnode)

		for key, val := range newAttrs {
			if oldAttrs[key] != val {
				b.SetAttribute(vnode.Elm, key, val)
			}
		}
		for key := range oldAttrs {
			if _, ok := newAttrs[key]; !ok {
				b.RemoveAttribute(vnode.Elm, key)
			}
		}
	}
	return Module{Name: "attrs", Create: update, Update: update}
}

// ClassModule reconciles the class attribute from the Class set.
func ClassModule(b AttrBackend) Module {
	update := func(old, vnode *VNode) {
		oldCls := classString(old)
		newCls := classString(vnode)
		if oldCls == newCls {
			return
		}
		if newCls == "" {
			b.RemoveAttribute(vnode.Elm, "class")
			return
		}
		b.SetAttribute(vnode.Elm, "class", newCls)
	}
	return Module{Name: "class", Create: update, Update: update}
}

// StyleModule reconciles the style attribute from the Style map.
func StyleModule(b AttrBackend) Module {
	update := func(old, vnode *VNode) {
		oldStyle := styleString(old)
		newStyle := styleString(vnode)
		if oldStyle == newStyle {
			return
		}
		if newStyle == "" {
			b.RemoveAttribute(vnode.Elm, "style")
			return
		}
		b.SetAttribute(vnode.Elm, "style", newStyle)
	}
	return Module{Name: "style", Create: update, Update: update}
}

// EventsModule attaches and detaches event listeners.
func EventsModule(b AttrBackend) Module {
	update := func(old, vnode *VNode) {
		oldOn := handlersOf(old)
		newOn := handlersOf(vnode)

		for event := range oldOn {
			if _, ok := newOn[event]; !ok {
				b.RemoveEventListener(vnode.Elm, event)
			}
		}
		// Listeners are replaced wholesale: handler closures are fresh
		// every render, so identity comparison would always differ.
		for event, h := range newOn {
			b.RemoveEventListener(vnode.Elm, event)
			b.AddEventListener(vnode.Elm, event, h)
		}
	}
	create := func(old, vnode *VNode) {
		for event, h := range handlersOf(vnode) {
			b.AddEventListener(vnode.Elm, event, h)
		}
	}
	destroy := func(vnode *VNode) {
		if vnode.Elm == nil {
			return
		}
		for event := range handlersOf(vnode) {
			b.RemoveEventListener(vnode.Elm, event)
		}
	}
	return Module{Name: "events", Create: create, Update: update, Destroy: destroy}
}

// PropsModule reconciles DOM properties (value, checked, etc.).
func PropsModule(b AttrBackend) Module {
	update := func(old, vnode *VNode) {
		oldProps := propsOf(old)
		newProps := propsOf(vnode)

		for key := range oldProps {
			if _, ok := newProps[key]; !ok {
				b.SetProperty(vnode.Elm, key, nil)
			}
		}
		// Property values may be slices or maps, which == would panic on.
		for key, val := range newProps {
			if !reflect.DeepEqual(oldProps[key], val) {
				b.SetProperty(vnode.Elm, key, val)
			}
		}
	}
	return Module{Name: "props", Create: update, Update: update}
}

func attrsOf(v *VNode) map[string]string {
	if v == nil || v.Data == nil {
		return nil
	}
	return v.Data.Attrs
}

func handlersOf(v *VNode) map[string]EventHandler {
	if v == nil || v.Data == nil {
		return nil
	}
	return v.Data.On
}

func propsOf(v *VNode) map[string]any {
	if v == nil || v.Data == nil {
		return nil
	}
	return v.Data.Props
}

// classString renders the Class set as a deterministic class attribute.
func classString(v *VNode) string {
	if v == nil || v.Data == nil || len(v.Data.Class) == 0 {
		return ""
	}
	names := make([]string, 0, len(v.Data.Class))
	for name, on := range v.Data.Class {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

// styleString renders the Style map as a deterministic style attribute.
func styleString(v *VNode) string {
	if v == nil || v.Data == nil || len(v.Data.Style) == 0 {
		return ""
	}
	props := make([]string, 0, len(v.Data.Style))
	for name := range v.Data.Style {
		props = append(props, name)
	}
	sort.Strings(props)
	var b strings.Builder
	for i, name := range props {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(v.Data.Style[name])
	}
	return b.String()
}
