package vdom

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/vireo-ui/vireo/internal/errors"
)

// Hydrate binds the vnode tree to an existing backing subtree rooted at
// elm (typically server-rendered markup) instead of creating it from
// scratch. Text mismatches are repaired in place. A structural mismatch
// returns a CodeHydrationMismatch error carrying a unified diff of the
// two renderings; unless strict is set, the mismatched tree is also
// recreated from scratch so the caller ends up with a usable tree either
// way.
//
// The patcher's backend must implement HydrationBackend.
func (p *Patcher) Hydrate(elm Node, vnode *VNode, strict bool) (Node, error) {
	hb, ok := p.backend.(HydrationBackend)
	if !ok {
		return nil, errors.New(errors.CodeHydrationMismatch).
			WithDetail("backend %T does not support hydration", p.backend)
	}

	p.insertQueue = nil
	if p.hydrateNode(hb, elm, vnode) {
		for _, v := range p.insertQueue {
			v.hooks().Insert(v)
		}
		p.insertQueue = nil
		return vnode.Elm, nil
	}

	err := p.mismatchError(hb, elm, vnode)
	if strict {
		return nil, err
	}

	// Bail out: throw the server markup away and client-render.
	parent := hb.ParentNode(elm)
	ref := hb.NextSibling(elm)
	p.insertQueue = nil
	p.createElm(vnode, parent, ref)
	if parent != nil {
		hb.RemoveChild(parent, elm)
	}
	for _, v := range p.insertQueue {
		v.hooks().Insert(v)
	}
	p.insertQueue = nil
	return vnode.Elm, err
}

func (p *Patcher) hydrateNode(hb HydrationBackend, elm Node, vnode *VNode) bool {
	if h := vnode.hooks(); h != nil && h.Init != nil {
		h.Init(vnode)
	}

	switch vnode.Kind {
	case KindText:
		if hb.NodeKind(elm) != KindText {
			return false
		}
		if hb.NodeText(elm) != vnode.Text {
			// Server and client text disagree; the client wins.
			hb.SetTextContent(elm, vnode.Text)
		}
		vnode.Elm = elm
		return true

	case KindComment, KindAsync:
		if hb.NodeKind(elm) != KindComment {
			return false
		}
		vnode.Elm = elm
		return true

	default:
		if hb.NodeKind(elm) != KindElement {
			return false
		}
		if !strings.EqualFold(hb.TagName(elm), vnode.Tag) {
			return false
		}
		vnode.Elm = elm

		existing := hb.ChildNodes(elm)
		switch {
		case vnode.HasChildren():
			if len(existing) != len(vnode.Children) {
				return false
			}
			for i, child := range vnode.Children {
				if !p.hydrateNode(hb, existing[i], child) {
					return false
				}
			}
		case vnode.Text != "":
			if len(existing) != 1 || hb.NodeKind(existing[0]) != KindText {
				return false
			}
			if hb.NodeText(existing[0]) != vnode.Text {
				hb.SetTextContent(existing[0], vnode.Text)
			}
		default:
			if len(existing) != 0 {
				return false
			}
		}

		// Attach listeners and reconcile attributes the server could not
		// have rendered (properties, handlers).
		if vnode.Data != nil {
			p.invokeCreateHooks(vnode)
		}
		p.queueInsertHook(vnode)
		return true
	}
}

// mismatchError builds the E004 report with a unified diff between what
// the client expected and what the server rendered.
func (p *Patcher) mismatchError(hb HydrationBackend, elm Node, vnode *VNode) error {
	expected := VNodeHTML(vnode)
	actual := hb.OuterHTML(elm)
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(actual),
		B:        difflib.SplitLines(expected),
		FromFile: "server",
		ToFile:   "client",
		Context:  3,
	})
	return errors.New(errors.CodeHydrationMismatch).
		WithDetail("server-rendered markup does not match the client tree:\n%s", diff)
}

// VNodeHTML serializes a vnode tree to HTML, primarily for mismatch
// reports. It ignores properties and event handlers since those never
// appear in markup.
func VNodeHTML(v *VNode) string {
	var b strings.Builder
	writeVNodeHTML(&b, v)
	return b.String()
}

func writeVNodeHTML(b *strings.Builder, v *VNode) {
	switch v.Kind {
	case KindText:
		b.WriteString(escapeText(v.Text))
		return
	case KindComment, KindAsync:
		b.WriteString("<!--")
		b.WriteString(v.Text)
		b.WriteString("-->")
		return
	}

	b.WriteByte('<')
	b.WriteString(v.Tag)
	for _, kv := range sortedAttrs(v) {
		b.WriteByte(' ')
		b.WriteString(kv[0])
		b.WriteString(`="`)
		b.WriteString(escapeAttr(kv[1]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if v.HasChildren() {
		for _, c := range v.Children {
			writeVNodeHTML(b, c)
		}
	} else if v.Text != "" {
		b.WriteString(escapeText(v.Text))
	}
	b.WriteString("</")
	b.WriteString(v.Tag)
	b.WriteByte('>')
}

func sortedAttrs(v *VNode) [][2]string {
	if v.Data == nil {
		return nil
	}
	var out [][2]string
	for k, val := range v.Data.Attrs {
		out = append(out, [2]string{k, val})
	}
	if cls := classString(v); cls != "" {
		out = append(out, [2]string{"class", cls})
	}
	if st := styleString(v); st != "" {
		out = append(out, [2]string{"style", st})
	}
	if v.Data.ScopeID != "" {
		out = append(out, [2]string{"data-v-" + v.Data.ScopeID, ""})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
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
