package vdom_test

import (
	"testing"

	"github.com/vireo-ui/vireo/pkg/memdom"
	"github.com/vireo-ui/vireo/pkg/protocol"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

func newPatcher() (*vdom.Patcher, *memdom.Document) {
	doc := memdom.NewDocument()
	p := vdom.NewPatcher(doc, vdom.DefaultModules(doc)...)
	return p, doc
}

func li(key, text string) *vdom.VNode {
	return vdom.KeyedElement(key, "li", &vdom.NodeData{}, vdom.Text(text))
}

func TestInitialMount(t *testing.T) {
	p, doc := newPatcher()
	tree := vdom.Element("div", &vdom.NodeData{
		Attrs: map[string]string{"id": "app"},
		Class: map[string]bool{"main": true, "hidden": false},
	}, vdom.Text("hello"))

	elm := p.Patch(nil, tree, doc.Root())
	if elm == nil || tree.Elm != elm {
		t.Fatal("mount should bind the root element")
	}

	got := memdom.RenderChildren(doc.Root())
	want := `<div class="main" id="app">hello</div>`
	if got != want {
		t.Errorf("rendered tree:\n want %s\n got  %s", want, got)
	}
}

func TestTextUpdatePreservesElement(t *testing.T) {
	p, doc := newPatcher()
	oldTree := vdom.Element("p", &vdom.NodeData{}, vdom.Text("one"))
	p.Patch(nil, oldTree, doc.Root())
	firstElm := oldTree.Elm

	newTree := vdom.Element("p", &vdom.NodeData{}, vdom.Text("two"))
	p.Patch(oldTree, newTree, nil)

	if newTree.Elm != firstElm {
		t.Error("same-node update must reuse the backing element")
	}
	if got := memdom.RenderChildren(doc.Root()); got != "<p>two</p>" {
		t.Errorf("got %s", got)
	}
}

func TestAttrDiff(t *testing.T) {
	p, doc := newPatcher()
	oldTree := vdom.Element("a", &vdom.NodeData{Attrs: map[string]string{"href": "/x", "rel": "nofollow"}})
	p.Patch(nil, oldTree, doc.Root())

	newTree := vdom.Element("a", &vdom.NodeData{Attrs: map[string]string{"href": "/y"}})
	p.Patch(oldTree, newTree, nil)

	if got := memdom.RenderChildren(doc.Root()); got != `<a href="/y"></a>` {
		t.Errorf("got %s", got)
	}
}

func TestRootReplacement(t *testing.T) {
	p, doc := newPatcher()
	oldTree := vdom.Element("div", nil, vdom.Text("x"))
	p.Patch(nil, oldTree, doc.Root())

	newTree := vdom.Element("section", &vdom.NodeData{}, vdom.Text("y"))
	p.Patch(oldTree, newTree, nil)
	if got := memdom.RenderChildren(doc.Root()); got != "<section>y</section>" {
		t.Errorf("got %s", got)
	}
	if newTree.Elm == oldTree.Elm {
		t.Error("different tags must not share a backing element")
	}
}

func TestKeyedReorderReusesElements(t *testing.T) {
	doc := memdom.NewDocument()
	rec := memdom.NewRecorder(doc)
	p := vdom.NewPatcher(rec, vdom.DefaultModules(rec)...)

	oldTree := vdom.Element("ul", &vdom.NodeData{}, li("a", "A"), li("b", "B"), li("c", "C"))
	p.Patch(nil, oldTree, doc.Root())
	rec.Take()

	elms := map[string]vdom.Node{}
	for _, c := range oldTree.Children {
		elms[c.Key] = c.Elm
	}

	newTree := vdom.Element("ul", &vdom.NodeData{}, li("c", "C"), li("a", "A"), li("b", "B"))
	p.Patch(oldTree, newTree, nil)

	for _, c := range newTree.Children {
		if c.Elm != elms[c.Key] {
			t.Errorf("key %s: element was recreated instead of moved", c.Key)
		}
	}
	for _, patch := range rec.Take() {
		if patch.Op != protocol.PatchMoveNode {
			t.Errorf("reorder should emit only moves, got %v", patch.Op)
		}
	}
	if got := memdom.RenderChildren(doc.Root()); got != "<ul><li>C</li><li>A</li><li>B</li></ul>" {
		t.Errorf("got %s", got)
	}
}

func TestKeyedInsertAndRemove(t *testing.T) {
	p, doc := newPatcher()
	oldTree := vdom.Element("ul", &vdom.NodeData{}, li("a", "A"), li("b", "B"))
	p.Patch(nil, oldTree, doc.Root())

	newTree := vdom.Element("ul", &vdom.NodeData{}, li("b", "B"), li("x", "X"))
	p.Patch(oldTree, newTree, nil)

	if got := memdom.RenderChildren(doc.Root()); got != "<ul><li>B</li><li>X</li></ul>" {
		t.Errorf("got %s", got)
	}
	if newTree.Children[0].Elm != oldTree.Children[1].Elm {
		t.Error("surviving key must keep its element")
	}
}

func TestRemoveOnlySuppressesMoves(t *testing.T) {
	doc := memdom.NewDocument()
	rec := memdom.NewRecorder(doc)
	p := vdom.NewPatcher(rec, vdom.DefaultModules(rec)...)

	oldTree := vdom.Element("ul", &vdom.NodeData{}, li("a", "A"), li("b", "B"), li("c", "C"))
	p.Patch(nil, oldTree, doc.Root())
	rec.Take()

	// Same reorder as the move test, but in remove-only mode the nodes
	// stay where they are.
	newTree := vdom.Element("ul", &vdom.NodeData{}, li("c", "C"), li("a", "A"), li("b", "B"))
	p.PatchRemoveOnly(oldTree, newTree)

	for _, patch := range rec.Take() {
		if patch.Op == protocol.PatchMoveNode || patch.Op == protocol.PatchInsertNode {
			t.Errorf("remove-only patch emitted %v", patch.Op)
		}
	}
	// Elements are still reused and bound.
	for i, c := range newTree.Children {
		if c.Elm == nil {
			t.Errorf("child %d not bound", i)
		}
	}
}

func TestInputTypeChangeRecreates(t *testing.T) {
	p, doc := newPatcher()
	oldTree := vdom.Element("input", &vdom.NodeData{Attrs: map[string]string{"type": "text"}})
	p.Patch(nil, oldTree, doc.Root())

	newTree := vdom.Element("input", &vdom.NodeData{Attrs: map[string]string{"type": "checkbox"}})
	p.Patch(oldTree, newTree, nil)

	if newTree.Elm == oldTree.Elm {
		t.Error("inputs of different subtypes must not be reused in place")
	}
	if got := memdom.RenderChildren(doc.Root()); got != `<input type="checkbox">` {
		t.Errorf("got %s", got)
	}
}

func TestChildrenToTextAndBack(t *testing.T) {
	p, doc := newPatcher()
	withChildren := vdom.Element("div", &vdom.NodeData{}, vdom.Element("span", nil, vdom.Text("s")))
	p.Patch(nil, withChildren, doc.Root())

	asText := vdom.Element("div", &vdom.NodeData{})
	asText.Text = "plain"
	p.Patch(withChildren, asText, nil)
	if got := memdom.RenderChildren(doc.Root()); got != "<div>plain</div>" {
		t.Errorf("got %s", got)
	}

	back := vdom.Element("div", &vdom.NodeData{}, vdom.Element("span", nil, vdom.Text("s2")))
	p.Patch(asText, back, nil)
	if got := memdom.RenderChildren(doc.Root()); got != "<div><span>s2</span></div>" {
		t.Errorf("got %s", got)
	}
}

func TestInsertHookRunsAfterAttach(t *testing.T) {
	p, doc := newPatcher()

	attachedAtHook := false
	tree := vdom.Element("div", &vdom.NodeData{Hooks: &vdom.Hooks{
		Insert: func(v *vdom.VNode) {
			attachedAtHook = doc.Attached(v.Elm.(*memdom.MemNode))
		},
	}})

	p.Patch(nil, tree, doc.Root())
	if !attachedAtHook {
		t.Error("insert hook must run after the node is in the tree")
	}
}

func TestDestroyHooksFireForSubtree(t *testing.T) {
	p, doc := newPatcher()

	var destroyed []string
	hook := func(name string) *vdom.Hooks {
		return &vdom.Hooks{Destroy: func(*vdom.VNode) { destroyed = append(destroyed, name) }}
	}
	oldTree := vdom.Element("div", &vdom.NodeData{Hooks: hook("parent")},
		vdom.Element("span", &vdom.NodeData{Hooks: hook("child")}))
	p.Patch(nil, oldTree, doc.Root())

	p.Patch(oldTree, nil, nil)
	if len(destroyed) != 2 || destroyed[0] != "parent" || destroyed[1] != "child" {
		t.Errorf("expected parent,child destroy order, got %v", destroyed)
	}
	if got := memdom.RenderChildren(doc.Root()); got != "" {
		t.Errorf("tree should be empty, got %s", got)
	}
}

func TestEventsModuleBindsHandlers(t *testing.T) {
	p, doc := newPatcher()

	clicks := 0
	tree := vdom.Element("button", &vdom.NodeData{On: map[string]vdom.EventHandler{
		"click": func(vdom.Event) { clicks++ },
	}}, vdom.Text("go"))
	p.Patch(nil, tree, doc.Root())

	btn := tree.Elm.(*memdom.MemNode)
	btn.Dispatch(vdom.Event{Type: "click"})
	if clicks != 1 {
		t.Errorf("expected 1 click, got %d", clicks)
	}

	// Removing the handler on update detaches it.
	next := vdom.Element("button", &vdom.NodeData{}, vdom.Text("go"))
	p.Patch(tree, next, nil)
	if btn.Dispatch(vdom.Event{Type: "click"}) {
		t.Error("handler should be removed")
	}
}

func TestDuplicateKeyWarning(t *testing.T) {
	p, doc := newPatcher()
	var warnings []string
	p.Warn = func(msg string) { warnings = append(warnings, msg) }

	oldTree := vdom.Element("ul", &vdom.NodeData{}, li("a", "A"), li("b", "B"))
	p.Patch(nil, oldTree, doc.Root())

	newTree := vdom.Element("ul", &vdom.NodeData{}, li("a", "A"), li("a", "A2"), li("b", "B"))
	p.Patch(oldTree, newTree, nil)

	if len(warnings) != 1 {
		t.Errorf("expected one duplicate-key warning, got %v", warnings)
	}
}

func TestStaticSubtreeShortCircuit(t *testing.T) {
	p, doc := newPatcher()
	oldTree := vdom.Element("div", &vdom.NodeData{}, vdom.Text("static"))
	oldTree.Static = true
	p.Patch(nil, oldTree, doc.Root())

	newTree := vdom.Clone(oldTree)
	newTree.Elm = nil
	p.Patch(oldTree, newTree, nil)

	if newTree.Elm != oldTree.Elm {
		t.Error("cloned static tree should adopt the old rendering")
	}
	_ = doc
}

func TestPropsDiffHandlesUncomparableValues(t *testing.T) {
	p, doc := newPatcher()
	oldTree := vdom.Element("select", &vdom.NodeData{
		Props: map[string]any{"options": []string{"a"}},
	})
	p.Patch(nil, oldTree, doc.Root())

	newTree := vdom.Element("select", &vdom.NodeData{
		Props: map[string]any{"options": []string{"a", "b"}},
	})
	p.Patch(oldTree, newTree, nil)

	elm := newTree.Elm.(*memdom.MemNode)
	got, ok := elm.Props["options"].([]string)
	if !ok || len(got) != 2 || got[1] != "b" {
		t.Fatalf("options prop = %#v, want [a b]", elm.Props["options"])
	}
}

func TestPropsEqualSliceEmitsNoPatch(t *testing.T) {
	doc := memdom.NewDocument()
	rec := memdom.NewRecorder(doc)
	p := vdom.NewPatcher(rec, vdom.DefaultModules(rec)...)

	oldTree := vdom.Element("div", &vdom.NodeData{
		Props: map[string]any{"tags": []string{"x", "y"}},
	})
	p.Patch(nil, oldTree, doc.Root())
	rec.Take()

	newTree := vdom.Element("div", &vdom.NodeData{
		Props: map[string]any{"tags": []string{"x", "y"}},
	})
	p.Patch(oldTree, newTree, nil)

	for _, pt := range rec.Take() {
		if pt.Op == protocol.PatchSetProp {
			t.Fatalf("equal slice prop re-sent: %+v", pt)
		}
	}
}

func TestNestedPatchKeepsQueuedInsertHooks(t *testing.T) {
	p, doc := newPatcher()
	var order []string

	inner := vdom.Element("span", &vdom.NodeData{}, vdom.Text("inner"))
	outer := vdom.Element("div", &vdom.NodeData{
		Hooks: &vdom.Hooks{Insert: func(*vdom.VNode) { order = append(order, "outer") }},
	},
		vdom.Element("em", &vdom.NodeData{
			Hooks: &vdom.Hooks{Insert: func(*vdom.VNode) { order = append(order, "em") }},
		}),
		vdom.Element("section", &vdom.NodeData{
			Hooks: &vdom.Hooks{
				Init: func(v *vdom.VNode) {
					host := doc.CreateElement("section", "")
					p.Patch(nil, inner, host)
					v.Elm = host
				},
				Insert: func(*vdom.VNode) { order = append(order, "section") },
			},
		}),
	)

	p.Patch(nil, outer, doc.Root())

	want := []string{"em", "section", "outer"}
	if len(order) != len(want) {
		t.Fatalf("insert hooks fired = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("insert hooks fired = %v, want %v", order, want)
		}
	}
}
