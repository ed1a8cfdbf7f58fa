package vdom_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/vireo-ui/vireo/pkg/memdom"
	"github.com/vireo-ui/vireo/pkg/vdom"

	vireoerrors "github.com/vireo-ui/vireo/internal/errors"
)

// parseInto parses markup and attaches the single top-level node under
// the document root, the way server-rendered output arrives.
func parseInto(t *testing.T, doc *memdom.Document, markup string) *memdom.MemNode {
	t.Helper()
	nodes, err := doc.ParseHTML(markup)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected one node, got %d", len(nodes))
	}
	doc.AppendChild(doc.Root(), nodes[0])
	return nodes[0]
}

func TestHydrateBindsExistingTree(t *testing.T) {
	p, doc := newPatcher()
	root := parseInto(t, doc, `<div id="app"><span>hi</span></div>`)

	clicks := 0
	tree := vdom.Element("div", &vdom.NodeData{Attrs: map[string]string{"id": "app"}},
		vdom.Element("span", &vdom.NodeData{On: map[string]vdom.EventHandler{
			"click": func(vdom.Event) { clicks++ },
		}}, vdom.Text("hi")))

	elm, err := p.Hydrate(root, tree, false)
	if err != nil {
		t.Fatalf("hydration should succeed: %v", err)
	}
	if elm != vdom.Node(root) {
		t.Error("hydration must bind to the existing node, not create one")
	}
	if tree.Children[0].Elm == nil {
		t.Fatal("child not bound")
	}

	// Listeners attach during hydration.
	span := tree.Children[0].Elm.(*memdom.MemNode)
	span.Dispatch(vdom.Event{Type: "click"})
	if clicks != 1 {
		t.Errorf("expected hydrated handler to fire, got %d", clicks)
	}
}

func TestHydrateRepairsTextMismatch(t *testing.T) {
	p, doc := newPatcher()
	root := parseInto(t, doc, `<p>server text</p>`)

	tree := vdom.Element("p", &vdom.NodeData{}, vdom.Text("client text"))
	if _, err := p.Hydrate(root, tree, false); err != nil {
		t.Fatalf("text mismatch must hydrate with repair: %v", err)
	}
	if got := memdom.RenderChildren(doc.Root()); got != "<p>client text</p>" {
		t.Errorf("got %s", got)
	}
}

func TestHydrateStructuralMismatchRecreates(t *testing.T) {
	p, doc := newPatcher()
	root := parseInto(t, doc, `<div><span>a</span></div>`)

	tree := vdom.Element("div", &vdom.NodeData{},
		vdom.Element("em", &vdom.NodeData{}, vdom.Text("a")))

	_, err := p.Hydrate(root, tree, false)
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	var re *vireoerrors.RuntimeError
	if !errors.As(err, &re) || re.Code != vireoerrors.CodeHydrationMismatch {
		t.Fatalf("expected hydration mismatch code, got %v", err)
	}
	if !strings.Contains(re.Detail, "<span>") {
		t.Errorf("mismatch detail should carry a diff, got %q", re.Detail)
	}

	// The tree was recreated from the client rendering anyway.
	if got := memdom.RenderChildren(doc.Root()); got != "<div><em>a</em></div>" {
		t.Errorf("got %s", got)
	}
}

func TestHydrateStrictDoesNotTouchTree(t *testing.T) {
	p, doc := newPatcher()
	root := parseInto(t, doc, `<div><span>a</span></div>`)

	tree := vdom.Element("div", &vdom.NodeData{},
		vdom.Element("em", &vdom.NodeData{}, vdom.Text("a")))

	if _, err := p.Hydrate(root, tree, true); err == nil {
		t.Fatal("expected mismatch error")
	}
	if got := memdom.RenderChildren(doc.Root()); got != "<div><span>a</span></div>" {
		t.Errorf("strict mode must leave the tree alone, got %s", got)
	}
}

func TestHydratedTreePatchesNormally(t *testing.T) {
	p, doc := newPatcher()
	root := parseInto(t, doc, `<ul><li>one</li><li>two</li></ul>`)

	oldTree := vdom.Element("ul", &vdom.NodeData{},
		vdom.Element("li", &vdom.NodeData{}, vdom.Text("one")),
		vdom.Element("li", &vdom.NodeData{}, vdom.Text("two")))
	if _, err := p.Hydrate(root, oldTree, false); err != nil {
		t.Fatal(err)
	}

	newTree := vdom.Element("ul", &vdom.NodeData{},
		vdom.Element("li", &vdom.NodeData{}, vdom.Text("one")),
		vdom.Element("li", &vdom.NodeData{}, vdom.Text("2")))
	p.Patch(oldTree, newTree, nil)

	if got := memdom.RenderChildren(doc.Root()); got != "<ul><li>one</li><li>2</li></ul>" {
		t.Errorf("got %s", got)
	}
	if newTree.Children[1].Elm != oldTree.Children[1].Elm {
		t.Error("patch after hydration must reuse hydrated elements")
	}
}
