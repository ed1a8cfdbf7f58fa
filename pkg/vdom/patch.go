package vdom

// Patcher reconciles a new vnode tree against the previous one and applies
// the difference to a backing tree. A Patcher is not safe for concurrent
// use; the runtime drives it from the scheduler goroutine.
type Patcher struct {
	backend Backend
	modules []Module

	// Warn receives non-fatal reconciliation diagnostics (for example
	// duplicate keys in a child list). Nil means silent.
	Warn func(msg string)

	// insertQueue collects vnodes whose Insert hook must fire after the
	// whole patch landed, outermost last.
	insertQueue []*VNode
}

// NewPatcher builds a Patcher over the given backend and module set.
func NewPatcher(backend Backend, modules ...Module) *Patcher {
	return &Patcher{backend: backend, modules: modules}
}

// Patch diffs newTree against oldTree and mutates the backing tree to
// match. oldTree may be nil for an initial mount into container. It
// returns the root backing node of the new tree.
func (p *Patcher) Patch(oldTree, newTree *VNode, container Node) Node {
	return p.patch(oldTree, newTree, container, false)
}

// PatchRemoveOnly is Patch with move suppression: keyed children may be
// removed or updated in place but never moved. Used while a leave
// transition holds removed nodes in the tree.
func (p *Patcher) PatchRemoveOnly(oldTree, newTree *VNode) Node {
	return p.patch(oldTree, newTree, nil, true)
}

func (p *Patcher) patch(oldTree, newTree *VNode, container Node, removeOnly bool) Node {
	if newTree == nil {
		if oldTree != nil {
			p.invokeDestroyHook(oldTree)
			if oldTree.Elm != nil {
				if parent := p.backend.ParentNode(oldTree.Elm); parent != nil {
					p.backend.RemoveChild(parent, oldTree.Elm)
				}
			}
		}
		return nil
	}

	// An Init hook may re-enter this Patcher for a nested tree; the outer
	// call's queued insert hooks must survive that.
	saved := p.insertQueue
	p.insertQueue = nil

	if oldTree == nil {
		// Initial mount.
		p.createElm(newTree, container, nil)
	} else if sameVNode(oldTree, newTree) {
		p.patchVnode(oldTree, newTree, removeOnly)
	} else {
		// Root replacement: build the new tree next to the old one, then
		// drop the old one.
		oldElm := oldTree.Elm
		parent := container
		if parent == nil && oldElm != nil {
			parent = p.backend.ParentNode(oldElm)
		}
		var ref Node
		if oldElm != nil {
			ref = p.backend.NextSibling(oldElm)
		}
		p.createElm(newTree, parent, ref)
		if oldElm != nil && parent != nil {
			p.invokeDestroyHook(oldTree)
			p.backend.RemoveChild(parent, oldElm)
		}
	}

	queued := p.insertQueue
	p.insertQueue = saved
	for _, v := range queued {
		v.hooks().Insert(v)
	}

	return newTree.Elm
}

// createElm builds the backing subtree for vnode and inserts it into
// parent before ref (appends when ref is nil).
func (p *Patcher) createElm(vnode *VNode, parent, ref Node) {
	if h := vnode.hooks(); h != nil && h.Init != nil {
		h.Init(vnode)
		// A component Init renders its own subtree and binds Elm itself;
		// all that remains is insertion.
		if vnode.Elm != nil {
			p.insert(parent, vnode.Elm, ref)
			p.queueInsertHook(vnode)
			return
		}
	}

	switch vnode.Kind {
	case KindText:
		vnode.Elm = p.backend.CreateText(vnode.Text)
	case KindComment, KindAsync:
		vnode.Elm = p.backend.CreateComment(vnode.Text)
	default:
		ns := vnode.NS
		if ns == "" {
			ns = p.backend.TagNamespace(vnode.Tag)
		}
		vnode.Elm = p.backend.CreateElement(vnode.Tag, ns)
		if vnode.Data != nil && vnode.Data.ScopeID != "" {
			p.backend.SetScopeAttr(vnode.Elm, vnode.Data.ScopeID)
		}
		for _, child := range vnode.Children {
			p.createElm(child, vnode.Elm, nil)
		}
		if !vnode.HasChildren() && vnode.Text != "" {
			p.backend.AppendChild(vnode.Elm, p.backend.CreateText(vnode.Text))
		}
		if vnode.Data != nil {
			p.invokeCreateHooks(vnode)
		}
	}

	p.insert(parent, vnode.Elm, ref)
	p.queueInsertHook(vnode)
}

func (p *Patcher) insert(parent, node, ref Node) {
	if parent == nil || node == nil {
		return
	}
	if ref != nil {
		p.backend.InsertBefore(parent, node, ref)
	} else {
		p.backend.AppendChild(parent, node)
	}
}

func (p *Patcher) queueInsertHook(vnode *VNode) {
	if h := vnode.hooks(); h != nil && h.Insert != nil {
		p.insertQueue = append(p.insertQueue, vnode)
	}
}

func (p *Patcher) invokeCreateHooks(vnode *VNode) {
	for _, m := range p.modules {
		if m.Create != nil {
			m.Create(emptyVNode, vnode)
		}
	}
}

// patchVnode diffs two same-nodes in place.
func (p *Patcher) patchVnode(old, vnode *VNode, removeOnly bool) {
	if old == vnode {
		return
	}
	vnode.Elm = old.Elm
	elm := vnode.Elm

	// Static subtrees are diffed once and then reused wholesale; a cloned
	// static tree or a v-once node may adopt the old rendering outright.
	if vnode.Static && old.Static && vnode.Key == old.Key && (vnode.Cloned || vnode.Once) {
		vnode.Component = old.Component
		return
	}

	h := vnode.hooks()
	if h != nil && h.Prepatch != nil {
		h.Prepatch(old, vnode)
	}

	if vnode.Data != nil {
		for _, m := range p.modules {
			if m.Update != nil {
				m.Update(old, vnode)
			}
		}
		if h != nil && h.Update != nil {
			h.Update(old, vnode)
		}
	}

	if vnode.Kind == KindText || vnode.Kind == KindComment {
		if old.Text != vnode.Text {
			p.backend.SetTextContent(elm, vnode.Text)
		}
	} else if vnode.Text == "" {
		switch {
		case old.HasChildren() && vnode.HasChildren():
			p.updateChildren(elm, old.Children, vnode.Children, removeOnly)
		case vnode.HasChildren():
			if old.Text != "" {
				p.backend.SetTextContent(elm, "")
			}
			p.addVnodes(elm, nil, vnode.Children, 0, len(vnode.Children)-1)
		case old.HasChildren():
			p.removeVnodes(elm, old.Children, 0, len(old.Children)-1)
		case old.Text != "":
			p.backend.SetTextContent(elm, "")
		}
	} else if old.Text != vnode.Text {
		p.backend.SetTextContent(elm, vnode.Text)
	}

	if h != nil && h.Postpatch != nil {
		h.Postpatch(old, vnode)
	}
}

// updateChildren is the four-pointer keyed child-list diff. Both lists are
// walked from both ends at once; the common prefix/suffix and the two
// reversal cases are resolved without key lookups, and only the remaining
// middle falls back to the key index.
func (p *Patcher) updateChildren(parent Node, oldCh, newCh []*VNode, removeOnly bool) {
	oldStartIdx, newStartIdx := 0, 0
	oldEndIdx := len(oldCh) - 1
	newEndIdx := len(newCh) - 1
	oldStart, oldEnd := oldCh[0], oldCh[oldEndIdx]
	newStart, newEnd := newCh[0], newCh[newEndIdx]

	var oldKeyToIdx map[string]int
	canMove := !removeOnly

	p.checkDuplicateKeys(newCh)

	for oldStartIdx <= oldEndIdx && newStartIdx <= newEndIdx {
		switch {
		case oldStart == nil:
			// Vacated by a keyed move below.
			oldStartIdx++
			if oldStartIdx <= oldEndIdx {
				oldStart = oldCh[oldStartIdx]
			}
		case oldEnd == nil:
			oldEndIdx--
			if oldStartIdx <= oldEndIdx {
				oldEnd = oldCh[oldEndIdx]
			}
		case sameVNode(oldStart, newStart):
			p.patchVnode(oldStart, newStart, removeOnly)
			oldStartIdx++
			newStartIdx++
			if oldStartIdx <= oldEndIdx {
				oldStart = oldCh[oldStartIdx]
			}
			if newStartIdx <= newEndIdx {
				newStart = newCh[newStartIdx]
			}
		case sameVNode(oldEnd, newEnd):
			p.patchVnode(oldEnd, newEnd, removeOnly)
			oldEndIdx--
			newEndIdx--
			if oldStartIdx <= oldEndIdx {
				oldEnd = oldCh[oldEndIdx]
			}
			if newStartIdx <= newEndIdx {
				newEnd = newCh[newEndIdx]
			}
		case sameVNode(oldStart, newEnd):
			// Old head moved right.
			p.patchVnode(oldStart, newEnd, removeOnly)
			if canMove {
				p.backend.InsertBefore(parent, oldStart.Elm, p.backend.NextSibling(oldEnd.Elm))
			}
			oldStartIdx++
			newEndIdx--
			if oldStartIdx <= oldEndIdx {
				oldStart = oldCh[oldStartIdx]
			}
			if newStartIdx <= newEndIdx {
				newEnd = newCh[newEndIdx]
			}
		case sameVNode(oldEnd, newStart):
			// Old tail moved left.
			p.patchVnode(oldEnd, newStart, removeOnly)
			if canMove {
				p.backend.InsertBefore(parent, oldEnd.Elm, oldStart.Elm)
			}
			oldEndIdx--
			newStartIdx++
			if oldStartIdx <= oldEndIdx {
				oldEnd = oldCh[oldEndIdx]
			}
			if newStartIdx <= newEndIdx {
				newStart = newCh[newStartIdx]
			}
		default:
			if oldKeyToIdx == nil {
				oldKeyToIdx = buildKeyIndex(oldCh, oldStartIdx, oldEndIdx)
			}
			idx, found := -1, false
			if newStart.Key != "" {
				idx, found = lookupKey(oldKeyToIdx, newStart.Key)
			} else {
				idx, found = findSameNode(oldCh, newStart, oldStartIdx, oldEndIdx)
			}
			if !found {
				p.createElm(newStart, parent, oldStart.Elm)
			} else {
				toMove := oldCh[idx]
				if sameVNode(toMove, newStart) {
					p.patchVnode(toMove, newStart, removeOnly)
					oldCh[idx] = nil
					if canMove {
						p.backend.InsertBefore(parent, toMove.Elm, oldStart.Elm)
					}
				} else {
					// Same key but a different element: treat as new.
					p.createElm(newStart, parent, oldStart.Elm)
				}
			}
			newStartIdx++
			if newStartIdx <= newEndIdx {
				newStart = newCh[newStartIdx]
			}
		}
	}

	if oldStartIdx > oldEndIdx {
		// Old list exhausted; everything left in new is an insertion,
		// anchored before the node after the new tail.
		var ref Node
		if newEndIdx+1 < len(newCh) {
			ref = newCh[newEndIdx+1].Elm
		}
		p.addVnodes(parent, ref, newCh, newStartIdx, newEndIdx)
	} else if newStartIdx > newEndIdx {
		p.removeVnodes(parent, oldCh, oldStartIdx, oldEndIdx)
	}
}

func buildKeyIndex(children []*VNode, start, end int) map[string]int {
	index := make(map[string]int, end-start+1)
	for i := start; i <= end; i++ {
		if c := children[i]; c != nil && c.Key != "" {
			index[c.Key] = i
		}
	}
	return index
}

func lookupKey(index map[string]int, key string) (int, bool) {
	i, ok := index[key]
	return i, ok
}

// findSameNode scans for an unkeyed old child reusable for vnode.
func findSameNode(children []*VNode, vnode *VNode, start, end int) (int, bool) {
	for i := start; i <= end; i++ {
		if c := children[i]; c != nil && c.Key == "" && sameVNode(c, vnode) {
			return i, true
		}
	}
	return -1, false
}

func (p *Patcher) checkDuplicateKeys(children []*VNode) {
	if p.Warn == nil {
		return
	}
	var seen map[string]bool
	for _, c := range children {
		if c == nil || c.Key == "" {
			continue
		}
		if seen == nil {
			seen = make(map[string]bool)
		}
		if seen[c.Key] {
			p.Warn("duplicate key in child list: " + c.Key)
		}
		seen[c.Key] = true
	}
}

func (p *Patcher) addVnodes(parent Node, ref Node, vnodes []*VNode, start, end int) {
	for i := start; i <= end; i++ {
		p.createElm(vnodes[i], parent, ref)
	}
}

func (p *Patcher) removeVnodes(parent Node, vnodes []*VNode, start, end int) {
	for i := start; i <= end; i++ {
		v := vnodes[i]
		if v == nil {
			continue
		}
		p.invokeDestroyHook(v)
		if v.Elm != nil {
			p.backend.RemoveChild(parent, v.Elm)
		}
	}
}

// invokeDestroyHook fires destroy hooks depth-last over the subtree.
func (p *Patcher) invokeDestroyHook(vnode *VNode) {
	if h := vnode.hooks(); h != nil && h.Destroy != nil {
		h.Destroy(vnode)
	}
	if vnode.Data != nil {
		for _, m := range p.modules {
			if m.Destroy != nil {
				m.Destroy(vnode)
			}
		}
	}
	for _, child := range vnode.Children {
		if child != nil {
			p.invokeDestroyHook(child)
		}
	}
}
