package reactive

// Scope is an ownership boundary for watchers, typically one per component
// instance. Scopes form a tree mirroring the component tree: destroying a
// scope tears down its child scopes and all watchers it owns.
type Scope struct {
	id       uint64
	parent   *Scope
	children []*Scope
	watchers []*Watcher

	// renderWatcher is the scope's render watcher, when it has one.
	// Used by the scheduler's post-flush updated pass.
	renderWatcher *Watcher

	mounted        bool
	destroyed      bool
	beingDestroyed bool

	// inactive tracks keep-alive deactivation state.
	inactive bool

	mountedHooks     []func()
	updatedHooks     []func()
	activatedHooks   []func()
	deactivatedHooks []func()
	destroyedHooks   []func()

	// errCapture, when set, sees errors bubbling up from this scope's
	// subtree. Returning true suppresses further propagation.
	errCapture func(err error, info string) bool
}

// NewScope creates a scope under parent. A nil parent creates a root scope.
func NewScope(parent *Scope) *Scope {
	s := &Scope{id: nextScopeID(), parent: parent}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 { return s.id }

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Mounted reports whether the scope has completed its first render.
func (s *Scope) Mounted() bool { return s.mounted }

// MarkMounted records that the scope's first render has completed.
func (s *Scope) MarkMounted() { s.mounted = true }

// Destroyed reports whether the scope has been destroyed.
func (s *Scope) Destroyed() bool { return s.destroyed }

// Inactive reports whether the scope is deactivated under keep-alive.
func (s *Scope) Inactive() bool { return s.inactive }

// SetRenderWatcher associates the scope's render watcher.
func (s *Scope) SetRenderWatcher(w *Watcher) { s.renderWatcher = w }

// RenderWatcher returns the scope's render watcher, or nil.
func (s *Scope) RenderWatcher() *Watcher { return s.renderWatcher }

// OnMounted registers a hook run after the scope's first render.
func (s *Scope) OnMounted(fn func()) { s.mountedHooks = append(s.mountedHooks, fn) }

// OnUpdated registers a hook run after each re-render flush.
func (s *Scope) OnUpdated(fn func()) { s.updatedHooks = append(s.updatedHooks, fn) }

// OnActivated registers a hook run when the scope is re-activated from a
// kept-alive state.
func (s *Scope) OnActivated(fn func()) { s.activatedHooks = append(s.activatedHooks, fn) }

// OnDeactivated registers a hook run when the scope is deactivated.
func (s *Scope) OnDeactivated(fn func()) { s.deactivatedHooks = append(s.deactivatedHooks, fn) }

// OnDestroyed registers a hook run when the scope is destroyed.
func (s *Scope) OnDestroyed(fn func()) { s.destroyedHooks = append(s.destroyedHooks, fn) }

// OnErrorCaptured installs the scope's error-capture hook.
func (s *Scope) OnErrorCaptured(fn func(err error, info string) bool) { s.errCapture = fn }

// addWatcher registers a watcher with this scope.
func (s *Scope) addWatcher(w *Watcher) {
	s.watchers = append(s.watchers, w)
}

// removeWatcher drops a watcher from the scope's registry. Skipped by
// Watcher.Teardown when the scope is already being destroyed, since the
// whole list is discarded anyway.
func (s *Scope) removeWatcher(w *Watcher) {
	for i, cur := range s.watchers {
		if cur == w {
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			return
		}
	}
}

// CallMounted fires mounted hooks and marks the scope mounted. The
// component layer calls this once the initial render has landed in the
// backing tree.
func (s *Scope) CallMounted() {
	s.mounted = true
	for _, fn := range s.mountedHooks {
		fn()
	}
}

// callUpdated fires updated hooks.
func (s *Scope) callUpdated() {
	for _, fn := range s.updatedHooks {
		fn()
	}
}

// Deactivate marks the scope (and its subtree) inactive for keep-alive
// and fires deactivated hooks, children first.
func (s *Scope) Deactivate() {
	if s.inactive || s.destroyed {
		return
	}
	s.inactive = true
	for _, c := range s.children {
		c.Deactivate()
	}
	for _, fn := range s.deactivatedHooks {
		fn()
	}
}

// activate clears the inactive flag and fires activated hooks, parents
// first. Called by the scheduler's post-flush activated pass.
func (s *Scope) activate() {
	if !s.inactive || s.destroyed {
		return
	}
	s.inactive = false
	for _, fn := range s.activatedHooks {
		fn()
	}
	for _, c := range s.children {
		c.activate()
	}
}

// Destroy tears down the scope: child scopes first, then all owned
// watchers, then destroyed hooks. Idempotent.
func (s *Scope) Destroy() {
	if s.destroyed {
		return
	}
	s.beingDestroyed = true

	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Destroy()
	}
	s.children = nil

	if s.renderWatcher != nil {
		s.renderWatcher.Teardown()
		s.renderWatcher = nil
	}
	for _, w := range s.watchers {
		w.Teardown()
	}
	s.watchers = nil

	if s.parent != nil && !s.parent.beingDestroyed {
		s.parent.removeChild(s)
	}

	for _, fn := range s.destroyedHooks {
		fn()
	}

	s.destroyed = true
	s.beingDestroyed = false
}

// removeChild drops a child scope.
func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
