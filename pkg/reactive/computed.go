package reactive

// Computed is an on-demand (lazy) watcher with a cached value. It
// recomputes only when read after one of its dependencies changed, and it
// chains: a watcher that reads a Computed subscribes to all of the
// Computed's own upstream Deps.
type Computed struct {
	w *Watcher
}

// NewComputed creates a computed value owned by scope.
func NewComputed(scope *Scope, getter Getter) *Computed {
	return &Computed{
		w: NewWatcher(scope, getter, nil, &WatcherOptions{Lazy: true}),
	}
}

// Get returns the computed value, recomputing if stale, and transitively
// registers the computed's dependencies with the active watcher.
func (c *Computed) Get() any {
	if c.w.dirty {
		c.w.Evaluate()
	}
	if activeWatcher() != nil {
		c.w.Depend()
	}
	return c.w.value
}

// Peek returns the cached value without recomputation or tracking.
// The value may be stale.
func (c *Computed) Peek() any {
	return c.w.value
}

// Teardown releases the underlying watcher.
func (c *Computed) Teardown() {
	c.w.Teardown()
}
