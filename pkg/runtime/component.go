package runtime

import (
	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// RenderFunc produces the component's output tree from current state.
// Returning nil renders an empty placeholder comment.
type RenderFunc func() (*vdom.VNode, error)

// Options configures component construction.
type Options struct {
	// Scheduler overrides the default scheduler.
	Scheduler *reactive.Scheduler

	// Parent nests this component's scope under the parent's, so
	// destroying the parent tears this component down too.
	Parent *Component
}

// Component is one mounted instance of a render function. Render errors
// never tear the tree down: the previously committed tree stays in place
// and the error is routed through the scope's error-capture chain.
type Component struct {
	name    string
	scope   *reactive.Scope
	sched   *reactive.Scheduler
	patcher *vdom.Patcher
	render  RenderFunc

	watcher   *reactive.Watcher
	container vdom.Node

	hydrateFrom   vdom.Node
	strictHydrate bool
	hydrateErr    error

	tree      *vdom.VNode
	renderErr error
}

// New builds an unmounted component.
func New(name string, render RenderFunc, patcher *vdom.Patcher, opts *Options) *Component {
	if opts == nil {
		opts = &Options{}
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = reactive.DefaultScheduler
	}
	var parentScope *reactive.Scope
	if opts.Parent != nil {
		parentScope = opts.Parent.scope
	}
	return &Component{
		name:    name,
		scope:   reactive.NewScope(parentScope),
		sched:   sched,
		patcher: patcher,
		render:  render,
	}
}

// Name returns the component's name.
func (c *Component) Name() string { return c.name }

// Scope returns the component's ownership scope, for registering
// lifecycle hooks and watchers that die with the component.
func (c *Component) Scope() *reactive.Scope { return c.scope }

// Tree returns the last committed vnode tree.
func (c *Component) Tree() *vdom.VNode { return c.tree }

// Mounted reports whether the component has completed its first render.
func (c *Component) Mounted() bool { return c.scope.Mounted() }

// Mount renders the component into container and starts reacting to
// state changes. The initial render runs synchronously; a failing
// initial render leaves the component unmounted and returns the error.
func (c *Component) Mount(container vdom.Node) error {
	if c.watcher != nil || c.scope.Destroyed() {
		return nil
	}
	c.container = container

	c.watcher = reactive.NewWatcher(c.scope, c.update, nil, &reactive.WatcherOptions{
		Scheduler: c.sched,
	})
	c.scope.SetRenderWatcher(c.watcher)

	if c.tree == nil {
		err := c.renderErr
		c.watcher.Teardown()
		c.watcher = nil
		c.scope.SetRenderWatcher(nil)
		return err
	}
	c.scope.CallMounted()
	return nil
}

// Hydrate mounts the component onto an existing backing subtree instead
// of building one. In strict mode a mismatch aborts the mount; otherwise
// the mismatched markup is replaced with a fresh client rendering, the
// mismatch is reported through the error chain, and the mount succeeds.
func (c *Component) Hydrate(root vdom.Node, strict bool) error {
	c.hydrateFrom = root
	c.strictHydrate = strict
	if err := c.Mount(nil); err != nil {
		return err
	}
	if strict && c.hydrateErr != nil {
		return c.hydrateErr
	}
	return nil
}

// HydrationMismatch returns the mismatch error of a non-strict
// hydration, or nil if the markup matched.
func (c *Component) HydrationMismatch() error { return c.hydrateErr }

// update is the render watcher's getter: render, then diff and commit.
// Reactive reads during render register on the render watcher.
func (c *Component) update() (any, error) {
	c.renderErr = nil
	tree, err := c.render()
	if err != nil {
		// Keep the previous tree; the watcher machinery reports this as
		// a render failure.
		c.renderErr = err
		return nil, err
	}
	if tree == nil {
		tree = vdom.Placeholder()
	}

	switch {
	case c.tree == nil && c.hydrateFrom != nil:
		_, herr := c.patcher.Hydrate(c.hydrateFrom, tree, c.strictHydrate)
		if herr != nil {
			c.hydrateErr = herr
			if c.strictHydrate {
				c.renderErr = herr
				return nil, herr
			}
			reactive.HandleError(herr, c.scope, "hydration")
		}
		c.hydrateFrom = nil
	case c.tree == nil:
		c.patcher.Patch(nil, tree, c.container)
	default:
		c.patcher.Patch(c.tree, tree, nil)
	}

	c.tree = tree
	return nil, nil
}

// ForceUpdate queues a re-render regardless of dependency changes.
func (c *Component) ForceUpdate() {
	if c.watcher != nil {
		c.watcher.Update()
	}
}

// Unmount destroys the component's scope, tears down its watchers, and
// removes its subtree from the backing tree. Idempotent.
func (c *Component) Unmount() {
	if c.scope.Destroyed() {
		return
	}
	c.scope.Destroy()
	c.watcher = nil
	if c.tree != nil {
		c.patcher.Patch(c.tree, nil, nil)
		c.tree = nil
	}
}
