package reactive

import (
	verrors "github.com/vireo-ui/vireo/internal/errors"
)

// Getter evaluates a watcher's expression. Reactive reads inside it
// register dependencies on the evaluating watcher.
type Getter func() (any, error)

// Callback receives the new and old value after a watcher re-evaluates
// with a changed result.
type Callback func(newVal, oldVal any) error

// WatcherOptions configures watcher construction.
type WatcherOptions struct {
	// Deep traverses the evaluated value so the watcher also fires on
	// nested mutations.
	Deep bool

	// Sync re-evaluates immediately on notification instead of queueing.
	Sync bool

	// Lazy defers the initial evaluation; used for computed values that
	// recompute on demand via Evaluate.
	Lazy bool

	// User marks watchers created from user code: their getter and
	// callback errors are reported and swallowed rather than propagated.
	User bool

	// Before runs right before the watcher re-evaluates during a flush.
	Before func()

	// Scheduler overrides the default scheduler.
	Scheduler *Scheduler
}

// Watcher is an evaluatable unit: it runs its getter with dependency
// tracking active, records which Deps it read, and re-evaluates when any
// of them notify. Render watchers, computed values, and explicit watches
// are all Watchers with different option sets.
type Watcher struct {
	id    uint64
	scope *Scope
	sched *Scheduler

	getter Getter
	cb     Callback
	value  any

	// Two alternating dep-set pairs: deps/depIDs hold the previous
	// evaluation's dependencies, newDeps/newDepIDs collect the current
	// one. cleanupDeps diffs and swaps them after every evaluation.
	deps      []*Dep
	newDeps   []*Dep
	depIDs    map[uint64]struct{}
	newDepIDs map[uint64]struct{}

	deep   bool
	sync   bool
	lazy   bool
	user   bool
	active bool
	dirty  bool

	before func()
}

// NewWatcher constructs a watcher owned by scope and, unless lazy,
// evaluates it immediately. A nil opts is treated as the zero options.
func NewWatcher(scope *Scope, getter Getter, cb Callback, opts *WatcherOptions) *Watcher {
	if opts == nil {
		opts = &WatcherOptions{}
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = DefaultScheduler
	}

	w := &Watcher{
		id:        nextWatcherID(),
		scope:     scope,
		sched:     sched,
		getter:    getter,
		cb:        cb,
		depIDs:    make(map[uint64]struct{}),
		newDepIDs: make(map[uint64]struct{}),
		deep:      opts.Deep,
		sync:      opts.Sync,
		lazy:      opts.Lazy,
		user:      opts.User,
		active:    true,
		dirty:     opts.Lazy,
		before:    opts.Before,
	}
	if scope != nil {
		scope.addWatcher(w)
	}

	if !w.lazy {
		value, err := w.get()
		if err != nil {
			HandleError(verrors.New(verrors.CodeRenderFailure).Wrap(err), w.scope, "watcher evaluation")
		}
		w.value = value
	}
	return w
}

// ID returns the watcher's id. Ids are assigned at construction and
// determine flush order.
func (w *Watcher) ID() uint64 { return w.id }

// Value returns the last evaluated value.
func (w *Watcher) Value() any { return w.value }

// Dirty reports whether a lazy watcher needs re-evaluation.
func (w *Watcher) Dirty() bool { return w.dirty }

// Active reports whether the watcher has not been torn down.
func (w *Watcher) Active() bool { return w.active }

// get evaluates the getter with this watcher as the active tracking
// target, then reconciles the dependency sets.
//
// User-originated evaluation errors (including panics) are reported here
// and swallowed; internal errors are returned to the caller, which reports
// and propagates them. The deep traversal runs whether or not the getter
// failed, matching the save/restore discipline: tracking state must be
// balanced on every exit path.
func (w *Watcher) get() (any, error) {
	pushTarget(w)

	var value any
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = recoverToError(r)
			}
		}()
		value, err = w.getter()
	}()

	if err != nil && w.user {
		HandleError(err, w.scope, "watcher getter")
		err = nil
		value = nil
	}

	if w.deep {
		traverse(value)
	}

	popTarget()
	w.cleanupDeps()
	return value, err
}

// addDep records a dependency read during the current evaluation.
// Deduplicated within the pass via newDepIDs; the watcher subscribes to
// the Dep only if it was not already subscribed from the previous pass.
func (w *Watcher) addDep(d *Dep) {
	if _, ok := w.newDepIDs[d.id]; ok {
		return
	}
	w.newDepIDs[d.id] = struct{}{}
	w.newDeps = append(w.newDeps, d)
	if _, ok := w.depIDs[d.id]; !ok {
		d.addSub(w)
	}
}

// cleanupDeps unsubscribes from Deps read in the previous pass but not in
// this one, then swaps the two set pairs.
func (w *Watcher) cleanupDeps() {
	for _, d := range w.deps {
		if _, ok := w.newDepIDs[d.id]; !ok {
			d.removeSub(w)
		}
	}

	w.deps, w.newDeps = w.newDeps, w.deps[:0]
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	for id := range w.newDepIDs {
		delete(w.newDepIDs, id)
	}
}

// Update is called by a Dep when a dependency changed. Lazy watchers just
// go dirty; synchronous watchers run immediately; everything else is
// queued for the next flush.
func (w *Watcher) Update() {
	switch {
	case w.lazy:
		w.dirty = true
	case w.sync:
		if err := w.run(); err != nil {
			HandleError(err, w.scope, "sync watcher run")
		}
	default:
		w.sched.Enqueue(w)
	}
}

// run re-evaluates the watcher and invokes its callback when the value
// changed under the sameness rule, the value is a container (contents may
// have mutated in place), or the watcher is deep.
//
// User callback failures are reported and swallowed so one faulty handler
// cannot break the flush. Internal failures are reported and returned.
func (w *Watcher) run() error {
	if !w.active {
		return nil
	}

	value, err := w.get()
	if err != nil {
		// Internal evaluation failure: report against the render code.
		HandleError(verrors.New(verrors.CodeRenderFailure).Wrap(err), w.scope, "watcher evaluation")
		return err
	}

	if !sameValue(value, w.value) || isContainer(value) || w.deep {
		oldValue := w.value
		w.value = value
		if w.cb != nil {
			cbErr := w.invokeCallback(value, oldValue)
			if cbErr != nil {
				if w.user {
					HandleError(verrors.New(verrors.CodeCallbackFailure).Wrap(cbErr), w.scope, "watcher callback")
					return nil
				}
				HandleError(cbErr, w.scope, "internal watcher callback")
				return cbErr
			}
		}
	}
	return nil
}

// invokeCallback runs the callback, converting panics into errors.
func (w *Watcher) invokeCallback(newVal, oldVal any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverToError(r)
		}
	}()
	return w.cb(newVal, oldVal)
}

// Evaluate forces a lazy watcher to recompute and clears its dirty flag.
// Called when something reads a stale computed value.
func (w *Watcher) Evaluate() {
	value, err := w.get()
	if err != nil {
		HandleError(err, w.scope, "computed evaluation")
	}
	w.value = value
	w.dirty = false
}

// Depend re-registers every tracked Dep with the currently active watcher.
// A computed value consumed inside another watcher's evaluation uses this
// to transitively subscribe that consumer to all of its own upstream Deps.
func (w *Watcher) Depend() {
	for _, d := range w.deps {
		d.Depend()
	}
}

// Teardown removes the watcher from its scope and unsubscribes it from
// every tracked Dep. Idempotent. Queued jobs for a torn-down watcher are
// skipped by run's active check rather than erroring.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}
	if w.scope != nil && !w.scope.beingDestroyed {
		w.scope.removeWatcher(w)
	}
	for _, d := range w.deps {
		d.removeSub(w)
	}
	w.deps = nil
	w.newDeps = nil
	w.depIDs = nil
	w.newDepIDs = nil
	w.active = false
}
