package reactive

import (
	"sync"

	"github.com/petermattis/goid"
)

// trackingContext holds the active-watcher stack for one goroutine.
// A stack (rather than a single slot) supports nested evaluation, e.g. a
// computed value whose getter reads another computed value.
type trackingContext struct {
	targets []*Watcher
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map // int64 -> *trackingContext

// currentTracking returns the tracking context for the current goroutine,
// creating one if needed.
func currentTracking() *trackingContext {
	gid := goid.Get()
	if tc, ok := trackingContexts.Load(gid); ok {
		return tc.(*trackingContext)
	}
	tc := &trackingContext{}
	trackingContexts.Store(gid, tc)
	return tc
}

// activeWatcher returns the watcher currently evaluating on this
// goroutine, or nil when no tracking is active. Read-only: it never
// creates a context entry.
func activeWatcher() *Watcher {
	if v, ok := trackingContexts.Load(goid.Get()); ok {
		tc := v.(*trackingContext)
		if n := len(tc.targets); n > 0 {
			return tc.targets[n-1]
		}
	}
	return nil
}

// pushTarget makes w the active watcher for this goroutine.
// Every pushTarget must be paired with popTarget on all exit paths,
// including error returns; callers use defer to guarantee this.
func pushTarget(w *Watcher) {
	tc := currentTracking()
	tc.targets = append(tc.targets, w)
}

// popTarget restores the previously active watcher. Goroutine ids are
// never reused, so the context entry is deleted once its stack empties to
// keep finished goroutines from accumulating in the map.
func popTarget() {
	gid := goid.Get()
	v, ok := trackingContexts.Load(gid)
	if !ok {
		return
	}
	tc := v.(*trackingContext)
	if n := len(tc.targets); n > 0 {
		tc.targets[n-1] = nil
		tc.targets = tc.targets[:n-1]
	}
	if len(tc.targets) == 0 {
		trackingContexts.Delete(gid)
	}
}

// Untracked runs fn without dependency tracking: reads inside fn do not
// subscribe the currently active watcher.
func Untracked(fn func()) {
	pushTarget(nil)
	defer popTarget()
	fn()
}
