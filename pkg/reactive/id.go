package reactive

import "sync/atomic"

// Dep and Watcher ids come from independent counters. Both are
// monotonically increasing, never reused, and only ever compared for
// relative ordering.
var (
	depIDCounter     uint64
	watcherIDCounter uint64
	scopeIDCounter   uint64
)

// nextDepID returns the next unique Dep id.
func nextDepID() uint64 {
	return atomic.AddUint64(&depIDCounter, 1)
}

// nextWatcherID returns the next unique Watcher id.
// Watcher ids determine flush order: a watcher constructed earlier always
// runs before one constructed later within the same flush.
func nextWatcherID() uint64 {
	return atomic.AddUint64(&watcherIDCounter, 1)
}

// nextScopeID returns the next unique Scope id.
func nextScopeID() uint64 {
	return atomic.AddUint64(&scopeIDCounter, 1)
}
