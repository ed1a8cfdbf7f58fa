// Package reactive implements the dependency-tracking core of the Vireo
// runtime: reactive values, observed records and lists, watchers, and the
// batching update scheduler.
//
// Reading a reactive value while a watcher is evaluating registers the
// value's Dep with that watcher. Writing a new value notifies the Dep's
// subscribers; non-synchronous watchers are queued on a Scheduler, which
// flushes them in ascending watcher-id order so parents always run before
// their children.
//
// The model is single-threaded and cooperative: all state mutation and
// watcher evaluation for one scheduler is expected to happen on its run
// loop goroutine (see Scheduler.Dispatch). Dependency tracking state is
// goroutine-local, so independent schedulers on separate goroutines do not
// interfere.
package reactive
