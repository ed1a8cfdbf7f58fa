// Package runtime ties the reactive core to the tree differ: a Component
// owns a scope, a render function, and a render watcher. Reactive reads
// inside the render function become dependencies of the render watcher;
// any write to one of them queues a re-render, and the scheduler's flush
// diffs the new tree against the previous one and applies the difference
// to the backing tree.
package runtime
