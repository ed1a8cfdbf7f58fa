package reactive

import "sort"

// Dep is a change-notification publisher. Every reactive value and every
// observed container owns one. Watchers subscribe to Deps during
// evaluation and are notified when the underlying data changes.
type Dep struct {
	id   uint64
	subs []*Watcher
}

// NewDep creates a Dep with a fresh id.
func NewDep() *Dep {
	return &Dep{id: nextDepID()}
}

// ID returns the unique identifier for this Dep.
func (d *Dep) ID() uint64 {
	return d.id
}

// addSub appends a watcher to the subscriber list.
// Deduplication happens on the watcher side (addDep tracks which dep ids
// it already holds), so insertion order is registration order.
func (d *Dep) addSub(w *Watcher) {
	d.subs = append(d.subs, w)
}

// removeSub removes a watcher from the subscriber list.
func (d *Dep) removeSub(w *Watcher) {
	for i, sub := range d.subs {
		if sub == w {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Depend registers this Dep with the watcher currently evaluating on this
// goroutine, if any. Idempotent within one evaluation pass.
func (d *Dep) Depend() {
	if w := activeWatcher(); w != nil {
		w.addDep(d)
	}
}

// Notify calls Update on every current subscriber.
//
// The subscriber list is snapshotted first so that watchers subscribed
// during notification do not run in the same pass. In synchronous mode the
// scheduler never sorts the queue, so the snapshot is sorted by watcher id
// here to keep parent-before-child order deterministic.
func (d *Dep) Notify() {
	subs := make([]*Watcher, len(d.subs))
	copy(subs, d.subs)

	if SyncMode() {
		sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
	}

	for _, sub := range subs {
		sub.Update()
	}
}
