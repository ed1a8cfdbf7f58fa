package reactive

import (
	"fmt"
	"sort"
	"sync/atomic"

	verrors "github.com/vireo-ui/vireo/internal/errors"
)

// maxUpdateCount is the per-watcher re-enqueue budget within one flush.
// Crossing it is treated as a likely infinite update loop.
const maxUpdateCount = 100

// syncMode, when set, makes writes flush inline instead of deferring to
// the run loop. Debug and test facility; see SetSync.
var syncMode atomic.Bool

// SetSync switches between deferred (default) and inline flushing.
func SetSync(sync bool) {
	syncMode.Store(sync)
}

// SyncMode reports whether inline flushing is active.
func SyncMode() bool {
	return syncMode.Load()
}

// Scheduler batches watcher re-evaluations into ordered flushes. Watchers
// run in ascending id order, which guarantees parent-before-child (parents
// are constructed first) and explicit-watch-before-render-watch (a scope's
// user watchers are constructed before its render watcher).
//
// All scheduler state is owned by its run loop goroutine; cross-goroutine
// callers enter through Dispatch.
type Scheduler struct {
	queue    []*Watcher
	has      map[uint64]bool
	circular map[uint64]int
	banned   map[uint64]bool

	waiting  bool
	flushing bool
	index    int

	// activatedScopes collects scopes re-activated from keep-alive during
	// the current flush; their hooks fire in a post-pass.
	activatedScopes []*Scope

	afterFlush []func()
	loop       *runLoop

	// dirty is set while work is queued or a flush is scheduled; used by
	// WaitSettled.
	dirty atomic.Bool
}

// DefaultScheduler is the process-wide scheduler used by watchers that do
// not specify their own.
var DefaultScheduler = NewScheduler()

// NewScheduler creates an idle scheduler with its own run loop.
func NewScheduler() *Scheduler {
	return &Scheduler{
		has:      make(map[uint64]bool),
		circular: make(map[uint64]int),
		banned:   make(map[uint64]bool),
		loop:     newRunLoop(),
	}
}

// Dispatch runs fn on the scheduler's run loop. State mutations that
// should coalesce into a single flush belong inside one Dispatch call.
func (s *Scheduler) Dispatch(fn func()) {
	s.loop.post(fn)
}

// NextTick runs fn on the run loop after the currently scheduled flush.
// In synchronous mode fn runs immediately.
func (s *Scheduler) NextTick(fn func()) {
	if SyncMode() {
		fn()
		return
	}
	s.loop.post(fn)
}

// OnAfterFlush registers fn to run at the end of every flush, after the
// lifecycle post-passes. The server layer uses this to collect and ship
// patches.
func (s *Scheduler) OnAfterFlush(fn func()) {
	s.afterFlush = append(s.afterFlush, fn)
}

// Stop shuts down the scheduler's run loop.
func (s *Scheduler) Stop() {
	s.loop.stop()
}

// WaitSettled blocks until the scheduler has no queued work. Only
// meaningful for callers outside the run loop goroutine.
func (s *Scheduler) WaitSettled() {
	for {
		done := make(chan struct{})
		s.loop.post(func() { close(done) })
		<-done
		if !s.dirty.Load() {
			return
		}
	}
}

// Enqueue adds a watcher to the pending queue, deduplicated by id.
//
// Outside a flush the watcher is appended and a flush is scheduled. During
// a flush it is inserted at its sorted position among the not-yet-processed
// entries: an id greater than the cursor still runs in this flush, a
// smaller one runs immediately next.
func (s *Scheduler) Enqueue(w *Watcher) {
	id := w.id
	if s.has[id] {
		return
	}
	if s.flushing && s.banned[id] {
		// Abandoned as a runaway loop for the rest of this flush.
		return
	}
	s.has[id] = true
	s.dirty.Store(true)

	if !s.flushing {
		s.queue = append(s.queue, w)
	} else {
		i := len(s.queue) - 1
		for i > s.index && s.queue[i].id > id {
			i--
		}
		s.queue = append(s.queue, nil)
		copy(s.queue[i+2:], s.queue[i+1:])
		s.queue[i+1] = w
	}

	if !s.waiting {
		s.waiting = true
		if SyncMode() {
			s.flushQueue()
			return
		}
		s.loop.post(s.flushQueue)
	}
}

// QueueActivated records a scope whose keep-alive activation completes in
// this flush's post-pass.
func (s *Scheduler) QueueActivated(scope *Scope) {
	s.activatedScopes = append(s.activatedScopes, scope)
}

// flushQueue runs one flush: sort pending watchers by id, iterate with a
// live cursor (callbacks may enqueue more work), then run the activated
// and updated lifecycle post-passes over snapshots taken before reset.
func (s *Scheduler) flushQueue() {
	s.flushing = true

	sort.Slice(s.queue, func(i, j int) bool {
		return s.queue[i].id < s.queue[j].id
	})

	for s.index = 0; s.index < len(s.queue); s.index++ {
		w := s.queue[s.index]
		if w == nil || s.banned[w.id] {
			continue
		}
		if w.before != nil {
			w.before()
		}
		id := w.id
		delete(s.has, id)

		if err := w.run(); err != nil {
			// Already reported through the sink; the flush continues so
			// one failing watcher cannot starve the rest of the queue.
			_ = err
		}

		// A watcher re-enqueued while it ran is in a feedback loop with
		// itself. Give it a budget, then abandon it for this flush.
		if s.has[id] {
			s.circular[id]++
			if s.circular[id] >= maxUpdateCount {
				HandleError(
					verrors.New(verrors.CodeUpdateLoop).Wrap(
						fmt.Errorf("watcher %d re-enqueued %d times in one flush", id, s.circular[id])),
					w.scope, "scheduler flush",
				)
				s.banned[id] = true
				delete(s.has, id)
			}
		}
	}

	// Snapshots for the post-passes, taken before reset.
	updated := make([]*Watcher, len(s.queue))
	copy(updated, s.queue)
	activated := make([]*Scope, len(s.activatedScopes))
	copy(activated, s.activatedScopes)

	s.reset()

	callActivatedHooks(activated)
	callUpdatedHooks(updated)

	for _, fn := range s.afterFlush {
		fn()
	}

	if len(s.queue) == 0 {
		s.dirty.Store(false)
	}
}

// reset returns the scheduler to its idle state.
func (s *Scheduler) reset() {
	s.queue = s.queue[:0]
	s.activatedScopes = s.activatedScopes[:0]
	for id := range s.has {
		delete(s.has, id)
	}
	for id := range s.circular {
		delete(s.circular, id)
	}
	for id := range s.banned {
		delete(s.banned, id)
	}
	s.waiting = false
	s.flushing = false
	s.index = 0
}

// callActivatedHooks completes keep-alive activation for scopes that were
// re-activated during the flush.
func callActivatedHooks(scopes []*Scope) {
	for _, scope := range scopes {
		scope.activate()
	}
}

// callUpdatedHooks fires the updated lifecycle for every mounted scope
// whose render watcher ran in this flush. The queue ran parent-before-
// child, so iterating in reverse yields child-before-parent here.
func callUpdatedHooks(queue []*Watcher) {
	for i := len(queue) - 1; i >= 0; i-- {
		w := queue[i]
		if w == nil {
			continue
		}
		scope := w.scope
		if scope != nil && scope.renderWatcher == w && scope.mounted && !scope.destroyed {
			scope.callUpdated()
		}
	}
}
