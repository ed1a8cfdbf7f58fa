package reactive

import (
	"strings"
	"testing"
)

// asyncWatch creates a queued (non-sync) watcher on the given scheduler.
func asyncWatch(scope *Scope, sched *Scheduler, getter Getter, cb Callback) *Watcher {
	return NewWatcher(scope, getter, cb, &WatcherOptions{Scheduler: sched})
}

func TestFlushRunsInAscendingIDOrder(t *testing.T) {
	sched := NewScheduler()
	defer sched.Stop()

	a := NewValue(0)
	b := NewValue(0)
	var order []string

	wa := asyncWatch(nil, sched, func() (any, error) { return a.Get(), nil },
		func(newVal, oldVal any) error { order = append(order, "A"); return nil })
	wb := asyncWatch(nil, sched, func() (any, error) { return b.Get(), nil },
		func(newVal, oldVal any) error { order = append(order, "B"); return nil })

	if wa.ID() >= wb.ID() {
		t.Fatal("expected A to have the smaller id")
	}

	// Enqueue B first; the flush still runs A first.
	sched.Dispatch(func() {
		b.Set(1)
		a.Set(1)
	})
	sched.WaitSettled()

	if got := strings.Join(order, ","); got != "A,B" {
		t.Errorf("expected A,B order, got %s", got)
	}
}

func TestWritesCoalesceIntoOneFlush(t *testing.T) {
	sched := NewScheduler()
	defer sched.Stop()

	v := NewValue(0)
	runs := 0
	asyncWatch(nil, sched, func() (any, error) { return v.Get(), nil },
		func(newVal, oldVal any) error { runs++; return nil })

	sched.Dispatch(func() {
		v.Set(1)
		v.Set(2)
		v.Set(3)
	})
	sched.WaitSettled()

	if runs != 1 {
		t.Errorf("three writes in one tick should produce one run, got %d", runs)
	}
	if v.Peek() != 3 {
		t.Errorf("expected final value 3, got %v", v.Peek())
	}
}

func TestEnqueueDeduplicates(t *testing.T) {
	sched := NewScheduler()
	defer sched.Stop()

	a := NewValue(0)
	b := NewValue(0)
	runs := 0
	// The watcher depends on both values; writing both enqueues it twice.
	asyncWatch(nil, sched, func() (any, error) {
		return []any{a.Get(), b.Get()}, nil
	}, func(newVal, oldVal any) error { runs++; return nil })

	sched.Dispatch(func() {
		a.Set(1)
		b.Set(1)
	})
	sched.WaitSettled()

	if runs != 1 {
		t.Errorf("expected exactly one run per flush, got %d", runs)
	}
}

func TestRunawayLoopDetection(t *testing.T) {
	sched := NewScheduler()
	defer sched.Stop()

	var reported []error
	SetErrorSink(func(err error, info string) { reported = append(reported, err) })
	defer SetErrorSink(nil)
	GlobalErrorHandler = func(err error, info string) {}
	defer func() { GlobalErrorHandler = nil }()

	v := NewValue(0)
	runs := 0
	// The callback always rewrites its own dependency.
	asyncWatch(nil, sched, func() (any, error) { return v.Get(), nil },
		func(newVal, oldVal any) error {
			runs++
			v.Set(v.Peek().(int) + 1)
			return nil
		})

	sched.Dispatch(func() { v.Set(1) })
	sched.WaitSettled()

	if runs != maxUpdateCount {
		t.Errorf("expected %d runs before abort, got %d", maxUpdateCount, runs)
	}
	if len(reported) != 1 {
		t.Fatalf("expected exactly one loop report, got %d", len(reported))
	}
	if !strings.Contains(reported[0].Error(), "E001") {
		t.Errorf("expected E001 loop error, got %v", reported[0])
	}
}

func TestUpdatedHooksRunChildBeforeParent(t *testing.T) {
	sched := NewScheduler()
	defer sched.Stop()

	parentVal := NewValue(0)
	childVal := NewValue(0)

	parent := NewScope(nil)
	child := NewScope(parent)

	var updated []string
	parent.OnUpdated(func() { updated = append(updated, "parent") })
	child.OnUpdated(func() { updated = append(updated, "child") })

	// Render watchers are constructed parent first, so the parent's id is
	// smaller and it renders first; the updated pass runs in reverse.
	wp := asyncWatch(parent, sched, func() (any, error) { return parentVal.Get(), nil }, nil)
	parent.SetRenderWatcher(wp)
	parent.MarkMounted()

	wc := asyncWatch(child, sched, func() (any, error) { return childVal.Get(), nil }, nil)
	child.SetRenderWatcher(wc)
	child.MarkMounted()

	sched.Dispatch(func() {
		parentVal.Set(1)
		childVal.Set(1)
	})
	sched.WaitSettled()

	if got := strings.Join(updated, ","); got != "child,parent" {
		t.Errorf("expected child,parent updated order, got %s", got)
	}
}

func TestUpdatedHookSkipsFirstMount(t *testing.T) {
	sched := NewScheduler()
	defer sched.Stop()

	v := NewValue(0)
	scope := NewScope(nil)
	updates := 0
	scope.OnUpdated(func() { updates++ })

	w := asyncWatch(scope, sched, func() (any, error) { return v.Get(), nil }, nil)
	scope.SetRenderWatcher(w)
	// Not marked mounted: the first flush is an initial mount.

	sched.Dispatch(func() { v.Set(1) })
	sched.WaitSettled()
	if updates != 0 {
		t.Errorf("unmounted scope must not get updated hooks, got %d", updates)
	}

	scope.MarkMounted()
	sched.Dispatch(func() { v.Set(2) })
	sched.WaitSettled()
	if updates != 1 {
		t.Errorf("expected 1 updated hook after mount, got %d", updates)
	}
}

func TestActivatedHooksRunInPostPass(t *testing.T) {
	sched := NewScheduler()
	defer sched.Stop()

	scope := NewScope(nil)
	scope.Deactivate()
	if !scope.Inactive() {
		t.Fatal("scope should be inactive")
	}

	activations := 0
	scope.OnActivated(func() { activations++ })

	v := NewValue(0)
	asyncWatch(nil, sched, func() (any, error) { return v.Get(), nil },
		func(newVal, oldVal any) error {
			sched.QueueActivated(scope)
			return nil
		})

	sched.Dispatch(func() { v.Set(1) })
	sched.WaitSettled()

	if activations != 1 {
		t.Errorf("expected 1 activation, got %d", activations)
	}
	if scope.Inactive() {
		t.Error("scope should be active after the post-pass")
	}
}

func TestNextTickRunsAfterFlush(t *testing.T) {
	sched := NewScheduler()
	defer sched.Stop()

	v := NewValue(0)
	var order []string
	asyncWatch(nil, sched, func() (any, error) { return v.Get(), nil },
		func(newVal, oldVal any) error { order = append(order, "run"); return nil })

	sched.Dispatch(func() {
		v.Set(1)
		sched.NextTick(func() { order = append(order, "tick") })
	})
	sched.WaitSettled()

	if got := strings.Join(order, ","); got != "run,tick" {
		t.Errorf("expected run,tick order, got %s", got)
	}
}

func TestTornDownWatcherSkippedInFlush(t *testing.T) {
	sched := NewScheduler()
	defer sched.Stop()

	v := NewValue(0)
	runs := 0
	w := asyncWatch(nil, sched, func() (any, error) { return v.Get(), nil },
		func(newVal, oldVal any) error { runs++; return nil })

	sched.Dispatch(func() {
		v.Set(1) // queued
		w.Teardown()
	})
	sched.WaitSettled()

	if runs != 0 {
		t.Errorf("queued job for a torn-down watcher must be a no-op, got %d runs", runs)
	}
}

func TestSyncModeFlushesInline(t *testing.T) {
	SetSync(true)
	defer SetSync(false)

	v := NewValue(0)
	runs := 0
	NewWatcher(nil, func() (any, error) { return v.Get(), nil },
		func(newVal, oldVal any) error { runs++; return nil }, nil)

	v.Set(1)
	if runs != 1 {
		t.Errorf("sync mode should flush inline, got %d runs", runs)
	}
}
