package reactive

import (
	"errors"
	"testing"
)

func TestWatcherSwapsDependencySets(t *testing.T) {
	cond := NewValue(true)
	a := NewValue("a")
	b := NewValue("b")

	_, runs := watch(t, nil, func() (any, error) {
		if cond.Get().(bool) {
			return a.Get(), nil
		}
		return b.Get(), nil
	})

	// While cond is true, b is not a dependency.
	b.Set("b2")
	if *runs != 0 {
		t.Errorf("b should not be tracked yet, got %d runs", *runs)
	}

	cond.Set(false)
	if *runs != 1 {
		t.Fatalf("cond change should re-run, got %d runs", *runs)
	}

	// After the swap, a is no longer a dependency and b is.
	a.Set("a2")
	if *runs != 1 {
		t.Errorf("a should have been unsubscribed, got %d runs", *runs)
	}
	b.Set("b3")
	if *runs != 2 {
		t.Errorf("b should now be tracked, got %d runs", *runs)
	}
}

func TestDeepWatcher(t *testing.T) {
	nested := NewRecord(map[string]any{"n": 1})
	root := NewRecord(map[string]any{"nested": nested})

	runs := 0
	NewWatcher(nil, func() (any, error) {
		return root, nil
	}, func(newVal, oldVal any) error {
		runs++
		return nil
	}, &WatcherOptions{Sync: true, Deep: true})

	// The getter never reads nested.n, but deep traversal did.
	nested.Set("n", 2)
	if runs != 1 {
		t.Errorf("deep watcher should see nested writes, got %d runs", runs)
	}
}

func TestComputedLazyEvaluation(t *testing.T) {
	base := NewValue(2)
	evals := 0
	c := NewComputed(nil, func() (any, error) {
		evals++
		return base.Get().(int) * 2, nil
	})

	if evals != 0 {
		t.Fatalf("lazy computed must not evaluate at construction, got %d evals", evals)
	}
	if c.Get() != 4 {
		t.Errorf("expected 4, got %v", c.Get())
	}
	if evals != 1 {
		t.Errorf("expected 1 eval, got %d", evals)
	}

	// Cached while clean.
	_ = c.Get()
	if evals != 1 {
		t.Errorf("clean computed should not re-evaluate, got %d evals", evals)
	}

	// Dirty after a dependency write, recomputed on next read.
	base.Set(3)
	if !c.w.dirty {
		t.Error("computed should be dirty after dependency write")
	}
	if c.Get() != 6 {
		t.Errorf("expected 6, got %v", c.Get())
	}
	if evals != 2 {
		t.Errorf("expected 2 evals, got %d", evals)
	}
}

func TestComputedChainsDependencies(t *testing.T) {
	base := NewValue(1)
	c := NewComputed(nil, func() (any, error) {
		return base.Get().(int) + 10, nil
	})

	// A watcher reading the computed transitively subscribes to base.
	_, runs := watch(t, nil, func() (any, error) { return c.Get(), nil })

	base.Set(2)
	if *runs != 1 {
		t.Errorf("computed consumer should re-run on upstream write, got %d runs", *runs)
	}
}

func TestWatcherTeardown(t *testing.T) {
	v := NewValue(1)
	w, runs := watch(t, nil, func() (any, error) { return v.Get(), nil })

	w.Teardown()
	if len(v.dep.subs) != 0 {
		t.Errorf("teardown should unsubscribe from deps, %d subs remain", len(v.dep.subs))
	}

	v.Set(2)
	if *runs != 0 {
		t.Errorf("torn-down watcher must not run, got %d runs", *runs)
	}

	// Idempotent.
	w.Teardown()
}

func TestScopeDestroyTearsDownWatchers(t *testing.T) {
	scope := NewScope(nil)
	v := NewValue(1)
	w, _ := watch(t, scope, func() (any, error) { return v.Get(), nil })

	scope.Destroy()
	if w.Active() {
		t.Error("scope destruction should tear down its watchers")
	}
	if !scope.Destroyed() {
		t.Error("scope should report destroyed")
	}
	scope.Destroy()
}

func TestUserWatcherErrorsAreReportedAndSwallowed(t *testing.T) {
	var reported []error
	SetErrorSink(func(err error, info string) { reported = append(reported, err) })
	defer SetErrorSink(nil)
	GlobalErrorHandler = func(err error, info string) {}
	defer func() { GlobalErrorHandler = nil }()

	v := NewValue(1)
	boom := errors.New("callback boom")
	NewWatcher(nil, func() (any, error) {
		return v.Get(), nil
	}, func(newVal, oldVal any) error {
		return boom
	}, &WatcherOptions{Sync: true, User: true})

	v.Set(2)
	if len(reported) != 1 {
		t.Fatalf("expected 1 reported error, got %d", len(reported))
	}
	if !errors.Is(reported[0], boom) {
		t.Errorf("expected wrapped callback error, got %v", reported[0])
	}
}

func TestErrorCaptureBubbling(t *testing.T) {
	parent := NewScope(nil)
	child := NewScope(parent)

	var captured []string
	parent.OnErrorCaptured(func(err error, info string) bool {
		captured = append(captured, "parent")
		return true // suppress
	})

	globalCalled := false
	GlobalErrorHandler = func(err error, info string) { globalCalled = true }
	defer func() { GlobalErrorHandler = nil }()

	HandleError(errors.New("x"), child, "test")
	if len(captured) != 1 {
		t.Fatalf("expected parent capture, got %v", captured)
	}
	if globalCalled {
		t.Error("suppressed error must not reach the global handler")
	}
}

func TestUserGetterPanicIsRecovered(t *testing.T) {
	GlobalErrorHandler = func(err error, info string) {}
	defer func() { GlobalErrorHandler = nil }()

	v := NewValue(1)
	w := NewWatcher(nil, func() (any, error) {
		_ = v.Get()
		panic("getter boom")
	}, nil, &WatcherOptions{Sync: true, User: true})

	// Tracking state must be balanced despite the panic.
	if activeWatcher() != nil {
		t.Error("active watcher leaked after panic")
	}
	// Dependencies recorded before the panic are kept.
	if len(w.deps) != 1 {
		t.Errorf("expected 1 dep, got %d", len(w.deps))
	}
}
