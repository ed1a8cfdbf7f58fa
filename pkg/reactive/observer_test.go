package reactive

import "testing"

func TestObserveIdempotent(t *testing.T) {
	r := NewRecord(map[string]any{"a": 1})
	ob1 := Observe(r)
	ob2 := Observe(r)
	if ob1 == nil {
		t.Fatal("expected an observer")
	}
	if ob1 != ob2 {
		t.Error("observing twice must return the same Observer")
	}
}

func TestObservePrimitivesPassThrough(t *testing.T) {
	for _, v := range []any{nil, 1, "s", 1.5, true} {
		if ob := Observe(v); ob != nil {
			t.Errorf("primitive %v should not be observed", v)
		}
	}
}

func TestObserveRootCountsUsage(t *testing.T) {
	r := NewRecord(nil)
	ob := ObserveRoot(r)
	if ob.vmCount != 1 {
		t.Errorf("expected vmCount 1, got %d", ob.vmCount)
	}
	ObserveRoot(r)
	if ob.vmCount != 2 {
		t.Errorf("expected vmCount 2, got %d", ob.vmCount)
	}
}

func TestObserveNestedContainers(t *testing.T) {
	inner := NewList(1, 2)
	r := NewRecord(map[string]any{"items": inner})
	if observerOf(inner) == nil {
		t.Error("nested list should be observed")
	}
	if observerOf(r) == nil {
		t.Error("record should be observed")
	}
}
