package reactive

import (
	"math"
	"reflect"
)

// sameValue is the write-suppression equality rule.
//
// Two values are "the same" when they are strictly identical, or when both
// are NaN. The NaN carve-out is deliberate: NaN never compares equal to
// itself, so without it every NaN-over-NaN write would look like a change
// and re-notify. Only the both-NaN case is suppressed; writing NaN over a
// number (or the reverse) still counts as a change.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isNaN(a) && isNaN(b) {
		return true
	}

	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		return a == b
	}

	// Uncomparable kinds: identity means same backing data.
	switch ta.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	default:
		return false
	}
}

// isNaN reports whether v is a floating-point NaN.
func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	default:
		return false
	}
}

// isContainer reports whether v is an observable container.
// Containers always invoke watcher callbacks on re-evaluation, since a
// mutation may have changed their contents without changing their identity.
func isContainer(v any) bool {
	switch v.(type) {
	case *Record, *List:
		return true
	default:
		return false
	}
}
