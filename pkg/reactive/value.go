package reactive

// Value is an explicit reactive field: a backing value, a private Dep, and
// (for container values) the container's Observer. Records store one Value
// per key; standalone Values back computed-style state.
type Value struct {
	dep     *Dep
	value   any
	childOb *Observer

	// shallow suppresses observation of newly assigned container values.
	shallow bool
}

// NewValue creates a reactive field holding v. If v is a record or list it
// becomes observed.
func NewValue(v any) *Value {
	return newValue(v, false)
}

// NewShallowValue creates a reactive field that never observes assigned
// containers: only identity changes of the field itself notify.
func NewShallowValue(v any) *Value {
	return newValue(v, true)
}

func newValue(v any, shallow bool) *Value {
	val := &Value{
		dep:     NewDep(),
		value:   v,
		shallow: shallow,
	}
	if !shallow {
		val.childOb = Observe(v)
	}
	return val
}

// Get returns the current value. When a watcher is actively evaluating on
// this goroutine, the field's Dep is registered with it; if the value
// carries an Observer, the container Dep is registered too, and for lists
// every observed element Dep is registered transitively. The transitive
// registration compensates for element access not being interceptable: a
// watcher that read the list must re-run when any element's contents
// change.
func (v *Value) Get() any {
	if activeWatcher() != nil {
		v.dep.Depend()
		if v.childOb != nil {
			v.childOb.dep.Depend()
			if l, ok := v.value.(*List); ok {
				dependList(l)
			}
		}
	}
	return v.value
}

// Peek returns the current value without dependency tracking.
func (v *Value) Peek() any {
	return v.value
}

// Set stores a new value and notifies subscribers.
//
// The write is suppressed when the new value is the same as the old one
// under the sameness rule (strict identity, or both NaN). Otherwise the
// new value is observed (unless the field is shallow) and the Dep fires.
func (v *Value) Set(nv any) {
	if sameValue(v.value, nv) {
		return
	}
	v.value = nv
	if v.shallow {
		v.childOb = nil
	} else {
		v.childOb = Observe(nv)
	}
	v.dep.Notify()
}

// Dep returns the field's private Dep.
func (v *Value) Dep() *Dep {
	return v.dep
}

// dependList transitively registers every observed element of a list, and
// recurses into nested lists.
func dependList(l *List) {
	for _, e := range l.items {
		if ob := observerOf(e); ob != nil {
			ob.dep.Depend()
		}
		if el, ok := e.(*List); ok {
			dependList(el)
		}
	}
}
