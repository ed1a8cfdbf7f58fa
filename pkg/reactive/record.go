package reactive

import "sort"

// Record is an observed string-keyed container. Each key is backed by a
// reactive Value; reads and writes go through the wrappers, so plain
// field-style access does not exist by design.
type Record struct {
	fields map[string]*Value
	ob     *Observer
}

// NewRecord creates an observed record from an initial key set.
// Nested records and lists in init become observed recursively.
func NewRecord(init map[string]any) *Record {
	r := &Record{fields: make(map[string]*Value, len(init))}
	for k, v := range init {
		r.fields[k] = NewValue(v)
	}
	Observe(r)
	return r
}

// observer implements observable.
func (r *Record) observer() *Observer { return r.ob }

// setObserver implements observable.
func (r *Record) setObserver(ob *Observer) { r.ob = ob }

// observeContents implements observable. Fields are created through
// NewValue, which already observes nested containers, so there is nothing
// left to do here.
func (r *Record) observeContents() {}

// Get returns the value stored under key, registering the key's Dep with
// the active watcher. Reading a missing key returns nil and tracks
// nothing; a later Set of that key notifies through the record's
// container Dep instead.
func (r *Record) Get(key string) any {
	if f, ok := r.fields[key]; ok {
		return f.Get()
	}
	return nil
}

// Peek returns the value stored under key without dependency tracking.
func (r *Record) Peek(key string) any {
	if f, ok := r.fields[key]; ok {
		return f.Peek()
	}
	return nil
}

// Set stores v under key. Existing keys write through their Value wrapper
// (same-value suppression applies). New keys become reactive fields and
// notify the record's container Dep, so watchers that read the record
// re-run and pick the key up.
func (r *Record) Set(key string, v any) {
	if f, ok := r.fields[key]; ok {
		f.Set(v)
		return
	}
	r.fields[key] = NewValue(v)
	if r.ob != nil {
		r.ob.dep.Notify()
	}
}

// Delete removes key from the record and notifies the container Dep.
// Deleting a missing key is a no-op.
func (r *Record) Delete(key string) {
	if _, ok := r.fields[key]; !ok {
		return
	}
	delete(r.fields, key)
	if r.ob != nil {
		r.ob.dep.Notify()
	}
}

// Has reports whether key exists, without dependency tracking.
func (r *Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Keys returns the record's keys in sorted order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Field returns the reactive Value backing key, or nil.
// Exposed for bindings that need the wrapper itself.
func (r *Record) Field(key string) *Value {
	return r.fields[key]
}

// Len returns the number of keys.
func (r *Record) Len() int {
	return len(r.fields)
}
