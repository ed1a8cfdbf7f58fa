package reactive

import "sort"

// List is an observable ordered container. Its mutating methods are the
// only way to change the backing storage: each one executes the native
// operation first, then observes newly inserted elements, then notifies
// the container Dep exactly once.
//
// Reads (Get, Len, Items) do not track individual elements; dependency
// edges for lists are established through the owning Value's getter, which
// registers the container Dep and every element Observer transitively.
type List struct {
	items []any
	ob    *Observer
}

// NewList creates an observed list from the given items.
func NewList(items ...any) *List {
	l := &List{items: items}
	Observe(l)
	return l
}

// observer implements observable.
func (l *List) observer() *Observer { return l.ob }

// setObserver implements observable.
func (l *List) setObserver(ob *Observer) { l.ob = ob }

// observeContents implements observable.
func (l *List) observeContents() {
	for _, e := range l.items {
		Observe(e)
	}
}

// notify observes the inserted elements and fires the container Dep.
func (l *List) notify(inserted []any) {
	for _, e := range inserted {
		Observe(e)
	}
	if l.ob != nil {
		l.ob.dep.Notify()
	}
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.items)
}

// Get returns the element at index i, or nil when out of range.
func (l *List) Get(i int) any {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Items returns the backing slice. Callers must not mutate it.
func (l *List) Items() []any {
	return l.items
}

// Set replaces the element at index i, observing the new element and
// notifying. Out-of-range indexes are ignored.
func (l *List) Set(i int, v any) {
	if i < 0 || i >= len(l.items) {
		return
	}
	l.items[i] = v
	l.notify([]any{v})
}

// Push appends items to the end.
func (l *List) Push(items ...any) {
	l.items = append(l.items, items...)
	l.notify(items)
}

// Pop removes and returns the last element, or nil when empty.
func (l *List) Pop() any {
	n := len(l.items)
	if n == 0 {
		return nil
	}
	v := l.items[n-1]
	l.items[n-1] = nil
	l.items = l.items[:n-1]
	l.notify(nil)
	return v
}

// Shift removes and returns the first element, or nil when empty.
func (l *List) Shift() any {
	if len(l.items) == 0 {
		return nil
	}
	v := l.items[0]
	l.items = append(l.items[:0], l.items[1:]...)
	l.notify(nil)
	return v
}

// Unshift inserts items at the front.
func (l *List) Unshift(items ...any) {
	l.items = append(items, l.items...)
	l.notify(items)
}

// Splice removes deleteCount elements starting at start, inserts items in
// their place, and returns the removed elements. Start and deleteCount are
// clamped to the valid range.
func (l *List) Splice(start, deleteCount int, items ...any) []any {
	n := len(l.items)
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > n {
		deleteCount = n - start
	}

	removed := make([]any, deleteCount)
	copy(removed, l.items[start:start+deleteCount])

	tail := make([]any, n-start-deleteCount)
	copy(tail, l.items[start+deleteCount:])

	l.items = append(l.items[:start], items...)
	l.items = append(l.items, tail...)

	l.notify(items)
	return removed
}

// Sort sorts the list in place using less and notifies.
func (l *List) Sort(less func(a, b any) bool) {
	sort.SliceStable(l.items, func(i, j int) bool {
		return less(l.items[i], l.items[j])
	})
	l.notify(nil)
}

// Reverse reverses the list in place and notifies.
func (l *List) Reverse() {
	for i, j := 0, len(l.items)-1; i < j; i, j = i+1, j-1 {
		l.items[i], l.items[j] = l.items[j], l.items[i]
	}
	l.notify(nil)
}
