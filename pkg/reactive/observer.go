package reactive

// Observer is attached to one observed container (Record or List). It owns
// the container-level Dep that fires on structural changes: key addition
// and removal for records, and every mutating list operation.
type Observer struct {
	dep *Dep

	// vmCount counts root usages of this container, i.e. how many
	// components use it as their state root.
	vmCount int
}

// Dep returns the container-level Dep.
func (o *Observer) Dep() *Dep {
	return o.dep
}

// observable is implemented by containers that can carry an Observer.
type observable interface {
	observer() *Observer
	setObserver(*Observer)

	// observeContents recursively observes the container's current
	// contents. Called once, when the Observer is first attached.
	observeContents()
}

// Observe attaches an Observer to value if it is an observable container.
//
// Calling Observe twice on the same container returns the same Observer
// (no double-wrapping). Values that are not records or lists are left
// unobserved and Observe returns nil: primitives pass through untouched.
func Observe(value any) *Observer {
	c, ok := value.(observable)
	if !ok {
		return nil
	}
	if ob := c.observer(); ob != nil {
		return ob
	}
	ob := &Observer{dep: NewDep()}
	c.setObserver(ob)
	c.observeContents()
	return ob
}

// ObserveRoot observes value as a component state root, bumping the
// observer's root-usage count.
func ObserveRoot(value any) *Observer {
	ob := Observe(value)
	if ob != nil {
		ob.vmCount++
	}
	return ob
}

// observerOf returns the Observer attached to value, or nil.
func observerOf(value any) *Observer {
	if c, ok := value.(observable); ok {
		return c.observer()
	}
	return nil
}
