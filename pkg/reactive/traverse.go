package reactive

// traverse recursively touches every reachable nested value so that deep
// watchers collect dependencies on the entire subtree. The seen set is
// keyed by container Dep id to survive cyclic references.
func traverse(val any) {
	seen := make(map[uint64]struct{})
	traverseValue(val, seen)
}

func traverseValue(val any, seen map[uint64]struct{}) {
	switch v := val.(type) {
	case *Record:
		if ob := v.observer(); ob != nil {
			if _, ok := seen[ob.dep.id]; ok {
				return
			}
			seen[ob.dep.id] = struct{}{}
		}
		for _, key := range v.Keys() {
			// Get registers the field Dep with the active watcher.
			traverseValue(v.Get(key), seen)
		}
	case *List:
		if ob := v.observer(); ob != nil {
			if _, ok := seen[ob.dep.id]; ok {
				return
			}
			seen[ob.dep.id] = struct{}{}
			ob.dep.Depend()
		}
		for _, e := range v.items {
			traverseValue(e, seen)
		}
	}
}
