package bread

import "fmt"

// maxRefcount mirrors UINT32_MAX from the original runtime; retaining
// past it is treated as a memory error rather than silently
// wrapping.
const maxRefcount = ^uint32(0)

// retain increments o's refcount. Objects enter the memory tracker
// when they are constructed, not here.
func retain(o heapObject) {
	h := o.header()
	if h.Refcount == maxRefcount {
		panic(&BreadError{Category: ErrMemoryAllocation, Message: "refcount overflow"})
	}
	h.Refcount++
}

// release decrements o's refcount and destroys it (releasing owned
// children) once it reaches zero.
func release(o heapObject) {
	h := o.header()
	if h.Refcount == 0 {
		return // already freed; matches original's defensive guard
	}
	h.Refcount--
	if h.Refcount == 0 {
		destroy(o)
	}
}

// destroy releases every owned child of o. Heap objects never hold a
// strong reference to a class's parent (spec §3: "parent pointer:
// weak"), so destroying a Class never cascades into its parent.
func destroy(o heapObject) {
	switch obj := o.(type) {
	case *ArrayObj:
		for _, v := range obj.Elements {
			Release(v)
		}
		obj.Elements = nil
		globalMemoryTracker.forget(obj)
	case *DictObj:
		for i := range obj.Entries {
			e := &obj.Entries[i]
			if e.IsOccupied && !e.IsDeleted {
				Release(e.Key)
				Release(e.Value)
			}
		}
		obj.Entries = nil
		globalMemoryTracker.forget(obj)
	case *OptionalObj:
		if obj.IsSome {
			Release(obj.Value)
		}
		globalMemoryTracker.forget(obj)
	case *StructObj:
		for _, v := range obj.Values {
			Release(v)
		}
		obj.Values = nil
		globalMemoryTracker.forget(obj)
	case *ClassObj:
		for _, v := range obj.Values {
			Release(v)
		}
		obj.Values = nil
		globalMemoryTracker.forget(obj)
	case *StringObj:
		if obj.Interned {
			internPool.forget(obj)
		}
		globalMemoryTracker.forget(obj)
	}
}

// trackedObject is the bookkeeping record kept by the debug-mode
// memory tracker, grounded on original_source's live-object linked
// list (kind/size/marked fields).
type trackedObject struct {
	obj    heapObject
	kind   ValueTag
	size   int
	marked bool
}

// MemoryTracker records every live heap object when debug mode is
// enabled; in non-debug mode all of its methods are no-ops. Grounded
// on original_source/src/runtime/memory.c.
type MemoryTracker struct {
	enabled bool
	live    map[heapObject]*trackedObject
}

var globalMemoryTracker = &MemoryTracker{live: map[heapObject]*trackedObject{}}

// EnableDebugMode turns on live-object tracking for leak reporting.
func EnableDebugMode() { globalMemoryTracker.enabled = true }

// DisableDebugMode turns tracking back off and clears bookkeeping.
func DisableDebugMode() {
	globalMemoryTracker.enabled = false
	globalMemoryTracker.live = map[heapObject]*trackedObject{}
}

func (mt *MemoryTracker) track(o heapObject, size int) {
	if !mt.enabled {
		return
	}
	mt.live[o] = &trackedObject{obj: o, kind: o.kind(), size: size}
}

func (mt *MemoryTracker) forget(o heapObject) {
	if !mt.enabled {
		return
	}
	delete(mt.live, o)
}

// LeakReport describes one object still live (refcount != 0) when
// Report is called.
type LeakReport struct {
	Kind ValueTag
	Size int
}

// Report returns every object the tracker believes is still live.
// Called at interpreter shutdown in debug mode; an empty result means
// no leaks.
func (mt *MemoryTracker) Report() []LeakReport {
	var out []LeakReport
	for _, t := range mt.live {
		if t.obj.header().Refcount != 0 {
			out = append(out, LeakReport{Kind: t.kind, Size: t.size})
		}
	}
	return out
}

func (r LeakReport) String() string {
	return fmt.Sprintf("leaked %s object (size %d)", r.Kind, r.Size)
}
