package bread

// StringObj is the immutable byte-sequence heap object. Distinct
// lexical occurrences of the same literal share an object when
// created through the intern pool (NewStringLiteral vs
// NewStringDynamic).
type StringObj struct {
	heapHeader
	Bytes    string
	Interned bool
}

func (s *StringObj) Len() int { return len(s.Bytes) }

// internPool is the table mapping literal bytes to their shared
// StringObj, grounded on spec §4.1's new_literal description; lookup
// goes through a Go map keyed by the string itself.
type internTable struct {
	buckets map[string]*StringObj
}

var internPool = &internTable{buckets: map[string]*StringObj{}}

func (t *internTable) forget(s *StringObj) {
	if cur, ok := t.buckets[s.Bytes]; ok && cur == s {
		delete(t.buckets, s.Bytes)
	}
}

// fnv1a32 hashes bytes the same way original_source's
// bread_dict_hash_key hashes TYPE_STRING keys; used as the Dict
// string-key hash.
func fnv1a32(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// NewStringLiteral interns a literal string: repeated calls with
// equal bytes return objects sharing one handle with an incremented
// refcount, matching spec §8's testable property for new_literal.
func NewStringLiteral(s string) Value {
	if existing, ok := internPool.buckets[s]; ok {
		retain(existing)
		return Value{Tag: TagString, heap: existing}
	}
	obj := &StringObj{
		heapHeader: heapHeader{Kind: TagString, Refcount: 1},
		Bytes:      s,
		Interned:   true,
	}
	internPool.buckets[s] = obj
	globalMemoryTracker.track(obj, len(s))
	return Value{Tag: TagString, heap: obj}
}

// NewStringDynamic creates a non-interned string object; used for
// runtime-computed strings (concatenation results).
func NewStringDynamic(s string) Value {
	obj := &StringObj{
		heapHeader: heapHeader{Kind: TagString, Refcount: 1},
		Bytes:      s,
		Interned:   false,
	}
	globalMemoryTracker.track(obj, len(s))
	return Value{Tag: TagString, heap: obj}
}

// stringOf extracts the StringObj payload of a TagString value, or
// nil if v is not a string.
func stringOf(v Value) *StringObj {
	if v.Tag != TagString {
		return nil
	}
	s, _ := v.heap.(*StringObj)
	return s
}
