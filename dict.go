package bread

import (
	"fmt"
	"strings"
)

// DictEntry is one slot in the open-addressed table, with tombstone
// tracking per spec invariant 3.
type DictEntry struct {
	Key        Value
	Value      Value
	IsOccupied bool
	IsDeleted  bool
}

// DictObj is the open-addressed hash table from spec §3, resizing at
// a 0.75 load factor, grounded on
// original_source/src/core/value_dict.c.
type DictObj struct {
	heapHeader
	KeyType   ValueTag
	ValueType ValueTag
	Entries   []DictEntry
	Count     int
}

const dictLoadFactor = 0.75
const dictInitialCapacity = 8

// NewDict constructs an empty dict with the given key/value type tags.
func NewDict(keyType, valueType ValueTag) Value {
	obj := &DictObj{
		heapHeader: heapHeader{Kind: TagDict, Refcount: 1},
		KeyType:    keyType,
		ValueType:  valueType,
	}
	globalMemoryTracker.track(obj, 0)
	return Value{Tag: TagDict, heap: obj}
}

func dictOf(v Value) *DictObj {
	if v.Tag != TagDict {
		return nil
	}
	d, _ := v.heap.(*DictObj)
	return d
}

// hashKey mixes Int/Double keys and FNV-1a hashes String keys,
// reproducing original_source's bread_dict_hash_key mixing constants
// verbatim (SPEC_FULL.md §12).
func hashKey(key Value) uint32 {
	switch key.Tag {
	case TagInt:
		x := uint32(key.intVal)
		x = ((x >> 16) ^ x) * 0x45d9f3b
		x = ((x >> 16) ^ x) * 0x45d9f3b
		x = (x >> 16) ^ x
		return x
	case TagDouble:
		bits := doubleBits(key.doubleVal)
		h1 := uint32(bits & 0xFFFFFFFF)
		h2 := uint32(bits >> 32)
		return h1 ^ h2
	case TagString:
		if s := stringOf(key); s != nil {
			return fnv1a32(s.Bytes)
		}
		return 0
	case TagBool:
		if key.boolVal {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func keysEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagInt:
		return a.intVal == b.intVal
	case TagDouble:
		return a.doubleVal == b.doubleVal
	case TagBool:
		return a.boolVal == b.boolVal
	case TagString:
		sa, sb := stringOf(a), stringOf(b)
		return sa != nil && sb != nil && sa.Bytes == sb.Bytes
	case TagNil:
		return true
	default:
		return false
	}
}

// findSlot linearly probes from the key's hashed bucket, returning
// the slot where the key lives or would be inserted (an empty slot or
// a reusable tombstone).
func (d *DictObj) findSlot(key Value) int {
	if len(d.Entries) == 0 {
		return -1
	}
	capacity := len(d.Entries)
	start := int(hashKey(key) % uint32(capacity))
	slot := start
	firstTombstone := -1
	for i := 0; i < capacity; i++ {
		e := &d.Entries[slot]
		if !e.IsOccupied {
			if firstTombstone >= 0 {
				return firstTombstone
			}
			return slot
		}
		if e.IsDeleted {
			if firstTombstone < 0 {
				firstTombstone = slot
			}
		} else if e.Key.Tag == key.Tag && keysEqual(e.Key, key) {
			return slot
		}
		slot = (slot + 1) % capacity
	}
	if firstTombstone >= 0 {
		return firstTombstone
	}
	return -1
}

func (d *DictObj) resize(newCapacity int) {
	old := d.Entries
	d.Entries = make([]DictEntry, newCapacity)
	for _, e := range old {
		if e.IsOccupied && !e.IsDeleted {
			slot := d.findSlot(e.Key)
			d.Entries[slot] = DictEntry{Key: e.Key, Value: e.Value, IsOccupied: true}
		}
	}
}

func (d *DictObj) maybeGrow() {
	if len(d.Entries) == 0 {
		d.Entries = make([]DictEntry, dictInitialCapacity)
		return
	}
	if float64(d.Count+1) > float64(len(d.Entries))*dictLoadFactor {
		d.resize(len(d.Entries) * 2)
	}
}

// Set inserts or overwrites key -> value, type-checking both against
// the dict's tags.
func (d *DictObj) Set(key, value Value, keyTag, valueTag ValueTag) error {
	if d.KeyType != TagNil && d.KeyType != keyTag {
		return fmt.Errorf("cannot use %s key on dict of %s keys", keyTag, d.KeyType)
	}
	if d.ValueType != TagNil && d.ValueType != valueTag {
		return fmt.Errorf("cannot set %s value on dict of %s values", valueTag, d.ValueType)
	}
	d.maybeGrow()
	slot := d.findSlot(key)
	e := &d.Entries[slot]
	if e.IsOccupied && !e.IsDeleted {
		Release(e.Value)
		e.Value = Clone(value)
		return nil
	}
	*e = DictEntry{Key: Clone(key), Value: Clone(value), IsOccupied: true}
	d.Count++
	if d.KeyType == TagNil {
		d.KeyType = keyTag
	}
	if d.ValueType == TagNil {
		d.ValueType = valueTag
	}
	return nil
}

// Get looks up key, returning (value, true) on a hit or (Nil, false)
// on a miss — a miss is never an error (spec §4.6).
func (d *DictObj) Get(key Value) (Value, bool) {
	slot := d.findSlot(key)
	if slot < 0 {
		return NilValue, false
	}
	e := &d.Entries[slot]
	if !e.IsOccupied || e.IsDeleted {
		return NilValue, false
	}
	return e.Value, true
}

// ContainsKey reports whether key has a live entry.
func (d *DictObj) ContainsKey(key Value) bool {
	_, ok := d.Get(key)
	return ok
}

// Delete tombstones the entry for key, if present.
func (d *DictObj) Delete(key Value) bool {
	slot := d.findSlot(key)
	if slot < 0 {
		return false
	}
	e := &d.Entries[slot]
	if !e.IsOccupied || e.IsDeleted {
		return false
	}
	Release(e.Key)
	Release(e.Value)
	e.IsDeleted = true
	d.Count--
	return true
}

func (d *DictObj) Len() int { return d.Count }

func (d DictObj) String() string {
	var b strings.Builder
	b.WriteString("[")
	first := true
	for _, e := range d.Entries {
		if !e.IsOccupied || e.IsDeleted {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s: %s", e.Key.String(), e.Value.String())
	}
	if first {
		b.WriteString(":")
	}
	b.WriteString("]")
	return b.String()
}
