// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package value

import (
	"bytes"
	"fmt"
	"iter"
	"math/bits"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/creachadair/jdom/storage"
)

// indexThreshold is the largest object that is searched linearly.
const indexThreshold = 8

// An Object is a collection of key-value members with unique keys, kept in
// insertion order and stored in a resource. Every member value uses the same
// storage pointer as the Object.
//
// Objects with more than a few members keep a hash index of their keys.
// Pointers to member values are valid until the object is next modified.
type Object struct {
	sp      storage.Pointer
	members []member
	lease   storage.Lease
	index   []uint32 // slot holds member offset+1, or 0 if empty
	ilease  storage.Lease
	node    storage.Lease
}

type member struct {
	key []byte // stored in the resource
	val Value
}

func newObject(sp storage.Pointer) (*Object, error) {
	o, node, err := storage.New[Object](sp)
	if err != nil {
		return nil, err
	}
	o.sp, o.node = sp, node
	return o, nil
}

func (o *Object) free() {
	o.Clear()
	storage.Free(o.lease)
	storage.Free(o.ilease)
	storage.Free(o.node)
	*o = Object{}
}

func (o *Object) freeKey(key []byte) {
	if key != nil && !o.sp.IsDeallocateTrivial() {
		o.sp.Get().Deallocate(key, 1)
	}
}

// Storage returns the storage pointer of o.
func (o *Object) Storage() storage.Pointer { return o.sp }

// Len reports the number of members in o.
func (o *Object) Len() int { return len(o.members) }

// Cap reports the number of members o can hold without reallocating.
func (o *Object) Cap() int { return cap(o.members) }

// IsEmpty reports whether o has no members.
func (o *Object) IsEmpty() bool { return len(o.members) == 0 }

func keyBytes(key string) []byte { return unsafe.Slice(unsafe.StringData(key), len(key)) }

func keyView(key []byte) string { return unsafe.String(unsafe.SliceData(key), len(key)) }

// find returns the offset of the member with the given key, or -1.
func (o *Object) find(key []byte) int {
	if o.index == nil {
		for i := range o.members {
			if bytes.Equal(o.members[i].key, key) {
				return i
			}
		}
		return -1
	}
	mask := uint64(len(o.index) - 1)
	for h := xxhash.Sum64(key) & mask; ; h = (h + 1) & mask {
		s := o.index[h]
		if s == 0 {
			return -1
		} else if bytes.Equal(o.members[s-1].key, key) {
			return int(s - 1)
		}
	}
}

// Find returns the offset in insertion order of the member with the given
// key, or -1 if there is none.
func (o *Object) Find(key string) int { return o.find(keyBytes(key)) }

// Contains reports whether o has a member with the given key.
func (o *Object) Contains(key string) bool { return o.Find(key) >= 0 }

// Get returns a pointer to the value of the member with the given key, and
// reports whether it was found.
func (o *Object) Get(key string) (*Value, bool) {
	if i := o.Find(key); i >= 0 {
		return &o.members[i].val, true
	}
	return nil, false
}

// At returns a pointer to the value of the member with the given key.
func (o *Object) At(key string) (*Value, error) {
	if v, ok := o.Get(key); ok {
		return v, nil
	}
	return nil, fmt.Errorf("key %q: %w", key, ErrOutOfRange)
}

// Member returns the key and a pointer to the value of the member at offset
// i in insertion order. It panics if i is out of range. The key aliases the
// storage of o and is valid until o is next modified.
func (o *Object) Member(i int) (string, *Value) {
	m := &o.members[i]
	return keyView(m.key), &m.val
}

// All iterates over the members of o in insertion order. Each key aliases
// the storage of o and is valid until o is next modified.
func (o *Object) All() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		for i := range o.members {
			m := &o.members[i]
			if !yield(keyView(m.key), &m.val) {
				return
			}
		}
	}
}

// Keys iterates over the keys of o in insertion order.
func (o *Object) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := range o.members {
			if !yield(keyView(o.members[i].key)) {
				return
			}
		}
	}
}

// realloc moves the members of o to new storage with room for n, and
// rebuilds the index if one is needed.
func (o *Object) realloc(n int) error {
	members, lease, err := storage.Make[member](o.sp, n)
	if err != nil {
		return err
	}
	if err := o.rebuildIndex(n); err != nil {
		storage.Free(lease)
		return err
	}
	members = members[:copy(members, o.members)]
	clear(o.members)
	storage.Free(o.lease)
	o.members, o.lease = members, lease
	o.reindex()
	return nil
}

// rebuildIndex allocates an empty index suitable for an object with the
// given capacity, or drops the index if the capacity is small.
func (o *Object) rebuildIndex(capacity int) error {
	if capacity <= indexThreshold {
		storage.Free(o.ilease)
		o.index, o.ilease = nil, storage.Lease{}
		return nil
	}
	size := 1 << bits.Len(uint(2*capacity-1)) // power of two >= 2*capacity
	if len(o.index) == size {
		clear(o.index)
		return nil
	}
	index, lease, err := storage.MakeScalars[uint32](o.sp, size)
	if err != nil {
		return err
	}
	storage.Free(o.ilease)
	o.index, o.ilease = index, lease
	return nil
}

// reindex adds every member of o to an empty index.
func (o *Object) reindex() {
	if o.index == nil {
		return
	}
	clear(o.index)
	for i := range o.members {
		o.addIndex(i)
	}
}

// addIndex records member i in the index.
func (o *Object) addIndex(i int) {
	if o.index == nil {
		return
	}
	mask := uint64(len(o.index) - 1)
	h := xxhash.Sum64(o.members[i].key) & mask
	for o.index[h] != 0 {
		h = (h + 1) & mask
	}
	o.index[h] = uint32(i + 1)
}

// ensure makes room for need members in total.
func (o *Object) ensure(need int) error {
	if need > MaxObjectSize {
		return fmt.Errorf("object of %d members: %w", need, storage.ErrSizeLimit)
	} else if need <= cap(o.members) {
		return nil
	}
	c := cap(o.members)
	if c > MaxObjectSize/2 {
		c = MaxObjectSize
	} else {
		c = max(need, 2*c, 4)
	}
	return o.realloc(c)
}

// Reserve ensures o can hold at least n members without reallocating.
func (o *Object) Reserve(n int) error {
	if n > MaxObjectSize {
		return fmt.Errorf("reserve %d members: %w", n, storage.ErrSizeLimit)
	} else if n <= cap(o.members) {
		return nil
	}
	return o.realloc(n)
}

// Set sets the value of the member with the given key to v, adding a new
// member at the end of o if there is none. The object takes ownership of v
// as Array.Push does. If the key exists, its previous value is released and
// the member keeps its position.
func (o *Object) Set(key string, v Value) error { return o.SetBytes(keyBytes(key), v) }

// SetBytes is as Set, with the key given as a byte slice. The object does
// not retain key.
func (o *Object) SetBytes(key []byte, v Value) error {
	if i := o.find(key); i >= 0 {
		w, err := Move(&v, o.sp)
		if err != nil {
			return err
		}
		m := &o.members[i]
		m.val.Release()
		m.val = w
		return nil
	}
	return o.add(key, v)
}

// Insert adds a member with the given key and value v if o does not already
// have one, and reports whether it did. If the member is added, the object
// takes ownership of v; otherwise the caller retains it.
func (o *Object) Insert(key string, v Value) (bool, error) {
	kb := keyBytes(key)
	if o.find(kb) >= 0 {
		return false, nil
	}
	if err := o.add(kb, v); err != nil {
		return false, err
	}
	return true, nil
}

// add appends a new member whose key is known to be absent.
func (o *Object) add(key []byte, v Value) error {
	if err := o.ensure(len(o.members) + 1); err != nil {
		return err
	}
	var kb []byte
	if len(key) != 0 {
		if len(key) > MaxStringSize {
			return fmt.Errorf("key of %d bytes: %w", len(key), storage.ErrSizeLimit)
		}
		b, err := o.sp.Get().Allocate(len(key), 1)
		if err != nil {
			return err
		}
		kb = b[:copy(b, key)]
	}
	w, err := Move(&v, o.sp)
	if err != nil {
		o.freeKey(kb)
		return err
	}
	o.members = append(o.members, member{key: kb, val: w})
	o.addIndex(len(o.members) - 1)
	return nil
}

// Erase removes and releases the member with the given key, and reports
// whether there was one. The order of the remaining members is preserved.
func (o *Object) Erase(key string) bool {
	i := o.Find(key)
	if i < 0 {
		return false
	}
	m := &o.members[i]
	o.freeKey(m.key)
	m.val.Release()
	copy(o.members[i:], o.members[i+1:])
	o.members[len(o.members)-1] = member{}
	o.members = o.members[:len(o.members)-1]
	o.reindex()
	return true
}

// Clear releases all the members of o, keeping its capacity.
func (o *Object) Clear() {
	for i := range o.members {
		m := &o.members[i]
		o.freeKey(m.key)
		m.val.Release()
		*m = member{}
	}
	o.members = o.members[:0]
	clear(o.index)
}

// copyFrom adds deep copies of the members of src to o.
func (o *Object) copyFrom(src *Object) error {
	if err := o.Reserve(len(o.members) + src.Len()); err != nil {
		return err
	}
	for _, m := range src.members {
		w, err := Copy(m.val, o.sp)
		if err != nil {
			return err
		}
		if err := o.SetBytes(m.key, w); err != nil {
			w.Release()
			return err
		}
	}
	return nil
}
