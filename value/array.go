// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package value

import (
	"fmt"
	"iter"

	"github.com/creachadair/jdom/storage"
)

// An Array is an ordered sequence of values stored in a resource. Every
// element of an Array uses the same storage pointer as the Array.
//
// Pointers to elements returned by At and Index are valid until the array
// is next resized.
type Array struct {
	sp    storage.Pointer
	elems []Value // len(elems) is the length; cap(elems) the capacity
	lease storage.Lease
	node  storage.Lease
}

func newArray(sp storage.Pointer) (*Array, error) {
	a, node, err := storage.New[Array](sp)
	if err != nil {
		return nil, err
	}
	a.sp, a.node = sp, node
	return a, nil
}

func (a *Array) free() {
	for i := range a.elems {
		a.elems[i].Release()
	}
	storage.Free(a.lease)
	storage.Free(a.node)
	*a = Array{}
}

// Storage returns the storage pointer of a.
func (a *Array) Storage() storage.Pointer { return a.sp }

// Len reports the number of elements in a.
func (a *Array) Len() int { return len(a.elems) }

// Cap reports the number of elements a can hold without reallocating.
func (a *Array) Cap() int { return cap(a.elems) }

// IsEmpty reports whether a has no elements.
func (a *Array) IsEmpty() bool { return len(a.elems) == 0 }

// At returns a pointer to the element at offset i of a.
func (a *Array) At(i int) (*Value, error) {
	if i < 0 || i >= len(a.elems) {
		return nil, fmt.Errorf("index %d of array length %d: %w", i, len(a.elems), ErrOutOfRange)
	}
	return &a.elems[i], nil
}

// Index returns a pointer to the element at offset i of a.
// It panics if i is out of range.
func (a *Array) Index(i int) *Value { return &a.elems[i] }

// All iterates over the offsets and elements of a, in order.
func (a *Array) All() iter.Seq2[int, *Value] {
	return func(yield func(int, *Value) bool) {
		for i := range a.elems {
			if !yield(i, &a.elems[i]) {
				return
			}
		}
	}
}

// realloc moves the elements of a to new storage with room for n.
func (a *Array) realloc(n int) error {
	elems, lease, err := storage.Make[Value](a.sp, n)
	if err != nil {
		return err
	}
	elems = elems[:copy(elems, a.elems)]
	clear(a.elems)
	storage.Free(a.lease)
	a.elems, a.lease = elems, lease
	return nil
}

// ensure makes room for need elements in total.
func (a *Array) ensure(need int) error {
	if need > MaxArraySize {
		return fmt.Errorf("array of %d elements: %w", need, storage.ErrSizeLimit)
	} else if need <= cap(a.elems) {
		return nil
	}
	c := cap(a.elems)
	if c > MaxArraySize/2 {
		c = MaxArraySize
	} else {
		c = max(need, 2*c, 4)
	}
	return a.realloc(c)
}

// Reserve ensures a can hold at least n elements without reallocating.
func (a *Array) Reserve(n int) error {
	if n > MaxArraySize {
		return fmt.Errorf("reserve %d elements: %w", n, storage.ErrSizeLimit)
	} else if n <= cap(a.elems) {
		return nil
	}
	return a.realloc(n)
}

// adoptValue converts v to a value using the storage pointer of a. If v
// uses a different resource it is copied and released.
func (a *Array) adoptValue(v Value) (Value, error) {
	if v.sp == a.sp {
		return v, nil
	}
	return Move(&v, a.sp)
}

// Push adds v to the end of a. The array takes ownership of v: the caller
// must not use or release v afterward. If v uses a different resource than
// a, it is deep-copied into the resource of a and released.
func (a *Array) Push(v Value) error {
	if err := a.ensure(len(a.elems) + 1); err != nil {
		return err
	}
	w, err := a.adoptValue(v)
	if err != nil {
		return err
	}
	a.elems = append(a.elems, w)
	return nil
}

// PushCopy adds a deep copy of v to the end of a. The caller retains
// ownership of v.
func (a *Array) PushCopy(v Value) error {
	if err := a.ensure(len(a.elems) + 1); err != nil {
		return err
	}
	w, err := Copy(v, a.sp)
	if err != nil {
		return err
	}
	a.elems = append(a.elems, w)
	return nil
}

// Insert inserts v at offset i of a, taking ownership of it as Push does.
func (a *Array) Insert(i int, v Value) error {
	if i < 0 || i > len(a.elems) {
		return fmt.Errorf("insert at %d of array length %d: %w", i, len(a.elems), ErrOutOfRange)
	}
	if err := a.ensure(len(a.elems) + 1); err != nil {
		return err
	}
	w, err := a.adoptValue(v)
	if err != nil {
		return err
	}
	a.elems = append(a.elems, Value{})
	copy(a.elems[i+1:], a.elems[i:])
	a.elems[i] = w
	return nil
}

// Erase removes and releases the element at offset i of a.
func (a *Array) Erase(i int) error {
	if i < 0 || i >= len(a.elems) {
		return fmt.Errorf("erase at %d of array length %d: %w", i, len(a.elems), ErrOutOfRange)
	}
	a.elems[i].Release()
	copy(a.elems[i:], a.elems[i+1:])
	a.elems[len(a.elems)-1] = Value{}
	a.elems = a.elems[:len(a.elems)-1]
	return nil
}

// Pop removes the last element of a and returns it. The caller takes
// ownership of the result.
func (a *Array) Pop() (Value, error) {
	n := len(a.elems)
	if n == 0 {
		return Value{}, fmt.Errorf("pop from empty array: %w", ErrOutOfRange)
	}
	v := a.elems[n-1]
	a.elems[n-1] = Value{}
	a.elems = a.elems[:n-1]
	return v, nil
}

// Resize changes the length of a to n. New elements are null, and excess
// elements are released.
func (a *Array) Resize(n int) error {
	if n < 0 {
		return fmt.Errorf("resize to %d: %w", n, ErrOutOfRange)
	}
	if err := a.ensure(n); err != nil {
		return err
	}
	for i := n; i < len(a.elems); i++ {
		a.elems[i].Release()
	}
	old := len(a.elems)
	a.elems = a.elems[:n]
	for i := old; i < n; i++ {
		a.elems[i] = NewNull(a.sp)
	}
	return nil
}

// Clear releases all the elements of a, keeping its capacity.
func (a *Array) Clear() {
	for i := range a.elems {
		a.elems[i].Release()
	}
	a.elems = a.elems[:0]
}

// copyFrom appends deep copies of the elements of src to a.
func (a *Array) copyFrom(src *Array) error {
	if err := a.Reserve(len(a.elems) + src.Len()); err != nil {
		return err
	}
	for _, e := range src.elems {
		if err := a.PushCopy(e); err != nil {
			return err
		}
	}
	return nil
}
