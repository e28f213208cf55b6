// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package storage

import (
	"fmt"

	"go.uber.org/atomic"
)

// A Pointer is a handle to the Resource backing a document node. The zero
// Pointer refers to the Default resource and requires no bookkeeping.
//
// A Pointer is one machine word and is cheap to copy. Copying does not
// change reference counts: a holder that keeps a shared Pointer beyond the
// lifetime of the Pointer it was given must call Retain, and must call
// Release when it is done.
type Pointer struct{ h *handle }

type handle struct {
	r       Resource
	refs    atomic.Int64 // live shares; unused if !shared
	shared  bool
	trivial bool
}

// Ref returns a non-owning Pointer to r. The caller retains ownership of r
// and must ensure it outlives every holder of the Pointer. If r == nil, or r
// is the Default resource, Ref returns the zero Pointer.
func Ref(r Resource) Pointer {
	if r == nil {
		return Pointer{}
	} else if _, ok := r.(heapResource); ok {
		return Pointer{}
	}
	_, triv := r.(trivial)
	return Pointer{h: &handle{r: r, trivial: triv}}
}

// Share returns a reference-counted Pointer to r with a count of one. When
// the count falls to zero and r implements Releaser, its Release method is
// called. Reference counting is safe for concurrent use even if r is not.
func Share(r Resource) Pointer {
	if r == nil {
		panic("storage: share of nil resource")
	}
	_, triv := r.(trivial)
	h := &handle{r: r, shared: true, trivial: triv}
	h.refs.Store(1)
	return Pointer{h: h}
}

// Get returns the resource referred to by p.
func (p Pointer) Get() Resource {
	if p.h == nil {
		return heapResource{}
	}
	return p.h.r
}

// Retain adds a reference to a shared Pointer and returns p.
// For other Pointers, Retain simply returns p.
func (p Pointer) Retain() Pointer {
	if p.h != nil && p.h.shared {
		p.h.refs.Inc()
	}
	return p
}

// Release drops a reference to a shared Pointer. It has no effect on other
// Pointers. Releasing more references than were taken panics.
func (p Pointer) Release() {
	if p.h == nil || !p.h.shared {
		return
	}
	switch n := p.h.refs.Dec(); {
	case n == 0:
		if r, ok := p.h.r.(Releaser); ok {
			r.Release()
		}
	case n < 0:
		panic("storage: pointer released too many times")
	}
}

// IsDefault reports whether p refers to the Default resource.
func (p Pointer) IsDefault() bool { return p.h == nil }

// IsShared reports whether p is reference-counted.
func (p Pointer) IsShared() bool { return p.h != nil && p.h.shared }

// UseCount reports the number of live references to a shared Pointer, or 0.
func (p Pointer) UseCount() int64 {
	if p.IsShared() {
		return p.h.refs.Load()
	}
	return 0
}

// IsDeallocateTrivial reports whether the resource of p documents its
// Deallocate method as a no-op.
func (p Pointer) IsDeallocateTrivial() bool { return p.h == nil || p.h.trivial }

// Equal reports whether p and q refer to equal resources, meaning storage
// owned under one may be adopted by the other without copying.
func (p Pointer) Equal(q Pointer) bool {
	if p.h == q.h {
		return true
	}
	return p.Get().IsEqual(q.Get())
}

func (p Pointer) String() string {
	switch {
	case p.h == nil:
		return "Pointer(default)"
	case p.h.shared:
		return fmt.Sprintf("Pointer(shared %T, refs=%d)", p.h.r, p.h.refs.Load())
	default:
		return fmt.Sprintf("Pointer(ref %T)", p.h.r)
	}
}
