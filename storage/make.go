// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package storage

import (
	"fmt"
	"reflect"
	"unsafe"
)

// A Lease records storage charged to a resource on behalf of a typed slice
// returned by Make or MakeScalars. The zero Lease owns nothing.
// Pass a Lease to Free when the slice it accompanies is no longer needed.
type Lease struct {
	r     Resource
	b     []byte
	align int
}

// IsZero reports whether l owns no storage.
func (l Lease) IsZero() bool { return l.r == nil }

// Free returns the storage recorded by l to its resource.
// Freeing a zero Lease does nothing.
func Free(l Lease) {
	if l.r != nil {
		l.r.Deallocate(l.b, l.align)
	}
}

// Make returns a slice of n zero-valued elements of type T whose storage is
// attributed to the resource of sp.
//
// The garbage collector must be able to see Go pointers, so element storage
// for T is typed memory rather than bytes obtained from Allocate:
//
//   - The Default resource allocates directly from the heap.
//   - A Monotonic resource allocates from per-type slabs that grow as its
//     blocks do. Slab memory is reclaimed by Release.
//   - Any other resource is charged n*sizeof(T) bytes through Allocate, and
//     the returned Lease holds that charge until it is passed to Free. The
//     charged bytes are not used to hold the elements, so the slice occupies
//     twice its size until it is freed.
func Make[T any](sp Pointer, n int) ([]T, Lease, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if n < 0 || (size != 0 && n > MaxAllocSize/size) {
		return nil, Lease{}, fmt.Errorf("make %d elements of %T: %w", n, zero, ErrSizeLimit)
	} else if n == 0 {
		return nil, Lease{}, nil
	}
	switch r := sp.Get().(type) {
	case heapResource:
		return make([]T, n), Lease{}, nil
	case *Monotonic:
		return slabFor[T](r).take(r, n, size), Lease{}, nil
	default:
		align := int(unsafe.Alignof(zero))
		b, err := r.Allocate(n*size, align)
		if err != nil {
			return nil, Lease{}, err
		}
		return make([]T, n), Lease{r: r, b: b, align: align}, nil
	}
}

// New returns a pointer to a single zero-valued T attributed to the
// resource of sp, as Make does for slices.
func New[T any](sp Pointer) (*T, Lease, error) {
	s, l, err := Make[T](sp, 1)
	if err != nil {
		return nil, l, err
	}
	return &s[0], l, nil
}

// A Scalar is an element type that contains no Go pointers.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// MakeScalars returns a slice of n zeroed elements of type T carved directly
// from memory obtained by Allocate on the resource of sp. For resources
// whose Deallocate does something, the returned Lease must be passed to Free
// once the slice is no longer needed.
func MakeScalars[T Scalar](sp Pointer, n int) ([]T, Lease, error) {
	var zero T
	size, align := int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero))
	if n < 0 || n > MaxAllocSize/size {
		return nil, Lease{}, fmt.Errorf("make %d scalars of %T: %w", n, zero, ErrSizeLimit)
	} else if n == 0 {
		return nil, Lease{}, nil
	}
	r := sp.Get()
	b, err := r.Allocate(n*size, align)
	if err != nil {
		return nil, Lease{}, err
	}
	clear(b) // arena memory may be reused after Release
	out := unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
	if sp.IsDeallocateTrivial() {
		return out, Lease{}, nil
	}
	return out, Lease{r: r, b: b, align: align}, nil
}

// A slab hands out typed element storage for a Monotonic arena.
type slab[T any] struct {
	buf  []T
	next int // elements in the next chunk
}

func slabFor[T any](m *Monotonic) *slab[T] {
	key := reflect.TypeFor[T]()
	if s, ok := m.slabs[key]; ok {
		return s.(*slab[T])
	}
	if m.slabs == nil {
		m.slabs = make(map[reflect.Type]any)
	}
	s := new(slab[T])
	m.slabs[key] = s
	return s
}

func (s *slab[T]) take(m *Monotonic, n, size int) []T {
	if n > len(s.buf) {
		if s.next == 0 {
			s.next = max(1, m.initNext/max(size, 1))
		}
		c := max(s.next, n)
		s.buf = make([]T, c)
		s.next = min(2*c, max(1, MaxBlockSize/max(size, 1)))
		m.blocks.Inc()
		m.reserved.Add(int64(c * size))
	}
	out := s.buf[:n:n]
	s.buf = s.buf[n:]
	return out
}
