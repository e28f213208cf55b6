// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package storage defines the memory resources that back JSON document
// trees, and the Pointer handle that selects which resource a tree uses.
//
// A Resource hands out raw bytes. Every string, array, and object in a
// document draws its storage from the Resource selected by the Pointer it
// was constructed with, and that Pointer never changes for the lifetime of
// the node.
//
// The Monotonic resource is an arena: allocation bumps a cursor through a
// list of blocks, Deallocate does nothing, and all blocks are returned at
// once by Release.
package storage

import (
	"errors"
	"fmt"
	"math"
	"unsafe"
)

var (
	// ErrOutOfMemory is reported when a resource cannot satisfy a request.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrSizeLimit is reported when a request exceeds a documented maximum.
	ErrSizeLimit = errors.New("size limit exceeded")
)

// MaxAllocSize is the largest single request any resource in this package
// will attempt to satisfy.
const MaxAllocSize = math.MaxInt >> 2

// A Resource is a source of memory for document trees.
//
// Implementations need not be safe for concurrent use unless they say so.
type Resource interface {
	// Allocate returns size bytes whose first byte is aligned to a multiple
	// of align, which must be zero or a power of two.
	Allocate(size, align int) ([]byte, error)

	// Deallocate releases p, which must have been returned by Allocate on a
	// resource equal to this one, with the same alignment.
	Deallocate(p []byte, align int)

	// IsEqual reports whether memory allocated by r may be deallocated by
	// the receiver, and vice versa.
	IsEqual(r Resource) bool
}

// A Releaser is a Resource that can return all of its memory at once.
// When the last shared Pointer to a Releaser is released, its Release
// method is called.
type Releaser interface {
	Release()
}

// trivial is implemented by resources whose Deallocate method does nothing.
// Containers skip returning storage to such resources.
type trivial interface {
	deallocateIsTrivial()
}

// Default returns the process-wide default resource. It allocates from the
// Go heap, and its Deallocate method does nothing.
func Default() Resource { return heapResource{} }

type heapResource struct{}

// Allocate implements part of the Resource interface.
func (heapResource) Allocate(size, align int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	align = normAlign(align)
	if align == 1 {
		return make([]byte, size), nil
	}
	buf := make([]byte, size+align-1)
	pad := padding(buf, 0, align)
	return buf[pad : pad+size : pad+size], nil
}

// Deallocate implements part of the Resource interface.
// Heap memory is reclaimed by the garbage collector.
func (heapResource) Deallocate([]byte, int) {}

// IsEqual implements part of the Resource interface.
func (heapResource) IsEqual(r Resource) bool { _, ok := r.(heapResource); return ok }

func (heapResource) deallocateIsTrivial() {}

func (heapResource) String() string { return "storage.Default" }

func checkSize(size int) error {
	if size < 0 || size > MaxAllocSize {
		return fmt.Errorf("allocate %d bytes: %w", size, ErrSizeLimit)
	}
	return nil
}

// normAlign returns align normalized to at least 1. It panics if align is
// not a power of two; that is a programming error, not a runtime condition.
func normAlign(align int) int {
	if align <= 1 {
		return 1
	} else if align&(align-1) != 0 {
		panic(fmt.Sprintf("storage: alignment %d is not a power of two", align))
	}
	return align
}

// padding reports how many bytes must be skipped from buf[off] to reach an
// address that is a multiple of align.
func padding(buf []byte, off, align int) int {
	if align <= 1 || cap(buf) == 0 {
		return 0
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf))) + uintptr(off)
	return int(-addr & uintptr(align-1))
}

// roundPow2 returns the smallest power of two not less than n, or n itself
// if that would overflow max.
func roundPow2(n, max int) int {
	p := 1
	for p < n {
		if p > max/2 {
			return n
		}
		p <<= 1
	}
	return p
}
