// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package storage

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// allocatorAlign is the alignment guaranteed by Arrow allocators.
const allocatorAlign = 64

// AllocatorResource is a Resource that obtains memory from an Arrow
// memory.Allocator. It is a suitable upstream for a Monotonic arena, and
// with a memory.CheckedAllocator makes leaked blocks visible.
type AllocatorResource struct {
	mem memory.Allocator
}

// NewAllocatorResource returns a Resource that allocates from mem.
// If mem == nil, it uses memory.DefaultAllocator.
func NewAllocatorResource(mem memory.Allocator) *AllocatorResource {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &AllocatorResource{mem: mem}
}

// Allocator returns the underlying Arrow allocator.
func (a *AllocatorResource) Allocator() memory.Allocator { return a.mem }

// Allocate implements part of the Resource interface. Alignments above 64
// bytes are not supported.
func (a *AllocatorResource) Allocate(size, align int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	} else if normAlign(align) > allocatorAlign {
		return nil, fmt.Errorf("alignment %d exceeds %d: %w", align, allocatorAlign, ErrOutOfMemory)
	}
	b := a.mem.Allocate(size)
	if len(b) != size {
		return nil, fmt.Errorf("allocate %d bytes: %w", size, ErrOutOfMemory)
	}
	return b[:size:size], nil
}

// Deallocate implements part of the Resource interface.
func (a *AllocatorResource) Deallocate(p []byte, _ int) {
	if p != nil {
		a.mem.Free(p)
	}
}

// IsEqual implements part of the Resource interface. Two allocator
// resources are equal if they share an Arrow allocator.
func (a *AllocatorResource) IsEqual(r Resource) bool {
	o, ok := r.(*AllocatorResource)
	return ok && o.mem == a.mem
}
