// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package storage

import (
	"fmt"
	"reflect"

	"go.uber.org/atomic"
)

const (
	// MinBlockSize is the smallest block a Monotonic resource allocates.
	MinBlockSize = 1024

	// MaxBlockSize bounds the growth of ordinary Monotonic blocks. Requests
	// larger than this still succeed, in a block of their own size.
	MaxBlockSize = 1 << 30

	// blockAlign is the alignment requested for blocks from an upstream.
	blockAlign = 16
)

// Monotonic is an arena Resource. Allocate carves memory from the current
// block, and when the block is exhausted, obtains a new one from the
// upstream resource. Each new block is at least twice as large as the one
// before it, up to MaxBlockSize.
//
// Deallocate does nothing: memory is reclaimed only when Release is called,
// which returns every block to the upstream at once. This makes allocation
// very cheap, at the cost of never reusing memory within a document.
//
// A Monotonic is not safe for concurrent use. Its Stats may be read
// concurrently with allocation.
type Monotonic struct {
	head     *block
	initial  []byte // caller-supplied first block, or nil
	initNext int    // nextSize after Release
	nextSize int
	upstream Resource

	// Typed element storage for values holding Go pointers; see Make.
	slabs map[reflect.Type]any

	blocks   atomic.Int64
	reserved atomic.Int64
}

// A block is one contiguous region of arena memory.
type block struct {
	buf  []byte
	used int
	own  bool // obtained from upstream
	next *block
}

// take returns size bytes aligned to align from the unused tail of b,
// and reports whether there was room.
func (b *block) take(size, align int) ([]byte, bool) {
	pad := padding(b.buf, b.used, align)
	start := b.used + pad
	if start+size > len(b.buf) || start+size < start {
		return nil, false
	}
	b.used = start + size
	return b.buf[start : start+size : start+size], true
}

// NewMonotonic constructs an arena whose first block holds size bytes,
// rounded up to a power of two and at least MinBlockSize. If size <= 0 the
// first block is MinBlockSize bytes. Blocks are obtained from upstream, or
// from the Default resource if upstream == nil. No memory is allocated until
// the first request.
func NewMonotonic(size int, upstream Resource) *Monotonic {
	next := roundPow2(max(size, MinBlockSize), MaxBlockSize)
	return &Monotonic{
		initNext: next,
		nextSize: next,
		upstream: orDefault(upstream),
	}
}

// NewMonotonicBuffer constructs an arena that allocates from buf before it
// obtains any blocks of its own. The arena does not take ownership of buf:
// it is never passed to the upstream, and the caller must not use it until
// the arena is no longer in use. The first block obtained after buf is
// exhausted is the next power of two larger than len(buf), and at least
// MinBlockSize.
func NewMonotonicBuffer(buf []byte, upstream Resource) *Monotonic {
	next := roundPow2(max(len(buf)+1, MinBlockSize), MaxBlockSize)
	m := &Monotonic{
		initial:  buf,
		initNext: next,
		nextSize: next,
		upstream: orDefault(upstream),
	}
	m.reset()
	return m
}

func orDefault(r Resource) Resource {
	if r == nil {
		return heapResource{}
	}
	return r
}

// Allocate implements part of the Resource interface. The returned slice
// has capacity equal to its length, so appending to it cannot overwrite
// other allocations.
func (m *Monotonic) Allocate(size, align int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	align = normAlign(align)
	if m.head != nil {
		if p, ok := m.head.take(size, align); ok {
			return p, nil
		}
	}
	return m.grow(size, align)
}

// grow links a new block able to satisfy a request for size bytes at the
// given alignment, and allocates from it. On failure no state changes.
func (m *Monotonic) grow(size, align int) ([]byte, error) {
	need := size
	if align > blockAlign {
		need += align - 1
	}
	n := m.nextSize
	if n < need {
		n = roundPow2(need, MaxAllocSize)
	}
	buf, err := m.upstream.Allocate(n, blockAlign)
	if err != nil {
		return nil, fmt.Errorf("arena block of %d bytes: %w", n, err)
	}
	b := &block{buf: buf, own: true, next: m.head}
	m.head = b
	m.nextSize = min(2*n, MaxBlockSize)
	if n >= MaxBlockSize {
		m.nextSize = MaxBlockSize
	}
	m.blocks.Inc()
	m.reserved.Add(int64(len(buf)))

	p, ok := b.take(size, align)
	if !ok {
		// The upstream returned a block that does not honor blockAlign.
		return nil, fmt.Errorf("arena block misaligned for %d bytes at %d: %w", size, align, ErrOutOfMemory)
	}
	return p, nil
}

// Deallocate implements part of the Resource interface. It does nothing;
// memory in an arena is reclaimed only by Release.
func (m *Monotonic) Deallocate([]byte, int) {}

// IsEqual implements part of the Resource interface. An arena is equal
// only to itself.
func (m *Monotonic) IsEqual(r Resource) bool {
	o, ok := r.(*Monotonic)
	return ok && o == m
}

func (m *Monotonic) deallocateIsTrivial() {}

// Release returns all blocks obtained by m to its upstream, and discards all
// typed element storage. Memory previously allocated by m must not be used
// after Release. The arena may be reused afterward, and starts again from
// its initial buffer (if any) and initial block size.
func (m *Monotonic) Release() {
	for b := m.head; b != nil; {
		next := b.next
		if b.own {
			m.upstream.Deallocate(b.buf, blockAlign)
		}
		b.buf, b.next = nil, nil
		b = next
	}
	m.reset()
}

func (m *Monotonic) reset() {
	m.head = nil
	m.slabs = nil
	m.nextSize = m.initNext
	m.blocks.Store(0)
	m.reserved.Store(0)
	if m.initial != nil {
		m.head = &block{buf: m.initial}
		m.blocks.Inc()
		m.reserved.Add(int64(len(m.initial)))
	}
}

// MonotonicStats record the block usage of a Monotonic arena.
type MonotonicStats struct {
	Blocks        int64 // blocks in use, including typed slabs and any initial buffer
	ReservedBytes int64 // total size of those blocks
}

// Stats reports the current block usage of m. It is safe to call Stats
// concurrently with other methods of m.
func (m *Monotonic) Stats() MonotonicStats {
	return MonotonicStats{
		Blocks:        m.blocks.Load(),
		ReservedBytes: m.reserved.Load(),
	}
}

func (m *Monotonic) String() string {
	s := m.Stats()
	return fmt.Sprintf("Monotonic(blocks=%d, reserved=%d)", s.Blocks, s.ReservedBytes)
}
