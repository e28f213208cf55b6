// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jdom

import (
	"fmt"
	"unicode/utf8"

	"github.com/creachadair/jdom/storage"
	"github.com/creachadair/jdom/value"
)

// minBufferSize is the smallest allocation made for a token buffer.
const minBufferSize = 64

// A buffer accumulates the bytes of a token that may span several chunks
// of input. Its storage comes from a resource.
type buffer struct {
	sp storage.Pointer
	b  []byte
}

func (b *buffer) bytes() []byte { return b.b }
func (b *buffer) len() int      { return len(b.b) }
func (b *buffer) reset()        { b.b = b.b[:0] }
func (b *buffer) truncate(n int) {
	b.b = b.b[:n]
}

// reserve ensures there is room for n more bytes.
func (b *buffer) reserve(n int) error {
	need := len(b.b) + n
	if need <= cap(b.b) {
		return nil
	} else if need > value.MaxStringSize {
		return fmt.Errorf("token of %d bytes: %w", need, storage.ErrSizeLimit)
	}
	nb, err := b.sp.Get().Allocate(min(max(need, 2*cap(b.b), minBufferSize), value.MaxStringSize), 1)
	if err != nil {
		return err
	}
	nb = nb[:copy(nb, b.b)]
	b.release()
	b.b = nb
	return nil
}

func (b *buffer) write(data []byte) error {
	if err := b.reserve(len(data)); err != nil {
		return err
	}
	b.b = append(b.b, data...)
	return nil
}

func (b *buffer) writeByte(c byte) error {
	if err := b.reserve(1); err != nil {
		return err
	}
	b.b = append(b.b, c)
	return nil
}

func (b *buffer) writeRune(r rune) error {
	if err := b.reserve(utf8.UTFMax); err != nil {
		return err
	}
	b.b = utf8.AppendRune(b.b, r)
	return nil
}

// release returns the storage of b to its resource.
func (b *buffer) release() {
	if b.b != nil && !b.sp.IsDeallocateTrivial() {
		b.sp.Get().Deallocate(b.b[:cap(b.b)], 1)
	}
	b.b = nil
}
