// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package value

import (
	"bytes"
	"fmt"
	"strings"
	"unsafe"

	"github.com/creachadair/jdom/storage"
)

// A String is a mutable sequence of bytes stored in a resource. Its
// contents are kept NUL-terminated within the allocation, so the capacity
// of a non-empty string is one less than the size of its buffer.
//
// Positions and counts are in bytes. A count of -1, or one that extends
// past the end of the string, means "through the end of the string".
type String struct {
	sp   storage.Pointer
	buf  []byte // len(buf) == capacity+1, or nil
	n    int
	node storage.Lease
}

func newString(sp storage.Pointer, capacity int) (*String, error) {
	if capacity > MaxStringSize {
		return nil, fmt.Errorf("string of %d bytes: %w", capacity, storage.ErrSizeLimit)
	}
	s, node, err := storage.New[String](sp)
	if err != nil {
		return nil, err
	}
	s.sp, s.node = sp, node
	if capacity > 0 {
		buf, err := sp.Get().Allocate(capacity+1, 1)
		if err != nil {
			storage.Free(node)
			return nil, err
		}
		s.buf = buf
	}
	return s, nil
}

// terminate writes the NUL after the contents of s.
func (s *String) terminate() {
	if s.buf != nil {
		s.buf[s.n] = 0
	}
}

func (s *String) free() {
	s.freeBuf(s.buf)
	storage.Free(s.node)
	*s = String{}
}

func (s *String) freeBuf(buf []byte) {
	if buf != nil && !s.sp.IsDeallocateTrivial() {
		s.sp.Get().Deallocate(buf, 1)
	}
}

// Storage returns the storage pointer of s.
func (s *String) Storage() storage.Pointer { return s.sp }

// Len reports the length of s in bytes.
func (s *String) Len() int { return s.n }

// Cap reports the number of bytes s can hold without reallocating.
func (s *String) Cap() int { return max(len(s.buf)-1, 0) }

// IsEmpty reports whether s has length zero.
func (s *String) IsEmpty() bool { return s.n == 0 }

// Bytes returns the contents of s. The slice aliases the storage of s, and
// is valid only until s is next modified or released.
func (s *String) Bytes() []byte { return s.buf[:s.n:s.n] }

// String returns a copy of the contents of s.
func (s *String) String() string { return string(s.buf[:s.n]) }

// view returns the contents of s as a string without copying.
func (s *String) view() string { return unsafe.String(unsafe.SliceData(s.buf), s.n) }

// At returns the byte at offset i of s.
func (s *String) At(i int) (byte, error) {
	if i < 0 || i >= s.n {
		return 0, fmt.Errorf("index %d of string length %d: %w", i, s.n, ErrOutOfRange)
	}
	return s.buf[i], nil
}

// growCap returns the capacity to allocate when s must hold need bytes.
func (s *String) growCap(need int) int {
	c := s.Cap()
	if c > MaxStringSize/2 {
		return MaxStringSize
	}
	return max(need, 2*c)
}

// realloc moves the contents of s to a new buffer of the given capacity.
func (s *String) realloc(capacity int) error {
	var buf []byte
	if capacity > 0 {
		nb, err := s.sp.Get().Allocate(capacity+1, 1)
		if err != nil {
			return err
		}
		buf = nb
		copy(buf, s.buf[:s.n])
	}
	s.freeBuf(s.buf)
	s.buf = buf
	s.terminate()
	return nil
}

// ensure makes room for need bytes in total, preserving the contents.
func (s *String) ensure(need int) error {
	if need > MaxStringSize {
		return fmt.Errorf("string of %d bytes: %w", need, storage.ErrSizeLimit)
	} else if need <= s.Cap() {
		return nil
	}
	return s.realloc(s.growCap(need))
}

// Reserve ensures s can hold at least n bytes without reallocating.
func (s *String) Reserve(n int) error {
	if n > MaxStringSize {
		return fmt.Errorf("reserve %d bytes: %w", n, storage.ErrSizeLimit)
	} else if n <= s.Cap() {
		return nil
	}
	return s.realloc(n)
}

// ShrinkToFit reduces the capacity of s to its length.
func (s *String) ShrinkToFit() error {
	if s.Cap() == s.n {
		return nil
	}
	return s.realloc(s.n)
}

// Clear sets the length of s to zero, keeping its capacity.
func (s *String) Clear() {
	s.n = 0
	s.terminate()
}

// Assign replaces the contents of s with a copy of t.
func (s *String) Assign(t string) error {
	if len(t) > s.Cap() {
		if len(t) > MaxStringSize {
			return fmt.Errorf("string of %d bytes: %w", len(t), storage.ErrSizeLimit)
		}
		n := s.n
		s.n = 0 // the old contents need not be preserved
		if err := s.realloc(len(t)); err != nil {
			s.n = n
			return err
		}
	}
	s.n = copy(s.buf, t)
	s.terminate()
	return nil
}

// Append adds t to the end of s.
func (s *String) Append(t string) error {
	if err := s.ensure(s.n + len(t)); err != nil {
		return err
	}
	s.n += copy(s.buf[s.n:], t)
	s.terminate()
	return nil
}

// AppendBytes adds b to the end of s. It is safe for b to alias s.
func (s *String) AppendBytes(b []byte) error {
	need := s.n + len(b)
	if need > MaxStringSize {
		return fmt.Errorf("string of %d bytes: %w", need, storage.ErrSizeLimit)
	} else if need > s.Cap() {
		// Copy b before the old buffer is returned, in case they overlap.
		buf, err := s.sp.Get().Allocate(s.growCap(need)+1, 1)
		if err != nil {
			return err
		}
		copy(buf, s.buf[:s.n])
		copy(buf[s.n:], b)
		s.freeBuf(s.buf)
		s.buf = buf
	} else {
		copy(s.buf[s.n:], b)
	}
	s.n = need
	s.terminate()
	return nil
}

// AppendByte adds c to the end of s.
func (s *String) AppendByte(c byte) error {
	if err := s.ensure(s.n + 1); err != nil {
		return err
	}
	s.buf[s.n] = c
	s.n++
	s.terminate()
	return nil
}

// PopBack removes the last byte of s.
func (s *String) PopBack() error {
	if s.n == 0 {
		return fmt.Errorf("pop from empty string: %w", ErrOutOfRange)
	}
	s.n--
	s.terminate()
	return nil
}

// span checks pos against the length of s and clamps count.
func (s *String) span(pos, count int) (int, error) {
	if pos < 0 || pos > s.n {
		return 0, fmt.Errorf("position %d of string length %d: %w", pos, s.n, ErrOutOfRange)
	}
	if count < 0 || count > s.n-pos {
		count = s.n - pos
	}
	return count, nil
}

// Insert inserts t at offset pos of s.
func (s *String) Insert(pos int, t string) error {
	return s.Replace(pos, 0, t)
}

// Erase removes count bytes starting at offset pos of s.
func (s *String) Erase(pos, count int) error {
	return s.Replace(pos, count, "")
}

// Replace replaces count bytes starting at offset pos of s with t.
func (s *String) Replace(pos, count int, t string) error {
	count, err := s.span(pos, count)
	if err != nil {
		return err
	}
	if err := s.ensure(s.n - count + len(t)); err != nil {
		return err
	}
	tail := s.n - pos - count
	copy(s.buf[pos+len(t):], s.buf[pos+count:pos+count+tail])
	copy(s.buf[pos:], t)
	s.n += len(t) - count
	s.terminate()
	return nil
}

// Resize changes the length of s to n. If s grows, the new bytes are set
// to fill.
func (s *String) Resize(n int, fill byte) error {
	if n < 0 {
		return fmt.Errorf("resize to %d: %w", n, ErrOutOfRange)
	}
	if err := s.ensure(n); err != nil {
		return err
	}
	for i := s.n; i < n; i++ {
		s.buf[i] = fill
	}
	s.n = n
	s.terminate()
	return nil
}

// Substr returns a copy of count bytes starting at offset pos of s.
func (s *String) Substr(pos, count int) (string, error) {
	count, err := s.span(pos, count)
	if err != nil {
		return "", err
	}
	return string(s.buf[pos : pos+count]), nil
}

// Find returns the offset of the first occurrence of t in s at or after
// pos, or -1 if there is none.
func (s *String) Find(t string, pos int) int {
	if pos < 0 || pos > s.n {
		return -1
	}
	if i := strings.Index(s.view()[pos:], t); i >= 0 {
		return pos + i
	}
	return -1
}

// RFind returns the offset of the last occurrence of t in s that begins at
// or before pos, or -1 if there is none. A negative pos searches all of s.
func (s *String) RFind(t string, pos int) int {
	if pos < 0 || pos > s.n-len(t) {
		pos = s.n - len(t)
	}
	if pos < 0 {
		return -1
	}
	return strings.LastIndex(s.view()[:pos+len(t)], t)
}

// Compare compares s to t lexicographically by bytes, and returns -1, 0,
// or +1.
func (s *String) Compare(t string) int { return strings.Compare(s.view(), t) }

// Equal reports whether s and t have the same contents.
func (s *String) Equal(t *String) bool { return bytes.Equal(s.Bytes(), t.Bytes()) }

// StartsWith reports whether s begins with t.
func (s *String) StartsWith(t string) bool { return strings.HasPrefix(s.view(), t) }

// EndsWith reports whether s ends with t.
func (s *String) EndsWith(t string) bool { return strings.HasSuffix(s.view(), t) }
