// Package testutil defines support code for unit tests.
package testutil

import (
	"fmt"

	"github.com/creachadair/jdom/storage"
)

// Counter is a storage.Resource that allocates from the heap and records
// how much memory is outstanding. If Limit > 0, allocations beyond the
// first Limit calls fail with storage.ErrOutOfMemory.
type Counter struct {
	Limit int

	Allocs   int // successful Allocate calls
	Frees    int // Deallocate calls
	Live     int // bytes allocated and not yet deallocated
	Released int // Release calls
}

// Allocate implements part of storage.Resource.
func (c *Counter) Allocate(size, align int) ([]byte, error) {
	if c.Limit > 0 && c.Allocs >= c.Limit {
		return nil, fmt.Errorf("allocation %d refused: %w", c.Allocs+1, storage.ErrOutOfMemory)
	}
	b, err := storage.Default().Allocate(size, align)
	if err != nil {
		return nil, err
	}
	c.Allocs++
	c.Live += size
	return b, nil
}

// Deallocate implements part of storage.Resource.
func (c *Counter) Deallocate(p []byte, _ int) {
	c.Frees++
	c.Live -= len(p)
}

// IsEqual implements part of storage.Resource.
func (c *Counter) IsEqual(r storage.Resource) bool {
	o, ok := r.(*Counter)
	return ok && o == c
}

// Release implements storage.Releaser.
func (c *Counter) Release() { c.Released++ }
