// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jdom

import (
	"github.com/creachadair/jdom/storage"
	"github.com/go-kit/log"
)

// DefaultMaxDepth is the maximum nesting depth used when Options.MaxDepth
// is not positive.
const DefaultMaxDepth = 32

// Options control the behavior of a Parser. A nil *Options is ready for use
// and provides default values.
type Options struct {
	// MaxDepth is the maximum nesting depth of arrays and objects.
	// If MaxDepth <= 0, DefaultMaxDepth is used.
	MaxDepth int

	// If AllowTrailingCommas is true, a comma may follow the last element
	// of an array or the last member of an object. JSON does not permit
	// trailing commas.
	AllowTrailingCommas bool

	// If AllowComments is true, C++ style block comments (/* ... */) and
	// line comments (// ...) are accepted wherever whitespace is. JSON does
	// not permit comments.
	AllowComments bool

	// If AllowInvalidUTF16 is true, a \u escape for an unpaired surrogate
	// half is decoded as the Unicode replacement rune instead of being
	// reported as a syntax error.
	AllowInvalidUTF16 bool

	// BlockSize, if positive, causes Parse and ParseReader to build a
	// document given the default storage pointer in a new shared Monotonic
	// arena whose first block has this size. The arena is released when the
	// last value referring to it is released.
	BlockSize int

	// Temp is the storage pointer used for the parser's internal buffers.
	// The zero value uses the default resource.
	Temp storage.Pointer

	// Logger, if non-nil, receives debug-level events about the progress of
	// parsing.
	Logger log.Logger
}

func (o *Options) maxDepth() int {
	if o == nil || o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o *Options) blockSize() int {
	if o == nil {
		return 0
	}
	return o.BlockSize
}

func (o *Options) logger() log.Logger {
	if o == nil || o.Logger == nil {
		return log.NewNopLogger()
	}
	return o.Logger
}

func (o *Options) temp() storage.Pointer {
	if o == nil {
		return storage.Pointer{}
	}
	return o.Temp
}

func (o *Options) trailingCommas() bool { return o != nil && o.AllowTrailingCommas }
func (o *Options) comments() bool       { return o != nil && o.AllowComments }
func (o *Options) invalidUTF16() bool   { return o != nil && o.AllowInvalidUTF16 }
