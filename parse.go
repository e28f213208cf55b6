// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jdom

import (
	"errors"
	"io"

	"github.com/creachadair/jdom/storage"
	"github.com/creachadair/jdom/value"
)

// readSize is the size of the chunks ParseReader reads from its input.
const readSize = 16 << 10

// Parse parses data as a single JSON value whose storage comes from sp.
//
// If sp is the default pointer and opts.BlockSize > 0, the value is built
// in a new shared Monotonic arena, which is released when the result (and
// every value moved from it) has been released.
func Parse(data []byte, sp storage.Pointer, opts *Options) (value.Value, error) {
	return parse(sp, opts, func(p *Parser) error {
		_, err := p.Write(data)
		return err
	})
}

// ParseString parses s as a single JSON value whose storage comes from sp.
// It behaves as Parse.
func ParseString(s string, sp storage.Pointer, opts *Options) (value.Value, error) {
	return Parse([]byte(s), sp, opts)
}

// ParseReader parses a single JSON value from the contents of r, whose
// storage comes from sp. It behaves as Parse, but reads the input in
// chunks using a buffer drawn from opts.Temp. Errors reading r are returned
// as-is.
func ParseReader(r io.Reader, sp storage.Pointer, opts *Options) (value.Value, error) {
	return parse(sp, opts, func(p *Parser) error {
		buf, lease, err := storage.MakeScalars[byte](opts.temp(), readSize)
		if err != nil {
			return err
		}
		defer storage.Free(lease)
		for {
			nr, err := r.Read(buf)
			if nr > 0 {
				if _, werr := p.Write(buf[:nr]); werr != nil {
					return werr
				}
			}
			if errors.Is(err, io.EOF) {
				return nil
			} else if err != nil {
				return err
			}
		}
	})
}

func parse(sp storage.Pointer, opts *Options, feed func(*Parser) error) (value.Value, error) {
	if n := opts.blockSize(); n > 0 && sp.IsDefault() {
		sp = storage.Share(storage.NewMonotonic(n, nil))
		defer sp.Release()
	}
	p := NewParser(sp, opts)
	defer p.Close()
	if err := feed(p); err != nil {
		return value.Value{}, err
	}
	if err := p.Finish(); err != nil {
		return value.Value{}, err
	}
	return p.Result()
}
