// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jdom implements an incremental JSON parser that builds document
// trees whose memory comes from a pluggable storage resource.
//
// # Parsing
//
// The Parser type consumes input in chunks of any size. Construct a parser
// with the storage pointer that should own the result, and write input to
// it. When the input ends, call Finish and claim the value with Result:
//
//	p := jdom.NewParser(sp, nil)
//	for chunk := range chunks {
//	   if _, err := p.Write(chunk); err != nil {
//	      log.Fatalf("Parse failed: %v", err)
//	   }
//	}
//	if err := p.Finish(); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//	v, _ := p.Result()
//	defer v.Release()
//
// A parser may stop at any byte boundary, including within a string or a
// number, and the result does not depend on how the input was divided. In
// case of error, parsing stops and the parser reports an error of concrete
// type *jdom.Error until it is Reset. The partial result is discarded.
//
// For input that is already in memory, or available from an io.Reader, use
// Parse, ParseString, or ParseReader.
//
// To parse a stream of values, use WriteSome, which stops after each
// complete top-level value:
//
//	for len(data) != 0 {
//	   n, err := p.WriteSome(data)
//	   if err != nil {
//	      log.Fatalf("Parse failed: %v", err)
//	   }
//	   data = data[n:]
//	   if p.Done() {
//	      v, _ := p.Result()
//	      handle(v)
//	   }
//	}
//
// # Storage
//
// Every node of a parsed document draws its memory from the resource of the
// storage pointer given to the parser (see package storage). A Monotonic
// arena makes parsing cheap: each node is a bump allocation, and the whole
// document is released in one step when the last reference to a shared
// arena is dropped.
//
//	arena := storage.Share(storage.NewMonotonic(64<<10, nil))
//	v, err := jdom.Parse(data, arena, nil)
//	arena.Release() // v holds its own reference
//	...
//	v.Release()     // releases the arena
//
// # Options
//
// By default the parser accepts exactly the JSON grammar of RFC 8259, with
// nesting limited to DefaultMaxDepth levels. Options relax the grammar to
// permit comments and trailing commas, as in JWCC, and to accept escapes of
// unpaired UTF-16 surrogates.
package jdom
