// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jdom_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/creachadair/jdom"
	"github.com/creachadair/jdom/storage"
)

// benchInput returns a synthetic document of records with nested arrays
// and objects, strings with escapes, and numbers of each kind.
func benchInput() []byte {
	var sb strings.Builder
	sb.WriteString("[\n")
	for i := range 2000 {
		if i > 0 {
			sb.WriteString(",\n")
		}
		fmt.Fprintf(&sb, `  {"id": %d, "name": "record \"%d\"", "score": %d.%d, "big": %d,`+
			` "tags": ["a", "b\tc", "%x"], "ok": %v, "meta": {"parent": null, "depth": [1, [2, [3]]]}}`,
			i, i, i*7, i%10, uint64(1)<<63+uint64(i), i, i%2 == 0)
	}
	sb.WriteString("\n]\n")
	return []byte(sb.String())
}

func BenchmarkParse(b *testing.B) {
	input := benchInput()
	b.Logf("Benchmark input: %d bytes", len(input))

	b.Run("Unmarshal", func(b *testing.B) {
		b.SetBytes(int64(len(input)))
		for b.Loop() {
			var v any
			if err := json.Unmarshal(input, &v); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
		}
	})

	b.Run("Heap", func(b *testing.B) {
		b.SetBytes(int64(len(input)))
		for b.Loop() {
			v, err := jdom.Parse(input, storage.Pointer{}, nil)
			if err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
			v.Release()
		}
	})

	b.Run("Arena", func(b *testing.B) {
		b.SetBytes(int64(len(input)))
		opts := &jdom.Options{BlockSize: 64 << 10}
		for b.Loop() {
			v, err := jdom.Parse(input, storage.Pointer{}, opts)
			if err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
			v.Release()
		}
	})

	b.Run("Chunked", func(b *testing.B) {
		b.SetBytes(int64(len(input)))
		arena := storage.NewMonotonic(64<<10, nil)
		p := jdom.NewParser(storage.Ref(arena), nil)
		defer p.Close()
		for b.Loop() {
			for data := input; len(data) != 0; {
				n := min(len(data), 512)
				if _, err := p.Write(data[:n]); err != nil {
					b.Fatalf("Unexpected error: %v", err)
				}
				data = data[n:]
			}
			if err := p.Finish(); err != nil {
				b.Fatalf("Unexpected error: %v", err)
			}
			v, _ := p.Result()
			v.Release()
			p.Reset(storage.Ref(arena))
			arena.Release()
		}
	})
}
