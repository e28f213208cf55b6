// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package value

import (
	"bytes"
	"math"
	"strconv"

	"github.com/creachadair/jdom/internal/escape"
	"go4.org/mem"
)

// AppendJSON appends the compact JSON encoding of v to buf and returns the
// extended slice. Object members are written in insertion order.
//
// Integers are written exactly. Floating-point numbers are written in the
// shortest form that reads back as the same value, with ".0" added if that
// form would otherwise read as an integer. NaN and infinities, which JSON
// cannot represent, are written as null.
func (v Value) AppendJSON(buf []byte) []byte {
	switch v.kind {
	case KindNull:
		return append(buf, "null"...)
	case KindBool:
		if v.bits != 0 {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case KindInt64:
		return strconv.AppendInt(buf, int64(v.bits), 10)
	case KindUint64:
		return strconv.AppendUint(buf, v.bits, 10)
	case KindFloat64:
		return appendFloat(buf, math.Float64frombits(v.bits))
	case KindString:
		return escape.AppendQuote(buf, mem.B(v.str.Bytes()))
	case KindArray:
		buf = append(buf, '[')
		for i, e := range v.arr.elems {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = e.AppendJSON(buf)
		}
		return append(buf, ']')
	case KindObject:
		buf = append(buf, '{')
		for i, m := range v.obj.members {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = escape.AppendQuote(buf, mem.B(m.key))
			buf = append(buf, ':')
			buf = m.val.AppendJSON(buf)
		}
		return append(buf, '}')
	}
	panic("unreachable")
}

func appendFloat(buf []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(buf, "null"...)
	}
	start := len(buf)
	buf = strconv.AppendFloat(buf, f, 'g', -1, 64)
	if !bytes.ContainsAny(buf[start:], ".e") {
		buf = append(buf, ".0"...)
	}
	return buf
}

// String returns the compact JSON encoding of v.
func (v Value) String() string { return string(v.AppendJSON(nil)) }

// MarshalJSON implements the json.Marshaler interface.
func (v Value) MarshalJSON() ([]byte, error) { return v.AppendJSON(nil), nil }
