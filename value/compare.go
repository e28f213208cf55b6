// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package value

import (
	"bytes"
	"math"
	"slices"
)

// Equal reports whether v and w represent the same JSON value. Storage
// pointers are not compared.
//
// Numbers are equal if they have the same mathematical value regardless of
// kind, so int64(5), uint64(5), and float64(5) are all equal, but a float
// equals an integer only if it represents exactly that integer. NaN is not
// equal to any value. Arrays are equal if their elements are pairwise
// equal; objects are equal if they have the same set of keys and equal
// values for each key, regardless of member order.
func (v Value) Equal(w Value) bool {
	if v.kind.IsNumber() && w.kind.IsNumber() {
		if isNaN(v) || isNaN(w) {
			return false
		}
		return compareNumbers(v, w) == 0
	} else if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.bits == w.bits
	case KindString:
		return v.str.Equal(w.str)
	case KindArray:
		if v.arr.Len() != w.arr.Len() {
			return false
		}
		for i, e := range v.arr.elems {
			if !e.Equal(w.arr.elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != w.obj.Len() {
			return false
		}
		for _, m := range v.obj.members {
			j := w.obj.find(m.key)
			if j < 0 || !m.val.Equal(w.obj.members[j].val) {
				return false
			}
		}
		return true
	}
	panic("unreachable")
}

func isNaN(v Value) bool { return v.kind == KindFloat64 && math.IsNaN(math.Float64frombits(v.bits)) }

// kindRank orders the kinds for comparison; all numbers share a rank.
func kindRank(k Kind) int {
	switch k {
	case KindNull:
		return 0
	case KindBool:
		return 1
	case KindInt64, KindUint64, KindFloat64:
		return 2
	case KindString:
		return 3
	case KindArray:
		return 4
	default:
		return 5
	}
}

// Compare returns -1, 0, or +1 according as v is less than, equal to, or
// greater than w in a total order over JSON values.
//
// Values of different kinds are ordered null < bool < number < string <
// array < object. Numbers are ordered by mathematical value, with NaN
// before all other numbers. Strings are ordered bytewise, and arrays
// lexicographically by element. Objects are ordered by comparing their
// members sorted by key, first by key and then by value.
//
// Compare reports 0 for two NaN values, which Equal reports as unequal.
func Compare(v, w Value) int {
	if rv, rw := kindRank(v.kind), kindRank(w.kind); rv != rw {
		return cmpInt(rv, rw)
	}
	switch v.kind {
	case KindNull:
		return 0
	case KindBool:
		return cmpInt(int(v.bits), int(w.bits))
	case KindInt64, KindUint64, KindFloat64:
		return compareNumbers(v, w)
	case KindString:
		return bytes.Compare(v.str.Bytes(), w.str.Bytes())
	case KindArray:
		ve, we := v.arr.elems, w.arr.elems
		for i := 0; i < len(ve) && i < len(we); i++ {
			if c := Compare(ve[i], we[i]); c != 0 {
				return c
			}
		}
		return cmpInt(len(ve), len(we))
	default:
		vm, wm := sortedMembers(v.obj), sortedMembers(w.obj)
		for i := 0; i < len(vm) && i < len(wm); i++ {
			if c := bytes.Compare(vm[i].key, wm[i].key); c != 0 {
				return c
			} else if c := Compare(vm[i].val, wm[i].val); c != 0 {
				return c
			}
		}
		return cmpInt(len(vm), len(wm))
	}
}

func sortedMembers(o *Object) []member {
	ms := slices.Clone(o.members)
	slices.SortFunc(ms, func(a, b member) int { return bytes.Compare(a.key, b.key) })
	return ms
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// compareNumbers compares two numeric values exactly.
func compareNumbers(v, w Value) int {
	switch v.kind {
	case KindInt64:
		x := int64(v.bits)
		switch w.kind {
		case KindInt64:
			return cmpInt64(x, int64(w.bits))
		case KindUint64:
			if x < 0 {
				return -1
			}
			return cmpUint64(uint64(x), w.bits)
		default:
			return cmpIntFloat(x, math.Float64frombits(w.bits))
		}
	case KindUint64:
		switch w.kind {
		case KindFloat64:
			return cmpUintFloat(v.bits, math.Float64frombits(w.bits))
		case KindUint64:
			return cmpUint64(v.bits, w.bits)
		}
	default:
		f := math.Float64frombits(v.bits)
		switch w.kind {
		case KindFloat64:
			g := math.Float64frombits(w.bits)
			switch {
			case math.IsNaN(f):
				return cmpInt(0, nanRank(g))
			case math.IsNaN(g):
				return 1
			case f < g:
				return -1
			case f > g:
				return 1
			}
			return 0
		case KindInt64:
			return -cmpIntFloat(int64(w.bits), f)
		case KindUint64:
			return -cmpUintFloat(w.bits, f)
		}
	}
	return -compareNumbers(w, v) // uint64 vs. int64
}

func nanRank(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return 1
}

func cmpInt64(a, b int64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func cmpUint64(a, b uint64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// cmpIntFloat compares an integer to a float without loss of precision.
func cmpIntFloat(x int64, f float64) int {
	switch {
	case math.IsNaN(f):
		return 1
	case f >= 1<<63:
		return -1
	case f < -1<<63:
		return 1
	}
	t := math.Trunc(f)
	if c := cmpInt64(x, int64(t)); c != 0 {
		return c
	} else if f > t {
		return -1
	} else if f < t {
		return 1
	}
	return 0
}

// cmpUintFloat compares an unsigned integer to a float without loss of
// precision.
func cmpUintFloat(x uint64, f float64) int {
	switch {
	case math.IsNaN(f):
		return 1
	case f < 0:
		return 1
	case f >= 1<<64:
		return -1
	}
	t := math.Trunc(f)
	if c := cmpUint64(x, uint64(t)); c != 0 {
		return c
	} else if f > t {
		return -1
	}
	return 0
}
