// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package value defines an in-memory tree of JSON values whose storage is
// drawn from a storage.Resource.
//
// A Value is a tagged union holding one of null, a boolean, a signed or
// unsigned 64-bit integer, a 64-bit float, a *String, an *Array, or an
// *Object. Every Value records the storage.Pointer it was constructed with,
// and that Pointer never changes: assignments and mutations reuse it, and
// every descendant of a container uses the same resource as the container.
//
// A Value is a handle. Copying the Go struct does not copy the payload of a
// string, array, or object; use Copy for a deep copy, or Move to transfer a
// value to another resource. Call Release to return a tree's storage to its
// resource once the tree is no longer needed.
package value

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/creachadair/jdom/storage"
)

// Size limits for document nodes. Requests that would exceed them fail with
// storage.ErrSizeLimit and leave the node unchanged.
const (
	MaxStringSize = math.MaxInt32 - 1 // bytes
	MaxArraySize  = math.MaxInt32 - 1 // elements
	MaxObjectSize = math.MaxInt32 - 1 // members
)

var (
	// ErrOutOfRange is reported for an index or key that does not exist.
	ErrOutOfRange = errors.New("out of range")

	// ErrNotNumber is reported when a numeric conversion is applied to a
	// value that is not a number.
	ErrNotNumber = errors.New("value is not a number")

	// ErrInexact is reported when a number cannot be represented exactly in
	// the requested type.
	ErrInexact = errors.New("number not representable")
)

// Kind identifies the type of a Value.
type Kind byte

// Constants defining the kinds of JSON value.
const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindUint64
	KindFloat64
	KindString
	KindArray
	KindObject
)

var kindStr = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindInt64:   "int64",
	KindUint64:  "uint64",
	KindFloat64: "float64",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	if int(k) < len(kindStr) {
		return kindStr[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// IsNumber reports whether k is one of the numeric kinds.
func (k Kind) IsNumber() bool { return k == KindInt64 || k == KindUint64 || k == KindFloat64 }

// A Value is a single JSON value. The zero Value is null, using the default
// resource.
type Value struct {
	sp   storage.Pointer
	kind Kind
	bits uint64 // bool, int64, uint64, float64 payload
	str  *String
	arr  *Array
	obj  *Object
}

// NewNull returns a null value using sp.
func NewNull(sp storage.Pointer) Value { return Value{sp: sp.Retain()} }

// NewBool returns a boolean value using sp.
func NewBool(b bool, sp storage.Pointer) Value {
	return Value{sp: sp.Retain(), kind: KindBool, bits: boolBits(b)}
}

// NewInt64 returns a signed integer value using sp.
func NewInt64(z int64, sp storage.Pointer) Value {
	return Value{sp: sp.Retain(), kind: KindInt64, bits: uint64(z)}
}

// NewUint64 returns an unsigned integer value using sp.
func NewUint64(z uint64, sp storage.Pointer) Value {
	return Value{sp: sp.Retain(), kind: KindUint64, bits: z}
}

// NewFloat64 returns a floating-point value using sp.
func NewFloat64(f float64, sp storage.Pointer) Value {
	return Value{sp: sp.Retain(), kind: KindFloat64, bits: math.Float64bits(f)}
}

// NewString returns a string value containing a copy of s, using sp.
func NewString(s string, sp storage.Pointer) (Value, error) {
	str, err := newString(sp, len(s))
	if err != nil {
		return Value{}, err
	}
	str.n = copy(str.buf, s)
	str.terminate()
	return Value{sp: sp.Retain(), kind: KindString, str: str}, nil
}

// NewStringBytes returns a string value containing a copy of b, using sp.
func NewStringBytes(b []byte, sp storage.Pointer) (Value, error) {
	str, err := newString(sp, len(b))
	if err != nil {
		return Value{}, err
	}
	str.n = copy(str.buf, b)
	str.terminate()
	return Value{sp: sp.Retain(), kind: KindString, str: str}, nil
}

// NewArray returns an empty array value using sp.
func NewArray(sp storage.Pointer) (Value, error) {
	arr, err := newArray(sp)
	if err != nil {
		return Value{}, err
	}
	return Value{sp: sp.Retain(), kind: KindArray, arr: arr}, nil
}

// NewObject returns an empty object value using sp.
func NewObject(sp storage.Pointer) (Value, error) {
	obj, err := newObject(sp)
	if err != nil {
		return Value{}, err
	}
	return Value{sp: sp.Retain(), kind: KindObject, obj: obj}, nil
}

func boolBits(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Kind reports the kind of v.
func (v Value) Kind() Kind { return v.kind }

// Storage returns the storage pointer of v.
func (v Value) Storage() storage.Pointer { return v.sp }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsBool reports whether v is a boolean.
func (v Value) IsBool() bool { return v.kind == KindBool }

// IsInt64 reports whether v is a signed integer.
func (v Value) IsInt64() bool { return v.kind == KindInt64 }

// IsUint64 reports whether v is an unsigned integer.
func (v Value) IsUint64() bool { return v.kind == KindUint64 }

// IsFloat64 reports whether v is a floating-point number.
func (v Value) IsFloat64() bool { return v.kind == KindFloat64 }

// IsNumber reports whether v is a number of any kind.
func (v Value) IsNumber() bool { return v.kind.IsNumber() }

// IsString reports whether v is a string.
func (v Value) IsString() bool { return v.kind == KindString }

// IsArray reports whether v is an array.
func (v Value) IsArray() bool { return v.kind == KindArray }

// IsObject reports whether v is an object.
func (v Value) IsObject() bool { return v.kind == KindObject }

// IsStructured reports whether v is an array or an object.
func (v Value) IsStructured() bool { return v.kind == KindArray || v.kind == KindObject }

// Bool returns the boolean payload of v, and reports whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.bits != 0, v.kind == KindBool }

// Int64 returns the payload of a signed integer, and reports whether v is one.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindInt64 {
		return 0, false
	}
	return int64(v.bits), true
}

// Uint64 returns the payload of an unsigned integer, and reports whether v
// is one.
func (v Value) Uint64() (uint64, bool) {
	if v.kind != KindUint64 {
		return 0, false
	}
	return v.bits, true
}

// Float64 returns the payload of a floating-point number, and reports
// whether v is one.
func (v Value) Float64() (float64, bool) {
	if v.kind != KindFloat64 {
		return 0, false
	}
	return math.Float64frombits(v.bits), true
}

// Str returns the string payload of v, and reports whether v is a string.
func (v Value) Str() (*String, bool) { return v.str, v.kind == KindString }

// Arr returns the array payload of v, and reports whether v is an array.
func (v Value) Arr() (*Array, bool) { return v.arr, v.kind == KindArray }

// Obj returns the object payload of v, and reports whether v is an object.
func (v Value) Obj() (*Object, bool) { return v.obj, v.kind == KindObject }

// AsInt64 returns the value of a number as an int64. It reports ErrInexact
// if the number is out of range or not an integer.
func (v Value) AsInt64() (int64, error) {
	switch v.kind {
	case KindInt64:
		return int64(v.bits), nil
	case KindUint64:
		if v.bits <= math.MaxInt64 {
			return int64(v.bits), nil
		}
	case KindFloat64:
		f := math.Float64frombits(v.bits)
		if f >= -1<<63 && f < 1<<63 && f == math.Trunc(f) {
			return int64(f), nil
		}
	default:
		return 0, fmt.Errorf("%v: %w", v.kind, ErrNotNumber)
	}
	return 0, fmt.Errorf("%s as int64: %w", v, ErrInexact)
}

// AsUint64 returns the value of a number as a uint64. It reports ErrInexact
// if the number is out of range or not an integer.
func (v Value) AsUint64() (uint64, error) {
	switch v.kind {
	case KindInt64:
		if int64(v.bits) >= 0 {
			return v.bits, nil
		}
	case KindUint64:
		return v.bits, nil
	case KindFloat64:
		f := math.Float64frombits(v.bits)
		if f >= 0 && f < 1<<64 && f == math.Trunc(f) {
			return uint64(f), nil
		}
	default:
		return 0, fmt.Errorf("%v: %w", v.kind, ErrNotNumber)
	}
	return 0, fmt.Errorf("%s as uint64: %w", v, ErrInexact)
}

// AsFloat64 returns the value of a number as a float64. Integers that are
// not exactly representable are rounded to the nearest float64.
func (v Value) AsFloat64() (float64, error) {
	switch v.kind {
	case KindInt64:
		return float64(int64(v.bits)), nil
	case KindUint64:
		return float64(v.bits), nil
	case KindFloat64:
		return math.Float64frombits(v.bits), nil
	default:
		return 0, fmt.Errorf("%v: %w", v.kind, ErrNotNumber)
	}
}

// Interface returns a Go representation of v. Null is nil, and the other
// kinds map to bool, int64, uint64, float64, string, []any, and
// map[string]any respectively. The result shares no storage with v.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.bits != 0
	case KindInt64:
		return int64(v.bits)
	case KindUint64:
		return v.bits
	case KindFloat64:
		return math.Float64frombits(v.bits)
	case KindString:
		return v.str.String()
	case KindArray:
		out := make([]any, v.arr.Len())
		for i, e := range v.arr.All() {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		for key, e := range v.obj.All() {
			out[key] = e.Interface()
		}
		return out
	}
	return nil
}

// release returns the payload storage of v to its resource, and leaves v
// holding a null with the same storage pointer.
func (v *Value) release() {
	switch v.kind {
	case KindString:
		v.str.free()
	case KindArray:
		v.arr.free()
	case KindObject:
		v.obj.free()
	}
	*v = Value{sp: v.sp}
}

// Release returns all the storage held by v and its descendants to the
// resource, drops the reference v holds to its storage pointer, and leaves
// v as the zero Value. Releasing the zero Value does nothing.
func (v *Value) Release() {
	v.release()
	v.sp.Release()
	*v = Value{}
}

// SetNull sets v to null, keeping its storage pointer.
func (v *Value) SetNull() { v.release() }

// SetBool sets v to a boolean, keeping its storage pointer.
func (v *Value) SetBool(b bool) { v.release(); v.kind, v.bits = KindBool, boolBits(b) }

// SetInt64 sets v to a signed integer, keeping its storage pointer.
func (v *Value) SetInt64(z int64) { v.release(); v.kind, v.bits = KindInt64, uint64(z) }

// SetUint64 sets v to an unsigned integer, keeping its storage pointer.
func (v *Value) SetUint64(z uint64) { v.release(); v.kind, v.bits = KindUint64, z }

// SetFloat64 sets v to a floating-point number, keeping its storage pointer.
func (v *Value) SetFloat64(f float64) { v.release(); v.kind, v.bits = KindFloat64, math.Float64bits(f) }

// SetString sets v to a copy of s, keeping its storage pointer. If v is
// already a string its storage is reused. On error v is unchanged.
func (v *Value) SetString(s string) error {
	if v.kind == KindString {
		return v.str.Assign(s)
	}
	str, err := newString(v.sp, len(s))
	if err != nil {
		return err
	}
	str.n = copy(str.buf, s)
	str.terminate()
	v.release()
	v.kind, v.str = KindString, str
	return nil
}

// EmplaceArray sets v to an empty array using the storage pointer of v, and
// returns the array. If v is already an array it is cleared.
func (v *Value) EmplaceArray() (*Array, error) {
	if v.kind == KindArray {
		v.arr.Clear()
		return v.arr, nil
	}
	arr, err := newArray(v.sp)
	if err != nil {
		return nil, err
	}
	v.release()
	v.kind, v.arr = KindArray, arr
	return arr, nil
}

// EmplaceObject sets v to an empty object using the storage pointer of v,
// and returns the object. If v is already an object it is cleared.
func (v *Value) EmplaceObject() (*Object, error) {
	if v.kind == KindObject {
		v.obj.Clear()
		return v.obj, nil
	}
	obj, err := newObject(v.sp)
	if err != nil {
		return nil, err
	}
	v.release()
	v.kind, v.obj = KindObject, obj
	return obj, nil
}

// Swap exchanges the contents of v and w. Each keeps its own storage
// pointer, so a value inside a container stays on the container's resource.
// If the resources of v and w are equal the payloads are exchanged without
// copying; otherwise each payload is copied to the other resource and the
// originals are released. On error neither v nor w is changed.
func (v *Value) Swap(w *Value) error {
	vsp, wsp := v.sp, w.sp
	if vsp.Equal(wsp) {
		*v, *w = *w, *v
		v.sp, w.sp = vsp, wsp
		if vsp != wsp {
			v.adopt(vsp)
			w.adopt(wsp)
		}
		return nil
	}
	vc, err := Copy(*v, wsp)
	if err != nil {
		return err
	}
	wc, err := Copy(*w, vsp)
	if err != nil {
		vc.Release()
		return err
	}
	v.release()
	w.release()
	*v, *w = wc, vc
	vsp.Release() // the copies hold their own references
	wsp.Release()
	return nil
}

// Copy returns a deep copy of src using sp. The result shares no storage
// with src.
func Copy(src Value, sp storage.Pointer) (Value, error) {
	switch src.kind {
	case KindString:
		return NewStringBytes(src.str.Bytes(), sp)
	case KindArray:
		out, err := NewArray(sp)
		if err != nil {
			return Value{}, err
		}
		if err := out.arr.copyFrom(src.arr); err != nil {
			out.Release()
			return Value{}, err
		}
		return out, nil
	case KindObject:
		out, err := NewObject(sp)
		if err != nil {
			return Value{}, err
		}
		if err := out.obj.copyFrom(src.obj); err != nil {
			out.Release()
			return Value{}, err
		}
		return out, nil
	default:
		out := src
		out.sp = sp.Retain()
		return out, nil
	}
}

// Move transfers the contents of *src to a value using sp, and leaves *src
// as the zero Value. If sp is equal to the storage pointer of *src, Move
// takes constant time and no storage is copied. Otherwise it makes a deep
// copy using sp and releases the original. On error *src is unchanged.
//
// When the resources are equal but *src holds a shared pointer and sp does
// not, the result keeps the shared pointer of *src, so that the resource
// is not released while the result is live.
func Move(src *Value, sp storage.Pointer) (Value, error) {
	if src.sp.Equal(sp) {
		out := *src
		*src = Value{}
		if out.sp != sp && (sp.IsShared() || !out.sp.IsShared()) {
			// Equal resources, different handles: adopt the requested one.
			out.sp.Release()
			out.sp = sp.Retain()
			out.adopt(sp)
		}
		return out, nil
	}
	out, err := Copy(*src, sp)
	if err != nil {
		return Value{}, err
	}
	src.Release()
	return out, nil
}

// adopt updates the storage pointer recorded by the payload of v, whose
// storage is owned by a resource equal to sp.
func (v *Value) adopt(sp storage.Pointer) {
	switch v.kind {
	case KindString:
		v.str.sp = sp
	case KindArray:
		v.arr.sp = sp
		for i := range v.arr.elems {
			e := &v.arr.elems[i]
			e.sp.Release()
			e.sp = sp.Retain()
			e.adopt(sp)
		}
	case KindObject:
		v.obj.sp = sp
		for i := range v.obj.members {
			e := &v.obj.members[i].val
			e.sp.Release()
			e.sp = sp.Retain()
			e.adopt(sp)
		}
	}
}

// From converts a Go value into a Value using sp. It accepts nil, bool, the
// built-in integer and floating-point types, string, []byte (as a string),
// []any, map[string]any, and Value (which is copied). Object members from a
// map are added in key order.
func From(x any, sp storage.Pointer) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NewNull(sp), nil
	case bool:
		return NewBool(t, sp), nil
	case int:
		return NewInt64(int64(t), sp), nil
	case int8:
		return NewInt64(int64(t), sp), nil
	case int16:
		return NewInt64(int64(t), sp), nil
	case int32:
		return NewInt64(int64(t), sp), nil
	case int64:
		return NewInt64(t, sp), nil
	case uint:
		return NewUint64(uint64(t), sp), nil
	case uint8:
		return NewUint64(uint64(t), sp), nil
	case uint16:
		return NewUint64(uint64(t), sp), nil
	case uint32:
		return NewUint64(uint64(t), sp), nil
	case uint64:
		return NewUint64(t, sp), nil
	case float32:
		return NewFloat64(float64(t), sp), nil
	case float64:
		return NewFloat64(t, sp), nil
	case string:
		return NewString(t, sp)
	case []byte:
		return NewStringBytes(t, sp)
	case Value:
		return Copy(t, sp)
	case []any:
		out, err := NewArray(sp)
		if err != nil {
			return Value{}, err
		}
		if err := out.arr.Reserve(len(t)); err != nil {
			out.Release()
			return Value{}, err
		}
		for _, e := range t {
			ev, err := From(e, sp)
			if err == nil {
				err = out.arr.Push(ev)
			}
			if err != nil {
				out.Release()
				return Value{}, err
			}
		}
		return out, nil
	case map[string]any:
		out, err := NewObject(sp)
		if err != nil {
			return Value{}, err
		}
		if err := out.obj.Reserve(len(t)); err != nil {
			out.Release()
			return Value{}, err
		}
		keys := make([]string, 0, len(t))
		for key := range t {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			ev, err := From(t[key], sp)
			if err == nil {
				err = out.obj.Set(key, ev)
			}
			if err != nil {
				out.Release()
				return Value{}, err
			}
		}
		return out, nil
	default:
		return Value{}, fmt.Errorf("cannot convert %T to a JSON value", x)
	}
}
