// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package value_test

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"
	"unsafe"

	"github.com/creachadair/jdom/internal/testutil"
	"github.com/creachadair/jdom/storage"
	"github.com/creachadair/jdom/value"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

func mustFrom(t *testing.T, x any, sp storage.Pointer) value.Value {
	t.Helper()
	v, err := value.From(x, sp)
	if err != nil {
		t.Fatalf("From(%v): unexpected error: %v", x, err)
	}
	return v
}

func TestKinds(t *testing.T) {
	var sp storage.Pointer
	str, err := value.NewString("hi", sp)
	if err != nil {
		t.Fatalf("NewString: %v", err)
	}
	arr, _ := value.NewArray(sp)
	obj, _ := value.NewObject(sp)

	tests := []struct {
		v    value.Value
		want value.Kind
		json string
	}{
		{value.Value{}, value.KindNull, "null"},
		{value.NewNull(sp), value.KindNull, "null"},
		{value.NewBool(true, sp), value.KindBool, "true"},
		{value.NewBool(false, sp), value.KindBool, "false"},
		{value.NewInt64(-25, sp), value.KindInt64, "-25"},
		{value.NewUint64(math.MaxUint64, sp), value.KindUint64, "18446744073709551615"},
		{value.NewFloat64(1.5, sp), value.KindFloat64, "1.5"},
		{value.NewFloat64(3, sp), value.KindFloat64, "3.0"},
		{value.NewFloat64(1e21, sp), value.KindFloat64, "1e+21"},
		{value.NewFloat64(math.NaN(), sp), value.KindFloat64, "null"},
		{str, value.KindString, `"hi"`},
		{arr, value.KindArray, "[]"},
		{obj, value.KindObject, "{}"},
	}
	for _, tc := range tests {
		if got := tc.v.Kind(); got != tc.want {
			t.Errorf("Kind(%v): got %v, want %v", tc.v, got, tc.want)
		}
		if got := tc.v.String(); got != tc.json {
			t.Errorf("String: got %q, want %q", got, tc.json)
		}
		if got := tc.v.IsNumber(); got != tc.want.IsNumber() {
			t.Errorf("IsNumber(%v): got %v, want %v", tc.v, got, !got)
		}
	}
}

func TestAccessors(t *testing.T) {
	var sp storage.Pointer
	if b, ok := value.NewBool(true, sp).Bool(); !ok || !b {
		t.Errorf("Bool: got (%v, %v), want (true, true)", b, ok)
	}
	if _, ok := value.NewBool(true, sp).Int64(); ok {
		t.Error("Int64 of a bool: got ok, want !ok")
	}
	if z, ok := value.NewInt64(-3, sp).Int64(); !ok || z != -3 {
		t.Errorf("Int64: got (%v, %v), want (-3, true)", z, ok)
	}
	if z, ok := value.NewUint64(7, sp).Uint64(); !ok || z != 7 {
		t.Errorf("Uint64: got (%v, %v), want (7, true)", z, ok)
	}
	if f, ok := value.NewFloat64(0.25, sp).Float64(); !ok || f != 0.25 {
		t.Errorf("Float64: got (%v, %v), want (0.25, true)", f, ok)
	}
	if _, ok := value.NewFloat64(0.25, sp).Str(); ok {
		t.Error("Str of a float: got ok, want !ok")
	}
	v := mustFrom(t, "text", sp)
	if s, ok := v.Str(); !ok || s.String() != "text" {
		t.Errorf("Str: got (%v, %v), want (text, true)", s, ok)
	}
}

func TestConversions(t *testing.T) {
	var sp storage.Pointer
	tests := []struct {
		v       value.Value
		i64     int64
		i64Err  error
		u64     uint64
		u64Err  error
		f64     float64
		f64Fail bool
	}{
		{value.NewInt64(-1, sp), -1, nil, 0, value.ErrInexact, -1, false},
		{value.NewInt64(5, sp), 5, nil, 5, nil, 5, false},
		{value.NewUint64(math.MaxUint64, sp), 0, value.ErrInexact, math.MaxUint64, nil, 1 << 64, false},
		{value.NewFloat64(2, sp), 2, nil, 2, nil, 2, false},
		{value.NewFloat64(2.5, sp), 0, value.ErrInexact, 0, value.ErrInexact, 2.5, false},
		{value.NewFloat64(-4, sp), -4, nil, 0, value.ErrInexact, -4, false},
		{value.NewFloat64(1 << 63, sp), 0, value.ErrInexact, 1 << 63, nil, 1 << 63, false},
		{value.NewBool(true, sp), 0, value.ErrNotNumber, 0, value.ErrNotNumber, 0, true},
	}
	for _, tc := range tests {
		i, err := tc.v.AsInt64()
		if !errors.Is(err, tc.i64Err) || (err == nil && i != tc.i64) {
			t.Errorf("AsInt64(%v): got (%v, %v), want (%v, %v)", tc.v, i, err, tc.i64, tc.i64Err)
		}
		u, err := tc.v.AsUint64()
		if !errors.Is(err, tc.u64Err) || (err == nil && u != tc.u64) {
			t.Errorf("AsUint64(%v): got (%v, %v), want (%v, %v)", tc.v, u, err, tc.u64, tc.u64Err)
		}
		f, err := tc.v.AsFloat64()
		if (err != nil) != tc.f64Fail || (err == nil && f != tc.f64) {
			t.Errorf("AsFloat64(%v): got (%v, %v), want %v", tc.v, f, err, tc.f64)
		}
	}
}

func TestFromInterface(t *testing.T) {
	input := map[string]any{
		"null":  nil,
		"int":   -3,
		"uint":  uint16(9),
		"float": 0.5,
		"str":   "hello",
		"bytes": []byte("raw"),
		"list":  []any{true, false, []any{}},
		"obj":   map[string]any{"z": int64(1), "a": uint64(2)},
	}
	v := mustFrom(t, input, storage.Pointer{})
	defer v.Release()

	want := map[string]any{
		"null":  nil,
		"int":   int64(-3),
		"uint":  uint64(9),
		"float": 0.5,
		"str":   "hello",
		"bytes": "raw",
		"list":  []any{true, false, []any{}},
		"obj":   map[string]any{"z": int64(1), "a": uint64(2)},
	}
	if diff := cmp.Diff(want, v.Interface()); diff != "" {
		t.Errorf("Interface (-want, +got):\n%s", diff)
	}

	// Map keys are added in sorted order.
	const wantJSON = `{"bytes":"raw","float":0.5,"int":-3,"list":[true,false,[]],` +
		`"null":null,"obj":{"a":2,"z":1},"str":"hello","uint":9}`
	if got := v.String(); got != wantJSON {
		t.Errorf("String:\ngot  %s\nwant %s", got, wantJSON)
	}

	if _, err := value.From(struct{}{}, storage.Pointer{}); err == nil {
		t.Error("From(struct{}{}): got nil error, want error")
	}
}

func TestSetters(t *testing.T) {
	c := new(testutil.Counter)
	sp := storage.Ref(c)

	v := value.NewNull(sp)
	steps := []struct {
		apply func() error
		want  string
	}{
		{func() error { v.SetBool(true); return nil }, "true"},
		{func() error { return v.SetString("abc") }, `"abc"`},
		{func() error { return v.SetString("a longer string") }, `"a longer string"`},
		{func() error { v.SetInt64(-1); return nil }, "-1"},
		{func() error { v.SetUint64(1); return nil }, "1"},
		{func() error { v.SetFloat64(1.25); return nil }, "1.25"},
		{func() error {
			a, err := v.EmplaceArray()
			if err != nil {
				return err
			}
			return a.Push(value.NewInt64(1, sp))
		}, "[1]"},
		{func() error { _, err := v.EmplaceArray(); return err }, "[]"},
		{func() error {
			o, err := v.EmplaceObject()
			if err != nil {
				return err
			}
			return o.Set("k", value.NewNull(sp))
		}, `{"k":null}`},
		{func() error { v.SetNull(); return nil }, "null"},
	}
	for i, step := range steps {
		if err := step.apply(); err != nil {
			t.Fatalf("Step %d: unexpected error: %v", i+1, err)
		}
		if got := v.String(); got != step.want {
			t.Errorf("Step %d: got %s, want %s", i+1, got, step.want)
		}
		if !v.Storage().Equal(sp) {
			t.Errorf("Step %d: storage changed to %v", i+1, v.Storage())
		}
	}
	if c.Live != 0 {
		t.Errorf("After SetNull: %d bytes still live", c.Live)
	}
	v.Release()
}

func TestSwap(t *testing.T) {
	t.Run("SameResource", func(t *testing.T) {
		a := mustFrom(t, []any{1, 2}, storage.Pointer{})
		b := mustFrom(t, "two", storage.Pointer{})
		arr, _ := a.Arr()
		if err := a.Swap(&b); err != nil {
			t.Fatalf("Swap: unexpected error: %v", err)
		}
		if got, _ := b.Arr(); got != arr {
			t.Error("Swap on an equal resource copied the payload")
		}
		if a.String() != `"two"` || b.String() != "[1,2]" {
			t.Errorf("After swap: a = %v, b = %v", a, b)
		}
		a.Release()
		b.Release()
	})

	t.Run("OtherResource", func(t *testing.T) {
		c := new(testutil.Counter)
		sp := storage.Ref(c)
		v, _ := value.NewArray(sp)
		arr, _ := v.Arr()
		if err := arr.Push(mustFrom(t, "one", sp)); err != nil {
			t.Fatalf("Push: %v", err)
		}
		w := mustFrom(t, []any{"two"}, storage.Pointer{})

		if err := arr.Index(0).Swap(&w); err != nil {
			t.Fatalf("Swap: unexpected error: %v", err)
		}
		if got := v.String(); got != `[["two"]]` {
			t.Errorf("Array after swap: got %s", got)
		}
		if got := w.String(); got != `"one"` {
			t.Errorf("w after swap: got %s", got)
		}
		inner, _ := arr.Index(0).Arr()
		for _, e := range []value.Value{*arr.Index(0), *inner.Index(0)} {
			if !e.Storage().Equal(sp) {
				t.Errorf("Element %v uses %v, want %v", e, e.Storage(), sp)
			}
		}
		if !w.Storage().IsDefault() {
			t.Errorf("w storage changed to %v", w.Storage())
		}
		v.Release()
		w.Release()
		if c.Live != 0 {
			t.Errorf("After release: %d bytes live, want 0", c.Live)
		}
	})

	t.Run("SharedHandle", func(t *testing.T) {
		m := storage.NewMonotonic(0, nil)
		sh, ref := storage.Share(m), storage.Ref(m)
		a := mustFrom(t, []any{"left"}, sh)
		b := mustFrom(t, "right", ref)
		if err := a.Swap(&b); err != nil {
			t.Fatalf("Swap: unexpected error: %v", err)
		}
		if a.Storage() != sh || b.Storage() != ref {
			t.Errorf("Storage after swap: a = %v, b = %v", a.Storage(), b.Storage())
		}
		if s, _ := a.Str(); s.Storage() != sh {
			t.Errorf("String of a uses %v, want %v", s.Storage(), sh)
		}
		arr, _ := b.Arr()
		if arr.Storage() != ref || arr.Index(0).Storage() != ref {
			t.Errorf("Array of b uses %v, want %v", arr.Storage(), ref)
		}
		if got, want := sh.UseCount(), int64(2); got != want {
			t.Errorf("UseCount: got %d, want %d", got, want)
		}
		a.Release()
		b.Release()
		sh.Release()
		if n := m.Stats().Blocks; n != 0 {
			t.Errorf("After release: arena holds %d blocks, want 0", n)
		}
	})

	t.Run("OutOfMemory", func(t *testing.T) {
		c := &testutil.Counter{Limit: 2} // enough for one string
		a := mustFrom(t, "one", storage.Ref(c))
		b := mustFrom(t, "two", storage.Pointer{})
		live := c.Live

		err := a.Swap(&b)
		if !errors.Is(err, storage.ErrOutOfMemory) {
			t.Errorf("Swap: got %v, want %v", err, storage.ErrOutOfMemory)
		}
		if a.String() != `"one"` || b.String() != `"two"` {
			t.Errorf("After failed swap: a = %v, b = %v", a, b)
		}
		if !a.Storage().Equal(storage.Ref(c)) || !b.Storage().IsDefault() {
			t.Errorf("After failed swap: a uses %v, b uses %v", a.Storage(), b.Storage())
		}
		if c.Live != live {
			t.Errorf("After failed swap: %d bytes live, want %d", c.Live, live)
		}
		a.Release()
		b.Release()
	})
}

func TestCopyMove(t *testing.T) {
	src := mustFrom(t, map[string]any{
		"a": []any{1, "two", map[string]any{"three": 3.0}},
		"b": "bee",
	}, storage.Pointer{})
	const want = `{"a":[1,"two",{"three":3.0}],"b":"bee"}`

	t.Run("Copy", func(t *testing.T) {
		c := new(testutil.Counter)
		cp, err := value.Copy(src, storage.Ref(c))
		if err != nil {
			t.Fatalf("Copy: unexpected error: %v", err)
		}
		if got := cp.String(); got != want {
			t.Errorf("Copy: got %s, want %s", got, want)
		}
		if !cp.Equal(src) {
			t.Error("Copy is not equal to its source")
		}
		a, _ := cp.Obj()
		e, _ := a.Get("a")
		arr, _ := e.Arr()
		if !arr.Index(1).Storage().Equal(storage.Ref(c)) {
			t.Error("Copied element does not use the target resource")
		}
		cp.Release()
		if c.Live != 0 {
			t.Errorf("After Release: %d bytes live, want 0", c.Live)
		}
	})

	t.Run("CopyIndependent", func(t *testing.T) {
		orig, _ := value.Copy(src, storage.Pointer{})
		c := new(testutil.Counter)
		cp, err := value.Copy(orig, storage.Ref(c))
		if err != nil {
			t.Fatalf("Copy: unexpected error: %v", err)
		}

		// Mutate the original at every level.
		o, _ := orig.Obj()
		e, _ := o.Get("a")
		arr, _ := e.Arr()
		s, _ := arr.Index(1).Str()
		for i, err := range []error{
			s.Append("!"),
			arr.Push(value.NewBool(true, storage.Pointer{})),
			o.Set("b", value.NewNull(storage.Pointer{})),
		} {
			if err != nil {
				t.Fatalf("Change %d: unexpected error: %v", i+1, err)
			}
		}
		if got := cp.String(); got != want {
			t.Errorf("Copy after changing the original: got %s, want %s", got, want)
		}

		// Mutate the copy.
		const changed = `{"a":[1,"two!",{"three":3.0},true],"b":null}`
		o, _ = cp.Obj()
		o.Clear()
		if got := orig.String(); got != changed {
			t.Errorf("Original after changing the copy: got %s, want %s", got, changed)
		}
		orig.Release()
		cp.Release()
		if c.Live != 0 {
			t.Errorf("After Release: %d bytes live, want 0", c.Live)
		}
	})

	t.Run("MoveKeepsShare", func(t *testing.T) {
		m := storage.NewMonotonicBuffer(make([]byte, 256), nil)
		fresh := m.Stats()
		sh := storage.Share(m)
		tmp := mustFrom(t, []any{"hello world"}, sh)
		sh.Release() // tmp holds the only shares

		ref := storage.Ref(m)
		got, err := value.Move(&tmp, ref)
		if err != nil {
			t.Fatalf("Move: unexpected error: %v", err)
		}
		if !got.Storage().IsShared() {
			t.Errorf("Move to a non-owning pointer dropped the share: %v", got.Storage())
		}
		other := mustFrom(t, "XXXXXXXXXXX", ref)
		if s := got.String(); s != `["hello world"]` {
			t.Errorf("Moved value was overwritten: got %s", s)
		}
		other.Release()
		got.Release()
		if st := m.Stats(); st != fresh {
			t.Errorf("After release: got %+v, want %+v", st, fresh)
		}
	})

	t.Run("MoveSame", func(t *testing.T) {
		tmp, _ := value.Copy(src, storage.Pointer{})
		ptr, _ := tmp.Obj()
		got, err := value.Move(&tmp, storage.Pointer{})
		if err != nil {
			t.Fatalf("Move: unexpected error: %v", err)
		}
		if o, _ := got.Obj(); o != ptr {
			t.Error("Move to an equal resource copied the payload")
		}
		if !tmp.IsNull() {
			t.Errorf("Source after move: got %v, want null", tmp)
		}
		got.Release()
	})

	t.Run("MoveOther", func(t *testing.T) {
		c := new(testutil.Counter)
		tmp, _ := value.Copy(src, storage.Ref(c))
		got, err := value.Move(&tmp, storage.Pointer{})
		if err != nil {
			t.Fatalf("Move: unexpected error: %v", err)
		}
		if s := got.String(); s != want {
			t.Errorf("Move: got %s, want %s", s, want)
		}
		if !tmp.IsNull() || c.Live != 0 {
			t.Errorf("Source after move: %v, %d bytes live", tmp, c.Live)
		}
	})

	t.Run("OutOfMemory", func(t *testing.T) {
		c := &testutil.Counter{Limit: 3}
		_, err := value.Copy(src, storage.Ref(c))
		if !errors.Is(err, storage.ErrOutOfMemory) {
			t.Errorf("Copy: got %v, want %v", err, storage.ErrOutOfMemory)
		}
		if c.Live != 0 {
			t.Errorf("After failed copy: %d bytes live, want 0", c.Live)
		}
	})
}

func TestSharedStorage(t *testing.T) {
	m := storage.NewMonotonic(0, nil)
	sp := storage.Share(m)

	v := mustFrom(t, []any{"a", "b", map[string]any{"c": 1}}, sp)
	if n := sp.UseCount(); n < 2 {
		t.Errorf("UseCount: got %d, want > 1", n)
	}
	sp.Release() // the tree keeps the arena alive
	if m.Stats().Blocks == 0 {
		t.Fatal("Arena released while the tree holds it")
	}
	if got, want := v.String(), `["a","b",{"c":1}]`; got != want {
		t.Errorf("String: got %s, want %s", got, want)
	}
	v.Release()
	if n := m.Stats().Blocks; n != 0 {
		t.Errorf("After release: arena holds %d blocks, want 0", n)
	}
}

func TestArray(t *testing.T) {
	c := new(testutil.Counter)
	sp := storage.Ref(c)
	v, err := value.NewArray(sp)
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	a, _ := v.Arr()

	check := func(want string) {
		t.Helper()
		if got := v.String(); got != want {
			t.Errorf("Array: got %s, want %s", got, want)
		}
	}
	for i := range 5 {
		if err := a.Push(value.NewInt64(int64(i), sp)); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	check("[0,1,2,3,4]")

	// A value from another resource is copied in.
	other := mustFrom(t, "x", storage.Pointer{})
	if err := a.Insert(0, other); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	check(`["x",0,1,2,3,4]`)
	if !a.Index(0).Storage().Equal(sp) {
		t.Error("Inserted element does not use the array resource")
	}

	if err := a.Erase(2); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	check(`["x",0,2,3,4]`)

	last, err := a.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if z, _ := last.Int64(); z != 4 {
		t.Errorf("Pop: got %v, want 4", last)
	}
	last.Release()

	if err := a.Resize(6); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	check(`["x",0,2,3,null,null]`)
	if err := a.Resize(2); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	check(`["x",0]`)

	if err := a.PushCopy(*a.Index(0)); err != nil {
		t.Fatalf("PushCopy: %v", err)
	}
	check(`["x",0,"x"]`)

	if err := a.Reserve(100); err != nil {
		t.Fatalf("Reserve: %v", err)
	} else if a.Cap() < 100 {
		t.Errorf("Cap: got %d, want >= 100", a.Cap())
	}

	var idx []int
	for i, e := range a.All() {
		if e.IsString() {
			idx = append(idx, i)
		}
	}
	if diff := cmp.Diff([]int{0, 2}, idx); diff != "" {
		t.Errorf("All (-want, +got):\n%s", diff)
	}

	for _, i := range []int{-1, 3} {
		if _, err := a.At(i); !errors.Is(err, value.ErrOutOfRange) {
			t.Errorf("At(%d): got %v, want %v", i, err, value.ErrOutOfRange)
		}
		if err := a.Erase(i); !errors.Is(err, value.ErrOutOfRange) {
			t.Errorf("Erase(%d): got %v, want %v", i, err, value.ErrOutOfRange)
		}
	}
	if err := a.Insert(5, value.Value{}); !errors.Is(err, value.ErrOutOfRange) {
		t.Errorf("Insert(5): got %v, want %v", err, value.ErrOutOfRange)
	}
	mtest.MustPanic(t, func() { a.Index(3) })

	a.Clear()
	check("[]")
	if _, err := a.Pop(); !errors.Is(err, value.ErrOutOfRange) {
		t.Errorf("Pop: got %v, want %v", err, value.ErrOutOfRange)
	}
	if err := a.Reserve(value.MaxArraySize + 1); !errors.Is(err, storage.ErrSizeLimit) {
		t.Errorf("Reserve: got %v, want %v", err, storage.ErrSizeLimit)
	}

	v.Release()
	if c.Live != 0 {
		t.Errorf("After Release: %d bytes live, want 0", c.Live)
	}
}

func TestObject(t *testing.T) {
	c := new(testutil.Counter)
	sp := storage.Ref(c)
	v, err := value.NewObject(sp)
	if err != nil {
		t.Fatalf("NewObject: %v", err)
	}
	o, _ := v.Obj()

	set := func(key string, z int64) {
		t.Helper()
		if err := o.Set(key, value.NewInt64(z, sp)); err != nil {
			t.Fatalf("Set %q: %v", key, err)
		}
	}
	check := func(want string) {
		t.Helper()
		if got := v.String(); got != want {
			t.Errorf("Object: got %s, want %s", got, want)
		}
	}

	set("b", 1)
	set("a", 2)
	set("", 3)
	set("b", 4) // replaces, keeping position
	check(`{"b":4,"a":2,"":3}`)

	if ok, err := o.Insert("a", value.NewInt64(9, sp)); err != nil || ok {
		t.Errorf(`Insert "a": got (%v, %v), want (false, nil)`, ok, err)
	}
	if ok, err := o.Insert("c", value.NewInt64(5, sp)); err != nil || !ok {
		t.Errorf(`Insert "c": got (%v, %v), want (true, nil)`, ok, err)
	}
	check(`{"b":4,"a":2,"":3,"c":5}`)

	if !o.Erase("a") || o.Erase("nonesuch") {
		t.Error("Erase reported the wrong result")
	}
	check(`{"b":4,"":3,"c":5}`)
	if got, want := slices.Collect(o.Keys()), []string{"b", "", "c"}; !slices.Equal(got, want) {
		t.Errorf("Keys: got %q, want %q", got, want)
	}

	if _, err := o.At("a"); !errors.Is(err, value.ErrOutOfRange) {
		t.Errorf(`At "a": got %v, want %v`, err, value.ErrOutOfRange)
	}
	if e, err := o.At("c"); err != nil || e.String() != "5" {
		t.Errorf(`At "c": got (%v, %v), want 5`, e, err)
	}
	if k, e := o.Member(1); k != "" || e.String() != "3" {
		t.Errorf("Member(1): got (%q, %v), want (\"\", 3)", k, e)
	}

	// Grow past the indexing threshold and verify lookups.
	for i := range 100 {
		set(fmt.Sprintf("k%d", i), int64(i))
	}
	for i := range 100 {
		key := fmt.Sprintf("k%d", i)
		if e, ok := o.Get(key); !ok || e.String() != fmt.Sprint(i) {
			t.Errorf("Get %q: got (%v, %v), want %d", key, e, ok, i)
		}
		if got, want := o.Find(key), i+3; got != want {
			t.Errorf("Find %q: got %d, want %d", key, got, want)
		}
	}
	for i := 0; i < 100; i += 2 {
		o.Erase(fmt.Sprintf("k%d", i))
	}
	for i := range 100 {
		key := fmt.Sprintf("k%d", i)
		if got, want := o.Contains(key), i%2 == 1; got != want {
			t.Errorf("Contains %q: got %v, want %v", key, got, want)
		}
	}
	set("k1", -1)
	if got, want := o.Find("k1"), 3; got != want {
		t.Errorf(`Find "k1" after replace: got %d, want %d`, got, want)
	}
	if got, want := o.Len(), 53; got != want {
		t.Errorf("Len: got %d, want %d", got, want)
	}

	o.Clear()
	check("{}")
	if o.Contains("k1") {
		t.Error("Clear did not remove k1")
	}
	set("again", 1)
	check(`{"again":1}`)

	v.Release()
	if c.Live != 0 {
		t.Errorf("After Release: %d bytes live, want 0", c.Live)
	}
}

func TestString(t *testing.T) {
	c := new(testutil.Counter)
	sp := storage.Ref(c)
	v, err := value.NewString("hello", sp)
	if err != nil {
		t.Fatalf("NewString: %v", err)
	}
	s, _ := v.Str()

	steps := []struct {
		name  string
		apply func() error
		want  string
	}{
		{"Append", func() error { return s.Append(", world") }, "hello, world"},
		{"AppendByte", func() error { return s.AppendByte('!') }, "hello, world!"},
		{"PopBack", s.PopBack, "hello, world"},
		{"Insert", func() error { return s.Insert(5, " there") }, "hello there, world"},
		{"Erase", func() error { return s.Erase(5, 6) }, "hello, world"},
		{"EraseTail", func() error { return s.Erase(5, -1) }, "hello"},
		{"Replace", func() error { return s.Replace(1, 3, "ELL") }, "hELLo"},
		{"ReplaceGrow", func() error { return s.Replace(0, 1, "Oh, h") }, "Oh, hELLo"},
		{"Resize", func() error { return s.Resize(11, '.') }, "Oh, hELLo.."},
		{"Shrink", func() error { return s.Resize(2, 0) }, "Oh"},
		{"Self", func() error { return s.AppendBytes(s.Bytes()) }, "OhOh"},
		{"Assign", func() error { return s.Assign("a much longer value than before") }, "a much longer value than before"},
		{"Clear", func() error { s.Clear(); return nil }, ""},
		{"Refill", func() error { return s.Assign("abcabc") }, "abcabc"},
	}
	for _, step := range steps {
		if err := step.apply(); err != nil {
			t.Fatalf("%s: unexpected error: %v", step.name, err)
		}
		if got := s.String(); got != step.want {
			t.Errorf("%s: got %q, want %q", step.name, got, step.want)
		}
		if s.Len() != len(step.want) || s.Cap() < s.Len() {
			t.Errorf("%s: len %d cap %d", step.name, s.Len(), s.Cap())
		}
	}

	if got := s.Find("bc", 0); got != 1 {
		t.Errorf("Find: got %d, want 1", got)
	}
	if got := s.Find("bc", 2); got != 4 {
		t.Errorf("Find from 2: got %d, want 4", got)
	}
	if got := s.Find("x", 0); got != -1 {
		t.Errorf("Find x: got %d, want -1", got)
	}
	if got := s.RFind("bc", -1); got != 4 {
		t.Errorf("RFind: got %d, want 4", got)
	}
	if got := s.RFind("bc", 3); got != 1 {
		t.Errorf("RFind from 3: got %d, want 1", got)
	}
	if sub, err := s.Substr(2, 3); err != nil || sub != "cab" {
		t.Errorf("Substr: got (%q, %v), want cab", sub, err)
	}
	if !s.StartsWith("abc") || !s.EndsWith("bc") || s.StartsWith("bc") {
		t.Error("StartsWith/EndsWith reported the wrong result")
	}
	if s.Compare("abcabc") != 0 || s.Compare("abd") >= 0 || s.Compare("ab") <= 0 {
		t.Error("Compare reported the wrong result")
	}
	if b, err := s.At(3); err != nil || b != 'a' {
		t.Errorf("At(3): got (%q, %v), want a", b, err)
	}

	// The contents are NUL-terminated within the allocation.
	if b := s.Bytes(); unsafe.Slice(unsafe.SliceData(b), len(b)+1)[len(b)] != 0 {
		t.Error("String is not NUL-terminated")
	}

	if err := s.ShrinkToFit(); err != nil {
		t.Fatalf("ShrinkToFit: %v", err)
	} else if s.Cap() != s.Len() {
		t.Errorf("ShrinkToFit: cap %d, len %d", s.Cap(), s.Len())
	}

	for _, bad := range []error{
		func() error { _, err := s.At(6); return err }(),
		s.Insert(7, "x"),
		s.Erase(-1, 1),
		func() error { _, err := s.Substr(10, 1); return err }(),
	} {
		if !errors.Is(bad, value.ErrOutOfRange) {
			t.Errorf("Got %v, want %v", bad, value.ErrOutOfRange)
		}
	}
	if err := s.Reserve(value.MaxStringSize + 1); !errors.Is(err, storage.ErrSizeLimit) {
		t.Errorf("Reserve: got %v, want %v", err, storage.ErrSizeLimit)
	}
	if got := s.String(); got != "abcabc" {
		t.Errorf("After failures: got %q, want unchanged", got)
	}

	v.Release()
	if c.Live != 0 {
		t.Errorf("After Release: %d bytes live, want 0", c.Live)
	}
}

func TestOutOfMemory(t *testing.T) {
	c := &testutil.Counter{Limit: 2}
	sp := storage.Ref(c)
	v, err := value.NewString("abc", sp) // node + buffer
	if err != nil {
		t.Fatalf("NewString: %v", err)
	}
	s, _ := v.Str()
	if err := s.Append("more than three bytes"); !errors.Is(err, storage.ErrOutOfMemory) {
		t.Errorf("Append: got %v, want %v", err, storage.ErrOutOfMemory)
	}
	if got := s.String(); got != "abc" {
		t.Errorf("After failed append: got %q, want abc", got)
	}
	if _, err := value.NewArray(sp); !errors.Is(err, storage.ErrOutOfMemory) {
		t.Errorf("NewArray: got %v, want %v", err, storage.ErrOutOfMemory)
	}
	v.Release()
}

func TestEqualCompare(t *testing.T) {
	var sp storage.Pointer
	nan := value.NewFloat64(math.NaN(), sp)
	tests := []struct {
		a, b  any
		equal bool
		cmp   int
	}{
		{nil, nil, true, 0},
		{nil, false, false, -1},
		{false, true, false, -1},
		{int64(5), uint64(5), true, 0},
		{int64(5), 5.0, true, 0},
		{uint64(5), 5.0, true, 0},
		{int64(-1), uint64(0), false, -1},
		{uint64(math.MaxUint64), int64(math.MaxInt64), false, 1},
		{int64(math.MaxInt64), float64(math.MaxInt64), false, -1}, // the float is 2^63
		{uint64(1 << 53 + 1), float64(1 << 53), false, 1},
		{2.5, int64(2), false, 1},
		{-2.5, int64(-2), false, -1},
		{1e30, uint64(math.MaxUint64), false, 1},
		{true, 0, false, -1},
		{100, "1", false, -1},
		{"abc", "abd", false, -1},
		{"abc", "abc", true, 0},
		{"z", []any{}, false, -1},
		{[]any{1, 2}, []any{1.0, 2}, true, 0},
		{[]any{1, 2}, []any{1, 2, 3}, false, -1},
		{[]any{1, 3}, []any{1, 2, 3}, false, 1},
		{[]any{}, map[string]any{}, false, -1},
		{map[string]any{"a": 1, "b": 2}, map[string]any{"b": 2, "a": 1}, true, 0},
		{map[string]any{"a": 1}, map[string]any{"a": 2}, false, -1},
		{map[string]any{"a": 1}, map[string]any{"b": 0}, false, -1},
		{map[string]any{"a": 1}, map[string]any{"a": 1, "b": 0}, false, -1},
	}
	for _, tc := range tests {
		a, b := mustFrom(t, tc.a, sp), mustFrom(t, tc.b, sp)
		if got := a.Equal(b); got != tc.equal {
			t.Errorf("Equal(%v, %v): got %v, want %v", a, b, got, tc.equal)
		}
		if got := b.Equal(a); got != tc.equal {
			t.Errorf("Equal(%v, %v): got %v, want %v", b, a, got, tc.equal)
		}
		if got := value.Compare(a, b); got != tc.cmp {
			t.Errorf("Compare(%v, %v): got %v, want %v", a, b, got, tc.cmp)
		}
		if got := value.Compare(b, a); got != -tc.cmp {
			t.Errorf("Compare(%v, %v): got %v, want %v", b, a, got, -tc.cmp)
		}
	}

	if nan.Equal(nan) {
		t.Error("NaN is equal to itself")
	}
	if got := value.Compare(nan, value.NewInt64(math.MinInt64, sp)); got != -1 {
		t.Errorf("Compare(NaN, MinInt64): got %d, want -1", got)
	}
}
