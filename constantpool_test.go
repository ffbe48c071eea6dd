// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

import (
	"errors"
	"testing"
)

func TestConstantPoolInterning(t *testing.T) {

	cp := NewConstantPool()
	a := cp.AddUtf8("Code")
	b := cp.AddUtf8("Code")
	if a != b {
		t.Error("equal Utf8 values were not interned")
	}
	if a.Index() != 1 {
		t.Errorf("first entry at index %d, want 1", a.Index())
	}

	c1 := cp.AddClass("java/lang/Object")
	c2 := cp.AddClass("java/lang/Object")
	if c1 != c2 {
		t.Error("equal Class entries were not interned")
	}
	if c1.Name.Value != "java/lang/Object" {
		t.Errorf("class name %q", c1.Name.Value)
	}

	mr := cp.AddMethodRef("java/lang/Object", "<init>", "()V")
	if mr.Class != c1 {
		t.Error("method ref did not reuse the interned class")
	}
}

// Long and Double entries take two slots.
func TestConstantPoolWideEntries(t *testing.T) {

	cp := NewConstantPool()
	l := cp.AddLong(1)
	next := cp.AddUtf8("after")
	if l.Index() != 1 {
		t.Errorf("long at index %d, want 1", l.Index())
	}
	if next.Index() != 3 {
		t.Errorf("entry after long at index %d, want 3", next.Index())
	}
	if cp.Count() != 4 {
		t.Errorf("count = %d, want 4", cp.Count())
	}
	if cp.Entry(2) != nil {
		t.Error("slot after a long should be a hole")
	}
}

func TestIndexOrZero(t *testing.T) {

	if got := indexOrZero(nil); got != 0 {
		t.Errorf("nil interface resolved to %d", got)
	}
	var class *CpClass
	if got := indexOrZero(class); got != 0 {
		t.Errorf("typed nil resolved to %d", got)
	}
	cp := NewConstantPool()
	e := cp.AddUtf8("x")
	if got := indexOrZero(e); got != e.Index() {
		t.Errorf("got %d, want %d", got, e.Index())
	}
}

func TestPoolAccessorKinds(t *testing.T) {

	cp := NewConstantPool()
	u := cp.AddUtf8("value")
	c := cp.AddClass("A")

	if _, err := cp.Utf8(u.Index()); err != nil {
		t.Errorf("Utf8 lookup failed: %v", err)
	}
	if _, err := cp.Class(u.Index()); !errors.Is(err, ErrBadPoolIndex) {
		t.Errorf("Class on a Utf8 slot: got %v, want %v", err, ErrBadPoolIndex)
	}
	if _, err := cp.Utf8(0); !errors.Is(err, ErrBadPoolIndex) {
		t.Errorf("index 0: got %v, want %v", err, ErrBadPoolIndex)
	}
	if _, err := cp.Class(999); !errors.Is(err, ErrBadPoolIndex) {
		t.Errorf("out of range: got %v, want %v", err, ErrBadPoolIndex)
	}
	if got, err := cp.OptClass(0); err != nil || got != nil {
		t.Errorf("OptClass(0) = %v, %v", got, err)
	}
	if got, err := cp.OptClass(c.Index()); err != nil || got != c {
		t.Errorf("OptClass = %v, %v", got, err)
	}
}

func TestConstantPoolSerializationRoundTrip(t *testing.T) {

	cp := NewConstantPool()
	cp.AddUtf8("plain")
	cp.AddInteger(-7)
	cp.AddFloat(1.5)
	cp.AddLong(1 << 40)
	cp.AddDouble(-2.25)
	cp.AddString("hello \x00 𝄞 world")
	cp.AddFieldRef("java/lang/System", "out", "Ljava/io/PrintStream;")
	cp.AddInterfaceMethodRef("java/util/List", "size", "()I")
	handle := cp.AddMethodHandle(RefInvokeStatic,
		cp.AddMethodRef("java/lang/Math", "abs", "(I)I"))
	cp.AddMethodType("(I)I")
	cp.AddInvokeDynamic(0, "apply", "()Ljava/util/function/IntUnaryOperator;")
	cp.AddDynamic(1, "constant", "I")
	cp.AddModule("java.base")
	cp.AddPackage("java/lang")

	buf := newByteWriter()
	cp.write(buf)

	parsed, err := readConstantPool(&cursor{data: buf.bytes()})
	if err != nil {
		t.Fatalf("readConstantPool failed, reason: %v", err)
	}
	if parsed.Count() != cp.Count() {
		t.Fatalf("count = %d, want %d", parsed.Count(), cp.Count())
	}

	out := newByteWriter()
	parsed.write(out)
	if string(out.bytes()) != string(buf.bytes()) {
		t.Error("pool serialization did not round-trip byte for byte")
	}

	h, err := parsed.MethodHandle(handle.Index())
	if err != nil {
		t.Fatalf("MethodHandle lookup failed: %v", err)
	}
	if h.Kind != RefInvokeStatic {
		t.Errorf("handle kind = %d, want %d", h.Kind, RefInvokeStatic)
	}
	if _, ok := h.Reference.(*CpMethodRef); !ok {
		t.Errorf("handle reference is %T, want *CpMethodRef", h.Reference)
	}
}

func TestReadConstantPoolBadTag(t *testing.T) {

	buf := newByteWriter()
	buf.putU16(2)
	buf.putU8(99)

	if _, err := readConstantPool(&cursor{data: buf.bytes()}); !errors.Is(err, ErrBadConstantTag) {
		t.Errorf("got %v, want %v", err, ErrBadConstantTag)
	}
}
