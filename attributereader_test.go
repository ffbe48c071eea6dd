// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

import (
	"bytes"
	"reflect"
	"testing"
)

// Attributes produced by the reader serialize back to the exact bytes they
// were read from, and reading the writer's output reproduces the model.
func TestAttributeRoundTrip(t *testing.T) {

	cp := NewConstantPool()
	handle := cp.AddMethodHandle(RefInvokeStatic,
		cp.AddMethodRef("java/lang/invoke/StringConcatFactory", "makeConcat",
			"(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite;"))

	attrs := []Attribute{
		&ConstantValueAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrConstantValue)},
			Value:    cp.AddLong(1 << 40),
		},
		&ExceptionsAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrExceptions)},
			Exceptions: []*CpClass{
				cp.AddClass("java/io/IOException"),
				cp.AddClass("java/sql/SQLException"),
			},
		},
		&ExceptionsAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrExceptions)},
		},
		&EnclosingMethodAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrEnclosingMethod)},
			Class:    cp.AddClass("Outer"),
		},
		&EnclosingMethodAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrEnclosingMethod)},
			Class:    cp.AddClass("Outer"),
			Method:   cp.AddNameAndType("run", "()V"),
		},
		&InnerClassesAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrInnerClasses)},
			Classes: []InnerClass{
				{
					Inner:       cp.AddClass("Outer$Inner"),
					Outer:       cp.AddClass("Outer"),
					Name:        cp.AddUtf8("Inner"),
					AccessFlags: AccPublic | AccStatic,
				},
				{
					Inner:       cp.AddClass("Outer$1"),
					AccessFlags: 0,
				},
			},
		},
		&SignatureAttribute{
			attrBase:  attrBase{Name: cp.AddUtf8(AttrSignature)},
			Signature: cp.AddUtf8("Ljava/util/List<Ljava/lang/String;>;"),
		},
		&SourceFileAttribute{
			attrBase:   attrBase{Name: cp.AddUtf8(AttrSourceFile)},
			SourceFile: cp.AddUtf8("Outer.java"),
		},
		&SourceDebugExtensionAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrSourceDebugExtension)},
			Debug:    []byte("SMAP\nOuter.java\nKotlin\n"),
		},
		&NestHostAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrNestHost)},
			Host:     cp.AddClass("Outer"),
		},
		&NestMembersAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrNestMembers)},
			Classes:  []*CpClass{cp.AddClass("Outer$Inner"), cp.AddClass("Outer$1")},
		},
		&PermittedClassesAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrPermittedSubclasses)},
			Classes:  []*CpClass{cp.AddClass("Circle"), cp.AddClass("Square")},
		},
		&BootstrapMethodsAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrBootstrapMethods)},
			Methods: []BootstrapMethod{
				{Handle: handle, Args: []CpEntry{cp.AddString("a"), cp.AddInteger(3)}},
				{Handle: handle},
			},
		},
		&RecordAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrRecord)},
			Components: []RecordComponent{
				{Name: cp.AddUtf8("x"), Descriptor: cp.AddUtf8("I")},
				{
					Name:       cp.AddUtf8("name"),
					Descriptor: cp.AddUtf8("Ljava/lang/String;"),
					Attributes: []Attribute{
						&SignatureAttribute{
							attrBase:  attrBase{Name: cp.AddUtf8(AttrSignature)},
							Signature: cp.AddUtf8("TT;"),
						},
					},
				},
			},
		},
		&StackMapTableAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrStackMapTable)},
			Frames: []StackMapFrame{
				&SameFrame{Type: 0},
				&SameLocalsOneStackItemFrame{
					Type:  70,
					Stack: VerificationType{Tag: ItemObject, ClassInfo: cp.AddClass("java/lang/String")},
				},
				&SameLocalsOneStackItemExtendedFrame{
					OffsetDelta: 300,
					Stack:       VerificationType{Tag: ItemUninitialized, Offset: 8},
				},
				&ChopFrame{Type: 249, OffsetDelta: 2},
				&SameFrameExtended{OffsetDelta: 80},
				&AppendFrame{Type: 254, OffsetDelta: 7, Locals: []VerificationType{
					{Tag: ItemLong}, {Tag: ItemInteger}, {Tag: ItemNull},
				}},
				&FullFrame{
					OffsetDelta: 11,
					Locals: []VerificationType{
						{Tag: ItemUninitializedThis},
						{Tag: ItemDouble},
					},
					Stack: []VerificationType{{Tag: ItemFloat}},
				},
				&FullFrame{OffsetDelta: 12},
			},
		},
		&DeprecatedAttribute{attrBase: attrBase{Name: cp.AddUtf8(AttrDeprecated)}},
		&SyntheticAttribute{attrBase: attrBase{Name: cp.AddUtf8(AttrSynthetic)}},
		&DefaultAttribute{
			attrBase: attrBase{Name: cp.AddUtf8("CustomAttribute")},
			Data:     []byte{0xCA, 0xFE, 0xD0, 0x0D},
		},
	}

	w := NewAttributeWriter()
	r := NewAttributeReader(cp)

	for _, attr := range attrs {
		name := attr.AttrName().Value
		written, err := w.WriteAttribute(attr)
		if err != nil {
			t.Fatalf("%s: WriteAttribute failed, reason: %v", name, err)
		}
		parsed, err := r.ReadAttribute(written)
		if err != nil {
			t.Fatalf("%s: ReadAttribute failed, reason: %v", name, err)
		}
		if !reflect.DeepEqual(parsed, attr) {
			t.Errorf("%s: parsed model differs\n got %#v\nwant %#v", name, parsed, attr)
		}
		rewritten, err := w.WriteAttribute(parsed)
		if err != nil {
			t.Fatalf("%s: rewrite failed, reason: %v", name, err)
		}
		if !bytes.Equal(rewritten, written) {
			t.Errorf("%s: rewrite differs\n got % X\nwant % X", name, rewritten, written)
		}
	}
}

func TestCodeAttributeRoundTrip(t *testing.T) {

	cp := NewConstantPool()
	out := cp.AddFieldRef("java/lang/System", "out", "Ljava/io/PrintStream;")
	println := cp.AddMethodRef("java/io/PrintStream", "println", "(Ljava/lang/String;)V")
	hello := cp.AddString("hello")
	npe := cp.AddClass("java/lang/NullPointerException")

	code := &CodeAttribute{
		attrBase:  attrBase{Name: cp.AddUtf8(AttrCode)},
		MaxStack:  2,
		MaxLocals: 1,
		Instructions: []Instruction{
			{Opcode: OpGetstatic, Operands: u16Operand(out.Index())},
			{Opcode: OpLdc, Operands: []byte{byte(hello.Index())}},
			{Opcode: OpInvokevirtual, Operands: u16Operand(println.Index())},
			{Opcode: OpReturn},
		},
		Exceptions: []ExceptionHandler{
			{StartPC: 0, EndPC: 8, HandlerPC: 8, CatchType: npe},
			{StartPC: 0, EndPC: 8, HandlerPC: 8, CatchType: nil},
		},
		Attributes: []Attribute{
			&LineNumberTableAttribute{
				attrBase: attrBase{Name: cp.AddUtf8(AttrLineNumberTable)},
				Lines:    []LineNumber{{StartPC: 0, Line: 1}, {StartPC: 8, Line: 2}},
			},
			&LocalVariableTableAttribute{
				attrBase: attrBase{Name: cp.AddUtf8(AttrLocalVariableTable)},
				Variables: []LocalVariable{
					{
						StartPC: 0, Length: 9,
						Name:       cp.AddUtf8("this"),
						Descriptor: cp.AddUtf8("LMain;"),
						Slot:       0,
					},
				},
			},
			&StackMapTableAttribute{
				attrBase: attrBase{Name: cp.AddUtf8(AttrStackMapTable)},
				Frames:   []StackMapFrame{&SameFrame{Type: 8}},
			},
		},
	}

	w := NewAttributeWriter()
	r := NewAttributeReader(cp)

	written, err := w.WriteAttribute(code)
	if err != nil {
		t.Fatalf("WriteAttribute failed, reason: %v", err)
	}
	parsed, err := r.ReadAttribute(written)
	if err != nil {
		t.Fatalf("ReadAttribute failed, reason: %v", err)
	}
	if !reflect.DeepEqual(parsed, code) {
		t.Errorf("parsed model differs\n got %#v\nwant %#v", parsed, code)
	}
}

func TestModuleAttributesRoundTrip(t *testing.T) {

	cp := NewConstantPool()
	attrs := []Attribute{
		&ModuleAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrModule)},
			Module:   cp.AddModule("com.example.app"),
			Flags:    0x0020,
			Version:  cp.AddUtf8("1.0"),
			Requires: []ModuleRequire{
				{Module: cp.AddModule("java.base"), Flags: 0x8000, Version: cp.AddUtf8("21")},
				{Module: cp.AddModule("java.sql"), Flags: 0},
			},
			Exports: []ModuleExport{
				{Package: cp.AddPackage("com/example/api"), Flags: 0},
				{
					Package: cp.AddPackage("com/example/spi"),
					Flags:   0,
					To:      []*CpModule{cp.AddModule("com.example.impl")},
				},
			},
			Opens: []ModuleOpen{
				{
					Package: cp.AddPackage("com/example/internal"),
					Flags:   0,
					To:      []*CpModule{cp.AddModule("java.base")},
				},
			},
			Uses: []*CpClass{cp.AddClass("com/example/spi/Codec")},
			Provides: []ModuleProvide{
				{
					Service: cp.AddClass("com/example/spi/Codec"),
					With:    []*CpClass{cp.AddClass("com/example/impl/JsonCodec")},
				},
			},
		},
		&ModulePackagesAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrModulePackages)},
			Packages: []*CpPackage{
				cp.AddPackage("com/example/api"),
				cp.AddPackage("com/example/internal"),
			},
		},
		&ModuleTargetAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrModuleTarget)},
			Platform: cp.AddUtf8("linux-amd64"),
		},
		&ModuleHashesAttribute{
			attrBase:  attrBase{Name: cp.AddUtf8(AttrModuleHashes)},
			Algorithm: cp.AddUtf8("SHA-256"),
			Hashes: []ModuleHash{
				{Module: cp.AddUtf8("java.sql"), Hash: []byte{1, 2, 3, 4}},
				{Module: cp.AddUtf8("java.base"), Hash: []byte{5, 6}},
				{Module: cp.AddUtf8("java.xml"), Hash: []byte{7}},
			},
		},
	}

	w := NewAttributeWriter()
	r := NewAttributeReader(cp)

	for _, attr := range attrs {
		name := attr.AttrName().Value
		written, err := w.WriteAttribute(attr)
		if err != nil {
			t.Fatalf("%s: WriteAttribute failed, reason: %v", name, err)
		}
		parsed, err := r.ReadAttribute(written)
		if err != nil {
			t.Fatalf("%s: ReadAttribute failed, reason: %v", name, err)
		}
		if !reflect.DeepEqual(parsed, attr) {
			t.Errorf("%s: parsed model differs\n got %#v\nwant %#v", name, parsed, attr)
		}
	}
}

// Hash table order survives a read/write cycle, the attribute round-trips
// byte for byte.
func TestModuleHashesPreservesOrder(t *testing.T) {

	cp := NewConstantPool()
	attr := &ModuleHashesAttribute{
		attrBase:  attrBase{Name: cp.AddUtf8(AttrModuleHashes)},
		Algorithm: cp.AddUtf8("SHA-256"),
		Hashes: []ModuleHash{
			{Module: cp.AddUtf8("zeta"), Hash: []byte{9}},
			{Module: cp.AddUtf8("alpha"), Hash: []byte{1}},
			{Module: cp.AddUtf8("mu"), Hash: []byte{5}},
		},
	}

	w := NewAttributeWriter()
	r := NewAttributeReader(cp)
	written, _ := w.WriteAttribute(attr)
	parsed, err := r.ReadAttribute(written)
	if err != nil {
		t.Fatalf("ReadAttribute failed, reason: %v", err)
	}
	mh := parsed.(*ModuleHashesAttribute)
	for i, want := range []string{"zeta", "alpha", "mu"} {
		if mh.Hashes[i].Module.Value != want {
			t.Errorf("hash %d: got %s, want %s", i, mh.Hashes[i].Module.Value, want)
		}
	}
	rewritten, _ := w.WriteAttribute(parsed)
	if !bytes.Equal(rewritten, written) {
		t.Errorf("rewrite differs\n got % X\nwant % X", rewritten, written)
	}
}

// Unknown names route through DefaultAttribute with the body preserved
// verbatim.
func TestReadUnknownAttribute(t *testing.T) {

	cp := NewConstantPool()
	name := cp.AddUtf8("org.aspectj.weaver.WeaverState")

	buf := newByteWriter()
	buf.putU16(name.Index())
	buf.putU32(5)
	buf.putBytes([]byte{1, 2, 3, 4, 5})

	r := NewAttributeReader(cp)
	parsed, err := r.ReadAttribute(buf.bytes())
	if err != nil {
		t.Fatalf("ReadAttribute failed, reason: %v", err)
	}
	def, ok := parsed.(*DefaultAttribute)
	if !ok {
		t.Fatalf("got %T, want *DefaultAttribute", parsed)
	}
	if !bytes.Equal(def.Data, []byte{1, 2, 3, 4, 5}) {
		t.Errorf("body not preserved: % X", def.Data)
	}

	w := NewAttributeWriter()
	rewritten, _ := w.WriteAttribute(def)
	if !bytes.Equal(rewritten, buf.bytes()) {
		t.Errorf("rewrite differs\n got % X\nwant % X", rewritten, buf.bytes())
	}
}

func TestReadAttributeTruncated(t *testing.T) {

	cp := NewConstantPool()
	name := cp.AddUtf8(AttrSourceFile)

	buf := newByteWriter()
	buf.putU16(name.Index())
	buf.putU32(10)
	buf.putU16(1)

	r := NewAttributeReader(cp)
	if _, err := r.ReadAttribute(buf.bytes()); err == nil {
		t.Error("expected an error for a truncated attribute body")
	}
}

func u16Operand(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}
