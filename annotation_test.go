// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

import (
	"bytes"
	"reflect"
	"testing"
)

func TestAnnotationAttributesRoundTrip(t *testing.T) {

	cp := NewConstantPool()
	deprecated := &Annotation{
		Type: cp.AddUtf8("Ljava/lang/Deprecated;"),
		Values: []ElementValuePair{
			{Name: cp.AddUtf8("since"), Value: &ConstElementValue{
				Tag: ValueString, Value: cp.AddUtf8("11"),
			}},
			{Name: cp.AddUtf8("forRemoval"), Value: &ConstElementValue{
				Tag: ValueBoolean, Value: cp.AddInteger(1),
			}},
		},
	}
	retention := &Annotation{
		Type: cp.AddUtf8("Ljava/lang/annotation/Retention;"),
		Values: []ElementValuePair{
			{Name: cp.AddUtf8("value"), Value: &EnumElementValue{
				TypeName:  cp.AddUtf8("Ljava/lang/annotation/RetentionPolicy;"),
				ConstName: cp.AddUtf8("RUNTIME"),
			}},
		},
	}
	nested := &Annotation{
		Type: cp.AddUtf8("Ljavax/annotation/Resource;"),
		Values: []ElementValuePair{
			{Name: cp.AddUtf8("type"), Value: &ClassElementValue{
				ClassInfo: cp.AddUtf8("Ljava/lang/Object;"),
			}},
			{Name: cp.AddUtf8("extra"), Value: &AnnotationElementValue{
				Value: deprecated,
			}},
			{Name: cp.AddUtf8("tags"), Value: &ArrayElementValue{
				Values: []ElementValue{
					&ConstElementValue{Tag: ValueInt, Value: cp.AddInteger(1)},
					&ConstElementValue{Tag: ValueInt, Value: cp.AddInteger(2)},
				},
			}},
		},
	}

	attrs := []Attribute{
		&AnnotationsAttribute{
			attrBase:    attrBase{Name: cp.AddUtf8(AttrRuntimeVisibleAnnotations)},
			Annotations: []*Annotation{deprecated, retention, nested},
		},
		&AnnotationsAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrRuntimeInvisibleAnnotations)},
		},
		&ParameterAnnotationsAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrRuntimeVisibleParameterAnnotations)},
			Parameters: [][]*Annotation{
				{retention},
				nil,
				{deprecated, retention},
			},
		},
		&AnnotationDefaultAttribute{
			attrBase: attrBase{Name: cp.AddUtf8(AttrAnnotationDefault)},
			Value: &ArrayElementValue{Values: []ElementValue{
				&ConstElementValue{Tag: ValueDouble, Value: cp.AddDouble(2.5)},
			}},
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
		rewritten, _ := w.WriteAttribute(parsed)
		if !bytes.Equal(rewritten, written) {
			t.Errorf("%s: rewrite differs\n got % X\nwant % X", name, rewritten, written)
		}
	}
}

func TestTypeAnnotationsRoundTrip(t *testing.T) {

	cp := NewConstantPool()
	marker := Annotation{Type: cp.AddUtf8("LNonNull;")}

	attr := &TypeAnnotationsAttribute{
		attrBase: attrBase{Name: cp.AddUtf8(AttrRuntimeVisibleTypeAnnotations)},
		Annotations: []*TypeAnnotation{
			{
				TargetType: TargetClassTypeParameter,
				TargetInfo: &TypeParameterTarget{Index: 1},
				Annotation: marker,
			},
			{
				TargetType: TargetSupertype,
				TargetInfo: &SupertypeTarget{SupertypeIndex: 0xFFFF},
				Annotation: marker,
			},
			{
				TargetType: TargetMethodTypeParameterBound,
				TargetInfo: &TypeParameterBoundTarget{ParameterIndex: 0, BoundIndex: 1},
				Annotation: marker,
			},
			{
				TargetType: TargetField,
				TargetInfo: &EmptyTarget{},
				TargetPath: []TypePathElement{{Kind: 3, ArgumentIndex: 0}},
				Annotation: marker,
			},
			{
				TargetType: TargetMethodFormalParameter,
				TargetInfo: &FormalParameterTarget{Index: 2},
				Annotation: marker,
			},
			{
				TargetType: TargetThrows,
				TargetInfo: &ThrowsTarget{ThrowsTypeIndex: 1},
				Annotation: marker,
			},
			{
				TargetType: TargetLocalVariable,
				TargetInfo: &LocalVarTarget{Table: []LocalVarTargetEntry{
					{StartPC: 0, Length: 10, Slot: 1},
					{StartPC: 16, Length: 4, Slot: 1},
				}},
				Annotation: marker,
			},
			{
				TargetType: TargetExceptionParameter,
				TargetInfo: &CatchTarget{ExceptionTableIndex: 0},
				Annotation: marker,
			},
			{
				TargetType: TargetNew,
				TargetInfo: &OffsetTarget{Offset: 42},
				Annotation: marker,
			},
			{
				TargetType: TargetCast,
				TargetInfo: &TypeArgumentTarget{Offset: 7, ArgumentIndex: 1},
				TargetPath: []TypePathElement{{Kind: 0, ArgumentIndex: 0}, {Kind: 2, ArgumentIndex: 0}},
				Annotation: marker,
			},
		},
	}

	w := NewAttributeWriter()
	r := NewAttributeReader(cp)

	written, err := w.WriteAttribute(attr)
	if err != nil {
		t.Fatalf("WriteAttribute failed, reason: %v", err)
	}
	if got := uint32(len(written) - 6); got != attr.InternalLength() {
		t.Errorf("InternalLength %d disagrees with emitted %d", attr.InternalLength(), got)
	}
	parsed, err := r.ReadAttribute(written)
	if err != nil {
		t.Fatalf("ReadAttribute failed, reason: %v", err)
	}
	if !reflect.DeepEqual(parsed, attr) {
		t.Errorf("parsed model differs\n got %#v\nwant %#v", parsed, attr)
	}
}

func TestReadElementValueBadTag(t *testing.T) {

	cp := NewConstantPool()
	r := &annotationReader{c: &cursor{data: []byte{'x', 0, 1}}, cp: cp}
	if _, err := r.readElementValue(); err == nil {
		t.Error("expected an error for an unknown element value tag")
	}
}
