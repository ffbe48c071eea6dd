// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

import "fmt"

// Element value tags.
// https://docs.oracle.com/javase/specs/jvms/se21/html/jvms-4.html#jvms-4.7.16.1
const (
	ValueByte       = 'B'
	ValueChar       = 'C'
	ValueDouble     = 'D'
	ValueFloat      = 'F'
	ValueInt        = 'I'
	ValueLong       = 'J'
	ValueShort      = 'S'
	ValueBoolean    = 'Z'
	ValueString     = 's'
	ValueEnum       = 'e'
	ValueClass      = 'c'
	ValueAnnotation = '@'
	ValueArray      = '['
)

// Type annotation target types.
// https://docs.oracle.com/javase/specs/jvms/se21/html/jvms-4.html#jvms-4.7.20
const (
	TargetClassTypeParameter       = 0x00
	TargetMethodTypeParameter      = 0x01
	TargetSupertype                = 0x10
	TargetClassTypeParameterBound  = 0x11
	TargetMethodTypeParameterBound = 0x12
	TargetField                    = 0x13
	TargetMethodReturn             = 0x14
	TargetMethodReceiver           = 0x15
	TargetMethodFormalParameter    = 0x16
	TargetThrows                   = 0x17
	TargetLocalVariable            = 0x40
	TargetResourceVariable         = 0x41
	TargetExceptionParameter       = 0x42
	TargetInstanceof               = 0x43
	TargetNew                      = 0x44
	TargetConstructorReference     = 0x45
	TargetMethodReference          = 0x46
	TargetCast                     = 0x47
	TargetConstructorArgument      = 0x48
	TargetMethodArgument           = 0x49
	TargetConstructorRefArgument   = 0x4A
	TargetMethodRefArgument        = 0x4B
)

// Annotation is one annotation structure: the field descriptor of the
// annotation interface and its element-value pairs.
type Annotation struct {
	Type   *CpUtf8
	Values []ElementValuePair
}

// ElementValuePair names one element of an annotation.
type ElementValuePair struct {
	Name  *CpUtf8
	Value ElementValue
}

// length returns the serialized size of the annotation structure.
func (a *Annotation) length() uint32 {
	n := uint32(2 + 2)
	for _, p := range a.Values {
		n += 2 + p.Value.length()
	}
	return n
}

// ElementValue is the sum type over annotation element values, keyed by the
// single-character tag the wire format uses.
type ElementValue interface {
	ValueTag() uint8
	length() uint32
}

// ConstElementValue covers the primitive and string tags
// (B C D F I J S Z s); the payload is one pool reference.
type ConstElementValue struct {
	Tag   uint8
	Value CpEntry
}

func (v *ConstElementValue) ValueTag() uint8 { return v.Tag }
func (v *ConstElementValue) length() uint32  { return 3 }

// EnumElementValue is an enum constant (tag e).
type EnumElementValue struct {
	TypeName  *CpUtf8
	ConstName *CpUtf8
}

func (v *EnumElementValue) ValueTag() uint8 { return ValueEnum }
func (v *EnumElementValue) length() uint32  { return 5 }

// ClassElementValue is a class literal (tag c); the reference is to the
// return descriptor, not a Class entry.
type ClassElementValue struct {
	ClassInfo *CpUtf8
}

func (v *ClassElementValue) ValueTag() uint8 { return ValueClass }
func (v *ClassElementValue) length() uint32  { return 3 }

// AnnotationElementValue is a nested annotation (tag @).
type AnnotationElementValue struct {
	Value *Annotation
}

func (v *AnnotationElementValue) ValueTag() uint8 { return ValueAnnotation }
func (v *AnnotationElementValue) length() uint32  { return 1 + v.Value.length() }

// ArrayElementValue is an array of element values (tag [).
type ArrayElementValue struct {
	Values []ElementValue
}

func (v *ArrayElementValue) ValueTag() uint8 { return ValueArray }
func (v *ArrayElementValue) length() uint32 {
	n := uint32(3)
	for _, e := range v.Values {
		n += e.length()
	}
	return n
}

// TargetInfo is the sum type over type annotation targets.
type TargetInfo interface {
	targetLength() uint32
}

// TypeParameterTarget addresses a class or method type parameter
// (0x00, 0x01).
type TypeParameterTarget struct {
	Index uint8
}

func (t *TypeParameterTarget) targetLength() uint32 { return 1 }

// SupertypeTarget addresses an extends or implements clause (0x10).
type SupertypeTarget struct {
	SupertypeIndex uint16
}

func (t *SupertypeTarget) targetLength() uint32 { return 2 }

// TypeParameterBoundTarget addresses a bound of a type parameter
// (0x11, 0x12).
type TypeParameterBoundTarget struct {
	ParameterIndex uint8
	BoundIndex     uint8
}

func (t *TypeParameterBoundTarget) targetLength() uint32 { return 2 }

// EmptyTarget addresses a field declaration, a method return type or the
// receiver (0x13..0x15). It carries no payload.
type EmptyTarget struct{}

func (t *EmptyTarget) targetLength() uint32 { return 0 }

// FormalParameterTarget addresses a formal parameter type (0x16).
type FormalParameterTarget struct {
	Index uint8
}

func (t *FormalParameterTarget) targetLength() uint32 { return 1 }

// ThrowsTarget addresses one type of a throws clause (0x17).
type ThrowsTarget struct {
	ThrowsTypeIndex uint16
}

func (t *ThrowsTarget) targetLength() uint32 { return 2 }

// LocalVarTargetEntry is one live range of an annotated local.
type LocalVarTargetEntry struct {
	StartPC uint16
	Length  uint16
	Slot    uint16
}

// LocalVarTarget addresses a local or resource variable type (0x40, 0x41).
type LocalVarTarget struct {
	Table []LocalVarTargetEntry
}

func (t *LocalVarTarget) targetLength() uint32 {
	return 2 + 6*uint32(len(t.Table))
}

// CatchTarget addresses an exception parameter type (0x42).
type CatchTarget struct {
	ExceptionTableIndex uint16
}

func (t *CatchTarget) targetLength() uint32 { return 2 }

// OffsetTarget addresses an instanceof, new or method reference expression
// by bytecode offset (0x43..0x46).
type OffsetTarget struct {
	Offset uint16
}

func (t *OffsetTarget) targetLength() uint32 { return 2 }

// TypeArgumentTarget addresses a type argument of a cast or invocation
// (0x47..0x4B).
type TypeArgumentTarget struct {
	Offset        uint16
	ArgumentIndex uint8
}

func (t *TypeArgumentTarget) targetLength() uint32 { return 3 }

// TypePathElement is one step into a compound type.
type TypePathElement struct {
	Kind          uint8
	ArgumentIndex uint8
}

// TypeAnnotation is one type_annotation structure.
type TypeAnnotation struct {
	TargetType uint8
	TargetInfo TargetInfo
	TargetPath []TypePathElement
	Annotation Annotation
}

// length returns the serialized size of the type annotation structure.
func (a *TypeAnnotation) length() uint32 {
	return 1 + a.TargetInfo.targetLength() + 1 + 2*uint32(len(a.TargetPath)) +
		a.Annotation.length()
}

// annotationWriter emits annotation trees into the buffer it is bound to.
// The attribute writer constructs one per attribute body.
type annotationWriter struct {
	buf *byteWriter
}

func newAnnotationWriter(buf *byteWriter) *annotationWriter {
	return &annotationWriter{buf: buf}
}

func (w *annotationWriter) writeAnnotations(annos []*Annotation) {
	w.buf.putU16(uint16(len(annos)))
	for _, a := range annos {
		w.writeAnnotation(a)
	}
}

func (w *annotationWriter) writeParameterAnnotations(params [][]*Annotation) {
	w.buf.putU8(uint8(len(params)))
	for _, p := range params {
		w.buf.putU16(uint16(len(p)))
		for _, a := range p {
			w.writeAnnotation(a)
		}
	}
}

func (w *annotationWriter) writeTypeAnnotations(annos []*TypeAnnotation) {
	w.buf.putU16(uint16(len(annos)))
	for _, a := range annos {
		w.writeTypeAnnotation(a)
	}
}

func (w *annotationWriter) writeAnnotationDefault(v ElementValue) {
	w.writeElementValue(v)
}

func (w *annotationWriter) writeAnnotation(a *Annotation) {
	w.buf.putU16(a.Type.Index())
	w.buf.putU16(uint16(len(a.Values)))
	for _, p := range a.Values {
		w.buf.putU16(p.Name.Index())
		w.writeElementValue(p.Value)
	}
}

func (w *annotationWriter) writeElementValue(v ElementValue) {
	w.buf.putU8(v.ValueTag())
	switch e := v.(type) {
	case *ConstElementValue:
		w.buf.putU16(indexOrZero(e.Value))
	case *EnumElementValue:
		w.buf.putU16(e.TypeName.Index())
		w.buf.putU16(e.ConstName.Index())
	case *ClassElementValue:
		w.buf.putU16(e.ClassInfo.Index())
	case *AnnotationElementValue:
		w.writeAnnotation(e.Value)
	case *ArrayElementValue:
		w.buf.putU16(uint16(len(e.Values)))
		for _, ev := range e.Values {
			w.writeElementValue(ev)
		}
	}
}

func (w *annotationWriter) writeTypeAnnotation(a *TypeAnnotation) {
	w.buf.putU8(a.TargetType)
	switch t := a.TargetInfo.(type) {
	case *TypeParameterTarget:
		w.buf.putU8(t.Index)
	case *SupertypeTarget:
		w.buf.putU16(t.SupertypeIndex)
	case *TypeParameterBoundTarget:
		w.buf.putU8(t.ParameterIndex)
		w.buf.putU8(t.BoundIndex)
	case *EmptyTarget:
		// No payload.
	case *FormalParameterTarget:
		w.buf.putU8(t.Index)
	case *ThrowsTarget:
		w.buf.putU16(t.ThrowsTypeIndex)
	case *LocalVarTarget:
		w.buf.putU16(uint16(len(t.Table)))
		for _, e := range t.Table {
			w.buf.putU16(e.StartPC)
			w.buf.putU16(e.Length)
			w.buf.putU16(e.Slot)
		}
	case *CatchTarget:
		w.buf.putU16(t.ExceptionTableIndex)
	case *OffsetTarget:
		w.buf.putU16(t.Offset)
	case *TypeArgumentTarget:
		w.buf.putU16(t.Offset)
		w.buf.putU8(t.ArgumentIndex)
	}
	w.buf.putU8(uint8(len(a.TargetPath)))
	for _, p := range a.TargetPath {
		w.buf.putU8(p.Kind)
		w.buf.putU8(p.ArgumentIndex)
	}
	w.writeAnnotation(&a.Annotation)
}

// annotationReader decodes annotation trees against a pool.
type annotationReader struct {
	c  *cursor
	cp *ConstantPool
}

func (r *annotationReader) readAnnotations() ([]*Annotation, error) {
	count, err := r.c.u16()
	if err != nil {
		return nil, err
	}
	var annos []*Annotation
	for i := uint16(0); i < count; i++ {
		a, err := r.readAnnotation()
		if err != nil {
			return nil, err
		}
		annos = append(annos, a)
	}
	return annos, nil
}

func (r *annotationReader) readParameterAnnotations() ([][]*Annotation, error) {
	count, err := r.c.u8()
	if err != nil {
		return nil, err
	}
	var params [][]*Annotation
	if count > 0 {
		params = make([][]*Annotation, count)
	}
	for i := range params {
		annos, err := r.readAnnotations()
		if err != nil {
			return nil, err
		}
		params[i] = annos
	}
	return params, nil
}

func (r *annotationReader) readTypeAnnotations() ([]*TypeAnnotation, error) {
	count, err := r.c.u16()
	if err != nil {
		return nil, err
	}
	var annos []*TypeAnnotation
	for i := uint16(0); i < count; i++ {
		a, err := r.readTypeAnnotation()
		if err != nil {
			return nil, err
		}
		annos = append(annos, a)
	}
	return annos, nil
}

func (r *annotationReader) readAnnotation() (*Annotation, error) {
	typeIndex, err := r.c.u16()
	if err != nil {
		return nil, err
	}
	typ, err := r.cp.Utf8(typeIndex)
	if err != nil {
		return nil, err
	}
	count, err := r.c.u16()
	if err != nil {
		return nil, err
	}
	a := &Annotation{Type: typ}
	for i := uint16(0); i < count; i++ {
		nameIndex, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		name, err := r.cp.Utf8(nameIndex)
		if err != nil {
			return nil, err
		}
		v, err := r.readElementValue()
		if err != nil {
			return nil, err
		}
		a.Values = append(a.Values, ElementValuePair{Name: name, Value: v})
	}
	return a, nil
}

func (r *annotationReader) readElementValue() (ElementValue, error) {
	tag, err := r.c.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case ValueByte, ValueChar, ValueDouble, ValueFloat, ValueInt, ValueLong,
		ValueShort, ValueBoolean, ValueString:
		index, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		value, err := r.cp.entry(index)
		if err != nil {
			return nil, err
		}
		return &ConstElementValue{Tag: tag, Value: value}, nil
	case ValueEnum:
		typeIndex, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		constIndex, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		typeName, err := r.cp.Utf8(typeIndex)
		if err != nil {
			return nil, err
		}
		constName, err := r.cp.Utf8(constIndex)
		if err != nil {
			return nil, err
		}
		return &EnumElementValue{TypeName: typeName, ConstName: constName}, nil
	case ValueClass:
		index, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		info, err := r.cp.Utf8(index)
		if err != nil {
			return nil, err
		}
		return &ClassElementValue{ClassInfo: info}, nil
	case ValueAnnotation:
		a, err := r.readAnnotation()
		if err != nil {
			return nil, err
		}
		return &AnnotationElementValue{Value: a}, nil
	case ValueArray:
		count, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		arr := &ArrayElementValue{}
		for i := uint16(0); i < count; i++ {
			v, err := r.readElementValue()
			if err != nil {
				return nil, err
			}
			arr.Values = append(arr.Values, v)
		}
		return arr, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBadElementValueTag, tag)
}

func (r *annotationReader) readTypeAnnotation() (*TypeAnnotation, error) {
	targetType, err := r.c.u8()
	if err != nil {
		return nil, err
	}
	info, err := r.readTargetInfo(targetType)
	if err != nil {
		return nil, err
	}
	pathLen, err := r.c.u8()
	if err != nil {
		return nil, err
	}
	var path []TypePathElement
	for i := uint8(0); i < pathLen; i++ {
		kind, err := r.c.u8()
		if err != nil {
			return nil, err
		}
		arg, err := r.c.u8()
		if err != nil {
			return nil, err
		}
		path = append(path, TypePathElement{Kind: kind, ArgumentIndex: arg})
	}
	a, err := r.readAnnotation()
	if err != nil {
		return nil, err
	}
	return &TypeAnnotation{
		TargetType: targetType,
		TargetInfo: info,
		TargetPath: path,
		Annotation: *a,
	}, nil
}

func (r *annotationReader) readTargetInfo(targetType uint8) (TargetInfo, error) {
	switch targetType {
	case TargetClassTypeParameter, TargetMethodTypeParameter:
		index, err := r.c.u8()
		if err != nil {
			return nil, err
		}
		return &TypeParameterTarget{Index: index}, nil
	case TargetSupertype:
		index, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		return &SupertypeTarget{SupertypeIndex: index}, nil
	case TargetClassTypeParameterBound, TargetMethodTypeParameterBound:
		param, err := r.c.u8()
		if err != nil {
			return nil, err
		}
		bound, err := r.c.u8()
		if err != nil {
			return nil, err
		}
		return &TypeParameterBoundTarget{ParameterIndex: param, BoundIndex: bound}, nil
	case TargetField, TargetMethodReturn, TargetMethodReceiver:
		return &EmptyTarget{}, nil
	case TargetMethodFormalParameter:
		index, err := r.c.u8()
		if err != nil {
			return nil, err
		}
		return &FormalParameterTarget{Index: index}, nil
	case TargetThrows:
		index, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		return &ThrowsTarget{ThrowsTypeIndex: index}, nil
	case TargetLocalVariable, TargetResourceVariable:
		count, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		t := &LocalVarTarget{}
		for i := uint16(0); i < count; i++ {
			start, err := r.c.u16()
			if err != nil {
				return nil, err
			}
			length, err := r.c.u16()
			if err != nil {
				return nil, err
			}
			slot, err := r.c.u16()
			if err != nil {
				return nil, err
			}
			t.Table = append(t.Table, LocalVarTargetEntry{
				StartPC: start, Length: length, Slot: slot,
			})
		}
		return t, nil
	case TargetExceptionParameter:
		index, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		return &CatchTarget{ExceptionTableIndex: index}, nil
	case TargetInstanceof, TargetNew, TargetConstructorReference, TargetMethodReference:
		offset, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		return &OffsetTarget{Offset: offset}, nil
	case TargetCast, TargetConstructorArgument, TargetMethodArgument,
		TargetConstructorRefArgument, TargetMethodRefArgument:
		offset, err := r.c.u16()
		if err != nil {
			return nil, err
		}
		arg, err := r.c.u8()
		if err != nil {
			return nil, err
		}
		return &TypeArgumentTarget{Offset: offset, ArgumentIndex: arg}, nil
	}
	return nil, fmt.Errorf("%w: 0x%02X", ErrBadTargetType, targetType)
}
