// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

import "fmt"

// AttributeReader decodes attributes against the constant pool that owns
// their references. It is the inverse of AttributeWriter: any attribute the
// reader produces serializes back to the bytes it was read from.
type AttributeReader struct {
	cp *ConstantPool
}

// NewAttributeReader returns a reader resolving against cp.
func NewAttributeReader(cp *ConstantPool) *AttributeReader {
	return &AttributeReader{cp: cp}
}

// ReadAttribute decodes one attribute, header included, from the start of
// data.
func (r *AttributeReader) ReadAttribute(data []byte) (Attribute, error) {
	return r.readAttribute(&cursor{data: data})
}

// readAttributes decodes a u16-counted attribute list.
func (r *AttributeReader) readAttributes(c *cursor) ([]Attribute, error) {
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	var attrs []Attribute
	for i := uint16(0); i < count; i++ {
		a, err := r.readAttribute(c)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

func (r *AttributeReader) readAttribute(c *cursor) (Attribute, error) {
	nameIndex, err := c.u16()
	if err != nil {
		return nil, err
	}
	length, err := c.u32()
	if err != nil {
		return nil, err
	}
	name, err := r.cp.Utf8(nameIndex)
	if err != nil {
		return nil, err
	}
	body, err := c.bytes(int(length))
	if err != nil {
		return nil, fmt.Errorf("%w: %s declares %d bytes", ErrTruncatedAttribute,
			name.Value, length)
	}

	bc := &cursor{data: body}
	base := attrBase{Name: name}

	switch name.Value {
	case AttrBootstrapMethods:
		return r.readBootstrapMethods(bc, base)
	case AttrCode:
		return r.readCodeAttribute(bc, base)
	case AttrConstantValue:
		index, err := bc.u16()
		if err != nil {
			return nil, err
		}
		value, err := r.cp.entry(index)
		if err != nil {
			return nil, err
		}
		return &ConstantValueAttribute{attrBase: base, Value: value}, nil
	case AttrDeprecated:
		return &DeprecatedAttribute{attrBase: base}, nil
	case AttrEnclosingMethod:
		classIndex, err := bc.u16()
		if err != nil {
			return nil, err
		}
		methodIndex, err := bc.u16()
		if err != nil {
			return nil, err
		}
		class, err := r.cp.Class(classIndex)
		if err != nil {
			return nil, err
		}
		method, err := r.cp.OptNameAndType(methodIndex)
		if err != nil {
			return nil, err
		}
		return &EnclosingMethodAttribute{attrBase: base, Class: class, Method: method}, nil
	case AttrExceptions:
		classes, err := r.readClassList(bc)
		if err != nil {
			return nil, err
		}
		return &ExceptionsAttribute{attrBase: base, Exceptions: classes}, nil
	case AttrInnerClasses:
		return r.readInnerClasses(bc, base)
	case AttrLineNumberTable:
		count, err := bc.u16()
		if err != nil {
			return nil, err
		}
		a := &LineNumberTableAttribute{attrBase: base}
		for i := uint16(0); i < count; i++ {
			start, err := bc.u16()
			if err != nil {
				return nil, err
			}
			line, err := bc.u16()
			if err != nil {
				return nil, err
			}
			a.Lines = append(a.Lines, LineNumber{StartPC: start, Line: line})
		}
		return a, nil
	case AttrLocalVariableTable:
		count, err := bc.u16()
		if err != nil {
			return nil, err
		}
		a := &LocalVariableTableAttribute{attrBase: base}
		for i := uint16(0); i < count; i++ {
			v, err := r.readLocalVariable(bc)
			if err != nil {
				return nil, err
			}
			a.Variables = append(a.Variables, LocalVariable{
				StartPC: v.StartPC, Length: v.Length, Name: v.Name,
				Descriptor: v.Signature, Slot: v.Slot,
			})
		}
		return a, nil
	case AttrLocalVariableTypeTable:
		count, err := bc.u16()
		if err != nil {
			return nil, err
		}
		a := &LocalVariableTypeTableAttribute{attrBase: base}
		for i := uint16(0); i < count; i++ {
			v, err := r.readLocalVariable(bc)
			if err != nil {
				return nil, err
			}
			a.Variables = append(a.Variables, v)
		}
		return a, nil
	case AttrModule:
		return r.readModule(bc, base)
	case AttrModulePackages:
		count, err := bc.u16()
		if err != nil {
			return nil, err
		}
		a := &ModulePackagesAttribute{attrBase: base}
		for i := uint16(0); i < count; i++ {
			index, err := bc.u16()
			if err != nil {
				return nil, err
			}
			pkg, err := r.cp.Package(index)
			if err != nil {
				return nil, err
			}
			a.Packages = append(a.Packages, pkg)
		}
		return a, nil
	case AttrModuleTarget:
		index, err := bc.u16()
		if err != nil {
			return nil, err
		}
		platform, err := r.cp.Utf8(index)
		if err != nil {
			return nil, err
		}
		return &ModuleTargetAttribute{attrBase: base, Platform: platform}, nil
	case AttrModuleHashes:
		return r.readModuleHashes(bc, base)
	case AttrNestHost:
		index, err := bc.u16()
		if err != nil {
			return nil, err
		}
		host, err := r.cp.Class(index)
		if err != nil {
			return nil, err
		}
		return &NestHostAttribute{attrBase: base, Host: host}, nil
	case AttrNestMembers:
		classes, err := r.readClassList(bc)
		if err != nil {
			return nil, err
		}
		return &NestMembersAttribute{attrBase: base, Classes: classes}, nil
	case AttrPermittedSubclasses:
		classes, err := r.readClassList(bc)
		if err != nil {
			return nil, err
		}
		return &PermittedClassesAttribute{attrBase: base, Classes: classes}, nil
	case AttrRecord:
		count, err := bc.u16()
		if err != nil {
			return nil, err
		}
		a := &RecordAttribute{attrBase: base}
		for i := uint16(0); i < count; i++ {
			nameIndex, err := bc.u16()
			if err != nil {
				return nil, err
			}
			descIndex, err := bc.u16()
			if err != nil {
				return nil, err
			}
			cname, err := r.cp.Utf8(nameIndex)
			if err != nil {
				return nil, err
			}
			desc, err := r.cp.Utf8(descIndex)
			if err != nil {
				return nil, err
			}
			attrs, err := r.readAttributes(bc)
			if err != nil {
				return nil, err
			}
			a.Components = append(a.Components, RecordComponent{
				Name: cname, Descriptor: desc, Attributes: attrs,
			})
		}
		return a, nil
	case AttrRuntimeVisibleAnnotations, AttrRuntimeInvisibleAnnotations:
		ar := &annotationReader{c: bc, cp: r.cp}
		annos, err := ar.readAnnotations()
		if err != nil {
			return nil, err
		}
		return &AnnotationsAttribute{attrBase: base, Annotations: annos}, nil
	case AttrRuntimeVisibleParameterAnnotations, AttrRuntimeInvisibleParameterAnnotations:
		ar := &annotationReader{c: bc, cp: r.cp}
		params, err := ar.readParameterAnnotations()
		if err != nil {
			return nil, err
		}
		return &ParameterAnnotationsAttribute{attrBase: base, Parameters: params}, nil
	case AttrRuntimeVisibleTypeAnnotations, AttrRuntimeInvisibleTypeAnnotations:
		ar := &annotationReader{c: bc, cp: r.cp}
		annos, err := ar.readTypeAnnotations()
		if err != nil {
			return nil, err
		}
		return &TypeAnnotationsAttribute{attrBase: base, Annotations: annos}, nil
	case AttrAnnotationDefault:
		ar := &annotationReader{c: bc, cp: r.cp}
		value, err := ar.readElementValue()
		if err != nil {
			return nil, err
		}
		return &AnnotationDefaultAttribute{attrBase: base, Value: value}, nil
	case AttrSignature:
		index, err := bc.u16()
		if err != nil {
			return nil, err
		}
		sig, err := r.cp.Utf8(index)
		if err != nil {
			return nil, err
		}
		return &SignatureAttribute{attrBase: base, Signature: sig}, nil
	case AttrSourceDebugExtension:
		return &SourceDebugExtensionAttribute{attrBase: base, Debug: body}, nil
	case AttrSourceFile:
		index, err := bc.u16()
		if err != nil {
			return nil, err
		}
		sf, err := r.cp.Utf8(index)
		if err != nil {
			return nil, err
		}
		return &SourceFileAttribute{attrBase: base, SourceFile: sf}, nil
	case AttrStackMapTable:
		return r.readStackMapTable(bc, base)
	case AttrSynthetic:
		return &SyntheticAttribute{attrBase: base}, nil
	}

	// Unknown kinds keep their body verbatim.
	return &DefaultAttribute{attrBase: base, Data: body}, nil
}

func (r *AttributeReader) readClassList(c *cursor) ([]*CpClass, error) {
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	var classes []*CpClass
	for i := uint16(0); i < count; i++ {
		index, err := c.u16()
		if err != nil {
			return nil, err
		}
		class, err := r.cp.Class(index)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

// readLocalVariable reads the shared entry shape of LocalVariableTable and
// LocalVariableTypeTable.
func (r *AttributeReader) readLocalVariable(c *cursor) (LocalVariableType, error) {
	var v LocalVariableType
	var err error
	if v.StartPC, err = c.u16(); err != nil {
		return v, err
	}
	if v.Length, err = c.u16(); err != nil {
		return v, err
	}
	nameIndex, err := c.u16()
	if err != nil {
		return v, err
	}
	descIndex, err := c.u16()
	if err != nil {
		return v, err
	}
	if v.Slot, err = c.u16(); err != nil {
		return v, err
	}
	if v.Name, err = r.cp.Utf8(nameIndex); err != nil {
		return v, err
	}
	v.Signature, err = r.cp.Utf8(descIndex)
	return v, err
}

func (r *AttributeReader) readBootstrapMethods(c *cursor, base attrBase) (Attribute, error) {
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	a := &BootstrapMethodsAttribute{attrBase: base}
	for i := uint16(0); i < count; i++ {
		handleIndex, err := c.u16()
		if err != nil {
			return nil, err
		}
		handle, err := r.cp.MethodHandle(handleIndex)
		if err != nil {
			return nil, err
		}
		argc, err := c.u16()
		if err != nil {
			return nil, err
		}
		m := BootstrapMethod{Handle: handle}
		for j := uint16(0); j < argc; j++ {
			argIndex, err := c.u16()
			if err != nil {
				return nil, err
			}
			arg, err := r.cp.entry(argIndex)
			if err != nil {
				return nil, err
			}
			m.Args = append(m.Args, arg)
		}
		a.Methods = append(a.Methods, m)
	}
	return a, nil
}

func (r *AttributeReader) readCodeAttribute(c *cursor, base attrBase) (Attribute, error) {
	a := &CodeAttribute{attrBase: base}
	var err error
	if a.MaxStack, err = c.u16(); err != nil {
		return nil, err
	}
	if a.MaxLocals, err = c.u16(); err != nil {
		return nil, err
	}
	codeLen, err := c.u32()
	if err != nil {
		return nil, err
	}
	code, err := c.bytes(int(codeLen))
	if err != nil {
		return nil, err
	}
	if a.Instructions, err = readCode(code); err != nil {
		return nil, err
	}
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	for i := uint16(0); i < count; i++ {
		var h ExceptionHandler
		if h.StartPC, err = c.u16(); err != nil {
			return nil, err
		}
		if h.EndPC, err = c.u16(); err != nil {
			return nil, err
		}
		if h.HandlerPC, err = c.u16(); err != nil {
			return nil, err
		}
		catchIndex, err := c.u16()
		if err != nil {
			return nil, err
		}
		// catch_type 0 catches anything (finally handlers).
		if h.CatchType, err = r.cp.OptClass(catchIndex); err != nil {
			return nil, err
		}
		a.Exceptions = append(a.Exceptions, h)
	}
	if a.Attributes, err = r.readAttributes(c); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AttributeReader) readInnerClasses(c *cursor, base attrBase) (Attribute, error) {
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	a := &InnerClassesAttribute{attrBase: base}
	for i := uint16(0); i < count; i++ {
		innerIndex, err := c.u16()
		if err != nil {
			return nil, err
		}
		outerIndex, err := c.u16()
		if err != nil {
			return nil, err
		}
		nameIndex, err := c.u16()
		if err != nil {
			return nil, err
		}
		flags, err := c.u16()
		if err != nil {
			return nil, err
		}
		ic := InnerClass{AccessFlags: flags}
		if ic.Inner, err = r.cp.Class(innerIndex); err != nil {
			return nil, err
		}
		if ic.Outer, err = r.cp.OptClass(outerIndex); err != nil {
			return nil, err
		}
		if ic.Name, err = r.cp.OptUtf8(nameIndex); err != nil {
			return nil, err
		}
		a.Classes = append(a.Classes, ic)
	}
	return a, nil
}

func (r *AttributeReader) readModule(c *cursor, base attrBase) (Attribute, error) {
	a := &ModuleAttribute{attrBase: base}
	moduleIndex, err := c.u16()
	if err != nil {
		return nil, err
	}
	if a.Module, err = r.cp.Module(moduleIndex); err != nil {
		return nil, err
	}
	if a.Flags, err = c.u16(); err != nil {
		return nil, err
	}
	versionIndex, err := c.u16()
	if err != nil {
		return nil, err
	}
	if a.Version, err = r.cp.OptUtf8(versionIndex); err != nil {
		return nil, err
	}

	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	for i := uint16(0); i < count; i++ {
		var req ModuleRequire
		index, err := c.u16()
		if err != nil {
			return nil, err
		}
		if req.Module, err = r.cp.Module(index); err != nil {
			return nil, err
		}
		if req.Flags, err = c.u16(); err != nil {
			return nil, err
		}
		verIndex, err := c.u16()
		if err != nil {
			return nil, err
		}
		if req.Version, err = r.cp.OptUtf8(verIndex); err != nil {
			return nil, err
		}
		a.Requires = append(a.Requires, req)
	}

	if count, err = c.u16(); err != nil {
		return nil, err
	}
	for i := uint16(0); i < count; i++ {
		var exp ModuleExport
		index, err := c.u16()
		if err != nil {
			return nil, err
		}
		if exp.Package, err = r.cp.Package(index); err != nil {
			return nil, err
		}
		if exp.Flags, err = c.u16(); err != nil {
			return nil, err
		}
		if exp.To, err = r.readModuleList(c); err != nil {
			return nil, err
		}
		a.Exports = append(a.Exports, exp)
	}

	if count, err = c.u16(); err != nil {
		return nil, err
	}
	for i := uint16(0); i < count; i++ {
		var op ModuleOpen
		index, err := c.u16()
		if err != nil {
			return nil, err
		}
		if op.Package, err = r.cp.Package(index); err != nil {
			return nil, err
		}
		if op.Flags, err = c.u16(); err != nil {
			return nil, err
		}
		if op.To, err = r.readModuleList(c); err != nil {
			return nil, err
		}
		a.Opens = append(a.Opens, op)
	}

	if a.Uses, err = r.readClassList(c); err != nil {
		return nil, err
	}

	if count, err = c.u16(); err != nil {
		return nil, err
	}
	for i := uint16(0); i < count; i++ {
		var prov ModuleProvide
		index, err := c.u16()
		if err != nil {
			return nil, err
		}
		if prov.Service, err = r.cp.Class(index); err != nil {
			return nil, err
		}
		withCount, err := c.u16()
		if err != nil {
			return nil, err
		}
		for j := uint16(0); j < withCount; j++ {
			wIndex, err := c.u16()
			if err != nil {
				return nil, err
			}
			with, err := r.cp.Class(wIndex)
			if err != nil {
				return nil, err
			}
			prov.With = append(prov.With, with)
		}
		a.Provides = append(a.Provides, prov)
	}

	return a, nil
}

func (r *AttributeReader) readModuleList(c *cursor) ([]*CpModule, error) {
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	var modules []*CpModule
	for i := uint16(0); i < count; i++ {
		index, err := c.u16()
		if err != nil {
			return nil, err
		}
		m, err := r.cp.Module(index)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func (r *AttributeReader) readModuleHashes(c *cursor, base attrBase) (Attribute, error) {
	a := &ModuleHashesAttribute{attrBase: base}
	algIndex, err := c.u16()
	if err != nil {
		return nil, err
	}
	if a.Algorithm, err = r.cp.Utf8(algIndex); err != nil {
		return nil, err
	}
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	for i := uint16(0); i < count; i++ {
		index, err := c.u16()
		if err != nil {
			return nil, err
		}
		module, err := r.cp.Utf8(index)
		if err != nil {
			return nil, err
		}
		hashLen, err := c.u16()
		if err != nil {
			return nil, err
		}
		hash, err := c.bytes(int(hashLen))
		if err != nil {
			return nil, err
		}
		a.Hashes = append(a.Hashes, ModuleHash{Module: module, Hash: hash})
	}
	return a, nil
}

func (r *AttributeReader) readStackMapTable(c *cursor, base attrBase) (Attribute, error) {
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	a := &StackMapTableAttribute{attrBase: base}
	for i := uint16(0); i < count; i++ {
		f, err := r.readFrame(c)
		if err != nil {
			return nil, err
		}
		a.Frames = append(a.Frames, f)
	}
	return a, nil
}

func (r *AttributeReader) readFrame(c *cursor) (StackMapFrame, error) {
	tag, err := c.u8()
	if err != nil {
		return nil, err
	}
	switch {
	case tag <= FrameSameMax:
		return &SameFrame{Type: tag}, nil
	case tag <= FrameSameLocalsOneStackItemMax:
		stack, err := r.readVerificationType(c)
		if err != nil {
			return nil, err
		}
		return &SameLocalsOneStackItemFrame{Type: tag, Stack: stack}, nil
	case tag == FrameSameLocalsOneStackItemExtendedTag:
		delta, err := c.u16()
		if err != nil {
			return nil, err
		}
		stack, err := r.readVerificationType(c)
		if err != nil {
			return nil, err
		}
		return &SameLocalsOneStackItemExtendedFrame{OffsetDelta: delta, Stack: stack}, nil
	case tag >= FrameChopMin && tag <= FrameChopMax:
		delta, err := c.u16()
		if err != nil {
			return nil, err
		}
		return &ChopFrame{Type: tag, OffsetDelta: delta}, nil
	case tag == FrameSameExtendedTag:
		delta, err := c.u16()
		if err != nil {
			return nil, err
		}
		return &SameFrameExtended{OffsetDelta: delta}, nil
	case tag >= FrameAppendMin && tag <= FrameAppendMax:
		delta, err := c.u16()
		if err != nil {
			return nil, err
		}
		f := &AppendFrame{Type: tag, OffsetDelta: delta}
		for i := uint8(0); i < tag-FrameSameExtendedTag; i++ {
			l, err := r.readVerificationType(c)
			if err != nil {
				return nil, err
			}
			f.Locals = append(f.Locals, l)
		}
		return f, nil
	case tag == FrameFullTag:
		f := &FullFrame{}
		if f.OffsetDelta, err = c.u16(); err != nil {
			return nil, err
		}
		localCount, err := c.u16()
		if err != nil {
			return nil, err
		}
		for i := uint16(0); i < localCount; i++ {
			l, err := r.readVerificationType(c)
			if err != nil {
				return nil, err
			}
			f.Locals = append(f.Locals, l)
		}
		stackCount, err := c.u16()
		if err != nil {
			return nil, err
		}
		for i := uint16(0); i < stackCount; i++ {
			s, err := r.readVerificationType(c)
			if err != nil {
				return nil, err
			}
			f.Stack = append(f.Stack, s)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrBadFrameType, tag)
}

func (r *AttributeReader) readVerificationType(c *cursor) (VerificationType, error) {
	var t VerificationType
	tag, err := c.u8()
	if err != nil {
		return t, err
	}
	t.Tag = tag
	switch tag {
	case ItemTop, ItemInteger, ItemFloat, ItemDouble, ItemLong, ItemNull,
		ItemUninitializedThis:
	case ItemObject:
		index, err := c.u16()
		if err != nil {
			return t, err
		}
		if t.ClassInfo, err = r.cp.Class(index); err != nil {
			return t, err
		}
	case ItemUninitialized:
		if t.Offset, err = c.u16(); err != nil {
			return t, err
		}
	default:
		return t, fmt.Errorf("%w: %d", ErrBadVerificationTag, tag)
	}
	return t, nil
}
