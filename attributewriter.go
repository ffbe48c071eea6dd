// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

// AttributeWriter serializes attributes to their on-disk form. The zero
// value is not usable, NewAttributeWriter wires the fallback instruction
// writer; callers may swap in their own before writing.
type AttributeWriter struct {

	// Instructions produces the raw code[] bytes of a Code attribute.
	Instructions InstructionWriter
}

// NewAttributeWriter returns a writer backed by the fallback instruction
// writer.
func NewAttributeWriter() *AttributeWriter {
	return &AttributeWriter{Instructions: FallbackInstructionWriter()}
}

// WriteAttribute produces the complete on-disk representation of an
// attribute: name_index (u16), attribute_length (u32), then the body. The
// writer identifies the attribute by its exact name string; unrecognized
// models carried by DefaultAttribute echo their raw body. Content is not
// validated, corrupt input yields corrupt output.
func (w *AttributeWriter) WriteAttribute(attr Attribute) ([]byte, error) {
	buf := newByteWriter()

	if def, ok := attr.(*DefaultAttribute); ok {
		buf.putU16(def.Name.Index())
		buf.putU32(uint32(len(def.Data)))
		buf.putBytes(def.Data)
		return buf.bytes(), nil
	}

	buf.putU16(attr.AttrName().Index())
	buf.putU32(attr.InternalLength())

	var name string
	if attr.AttrName() != nil {
		name = attr.AttrName().Value
	}

	switch name {
	case AttrBootstrapMethods:
		bm := attr.(*BootstrapMethodsAttribute)
		buf.putU16(uint16(len(bm.Methods)))
		for _, m := range bm.Methods {
			buf.putU16(m.Handle.Index())
			buf.putU16(uint16(len(m.Args)))
			for _, arg := range m.Args {
				buf.putU16(indexOrZero(arg))
			}
		}
	case AttrCode:
		if err := w.writeCode(buf, attr.(*CodeAttribute)); err != nil {
			return nil, err
		}
	case AttrConstantValue:
		buf.putU16(indexOrZero(attr.(*ConstantValueAttribute).Value))
	case AttrEnclosingMethod:
		em := attr.(*EnclosingMethodAttribute)
		buf.putU16(em.Class.Index())
		buf.putU16(em.Method.Index())
	case AttrExceptions:
		ex := attr.(*ExceptionsAttribute)
		buf.putU16(uint16(len(ex.Exceptions)))
		for _, e := range ex.Exceptions {
			buf.putU16(e.Index())
		}
	case AttrInnerClasses:
		ic := attr.(*InnerClassesAttribute)
		buf.putU16(uint16(len(ic.Classes)))
		for _, c := range ic.Classes {
			buf.putU16(c.Inner.Index())
			buf.putU16(c.Outer.Index())
			buf.putU16(c.Name.Index())
			buf.putU16(c.AccessFlags)
		}
	case AttrLineNumberTable:
		lnt := attr.(*LineNumberTableAttribute)
		buf.putU16(uint16(len(lnt.Lines)))
		for _, l := range lnt.Lines {
			buf.putU16(l.StartPC)
			buf.putU16(l.Line)
		}
	case AttrLocalVariableTable:
		lvt := attr.(*LocalVariableTableAttribute)
		buf.putU16(uint16(len(lvt.Variables)))
		for _, v := range lvt.Variables {
			buf.putU16(v.StartPC)
			buf.putU16(v.Length)
			buf.putU16(v.Name.Index())
			buf.putU16(v.Descriptor.Index())
			buf.putU16(v.Slot)
		}
	case AttrLocalVariableTypeTable:
		lvtt := attr.(*LocalVariableTypeTableAttribute)
		buf.putU16(uint16(len(lvtt.Variables)))
		for _, v := range lvtt.Variables {
			buf.putU16(v.StartPC)
			buf.putU16(v.Length)
			buf.putU16(v.Name.Index())
			buf.putU16(v.Signature.Index())
			buf.putU16(v.Slot)
		}
	case AttrModule:
		writeModule(buf, attr.(*ModuleAttribute))
	case AttrModulePackages:
		mp := attr.(*ModulePackagesAttribute)
		buf.putU16(uint16(len(mp.Packages)))
		for _, p := range mp.Packages {
			buf.putU16(p.Index())
		}
	case AttrModuleTarget:
		buf.putU16(attr.(*ModuleTargetAttribute).Platform.Index())
	case AttrModuleHashes:
		mh := attr.(*ModuleHashesAttribute)
		buf.putU16(mh.Algorithm.Index())
		buf.putU16(uint16(len(mh.Hashes)))
		for _, h := range mh.Hashes {
			buf.putU16(h.Module.Index())
			buf.putU16(uint16(len(h.Hash)))
			buf.putBytes(h.Hash)
		}
	case AttrNestHost:
		buf.putU16(attr.(*NestHostAttribute).Host.Index())
	case AttrNestMembers:
		nm := attr.(*NestMembersAttribute)
		buf.putU16(uint16(len(nm.Classes)))
		for _, c := range nm.Classes {
			buf.putU16(c.Index())
		}
	case AttrPermittedSubclasses:
		ps := attr.(*PermittedClassesAttribute)
		buf.putU16(uint16(len(ps.Classes)))
		for _, c := range ps.Classes {
			buf.putU16(c.Index())
		}
	case AttrRecord:
		if err := w.writeRecord(buf, attr.(*RecordAttribute)); err != nil {
			return nil, err
		}
	case AttrRuntimeVisibleAnnotations, AttrRuntimeInvisibleAnnotations:
		newAnnotationWriter(buf).writeAnnotations(attr.(*AnnotationsAttribute).Annotations)
	case AttrRuntimeVisibleParameterAnnotations, AttrRuntimeInvisibleParameterAnnotations:
		newAnnotationWriter(buf).writeParameterAnnotations(attr.(*ParameterAnnotationsAttribute).Parameters)
	case AttrRuntimeVisibleTypeAnnotations, AttrRuntimeInvisibleTypeAnnotations:
		newAnnotationWriter(buf).writeTypeAnnotations(attr.(*TypeAnnotationsAttribute).Annotations)
	case AttrAnnotationDefault:
		newAnnotationWriter(buf).writeAnnotationDefault(attr.(*AnnotationDefaultAttribute).Value)
	case AttrSignature:
		buf.putU16(attr.(*SignatureAttribute).Signature.Index())
	case AttrSourceDebugExtension:
		// The payload carries no count of its own, attribute_length in the
		// header is its size.
		buf.putBytes(attr.(*SourceDebugExtensionAttribute).Debug)
	case AttrSourceFile:
		buf.putU16(attr.(*SourceFileAttribute).SourceFile.Index())
	case AttrStackMapTable:
		writeStackMapTable(buf, attr.(*StackMapTableAttribute).Frames)
	default:
		// Standard attributes without a modeled body (Deprecated,
		// Synthetic, ...) emit the header alone.
	}

	return buf.bytes(), nil
}

func (w *AttributeWriter) writeCode(buf *byteWriter, code *CodeAttribute) error {
	buf.putU16(code.MaxStack)
	buf.putU16(code.MaxLocals)

	raw, err := w.Instructions.WriteCode(code.Instructions)
	if err != nil {
		return err
	}
	buf.putU32(uint32(len(raw)))
	buf.putBytes(raw)

	buf.putU16(uint16(len(code.Exceptions)))
	for _, h := range code.Exceptions {
		buf.putU16(h.StartPC)
		buf.putU16(h.EndPC)
		buf.putU16(h.HandlerPC)
		buf.putU16(h.CatchType.Index())
	}

	buf.putU16(uint16(len(code.Attributes)))
	for _, sub := range code.Attributes {
		b, err := w.WriteAttribute(sub)
		if err != nil {
			return err
		}
		buf.putBytes(b)
	}
	return nil
}

func (w *AttributeWriter) writeRecord(buf *byteWriter, rec *RecordAttribute) error {
	buf.putU16(uint16(len(rec.Components)))
	for _, c := range rec.Components {
		buf.putU16(c.Name.Index())
		buf.putU16(c.Descriptor.Index())
		buf.putU16(uint16(len(c.Attributes)))
		for _, sub := range c.Attributes {
			b, err := w.WriteAttribute(sub)
			if err != nil {
				return err
			}
			buf.putBytes(b)
		}
	}
	return nil
}

func writeModule(buf *byteWriter, m *ModuleAttribute) {
	buf.putU16(m.Module.Index())
	buf.putU16(m.Flags)
	buf.putU16(m.Version.Index())

	buf.putU16(uint16(len(m.Requires)))
	for _, r := range m.Requires {
		buf.putU16(r.Module.Index())
		buf.putU16(r.Flags)
		buf.putU16(r.Version.Index())
	}

	buf.putU16(uint16(len(m.Exports)))
	for _, e := range m.Exports {
		buf.putU16(e.Package.Index())
		buf.putU16(e.Flags)
		buf.putU16(uint16(len(e.To)))
		for _, t := range e.To {
			buf.putU16(t.Index())
		}
	}

	buf.putU16(uint16(len(m.Opens)))
	for _, o := range m.Opens {
		buf.putU16(o.Package.Index())
		buf.putU16(o.Flags)
		buf.putU16(uint16(len(o.To)))
		for _, t := range o.To {
			buf.putU16(t.Index())
		}
	}

	buf.putU16(uint16(len(m.Uses)))
	for _, u := range m.Uses {
		buf.putU16(u.Index())
	}

	buf.putU16(uint16(len(m.Provides)))
	for _, p := range m.Provides {
		buf.putU16(p.Service.Index())
		buf.putU16(uint16(len(p.With)))
		for _, c := range p.With {
			buf.putU16(c.Index())
		}
	}
}

// writeStackMapTable emits the frame count then each frame.
func writeStackMapTable(buf *byteWriter, frames []StackMapFrame) {
	buf.putU16(uint16(len(frames)))
	for _, f := range frames {
		writeFrame(buf, f)
	}
}

// writeFrame emits one frame: the discriminator byte, then the payload its
// variant defines. The discriminator is taken as-is from the model.
func writeFrame(buf *byteWriter, f StackMapFrame) {
	buf.putU8(f.FrameType())
	switch v := f.(type) {
	case *SameFrame:
		// The tag alone carries the offset delta.
	case *SameLocalsOneStackItemFrame:
		writeVerificationType(buf, v.Stack)
	case *SameLocalsOneStackItemExtendedFrame:
		buf.putU16(v.OffsetDelta)
		writeVerificationType(buf, v.Stack)
	case *ChopFrame:
		buf.putU16(v.OffsetDelta)
	case *SameFrameExtended:
		buf.putU16(v.OffsetDelta)
	case *AppendFrame:
		buf.putU16(v.OffsetDelta)
		for _, l := range v.Locals {
			writeVerificationType(buf, l)
		}
	case *FullFrame:
		buf.putU16(v.OffsetDelta)
		buf.putU16(uint16(len(v.Locals)))
		for _, l := range v.Locals {
			writeVerificationType(buf, l)
		}
		buf.putU16(uint16(len(v.Stack)))
		for _, s := range v.Stack {
			writeVerificationType(buf, s)
		}
	}
}

// writeVerificationType emits the tag byte and, for ItemObject and
// ItemUninitialized, the 16-bit payload that follows it.
func writeVerificationType(buf *byteWriter, t VerificationType) {
	buf.putU8(t.Tag)
	switch t.Tag {
	case ItemObject:
		buf.putU16(t.ClassInfo.Index())
	case ItemUninitialized:
		buf.putU16(t.Offset)
	}
}
