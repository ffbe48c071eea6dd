// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

// Attribute names defined by the JVM specification through JDK 21, plus the
// JDK-internal module attributes.
// https://docs.oracle.com/javase/specs/jvms/se21/html/jvms-4.html#jvms-4.7
const (
	AttrAnnotationDefault                    = "AnnotationDefault"
	AttrBootstrapMethods                     = "BootstrapMethods"
	AttrCharacterRangeTable                  = "CharacterRangeTable"
	AttrCode                                 = "Code"
	AttrCompilationID                        = "CompilationID"
	AttrConstantValue                        = "ConstantValue"
	AttrDeprecated                           = "Deprecated"
	AttrEnclosingMethod                      = "EnclosingMethod"
	AttrExceptions                           = "Exceptions"
	AttrInnerClasses                         = "InnerClasses"
	AttrLineNumberTable                      = "LineNumberTable"
	AttrLocalVariableTable                   = "LocalVariableTable"
	AttrLocalVariableTypeTable               = "LocalVariableTypeTable"
	AttrMethodParameters                     = "MethodParameters"
	AttrModule                               = "Module"
	AttrModuleHashes                         = "ModuleHashes"
	AttrModuleMainClass                      = "ModuleMainClass"
	AttrModulePackages                       = "ModulePackages"
	AttrModuleResolution                     = "ModuleResolution"
	AttrModuleTarget                         = "ModuleTarget"
	AttrNestHost                             = "NestHost"
	AttrNestMembers                          = "NestMembers"
	AttrPermittedSubclasses                  = "PermittedSubclasses"
	AttrRecord                               = "Record"
	AttrRuntimeInvisibleAnnotations          = "RuntimeInvisibleAnnotations"
	AttrRuntimeInvisibleParameterAnnotations = "RuntimeInvisibleParameterAnnotations"
	AttrRuntimeInvisibleTypeAnnotations      = "RuntimeInvisibleTypeAnnotations"
	AttrRuntimeVisibleAnnotations            = "RuntimeVisibleAnnotations"
	AttrRuntimeVisibleParameterAnnotations   = "RuntimeVisibleParameterAnnotations"
	AttrRuntimeVisibleTypeAnnotations        = "RuntimeVisibleTypeAnnotations"
	AttrSignature                            = "Signature"
	AttrSourceDebugExtension                 = "SourceDebugExtension"
	AttrSourceFile                           = "SourceFile"
	AttrSourceID                             = "SourceID"
	AttrStackMapTable                        = "StackMapTable"
	AttrSynthetic                            = "Synthetic"
)

// Attribute is a named, length-prefixed region attached to a class, field,
// method, Code attribute or record component. InternalLength is the size of
// the body alone, the 6-byte name_index/attribute_length header excluded.
type Attribute interface {
	AttrName() *CpUtf8
	InternalLength() uint32
}

// attrBase carries the Utf8 reference naming the attribute.
type attrBase struct {
	Name *CpUtf8
}

func (a attrBase) AttrName() *CpUtf8 { return a.Name }

// DefaultAttribute carries the verbatim body of an attribute the toolkit
// does not model. Keeping the raw bytes preserves unknown attributes across
// a read/write cycle.
type DefaultAttribute struct {
	attrBase
	Data []byte
}

func (a *DefaultAttribute) InternalLength() uint32 {
	return uint32(len(a.Data))
}

// ConstantValueAttribute holds the constant of a static final field.
type ConstantValueAttribute struct {
	attrBase
	Value CpEntry
}

func (a *ConstantValueAttribute) InternalLength() uint32 { return 2 }

// ExceptionHandler is one exception_table entry of a Code attribute.
// A nil CatchType catches anything, the form finally handlers take.
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType *CpClass
}

// CodeAttribute is the bytecode body of a method together with its nested
// attributes.
type CodeAttribute struct {
	attrBase
	MaxStack     uint16
	MaxLocals    uint16
	Instructions []Instruction
	Exceptions   []ExceptionHandler
	Attributes   []Attribute
}

func (a *CodeAttribute) InternalLength() uint32 {
	n := uint32(2 + 2 + 4)
	n += codeLength(a.Instructions)
	n += 2 + 8*uint32(len(a.Exceptions))
	n += 2
	for _, sub := range a.Attributes {
		n += 6 + sub.InternalLength()
	}
	return n
}

// EnclosingMethodAttribute names the method (or for a class declared at
// top level in an initializer, just the class) immediately enclosing a
// local or anonymous class.
type EnclosingMethodAttribute struct {
	attrBase
	Class  *CpClass
	Method *CpNameAndType
}

func (a *EnclosingMethodAttribute) InternalLength() uint32 { return 4 }

// ExceptionsAttribute lists the checked exceptions a method declares.
type ExceptionsAttribute struct {
	attrBase
	Exceptions []*CpClass
}

func (a *ExceptionsAttribute) InternalLength() uint32 {
	return 2 + 2*uint32(len(a.Exceptions))
}

// InnerClass is one classes table entry of an InnerClasses attribute.
// Outer and Name are absent for anonymous and local classes.
type InnerClass struct {
	Inner       *CpClass
	Outer       *CpClass
	Name        *CpUtf8
	AccessFlags uint16
}

// InnerClassesAttribute records every class or interface that is not a
// member of a package.
type InnerClassesAttribute struct {
	attrBase
	Classes []InnerClass
}

func (a *InnerClassesAttribute) InternalLength() uint32 {
	return 2 + 8*uint32(len(a.Classes))
}

// LineNumber maps a code offset to a source line.
type LineNumber struct {
	StartPC uint16
	Line    uint16
}

// LineNumberTableAttribute is debug information nested in Code.
type LineNumberTableAttribute struct {
	attrBase
	Lines []LineNumber
}

func (a *LineNumberTableAttribute) InternalLength() uint32 {
	return 2 + 4*uint32(len(a.Lines))
}

// LocalVariable is one entry of a LocalVariableTable.
type LocalVariable struct {
	StartPC    uint16
	Length     uint16
	Name       *CpUtf8
	Descriptor *CpUtf8
	Slot       uint16
}

// LocalVariableTableAttribute is debug information nested in Code.
type LocalVariableTableAttribute struct {
	attrBase
	Variables []LocalVariable
}

func (a *LocalVariableTableAttribute) InternalLength() uint32 {
	return 2 + 10*uint32(len(a.Variables))
}

// LocalVariableType is one entry of a LocalVariableTypeTable; it carries a
// generic signature instead of a descriptor.
type LocalVariableType struct {
	StartPC   uint16
	Length    uint16
	Name      *CpUtf8
	Signature *CpUtf8
	Slot      uint16
}

// LocalVariableTypeTableAttribute is debug information nested in Code.
type LocalVariableTypeTableAttribute struct {
	attrBase
	Variables []LocalVariableType
}

func (a *LocalVariableTypeTableAttribute) InternalLength() uint32 {
	return 2 + 10*uint32(len(a.Variables))
}

// ModuleRequire is one requires entry of a Module attribute.
type ModuleRequire struct {
	Module  *CpModule
	Flags   uint16
	Version *CpUtf8
}

// ModuleExport is one exports entry of a Module attribute.
type ModuleExport struct {
	Package *CpPackage
	Flags   uint16
	To      []*CpModule
}

// ModuleOpen is one opens entry of a Module attribute.
type ModuleOpen struct {
	Package *CpPackage
	Flags   uint16
	To      []*CpModule
}

// ModuleProvide is one provides entry of a Module attribute.
type ModuleProvide struct {
	Service *CpClass
	With    []*CpClass
}

// ModuleAttribute describes a module declaration.
type ModuleAttribute struct {
	attrBase
	Module   *CpModule
	Flags    uint16
	Version  *CpUtf8
	Requires []ModuleRequire
	Exports  []ModuleExport
	Opens    []ModuleOpen
	Uses     []*CpClass
	Provides []ModuleProvide
}

func (a *ModuleAttribute) InternalLength() uint32 {
	n := uint32(2 + 2 + 2)
	n += 2 + 6*uint32(len(a.Requires))
	n += 2
	for _, e := range a.Exports {
		n += 6 + 2*uint32(len(e.To))
	}
	n += 2
	for _, o := range a.Opens {
		n += 6 + 2*uint32(len(o.To))
	}
	n += 2 + 2*uint32(len(a.Uses))
	n += 2
	for _, p := range a.Provides {
		n += 4 + 2*uint32(len(p.With))
	}
	return n
}

// ModulePackagesAttribute lists every package of a module.
type ModulePackagesAttribute struct {
	attrBase
	Packages []*CpPackage
}

func (a *ModulePackagesAttribute) InternalLength() uint32 {
	return 2 + 2*uint32(len(a.Packages))
}

// ModuleTargetAttribute names the platform a JDK module was built for.
type ModuleTargetAttribute struct {
	attrBase
	Platform *CpUtf8
}

func (a *ModuleTargetAttribute) InternalLength() uint32 { return 2 }

// ModuleHash pairs a module name with its hash bytes.
type ModuleHash struct {
	Module *CpUtf8
	Hash   []byte
}

// ModuleHashesAttribute records hashes of the modules a JDK module depends
// on. Entry order is preserved, the table round-trips byte for byte.
type ModuleHashesAttribute struct {
	attrBase
	Algorithm *CpUtf8
	Hashes    []ModuleHash
}

func (a *ModuleHashesAttribute) InternalLength() uint32 {
	n := uint32(2 + 2)
	for _, h := range a.Hashes {
		n += 4 + uint32(len(h.Hash))
	}
	return n
}

// NestHostAttribute names the nest host of a class.
type NestHostAttribute struct {
	attrBase
	Host *CpClass
}

func (a *NestHostAttribute) InternalLength() uint32 { return 2 }

// NestMembersAttribute lists the members of the nest a class hosts.
type NestMembersAttribute struct {
	attrBase
	Classes []*CpClass
}

func (a *NestMembersAttribute) InternalLength() uint32 {
	return 2 + 2*uint32(len(a.Classes))
}

// PermittedClassesAttribute lists the classes permitted to extend a sealed
// class. Its attribute name is PermittedSubclasses.
type PermittedClassesAttribute struct {
	attrBase
	Classes []*CpClass
}

func (a *PermittedClassesAttribute) InternalLength() uint32 {
	return 2 + 2*uint32(len(a.Classes))
}

// RecordComponent is one component of a Record attribute, with its own
// nested attribute list.
type RecordComponent struct {
	Name       *CpUtf8
	Descriptor *CpUtf8
	Attributes []Attribute
}

// RecordAttribute describes the components of a record class.
type RecordAttribute struct {
	attrBase
	Components []RecordComponent
}

func (a *RecordAttribute) InternalLength() uint32 {
	n := uint32(2)
	for _, c := range a.Components {
		n += 6
		for _, sub := range c.Attributes {
			n += 6 + sub.InternalLength()
		}
	}
	return n
}

// SignatureAttribute holds a generic signature.
type SignatureAttribute struct {
	attrBase
	Signature *CpUtf8
}

func (a *SignatureAttribute) InternalLength() uint32 { return 2 }

// SourceDebugExtensionAttribute carries an opaque modified UTF-8 blob for
// debuggers. The payload has no count of its own, the attribute_length in
// the header is its size.
type SourceDebugExtensionAttribute struct {
	attrBase
	Debug []byte
}

func (a *SourceDebugExtensionAttribute) InternalLength() uint32 {
	return uint32(len(a.Debug))
}

// SourceFileAttribute names the source file a class was compiled from.
type SourceFileAttribute struct {
	attrBase
	SourceFile *CpUtf8
}

func (a *SourceFileAttribute) InternalLength() uint32 { return 2 }

// StackMapTableAttribute holds the verifier's delta-encoded frames, nested
// in Code.
type StackMapTableAttribute struct {
	attrBase
	Frames []StackMapFrame
}

func (a *StackMapTableAttribute) InternalLength() uint32 {
	n := uint32(2)
	for _, f := range a.Frames {
		n += frameLength(f)
	}
	return n
}

// BootstrapMethod is one entry of a BootstrapMethods attribute.
type BootstrapMethod struct {
	Handle *CpMethodHandle
	Args   []CpEntry
}

// BootstrapMethodsAttribute records the bootstrap method specifiers
// referenced by invokedynamic and dynamic constants.
type BootstrapMethodsAttribute struct {
	attrBase
	Methods []BootstrapMethod
}

func (a *BootstrapMethodsAttribute) InternalLength() uint32 {
	n := uint32(2)
	for _, m := range a.Methods {
		n += 4 + 2*uint32(len(m.Args))
	}
	return n
}

// AnnotationsAttribute holds RuntimeVisibleAnnotations or
// RuntimeInvisibleAnnotations; the attribute name tells them apart.
type AnnotationsAttribute struct {
	attrBase
	Annotations []*Annotation
}

func (a *AnnotationsAttribute) InternalLength() uint32 {
	n := uint32(2)
	for _, an := range a.Annotations {
		n += an.length()
	}
	return n
}

// ParameterAnnotationsAttribute holds the per-parameter annotation lists of
// RuntimeVisibleParameterAnnotations or RuntimeInvisibleParameterAnnotations.
type ParameterAnnotationsAttribute struct {
	attrBase
	Parameters [][]*Annotation
}

func (a *ParameterAnnotationsAttribute) InternalLength() uint32 {
	n := uint32(1)
	for _, p := range a.Parameters {
		n += 2
		for _, an := range p {
			n += an.length()
		}
	}
	return n
}

// TypeAnnotationsAttribute holds RuntimeVisibleTypeAnnotations or
// RuntimeInvisibleTypeAnnotations.
type TypeAnnotationsAttribute struct {
	attrBase
	Annotations []*TypeAnnotation
}

func (a *TypeAnnotationsAttribute) InternalLength() uint32 {
	n := uint32(2)
	for _, an := range a.Annotations {
		n += an.length()
	}
	return n
}

// AnnotationDefaultAttribute holds the default value of an annotation
// interface element.
type AnnotationDefaultAttribute struct {
	attrBase
	Value ElementValue
}

func (a *AnnotationDefaultAttribute) InternalLength() uint32 {
	return a.Value.length()
}

// DeprecatedAttribute marks its owner deprecated. The attribute has no body.
type DeprecatedAttribute struct {
	attrBase
}

func (a *DeprecatedAttribute) InternalLength() uint32 { return 0 }

// SyntheticAttribute marks its owner compiler-generated. The attribute has
// no body.
type SyntheticAttribute struct {
	attrBase
}

func (a *SyntheticAttribute) InternalLength() uint32 { return 0 }
