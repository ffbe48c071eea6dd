// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

import (
	"fmt"
	"math"
)

// Constant pool tags.
// https://docs.oracle.com/javase/specs/jvms/se21/html/jvms-4.html#jvms-4.4
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldRef           = 9
	TagMethodRef          = 10
	TagInterfaceMethodRef = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

// Method handle reference kinds.
const (
	RefGetField         = 1
	RefGetStatic        = 2
	RefPutField         = 3
	RefPutStatic        = 4
	RefInvokeVirtual    = 5
	RefInvokeStatic     = 6
	RefInvokeSpecial    = 7
	RefNewInvokeSpecial = 8
	RefInvokeInterface  = 9
)

// CpEntry is a single constant pool entry. Every entry knows the 1-based
// index it occupies; symbolic references in the model are nullable pointers
// to entries, and a nil pointer resolves to index 0 ("no entry").
type CpEntry interface {
	Tag() uint8
	Index() uint16
}

// cpInfo carries the slot an entry occupies in its pool.
type cpInfo struct {
	index uint16
}

// CpUtf8 is a CONSTANT_Utf8_info entry.
type CpUtf8 struct {
	cpInfo
	Value string
}

func (c *CpUtf8) Tag() uint8 { return TagUtf8 }
func (c *CpUtf8) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpInt is a CONSTANT_Integer_info entry.
type CpInt struct {
	cpInfo
	Value int32
}

func (c *CpInt) Tag() uint8 { return TagInteger }
func (c *CpInt) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpFloat is a CONSTANT_Float_info entry.
type CpFloat struct {
	cpInfo
	Value float32
}

func (c *CpFloat) Tag() uint8 { return TagFloat }
func (c *CpFloat) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpLong is a CONSTANT_Long_info entry. It occupies two pool slots.
type CpLong struct {
	cpInfo
	Value int64
}

func (c *CpLong) Tag() uint8 { return TagLong }
func (c *CpLong) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpDouble is a CONSTANT_Double_info entry. It occupies two pool slots.
type CpDouble struct {
	cpInfo
	Value float64
}

func (c *CpDouble) Tag() uint8 { return TagDouble }
func (c *CpDouble) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpClass is a CONSTANT_Class_info entry.
type CpClass struct {
	cpInfo
	Name *CpUtf8
}

func (c *CpClass) Tag() uint8 { return TagClass }
func (c *CpClass) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpString is a CONSTANT_String_info entry.
type CpString struct {
	cpInfo
	Value *CpUtf8
}

func (c *CpString) Tag() uint8 { return TagString }
func (c *CpString) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpFieldRef is a CONSTANT_Fieldref_info entry.
type CpFieldRef struct {
	cpInfo
	Class       *CpClass
	NameAndType *CpNameAndType
}

func (c *CpFieldRef) Tag() uint8 { return TagFieldRef }
func (c *CpFieldRef) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpMethodRef is a CONSTANT_Methodref_info entry.
type CpMethodRef struct {
	cpInfo
	Class       *CpClass
	NameAndType *CpNameAndType
}

func (c *CpMethodRef) Tag() uint8 { return TagMethodRef }
func (c *CpMethodRef) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpInterfaceMethodRef is a CONSTANT_InterfaceMethodref_info entry.
type CpInterfaceMethodRef struct {
	cpInfo
	Class       *CpClass
	NameAndType *CpNameAndType
}

func (c *CpInterfaceMethodRef) Tag() uint8 { return TagInterfaceMethodRef }
func (c *CpInterfaceMethodRef) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpNameAndType is a CONSTANT_NameAndType_info entry.
type CpNameAndType struct {
	cpInfo
	Name       *CpUtf8
	Descriptor *CpUtf8
}

func (c *CpNameAndType) Tag() uint8 { return TagNameAndType }
func (c *CpNameAndType) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpMethodHandle is a CONSTANT_MethodHandle_info entry.
type CpMethodHandle struct {
	cpInfo
	Kind      uint8
	Reference CpEntry
}

func (c *CpMethodHandle) Tag() uint8 { return TagMethodHandle }
func (c *CpMethodHandle) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpMethodType is a CONSTANT_MethodType_info entry.
type CpMethodType struct {
	cpInfo
	Descriptor *CpUtf8
}

func (c *CpMethodType) Tag() uint8 { return TagMethodType }
func (c *CpMethodType) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpDynamic is a CONSTANT_Dynamic_info entry.
type CpDynamic struct {
	cpInfo
	BootstrapIndex uint16
	NameAndType    *CpNameAndType
}

func (c *CpDynamic) Tag() uint8 { return TagDynamic }
func (c *CpDynamic) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpInvokeDynamic is a CONSTANT_InvokeDynamic_info entry.
type CpInvokeDynamic struct {
	cpInfo
	BootstrapIndex uint16
	NameAndType    *CpNameAndType
}

func (c *CpInvokeDynamic) Tag() uint8 { return TagInvokeDynamic }
func (c *CpInvokeDynamic) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpModule is a CONSTANT_Module_info entry.
type CpModule struct {
	cpInfo
	Name *CpUtf8
}

func (c *CpModule) Tag() uint8 { return TagModule }
func (c *CpModule) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// CpPackage is a CONSTANT_Package_info entry.
type CpPackage struct {
	cpInfo
	Name *CpUtf8
}

func (c *CpPackage) Tag() uint8 { return TagPackage }
func (c *CpPackage) Index() uint16 {
	if c == nil {
		return 0
	}
	return c.index
}

// indexOrZero resolves an optional pool reference to its 16-bit index.
// A nil reference yields 0, the JVM convention for "no entry".
func indexOrZero(e CpEntry) uint16 {
	if e == nil {
		return 0
	}
	return e.Index()
}

// ConstantPool is the 1-based entry table of a class file. Slot 0 is unused
// and Long/Double entries leave a nil hole in the slot after them.
type ConstantPool struct {
	entries []CpEntry
	lookup  map[string]CpEntry
}

// NewConstantPool returns an empty pool ready for building.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{
		entries: make([]CpEntry, 1),
		lookup:  make(map[string]CpEntry),
	}
}

// Count returns the constant_pool_count value: the length of the slot table,
// slot 0 and the hole after each Long or Double included.
func (cp *ConstantPool) Count() uint16 {
	return uint16(len(cp.entries))
}

// Entry returns the entry at the given slot, or nil for slot 0, a hole or an
// out of range index.
func (cp *ConstantPool) Entry(index uint16) CpEntry {
	if index == 0 || int(index) >= len(cp.entries) {
		return nil
	}
	return cp.entries[index]
}

// Entries returns the occupied entries in slot order.
func (cp *ConstantPool) Entries() []CpEntry {
	var out []CpEntry
	for _, e := range cp.entries[1:] {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (cp *ConstantPool) put(e CpEntry, info *cpInfo, wide bool) {
	info.index = uint16(len(cp.entries))
	cp.entries = append(cp.entries, e)
	if wide {
		cp.entries = append(cp.entries, nil)
	}
}

// AddUtf8 interns a Utf8 entry.
func (cp *ConstantPool) AddUtf8(value string) *CpUtf8 {
	key := "utf8:" + value
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpUtf8)
	}
	e := &CpUtf8{Value: value}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// AddInteger interns an Integer entry.
func (cp *ConstantPool) AddInteger(value int32) *CpInt {
	key := fmt.Sprintf("int:%d", value)
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpInt)
	}
	e := &CpInt{Value: value}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// AddFloat interns a Float entry.
func (cp *ConstantPool) AddFloat(value float32) *CpFloat {
	key := fmt.Sprintf("float:%x", value)
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpFloat)
	}
	e := &CpFloat{Value: value}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// AddLong interns a Long entry. The entry occupies two slots.
func (cp *ConstantPool) AddLong(value int64) *CpLong {
	key := fmt.Sprintf("long:%d", value)
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpLong)
	}
	e := &CpLong{Value: value}
	cp.put(e, &e.cpInfo, true)
	cp.lookup[key] = e
	return e
}

// AddDouble interns a Double entry. The entry occupies two slots.
func (cp *ConstantPool) AddDouble(value float64) *CpDouble {
	key := fmt.Sprintf("double:%x", value)
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpDouble)
	}
	e := &CpDouble{Value: value}
	cp.put(e, &e.cpInfo, true)
	cp.lookup[key] = e
	return e
}

// AddClass interns a Class entry for an internal name.
func (cp *ConstantPool) AddClass(name string) *CpClass {
	key := "class:" + name
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpClass)
	}
	n := cp.AddUtf8(name)
	e := &CpClass{Name: n}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// AddString interns a String entry.
func (cp *ConstantPool) AddString(value string) *CpString {
	key := "string:" + value
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpString)
	}
	v := cp.AddUtf8(value)
	e := &CpString{Value: v}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// AddNameAndType interns a NameAndType entry.
func (cp *ConstantPool) AddNameAndType(name, descriptor string) *CpNameAndType {
	key := "nameandtype:" + name + ":" + descriptor
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpNameAndType)
	}
	n := cp.AddUtf8(name)
	d := cp.AddUtf8(descriptor)
	e := &CpNameAndType{Name: n, Descriptor: d}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// AddFieldRef interns a Fieldref entry.
func (cp *ConstantPool) AddFieldRef(class, name, descriptor string) *CpFieldRef {
	key := "fieldref:" + class + "." + name + ":" + descriptor
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpFieldRef)
	}
	c := cp.AddClass(class)
	nat := cp.AddNameAndType(name, descriptor)
	e := &CpFieldRef{Class: c, NameAndType: nat}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// AddMethodRef interns a Methodref entry.
func (cp *ConstantPool) AddMethodRef(class, name, descriptor string) *CpMethodRef {
	key := "methodref:" + class + "." + name + ":" + descriptor
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpMethodRef)
	}
	c := cp.AddClass(class)
	nat := cp.AddNameAndType(name, descriptor)
	e := &CpMethodRef{Class: c, NameAndType: nat}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// AddInterfaceMethodRef interns an InterfaceMethodref entry.
func (cp *ConstantPool) AddInterfaceMethodRef(class, name, descriptor string) *CpInterfaceMethodRef {
	key := "interfacemethodref:" + class + "." + name + ":" + descriptor
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpInterfaceMethodRef)
	}
	c := cp.AddClass(class)
	nat := cp.AddNameAndType(name, descriptor)
	e := &CpInterfaceMethodRef{Class: c, NameAndType: nat}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// AddMethodHandle appends a MethodHandle entry. Handles are not interned,
// two handles to the same reference are legal duplicates.
func (cp *ConstantPool) AddMethodHandle(kind uint8, reference CpEntry) *CpMethodHandle {
	e := &CpMethodHandle{Kind: kind, Reference: reference}
	cp.put(e, &e.cpInfo, false)
	return e
}

// AddMethodType interns a MethodType entry.
func (cp *ConstantPool) AddMethodType(descriptor string) *CpMethodType {
	key := "methodtype:" + descriptor
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpMethodType)
	}
	d := cp.AddUtf8(descriptor)
	e := &CpMethodType{Descriptor: d}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// AddDynamic appends a Dynamic entry.
func (cp *ConstantPool) AddDynamic(bootstrapIndex uint16, name, descriptor string) *CpDynamic {
	nat := cp.AddNameAndType(name, descriptor)
	e := &CpDynamic{BootstrapIndex: bootstrapIndex, NameAndType: nat}
	cp.put(e, &e.cpInfo, false)
	return e
}

// AddInvokeDynamic appends an InvokeDynamic entry.
func (cp *ConstantPool) AddInvokeDynamic(bootstrapIndex uint16, name, descriptor string) *CpInvokeDynamic {
	nat := cp.AddNameAndType(name, descriptor)
	e := &CpInvokeDynamic{BootstrapIndex: bootstrapIndex, NameAndType: nat}
	cp.put(e, &e.cpInfo, false)
	return e
}

// AddModule interns a Module entry.
func (cp *ConstantPool) AddModule(name string) *CpModule {
	key := "module:" + name
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpModule)
	}
	n := cp.AddUtf8(name)
	e := &CpModule{Name: n}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// AddPackage interns a Package entry.
func (cp *ConstantPool) AddPackage(name string) *CpPackage {
	key := "package:" + name
	if e, ok := cp.lookup[key]; ok {
		return e.(*CpPackage)
	}
	n := cp.AddUtf8(name)
	e := &CpPackage{Name: n}
	cp.put(e, &e.cpInfo, false)
	cp.lookup[key] = e
	return e
}

// Utf8 resolves a required Utf8 entry.
func (cp *ConstantPool) Utf8(index uint16) (*CpUtf8, error) {
	e, ok := cp.Entry(index).(*CpUtf8)
	if !ok {
		return nil, fmt.Errorf("%w: %d is not a Utf8 entry", ErrBadPoolIndex, index)
	}
	return e, nil
}

// OptUtf8 resolves a Utf8 entry, index 0 meaning absent.
func (cp *ConstantPool) OptUtf8(index uint16) (*CpUtf8, error) {
	if index == 0 {
		return nil, nil
	}
	return cp.Utf8(index)
}

// Class resolves a required Class entry.
func (cp *ConstantPool) Class(index uint16) (*CpClass, error) {
	e, ok := cp.Entry(index).(*CpClass)
	if !ok {
		return nil, fmt.Errorf("%w: %d is not a Class entry", ErrBadPoolIndex, index)
	}
	return e, nil
}

// OptClass resolves a Class entry, index 0 meaning absent.
func (cp *ConstantPool) OptClass(index uint16) (*CpClass, error) {
	if index == 0 {
		return nil, nil
	}
	return cp.Class(index)
}

// NameAndType resolves a required NameAndType entry.
func (cp *ConstantPool) NameAndType(index uint16) (*CpNameAndType, error) {
	e, ok := cp.Entry(index).(*CpNameAndType)
	if !ok {
		return nil, fmt.Errorf("%w: %d is not a NameAndType entry", ErrBadPoolIndex, index)
	}
	return e, nil
}

// OptNameAndType resolves a NameAndType entry, index 0 meaning absent.
func (cp *ConstantPool) OptNameAndType(index uint16) (*CpNameAndType, error) {
	if index == 0 {
		return nil, nil
	}
	return cp.NameAndType(index)
}

// Module resolves a required Module entry.
func (cp *ConstantPool) Module(index uint16) (*CpModule, error) {
	e, ok := cp.Entry(index).(*CpModule)
	if !ok {
		return nil, fmt.Errorf("%w: %d is not a Module entry", ErrBadPoolIndex, index)
	}
	return e, nil
}

// Package resolves a required Package entry.
func (cp *ConstantPool) Package(index uint16) (*CpPackage, error) {
	e, ok := cp.Entry(index).(*CpPackage)
	if !ok {
		return nil, fmt.Errorf("%w: %d is not a Package entry", ErrBadPoolIndex, index)
	}
	return e, nil
}

// MethodHandle resolves a required MethodHandle entry.
func (cp *ConstantPool) MethodHandle(index uint16) (*CpMethodHandle, error) {
	e, ok := cp.Entry(index).(*CpMethodHandle)
	if !ok {
		return nil, fmt.Errorf("%w: %d is not a MethodHandle entry", ErrBadPoolIndex, index)
	}
	return e, nil
}

// entry resolves a required entry of any kind.
func (cp *ConstantPool) entry(index uint16) (CpEntry, error) {
	e := cp.Entry(index)
	if e == nil {
		return nil, fmt.Errorf("%w: %d", ErrBadPoolIndex, index)
	}
	return e, nil
}

// rawPoolRec is one undecoded pool record; links are resolved once the whole
// table has been read, references may point forward.
type rawPoolRec struct {
	tag    uint8
	a, b   uint16
	kind   uint8
	str    string
	idata  int32
	fdata  float32
	ldata  int64
	ddata  float64
}

// readConstantPool decodes the constant_pool table.
func readConstantPool(c *cursor) (*ConstantPool, error) {
	count, err := c.u16()
	if err != nil {
		return nil, err
	}

	raw := make([]*rawPoolRec, count)
	for i := uint16(1); i < count; i++ {
		tag, err := c.u8()
		if err != nil {
			return nil, err
		}
		rec := &rawPoolRec{tag: tag}
		raw[i] = rec
		switch tag {
		case TagUtf8:
			n, err := c.u16()
			if err != nil {
				return nil, err
			}
			b, err := c.bytes(int(n))
			if err != nil {
				return nil, err
			}
			rec.str, err = DecodeModifiedUTF8(b)
			if err != nil {
				return nil, err
			}
		case TagInteger:
			v, err := c.u32()
			if err != nil {
				return nil, err
			}
			rec.idata = int32(v)
		case TagFloat:
			v, err := c.u32()
			if err != nil {
				return nil, err
			}
			rec.fdata = math.Float32frombits(v)
		case TagLong:
			v, err := c.u64()
			if err != nil {
				return nil, err
			}
			rec.ldata = int64(v)
			i++
		case TagDouble:
			v, err := c.u64()
			if err != nil {
				return nil, err
			}
			rec.ddata = math.Float64frombits(v)
			i++
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			rec.a, err = c.u16()
			if err != nil {
				return nil, err
			}
		case TagFieldRef, TagMethodRef, TagInterfaceMethodRef, TagNameAndType,
			TagDynamic, TagInvokeDynamic:
			rec.a, err = c.u16()
			if err != nil {
				return nil, err
			}
			rec.b, err = c.u16()
			if err != nil {
				return nil, err
			}
		case TagMethodHandle:
			rec.kind, err = c.u8()
			if err != nil {
				return nil, err
			}
			rec.a, err = c.u16()
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %d at entry %d", ErrBadConstantTag, tag, i)
		}
	}

	cp := &ConstantPool{
		entries: make([]CpEntry, count),
		lookup:  make(map[string]CpEntry),
	}

	// First pass materializes every entry, second pass links references so
	// forward references resolve.
	for i := uint16(1); i < count; i++ {
		rec := raw[i]
		if rec == nil {
			continue
		}
		switch rec.tag {
		case TagUtf8:
			cp.entries[i] = &CpUtf8{cpInfo: cpInfo{index: i}, Value: rec.str}
		case TagInteger:
			cp.entries[i] = &CpInt{cpInfo: cpInfo{index: i}, Value: rec.idata}
		case TagFloat:
			cp.entries[i] = &CpFloat{cpInfo: cpInfo{index: i}, Value: rec.fdata}
		case TagLong:
			cp.entries[i] = &CpLong{cpInfo: cpInfo{index: i}, Value: rec.ldata}
		case TagDouble:
			cp.entries[i] = &CpDouble{cpInfo: cpInfo{index: i}, Value: rec.ddata}
		case TagClass:
			cp.entries[i] = &CpClass{cpInfo: cpInfo{index: i}}
		case TagString:
			cp.entries[i] = &CpString{cpInfo: cpInfo{index: i}}
		case TagFieldRef:
			cp.entries[i] = &CpFieldRef{cpInfo: cpInfo{index: i}}
		case TagMethodRef:
			cp.entries[i] = &CpMethodRef{cpInfo: cpInfo{index: i}}
		case TagInterfaceMethodRef:
			cp.entries[i] = &CpInterfaceMethodRef{cpInfo: cpInfo{index: i}}
		case TagNameAndType:
			cp.entries[i] = &CpNameAndType{cpInfo: cpInfo{index: i}}
		case TagMethodHandle:
			cp.entries[i] = &CpMethodHandle{cpInfo: cpInfo{index: i}, Kind: rec.kind}
		case TagMethodType:
			cp.entries[i] = &CpMethodType{cpInfo: cpInfo{index: i}}
		case TagDynamic:
			cp.entries[i] = &CpDynamic{cpInfo: cpInfo{index: i}, BootstrapIndex: rec.a}
		case TagInvokeDynamic:
			cp.entries[i] = &CpInvokeDynamic{cpInfo: cpInfo{index: i}, BootstrapIndex: rec.a}
		case TagModule:
			cp.entries[i] = &CpModule{cpInfo: cpInfo{index: i}}
		case TagPackage:
			cp.entries[i] = &CpPackage{cpInfo: cpInfo{index: i}}
		}
	}

	for i := uint16(1); i < count; i++ {
		rec := raw[i]
		if rec == nil {
			continue
		}
		var err error
		switch e := cp.entries[i].(type) {
		case *CpClass:
			e.Name, err = cp.Utf8(rec.a)
		case *CpString:
			e.Value, err = cp.Utf8(rec.a)
		case *CpFieldRef:
			if e.Class, err = cp.Class(rec.a); err == nil {
				e.NameAndType, err = cp.NameAndType(rec.b)
			}
		case *CpMethodRef:
			if e.Class, err = cp.Class(rec.a); err == nil {
				e.NameAndType, err = cp.NameAndType(rec.b)
			}
		case *CpInterfaceMethodRef:
			if e.Class, err = cp.Class(rec.a); err == nil {
				e.NameAndType, err = cp.NameAndType(rec.b)
			}
		case *CpNameAndType:
			if e.Name, err = cp.Utf8(rec.a); err == nil {
				e.Descriptor, err = cp.Utf8(rec.b)
			}
		case *CpMethodHandle:
			e.Reference, err = cp.entry(rec.a)
		case *CpMethodType:
			e.Descriptor, err = cp.Utf8(rec.a)
		case *CpDynamic:
			e.NameAndType, err = cp.NameAndType(rec.b)
		case *CpInvokeDynamic:
			e.NameAndType, err = cp.NameAndType(rec.b)
		case *CpModule:
			e.Name, err = cp.Utf8(rec.a)
		case *CpPackage:
			e.Name, err = cp.Utf8(rec.a)
		}
		if err != nil {
			return nil, err
		}
	}

	return cp, nil
}

// write emits the constant_pool table including its count.
func (cp *ConstantPool) write(buf *byteWriter) {
	buf.putU16(cp.Count())
	for _, e := range cp.entries[1:] {
		if e == nil {
			continue
		}
		buf.putU8(e.Tag())
		switch v := e.(type) {
		case *CpUtf8:
			b := EncodeModifiedUTF8(v.Value)
			buf.putU16(uint16(len(b)))
			buf.putBytes(b)
		case *CpInt:
			buf.putU32(uint32(v.Value))
		case *CpFloat:
			buf.putU32(math.Float32bits(v.Value))
		case *CpLong:
			buf.putU64(uint64(v.Value))
		case *CpDouble:
			buf.putU64(math.Float64bits(v.Value))
		case *CpClass:
			buf.putU16(v.Name.Index())
		case *CpString:
			buf.putU16(v.Value.Index())
		case *CpFieldRef:
			buf.putU16(v.Class.Index())
			buf.putU16(v.NameAndType.Index())
		case *CpMethodRef:
			buf.putU16(v.Class.Index())
			buf.putU16(v.NameAndType.Index())
		case *CpInterfaceMethodRef:
			buf.putU16(v.Class.Index())
			buf.putU16(v.NameAndType.Index())
		case *CpNameAndType:
			buf.putU16(v.Name.Index())
			buf.putU16(v.Descriptor.Index())
		case *CpMethodHandle:
			buf.putU8(v.Kind)
			buf.putU16(indexOrZero(v.Reference))
		case *CpMethodType:
			buf.putU16(v.Descriptor.Index())
		case *CpDynamic:
			buf.putU16(v.BootstrapIndex)
			buf.putU16(v.NameAndType.Index())
		case *CpInvokeDynamic:
			buf.putU16(v.BootstrapIndex)
			buf.putU16(v.NameAndType.Index())
		case *CpModule:
			buf.putU16(v.Name.Index())
		case *CpPackage:
			buf.putU16(v.Name.Index())
		}
	}
}
