// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

// Verification type tags.
// https://docs.oracle.com/javase/specs/jvms/se21/html/jvms-4.html#jvms-4.7.4
const (
	ItemTop               = 0
	ItemInteger           = 1
	ItemFloat             = 2
	ItemDouble            = 3
	ItemLong              = 4
	ItemNull              = 5
	ItemUninitializedThis = 6
	ItemObject            = 7
	ItemUninitialized     = 8
)

// Frame type discriminator boundaries and fixed values.
const (
	FrameSameMax                           = 63
	FrameSameLocalsOneStackItemMin         = 64
	FrameSameLocalsOneStackItemMax         = 127
	FrameSameLocalsOneStackItemExtendedTag = 247
	FrameChopMin                           = 248
	FrameChopMax                           = 250
	FrameSameExtendedTag                   = 251
	FrameAppendMin                         = 252
	FrameAppendMax                         = 254
	FrameFullTag                           = 255
)

// VerificationType is one entry of a stack map frame's locals or stack.
// ClassInfo is set for ItemObject and Offset for ItemUninitialized; every
// other tag stands alone.
type VerificationType struct {
	Tag       uint8
	ClassInfo *CpClass
	Offset    uint16
}

// length returns the serialized size of the verification type.
func (t VerificationType) length() uint32 {
	if t.Tag == ItemObject || t.Tag == ItemUninitialized {
		return 3
	}
	return 1
}

// StackMapFrame is the sum type over the frame variants of a StackMapTable.
// The discriminator is not normalized on write, the writer trusts that it is
// consistent with the variant.
type StackMapFrame interface {
	FrameType() uint8
}

// SameFrame covers frame types 0..63, the offset delta is the frame type
// itself.
type SameFrame struct {
	Type uint8
}

func (f *SameFrame) FrameType() uint8 { return f.Type }

// SameLocalsOneStackItemFrame covers frame types 64..127, the offset delta is
// the frame type minus 64.
type SameLocalsOneStackItemFrame struct {
	Type  uint8
	Stack VerificationType
}

func (f *SameLocalsOneStackItemFrame) FrameType() uint8 { return f.Type }

// SameLocalsOneStackItemExtendedFrame is frame type 247.
type SameLocalsOneStackItemExtendedFrame struct {
	OffsetDelta uint16
	Stack       VerificationType
}

func (f *SameLocalsOneStackItemExtendedFrame) FrameType() uint8 {
	return FrameSameLocalsOneStackItemExtendedTag
}

// ChopFrame covers frame types 248..250, chopping 251 minus the frame type
// locals.
type ChopFrame struct {
	Type        uint8
	OffsetDelta uint16
}

func (f *ChopFrame) FrameType() uint8 { return f.Type }

// SameFrameExtended is frame type 251.
type SameFrameExtended struct {
	OffsetDelta uint16
}

func (f *SameFrameExtended) FrameType() uint8 { return FrameSameExtendedTag }

// AppendFrame covers frame types 252..254, appending frame type minus 251
// locals.
type AppendFrame struct {
	Type        uint8
	OffsetDelta uint16
	Locals      []VerificationType
}

func (f *AppendFrame) FrameType() uint8 { return f.Type }

// FullFrame is frame type 255.
type FullFrame struct {
	OffsetDelta uint16
	Locals      []VerificationType
	Stack       []VerificationType
}

func (f *FullFrame) FrameType() uint8 { return FrameFullTag }

// frameLength returns the serialized size of a frame including its
// discriminator byte.
func frameLength(f StackMapFrame) uint32 {
	switch v := f.(type) {
	case *SameFrame:
		return 1
	case *SameLocalsOneStackItemFrame:
		return 1 + v.Stack.length()
	case *SameLocalsOneStackItemExtendedFrame:
		return 3 + v.Stack.length()
	case *ChopFrame:
		return 3
	case *SameFrameExtended:
		return 3
	case *AppendFrame:
		n := uint32(3)
		for _, l := range v.Locals {
			n += l.length()
		}
		return n
	case *FullFrame:
		n := uint32(7)
		for _, l := range v.Locals {
			n += l.length()
		}
		for _, s := range v.Stack {
			n += s.length()
		}
		return n
	}
	return 0
}
