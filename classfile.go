// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/sirupsen/logrus"
)

// Class file major versions.
const (
	Java5  = 49
	Java6  = 50
	Java7  = 51
	Java8  = 52
	Java9  = 53
	Java11 = 55
	Java17 = 61
	Java21 = 65
)

// Class access and property flags.
// https://docs.oracle.com/javase/specs/jvms/se21/html/jvms-4.html#jvms-4.1
const (
	AccPublic     = 0x0001
	AccPrivate    = 0x0002
	AccProtected  = 0x0004
	AccStatic     = 0x0008
	AccFinal      = 0x0010
	AccSuper      = 0x0020
	AccVolatile   = 0x0040
	AccTransient  = 0x0080
	AccNative     = 0x0100
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccStrict     = 0x0800
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
	AccModule     = 0x8000
)

// A ClassFile represents an open class file.
type ClassFile struct {
	Magic        uint32
	MinorVersion uint16
	MajorVersion uint16
	Pool         *ConstantPool
	AccessFlags  uint16
	ThisClass    *CpClass
	SuperClass   *CpClass
	Interfaces   []*CpClass
	Fields       []*Field
	Methods      []*Method
	Attributes   []Attribute

	raw    []byte
	data   mmap.MMap
	f      *os.File
	opts   *Options
	logger *logrus.Logger
}

// Options for parsing.
type Options struct {

	// Parse only the header and constant pool, by default (false).
	Fast bool

	// A custom logger.
	Logger *logrus.Logger
}

// New instantiates a class file instance with options given a file name.
func New(name string, opts *Options) (*ClassFile, error) {

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	// Memory map the file instead of using read/write.
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	cf := newClassFile(data, opts)
	cf.data = data
	cf.f = f
	return cf, nil
}

// NewBytes instantiates a class file instance with options given a memory
// buffer.
func NewBytes(data []byte, opts *Options) (*ClassFile, error) {
	return newClassFile(data, opts), nil
}

func newClassFile(data []byte, opts *Options) *ClassFile {
	cf := ClassFile{raw: data}
	if opts != nil {
		cf.opts = opts
	} else {
		cf.opts = &Options{}
	}

	if cf.opts.Logger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.ErrorLevel)
		cf.logger = logger
	} else {
		cf.logger = cf.opts.Logger
	}
	return &cf
}

// Close closes the ClassFile.
func (cf *ClassFile) Close() error {
	if cf.data != nil {
		_ = cf.data.Unmap()
	}

	if cf.f != nil {
		return cf.f.Close()
	}
	return nil
}

// Parse decodes the class file structure.
func (cf *ClassFile) Parse() error {

	// Check for the smallest class file possible.
	if len(cf.raw) < TinyClassSize {
		return ErrInvalidClassSize
	}

	c := &cursor{data: cf.raw}

	var err error
	if cf.Magic, err = c.u32(); err != nil {
		return err
	}
	if cf.Magic != Magic {
		return ErrBadMagic
	}
	if cf.MinorVersion, err = c.u16(); err != nil {
		return err
	}
	if cf.MajorVersion, err = c.u16(); err != nil {
		return err
	}

	if cf.Pool, err = readConstantPool(c); err != nil {
		return err
	}

	// In fast mode, stop after the constant pool.
	if cf.opts.Fast {
		return nil
	}

	if cf.AccessFlags, err = c.u16(); err != nil {
		return err
	}
	thisIndex, err := c.u16()
	if err != nil {
		return err
	}
	if cf.ThisClass, err = cf.Pool.Class(thisIndex); err != nil {
		return err
	}
	superIndex, err := c.u16()
	if err != nil {
		return err
	}
	// super_class 0 is only legal for java/lang/Object and module-info.
	if cf.SuperClass, err = cf.Pool.OptClass(superIndex); err != nil {
		return err
	}

	ifCount, err := c.u16()
	if err != nil {
		return err
	}
	for i := uint16(0); i < ifCount; i++ {
		index, err := c.u16()
		if err != nil {
			return err
		}
		iface, err := cf.Pool.Class(index)
		if err != nil {
			return err
		}
		cf.Interfaces = append(cf.Interfaces, iface)
	}

	r := NewAttributeReader(cf.Pool)

	fieldCount, err := c.u16()
	if err != nil {
		return err
	}
	for i := uint16(0); i < fieldCount; i++ {
		m, err := cf.readMember(c, r)
		if err != nil {
			return err
		}
		cf.Fields = append(cf.Fields, &Field{
			AccessFlags: m.flags, Name: m.name, Descriptor: m.desc,
			Attributes: m.attrs,
		})
	}

	methodCount, err := c.u16()
	if err != nil {
		return err
	}
	for i := uint16(0); i < methodCount; i++ {
		m, err := cf.readMember(c, r)
		if err != nil {
			return err
		}
		cf.Methods = append(cf.Methods, &Method{
			AccessFlags: m.flags, Name: m.name, Descriptor: m.desc,
			Attributes: m.attrs,
		})
	}

	if cf.Attributes, err = r.readAttributes(c); err != nil {
		return err
	}

	if c.remaining() > 0 {
		cf.logger.Warnf("%d trailing bytes after class structure", c.remaining())
	}
	return nil
}
