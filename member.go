// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

// Field is one field_info structure.
type Field struct {
	AccessFlags uint16
	Name        *CpUtf8
	Descriptor  *CpUtf8
	Attributes  []Attribute
}

// Method is one method_info structure.
type Method struct {
	AccessFlags uint16
	Name        *CpUtf8
	Descriptor  *CpUtf8
	Attributes  []Attribute
}

// memberParts is the shape field_info and method_info share.
type memberParts struct {
	flags uint16
	name  *CpUtf8
	desc  *CpUtf8
	attrs []Attribute
}

func (cf *ClassFile) readMember(c *cursor, r *AttributeReader) (memberParts, error) {
	var m memberParts
	var err error
	if m.flags, err = c.u16(); err != nil {
		return m, err
	}
	nameIndex, err := c.u16()
	if err != nil {
		return m, err
	}
	descIndex, err := c.u16()
	if err != nil {
		return m, err
	}
	if m.name, err = cf.Pool.Utf8(nameIndex); err != nil {
		return m, err
	}
	if m.desc, err = cf.Pool.Utf8(descIndex); err != nil {
		return m, err
	}
	m.attrs, err = r.readAttributes(c)
	return m, err
}
