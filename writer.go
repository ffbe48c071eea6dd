// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

// Bytes serializes the class model back to its on-disk form. Pool indices
// are taken from the entries themselves; the model is trusted, not
// validated.
func (cf *ClassFile) Bytes() ([]byte, error) {
	buf := newByteWriter()
	w := NewAttributeWriter()

	buf.putU32(cf.Magic)
	buf.putU16(cf.MinorVersion)
	buf.putU16(cf.MajorVersion)

	cf.Pool.write(buf)

	buf.putU16(cf.AccessFlags)
	buf.putU16(cf.ThisClass.Index())
	buf.putU16(cf.SuperClass.Index())

	buf.putU16(uint16(len(cf.Interfaces)))
	for _, iface := range cf.Interfaces {
		buf.putU16(iface.Index())
	}

	buf.putU16(uint16(len(cf.Fields)))
	for _, f := range cf.Fields {
		if err := writeMember(buf, w, f.AccessFlags, f.Name, f.Descriptor, f.Attributes); err != nil {
			return nil, err
		}
	}

	buf.putU16(uint16(len(cf.Methods)))
	for _, m := range cf.Methods {
		if err := writeMember(buf, w, m.AccessFlags, m.Name, m.Descriptor, m.Attributes); err != nil {
			return nil, err
		}
	}

	if err := writeAttributes(buf, w, cf.Attributes); err != nil {
		return nil, err
	}

	return buf.bytes(), nil
}

func writeMember(buf *byteWriter, w *AttributeWriter, flags uint16, name, desc *CpUtf8, attrs []Attribute) error {
	buf.putU16(flags)
	buf.putU16(name.Index())
	buf.putU16(desc.Index())
	return writeAttributes(buf, w, attrs)
}

func writeAttributes(buf *byteWriter, w *AttributeWriter, attrs []Attribute) error {
	buf.putU16(uint16(len(attrs)))
	for _, a := range attrs {
		b, err := w.WriteAttribute(a)
		if err != nil {
			return err
		}
		buf.putBytes(b)
	}
	return nil
}
