// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	classfile "github.com/Nowilltolife/CAFED00D"
)

func dump(cmd *cobra.Command, args []string) {
	for _, arg := range args {
		if err := dumpClass(arg); err != nil {
			fmt.Fprintf(os.Stderr, "dump %s failed: %v\n", arg, err)
			os.Exit(1)
		}
	}
}

func dumpClass(filename string) error {
	opts := classfile.Options{}
	if verbose {
		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)
		opts.Logger = logger
	}

	cf, err := classfile.New(filename, &opts)
	if err != nil {
		return err
	}
	defer cf.Close()

	if err := cf.Parse(); err != nil {
		return err
	}

	fmt.Printf("%s:\n", filename)
	fmt.Printf("  version: %d.%d\n", cf.MajorVersion, cf.MinorVersion)
	fmt.Printf("  access:  0x%04X\n", cf.AccessFlags)
	fmt.Printf("  class:   %s\n", className(cf.ThisClass))
	fmt.Printf("  super:   %s\n", className(cf.SuperClass))
	for _, iface := range cf.Interfaces {
		fmt.Printf("  implements %s\n", className(iface))
	}

	if showPool {
		fmt.Printf("\nConstant pool (%d slots):\n", cf.Pool.Count())
		for _, e := range cf.Pool.Entries() {
			fmt.Printf("  #%-5d %s\n", e.Index(), entryString(e))
		}
	}

	if showFields {
		fmt.Printf("\nFields (%d):\n", len(cf.Fields))
		for _, f := range cf.Fields {
			fmt.Printf("  %s %s (0x%04X)\n", f.Name.Value, f.Descriptor.Value,
				f.AccessFlags)
			printAttrs(f.Attributes, "    ")
		}
	}

	if showMethods {
		fmt.Printf("\nMethods (%d):\n", len(cf.Methods))
		for _, m := range cf.Methods {
			fmt.Printf("  %s%s (0x%04X)\n", m.Name.Value, m.Descriptor.Value,
				m.AccessFlags)
			printAttrs(m.Attributes, "    ")
			if showCode {
				printCode(m)
			}
		}
	}

	if showAttrs {
		fmt.Printf("\nClass attributes (%d):\n", len(cf.Attributes))
		printAttrs(cf.Attributes, "  ")
	}

	return nil
}

func className(c *classfile.CpClass) string {
	if c == nil {
		return "<none>"
	}
	return c.Name.Value
}

func entryString(e classfile.CpEntry) string {
	switch v := e.(type) {
	case *classfile.CpUtf8:
		return fmt.Sprintf("Utf8                %q", v.Value)
	case *classfile.CpInt:
		return fmt.Sprintf("Integer             %d", v.Value)
	case *classfile.CpFloat:
		return fmt.Sprintf("Float               %g", v.Value)
	case *classfile.CpLong:
		return fmt.Sprintf("Long                %d", v.Value)
	case *classfile.CpDouble:
		return fmt.Sprintf("Double              %g", v.Value)
	case *classfile.CpClass:
		return fmt.Sprintf("Class               %s", v.Name.Value)
	case *classfile.CpString:
		return fmt.Sprintf("String              %q", v.Value.Value)
	case *classfile.CpFieldRef:
		return fmt.Sprintf("Fieldref            %s.%s:%s", v.Class.Name.Value,
			v.NameAndType.Name.Value, v.NameAndType.Descriptor.Value)
	case *classfile.CpMethodRef:
		return fmt.Sprintf("Methodref           %s.%s%s", v.Class.Name.Value,
			v.NameAndType.Name.Value, v.NameAndType.Descriptor.Value)
	case *classfile.CpInterfaceMethodRef:
		return fmt.Sprintf("InterfaceMethodref  %s.%s%s", v.Class.Name.Value,
			v.NameAndType.Name.Value, v.NameAndType.Descriptor.Value)
	case *classfile.CpNameAndType:
		return fmt.Sprintf("NameAndType         %s:%s", v.Name.Value,
			v.Descriptor.Value)
	case *classfile.CpMethodHandle:
		return fmt.Sprintf("MethodHandle        kind=%d #%d", v.Kind,
			v.Reference.Index())
	case *classfile.CpMethodType:
		return fmt.Sprintf("MethodType          %s", v.Descriptor.Value)
	case *classfile.CpDynamic:
		return fmt.Sprintf("Dynamic             bsm=%d %s:%s", v.BootstrapIndex,
			v.NameAndType.Name.Value, v.NameAndType.Descriptor.Value)
	case *classfile.CpInvokeDynamic:
		return fmt.Sprintf("InvokeDynamic       bsm=%d %s:%s", v.BootstrapIndex,
			v.NameAndType.Name.Value, v.NameAndType.Descriptor.Value)
	case *classfile.CpModule:
		return fmt.Sprintf("Module              %s", v.Name.Value)
	case *classfile.CpPackage:
		return fmt.Sprintf("Package             %s", v.Name.Value)
	}
	return fmt.Sprintf("tag %d", e.Tag())
}

func printAttrs(attrs []classfile.Attribute, indent string) {
	for _, a := range attrs {
		fmt.Printf("%s%s (%d bytes)\n", indent, a.AttrName().Value,
			a.InternalLength())
	}
}

func printCode(m *classfile.Method) {
	for _, a := range m.Attributes {
		code, ok := a.(*classfile.CodeAttribute)
		if !ok {
			continue
		}
		fmt.Printf("    max_stack=%d max_locals=%d\n", code.MaxStack,
			code.MaxLocals)
		pc := uint32(0)
		for _, insn := range code.Instructions {
			fmt.Printf("    %5d: %s", pc, insn.Name())
			if len(insn.Operands) > 0 {
				fmt.Printf(" %s", hexBytes(insn.Operands))
			}
			fmt.Println()
			pc += insn.Length()
		}
		for _, h := range code.Exceptions {
			catch := "any"
			if h.CatchType != nil {
				catch = h.CatchType.Name.Value
			}
			fmt.Printf("    try [%d, %d) -> %d catch %s\n", h.StartPC, h.EndPC,
				h.HandlerPC, catch)
		}
	}
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strings.Join(parts, " ")
}
