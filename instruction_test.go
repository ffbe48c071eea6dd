// Copyright 2022 Nowilltolife. All rights reserved.
// Use of this source code is governed by the MIT license
// license that can be found in the LICENSE file.

package classfile

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestFallbackInstructionWriter(t *testing.T) {

	insns := []Instruction{
		{Opcode: 0x2A},                        // aload_0
		{Opcode: OpBipush, Operands: []byte{0x07}},
		{Opcode: OpSipush, Operands: []byte{0x01, 0x00}},
		{Opcode: OpReturn},
	}

	got, err := FallbackInstructionWriter().WriteCode(insns)
	if err != nil {
		t.Fatalf("WriteCode failed, reason: %v", err)
	}
	want := []byte{0x2A, 0x10, 0x07, 0x11, 0x01, 0x00, 0xB1}
	if !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}
	if codeLength(insns) != uint32(len(want)) {
		t.Errorf("codeLength = %d, want %d", codeLength(insns), len(want))
	}
}

func TestReadCodeRoundTrip(t *testing.T) {

	tests := []struct {
		name string
		code []byte
	}{
		{
			"simple",
			[]byte{0x2A, 0xB7, 0x00, 0x01, 0xB1}, // aload_0; invokespecial #1; return
		},
		{
			"wide",
			[]byte{
				0xC4, 0x15, 0x01, 0x00, // wide iload 256
				0xC4, 0x84, 0x01, 0x00, 0x00, 0x05, // wide iinc 256 by 5
				0xB1,
			},
		},
		{
			// tableswitch at pc 1 so two pad bytes precede the default.
			"tableswitch",
			[]byte{
				0x1A,       // iload_0
				0xAA,       // tableswitch
				0x00, 0x00, // pad
				0x00, 0x00, 0x00, 0x1A, // default
				0x00, 0x00, 0x00, 0x00, // low 0
				0x00, 0x00, 0x00, 0x01, // high 1
				0x00, 0x00, 0x00, 0x1A,
				0x00, 0x00, 0x00, 0x1B,
				0xB1,
			},
		},
		{
			"lookupswitch",
			[]byte{
				0x1A,
				0xAB,
				0x00, 0x00,
				0x00, 0x00, 0x00, 0x16, // default
				0x00, 0x00, 0x00, 0x01, // npairs
				0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00, 0x16,
				0xB1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insns, err := readCode(tt.code)
			if err != nil {
				t.Fatalf("readCode failed, reason: %v", err)
			}
			out, err := FallbackInstructionWriter().WriteCode(insns)
			if err != nil {
				t.Fatalf("WriteCode failed, reason: %v", err)
			}
			if !bytes.Equal(out, tt.code) {
				t.Errorf("round trip differs\n got % X\nwant % X", out, tt.code)
			}
		})
	}
}

func TestReadCodePadDependsOnOffset(t *testing.T) {

	// tableswitch at pc 3 needs no padding.
	code := []byte{
		0x00, 0x00, 0x1A, // nop; nop; iload_0
		0xAA,
		0x00, 0x00, 0x00, 0x10, // default
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x10,
	}
	insns, err := readCode(code)
	if err != nil {
		t.Fatalf("readCode failed, reason: %v", err)
	}
	want := []Instruction{
		{Opcode: 0x00},
		{Opcode: 0x00},
		{Opcode: 0x1A},
		{Opcode: 0xAA, Operands: code[4:]},
	}
	if !reflect.DeepEqual(insns, want) {
		t.Errorf("got %#v, want %#v", insns, want)
	}
}

func TestReadCodeErrors(t *testing.T) {

	tests := []struct {
		name string
		code []byte
		want error
	}{
		{"unknown opcode", []byte{0xEF}, ErrBadOpcode},
		{"truncated operands", []byte{OpSipush, 0x01}, ErrOutsideBoundary},
		{"truncated wide", []byte{OpWide}, ErrOutsideBoundary},
		{"truncated tableswitch", []byte{OpTableswitch, 0, 0, 0}, ErrOutsideBoundary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readCode(tt.code)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestInstructionName(t *testing.T) {

	if got := (Instruction{Opcode: 0xB6}).Name(); got != "invokevirtual" {
		t.Errorf("got %s, want invokevirtual", got)
	}
	if got := (Instruction{Opcode: 0xEF}).Name(); got != "0xEF" {
		t.Errorf("got %s, want 0xEF", got)
	}
}
