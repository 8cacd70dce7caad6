/*
   RV64 CPU test cases.

   Copyright 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a copy
   of this software and associated documentation files (the "Software"), to deal
   in the Software without restriction, including without limitation the rights
   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
   copies of the Software, and to permit persons to whom the Software is
   furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
   SOFTWARE.

*/

package cpu

import "testing"

// setup resets the hart and points its boot vector at DRAM (the
// default boot vector lands in the boot ROM, which is read-only, so
// tests that need to fetch their own code must redirect it first).
func setup() {
	bootAddr = dramBase
	memSizeK = 4096
	InitializeCPU()
}

func storeWord(addr uint64, word uint32) {
	sysCPU.bus.Store(addr, 32, uint64(word))
}

func storeHalf(addr uint64, half uint16) {
	sysCPU.bus.Store(addr, 16, uint64(half))
}

// testInst writes a single standard-width (32-bit) instruction at the
// hart's current PC and steps exactly one instruction slot.
func testInst(word uint32) {
	storeWord(sysCPU.pc, word)
	CycleCPU()
}

// testCompressed writes a single compressed (16-bit) instruction at
// the hart's current PC and steps exactly one instruction slot.
func testCompressed(half uint16) {
	storeHalf(sysCPU.pc, half)
	CycleCPU()
}

// encodeR builds a standard R-type word (OP/OP-32/AMO family share
// this shape; AMO reuses the funct7 field as funct5|aq|rl).
func encodeR(opcode, funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// encodeI builds a standard I-type word (OP-IMM/OP-IMM-32/JALR/LOAD).
func encodeI(opcode, funct3, rd, rs1 uint32, imm int64) uint32 {
	return (uint32(imm)&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// encodeB builds a standard B-type (branch) word; imm must be even.
func encodeB(opcode, funct3, rs1, rs2 uint32, imm int64) uint32 {
	u := uint32(imm)
	b12 := (u >> 12) & 1
	b11 := (u >> 11) & 1
	b10to5 := (u >> 5) & 0x3f
	b4to1 := (u >> 1) & 0xf
	return b12<<31 | b10to5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | b4to1<<8 | b11<<7 | opcode
}

// TestXregZeroInvariant checks that x0 observably reads as 0 at every
// instruction boundary, even immediately after an instruction that
// names it as its destination.
func TestXregZeroInvariant(t *testing.T) {
	setup()
	testInst(encodeI(opOpImm, 0x0, 0, 0, 5)) // ADDI x0, x0, 5
	if got := sysCPU.reg(0); got != 0 {
		t.Errorf("x0 after ADDI x0,x0,5 got %#x wanted 0", got)
	}
}

// TestCsrReadWriteRoundTrip checks an unmasked CSR (one with no
// sstatus/sie/sip-style projection) round-trips a write exactly.
func TestCsrReadWriteRoundTrip(t *testing.T) {
	setup()
	const scratch uint32 = 0x340 // mscratch; unprojected, no mask
	want := uint64(0xdeadbeefcafebabe)
	sysCPU.csr.Write(scratch, want)
	if got := sysCPU.csr.Read(scratch); got != want {
		t.Errorf("CSR round trip got %#016x wanted %#016x", got, want)
	}
}

// TestBranchNotTakenPC checks PC after a not-taken branch equals
// PC_start + instruction length.
func TestBranchNotTakenPC(t *testing.T) {
	setup()
	start := sysCPU.pc
	sysCPU.xreg[2] = 1
	sysCPU.xreg[3] = 2
	testInst(encodeB(opBranch, 0x0, 2, 3, 8)) // BEQ x2, x3, +8 (not taken)
	if want := start + 4; sysCPU.pc != want {
		t.Errorf("not-taken branch PC got %#x wanted %#x", sysCPU.pc, want)
	}
}

// TestBranchTakenPC checks PC after a taken branch equals
// PC_start + imm.
func TestBranchTakenPC(t *testing.T) {
	setup()
	start := sysCPU.pc
	sysCPU.xreg[2] = 5
	sysCPU.xreg[3] = 5
	testInst(encodeB(opBranch, 0x0, 2, 3, 8)) // BEQ x2, x3, +8 (taken)
	if want := start + 8; sysCPU.pc != want {
		t.Errorf("taken branch PC got %#x wanted %#x", sysCPU.pc, want)
	}
}

// TestAddSubRoundTrip checks ADD followed by SUB of the same operand
// restores the original value.
func TestAddSubRoundTrip(t *testing.T) {
	setup()
	sysCPU.xreg[2] = 0x12345678
	sysCPU.xreg[3] = 0x1000
	testInst(encodeR(opOp, 0x0, 0x00, 1, 2, 3)) // ADD x1, x2, x3
	testInst(encodeR(opOp, 0x0, 0x20, 1, 1, 3)) // SUB x1, x1, x3
	if got, want := sysCPU.reg(1), sysCPU.xreg[2]; got != want {
		t.Errorf("ADD/SUB round trip got %#x wanted %#x", got, want)
	}
}

// TestSllSrlRoundTrip checks SLL followed by SRL of the same shift
// amount restores the original value, for an operand small enough
// that the shift loses no bits.
func TestSllSrlRoundTrip(t *testing.T) {
	setup()
	sysCPU.xreg[2] = 1
	sysCPU.xreg[3] = 3
	testInst(encodeR(opOp, 0x1, 0x00, 1, 2, 3)) // SLL x1, x2, x3
	testInst(encodeR(opOp, 0x5, 0x00, 1, 1, 3)) // SRL x1, x1, x3
	if got, want := sysCPU.reg(1), sysCPU.xreg[2]; got != want {
		t.Errorf("SLL/SRL round trip got %#x wanted %#x", got, want)
	}
}

// TestXorRoundTrip checks applying XOR twice with the same operand
// restores the original value.
func TestXorRoundTrip(t *testing.T) {
	setup()
	sysCPU.xreg[2] = 0x0123456789abcdef
	sysCPU.xreg[3] = 0xfedcba9876543210
	testInst(encodeR(opOp, 0x4, 0x00, 1, 2, 3)) // XOR x1, x2, x3
	testInst(encodeR(opOp, 0x4, 0x00, 1, 1, 3)) // XOR x1, x1, x3
	if got, want := sysCPU.reg(1), sysCPU.xreg[2]; got != want {
		t.Errorf("XOR round trip got %#x wanted %#x", got, want)
	}
}
