/*
   RV64 CPU test cases: compressed decoder boundary behavior.

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

import (
	"testing"

	"github.com/rcornwell/rv64emu/emu/csr"
)

// TestCompressedAddi4spnZeroImmIllegal checks that C.ADDI4SPN with a
// zero immediate (a reserved encoding distinct from the all-zero
// halfword, which decodeCompressed rejects separately) raises
// IllegalInstruction rather than silently becoming a no-op ADDI.
func TestCompressedAddi4spnZeroImmIllegal(t *testing.T) {
	setup()
	start := sysCPU.pc
	// Quadrant 0, funct3 0 (C.ADDI4SPN), rd'=1 (bit 2 set), every
	// nzuimm bit (5, 6, 7-10, 11-12) clear.
	testCompressed(0x0004)
	if got, want := sysCPU.csr.Read(csr.Mcause), IllegalInstruction; got != want {
		t.Errorf("C.ADDI4SPN zero-imm mcause got %#x wanted %#x", got, want)
	}
	if got, want := sysCPU.csr.Read(csr.Mepc), start; got != want {
		t.Errorf("C.ADDI4SPN zero-imm mepc got %#x wanted %#x", got, want)
	}
}
