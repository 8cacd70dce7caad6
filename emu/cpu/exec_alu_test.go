/*
   RV64 CPU test cases: ALU/M-extension boundary behavior.

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

// TestDivOverflow covers the one case signed division can't represent:
// INT64_MIN / -1. RISC-V defines this as returning the dividend
// unchanged rather than trapping.
func TestDivOverflow(t *testing.T) {
	setup()
	sysCPU.xreg[2] = uint64(1) << 63 // INT64_MIN
	sysCPU.xreg[3] = ^uint64(0)      // -1
	start := sysCPU.pc
	testInst(encodeR(opOp, 0x4, 0x01, 1, 2, 3)) // DIV x1, x2, x3
	if got, want := sysCPU.reg(1), sysCPU.xreg[2]; got != want {
		t.Errorf("DIV overflow got %#016x wanted %#016x", got, want)
	}
	if want := start + 4; sysCPU.pc != want {
		t.Errorf("DIV overflow trapped unexpectedly, pc got %#x wanted %#x", sysCPU.pc, want)
	}
}

// TestDivuRemByZero covers division by zero, which RISC-V defines
// rather than traps: DIVU returns all-ones, REM returns the dividend.
func TestDivuRemByZero(t *testing.T) {
	setup()
	sysCPU.xreg[2] = 0x123456789abcdef0
	sysCPU.xreg[3] = 0
	testInst(encodeR(opOp, 0x5, 0x01, 1, 2, 3)) // DIVU x1, x2, x3
	if got, want := sysCPU.reg(1), ^uint64(0); got != want {
		t.Errorf("DIVU by zero got %#016x wanted %#016x", got, want)
	}

	testInst(encodeR(opOp, 0x6, 0x01, 4, 2, 3)) // REM x4, x2, x3
	if got, want := sysCPU.reg(4), sysCPU.xreg[2]; got != want {
		t.Errorf("REM by zero got %#016x wanted %#016x", got, want)
	}
}

// TestAddiwOverflow checks ADDIW's 32-bit wraparound followed by sign
// extension: 0x7fffffff + 1 overflows to a 32-bit result with its sign
// bit set, which then sign-extends into the upper 32 bits of the
// destination register.
func TestAddiwOverflow(t *testing.T) {
	setup()
	sysCPU.xreg[2] = 0x00000000_7fffffff
	testInst(encodeI(opOpImm32, 0x0, 1, 2, 1)) // ADDIW x1, x2, 1
	if got, want := sysCPU.reg(1), uint64(0xffffffff_80000000); got != want {
		t.Errorf("ADDIW overflow got %#016x wanted %#016x", got, want)
	}
}
