/*
   RV64 - Integer/FP register file helpers.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package cpu

// reg returns integer register idx, x0 hardwired to zero.
func (cpu *cpuState) reg(idx uint32) uint64 {
	if idx == 0 {
		return 0
	}
	return cpu.xreg[idx]
}

// setReg writes integer register idx, ignoring writes to x0.
func (cpu *cpuState) setReg(idx uint32, value uint64) {
	if idx != 0 {
		cpu.xreg[idx] = value
	}
}

func (cpu *cpuState) rs1() uint64 { return cpu.reg(cpu.instr.rs1) }
func (cpu *cpuState) rs2() uint64 { return cpu.reg(cpu.instr.rs2) }

func (cpu *cpuState) setRd(value uint64) {
	cpu.setReg(cpu.instr.rd, value)
}

// branchTo implements the "PC = PC + imm - len" invariant shared by
// every taken branch and jump, standard or compressed: cpu.pc already
// holds the address of the *next* sequential instruction by the time
// an executor runs (fetch advances it), so the offset is measured
// back from there by the length of the instruction just fetched.
func (cpu *cpuState) branchTo(imm int64) {
	cpu.pc = uint64(int64(cpu.pc) + imm - int64(cpu.len))
}
