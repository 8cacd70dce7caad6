/*
   RV64 - Branch and jump executors.

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

func execBeq(cpu *cpuState) {
	if cpu.rs1() == cpu.rs2() {
		cpu.branchTo(cpu.instr.imm)
	}
}

func execBne(cpu *cpuState) {
	if cpu.rs1() != cpu.rs2() {
		cpu.branchTo(cpu.instr.imm)
	}
}

func execBlt(cpu *cpuState) {
	if int64(cpu.rs1()) < int64(cpu.rs2()) {
		cpu.branchTo(cpu.instr.imm)
	}
}

func execBge(cpu *cpuState) {
	if int64(cpu.rs1()) >= int64(cpu.rs2()) {
		cpu.branchTo(cpu.instr.imm)
	}
}

func execBltu(cpu *cpuState) {
	if cpu.rs1() < cpu.rs2() {
		cpu.branchTo(cpu.instr.imm)
	}
}

func execBgeu(cpu *cpuState) {
	if cpu.rs1() >= cpu.rs2() {
		cpu.branchTo(cpu.instr.imm)
	}
}

func execJal(cpu *cpuState) {
	cpu.setRd(cpu.curPC + cpu.len)
	cpu.branchTo(cpu.instr.imm)
}

func execJalr(cpu *cpuState) {
	target := (cpu.rs1() + uint64(cpu.instr.imm)) &^ 1
	link := cpu.curPC + cpu.len
	cpu.pc = target
	cpu.setRd(link)
}
