/*
   RV64 - Load/store/fence executors.

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

func execLb(cpu *cpuState) {
	v, ok := cpu.loadMem(cpu.rs1()+uint64(cpu.instr.imm), 8)
	if !ok {
		return
	}
	cpu.setRd(uint64(int64(int8(v))))
}

func execLh(cpu *cpuState) {
	v, ok := cpu.loadMem(cpu.rs1()+uint64(cpu.instr.imm), 16)
	if !ok {
		return
	}
	cpu.setRd(uint64(int64(int16(v))))
}

func execLw(cpu *cpuState) {
	v, ok := cpu.loadMem(cpu.rs1()+uint64(cpu.instr.imm), 32)
	if !ok {
		return
	}
	cpu.setRd(uint64(int64(int32(v))))
}

func execLd(cpu *cpuState) {
	v, ok := cpu.loadMem(cpu.rs1()+uint64(cpu.instr.imm), 64)
	if !ok {
		return
	}
	cpu.setRd(v)
}

func execLbu(cpu *cpuState) {
	v, ok := cpu.loadMem(cpu.rs1()+uint64(cpu.instr.imm), 8)
	if !ok {
		return
	}
	cpu.setRd(v)
}

func execLhu(cpu *cpuState) {
	v, ok := cpu.loadMem(cpu.rs1()+uint64(cpu.instr.imm), 16)
	if !ok {
		return
	}
	cpu.setRd(v)
}

func execLwu(cpu *cpuState) {
	v, ok := cpu.loadMem(cpu.rs1()+uint64(cpu.instr.imm), 32)
	if !ok {
		return
	}
	cpu.setRd(v)
}

func execSb(cpu *cpuState) {
	cpu.storeMem(cpu.rs1()+uint64(cpu.instr.imm), 8, cpu.rs2())
}

func execSh(cpu *cpuState) {
	cpu.storeMem(cpu.rs1()+uint64(cpu.instr.imm), 16, cpu.rs2())
}

func execSw(cpu *cpuState) {
	cpu.storeMem(cpu.rs1()+uint64(cpu.instr.imm), 32, cpu.rs2())
}

func execSd(cpu *cpuState) {
	cpu.storeMem(cpu.rs1()+uint64(cpu.instr.imm), 64, cpu.rs2())
}

// F/D loads and stores are supported only as raw bit-pattern transfers
// into/out of the opaque freg slots: no floating point arithmetic is
// implemented (out of scope), so these exist solely so a guest image
// touching callee-saved FP spill slots does not fault.

func execFlw(cpu *cpuState) {
	v, ok := cpu.loadMem(cpu.rs1()+uint64(cpu.instr.imm), 32)
	if !ok {
		return
	}
	cpu.freg[cpu.instr.rd] = v
}

func execFld(cpu *cpuState) {
	v, ok := cpu.loadMem(cpu.rs1()+uint64(cpu.instr.imm), 64)
	if !ok {
		return
	}
	cpu.freg[cpu.instr.rd] = v
}

func execFsw(cpu *cpuState) {
	cpu.storeMem(cpu.rs1()+uint64(cpu.instr.imm), 32, cpu.freg[cpu.instr.rs2]&0xffffffff)
}

func execFsd(cpu *cpuState) {
	cpu.storeMem(cpu.rs1()+uint64(cpu.instr.imm), 64, cpu.freg[cpu.instr.rs2])
}

// FENCE/FENCE.I are no-ops: this emulator has no instruction cache,
// store buffer, or second hart for a fence to order against.
func execFence(cpu *cpuState)  {}
func execFenceI(cpu *cpuState) {}
