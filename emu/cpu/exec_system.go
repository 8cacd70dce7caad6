/*
   RV64 - Zicsr, ECALL/EBREAK, and privileged xRET executors.

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

import "github.com/rcornwell/rv64emu/emu/csr"

// checkCSR validates a CSR access before it reaches the register
// bank: index must name a defined CSR (spec.md §4.1, "unknown indices
// fail with IllegalInstruction"), and a write to a read-only CSR
// (address bits [11:10] == 0b11) is only legal from Machine mode
// (spec.md §4.3). Either violation raises IllegalInstruction and
// leaves the CSR and destination register untouched.
func (cpu *cpuState) checkCSR(index uint32, write bool) bool {
	if !csr.Defined(index) {
		cpu.exc.kind = IllegalInstruction
		cpu.exc.value = 0
		return false
	}
	if write && (index>>10)&0x3 == 0x3 && cpu.mode != Machine {
		cpu.exc.kind = IllegalInstruction
		cpu.exc.value = 0
		return false
	}
	return true
}

func execCsrrw(cpu *cpuState) {
	if !cpu.checkCSR(cpu.instr.csr, true) {
		return
	}
	old := cpu.csr.Read(cpu.instr.csr)
	cpu.csr.Write(cpu.instr.csr, cpu.rs1())
	cpu.setRd(old)
}

func execCsrrs(cpu *cpuState) {
	write := cpu.instr.rs1 != 0
	if !cpu.checkCSR(cpu.instr.csr, write) {
		return
	}
	old := cpu.csr.Read(cpu.instr.csr)
	if write {
		cpu.csr.Write(cpu.instr.csr, old|cpu.rs1())
	}
	cpu.setRd(old)
}

func execCsrrc(cpu *cpuState) {
	write := cpu.instr.rs1 != 0
	if !cpu.checkCSR(cpu.instr.csr, write) {
		return
	}
	old := cpu.csr.Read(cpu.instr.csr)
	if write {
		cpu.csr.Write(cpu.instr.csr, old&^cpu.rs1())
	}
	cpu.setRd(old)
}

func execCsrrwi(cpu *cpuState) {
	if !cpu.checkCSR(cpu.instr.csr, true) {
		return
	}
	old := cpu.csr.Read(cpu.instr.csr)
	cpu.csr.Write(cpu.instr.csr, uint64(cpu.instr.rs1))
	cpu.setRd(old)
}

func execCsrrsi(cpu *cpuState) {
	write := cpu.instr.rs1 != 0
	if !cpu.checkCSR(cpu.instr.csr, write) {
		return
	}
	old := cpu.csr.Read(cpu.instr.csr)
	if write {
		cpu.csr.Write(cpu.instr.csr, old|uint64(cpu.instr.rs1))
	}
	cpu.setRd(old)
}

func execCsrrci(cpu *cpuState) {
	write := cpu.instr.rs1 != 0
	if !cpu.checkCSR(cpu.instr.csr, write) {
		return
	}
	old := cpu.csr.Read(cpu.instr.csr)
	if write {
		cpu.csr.Write(cpu.instr.csr, old&^uint64(cpu.instr.rs1))
	}
	cpu.setRd(old)
}

func execEcall(cpu *cpuState) {
	switch cpu.mode {
	case User:
		cpu.exc.kind = EnvironmentCallFromUMode
	case Supervisor:
		cpu.exc.kind = EnvironmentCallFromSMode
	case Machine:
		cpu.exc.kind = EnvironmentCallFromMMode
	}
	cpu.exc.value = cpu.curPC
}

func execEbreak(cpu *cpuState) {
	cpu.exc.kind = Breakpoint
	cpu.exc.value = cpu.curPC
}

// execMret returns from a machine-mode trap: restores pc from mepc,
// pops the privilege mode out of mstatus.MPP, moves MPIE into MIE,
// sets MPIE, and clears MPP back to User.
func execMret(cpu *cpuState) {
	cpu.pc = cpu.csr.Read(csr.Mepc)
	mstatus := cpu.csr.Read(csr.Mstatus)
	cpu.mode = Mode((mstatus & csr.MstatusMPP) >> 11)
	if mstatus&csr.MstatusMPIE != 0 {
		mstatus |= csr.MstatusMIE
	} else {
		mstatus &^= csr.MstatusMIE
	}
	mstatus |= csr.MstatusMPIE
	mstatus &^= csr.MstatusMPP
	cpu.csr.Write(csr.Mstatus, mstatus)
}

// execSret mirrors execMret one privilege level down: sstatus.SPP
// only distinguishes User from Supervisor, so it pops to one of those
// two, never Machine.
func execSret(cpu *cpuState) {
	cpu.pc = cpu.csr.Read(csr.Sepc)
	sstatus := cpu.csr.Read(csr.Sstatus)
	if sstatus&csr.SstatusSPP != 0 {
		cpu.mode = Supervisor
	} else {
		cpu.mode = User
	}
	if sstatus&csr.SstatusSPIE != 0 {
		sstatus |= csr.SstatusSIE
	} else {
		sstatus &^= csr.SstatusSIE
	}
	sstatus |= csr.SstatusSPIE
	sstatus &^= csr.SstatusSPP
	cpu.csr.Write(csr.Sstatus, sstatus)
}

// WFI: the emulator has nothing better to do while waiting than
// proceed to the next instruction — there is no low-power state to
// model, and the driver loop already polls pending interrupts every
// tick regardless.
func execWfi(cpu *cpuState) {}

// SFENCE.VMA/HFENCE.*VMA are no-ops: this MMU re-walks the page table
// on every access rather than caching translations, so there is no
// TLB for a fence to invalidate.
func execSfenceVMA(cpu *cpuState)  {}
func execHfenceBVMA(cpu *cpuState) {}
func execHfenceGVMA(cpu *cpuState) {}
