/*
   RV64 - Trap engine: exception and interrupt delivery, delegation,
   and priority ordering.

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

const interruptBit uint64 = 1 << 63

// outcomeClass reports how the driver loop should treat a just-raised
// exception for tracing purposes: Fatal conditions are programming
// errors in the guest, Requested are deliberate (syscall/breakpoint),
// Invisible are the MMU doing its job (a page fault the guest's own
// handler is expected to resolve and retry).
func outcomeClass(kind uint64) Trap {
	switch kind {
	case InstructionPageFault, LoadPageFault, StoreAMOPageFault:
		return TrapInvisible
	case Breakpoint,
		EnvironmentCallFromUMode, EnvironmentCallFromSMode, EnvironmentCallFromMMode:
		return TrapRequested
	default:
		return TrapFatal
	}
}

// handleException delivers cpu.exc, which the caller has already
// confirmed is pending (kind != NoException), then clears it.
func (cpu *cpuState) handleException() {
	cause := cpu.exc.kind
	tval := cpu.exc.value
	delegate := cpu.mode != Machine && cpu.csr.CheckBits(csr.Medeleg, 1<<cause)
	cpu.deliverTrap(cause, tval, false, delegate, cpu.curPC)
	cpu.exc.kind = NoException
}

// pendingInterrupt reports the highest-priority interrupt eligible to
// be taken right now, or (NoInterrupt, false) if none is. Priority
// order is machine-external, machine-software, machine-timer,
// supervisor-external, supervisor-software, supervisor-timer.
func (cpu *cpuState) pendingInterrupt() (uint64, bool) {
	mip := cpu.csr.Read(csr.Mip)
	mie := cpu.csr.Read(csr.Mie)
	pending := mip & mie

	order := []struct {
		cause uint64
		bit   uint64
	}{
		{MachineExternalInterrupt, csr.MipMEIP},
		{MachineSoftwareInterrupt, csr.MipMSIP},
		{MachineTimerInterrupt, csr.MipMTIP},
		{SupervisorExternalInterrupt, csr.MipSEIP},
		{SupervisorSoftwareInterrupt, csr.MipSSIP},
		{SupervisorTimerInterrupt, csr.MipSTIP},
	}

	for _, o := range order {
		if pending&o.bit == 0 {
			continue
		}
		delegate := cpu.csr.CheckBits(csr.Mideleg, 1<<o.cause)
		target := Machine
		if delegate {
			target = Supervisor
		}
		if !cpu.interruptEnabledFor(target) {
			continue
		}
		return o.cause, true
	}
	return NoInterrupt, false
}

// interruptEnabledFor reports whether an interrupt delegated to
// target may be taken from the hart's current privilege: a lower
// current privilege than target always traps; an equal privilege
// traps only if that level's global interrupt-enable bit is set; a
// higher current privilege than target never traps (the target level
// cannot interrupt a more-privileged one).
func (cpu *cpuState) interruptEnabledFor(target Mode) bool {
	switch {
	case cpu.mode < target:
		return true
	case cpu.mode > target:
		return false
	case target == Machine:
		return cpu.csr.CheckBits(csr.Mstatus, csr.MstatusMIE)
	default:
		return cpu.csr.CheckBits(csr.Sstatus, csr.SstatusSIE)
	}
}

// handleInterrupt delivers the highest-priority pending, enabled
// interrupt. The caller has already confirmed one is pending.
func (cpu *cpuState) handleInterrupt(cause uint64) {
	delegate := cpu.csr.CheckBits(csr.Mideleg, 1<<cause)
	cpu.deliverTrap(cause, 0, true, delegate, cpu.pc)
}

// deliverTrap is the shared epc/cause/tval/status/pc update for both
// exception and interrupt delivery, to either Machine or Supervisor
// mode.
func (cpu *cpuState) deliverTrap(cause, tval uint64, isInterrupt, delegate bool, epc uint64) {
	causeVal := cause
	if isInterrupt {
		causeVal |= interruptBit
	}

	debugf(debugTrap, "trap cause=%#x tval=%#x epc=%#x interrupt=%v delegate=%v",
		cause, tval, epc, isInterrupt, delegate)

	// Any trap, exception or interrupt, invalidates an outstanding
	// LR/SC reservation: the guest's handler runs arbitrary code before
	// SC ever executes, so the reservation can no longer attest that
	// nothing touched the address in between.
	cpu.reservation = NoReservation

	if delegate {
		cpu.csr.Write(csr.Sepc, epc)
		cpu.csr.Write(csr.Scause, causeVal)
		cpu.csr.Write(csr.Stval, tval)

		sstatus := cpu.csr.Read(csr.Sstatus)
		if sstatus&csr.SstatusSIE != 0 {
			sstatus |= csr.SstatusSPIE
		} else {
			sstatus &^= csr.SstatusSPIE
		}
		sstatus &^= csr.SstatusSIE
		if cpu.mode == Supervisor {
			sstatus |= csr.SstatusSPP
		} else {
			sstatus &^= csr.SstatusSPP
		}
		cpu.csr.Write(csr.Sstatus, sstatus)

		cpu.mode = Supervisor
		cpu.pc = trapTarget(cpu.csr.Read(csr.Stvec), cause, isInterrupt)
		return
	}

	cpu.csr.Write(csr.Mepc, epc)
	cpu.csr.Write(csr.Mcause, causeVal)
	cpu.csr.Write(csr.Mtval, tval)

	mstatus := cpu.csr.Read(csr.Mstatus)
	if mstatus&csr.MstatusMIE != 0 {
		mstatus |= csr.MstatusMPIE
	} else {
		mstatus &^= csr.MstatusMPIE
	}
	mstatus &^= csr.MstatusMIE
	mstatus &^= csr.MstatusMPP
	mstatus |= uint64(cpu.mode) << 11
	cpu.csr.Write(csr.Mstatus, mstatus)

	cpu.mode = Machine
	cpu.pc = trapTarget(cpu.csr.Read(csr.Mtvec), cause, isInterrupt)
}

// trapTarget resolves tvec's base+mode encoding: mode 0 is Direct (all
// traps to base), mode 1 is Vectored (interrupts to base+4*cause,
// exceptions still to base).
func trapTarget(tvec, cause uint64, isInterrupt bool) uint64 {
	base := tvec &^ 0x3
	if tvec&0x3 == 1 && isInterrupt {
		return base + 4*cause
	}
	return base
}
