/*
   RV64 CPU test cases: trap engine delegation and reservation
   invalidation.

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

// TestEcallDelegatedToSupervisor covers an ECALL from S-mode with the
// matching medeleg bit set: it traps to S-mode with scause/sepc set
// from the faulting instruction, not to M-mode.
func TestEcallDelegatedToSupervisor(t *testing.T) {
	setup()
	sysCPU.mode = Supervisor
	sysCPU.csr.Write(csr.Medeleg, 1<<EnvironmentCallFromSMode)
	start := sysCPU.pc

	testInst(0x00000073) // ECALL

	if sysCPU.mode != Supervisor {
		t.Errorf("delegated ECALL mode got %v wanted Supervisor", sysCPU.mode)
	}
	if got, want := sysCPU.csr.Read(csr.Scause), EnvironmentCallFromSMode; got != want {
		t.Errorf("delegated ECALL scause got %#x wanted %#x", got, want)
	}
	if got, want := sysCPU.csr.Read(csr.Sepc), start; got != want {
		t.Errorf("delegated ECALL sepc got %#x wanted %#x", got, want)
	}
}

// TestEcallNotDelegatedToMachine covers the same ECALL with the
// matching medeleg bit clear: it traps to M-mode instead.
func TestEcallNotDelegatedToMachine(t *testing.T) {
	setup()
	sysCPU.mode = Supervisor
	start := sysCPU.pc

	testInst(0x00000073) // ECALL

	if sysCPU.mode != Machine {
		t.Errorf("non-delegated ECALL mode got %v wanted Machine", sysCPU.mode)
	}
	if got, want := sysCPU.csr.Read(csr.Mcause), EnvironmentCallFromSMode; got != want {
		t.Errorf("non-delegated ECALL mcause got %#x wanted %#x", got, want)
	}
	if got, want := sysCPU.csr.Read(csr.Mepc), start; got != want {
		t.Errorf("non-delegated ECALL mepc got %#x wanted %#x", got, want)
	}
}

// TestReservationInvalidatedByInterrupt covers LR.W followed by an
// interrupt and then SC.W to the same address: the interrupt must
// invalidate the reservation, so SC.W returns 1 (failure) rather than
// succeeding on stale state.
func TestReservationInvalidatedByInterrupt(t *testing.T) {
	setup()
	const addr = dramBase
	sysCPU.xreg[1] = addr

	sysCPU.instr = instr{rd: 2, rs1: 1}
	execLrw(&sysCPU)
	if sysCPU.reservation != addr {
		t.Fatalf("reservation after LR.W got %#x wanted %#x", sysCPU.reservation, addr)
	}

	sysCPU.handleInterrupt(MachineTimerInterrupt)
	if sysCPU.reservation != NoReservation {
		t.Fatalf("reservation after interrupt got %#x wanted cleared", sysCPU.reservation)
	}

	sysCPU.instr = instr{rd: 3, rs1: 1, rs2: 0}
	execScw(&sysCPU)
	if got := sysCPU.reg(3); got != 1 {
		t.Errorf("SC.W after interrupt got %d wanted 1 (must fail)", got)
	}
}

// TestReservationInvalidatedByException is the same property for the
// synchronous-fault path: any trap invalidates the reservation, not
// only interrupts.
func TestReservationInvalidatedByException(t *testing.T) {
	setup()
	const addr = dramBase
	sysCPU.xreg[1] = addr

	sysCPU.instr = instr{rd: 2, rs1: 1}
	execLrw(&sysCPU)
	if sysCPU.reservation != addr {
		t.Fatalf("reservation after LR.W got %#x wanted %#x", sysCPU.reservation, addr)
	}

	sysCPU.exc.kind = IllegalInstruction
	sysCPU.exc.value = 0
	sysCPU.handleException()
	if sysCPU.reservation != NoReservation {
		t.Fatalf("reservation after exception got %#x wanted cleared", sysCPU.reservation)
	}

	sysCPU.instr = instr{rd: 3, rs1: 1, rs2: 0}
	execScw(&sysCPU)
	if got := sysCPU.reg(3); got != 1 {
		t.Errorf("SC.W after exception got %d wanted 1 (must fail)", got)
	}
}
