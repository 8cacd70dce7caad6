/*
   RV64 - Hart state.

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

// Package cpu implements the RV64GC fetch/decode/execute/trap pipeline:
// hart state, the instruction decoder (standard and compressed), the
// executors, the Sv39 MMU, and the trap engine, driven one tick at a
// time by CycleCPU.
package cpu

import (
	"github.com/rcornwell/rv64emu/emu/bus"
	"github.com/rcornwell/rv64emu/emu/csr"
)

// Privilege mode.
type Mode int

const (
	User Mode = 0
	Supervisor Mode = 1
	Machine Mode = 3
)

// Exception causes (values match the RISC-V mcause/scause encoding).
const (
	NoException uint64 = 0xffffffffffffffff

	InstructionAddressMisaligned uint64 = 0
	InstructionAccessFault       uint64 = 1
	IllegalInstruction           uint64 = 2
	Breakpoint                   uint64 = 3
	LoadAddressMisaligned        uint64 = 4
	LoadAccessFault              uint64 = 5
	StoreAMOAddressMisaligned    uint64 = 6
	StoreAMOAccessFault          uint64 = 7
	EnvironmentCallFromUMode     uint64 = 8
	EnvironmentCallFromSMode     uint64 = 9
	EnvironmentCallFromMMode     uint64 = 11
	InstructionPageFault         uint64 = 12
	LoadPageFault                uint64 = 13
	StoreAMOPageFault            uint64 = 15
)

// Interrupt causes.
const (
	NoInterrupt uint64 = 99

	UserSoftwareInterrupt       uint64 = 0
	SupervisorSoftwareInterrupt uint64 = 1
	MachineSoftwareInterrupt    uint64 = 3
	UserTimerInterrupt          uint64 = 4
	SupervisorTimerInterrupt    uint64 = 5
	MachineTimerInterrupt       uint64 = 7
	UserExternalInterrupt       uint64 = 8
	SupervisorExternalInterrupt uint64 = 9
	MachineExternalInterrupt    uint64 = 11
)

// Trap is the outcome classification the trap engine hands back to
// the driver loop.
type Trap int

const (
	TrapFatal Trap = iota
	TrapRequested
	TrapInvisible
)

// exception holds the pending synchronous-fault slot.
type exception struct {
	kind  uint64
	value uint64
}

// irqState holds the pending-interrupt slot.
type irqState struct {
	cause uint64
	value uint64
}

// instr is the decoded-instruction record. Fields not used by a given
// encoding are simply left zero.
type instr struct {
	raw    uint32
	opcode uint32
	funct2 uint32
	funct3 uint32
	funct4 uint32
	funct5 uint32
	funct6 uint32
	funct7 uint32
	width  uint32
	rd     uint32
	rs1    uint32
	rs2    uint32
	csr    uint32
	imm    int64
	aq     bool
	rl     bool
	exec   func(cpu *cpuState)
}

// cpuState is the hart: 32 integer registers, 32 opaque FP slots (used
// only for F/D load/store pass-through), PC, mode, CSR file, the
// pending exception/interrupt slots, the LR/SC reservation, and the
// current decoded instruction. It is a process-wide singleton for this
// emulator, matching the teacher's own package-level cpuState pattern.
type cpuState struct {
	xreg [32]uint64
	freg [32]uint64

	pc    uint64 // address of the next sequential instruction (post-fetch)
	curPC uint64 // address of the instruction currently executing
	len   uint64 // length in bytes of the instruction currently executing

	mode Mode

	exc exception
	irq irqState

	reservation uint64 // LR/SC reservation address; NoReservation when clear

	instr instr

	csr   *csr.File
	bus   *bus.Bus
	clint *bus.CLINT
	plic  *bus.PLIC

	iplDev   uint16 // boot device/image selector; not set anywhere (IPLDevice records the selector in IPLDev)
	memSizeK int    // configured DRAM size in KiB
}

const NoReservation uint64 = 0xffffffffffffffff

var sysCPU cpuState

// IPLDev mirrors the teacher's exported IPLDev package variable read by
// emu/core.
var IPLDev uint16
