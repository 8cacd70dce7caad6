/*
   RV64 - Control and Status Register file.

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

// Package csr implements the 4096-entry RISC-V control/status register
// bank: masked read/write, bit set/clear/check helpers, and the
// sstatus/sie/sip projections of their machine-mode counterparts.
package csr

// Machine/supervisor CSR addresses used by this emulator (RISC-V
// privileged architecture, zicsr addressing).
const (
	Sstatus uint32 = 0x100
	Sedeleg uint32 = 0x102
	Sideleg uint32 = 0x103
	Sie     uint32 = 0x104
	Stvec   uint32 = 0x105
	Sepc    uint32 = 0x141
	Scause  uint32 = 0x142
	Stval   uint32 = 0x143
	Sip     uint32 = 0x144
	Satp    uint32 = 0x180

	Mstatus  uint32 = 0x300
	Misa     uint32 = 0x301
	Medeleg  uint32 = 0x302
	Mideleg  uint32 = 0x303
	Mie      uint32 = 0x304
	Mtvec    uint32 = 0x305
	Mepc     uint32 = 0x341
	Mcause   uint32 = 0x342
	Mtval    uint32 = 0x343
	Mip      uint32 = 0x344
	Mhartid  uint32 = 0xf14
	Cycle    uint32 = 0xc00
	Time     uint32 = 0xc01
	Instret  uint32 = 0xc02
)

// mstatus/sstatus bit masks.
const (
	MstatusSIE  uint64 = 1 << 1
	MstatusMIE  uint64 = 1 << 3
	MstatusSPIE uint64 = 1 << 5
	MstatusMPIE uint64 = 1 << 7
	MstatusSPP  uint64 = 1 << 8
	MstatusMPP  uint64 = 3 << 11
	MstatusMPRV uint64 = 1 << 17

	SstatusSIE  = MstatusSIE
	SstatusSPIE = MstatusSPIE
	SstatusSPP  = MstatusSPP

	// sstatus is the subset of mstatus visible to supervisor mode. SUM/MXR
	// enforcement is out of scope, so only the fields the trap engine and
	// xRET executors actually touch are aliased.
	sstatusMask uint64 = SstatusSIE | SstatusSPIE | SstatusSPP
)

// mip/mie bit masks (interrupt pending/enable).
const (
	MipSSIP uint64 = 1 << 1
	MipMSIP uint64 = 1 << 3
	MipSTIP uint64 = 1 << 5
	MipMTIP uint64 = 1 << 7
	MipSEIP uint64 = 1 << 9
	MipMEIP uint64 = 1 << 11

	// sip/sie is the subset of mip/mie visible to supervisor mode.
	sipMask uint64 = MipSSIP | MipSTIP | MipSEIP
)

// File is the 4096-entry register bank plus the time-keeping counters
// the privileged spec requires (cycle/time/instret).
type File struct {
	reg [4096]uint64
}

// New returns a zeroed CSR bank.
func New() *File {
	f := &File{}
	f.initHartID()
	return f
}

// Defined reports whether index names one of this bank's implemented
// CSRs. Any other index is unassigned in this emulator's subset of the
// privileged architecture and must raise IllegalInstruction rather
// than silently reading/writing reg[index].
func Defined(index uint32) bool {
	switch index & 0xfff {
	case Sstatus, Sedeleg, Sideleg, Sie, Stvec, Sepc, Scause, Stval, Sip, Satp,
		Mstatus, Misa, Medeleg, Mideleg, Mie, Mtvec, Mepc, Mcause, Mtval, Mip,
		Mhartid, Cycle, Time, Instret:
		return true
	default:
		return false
	}
}

// Read returns the raw value at index, projecting sstatus/sie/sip
// through their mstatus/mie/mip counterparts.
func (f *File) Read(index uint32) uint64 {
	index &= 0xfff
	switch index {
	case Sstatus:
		return f.reg[Mstatus] & sstatusMask
	case Sie:
		return f.reg[Mie] & sipMask
	case Sip:
		return f.reg[Mip] & sipMask
	default:
		return f.reg[index]
	}
}

// Write stores value at index, masking sstatus/sie/sip writes so that
// only the S-visible bits of mstatus/mie/mip are affected.
func (f *File) Write(index uint32, value uint64) {
	index &= 0xfff
	switch index {
	case Sstatus:
		f.reg[Mstatus] = (f.reg[Mstatus] &^ sstatusMask) | (value & sstatusMask)
	case Sie:
		f.reg[Mie] = (f.reg[Mie] &^ sipMask) | (value & sipMask)
	case Sip:
		f.reg[Mip] = (f.reg[Mip] &^ sipMask) | (value & sipMask)
	default:
		f.reg[index] = value
	}
}

// SetBits ORs mask into the register at index (through the same
// S-mode projection Write uses).
func (f *File) SetBits(index uint32, mask uint64) {
	f.Write(index, f.Read(index)|mask)
}

// ClearBits ANDs the complement of mask into the register at index.
func (f *File) ClearBits(index uint32, mask uint64) {
	f.Write(index, f.Read(index)&^mask)
}

// CheckBits reports whether every bit in mask is set at index.
func (f *File) CheckBits(index uint32, mask uint64) bool {
	return f.Read(index)&mask == mask
}

// Tick advances the free-running counters once per retired tick:
// cycle and time unconditionally, instret also unconditionally since
// this emulator retires at most one instruction per tick (a trap with
// no instruction executed still ticks time forward).
func (f *File) Tick() {
	f.reg[Cycle]++
	f.reg[Time]++
	f.reg[Instret]++
}

// Mhartid is fixed at hart 0 for this single-hart emulator.
func (f *File) initHartID() {
	f.reg[Mhartid] = 0
}
