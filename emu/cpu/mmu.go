/*
   RV64 - Sv39 virtual memory translation.

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

type accessType int

const (
	accessFetch accessType = iota
	accessLoad
	accessStore
)

// PTE bit positions (Sv39, 8-byte entries).
const (
	pteV = 1 << 0
	pteR = 1 << 1
	pteW = 1 << 2
	pteX = 1 << 3
	pteU = 1 << 4
	pteG = 1 << 5
	pteA = 1 << 6
	pteD = 1 << 7
)

const pageSize = 4096
const pteSize = 8
const levels = 3
const bitsPerLevel = 9

// translate walks the Sv39 three-level page table for va under
// access, returning the physical address on success. On failure it
// sets cpu.exc to the matching page-fault cause with exc.value = va
// and returns ok=false.
//
// A/D-bit maintenance is out of scope: a PTE with A or D clear is
// neither rejected nor updated, matching spec.md's stated omission.
// SUM/MXR enforcement is likewise omitted, matching the original this
// was distilled from.
func (cpu *cpuState) translate(va uint64, access accessType) (uint64, bool) {
	satp := cpu.csr.Read(csr.Satp)
	mode := cpu.mode

	// Effective privilege for loads/stores can be overridden by
	// mstatus.MPRV/MPP even though the current mode is whatever it is.
	effMode := mode
	if access != accessFetch && cpu.csr.CheckBits(csr.Mstatus, csrMstatusMPRV) {
		effMode = Mode((cpu.csr.Read(csr.Mstatus) & csrMstatusMPP) >> 11)
	}

	if satp>>60 != 8 || effMode == Machine {
		return va, true
	}

	ppn := satp & ((1 << 44) - 1)
	vpn := [levels]uint64{
		(va >> 12) & 0x1ff,
		(va >> 21) & 0x1ff,
		(va >> 30) & 0x1ff,
	}

	var pte uint64
	i := levels - 1
	for {
		tableAddr := ppn*pageSize + vpn[i]*pteSize
		raw, ok := cpu.bus.Load(tableAddr, 64)
		if !ok {
			return 0, cpu.pageFault(access, va)
		}
		pte = raw
		if pte&pteV == 0 || (pte&pteR == 0 && pte&pteW != 0) {
			return 0, cpu.pageFault(access, va)
		}
		if pte&(pteR|pteX) != 0 {
			break // leaf
		}
		i--
		if i < 0 {
			return 0, cpu.pageFault(access, va)
		}
		ppn = (pte >> 10) & ((1 << 44) - 1)
	}

	if !permitted(pte, access) {
		return 0, cpu.pageFault(access, va)
	}

	// Superpage: every low-order PPN field below the level the walk
	// stopped at must be zero, else this is a misaligned superpage.
	ptePPN := (pte >> 10) & ((1 << 44) - 1)
	for idx := i - 1; idx >= 0; idx-- {
		shift := uint(idx) * bitsPerLevel
		if (ptePPN>>shift)&0x1ff != 0 {
			return 0, cpu.pageFault(access, va)
		}
	}

	// Assemble the physical address: high bits from the PTE's PPN, any
	// low levels the walk stopped short of from the VA (superpages).
	pa := ptePPN << 12
	for idx := 0; idx < i; idx++ {
		shift := uint(idx) * bitsPerLevel
		pa &^= 0x1ff << (shift + 12)
		pa |= vpn[idx] << (shift + 12)
	}
	pa |= va & (pageSize - 1)
	return pa, true
}

func permitted(pte uint64, access accessType) bool {
	switch access {
	case accessFetch:
		return pte&pteX != 0
	case accessLoad:
		return pte&pteR != 0
	case accessStore:
		return pte&pteW != 0
	default:
		return false
	}
}

func (cpu *cpuState) pageFault(access accessType, va uint64) bool {
	debugf(debugMMU, "page fault access=%d va=%#016x", access, va)
	switch access {
	case accessFetch:
		cpu.exc.kind = InstructionPageFault
	case accessLoad:
		cpu.exc.kind = LoadPageFault
	case accessStore:
		cpu.exc.kind = StoreAMOPageFault
	}
	cpu.exc.value = va
	return false
}

// csrMstatusMPRV/MPP are local copies of the same mstatus bits that
// emu/csr exports as csr.MstatusMPRV and csr.MstatusMPP.
const (
	csrMstatusMPRV uint64 = 1 << 17
	csrMstatusMPP  uint64 = 3 << 11
)

func alignmentFault(access accessType) uint64 {
	switch access {
	case accessFetch:
		return InstructionAddressMisaligned
	case accessLoad:
		return LoadAddressMisaligned
	default:
		return StoreAMOAddressMisaligned
	}
}

func accessFaultCause(access accessType) uint64 {
	switch access {
	case accessFetch:
		return InstructionAccessFault
	case accessLoad:
		return LoadAccessFault
	default:
		return StoreAMOAccessFault
	}
}

// loadMem translates va and reads size bits from the bus. ok is false
// with cpu.exc already populated on any fault.
func (cpu *cpuState) loadMem(va uint64, size int) (uint64, bool) {
	if size > 8 && va&uint64(size/8-1) != 0 {
		cpu.exc.kind = alignmentFault(accessLoad)
		cpu.exc.value = va
		return 0, false
	}
	pa, ok := cpu.translate(va, accessLoad)
	if !ok {
		return 0, false
	}
	value, ok := cpu.bus.Load(pa, size)
	if !ok {
		cpu.exc.kind = accessFaultCause(accessLoad)
		cpu.exc.value = va
		return 0, false
	}
	return value, true
}

// storeMem translates va and writes size bits of value to the bus.
func (cpu *cpuState) storeMem(va uint64, size int, value uint64) bool {
	if size > 8 && va&uint64(size/8-1) != 0 {
		cpu.exc.kind = alignmentFault(accessStore)
		cpu.exc.value = va
		return false
	}
	pa, ok := cpu.translate(va, accessStore)
	if !ok {
		return false
	}
	if !cpu.bus.Store(pa, size, value) {
		cpu.exc.kind = accessFaultCause(accessStore)
		cpu.exc.value = va
		return false
	}
	return true
}

// fetchMem translates va (instruction fetch access) and reads a
// 16-bit halfword, the minimum granule the compressed extension
// requires; the caller reads a second halfword itself when the first
// indicates a 32-bit encoding.
func (cpu *cpuState) fetchMem(va uint64) (uint16, bool) {
	pa, ok := cpu.translate(va, accessFetch)
	if !ok {
		return 0, false
	}
	value, ok := cpu.bus.Load(pa, 16)
	if !ok {
		cpu.exc.kind = accessFaultCause(accessFetch)
		cpu.exc.value = va
		return 0, false
	}
	return uint16(value), true
}
