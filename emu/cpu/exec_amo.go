/*
   RV64 - Atomic memory operation executors (A extension, excluding
   AMOMIN/AMOMAX).

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

// amo32 performs a 32-bit read-modify-write at addr, sign-extending
// the prior value into rd.
func (cpu *cpuState) amo32(addr uint64, op func(old uint32) uint32) {
	old, ok := cpu.loadMem(addr, 32)
	if !ok {
		return
	}
	if !cpu.storeMem(addr, 32, uint64(op(uint32(old)))) {
		return
	}
	cpu.setRd(sext32(uint32(old)))
}

func (cpu *cpuState) amo64(addr uint64, op func(old uint64) uint64) {
	old, ok := cpu.loadMem(addr, 64)
	if !ok {
		return
	}
	if !cpu.storeMem(addr, 64, op(old)) {
		return
	}
	cpu.setRd(old)
}

func execAmoswapw(cpu *cpuState) {
	rs2 := uint32(cpu.rs2())
	cpu.amo32(cpu.rs1(), func(uint32) uint32 { return rs2 })
}
func execAmoswapd(cpu *cpuState) {
	rs2 := cpu.rs2()
	cpu.amo64(cpu.rs1(), func(uint64) uint64 { return rs2 })
}
func execAmoaddw(cpu *cpuState) {
	rs2 := uint32(cpu.rs2())
	cpu.amo32(cpu.rs1(), func(old uint32) uint32 { return old + rs2 })
}
func execAmoaddd(cpu *cpuState) {
	rs2 := cpu.rs2()
	cpu.amo64(cpu.rs1(), func(old uint64) uint64 { return old + rs2 })
}
func execAmoxorw(cpu *cpuState) {
	rs2 := uint32(cpu.rs2())
	cpu.amo32(cpu.rs1(), func(old uint32) uint32 { return old ^ rs2 })
}
func execAmoxord(cpu *cpuState) {
	rs2 := cpu.rs2()
	cpu.amo64(cpu.rs1(), func(old uint64) uint64 { return old ^ rs2 })
}
func execAmoorw(cpu *cpuState) {
	rs2 := uint32(cpu.rs2())
	cpu.amo32(cpu.rs1(), func(old uint32) uint32 { return old | rs2 })
}
func execAmoord(cpu *cpuState) {
	rs2 := cpu.rs2()
	cpu.amo64(cpu.rs1(), func(old uint64) uint64 { return old | rs2 })
}
func execAmoandw(cpu *cpuState) {
	rs2 := uint32(cpu.rs2())
	cpu.amo32(cpu.rs1(), func(old uint32) uint32 { return old & rs2 })
}
func execAmoandd(cpu *cpuState) {
	rs2 := cpu.rs2()
	cpu.amo64(cpu.rs1(), func(old uint64) uint64 { return old & rs2 })
}

// LR/SC: a single-hart emulator needs no cache-coherence protocol to
// honor the reservation, just a remembered address. SC and every trap
// clear it; ordinary stores leave it in place.

func execLrw(cpu *cpuState) {
	addr := cpu.rs1()
	v, ok := cpu.loadMem(addr, 32)
	if !ok {
		return
	}
	cpu.reservation = addr
	cpu.setRd(sext32(uint32(v)))
}

func execLrd(cpu *cpuState) {
	addr := cpu.rs1()
	v, ok := cpu.loadMem(addr, 64)
	if !ok {
		return
	}
	cpu.reservation = addr
	cpu.setRd(v)
}

func execScw(cpu *cpuState) {
	addr := cpu.rs1()
	if cpu.reservation != addr {
		cpu.reservation = NoReservation
		cpu.setRd(1)
		return
	}
	cpu.reservation = NoReservation
	if !cpu.storeMem(addr, 32, uint64(uint32(cpu.rs2()))) {
		return
	}
	cpu.setRd(0)
}

func execScd(cpu *cpuState) {
	addr := cpu.rs1()
	if cpu.reservation != addr {
		cpu.reservation = NoReservation
		cpu.setRd(1)
		return
	}
	cpu.reservation = NoReservation
	if !cpu.storeMem(addr, 64, cpu.rs2()) {
		return
	}
	cpu.setRd(0)
}
