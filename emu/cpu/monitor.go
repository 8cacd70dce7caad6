/*
   RV64 - Monitor introspection: register/CSR/memory examine and
   deposit for the console command parser.

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

// ReadXReg returns integer register idx (0-31) of the running hart.
func ReadXReg(idx int) uint64 {
	return sysCPU.reg(uint32(idx))
}

// WriteXReg deposits value into integer register idx (0-31); writes
// to x0 are silently dropped, matching the architecture.
func WriteXReg(idx int, value uint64) {
	sysCPU.setReg(uint32(idx), value)
}

// ReadFReg returns the raw 64-bit bit pattern held in floating-point
// register idx (0-31); there is no FP arithmetic to interpret it with.
func ReadFReg(idx int) uint64 {
	return sysCPU.freg[idx&31]
}

// WriteFReg deposits a raw 64-bit bit pattern into floating-point
// register idx (0-31).
func WriteFReg(idx int, value uint64) {
	sysCPU.freg[idx&31] = value
}

// ReadCSR returns the raw value at CSR address addr (0-4095),
// projecting sstatus/sie/sip the same way the executors see them.
func ReadCSR(addr uint32) uint64 {
	return sysCPU.csr.Read(addr)
}

// WriteCSR deposits value into CSR address addr (0-4095).
func WriteCSR(addr uint32, value uint64) {
	sysCPU.csr.Write(addr, value)
}

// ReadMemory reads size bits (8/16/32/64) from physical address addr
// on the bus, bypassing the Sv39 MMU (a monitor examines physical
// memory directly, the way a debugger would).
func ReadMemory(addr uint64, size int) (uint64, bool) {
	return sysCPU.bus.Load(addr, size)
}

// WriteMemory deposits value into size bits (8/16/32/64) of physical
// address addr on the bus.
func WriteMemory(addr uint64, size int, value uint64) bool {
	return sysCPU.bus.Store(addr, size, value)
}

// PrivMode returns the hart's current privilege mode.
func PrivMode() Mode {
	return sysCPU.mode
}

// ModeName renders a privilege mode the way the monitor prints it.
func ModeName(mode Mode) string {
	switch mode {
	case User:
		return "user"
	case Supervisor:
		return "supervisor"
	case Machine:
		return "machine"
	default:
		return "unknown"
	}
}
