/*
   RV64 - Flat DRAM device.

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

package bus

import "encoding/binary"

// DRAM is a flat byte-addressable memory region backed by a single
// fixed-size slice, little-endian, matching RV64GC's native endianness.
type DRAM struct {
	mem []byte
}

// NewDRAM allocates sizeBytes of zeroed memory.
func NewDRAM(sizeBytes uint64) *DRAM {
	return &DRAM{mem: make([]byte, sizeBytes)}
}

// Image returns the backing slice so firmware/disk loaders can fill it
// directly at startup.
func (d *DRAM) Image() []byte {
	return d.mem
}

func (d *DRAM) Load(addr uint64, size int) (uint64, bool) {
	n := uint64(size / 8)
	if addr+n > uint64(len(d.mem)) {
		return 0, false
	}
	switch size {
	case 8:
		return uint64(d.mem[addr]), true
	case 16:
		return uint64(binary.LittleEndian.Uint16(d.mem[addr:])), true
	case 32:
		return uint64(binary.LittleEndian.Uint32(d.mem[addr:])), true
	case 64:
		return binary.LittleEndian.Uint64(d.mem[addr:]), true
	default:
		return 0, false
	}
}

func (d *DRAM) Store(addr uint64, size int, value uint64) bool {
	n := uint64(size / 8)
	if addr+n > uint64(len(d.mem)) {
		return false
	}
	switch size {
	case 8:
		d.mem[addr] = byte(value)
	case 16:
		binary.LittleEndian.PutUint16(d.mem[addr:], uint16(value))
	case 32:
		binary.LittleEndian.PutUint32(d.mem[addr:], uint32(value))
	case 64:
		binary.LittleEndian.PutUint64(d.mem[addr:], value)
	default:
		return false
	}
	return true
}

func (d *DRAM) Tick() {}
