/*
   RV64 - Boot ROM device.

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

// ROM is a read-only region, typically holding the first-stage boot
// loader that reset starts from.
type ROM struct {
	mem []byte
}

// NewROM copies image into a fixed-size ROM, padding with zero up to
// sizeBytes if image is shorter.
func NewROM(image []byte, sizeBytes uint64) *ROM {
	r := &ROM{mem: make([]byte, sizeBytes)}
	copy(r.mem, image)
	return r
}

func (r *ROM) Load(addr uint64, size int) (uint64, bool) {
	n := uint64(size / 8)
	if addr+n > uint64(len(r.mem)) {
		return 0, false
	}
	switch size {
	case 8:
		return uint64(r.mem[addr]), true
	case 16:
		return uint64(binary.LittleEndian.Uint16(r.mem[addr:])), true
	case 32:
		return uint64(binary.LittleEndian.Uint32(r.mem[addr:])), true
	case 64:
		return binary.LittleEndian.Uint64(r.mem[addr:]), true
	default:
		return 0, false
	}
}

// Store always fails: ROM is read-only.
func (r *ROM) Store(addr uint64, size int, value uint64) bool {
	return false
}

func (r *ROM) Tick() {}
