/*
   RV64 - Core Local Interruptor (CLINT): machine timer and software
   interrupts.

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

// CLINT implements the SiFive-style core-local interruptor subset a
// single-hart RV64 machine needs: one msip register, one 64-bit
// mtimecmp, and the free-running mtime counter. The hart polls
// TimerPending/SoftwarePending once per cycle rather than this device
// posting a signal, matching spec.md's single-threaded cooperative
// tick model.
type CLINT struct {
	msip     uint32
	mtimecmp uint64
	mtime    uint64
}

// NewCLINT returns a CLINT with mtimecmp at its reset value of
// all-ones, so the timer interrupt stays masked until software
// programs a comparator.
func NewCLINT() *CLINT {
	return &CLINT{mtimecmp: ^uint64(0)}
}

const (
	clintMSIP     = 0x0000
	clintMTimeCmp = 0x4000
	clintMTime    = 0xbff8
)

func (c *CLINT) Load(addr uint64, size int) (uint64, bool) {
	switch {
	case addr == clintMSIP && size == 32:
		return uint64(c.msip), true
	case addr == clintMTimeCmp && size == 64:
		return c.mtimecmp, true
	case addr == clintMTime && size == 64:
		return c.mtime, true
	default:
		return 0, false
	}
}

func (c *CLINT) Store(addr uint64, size int, value uint64) bool {
	switch {
	case addr == clintMSIP && size == 32:
		c.msip = uint32(value) & 1
		return true
	case addr == clintMTimeCmp && size == 64:
		c.mtimecmp = value
		return true
	case addr == clintMTime && size == 64:
		c.mtime = value
		return true
	default:
		return false
	}
}

// Tick advances the free-running mtime counter by one hart cycle.
func (c *CLINT) Tick() {
	c.mtime++
}

// TimerPending reports whether mtime has reached mtimecmp.
func (c *CLINT) TimerPending() bool {
	return c.mtime >= c.mtimecmp
}

// SoftwarePending reports whether msip's low bit is set.
func (c *CLINT) SoftwarePending() bool {
	return c.msip&1 != 0
}
