/*
   RV64 - Platform-Level Interrupt Controller (single S-mode context
   subset).

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

// maxSources is small: this emulator's device set (UART, virtio
// block) needs only a handful of interrupt lines, not the hundreds a
// real platform PLIC supports.
const maxSources = 32

const (
	plicPriorityBase = 0x000000
	plicPendingBase  = 0x001000
	plicEnableBase   = 0x002000 // one context: S-mode
	plicCtxBase      = 0x201000
)

// PLIC routes level-triggered device IRQ lines into the single
// supervisor-external-interrupt line the CSR file exposes, using
// fixed priority order (lowest source number wins ties), matching the
// priority-scan idiom the teacher's channel subsystem used for device
// selection.
type PLIC struct {
	priority [maxSources]uint32
	pending  [maxSources]bool
	enable   uint32 // bit i = source i enabled for the S-mode context
	threshold uint32
	claimed  uint32 // source currently claimed, 0 = none
}

// NewPLIC returns a PLIC with nothing pending or enabled.
func NewPLIC() *PLIC {
	return &PLIC{}
}

// SetLevel raises or lowers the level-triggered input for source
// (1-based; 0 is reserved meaning "no interrupt" per the PLIC spec).
func (p *PLIC) SetLevel(source uint32, level bool) {
	if source == 0 || int(source) >= maxSources {
		return
	}
	p.pending[source] = level
}

// Pending reports whether any enabled source with a priority above the
// current threshold is waiting to be claimed.
func (p *PLIC) Pending() bool {
	return p.highestPending() != 0
}

func (p *PLIC) highestPending() uint32 {
	best := uint32(0)
	bestPrio := p.threshold
	for i := 1; i < maxSources; i++ {
		if !p.pending[i] || p.enable&(1<<uint(i)) == 0 {
			continue
		}
		if p.priority[i] > bestPrio {
			bestPrio = p.priority[i]
			best = uint32(i)
		}
	}
	return best
}

func (p *PLIC) Load(addr uint64, size int) (uint64, bool) {
	if size != 32 {
		return 0, false
	}
	switch {
	case addr >= plicPriorityBase && addr < plicPriorityBase+4*maxSources:
		return uint64(p.priority[addr/4]), true
	case addr == plicPendingBase:
		var v uint32
		for i := 1; i < maxSources; i++ {
			if p.pending[i] {
				v |= 1 << uint(i)
			}
		}
		return uint64(v), true
	case addr == plicEnableBase:
		return uint64(p.enable), true
	case addr == plicCtxBase:
		return uint64(p.threshold), true
	case addr == plicCtxBase+4:
		source := p.highestPending()
		if source != 0 {
			p.pending[source] = false
			p.claimed = source
		}
		return uint64(source), true
	default:
		return 0, false
	}
}

func (p *PLIC) Store(addr uint64, size int, value uint64) bool {
	if size != 32 {
		return false
	}
	switch {
	case addr >= plicPriorityBase && addr < plicPriorityBase+4*maxSources:
		p.priority[addr/4] = uint32(value)
		return true
	case addr == plicEnableBase:
		p.enable = uint32(value)
		return true
	case addr == plicCtxBase:
		p.threshold = uint32(value)
		return true
	case addr == plicCtxBase+4:
		if uint32(value) == p.claimed {
			p.claimed = 0
		}
		return true
	default:
		return false
	}
}

func (p *PLIC) Tick() {}
