/*
   RV64 - Memory-mapped bus.

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

// Package bus implements the flat physical-address space the hart's
// MMU resolves virtual addresses into: boot ROM, DRAM, CLINT, PLIC,
// UART, and virtio-block regions, each reachable through the Device
// interface below.
package bus

import "log/slog"

// Device is anything mapped into the physical address space. Size is
// in bits (8/16/32/64). A device reports an access fault through ok;
// the bus never panics on a bad access, it turns it into a fault the
// trap engine can deliver.
type Device interface {
	Load(addr uint64, size int) (value uint64, ok bool)
	Store(addr uint64, size int, value uint64) (ok bool)
	// Tick advances any internal timers/state by one hart cycle.
	Tick()
}

// region is one mapped span of the address space.
type region struct {
	base uint64
	size uint64
	dev  Device
	name string
}

// Bus routes physical loads/stores to the device owning the address
// range, and ticks every mapped device once per hart cycle.
type Bus struct {
	regions []region
	log     *slog.Logger
}

// New returns an empty bus. Devices are attached with Map.
func New(log *slog.Logger) *Bus {
	return &Bus{log: log}
}

// Map attaches dev at [base, base+size). Overlapping regions are a
// configuration bug and panic at startup, not at runtime.
func (b *Bus) Map(name string, base, size uint64, dev Device) {
	for _, r := range b.regions {
		if base < r.base+r.size && r.base < base+size {
			panic("bus: region " + name + " overlaps " + r.name)
		}
	}
	b.regions = append(b.regions, region{base: base, size: size, dev: dev, name: name})
}

func (b *Bus) find(addr uint64) *region {
	for i := range b.regions {
		r := &b.regions[i]
		if addr >= r.base && addr < r.base+r.size {
			return r
		}
	}
	return nil
}

// Load reads size bits (8/16/32/64) from physical address addr. ok is
// false when no device is mapped there, or the device itself refuses
// the access (e.g. misaligned MMIO register).
func (b *Bus) Load(addr uint64, size int) (uint64, bool) {
	r := b.find(addr)
	if r == nil {
		if b.log != nil {
			b.log.Debug("bus load: unmapped address", "addr", addr)
		}
		return 0, false
	}
	return r.dev.Load(addr-r.base, size)
}

// Store writes size bits of value to physical address addr.
func (b *Bus) Store(addr uint64, size int, value uint64) bool {
	r := b.find(addr)
	if r == nil {
		if b.log != nil {
			b.log.Debug("bus store: unmapped address", "addr", addr)
		}
		return false
	}
	return r.dev.Store(addr-r.base, size, value)
}

// Tick advances every mapped device by one hart cycle.
func (b *Bus) Tick() {
	for i := range b.regions {
		b.regions[i].dev.Tick()
	}
}
