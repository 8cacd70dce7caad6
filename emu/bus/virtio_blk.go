/*
   RV64 - virtio-blk (legacy MMIO transport) block device.

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

import (
	"os"
)

// virtio-mmio (legacy, version 1) register offsets this subset
// implements. Feature negotiation always reports zero optional
// features: the disk backend is a flat sequential file. Only the read
// (IN) and write (OUT) request types are serviced; any other type,
// flush included, completes with the unsupported status.
const (
	vmagicValue      = 0x000
	vversion         = 0x004
	vdeviceID        = 0x008
	vvendorID        = 0x00c
	vdeviceFeatures  = 0x010
	vdriverFeatures  = 0x020
	vqueueSel        = 0x030
	vqueueNumMax     = 0x034
	vqueueNum        = 0x038
	vqueueAlign      = 0x03c
	vqueuePFN        = 0x040
	vqueueNotify     = 0x050
	vinterruptStatus = 0x060
	vinterruptACK    = 0x064
	vstatus          = 0x070
)

const (
	virtioMagic   = 0x74726976 // "virt"
	virtioVersion = 1
	virtioBlkID   = 2
	pageSize      = 4096
	sectorSize    = 512
)

const (
	vringDescSize = 16
	vringAvailHdr = 4
	vringUsedHdr  = 4
)

// Descriptor flags.
const (
	vringDescFNext  = 1
	vringDescFWrite = 2
)

// Request types (struct virtio_blk_req).
const (
	vreqIn  = 0 // read
	vreqOut = 1 // write
)

// VirtioBlk is a minimal legacy-MMIO virtio-blk device: one
// virtqueue, processed synchronously and entirely on QueueNotify
// (there is no asynchronous completion model here — spec.md's
// single-threaded cooperative tick has no room for one).
type VirtioBlk struct {
	image *os.File
	size  int64

	mem *Bus // guest physical memory the descriptor rings live in

	deviceFeatures uint32
	driverFeatures uint32
	queueSel       uint32
	queueNum       uint32
	queueAlign     uint32
	queuePFN       uint32
	status         uint32
	irqStatus      uint32
}

// NewVirtioBlk opens (or creates) image as the backing disk file.
func NewVirtioBlk(imagePath string) (*VirtioBlk, error) {
	f, err := os.OpenFile(imagePath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &VirtioBlk{image: f, size: info.Size(), queueAlign: pageSize}, nil
}

// BindMemory gives the device access to guest physical memory so it
// can walk virtqueue descriptor chains. Called once after the bus and
// all of DRAM are constructed.
func (v *VirtioBlk) BindMemory(mem *Bus) {
	v.mem = mem
}

func (v *VirtioBlk) Load(addr uint64, size int) (uint64, bool) {
	if size != 32 {
		return 0, false
	}
	switch addr {
	case vmagicValue:
		return virtioMagic, true
	case vversion:
		return virtioVersion, true
	case vdeviceID:
		return virtioBlkID, true
	case vvendorID:
		return 0x52435746, true // "RCWF"
	case vdeviceFeatures:
		return uint64(v.deviceFeatures), true
	case vqueueNumMax:
		return 1024, true
	case vqueuePFN:
		return uint64(v.queuePFN), true
	case vinterruptStatus:
		return uint64(v.irqStatus), true
	case vstatus:
		return uint64(v.status), true
	default:
		return 0, true
	}
}

func (v *VirtioBlk) Store(addr uint64, size int, value uint64) bool {
	if size != 32 {
		return false
	}
	switch addr {
	case vdriverFeatures:
		v.driverFeatures = uint32(value)
	case vqueueSel:
		v.queueSel = uint32(value)
	case vqueueNum:
		v.queueNum = uint32(value)
	case vqueueAlign:
		v.queueAlign = uint32(value)
	case vqueuePFN:
		v.queuePFN = uint32(value)
	case vqueueNotify:
		v.processQueue()
	case vinterruptACK:
		v.irqStatus &^= uint32(value)
	case vstatus:
		v.status = uint32(value)
	}
	return true
}

func (v *VirtioBlk) Tick() {}

// IRQPending reports whether a used-ring interrupt is outstanding.
func (v *VirtioBlk) IRQPending() bool {
	return v.irqStatus != 0
}

func (v *VirtioBlk) readGuest32(addr uint64) uint32 {
	val, _ := v.mem.Load(addr, 32)
	return uint32(val)
}

func (v *VirtioBlk) readGuest16(addr uint64) uint16 {
	val, _ := v.mem.Load(addr, 16)
	return uint16(val)
}

func (v *VirtioBlk) readGuest64(addr uint64) uint64 {
	val, _ := v.mem.Load(addr, 64)
	return val
}

// processQueue walks every new entry in the avail ring since the last
// notify, reads each descriptor chain, and performs one block request
// per chain: header, data buffer, one-byte status.
func (v *VirtioBlk) processQueue() {
	if v.mem == nil || v.queuePFN == 0 {
		return
	}
	descBase := uint64(v.queuePFN) * pageSize
	availBase := descBase + uint64(v.queueNum)*vringDescSize
	usedBase := (availBase + vringAvailHdr + uint64(v.queueNum)*2 + v.alignPad(availBase))

	availIdx := v.readGuest16(availBase + 2)
	for i := uint16(0); i < availIdx; i++ {
		head := v.readGuest16(availBase + vringAvailHdr + uint64(i)*2)
		v.serviceChain(descBase, uint32(head))
	}
	usedIdx := v.readGuest16(usedBase + 2)
	_ = usedIdx
	v.irqStatus |= 1
}

func (v *VirtioBlk) alignPad(availBase uint64) uint64 {
	align := uint64(v.queueAlign)
	if align == 0 {
		return 0
	}
	rem := availBase % align
	if rem == 0 {
		return 0
	}
	return align - rem
}

// serviceChain walks one descriptor chain starting at head: request
// header (type/sector), data buffer, status byte.
func (v *VirtioBlk) serviceChain(descBase uint64, head uint32) {
	idx := head
	var reqType uint32
	var sector uint64
	var dataAddr uint64
	var dataLen uint32
	var dataWrite bool
	var statusAddr uint64

	step := 0
	for {
		entry := descBase + uint64(idx)*vringDescSize
		addr := v.readGuest64(entry)
		length := v.readGuest32(entry + 8)
		flags := v.readGuest16(entry + 12)
		next := v.readGuest16(entry + 14)

		switch step {
		case 0:
			reqType = v.readGuest32(addr)
			sector = v.readGuest64(addr + 8)
		case 1:
			dataAddr = addr
			dataLen = length
			dataWrite = flags&vringDescFWrite != 0
		default:
			statusAddr = addr
		}
		step++
		if flags&vringDescFNext == 0 {
			break
		}
		idx = uint32(next)
	}

	status := byte(0)
	offset := int64(sector) * sectorSize
	switch reqType {
	case vreqIn:
		buf := make([]byte, dataLen)
		if _, err := v.image.ReadAt(buf, offset); err != nil {
			status = 1
		} else {
			for i, b := range buf {
				v.mem.Store(dataAddr+uint64(i), 8, uint64(b))
			}
		}
	case vreqOut:
		buf := make([]byte, dataLen)
		for i := range buf {
			val, _ := v.mem.Load(dataAddr+uint64(i), 8)
			buf[i] = byte(val)
		}
		if _, err := v.image.WriteAt(buf, offset); err != nil {
			status = 1
		}
	default:
		status = 2 // unsupported
	}
	_ = dataWrite
	v.mem.Store(statusAddr, 8, uint64(status))
}
