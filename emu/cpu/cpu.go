/*
   CPU: main CPU instruction fetch and execute.

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

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	config "github.com/rcornwell/rv64emu/config/configparser"
	"github.com/rcornwell/rv64emu/emu/bus"
	"github.com/rcornwell/rv64emu/emu/csr"
)

const (
	defaultMemSizeK = 128 * 1024 // 128 MiB
	resetVector     = 0x1000     // boot ROM base; first instruction fetched after reset
	romSize         = 0x1000
	dramBase        = 0x80000000
	clintBase       = 0x02000000
	clintSize       = 0x10000
	plicBase        = 0x0c000000
	plicSize        = 0x04000000
	uartBase        = 0x10000000
	uartSize        = 0x100
	virtioBase      = 0x10001000
	virtioSize      = 0x1000

	uartIRQ   = 1
	virtioIRQ = 2
)

var (
	firmwarePath  string
	diskImagePath string
	bootAddr      uint64 = resetVector
	memSizeK      int
)

// register devices and options on initialize.
func init() {
	memSizeK = defaultMemSizeK
	config.RegisterOption("MEM", setMemSize)
	config.RegisterOption("BOOTADDR", setBootAddr)
	config.RegisterFile("FIRMWARE", setFirmware)
	config.RegisterFile("FSIMAGE", setDiskImage)
}

// Set size of memory in KiB. A bare number or a trailing K is taken as
// KiB; a trailing M scales it by 1024.
func setMemSize(_ uint16, number string, _ []config.Option) error {
	number = strings.ToUpper(number)
	mult := 1
	switch {
	case strings.HasSuffix(number, "M"):
		mult = 1024
		number = strings.TrimSuffix(number, "M")
	case strings.HasSuffix(number, "K"):
		number = strings.TrimSuffix(number, "K")
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return errors.New("MEM: invalid size: " + number)
	}
	memSizeK = n * mult
	return nil
}

// Set the address the hart fetches its first instruction from.
func setBootAddr(_ uint16, value string, _ []config.Option) error {
	n, err := strconv.ParseUint(strings.TrimPrefix(value, "0x"), 16, 64)
	if err != nil {
		return errors.New("BOOTADDR: invalid address: " + value)
	}
	bootAddr = n
	return nil
}

func setFirmware(_ uint16, value string, _ []config.Option) error {
	firmwarePath = value
	return nil
}

func setDiskImage(_ uint16, value string, _ []config.Option) error {
	diskImagePath = value
	return nil
}

var (
	theUART   *bus.UART
	theVirtio *bus.VirtioBlk
)

// InitializeCPU constructs the bus, maps every device, loads firmware
// if configured, and resets the hart to its power-on state. It must
// run once before the first CycleCPU call.
func InitializeCPU() {
	sysCPU = cpuState{}
	sysCPU.csr = csr.New()
	sysCPU.reservation = NoReservation

	b := bus.New(slog.Default())

	rom := bus.NewROM(nil, romSize)
	b.Map("rom", resetVector, romSize, rom)

	sizeBytes := uint64(memSizeK) * 1024
	dram := bus.NewDRAM(sizeBytes)
	b.Map("dram", dramBase, sizeBytes, dram)

	clint := bus.NewCLINT()
	b.Map("clint", clintBase, clintSize, clint)

	plic := bus.NewPLIC()
	b.Map("plic", plicBase, plicSize, plic)

	theUART = bus.NewUART()
	b.Map("uart0", uartBase, uartSize, theUART)

	if diskImagePath != "" {
		vb, err := bus.NewVirtioBlk(diskImagePath)
		if err != nil {
			slog.Error("virtio-blk: " + err.Error())
		} else {
			vb.BindMemory(b)
			theVirtio = vb
			b.Map("virtio0", virtioBase, virtioSize, vb)
		}
	}

	sysCPU.bus = b
	sysCPU.clint = clint
	sysCPU.plic = plic

	if firmwarePath != "" {
		if image, err := os.ReadFile(firmwarePath); err == nil {
			copy(dram.Image(), image)
		} else {
			slog.Error("firmware: " + err.Error())
		}
	}

	sysCPU.mode = Machine
	sysCPU.pc = bootAddr
	sysCPU.xreg[2] = dramBase + sizeBytes
	sysCPU.memSizeK = memSizeK
}

// SetTod has nothing to do for this architecture: the time CSR starts
// at zero and free-runs from reset, there is no wall-clock TOD to
// seed.
func SetTod() {}

// UpdateTimer is a no-op: CLINT's mtime and the CSR time counter both
// advance once per CycleCPU tick already.
func UpdateTimer() {}

// PostExtIrq re-samples the PLIC and UART/virtio IRQ lines into
// mip.SEIP (and the CLINT into mip.MTIP/MSIP). The core driver calls this after an external event (e.g.
// a telnet byte arriving) so the next cycle sees it without waiting
// for the next poll.
func PostExtIrq() {
	sysCPU.pollExternalIRQ()
}

func (cpu *cpuState) pollExternalIRQ() {
	if theUART != nil && theUART.IRQPending() {
		cpu.plic.SetLevel(uartIRQ, true)
	}
	if theVirtio != nil && theVirtio.IRQPending() {
		cpu.plic.SetLevel(virtioIRQ, true)
	}
	if cpu.plic.Pending() {
		cpu.csr.SetBits(csr.Mip, csr.MipSEIP)
	} else {
		cpu.csr.ClearBits(csr.Mip, csr.MipSEIP)
	}
	if cpu.clint.TimerPending() {
		cpu.csr.SetBits(csr.Mip, csr.MipMTIP)
	} else {
		cpu.csr.ClearBits(csr.Mip, csr.MipMTIP)
	}
	if cpu.clint.SoftwarePending() {
		cpu.csr.SetBits(csr.Mip, csr.MipMSIP)
	} else {
		cpu.csr.ClearBits(csr.Mip, csr.MipMSIP)
	}
}

// PC returns the hart's current program counter, for the monitor's
// examine command.
func PC() uint64 {
	return sysCPU.pc
}

// IPLDevice resets the hart to start fetching from sel (the RV64
// analogue of the teacher's IPL-device selection is a boot-address
// override) and clears all other architectural state.
func IPLDevice(sel uint16) error {
	b := sysCPU.bus
	clint := sysCPU.clint
	plic := sysCPU.plic
	sysCPU = cpuState{}
	sysCPU.csr = csr.New()
	sysCPU.reservation = NoReservation
	sysCPU.bus = b
	sysCPU.clint = clint
	sysCPU.plic = plic
	sysCPU.mode = Machine
	if sel != 0 {
		sysCPU.pc = uint64(sel)
	} else {
		sysCPU.pc = bootAddr
	}
	IPLDev = sel
	return nil
}

// Shutdown tears down anything holding host resources (the UART's raw
// terminal mode).
func Shutdown() {
	if theUART != nil {
		theUART.Restore()
	}
}

// AttachConsole switches the guest console from the host terminal to
// a telnet connection, called by emu/core on a master.TelConnect
// packet.
func AttachConsole(conn net.Conn) {
	if theUART != nil {
		theUART.Attach(conn)
	}
}

// DetachConsole reverts the guest console to the host terminal,
// called on a master.TelDisconnect packet.
func DetachConsole() {
	if theUART != nil {
		theUART.Detach()
	}
}

// FeedConsole queues bytes read off a telnet connection for the guest
// to receive, called on a master.TelReceive packet.
func FeedConsole(data []byte) {
	if theUART != nil {
		theUART.Feed(data)
	}
}

// CycleCPU advances the hart by exactly one instruction (or one
// trap), ticks every mapped device once, and reports how many cycles
// were consumed (always 1 — there is no pipelining or superscalar
// issue to model) along with whether the core should keep calling it.
func CycleCPU() (int, bool) {
	sysCPU.csr.Tick()
	sysCPU.bus.Tick()
	sysCPU.pollExternalIRQ()
	sysCPU.step()
	return 1, true
}

// step implements the fetch/decode/execute/trap pipeline for a single
// instruction slot: interrupts are sampled first (so a pending
// interrupt preempts the next instruction rather than racing it),
// then fetch, decode, execute, and finally exception delivery if the
// decode or execute stage raised one.
func (cpu *cpuState) step() {
	if cause, ok := cpu.pendingInterrupt(); ok {
		cpu.handleInterrupt(cause)
		return
	}

	cpu.curPC = cpu.pc
	if !cpu.fetch() {
		cpu.handleException()
		return
	}

	cpu.instr.exec(cpu)

	if cpu.exc.kind != NoException {
		cpu.handleException()
	}
}

// fetch reads the instruction at cpu.curPC, decodes it, and advances
// cpu.pc past it. It returns false with cpu.exc populated on a fetch
// fault or illegal encoding.
func (cpu *cpuState) fetch() bool {
	if cpu.curPC&1 != 0 {
		cpu.exc.kind = InstructionAddressMisaligned
		cpu.exc.value = cpu.curPC
		return false
	}

	low, ok := cpu.fetchMem(cpu.curPC)
	if !ok {
		return false
	}

	if low&0x3 != 0x3 {
		cpu.len = 2
		cpu.pc = cpu.curPC + 2
		return cpu.decodeCompressed(low)
	}

	high, ok := cpu.fetchMem(cpu.curPC + 2)
	if !ok {
		return false
	}
	word := uint32(low) | uint32(high)<<16
	cpu.len = 4
	cpu.pc = cpu.curPC + 4
	return cpu.decodeStandard(word)
}
