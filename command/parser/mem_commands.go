/*
 * RV64 - Examine/deposit command implementations.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cpu "github.com/rcornwell/rv64emu/emu/cpu"
	"github.com/rcornwell/rv64emu/emu/csr"
	master "github.com/rcornwell/rv64emu/emu/master"
)

// csrNames maps the mnemonics a human types at the monitor to CSR
// addresses; anything not listed here can still be reached by its
// raw hex address.
var csrNames = map[string]uint32{
	"sstatus": csr.Sstatus,
	"sie":     csr.Sie,
	"stvec":   csr.Stvec,
	"sepc":    csr.Sepc,
	"scause":  csr.Scause,
	"stval":   csr.Stval,
	"sip":     csr.Sip,
	"satp":    csr.Satp,
	"mstatus": csr.Mstatus,
	"misa":    csr.Misa,
	"medeleg": csr.Medeleg,
	"mideleg": csr.Mideleg,
	"mie":     csr.Mie,
	"mtvec":   csr.Mtvec,
	"mepc":    csr.Mepc,
	"mcause":  csr.Mcause,
	"mtval":   csr.Mtval,
	"mip":     csr.Mip,
	"mhartid": csr.Mhartid,
	"cycle":   csr.Cycle,
	"time":    csr.Time,
	"instret": csr.Instret,
}

// target identifies what an examine/deposit command names: an integer
// register, an FP register, a CSR, the PC, or a physical memory
// address with an access width.
type target struct {
	kind string // "xreg", "freg", "csr", "pc", "mem"
	reg  int
	csr  uint32
	addr uint64
	size int // bits, for mem targets
}

func parseTarget(word string) (target, error) {
	if word == "" {
		return target{}, errors.New("missing address")
	}
	lower := strings.ToLower(word)

	if lower == "pc" {
		return target{kind: "pc"}, nil
	}

	if len(lower) >= 2 && lower[0] == 'x' {
		if n, err := strconv.Atoi(lower[1:]); err == nil && n >= 0 && n <= 31 {
			return target{kind: "xreg", reg: n}, nil
		}
	}
	if len(lower) >= 2 && lower[0] == 'f' {
		if n, err := strconv.Atoi(lower[1:]); err == nil && n >= 0 && n <= 31 {
			return target{kind: "freg", reg: n}, nil
		}
	}
	if addr, ok := csrNames[lower]; ok {
		return target{kind: "csr", csr: addr}, nil
	}
	if strings.HasPrefix(lower, "csr:") {
		n, err := strconv.ParseUint(strings.TrimPrefix(lower, "csr:"), 16, 32)
		if err != nil {
			return target{}, errors.New("bad CSR address: " + word)
		}
		return target{kind: "csr", csr: uint32(n)}, nil
	}

	size := 64
	switch {
	case strings.HasSuffix(lower, ".b"):
		size, lower = 8, strings.TrimSuffix(lower, ".b")
	case strings.HasSuffix(lower, ".h"):
		size, lower = 16, strings.TrimSuffix(lower, ".h")
	case strings.HasSuffix(lower, ".w"):
		size, lower = 32, strings.TrimSuffix(lower, ".w")
	case strings.HasSuffix(lower, ".d"):
		size, lower = 64, strings.TrimSuffix(lower, ".d")
	}
	lower = strings.TrimPrefix(lower, "0x")
	addr, err := strconv.ParseUint(lower, 16, 64)
	if err != nil {
		return target{}, errors.New("bad address: " + word)
	}
	return target{kind: "mem", addr: addr, size: size}, nil
}

// examine prints the current value of a register, CSR, or memory
// location.
func examine(line *cmdLine, _ chan master.Packet) (bool, error) {
	word := line.getWord(false)
	t, err := parseTarget(word)
	if err != nil {
		return false, err
	}

	switch t.kind {
	case "pc":
		fmt.Printf("PC = %#016x\n", cpu.PC())
	case "xreg":
		fmt.Printf("x%-2d = %#016x\n", t.reg, cpu.ReadXReg(t.reg))
	case "freg":
		fmt.Printf("f%-2d = %#016x\n", t.reg, cpu.ReadFReg(t.reg))
	case "csr":
		fmt.Printf("csr %#03x = %#016x\n", t.csr, cpu.ReadCSR(t.csr))
	case "mem":
		value, ok := cpu.ReadMemory(t.addr, t.size)
		if !ok {
			return false, errors.New("memory read fault at " + word)
		}
		fmt.Printf("%#010x = %#x\n", t.addr, value)
	}
	return false, nil
}

// deposit writes a value into a register, CSR, or memory location.
func deposit(line *cmdLine, _ chan master.Packet) (bool, error) {
	word := line.getWord(false)
	t, err := parseTarget(word)
	if err != nil {
		return false, err
	}

	valWord := line.getWord(false)
	value, err := strconv.ParseUint(strings.TrimPrefix(valWord, "0x"), 16, 64)
	if err != nil {
		return false, errors.New("bad value: " + valWord)
	}

	switch t.kind {
	case "pc":
		return false, errors.New("PC can only be set via ipl")
	case "xreg":
		cpu.WriteXReg(t.reg, value)
	case "freg":
		cpu.WriteFReg(t.reg, value)
	case "csr":
		cpu.WriteCSR(t.csr, value)
	case "mem":
		if !cpu.WriteMemory(t.addr, t.size, value) {
			return false, errors.New("memory write fault at " + word)
		}
	}
	return false, nil
}

func start(_ *cmdLine, m chan master.Packet) (bool, error) {
	m <- master.Packet{Msg: master.Start}
	return false, nil
}

func cont(_ *cmdLine, m chan master.Packet) (bool, error) {
	m <- master.Packet{Msg: master.Start}
	return false, nil
}

func stop(_ *cmdLine, m chan master.Packet) (bool, error) {
	m <- master.Packet{Msg: master.Stop}
	return false, nil
}

// ipl resets the hart and starts it fetching from the given boot
// address (or the configured default if none is given).
func ipl(line *cmdLine, m chan master.Packet) (bool, error) {
	word := line.getWord(false)
	var sel uint16
	if word != "" {
		n, err := strconv.ParseUint(strings.TrimPrefix(word, "0x"), 16, 16)
		if err != nil {
			return false, errors.New("bad boot selector: " + word)
		}
		sel = uint16(n)
	}
	m <- master.Packet{Msg: master.IPLdevice, DevNum: sel}
	return false, nil
}

func quit(_ *cmdLine, _ chan master.Packet) (bool, error) {
	return true, nil
}
