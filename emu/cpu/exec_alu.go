/*
   RV64 - Integer ALU executors (OP-IMM, OP, OP-IMM-32, OP-32, LUI,
   AUIPC, M-extension multiply/divide).

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

func execLui(cpu *cpuState) {
	cpu.setRd(uint64(cpu.instr.imm))
}

func execAuipc(cpu *cpuState) {
	cpu.setRd(cpu.curPC + uint64(cpu.instr.imm))
}

func execAddi(cpu *cpuState) {
	cpu.setRd(uint64(int64(cpu.rs1()) + cpu.instr.imm))
}

func execSlti(cpu *cpuState) {
	if int64(cpu.rs1()) < cpu.instr.imm {
		cpu.setRd(1)
	} else {
		cpu.setRd(0)
	}
}

func execSltiu(cpu *cpuState) {
	if cpu.rs1() < uint64(cpu.instr.imm) {
		cpu.setRd(1)
	} else {
		cpu.setRd(0)
	}
}

func execXori(cpu *cpuState) { cpu.setRd(cpu.rs1() ^ uint64(cpu.instr.imm)) }
func execOri(cpu *cpuState)  { cpu.setRd(cpu.rs1() | uint64(cpu.instr.imm)) }
func execAndi(cpu *cpuState) { cpu.setRd(cpu.rs1() & uint64(cpu.instr.imm)) }

func execSlli(cpu *cpuState) { cpu.setRd(cpu.rs1() << uint(cpu.instr.imm&0x3f)) }
func execSrli(cpu *cpuState) { cpu.setRd(cpu.rs1() >> uint(cpu.instr.imm&0x3f)) }
func execSrai(cpu *cpuState) { cpu.setRd(uint64(int64(cpu.rs1()) >> uint(cpu.instr.imm&0x3f))) }

func execAdd(cpu *cpuState) { cpu.setRd(cpu.rs1() + cpu.rs2()) }
func execSub(cpu *cpuState) { cpu.setRd(cpu.rs1() - cpu.rs2()) }
func execSll(cpu *cpuState) { cpu.setRd(cpu.rs1() << uint(cpu.rs2()&0x3f)) }
func execSlt(cpu *cpuState) {
	if int64(cpu.rs1()) < int64(cpu.rs2()) {
		cpu.setRd(1)
	} else {
		cpu.setRd(0)
	}
}
func execSltu(cpu *cpuState) {
	if cpu.rs1() < cpu.rs2() {
		cpu.setRd(1)
	} else {
		cpu.setRd(0)
	}
}
func execXor(cpu *cpuState) { cpu.setRd(cpu.rs1() ^ cpu.rs2()) }
func execSrl(cpu *cpuState) { cpu.setRd(cpu.rs1() >> uint(cpu.rs2()&0x3f)) }
func execSra(cpu *cpuState) { cpu.setRd(uint64(int64(cpu.rs1()) >> uint(cpu.rs2()&0x3f))) }
func execOr(cpu *cpuState)  { cpu.setRd(cpu.rs1() | cpu.rs2()) }
func execAnd(cpu *cpuState) { cpu.setRd(cpu.rs1() & cpu.rs2()) }

func sext32(v uint32) uint64 { return uint64(int64(int32(v))) }

func execAddiw(cpu *cpuState) {
	cpu.setRd(sext32(uint32(int32(cpu.rs1()) + int32(cpu.instr.imm))))
}
func execSlliw(cpu *cpuState) {
	cpu.setRd(sext32(uint32(cpu.rs1()) << uint(cpu.instr.imm&0x1f)))
}
func execSrliw(cpu *cpuState) {
	cpu.setRd(sext32(uint32(cpu.rs1()) >> uint(cpu.instr.imm&0x1f)))
}
func execSraiw(cpu *cpuState) {
	cpu.setRd(sext32(uint32(int32(uint32(cpu.rs1())) >> uint(cpu.instr.imm&0x1f))))
}

func execAddw(cpu *cpuState) { cpu.setRd(sext32(uint32(cpu.rs1()) + uint32(cpu.rs2()))) }
func execSubw(cpu *cpuState) { cpu.setRd(sext32(uint32(cpu.rs1()) - uint32(cpu.rs2()))) }
func execSllw(cpu *cpuState) {
	cpu.setRd(sext32(uint32(cpu.rs1()) << uint(cpu.rs2()&0x1f)))
}
func execSrlw(cpu *cpuState) {
	cpu.setRd(sext32(uint32(cpu.rs1()) >> uint(cpu.rs2()&0x1f)))
}
func execSraw(cpu *cpuState) {
	cpu.setRd(sext32(uint32(int32(uint32(cpu.rs1())) >> uint(cpu.rs2()&0x1f))))
}

// --- M extension -----------------------------------------------------

func execMul(cpu *cpuState) { cpu.setRd(cpu.rs1() * cpu.rs2()) }

func execMulh(cpu *cpuState) {
	hi, _ := mulh128(int64(cpu.rs1()), int64(cpu.rs2()))
	cpu.setRd(hi)
}

func execMulhsu(cpu *cpuState) {
	cpu.setRd(mulhsu(int64(cpu.rs1()), cpu.rs2()))
}

func execMulhu(cpu *cpuState) {
	hi, _ := bits128Mul(cpu.rs1(), cpu.rs2())
	cpu.setRd(hi)
}

// mulh128 returns the signed 128-bit product's high 64 bits of a*b.
func mulh128(a, b int64) (hi uint64, lo uint64) {
	negative := (a < 0) != (b < 0)
	ua, ub := uint64(a), uint64(b)
	if a < 0 {
		ua = uint64(-a)
	}
	if b < 0 {
		ub = uint64(-b)
	}
	h, l := bits128Mul(ua, ub)
	if negative {
		l = ^l + 1
		h = ^h
		if l == 0 {
			h++
		}
	}
	return h, l
}

func mulhsu(a int64, b uint64) uint64 {
	negative := a < 0
	ua := uint64(a)
	if negative {
		ua = uint64(-a)
	}
	h, l := bits128Mul(ua, b)
	if negative {
		l = ^l + 1
		h = ^h
		if l == 0 {
			h++
		}
	}
	return h
}

// bits128Mul multiplies two uint64s into a 128-bit result split hi:lo.
func bits128Mul(a, b uint64) (hi uint64, lo uint64) {
	const mask32 = 0xffffffff
	aLo, aHi := a&mask32, a>>32
	bLo, bHi := b&mask32, b>>32

	lowProd := aLo * bLo
	midA := aHi * bLo
	midB := aLo * bHi
	highProd := aHi * bHi

	mid := midA + midB
	carry := uint64(0)
	if mid < midA {
		carry = 1 << 32
	}

	lo = lowProd + (mid << 32)
	if lo < lowProd {
		carry++
	}
	hi = highProd + (mid >> 32) + carry
	return hi, lo
}

func execMulw(cpu *cpuState) {
	cpu.setRd(sext32(uint32(cpu.rs1()) * uint32(cpu.rs2())))
}

func execDiv(cpu *cpuState) {
	a, b := int64(cpu.rs1()), int64(cpu.rs2())
	switch {
	case b == 0:
		cpu.setRd(^uint64(0))
	case a == int64(-1<<63) && b == -1:
		cpu.setRd(uint64(a))
	default:
		cpu.setRd(uint64(a / b))
	}
}

func execDivu(cpu *cpuState) {
	a, b := cpu.rs1(), cpu.rs2()
	if b == 0 {
		cpu.setRd(^uint64(0))
		return
	}
	cpu.setRd(a / b)
}

func execRem(cpu *cpuState) {
	a, b := int64(cpu.rs1()), int64(cpu.rs2())
	switch {
	case b == 0:
		cpu.setRd(uint64(a))
	case a == int64(-1<<63) && b == -1:
		cpu.setRd(0)
	default:
		cpu.setRd(uint64(a % b))
	}
}

func execRemu(cpu *cpuState) {
	a, b := cpu.rs1(), cpu.rs2()
	if b == 0 {
		cpu.setRd(a)
		return
	}
	cpu.setRd(a % b)
}

func execDivw(cpu *cpuState) {
	a, b := int32(cpu.rs1()), int32(cpu.rs2())
	switch {
	case b == 0:
		cpu.setRd(^uint64(0))
	case a == int32(-1<<31) && b == -1:
		cpu.setRd(sext32(uint32(a)))
	default:
		cpu.setRd(sext32(uint32(a / b)))
	}
}

func execDivuw(cpu *cpuState) {
	a, b := uint32(cpu.rs1()), uint32(cpu.rs2())
	if b == 0 {
		cpu.setRd(^uint64(0))
		return
	}
	cpu.setRd(sext32(a / b))
}

func execRemw(cpu *cpuState) {
	a, b := int32(cpu.rs1()), int32(cpu.rs2())
	switch {
	case b == 0:
		cpu.setRd(sext32(uint32(a)))
	case a == int32(-1<<31) && b == -1:
		cpu.setRd(0)
	default:
		cpu.setRd(sext32(uint32(a % b)))
	}
}

// execRemuw always sign-extends its 32-bit result, even when the
// divisor is zero and the "remainder" is simply rs1's low word.
func execRemuw(cpu *cpuState) {
	a, b := uint32(cpu.rs1()), uint32(cpu.rs2())
	if b == 0 {
		cpu.setRd(sext32(a))
		return
	}
	cpu.setRd(sext32(a % b))
}
