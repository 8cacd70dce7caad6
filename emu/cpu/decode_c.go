/*
   RV64 - Compressed (C extension, 16-bit) instruction decoder.

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

// Compressed registers are a 3-bit field naming x8-x15.
func cReg(field uint32) uint32 { return field + 8 }

// decodeCompressed fills cpu.instr from a 16-bit instruction half and
// binds a leaf executor, reusing the standard-width executors wherever
// the compressed form is exactly equivalent to an expanded one (the
// C extension is defined as a lossless encoding of a subset of the
// base ISA, so this reuse is exact, not an approximation).
func (cpu *cpuState) decodeCompressed(half uint16) bool {
	cpu.instr = instr{}
	in := &cpu.instr
	in.raw = uint32(half)
	quadrant := half & 0x3
	funct3 := uint32(half>>13) & 0x7

	if half == 0 {
		return cpu.illegal() // all-zero is reserved, never a legal C.ADDI4SPN
	}

	switch quadrant {
	case 0:
		return cpu.decodeC0(half, funct3)
	case 1:
		return cpu.decodeC1(half, funct3)
	case 2:
		return cpu.decodeC2(half, funct3)
	default:
		return cpu.illegal()
	}
}

func (cpu *cpuState) decodeC0(half uint16, funct3 uint32) bool {
	in := &cpu.instr
	rdp := cReg(uint32(half>>2) & 0x7)
	rs1p := cReg(uint32(half>>7) & 0x7)

	switch funct3 {
	case 0x0: // C.ADDI4SPN
		nzuimm := ((uint32(half>>5) & 0x1) << 3) | ((uint32(half>>6) & 0x1) << 2) |
			((uint32(half>>7) & 0xf) << 6) | ((uint32(half>>11) & 0x3) << 4)
		if nzuimm == 0 {
			return cpu.illegal() // reserved encoding
		}
		in.rd = rdp
		in.rs1 = 2 // sp
		in.imm = int64(nzuimm)
		in.exec = execAddi
	case 0x3: // C.LD
		in.rd = rdp
		in.rs1 = rs1p
		in.imm = cLdImm(half)
		in.exec = execLd
	case 0x2: // C.LW
		in.rd = rdp
		in.rs1 = rs1p
		in.imm = cLwImm(half)
		in.exec = execLw
	case 0x7: // C.SD
		in.rs1 = rs1p
		in.rs2 = rdp
		in.imm = cLdImm(half)
		in.exec = execSd
	case 0x6: // C.SW
		in.rs1 = rs1p
		in.rs2 = rdp
		in.imm = cLwImm(half)
		in.exec = execSw
	default:
		return cpu.illegal()
	}
	return true
}

func cLwImm(half uint16) int64 {
	v := ((uint32(half>>6) & 0x1) << 2) | ((uint32(half>>10) & 0x7) << 3) | ((uint32(half>>5) & 0x1) << 6)
	return int64(v)
}

func cLdImm(half uint16) int64 {
	v := ((uint32(half>>10) & 0x7) << 3) | ((uint32(half>>5) & 0x3) << 6)
	return int64(v)
}

func (cpu *cpuState) decodeC1(half uint16, funct3 uint32) bool {
	in := &cpu.instr
	rd := uint32(half>>7) & 0x1f

	switch funct3 {
	case 0x0: // C.ADDI (rd=0 is C.NOP)
		in.rd = rd
		in.rs1 = rd
		in.imm = cImm6(half)
		in.exec = execAddi
	case 0x1: // C.ADDIW
		if rd == 0 {
			return cpu.illegal()
		}
		in.rd = rd
		in.rs1 = rd
		in.imm = cImm6(half)
		in.exec = execAddiw
	case 0x2: // C.LI
		in.rd = rd
		in.rs1 = 0
		in.imm = cImm6(half)
		in.exec = execAddi
	case 0x3:
		if rd == 2 { // C.ADDI16SP
			v := ((uint32(half>>6) & 0x1) << 4) | ((uint32(half>>2) & 0x1) << 5) |
				((uint32(half>>5) & 0x1) << 6) | ((uint32(half>>3) & 0x3) << 7) |
				((uint32(half>>12) & 0x1) << 9)
			imm := signExtend(uint64(v), 10)
			if imm == 0 {
				return cpu.illegal()
			}
			in.rd, in.rs1 = 2, 2
			in.imm = imm
			in.exec = execAddi
			return true
		}
		// C.LUI
		v := ((uint32(half>>2) & 0x1f) << 12) | ((uint32(half>>12) & 0x1) << 17)
		imm := signExtend(uint64(v), 18)
		if imm == 0 || rd == 0 {
			return cpu.illegal()
		}
		in.rd = rd
		in.imm = imm
		in.exec = execLui
	case 0x4:
		return cpu.decodeC1Alu(half)
	case 0x5: // C.J
		in.imm = cJImm(half)
		in.exec = execCJ
	case 0x6: // C.BEQZ
		in.rs1 = cReg(uint32(half>>7) & 0x7)
		in.imm = cBImm(half)
		in.exec = execCBeqz
	case 0x7: // C.BNEZ
		in.rs1 = cReg(uint32(half>>7) & 0x7)
		in.imm = cBImm(half)
		in.exec = execCBnez
	}
	return true
}

func cImm6(half uint16) int64 {
	v := (uint32(half>>2) & 0x1f) | ((uint32(half>>12) & 0x1) << 5)
	return signExtend(uint64(v), 6)
}

func cJImm(half uint16) int64 {
	v := ((uint32(half>>3) & 0x7) << 1) | ((uint32(half>>11) & 0x1) << 4) |
		((uint32(half>>2) & 0x1) << 5) | ((uint32(half>>7) & 0x1) << 6) |
		((uint32(half>>6) & 0x1) << 7) | ((uint32(half>>9) & 0x3) << 8) |
		((uint32(half>>8) & 0x1) << 10) | ((uint32(half>>12) & 0x1) << 11)
	return signExtend(uint64(v), 12)
}

func cBImm(half uint16) int64 {
	v := ((uint32(half>>3) & 0x3) << 1) | ((uint32(half>>10) & 0x3) << 3) |
		((uint32(half>>2) & 0x1) << 5) | ((uint32(half>>5) & 0x3) << 6) |
		((uint32(half>>12) & 0x1) << 8)
	return signExtend(uint64(v), 9)
}

func (cpu *cpuState) decodeC1Alu(half uint16) bool {
	in := &cpu.instr
	rdp := cReg(uint32(half>>7) & 0x7)
	sub := (half >> 10) & 0x3

	switch sub {
	case 0x0: // C.SRLI
		shamt := ((uint32(half>>2) & 0x1f) | ((uint32(half>>12) & 0x1) << 5))
		in.rd, in.rs1 = rdp, rdp
		in.imm = int64(shamt)
		in.exec = execSrli
	case 0x1: // C.SRAI
		shamt := ((uint32(half>>2) & 0x1f) | ((uint32(half>>12) & 0x1) << 5))
		in.rd, in.rs1 = rdp, rdp
		in.imm = int64(shamt)
		in.exec = execSrai
	case 0x2: // C.ANDI
		in.rd, in.rs1 = rdp, rdp
		in.imm = cImm6(half)
		in.exec = execAndi
	default: // sub == 0x3: register-register forms
		rs2p := cReg(uint32(half>>2) & 0x7)
		funct2 := (half >> 5) & 0x3
		wide := (half>>12)&0x1 != 0
		in.rd, in.rs1, in.rs2 = rdp, rdp, rs2p
		switch {
		case !wide && funct2 == 0x0:
			in.exec = execSub
		case !wide && funct2 == 0x1:
			in.exec = execXor
		case !wide && funct2 == 0x2:
			in.exec = execOr
		case !wide && funct2 == 0x3:
			in.exec = execAnd
		case wide && funct2 == 0x0:
			in.exec = execSubw
		case wide && funct2 == 0x1:
			in.exec = execAddw
		default:
			return cpu.illegal()
		}
	}
	return true
}

func (cpu *cpuState) decodeC2(half uint16, funct3 uint32) bool {
	in := &cpu.instr
	rd := uint32(half>>7) & 0x1f
	rs2 := uint32(half>>2) & 0x1f

	switch funct3 {
	case 0x0: // C.SLLI
		shamt := (uint32(half>>2) & 0x1f) | ((uint32(half>>12) & 0x1) << 5)
		if rd == 0 {
			return cpu.illegal()
		}
		in.rd, in.rs1 = rd, rd
		in.imm = int64(shamt)
		in.exec = execSlli
	case 0x2: // C.LWSP
		if rd == 0 {
			return cpu.illegal()
		}
		v := ((uint32(half>>4) & 0x7) << 2) | ((uint32(half>>12) & 0x1) << 5) | ((uint32(half>>2) & 0x3) << 6)
		in.rd, in.rs1 = rd, 2
		in.imm = int64(v)
		in.exec = execLw
	case 0x3: // C.LDSP
		if rd == 0 {
			return cpu.illegal()
		}
		v := ((uint32(half>>5) & 0x3) << 3) | ((uint32(half>>12) & 0x1) << 5) | ((uint32(half>>2) & 0x7) << 6)
		in.rd, in.rs1 = rd, 2
		in.imm = int64(v)
		in.exec = execLd
	case 0x4:
		wide := (half>>12)&0x1 != 0
		switch {
		case !wide && rs2 == 0 && rd != 0: // C.JR
			in.rs1 = rd
			in.exec = execCJr
		case !wide && rs2 != 0: // C.MV
			in.rd, in.rs1, in.rs2 = rd, 0, rs2
			in.exec = execAdd
		case wide && rd == 0 && rs2 == 0: // C.EBREAK
			in.exec = execEbreak
		case wide && rs2 == 0: // C.JALR
			in.rs1 = rd
			in.exec = execCJalr
		default: // C.ADD
			in.rd, in.rs1, in.rs2 = rd, rd, rs2
			in.exec = execAdd
		}
	case 0x6: // C.SWSP
		v := ((uint32(half>>9) & 0xf) << 2) | ((uint32(half>>7) & 0x3) << 6)
		in.rs1, in.rs2 = 2, rs2
		in.imm = int64(v)
		in.exec = execSw
	case 0x7: // C.SDSP
		v := ((uint32(half>>10) & 0x7) << 3) | ((uint32(half>>7) & 0x7) << 6)
		in.rs1, in.rs2 = 2, rs2
		in.imm = int64(v)
		in.exec = execSd
	default:
		return cpu.illegal()
	}
	return true
}

// execCJ/execCBeqz/execCBnez/execCJr/execCJalr are thin wrappers over
// their standard-width counterparts: the only difference compressed
// control transfer has from the expanded form is the instruction
// length folded into cpu.len, which branchTo already accounts for.
func execCJ(cpu *cpuState)    { cpu.branchTo(cpu.instr.imm) }
func execCBeqz(cpu *cpuState) { execBeq(cpu) }
func execCBnez(cpu *cpuState) { execBne(cpu) }

func execCJr(cpu *cpuState) {
	cpu.pc = cpu.rs1()
}

func execCJalr(cpu *cpuState) {
	target := cpu.rs1()
	cpu.setReg(1, cpu.curPC+cpu.len)
	cpu.pc = target
}
