/*
   RV64 - Standard (32-bit) instruction decoder.

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

// Opcode values (instr[6:0]) for the standard 32-bit encoding.
const (
	opLoad    uint32 = 0x03
	opLoadFP  uint32 = 0x07
	opMiscMem uint32 = 0x0f
	opOpImm   uint32 = 0x13
	opAuipc   uint32 = 0x17
	opOpImm32 uint32 = 0x1b
	opStore   uint32 = 0x23
	opStoreFP uint32 = 0x27
	opAmo     uint32 = 0x2f
	opOp      uint32 = 0x33
	opLui     uint32 = 0x37
	opOp32    uint32 = 0x3b
	opBranch  uint32 = 0x63
	opJalr    uint32 = 0x67
	opJal     uint32 = 0x6f
	opSystem  uint32 = 0x73
)

func signExtend(value uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(value<<shift) >> shift
}

func iImm(word uint32) int64 {
	return signExtend(uint64(word>>20), 12)
}

func sImm(word uint32) int64 {
	v := ((word >> 25) << 5) | ((word >> 7) & 0x1f)
	return signExtend(uint64(v), 12)
}

func bImm(word uint32) int64 {
	v := ((word>>31)&1)<<12 | ((word>>7)&1)<<11 | ((word>>25)&0x3f)<<5 | ((word>>8)&0xf)<<1
	return signExtend(uint64(v), 13)
}

func uImm(word uint32) int64 {
	return int64(int32(word &^ 0xfff))
}

func jImm(word uint32) int64 {
	v := ((word>>31)&1)<<20 | ((word>>12)&0xff)<<12 | ((word>>20)&1)<<11 | ((word>>21)&0x3ff)<<1
	return signExtend(uint64(v), 21)
}

// decodeStandard fills cpu.instr from a 32-bit instruction word and
// binds the leaf executor. It reports false (IllegalInstruction
// already queued) when no executor matches.
func (cpu *cpuState) decodeStandard(word uint32) bool {
	cpu.instr = instr{}
	in := &cpu.instr
	in.raw = word
	in.opcode = word & 0x7f
	in.rd = (word >> 7) & 0x1f
	in.funct3 = (word >> 12) & 0x7
	in.rs1 = (word >> 15) & 0x1f
	in.rs2 = (word >> 20) & 0x1f
	in.funct7 = (word >> 25) & 0x7f
	in.funct5 = (word >> 27) & 0x1f
	in.aq = (word>>26)&1 != 0
	in.rl = (word>>25)&1 != 0
	in.width = in.funct3

	switch in.opcode {
	case opLui:
		in.imm = uImm(word)
		in.exec = execLui
	case opAuipc:
		in.imm = uImm(word)
		in.exec = execAuipc
	case opJal:
		in.imm = jImm(word)
		in.exec = execJal
	case opJalr:
		in.imm = iImm(word)
		if in.funct3 != 0 {
			return cpu.illegal()
		}
		in.exec = execJalr
	case opBranch:
		in.imm = bImm(word)
		return cpu.bindBranch()
	case opLoad, opLoadFP:
		in.imm = iImm(word)
		return cpu.bindLoad()
	case opStore, opStoreFP:
		in.imm = sImm(word)
		return cpu.bindStore()
	case opOpImm:
		in.imm = iImm(word)
		return cpu.bindOpImm()
	case opOpImm32:
		in.imm = iImm(word)
		return cpu.bindOpImm32()
	case opOp:
		return cpu.bindOp()
	case opOp32:
		return cpu.bindOp32()
	case opMiscMem:
		return cpu.bindMiscMem()
	case opSystem:
		in.csr = word >> 20
		in.imm = int64(in.csr)
		return cpu.bindSystem()
	case opAmo:
		return cpu.bindAmo()
	default:
		return cpu.illegal()
	}
	return true
}

func (cpu *cpuState) illegal() bool {
	debugf(debugDecode, "illegal instruction word=%#08x pc=%#016x", cpu.instr.raw, cpu.curPC)
	cpu.exc.kind = IllegalInstruction
	cpu.exc.value = 0
	return false
}

func (cpu *cpuState) bindBranch() bool {
	switch cpu.instr.funct3 {
	case 0x0:
		cpu.instr.exec = execBeq
	case 0x1:
		cpu.instr.exec = execBne
	case 0x4:
		cpu.instr.exec = execBlt
	case 0x5:
		cpu.instr.exec = execBge
	case 0x6:
		cpu.instr.exec = execBltu
	case 0x7:
		cpu.instr.exec = execBgeu
	default:
		return cpu.illegal()
	}
	return true
}

func (cpu *cpuState) bindLoad() bool {
	if cpu.instr.opcode == opLoadFP {
		switch cpu.instr.funct3 {
		case 0x2:
			cpu.instr.exec = execFlw
		case 0x3:
			cpu.instr.exec = execFld
		default:
			return cpu.illegal()
		}
		return true
	}
	switch cpu.instr.funct3 {
	case 0x0:
		cpu.instr.exec = execLb
	case 0x1:
		cpu.instr.exec = execLh
	case 0x2:
		cpu.instr.exec = execLw
	case 0x3:
		cpu.instr.exec = execLd
	case 0x4:
		cpu.instr.exec = execLbu
	case 0x5:
		cpu.instr.exec = execLhu
	case 0x6:
		cpu.instr.exec = execLwu
	default:
		return cpu.illegal()
	}
	return true
}

func (cpu *cpuState) bindStore() bool {
	if cpu.instr.opcode == opStoreFP {
		switch cpu.instr.funct3 {
		case 0x2:
			cpu.instr.exec = execFsw
		case 0x3:
			cpu.instr.exec = execFsd
		default:
			return cpu.illegal()
		}
		return true
	}
	switch cpu.instr.funct3 {
	case 0x0:
		cpu.instr.exec = execSb
	case 0x1:
		cpu.instr.exec = execSh
	case 0x2:
		cpu.instr.exec = execSw
	case 0x3:
		cpu.instr.exec = execSd
	default:
		return cpu.illegal()
	}
	return true
}

func (cpu *cpuState) bindOpImm() bool {
	in := &cpu.instr
	switch in.funct3 {
	case 0x0:
		in.exec = execAddi
	case 0x1:
		if in.funct7>>1 != 0 {
			return cpu.illegal()
		}
		in.imm = int64((in.raw >> 20) & 0x3f)
		in.exec = execSlli
	case 0x2:
		in.exec = execSlti
	case 0x3:
		in.exec = execSltiu
	case 0x4:
		in.exec = execXori
	case 0x5:
		switch in.funct7 >> 1 {
		case 0x00:
			in.imm = int64((in.raw >> 20) & 0x3f)
			in.exec = execSrli
		case 0x10:
			in.imm = int64((in.raw >> 20) & 0x3f)
			in.exec = execSrai
		default:
			return cpu.illegal()
		}
	case 0x6:
		in.exec = execOri
	case 0x7:
		in.exec = execAndi
	}
	return true
}

func (cpu *cpuState) bindOpImm32() bool {
	in := &cpu.instr
	switch in.funct3 {
	case 0x0:
		in.exec = execAddiw
	case 0x1:
		if in.funct7 != 0 {
			return cpu.illegal()
		}
		in.imm = int64(in.rs2)
		in.exec = execSlliw
	case 0x5:
		switch in.funct7 {
		case 0x00:
			in.imm = int64(in.rs2)
			in.exec = execSrliw
		case 0x20:
			in.imm = int64(in.rs2)
			in.exec = execSraiw
		default:
			return cpu.illegal()
		}
	default:
		return cpu.illegal()
	}
	return true
}

func (cpu *cpuState) bindOp() bool {
	in := &cpu.instr
	switch in.funct7 {
	case 0x00:
		switch in.funct3 {
		case 0x0:
			in.exec = execAdd
		case 0x1:
			in.exec = execSll
		case 0x2:
			in.exec = execSlt
		case 0x3:
			in.exec = execSltu
		case 0x4:
			in.exec = execXor
		case 0x5:
			in.exec = execSrl
		case 0x6:
			in.exec = execOr
		case 0x7:
			in.exec = execAnd
		}
	case 0x20:
		switch in.funct3 {
		case 0x0:
			in.exec = execSub
		case 0x5:
			in.exec = execSra
		default:
			return cpu.illegal()
		}
	case 0x01:
		switch in.funct3 {
		case 0x0:
			in.exec = execMul
		case 0x1:
			in.exec = execMulh
		case 0x2:
			in.exec = execMulhsu
		case 0x3:
			in.exec = execMulhu
		case 0x4:
			in.exec = execDiv
		case 0x5:
			in.exec = execDivu
		case 0x6:
			in.exec = execRem
		case 0x7:
			in.exec = execRemu
		}
	default:
		return cpu.illegal()
	}
	return true
}

func (cpu *cpuState) bindOp32() bool {
	in := &cpu.instr
	switch in.funct7 {
	case 0x00:
		switch in.funct3 {
		case 0x0:
			in.exec = execAddw
		case 0x1:
			in.exec = execSllw
		case 0x5:
			in.exec = execSrlw
		default:
			return cpu.illegal()
		}
	case 0x20:
		switch in.funct3 {
		case 0x0:
			in.exec = execSubw
		case 0x5:
			in.exec = execSraw
		default:
			return cpu.illegal()
		}
	case 0x01:
		switch in.funct3 {
		case 0x0:
			in.exec = execMulw
		case 0x4:
			in.exec = execDivw
		case 0x5:
			in.exec = execDivuw
		case 0x6:
			in.exec = execRemw
		case 0x7:
			in.exec = execRemuw
		default:
			return cpu.illegal()
		}
	default:
		return cpu.illegal()
	}
	return true
}

func (cpu *cpuState) bindMiscMem() bool {
	switch cpu.instr.funct3 {
	case 0x0:
		cpu.instr.exec = execFence
	case 0x1:
		cpu.instr.exec = execFenceI
	default:
		return cpu.illegal()
	}
	return true
}

func (cpu *cpuState) bindSystem() bool {
	in := &cpu.instr
	switch in.funct3 {
	case 0x0:
		switch in.csr {
		case 0x000:
			in.exec = execEcall
		case 0x001:
			in.exec = execEbreak
		case 0x102:
			in.exec = execSret
		case 0x302:
			in.exec = execMret
		case 0x105:
			in.exec = execWfi
		default:
			switch in.funct7 {
			case 0x09:
				in.exec = execSfenceVMA
			case 0x51:
				in.exec = execHfenceBVMA
			case 0x61:
				in.exec = execHfenceGVMA
			default:
				return cpu.illegal()
			}
		}
	case 0x1:
		in.exec = execCsrrw
	case 0x2:
		in.exec = execCsrrs
	case 0x3:
		in.exec = execCsrrc
	case 0x5:
		in.exec = execCsrrwi
	case 0x6:
		in.exec = execCsrrsi
	case 0x7:
		in.exec = execCsrrci
	default:
		return cpu.illegal()
	}
	return true
}

func (cpu *cpuState) bindAmo() bool {
	in := &cpu.instr
	if in.funct3 != 0x2 && in.funct3 != 0x3 {
		return cpu.illegal()
	}
	is64 := in.funct3 == 0x3
	switch in.funct5 {
	case 0x00:
		if is64 {
			in.exec = execAmoaddd
		} else {
			in.exec = execAmoaddw
		}
	case 0x01:
		if is64 {
			in.exec = execAmoswapd
		} else {
			in.exec = execAmoswapw
		}
	case 0x02:
		if in.rs2 != 0 {
			return cpu.illegal()
		}
		if is64 {
			in.exec = execLrd
		} else {
			in.exec = execLrw
		}
	case 0x03:
		if is64 {
			in.exec = execScd
		} else {
			in.exec = execScw
		}
	case 0x04:
		if is64 {
			in.exec = execAmoxord
		} else {
			in.exec = execAmoxorw
		}
	case 0x08:
		if is64 {
			in.exec = execAmoord
		} else {
			in.exec = execAmoorw
		}
	case 0x0c:
		if is64 {
			in.exec = execAmoandd
		} else {
			in.exec = execAmoandw
		}
	case 0x10, 0x14, 0x18, 0x1c:
		// AMOMIN/AMOMAX family: unimplemented (listed under Non-goals in
		// SPEC_FULL.md).
		return cpu.illegal()
	default:
		return cpu.illegal()
	}
	return true
}
