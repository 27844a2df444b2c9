// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"github.com/ezrec/native8080/io"
)

// Bus is the port I/O capability used by IN and OUT.
type Bus = io.Bus

// Cycle costs shared by several instruction families.
const (
	CYCLES_HALTED = 4 // Step while halted.
	CYCLES_NOP    = 4 // NOP and any unrecognized opcode.
)

// Step fetches and executes the instruction at PC, returning the number of
// clock cycles spent. A nil bus behaves as a bus with nothing attached.
func Step(st *State, bus *Bus) (cycles int) {
	if st.Halted {
		return CYCLES_HALTED
	}

	code := Code(st.Next8())

	return st.execute(code, bus)
}

// Step executes one instruction on this state.
func (st *State) Step(bus *Bus) int {
	return Step(st, bus)
}

// execute performs a single decoded instruction whose opcode has already
// been fetched.
func (st *State) execute(code Code, bus *Bus) (cycles int) {
	// MOV d,s: 01DDDSSS, except 0x76 which is HLT.
	if code&0xc0 == 0x40 && code != CODE_HLT {
		dst, src := code.Ddd(), code.Sss()
		st.setReg(dst, st.getReg(src))
		if dst == REG_M || src == REG_M {
			return 7
		}
		return 5
	}

	// ALU r: 10OOOSSS
	if code&0xc0 == 0x80 {
		src := code.Sss()
		st.doAlu(code.AluOp(), st.getReg(src))
		if src == REG_M {
			return 7
		}
		return 4
	}

	switch code {
	case CODE_NOP, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38:
		return CYCLES_NOP

	case CODE_HLT:
		st.Halted = true
		return 7

	case 0x06, 0x0e, 0x16, 0x1e, 0x26, 0x2e, 0x36, 0x3e: // MVI
		dst := code.Ddd()
		st.setReg(dst, st.Next8())
		if dst == REG_M {
			return 10
		}
		return 7

	case 0x01, 0x11, 0x21, 0x31: // LXI
		st.setPair(code.Pair(), st.Next16())
		return 10

	case CODE_LDA:
		st.A = st.Read8(st.Next16())
		return 13

	case CODE_STA:
		st.Write8(st.Next16(), st.A)
		return 13

	case CODE_LHLD:
		addr := st.Next16()
		st.L = st.Read8(addr)
		st.H = st.Read8(addr + 1)
		return 16

	case CODE_SHLD:
		addr := st.Next16()
		st.Write8(addr, st.L)
		st.Write8(addr+1, st.H)
		return 16

	case 0x0a, 0x1a: // LDAX B, LDAX D
		st.A = st.Read8(st.getPair(code.Pair()))
		return 7

	case 0x02, 0x12: // STAX B, STAX D
		st.Write8(st.getPair(code.Pair()), st.A)
		return 7

	case CODE_XCHG:
		hl := st.HL()
		st.SetHL(st.DE())
		st.SetDE(hl)
		return 4

	case 0xc6, 0xce, 0xd6, 0xde, 0xe6, 0xee, 0xf6, 0xfe: // ADI ACI SUI SBI ANI XRI ORI CPI
		st.doAlu(code.AluOp(), st.Next8())
		return 7

	case 0x04, 0x0c, 0x14, 0x1c, 0x24, 0x2c, 0x34, 0x3c: // INR
		dst := code.Ddd()
		st.setReg(dst, st.inr(st.getReg(dst)))
		if dst == REG_M {
			return 10
		}
		return 5

	case 0x05, 0x0d, 0x15, 0x1d, 0x25, 0x2d, 0x35, 0x3d: // DCR
		dst := code.Ddd()
		st.setReg(dst, st.dcr(st.getReg(dst)))
		if dst == REG_M {
			return 10
		}
		return 5

	case 0x03, 0x13, 0x23, 0x33: // INX
		pair := code.Pair()
		st.setPair(pair, st.getPair(pair)+1)
		return 5

	case 0x0b, 0x1b, 0x2b, 0x3b: // DCX
		pair := code.Pair()
		st.setPair(pair, st.getPair(pair)-1)
		return 5

	case 0x09, 0x19, 0x29, 0x39: // DAD
		st.dad(st.getPair(code.Pair()))
		return 10

	case CODE_DAA:
		st.daa()
		return 4

	case CODE_RLC, CODE_RRC, CODE_RAL, CODE_RAR:
		st.rotate(code)
		return 4

	case CODE_CMA:
		st.A = ^st.A
		return 4

	case CODE_CMC:
		st.SetFlag(FLAG_CY, !st.Flag(FLAG_CY))
		return 4

	case CODE_STC:
		st.SetFlag(FLAG_CY, true)
		return 4

	case CODE_JMP, 0xcb:
		st.PC = st.Next16()
		return 10

	case 0xc2, 0xca, 0xd2, 0xda, 0xe2, 0xea, 0xf2, 0xfa: // Jcc
		addr := st.Next16()
		if st.test(code.Cond()) {
			st.PC = addr
		}
		return 10

	case CODE_CALL, 0xdd, 0xed, 0xfd:
		addr := st.Next16()
		st.Push16(st.PC)
		st.PC = addr
		return 17

	case 0xc4, 0xcc, 0xd4, 0xdc, 0xe4, 0xec, 0xf4, 0xfc: // Ccc
		addr := st.Next16()
		if st.test(code.Cond()) {
			st.Push16(st.PC)
			st.PC = addr
			return 17
		}
		return 11

	case CODE_RET, 0xd9:
		st.PC = st.Pop16()
		return 10

	case 0xc0, 0xc8, 0xd0, 0xd8, 0xe0, 0xe8, 0xf0, 0xf8: // Rcc
		if st.test(code.Cond()) {
			st.PC = st.Pop16()
			return 11
		}
		return 5

	case 0xc7, 0xcf, 0xd7, 0xdf, 0xe7, 0xef, 0xf7, 0xff: // RST
		st.Push16(st.PC)
		st.PC = code.Vector()
		return 11

	case CODE_PCHL:
		st.PC = st.HL()
		return 5

	case 0xc5, 0xd5, 0xe5, 0xf5: // PUSH
		st.Push16(st.getStackPair(code.Pair()))
		return 11

	case 0xc1, 0xd1, 0xe1, 0xf1: // POP
		st.setStackPair(code.Pair(), st.Pop16())
		return 10

	case CODE_XTHL:
		top := st.Read16(st.SP)
		st.Write16(st.SP, st.HL())
		st.SetHL(top)
		return 18

	case CODE_SPHL:
		st.SP = st.HL()
		return 5

	case CODE_IN:
		port := st.Next8()
		st.A = bus.Read(port)
		return 10

	case CODE_OUT:
		port := st.Next8()
		bus.Write(port, st.A)
		return 10

	case CODE_EI:
		st.Inte = true
		return 4

	case CODE_DI:
		st.Inte = false
		return 4
	}

	return CYCLES_NOP
}
