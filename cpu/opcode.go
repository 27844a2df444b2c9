package cpu

// Code is a single 8080 opcode byte.
type Code uint8

// CodeReg is a 3-bit register selector.
type CodeReg uint8

const (
	REG_B = CodeReg(0) // b
	REG_C = CodeReg(1) // c
	REG_D = CodeReg(2) // d
	REG_E = CodeReg(3) // e
	REG_H = CodeReg(4) // h
	REG_L = CodeReg(5) // l
	REG_M = CodeReg(6) // m
	REG_A = CodeReg(7) // a
)

var _codeRegName = [8]string{"b", "c", "d", "e", "h", "l", "m", "a"}

func (reg CodeReg) String() string {
	return _codeRegName[reg&7]
}

// CodePair is a 2-bit register pair selector.
type CodePair uint8

const (
	PAIR_BC = CodePair(0) // b
	PAIR_DE = CodePair(1) // d
	PAIR_HL = CodePair(2) // h
	PAIR_SP = CodePair(3) // sp

	// PAIR_PSW replaces PAIR_SP in PUSH and POP.
	PAIR_PSW = CodePair(3) // psw
)

var _codePairName = [4]string{"b", "d", "h", "sp"}

func (pair CodePair) String() string {
	return _codePairName[pair&3]
}

// CodeCond is a 3-bit branch condition.
type CodeCond uint8

const (
	COND_NZ = CodeCond(0) // nz
	COND_Z  = CodeCond(1) // z
	COND_NC = CodeCond(2) // nc
	COND_C  = CodeCond(3) // c
	COND_PO = CodeCond(4) // po
	COND_PE = CodeCond(5) // pe
	COND_P  = CodeCond(6) // p
	COND_M  = CodeCond(7) // m
)

var _codeCondName = [8]string{"nz", "z", "nc", "c", "po", "pe", "p", "m"}

func (cond CodeCond) String() string {
	return _codeCondName[cond&7]
}

// CodeAluOp is one of the eight accumulator operations.
type CodeAluOp uint8

const (
	ALU_OP_ADD = CodeAluOp(0) // add
	ALU_OP_ADC = CodeAluOp(1) // adc
	ALU_OP_SUB = CodeAluOp(2) // sub
	ALU_OP_SBB = CodeAluOp(3) // sbb
	ALU_OP_ANA = CodeAluOp(4) // ana
	ALU_OP_XRA = CodeAluOp(5) // xra
	ALU_OP_ORA = CodeAluOp(6) // ora
	ALU_OP_CMP = CodeAluOp(7) // cmp
)

var _codeAluOpName = [8]string{"add", "adc", "sub", "sbb", "ana", "xra", "ora", "cmp"}
var _codeAluImmName = [8]string{"adi", "aci", "sui", "sbi", "ani", "xri", "ori", "cpi"}

func (op CodeAluOp) String() string {
	return _codeAluOpName[op&7]
}

// Immediate returns the mnemonic of the immediate form of the operation.
func (op CodeAluOp) Immediate() string {
	return _codeAluImmName[op&7]
}

// Ddd returns the destination register field, bits 5-3.
func (code Code) Ddd() CodeReg {
	return CodeReg((code >> 3) & 0x7)
}

// Sss returns the source register field, bits 2-0.
func (code Code) Sss() CodeReg {
	return CodeReg(code & 0x7)
}

// Pair returns the register pair field, bits 5-4.
func (code Code) Pair() CodePair {
	return CodePair((code >> 4) & 0x3)
}

// Cond returns the condition field, bits 5-3.
func (code Code) Cond() CodeCond {
	return CodeCond((code >> 3) & 0x7)
}

// AluOp returns the accumulator operation field, bits 5-3.
func (code Code) AluOp() CodeAluOp {
	return CodeAluOp((code >> 3) & 0x7)
}

// Vector returns the RST target address, field bits 5-3 times 8.
func (code Code) Vector() uint16 {
	return uint16(code & 0x38)
}

// Opcode encoders, used by the assembler.

// MakeCodeMov encodes MOV dst,src.
func MakeCodeMov(dst, src CodeReg) Code {
	return Code(0x40 | (uint8(dst&7) << 3) | uint8(src&7))
}

// MakeCodeMvi encodes MVI dst,imm8.
func MakeCodeMvi(dst CodeReg) Code {
	return Code(0x06 | (uint8(dst&7) << 3))
}

// MakeCodeInr encodes INR dst.
func MakeCodeInr(dst CodeReg) Code {
	return Code(0x04 | (uint8(dst&7) << 3))
}

// MakeCodeDcr encodes DCR dst.
func MakeCodeDcr(dst CodeReg) Code {
	return Code(0x05 | (uint8(dst&7) << 3))
}

// MakeCodeAlu encodes an accumulator operation on a register.
func MakeCodeAlu(op CodeAluOp, src CodeReg) Code {
	return Code(0x80 | (uint8(op&7) << 3) | uint8(src&7))
}

// MakeCodeAluImm encodes an accumulator operation on an immediate.
func MakeCodeAluImm(op CodeAluOp) Code {
	return Code(0xc6 | (uint8(op&7) << 3))
}

// MakeCodePair encodes one of the 00RPxxxx or 11RPxxxx pair instructions.
func MakeCodePair(base Code, pair CodePair) Code {
	return base | Code(uint8(pair&3)<<4)
}

// MakeCodeCond encodes one of the 11CCCxxx conditional instructions.
func MakeCodeCond(base Code, cond CodeCond) Code {
	return base | Code(uint8(cond&7)<<3)
}

// MakeCodeRst encodes RST n.
func MakeCodeRst(n uint8) Code {
	return Code(0xc7 | ((n & 7) << 3))
}

// Base opcodes of the instruction families.
const (
	CODE_NOP  = Code(0x00)
	CODE_LXI  = Code(0x01) // 00RP0001
	CODE_STAX = Code(0x02) // 000R0010
	CODE_INX  = Code(0x03) // 00RP0011
	CODE_DAD  = Code(0x09) // 00RP1001
	CODE_LDAX = Code(0x0a) // 000R1010
	CODE_DCX  = Code(0x0b) // 00RP1011
	CODE_RLC  = Code(0x07)
	CODE_RRC  = Code(0x0f)
	CODE_RAL  = Code(0x17)
	CODE_RAR  = Code(0x1f)
	CODE_SHLD = Code(0x22)
	CODE_DAA  = Code(0x27)
	CODE_LHLD = Code(0x2a)
	CODE_CMA  = Code(0x2f)
	CODE_STA  = Code(0x32)
	CODE_STC  = Code(0x37)
	CODE_LDA  = Code(0x3a)
	CODE_CMC  = Code(0x3f)
	CODE_HLT  = Code(0x76)
	CODE_RCC  = Code(0xc0) // 11CCC000
	CODE_POP  = Code(0xc1) // 11RP0001
	CODE_JCC  = Code(0xc2) // 11CCC010
	CODE_JMP  = Code(0xc3)
	CODE_CCC  = Code(0xc4) // 11CCC100
	CODE_PUSH = Code(0xc5) // 11RP0101
	CODE_RET  = Code(0xc9)
	CODE_CALL = Code(0xcd)
	CODE_OUT  = Code(0xd3)
	CODE_IN   = Code(0xdb)
	CODE_XTHL = Code(0xe3)
	CODE_PCHL = Code(0xe9)
	CODE_XCHG = Code(0xeb)
	CODE_DI   = Code(0xf3)
	CODE_SPHL = Code(0xf9)
	CODE_EI   = Code(0xfb)
)

// getReg reads the register named by a selector; REG_M reads memory at HL.
func (st *State) getReg(reg CodeReg) uint8 {
	switch reg & 7 {
	case REG_B:
		return st.B
	case REG_C:
		return st.C
	case REG_D:
		return st.D
	case REG_E:
		return st.E
	case REG_H:
		return st.H
	case REG_L:
		return st.L
	case REG_M:
		return st.Read8(st.HL())
	default:
		return st.A
	}
}

// setReg writes the register named by a selector; REG_M writes memory at HL.
func (st *State) setReg(reg CodeReg, value uint8) {
	switch reg & 7 {
	case REG_B:
		st.B = value
	case REG_C:
		st.C = value
	case REG_D:
		st.D = value
	case REG_E:
		st.E = value
	case REG_H:
		st.H = value
	case REG_L:
		st.L = value
	case REG_M:
		st.Write8(st.HL(), value)
	default:
		st.A = value
	}
}

// getPair reads BC, DE, HL or SP.
func (st *State) getPair(pair CodePair) uint16 {
	switch pair & 3 {
	case PAIR_BC:
		return st.BC()
	case PAIR_DE:
		return st.DE()
	case PAIR_HL:
		return st.HL()
	default:
		return st.SP
	}
}

// setPair writes BC, DE, HL or SP.
func (st *State) setPair(pair CodePair, value uint16) {
	switch pair & 3 {
	case PAIR_BC:
		st.SetBC(value)
	case PAIR_DE:
		st.SetDE(value)
	case PAIR_HL:
		st.SetHL(value)
	default:
		st.SP = value
	}
}

// getStackPair is getPair with PSW in place of SP.
func (st *State) getStackPair(pair CodePair) uint16 {
	if pair&3 == PAIR_PSW {
		return st.PSW()
	}
	return st.getPair(pair)
}

// setStackPair is setPair with PSW in place of SP.
func (st *State) setStackPair(pair CodePair, value uint16) {
	if pair&3 == PAIR_PSW {
		st.SetPSW(value)
		return
	}
	st.setPair(pair, value)
}

// test evaluates a branch condition against the flags.
func (st *State) test(cond CodeCond) bool {
	switch cond & 7 {
	case COND_NZ:
		return !st.Flag(FLAG_Z)
	case COND_Z:
		return st.Flag(FLAG_Z)
	case COND_NC:
		return !st.Flag(FLAG_CY)
	case COND_C:
		return st.Flag(FLAG_CY)
	case COND_PO:
		return !st.Flag(FLAG_P)
	case COND_PE:
		return st.Flag(FLAG_P)
	case COND_P:
		return !st.Flag(FLAG_S)
	default:
		return st.Flag(FLAG_S)
	}
}
