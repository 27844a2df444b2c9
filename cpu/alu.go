package cpu

import (
	"math/bits"
)

// parity returns true when value has an even number of set bits.
func parity(value uint8) bool {
	return bits.OnesCount8(value)&1 == 0
}

// setSZP sets the sign, zero and parity flags from an 8-bit result.
func (st *State) setSZP(result uint8) {
	st.SetFlag(FLAG_S, result&0x80 != 0)
	st.SetFlag(FLAG_Z, result == 0)
	st.SetFlag(FLAG_P, parity(result))
}

// add computes lhs + rhs + carry and sets S Z AC P CY.
func (st *State) add(lhs, rhs, carry uint8) (result uint8) {
	full := uint16(lhs) + uint16(rhs) + uint16(carry)
	result = uint8(full)
	st.setSZP(result)
	st.SetFlag(FLAG_CY, full > 0xff)
	st.SetFlag(FLAG_AC, (lhs&0x0f)+(rhs&0x0f)+carry > 0x0f)
	return
}

// sub computes lhs - rhs - borrow and sets S Z AC P CY.
// CY is set on borrow out of bit 7, AC on borrow out of bit 3.
func (st *State) sub(lhs, rhs, borrow uint8) (result uint8) {
	full := int(lhs) - int(rhs) - int(borrow)
	result = uint8(full)
	st.setSZP(result)
	st.SetFlag(FLAG_CY, full < 0)
	st.SetFlag(FLAG_AC, int(lhs&0x0f)-int(rhs&0x0f)-int(borrow) < 0)
	return
}

// carry returns the carry flag as 0 or 1.
func (st *State) carry() uint8 {
	if st.Flag(FLAG_CY) {
		return 1
	}
	return 0
}

// doAlu performs an accumulator operation with the given operand.
func (st *State) doAlu(op CodeAluOp, value uint8) {
	switch op & 7 {
	case ALU_OP_ADD:
		st.A = st.add(st.A, value, 0)
	case ALU_OP_ADC:
		st.A = st.add(st.A, value, st.carry())
	case ALU_OP_SUB:
		st.A = st.sub(st.A, value, 0)
	case ALU_OP_SBB:
		st.A = st.sub(st.A, value, st.carry())
	case ALU_OP_ANA:
		// 8080 AND sets AC from bit 3 of either operand.
		st.SetFlag(FLAG_AC, (st.A|value)&0x08 != 0)
		st.A &= value
		st.setSZP(st.A)
		st.SetFlag(FLAG_CY, false)
	case ALU_OP_XRA:
		st.A ^= value
		st.setSZP(st.A)
		st.SetFlag(FLAG_CY|FLAG_AC, false)
	case ALU_OP_ORA:
		st.A |= value
		st.setSZP(st.A)
		st.SetFlag(FLAG_CY|FLAG_AC, false)
	case ALU_OP_CMP:
		st.sub(st.A, value, 0)
	}
}

// inr increments a value. CY is not affected.
func (st *State) inr(value uint8) (result uint8) {
	result = value + 1
	st.SetFlag(FLAG_AC, value&0x0f == 0x0f)
	st.setSZP(result)
	return
}

// dcr decrements a value. CY is not affected.
func (st *State) dcr(value uint8) (result uint8) {
	result = value - 1
	st.SetFlag(FLAG_AC, value&0x0f == 0x00)
	st.setSZP(result)
	return
}

// dad adds a pair to HL, setting only CY.
func (st *State) dad(value uint16) {
	full := uint32(st.HL()) + uint32(value)
	st.SetFlag(FLAG_CY, full > 0xffff)
	st.SetHL(uint16(full))
}

// daa decimal-adjusts the accumulator.
func (st *State) daa() {
	value := uint16(st.A)
	cy := st.Flag(FLAG_CY)

	var low uint16
	if value&0x0f > 9 || st.Flag(FLAG_AC) {
		low = 0x06
	}
	st.SetFlag(FLAG_AC, (value&0x0f)+low > 0x0f)
	value += low

	if (value>>4) > 9 || cy {
		value += 0x60
		cy = true
	}

	st.A = uint8(value)
	st.setSZP(st.A)
	st.SetFlag(FLAG_CY, cy)
}

// rotate performs RLC, RRC, RAL or RAR on the accumulator.
func (st *State) rotate(code Code) {
	a := st.A
	switch code {
	case CODE_RLC:
		st.A = (a << 1) | (a >> 7)
		st.SetFlag(FLAG_CY, a&0x80 != 0)
	case CODE_RRC:
		st.A = (a >> 1) | (a << 7)
		st.SetFlag(FLAG_CY, a&0x01 != 0)
	case CODE_RAL:
		st.A = (a << 1) | st.carry()
		st.SetFlag(FLAG_CY, a&0x80 != 0)
	case CODE_RAR:
		st.A = (a >> 1) | (st.carry() << 7)
		st.SetFlag(FLAG_CY, a&0x01 != 0)
	}
}
