package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Reset(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	assert.Equal(FLAG_FIXED, st.F)
	assert.Equal(uint16(0), st.PC)
	assert.False(st.Halted)

	st.A, st.B, st.L = 1, 2, 3
	st.PC, st.SP = 0x1234, 0x5678
	st.F = 0xff
	st.Halted = true
	st.Inte = true
	st.Memory[0x100] = 0xaa

	st.Reset()
	assert.Equal(uint8(0), st.A)
	assert.Equal(uint8(0), st.B)
	assert.Equal(uint8(0), st.L)
	assert.Equal(uint16(0), st.PC)
	assert.Equal(uint16(0), st.SP)
	assert.Equal(FLAG_FIXED, st.F)
	assert.False(st.Halted)
	assert.False(st.Inte)
	assert.Equal(uint8(0xaa), st.Memory[0x100], "memory survives reset")
}

func TestState_Flags(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	for _, mask := range []uint8{FLAG_S, FLAG_Z, FLAG_AC, FLAG_P, FLAG_CY} {
		st.SetFlag(mask, true)
		assert.True(st.Flag(mask))
		assert.Equal(FLAG_FIXED|mask, st.F)

		st.SetFlag(mask, false)
		assert.False(st.Flag(mask))
		assert.Equal(FLAG_FIXED, st.F)
	}

	// Fixed bits cannot be changed through SetFlag.
	st.SetFlag(0xff, true)
	assert.Equal(uint8(0xd7), st.F)
	st.SetFlag(0xff, false)
	assert.Equal(FLAG_FIXED, st.F)

	// Independent flags stay put.
	st.SetFlag(FLAG_Z, true)
	st.SetFlag(FLAG_CY, true)
	st.SetFlag(FLAG_Z, false)
	assert.True(st.Flag(FLAG_CY))
	assert.False(st.Flag(FLAG_Z))
}

func TestState_SetF(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	st.SetF(0xff)
	assert.Equal(uint8(0xd7), st.F)

	st.SetF(0x00)
	assert.Equal(uint8(0x02), st.F)

	st.SetF(0x28)
	assert.Equal(uint8(0x02), st.F)
}

func TestState_Pairs(t *testing.T) {
	assert := assert.New(t)

	st := NewState()

	st.SetBC(0x1234)
	assert.Equal(uint8(0x12), st.B)
	assert.Equal(uint8(0x34), st.C)
	assert.Equal(uint16(0x1234), st.BC())

	st.SetDE(0x5678)
	assert.Equal(uint8(0x56), st.D)
	assert.Equal(uint8(0x78), st.E)
	assert.Equal(uint16(0x5678), st.DE())

	st.SetHL(0x9abc)
	assert.Equal(uint8(0x9a), st.H)
	assert.Equal(uint8(0xbc), st.L)
	assert.Equal(uint16(0x9abc), st.HL())

	st.SetPSW(0xa5ff)
	assert.Equal(uint8(0xa5), st.A)
	assert.Equal(uint8(0xd7), st.F)
	assert.Equal(uint16(0xa5d7), st.PSW())
}

func TestState_Memory(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	st.Write16(0x2000, 0xbeef)
	assert.Equal(uint8(0xef), st.Read8(0x2000))
	assert.Equal(uint8(0xbe), st.Read8(0x2001))
	assert.Equal(uint16(0xbeef), st.Read16(0x2000))

	// Word accesses wrap at the top of memory.
	st.Write16(0xffff, 0x1234)
	assert.Equal(uint8(0x34), st.Memory[0xffff])
	assert.Equal(uint8(0x12), st.Memory[0x0000])
	assert.Equal(uint16(0x1234), st.Read16(0xffff))
}

func TestState_Next(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	st.Memory[0] = 0x11
	st.Memory[1] = 0x22
	st.Memory[2] = 0x33

	assert.Equal(uint8(0x11), st.Next8())
	assert.Equal(uint16(1), st.PC)
	assert.Equal(uint16(0x3322), st.Next16())
	assert.Equal(uint16(3), st.PC)

	st.PC = 0xffff
	st.Memory[0xffff] = 0xcd
	assert.Equal(uint16(0x11cd), st.Next16())
	assert.Equal(uint16(1), st.PC)
}

func TestState_Stack(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	st.SP = 0xf000

	st.Push16(0x1234)
	assert.Equal(uint16(0xeffe), st.SP)
	assert.Equal(uint8(0x34), st.Memory[0xeffe])
	assert.Equal(uint8(0x12), st.Memory[0xefff])

	st.Push16(0xabcd)
	assert.Equal(uint16(0xabcd), st.Pop16())
	assert.Equal(uint16(0x1234), st.Pop16())
	assert.Equal(uint16(0xf000), st.SP)

	// SP wraps.
	st.SP = 0x0000
	st.Push16(0x5555)
	assert.Equal(uint16(0xfffe), st.SP)
	assert.Equal(uint16(0x5555), st.Pop16())
	assert.Equal(uint16(0x0000), st.SP)
}

func TestState_String(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	st.PC = 0x0100
	st.SP = 0xf000
	st.A = 0x42
	st.SetFlag(FLAG_Z|FLAG_CY, true)
	st.Halted = true

	assert.Equal("PC:0100 SP:F000 A:42 F:43(sZapC) BC:0000 DE:0000 HL:0000 HLT", st.String())
}
