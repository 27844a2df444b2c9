package cpu

import (
	"fmt"
)

// MEMORY_SIZE is the size of the flat 8080 address space.
const MEMORY_SIZE = 0x10000

// Flags register bits. Layout: S Z 0 AC 0 P 1 CY.
const (
	FLAG_CY = uint8(0x01) // Carry
	FLAG_P  = uint8(0x04) // Parity (even)
	FLAG_AC = uint8(0x10) // Auxiliary carry
	FLAG_Z  = uint8(0x40) // Zero
	FLAG_S  = uint8(0x80) // Sign

	FLAG_FIXED = uint8(0x02)                                   // Bit 1 always reads as 1.
	FLAG_CLEAR = uint8(0x28)                                   // Bits 3 and 5 always read as 0.
	FLAG_LIVE  = FLAG_S | FLAG_Z | FLAG_AC | FLAG_P | FLAG_CY // Bits that can change.
)

// State is the architectural state of one 8080.
type State struct {
	A uint8 // Accumulator
	B uint8
	C uint8
	D uint8
	E uint8
	H uint8
	L uint8
	F uint8 // Flags

	PC uint16 // Program counter
	SP uint16 // Stack pointer

	Memory [MEMORY_SIZE]uint8

	Inte   bool // Interrupt enable flip-flop.
	Halted bool // Set by HLT.
}

// NewState creates a new machine with zeroed memory and power-on registers.
func NewState() (st *State) {
	st = &State{}
	st.Reset()
	return
}

// Reset the processor.
// - Clears the registers and the flags (keeping the fixed bits).
// - Zeros PC and SP.
// - Clears the halt and interrupt-enable flip-flops.
// Memory is left as is.
func (st *State) Reset() {
	st.A, st.B, st.C, st.D, st.E, st.H, st.L = 0, 0, 0, 0, 0, 0, 0
	st.F = FLAG_FIXED
	st.PC = 0
	st.SP = 0
	st.Inte = false
	st.Halted = false
}

// Flag returns true if any of the flag bits in mask are set.
func (st *State) Flag(mask uint8) bool {
	return (st.F & mask) != 0
}

// SetFlag sets or clears the flag bits in mask.
func (st *State) SetFlag(mask uint8, set bool) {
	mask &= FLAG_LIVE
	if set {
		st.F |= mask
	} else {
		st.F &^= mask
	}
}

// SetF loads the flags register wholesale, forcing the fixed bits.
func (st *State) SetF(value uint8) {
	st.F = (value | FLAG_FIXED) &^ FLAG_CLEAR
}

// BC returns the BC register pair.
func (st *State) BC() uint16 {
	return (uint16(st.B) << 8) | uint16(st.C)
}

// DE returns the DE register pair.
func (st *State) DE() uint16 {
	return (uint16(st.D) << 8) | uint16(st.E)
}

// HL returns the HL register pair.
func (st *State) HL() uint16 {
	return (uint16(st.H) << 8) | uint16(st.L)
}

// PSW returns the accumulator and flags as a processor status word.
func (st *State) PSW() uint16 {
	return (uint16(st.A) << 8) | uint16(st.F)
}

// SetBC sets the BC register pair.
func (st *State) SetBC(value uint16) {
	st.B, st.C = uint8(value>>8), uint8(value)
}

// SetDE sets the DE register pair.
func (st *State) SetDE(value uint16) {
	st.D, st.E = uint8(value>>8), uint8(value)
}

// SetHL sets the HL register pair.
func (st *State) SetHL(value uint16) {
	st.H, st.L = uint8(value>>8), uint8(value)
}

// SetPSW sets the accumulator and flags from a processor status word.
func (st *State) SetPSW(value uint16) {
	st.A = uint8(value >> 8)
	st.SetF(uint8(value))
}

// Read8 reads a byte from memory.
func (st *State) Read8(addr uint16) uint8 {
	return st.Memory[addr]
}

// Read16 reads a little-endian word from memory.
func (st *State) Read16(addr uint16) uint16 {
	return uint16(st.Memory[addr]) | (uint16(st.Memory[addr+1]) << 8)
}

// Write8 writes a byte to memory.
func (st *State) Write8(addr uint16, value uint8) {
	st.Memory[addr] = value
}

// Write16 writes a little-endian word to memory.
func (st *State) Write16(addr uint16, value uint16) {
	st.Memory[addr] = uint8(value)
	st.Memory[addr+1] = uint8(value >> 8)
}

// Next8 fetches the byte at PC and advances PC.
func (st *State) Next8() (value uint8) {
	value = st.Memory[st.PC]
	st.PC++
	return
}

// Next16 fetches the little-endian word at PC and advances PC by two.
func (st *State) Next16() uint16 {
	lo := st.Next8()
	hi := st.Next8()
	return uint16(lo) | (uint16(hi) << 8)
}

// Push16 pushes a word on the stack.
func (st *State) Push16(value uint16) {
	st.SP -= 2
	st.Write16(st.SP, value)
}

// Pop16 pops a word from the stack.
func (st *State) Pop16() (value uint16) {
	value = st.Read16(st.SP)
	st.SP += 2
	return
}

// String returns the current register state as a string.
func (st *State) String() string {
	flags := []byte("szapc")
	for n, mask := range []uint8{FLAG_S, FLAG_Z, FLAG_AC, FLAG_P, FLAG_CY} {
		if st.Flag(mask) {
			flags[n] -= 'a' - 'A'
		}
	}

	var mode string
	if st.Halted {
		mode = " HLT"
	}
	if st.Inte {
		mode += " EI"
	}

	return fmt.Sprintf("PC:%04X SP:%04X A:%02X F:%02X(%s) BC:%04X DE:%04X HL:%04X%s",
		st.PC, st.SP, st.A, st.F, string(flags), st.BC(), st.DE(), st.HL(), mode)
}
