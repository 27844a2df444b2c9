package cpu

import (
	"iter"
)

// Link is a 16-bit little-endian field of an opcode to be patched with the
// address of a label once the whole source has been read.
type Link struct {
	Offset int    // Byte offset in Opcode.Codes.
	Label  string // Label to resolve.
}

// Opcode represents a line of assembled code with its source location and generated bytes.
type Opcode struct {
	LineNo int
	Ip     int
	Words  []string
	Codes  []uint8
	Links  []Link
}

// Program is an assembled 8080 program.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the opcode holding an address.
type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode, and the byte index within it, for an address.
func (prog *Program) Debug(ip uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(ip) >= op.Ip && int(ip) < op.Ip+len(op.Codes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(ip) - op.Ip,
			}
			break
		}
	}

	return
}

// Codes iterates over every assembled byte and its address.
func (prog *Program) Codes() iter.Seq2[uint16, uint8] {
	return func(yield func(ip uint16, code uint8) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(uint16(op.Ip+n), code) {
					return
				}
			}
		}
	}
}

// Binary returns the memory image spanning the lowest to the highest
// assembled address, with gaps zero-filled, and the address it loads at.
func (prog *Program) Binary() (origin uint16, image []uint8) {
	low, high := MEMORY_SIZE, 0
	for _, op := range prog.Opcodes {
		if len(op.Codes) == 0 {
			continue
		}
		low = min(low, op.Ip)
		high = max(high, op.Ip+len(op.Codes))
	}

	if low >= high {
		return
	}

	origin = uint16(low)
	image = make([]uint8, high-low)
	for ip, code := range prog.Codes() {
		image[int(ip)-low] = code
	}

	return
}
