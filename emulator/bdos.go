package emulator

import (
	"log"

	"github.com/ezrec/native8080/cpu"
	"github.com/ezrec/native8080/io"
)

// BDOS functions, selected by register C.
const (
	BDOS_RESET  = uint8(0) // System reset: jump to the warm boot vector.
	BDOS_CONIN  = uint8(1) // Console input to A (and L), echoed.
	BDOS_CONOUT = uint8(2) // Console output of E.
	BDOS_PRINT  = uint8(9) // Print the '$' terminated string at DE, then a newline.
)

var _bdos_function = map[string]uint8{
	"BDOS_RESET":  BDOS_RESET,
	"BDOS_CONIN":  BDOS_CONIN,
	"BDOS_CONOUT": BDOS_CONOUT,
	"BDOS_PRINT":  BDOS_PRINT,
}

// Bdos intercepts a call to the BDOS entry, performs the console function
// selected by C, and returns to the caller as RET would. Unknown functions
// are ignored.
func (emu *Emulator) Bdos(st *cpu.State) (handled bool, err error) {
	if st.PC != BDOS {
		return
	}

	handled = true

	if emu.Verbose {
		log.Printf("emulator: bdos %d, DE=0x%04x", st.C, st.DE())
	}

	console := &emu.Console

	switch st.C {
	case BDOS_RESET:
		st.PC = WARM_BOOT
		return
	case BDOS_CONIN:
		value, rerr := console.ReadByte()
		if rerr != nil {
			value = io.EOF_MARK
		} else {
			err = console.WriteByte(value)
		}
		st.A = value
		st.L = value
	case BDOS_CONOUT:
		err = console.WriteByte(st.E)
	case BDOS_PRINT:
		err = emu.print(st, st.DE())
	}
	if err != nil {
		return
	}

	st.PC = st.Pop16()

	return
}

// print writes the '$' terminated string at addr, and a newline.
func (emu *Emulator) print(st *cpu.State, addr uint16) (err error) {
	text := make([]byte, 0, 64)
	for range cpu.MEMORY_SIZE {
		value := st.Read8(addr)
		if value == '$' {
			text = append(text, '\n')
			for _, value := range text {
				err = emu.Console.WriteByte(value)
				if err != nil {
					return
				}
			}
			return
		}
		text = append(text, value)
		addr++
	}

	err = ErrStringUnterminated
	return
}
