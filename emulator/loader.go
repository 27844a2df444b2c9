package emulator

import (
	"os"

	"github.com/ezrec/native8080/cpu"
)

// LoadImage copies a raw memory image into memory at offset.
// The image must fit below the top of memory; its content is not checked.
func LoadImage(st *cpu.State, data []byte, offset uint16) (err error) {
	if len(data) > cpu.MEMORY_SIZE-int(offset) {
		err = &LoadError{Err: ErrImageTooLarge}
		return
	}

	copy(st.Memory[offset:], data)

	return
}

// Load reads a raw memory image from a file into memory at offset.
func Load(st *cpu.State, path string, offset uint16) (err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = &LoadError{Path: path, Err: err}
		return
	}

	err = LoadImage(st, data, offset)
	if err != nil {
		err.(*LoadError).Path = path
		return
	}

	return
}

// Load reads a raw memory image from a file into the emulator memory.
func (emu *Emulator) Load(path string, offset uint16) (err error) {
	return Load(emu.State, path, offset)
}

// LoadProgram copies an assembled program into the emulator memory, and
// keeps its listing for error reports. The origin of the program is
// returned.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (origin uint16, err error) {
	origin, image := prog.Binary()
	err = LoadImage(emu.State, image, origin)
	if err != nil {
		return
	}

	emu.Program = prog

	return
}
