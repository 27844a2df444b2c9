// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs an 8080 program in a minimal CP/M environment:
// a HLT at the warm boot vector, a BDOS entry at 0x0005 intercepted by a
// pre-step hook, and the console attached as a port device.
package emulator

import (
	"iter"
	"log"

	"github.com/ezrec/native8080/cpu"
	"github.com/ezrec/native8080/internal"
	"github.com/ezrec/native8080/io"
)

// CP/M page zero layout.
const (
	WARM_BOOT = uint16(0x0000) // Reaching this address ends the run.
	BDOS      = uint16(0x0005) // BDOS call entry.
	TPA       = uint16(0x0100) // Default program load address.
	STACK_TOP = uint16(0xf000) // Initial stack pointer.
)

// Port assignments.
const (
	PORT_CONSOLE = uint8(0x01) // Console byte stream.
	PORT_TEMP    = uint8(0x02) // Loopback FIFO.
	PORT_ROM     = uint8(0x03) // Read-only data stream.

	TEMP_CAPACITY = 256 // Loopback FIFO size, in bytes.
)

var _emulator_address = map[string]uint16{
	"WARM_BOOT": WARM_BOOT,
	"BDOS":      BDOS,
	"TPA":       TPA,
	"STACK_TOP": STACK_TOP,
}

var _emulator_port = map[string]uint8{
	"PORT_CONSOLE": PORT_CONSOLE,
	"PORT_TEMP":    PORT_TEMP,
	"PORT_ROM":     PORT_ROM,
}

// Hook is run before each step. If it reports the tick as handled, the
// instruction at PC is not executed for that tick.
type Hook func(st *cpu.State) (handled bool, err error)

// Emulator state. CPU + port devices + pre-step hooks.
type Emulator struct {
	Verbose bool         // If set, enables verbose logging.
	State   *cpu.State   // Machine state.
	Program *cpu.Program // Optional listing, used to report line numbers.

	Ports     io.Ports     // Port space.
	Console   io.Tape      // Console, on PORT_CONSOLE and behind the BDOS calls.
	Temporary io.Temporary // Loopback FIFO, on PORT_TEMP.
	Rom       io.Rom       // Data stream, on PORT_ROM.

	Hooks []Hook // Pre-step hooks, in order. NewEmulator installs Bdos.
	Ticks int    // Clock cycles since the last reset.

	bus *io.Bus
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		State: cpu.NewState(),
	}

	emu.Temporary.Capacity = TEMP_CAPACITY

	emu.Ports.SetDevice(PORT_CONSOLE, &emu.Console)
	emu.Ports.SetDevice(PORT_TEMP, &emu.Temporary)
	emu.Ports.SetDevice(PORT_ROM, &emu.Rom)
	emu.bus = emu.Ports.Bus()

	emu.Hooks = []Hook{emu.Bdos}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(
		internal.HexDefines(_emulator_address),
		internal.HexDefines(_emulator_port),
		internal.HexDefines(_bdos_function),
	)
}

// Reset the processor and install page zero.
// Memory outside page zero is left as is, so a program may be loaded
// before or after the reset.
func (emu *Emulator) Reset(origin uint16) {
	st := emu.State

	st.Reset()
	st.Memory[WARM_BOOT] = uint8(cpu.CODE_HLT)
	st.Memory[BDOS] = uint8(cpu.CODE_RET)
	st.SP = STACK_TOP
	st.PC = origin

	emu.Ports.Verbose = emu.Verbose
	emu.Ports.Rewind()
	emu.Ticks = 0

	if emu.Verbose {
		log.Printf("emulator: reset, origin 0x%04x", origin)
	}
}

// LineNo returns the listing line number for an address, or 0 if unknown.
func (emu *Emulator) LineNo(pc uint16) int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Opcode.LineNo
}

// Tick performs a single tick of the emulator: the hooks, then one
// instruction unless a hook handled the tick. Done is set once the
// processor has halted or jumped to the warm boot vector.
func (emu *Emulator) Tick() (done bool, err error) {
	st := emu.State
	pc := st.PC

	defer func() {
		if err != nil {
			err = &ErrRuntime{PC: pc, LineNo: emu.LineNo(pc), Err: err}
		}
	}()

	for _, hook := range emu.Hooks {
		var handled bool
		handled, err = hook(st)
		if err != nil || handled {
			return
		}
	}

	if st.Halted || st.PC == WARM_BOOT {
		done = true
		return
	}

	emu.Ticks += cpu.Step(st, emu.bus)

	err = emu.Console.Err()

	return
}

// Run ticks the emulator until it is done, or an error occurs.
func (emu *Emulator) Run() (err error) {
	for {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			break
		}
	}

	if emu.Verbose {
		log.Printf("emulator: %v, %d cycles", emu.State, emu.Ticks)
	}

	return
}
