package emulator

import (
	"bytes"
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/native8080/cpu"
	"github.com/ezrec/native8080/io"
)

// doRun assembles and runs a program with the emulator defines, feeding
// input to the console. It returns the console output.
func doRun(emu *Emulator, program []string, input string, t *testing.T) (output string, err error) {
	t.Helper()

	asm := &cpu.Assembler{}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
		return
	}

	origin, err := emu.LoadProgram(prog)
	if err != nil {
		t.Fatal(err)
		return
	}

	emu.Reset(origin)

	emu.Console.Input = strings.NewReader(input)
	console_output := &bytes.Buffer{}
	emu.Console.Output = console_output

	err = emu.Run()

	output = console_output.String()
	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.State)
	assert.Len(emu.Hooks, 1)

	device, err := emu.Ports.GetDevice(PORT_CONSOLE)
	assert.NoError(err)
	assert.Equal(&emu.Console, device)

	device, err = emu.Ports.GetDevice(PORT_TEMP)
	assert.NoError(err)
	assert.Equal(&emu.Temporary, device)

	device, err = emu.Ports.GetDevice(PORT_ROM)
	assert.NoError(err)
	assert.Equal(&emu.Rom, device)

	_, err = emu.Ports.GetDevice(0x80)
	assert.ErrorIs(err, io.ErrPortInvalid)
}

func TestEmulator_Reset(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	st := emu.State
	st.A = 0x12
	st.Halted = true
	st.Memory[TPA] = 0x3c
	emu.Ticks = 1000

	emu.Reset(TPA)
	assert.Equal(uint8(cpu.CODE_HLT), st.Memory[WARM_BOOT])
	assert.Equal(uint8(cpu.CODE_RET), st.Memory[BDOS])
	assert.Equal(STACK_TOP, st.SP)
	assert.Equal(TPA, st.PC)
	assert.Equal(uint8(0), st.A)
	assert.False(st.Halted)
	assert.Equal(0, emu.Ticks)
	assert.Equal(uint8(0x3c), st.Memory[TPA])
}

func TestEmulator_Defines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defines := maps.Collect(emu.Defines())

	assert.Equal("0x0", defines["WARM_BOOT"])
	assert.Equal("0x5", defines["BDOS"])
	assert.Equal("0x100", defines["TPA"])
	assert.Equal("0xf000", defines["STACK_TOP"])
	assert.Equal("0x1", defines["PORT_CONSOLE"])
	assert.Equal("0x2", defines["PORT_TEMP"])
	assert.Equal("0x3", defines["PORT_ROM"])
	assert.Equal("0x9", defines["BDOS_PRINT"])
	assert.Equal("0x2", defines["BDOS_CONOUT"])
}

func TestEmulator_Hello(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"        org TPA",
		"        mvi c,BDOS_PRINT",
		"        lxi d,msg",
		"        call BDOS",
		"        hlt",
		"msg:    db \"Hello, World!$\"",
	}

	output, err := doRun(emu, program, "", t)
	assert.NoError(err)
	assert.Equal("Hello, World!\n", output)
	assert.True(emu.State.Halted)
	assert.Equal(uint16(0x0109), emu.State.PC)
	assert.Equal(STACK_TOP, emu.State.SP)
	assert.Equal(7+10+17+7, emu.Ticks)
}

func TestEmulator_HelloImage(t *testing.T) {
	assert := assert.New(t)

	image := []byte{
		0x0e, 0x09, // MVI C,9
		0x11, 0x0a, 0x01, // LXI D,010Ah
		0xcd, 0x05, 0x00, // CALL 0005h
		0x76, // HLT
		0x00, // NOP
	}
	image = append(image, "Hello, World!$"...)

	emu := NewEmulator()
	emu.Reset(TPA)
	assert.NoError(LoadImage(emu.State, image, TPA))

	output := &bytes.Buffer{}
	emu.Console.Output = output

	assert.NoError(emu.Run())
	assert.Equal("Hello, World!\n", output.String())
	assert.Equal(uint16(0x0109), emu.State.PC)
}

func TestEmulator_Console(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"        org TPA",
		"        mvi c,BDOS_CONIN",
		"        call BDOS",
		"        sta 2000h",
		"        mvi c,BDOS_CONIN",
		"        call BDOS",
		"        sta 2001h",
		"        mvi c,BDOS_CONIN",
		"        call BDOS       ; end of input",
		"        sta 2002h",
		"        mvi c,BDOS_CONOUT",
		"        mvi e,'!'",
		"        call BDOS",
		"        mvi c,7         ; ignored",
		"        call BDOS",
		"        hlt",
	}

	output, err := doRun(emu, program, "xy", t)
	assert.NoError(err)
	assert.Equal("xy!", output)

	st := emu.State
	assert.Equal(uint8('x'), st.Memory[0x2000])
	assert.Equal(uint8('y'), st.Memory[0x2001])
	assert.Equal(io.EOF_MARK, st.Memory[0x2002])
	assert.Equal(io.EOF_MARK, st.L)
	assert.True(st.Halted)
	assert.Equal(STACK_TOP, st.SP)
}

func TestEmulator_WarmBoot(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	output, err := doRun(emu, []string{
		"        org TPA",
		"        mvi c,BDOS_RESET",
		"        call BDOS",
		"        hlt",
	}, "", t)
	assert.NoError(err)
	assert.Empty(output)
	assert.Equal(WARM_BOOT, emu.State.PC)
	assert.False(emu.State.Halted)

	emu = NewEmulator()
	_, err = doRun(emu, []string{
		"        org TPA",
		"        jmp WARM_BOOT",
	}, "", t)
	assert.NoError(err)
	assert.Equal(WARM_BOOT, emu.State.PC)
	assert.False(emu.State.Halted)
	assert.Equal(10, emu.Ticks)

	// Further ticks stay done.
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulator_Ports(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	program := []string{
		"        org TPA",
		"        in PORT_CONSOLE",
		"        out PORT_CONSOLE",
		"        mvi a,42h",
		"        out PORT_TEMP",
		"        mvi a,0",
		"        in PORT_TEMP",
		"        out PORT_CONSOLE",
		"        in PORT_TEMP    ; empty",
		"        sta 2000h",
		"        in 80h          ; unattached",
		"        sta 2001h",
		"        in PORT_ROM",
		"        sta 2002h",
		"        in PORT_ROM",
		"        sta 2003h",
		"        in PORT_ROM     ; exhausted",
		"        sta 2004h",
		"        hlt",
	}

	emu.Rom.Data = []uint8{0xaa, 0x55}

	output, err := doRun(emu, program, "Q", t)
	assert.NoError(err)
	assert.Equal("QB", output)
	assert.Equal(io.FLOATING_BUS, emu.State.Memory[0x2000])
	assert.Equal(io.FLOATING_BUS, emu.State.Memory[0x2001])
	assert.Equal([]uint8{0xaa, 0x55, io.EOF_MARK}, emu.State.Memory[0x2002:0x2005])
}

type brokenWriter struct{}

var errBroken = errors.New("broken")

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errBroken
}

func TestEmulator_ConsoleError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	asm := &cpu.Assembler{}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}
	prog, err := asm.Parse(strings.NewReader(strings.Join([]string{
		"        org TPA",
		"        mvi a,'x'",
		"        out PORT_CONSOLE",
		"        hlt",
	}, "\n")))
	assert.NoError(err)

	origin, err := emu.LoadProgram(prog)
	assert.NoError(err)
	emu.Reset(origin)
	emu.Console.Output = brokenWriter{}

	err = emu.Run()
	assert.ErrorIs(err, errBroken)

	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	assert.Equal(uint16(0x0102), runtime.PC)
	assert.Equal(3, runtime.LineNo)
}

func TestEmulator_Unterminated(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	_, err := doRun(emu, []string{
		"        org TPA",
		"        mvi c,BDOS_PRINT",
		"        lxi d,2000h",
		"        call BDOS",
		"        hlt",
	}, "", t)
	assert.ErrorIs(err, ErrStringUnterminated)

	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	assert.Equal(BDOS, runtime.PC)
	assert.Equal(0, runtime.LineNo)
}

func TestEmulator_Hooks(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	var seen []uint16
	emu.Hooks = append(emu.Hooks, func(st *cpu.State) (handled bool, err error) {
		seen = append(seen, st.PC)
		return
	})

	_, err := doRun(emu, []string{
		"        org TPA",
		"        mvi c,BDOS_CONOUT",
		"        mvi e,'-'",
		"        call BDOS",
		"        hlt",
	}, "", t)
	assert.NoError(err)

	// The BDOS hook handles the tick at 0x0005 before later hooks see it.
	assert.Equal([]uint16{0x0100, 0x0102, 0x0104, 0x0107, 0x0108}, seen)

	errHook := errors.New("hook")
	emu.Hooks = []Hook{func(st *cpu.State) (bool, error) {
		return false, errHook
	}}
	emu.Reset(TPA)
	done, err := emu.Tick()
	assert.False(done)
	assert.ErrorIs(err, errHook)
	assert.Equal(TPA, emu.State.PC)
}
