// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ezrec/native8080/cpu"
	"github.com/ezrec/native8080/emulator"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %v [options] <program.com> [load_offset_hex]\n", os.Args[0])
	fmt.Fprintf(flag.CommandLine.Output(), "       %v [options] -a <program.asm>\n", os.Args[0])
	fmt.Fprintf(flag.CommandLine.Output(), "  load_offset_hex defaults to 0100 (standard CP/M load address)\n")
	flag.PrintDefaults()
}

// parseOffset parses a hexadecimal load offset.
func parseOffset(text string) uint16 {
	value, err := strconv.ParseUint(text, 16, 16)
	if err != nil {
		log.Fatalf("load offset %v: %v", text, err)
	}
	return uint16(value)
}

func main() {
	var assemble string
	var offset string
	var save string
	var rom string
	var input string
	var output string
	var verbose bool
	var raw bool

	flag.StringVar(&assemble, "a", "", ".asm file to assemble and run")
	flag.StringVar(&offset, "l", "0100", "Load offset of a binary image, in hex")
	flag.StringVar(&save, "s", "", "Save the assembled image to a file, do not execute")
	flag.StringVar(&rom, "r", "", "File to present as the ROM port data stream")
	flag.StringVar(&input, "i", "-", "Console input")
	flag.StringVar(&output, "o", "-", "Console output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&raw, "raw", false, "Raw terminal mode for console input")

	flag.Usage = usage
	flag.Parse()

	// Registered first, so it runs after every other deferred cleanup.
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	var image string
	var origin uint16

	if len(assemble) != 0 {
		if flag.NArg() != 0 {
			log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
		}

		inf, err := os.Open(assemble)
		if err != nil {
			log.Fatalf("%v: %v", assemble, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for name, value := range emu.Defines() {
			asm.Predefine(name, value)
		}

		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", assemble, err)
		}

		if len(save) != 0 {
			_, binary := prog.Binary()
			err = os.WriteFile(save, binary, 0o644)
			if err != nil {
				log.Fatalf("%v: %v", save, err)
			}
			return
		}

		origin, _ = prog.Binary()
		emu.Reset(origin)

		_, err = emu.LoadProgram(prog)
		if err != nil {
			log.Fatalf("%v: %v", assemble, err)
		}
		image = assemble
	} else {
		switch flag.NArg() {
		case 2:
			offset = flag.Arg(1)
		case 1:
		default:
			flag.Usage()
			exitCode = 1
			return
		}

		image = flag.Arg(0)
		origin = parseOffset(offset)
		emu.Reset(origin)

		err := emu.Load(image, origin)
		if err != nil {
			log.Fatalf("Load error: %v", err)
		}
	}

	if len(rom) != 0 {
		data, err := os.ReadFile(rom)
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
		emu.Rom.Data = data
	}

	if input == "-" {
		emu.Console.Input = os.Stdin
		if raw {
			restore, err := enterRawTerm(os.Stdin)
			if err != nil {
				log.Fatalf("raw terminal: %v", err)
			}
			defer restore()
		}
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Console.Input = inf
	}

	if output == "-" {
		emu.Console.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Console.Output = ouf
	}

	fmt.Fprintf(os.Stderr, "native8080: loaded '%v' at 0x%04X, running...\n", image, origin)

	err := emu.Run()

	fmt.Fprintf(os.Stderr, "\nnative8080: CPU halted. PC=0x%04X\n", emu.State.PC)

	if err != nil {
		log.Print(err)
		exitCode = 1
	}
}
