package emulator

import (
	"errors"

	"github.com/ezrec/native8080/translate"
)

var f = translate.From

var (
	ErrImageTooLarge      = errors.New(f("image does not fit in memory"))
	ErrStringUnterminated = errors.New(f("string has no '$' terminator"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	PC     uint16
	LineNo int // Listing line, if known.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo > 0 {
		return f("line %d PC 0x%04x %v", err.LineNo, err.PC, err.Err)
	}
	return f("PC 0x%04x %v", err.PC, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// LoadError is returned when a memory image cannot be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (err *LoadError) Error() string {
	if len(err.Path) == 0 {
		return f("load: %v", err.Err)
	}
	return f("load %v: %v", err.Path, err.Err)
}

func (err *LoadError) Unwrap() error {
	return err.Err
}
