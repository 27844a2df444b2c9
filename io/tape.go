package io

import (
	"io"
)

// EOF_MARK is the CP/M end-of-file byte presented once input is exhausted.
const EOF_MARK = uint8(0x1a)

// Tape provides sequential byte I/O over an io.Reader and an io.Writer.
// It backs the console: as a port device every IN consumes one input byte
// and every OUT emits one output byte.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	ended bool
	err   error
}

var _ Device = (*Tape)(nil)

// Rewind is not possible on a tape. It only clears the sticky end state.
func (tc *Tape) Rewind() {
	tc.ended = false
	tc.err = nil
}

// Err returns the first non-EOF error seen on the tape, if any.
func (tc *Tape) Err() error {
	return tc.err
}

// ReadByte reads the next input byte.
func (tc *Tape) ReadByte() (value byte, err error) {
	if tc.Input == nil || tc.ended {
		err = io.EOF
		return
	}

	var one [1]byte
	for {
		var n int
		n, err = tc.Input.Read(one[:])
		if n == 1 {
			value = one[0]
			err = nil
			return
		}
		if err != nil {
			tc.ended = true
			if err != io.EOF {
				tc.err = err
			}
			return
		}
	}
}

// WriteByte writes one output byte.
func (tc *Tape) WriteByte(value byte) (err error) {
	if tc.Output == nil {
		return
	}

	_, err = tc.Output.Write([]byte{value})
	if err != nil && tc.err == nil {
		tc.err = err
	}

	return
}

// In returns the next input byte, or EOF_MARK once input is exhausted.
func (tc *Tape) In(port uint8) uint8 {
	value, err := tc.ReadByte()
	if err != nil {
		return EOF_MARK
	}
	return value
}

// Out writes the value to the output stream.
func (tc *Tape) Out(port uint8, value uint8) {
	_ = tc.WriteByte(value)
}
