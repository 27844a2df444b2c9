package io

// Rom is a read-only byte stream device. Each IN returns the next byte of
// Data, and EOF_MARK once the data is exhausted. Writes are ignored.
type Rom struct {
	Data []uint8

	index int
}

var _ Device = (*Rom)(nil)

// Rewind restarts the stream from the first byte.
func (rc *Rom) Rewind() {
	rc.index = 0
}

// In returns the next byte of the stream.
func (rc *Rom) In(port uint8) (value uint8) {
	if rc.index >= len(rc.Data) {
		return EOF_MARK
	}

	value = rc.Data[rc.index]
	rc.index++

	return
}

// Out is ignored.
func (rc *Rom) Out(port uint8, value uint8) {
}
