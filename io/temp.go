package io

// Temporary implements a circular byte buffer as a loopback device.
// Values written with OUT are queued and read back in order with IN.
type Temporary struct {
	Capacity int // Capacity in bytes.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []uint8
}

var _ Device = (*Temporary)(nil)

// Rewind resets the temporary storage to empty, resetting indices and
// reinitializing the data buffer.
func (temp *Temporary) Rewind() {
	temp.ReadIndex = 0
	temp.WriteIndex = 0
	temp.Size = 0
	temp.Data = make([]uint8, temp.Capacity)
}

// Pop removes the oldest queued byte.
func (temp *Temporary) Pop() (value uint8, ok bool) {
	if temp.Size == 0 {
		return
	}

	value = temp.Data[temp.ReadIndex]
	temp.ReadIndex++
	if temp.ReadIndex == temp.Capacity {
		temp.ReadIndex = 0
	}
	temp.Size--
	ok = true

	return
}

// Push appends a byte at the current write position.
// Returns ErrChannelFull if the buffer has reached capacity.
func (temp *Temporary) Push(value uint8) (err error) {
	if len(temp.Data) != temp.Capacity {
		temp.Rewind()
	}

	if temp.Size >= temp.Capacity {
		err = ErrChannelFull
		return
	}

	temp.Data[temp.WriteIndex] = value

	temp.WriteIndex++
	if temp.WriteIndex == temp.Capacity {
		temp.WriteIndex = 0
	}
	temp.Size++

	return
}

// In dequeues one byte, or returns FLOATING_BUS when empty.
func (temp *Temporary) In(port uint8) uint8 {
	value, ok := temp.Pop()
	if !ok {
		return FLOATING_BUS
	}
	return value
}

// Out enqueues one byte. Writes to a full buffer are dropped.
func (temp *Temporary) Out(port uint8, value uint8) {
	_ = temp.Push(value)
}
