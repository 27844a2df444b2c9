package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemporary_Loopback(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{Capacity: 4}
	temp.Rewind()

	temp.Out(0x10, 0x11)
	temp.Out(0x10, 0x22)
	assert.Equal(2, temp.Size)

	assert.Equal(uint8(0x11), temp.In(0x10))
	assert.Equal(uint8(0x22), temp.In(0x10))
	assert.Equal(FLOATING_BUS, temp.In(0x10))
}

func TestTemporary_Full(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{Capacity: 2}

	assert.NoError(temp.Push(1))
	assert.NoError(temp.Push(2))
	assert.Equal(ErrChannelFull, temp.Push(3))

	value, ok := temp.Pop()
	assert.True(ok)
	assert.Equal(uint8(1), value)

	// Wraps around the end of the buffer.
	assert.NoError(temp.Push(3))
	value, _ = temp.Pop()
	assert.Equal(uint8(2), value)
	value, _ = temp.Pop()
	assert.Equal(uint8(3), value)

	_, ok = temp.Pop()
	assert.False(ok)
}

func TestTemporary_ZeroCapacity(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{}
	assert.Equal(ErrChannelFull, temp.Push(1))
	assert.Equal(FLOATING_BUS, temp.In(0))
}

func TestTemporary_Rewind(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{Capacity: 3}
	temp.Out(0, 9)
	temp.Rewind()

	assert.Equal(0, temp.Size)
	assert.Equal(FLOATING_BUS, temp.In(0))
}
