package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRom(t *testing.T) {
	assert := assert.New(t)

	rc := &Rom{Data: []uint8{0x10, 0x20}}

	assert.Equal(uint8(0x10), rc.In(0))
	rc.Out(0, 0xff)
	assert.Equal(uint8(0x20), rc.In(0))
	assert.Equal(EOF_MARK, rc.In(0))
	assert.Equal(EOF_MARK, rc.In(0))

	rc.Rewind()
	assert.Equal(uint8(0x10), rc.In(0))
	assert.Equal([]uint8{0x10, 0x20}, rc.Data)

	empty := &Rom{}
	assert.Equal(EOF_MARK, empty.In(0))
}
