package wdq

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteReaderBounds(t *testing.T) {
	r := newByteReader([]byte{1, 2, 3, 4})

	_, err := r.uint16At(3)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.uint32At(1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.float64At(0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.slice(-1, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.slice(2, -1)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	v, err := r.uint32At(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), v)
}

func TestByteReaderOrder(t *testing.T) {
	r := newByteReader([]byte{0x01, 0x02})

	v, err := r.uint16At(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v)

	r.order = binary.BigEndian
	v, err = r.uint16At(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), v)
}

func TestByteReaderCursor(t *testing.T) {
	r := newByteReader([]byte{0x10, 0x00, 0xF0, 0xFF})

	v, err := r.readInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(16), v)

	v, err = r.readInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-16), v)

	_, err = r.readInt16()
	assert.ErrorIs(t, err, ErrOutOfBounds)

	r.seek(2)
	r.skip(-2)
	v, err = r.readInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(16), v)
}

func TestByteReaderStringAt(t *testing.T) {
	r := newByteReader([]byte("mV\x00\x00\x00\x00 C \x00"))

	s, err := r.stringAt(0, 6)
	require.NoError(t, err)
	assert.Equal(t, "mV", s)

	s, err = r.stringAt(6, 4)
	require.NoError(t, err)
	assert.Equal(t, "C", s)

	_, err = r.stringAt(8, 6)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
