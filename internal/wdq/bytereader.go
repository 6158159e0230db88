package wdq

import (
	"encoding/binary"
	"math"
	"strings"
)

// byteReader is a bounds-checked cursor over an in-memory file image.
// WinDaq files are little-endian throughout; the byte order is a field
// so probing code can flip it without touching the field readers.
type byteReader struct {
	buf   []byte
	pos   int64
	order binary.ByteOrder
}

func newByteReader(buf []byte) *byteReader {
	return &byteReader{buf: buf, order: binary.LittleEndian}
}

func (r *byteReader) size() int64 { return int64(len(r.buf)) }

func (r *byteReader) seek(off int64) { r.pos = off }

func (r *byteReader) skip(n int64) { r.pos += n }

// slice returns n bytes starting at off, or ErrOutOfBounds when the
// range leaves the buffer.
func (r *byteReader) slice(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off > r.size()-n {
		return nil, ErrOutOfBounds
	}
	return r.buf[off : off+n], nil
}

func (r *byteReader) uint8At(off int64) (uint8, error) {
	b, err := r.slice(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *byteReader) uint16At(off int64) (uint16, error) {
	b, err := r.slice(off, 2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *byteReader) int16At(off int64) (int16, error) {
	v, err := r.uint16At(off)
	return int16(v), err
}

func (r *byteReader) uint32At(off int64) (uint32, error) {
	b, err := r.slice(off, 4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

func (r *byteReader) int32At(off int64) (int32, error) {
	v, err := r.uint32At(off)
	return int32(v), err
}

func (r *byteReader) float32At(off int64) (float32, error) {
	v, err := r.uint32At(off)
	return math.Float32frombits(v), err
}

func (r *byteReader) float64At(off int64) (float64, error) {
	b, err := r.slice(off, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(b)), nil
}

// stringAt reads a fixed-length field, dropping NUL padding and
// surrounding whitespace.
func (r *byteReader) stringAt(off, n int64) (string, error) {
	b, err := r.slice(off, n)
	if err != nil {
		return "", err
	}
	s := string(b)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s), nil
}

// readInt16 reads the next sample word and advances the cursor.
func (r *byteReader) readInt16() (int16, error) {
	v, err := r.int16At(r.pos)
	if err == nil {
		r.pos += 2
	}
	return v, err
}
