package wire

import (
	"encoding/binary"
	"math"
)

// Writer accumulates a frame body into a single growable buffer, the way
// the teacher's WriteFrame coalesces a frame header and its payload before
// issuing one Write. Header-count fields that are only known after
// iterating a collection are handled via Reserve/Patch back-patching.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer backed by buf (reused, truncated to length 0).
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf[:0]}
}

// Bytes returns the accumulated body.
func (w *Writer) Bytes() []byte { return w.buf }

// PutU8 appends a single byte.
func (w *Writer) PutU8(v uint8) { w.buf = append(w.buf, v) }

// PutU16 appends a big-endian uint16.
func (w *Writer) PutU16(v uint16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

// PutU32 appends a big-endian uint32.
func (w *Writer) PutU32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutBytes appends a u32-length-prefixed byte string.
func (w *Writer) PutBytes(b []byte) error {
	if len(b) > math.MaxUint32 {
		return ErrFieldTooLarge
	}
	w.PutU32(uint32(len(b)))
	w.buf = append(w.buf, b...)
	return nil
}

// PutString appends a u32-length-prefixed string.
func (w *Writer) PutString(s string) error { return w.PutBytes([]byte(s)) }

// ReserveU32 appends 4 placeholder bytes and returns their offset, to be
// filled in later with PatchU32 once a count becomes known.
func (w *Writer) ReserveU32() int {
	pos := len(w.buf)
	w.buf = append(w.buf, 0, 0, 0, 0)
	return pos
}

// PatchU32 overwrites the 4 bytes at pos (previously returned by ReserveU32).
func (w *Writer) PatchU32(pos int, v uint32) {
	binary.BigEndian.PutUint32(w.buf[pos:pos+4], v)
}

// Reader consumes a frame body sequentially with bounds checking on every
// read; any read past the end of buf yields ErrTruncated.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential, bounds-checked reads.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

func (r *Reader) remaining() int { return len(r.buf) - r.pos }

// GetU8 consumes one byte.
func (r *Reader) GetU8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, ErrTruncated
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// GetU16 consumes a big-endian uint16.
func (r *Reader) GetU16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

// GetU32 consumes a big-endian uint32.
func (r *Reader) GetU32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

// GetBytes consumes a u32-length-prefixed byte string. The returned slice
// aliases the reader's backing buffer; callers that retain it past the
// buffer's reuse point must copy.
func (r *Reader) GetBytes() ([]byte, error) {
	n, err := r.GetU32()
	if err != nil {
		return nil, err
	}
	if uint32(r.remaining()) < n {
		return nil, ErrTruncated
	}
	b := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

// GetString consumes a u32-length-prefixed string.
func (r *Reader) GetString() (string, error) {
	b, err := r.GetBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EnsureDone asserts no bytes remain, surfacing the latent chunk-framing
// redundancy (outer frame length vs. inner length-prefixed fields) as a
// trailing-bytes error rather than silently ignoring extra data.
func (r *Reader) EnsureDone() error {
	if r.remaining() != 0 {
		return errTrailingBytes(r.remaining())
	}
	return nil
}
