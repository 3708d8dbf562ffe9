package sfnt

import (
	"time"

	"github.com/aslpavel/icon-viewer/core"
)

// Reading bytes from a font's binary representation

// errTruncated is returned whenever a read would cross the end of the
// font data or of a table view.
var errTruncated = core.Error(core.ETRUNCATED, "read past end of font data")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

func u64(b []byte) uint64 {
	_ = b[7] // Bounds check hint to compiler
	return uint64(u32(b))<<32 | uint64(u32(b[4:]))
}

// binarySegm is a segment of byte data. All table decoders operate on
// segments, which are sub-slices of the font's binary data; no glyph or
// table bytes are ever copied out.
type binarySegm []byte

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 || offset+n > len(b) {
		return nil, errTruncated
	}
	return b[offset : offset+n], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// --- Reader ----------------------------------------------------------------

// longDateEpoch is the zero value of OpenType LONGDATETIME fields:
// midnight, January 1st 1904.
var longDateEpoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// Reader is a positioned cursor over a segment of font data. All
// numeric reads are big-endian, as is everything in SFNT files.
// Readers are cheap to create; table decoders use one per decode run.
//
// Reads past the end of the data fail with an ETRUNCATED error.
type Reader struct {
	data binarySegm
	pos  int
}

// NewReader wraps a byte slice in a reader positioned at its start.
func NewReader(data []byte) *Reader {
	return &Reader{data: binarySegm(data)}
}

// Len returns the total size of the underlying data in bytes.
func (r *Reader) Len() int {
	return len(r.data)
}

// Tell returns the current cursor position.
func (r *Reader) Tell() int {
	return r.pos
}

// Seek positions the cursor at pos. A negative pos is an offset from
// the end of the data. The resulting position is clamped to the data
// bounds.
func (r *Reader) Seek(pos int) {
	if pos < 0 {
		pos += len(r.data)
	}
	r.pos = clamp(pos, 0, len(r.data))
}

// Advance moves the cursor by n bytes (n may be negative), clamping to
// the data bounds.
func (r *Reader) Advance(n int) {
	r.pos = clamp(r.pos+n, 0, len(r.data))
}

// View returns an independent reader over the sub-segment [from, to).
// The arguments are clamped to the data bounds; the view shares the
// underlying bytes.
func (r *Reader) View(from, to int) *Reader {
	from = clamp(from, 0, len(r.data))
	to = clamp(to, from, len(r.data))
	return &Reader{data: r.data[from:to]}
}

// Read returns a zero-copy view of the next n bytes and advances the
// cursor past them.
func (r *Reader) Read(n int) (binarySegm, error) {
	b, err := r.data.view(r.pos, n)
	if err != nil {
		return nil, err
	}
	r.pos += n
	return b, nil
}

// String reads n bytes and returns them as a string.
func (r *Reader) String(n int) (string, error) {
	b, err := r.Read(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) I8() (int8, error) {
	n, err := r.U8()
	return int8(n), err
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.Read(2)
	if err != nil {
		return 0, err
	}
	return u16(b), nil
}

func (r *Reader) I16() (int16, error) {
	n, err := r.U16()
	return int16(n), err
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.Read(4)
	if err != nil {
		return 0, err
	}
	return u32(b), nil
}

func (r *Reader) I32() (int32, error) {
	n, err := r.U32()
	return int32(n), err
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.Read(8)
	if err != nil {
		return 0, err
	}
	return u64(b), nil
}

func (r *Reader) I64() (int64, error) {
	n, err := r.U64()
	return int64(n), err
}

// Fixed reads a 16.16 fixed-point number.
func (r *Reader) Fixed() (float64, error) {
	n, err := r.I32()
	return float64(n) / 65536.0, err
}

// F2Dot14 reads a 2.14 fixed-point number, used by composite glyph
// transformations.
func (r *Reader) F2Dot14() (float64, error) {
	n, err := r.I16()
	return float64(n) / 16384.0, err
}

// LongDate reads an OpenType LONGDATETIME: seconds since 1904-01-01,
// midnight UTC.
func (r *Reader) LongDate() (time.Time, error) {
	secs, err := r.I64()
	if err != nil {
		return time.Time{}, err
	}
	return longDateEpoch.Add(time.Duration(secs) * time.Second), nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
