/*
Package testfont assembles tiny TrueType fonts in memory, byte by byte,
for use as deterministic test fixtures. The fonts carry the required
SFNT tables plus a handful of hand-written glyphs (a square, a curve
with two consecutive off-curve points, a transformed composite, a
reference cycle), so parser and outline tests can assert exact values.
*/
package testfont

import "sort"

// buf accumulates big-endian binary data.
type buf struct {
	data []byte
}

func (b *buf) u8(v uint8) *buf {
	b.data = append(b.data, v)
	return b
}

func (b *buf) u16(v uint16) *buf {
	b.data = append(b.data, byte(v>>8), byte(v))
	return b
}

func (b *buf) i16(v int16) *buf {
	return b.u16(uint16(v))
}

func (b *buf) u32(v uint32) *buf {
	b.data = append(b.data, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	return b
}

func (b *buf) i64(v int64) *buf {
	b.u32(uint32(uint64(v) >> 32))
	return b.u32(uint32(uint64(v)))
}

func (b *buf) raw(data []byte) *buf {
	b.data = append(b.data, data...)
	return b
}

func (b *buf) str16(s string) *buf {
	for _, r := range s { // BMP only
		b.u16(uint16(r))
	}
	return b
}

func (b *buf) pascal(s string) *buf {
	b.u8(uint8(len(s)))
	return b.raw([]byte(s))
}

// --- SFNT container --------------------------------------------------------

// Table is one named table for SFNT assembly.
type Table struct {
	Tag  string
	Data []byte
}

// SFNT assembles a font file from a version number and a set of tables.
// Tables are laid out in tag order, 4-byte aligned, with zero
// checksums.
func SFNT(version uint32, tables []Table) []byte {
	sorted := append([]Table{}, tables...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tag < sorted[j].Tag })
	font := &buf{}
	font.u32(version)
	font.u16(uint16(len(sorted)))
	font.u16(0).u16(0).u16(0) // searchRange, entrySelector, rangeShift
	offset := 12 + 16*len(sorted)
	for _, table := range sorted {
		font.raw([]byte(table.Tag))
		font.u32(0) // checksum
		font.u32(uint32(offset))
		font.u32(uint32(len(table.Data)))
		offset += (len(table.Data) + 3) &^ 3
	}
	for _, table := range sorted {
		font.raw(table.Data)
		for len(font.data)%4 != 0 {
			font.u8(0)
		}
	}
	return font.data
}

// --- Tables ----------------------------------------------------------------

// Head builds a 'head' table with the given em size and loca format.
func Head(unitsPerEm uint16, indexToLocFormat int16) []byte {
	b := &buf{}
	b.u16(1).u16(0)       // version
	b.u32(0x00010000)     // fontRevision 1.0
	b.u32(0)              // checksumAdjustment
	b.u32(0x5F0F3CF5)     // magicNumber
	b.u16(0)              // flags
	b.u16(unitsPerEm)     //
	b.i64(0).i64(0)       // created, modified
	b.i16(0).i16(0)       // xMin, yMin
	b.i16(2048).i16(2048) // xMax, yMax
	b.u16(0)              // macStyle
	b.u16(8)              // lowestRecPPEM
	b.i16(2)              // fontDirectionHint
	b.i16(indexToLocFormat)
	b.i16(0) // glyphDataFormat
	return b.data
}

// MaxP builds a 'maxp' table declaring numGlyphs glyphs.
func MaxP(numGlyphs uint16) []byte {
	b := &buf{}
	b.u32(0x00010000)
	b.u16(numGlyphs)
	return b.data
}

// Name builds a 'name' table with Windows/English family, subfamily
// and version strings.
func Name(family, subfamily, version string) []byte {
	type rec struct {
		nameID uint16
		str    string
	}
	records := []rec{{1, family}, {2, subfamily}, {5, version}}
	b := &buf{}
	b.u16(0)                           // version
	b.u16(uint16(len(records)))        // count
	b.u16(uint16(6 + 12*len(records))) // storageOffset
	offset := 0
	for _, r := range records {
		b.u16(3)    // platformID: Windows
		b.u16(1)    // encodingID: Unicode BMP
		b.u16(1033) // languageID: English (US)
		b.u16(r.nameID)
		b.u16(uint16(2 * len(r.str)))
		b.u16(uint16(offset))
		offset += 2 * len(r.str)
	}
	for _, r := range records {
		b.str16(r.str)
	}
	return b.data
}

// Segment is one format-4 cmap segment.
type Segment struct {
	Start, End  uint16
	Delta       int16
	RangeOffset uint16
}

// CMap4 builds a 'cmap' table with a single format-4 subtable under
// platform 0, encoding 3. The caller supplies the terminating
// (0xFFFF, 0xFFFF) segment.
func CMap4(segments []Segment) []byte {
	b := &buf{}
	b.u16(0) // version
	b.u16(1) // numTables
	b.u16(0).u16(3).u32(12)
	segCount := len(segments)
	length := 14 + 8*segCount + 2
	b.u16(4) // format
	b.u16(uint16(length))
	b.u16(0) // language
	b.u16(uint16(2 * segCount))
	b.u16(0).u16(0).u16(0) // searchRange, entrySelector, rangeShift
	for _, s := range segments {
		b.u16(s.End)
	}
	b.u16(0) // reservedPad
	for _, s := range segments {
		b.u16(s.Start)
	}
	for _, s := range segments {
		b.i16(s.Delta)
	}
	for _, s := range segments {
		b.u16(s.RangeOffset)
	}
	return b.data
}

// Group is one format-12 cmap group.
type Group struct {
	Start, End uint32
	Glyph      uint32
}

// CMap12 builds a 'cmap' table with a single format-12 subtable under
// platform 0, encoding 4.
func CMap12(groups []Group) []byte {
	b := &buf{}
	b.u16(0) // version
	b.u16(1) // numTables
	b.u16(0).u16(4).u32(12)
	b.u16(12) // format
	b.u16(0)  // reserved
	b.u32(uint32(16 + 12*len(groups)))
	b.u32(0) // language
	b.u32(uint32(len(groups)))
	for _, g := range groups {
		b.u32(g.Start).u32(g.End).u32(g.Glyph)
	}
	return b.data
}

// HHea builds an 'hhea' table declaring the given number of hmtx
// records.
func HHea(numberOfMetrics uint16) []byte {
	b := &buf{}
	b.u16(1).u16(0)         // version
	b.i16(1900).i16(-500)   // ascender, descender
	b.i16(0)                // lineGap
	b.u16(2048)             // advanceWidthMax
	b.i16(0).i16(0)         // min side bearings
	b.i16(2048)             // xMaxExtent
	b.i16(1).i16(0)         // caret slope
	b.i16(0)                // caretOffset
	b.raw(make([]byte, 10)) // reserved + metricDataFormat
	b.u16(numberOfMetrics)
	return b.data
}

// Metric is one advance/bearing pair for HMtx.
type Metric struct {
	Advance uint16
	Bearing int16
}

// HMtx builds an 'hmtx' table from full records plus trailing side
// bearings.
func HMtx(metrics []Metric, bearings []int16) []byte {
	b := &buf{}
	for _, m := range metrics {
		b.u16(m.Advance).i16(m.Bearing)
	}
	for _, sb := range bearings {
		b.i16(sb)
	}
	return b.data
}

// Post builds a version-2.0 'post' table. nameIndices holds one
// glyphNameIndex per glyph (0 for .notdef, 258+n for names[n]).
func Post(nameIndices []uint16, names []string) []byte {
	b := &buf{}
	b.u32(0x00020000)       // version 2.0
	b.raw(make([]byte, 28)) // italicAngle … maxMemType1
	b.u16(uint16(len(nameIndices)))
	for _, index := range nameIndices {
		b.u16(index)
	}
	for _, name := range names {
		b.pascal(name)
	}
	return b.data
}

// PostV3 builds a version-3.0 'post' table, which carries no names.
func PostV3() []byte {
	b := &buf{}
	b.u32(0x00030000)
	b.raw(make([]byte, 28))
	return b.data
}

// LocaShort builds a short-format 'loca' table from byte offsets
// (which must all be even).
func LocaShort(offsets []uint32) []byte {
	b := &buf{}
	for _, offset := range offsets {
		b.u16(uint16(offset / 2))
	}
	return b.data
}

// --- Glyph bodies ----------------------------------------------------------

func glyphHeader(contours int16, xMin, yMin, xMax, yMax int16) *buf {
	b := &buf{}
	b.i16(contours)
	b.i16(xMin).i16(yMin).i16(xMax).i16(yMax)
	return b
}

// SquareGlyph is a simple glyph with four on-curve points:
// (0,0) (10,0) (10,10) (0,10), one contour.
func SquareGlyph() []byte {
	b := glyphHeader(1, 0, 0, 10, 10)
	b.u16(3)                              // endPtsOfContours
	b.u16(0)                              // instructionLength
	b.raw([]byte{0x31, 0x33, 0x35, 0x23}) // flags
	b.raw([]byte{10, 10})                 // x deltas
	b.raw([]byte{10})                     // y deltas
	b.u8(0)                               // pad to even size for short loca
	return b.data
}

// CurveGlyph is a simple glyph with two consecutive off-curve points:
// (0,0) on, (10,0) off, (20,10) off, (0,10) on, one contour.
func CurveGlyph() []byte {
	b := glyphHeader(1, 0, 0, 20, 10)
	b.u16(3)
	b.u16(0)
	b.raw([]byte{0x31, 0x32, 0x36, 0x23}) // flags
	b.raw([]byte{10, 10, 20})             // x deltas
	b.raw([]byte{10})                     // y deltas
	return b.data
}

// CompositeGlyph references child glyph 1 with translation (100, 50)
// and uniform scale 0.5.
func CompositeGlyph() []byte {
	b := glyphHeader(-1, 0, 0, 0, 0)
	b.u16(0x000B) // ARG_1_AND_2_ARE_WORDS | ARGS_ARE_XY_VALUES | WE_HAVE_A_SCALE
	b.u16(1)      // child glyph id
	b.i16(100).i16(50)
	b.u16(0x2000) // 0.5 in F2Dot14
	return b.data
}

// CycleGlyph is a composite glyph referencing itself (glyph id 4).
func CycleGlyph() []byte {
	b := glyphHeader(-1, 0, 0, 0, 0)
	b.u16(0x0003) // ARG_1_AND_2_ARE_WORDS | ARGS_ARE_XY_VALUES
	b.u16(4)      // child glyph id: itself
	b.i16(0).i16(0)
	return b.data
}

// BigSquareGlyph is a square covering a full 2048-unit em, with wide
// (16-bit) coordinate deltas.
func BigSquareGlyph() []byte {
	b := glyphHeader(1, 0, 0, 2048, 2048)
	b.u16(3)
	b.u16(0)
	b.raw([]byte{0x31, 0x21, 0x11, 0x21}) // flags
	b.i16(2048).i16(-2048)                // x deltas
	b.i16(2048)                           // y deltas
	return b.data
}

// --- Ready-made fonts ------------------------------------------------------

// IconFont is a 5-glyph TrueType font:
//
//	gid 0  blank (.notdef)
//	gid 1  "square"    U+0041  SquareGlyph
//	gid 2  "curve"     U+0042  CurveGlyph
//	gid 3  "compound"  U+0043  CompositeGlyph (child: gid 1)
//	gid 4  (unnamed)   U+0044  CycleGlyph
func IconFont() []byte {
	glyf := &buf{}
	glyf.raw(SquareGlyph())    // [0, 22)
	glyf.raw(CurveGlyph())     // [22, 44)
	glyf.raw(CompositeGlyph()) // [44, 64)
	glyf.raw(CycleGlyph())     // [64, 82)
	loca := []uint32{0, 0, 22, 44, 64, 82}
	return SFNT(0x00010000, []Table{
		{"head", Head(2048, 0)},
		{"maxp", MaxP(5)},
		{"name", Name("Test Icons", "Regular", "Version 1.0")},
		{"cmap", CMap4([]Segment{
			{Start: 0x41, End: 0x44, Delta: -0x40},
			{Start: 0xFFFF, End: 0xFFFF, Delta: 1},
		})},
		{"post", Post(
			[]uint16{0, 258, 259, 260, 0},
			[]string{"square", "curve", "compound"},
		)},
		{"hhea", HHea(2)},
		{"hmtx", HMtx(
			[]Metric{{500, 50}, {600, 60}},
			[]int16{70, 80, 90},
		)},
		{"loca", LocaShort(loca)},
		{"glyf", glyf.data},
	})
}

// BigBoxFont is a 2-glyph TrueType font whose single drawable glyph
// (U+0041) covers the full 2048-unit em square.
func BigBoxFont() []byte {
	glyf := BigSquareGlyph()
	loca := []uint32{0, 0, uint32(len(glyf))}
	return SFNT(0x00010000, []Table{
		{"head", Head(2048, 0)},
		{"maxp", MaxP(2)},
		{"name", Name("Big Box", "Regular", "Version 1.0")},
		{"cmap", CMap4([]Segment{
			{Start: 0x41, End: 0x41, Delta: -0x40},
			{Start: 0xFFFF, End: 0xFFFF, Delta: 1},
		})},
		{"post", PostV3()},
		{"hhea", HHea(1)},
		{"hmtx", HMtx([]Metric{{2048, 0}}, []int16{0})},
		{"loca", LocaShort(loca)},
		{"glyf", glyf},
	})
}

// CFFFont is an 'OTTO' font carrying only header tables; its outlines
// cannot be decoded.
func CFFFont() []byte {
	return SFNT(0x4F54544F, []Table{
		{"head", Head(1000, 0)},
		{"maxp", MaxP(1)},
		{"name", Name("Test CFF", "Regular", "Version 1.0")},
	})
}
