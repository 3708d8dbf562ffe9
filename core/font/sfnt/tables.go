package sfnt

import (
	"time"

	"github.com/aslpavel/icon-viewer/core/geom"
	"golang.org/x/text/encoding/unicode"
)

// Decoders for the fixed-layout SFNT tables. Each decoder consumes a
// Reader positioned at the start of its table.

// --- name ------------------------------------------------------------------

// NameTable holds the naming strings of a font, decoded from the
// Windows/English (platform 3, language 1033) records. Fields a font
// does not provide stay empty.
type NameTable struct {
	Copyright string
	Family    string
	Subfamily string
	FontID    string
	Fullname  string
	Version   string
}

type nameRecord struct {
	platformID uint16
	encodingID uint16
	languageID uint16
	nameID     uint16
	length     uint16
	offset     uint16
}

func parseName(r *Reader) (*NameTable, error) {
	if _, err := r.U16(); err != nil { // version
		return nil, errTruncated
	}
	recordCount, err := r.U16()
	if err != nil {
		return nil, errTruncated
	}
	storageOffset, err := r.U16()
	if err != nil {
		return nil, errTruncated
	}
	var records []nameRecord
	for i := 0; i < int(recordCount); i++ {
		var rec nameRecord
		if rec.platformID, err = r.U16(); err != nil {
			return nil, errTruncated
		}
		rec.encodingID, _ = r.U16()
		rec.languageID, _ = r.U16()
		rec.nameID, _ = r.U16()
		rec.length, _ = r.U16()
		if rec.offset, err = r.U16(); err != nil {
			return nil, errTruncated
		}
		// Windows platform, English (US); encodings 1 (BMP) and 10 (full)
		if rec.platformID != 3 || rec.languageID != 1033 {
			continue
		}
		if rec.encodingID != 1 && rec.encodingID != 10 {
			continue
		}
		records = append(records, rec)
	}
	fields := [6]string{}
	for _, rec := range records {
		if rec.nameID > 5 {
			continue
		}
		r.Seek(int(storageOffset) + int(rec.offset))
		raw, err := r.Read(int(rec.length))
		if err != nil {
			tracer().Infof("name record %d out of storage bounds", rec.nameID)
			continue
		}
		str, err := decodeUTF16(raw)
		if err != nil {
			tracer().Infof("name record %d: %v", rec.nameID, err)
			continue
		}
		fields[rec.nameID] = str
	}
	return &NameTable{
		Copyright: fields[0],
		Family:    fields[1],
		Subfamily: fields[2],
		FontID:    fields[3],
		Fullname:  fields[4],
		Version:   fields[5],
	}, nil
}

func decodeUTF16(str []byte) (string, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	decoder := enc.NewDecoder()
	s, err := decoder.Bytes(str)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

// --- head ------------------------------------------------------------------

// headMagic is the fixed magicNumber field of every valid 'head' table.
const headMagic = 0x5F0F3CF5

// HeadTable gives global information about the font, most importantly
// the size of the design em square and the format of the 'loca' table.
type HeadTable struct {
	Revision          float64
	Flags             uint16
	UnitsPerEm        uint16
	Created           time.Time
	Modified          time.Time
	MinPoint          geom.Point
	MaxPoint          geom.Point
	MacStyle          uint16
	LowestRecPPEM     uint16
	FontDirectionHint int16
	IndexToLocFormat  int16
	GlyphDataFormat   int16
}

func parseHead(r *Reader) (*HeadTable, error) {
	t := &HeadTable{}
	r.Advance(4) // majorVersion, minorVersion
	var err error
	if t.Revision, err = r.Fixed(); err != nil {
		return nil, errTruncated
	}
	r.Advance(4) // checksumAdjustment
	magic, err := r.U32()
	if err != nil {
		return nil, errTruncated
	}
	if magic != headMagic {
		return nil, errMalformed("head table magic number")
	}
	t.Flags, _ = r.U16()
	t.UnitsPerEm, _ = r.U16()
	if t.Created, err = r.LongDate(); err != nil {
		return nil, errTruncated
	}
	if t.Modified, err = r.LongDate(); err != nil {
		return nil, errTruncated
	}
	xMin, _ := r.I16()
	yMin, _ := r.I16()
	xMax, _ := r.I16()
	yMax, err := r.I16()
	if err != nil {
		return nil, errTruncated
	}
	t.MinPoint = geom.P(float64(xMin), float64(yMin))
	t.MaxPoint = geom.P(float64(xMax), float64(yMax))
	t.MacStyle, _ = r.U16()
	t.LowestRecPPEM, _ = r.U16()
	t.FontDirectionHint, _ = r.I16()
	t.IndexToLocFormat, _ = r.I16()
	if t.GlyphDataFormat, err = r.I16(); err != nil {
		return nil, errTruncated
	}
	return t, nil
}

// --- post ------------------------------------------------------------------

// PostTable maps glyph ids to their PostScript names. Only version 2.0
// tables carry per-font names; any other version decodes to an empty
// table. The 258 standard Macintosh names are not materialized, only
// the font-specific ones.
type PostTable struct {
	GlyphToName map[GlyphIndex]string
}

func parsePost(r *Reader) (*PostTable, error) {
	version, err := r.Fixed()
	if err != nil {
		return nil, errTruncated
	}
	if version != 2.0 {
		return &PostTable{GlyphToName: map[GlyphIndex]string{}}, nil
	}
	r.Advance(28) // remainder of the header
	numGlyphs, err := r.U16()
	if err != nil {
		return nil, errTruncated
	}
	glyphToIndex := make(map[GlyphIndex]int)
	maxIndex := -1
	for gid := 0; gid < int(numGlyphs); gid++ {
		nameIndex, err := r.U16()
		if err != nil {
			return nil, errTruncated
		}
		if nameIndex >= 258 {
			index := int(nameIndex) - 258
			glyphToIndex[GlyphIndex(gid)] = index
			if index > maxIndex {
				maxIndex = index
			}
		}
	}
	names := make([]string, 0, maxIndex+1)
	for i := 0; i <= maxIndex; i++ {
		length, err := r.U8()
		if err != nil {
			return nil, errTruncated
		}
		name, err := r.String(int(length))
		if err != nil {
			return nil, errTruncated
		}
		names = append(names, name)
	}
	t := &PostTable{GlyphToName: make(map[GlyphIndex]string, len(glyphToIndex))}
	for gid, index := range glyphToIndex {
		t.GlyphToName[gid] = names[index]
	}
	return t, nil
}

// --- hhea ------------------------------------------------------------------

// HHeaTable contains information for horizontal layout, and the number
// of full advance/bearing records in 'hmtx'.
type HHeaTable struct {
	Ascender        int16
	Descender       int16
	LineGap         int16
	AdvanceWidthMax uint16
	MinLeftBearing  int16
	MinRightBearing int16
	XMaxExtent      int16
	CaretSlopeRise  int16
	CaretSlopeRun   int16
	CaretOffset     int16
	NumberOfMetrics int
}

func parseHHea(r *Reader) (*HHeaTable, error) {
	t := &HHeaTable{}
	r.Advance(4) // majorVersion, minorVersion
	var err error
	if t.Ascender, err = r.I16(); err != nil {
		return nil, errTruncated
	}
	t.Descender, _ = r.I16()
	t.LineGap, _ = r.I16()
	t.AdvanceWidthMax, _ = r.U16()
	t.MinLeftBearing, _ = r.I16()
	t.MinRightBearing, _ = r.I16()
	t.XMaxExtent, _ = r.I16()
	t.CaretSlopeRise, _ = r.I16()
	t.CaretSlopeRun, _ = r.I16()
	if t.CaretOffset, err = r.I16(); err != nil {
		return nil, errTruncated
	}
	r.Advance(10) // reserved + metricDataFormat (always 0)
	n, err := r.U16()
	if err != nil {
		return nil, errTruncated
	}
	t.NumberOfMetrics = int(n)
	return t, nil
}

// --- hmtx ------------------------------------------------------------------

// Metric is one advance/bearing record of the 'hmtx' table.
type Metric struct {
	Advance     uint16
	SideBearing int16
}

// HMtxTable contains the horizontal metrics of every glyph. Glyphs past
// the explicit records share the advance of the last record; their side
// bearings follow as a trailing array. In a monospaced font a single
// record may cover the whole font.
type HMtxTable struct {
	Metrics  []Metric
	Bearings []int16
}

func parseHMtx(r *Reader, numberOfMetrics, glyphCount int) (*HMtxTable, error) {
	t := &HMtxTable{Metrics: make([]Metric, 0, numberOfMetrics)}
	for i := 0; i < numberOfMetrics; i++ {
		advance, err := r.U16()
		if err != nil {
			return nil, errTruncated
		}
		bearing, err := r.I16()
		if err != nil {
			return nil, errTruncated
		}
		t.Metrics = append(t.Metrics, Metric{Advance: advance, SideBearing: bearing})
	}
	for i := 0; i < glyphCount-numberOfMetrics; i++ {
		bearing, err := r.I16()
		if err != nil {
			return nil, errTruncated
		}
		t.Bearings = append(t.Bearings, bearing)
	}
	return t, nil
}

// Advance returns the advance width of a glyph.
func (t *HMtxTable) Advance(gid GlyphIndex) uint16 {
	if len(t.Metrics) == 0 {
		return 0
	}
	if int(gid) < len(t.Metrics) {
		return t.Metrics[gid].Advance
	}
	return t.Metrics[len(t.Metrics)-1].Advance
}

// SideBearing returns the left side bearing of a glyph.
func (t *HMtxTable) SideBearing(gid GlyphIndex) int16 {
	if int(gid) < len(t.Metrics) {
		return t.Metrics[gid].SideBearing
	}
	i := int(gid) - len(t.Metrics)
	if i < len(t.Bearings) {
		return t.Bearings[i]
	}
	return 0
}

// --- loca ------------------------------------------------------------------

// LocaTable stores glyph-count + 1 byte offsets into the 'glyf' table;
// glyph i occupies [Offsets[i], Offsets[i+1]). The offsets are
// monotonically non-decreasing; an equal pair marks a blank glyph.
type LocaTable struct {
	Offsets []uint32
}

func parseLoca(r *Reader, indexToLocFormat int16, glyphCount int) (*LocaTable, error) {
	t := &LocaTable{Offsets: make([]uint32, 0, glyphCount+1)}
	for i := 0; i <= glyphCount; i++ {
		var offset uint32
		if indexToLocFormat == 0 {
			short, err := r.U16()
			if err != nil {
				return nil, errTruncated
			}
			offset = uint32(short) * 2
		} else {
			long, err := r.U32()
			if err != nil {
				return nil, errTruncated
			}
			offset = long
		}
		if i > 0 && offset < t.Offsets[i-1] {
			return nil, errMalformed("loca offsets not monotone")
		}
		t.Offsets = append(t.Offsets, offset)
	}
	return t, nil
}
