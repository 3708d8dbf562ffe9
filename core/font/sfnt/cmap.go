package sfnt

import "fmt"

// CMapTable maps Unicode code-points to glyph ids and back. A font may
// carry several cmap subtables; only the best supported one is decoded
// (see supportedCmapFormat), and its segments are expanded into the two
// lookup maps once, since the character map is consulted constantly.
//
// The reverse map is injective as long as the source is; when two
// code-points share a glyph, the last decoded one wins.
type CMapTable struct {
	CodepointToGlyph map[rune]GlyphIndex
	GlyphToCodepoint map[GlyphIndex]rune
}

// Lookup returns the glyph id a code-point maps to.
func (t *CMapTable) Lookup(cp rune) (GlyphIndex, bool) {
	gid, ok := t.CodepointToGlyph[cp]
	return gid, ok
}

// ReverseLookup returns the code-point mapped to a glyph id. This is
// non-standard, but the icon projection needs it to pair PostScript
// names with code-points.
func (t *CMapTable) ReverseLookup(gid GlyphIndex) (rune, bool) {
	cp, ok := t.GlyphToCodepoint[gid]
	return cp, ok
}

// platformEncodingWidth returns the number of bytes per character
// assumed by the given platform ID and platform-specific ID. Old fonts,
// from when Unicode meant the Basic Multilingual Plane, assume 2 bytes
// per character; recent fonts support the full range, up to 4 bytes.
func platformEncodingWidth(pid, psid uint16) int {
	switch pid {
	case 0: // Unicode platform
		switch psid {
		case 3: // Unicode BMP
			return 2
		case 4: // Unicode full
			return 4
		}
	case 3: // Windows platform
		switch psid {
		case 1: // Unicode BMP
			return 2
		case 10: // Unicode full
			return 4
		}
	}
	return 0 // width 0 will never get selected
}

// We only support the following platform/encoding/format combinations:
//
//	0 (Unicode)  3    4   Unicode BMP
//	0 (Unicode)  4    12  Unicode full
//	3 (Win)      1    4   Unicode BMP
//	3 (Win)      10   12  Unicode full
func supportedCmapFormat(format, pid, psid uint16) bool {
	return (pid == 0 && psid == 3 && format == 4) ||
		(pid == 0 && psid == 4 && format == 12) ||
		(pid == 3 && psid == 1 && format == 4) ||
		(pid == 3 && psid == 10 && format == 12)
}

func parseCMap(r *Reader) (*CMapTable, error) {
	r.Advance(2) // version
	numTables, err := r.U16()
	if err != nil {
		return nil, errTruncated
	}
	// pick the subtable with the widest supported encoding
	var bestOffset uint32
	var bestFormat uint16
	bestWidth := 0
	for i := 0; i < int(numTables); i++ {
		pid, err := r.U16()
		if err != nil {
			return nil, errTruncated
		}
		psid, _ := r.U16()
		offset, err := r.U32()
		if err != nil {
			return nil, errTruncated
		}
		width := platformEncodingWidth(pid, psid)
		if width <= bestWidth {
			continue
		}
		format, err := r.View(int(offset), r.Len()).U16()
		if err != nil {
			tracer().Infof("cmap subtable (%d,%d) out of table bounds", pid, psid)
			continue
		}
		tracer().Debugf("cmap subtable (%d,%d) has format %d", pid, psid, format)
		if supportedCmapFormat(format, pid, psid) {
			bestWidth = width
			bestFormat = format
			bestOffset = offset
		}
	}
	if bestWidth == 0 {
		return nil, errFontFormat("no supported cmap subtable found")
	}
	t := &CMapTable{
		CodepointToGlyph: make(map[rune]GlyphIndex),
		GlyphToCodepoint: make(map[GlyphIndex]rune),
	}
	sub := r.View(int(bestOffset), r.Len())
	sub.Advance(2) // format, already read
	switch bestFormat {
	case 4:
		err = parseCMapFormat4(sub, t)
	case 12:
		err = parseCMapFormat12(sub, t)
	default:
		return nil, errFontFormat(fmt.Sprintf("cmap subtable format %d", bestFormat))
	}
	if err != nil {
		return nil, err
	}
	tracer().Debugf("cmap covers %d code-points", len(t.CodepointToGlyph))
	return t, nil
}

// Format 4, "segment mapping to delta values": four parallel arrays
// describing contiguous code ranges. Ranges using the glyphIdArray
// indirection (idRangeOffset != 0) are not expanded; icon fonts do not
// use them, so such segments are logged and skipped.
func parseCMapFormat4(r *Reader, t *CMapTable) error {
	length, err := r.U16()
	if err != nil {
		return errTruncated
	}
	body := r.View(r.Tell(), r.Tell()+int(length))
	body.Advance(2) // language
	segCountX2, err := body.U16()
	if err != nil {
		return errTruncated
	}
	segCount := int(segCountX2) / 2
	body.Advance(6) // searchRange, entrySelector, rangeShift
	endCodes := make([]uint16, 0, segCount)
	for i := 0; i < segCount; i++ {
		code, err := body.U16()
		if err != nil {
			return errTruncated
		}
		endCodes = append(endCodes, code)
	}
	body.Advance(2) // reservedPad
	startCodes := make([]uint16, 0, segCount)
	for i := 0; i < segCount; i++ {
		code, err := body.U16()
		if err != nil {
			return errTruncated
		}
		startCodes = append(startCodes, code)
	}
	idDeltas := make([]int16, 0, segCount)
	for i := 0; i < segCount; i++ {
		delta, err := body.I16()
		if err != nil {
			return errTruncated
		}
		idDeltas = append(idDeltas, delta)
	}
	idRangeOffsets := make([]uint16, 0, segCount)
	for i := 0; i < segCount; i++ {
		offset, err := body.U16()
		if err != nil {
			return errTruncated
		}
		idRangeOffsets = append(idRangeOffsets, offset)
	}
	for seg := 0; seg < segCount; seg++ {
		start, end := startCodes[seg], endCodes[seg]
		if start == 0xFFFF && end == 0xFFFF {
			break
		}
		if idRangeOffsets[seg] != 0 {
			tracer().Infof("cmap format 4 segment %d uses idRangeOffset, skipping", seg)
			continue
		}
		for code := uint32(start); code <= uint32(end); code++ {
			gid := GlyphIndex(uint16(code) + uint16(idDeltas[seg]))
			t.CodepointToGlyph[rune(code)] = gid
			t.GlyphToCodepoint[gid] = rune(code)
		}
	}
	return nil
}

// Format 12, "segmented coverage": sequential groups of 32-bit code
// ranges mapping to consecutive glyph ids.
func parseCMapFormat12(r *Reader, t *CMapTable) error {
	r.Advance(2) // reserved
	r.Advance(8) // length, language
	numGroups, err := r.U32()
	if err != nil {
		return errTruncated
	}
	for i := 0; i < int(numGroups); i++ {
		startCode, err := r.U32()
		if err != nil {
			return errTruncated
		}
		endCode, err := r.U32()
		if err != nil {
			return errTruncated
		}
		startGlyph, err := r.U32()
		if err != nil {
			return errTruncated
		}
		if endCode > 0x10FFFF { // cap at the last Unicode scalar value
			endCode = 0x10FFFF
		}
		gid := startGlyph
		for code := startCode; code <= endCode; code++ {
			t.CodepointToGlyph[rune(code)] = GlyphIndex(gid)
			t.GlyphToCodepoint[GlyphIndex(gid)] = rune(code)
			gid++
		}
	}
	return nil
}
