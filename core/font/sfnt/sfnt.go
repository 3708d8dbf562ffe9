package sfnt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aslpavel/icon-viewer/core/geom"
)

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the OpenType specification as:
// Array of four uint8s (length = 32 bits) used to identify a table.
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
//
//	MakeTag([]byte("cmap"))
//
// If b is shorter or longer, it will be silently extended or cut as
// appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as
// appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// --- Font ------------------------------------------------------------------

// FontKind discriminates the two flavours of the SFNT container.
type FontKind int

const (
	KindTrueType FontKind = iota // TrueType outlines in a 'glyf' table
	KindCFF                      // PostScript outlines in a 'CFF ' table ('OTTO')
)

func (k FontKind) String() string {
	if k == KindCFF {
		return "otf"
	}
	return "ttf"
}

// TableRecord is one entry of the SFNT table directory. It locates a
// table within the font's binary data.
type TableRecord struct {
	Tag      Tag
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// Font gives access to the tables of an SFNT font. It owns the font's
// binary data; all table views and glyphs borrow from it and must not
// outlive it.
//
// Tables are decoded on first request and memoized under a lock, so a
// Font may be shared between goroutines for read-only use.
type Font struct {
	data       binarySegm
	Kind       FontKind
	Tables     map[Tag]TableRecord
	GlyphCount int
	Names      *NameTable

	mu       sync.Mutex
	head     *HeadTable
	cmap     *CMapTable
	post     *PostTable
	hhea     *HHeaTable
	hmtx     *HMtxTable
	loca     *LocaTable
	glyf     *GlyfTable
	nameToCp map[string]rune
}

// Parse parses an SFNT font from a byte slice. The Font needs ongoing
// access to the byte data after Parse returns; the data is assumed
// immutable while the Font remains in use.
//
// The table directory, 'maxp', 'name' and 'head' are decoded eagerly;
// everything else on demand.
func Parse(data []byte) (*Font, error) {
	r := NewReader(data)
	version, err := r.U32()
	if err != nil {
		return nil, errTruncated
	}
	font := &Font{data: binarySegm(data)}
	switch version {
	case 0x00010000:
		font.Kind = KindTrueType
	case 0x4F54544F: // 'OTTO'
		font.Kind = KindCFF
	default:
		return nil, errFontFormat(fmt.Sprintf("unknown sfnt version 0x%08x", version))
	}
	numTables, err := r.U16()
	if err != nil {
		return nil, errTruncated
	}
	r.Advance(6) // searchRange, entrySelector, rangeShift
	font.Tables = make(map[Tag]TableRecord, numTables)
	for i := 0; i < int(numTables); i++ {
		tag, err := r.Read(4)
		if err != nil {
			return nil, errTruncated
		}
		rec := TableRecord{Tag: MakeTag(tag)}
		if rec.Checksum, err = r.U32(); err != nil {
			return nil, errTruncated
		}
		if rec.Offset, err = r.U32(); err != nil {
			return nil, errTruncated
		}
		if rec.Length, err = r.U32(); err != nil {
			return nil, errTruncated
		}
		if int(rec.Offset)+int(rec.Length) > len(data) {
			return nil, errMalformed(fmt.Sprintf("table '%s' extends past end of font", rec.Tag))
		}
		font.Tables[rec.Tag] = rec
	}
	tracer().Debugf("font has %d tables", len(font.Tables))
	// the glyph count lives in 'maxp'
	maxp, err := font.tableReader(T("maxp"))
	if err != nil {
		return nil, err
	}
	maxp.Advance(4) // version
	numGlyphs, err := maxp.U16()
	if err != nil {
		return nil, errTruncated
	}
	font.GlyphCount = int(numGlyphs)
	// 'name' and 'head' are used for display and for interpreting other
	// tables; decode them now
	name, err := font.tableReader(T("name"))
	if err != nil {
		return nil, err
	}
	if font.Names, err = parseName(name); err != nil {
		return nil, err
	}
	head, err := font.tableReader(T("head"))
	if err != nil {
		return nil, err
	}
	if font.head, err = parseHead(head); err != nil {
		return nil, err
	}
	tracer().Infof("loaded font %s (%s), %d glyphs", font.Names.Family, font.Kind, font.GlyphCount)
	return font, nil
}

// tableReader returns a reader over the bytes of the table with the
// given tag, or an EMISSING error.
func (f *Font) tableReader(tag Tag) (*Reader, error) {
	rec, ok := f.Tables[tag]
	if !ok {
		return nil, errMissingTable(tag)
	}
	return NewReader(f.data[rec.Offset : rec.Offset+rec.Length]), nil
}

// Head returns the font header table.
func (f *Font) Head() (*HeadTable, error) {
	return f.head, nil // decoded at Parse time
}

// CMap returns the character map, decoding it on first use.
func (f *Font) CMap() (*CMapTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cmapLocked()
}

func (f *Font) cmapLocked() (*CMapTable, error) {
	if f.cmap != nil {
		return f.cmap, nil
	}
	r, err := f.tableReader(T("cmap"))
	if err != nil {
		return nil, err
	}
	if f.cmap, err = parseCMap(r); err != nil {
		return nil, err
	}
	return f.cmap, nil
}

// Post returns the PostScript names table, decoding it on first use.
func (f *Font) Post() (*PostTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.postLocked()
}

func (f *Font) postLocked() (*PostTable, error) {
	if f.post != nil {
		return f.post, nil
	}
	r, err := f.tableReader(T("post"))
	if err != nil {
		return nil, err
	}
	if f.post, err = parsePost(r); err != nil {
		return nil, err
	}
	return f.post, nil
}

// HHea returns the horizontal header table, decoding it on first use.
func (f *Font) HHea() (*HHeaTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hheaLocked()
}

func (f *Font) hheaLocked() (*HHeaTable, error) {
	if f.hhea != nil {
		return f.hhea, nil
	}
	r, err := f.tableReader(T("hhea"))
	if err != nil {
		return nil, err
	}
	if f.hhea, err = parseHHea(r); err != nil {
		return nil, err
	}
	return f.hhea, nil
}

// HMtx returns the horizontal metrics table, decoding it on first use.
func (f *Font) HMtx() (*HMtxTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hmtx != nil {
		return f.hmtx, nil
	}
	hhea, err := f.hheaLocked()
	if err != nil {
		return nil, err
	}
	r, err := f.tableReader(T("hmtx"))
	if err != nil {
		return nil, err
	}
	if f.hmtx, err = parseHMtx(r, hhea.NumberOfMetrics, f.GlyphCount); err != nil {
		return nil, err
	}
	return f.hmtx, nil
}

// Loca returns the glyph location index, decoding it on first use.
// Fonts without a 'loca' table (CFF outlines) yield (nil, nil).
func (f *Font) Loca() (*LocaTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locaLocked()
}

func (f *Font) locaLocked() (*LocaTable, error) {
	if f.loca != nil {
		return f.loca, nil
	}
	rec, ok := f.Tables[T("loca")]
	if !ok {
		return nil, nil
	}
	r := NewReader(f.data[rec.Offset : rec.Offset+rec.Length])
	var err error
	if f.loca, err = parseLoca(r, f.head.IndexToLocFormat, f.GlyphCount); err != nil {
		return nil, err
	}
	return f.loca, nil
}

// Glyf returns the glyph data table, decoding the per-glyph headers on
// first use. Fonts without a 'glyf' table (CFF outlines) yield
// (nil, nil).
func (f *Font) Glyf() (*GlyfTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.glyfLocked()
}

func (f *Font) glyfLocked() (*GlyfTable, error) {
	if f.glyf != nil {
		return f.glyf, nil
	}
	rec, ok := f.Tables[T("glyf")]
	if !ok {
		return nil, nil
	}
	loca, err := f.locaLocked()
	if err != nil {
		return nil, err
	}
	if loca == nil {
		return nil, nil
	}
	data := f.data[rec.Offset : rec.Offset+rec.Length]
	if f.glyf, err = parseGlyf(f, data, loca); err != nil {
		return nil, err
	}
	return f.glyf, nil
}

// GlyphByCodepoint returns the glyph a Unicode code-point maps to
// through the font's character map, or nil if the font does not cover
// the code-point. Only TrueType outlines are supported; asking a CFF
// font fails with an EUNSUPPORTED error.
func (f *Font) GlyphByCodepoint(cp rune) (*Glyph, error) {
	if f.Kind != KindTrueType {
		return nil, errFontFormat("only TrueType outlines are supported")
	}
	glyf, err := f.Glyf()
	if err != nil {
		return nil, err
	}
	if glyf == nil {
		return nil, nil
	}
	cmap, err := f.CMap()
	if err != nil {
		return nil, err
	}
	gid, ok := cmap.Lookup(cp)
	if !ok {
		return nil, nil
	}
	return glyf.Glyph(gid), nil
}

// CodepointByName returns the mapping from PostScript glyph names to
// code-points, for every glyph that has both a name in 'post' and a
// non-zero code-point in 'cmap'. The map is computed once and cached.
func (f *Font) CodepointByName() (map[string]rune, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nameToCp != nil {
		return f.nameToCp, nil
	}
	cmap, err := f.cmapLocked()
	if err != nil {
		return nil, err
	}
	post, err := f.postLocked()
	if err != nil {
		return nil, err
	}
	m := make(map[string]rune)
	for gid := 0; gid < f.GlyphCount; gid++ {
		cp, ok := cmap.ReverseLookup(GlyphIndex(gid))
		if !ok || cp == 0 {
			continue
		}
		name, ok := post.GlyphToName[GlyphIndex(gid)]
		if !ok {
			continue
		}
		m[name] = cp
	}
	f.nameToCp = m
	return m, nil
}

// --- Font summary ----------------------------------------------------------

// FontInfo is a displayable summary of a font.
type FontInfo struct {
	Family        string            `json:"family"`
	Subfamily     string            `json:"subfamily"`
	Version       string            `json:"version"`
	GlyphCount    int               `json:"glyph_count"`
	PostNameCount int               `json:"post_count"`
	UnitsPerEm    int               `json:"units_per_em"`
	Modified      time.Time         `json:"modified_dt"`
	TableSizes    map[string]uint32 `json:"tables"`
}

// Info collects a summary of the font's naming, metrics and table
// directory.
func (f *Font) Info() (*FontInfo, error) {
	post, err := f.Post()
	if err != nil {
		return nil, err
	}
	info := &FontInfo{
		Family:        f.Names.Family,
		Subfamily:     f.Names.Subfamily,
		Version:       f.Names.Version,
		GlyphCount:    f.GlyphCount,
		PostNameCount: len(post.GlyphToName),
		UnitsPerEm:    int(f.head.UnitsPerEm),
		Modified:      f.head.Modified,
		TableSizes:    make(map[string]uint32, len(f.Tables)),
	}
	for tag, rec := range f.Tables {
		info.TableSizes[tag.String()] = rec.Length
	}
	return info, nil
}

// --- Specimen sheet --------------------------------------------------------

// Specimen layout defaults.
const (
	SpecimenSize    = 32
	SpecimenPadding = 6
	SpecimenColumns = 35
)

// Specimen renders every non-empty glyph of the font onto a grid and
// returns the combined SVG path data. The top-left and bottom-right
// grid corners carry 1×1 registration marks. Zero arguments select the
// defaults. Fonts without TrueType glyph data yield "".
func (f *Font) Specimen(size, columns, padding int) (string, error) {
	if size <= 0 {
		size = SpecimenSize
	}
	if columns <= 0 {
		columns = SpecimenColumns
	}
	if padding <= 0 {
		padding = SpecimenPadding
	}
	glyf, err := f.Glyf()
	if err != nil {
		return "", err
	}
	if glyf == nil || f.GlyphCount == 0 {
		return "", nil
	}
	var buf strings.Builder
	buf.WriteString("M0,0h1v1h-1z") // mark top-left corner
	scale := float64(size) / 100.0
	cell := size + padding
	row, index := 0, 0
	for _, glyph := range glyf.Glyphs() {
		if glyph.ContoursCount == 0 {
			continue
		}
		col := index % columns
		row = index / columns
		tr := geom.Identity().
			Translate(float64(padding+col*cell), float64(padding+row*cell)).
			Scale(scale, scale)
		path, err := glyph.ToSVGPath(SVGOptions{Precision: DefaultSVGPrecision, Transform: &tr})
		if err != nil {
			tracer().Errorf("glyph %d: %v", glyph.ID(), err)
			continue
		}
		buf.WriteString(path)
		buf.WriteString("\n")
		index++
	}
	// mark bottom-right corner
	markX := padding + columns*cell
	markY := padding + (row+1)*cell
	fmt.Fprintf(&buf, "M%d,%dh1v1h-1z", markX, markY)
	return buf.String(), nil
}
