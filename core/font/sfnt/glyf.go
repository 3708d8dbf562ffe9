package sfnt

import (
	"math"

	"github.com/aslpavel/icon-viewer/core/geom"
)

// Simple glyph flags,
// see https://learn.microsoft.com/en-us/typography/opentype/spec/glyf
const (
	flagOnCurve    = 0x01
	flagXShort     = 0x02
	flagYShort     = 0x04
	flagRepeat     = 0x08
	flagXSameOrPos = 0x10
	flagYSameOrPos = 0x20
)

// Composite glyph flags
const (
	flagArg1And2AreWords = 0x0001
	flagArgsAreXYValues  = 0x0002
	flagWeHaveAScale     = 0x0008
	flagMoreComponents   = 0x0020
	flagWeHaveXYScale    = 0x0040
	flagWeHave2x2        = 0x0080
)

// GlyfTable holds one Glyph per glyph id, sliced out of the 'glyf'
// table along the offsets of 'loca'. Glyph bodies stay undecoded until
// an outline is requested.
type GlyfTable struct {
	glyphs []*Glyph
}

// Len returns the number of glyphs in the table.
func (t *GlyfTable) Len() int {
	return len(t.glyphs)
}

// Glyph returns the glyph with the given id, or nil if the id is out of
// range.
func (t *GlyfTable) Glyph(gid GlyphIndex) *Glyph {
	if int(gid) >= len(t.glyphs) {
		return nil
	}
	return t.glyphs[gid]
}

// Glyphs returns all glyphs, indexed by glyph id.
func (t *GlyfTable) Glyphs() []*Glyph {
	return t.glyphs
}

func parseGlyf(f *Font, data binarySegm, loca *LocaTable) (*GlyfTable, error) {
	t := &GlyfTable{glyphs: make([]*Glyph, 0, f.GlyphCount)}
	for gid := 0; gid < f.GlyphCount; gid++ {
		start, end := loca.Offsets[gid], loca.Offsets[gid+1]
		if int(end) > len(data) {
			// a broken glyph must not disable the whole font
			tracer().Errorf("glyph %d extends past 'glyf' table, treating as blank", gid)
			t.glyphs = append(t.glyphs, &Glyph{font: f, gid: GlyphIndex(gid)})
			continue
		}
		glyph, err := parseGlyph(f, GlyphIndex(gid), data[start:end])
		if err != nil {
			tracer().Errorf("glyph %d: %v", gid, err)
			glyph = &Glyph{font: f, gid: GlyphIndex(gid)}
		}
		t.glyphs = append(t.glyphs, glyph)
	}
	return t, nil
}

// --- Glyph -----------------------------------------------------------------

// Glyph is one entry of the 'glyf' table: the glyph header plus an
// undecoded view of the glyph body. A non-negative ContoursCount marks
// a simple glyph, a negative one a composite; a glyph without body
// bytes is blank.
type Glyph struct {
	font          *Font
	gid           GlyphIndex
	ContoursCount int
	MinPoint      geom.Point
	MaxPoint      geom.Point
	body          binarySegm
}

func parseGlyph(f *Font, gid GlyphIndex, data binarySegm) (*Glyph, error) {
	glyph := &Glyph{font: f, gid: gid}
	if len(data) == 0 {
		return glyph, nil
	}
	r := NewReader(data)
	contours, err := r.I16()
	if err != nil {
		return nil, errTruncated
	}
	glyph.ContoursCount = int(contours)
	xMin, _ := r.I16()
	yMin, _ := r.I16()
	xMax, _ := r.I16()
	yMax, err := r.I16()
	if err != nil {
		return nil, errTruncated
	}
	glyph.MinPoint = geom.P(float64(xMin), float64(yMin))
	glyph.MaxPoint = geom.P(float64(xMax), float64(yMax))
	glyph.body = data[10:]
	return glyph, nil
}

// ID returns the glyph's id within the font.
func (g *Glyph) ID() GlyphIndex {
	return g.gid
}

// IsComposite reports whether the glyph combines other glyphs.
func (g *Glyph) IsComposite() bool {
	return g.ContoursCount < 0
}

// BBox returns an approximate bounding box computed from the glyph's
// point stream (control points included), or ok == false for a glyph
// without any points. The header bbox is not used; some icon fonts
// carry wrong values there.
func (g *Glyph) BBox() (min, max geom.Point, ok bool) {
	if g.ContoursCount < 0 {
		bbox := &BBoxBuilder{}
		if err := g.BuildOutline(bbox, geom.Identity()); err != nil {
			tracer().Errorf("glyph %d: %v", g.gid, err)
		}
		return bbox.BBox()
	}
	if g.ContoursCount == 0 {
		return min, max, false
	}
	points, err := g.points()
	if err != nil {
		tracer().Errorf("glyph %d: %v", g.gid, err)
		return min, max, false
	}
	bbox := &BBoxBuilder{}
	for {
		p, more := points.Next()
		if !more {
			break
		}
		bbox.extend(p.Coord)
	}
	if points.err != nil {
		tracer().Errorf("glyph %d: %v", g.gid, points.err)
	}
	return bbox.BBox()
}

// BuildOutline feeds the glyph's outline commands into builder, with
// every point transformed by tr. Composite glyphs are resolved
// recursively; a reference to a missing glyph or a reference cycle is
// logged and skipped, so a damaged component does not suppress its
// siblings.
func (g *Glyph) BuildOutline(builder OutlineBuilder, tr geom.Transform) error {
	return g.buildOutline(builder, tr, make(map[GlyphIndex]bool))
}

func (g *Glyph) buildOutline(builder OutlineBuilder, tr geom.Transform, visited map[GlyphIndex]bool) error {
	if g.ContoursCount >= 0 {
		return g.simpleOutline(builder, tr)
	}
	return g.compositeOutline(builder, tr, visited)
}

// --- Simple glyph point stream ---------------------------------------------

// GlyphPoint is one point of a simple glyph's decoded point stream.
// Off-curve points are quadratic Bézier control points.
type GlyphPoint struct {
	Coord   geom.Point
	OnCurve bool
	Last    bool // last point of its contour
}

// glyphPoints walks the packed flag/coordinate streams of a simple
// glyph body and yields absolute points one at a time. It is re-created
// for every walk; the decode is cheap and the body bytes stay shared.
type glyphPoints struct {
	flags  []byte
	xr, yr *Reader
	last   map[int]bool
	index  int
	x, y   int
	err    error
}

// points prepares a point iterator over the glyph body. A blank glyph
// or a degenerate single-point contour yields an empty iterator.
func (g *Glyph) points() (*glyphPoints, error) {
	it := &glyphPoints{last: make(map[int]bool)}
	if g.ContoursCount == 0 {
		return it, nil
	}
	r := NewReader(g.body)
	pointCount := 0
	for i := 0; i < g.ContoursCount; i++ {
		end, err := r.U16()
		if err != nil {
			return nil, errTruncated
		}
		it.last[int(end)] = true
		if int(end)+1 > pointCount {
			pointCount = int(end) + 1
		}
	}
	// should be ignored but is not an error
	if pointCount == 1 {
		return &glyphPoints{last: map[int]bool{}}, nil
	}
	// skip the hinting bytecode
	instructions, err := r.U16()
	if err != nil {
		return nil, errTruncated
	}
	r.Advance(int(instructions))
	// collect flags and calculate the size of the x and y streams
	xLen, yLen := 0, 0
	it.flags = make([]byte, 0, pointCount)
	for left := pointCount; left > 0; {
		flag, err := r.U8()
		if err != nil {
			return nil, errTruncated
		}
		repeats := 1
		it.flags = append(it.flags, flag)
		if flag&flagRepeat != 0 {
			n, err := r.U8()
			if err != nil {
				return nil, errTruncated
			}
			repeats += int(n)
			for i := 1; i < repeats; i++ {
				it.flags = append(it.flags, flag)
			}
		}
		if repeats > left {
			break
		}
		left -= repeats
		if flag&flagXShort != 0 {
			xLen += repeats
		} else if flag&flagXSameOrPos == 0 {
			xLen += repeats * 2
		}
		if flag&flagYShort != 0 {
			yLen += repeats
		} else if flag&flagYSameOrPos == 0 {
			yLen += repeats * 2
		}
	}
	if len(it.flags) > pointCount {
		it.flags = it.flags[:pointCount]
	}
	xStart := r.Tell()
	it.xr = r.View(xStart, xStart+xLen)
	it.yr = r.View(xStart+xLen, xStart+xLen+yLen)
	return it, nil
}

// Next decodes the next point. It returns false at the end of the
// stream or on a decode error (kept in it.err).
func (it *glyphPoints) Next() (GlyphPoint, bool) {
	if it.err != nil || it.index >= len(it.flags) {
		return GlyphPoint{}, false
	}
	flag := it.flags[it.index]
	dx, err := decodeDelta(it.xr, flag&flagXShort != 0, flag&flagXSameOrPos != 0)
	if err != nil {
		it.err = err
		return GlyphPoint{}, false
	}
	dy, err := decodeDelta(it.yr, flag&flagYShort != 0, flag&flagYSameOrPos != 0)
	if err != nil {
		it.err = err
		return GlyphPoint{}, false
	}
	it.x += dx
	it.y += dy
	point := GlyphPoint{
		Coord:   geom.P(float64(it.x), float64(it.y)),
		OnCurve: flag&flagOnCurve != 0,
		Last:    it.last[it.index],
	}
	it.index++
	return point, true
}

// decodeDelta reads one coordinate delta. Short deltas are unsigned
// bytes with the sign carried by the same-or-positive flag; otherwise
// the flag marks a repeat of the previous coordinate (delta 0) or a
// full signed 16-bit delta.
func decodeDelta(r *Reader, short, samePos bool) (int, error) {
	switch {
	case short:
		d, err := r.U8()
		if err != nil {
			return 0, err
		}
		if samePos {
			return int(d), nil
		}
		return -int(d), nil
	case samePos:
		return 0, nil
	default:
		d, err := r.I16()
		return int(d), err
	}
}

// --- Simple outline --------------------------------------------------------

// simpleOutline reconstructs Bézier segments from the run of on- and
// off-curve points:
//
//	[on0, on1]             line
//	[on0, off, on1]        quad(off, on1)
//	[on0, off0, off1, on1] quad(off0, mid(off0,off1)) quad(off1, on1)
//
// A contour whose first points are off-curve starts at an implied
// midpoint. The closing straight segment between two on-curve points is
// left to the close command.
func (g *Glyph) simpleOutline(builder OutlineBuilder, tr geom.Transform) error {
	points, err := g.points()
	if err != nil {
		return err
	}
	var firstOn, firstOff, lastOff *geom.Point
	for {
		point, more := points.Next()
		if !more {
			break
		}
		coord := point.Coord
		if firstOn == nil {
			if point.OnCurve {
				firstOn = &coord
				builder.MoveTo(tr.Apply(coord))
			} else if firstOff != nil {
				mid := geom.Mid(*firstOff, coord)
				firstOn = &mid
				lastOff = &coord
				builder.MoveTo(tr.Apply(mid))
			} else {
				firstOff = &coord
			}
		} else if lastOff != nil {
			if point.OnCurve {
				builder.QuadTo(tr.Apply(*lastOff), tr.Apply(coord))
				lastOff = nil
			} else {
				mid := geom.Mid(*lastOff, coord)
				builder.QuadTo(tr.Apply(*lastOff), tr.Apply(mid))
				lastOff = &coord
			}
		} else if point.OnCurve {
			builder.LineTo(tr.Apply(coord))
		} else {
			lastOff = &coord
		}

		if point.Last {
			if firstOff != nil && lastOff != nil {
				mid := geom.Mid(*lastOff, *firstOff)
				builder.QuadTo(tr.Apply(*lastOff), tr.Apply(mid))
				lastOff = nil
			}
			if firstOn != nil {
				if firstOff != nil {
					builder.QuadTo(tr.Apply(*firstOff), tr.Apply(*firstOn))
				} else if lastOff != nil {
					builder.QuadTo(tr.Apply(*lastOff), tr.Apply(*firstOn))
				}
			}
			builder.Close()
			firstOn, firstOff, lastOff = nil, nil, nil
		}
	}
	return points.err
}

// --- Composite outline -----------------------------------------------------

func (g *Glyph) compositeOutline(builder OutlineBuilder, tr geom.Transform, visited map[GlyphIndex]bool) error {
	glyf, err := g.font.Glyf()
	if err != nil {
		return err
	}
	if glyf == nil {
		return nil
	}
	visited[g.gid] = true
	defer delete(visited, g.gid)

	r := NewReader(g.body)
	for {
		flag, err := r.U16()
		if err != nil {
			return errTruncated
		}
		childID, err := r.U16()
		if err != nil {
			return errTruncated
		}
		// decode the component transformation; always consume the
		// argument bytes so the stream stays aligned
		m00, m01, m02 := 1.0, 0.0, 0.0
		m10, m11, m12 := 0.0, 1.0, 0.0
		if flag&flagArgsAreXYValues != 0 {
			if flag&flagArg1And2AreWords != 0 {
				dx, _ := r.I16()
				dy, err := r.I16()
				if err != nil {
					return errTruncated
				}
				m02, m12 = float64(dx), float64(dy)
			} else {
				dx, _ := r.I8()
				dy, err := r.I8()
				if err != nil {
					return errTruncated
				}
				m02, m12 = float64(dx), float64(dy)
			}
		} else {
			tracer().Infof("glyph %d: point-matching component args not supported", g.gid)
			if flag&flagArg1And2AreWords != 0 {
				r.Advance(4)
			} else {
				r.Advance(2)
			}
		}
		switch {
		case flag&flagWeHave2x2 != 0:
			m00, _ = r.F2Dot14()
			m10, _ = r.F2Dot14()
			m01, _ = r.F2Dot14()
			if m11, err = r.F2Dot14(); err != nil {
				return errTruncated
			}
		case flag&flagWeHaveXYScale != 0:
			m00, _ = r.F2Dot14()
			if m11, err = r.F2Dot14(); err != nil {
				return errTruncated
			}
		case flag&flagWeHaveAScale != 0:
			if m00, err = r.F2Dot14(); err != nil {
				return errTruncated
			}
			m11 = m00
		}
		component := geom.Transform{
			M00: m00, M01: m01, M02: m02,
			M10: m10, M11: m11, M12: m12,
		}

		child := glyf.Glyph(GlyphIndex(childID))
		switch {
		case child == nil:
			tracer().Errorf("[%s][%d] references invalid glyph %d",
				g.font.Names.Family, g.gid, childID)
		case visited[child.gid]:
			tracer().Errorf("glyph %d: composite reference cycle through glyph %d, skipping",
				g.gid, childID)
		default:
			if err := child.buildOutline(builder, tr.Compose(component), visited); err != nil {
				tracer().Errorf("glyph %d: %v", childID, err)
			}
		}

		if flag&flagMoreComponents == 0 {
			break
		}
	}
	return nil
}

// --- SVG path --------------------------------------------------------------

// SVGOptions configure Glyph.ToSVGPath. The zero value emits absolute
// commands with zero decimal digits and no extra transform; icon
// rendering uses DefaultSVGPrecision.
type SVGOptions struct {
	Relative  bool
	Precision int
	Transform *geom.Transform // applied on top of the normalization
}

// ToSVGPath renders the glyph as SVG path data normalized to a 100×100
// box: the glyph's bbox is centered in an em square, the y-axis is
// flipped (fonts are y-up, SVG is y-down) and the em square is scaled
// to 100 units. A glyph without any points yields "".
func (g *Glyph) ToSVGPath(opts SVGOptions) (string, error) {
	min, max, ok := g.BBox()
	if !ok {
		return "", nil
	}
	head, err := g.font.Head()
	if err != nil {
		return "", err
	}
	// move the middle of the bbox to the middle of the em box; widen
	// the em for glyphs drawn outside their design square
	mid := geom.Mid(min, max)
	em := math.Max(float64(head.UnitsPerEm),
		math.Max((max.X-min.X)*1.1, (max.Y-min.Y)*1.1))
	center := geom.P(em/2, em/2).Sub(mid)

	tr := geom.Identity()
	if opts.Transform != nil {
		tr = *opts.Transform
	}
	flip := geom.Transform{
		M00: 1, M01: 0, M02: 0,
		M10: 0, M11: -1, M12: 100,
	}
	tr = tr.Compose(flip.Scale(100/em, 100/em).Translate(center.X, center.Y))

	builder := NewSVGPathBuilder(opts.Relative, opts.Precision, tr)
	if err := g.BuildOutline(builder, geom.Identity()); err != nil {
		return "", err
	}
	return builder.String(), nil
}
