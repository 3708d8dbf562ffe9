package sfnt

import (
	"fmt"
	"math"
	"strings"

	"github.com/aslpavel/icon-viewer/core/geom"
)

// OutlineBuilder consumes the command stream of a glyph outline. For
// every contour the builder sees exactly one MoveTo, then any number of
// LineTo/QuadTo/CubicTo, then exactly one Close.
type OutlineBuilder interface {
	MoveTo(p geom.Point)
	LineTo(p geom.Point)
	QuadTo(ctrl, p geom.Point)
	CubicTo(ctrl1, ctrl2, p geom.Point)
	Close()
}

// --- SVG path builder ------------------------------------------------------

// DefaultSVGPrecision is the number of decimal digits emitted for path
// coordinates unless a caller asks for something else.
const DefaultSVGPrecision = 2

// SVGPathBuilder renders an outline as SVG path data. Every point is
// passed through the configured transform, rounded to the configured
// precision and formatted without trailing zeros. Consecutive
// coordinates are separated by "," or " " only where needed; a leading
// "-" separates on its own.
//
// In relative mode the command letters are lower-case and coordinates
// are deltas from the current point at the start of the command.
type SVGPathBuilder struct {
	buf       strings.Builder
	relative  bool
	precision int
	tr        geom.Transform
	prev      geom.Point
}

// NewSVGPathBuilder returns a builder emitting absolute or relative
// commands with the given number of decimal digits, transforming every
// point by tr.
func NewSVGPathBuilder(relative bool, precision int, tr geom.Transform) *SVGPathBuilder {
	return &SVGPathBuilder{
		relative:  relative,
		precision: precision,
		tr:        tr,
	}
}

// String returns the path data accumulated so far.
func (s *SVGPathBuilder) String() string {
	return s.buf.String()
}

// writePoint emits one coordinate pair and returns the transformed
// absolute point. sep asks for a leading separator in case the x
// coordinate does not start with a "-".
func (s *SVGPathBuilder) writePoint(p geom.Point, sep bool) geom.Point {
	p = s.tr.Apply(p)
	pp := p
	if s.relative {
		pp = p.Sub(s.prev)
	}
	x := roundTo(pp.X, s.precision)
	y := roundTo(pp.Y, s.precision)
	if sep && x >= 0 {
		s.buf.WriteByte(' ')
	}
	fmt.Fprintf(&s.buf, "%g", x)
	if y >= 0 {
		s.buf.WriteByte(',')
	}
	fmt.Fprintf(&s.buf, "%g", y)
	return p
}

func (s *SVGPathBuilder) command(abs, rel byte) {
	if s.relative {
		s.buf.WriteByte(rel)
	} else {
		s.buf.WriteByte(abs)
	}
}

func (s *SVGPathBuilder) MoveTo(p geom.Point) {
	s.command('M', 'm')
	s.prev = s.writePoint(p, false)
}

func (s *SVGPathBuilder) LineTo(p geom.Point) {
	s.command('L', 'l')
	s.prev = s.writePoint(p, false)
}

func (s *SVGPathBuilder) QuadTo(ctrl, p geom.Point) {
	s.command('Q', 'q')
	s.writePoint(ctrl, false)
	s.prev = s.writePoint(p, true)
}

func (s *SVGPathBuilder) CubicTo(ctrl1, ctrl2, p geom.Point) {
	s.command('C', 'c')
	s.writePoint(ctrl1, false)
	s.writePoint(ctrl2, true)
	s.prev = s.writePoint(p, true)
}

func (s *SVGPathBuilder) Close() {
	s.command('Z', 'z')
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}

// --- Bounding box builder --------------------------------------------------

// BBoxBuilder accumulates the bounding box of every point offered to
// it, control points included, so the result may be larger than the
// exact outline extent but never smaller.
type BBoxBuilder struct {
	min, max geom.Point
	nonempty bool
}

func (b *BBoxBuilder) extend(p geom.Point) {
	if !b.nonempty {
		b.min, b.max = p, p
		b.nonempty = true
		return
	}
	b.min.X = math.Min(b.min.X, p.X)
	b.min.Y = math.Min(b.min.Y, p.Y)
	b.max.X = math.Max(b.max.X, p.X)
	b.max.Y = math.Max(b.max.Y, p.Y)
}

func (b *BBoxBuilder) MoveTo(p geom.Point) {
	b.extend(p)
}

func (b *BBoxBuilder) LineTo(p geom.Point) {
	b.extend(p)
}

func (b *BBoxBuilder) QuadTo(ctrl, p geom.Point) {
	b.extend(ctrl)
	b.extend(p)
}

func (b *BBoxBuilder) CubicTo(ctrl1, ctrl2, p geom.Point) {
	b.extend(ctrl1)
	b.extend(ctrl2)
	b.extend(p)
}

func (b *BBoxBuilder) Close() {}

// BBox returns the accumulated rectangle, or ok == false when no point
// was ever offered.
func (b *BBoxBuilder) BBox() (min, max geom.Point, ok bool) {
	return b.min, b.max, b.nonempty
}
