/*
Package geom provides the small amount of plane geometry needed for
glyph outlines: points and 2×3 affine transformations.

Points are taken from golang/geo (r2.Point), which already carries the
component-wise arithmetic we need. Transformations are the usual affine
matrices with the third row implied as (0 0 1).
*/
package geom

import (
	"math"

	"github.com/golang/geo/r2"
)

// Point is a location in the glyph coordinate plane.
// It aliases r2.Point, so Add, Sub and Mul are available on it.
type Point = r2.Point

// P is a shorthand constructor for a Point.
func P(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Lerp interpolates linearly between p and q, i.e. p·(1−t) + q·t.
func Lerp(p, q Point, t float64) Point {
	s := 1.0 - t
	return Point{
		X: p.X*s + q.X*t,
		Y: p.Y*s + q.Y*t,
	}
}

// Mid returns the midpoint between p and q.
func Mid(p, q Point) Point {
	return Lerp(p, q, 0.5)
}

// Transform is an affine transformation, given as the top two rows of a
// 3×3 matrix:
//
//	⎛ M00  M01  M02 ⎞
//	⎝ M10  M11  M12 ⎠
//
// M02 and M12 hold the translation part. The zero value is the null
// transformation; use Identity for the unit.
type Transform struct {
	M00, M01, M02 float64
	M10, M11, M12 float64
}

// Identity returns the identity transformation.
func Identity() Transform {
	return Transform{
		1, 0, 0,
		0, 1, 0,
	}
}

// Compose returns the matrix product t·o, with the affine row implied.
// Applying the result is equivalent to applying o first, then t.
func (t Transform) Compose(o Transform) Transform {
	return Transform{
		t.M00*o.M00 + t.M01*o.M10,
		t.M00*o.M01 + t.M01*o.M11,
		t.M00*o.M02 + t.M01*o.M12 + t.M02,
		t.M10*o.M00 + t.M11*o.M10,
		t.M10*o.M01 + t.M11*o.M11,
		t.M10*o.M02 + t.M11*o.M12 + t.M12,
	}
}

// Translate returns t composed with a translation by (tx, ty).
func (t Transform) Translate(tx, ty float64) Transform {
	return t.Compose(Transform{
		1, 0, tx,
		0, 1, ty,
	})
}

// Scale returns t composed with a scaling by (sx, sy).
func (t Transform) Scale(sx, sy float64) Transform {
	return t.Compose(Transform{
		sx, 0, 0,
		0, sy, 0,
	})
}

// Rotate returns t composed with a rotation by angle (radians,
// counter-clockwise).
func (t Transform) Rotate(angle float64) Transform {
	sin, cos := math.Sincos(angle)
	return t.Compose(Transform{
		cos, -sin, 0,
		sin, cos, 0,
	})
}

// Apply transforms point p.
func (t Transform) Apply(p Point) Point {
	return Point{
		X: p.X*t.M00 + p.Y*t.M01 + t.M02,
		Y: p.X*t.M10 + p.Y*t.M11 + t.M12,
	}
}
