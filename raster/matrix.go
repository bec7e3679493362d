// Package raster implements the scanline rasterizer, affine transforms and
// path geometry the compositor fills and blits through. It operates
// directly on premultiplied RGBA8 buffers rather than Go's color.Color
// abstraction, splitting the work into a typed pixel buffer and a separate
// edge-table scanline filler.
package raster

import "math"

// Matrix is a 2x3 affine transform:
//
//	x' = XX*x + XY*y + X0
//	y' = YX*x + YY*y + Y0
type Matrix struct {
	XX, XY, X0 float64
	YX, YY, Y0 float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{XX: 1, YY: 1}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{XX: 1, YY: 1, X0: tx, Y0: ty}
}

// Rotate returns a rotation matrix for degrees, counter-clockwise positive.
func Rotate(degrees float64) Matrix {
	rad := degrees * math.Pi / 180
	s, c := math.Sin(rad), math.Cos(rad)
	return Matrix{
		XX: c, XY: -s,
		YX: s, YY: c,
	}
}

// Mul returns a*b, i.e. applying b first and then a to a point (a.Mul(b)
// transforms a point as a.Apply(b.Apply(p))).
func (a Matrix) Mul(b Matrix) Matrix {
	return Matrix{
		XX: a.XX*b.XX + a.XY*b.YX,
		XY: a.XX*b.XY + a.XY*b.YY,
		X0: a.XX*b.X0 + a.XY*b.Y0 + a.X0,
		YX: a.YX*b.XX + a.YY*b.YX,
		YY: a.YX*b.XY + a.YY*b.YY,
		Y0: a.YX*b.X0 + a.YY*b.Y0 + a.Y0,
	}
}

// Apply transforms a point.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.XX*x + m.XY*y + m.X0, m.YX*x + m.YY*y + m.Y0
}

// LayerTransform builds translate(-cx,-cy) . rotate(deg) . translate(cx+x,cy+y),
// rotating a layer about its own center before positioning it at (x,y),
// where (cx,cy) is half the item's local size.
func LayerTransform(w, h, x, y, degrees float64) Matrix {
	cx, cy := w/2, h/2
	post := Translate(cx+x, cy+y)
	rot := Rotate(degrees)
	pre := Translate(-cx, -cy)
	return post.Mul(rot).Mul(pre)
}

// Invert returns the inverse of m and whether m was invertible.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.XX*m.YY - m.XY*m.YX
	if det == 0 {
		return Matrix{}, false
	}
	inv := 1 / det
	xx := m.YY * inv
	xy := -m.XY * inv
	yx := -m.YX * inv
	yy := m.XX * inv
	x0 := -(xx*m.X0 + xy*m.Y0)
	y0 := -(yx*m.X0 + yy*m.Y0)
	return Matrix{XX: xx, XY: xy, X0: x0, YX: yx, YY: yy, Y0: y0}, true
}
