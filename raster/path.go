package raster

import "math"

// SegmentOp names the kind of a path segment: move, line, quadratic curve,
// or close, the same vocabulary used when walking glyph outlines.
type SegmentOp int

const (
	OpMoveTo SegmentOp = iota
	OpLineTo
	OpQuadTo
	OpClose
)

// Segment is one path command. Args holds 1 point for MoveTo/LineTo, 2
// points (control, end) for QuadTo, 0 for Close.
type Segment struct {
	Op   SegmentOp
	Args [2][2]float64
}

// Path is an ordered list of segments forming zero or more closed contours.
type Path struct {
	Segments []Segment
}

func (p *Path) MoveTo(x, y float64) {
	p.Segments = append(p.Segments, Segment{Op: OpMoveTo, Args: [2][2]float64{{x, y}}})
}

func (p *Path) LineTo(x, y float64) {
	p.Segments = append(p.Segments, Segment{Op: OpLineTo, Args: [2][2]float64{{x, y}}})
}

func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Segments = append(p.Segments, Segment{Op: OpQuadTo, Args: [2][2]float64{{cx, cy}, {x, y}}})
}

func (p *Path) Close() {
	p.Segments = append(p.Segments, Segment{Op: OpClose})
}

// Rect builds a plain axis-aligned rectangle path.
func Rect(x, y, w, h float64) Path {
	var p Path
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
	return p
}

// RoundedRect builds a four-straight-edge/four-quadratic-arc closed path:
// the effective radius is min(r, w/2, h/2), and each corner's control point
// sits at the literal corner with endpoints on the adjacent edges at
// distance r.
func RoundedRect(x, y, w, h, r float64) Path {
	r = math.Min(r, math.Min(w/2, h/2))
	if r <= 0 {
		return Rect(x, y, w, h)
	}

	var p Path
	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.QuadTo(x+w, y, x+w, y+r)
	p.LineTo(x+w, y+h-r)
	p.QuadTo(x+w, y+h, x+w-r, y+h)
	p.LineTo(x+r, y+h)
	p.QuadTo(x, y+h, x, y+h-r)
	p.LineTo(x, y+r)
	p.QuadTo(x, y, x+r, y)
	p.Close()
	return p
}
