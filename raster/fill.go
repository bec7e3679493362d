package raster

import (
	"math"
	"sort"
)

// edge is one monotonic-in-y segment of a flattened path, transformed into
// device space. Filled with an edge-table plus 8x vertical-supersampling
// scanline pass, narrowed to the one path shape ever filled here (plain or
// rounded rect) and blended directly into a premultiplied Buffer.
type edge struct {
	x0, y0, x1, y1 float64
}

const aaLevel = 8

// rasterizer accumulates edges for one fill call and rasterizes them with
// antialiased, non-zero-winding coverage.
type rasterizer struct {
	edges []edge
}

func (r *rasterizer) addLine(x0, y0, x1, y1 float64) {
	if y0 == y1 {
		return
	}
	r.edges = append(r.edges, edge{x0, y0, x1, y1})
}

// addQuad flattens a quadratic bezier by recursive de Casteljau subdivision
// using a chord-deviation flatness test.
func (r *rasterizer) addQuad(x0, y0, cx, cy, x1, y1 float64, depth int) {
	dx := x1 - x0
	dy := y1 - y0
	d := math.Abs((cx-x1)*dy - (cy-y1)*dx)
	if depth > 12 || d*d < 0.25*(dx*dx+dy*dy) {
		r.addLine(x0, y0, x1, y1)
		return
	}
	x01, y01 := (x0+cx)/2, (y0+cy)/2
	x12, y12 := (cx+x1)/2, (cy+y1)/2
	x012, y012 := (x01+x12)/2, (y01+y12)/2
	r.addQuad(x0, y0, x01, y01, x012, y012, depth+1)
	r.addQuad(x012, y012, x12, y12, x1, y1, depth+1)
}

// build flattens a transformed path into the rasterizer's edge table.
func (r *rasterizer) build(p Path, m Matrix) {
	var cur, start [2]float64
	hasCur := false
	tx := func(x, y float64) (float64, float64) { return m.Apply(x, y) }
	for _, seg := range p.Segments {
		switch seg.Op {
		case OpMoveTo:
			x, y := tx(seg.Args[0][0], seg.Args[0][1])
			if hasCur && cur != start {
				r.addLine(cur[0], cur[1], start[0], start[1])
			}
			cur = [2]float64{x, y}
			start = cur
			hasCur = true
		case OpLineTo:
			x, y := tx(seg.Args[0][0], seg.Args[0][1])
			if hasCur {
				r.addLine(cur[0], cur[1], x, y)
			}
			cur = [2]float64{x, y}
		case OpQuadTo:
			cxp, cyp := tx(seg.Args[0][0], seg.Args[0][1])
			x, y := tx(seg.Args[1][0], seg.Args[1][1])
			if hasCur {
				r.addQuad(cur[0], cur[1], cxp, cyp, x, y, 0)
			}
			cur = [2]float64{x, y}
		case OpClose:
			if hasCur && cur != start {
				r.addLine(cur[0], cur[1], start[0], start[1])
			}
			cur = start
		}
	}
	if hasCur && cur != start {
		r.addLine(cur[0], cur[1], start[0], start[1])
	}
}

// coverageRow computes per-pixel coverage in [0,1] for scanline y across
// [0,width), using aaLevel vertical subsamples and horizontal exact-span
// coverage, non-zero/even-alternating winding (our paths are always single
// simple contours, so odd-even and non-zero agree).
func (r *rasterizer) coverageRow(y, width int, buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
	var xs []float64
	for subY := 0; subY < aaLevel; subY++ {
		yf := float64(y) + (float64(subY)+0.5)/float64(aaLevel)
		xs = xs[:0]
		for _, e := range r.edges {
			y0, y1 := e.y0, e.y1
			x0, x1 := e.x0, e.x1
			if y0 > y1 {
				y0, y1, x0, x1 = y1, y0, x1, x0
			}
			if yf < y0 || yf >= y1 {
				continue
			}
			t := (yf - y0) / (y1 - y0)
			xs = append(xs, x0+t*(x1-x0))
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			spanCoverage(buf, xs[i], xs[i+1], width, 1.0/float64(aaLevel))
		}
	}
}

// spanCoverage adds weight*coverage to every pixel whose [px,px+1) interval
// overlaps [x0,x1), partial at the two ends.
func spanCoverage(buf []float64, x0, x1 float64, width int, weight float64) {
	if x1 <= x0 {
		return
	}
	px0 := int(math.Floor(x0))
	px1 := int(math.Floor(x1))
	if px0 < 0 {
		px0 = 0
	}
	if px1 >= width {
		px1 = width - 1
	}
	for px := px0; px <= px1 && px < width; px++ {
		if px < 0 {
			continue
		}
		left := math.Max(float64(px), x0)
		right := math.Min(float64(px+1), x1)
		if right > left {
			buf[px] += (right - left) * weight
		}
	}
}

// FillPath rasterizes path (in local item space) transformed by m, filling
// with non-zero-winding antialiased coverage, compositing a flat
// premultiplied color source-over into buf.
func FillPath(buf *Buffer, path Path, m Matrix, r8, g8, b8, a8 uint8) {
	if buf == nil {
		return
	}
	var ras rasterizer
	ras.build(path, m)
	if len(ras.edges) == 0 {
		return
	}

	minY, maxY := buf.H, 0
	for _, e := range ras.edges {
		y0, y1 := int(math.Floor(math.Min(e.y0, e.y1))), int(math.Ceil(math.Max(e.y0, e.y1)))
		if y0 < minY {
			minY = y0
		}
		if y1 > maxY {
			maxY = y1
		}
	}
	if minY < 0 {
		minY = 0
	}
	if maxY > buf.H {
		maxY = buf.H
	}

	row := make([]float64, buf.W)
	for y := minY; y < maxY; y++ {
		ras.coverageRow(y, buf.W, row)
		for x := 0; x < buf.W; x++ {
			c := row[x]
			if c <= 0 {
				continue
			}
			if c > 1 {
				c = 1
			}
			buf.SourceOverScaled(x, y, r8, g8, b8, a8, c)
		}
	}
}
