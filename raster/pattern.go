package raster

import "math"

// ImagePattern samples a premultiplied source Buffer as a pad-spread,
// bilinear-filtered shader in the pattern's own local coordinate space (the
// item's (0,0)-origin frame, since image layers are pre-resized to their
// exact target dimensions before being cached). Supports exactly one spread
// mode (pad/clamp-to-edge) and one filter (bilinear).
type ImagePattern struct {
	Src *Buffer
}

// at returns the premultiplied sample at fractional local coordinates
// (x,y), clamping (pad) to the source bounds and bilinearly filtering.
func (p ImagePattern) at(x, y float64) (r, g, b, a uint8) {
	w, h := float64(p.Src.W), float64(p.Src.H)

	x -= 0.5
	y -= 0.5

	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := x - x0
	fy := y - y0

	clampX := func(v float64) int {
		if v < 0 {
			return 0
		}
		if v > w-1 {
			return int(w) - 1
		}
		return int(v)
	}
	clampY := func(v float64) int {
		if v < 0 {
			return 0
		}
		if v > h-1 {
			return int(h) - 1
		}
		return int(v)
	}

	x0i, x1i := clampX(x0), clampX(x0+1)
	y0i, y1i := clampY(y0), clampY(y0+1)

	r00, g00, b00, a00 := p.Src.At(x0i, y0i)
	r10, g10, b10, a10 := p.Src.At(x1i, y0i)
	r01, g01, b01, a01 := p.Src.At(x0i, y1i)
	r11, g11, b11, a11 := p.Src.At(x1i, y1i)

	lerp := func(a, b float64, t float64) float64 {
		return a + (b-a)*t
	}

	top := func(c00, c10 uint8) float64 { return lerp(float64(c00), float64(c10), fx) }
	bot := func(c01, c11 uint8) float64 { return lerp(float64(c01), float64(c11), fx) }
	blend := func(c00, c10, c01, c11 uint8) uint8 {
		return uint8(math.Round(lerp(top(c00, c10), bot(c01, c11), fy)))
	}

	return blend(r00, r10, r01, r11), blend(g00, g10, g01, g11), blend(b00, b10, b01, b11), blend(a00, a10, a01, a11)
}

// FillPattern rasterizes path (device-space via m) and, for every covered
// pixel, inverse-maps back to the pattern's local space through m to
// sample src, compositing source-over scaled by the path's AA coverage.
func FillPattern(buf *Buffer, path Path, m Matrix, pat ImagePattern) {
	if buf == nil || pat.Src == nil {
		return
	}
	inv, ok := m.Invert()
	if !ok {
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
			lx, ly := inv.Apply(float64(x)+0.5, float64(y)+0.5)
			sr, sg, sb, sa := pat.at(lx, ly)
			buf.SourceOverScaled(x, y, sr, sg, sb, sa, c)
		}
	}
}
