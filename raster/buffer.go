package raster

// Buffer is a reusable premultiplied RGBA8 pixel surface, laid out exactly
// like image.RGBA's Pix slice (4 bytes per pixel, row-major, Stride bytes
// per row) but accessed directly as raw premultiplied bytes rather than
// through image.RGBA's nominally-straight-alpha color.Color accessors.
type Buffer struct {
	Pix    []uint8
	W, H   int
	Stride int
}

// NewBuffer allocates a zeroed (transparent black) buffer of the given size.
func NewBuffer(w, h int) *Buffer {
	if w <= 0 || h <= 0 {
		return nil
	}
	return &Buffer{
		Pix:    make([]uint8, w*h*4),
		W:      w,
		H:      h,
		Stride: w * 4,
	}
}

// Clear fills the whole buffer with one premultiplied color (any alpha,
// including fully transparent).
func (b *Buffer) Clear(r, g, bl, a uint8) {
	for i := 0; i+3 < len(b.Pix); i += 4 {
		b.Pix[i+0] = r
		b.Pix[i+1] = g
		b.Pix[i+2] = bl
		b.Pix[i+3] = a
	}
}

// At returns the premultiplied r,g,b,a at (x,y), or zeros if out of bounds.
func (b *Buffer) At(x, y int) (r, g, bl, a uint8) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return 0, 0, 0, 0
	}
	i := y*b.Stride + x*4
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// SourceOver composites a premultiplied source pixel onto (x,y) using the
// standard Porter-Duff source-over rule, out = src + dst*(1-src_a), done
// directly in premultiplied integer math since the buffer never holds
// straight alpha.
func (b *Buffer) SourceOver(x, y int, sr, sg, sb, sa uint8) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H || sa == 0 {
		return
	}
	i := y*b.Stride + x*4
	inv := 255 - uint32(sa)
	b.Pix[i+0] = uint8(uint32(sr) + (uint32(b.Pix[i+0])*inv)/255)
	b.Pix[i+1] = uint8(uint32(sg) + (uint32(b.Pix[i+1])*inv)/255)
	b.Pix[i+2] = uint8(uint32(sb) + (uint32(b.Pix[i+2])*inv)/255)
	b.Pix[i+3] = uint8(uint32(sa) + (uint32(b.Pix[i+3])*inv)/255)
}

// SourceOverScaled composites a premultiplied source pixel scaled by an
// extra coverage factor in [0,1], used by the path filler's antialiased
// edges and by pattern fills.
func (b *Buffer) SourceOverScaled(x, y int, sr, sg, sb, sa uint8, coverage float64) {
	if coverage <= 0 {
		return
	}
	if coverage >= 1 {
		b.SourceOver(x, y, sr, sg, sb, sa)
		return
	}
	b.SourceOver(x, y,
		uint8(float64(sr)*coverage+0.5),
		uint8(float64(sg)*coverage+0.5),
		uint8(float64(sb)*coverage+0.5),
		uint8(float64(sa)*coverage+0.5),
	)
}
