package rfont

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/opentype/api"
	"golang.org/x/image/vector"
	_ "golang.org/x/image/tiff"
)

// GlyphMask carries one glyph's rasterized pixels at one size, positioned
// relative to the glyph's pen origin: blit it at (pen.X+Left, pen.Y-Top).
// Most glyphs rasterize to an 8-bit coverage mask (Pix, length W*H, Color
// false). A glyph backed by a color bitmap table (sbix/CBDT) instead
// carries straight, non-premultiplied RGBA8 pixels (ColorPix, length
// W*H*4, Color true); the caller premultiplies and draws those directly
// rather than tinting them by the text color. Skip, with W and H left at
// 0, explains why a glyph with genuine outline/bitmap data still produced
// no usable pixels (an unsupported bitmap format, typically).
type GlyphMask struct {
	Pix       []uint8
	ColorPix  []uint8
	W, H      int
	Left, Top int
	Color     bool
	Skip      string
}

// GlyphKey identifies one cached rasterized glyph: a face, a glyph id, the
// font size quantized to quarter-pixel steps, and the sub-pixel x/y phase
// quantized to 4 bins.
type GlyphKey struct {
	FaceID    uint64
	GID       uint32
	SizeQuant uint16
	SubX      uint8
	SubY      uint8
}

// GlyphCache holds rasterized glyph masks for the lifetime of its owner
// (the Renderer keeps one across all its renders), a load-once-by-key cache
// keyed on rasterized output rather than parsed font blobs. Never evicts:
// it grows with the distinct glyph/size pairs ever drawn.
type GlyphCache struct {
	m map[GlyphKey]*GlyphMask
}

// NewGlyphCache returns an empty glyph cache, preallocated with capacityHint
// buckets as an optimization hint only (0 is fine; the cache never evicts
// or caps size regardless).
func NewGlyphCache(capacityHint int) *GlyphCache {
	return &GlyphCache{m: make(map[GlyphKey]*GlyphMask, capacityHint)}
}

func quantizeSize(size float64) uint16 {
	return uint16(math.Round(size * 4))
}

func quantizeSub(frac float64) uint8 {
	frac -= math.Floor(frac)
	bin := int(math.Floor(frac * 4))
	if bin > 3 {
		bin = 3
	}
	if bin < 0 {
		bin = 0
	}
	return uint8(bin)
}

// Get returns the rasterized mask for (face, gid) at size, with subX/subY
// the fractional pixel phase of the glyph's pen position (used only to pick
// a cache bucket; the mask itself is rendered without sub-pixel shifting,
// at an integer-origin blit position).
func (c *GlyphCache) Get(face font.Face, faceID uint64, gid uint32, size, subX, subY float64) *GlyphMask {
	key := GlyphKey{
		FaceID:    faceID,
		GID:       gid,
		SizeQuant: quantizeSize(size),
		SubX:      quantizeSub(subX),
		SubY:      quantizeSub(subY),
	}
	if m, ok := c.m[key]; ok {
		return m
	}
	m := rasterizeGlyph(face, gid, size)
	c.m[key] = m
	return m
}

// rasterizeGlyph walks a glyph's outline (funits) and rasterizes it into an
// 8-bit coverage mask at the given pixel size: GlyphData -> api.GlyphOutline,
// FUnits to pixel space via size/unitsPerEm, with the outline fed into
// golang.org/x/image/vector.Rasterizer, following the glyph-mask-via-
// vector.Rasterizer technique golang.org/x/image/font/opentype's own
// Face.Glyph uses. Glyph data with no outline (a color bitmap table, or
// something this package has no rasterization path for at all) is handed
// off to rasterizeBitmapGlyph.
func rasterizeGlyph(face font.Face, gid uint32, size float64) *GlyphMask {
	if face == nil {
		return &GlyphMask{}
	}
	upem := float64(face.Upem())
	if upem <= 0 {
		upem = 1000
	}
	scale := size / upem

	glyphData := face.GlyphData(api.GID(gid))
	outline, ok := glyphData.(api.GlyphOutline)
	if !ok {
		return rasterizeBitmapGlyph(glyphData, scale)
	}
	return rasterizeOutline(outline.Segments, scale)
}

// rasterizeBitmapGlyph handles glyph data with no outline to walk directly:
// a color bitmap table (sbix/CBDT) exposes its pixels as an encoded image
// (PNG, JPEG, or TIFF, per Format) rather than a path. Supported formats are
// decoded and normalized to straight (non-premultiplied) RGBA8, carried as
// ColorPix for the caller to premultiply and draw. An unsupported format
// (e.g. the uncompressed BlackAndWhite bitmap tables some fonts still use,
// which are rare enough in practice not to be worth a dedicated decoder)
// falls back to the bitmap's own embedded outline when it has one, and
// otherwise yields a skip diagnostic rather than a crash. Glyph data that
// is neither an outline nor a bitmap (e.g. an 'SVG ' table, which has no
// rasterization path here) also skips with a diagnostic.
func rasterizeBitmapGlyph(glyphData api.GlyphData, scale float64) *GlyphMask {
	bitmap, ok := glyphData.(api.GlyphBitmap)
	if !ok {
		return &GlyphMask{Skip: "glyph data has neither an outline nor bitmap pixels"}
	}

	switch bitmap.Format {
	case api.PNG, api.JPG, api.TIFF:
		img, _, err := image.Decode(bytes.NewReader(bitmap.Data))
		if err != nil {
			return bitmapOutlineFallback(bitmap, scale, fmt.Sprintf("glyph bitmap decode failed: %v", err))
		}
		return rasterizeDecodedBitmap(img)
	default:
		return bitmapOutlineFallback(bitmap, scale, fmt.Sprintf("glyph bitmap format %v has no decoder wired", bitmap.Format))
	}
}

// bitmapOutlineFallback rasterizes a bitmap glyph's embedded vector outline
// when its raster format couldn't be used, or returns a skip diagnostic
// carrying reason when there is no such fallback.
func bitmapOutlineFallback(bitmap api.GlyphBitmap, scale float64, reason string) *GlyphMask {
	if bitmap.Outline != nil {
		return rasterizeOutline(bitmap.Outline.Segments, scale)
	}
	return &GlyphMask{Skip: reason}
}

// rasterizeDecodedBitmap normalizes a decoded color-bitmap glyph image to
// tightly packed straight RGBA8 (length W*H*4, no stride padding) by
// drawing it into a freshly allocated *image.NRGBA.
func rasterizeDecodedBitmap(img image.Image) *GlyphMask {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return &GlyphMask{}
	}
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return &GlyphMask{
		ColorPix: nrgba.Pix,
		W:        w,
		H:        h,
		Top:      h, // bitmap glyphs carry no separate bearing data; anchor the bottom row at the baseline
		Color:    true,
	}
}

// rasterizeOutline walks a glyph outline (funits, scaled to pixel space by
// scale) and rasterizes it into an 8-bit coverage mask via
// golang.org/x/image/vector.Rasterizer.
func rasterizeOutline(segments []api.Segment, scale float64) *GlyphMask {
	fx := func(v float32) float32 { return float32(float64(v) * scale) }
	// Glyph space has +y up; raster space (and our rendering convention)
	// has +y down, so flip y during conversion.
	fy := func(v float32) float32 { return float32(-float64(v) * scale) }

	minX, minY := math.MaxFloat32, math.MaxFloat32
	maxX, maxY := -math.MaxFloat32, -math.MaxFloat32
	track := func(x, y float32) {
		if float64(x) < minX {
			minX = float64(x)
		}
		if float64(x) > maxX {
			maxX = float64(x)
		}
		if float64(y) < minY {
			minY = float64(y)
		}
		if float64(y) > maxY {
			maxY = float64(y)
		}
	}
	for _, seg := range segments {
		switch seg.Op {
		case api.SegmentOpMoveTo, api.SegmentOpLineTo:
			track(fx(seg.Args[0].X), fy(seg.Args[0].Y))
		case api.SegmentOpQuadTo:
			track(fx(seg.Args[0].X), fy(seg.Args[0].Y))
			track(fx(seg.Args[1].X), fy(seg.Args[1].Y))
		case api.SegmentOpCubeTo:
			track(fx(seg.Args[0].X), fy(seg.Args[0].Y))
			track(fx(seg.Args[1].X), fy(seg.Args[1].Y))
			track(fx(seg.Args[2].X), fy(seg.Args[2].Y))
		}
	}
	if len(segments) == 0 || maxX < minX || maxY < minY {
		return &GlyphMask{}
	}

	left := int(math.Floor(minX))
	top := int(math.Floor(minY))
	right := int(math.Ceil(maxX))
	bottom := int(math.Ceil(maxY))
	w := right - left
	h := bottom - top
	if w <= 0 || h <= 0 {
		return &GlyphMask{}
	}

	bias := func(x, y float32) (float32, float32) {
		return x - float32(left), y - float32(top)
	}

	var rast vector.Rasterizer
	rast.Reset(w, h)
	rast.DrawOp = draw.Src
	for _, seg := range segments {
		switch seg.Op {
		case api.SegmentOpMoveTo:
			x, y := bias(fx(seg.Args[0].X), fy(seg.Args[0].Y))
			rast.MoveTo(x, y)
		case api.SegmentOpLineTo:
			x, y := bias(fx(seg.Args[0].X), fy(seg.Args[0].Y))
			rast.LineTo(x, y)
		case api.SegmentOpQuadTo:
			cx, cy := bias(fx(seg.Args[0].X), fy(seg.Args[0].Y))
			x, y := bias(fx(seg.Args[1].X), fy(seg.Args[1].Y))
			rast.QuadTo(cx, cy, x, y)
		case api.SegmentOpCubeTo:
			c1x, c1y := bias(fx(seg.Args[0].X), fy(seg.Args[0].Y))
			c2x, c2y := bias(fx(seg.Args[1].X), fy(seg.Args[1].Y))
			x, y := bias(fx(seg.Args[2].X), fy(seg.Args[2].Y))
			rast.CubeTo(c1x, c1y, c2x, c2y, x, y)
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return &GlyphMask{
		Pix:  mask.Pix,
		W:    w,
		H:    h,
		Left: left,
		Top:  -top, // distance from baseline up to the mask's top row
	}
}
