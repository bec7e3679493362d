package sigil

import (
	"bytes"
	"image"
	"image/png"

	"github.com/bytematebot/sigil/raster"
	"github.com/bytematebot/sigil/rfont"
	"github.com/bytematebot/sigil/rimage"
)

// ResourceMap is the caller-supplied, read-only mapping from resource name
// to byte blob consumed by image decoding and font loading.
type ResourceMap map[string][]byte

// RenderStats carries per-call observability a caller can opt into via
// RenderWithStats, without the common Render/RenderRaw path paying for it.
type RenderStats struct {
	GlyphsDrawn int
}

// Renderer drives a single render pass over a reused pixel buffer, owning
// the font database, glyph cache, and image cache across calls. Not safe
// for concurrent use: callers that need to render from multiple goroutines
// create one Renderer per goroutine.
type Renderer struct {
	log    Logger
	fonts  *rfont.DB
	glyphs *rfont.GlyphCache
	images *rimage.Cache
	buf    *raster.Buffer

	stats RenderStats
}

// New constructs a Renderer with no backing buffer yet; the first
// Render/RenderRaw call allocates one sized to the scene.
func New(opts ...Option) *Renderer {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Renderer{
		log:    cfg.logger,
		fonts:  rfont.New(cfg.logger),
		glyphs: rfont.NewGlyphCache(cfg.glyphCacheHint),
		images: rimage.NewCache(cfg.imageCacheHint),
	}
}

// RenderRaw renders scene against resources into the renderer's internal
// buffer and returns a borrow of it (premultiplied RGBA8, width*height*4
// bytes). The returned slice is invalidated by the next Render/RenderRaw
// call on the same Renderer.
func (r *Renderer) RenderRaw(scene Scene, resources ResourceMap) ([]byte, error) {
	buf, _, err := r.render(scene, resources)
	if err != nil {
		return nil, err
	}
	return buf.Pix, nil
}

// Render renders scene against resources and PNG-encodes the result.
func (r *Renderer) Render(scene Scene, resources ResourceMap) ([]byte, error) {
	buf, _, err := r.render(scene, resources)
	if err != nil {
		return nil, err
	}
	return encodePNG(buf)
}

// RenderWithStats behaves like Render but also returns per-call stats
// (currently: the number of glyphs successfully blitted).
func (r *Renderer) RenderWithStats(scene Scene, resources ResourceMap) ([]byte, RenderStats, error) {
	buf, stats, err := r.render(scene, resources)
	if err != nil {
		return nil, RenderStats{}, err
	}
	out, err := encodePNG(buf)
	if err != nil {
		return nil, RenderStats{}, err
	}
	return out, stats, nil
}

// encodePNG un-premultiplies buf (PNG's truecolor-with-alpha stores
// straight, not premultiplied, channels — unlike our internal convention)
// and PNG-encodes it. Built as *image.NRGBA rather than *image.RGBA
// precisely to avoid that straight-vs-premultiplied mismatch.
func encodePNG(buf *raster.Buffer) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, buf.W, buf.H))
	for i := 0; i+3 < len(buf.Pix); i += 4 {
		pr, pg, pb, a := buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3]
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = unpremultiply(pr, pg, pb, a)
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, wrapError(ErrorKindEncoding, "png encode failed", err)
	}
	return out.Bytes(), nil
}

func (r *Renderer) render(scene Scene, resources ResourceMap) (*raster.Buffer, RenderStats, error) {
	r.fonts.Ingest(resources)

	w, h := int(scene.Width), int(scene.Height)
	if w <= 0 || h <= 0 {
		return nil, RenderStats{}, newError(ErrorKindPixmapCreation, "invalid canvas dimensions")
	}
	if r.buf == nil || r.buf.W != w || r.buf.H != h {
		buf := raster.NewBuffer(w, h)
		if buf == nil {
			return nil, RenderStats{}, newError(ErrorKindPixmapCreation, "invalid canvas dimensions")
		}
		r.buf = buf
	} else {
		r.buf.Clear(0, 0, 0, 0)
	}

	r.paintBackground(scene, resources)

	r.stats = RenderStats{}
	for _, layer := range scene.Layers {
		if !layer.Visible {
			continue
		}
		if err := r.paintLayer(layer, resources); err != nil {
			return nil, RenderStats{}, err
		}
	}

	return r.buf, r.stats, nil
}

// paintBackground fills the buffer: a parsed color wins outright; failing
// that, the background string is treated as a resource name and
// cover-cropped onto the whole canvas; failing that, opaque black.
func (r *Renderer) paintBackground(scene Scene, resources ResourceMap) {
	if cr, cg, cb, ca, ok := ParseColor(scene.Background); ok {
		pr, pg, pb := Premultiply(cr, cg, cb, ca)
		r.buf.Clear(pr, pg, pb, ca)
		return
	}

	key := rimage.BackgroundKey{Source: scene.Background, W: r.buf.W, H: r.buf.H}
	data := resources[scene.Background]
	if bg, ok := r.images.GetBackground(key, data); ok && bg.W == r.buf.W && bg.H == r.buf.H {
		copy(r.buf.Pix, bg.Pix)
		return
	}

	r.log.Printf("sigil: background %q is neither a color nor a usable resource, filling black", scene.Background)
	r.buf.Clear(0, 0, 0, 255)
}

// itemSize returns an item's local (w,h) for the rotate-about-center
// transform; Text always reports (0,0) since its placement is entirely
// glyph-driven and has no independent box to rotate about.
func itemSize(item Item) (float64, float64) {
	switch v := item.(type) {
	case RectItem:
		return v.Width, v.Height
	case ImageItem:
		return v.Width, v.Height
	case SliderItem:
		return v.Width, v.Height
	default:
		return 0, 0
	}
}

func (r *Renderer) paintLayer(layer Layer, resources ResourceMap) error {
	w, h := itemSize(layer.Item)
	m := raster.LayerTransform(w, h, layer.X, layer.Y, layer.Rotation)

	switch item := layer.Item.(type) {
	case RectItem:
		return r.paintRect(item, m)
	case ImageItem:
		r.paintImage(item, m, resources)
		return nil
	case TextItem:
		return r.paintText(item, m)
	case SliderItem:
		return r.paintSlider(item, m)
	}
	return nil
}

func (r *Renderer) paintRect(item RectItem, m raster.Matrix) error {
	cr, cg, cb, ca, ok := ParseColor(item.Color)
	if !ok {
		return newError(ErrorKindInvalidColor, item.Color)
	}
	if item.Width <= 0 || item.Height <= 0 {
		return newError(ErrorKindInvalidDimensions, "rect width/height must be > 0")
	}
	fillRect(r.buf, item.Width, item.Height, item.BorderRadius, m, cr, cg, cb, ca)
	return nil
}

func fillRect(buf *raster.Buffer, w, h, radius float64, m raster.Matrix, cr, cg, cb, ca uint8) {
	pr, pg, pb := Premultiply(cr, cg, cb, ca)
	if radius > 0 {
		raster.FillPath(buf, raster.RoundedRect(0, 0, w, h, radius), m, pr, pg, pb, ca)
	} else {
		raster.FillPath(buf, raster.Rect(0, 0, w, h), m, pr, pg, pb, ca)
	}
}

func (r *Renderer) paintImage(item ImageItem, m raster.Matrix, resources ResourceMap) {
	if item.Width <= 0 || item.Height <= 0 {
		r.log.Printf("sigil: skipping image layer with non-positive dimensions (source %q)", item.Source)
		return
	}
	data, present := resources[item.Source]
	if !present {
		r.log.Printf("sigil: resource %q not found, skipping image layer", item.Source)
		return
	}
	key := rimage.ImageKey{Source: item.Source, W: int(item.Width), H: int(item.Height)}
	src, ok := r.images.GetImage(key, data)
	if !ok {
		r.log.Printf("sigil: failed to decode image %q, skipping image layer", item.Source)
		return
	}
	pat := raster.ImagePattern{Src: src}
	path := raster.Rect(0, 0, item.Width, item.Height)
	if item.BorderRadius > 0 {
		path = raster.RoundedRect(0, 0, item.Width, item.Height, item.BorderRadius)
	}
	raster.FillPattern(r.buf, path, m, pat)
}

func (r *Renderer) paintText(item TextItem, m raster.Matrix) error {
	if item.Text == "" {
		return nil
	}
	cr, cg, cb, ca, ok := ParseColor(item.Color)
	if !ok {
		return newError(ErrorKindInvalidColor, item.Color)
	}
	run := r.fonts.Shape(item.Text, item.FontFamily, item.FontSize)
	if run.Face == nil {
		r.log.Printf("sigil: no font face available, skipping text layer %q", item.Text)
		return nil
	}
	pr, pg, pb := Premultiply(cr, cg, cb, ca)

	for _, g := range run.Glyphs {
		subX, subY := g.X-float64(int(g.X)), g.Y-float64(int(g.Y))
		mask := r.glyphs.Get(run.Face, run.FaceID, g.GID, item.FontSize, subX, subY)
		if mask == nil {
			continue
		}
		if mask.Skip != "" {
			r.log.Printf("sigil: skipping glyph (gid %d): %s", g.GID, mask.Skip)
			continue
		}
		if mask.W == 0 || mask.H == 0 {
			continue
		}
		originX := g.X + float64(mask.Left)
		originY := run.Baseline + g.Y - float64(mask.Top)
		if mask.Color {
			blitColorGlyph(r.buf, mask, m, originX, originY)
		} else {
			blitGlyphMask(r.buf, mask, m, originX, originY, pr, pg, pb, ca)
		}
		r.stats.GlyphsDrawn++
	}
	return nil
}

// blitGlyphMask composites an alpha-only glyph mask as a flat-colored tile:
// the tile's premultiplied color is the text color scaled by mask_value/255,
// positioned at
// (glyph.x+mask.left, baseline+glyph.y-mask.top) in item-local space and
// composited through the layer transform. Reuses the same inverse-mapped,
// bilinear-sampled pattern fill the Image dispatch uses (raster.FillPattern)
// instead of forward-mapping each mask pixel, since a forward map can leave
// gaps between destination pixels once the layer transform rotates the
// tile.
func blitGlyphMask(buf *raster.Buffer, mask *rfont.GlyphMask, m raster.Matrix, originX, originY float64, pr, pg, pb, a uint8) {
	tile := glyphTileBuffer(mask, pr, pg, pb, a)
	glyphTransform := m.Mul(raster.Translate(originX, originY))
	path := raster.Rect(0, 0, float64(mask.W), float64(mask.H))
	raster.FillPattern(buf, path, glyphTransform, raster.ImagePattern{Src: tile})
}

// blitColorGlyph composites a color-bitmap glyph (straight, non-premultiplied
// RGBA8 pixels) by premultiplying each pixel and compositing it directly,
// with no text-color tint — the bitmap already carries its own color.
func blitColorGlyph(buf *raster.Buffer, mask *rfont.GlyphMask, m raster.Matrix, originX, originY float64) {
	tile := raster.NewBuffer(mask.W, mask.H)
	for i := 0; i+3 < len(mask.ColorPix); i += 4 {
		sr, sg, sb, sa := mask.ColorPix[i], mask.ColorPix[i+1], mask.ColorPix[i+2], mask.ColorPix[i+3]
		pr, pg, pb := Premultiply(sr, sg, sb, sa)
		tile.Pix[i], tile.Pix[i+1], tile.Pix[i+2], tile.Pix[i+3] = pr, pg, pb, sa
	}
	glyphTransform := m.Mul(raster.Translate(originX, originY))
	path := raster.Rect(0, 0, float64(mask.W), float64(mask.H))
	raster.FillPattern(buf, path, glyphTransform, raster.ImagePattern{Src: tile})
}

// glyphTileBuffer renders an alpha-only glyph mask into a same-size
// premultiplied RGBA8 buffer filled with the text color scaled by each
// pixel's coverage.
func glyphTileBuffer(mask *rfont.GlyphMask, pr, pg, pb, a uint8) *raster.Buffer {
	tile := raster.NewBuffer(mask.W, mask.H)
	for i, coverage := range mask.Pix {
		af := float64(coverage) / 255.0
		o := i * 4
		tile.Pix[o+0] = uint8(float64(pr) * af)
		tile.Pix[o+1] = uint8(float64(pg) * af)
		tile.Pix[o+2] = uint8(float64(pb) * af)
		tile.Pix[o+3] = uint8(float64(a) * af)
	}
	return tile
}

func (r *Renderer) paintSlider(item SliderItem, m raster.Matrix) error {
	if item.Width <= 0 || item.Height <= 0 {
		return newError(ErrorKindInvalidDimensions, "slider width/height must be > 0")
	}
	bgR, bgG, bgB, bgA, ok := ParseColor(item.BackgroundColor)
	if !ok {
		return newError(ErrorKindInvalidColor, item.BackgroundColor)
	}
	fillR, fillG, fillB, fillA, ok := ParseColor(item.FillColor)
	if !ok {
		return newError(ErrorKindInvalidColor, item.FillColor)
	}

	fillRect(r.buf, item.Width, item.Height, item.BorderRadius, m, bgR, bgG, bgB, bgA)

	maxValue := item.MaxValue
	if maxValue < 1 {
		maxValue = 1
	}
	fillW := (item.Value / maxValue) * item.Width
	if fillW < 0 {
		fillW = 0
	}
	if fillW > 0 {
		fillRect(r.buf, fillW, item.Height, item.BorderRadius, m, fillR, fillG, fillB, fillA)
	}
	return nil
}
