// Package rimage decodes and resizes the bitmap resources a scene
// references, premultiplying the result into the same RGBA8 layout
// raster.Buffer expects. Decoding uses blank-import codec registration plus
// github.com/disintegration/imaging's Lanczos resampling for the two resize
// modes (exact resize and cover-fill).
package rimage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/bytematebot/sigil/raster"
)

// Decode decodes a PNG, JPEG, or WebP blob into an image.Image, matching
// image::load_from_memory's format sniffing.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("rimage: decode: %w", err)
	}
	return img, nil
}

// ResizeExact resizes src to exactly w x h, distorting the aspect ratio if
// necessary, matching DynamicImage::resize_exact(..., Lanczos3) — used for
// Image items, which specify an explicit target box.
func ResizeExact(src image.Image, w, h int) image.Image {
	return imaging.Resize(src, w, h, imaging.Lanczos)
}

// ResizeToFill resizes src to cover a w x h box and crops the overflow
// (centered), matching DynamicImage::resize_to_fill(..., Lanczos3) — used
// for the scene background image.
func ResizeToFill(src image.Image, w, h int) image.Image {
	return imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
}

// ToBuffer converts an RGBA-ish image.Image into a premultiplied
// raster.Buffer, computing premultiplied = straight * (alpha/255) per
// channel.
func ToBuffer(img image.Image) *raster.Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := raster.NewBuffer(w, h)
	if buf == nil {
		return buf
	}
	nrgba := imaging.Clone(img) // normalizes any image.Image to *image.NRGBA, straight alpha
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := nrgba.PixOffset(x, y)
			r, g, b, a := nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2], nrgba.Pix[i+3]
			af := float64(a) / 255.0
			o := y*buf.Stride + x*4
			buf.Pix[o+0] = uint8(float64(r) * af)
			buf.Pix[o+1] = uint8(float64(g) * af)
			buf.Pix[o+2] = uint8(float64(b) * af)
			buf.Pix[o+3] = a
		}
	}
	return buf
}

// Cache memoizes decoded+resized+premultiplied image buffers by cache key.
// Never evicts, same non-eviction rationale as rfont.GlyphCache: one render
// touches a small, bounded number of distinct image/size pairs.
type Cache struct {
	m map[string]*raster.Buffer
}

// NewCache returns an empty image cache, preallocated with capacityHint
// buckets as an optimization hint only (0 is fine).
func NewCache(capacityHint int) *Cache {
	return &Cache{m: make(map[string]*raster.Buffer, capacityHint)}
}

// ImageKey is the cache key for an Image item: source name and target size.
// The cache stores the entry under the formatted string
// "img_{source}_{w}_{h}" (see cacheKey).
type ImageKey struct {
	Source string
	W, H   int
}

// BackgroundKey is the cache key for a background image fill, stored under
// the formatted string "bg_{source}_{w}_{h}".
type BackgroundKey struct {
	Source string
	W, H   int
}

// GetImage returns the cached buffer for key, decoding, resizing exactly to
// (key.W, key.H), and premultiplying on first use. Returns (nil, false) if
// data is missing, undecodeable, or the target box is empty.
func (c *Cache) GetImage(key ImageKey, data []byte) (*raster.Buffer, bool) {
	if buf, ok := c.m[cacheKey("img", key.Source, key.W, key.H)]; ok {
		return buf, true
	}
	if key.W <= 0 || key.H <= 0 || data == nil {
		return nil, false
	}
	img, err := Decode(data)
	if err != nil {
		return nil, false
	}
	resized := ResizeExact(img, key.W, key.H)
	buf := ToBuffer(resized)
	if buf == nil {
		return nil, false
	}
	c.m[cacheKey("img", key.Source, key.W, key.H)] = buf
	return buf, true
}

// GetBackground returns the cached buffer for a background image fill,
// resizing to cover (key.W, key.H) and center-cropping, matching
// resize_to_fill's behavior.
func (c *Cache) GetBackground(key BackgroundKey, data []byte) (*raster.Buffer, bool) {
	if buf, ok := c.m[cacheKey("bg", key.Source, key.W, key.H)]; ok {
		return buf, true
	}
	if key.W <= 0 || key.H <= 0 || data == nil {
		return nil, false
	}
	img, err := Decode(data)
	if err != nil {
		return nil, false
	}
	resized := ResizeToFill(img, key.W, key.H)
	buf := ToBuffer(resized)
	if buf == nil {
		return nil, false
	}
	c.m[cacheKey("bg", key.Source, key.W, key.H)] = buf
	return buf, true
}

func cacheKey(kind, source string, w, h int) string {
	return fmt.Sprintf("%s_%s_%d_%d", kind, source, w, h)
}
