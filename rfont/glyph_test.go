package rfont

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/go-text/typesetting/opentype/api"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeSizeRoundsToQuarterPixel(t *testing.T) {
	assert.Equal(t, uint16(64), quantizeSize(16))
	assert.Equal(t, uint16(66), quantizeSize(16.4))
}

func TestQuantizeSubBinsIntoFourBuckets(t *testing.T) {
	assert.Equal(t, uint8(0), quantizeSub(0))
	assert.Equal(t, uint8(0), quantizeSub(0.1))
	assert.Equal(t, uint8(1), quantizeSub(0.3))
	assert.Equal(t, uint8(3), quantizeSub(0.99))
}

func TestQuantizeSubWrapsOnIntegerInput(t *testing.T) {
	assert.Equal(t, uint8(0), quantizeSub(5.0))
}

func TestRasterizeGlyphNilFaceReturnsEmptyMask(t *testing.T) {
	mask := rasterizeGlyph(nil, 0, 16)
	assert.Equal(t, 0, mask.W)
	assert.Equal(t, 0, mask.H)
	assert.False(t, mask.Color)
}

func TestRasterizeGlyphProducesNonEmptyMaskForVisibleGlyph(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})
	run := db.Shape("A", "sans-serif", 32)
	require.Len(t, run.Glyphs, 1)

	mask := rasterizeGlyph(run.Face, run.Glyphs[0].GID, 32)
	require.NotNil(t, mask)
	assert.Greater(t, mask.W, 0)
	assert.Greater(t, mask.H, 0)
	assert.Len(t, mask.Pix, mask.W*mask.H)
}

func TestGlyphCacheGetMemoizesSameKey(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})
	run := db.Shape("A", "sans-serif", 32)
	require.Len(t, run.Glyphs, 1)

	cache := NewGlyphCache(8)
	gid := run.Glyphs[0].GID
	first := cache.Get(run.Face, run.FaceID, gid, 32, 0, 0)
	second := cache.Get(run.Face, run.FaceID, gid, 32, 0, 0)
	assert.Same(t, first, second)
}

func TestRasterizeBitmapGlyphDecodesPNGToStraightRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 128})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 64})
	img.Set(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 1})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	bitmap := api.GlyphBitmap{Format: api.PNG, Data: buf.Bytes()}
	mask := rasterizeBitmapGlyph(bitmap, 1)
	require.Empty(t, mask.Skip)
	assert.True(t, mask.Color)
	assert.Equal(t, 2, mask.W)
	assert.Equal(t, 2, mask.H)
	require.Len(t, mask.ColorPix, 16)
	assert.Equal(t, uint8(255), mask.ColorPix[0])
	assert.Equal(t, uint8(128), mask.ColorPix[3])
}

func TestRasterizeBitmapGlyphUnsupportedFormatFallsBackToOutline(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})
	run := db.Shape("A", "sans-serif", 32)
	require.Len(t, run.Glyphs, 1)

	gid := run.Glyphs[0].GID
	outline, ok := run.Face.GlyphData(api.GID(gid)).(api.GlyphOutline)
	require.True(t, ok)

	bitmap := api.GlyphBitmap{Format: api.BlackAndWhite, Outline: &outline}
	mask := rasterizeBitmapGlyph(bitmap, 32.0/float64(run.Face.Upem()))
	require.Empty(t, mask.Skip)
	assert.Greater(t, mask.W, 0)
	assert.Greater(t, mask.H, 0)
	assert.Len(t, mask.Pix, mask.W*mask.H)
}

func TestRasterizeBitmapGlyphUnsupportedFormatWithoutOutlineSkips(t *testing.T) {
	bitmap := api.GlyphBitmap{Format: api.BlackAndWhite}
	mask := rasterizeBitmapGlyph(bitmap, 1)
	assert.NotEmpty(t, mask.Skip)
	assert.Equal(t, 0, mask.W)
	assert.Equal(t, 0, mask.H)
}

func TestRasterizeBitmapGlyphNonBitmapDataSkipsWithDiagnostic(t *testing.T) {
	mask := rasterizeBitmapGlyph(api.GlyphSVG{}, 1)
	assert.NotEmpty(t, mask.Skip)
	assert.Equal(t, 0, mask.W)
	assert.Equal(t, 0, mask.H)
}

func TestGlyphCacheDistinguishesSizes(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})
	run := db.Shape("A", "sans-serif", 32)
	require.Len(t, run.Glyphs, 1)

	cache := NewGlyphCache(8)
	gid := run.Glyphs[0].GID
	small := cache.Get(run.Face, run.FaceID, gid, 8, 0, 0)
	large := cache.Get(run.Face, run.FaceID, gid, 64, 0, 0)
	assert.NotSame(t, small, large)
}
