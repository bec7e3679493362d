package rfont

import (
	"math"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// ShapedGlyph is one positioned glyph within a shaped run, in the run's
// local frame (origin at the run's start, +y down).
type ShapedGlyph struct {
	GID uint32
	X   float64
	Y   float64
}

// Run is the result of shaping one Text item: the face used (so the glyph
// rasterizer can look up outlines and the cache can key on face identity),
// the font size, the baseline Y (distance from the run's top to its
// baseline), and the positioned glyphs.
type Run struct {
	Face     font.Face
	FaceID   uint64
	Size     float64
	Baseline float64
	Glyphs   []ShapedGlyph
}

// Shape lays out text as a single unwrapped line at fontSize, using full
// Unicode-aware (HarfBuzz) shaping with no line-wrap constraint and a
// baseline at 0.8 of the font size. Returns a zero-glyph Run for empty
// text.
func (db *DB) Shape(text string, fontFamily string, fontSize float64) Run {
	face := db.Resolve(fontFamily)
	run := Run{Face: face, FaceID: db.FaceID(face), Size: fontSize, Baseline: fontSize * 0.8}
	runes := []rune(text)
	if len(runes) == 0 || face == nil {
		return run
	}

	script := language.Common
	for _, r := range runes {
		if s := language.LookupScript(r); s != language.Common {
			script = s
			break
		}
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.Int26_6(math.Round(fontSize * 64)),
		Script:    script,
	}
	output := (&shaping.HarfbuzzShaper{}).Shape(input)

	// Glyph advances/offsets come back already scaled to Size (26.6 fixed
	// pixel units), so converting to float64 only needs the /64 step —
	// no extra unitsPerEm rescale needed here since Size is the requested
	// font size directly, not a fixed measurement size deferred to a later
	// font-matrix scale.
	var curX, curY float64
	glyphs := make([]ShapedGlyph, 0, len(output.Glyphs))
	for _, g := range output.Glyphs {
		glyphs = append(glyphs, ShapedGlyph{
			GID: uint32(g.GlyphID),
			X:   curX + float64(g.XOffset)/64.0,
			Y:   curY - float64(g.YOffset)/64.0,
		})
		curX += float64(g.XAdvance) / 64.0
		curY += float64(g.YAdvance) / 64.0
	}
	run.Glyphs = glyphs
	return run
}
