package rfont

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeEmptyTextProducesZeroGlyphs(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})
	run := db.Shape("", "sans-serif", 16)
	assert.Empty(t, run.Glyphs)
}

func TestShapeProducesOneGlyphPerRuneForSimpleLatinText(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})
	run := db.Shape("abc", "sans-serif", 16)
	require.Len(t, run.Glyphs, 3)
}

func TestShapeAdvancesGlyphPositionsLeftToRight(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})
	run := db.Shape("ab", "sans-serif", 16)
	require.Len(t, run.Glyphs, 2)
	assert.Less(t, run.Glyphs[0].X, run.Glyphs[1].X)
}

func TestShapeBaselineIsProportionalToFontSize(t *testing.T) {
	db := New(nil)
	run := db.Shape("x", "sans-serif", 20)
	assert.InDelta(t, 16.0, run.Baseline, 1e-9)
}

func TestShapeCarriesRequestedSize(t *testing.T) {
	db := New(nil)
	run := db.Shape("x", "sans-serif", 42)
	assert.Equal(t, 42.0, run.Size)
}

func TestShapeWithNoFontsLoadedFallsBackToBundledFace(t *testing.T) {
	// even with no resources ingested, Shape must fall back to the bundled
	// default face rather than ever leaving Face nil for non-empty text.
	db := New(nil)
	run := db.Shape("hi", "sans-serif", 12)
	assert.NotNil(t, run.Face)
}
