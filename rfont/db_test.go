package rfont

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	lines []string
}

func (l *testLogger) Printf(format string, args ...any) {
	l.lines = append(l.lines, format)
}

func bundledFamily(t *testing.T) string {
	t.Helper()
	faces, err := font.ParseTTC(bytes.NewReader(goregular.TTF))
	require.NoError(t, err)
	require.NotEmpty(t, faces)
	return faces[0].Describe().Family
}

func TestResolveWithNoFontsLoadedFallsBackToBundledDefault(t *testing.T) {
	db := New(nil)
	f := db.Resolve("sans-serif")
	assert.NotNil(t, f)
}

func TestIngestSkipsNonFontResources(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"readme.txt": []byte("hello")})
	assert.Empty(t, db.faces)
}

func TestIngestLoadsFontAndSetsGenericAliases(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})

	assert.Len(t, db.faces, 1)
	assert.NotNil(t, db.generic["sans-serif"])
	assert.NotNil(t, db.generic["serif"])
	assert.NotNil(t, db.generic["monospace"])
}

func TestIngestIsIdempotentPerResourceName(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})
	assert.Len(t, db.faces, 1)
}

func TestResolveMatchesExplicitlyLoadedFamilyByName(t *testing.T) {
	family := bundledFamily(t)
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})

	resolved := db.Resolve(family)
	require.NotNil(t, resolved)
	assert.Equal(t, db.faces[0].f, resolved)
}

func TestResolveFamilyMatchIsCaseAndSpaceInsensitive(t *testing.T) {
	family := bundledFamily(t)
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})

	variant := strings.ToUpper(strings.ReplaceAll(family, " ", ""))
	resolved := db.Resolve(variant)
	require.NotNil(t, resolved)
	assert.Equal(t, db.faces[0].f, resolved)
}

func TestResolveFallsThroughCommaListToFirstMatch(t *testing.T) {
	family := bundledFamily(t)
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})

	resolved := db.Resolve("NoSuchFamily, " + family + ", sans-serif")
	require.NotNil(t, resolved)
	assert.Equal(t, db.faces[0].f, resolved)
}

func TestResolveUnknownTokensFallBackToGenericSansSerif(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})

	resolved := db.Resolve("NoSuchFamilyAtAll")
	assert.Equal(t, db.generic["sans-serif"].f, resolved)
}

func TestFaceIDIsStableForSameFace(t *testing.T) {
	db := New(nil)
	db.Ingest(map[string][]byte{"Custom.ttf": goregular.TTF})
	f := db.faces[0].f
	id1 := db.FaceID(f)
	id2 := db.FaceID(f)
	assert.Equal(t, id1, id2)
}

func TestIngestLogsFailureForUnparseableFont(t *testing.T) {
	log := &testLogger{}
	db := New(log)
	db.Ingest(map[string][]byte{"bad.ttf": []byte("not a font")})
	assert.Empty(t, db.faces)
	assert.NotEmpty(t, log.lines)
}
