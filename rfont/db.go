// Package rfont owns the font database and glyph cache: ingesting font
// blobs from the caller's resource map, resolving CSS-like family lists to
// a loaded face, shaping runs, and rasterizing glyph outlines to alpha
// coverage masks. Faces are loaded once per resource name and keyed by
// family, generalized to an arbitrary caller-supplied resource map rather
// than a fixed embedded sans/serif/mono set.
package rfont

import (
	"bytes"
	"strings"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Logger receives non-fatal diagnostics, matching the shape of
// go-text/typesetting/fontscan's own Logger interface.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// face is one loaded font: the shaping-capable font.Face plus its resolved
// family name and a stable id used as half of the glyph-cache key.
type face struct {
	id     uint64
	family string
	f      font.Face
}

// DB is the renderer's font database: a registry of loaded faces plus the
// three generic CSS aliases, populated lazily from resource blobs. A DB is
// owned exclusively by one Renderer and is not safe for concurrent use.
type DB struct {
	log Logger

	loaded map[string]bool // resource names already ingested
	faces  []*face
	byName map[string]*face // normalized family -> face

	generic map[string]*face // "sans-serif","serif","monospace"
	nextID  uint64

	fallback *face // bundled Go-Regular, used if nothing else ever loads
}

// New returns an empty font database. Call Ingest once per render with the
// caller's resource map; faces already seen are skipped.
func New(log Logger) *DB {
	if log == nil {
		log = nopLogger{}
	}
	db := &DB{
		log:     log,
		loaded:  make(map[string]bool),
		byName:  make(map[string]*face),
		generic: make(map[string]*face),
	}
	return db
}

// Ingest loads every resource whose name ends in .ttf, .otf, or .woff2 and
// has not already been loaded. On the first batch that adds at least one
// face, every generic alias (sans-serif, serif, monospace) is pointed at
// the first loaded face's family.
func (db *DB) Ingest(resources map[string][]byte) {
	var added []*face
	for name, data := range resources {
		if db.loaded[name] {
			continue
		}
		if !isFontResource(name) {
			continue
		}
		db.loaded[name] = true

		faces, err := font.ParseTTC(bytes.NewReader(data))
		if err != nil || len(faces) == 0 {
			db.log.Printf("sigil: failed to parse font resource %q: %v", name, err)
			continue
		}
		for _, f := range faces {
			desc := f.Describe()
			fc := &face{id: db.nextID, family: desc.Family, f: f}
			db.nextID++
			db.faces = append(db.faces, fc)
			db.byName[normalize(desc.Family)] = fc
			added = append(added, fc)
			db.log.Printf("sigil: loaded font family %q from %q", desc.Family, name)
		}
	}

	if len(added) > 0 && len(db.generic) == 0 {
		first := added[0]
		db.generic["sans-serif"] = first
		db.generic["serif"] = first
		db.generic["monospace"] = first
		db.log.Printf("sigil: generic families resolved to %q", first.family)
	}
}

func isFontResource(name string) bool {
	for _, suf := range []string{".ttf", ".otf", ".woff2"} {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

// Resolve picks a font.Face for a comma-separated font_family list: each
// token is tried in order against the generic CSS aliases and then against
// loaded families, lowercased, before falling through to the next token.
func (db *DB) Resolve(fontFamily string) font.Face {
	tokens := strings.Split(fontFamily, ",")
	for _, tok := range tokens {
		t := strings.ToLower(strings.TrimSpace(tok))
		switch t {
		case "sans-serif", "sans serif", "system-ui", "-apple-system", "arial":
			if fc := db.generic["sans-serif"]; fc != nil {
				return fc.f
			}
			return db.defaultFace()
		case "serif":
			if fc := db.generic["serif"]; fc != nil {
				return fc.f
			}
			return db.defaultFace()
		case "mono", "monospace":
			if fc := db.generic["monospace"]; fc != nil {
				return fc.f
			}
			return db.defaultFace()
		default:
			if fc := db.findLoaded(t); fc != nil {
				db.log.Printf("sigil: font family %q matched loaded family %q", fontFamily, fc.family)
				return fc.f
			}
		}
	}
	// Nothing matched: fall back to generic sans-serif, per step 4.
	db.log.Printf("sigil: no family in %q matched, using sans-serif fallback", fontFamily)
	if fc := db.generic["sans-serif"]; fc != nil {
		return fc.f
	}
	return db.defaultFace()
}

// findLoaded searches loaded faces comparing both verbatim
// case-insensitive and case-insensitive-with-spaces-removed, first match
// wins.
func (db *DB) findLoaded(token string) *face {
	normToken := strings.ReplaceAll(token, " ", "")
	for _, fc := range db.faces {
		lower := strings.ToLower(fc.family)
		if lower == token || strings.ReplaceAll(lower, " ", "") == normToken {
			return fc
		}
	}
	return nil
}

// FaceID returns the stable cache-key component for a face previously
// returned by Resolve, or the fallback face's id if face is the bundled
// default.
func (db *DB) FaceID(f font.Face) uint64 {
	for _, fc := range db.faces {
		if fc.f == f {
			return fc.id
		}
	}
	if db.fallback != nil && db.fallback.f == f {
		return db.fallback.id
	}
	return 0
}

// defaultFace lazily parses the bundled Go-Regular face, used only if the
// caller never supplied any font resource at all.
func (db *DB) defaultFace() font.Face {
	if db.fallback != nil {
		return db.fallback.f
	}
	faces, err := font.ParseTTC(bytes.NewReader(goregular.TTF))
	if err != nil || len(faces) == 0 {
		return nil
	}
	db.fallback = &face{id: 1 << 62, family: "Go-Regular", f: faces[0]}
	return db.fallback.f
}
