package sigil

import "strconv"

// ParseColor parses exactly #rrggbb (7 characters, either case), returning
// an opaque (alpha 255) color and true on success. Any other form (a
// resource name, a malformed hex string) yields (zero, false); the caller
// decides whether that means "treat as a resource reference" (background)
// or "malformed scene" (item color).
func ParseColor(s string) (r, g, b, a uint8, ok bool) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, 0, false
	}
	rv, err1 := strconv.ParseUint(s[1:3], 16, 8)
	gv, err2 := strconv.ParseUint(s[3:5], 16, 8)
	bv, err3 := strconv.ParseUint(s[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, 0, false
	}
	return uint8(rv), uint8(gv), uint8(bv), 255, true
}

// Premultiply scales r,g,b by a/255, used for the background color, item
// fill colors, the text color, and color-bitmap glyph pixels.
func Premultiply(r, g, b, a uint8) (pr, pg, pb uint8) {
	af := float64(a) / 255.0
	return uint8(float64(r) * af), uint8(float64(g) * af), uint8(float64(b) * af)
}

// unpremultiply reverses Premultiply, used only at the PNG encoding
// boundary where the output format expects straight, not premultiplied,
// alpha.
func unpremultiply(pr, pg, pb, a uint8) (r, g, b, outA uint8) {
	if a == 0 {
		return 0, 0, 0, 0
	}
	scale := 255.0 / float64(a)
	clamp := func(v float64) uint8 {
		if v > 255 {
			return 255
		}
		return uint8(v)
	}
	return clamp(float64(pr) * scale), clamp(float64(pg) * scale), clamp(float64(pb) * scale), a
}
