package sigil

import (
	"encoding/json"
	"fmt"
)

// Scene is the root of a declarative sigil: canvas size, a background
// (either a #rrggbb color or a resource name), and an ordered sequence of
// layers (index 0 drawn first, last drawn on top). Scenes are immutable
// values: built by a collaborator, consumed by one render call, never
// mutated by the renderer.
type Scene struct {
	Width      uint32  `json:"width"`
	Height     uint32  `json:"height"`
	Background string  `json:"background"`
	Layers     []Layer `json:"layers"`
}

// Layer positions one Item on the canvas. Rotation is in degrees,
// counter-clockwise positive, about the item's own center (except Text,
// whose local size is always (0,0) — see raster.LayerTransform). ID is
// opaque to the renderer: it is never required to be unique and is carried
// only for the caller's benefit.
type Layer struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Visible  bool    `json:"visible"`
	Item     Item    `json:"item"`
}

// Item is the drawable payload of a Layer: a closed sum of Rectangle,
// Image, Text, and Slider. Implemented as an interface with an unexported
// marker method so the set of variants cannot grow outside this package.
// Go does not check type switches for exhaustiveness: the switches in
// renderer.go and scene.go list the four variants by hand, and one that
// meets an unlisted type takes its default branch.
type Item interface {
	isItem()
}

// RectItem fills an axis-aligned or rounded rectangle with a flat color.
type RectItem struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Color        string  `json:"color"`
	BorderRadius float64 `json:"border_radius"`
}

func (RectItem) isItem() {}

// ImageItem fills a rectangle with a resized, resampled image resource.
// A source missing from the resource map is non-fatal: the layer is
// skipped.
type ImageItem struct {
	Source       string  `json:"source"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	BorderRadius float64 `json:"border_radius"`
}

func (ImageItem) isItem() {}

// TextItem shapes and draws a single unwrapped line of text. Empty text
// draws zero glyphs; FontFamily is a comma-separated CSS-style family
// list resolved per rfont.DB.Resolve's precedence.
type TextItem struct {
	Text       string  `json:"text"`
	FontSize   float64 `json:"font_size"`
	Color      string  `json:"color"`
	FontFamily string  `json:"font_family"`
}

func (TextItem) isItem() {}

// SliderItem draws a background rect plus a proportional fill rect, both
// sharing BorderRadius. FillW = (Value / max(MaxValue, 1)) * Width,
// clamped to >= 0.
type SliderItem struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	Value           float64 `json:"value"`
	MaxValue        float64 `json:"max_value"`
	BackgroundColor string  `json:"background_color"`
	FillColor       string  `json:"fill_color"`
	BorderRadius    float64 `json:"border_radius"`
}

func (SliderItem) isItem() {}

// itemType is the discriminant string used by the wire format's
// {"type":...,"data":...} envelope, matching Rust's #[serde(tag="type",
// content="data")] naming ("Text","Image","Rect","Slider").
type itemType string

const (
	itemTypeText   itemType = "Text"
	itemTypeImage  itemType = "Image"
	itemTypeRect   itemType = "Rect"
	itemTypeSlider itemType = "Slider"
)

type itemEnvelope struct {
	Type itemType        `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON writes a Layer's Item through a {"type":...,"data":...}
// envelope, a string-tagged discriminated union rather than inline fields.
func (l Layer) MarshalJSON() ([]byte, error) {
	env, err := marshalItem(l.Item)
	if err != nil {
		return nil, err
	}
	type alias struct {
		ID       string       `json:"id"`
		X        float64      `json:"x"`
		Y        float64      `json:"y"`
		Rotation float64      `json:"rotation"`
		Visible  bool         `json:"visible"`
		Item     itemEnvelope `json:"item"`
	}
	return json.Marshal(alias{l.ID, l.X, l.Y, l.Rotation, l.Visible, env})
}

// UnmarshalJSON reads a Layer, defaulting Rotation to 0 and Visible to
// true when absent.
func (l *Layer) UnmarshalJSON(b []byte) error {
	type alias struct {
		ID       string       `json:"id"`
		X        float64      `json:"x"`
		Y        float64      `json:"y"`
		Rotation float64      `json:"rotation"`
		Visible  *bool        `json:"visible"`
		Item     itemEnvelope `json:"item"`
	}
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	item, err := unmarshalItem(a.Item)
	if err != nil {
		return err
	}
	l.ID = a.ID
	l.X = a.X
	l.Y = a.Y
	l.Rotation = a.Rotation
	l.Visible = a.Visible == nil || *a.Visible
	l.Item = item
	return nil
}

func marshalItem(item Item) (itemEnvelope, error) {
	var t itemType
	switch item.(type) {
	case TextItem:
		t = itemTypeText
	case ImageItem:
		t = itemTypeImage
	case RectItem:
		t = itemTypeRect
	case SliderItem:
		t = itemTypeSlider
	default:
		return itemEnvelope{}, fmt.Errorf("sigil: unknown item type %T", item)
	}
	data, err := json.Marshal(item)
	if err != nil {
		return itemEnvelope{}, err
	}
	return itemEnvelope{Type: t, Data: data}, nil
}

func unmarshalItem(env itemEnvelope) (Item, error) {
	switch env.Type {
	case itemTypeText:
		var v TextItem
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case itemTypeImage:
		var v ImageItem
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case itemTypeRect:
		var v RectItem
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case itemTypeSlider:
		var v SliderItem
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("sigil: unknown item type %q", env.Type)
	}
}
