package sigil

import "strings"

// Resolve substitutes every {key} placeholder in vars-backed string fields
// of scene, returning a new Scene with the originals untouched — Scene is a
// value type in Go, so value-in/value-out comes naturally rather than
// requiring an explicit clone. Substitution is textual and non-recursive: a
// replacement's own text is never rescanned for further placeholders.
// Iteration order over vars does not affect the result under the assumption
// that no key is a substring of another. Resolve never fails.
func Resolve(scene Scene, vars map[string]string) Scene {
	out := scene
	out.Background = replaceVars(scene.Background, vars)
	out.Layers = make([]Layer, len(scene.Layers))
	for i, layer := range scene.Layers {
		out.Layers[i] = resolveLayer(layer, vars)
	}
	return out
}

func resolveLayer(layer Layer, vars map[string]string) Layer {
	out := layer
	switch item := layer.Item.(type) {
	case TextItem:
		out.Item = TextItem{
			Text:       replaceVars(item.Text, vars),
			FontSize:   item.FontSize,
			Color:      replaceVars(item.Color, vars),
			FontFamily: item.FontFamily,
		}
	case ImageItem:
		out.Item = ImageItem{
			Source:       replaceVars(item.Source, vars),
			Width:        item.Width,
			Height:       item.Height,
			BorderRadius: item.BorderRadius,
		}
	case RectItem:
		out.Item = RectItem{
			Width:        item.Width,
			Height:       item.Height,
			Color:        replaceVars(item.Color, vars),
			BorderRadius: item.BorderRadius,
		}
	case SliderItem:
		out.Item = SliderItem{
			Width:           item.Width,
			Height:          item.Height,
			Value:           item.Value,
			MaxValue:        item.MaxValue,
			BackgroundColor: replaceVars(item.BackgroundColor, vars),
			FillColor:       replaceVars(item.FillColor, vars),
			BorderRadius:    item.BorderRadius,
		}
	}
	return out
}

func replaceVars(input string, vars map[string]string) string {
	result := input
	for k, v := range vars {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}
