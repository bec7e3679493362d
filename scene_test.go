package sigil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneJSONRoundTrip(t *testing.T) {
	scene := Scene{
		Width: 800, Height: 400, Background: "#1a1a1a",
		Layers: []Layer{
			{
				ID: "avatar_layer", X: 50, Y: 50, Rotation: 0, Visible: true,
				Item: ImageItem{Source: "{avatar}", Width: 100, Height: 100, BorderRadius: 50},
			},
			{
				ID: "welcome_text", X: 170, Y: 100, Rotation: 0, Visible: true,
				Item: TextItem{Text: "Welcome {username}!", FontSize: 48, Color: "#ffffff", FontFamily: "Roboto"},
			},
			{
				ID: "meter", X: 0, Y: 0, Rotation: 15, Visible: false,
				Item: SliderItem{Width: 100, Height: 10, Value: 5, MaxValue: 10, BackgroundColor: "#000000", FillColor: "#ffffff", BorderRadius: 2},
			},
			{
				ID: "box", X: 1, Y: 2, Rotation: 0, Visible: true,
				Item: RectItem{Width: 10, Height: 10, Color: "#00ff00", BorderRadius: 0},
			},
		},
	}

	data, err := json.Marshal(scene)
	require.NoError(t, err)

	var roundTripped Scene
	require.NoError(t, json.Unmarshal(data, &roundTripped))
	assert.Equal(t, scene, roundTripped)
}

func TestLayerDefaults(t *testing.T) {
	raw := `{"id":"x","x":1,"y":2,"item":{"type":"Rect","data":{"width":1,"height":1,"color":"#000000","border_radius":0}}}`
	var layer Layer
	require.NoError(t, json.Unmarshal([]byte(raw), &layer))
	assert.Equal(t, float64(0), layer.Rotation)
	assert.True(t, layer.Visible)
}

func TestLayerExplicitFalseVisibleIsPreserved(t *testing.T) {
	raw := `{"id":"x","x":0,"y":0,"visible":false,"item":{"type":"Rect","data":{"width":1,"height":1,"color":"#000000","border_radius":0}}}`
	var layer Layer
	require.NoError(t, json.Unmarshal([]byte(raw), &layer))
	assert.False(t, layer.Visible)
}

func TestUnknownItemTypeErrors(t *testing.T) {
	raw := `{"id":"x","x":0,"y":0,"item":{"type":"Bogus","data":{}}}`
	var layer Layer
	assert.Error(t, json.Unmarshal([]byte(raw), &layer))
}
