package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillPathFillsInteriorAndLeavesExterior(t *testing.T) {
	buf := NewBuffer(10, 10)
	FillPath(buf, Rect(2, 2, 4, 4), Identity(), 255, 0, 0, 255)

	r, _, _, a := buf.At(4, 4)
	assert.Equal(t, uint8(255), r)
	assert.Equal(t, uint8(255), a)

	r, _, _, a = buf.At(0, 0)
	assert.Equal(t, uint8(0), r)
	assert.Equal(t, uint8(0), a)
}

func TestFillPathRespectsTransform(t *testing.T) {
	buf := NewBuffer(10, 10)
	FillPath(buf, Rect(0, 0, 2, 2), Translate(6, 6), 0, 255, 0, 255)

	_, g, _, a := buf.At(7, 7)
	assert.Equal(t, uint8(255), g)
	assert.Equal(t, uint8(255), a)

	_, g, _, a = buf.At(1, 1)
	assert.Equal(t, uint8(0), g)
	assert.Equal(t, uint8(0), a)
}

func TestFillPathEmptyPathIsNoop(t *testing.T) {
	buf := NewBuffer(4, 4)
	buf.Clear(9, 9, 9, 9)
	var empty Path
	FillPath(buf, empty, Identity(), 255, 255, 255, 255)
	r, g, b, a := buf.At(1, 1)
	assert.Equal(t, uint8(9), r)
	assert.Equal(t, uint8(9), g)
	assert.Equal(t, uint8(9), b)
	assert.Equal(t, uint8(9), a)
}

func TestFillPathNilBufferDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		FillPath(nil, Rect(0, 0, 2, 2), Identity(), 255, 255, 255, 255)
	})
}

func TestFillPathClipsOutOfBoundsGeometry(t *testing.T) {
	buf := NewBuffer(4, 4)
	assert.NotPanics(t, func() {
		FillPath(buf, Rect(-10, -10, 15, 15), Identity(), 255, 255, 255, 255)
	})
	r, _, _, a := buf.At(0, 0)
	assert.Equal(t, uint8(255), r)
	assert.Equal(t, uint8(255), a)
}

func TestFillPathRoundedRectLeavesCornerUnfilled(t *testing.T) {
	buf := NewBuffer(10, 10)
	FillPath(buf, RoundedRect(0, 0, 10, 10, 3), Identity(), 255, 255, 255, 255)

	_, _, _, cornerA := buf.At(0, 0)
	_, _, _, centerA := buf.At(5, 5)
	assert.Less(t, cornerA, centerA)
}

func TestSpanCoveragePartialEdges(t *testing.T) {
	buf := make([]float64, 4)
	spanCoverage(buf, 0.5, 2.5, 4, 1.0)
	assert.InDelta(t, 0.5, buf[0], 1e-9)
	assert.InDelta(t, 1.0, buf[1], 1e-9)
	assert.InDelta(t, 0.5, buf[2], 1e-9)
	assert.InDelta(t, 0.0, buf[3], 1e-9)
}

func TestSpanCoverageEmptyRangeIsNoop(t *testing.T) {
	buf := make([]float64, 4)
	spanCoverage(buf, 2, 2, 4, 1.0)
	for _, v := range buf {
		assert.Equal(t, 0.0, v)
	}
}
