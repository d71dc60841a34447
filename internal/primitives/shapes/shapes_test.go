package shapes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRect(t *testing.T) {
	s, err := MakeRect(RectOptions{Width: 100, Height: 50})
	require.NoError(t, err)
	assert.Equal(t, "M 0 0 L 100 0 L 100 50 L 0 50 Z", s.Path)
	assert.Equal(t, 100.0, s.Width)
	assert.Equal(t, 50.0, s.Height)
	assert.Equal(t, "50 25", s.TransformOrigin)

	rounded, err := MakeRect(RectOptions{Width: 100, Height: 50, CornerRadius: 10})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rounded.Path, "M 10 0 L 90 0 A 10 10 0 0 1 100 10"))
	assert.Equal(t, 4, strings.Count(rounded.Path, "A "))

	_, err = MakeRect(RectOptions{Width: -1, Height: 5})
	assert.Error(t, err)
}

func TestMakeCircle(t *testing.T) {
	s, err := MakeCircle(20)
	require.NoError(t, err)
	assert.Equal(t, "M 0 20 a 20 20 0 1 0 40 0 a 20 20 0 1 0 -40 0 Z", s.Path)
	assert.Equal(t, 40.0, s.Width)
	assert.Equal(t, 40.0, s.Height)
}

func TestMakeEllipse(t *testing.T) {
	s, err := MakeEllipse(30, 10)
	require.NoError(t, err)
	assert.Equal(t, 60.0, s.Width)
	assert.Equal(t, 20.0, s.Height)
}

func TestMakeTriangle(t *testing.T) {
	up, err := MakeTriangle(100, Up)
	require.NoError(t, err)
	assert.Equal(t, "M 50 0 L 100 86.6025 L 0 86.6025 Z", up.Path)

	left, err := MakeTriangle(100, Left)
	require.NoError(t, err)
	assert.InDelta(t, 86.6025, left.Width, 1e-3)
	assert.Equal(t, 100.0, left.Height)

	_, err = MakeTriangle(100, Direction("sideways"))
	assert.Error(t, err)
}

func TestMakeStar(t *testing.T) {
	s, err := MakeStar(5, 50, 100)
	require.NoError(t, err)
	assert.Equal(t, 9, strings.Count(s.Path, "L "))
	assert.True(t, strings.HasPrefix(s.Path, "M 100 0 "))
	assert.Equal(t, 200.0, s.Width)

	_, err = MakeStar(2, 5, 10)
	assert.Error(t, err)
}

func TestMakePolygon(t *testing.T) {
	s, err := MakePolygon(4, 10)
	require.NoError(t, err)
	assert.Equal(t, "M 10 0 L 20 10 L 10 20 L 0 10 Z", s.Path)

	_, err = MakePolygon(6, 0)
	assert.Error(t, err)
}

func TestMakeHeart(t *testing.T) {
	s, err := MakeHeart(100)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.Path, "M 50 100 C"))
	assert.Equal(t, 6, strings.Count(s.Path, "C "))
}

func TestMakePie(t *testing.T) {
	half, err := MakePie(PieOptions{Radius: 10, Progress: 0.5, ClosePath: true})
	require.NoError(t, err)
	assert.Equal(t, "M 10 10 L 10 0 A 10 10 0 0 1 10 20 Z", half.Path)

	full, err := MakePie(PieOptions{Radius: 10, Progress: 1})
	require.NoError(t, err)
	circle, _ := MakeCircle(10)
	assert.Equal(t, circle.Path, full.Path)

	open, err := MakePie(PieOptions{Radius: 10, Progress: 0.25})
	require.NoError(t, err)
	assert.Equal(t, "M 10 0 A 10 10 0 0 1 20 10", open.Path)

	ccw, err := MakePie(PieOptions{Radius: 10, Progress: 0.25, CounterClockwise: true})
	require.NoError(t, err)
	assert.Equal(t, "M 10 0 A 10 10 0 0 0 0 10", ccw.Path)
}
