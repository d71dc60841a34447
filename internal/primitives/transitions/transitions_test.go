package transitions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/animforge/internal/primitives/motion"
)

func linear(t *testing.T, d int) Timing {
	t.Helper()
	timing, err := LinearTiming(d, nil)
	require.NoError(t, err)
	return timing
}

func series(t *testing.T) []Item {
	fade, err := NewPresentation("fade", "")
	require.NoError(t, err)
	return []Item{
		{Kind: KindSequence, DurationInFrames: 60},
		{Kind: KindTransition, Timing: linear(t, 20), Presentation: fade},
		{Kind: KindSequence, DurationInFrames: 60},
	}
}

func TestArrangeSequential(t *testing.T) {
	items := []Item{
		{Kind: KindSequence, DurationInFrames: 30},
		{Kind: KindSequence, DurationInFrames: 30},
	}

	got, err := Arrange(items, 10, 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 10, got[0].LocalFrame)

	got, err = Arrange(items, 45, 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 15, got[0].LocalFrame)

	got, err = Arrange(items, 60, 30)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestArrangeOverlap(t *testing.T) {
	items := series(t)

	total, err := TotalDuration(items)
	require.NoError(t, err)
	assert.Equal(t, 100, total)

	got, err := Arrange(items, 50, 30)
	require.NoError(t, err)
	require.Len(t, got, 2)

	exiting, entering := got[0], got[1]
	require.NotNil(t, exiting.Exiting)
	assert.Nil(t, exiting.Entering)
	assert.Equal(t, "exiting", exiting.Exiting.Direction)
	assert.InDelta(t, 0.5, exiting.Exiting.Progress, 1e-9)

	require.NotNil(t, entering.Entering)
	assert.Equal(t, 40, entering.Start)
	assert.Equal(t, 10, entering.LocalFrame)
	assert.InDelta(t, 0.5, entering.Entering.Progress, 1e-9)
	assert.Equal(t, "fade", entering.Entering.Presentation.Name)
}

func TestArrangeOffset(t *testing.T) {
	items := []Item{
		{Kind: KindSequence, DurationInFrames: 10},
		{Kind: KindSequence, DurationInFrames: 10, Offset: 5},
	}
	got, err := Arrange(items, 12, 30)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Arrange(items, 15, 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].LocalFrame)
}

func TestLayoutValidation(t *testing.T) {
	fade, _ := NewPresentation("fade", "")
	tr := Item{Kind: KindTransition, Timing: linear(t, 10), Presentation: fade}
	seq := Item{Kind: KindSequence, DurationInFrames: 30}
	short := Item{Kind: KindSequence, DurationInFrames: 5}

	_, err := Arrange([]Item{tr, seq}, 0, 30)
	assert.ErrorIs(t, err, ErrTransitionPosition)

	_, err = Arrange([]Item{seq, tr}, 0, 30)
	assert.ErrorIs(t, err, ErrTransitionPosition)

	_, err = Arrange([]Item{seq, tr, tr, seq}, 0, 30)
	assert.ErrorIs(t, err, ErrConsecutiveTransition)

	_, err = Arrange([]Item{short, tr, seq}, 0, 30)
	assert.ErrorIs(t, err, ErrTransitionTooLong)

	_, err = Arrange([]Item{seq, tr, short}, 0, 30)
	assert.ErrorIs(t, err, ErrTransitionTooLong)
}

func TestTimings(t *testing.T) {
	_, err := LinearTiming(0, nil)
	assert.Error(t, err)

	eased, err := LinearTiming(10, motion.Quad)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, eased.Progress(5, 30), 1e-9)
	assert.Equal(t, 1.0, eased.Progress(20, 30))

	sp, err := SpringTiming(motion.SpringConfig{Damping: 200, Mass: 1, Stiffness: 100}, 0, 30)
	require.NoError(t, err)
	assert.Greater(t, sp.DurationInFrames, 0)
	assert.InDelta(t, 0, sp.Progress(0, 30), 1e-9)
	assert.InDelta(t, 1, sp.Progress(sp.DurationInFrames, 30), 0.01)
}

func TestNewPresentation(t *testing.T) {
	p, err := NewPresentation("slide", "")
	require.NoError(t, err)
	assert.Equal(t, "from-left", p.Direction)

	p, err = NewPresentation("wipe", "from-top-right")
	require.NoError(t, err)
	assert.Equal(t, "from-top-right", p.Direction)

	_, err = NewPresentation("slide", "diagonal")
	assert.Error(t, err)

	_, err = NewPresentation("dissolve", "")
	assert.Error(t, err)
}
