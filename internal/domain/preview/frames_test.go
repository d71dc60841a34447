package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrames(t *testing.T) {
	tests := []struct {
		spec     string
		duration int
		want     []int
	}{
		{"", 30, []int{0}},
		{"12", 30, []int{12}},
		{"0, 5 ,9", 30, []int{0, 5, 9}},
		{"3-6", 30, []int{3, 4, 5, 6}},
		{"0-29:10", 30, []int{0, 10, 20}},
		{"7,0-4:2", 30, []int{7, 0, 2, 4}},
		{"all", 4, []int{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseFrames(tt.spec, tt.duration, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFramesErrors(t *testing.T) {
	tests := []struct {
		spec       string
		outOfRange bool
	}{
		{"x", false},
		{"5-", false},
		{"5-2", false},
		{"0-9:0", false},
		{"4:2", false},
		{"30", true},
		{"-1", false},
		{"0-40", true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := ParseFrames(tt.spec, 30, 0)
			require.Error(t, err)
			if tt.outOfRange {
				assert.ErrorIs(t, err, ErrFrameOutOfRange)
			}
		})
	}
}

func TestParseFramesLimit(t *testing.T) {
	tests := []struct {
		spec     string
		duration int
		ok       bool
	}{
		{"all", 300, true},
		{"all", 301, false},
		{"all", 1 << 30, false},
		{"0-599:2", 600, true},
		{"0-599:2,7", 600, false},
		{"0-1073741823:10000000", 1 << 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			frames, err := ParseFrames(tt.spec, tt.duration, 300)
			if tt.ok {
				require.NoError(t, err)
				assert.LessOrEqual(t, len(frames), 300)
				return
			}
			assert.ErrorIs(t, err, ErrTooManyFrames)
			assert.Nil(t, frames)
		})
	}
}

func TestParseFramesLimitDoesNotExpand(t *testing.T) {
	allocs := testing.AllocsPerRun(5, func() {
		_, err := ParseFrames("all", 1<<30, 300)
		if err == nil {
			t.Fatal("expected an error")
		}
	})
	assert.Less(t, allocs, 32.0)
}
