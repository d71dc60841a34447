package batch

import (
	"bytes"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []Result {
	ok := func(rel string, ms int) Result {
		return Result{
			Fixture: &Fixture{Rel: rel},
			Outcome: Outcome{Success: true, Stage: "succeeded", Frames: 1, Duration: time.Duration(ms) * time.Millisecond},
			Passed:  true,
		}
	}
	return []Result{
		ok("a.tsx", 10),
		ok("b.tsx", 20),
		ok("c.tsx", 30),
		{
			Fixture: &Fixture{Rel: "d.tsx"},
			Outcome: Outcome{Kind: "shape", Stage: "invoking", Message: "bad shape", Duration: 40 * time.Millisecond},
		},
		{Fixture: &Fixture{Rel: "e.tsx"}, Error: "not a text file"},
	}
}

func TestNewReport(t *testing.T) {
	r := newReport(sampleResults(), 2*time.Second)

	s := r.Summary
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 3, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Errored)
	assert.Equal(t, 2000.0, s.Elapsed)
	assert.False(t, r.OK())

	tm := s.Timing
	assert.Equal(t, 4, tm.Count)
	assert.InDelta(t, 25.0, tm.Mean, 1e-9)
	assert.InDelta(t, 12.909944, tm.StdDev, 1e-5)
	assert.Equal(t, 20.0, tm.Median)
	assert.Equal(t, 40.0, tm.P90)
	assert.Equal(t, 10.0, tm.Min)
	assert.Equal(t, 40.0, tm.Max)
}

func TestTimingEdgeCases(t *testing.T) {
	assert.Equal(t, Timing{}, timing(nil))

	one := timing([]float64{7})
	assert.Equal(t, 1, one.Count)
	assert.Equal(t, 7.0, one.Mean)
	assert.Zero(t, one.StdDev)
	assert.Equal(t, 7.0, one.Median)
}

func TestReportOK(t *testing.T) {
	r := newReport(sampleResults()[:3], time.Second)
	assert.True(t, r.OK())
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newReport(sampleResults(), time.Second).WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "a.tsx")
	assert.Contains(t, out, "shape at invoking: bad shape")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "5 fixtures: 3 passed, 1 failed, 1 errored")
	assert.Contains(t, out, "median 20.00")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newReport(sampleResults(), time.Second).WriteJSON(&buf))

	var decoded struct {
		Summary Summary `json:"summary"`
		Results []struct {
			Fixture struct {
				Rel string `json:"rel"`
			} `json:"fixture"`
			Passed bool   `json:"passed"`
			Error  string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 5, decoded.Summary.Total)
	require.Len(t, decoded.Results, 5)
	assert.Equal(t, "e.tsx", decoded.Results[4].Fixture.Rel)
	assert.Equal(t, "not a text file", decoded.Results[4].Error)
	assert.True(t, decoded.Results[0].Passed)
}
