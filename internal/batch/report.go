package batch

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Timing summarizes compile durations in milliseconds.
type Timing struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean_ms"`
	StdDev float64 `json:"stddev_ms"`
	Median float64 `json:"median_ms"`
	P90    float64 `json:"p90_ms"`
	Min    float64 `json:"min_ms"`
	Max    float64 `json:"max_ms"`
}

// Summary counts results by status.
type Summary struct {
	Total   int     `json:"total"`
	Passed  int     `json:"passed"`
	Failed  int     `json:"failed"`
	Errored int     `json:"errored"`
	Elapsed float64 `json:"elapsed_ms"`
	Timing  Timing  `json:"timing"`
}

// Report is the outcome of a Run.
type Report struct {
	Summary Summary  `json:"summary"`
	Results []Result `json:"results"`
}

// OK reports whether every fixture met its expectation.
func (r *Report) OK() bool {
	return r.Summary.Failed == 0 && r.Summary.Errored == 0
}

func newReport(results []Result, elapsed time.Duration) *Report {
	r := &Report{Results: results}
	r.Summary.Total = len(results)
	r.Summary.Elapsed = millis(elapsed)

	var durations []float64
	for _, res := range results {
		switch {
		case res.Error != "":
			r.Summary.Errored++
			continue
		case res.Passed:
			r.Summary.Passed++
		default:
			r.Summary.Failed++
		}
		durations = append(durations, millis(res.Outcome.Duration))
	}
	r.Summary.Timing = timing(durations)
	return r
}

// timing computes summary statistics of xs using gonum
func timing(xs []float64) Timing {
	if len(xs) == 0 {
		return Timing{}
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	t := Timing{
		Count:  len(xs),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
	}
	if len(xs) > 1 {
		t.StdDev = stat.StdDev(sorted, nil)
	}
	return t
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteText writes one line per fixture followed by the summary.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", status(res), res.Fixture.Rel, detail(res))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := r.Summary
	fmt.Fprintf(w, "\n%d fixtures: %d passed, %d failed, %d errored in %.0fms\n",
		s.Total, s.Passed, s.Failed, s.Errored, s.Elapsed)
	if t := s.Timing; t.Count > 0 {
		fmt.Fprintf(w, "compile ms: mean %.2f  sd %.2f  median %.2f  p90 %.2f  max %.2f\n",
			t.Mean, t.StdDev, t.Median, t.P90, t.Max)
	}
	return nil
}

func status(res Result) string {
	switch {
	case res.Error != "":
		return "ERROR"
	case res.Passed:
		return "PASS"
	}
	return "FAIL"
}

func detail(res Result) string {
	o := res.Outcome
	switch {
	case res.Error != "":
		return res.Error
	case res.Fixture.ExpectFailure && !o.Success:
		return fmt.Sprintf("failed as expected (%s): %s", o.Kind, o.Message)
	case res.Fixture.ExpectFailure:
		return "compiled but was expected to fail"
	case !o.Success:
		return fmt.Sprintf("%s at %s: %s", o.Kind, o.Stage, o.Message)
	}
	return fmt.Sprintf("%d frame(s), %.2fms", o.Frames, millis(o.Duration))
}
