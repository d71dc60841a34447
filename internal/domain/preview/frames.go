package preview

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFrames expands a frame selection against a composition of duration
// frames. The selection is a comma separated list of frames ("12"),
// inclusive ranges ("0-29") and stepped ranges ("0-149:30"); "all" selects
// every frame. Order is preserved.
//
// A positive limit caps the number of selected frames. The count is taken
// from the range bounds before anything is expanded, so an oversized
// selection fails with ErrTooManyFrames without allocating it.
func ParseFrames(spec string, duration, limit int) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return []int{0}, nil
	}
	if spec == "all" {
		if duration <= 0 {
			return nil, nil
		}
		spec = "0-" + strconv.Itoa(duration-1)
	}

	var parts []span
	total := 0
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		sp, err := parsePart(part, duration)
		if err != nil {
			return nil, err
		}
		total += sp.count()
		if limit > 0 && total > limit {
			return nil, fmt.Errorf("%w: more than %d in %q", ErrTooManyFrames, limit, spec)
		}
		parts = append(parts, sp)
	}

	out := make([]int, 0, total)
	for _, sp := range parts {
		for f := sp.start; f <= sp.end; f += sp.step {
			out = append(out, f)
		}
	}
	return out, nil
}

// span is an inclusive stepped range of frames.
type span struct {
	start, end, step int
}

func (s span) count() int {
	return (s.end-s.start)/s.step + 1
}

func parsePart(part string, duration int) (span, error) {
	rng, stepStr, hasStep := strings.Cut(part, ":")
	step := 1
	if hasStep {
		n, err := strconv.Atoi(stepStr)
		if err != nil || n <= 0 {
			return span{}, fmt.Errorf("invalid step in %q", part)
		}
		step = n
	}

	lo, hi, isRange := strings.Cut(rng, "-")
	start, err := frameNumber(lo, part, duration)
	if err != nil {
		return span{}, err
	}
	if !isRange {
		if hasStep {
			return span{}, fmt.Errorf("step without range in %q", part)
		}
		return span{start, start, 1}, nil
	}
	end, err := frameNumber(hi, part, duration)
	if err != nil {
		return span{}, err
	}
	if end < start {
		return span{}, fmt.Errorf("range %q ends before it starts", part)
	}
	return span{start, end, step}, nil
}

func frameNumber(s, part string, duration int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid frame in %q", part)
	}
	if n < 0 || n >= duration {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameOutOfRange, n, duration)
	}
	return n, nil
}
