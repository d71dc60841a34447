package transitions

import (
	"errors"
	"fmt"
	"math"

	"github.com/GriffinCanCode/animforge/internal/primitives/motion"
)

var (
	ErrTransitionPosition    = errors.New("a transition must sit between two sequences")
	ErrConsecutiveTransition = errors.New("two transitions cannot follow each other")
	ErrTransitionTooLong     = errors.New("transition is longer than an adjacent sequence")
)

// TimingKind distinguishes linear and spring driven transitions.
type TimingKind string

const (
	TimingLinear TimingKind = "linear"
	TimingSpring TimingKind = "spring"
)

// Timing describes how a transition progresses over its duration.
type Timing struct {
	Kind             TimingKind          `json:"type"`
	DurationInFrames int                 `json:"durationInFrames"`
	Spring           motion.SpringConfig `json:"config"`
	Easing           motion.EasingFunc   `json:"-"`
}

// LinearTiming progresses evenly over durationInFrames.
func LinearTiming(durationInFrames int, easing motion.EasingFunc) (Timing, error) {
	if durationInFrames <= 0 {
		return Timing{}, fmt.Errorf("linearTiming requires a positive durationInFrames, got %d", durationInFrames)
	}
	return Timing{Kind: TimingLinear, DurationInFrames: durationInFrames, Easing: easing}, nil
}

// SpringTiming progresses along a spring. When durationInFrames is zero the
// natural settle time of the spring at fps is used.
func SpringTiming(cfg motion.SpringConfig, durationInFrames int, fps float64) (Timing, error) {
	if durationInFrames <= 0 {
		n, err := motion.SpringDuration(fps, cfg, motion.DefaultRestThreshold)
		if err != nil {
			return Timing{}, err
		}
		durationInFrames = n
	}
	return Timing{Kind: TimingSpring, DurationInFrames: durationInFrames, Spring: cfg}, nil
}

// Progress returns the completion of the timing at frame, measured from the
// start of the transition.
func (t Timing) Progress(frame int, fps float64) float64 {
	if t.DurationInFrames <= 0 {
		return 1
	}
	switch t.Kind {
	case TimingSpring:
		v, err := motion.Spring(motion.SpringOptions{
			Frame:            float64(frame),
			FPS:              fps,
			Config:           t.Spring,
			To:               1,
			DurationInFrames: float64(t.DurationInFrames),
		})
		if err != nil {
			return clamp01(float64(frame) / float64(t.DurationInFrames))
		}
		return v
	default:
		p := clamp01(float64(frame) / float64(t.DurationInFrames))
		if t.Easing != nil {
			p = t.Easing(p)
		}
		return p
	}
}

// Presentation is the visual effect applied while a transition runs.
type Presentation struct {
	Name      string  `json:"name"`
	Direction string  `json:"direction,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
}

var presentationDirections = map[string][]string{
	"fade":      nil,
	"slide":     {"from-left", "from-right", "from-top", "from-bottom"},
	"wipe":      {"from-left", "from-right", "from-top", "from-bottom", "from-top-left", "from-top-right", "from-bottom-left", "from-bottom-right"},
	"flip":      {"from-left", "from-right", "from-top", "from-bottom"},
	"clockWipe": nil,
}

// NewPresentation validates a presentation name and direction. An empty
// direction picks the first supported one.
func NewPresentation(name, direction string) (Presentation, error) {
	dirs, ok := presentationDirections[name]
	if !ok {
		return Presentation{}, fmt.Errorf("unknown presentation %q", name)
	}
	if len(dirs) == 0 {
		return Presentation{Name: name}, nil
	}
	if direction == "" {
		return Presentation{Name: name, Direction: dirs[0]}, nil
	}
	for _, d := range dirs {
		if d == direction {
			return Presentation{Name: name, Direction: direction}, nil
		}
	}
	return Presentation{}, fmt.Errorf("%s does not support direction %q", name, direction)
}

// ItemKind tells sequences and transitions apart inside a series.
type ItemKind int

const (
	KindSequence ItemKind = iota
	KindTransition
)

// Item is one child of a transition series.
type Item struct {
	Kind             ItemKind
	DurationInFrames int // sequences only
	Offset           int // sequences only
	Timing           Timing
	Presentation     Presentation
}

// Phase describes a sequence that is currently part of a running transition.
type Phase struct {
	Presentation Presentation `json:"presentation"`
	Direction    string       `json:"direction"` // "entering" or "exiting"
	Progress     float64      `json:"progress"`
}

// Placement is a sequence visible at the requested frame.
type Placement struct {
	Index      int
	Start      int
	LocalFrame int
	Entering   *Phase
	Exiting    *Phase
}

type span struct {
	index      int
	start, end int
	before     *Item
	after      *Item
}

// layout computes absolute start and end frames for every sequence in items.
func layout(items []Item) ([]span, error) {
	var spans []span
	cursor := 0
	var pending *Item

	for i := range items {
		it := &items[i]
		switch it.Kind {
		case KindTransition:
			if len(spans) == 0 || i == len(items)-1 {
				return nil, ErrTransitionPosition
			}
			if pending != nil {
				return nil, ErrConsecutiveTransition
			}
			prev := &spans[len(spans)-1]
			if it.Timing.DurationInFrames > prev.end-prev.start {
				return nil, ErrTransitionTooLong
			}
			prev.after = it
			pending = it
		default:
			if it.DurationInFrames <= 0 {
				return nil, fmt.Errorf("sequence %d needs a positive durationInFrames", i)
			}
			start := cursor + it.Offset
			if pending != nil {
				if pending.Timing.DurationInFrames > it.DurationInFrames {
					return nil, ErrTransitionTooLong
				}
				start -= pending.Timing.DurationInFrames
			}
			s := span{index: i, start: start, end: start + it.DurationInFrames, before: pending}
			spans = append(spans, s)
			cursor = s.end
			pending = nil
		}
	}
	return spans, nil
}

// Arrange returns the sequences visible at frame, with transition phases for
// the ones that are entering or exiting.
func Arrange(items []Item, frame int, fps float64) ([]Placement, error) {
	spans, err := layout(items)
	if err != nil {
		return nil, err
	}

	var out []Placement
	for _, s := range spans {
		if frame < s.start || frame >= s.end {
			continue
		}
		p := Placement{Index: s.index, Start: s.start, LocalFrame: frame - s.start}
		if s.before != nil && frame < s.start+s.before.Timing.DurationInFrames {
			p.Entering = &Phase{
				Presentation: s.before.Presentation,
				Direction:    "entering",
				Progress:     s.before.Timing.Progress(frame-s.start, fps),
			}
		}
		if s.after != nil && frame >= s.end-s.after.Timing.DurationInFrames {
			from := s.end - s.after.Timing.DurationInFrames
			p.Exiting = &Phase{
				Presentation: s.after.Presentation,
				Direction:    "exiting",
				Progress:     s.after.Timing.Progress(frame-from, fps),
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// TotalDuration is the frame at which the last sequence ends.
func TotalDuration(items []Item) (int, error) {
	spans, err := layout(items)
	if err != nil {
		return 0, err
	}
	end := 0
	for _, s := range spans {
		end = max(end, s.end)
	}
	return end, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
