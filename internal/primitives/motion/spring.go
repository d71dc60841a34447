package motion

import (
	"errors"
	"fmt"
	"math"
)

// ErrSpringNeverSettles is returned when a spring has no damping and therefore
// no finite duration.
var ErrSpringNeverSettles = errors.New("spring never settles: damping must be greater than 0")

const (
	// DefaultRestThreshold is the distance from the target below which a spring
	// is considered settled.
	DefaultRestThreshold = 0.005

	maxSpringFrames = 100_000
)

// SpringConfig holds the physical parameters of a spring.
type SpringConfig struct {
	Damping           float64 `json:"damping"`
	Mass              float64 `json:"mass"`
	Stiffness         float64 `json:"stiffness"`
	OvershootClamping bool    `json:"overshootClamping"`
}

// DefaultSpringConfig returns damping 10, mass 1, stiffness 100.
func DefaultSpringConfig() SpringConfig {
	return SpringConfig{
		Damping:   10,
		Mass:      1,
		Stiffness: 100,
	}
}

// SpringOptions describes a spring animation sampled at a frame.
type SpringOptions struct {
	Frame            float64
	FPS              float64
	Config           SpringConfig
	From             float64
	To               float64
	Delay            float64
	DurationInFrames float64
	RestThreshold    float64
	Reverse          bool
}

// DefaultSpringOptions animates from 0 to 1 with the default config.
func DefaultSpringOptions(frame, fps float64) SpringOptions {
	return SpringOptions{
		Frame:  frame,
		FPS:    fps,
		Config: DefaultSpringConfig(),
		To:     1,
	}
}

func (c SpringConfig) validate() error {
	if c.Mass <= 0 {
		return fmt.Errorf("spring mass must be greater than 0, got %v", c.Mass)
	}
	if c.Stiffness <= 0 {
		return fmt.Errorf("spring stiffness must be greater than 0, got %v", c.Stiffness)
	}
	if c.Damping < 0 {
		return fmt.Errorf("spring damping must not be negative, got %v", c.Damping)
	}
	return nil
}

// Spring samples a damped harmonic oscillator released from From towards To.
func Spring(o SpringOptions) (float64, error) {
	if o.FPS <= 0 {
		return 0, fmt.Errorf("fps must be greater than 0, got %v", o.FPS)
	}
	if err := o.Config.validate(); err != nil {
		return 0, err
	}
	threshold := o.RestThreshold
	if threshold <= 0 {
		threshold = DefaultRestThreshold
	}

	f := o.Frame - o.Delay

	var natural float64
	if o.DurationInFrames > 0 || o.Reverse {
		n, err := SpringDuration(o.FPS, o.Config, threshold)
		if err != nil {
			return 0, err
		}
		natural = float64(n)
	}

	if o.Reverse {
		span := natural
		if o.DurationInFrames > 0 {
			span = o.DurationInFrames
		}
		f = span - f
	}
	if o.DurationInFrames > 0 {
		f = f * natural / o.DurationInFrames
	}
	if f < 0 {
		return o.From, nil
	}

	p := springProgress(f/o.FPS, o.Config)
	if o.Config.OvershootClamping && p > 1 {
		p = 1
	}
	return o.From + (o.To-o.From)*p, nil
}

// SpringDuration returns the number of frames until the spring stays within
// threshold of its target.
func SpringDuration(fps float64, c SpringConfig, threshold float64) (int, error) {
	if fps <= 0 {
		return 0, fmt.Errorf("fps must be greater than 0, got %v", fps)
	}
	if err := c.validate(); err != nil {
		return 0, err
	}
	if c.Damping == 0 {
		return 0, ErrSpringNeverSettles
	}
	if threshold <= 0 {
		threshold = DefaultRestThreshold
	}

	last := 0
	for n := 0; n < maxSpringFrames; n++ {
		t := float64(n) / fps
		p := springProgress(t, c)
		if c.OvershootClamping && p > 1 {
			p = 1
		}
		if math.Abs(1-p) >= threshold {
			last = n
		}
		if springEnvelope(t, c) < threshold {
			return last + 1, nil
		}
	}
	return 0, ErrSpringNeverSettles
}

func springParams(c SpringConfig) (zeta, w0 float64) {
	w0 = math.Sqrt(c.Stiffness / c.Mass)
	zeta = c.Damping / (2 * math.Sqrt(c.Stiffness*c.Mass))
	return zeta, w0
}

// springProgress is the closed form position of a unit spring at rest at 0 with
// target 1, t seconds after release.
func springProgress(t float64, c SpringConfig) float64 {
	zeta, w0 := springParams(c)
	switch {
	case zeta < 1:
		w1 := w0 * math.Sqrt(1-zeta*zeta)
		env := math.Exp(-zeta * w0 * t)
		return 1 - env*((zeta*w0/w1)*math.Sin(w1*t)+math.Cos(w1*t))
	case zeta == 1:
		return 1 - math.Exp(-w0*t)*(1+w0*t)
	default:
		s := math.Sqrt(zeta*zeta - 1)
		r1 := -w0 * (zeta - s)
		r2 := -w0 * (zeta + s)
		c1 := r2 / (r2 - r1)
		c2 := -r1 / (r2 - r1)
		return 1 - (c1*math.Exp(r1*t) + c2*math.Exp(r2*t))
	}
}

// springEnvelope bounds |1 - springProgress(t)| from above.
func springEnvelope(t float64, c SpringConfig) float64 {
	zeta, w0 := springParams(c)
	switch {
	case zeta < 1:
		w1 := w0 * math.Sqrt(1-zeta*zeta)
		k := zeta * w0 / w1
		return math.Exp(-zeta*w0*t) * math.Sqrt(1+k*k)
	case zeta == 1:
		return math.Exp(-w0*t) * (1 + w0*t)
	default:
		s := math.Sqrt(zeta*zeta - 1)
		r1 := -w0 * (zeta - s)
		r2 := -w0 * (zeta + s)
		c1 := r2 / (r2 - r1)
		c2 := -r1 / (r2 - r1)
		return math.Abs(c1)*math.Exp(r1*t) + math.Abs(c2)*math.Exp(r2*t)
	}
}
