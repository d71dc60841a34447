package motion

import (
	"errors"
	"fmt"
	"math"
)

// Extrapolation controls how Interpolate treats input outside the input range.
type Extrapolation string

const (
	ExtrapolateExtend   Extrapolation = "extend"
	ExtrapolateClamp    Extrapolation = "clamp"
	ExtrapolateIdentity Extrapolation = "identity"
	ExtrapolateWrap     Extrapolation = "wrap"
)

var (
	ErrRangeLength   = errors.New("inputRange and outputRange must have the same length")
	ErrRangeTooShort = errors.New("inputRange must have at least 2 elements")
	ErrRangeOrder    = errors.New("inputRange must be strictly monotonically increasing")
	ErrNotFinite     = errors.New("range values must be finite numbers")
)

// InterpolateOptions configures Interpolate. Zero values mean "extend" on both
// sides and linear easing.
type InterpolateOptions struct {
	Easing           EasingFunc
	ExtrapolateLeft  Extrapolation
	ExtrapolateRight Extrapolation
}

// ParseExtrapolation maps a user supplied string to an Extrapolation.
func ParseExtrapolation(s string) (Extrapolation, error) {
	switch Extrapolation(s) {
	case "", ExtrapolateExtend:
		return ExtrapolateExtend, nil
	case ExtrapolateClamp, ExtrapolateIdentity, ExtrapolateWrap:
		return Extrapolation(s), nil
	}
	return "", fmt.Errorf("unknown extrapolation %q", s)
}

// Interpolate maps input from inputRange onto outputRange piecewise linearly.
func Interpolate(input float64, inputRange, outputRange []float64, opts InterpolateOptions) (float64, error) {
	if err := validateRanges(inputRange, outputRange); err != nil {
		return 0, err
	}
	if math.IsNaN(input) {
		return 0, fmt.Errorf("cannot interpolate an input which is not a number")
	}

	i := segment(input, inputRange)
	return interpolateSegment(
		input,
		inputRange[i], inputRange[i+1],
		outputRange[i], outputRange[i+1],
		opts,
	), nil
}

func validateRanges(in, out []float64) error {
	if len(in) != len(out) {
		return ErrRangeLength
	}
	if len(in) < 2 {
		return ErrRangeTooShort
	}
	for i := range in {
		if math.IsNaN(in[i]) || math.IsInf(in[i], 0) || math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return ErrNotFinite
		}
		if i > 0 && in[i] <= in[i-1] {
			return ErrRangeOrder
		}
	}
	return nil
}

// segment returns the index of the lower bound of the segment containing input.
func segment(input float64, in []float64) int {
	i := 1
	for ; i < len(in)-1; i++ {
		if in[i] >= input {
			break
		}
	}
	return i - 1
}

func interpolateSegment(input, inMin, inMax, outMin, outMax float64, opts InterpolateOptions) float64 {
	result := input

	if result < inMin {
		switch opts.ExtrapolateLeft {
		case ExtrapolateIdentity:
			return result
		case ExtrapolateClamp:
			result = inMin
		case ExtrapolateWrap:
			result = wrap(result, inMin, inMax)
		}
	}
	if result > inMax {
		switch opts.ExtrapolateRight {
		case ExtrapolateIdentity:
			return result
		case ExtrapolateClamp:
			result = inMax
		case ExtrapolateWrap:
			result = wrap(result, inMin, inMax)
		}
	}

	if outMin == outMax {
		return outMin
	}

	result = (result - inMin) / (inMax - inMin)
	if opts.Easing != nil {
		result = opts.Easing(result)
	}
	return result*(outMax-outMin) + outMin
}

func wrap(v, lo, hi float64) float64 {
	span := hi - lo
	return math.Mod(math.Mod(v-lo, span)+span, span) + lo
}
