// Package motion implements the timing primitives exposed to generated
// animations: piecewise interpolation with configurable extrapolation, easing
// curves, and closed-form damped springs.
//
// All functions are pure and deterministic; the same frame always yields the
// same value, which is what makes frame-by-frame preview rendering repeatable.
//
// Example Usage:
//
//	v, err := motion.Interpolate(15, []float64{0, 30}, []float64{0, 1}, motion.InterpolateOptions{
//		ExtrapolateRight: motion.ExtrapolateClamp,
//	})
//
//	s, err := motion.Spring(motion.DefaultSpringOptions(frame, 30))
package motion
