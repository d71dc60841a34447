package capability

import (
	"math"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

func bindThree(s *sandbox.Scope) (goja.Value, error) {
	vm := s.Runtime()
	mathUtils := map[string]any{
		"DEG2RAD":    math.Pi / 180,
		"RAD2DEG":    180 / math.Pi,
		"degToRad":   func(d float64) float64 { return d * math.Pi / 180 },
		"radToDeg":   func(r float64) float64 { return r * 180 / math.Pi },
		"lerp":       func(x, y, t float64) float64 { return (1-t)*x + t*y },
		"clamp":      func(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) },
		"mapLinear":  func(x, a1, a2, b1, b2 float64) float64 { return b1 + (x-a1)*(b2-b1)/(a2-a1) },
		"smoothstep": smoothstep,
	}
	ns := vm.NewObject()
	if err := ns.Set("MathUtils", mathUtils); err != nil {
		return nil, err
	}
	return ns, nil
}

func smoothstep(x, lo, hi float64) float64 {
	if x <= lo {
		return 0
	}
	if x >= hi {
		return 1
	}
	x = (x - lo) / (hi - lo)
	return x * x * (3 - 2*x)
}

// bindThreeCanvas renders ThreeCanvas at the composition size unless sized.
func bindThreeCanvas(s *sandbox.Scope) (goja.Value, error) {
	return s.RegisterHost(&sandbox.Host{
		Name: "ThreeCanvas",
		Decorate: func(rc sandbox.RenderContext, props map[string]any) (map[string]any, error) {
			if _, ok := props["width"]; !ok {
				props["width"] = rc.Composition.Width
			}
			if _, ok := props["height"]; !ok {
				props["height"] = rc.Composition.Height
			}
			return props, nil
		},
	}), nil
}

// bindLottie renders a Lottie node annotated with the animation frame it
// would display.
func bindLottie(s *sandbox.Scope) (goja.Value, error) {
	return s.RegisterHost(&sandbox.Host{
		Name: "Lottie",
		Decorate: func(rc sandbox.RenderContext, props map[string]any) (map[string]any, error) {
			rate := propFloat(props, "playbackRate", 1)
			props["frame"] = math.Floor(float64(rc.Frame) * rate)
			delete(props, "animationData")
			return props, nil
		},
	}), nil
}
