package capability

import (
	"fmt"
	"math"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/animforge/internal/primitives/motion"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

var absoluteFillStyle = map[string]any{
	"position":      "absolute",
	"top":           int64(0),
	"left":          int64(0),
	"right":         int64(0),
	"bottom":        int64(0),
	"width":         "100%",
	"height":        "100%",
	"display":       "flex",
	"flexDirection": "column",
}

func bindRemotion(s *sandbox.Scope) (goja.Value, error) {
	ns := s.Runtime().NewObject()
	for _, name := range []string{"AbsoluteFill", "interpolate", "useCurrentFrame", "useVideoConfig", "spring", "Sequence", "Img", "Easing"} {
		v, err := s.Capability(name)
		if err != nil {
			return nil, err
		}
		if err := ns.Set(name, v); err != nil {
			return nil, err
		}
	}
	if err := ns.Set("measureSpring", measureSpring(s)); err != nil {
		return nil, err
	}
	return ns, nil
}

func bindAbsoluteFill(s *sandbox.Scope) (goja.Value, error) {
	return s.RegisterHost(&sandbox.Host{
		Name: "AbsoluteFill",
		Decorate: func(_ sandbox.RenderContext, props map[string]any) (map[string]any, error) {
			style := make(map[string]any, len(absoluteFillStyle))
			for k, v := range absoluteFillStyle {
				style[k] = v
			}
			if user, ok := props["style"].(map[string]any); ok {
				for k, v := range user {
					style[k] = v
				}
			}
			props["style"] = style
			return props, nil
		},
	}), nil
}

// sequenceWindow returns the frame seen by a Sequence's children.
func sequenceWindow(frame int, props map[string]any) (int, bool) {
	from := propFloat(props, "from", 0)
	duration := propFloat(props, "durationInFrames", math.Inf(1))
	f := float64(frame)
	return frame - int(from), f >= from && f < from+duration
}

func bindSequence(s *sandbox.Scope) (goja.Value, error) {
	return s.RegisterHost(&sandbox.Host{
		Name: "Sequence",
		Timeline: func(rc sandbox.RenderContext, props map[string]any) (int, bool) {
			return sequenceWindow(rc.Frame, props)
		},
	}), nil
}

func bindImg(s *sandbox.Scope) (goja.Value, error) {
	return s.RegisterHost(&sandbox.Host{Name: "Img"}), nil
}

func bindUseCurrentFrame(s *sandbox.Scope) (goja.Value, error) {
	return s.Runtime().ToValue(func() int { return s.Frame() }), nil
}

func bindUseVideoConfig(s *sandbox.Scope) (goja.Value, error) {
	vm := s.Runtime()
	return vm.ToValue(func(goja.FunctionCall) goja.Value {
		c := s.Composition()
		cfg := vm.NewObject()
		_ = cfg.Set("id", c.ID)
		_ = cfg.Set("width", c.Width)
		_ = cfg.Set("height", c.Height)
		_ = cfg.Set("fps", c.FPS)
		_ = cfg.Set("durationInFrames", c.DurationInFrames)
		return cfg
	}), nil
}

func bindInterpolate(s *sandbox.Scope) (goja.Value, error) {
	vm := s.Runtime()
	return vm.ToValue(func(c goja.FunctionCall) goja.Value {
		input := c.Argument(0).ToFloat()
		in := floats(s, c.Argument(1), "inputRange")
		out := floats(s, c.Argument(2), "outputRange")

		o := optionsOf(s, c.Argument(3))
		left, err := motion.ParseExtrapolation(o.str("extrapolateLeft", ""))
		if err != nil {
			throw(s, err)
		}
		right, err := motion.ParseExtrapolation(o.str("extrapolateRight", ""))
		if err != nil {
			throw(s, err)
		}

		v, err := motion.Interpolate(input, in, out, motion.InterpolateOptions{
			Easing:           easingOf(s, o.get("easing")),
			ExtrapolateLeft:  left,
			ExtrapolateRight: right,
		})
		if err != nil {
			throw(s, err)
		}
		return vm.ToValue(v)
	}), nil
}

// springConfigOf reads a spring config object over the defaults.
func springConfigOf(o options) motion.SpringConfig {
	cfg := motion.DefaultSpringConfig()
	cfg.Damping = o.float("damping", cfg.Damping)
	cfg.Mass = o.float("mass", cfg.Mass)
	cfg.Stiffness = o.float("stiffness", cfg.Stiffness)
	cfg.OvershootClamping = o.boolean("overshootClamping", cfg.OvershootClamping)
	return cfg
}

func bindSpring(s *sandbox.Scope) (goja.Value, error) {
	vm := s.Runtime()
	return vm.ToValue(func(c goja.FunctionCall) goja.Value {
		o := optionsOf(s, c.Argument(0))
		if !o.has("frame") {
			throw(s, fmt.Errorf("spring() requires a frame"))
		}
		v, err := motion.Spring(motion.SpringOptions{
			Frame:            o.float("frame", 0),
			FPS:              o.float("fps", s.Composition().FPS),
			Config:           springConfigOf(o.object("config")),
			From:             o.float("from", 0),
			To:               o.float("to", 1),
			Delay:            o.float("delay", 0),
			DurationInFrames: o.float("durationInFrames", 0),
			RestThreshold:    o.float("restThreshold", 0),
			Reverse:          o.boolean("reverse", false),
		})
		if err != nil {
			throw(s, err)
		}
		return vm.ToValue(v)
	}), nil
}

func measureSpring(s *sandbox.Scope) func(goja.FunctionCall) goja.Value {
	return func(c goja.FunctionCall) goja.Value {
		o := optionsOf(s, c.Argument(0))
		n, err := motion.SpringDuration(
			o.float("fps", s.Composition().FPS),
			springConfigOf(o.object("config")),
			o.float("threshold", motion.DefaultRestThreshold),
		)
		if err != nil {
			throw(s, err)
		}
		return s.Runtime().ToValue(n)
	}
}

func bindEasing(s *sandbox.Scope) (goja.Value, error) {
	vm := s.Runtime()
	ns := vm.NewObject()
	wrap := func(f motion.EasingFunc) goja.Value {
		return vm.ToValue(func(t float64) float64 { return f(t) })
	}
	fixed := map[string]motion.EasingFunc{
		"linear": motion.Linear,
		"ease":   motion.Ease,
		"quad":   motion.Quad,
		"cubic":  motion.Cubic,
		"sin":    motion.Sin,
		"circle": motion.Circle,
		"exp":    motion.Exp,
		"bounce": motion.Bounce,
	}
	for name, f := range fixed {
		if err := ns.Set(name, wrap(f)); err != nil {
			return nil, err
		}
	}

	factories := map[string]func(goja.FunctionCall) goja.Value{
		"poly": func(c goja.FunctionCall) goja.Value {
			return wrap(motion.Poly(c.Argument(0).ToFloat()))
		},
		"elastic": func(c goja.FunctionCall) goja.Value {
			b := 1.0
			if !goja.IsUndefined(c.Argument(0)) {
				b = c.Argument(0).ToFloat()
			}
			return wrap(motion.Elastic(b))
		},
		"back": func(c goja.FunctionCall) goja.Value {
			k := 1.70158
			if !goja.IsUndefined(c.Argument(0)) {
				k = c.Argument(0).ToFloat()
			}
			return wrap(motion.Back(k))
		},
		"bezier": func(c goja.FunctionCall) goja.Value {
			return wrap(motion.Bezier(
				c.Argument(0).ToFloat(), c.Argument(1).ToFloat(),
				c.Argument(2).ToFloat(), c.Argument(3).ToFloat(),
			))
		},
		"in": func(c goja.FunctionCall) goja.Value {
			return wrap(motion.In(requireEasing(s, c.Argument(0))))
		},
		"out": func(c goja.FunctionCall) goja.Value {
			return wrap(motion.Out(requireEasing(s, c.Argument(0))))
		},
		"inOut": func(c goja.FunctionCall) goja.Value {
			return wrap(motion.InOut(requireEasing(s, c.Argument(0))))
		},
	}
	for name, f := range factories {
		if err := ns.Set(name, f); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

func requireEasing(s *sandbox.Scope, v goja.Value) motion.EasingFunc {
	f := easingOf(s, v)
	if f == nil {
		panic(s.Runtime().NewTypeError("easing must be a function"))
	}
	return f
}
