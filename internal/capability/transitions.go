package capability

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/animforge/internal/primitives/transitions"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

const (
	seriesSequence   = "TransitionSeries.Sequence"
	seriesTransition = "TransitionSeries.Transition"
)

func bindTransitionSeries(s *sandbox.Scope) (goja.Value, error) {
	return s.RegisterHost(&sandbox.Host{
		Name:    "TransitionSeries",
		Arrange: arrangeSeries,
		Members: []*sandbox.Host{
			{Name: seriesSequence},
			{Name: seriesTransition},
		},
	}), nil
}

func arrangeSeries(rc sandbox.RenderContext, slots []sandbox.Slot) ([]sandbox.Arrangement, error) {
	items := make([]transitions.Item, len(slots))
	for i, slot := range slots {
		item, err := seriesItem(slot)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}

	placed, err := transitions.Arrange(items, rc.Frame, rc.Composition.FPS)
	if err != nil {
		return nil, err
	}
	out := make([]sandbox.Arrangement, len(placed))
	for i, p := range placed {
		props := map[string]any{}
		if p.Entering != nil {
			props["entering"] = p.Entering
		}
		if p.Exiting != nil {
			props["exiting"] = p.Exiting
		}
		out[i] = sandbox.Arrangement{Index: p.Index, Frame: p.LocalFrame, Props: props}
	}
	return out, nil
}

func seriesItem(slot sandbox.Slot) (transitions.Item, error) {
	switch slot.Host {
	case seriesSequence:
		d := propFloat(slot.Props, "durationInFrames", 0)
		if d <= 0 {
			return transitions.Item{}, fmt.Errorf("%s requires a positive durationInFrames", seriesSequence)
		}
		return transitions.Item{
			Kind:             transitions.KindSequence,
			DurationInFrames: int(d),
			Offset:           int(propFloat(slot.Props, "offset", 0)),
		}, nil
	case seriesTransition:
		item := transitions.Item{Kind: transitions.KindTransition}
		switch t := slot.Props["timing"].(type) {
		case transitions.Timing:
			item.Timing = t
		case *transitions.Timing:
			item.Timing = *t
		default:
			return transitions.Item{}, fmt.Errorf("%s requires a timing from linearTiming or springTiming", seriesTransition)
		}
		switch p := slot.Props["presentation"].(type) {
		case transitions.Presentation:
			item.Presentation = p
		case *transitions.Presentation:
			item.Presentation = *p
		default:
			item.Presentation = transitions.Presentation{Name: "fade"}
		}
		return item, nil
	}
	return transitions.Item{}, fmt.Errorf("TransitionSeries children must be %s or %s", seriesSequence, seriesTransition)
}

func bindLinearTiming(s *sandbox.Scope) (goja.Value, error) {
	vm := s.Runtime()
	return vm.ToValue(func(c goja.FunctionCall) goja.Value {
		o := optionsOf(s, c.Argument(0))
		t, err := transitions.LinearTiming(o.integer("durationInFrames", 0), easingOf(s, o.get("easing")))
		if err != nil {
			throw(s, err)
		}
		return vm.ToValue(t)
	}), nil
}

func bindSpringTiming(s *sandbox.Scope) (goja.Value, error) {
	vm := s.Runtime()
	return vm.ToValue(func(c goja.FunctionCall) goja.Value {
		o := optionsOf(s, c.Argument(0))
		t, err := transitions.SpringTiming(
			springConfigOf(o.object("config")),
			o.integer("durationInFrames", 0),
			s.Composition().FPS,
		)
		if err != nil {
			throw(s, err)
		}
		return vm.ToValue(t)
	}), nil
}

// bindPresentation exposes a presentation factory such as slide({direction}).
func bindPresentation(name string) sandbox.BindFunc {
	return func(s *sandbox.Scope) (goja.Value, error) {
		vm := s.Runtime()
		return vm.ToValue(func(c goja.FunctionCall) goja.Value {
			o := optionsOf(s, c.Argument(0))
			p, err := transitions.NewPresentation(name, o.str("direction", ""))
			if err != nil {
				throw(s, err)
			}
			if name == "clockWipe" {
				comp := s.Composition()
				p.Width = o.float("width", float64(comp.Width))
				p.Height = o.float("height", float64(comp.Height))
			}
			return vm.ToValue(p)
		}), nil
	}
}
