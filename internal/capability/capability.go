package capability

import (
	"sync"

	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

// Version identifies the default capability surface. Bump it whenever a
// name is added, removed or reordered.
const Version = "1"

// Kind describes what sort of value a capability is.
type Kind string

const (
	KindNamespace Kind = "namespace"
	KindComponent Kind = "component"
	KindHook      Kind = "hook"
	KindFunction  Kind = "function"
)

// Info describes one capability of the default table.
type Info struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Position int    `json:"position"`
}

type entry struct {
	name string
	kind Kind
	bind sandbox.BindFunc
}

func entries() []entry {
	list := []entry{
		{"React", KindNamespace, bindReact},
		{"Remotion", KindNamespace, bindRemotion},
		{"RemotionShapes", KindNamespace, bindRemotionShapes},
		{"Lottie", KindComponent, bindLottie},
		{"ThreeCanvas", KindComponent, bindThreeCanvas},
		{"THREE", KindNamespace, bindThree},
		{"AbsoluteFill", KindComponent, bindAbsoluteFill},
		{"interpolate", KindFunction, bindInterpolate},
		{"useCurrentFrame", KindHook, bindUseCurrentFrame},
		{"useVideoConfig", KindHook, bindUseVideoConfig},
		{"spring", KindFunction, bindSpring},
		{"Sequence", KindComponent, bindSequence},
		{"Img", KindComponent, bindImg},
		{"useState", KindHook, bindUseState},
		{"useEffect", KindHook, bindUseEffect},
		{"useMemo", KindHook, bindUseMemo},
		{"useRef", KindHook, bindUseRef},
	}
	for _, kind := range shapeKinds {
		list = append(list, entry{kind, KindComponent, bindShapeHost(kind)})
	}
	for _, kind := range shapeKinds {
		list = append(list, entry{"make" + kind, KindFunction, bindShapeMaker(kind)})
	}
	list = append(list,
		entry{"TransitionSeries", KindComponent, bindTransitionSeries},
		entry{"linearTiming", KindFunction, bindLinearTiming},
		entry{"springTiming", KindFunction, bindSpringTiming},
	)
	for _, name := range []string{"fade", "slide", "wipe", "flip", "clockWipe"} {
		list = append(list, entry{name, KindFunction, bindPresentation(name)})
	}
	return append(list,
		entry{"Easing", KindNamespace, bindEasing},
		entry{"useCallback", KindHook, bindUseCallback},
	)
}

var (
	defaultOnce  sync.Once
	defaultTable *sandbox.Table
)

// Default returns the process-wide capability table. It is built once and
// never mutated.
func Default() *sandbox.Table {
	defaultOnce.Do(func() {
		list := entries()
		caps := make([]sandbox.Capability, len(list))
		for i, e := range list {
			caps[i] = sandbox.Capability{Name: e.name, Value: e.bind}
		}
		defaultTable = sandbox.MustTable(Version, caps...)
	})
	return defaultTable
}

// Catalog describes the default table in binding order.
func Catalog() []Info {
	list := entries()
	out := make([]Info, len(list))
	for i, e := range list {
		out[i] = Info{Name: e.name, Kind: e.kind, Position: i}
	}
	return out
}
