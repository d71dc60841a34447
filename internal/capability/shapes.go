package capability

import (
	"github.com/dop251/goja"

	"github.com/GriffinCanCode/animforge/internal/primitives/shapes"
	"github.com/GriffinCanCode/animforge/internal/sandbox"
)

type shapeMaker func(p params) (shapes.Shape, error)

// shapeKinds lists the shape primitives in binding order.
var shapeKinds = []string{"Rect", "Circle", "Triangle", "Star", "Polygon", "Ellipse", "Heart", "Pie"}

var shapeMakers = map[string]shapeMaker{
	"Rect": func(p params) (shapes.Shape, error) {
		return shapes.MakeRect(shapes.RectOptions{
			Width:        p.float("width", 0),
			Height:       p.float("height", 0),
			CornerRadius: p.float("cornerRadius", 0),
		})
	},
	"Circle": func(p params) (shapes.Shape, error) {
		return shapes.MakeCircle(p.float("radius", 0))
	},
	"Triangle": func(p params) (shapes.Shape, error) {
		return shapes.MakeTriangle(p.float("length", 0), shapes.Direction(p.str("direction", string(shapes.Up))))
	},
	"Star": func(p params) (shapes.Shape, error) {
		return shapes.MakeStar(p.integer("points", 5), p.float("innerRadius", 0), p.float("outerRadius", 0))
	},
	"Polygon": func(p params) (shapes.Shape, error) {
		return shapes.MakePolygon(p.integer("points", 0), p.float("radius", 0))
	},
	"Ellipse": func(p params) (shapes.Shape, error) {
		return shapes.MakeEllipse(p.float("rx", 0), p.float("ry", 0))
	},
	"Heart": func(p params) (shapes.Shape, error) {
		return shapes.MakeHeart(p.float("height", 0))
	},
	"Pie": func(p params) (shapes.Shape, error) {
		return shapes.MakePie(shapes.PieOptions{
			Radius:           p.float("radius", 0),
			Progress:         p.float("progress", 0),
			ClosePath:        p.boolean("closePath", true),
			CounterClockwise: p.boolean("counterClockwise", false),
			Rotation:         p.float("rotation", 0),
		})
	},
}

func shapeObject(s *sandbox.Scope, sh shapes.Shape) goja.Value {
	return s.Runtime().ToValue(map[string]any{
		"path":            sh.Path,
		"width":           sh.Width,
		"height":          sh.Height,
		"transformOrigin": sh.TransformOrigin,
	})
}

// bindShapeHost renders a shape component as a node carrying its path.
func bindShapeHost(kind string) sandbox.BindFunc {
	build := shapeMakers[kind]
	return func(s *sandbox.Scope) (goja.Value, error) {
		return s.RegisterHost(&sandbox.Host{
			Name: kind,
			Decorate: func(_ sandbox.RenderContext, props map[string]any) (map[string]any, error) {
				sh, err := build(propMap(props))
				if err != nil {
					return nil, err
				}
				props["path"] = sh.Path
				props["width"] = sh.Width
				props["height"] = sh.Height
				props["transformOrigin"] = sh.TransformOrigin
				return props, nil
			},
		}), nil
	}
}

// bindShapeMaker exposes make<Kind>(options).
func bindShapeMaker(kind string) sandbox.BindFunc {
	build := shapeMakers[kind]
	return func(s *sandbox.Scope) (goja.Value, error) {
		return s.Runtime().ToValue(func(c goja.FunctionCall) goja.Value {
			sh, err := build(optionsOf(s, c.Argument(0)))
			if err != nil {
				throw(s, err)
			}
			return shapeObject(s, sh)
		}), nil
	}
}

func bindRemotionShapes(s *sandbox.Scope) (goja.Value, error) {
	ns := s.Runtime().NewObject()
	for _, kind := range shapeKinds {
		for _, name := range []string{kind, "make" + kind} {
			v, err := s.Capability(name)
			if err != nil {
				return nil, err
			}
			if err := ns.Set(name, v); err != nil {
				return nil, err
			}
		}
	}
	return ns, nil
}
