package shapes

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Shape is the outcome of a make* function: an SVG path and its bounding box.
type Shape struct {
	Path            string  `json:"path"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	TransformOrigin string  `json:"transformOrigin"`
}

func newShape(p *path, w, h float64) Shape {
	return Shape{
		Path:            p.String(),
		Width:           w,
		Height:          h,
		TransformOrigin: num(w/2) + " " + num(h/2),
	}
}

// RectOptions configures MakeRect.
type RectOptions struct {
	Width        float64
	Height       float64
	CornerRadius float64
}

// MakeRect builds an axis aligned rectangle, optionally with rounded corners.
func MakeRect(o RectOptions) (Shape, error) {
	if o.Width < 0 || o.Height < 0 {
		return Shape{}, fmt.Errorf("rect dimensions must not be negative")
	}
	w, h := o.Width, o.Height
	r := math.Max(0, math.Min(o.CornerRadius, math.Min(w, h)/2))

	p := &path{}
	if r == 0 {
		p.move(0, 0).line(w, 0).line(w, h).line(0, h).close()
		return newShape(p, w, h), nil
	}
	p.move(r, 0).
		line(w-r, 0).arc(r, r, false, true, w, r).
		line(w, h-r).arc(r, r, false, true, w-r, h).
		line(r, h).arc(r, r, false, true, 0, h-r).
		line(0, r).arc(r, r, false, true, r, 0).
		close()
	return newShape(p, w, h), nil
}

// MakeCircle builds a circle with the given radius.
func MakeCircle(radius float64) (Shape, error) {
	return MakeEllipse(radius, radius)
}

// MakeEllipse builds an ellipse with radii rx and ry.
func MakeEllipse(rx, ry float64) (Shape, error) {
	if rx < 0 || ry < 0 {
		return Shape{}, fmt.Errorf("radius must not be negative")
	}
	p := &path{}
	p.move(0, ry).
		arcRel(rx, ry, true, false, 2*rx, 0).
		arcRel(rx, ry, true, false, -2*rx, 0).
		close()
	return newShape(p, 2*rx, 2*ry), nil
}

// Direction is the way a triangle points.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// MakeTriangle builds an equilateral triangle with edge length pointing in direction.
func MakeTriangle(length float64, direction Direction) (Shape, error) {
	if length < 0 {
		return Shape{}, fmt.Errorf("triangle length must not be negative")
	}
	h := length * math.Sqrt(3) / 2
	p := &path{}
	switch direction {
	case Up, "":
		p.move(length/2, 0).line(length, h).line(0, h).close()
		return newShape(p, length, h), nil
	case Down:
		p.move(0, 0).line(length, 0).line(length/2, h).close()
		return newShape(p, length, h), nil
	case Left:
		p.move(0, length/2).line(h, 0).line(h, length).close()
		return newShape(p, h, length), nil
	case Right:
		p.move(0, 0).line(h, length/2).line(0, length).close()
		return newShape(p, h, length), nil
	}
	return Shape{}, fmt.Errorf("unknown triangle direction %q", direction)
}

// MakeStar builds a star with the given number of points.
func MakeStar(points int, innerRadius, outerRadius float64) (Shape, error) {
	if points < 3 {
		return Shape{}, fmt.Errorf("a star needs at least 3 points, got %d", points)
	}
	if innerRadius < 0 || outerRadius <= 0 {
		return Shape{}, fmt.Errorf("star radii must be positive")
	}
	p := &path{}
	for i := 0; i < points*2; i++ {
		r := outerRadius
		if i%2 == 1 {
			r = innerRadius
		}
		angle := -math.Pi/2 + float64(i)*math.Pi/float64(points)
		x := outerRadius + r*math.Cos(angle)
		y := outerRadius + r*math.Sin(angle)
		if i == 0 {
			p.move(x, y)
		} else {
			p.line(x, y)
		}
	}
	p.close()
	return newShape(p, 2*outerRadius, 2*outerRadius), nil
}

// MakePolygon builds a regular polygon.
func MakePolygon(points int, radius float64) (Shape, error) {
	if points < 3 {
		return Shape{}, fmt.Errorf("a polygon needs at least 3 points, got %d", points)
	}
	if radius <= 0 {
		return Shape{}, fmt.Errorf("polygon radius must be positive")
	}
	p := &path{}
	for i := 0; i < points; i++ {
		angle := -math.Pi/2 + float64(i)*2*math.Pi/float64(points)
		x := radius + radius*math.Cos(angle)
		y := radius + radius*math.Sin(angle)
		if i == 0 {
			p.move(x, y)
		} else {
			p.line(x, y)
		}
	}
	p.close()
	return newShape(p, 2*radius, 2*radius), nil
}

// MakeHeart builds a heart fitting a square of the given height.
func MakeHeart(height float64) (Shape, error) {
	if height <= 0 {
		return Shape{}, fmt.Errorf("heart height must be positive")
	}
	s := height
	p := &path{}
	p.move(0.5*s, s).
		cubic(0.15*s, 0.75*s, 0, 0.55*s, 0, 0.32*s).
		cubic(0, 0.12*s, 0.15*s, 0, 0.3*s, 0).
		cubic(0.4*s, 0, 0.47*s, 0.06*s, 0.5*s, 0.15*s).
		cubic(0.53*s, 0.06*s, 0.6*s, 0, 0.7*s, 0).
		cubic(0.85*s, 0, s, 0.12*s, s, 0.32*s).
		cubic(s, 0.55*s, 0.85*s, 0.75*s, 0.5*s, s).
		close()
	return newShape(p, s, s), nil
}

// PieOptions configures MakePie.
type PieOptions struct {
	Radius           float64
	Progress         float64
	ClosePath        bool
	CounterClockwise bool
	Rotation         float64 // degrees, 0 starts at twelve o'clock
}

// MakePie builds a circle segment covering progress (0..1) of a full turn.
func MakePie(o PieOptions) (Shape, error) {
	if o.Radius <= 0 {
		return Shape{}, fmt.Errorf("pie radius must be positive")
	}
	r := o.Radius
	progress := math.Max(0, math.Min(1, o.Progress))
	if progress >= 1 {
		return MakeCircle(r)
	}

	start := (o.Rotation - 90) * math.Pi / 180
	sweep := progress * 2 * math.Pi
	if o.CounterClockwise {
		sweep = -sweep
	}
	sx, sy := r+r*math.Cos(start), r+r*math.Sin(start)
	ex, ey := r+r*math.Cos(start+sweep), r+r*math.Sin(start+sweep)

	p := &path{}
	if o.ClosePath {
		p.move(r, r).line(sx, sy)
	} else {
		p.move(sx, sy)
	}
	if progress > 0 {
		p.arc(r, r, progress > 0.5, !o.CounterClockwise, ex, ey)
	}
	if o.ClosePath {
		p.close()
	}
	return newShape(p, 2*r, 2*r), nil
}

type path struct {
	sb strings.Builder
}

func (p *path) cmd(c string, args ...string) *path {
	if p.sb.Len() > 0 {
		p.sb.WriteByte(' ')
	}
	p.sb.WriteString(c)
	for _, a := range args {
		p.sb.WriteByte(' ')
		p.sb.WriteString(a)
	}
	return p
}

func (p *path) move(x, y float64) *path { return p.cmd("M", num(x), num(y)) }
func (p *path) line(x, y float64) *path { return p.cmd("L", num(x), num(y)) }
func (p *path) close() *path { return p.cmd("Z") }

func (p *path) cubic(x1, y1, x2, y2, x, y float64) *path {
	return p.cmd("C", num(x1), num(y1), num(x2), num(y2), num(x), num(y))
}

func (p *path) arc(rx, ry float64, large, sweep bool, x, y float64) *path {
	return p.cmd("A", num(rx), num(ry), "0", flag(large), flag(sweep), num(x), num(y))
}

func (p *path) arcRel(rx, ry float64, large, sweep bool, dx, dy float64) *path {
	return p.cmd("a", num(rx), num(ry), "0", flag(large), flag(sweep), num(dx), num(dy))
}

func (p *path) String() string { return p.sb.String() }

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
