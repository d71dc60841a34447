package motion

import "math"

// EasingFunc maps normalized progress in [0,1] to eased progress.
type EasingFunc func(t float64) float64

// Standard easing curves.
var (
	Linear EasingFunc = func(t float64) float64 { return t }
	Quad   EasingFunc = func(t float64) float64 { return t * t }
	Cubic  EasingFunc = func(t float64) float64 { return t * t * t }
	Sin    EasingFunc = func(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) }
	Circle EasingFunc = func(t float64) float64 { return 1 - math.Sqrt(1-t*t) }
	Exp    EasingFunc = func(t float64) float64 { return math.Pow(2, 10*(t-1)) }
)

// Ease is the default CSS-like ease-in curve.
var Ease = Bezier(0.42, 0, 1, 1)

// Poly returns t^n.
func Poly(n float64) EasingFunc {
	return func(t float64) float64 { return math.Pow(t, n) }
}

// Elastic returns a spring-like overshooting curve.
func Elastic(bounciness float64) EasingFunc {
	p := bounciness * math.Pi
	return func(t float64) float64 {
		return 1 - math.Pow(math.Cos(t*math.Pi/2), 3)*math.Cos(t*p)
	}
}

// Back returns a curve that pulls back slightly before moving forward.
func Back(s float64) EasingFunc {
	return func(t float64) float64 { return t * t * ((s+1)*t - s) }
}

// Bounce is a bouncing curve.
func Bounce(t float64) float64 {
	switch {
	case t < 1/2.75:
		return 7.5625 * t * t
	case t < 2/2.75:
		t -= 1.5 / 2.75
		return 7.5625*t*t + 0.75
	case t < 2.5/2.75:
		t -= 2.25 / 2.75
		return 7.5625*t*t + 0.9375
	}
	t -= 2.625 / 2.75
	return 7.5625*t*t + 0.984375
}

// In runs an easing forwards.
func In(f EasingFunc) EasingFunc { return f }

// Out runs an easing backwards.
func Out(f EasingFunc) EasingFunc {
	return func(t float64) float64 { return 1 - f(1-t) }
}

// InOut makes an easing symmetrical.
func InOut(f EasingFunc) EasingFunc {
	return func(t float64) float64 {
		if t < 0.5 {
			return f(t*2) / 2
		}
		return 1 - f((1-t)*2)/2
	}
}

// Bezier returns a cubic bezier easing with control points (x1,y1) and (x2,y2).
func Bezier(x1, y1, x2, y2 float64) EasingFunc {
	if x1 == y1 && x2 == y2 {
		return Linear
	}
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return bezierAt(solveBezierX(t, x1, x2), y1, y2)
	}
}

func bezierAt(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}

func bezierSlope(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*p1 + 6*u*t*(p2-p1) + 3*t*t*(1-p2)
}

// solveBezierX finds the curve parameter whose x coordinate equals x.
func solveBezierX(x, x1, x2 float64) float64 {
	t := x
	for i := 0; i < 8; i++ {
		slope := bezierSlope(t, x1, x2)
		if math.Abs(slope) < 1e-6 {
			break
		}
		d := bezierAt(t, x1, x2) - x
		if math.Abs(d) < 1e-7 {
			return t
		}
		t -= d / slope
	}

	lo, hi := 0.0, 1.0
	t = x
	for i := 0; i < 40; i++ {
		v := bezierAt(t, x1, x2)
		if math.Abs(v-x) < 1e-7 {
			break
		}
		if v < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return t
}
