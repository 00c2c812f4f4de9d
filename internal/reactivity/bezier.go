package reactivity

// Curve is a two-control-point cubic bezier easing mapping normalized
// input progress to normalized output. The implicit endpoints are (0,0)
// and (1,1); X1,Y1,X2,Y2 are the control points.
type Curve struct {
	X1, Y1, X2, Y2 float64
}

// LinearCurve is the identity easing.
var LinearCurve = Curve{X1: 0.25, Y1: 0.25, X2: 0.75, Y2: 0.75}

// valid reports whether the control-point x coordinates keep the curve a
// function of x (required for inversion).
func (c Curve) valid() bool {
	return c.X1 >= 0 && c.X1 <= 1 && c.X2 >= 0 && c.X2 <= 1
}

// polynomial coefficients for one axis, following the standard unit-bezier
// expansion: axis(t) = ((a·t + b)·t + c)·t.
type bezierAxis struct {
	a, b, c float64
}

func axisCoefficients(p1, p2 float64) bezierAxis {
	c := 3 * p1
	b := 3*(p2-p1) - c
	a := 1 - c - b
	return bezierAxis{a: a, b: b, c: c}
}

func (ax bezierAxis) eval(t float64) float64 {
	return ((ax.a*t+ax.b)*t + ax.c) * t
}

func (ax bezierAxis) derivative(t float64) float64 {
	return (3*ax.a*t+2*ax.b)*t + ax.c
}

// Ease evaluates the curve's y at the given input progress x, clamping the
// input to [0,1]. Inversion uses Newton iterations with a bisection
// fallback for flat regions.
func (c Curve) Ease(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	xa := axisCoefficients(c.X1, c.X2)
	ya := axisCoefficients(c.Y1, c.Y2)
	return ya.eval(solveCurveX(xa, x))
}

func solveCurveX(ax bezierAxis, x float64) float64 {
	const epsilon = 1e-6

	// Newton first: converges in a few steps for well-behaved curves.
	t := x
	for i := 0; i < 8; i++ {
		diff := ax.eval(t) - x
		if diff < epsilon && diff > -epsilon {
			return t
		}
		d := ax.derivative(t)
		if d < 1e-6 && d > -1e-6 {
			break
		}
		t -= diff / d
	}

	// Bisection fallback.
	lo, hi := 0.0, 1.0
	t = x
	for hi-lo > epsilon {
		if ax.eval(t) < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return t
}
