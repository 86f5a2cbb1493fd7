package mocap

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// cubicSpline is a natural cubic spline through strictly increasing knots,
// stored in second-derivative (moment) form. Evaluation outside the knot
// range extends the boundary segment's polynomial rather than clamping, so
// slightly out-of-range queries behave like the capture pipeline's
// extrapolating interpolator.
type cubicSpline struct {
	xs []float64
	ys []float64
	m  []float64 // second derivative at each knot; m[0] = m[n-1] = 0
}

// fitNaturalCubic fits a natural cubic spline through (xs[i], ys[i]). The
// interior second derivatives come from the standard tridiagonal moment
// system; the natural boundary condition pins both end moments to zero.
func fitNaturalCubic(xs, ys []float64) (*cubicSpline, error) {
	n := len(xs)
	if n != len(ys) {
		return nil, fmt.Errorf("spline: %d knots but %d values", n, len(ys))
	}
	if n < 3 {
		return nil, fmt.Errorf("spline: need at least 3 knots, got %d", n)
	}
	for i := 1; i < n; i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("spline: knots must be strictly increasing at index %d", i)
		}
	}

	h := make([]float64, n-1)
	for i := range h {
		h[i] = xs[i+1] - xs[i]
	}

	// Interior system: for i = 1..n-2
	//   h[i-1]/6·m[i-1] + (h[i-1]+h[i])/3·m[i] + h[i]/6·m[i+1]
	//     = (y[i+1]-y[i])/h[i] - (y[i]-y[i-1])/h[i-1]
	k := n - 2
	diag := make([]float64, k)
	lower := make([]float64, k-1)
	upper := make([]float64, k-1)
	rhs := make([]float64, k)
	for i := 1; i <= k; i++ {
		diag[i-1] = (h[i-1] + h[i]) / 3
		if i > 1 {
			lower[i-2] = h[i-1] / 6
		}
		if i < k {
			upper[i-1] = h[i] / 6
		}
		rhs[i-1] = (ys[i+1]-ys[i])/h[i] - (ys[i]-ys[i-1])/h[i-1]
	}

	a := mat.NewTridiag(k, lower, diag, upper)
	b := mat.NewVecDense(k, rhs)
	var sol mat.VecDense
	if err := a.SolveVecTo(&sol, false, b); err != nil {
		return nil, fmt.Errorf("spline: moment system is singular: %w", err)
	}

	m := make([]float64, n)
	for i := 1; i <= k; i++ {
		m[i] = sol.AtVec(i - 1)
	}

	return &cubicSpline{xs: xs, ys: ys, m: m}, nil
}

// evaluate returns the spline value at x. Queries outside [xs[0], xs[n-1]]
// evaluate the nearest boundary segment's cubic polynomial.
func (s *cubicSpline) evaluate(x float64) float64 {
	n := len(s.xs)
	seg := sort.SearchFloat64s(s.xs, x) - 1
	if seg < 0 {
		seg = 0
	}
	if seg > n-2 {
		seg = n - 2
	}

	h := s.xs[seg+1] - s.xs[seg]
	a := s.xs[seg+1] - x
	b := x - s.xs[seg]

	return s.m[seg]*a*a*a/(6*h) +
		s.m[seg+1]*b*b*b/(6*h) +
		(s.ys[seg]/h-s.m[seg]*h/6)*a +
		(s.ys[seg+1]/h-s.m[seg+1]*h/6)*b
}
