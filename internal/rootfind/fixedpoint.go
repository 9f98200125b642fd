package rootfind

import "math"

// RunFixedPoint iterates x = phi(x) from x0 until successive estimates differ by less than tol.
//
// Convergence needs |phi'(x)| < 1 near the fixed point. Nothing guards
// against divergence other than maxIter.
func RunFixedPoint(phi Func, x0, tol float64, maxIter int, sink Sink) Outcome {
	return loop{
		method: FixedPoint,
		step: func(int) (step, error) {
			x1, err := phi.Eval(x0)
			if err != nil {
				return step{}, err
			}
			dx := math.Abs(x1 - x0)

			s := step{
				rec: &Iter{Values: []float64{x0, x1, dx}, Residual: dx},
				est: x1,
			}
			if HasConverged(dx, tol) {
				s.next, s.onStep = done, true
			}
			x0 = x1
			return s, nil
		},
	}.run(maxIter, sink)
}
