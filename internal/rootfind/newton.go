package rootfind

import "math"

// RunNewton applies x = x - f(x)/f'(x) starting at x0.
//
// Each iteration first accepts x when |f(x)| < tol, then rejects a zero
// derivative, then accepts the new estimate when the step is below tol.
func RunNewton(f Func, x0, tol float64, maxIter int, sink Sink) Outcome {
	return loop{
		method: Newton,
		step: func(int) (step, error) {
			fx, err := f.Eval(x0)
			if err != nil {
				return step{}, err
			}
			if HasConverged(fx, tol) {
				return step{next: done, est: x0}, nil
			}
			dfx, err := f.Deriv(x0)
			if err != nil {
				return step{}, err
			}
			if dfx == 0 {
				return step{next: reject, reason: ZeroDerivative, est: x0}, nil
			}

			x1 := x0 - fx/dfx
			dx := math.Abs(x1 - x0)
			s := step{
				rec: &Iter{Values: []float64{x0, fx, dx}, Residual: dx},
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
