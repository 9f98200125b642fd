package rootfind

import "math"

// RunSecant iterates on the two most recent estimates, seeded with x0 and x1.
//
// Like Newton, |f(x1)| < tol is tested before a new estimate is computed.
// Equal consecutive function values reject the run as StagnantSecant.
func RunSecant(f Func, x0, x1, tol float64, maxIter int, sink Sink) Outcome {
	return loop{
		method: Secant,
		step: func(int) (step, error) {
			fx0, err := f.Eval(x0)
			if err != nil {
				return step{}, err
			}
			fx1, err := f.Eval(x1)
			if err != nil {
				return step{}, err
			}
			if HasConverged(fx1, tol) {
				return step{next: done, est: x1}, nil
			}
			if fx1 == fx0 {
				return step{next: reject, reason: StagnantSecant, est: x1}, nil
			}

			xNew := x1 - fx1*(x1-x0)/(fx1-fx0)
			dx := math.Abs(xNew - x1)
			s := step{
				rec: &Iter{Values: []float64{x0, x1, fx1, xNew}, Residual: dx},
				est: xNew,
			}
			if HasConverged(dx, tol) {
				s.next, s.onStep = done, true
			}
			x0, x1 = x1, xNew
			return s, nil
		},
	}.run(maxIter, sink)
}
