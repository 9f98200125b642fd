package rootfind

import "math"

// RunRegulaFalsi narrows [a, b] using the secant through (a, f(a)) and (b, f(b)).
//
// f(a) and f(b) must differ in sign; otherwise the run is rejected with
// NoSignChange before any iteration. Convergence is |f(c)| < tol.
func RunRegulaFalsi(f Func, a, b, tol float64, maxIter int, sink Sink) Outcome {
	var fa, fb float64
	return loop{
		method: RegulaFalsi,
		init: func() (step, error) {
			var err error
			if fa, err = f.Eval(a); err != nil {
				return step{}, err
			}
			if fb, err = f.Eval(b); err != nil {
				return step{}, err
			}
			if !BracketValid(fa, fb) {
				return step{next: reject, reason: NoSignChange}, nil
			}
			return step{}, nil
		},
		step: func(int) (step, error) {
			c := b - fb*(b-a)/(fb-fa)
			fc, err := f.Eval(c)
			if err != nil {
				return step{}, err
			}

			s := step{
				rec: &Iter{Values: []float64{a, b, c, fc}, Residual: math.Abs(fc)},
				est: c,
			}
			if HasConverged(fc, tol) {
				s.next = done
				return s, nil
			}
			if fa*fc < 0 {
				b, fb = c, fc
			} else {
				a, fa = c, fc
			}
			return s, nil
		},
	}.run(maxIter, sink)
}
