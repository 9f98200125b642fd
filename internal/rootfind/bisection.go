package rootfind

import "math"

// RunBisection halves [a, b] until its width is within tol or maxIter steps ran.
//
// The sign change between f(a) and f(b) is assumed, not checked. A bracket
// already within tol converges at a without iterating.
func RunBisection(f Func, a, b, tol float64, maxIter int, sink Sink) Outcome {
	return loop{
		method: Bisection,
		init: func() (step, error) {
			if WidthWithin(b-a, tol) {
				return step{next: done, est: a}, nil
			}
			return step{}, nil
		},
		step: func(int) (step, error) {
			fa, err := f.Eval(a)
			if err != nil {
				return step{}, err
			}
			mid := (a + b) / 2
			fmid, err := f.Eval(mid)
			if err != nil {
				return step{}, err
			}

			rec := &Iter{Values: []float64{a, b, mid, fmid}}
			if fa*fmid < 0 {
				b = mid
			} else {
				a = mid
			}
			rec.Residual = math.Abs(b - a)

			s := step{rec: rec, est: mid}
			if WidthWithin(b-a, tol) {
				s.next, s.onStep = done, true
			}
			return s, nil
		},
	}.run(maxIter, sink)
}
