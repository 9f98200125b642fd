package rootfind

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidSpec is returned by Solve for a search spec that breaks its invariants.
	ErrInvalidSpec = errors.New("invalid search spec")
	// ErrMissingPhi is returned by Solve for a fixed-point run without an iteration map.
	ErrMissingPhi = errors.New("fixed point iteration requires phi")
)

// Spec configures one run.
//
// A and B are the bracket for Bisection and RegulaFalsi and the two seeds
// x0, x1 for Secant. X0 is the initial guess for Newton and FixedPoint.
type Spec struct {
	Method  Method
	A, B    float64
	X0      float64
	Tol     float64
	MaxIter int
}

// Validate checks tol > 0, MaxIter >= 1 and a known method.
func (s Spec) Validate() error {
	if _, err := ParseMethod(string(s.Method)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if !(s.Tol > 0) || math.IsInf(s.Tol, 0) {
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrInvalidSpec, s.Tol)
	}
	if s.MaxIter < 1 {
		return fmt.Errorf("%w: max iterations must be at least 1, got %d", ErrInvalidSpec, s.MaxIter)
	}
	return nil
}

// Solve runs the method named by spec against f, or phi for FixedPoint.
// The returned error is non-nil only when spec is invalid; every numeric
// failure is reported through the Outcome, which is also sent to sink.
func Solve(f, phi Func, spec Spec, sink Sink) (Outcome, error) {
	if err := spec.Validate(); err != nil {
		return Outcome{}, err
	}
	if sink == nil {
		sink = Discard
	}

	switch spec.Method {
	case Bisection:
		return RunBisection(f, spec.A, spec.B, spec.Tol, spec.MaxIter, sink), nil
	case FixedPoint:
		if phi == nil {
			return Outcome{}, ErrMissingPhi
		}
		return RunFixedPoint(phi, spec.X0, spec.Tol, spec.MaxIter, sink), nil
	case Newton:
		return RunNewton(f, spec.X0, spec.Tol, spec.MaxIter, sink), nil
	case Secant:
		return RunSecant(f, spec.A, spec.B, spec.Tol, spec.MaxIter, sink), nil
	default:
		return RunRegulaFalsi(f, spec.A, spec.B, spec.Tol, spec.MaxIter, sink), nil
	}
}

type verdict int

const (
	proceed verdict = iota
	done
	reject
)

// step is what a single iteration hands back to the loop.
type step struct {
	rec    *Iter
	next   verdict
	est    float64
	onStep bool
	reason Reason
}

func (s step) outcome() Outcome {
	if s.next == reject {
		return Outcome{Status: Rejected, Reason: s.reason}
	}
	return Outcome{Status: Converged, Root: s.est, OnStep: s.onStep}
}

// loop is the iteration driver shared by all methods. Method state lives in
// the closures; init runs entry checks and may end the run before iterating.
type loop struct {
	method Method
	init   func() (step, error)
	step   func(k int) (step, error)
}

func (l loop) run(maxIter int, sink Sink) Outcome {
	n := 0
	finish := func(o Outcome) Outcome {
		o.Method = l.method
		o.Iterations = n
		sink.Finish(o)
		return o
	}

	if l.init != nil {
		s, err := l.init()
		if err != nil {
			return finish(Reject(l.method, InvalidExpression, err))
		}
		if s.next != proceed {
			return finish(s.outcome())
		}
	}

	last := math.NaN()
	for k := 1; !BudgetExceeded(k-1, maxIter); k++ {
		s, err := l.step(k)
		if err != nil {
			return finish(Reject(l.method, InvalidExpression, err))
		}
		if s.rec != nil {
			s.rec.K = k
			n++
			sink.Record(*s.rec)
		}
		last = s.est
		if s.next != proceed {
			return finish(s.outcome())
		}
	}

	return finish(Outcome{Status: MaxIterations, Root: last})
}
