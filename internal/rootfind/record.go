package rootfind

import (
	"fmt"
	"strings"
)

// Method identifies one of the root-finding engines.
type Method string

const (
	Bisection   Method = "bisection"
	FixedPoint  Method = "fixed_point"
	Newton      Method = "newton"
	Secant      Method = "secant"
	RegulaFalsi Method = "regula_falsi"
)

// Methods lists every engine in the order the report prints them by default.
var Methods = []Method{Bisection, FixedPoint, Newton, Secant, RegulaFalsi}

// ParseMethod accepts the identifiers above, case-insensitively, with '-' for '_'.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown method %q", s)
}

// Title is the human-readable method name.
func (m Method) Title() string {
	switch m {
	case Bisection:
		return "Bisection Method"
	case FixedPoint:
		return "Linear Iterative Method (Fixed Point)"
	case Newton:
		return "Newton-Raphson Method"
	case Secant:
		return "Secant Method"
	case RegulaFalsi:
		return "Regula Falsi Method (False Position)"
	}
	return string(m)
}

// Columns names the entries of Iter.Values for the method.
func (m Method) Columns() []string {
	switch m {
	case Bisection:
		return []string{"a", "b", "mid", "f(mid)"}
	case FixedPoint:
		return []string{"x_k", "x_k+1", "|x_k+1 - x_k|"}
	case Newton:
		return []string{"x", "f(x)", "|dx|"}
	case Secant:
		return []string{"x0", "x1", "f(x1)", "x_new"}
	case RegulaFalsi:
		return []string{"a", "b", "c", "f(c)"}
	}
	return nil
}

// Iter is one step of a method.
type Iter struct {
	K        int       `json:"k"`
	Values   []float64 `json:"values"`
	Residual float64   `json:"residual"`
}

// Status tags an Outcome.
type Status int

const (
	Converged Status = iota + 1
	MaxIterations
	Rejected
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterations:
		return "max_iterations"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Reason explains a Rejected outcome.
type Reason int

const (
	NoReason Reason = iota
	NoSignChange
	ZeroDerivative
	StagnantSecant
	InvalidExpression
)

func (r Reason) String() string {
	switch r {
	case NoSignChange:
		return "no_sign_change"
	case ZeroDerivative:
		return "zero_derivative"
	case StagnantSecant:
		return "stagnant_secant"
	case InvalidExpression:
		return "invalid_expression"
	}
	return ""
}

func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Outcome is the final result of one run.
//
// Root is the converged root for Converged and the last estimate for
// MaxIterations. Iterations counts the records emitted.
type Outcome struct {
	Method     Method  `json:"method"`
	Status     Status  `json:"status"`
	Root       float64 `json:"root"`
	Iterations int     `json:"iterations"`
	// OnStep is set when convergence was decided by the step size or bracket
	// width of the last recorded iteration rather than by |f|.
	OnStep bool   `json:"on_step,omitempty"`
	Reason Reason `json:"reason,omitempty"`
	Err    error  `json:"-"`
}

func (o Outcome) String() string {
	switch o.Status {
	case Converged:
		return fmt.Sprintf("%s: converged to %.6f in %d iterations", o.Method, o.Root, o.Iterations)
	case MaxIterations:
		return fmt.Sprintf("%s: max iterations (%d) reached, last estimate %.6f", o.Method, o.Iterations, o.Root)
	case Rejected:
		if o.Err != nil {
			return fmt.Sprintf("%s: rejected (%s): %v", o.Method, o.Reason, o.Err)
		}
		return fmt.Sprintf("%s: rejected (%s)", o.Method, o.Reason)
	}
	return fmt.Sprintf("%s: no outcome", o.Method)
}

// Reject builds a Rejected outcome for a run that could not start.
func Reject(m Method, reason Reason, err error) Outcome {
	return Outcome{Method: m, Status: Rejected, Reason: reason, Err: err}
}

// Sink receives the records of a run in order, then its outcome exactly once.
type Sink interface {
	Record(it Iter)
	Finish(o Outcome)
}

// Collector is a Sink that keeps everything in memory.
type Collector struct {
	Iters   []Iter
	Outcome Outcome
	Done    bool
}

func (c *Collector) Record(it Iter) { c.Iters = append(c.Iters, it) }

func (c *Collector) Finish(o Outcome) {
	c.Outcome = o
	c.Done = true
}

type discard struct{}

func (discard) Record(Iter)    {}
func (discard) Finish(Outcome) {}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}
