// Package report renders root-finding runs.
//
// Text writes the iteration log: a method header, a tab-separated column
// header, one fixed-point row per iteration and a closing outcome line.
package report

import (
	"fmt"
	"io"
	"strings"

	"rootfind/internal/rootfind"
)

// Text is a rootfind.Sink writing the iteration log of one run to w.
// Write errors are sticky and reported by Err.
type Text struct {
	w      io.Writer
	method rootfind.Method
	err    error
}

// NewText writes the method and column headers and returns the sink.
func NewText(w io.Writer, m rootfind.Method) *Text {
	t := &Text{w: w, method: m}
	t.printf("%s\n", m.Title())
	t.printf("Iter\t%s\n", strings.Join(m.Columns(), "\t"))
	return t
}

func (t *Text) Record(it rootfind.Iter) {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", it.K)
	for _, v := range it.Values {
		fmt.Fprintf(&b, "\t%.6f", v)
	}
	t.printf("%s\n", b.String())
}

func (t *Text) Finish(o rootfind.Outcome) {
	switch o.Status {
	case rootfind.Converged:
		if o.OnStep {
			t.printf("k = %d\n", o.Iterations)
		}
		t.printf("Root = %.6f\n\n", o.Root)
	case rootfind.MaxIterations:
		t.printf("Maximum iterations reached.\n")
		t.printf("Last estimate: %.6f\n\n", o.Root)
	case rootfind.Rejected:
		t.printf("Rejected: %s\n\n", RejectionMessage(o))
	}
}

// Err returns the first write error.
func (t *Text) Err() error { return t.err }

func (t *Text) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

// RejectionMessage describes why a run was rejected.
func RejectionMessage(o rootfind.Outcome) string {
	switch o.Reason {
	case rootfind.NoSignChange:
		return "the function must change sign on the given interval"
	case rootfind.ZeroDerivative:
		return "derivative is zero, cannot continue"
	case rootfind.StagnantSecant:
		return "f(x1) = f(x0), division by zero"
	case rootfind.InvalidExpression:
		if o.Err != nil {
			return o.Err.Error()
		}
		return "invalid expression"
	}
	return o.Reason.String()
}
