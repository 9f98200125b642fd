package report

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rootfind/internal/logger"
	"rootfind/internal/rootfind"
)

func TestTextNewton(t *testing.T) {
	var buf bytes.Buffer
	sink := NewText(&buf, rootfind.Newton)
	rootfind.RunNewton(rootfind.Cubic, 0.5, 1e-5, 50, sink)
	require.NoError(t, sink.Err())

	want := "Newton-Raphson Method\n" +
		"Iter\tx\tf(x)\t|dx|\n" +
		"1\t0.500000\t-1.375000\t0.166667\n" +
		"2\t0.333333\t0.037037\t0.004274\n" +
		"3\t0.337607\t0.000018\t0.000002\n" +
		"k = 3\n" +
		"Root = 0.337609\n\n"
	assert.Equal(t, want, buf.String())
}

func TestTextIterationCountOnlyForStepConvergence(t *testing.T) {
	tests := []struct {
		name   string
		method rootfind.Method
		run    func(rootfind.Sink) rootfind.Outcome
		wantK  bool
	}{
		{"bisection width", rootfind.Bisection, func(s rootfind.Sink) rootfind.Outcome {
			return rootfind.RunBisection(rootfind.Cubic, 0, 1, 1e-5, 50, s)
		}, true},
		{"fixed point step", rootfind.FixedPoint, func(s rootfind.Sink) rootfind.Outcome {
			return rootfind.RunFixedPoint(rootfind.CubicPhi, 0.5, 5e-4, 50, s)
		}, true},
		{"secant step", rootfind.Secant, func(s rootfind.Sink) rootfind.Outcome {
			return rootfind.RunSecant(rootfind.Cubic, 0, 1, 1e-4, 50, s)
		}, true},
		{"regula falsi residual", rootfind.RegulaFalsi, func(s rootfind.Sink) rootfind.Outcome {
			return rootfind.RunRegulaFalsi(rootfind.Cubic, 0, 1, 1e-4, 50, s)
		}, false},
		{"newton residual first", rootfind.Newton, func(s rootfind.Sink) rootfind.Outcome {
			return rootfind.RunNewton(rootfind.Cubic, 0.3376089559653128, 1e-5, 50, s)
		}, false},
		{"narrow bracket", rootfind.Bisection, func(s rootfind.Sink) rootfind.Outcome {
			return rootfind.RunBisection(rootfind.Cubic, 1, 1, 1e-5, 50, s)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			out := tt.run(NewText(&buf, tt.method))
			require.Equal(t, rootfind.Converged, out.Status)
			assert.Equal(t, tt.wantK, out.OnStep)
			assert.Equal(t, tt.wantK, strings.Contains(buf.String(), "k = "))
			assert.Contains(t, buf.String(), "Root = ")
		})
	}
}

func TestTextRegulaFalsiLog(t *testing.T) {
	var buf bytes.Buffer
	rootfind.RunRegulaFalsi(rootfind.Cubic, 0, 1, 1e-4, 50, NewText(&buf, rootfind.RegulaFalsi))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "1\t0.000000\t1.000000\t0.375000\t-0.322266", lines[2])
	assert.Equal(t, "Root = 0.337610", lines[6])
}

func TestTextMaxIterations(t *testing.T) {
	var buf bytes.Buffer
	rootfind.RunBisection(rootfind.Cubic, 0, 1, 1e-5, 2, NewText(&buf, rootfind.Bisection))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Iter\ta\tb\tmid\tf(mid)", lines[1])
	assert.Equal(t, "1\t0.000000\t1.000000\t0.500000\t-1.375000", lines[2])
	assert.Equal(t, "Maximum iterations reached.", lines[4])
	assert.Equal(t, "Last estimate: 0.250000", lines[5])
}

func TestTextRejections(t *testing.T) {
	tests := []struct {
		name string
		out  rootfind.Outcome
		want string
	}{
		{"no sign change", rootfind.Reject(rootfind.RegulaFalsi, rootfind.NoSignChange, nil), "Rejected: the function must change sign on the given interval"},
		{"zero derivative", rootfind.Reject(rootfind.Newton, rootfind.ZeroDerivative, nil), "Rejected: derivative is zero, cannot continue"},
		{"stagnant secant", rootfind.Reject(rootfind.Secant, rootfind.StagnantSecant, nil), "Rejected: f(x1) = f(x0), division by zero"},
		{"invalid expression", rootfind.Reject(rootfind.Newton, rootfind.InvalidExpression, errors.New("bad text")), "Rejected: bad text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewText(&buf, tt.out.Method).Finish(tt.out)
			assert.Contains(t, buf.String(), tt.want+"\n")
		})
	}
}

func TestTextNeverUsesScientificNotation(t *testing.T) {
	var buf bytes.Buffer
	rootfind.RunRegulaFalsi(rootfind.Cubic, 0, 1, 1e-4, 50, NewText(&buf, rootfind.RegulaFalsi))
	assert.NotContains(t, buf.String(), "e-")
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errors.New("disk full")
}

func TestTextStickyError(t *testing.T) {
	w := &failingWriter{}
	sink := NewText(w, rootfind.Secant)
	rootfind.RunSecant(rootfind.Cubic, 0, 1, 1e-4, 50, sink)

	assert.EqualError(t, sink.Err(), "disk full")
	assert.Equal(t, 1, w.n)
}

func TestWriteCSV(t *testing.T) {
	var c rootfind.Collector
	rootfind.RunBisection(rootfind.Cubic, 0, 1, 1e-5, 2, &c)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rootfind.Bisection, c.Iters))
	assert.Equal(t,
		"k,a,b,mid,f(mid),residual\n"+
			"1,0,1,0.5,-1.375,0.5\n"+
			"2,0,0.5,0.25,0.765625,0.25\n",
		buf.String())
}

func TestTee(t *testing.T) {
	var a, b rootfind.Collector
	rootfind.RunNewton(rootfind.Cubic, 0.5, 1e-5, 50, Tee(&a, &b))
	assert.Equal(t, a, b)
	assert.Len(t, a.Iters, 3)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)
	logger.SetVerbose(true)
	defer logger.SetVerbose(false)

	rootfind.RunSecant(rootfind.Cubic, 0, 3, 1e-4, 50, Log{Method: rootfind.Secant, RunID: "r1"})
	assert.Contains(t, buf.String(), "run rejected")
	assert.Contains(t, buf.String(), "reason=stagnant_secant")
	assert.Contains(t, buf.String(), "run_id=r1")

	buf.Reset()
	rootfind.RunNewton(rootfind.Cubic, 0.5, 1e-5, 50, Log{Method: rootfind.Newton})
	assert.Equal(t, 3, strings.Count(buf.String(), "msg=iteration"))
	assert.Contains(t, buf.String(), "run converged")
}
