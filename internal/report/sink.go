package report

import (
	"rootfind/internal/logger"
	"rootfind/internal/rootfind"
)

type tee []rootfind.Sink

// Tee fans records and outcomes out to every sink, in order.
func Tee(sinks ...rootfind.Sink) rootfind.Sink {
	return tee(sinks)
}

func (t tee) Record(it rootfind.Iter) {
	for _, s := range t {
		s.Record(it)
	}
}

func (t tee) Finish(o rootfind.Outcome) {
	for _, s := range t {
		s.Finish(o)
	}
}

// Log is a sink writing to the structured logger: records at debug level,
// the outcome at info when converged and warn otherwise.
type Log struct {
	Method rootfind.Method
	RunID  string
}

func (l Log) Record(it rootfind.Iter) {
	logger.Debug("iteration", l.attrs("k", it.K, "values", it.Values, "residual", it.Residual)...)
}

func (l Log) Finish(o rootfind.Outcome) {
	args := l.attrs("status", o.Status.String(), "iterations", o.Iterations)
	switch o.Status {
	case rootfind.Converged:
		logger.Info("run converged", append(args, "root", o.Root)...)
	case rootfind.MaxIterations:
		logger.Warn("run hit iteration cap", append(args, "last_estimate", o.Root)...)
	default:
		logger.Warn("run rejected", append(args, "reason", o.Reason.String(), "detail", RejectionMessage(o))...)
	}
}

func (l Log) attrs(kv ...any) []any {
	args := []any{"method", string(l.Method)}
	if l.RunID != "" {
		args = append(args, "run_id", l.RunID)
	}
	return append(args, kv...)
}
