// Package batch runs a list of configured methods and collects their reports.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"rootfind/internal/config"
	"rootfind/internal/metrics"
	"rootfind/internal/report"
	"rootfind/internal/rootfind"
)

// Options controls how a batch executes.
type Options struct {
	// Parallel runs every method in its own goroutine. Reports keep config order.
	Parallel bool
	// Metrics, when set, records every run.
	Metrics *metrics.Metrics
}

// Result is one finished run.
type Result struct {
	Spec    rootfind.Spec
	Outcome rootfind.Outcome
	Iters   []rootfind.Iter
	Report  []byte
}

// Run executes runs against fns. It fails only for a run that cannot be
// converted to a valid spec or a cancelled context; numeric failures are
// outcomes.
func Run(ctx context.Context, runs []config.RunConfig, fns config.Functions, opts Options) ([]Result, error) {
	specs := make([]rootfind.Spec, len(runs))
	for i, r := range runs {
		spec, err := r.Spec()
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		specs[i] = spec
	}

	results := make([]Result, len(specs))
	if !opts.Parallel {
		for i, spec := range specs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := runOne(spec, fns, opts)
			if err != nil {
				return nil, fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
		}
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := runOne(spec, fns, opts)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runOne(spec rootfind.Spec, fns config.Functions, opts Options) (Result, error) {
	var (
		buf bytes.Buffer
		col rootfind.Collector
	)
	sinks := []rootfind.Sink{report.NewText(&buf, spec.Method), &col, report.Log{Method: spec.Method}}
	if opts.Metrics != nil {
		sinks = append(sinks, opts.Metrics.Sink(spec.Method))
	}
	sink := report.Tee(sinks...)

	fErr := fns.FErr
	if spec.Method == rootfind.FixedPoint {
		fErr = fns.PhiErr
	}

	var out rootfind.Outcome
	if fErr != nil {
		out = rootfind.Reject(spec.Method, rootfind.InvalidExpression, fErr)
		sink.Finish(out)
	} else {
		var err error
		if out, err = rootfind.Solve(fns.F, fns.Phi, spec, sink); err != nil {
			return Result{}, err
		}
	}

	return Result{Spec: spec, Outcome: out, Iters: col.Iters, Report: buf.Bytes()}, nil
}

// WriteReports writes every report in order.
func WriteReports(w io.Writer, results []Result) error {
	for _, r := range results {
		if _, err := w.Write(r.Report); err != nil {
			return err
		}
	}
	return nil
}

// AllConverged reports whether every run converged.
func AllConverged(results []Result) bool {
	for _, r := range results {
		if r.Outcome.Status != rootfind.Converged {
			return false
		}
	}
	return true
}
