package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"rootfind/internal/batch"
	"rootfind/internal/config"
	"rootfind/internal/logger"
	"rootfind/internal/metrics"
	"rootfind/internal/rootfind"
)

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run the configured methods and print the iteration log",
		Long: `Run every configured method and write the iteration log.

Without --config the five default runs on f(x) = x^3 - 9x + 3 are used.
The function may be replaced with --expr or --expr-file (first non-blank
line); fixed point runs then also need --phi or --phi-file.

Exit status is 0 when every run converged, 1 when any run hit the
iteration cap or was rejected, and 2 on configuration errors.`,
		Args: cobra.NoArgs,
		RunE: runSolve,
	}

	cmd.Flags().String("config", "", "YAML run file")
	cmd.Flags().String("expr", "", "expression in x, e.g. \"x*x*x - 9*x + 3\"")
	cmd.Flags().String("expr-file", "", "file holding the expression")
	cmd.Flags().String("phi", "", "fixed-point map in x")
	cmd.Flags().String("phi-file", "", "file holding the fixed-point map")
	cmd.Flags().StringSlice("method", nil, "only run these methods")
	cmd.Flags().StringP("out", "o", "", "write the log to this file instead of stdout")
	cmd.Flags().Bool("parallel", false, "run methods concurrently")
	cmd.Flags().String("metrics-file", "", "write Prometheus metrics of the batch to this file")
	return cmd
}

func runSolve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	fns, err := cfg.Function.Resolve()
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	parallel, _ := cmd.Flags().GetBool("parallel")
	reg := prometheus.NewRegistry()
	results, err := batch.Run(cmd.Context(), cfg.Runs, fns, batch.Options{
		Parallel: parallel,
		Metrics:  metrics.New(reg),
	})
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	if path, _ := cmd.Flags().GetString("metrics-file"); path != "" {
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			return &exitError{code: 2, err: err}
		}
	}

	out, _ := cmd.Flags().GetString("out")
	if err := writeReports(cmd.OutOrStdout(), out, results); err != nil {
		return &exitError{code: 2, err: err}
	}

	for _, r := range results {
		logger.Info("run finished", "method", string(r.Spec.Method), "status", r.Outcome.Status.String(), "iterations", r.Outcome.Iterations)
	}
	if !batch.AllConverged(results) {
		return &exitError{code: 1}
	}
	return nil
}

// writeReports writes to path when set, else to stdout. A failed close is an error.
func writeReports(stdout io.Writer, path string, results []batch.Result) (err error) {
	if path == "" {
		return batch.WriteReports(stdout, results)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return batch.WriteReports(f, results)
}

// loadConfig reads --config or the defaults, then applies the function and method flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, other *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
			*other = ""
		}
	}
	override("expr", &cfg.Function.Expr, &cfg.Function.ExprFile)
	override("expr-file", &cfg.Function.ExprFile, &cfg.Function.Expr)
	override("phi", &cfg.Function.Phi, &cfg.Function.PhiFile)
	override("phi-file", &cfg.Function.PhiFile, &cfg.Function.Phi)

	if methods, _ := flags.GetStringSlice("method"); len(methods) > 0 {
		keep := map[rootfind.Method]bool{}
		for _, name := range methods {
			m, err := rootfind.ParseMethod(name)
			if err != nil {
				return nil, err
			}
			keep[m] = true
		}
		var runs []config.RunConfig
		for _, r := range cfg.Runs {
			if m, _ := rootfind.ParseMethod(r.Method); keep[m] {
				runs = append(runs, r)
			}
		}
		cfg.Runs = runs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
