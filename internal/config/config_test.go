package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rootfind/internal/rootfind"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Runs, 5)

	for i, m := range rootfind.Methods {
		spec, err := cfg.Runs[i].Spec()
		require.NoError(t, err)
		assert.Equal(t, m, spec.Method)
		assert.Equal(t, 50, spec.MaxIter)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
function:
  expr: "x*x*x - 9*x + 3"
  phi: "x*x*x/9 + 1/3"
runs:
  - method: newton
    x0: 0.5
    tol: 1e-5
    max_iter: 50
  - method: regula-falsi
    a: 0
    b: 1
    tol: 0.0001
    max_iter: 20
`))
	require.NoError(t, err)
	require.Len(t, cfg.Runs, 2)

	spec, err := cfg.Runs[1].Spec()
	require.NoError(t, err)
	assert.Equal(t, rootfind.Spec{Method: rootfind.RegulaFalsi, A: 0, B: 1, Tol: 0.0001, MaxIter: 20}, spec)
	assert.Equal(t, 1e-5, cfg.Runs[0].Tol)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "runs:\n  - method: newton\n    tol: 1e-5\n    max_iter: 5\n    guess: 1\n",
			want: "field guess not found",
		},
		{
			name: "no runs",
			yaml: "function:\n  expr: x\n",
			want: "Config.Runs",
		},
		{
			name: "unknown method",
			yaml: "runs:\n  - method: brent\n    tol: 1e-5\n    max_iter: 5\n",
			want: `"method"`,
		},
		{
			name: "non-positive tolerance",
			yaml: "runs:\n  - method: newton\n    tol: 0\n    max_iter: 5\n",
			want: "Config.Runs[0].Tol",
		},
		{
			name: "zero iterations",
			yaml: "runs:\n  - method: newton\n    tol: 1e-5\n    max_iter: 0\n",
			want: "Config.Runs[0].MaxIter",
		},
		{
			name: "expr and expr_file",
			yaml: "function:\n  expr: x\n  expr_file: f.txt\nruns:\n  - method: newton\n    tol: 1e-5\n    max_iter: 5\n",
			want: "Config.Function.Expr",
		},
		{
			name: "custom expression fixed point without phi",
			yaml: "function:\n  expr: x - 1\nruns:\n  - method: fixed_point\n    tol: 1e-5\n    max_iter: 5\n",
			want: "needs phi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	ve := NewValidationError("config")
	ve.AddError("first")
	assert.Equal(t, "validation error for config: first", ve.Error())
	ve.AddError("second")
	assert.Equal(t, "validation errors for config: first; second", ve.Error())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runs:\n  - method: secant\n    a: 0\n    b: 1\n    tol: 1e-4\n    max_iter: 50\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secant", cfg.Runs[0].Method)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveBuiltin(t *testing.T) {
	fns, err := FunctionConfig{}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, rootfind.Cubic.F(2), mustEval(t, fns.F, 2))
	assert.Equal(t, rootfind.CubicPhi.F(2), mustEval(t, fns.Phi, 2))
	assert.NoError(t, fns.FErr)
	assert.NoError(t, fns.PhiErr)
}

func TestResolveExprFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n  x*x - 4  \nignored\n"), 0o600))

	fns, err := FunctionConfig{ExprFile: path}.Resolve()
	require.NoError(t, err)
	require.NoError(t, fns.FErr)
	assert.Equal(t, 0.0, mustEval(t, fns.F, 2))
	assert.Nil(t, fns.Phi)
}

func TestResolveKeepsParseErrors(t *testing.T) {
	fns, err := FunctionConfig{Expr: "(x*x", Phi: "x / 2"}.Resolve()
	require.NoError(t, err)
	assert.ErrorIs(t, fns.FErr, rootfind.ErrInvalidExpression)
	assert.Nil(t, fns.F)
	require.NoError(t, fns.PhiErr)
	assert.Equal(t, 1.0, mustEval(t, fns.Phi, 2))
}

func TestResolveEmptyFileIsInvalidExpression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("  \n\n"), 0o600))

	fns, err := FunctionConfig{ExprFile: path}.Resolve()
	require.NoError(t, err)
	assert.ErrorIs(t, fns.FErr, rootfind.ErrInvalidExpression)
}

func TestResolveMissingFile(t *testing.T) {
	_, err := FunctionConfig{ExprFile: filepath.Join(t.TempDir(), "nope.txt")}.Resolve()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func mustEval(t *testing.T, f rootfind.Func, x float64) float64 {
	t.Helper()
	require.NotNil(t, f)
	y, err := f.Eval(x)
	require.NoError(t, err)
	return y
}
