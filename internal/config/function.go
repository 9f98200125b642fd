package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"rootfind/internal/rootfind"
)

// Functions holds the resolved f and fixed-point map. Expression parse
// failures are kept in FErr and PhiErr so that only the runs depending on
// the broken expression are rejected.
type Functions struct {
	F      rootfind.Func
	Phi    rootfind.Func
	FErr   error
	PhiErr error
}

// Custom reports whether f comes from expression text rather than the built-in cubic.
func (f FunctionConfig) Custom() bool {
	return f.Expr != "" || f.ExprFile != ""
}

// Resolve builds the functions. The error is non-nil only when a file cannot be read.
func (f FunctionConfig) Resolve() (Functions, error) {
	var out Functions

	var err error
	if !f.Custom() {
		out.F = rootfind.Cubic
		out.Phi = rootfind.CubicPhi
	} else if out.F, out.FErr, err = build(f.Expr, f.ExprFile); err != nil {
		return out, err
	}

	if f.Phi != "" || f.PhiFile != "" {
		if out.Phi, out.PhiErr, err = build(f.Phi, f.PhiFile); err != nil {
			return out, err
		}
	}
	return out, nil
}

// build parses text, or the expression read from path when set. It returns
// either the function, an ErrInvalidExpression parse error, or a read error.
func build(text, path string) (rootfind.Func, error, error) {
	if path != "" {
		var err error
		if text, err = ReadExprFile(path); err != nil {
			if errors.Is(err, rootfind.ErrInvalidExpression) {
				return nil, err, nil
			}
			return nil, nil, err
		}
	}

	e, err := rootfind.ParseExpr(text)
	if err != nil {
		// a nil interface, not a typed nil *Expr
		return nil, err, nil
	}
	return e, nil, nil
}

// ReadExprFile returns the first non-blank line of path.
func ReadExprFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read expression file: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: %s is empty", rootfind.ErrInvalidExpression, path)
}
