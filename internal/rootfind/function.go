package rootfind

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"gonum.org/v1/gonum/diff/fd"
)

// DerivStep is the central-difference step used when no analytic derivative exists.
const DerivStep = 1e-8

// ErrInvalidExpression is returned when an expression cannot be parsed or evaluated to a finite number.
var ErrInvalidExpression = errors.New("invalid expression")

// Func is a real function of one real variable.
type Func interface {
	Eval(x float64) (float64, error)
	Deriv(x float64) (float64, error)
}

// Formula is a closed-form function. A nil DF falls back to the central difference.
type Formula struct {
	F  func(x float64) float64
	DF func(x float64) float64
}

func (f Formula) Eval(x float64) (float64, error) {
	return finite("f", x, f.F(x))
}

func (f Formula) Deriv(x float64) (float64, error) {
	if f.DF != nil {
		return finite("f'", x, f.DF(x))
	}
	return centralDiff(f.Eval, x)
}

func finite(name string, x, y float64) (float64, error) {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return math.NaN(), fmt.Errorf("%w: %s is undefined at x=%g", ErrInvalidExpression, name, x)
	}
	return y, nil
}

// Cubic is f(x) = x³ - 9x + 3 with its analytic derivative.
var Cubic = Formula{
	F:  func(x float64) float64 { return x*x*x - 9.0*x + 3.0 },
	DF: func(x float64) float64 { return 3.0*x*x - 9.0 },
}

// CubicPhi is the fixed-point rearrangement x = x³/9 + 1/3 of Cubic.
var CubicPhi = Formula{
	F: func(x float64) float64 { return (x*x*x)/9.0 + 1.0/3.0 },
}

// Expr is an arithmetic expression in the single variable x.
// It is parsed once and is safe for concurrent evaluation.
type Expr struct {
	text string
	expr *govaluate.EvaluableExpression
}

var exprFuncs = map[string]govaluate.ExpressionFunction{
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"exp":  unary(math.Exp),
	"log":  unary(math.Log),
	"sqrt": unary(math.Sqrt),
	"abs":  unary(math.Abs),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow expects 2 arguments, got %d", len(args))
		}
		return math.Pow(toFloat(args[0]), toFloat(args[1])), nil
	},
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return fn(toFloat(args[0])), nil
	}
}

// arithmetic lists the binary operators an expression may use. govaluate
// also accepts bitwise, logical and comparison operators; "^" is XOR there.
var arithmetic = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true, "**": true}

// ParseExpr compiles text such as "x*x*x - 9*x + 3". Powers use "**".
// Only numbers, x, the math functions and arithmetic operators are accepted.
func ParseExpr(text string) (*Expr, error) {
	norm := strings.TrimSpace(text)
	if norm == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(norm, exprFuncs)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, text, err)
	}
	for _, v := range parsed.Vars() {
		if v != "x" {
			return nil, fmt.Errorf("%w: %q: unknown symbol %q", ErrInvalidExpression, text, v)
		}
	}
	if err := checkTokens(parsed.Tokens()); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, text, err)
	}

	return &Expr{text: text, expr: parsed}, nil
}

func checkTokens(tokens []govaluate.ExpressionToken) error {
	for _, tok := range tokens {
		switch tok.Kind {
		case govaluate.NUMERIC, govaluate.VARIABLE, govaluate.FUNCTION,
			govaluate.SEPARATOR, govaluate.CLAUSE, govaluate.CLAUSE_CLOSE:
			continue
		case govaluate.MODIFIER:
			if op, _ := tok.Value.(string); arithmetic[op] {
				continue
			}
		case govaluate.PREFIX:
			if op, _ := tok.Value.(string); op == "-" {
				continue
			}
		}
		return fmt.Errorf("unsupported %s %v", tok.Kind.String(), tok.Value)
	}
	return nil
}

// String returns the source text.
func (e *Expr) String() string { return e.text }

func (e *Expr) Eval(x float64) (y float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			y, err = math.NaN(), fmt.Errorf("%w: %q at x=%g: %v", ErrInvalidExpression, e.text, x, r)
		}
	}()

	v, err := e.expr.Evaluate(map[string]interface{}{"x": x})
	if err != nil {
		return math.NaN(), fmt.Errorf("%w: %q at x=%g: %v", ErrInvalidExpression, e.text, x, err)
	}

	var out float64
	switch t := v.(type) {
	case float64:
		out = t
	case int:
		out = float64(t)
	case int64:
		out = float64(t)
	case string:
		out, err = strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN(), fmt.Errorf("%w: %q at x=%g: %v", ErrInvalidExpression, e.text, x, err)
		}
	default:
		return math.NaN(), fmt.Errorf("%w: %q did not yield a number: %T", ErrInvalidExpression, e.text, v)
	}

	if math.IsNaN(out) || math.IsInf(out, 0) {
		return math.NaN(), fmt.Errorf("%w: %q is undefined at x=%g", ErrInvalidExpression, e.text, x)
	}
	return out, nil
}

func (e *Expr) Deriv(x float64) (float64, error) {
	return centralDiff(e.Eval, x)
}

// centralDiff approximates (f(x+h) - f(x-h)) / 2h, returning the first evaluation error.
func centralDiff(eval func(float64) (float64, error), x float64) (float64, error) {
	var firstErr error
	g := func(x float64) float64 {
		y, err := eval(x)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return y
	}

	d := fd.Derivative(g, x, &fd.Settings{Formula: fd.Central, Step: DerivStep})
	if firstErr != nil {
		return math.NaN(), firstErr
	}
	return d, nil
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
