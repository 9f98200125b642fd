package rootfind

import "math"

// Stopping rules shared by every method.

// BracketValid reports a strict sign change between fa and fb.
func BracketValid(fa, fb float64) bool {
	return fa*fb < 0
}

// HasConverged reports |residual| < tol.
func HasConverged(residual, tol float64) bool {
	return math.Abs(residual) < tol
}

// WidthWithin reports |width| <= tol. Bisection stops on bracket width, inclusively.
func WidthWithin(width, tol float64) bool {
	return math.Abs(width) <= tol
}

// BudgetExceeded reports whether k completed iterations exhaust maxIter.
func BudgetExceeded(k, maxIter int) bool {
	return k >= maxIter
}
