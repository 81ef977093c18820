/*
guard.go - Safe arithmetic primitives

PURPOSE:
  Every division and every monetary rounding in the pipeline goes through
  this file. The derivers never produce NaN or Infinity: a statement field
  is always a defined number, even for degenerate inputs (zero revenue,
  missing cost basis, absurd overrides).

SAFE DIVISION:
  SafeDivide returns 0 instead of failing when:
  - either operand is NaN or infinite
  - the denominator is zero or within one float64 epsilon of zero
  - the quotient would exceed the safe-integer magnitude (2^53 - 1)

  A zero result for a degenerate division is a deliberate modeling choice:
  a ratio over a zero base is "nothing", not an error. The validation
  engine is the place that decides whether a zero is suspicious.

ROUNDING:
  Round2 rounds to 2 decimal places, half away from zero, using
  decimal.Decimal so that 0.005 reliably becomes 0.01 regardless of the
  binary representation of the input. All monetary outputs pass through
  Round2; ratios and percentages share the same precision.

SEE ALSO:
  - income.go, workingcap.go, cashflow.go: heavy SafeDivide users
  - validation/checks.go: tolerance policy for comparing rounded values
*/
package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxSafeAmount is the largest magnitude the pipeline considers a usable
// number (2^53 - 1). Quotients beyond it collapse to 0 rather than
// propagating values that lose integer precision.
const MaxSafeAmount = float64(1<<53 - 1)

// float64Epsilon is the machine epsilon for float64. Denominators within
// one epsilon of zero are treated as zero.
const float64Epsilon = 2.220446049250313e-16

// SafeDivide divides numerator by denominator, returning 0 for any input or
// result that is not a finite, safe-magnitude number.
//
//	SafeDivide(100, 20) == 5
//	SafeDivide(100, 0)  == 0
//	SafeDivide(NaN, 5)  == 0
func SafeDivide(numerator, denominator float64) float64 {
	if math.IsNaN(numerator) || math.IsInf(numerator, 0) {
		return 0
	}
	if math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return 0
	}
	if math.Abs(denominator) <= float64Epsilon {
		return 0
	}
	q := numerator / denominator
	if math.IsNaN(q) || math.IsInf(q, 0) || math.Abs(q) > MaxSafeAmount {
		return 0
	}
	return q
}

// Round2 rounds to 2 decimal places, half away from zero. NaN and infinite
// inputs collapse to 0 so rounded fields stay defined numbers.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}
