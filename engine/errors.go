/*
errors.go - Centralized error types for the calculation pipeline

PURPOSE:
  All pipeline error types in one place. The engine distinguishes two
  error classes:

  1. Fatal input errors - negative revenue, out-of-range margin, unknown
     override fields. These are collected across the WHOLE input batch
     and raised once, before any computation, so partial results are
     never produced for an invalid batch.

  2. Numeric edge cases - division by zero, NaN, overflow. These are
     never fatal: guard.go absorbs them and downstream statements always
     contain defined numbers.

  Consistency findings (validation package) are data, never errors.

USAGE:
  _, err := orch.ProcessPeriods(inputs, engine.PeriodMonthly)
  var batchErr *engine.BatchValidationError
  if errors.As(err, &batchErr) {
      for _, p := range batchErr.Problems { ... }
  }

SEE ALSO:
  - orchestrator.go: batch validation before computation
  - validation/: findings-as-data
*/
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmptyBatch is returned when ProcessPeriods receives no periods.
	ErrEmptyBatch = errors.New("no periods supplied")

	// ErrInvalidInput wraps every batch validation failure.
	ErrInvalidInput = errors.New("invalid period input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InputProblem describes one invalid field on one period of the batch.
type InputProblem struct {
	PeriodIndex int
	PeriodLabel string
	Field       string
	Message     string
}

func (p InputProblem) String() string {
	label := p.PeriodLabel
	if label == "" {
		label = fmt.Sprintf("period %d", p.PeriodIndex+1)
	}
	return fmt.Sprintf("%s: %s: %s", label, p.Field, p.Message)
}

// BatchValidationError aggregates every input problem found in a batch.
// It is raised once, before any computation.
type BatchValidationError struct {
	Problems []InputProblem
}

func (e *BatchValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.String()
	}
	return fmt.Sprintf("invalid period input (%d problem(s)): %s",
		len(e.Problems), strings.Join(msgs, "; "))
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidInput).
func (e *BatchValidationError) Unwrap() error {
	return ErrInvalidInput
}
