/*
async.go - Background-worker run offload

PURPOSE:
  The pipeline is synchronous and single-threaded by design. The one
  sanctioned concurrency pattern is offloading an ENTIRE run onto a
  background goroutine so the caller is not blocked during large
  batches; within the worker the computation stays strictly sequential.

  There is no cancellation: a run either completes or fails its input
  validation. Callers wanting cancellation discard the channel.

USAGE:
  ch := orch.ProcessPeriodsAsync(inputs, engine.PeriodMonthly)
  // ... do other work ...
  run := <-ch
  if run.Err != nil { ... }

SEE ALSO:
  - orchestrator.go: the synchronous entry point
*/
package engine

// RunResult carries the outcome of an offloaded run.
type RunResult struct {
	Results []PeriodResult
	Err     error
}

// ProcessPeriodsAsync runs ProcessPeriods on a background goroutine and
// delivers the outcome on the returned channel. The channel is buffered;
// the worker never blocks on an abandoned receiver.
func (o *Orchestrator) ProcessPeriodsAsync(inputs []PeriodInput, periodType PeriodType) <-chan RunResult {
	ch := make(chan RunResult, 1)
	go func() {
		results, err := o.ProcessPeriods(inputs, periodType)
		ch <- RunResult{Results: results, Err: err}
	}()
	return ch
}
