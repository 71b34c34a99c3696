package analyze

import (
	"context"
	"runtime"
	"sync"

	"github.com/inodb/vibe-risk/internal/variant"
)

// WorkItem holds one input ready for analysis.
type WorkItem struct {
	Seq   int
	Input *Input
}

// WorkResult holds the analysis output for a single input.
type WorkResult struct {
	Seq     int
	Input   *Input
	Outcome *Outcome
	Err     error
}

// Result returns the analysis result, or nil when the run failed.
func (r WorkResult) Result() *variant.Result {
	if r.Outcome == nil {
		return nil
	}
	return r.Outcome.Result
}

// ParallelAnalyze analyzes work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (o *Orchestrator) ParallelAnalyze(ctx context.Context, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				out, err := o.Run(ctx, item.Input)
				results <- WorkResult{
					Seq:     item.Seq,
					Input:   item.Input,
					Outcome: out,
					Err:     err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// Feed sends inputs to a new channel in order, numbering them from zero.
func Feed(inputs []*Input) <-chan WorkItem {
	items := make(chan WorkItem, len(inputs))
	for i, in := range inputs {
		items <- WorkItem{Seq: i, Input: in}
	}
	close(items)
	return items
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
