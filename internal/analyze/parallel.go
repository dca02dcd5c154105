package analyze

import (
	"runtime"
	"sync"

	"github.com/genoskip/genoskip/internal/transcript"
)

// workItem is one candidate queued for comparison.
type workItem struct {
	seq  int
	cand transcript.Candidate
}

// workResult carries a finished comparison with its sequence number.
type workResult struct {
	seq int
	res Result
}

// compareAll compares every candidate structure against the original on a
// pool of workers and returns the results in candidate order.
func (a *Analyzer) compareAll(original *transcript.Structure, candidates []transcript.Candidate) []Result {
	workers := a.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}
	if workers == 0 {
		return nil
	}

	items := make(chan workItem, len(candidates))
	for i, c := range candidates {
		items <- workItem{seq: i, cand: c}
	}
	close(items)

	results := make(chan workResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				results <- workResult{
					seq: item.seq,
					res: Result{
						Therapy:     item.cand.Therapy,
						Comparisons: transcript.Compare(item.cand.Structure, original),
					},
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// The candidate count is known up front, so sequence numbers index
	// directly into the output slice.
	out := make([]Result, len(candidates))
	for r := range results {
		out[r.seq] = r.res
	}
	return out
}
