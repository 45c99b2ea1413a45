package sim

import "sync"

// parallelThreshold is the minimum work-item count to fan out to
// goroutines. Below this, single-threaded is faster than the dispatch
// overhead.
const parallelThreshold = 64

// parallelFor splits [0,n) into at most workers contiguous chunks and runs
// fn on each. fn receives the worker index so callers can hand out
// per-worker scratch. Work items must be independent: fn may only write
// state owned by its own index range.
func parallelFor(n, workers int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	if n < parallelThreshold || workers <= 1 {
		fn(0, 0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			fn(w, start, end)
		}(w, start, end)
	}
	wg.Wait()
}
