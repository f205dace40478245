// Package pmap implements the abstract parallel-map facility the
// marketplace uses to fan pure per-item work (substring self-encoding,
// charstring encoding) across goroutines while leaving all mutation of
// shared substring state to the serial driver between stages.
package pmap

import "sync"

// Options configures a Map/Each call.
type Options struct {
	SingleProcess bool
	Processes     int
	ChunkRatio    float64
}

// DefaultOptions returns the defaults from the external interface.
func DefaultOptions() Options {
	return Options{Processes: 12, ChunkRatio: 0.1}
}

// ChunkSize returns the chunk size to use for n items under opts. Below
// 1500 items the smaller 0.05 ratio applies regardless of ChunkRatio.
func ChunkSize(n int, opts Options) int {
	ratio := opts.ChunkRatio
	if ratio <= 0 {
		ratio = 0.1
	}
	if n < 1500 {
		ratio = 0.05
	}
	size := int(float64(n) * ratio)
	if size < 1 {
		size = 1
	}
	return size
}

// Each calls fn(i) for every i in [0,n). With opts.SingleProcess it
// runs serially in index order, for debugging or reproducing a single
// call trace; otherwise it fans out over disjoint, contiguous index
// chunks sized by ChunkSize, running at most opts.Processes chunks at
// once (no limit when Processes <= 0), and waits for all of them. fn must be
// pure with respect to any state shared across calls: the chunks are
// disjoint so writes through index i are race-free, but fn must not
// read or write state keyed by a different i.
func Each(n int, opts Options, fn func(i int)) {
	if n == 0 {
		return
	}
	if opts.SingleProcess {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := ChunkSize(n, opts)
	var sem chan struct{}
	if opts.Processes > 0 {
		sem = make(chan struct{}, opts.Processes)
	}
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		if sem != nil {
			sem <- struct{}{}
		}
		go func(start, end int) {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
