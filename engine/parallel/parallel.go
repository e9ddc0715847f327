/*
Package parallel runs independent work items on a bounded number of
goroutines.

Every work item writes its result into its own slot of the result slice,
so results need no further synchronization and keep the order of the
input. Merging and sorting is left to the caller, after Map returns.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Workers returns the number of goroutines to use for a requested number.
// If n is 0 or negative, GOMAXPROCS is used.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Map applies fn to every item, using at most workers goroutines
// (GOMAXPROCS if workers ≤ 0). results[i] holds fn's result for items[i].
//
// If ctx is canceled, no more items are started and ctx's error is returned
// together with the results computed so far; done[i] tells whether
// results[i] has been computed.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) R) (results []R, done []bool, err error) {
	results = make([]R, len(items))
	done = make([]bool, len(items))
	if len(items) == 0 {
		return results, done, ctx.Err()
	}
	workers = min(Workers(workers), len(items))
	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				i := int(next.Add(1) - 1)
				if i >= len(items) {
					return
				}
				results[i] = fn(ctx, items[i])
				done[i] = true
			}
		}()
	}
	wg.Wait()
	return results, done, ctx.Err()
}
