package search

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"

	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tis100.dev/superopt/enumerate"
	"tis100.dev/superopt/tisvm"
)

// batchPerWorker is the number of candidates each worker checks before the
// workers agree on whether the search is over.
const batchPerWorker = 512

// OptimizeParallel returns the same Result as Optimize, checking candidates on
// several goroutines. Nodes are immutable, so every worker runs from the same
// node.
// If workers < 1, GOMAXPROCS workers are used.
func OptimizeParallel(ctx context.Context, node tisvm.Node, expected []int32, cfg Config, workers int) (Result, bool) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 {
		return Optimize(ctx, node, expected, cfg)
	}
	if cfg.MaxProgramLength < 0 {
		return Result{}, false
	}
	limit, ok := enumerate.FirstOfLength(cfg.MaxProgramLength + 1)
	if !ok {
		limit = math.MaxUint64
	}
	batch := uint64(workers) * batchPerWorker
	length := -1
	for base := uint64(0); base < limit; {
		// batches never span two lengths, so progress is reported as Optimize reports it.
		end := limit
		if next, ok := enumerate.FirstOfLength(len(enumerate.Decode(base)) + 1); ok && next < end {
			end = next
		}
		if end-base > batch {
			end = base + batch
		}
		if l := len(enumerate.Decode(base)); l != length {
			length = l
			logctx.Debug(ctx, "searching", zap.Int("length", length), zap.Uint64("tried", base), zap.Int("workers", workers))
			cfg.report(Progress{Length: length, Tried: base})
		}
		if best, found, err := checkRange(ctx, node, expected, cfg.MaxCycles, base, end, workers); err != nil {
			return Result{Tried: base}, false
		} else if found {
			prog := enumerate.Decode(best)
			logctx.Debug(ctx, "found program", zap.Uint64("index", best), zap.Uint32("content", prog.Content()))
			return Result{Program: prog, Index: best, Tried: best + 1}, true
		}
		base = end
	}
	logctx.Debug(ctx, "search exhausted", zap.Int("max_length", cfg.MaxProgramLength), zap.Uint64("tried", limit))
	return Result{Tried: limit}, false
}

// checkRange checks the candidates in [beg, end) and returns the lowest one which passes.
func checkRange(ctx context.Context, node tisvm.Node, expected []int32, maxCycles uint64, beg, end uint64, workers int) (uint64, bool, error) {
	var best atomic.Uint64
	best.Store(math.MaxUint64)
	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			var i uint64
			for n := beg + uint64(w); n < end && n >= beg; n += uint64(workers) {
				if n >= best.Load() {
					return nil
				}
				if i%ctxCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				i++
				if Check(node, enumerate.Decode(n), expected, maxCycles) {
					storeMin(&best, n)
					return nil
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, false, err
	}
	n := best.Load()
	return n, n != math.MaxUint64, nil
}

func storeMin(x *atomic.Uint64, n uint64) {
	for {
		cur := x.Load()
		if n >= cur || x.CompareAndSwap(cur, n) {
			return
		}
	}
}
