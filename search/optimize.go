package search

import (
	"context"

	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"tis100.dev/superopt/enumerate"
	"tis100.dev/superopt/isa"
	"tis100.dev/superopt/tisvm"
)

// Result is a program found by a search.
type Result struct {
	Program isa.Program
	// Index is the enumeration number of Program.
	Index uint64
	// Tried is the number of candidates checked, including Program.
	Tried uint64
}

// how often, in candidates, a search looks at its context.
const ctxCheckInterval = 1 << 10

// Optimize returns the first program in enumeration order which passes Check
// for node and expected.
// Enumeration order only approximates increasing content, so this is the first
// match the enumerator produces, not necessarily the one with the least content.
//
// ok is false if no program of at most cfg.MaxProgramLength instructions
// passes, or if ctx is cancelled first. Not finding a program is not an error.
func Optimize(ctx context.Context, node tisvm.Node, expected []int32, cfg Config) (_ Result, ok bool) {
	en := enumerate.New()
	length := -1
	for {
		n, prog := en.Next()
		if len(prog) > cfg.MaxProgramLength {
			logctx.Debug(ctx, "search exhausted", zap.Int("max_length", cfg.MaxProgramLength), zap.Uint64("tried", n))
			return Result{Tried: n}, false
		}
		if len(prog) != length {
			length = len(prog)
			logctx.Debug(ctx, "searching", zap.Int("length", length), zap.Uint64("tried", n))
			cfg.report(Progress{Length: length, Tried: n})
		}
		if n%ctxCheckInterval == 0 && ctx.Err() != nil {
			return Result{Tried: n}, false
		}
		if Check(node, prog, expected, cfg.MaxCycles) {
			logctx.Debug(ctx, "found program", zap.Uint64("index", n), zap.Uint32("content", prog.Content()))
			return Result{Program: prog, Index: n, Tried: n + 1}, true
		}
	}
}
