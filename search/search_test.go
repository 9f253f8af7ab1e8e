package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"tis100.dev/superopt/internal/testutil"
	"tis100.dev/superopt/isa"
	"tis100.dev/superopt/tisvm"
)

func TestCheck(t *testing.T) {
	t.Parallel()
	node := tisvm.New().Prime(0, 1, 2, 3)

	zeros := isa.Program{isa.Mov(isa.Lit(0), isa.DstPort), isa.Add(isa.SrcPort)}
	require.True(t, Check(node, zeros, []int32{0, 0, 0, 0}, 10))
	require.False(t, Check(node, zeros, []int32{0, 0, 0}, 10))
	require.False(t, Check(node, zeros, []int32{0, 0, 0, 0, 0}, 10))
	require.False(t, Check(node, zeros, []int32{0, 0, 1, 0}, 10))

	pairs := isa.Program{
		isa.Mov(isa.SrcPort, isa.DstReg(isa.ACC)),
		isa.Add(isa.SrcPort),
		isa.Mov(isa.SrcReg(isa.ACC), isa.DstPort),
	}
	require.True(t, Check(node, pairs, []int32{1, 5}, 10))
	// order matters
	require.False(t, Check(node, pairs, []int32{5, 1}, 10))
	// not enough cycles to consume the input
	require.False(t, Check(node, pairs, []int32{1, 5}, 1))
}

func TestCheckFailures(t *testing.T) {
	t.Parallel()
	// timeout
	require.False(t, Check(tisvm.New().Prime(1, 2), isa.Program{isa.Nop()}, nil, 100))
	// deadlock
	require.False(t, Check(tisvm.New().Prime(1, 2, 3), isa.Program{isa.Add(isa.SrcPort), isa.Add(isa.SrcPort)}, nil, 10))
	// the empty program succeeds with no output
	require.True(t, Check(tisvm.New().Prime(1, 2, 3), nil, nil, 10))
	require.True(t, Check(tisvm.New().Prime(1, 2, 3), nil, []int32{}, 10))
}

func TestCheckDeterministic(t *testing.T) {
	t.Parallel()
	node := tisvm.New().Prime(3, 1, 4, 1, 5)
	prog := isa.Program{isa.Sub(isa.SrcPort), isa.Mov(isa.SrcReg(isa.ACC), isa.DstPort)}
	expected := []int32{-3, -4, -8, -9, -14}
	first := Check(node, prog, expected, 10)
	require.True(t, first)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Check(node, prog, expected, 10))
	}
	require.Equal(t, []int32{3, 1, 4, 1, 5}, node.Up().Input())
}

func TestOptimize(t *testing.T) {
	t.Parallel()
	type testCase struct {
		Name     string
		Input    []int32
		Expected []int32
		Config   Config

		Found bool
		Index uint64
		Want  isa.Program
	}
	tcs := []testCase{
		{
			Name:     "zeros",
			Input:    []int32{0, 1, 2, 3},
			Expected: []int32{0, 0, 0, 0},
			Config:   NewConfig(10, 3),
			Found:    true,
			Index:    151,
			Want:     isa.Program{isa.Mov(isa.SrcReg(isa.NIL), isa.DstPort), isa.Add(isa.SrcPort)},
		},
		{
			Name:     "pairwise sum",
			Input:    []int32{0, 1, 2, 3},
			Expected: []int32{1, 5},
			Config:   NewConfig(10, 3),
			Found:    true,
			Index:    24108,
			Want: isa.Program{
				isa.Mov(isa.SrcPort, isa.DstReg(isa.ACC)),
				isa.Add(isa.SrcPort),
				isa.Mov(isa.SrcReg(isa.ACC), isa.DstPort),
			},
		},
		{
			Name:     "double",
			Input:    []int32{1, 2, 3},
			Expected: []int32{2, 4, 6},
			Config:   NewConfig(10, 3),
			Found:    true,
			Index:    24174,
			Want: isa.Program{
				isa.Mov(isa.SrcPort, isa.DstReg(isa.ACC)),
				isa.Add(isa.SrcReg(isa.ACC)),
				isa.Mov(isa.SrcReg(isa.ACC), isa.DstPort),
			},
		},
		{
			Name:     "delay by one",
			Input:    []int32{1, 2, 3},
			Expected: []int32{0, 1, 2},
			Config:   NewConfig(10, 3),
			Found:    true,
			Index:    616,
			Want:     isa.Program{isa.Mov(isa.SrcReg(isa.ACC), isa.DstPort), isa.Mov(isa.SrcPort, isa.DstReg(isa.ACC))},
		},
		{
			Name:     "negate",
			Input:    []int32{3},
			Expected: []int32{-3},
			Config:   NewConfig(10, 3),
			Found:    true,
			Index:    734,
			Want:     isa.Program{isa.Sub(isa.SrcPort), isa.Mov(isa.SrcReg(isa.ACC), isa.DstPort)},
		},
		{
			Name:     "identity",
			Input:    []int32{5},
			Expected: []int32{5},
			Config:   NewConfig(10, 2),
			Found:    true,
			Index:    16,
			Want:     isa.Program{isa.Mov(isa.SrcPort, isa.DstPort)},
		},
		{
			Name:     "nothing",
			Config:   NewConfig(10, 3),
			Found:    true,
			Index:    0,
			Want:     nil,
		},
		{
			Name:     "out of reach",
			Input:    []int32{1},
			Expected: []int32{7},
			Config:   NewConfig(10, 2),
			Found:    false,
		},
	}
	for i, tc := range tcs {
		t.Run(fmt.Sprintf("%d/%s", i, tc.Name), func(t *testing.T) {
			t.Parallel()
			ctx := testutil.Context(t)
			node := tisvm.New().Prime(tc.Input...)
			res, found := Optimize(ctx, node, tc.Expected, tc.Config)
			require.Equal(t, tc.Found, found)
			if !found {
				require.Nil(t, res.Program)
				return
			}
			require.Equal(t, tc.Want, res.Program)
			require.Equal(t, tc.Index, res.Index)
			require.Equal(t, tc.Index+1, res.Tried)
			require.LessOrEqual(t, len(res.Program), tc.Config.MaxProgramLength)
			require.True(t, Check(node, res.Program, tc.Expected, tc.Config.MaxCycles))

			for _, workers := range []int{2, 3, 8} {
				pres, pfound := OptimizeParallel(ctx, node, tc.Expected, tc.Config, workers)
				require.True(t, pfound)
				require.Equal(t, res, pres, "workers=%d", workers)
			}
		})
	}
}

func TestOptimizeExhausted(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	node := tisvm.New().Prime(1)
	cfg := NewConfig(10, 2)
	res, found := Optimize(ctx, node, []int32{7}, cfg)
	require.False(t, found)
	// every program of length <= 2
	require.Equal(t, uint64(1+33+33*33), res.Tried)

	pres, pfound := OptimizeParallel(ctx, node, []int32{7}, cfg, 4)
	require.False(t, pfound)
	require.Equal(t, res, pres)
}

func TestOptimizeProgress(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	node := tisvm.New().Prime(0, 1, 2, 3)
	for _, workers := range []int{1, 4} {
		var events []Progress
		cfg := NewConfig(10, 3)
		cfg.Progress = func(p Progress) { events = append(events, p) }
		_, found := OptimizeParallel(ctx, node, []int32{1, 5}, cfg, workers)
		require.True(t, found)
		require.Equal(t, []Progress{
			{Length: 0, Tried: 0},
			{Length: 1, Tried: 1},
			{Length: 2, Tried: 34},
			{Length: 3, Tried: 1123},
		}, events, "workers=%d", workers)
	}
}

func TestOptimizeCancelled(t *testing.T) {
	t.Parallel()
	ctx, cf := context.WithCancel(testutil.Context(t))
	cf()
	node := tisvm.New().Prime(1)
	_, found := Optimize(ctx, node, []int32{1000}, NewConfig(10, 5))
	require.False(t, found)
	_, found = OptimizeParallel(ctx, node, []int32{1000}, NewConfig(10, 5), 4)
	require.False(t, found)
}

func TestConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.Equal(t, uint64(10), cfg.MaxCycles)
	require.Equal(t, 3, cfg.MaxProgramLength)
	require.NoError(t, cfg.Validate())
	require.Error(t, NewConfig(1, -1).Validate())
}
