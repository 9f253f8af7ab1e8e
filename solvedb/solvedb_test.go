package solvedb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"tis100.dev/superopt"
	"tis100.dev/superopt/internal/dbutil"
	"tis100.dev/superopt/internal/testutil"
	"tis100.dev/superopt/isa"
)

func newTestDB(t testing.TB) *DB {
	ctx := testutil.Context(t)
	db := dbutil.NewTestDB(t)
	require.NoError(t, Setup(ctx, db))
	// setup is idempotent
	require.NoError(t, Setup(ctx, db))
	return New(db)
}

func TestPutGet(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	db := newTestDB(t)

	k := Key{ProblemID: superopt.Hash([]byte("zeros")), MaxCycles: 10, MaxLength: 3}
	_, err := db.Get(ctx, k)
	require.ErrorIs(t, err, ErrNotFound{Key: k})
	require.True(t, IsNotFound(err))

	sol := Solution{
		Key:    k,
		Name:   "zeros",
		Input:  []int32{0, 1, 2, 3},
		Output: []int32{0, 0, 0, 0},

		Found:    true,
		Program:  isa.Program{isa.Mov(isa.SrcReg(isa.NIL), isa.DstPort), isa.Add(isa.SrcPort)},
		Index:    151,
		Tried:    152,
		SolvedAt: Now(),
	}
	require.NoError(t, db.Put(ctx, sol))
	actual, err := db.Get(ctx, k)
	require.NoError(t, err)
	require.Equal(t, sol, *actual)

	// replace
	sol.Name = "zeros again"
	require.NoError(t, db.Put(ctx, sol))
	actual, err = db.Get(ctx, k)
	require.NoError(t, err)
	require.Equal(t, "zeros again", actual.Name)
}

func TestNotFoundSolution(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	db := newTestDB(t)

	sol := Solution{
		Key:      Key{ProblemID: superopt.Hash([]byte("seven")), MaxCycles: math.MaxUint64, MaxLength: 2},
		Input:    []int32{1},
		Output:   []int32{7},
		Tried:    1123,
		SolvedAt: Now(),
	}
	require.NoError(t, db.Put(ctx, sol))
	actual, err := db.Get(ctx, sol.Key)
	require.NoError(t, err)
	require.Equal(t, sol, *actual)
	require.False(t, actual.Found)
	require.Nil(t, actual.Program)
}

func TestListDelete(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	db := newTestDB(t)

	id1 := superopt.Hash([]byte("1"))
	id2 := superopt.Hash([]byte("2"))
	keys := []Key{
		{ProblemID: id1, MaxCycles: 10, MaxLength: 3},
		{ProblemID: id1, MaxCycles: 20, MaxLength: 3},
		{ProblemID: id2, MaxCycles: 10, MaxLength: 3},
	}
	for i, k := range keys {
		require.NoError(t, db.Put(ctx, Solution{Key: k, SolvedAt: Timestamp{Seconds: 1 << 62, Nanoseconds: uint32(i)}}))
	}
	sols, err := db.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []Key{keys[2], keys[1], keys[0]}, Keys(sols))

	n, err := db.Delete(ctx, id1)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	sols, err = db.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []Key{keys[2]}, Keys(sols))

	n, err = db.Delete(ctx, id1)
	require.NoError(t, err)
	require.Equal(t, int64(0), n)
}

func TestTimestamp(t *testing.T) {
	t.Parallel()
	a := Timestamp{Seconds: 1 << 62, Nanoseconds: 5}
	b := Timestamp{Seconds: 1 << 62, Nanoseconds: 6}
	c := Timestamp{Seconds: 1<<62 + 1}
	require.Equal(t, -1, a.Compare(b))
	require.Equal(t, 1, c.Compare(b))
	require.Equal(t, 0, a.Compare(a))
	require.Equal(t, "@400000000000000000000005", a.String())
	require.Positive(t, Now().Compare(Timestamp{}))
}
