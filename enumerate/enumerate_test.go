package enumerate

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"tis100.dev/superopt/isa"
)

func TestAlphabet(t *testing.T) {
	t.Parallel()
	alpha := Alphabet()
	require.Len(t, alpha, 33)
	require.Equal(t, uint64(33), Radix())

	seen := map[isa.Instruction]bool{}
	for i, ix := range alpha {
		require.NoError(t, ix.Validate())
		require.False(t, seen[ix], "duplicate %v", ix)
		seen[ix] = true
		if i > 0 {
			require.LessOrEqual(t, alpha[i-1].Content(), ix.Content())
		}
	}
	require.Equal(t, isa.Nop(), alpha[0])
	require.Equal(t, isa.Swp(), alpha[1])
	require.Equal(t, isa.Sav(), alpha[2])
	require.Equal(t, isa.Add(isa.SrcPort), alpha[3])
	require.Equal(t, isa.Mov(isa.SrcReg(isa.NIL), isa.DstPort), alpha[18])
	require.Equal(t, isa.Mov(isa.Lit(1), isa.DstReg(isa.ACC)), alpha[32])
}

func TestDecode(t *testing.T) {
	t.Parallel()
	type testCase struct {
		N    uint64
		Want isa.Program
	}
	tcs := []testCase{
		{N: 0, Want: nil},
		{N: 1, Want: isa.Program{isa.Nop()}},
		{N: 33, Want: isa.Program{isa.Mov(isa.Lit(1), isa.DstReg(isa.ACC))}},
		{N: 34, Want: isa.Program{isa.Nop(), isa.Nop()}},
		{N: 35, Want: isa.Program{isa.Swp(), isa.Nop()}},
		{N: 151, Want: isa.Program{isa.Mov(isa.SrcReg(isa.NIL), isa.DstPort), isa.Add(isa.SrcPort)}},
		{N: 1123, Want: isa.Program{isa.Nop(), isa.Nop(), isa.Nop()}},
	}
	for _, tc := range tcs {
		t.Run(fmt.Sprint(tc.N), func(t *testing.T) {
			require.Equal(t, tc.Want, Decode(tc.N))
		})
	}
}

func TestDecodeTotal(t *testing.T) {
	t.Parallel()
	for _, n := range []uint64{math.MaxUint64, math.MaxUint64 - 1, 1 << 63, math.MaxUint32} {
		require.NotPanics(t, func() {
			prog := Decode(n)
			require.NoError(t, prog.Validate())
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()
	for n := uint64(0); n < 40000; n += 7 {
		m, ok := Encode(Decode(n))
		require.True(t, ok)
		require.Equal(t, n, m)
	}
	m, ok := Encode(Decode(math.MaxUint64))
	require.True(t, ok)
	require.Equal(t, uint64(math.MaxUint64), m)

	_, ok = Encode(isa.Program{isa.Add(isa.Lit(2))})
	require.False(t, ok)
	long := make(isa.Program, 20)
	for i := range long {
		long[i] = isa.Nop()
	}
	_, ok = Encode(long)
	require.False(t, ok)
}

func TestLengthsNonDecreasing(t *testing.T) {
	t.Parallel()
	e := New()
	prev := 0
	for i := 0; i < 5000; i++ {
		n, prog := e.Next()
		require.Equal(t, uint64(i), n)
		require.GreaterOrEqual(t, len(prog), prev)
		prev = len(prog)
	}
	require.Equal(t, uint64(5000), e.Count())
}

func TestFirstOfLength(t *testing.T) {
	t.Parallel()
	for l, want := range []uint64{0, 1, 34, 1123, 37060} {
		n, ok := FirstOfLength(l)
		require.True(t, ok)
		require.Equal(t, want, n, "length %d", l)
		require.Len(t, Decode(n), l)
		if n > 0 {
			require.Len(t, Decode(n-1), l-1)
		}
	}
	_, ok := FirstOfLength(100)
	require.False(t, ok)
}

func TestRestartFromZero(t *testing.T) {
	t.Parallel()
	a, b := New(), New()
	for i := 0; i < 100; i++ {
		a.Next()
	}
	n, prog := b.Next()
	require.Equal(t, uint64(0), n)
	require.Empty(t, prog)
}
