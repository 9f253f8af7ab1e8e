package isa

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContent(t *testing.T) {
	t.Parallel()
	type testCase struct {
		I    Instruction
		Want uint32
	}
	tcs := []testCase{
		{I: Nop(), Want: 1},
		{I: Swp(), Want: 1},
		{I: Sav(), Want: 1},
		{I: Add(SrcPort), Want: 2},
		{I: Sub(SrcReg(ACC)), Want: 2},
		{I: Add(Lit(0)), Want: 2},
		{I: Add(Lit(-1)), Want: 3},
		{I: Sub(Lit(7)), Want: 9},
		{I: Mov(SrcPort, DstPort), Want: 3},
		{I: Mov(Lit(-5), DstReg(ACC)), Want: 8},
		{I: Mov(Lit(math.MinInt32), DstReg(NIL)), Want: 3 + (1 << 31)},
	}
	for i, tc := range tcs {
		t.Run(fmt.Sprintf("%d/%v", i, tc.I), func(t *testing.T) {
			require.Equal(t, tc.Want, tc.I.Content())
		})
	}
}

func TestProgramContent(t *testing.T) {
	t.Parallel()
	prog := Program{
		Mov(SrcPort, DstReg(ACC)),
		Add(SrcPort),
		Mov(SrcReg(ACC), DstPort),
	}
	require.Equal(t, uint32(3+2+3), prog.Content())
	require.Equal(t, uint32(0), Program{}.Content())
}

func TestProgramEqual(t *testing.T) {
	t.Parallel()
	a := Program{Nop(), Add(Lit(1))}
	require.True(t, a.Equal(Program{Nop(), Add(Lit(1))}))
	require.False(t, a.Equal(Program{Nop()}))
	require.False(t, a.Equal(Program{Nop(), Add(Lit(1)), Nop()}))
	require.False(t, a.Equal(Program{Nop(), Sub(Lit(1))}))
	require.True(t, Program{}.Equal(nil))
}

func TestString(t *testing.T) {
	t.Parallel()
	prog := Program{
		Nop(),
		Mov(SrcPort, DstReg(ACC)),
		Add(Lit(-1)),
		Sub(SrcReg(NIL)),
		Mov(SrcReg(ACC), DstPort),
		Swp(),
		Sav(),
	}
	require.Equal(t, "NOP\nMOV UP, ACC\nADD -1\nSUB NIL\nMOV ACC, DOWN\nSWP\nSAV", prog.String())
}

func TestParseProgram(t *testing.T) {
	t.Parallel()
	const text = `
# double every input
mov up acc
ADD ACC   # acc = 2 * acc
MOV ACC, DOWN
`
	prog, err := ParseProgram(text)
	require.NoError(t, err)
	require.Equal(t, Program{
		Mov(SrcPort, DstReg(ACC)),
		Add(SrcReg(ACC)),
		Mov(SrcReg(ACC), DstPort),
	}, prog)
	require.NoError(t, prog.Validate())

	again, err := ParseProgram(prog.String())
	require.NoError(t, err)
	require.True(t, prog.Equal(again))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	for _, x := range []string{
		"JMP UP",
		"MOV UP",
		"ADD UP, ACC",
		"MOV DOWN, ACC",
		"MOV ACC, UP",
		"MOV 1, 2",
		"ADD 99999999999",
		"SWP ACC",
	} {
		_, err := ParseInstruction(x)
		require.Error(t, err, x)
		require.ErrorAs(t, err, &ErrParse{})
	}

	_, err := ParseProgram("NOP\n\nBOGUS\n")
	var perr ErrParse
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 3, perr.Line)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	require.Error(t, Instruction{}.Validate())
	require.Error(t, Instruction{Op: NOP, Src: SrcPort}.Validate())
	require.Error(t, Instruction{Op: ADD, Src: Source{Kind: RegisterOperand, Reg: 7}}.Validate())
	require.Error(t, Instruction{Op: MOV, Src: SrcPort, Dst: Destination{Kind: LiteralOperand}}.Validate())
	require.NoError(t, Mov(Lit(3), DstReg(NIL)).Validate())
}
