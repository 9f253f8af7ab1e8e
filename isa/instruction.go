package isa

import (
	"fmt"
	"slices"
	"strings"

	"go.brendoncarroll.net/exp/slices2"
)

// Instruction is a single operation executed by a node.
// Operands which the Op does not use are left as their zero values, so
// Instructions can be compared with ==.
type Instruction struct {
	Op  Op
	Src Source
	Dst Destination
}

func Nop() Instruction {
	return Instruction{Op: NOP}
}

func Mov(src Source, dst Destination) Instruction {
	return Instruction{Op: MOV, Src: src, Dst: dst}
}

func Swp() Instruction {
	return Instruction{Op: SWP}
}

func Sav() Instruction {
	return Instruction{Op: SAV}
}

func Add(src Source) Instruction {
	return Instruction{Op: ADD, Src: src}
}

func Sub(src Source) Instruction {
	return Instruction{Op: SUB, Src: src}
}

// Content is the complexity of the instruction.
// NOP, SWP and SAV cost 1; ADD and SUB cost 1 + the source; MOV costs 1 + the source + the destination.
func (ix Instruction) Content() uint32 {
	switch ix.Op {
	case MOV:
		return 1 + ix.Src.Content() + ix.Dst.Content()
	case ADD, SUB:
		return 1 + ix.Src.Content()
	default:
		return 1
	}
}

func (ix Instruction) Validate() error {
	if ix.Op == Unknown || ix.Op.Info().Mnemonic == "" {
		return fmt.Errorf("invalid op %v", ix.Op)
	}
	if ix.Op.HasSource() {
		if err := ix.Src.Validate(); err != nil {
			return fmt.Errorf("%v: %w", ix.Op, err)
		}
	} else if ix.Src != (Source{}) {
		return fmt.Errorf("%v does not take a source", ix.Op)
	}
	if ix.Op.HasDestination() {
		if err := ix.Dst.Validate(); err != nil {
			return fmt.Errorf("%v: %w", ix.Op, err)
		}
	} else if ix.Dst != (Destination{}) {
		return fmt.Errorf("%v does not take a destination", ix.Op)
	}
	return nil
}

func (ix Instruction) String() string {
	switch {
	case ix.Op.HasDestination():
		return ix.Op.String() + " " + ix.Src.String() + ", " + ix.Dst.String()
	case ix.Op.HasSource():
		return ix.Op.String() + " " + ix.Src.String()
	default:
		return ix.Op.String()
	}
}

// Program is an ordered sequence of Instructions.
// Programs loaded into a node are never modified.
type Program []Instruction

// Equal is element-wise and length-sensitive.
func (p Program) Equal(other Program) bool {
	return slices.Equal(p, other)
}

// Content is the sum of the content of the instructions.
func (p Program) Content() (ret uint32) {
	for _, ix := range p {
		ret += ix.Content()
	}
	return ret
}

func (p Program) Clone() Program {
	return slices.Clone(p)
}

// Validate returns an error for the first invalid instruction.
func (p Program) Validate() error {
	for i, ix := range p {
		if err := ix.Validate(); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return nil
}

// String renders the program as assembly, one instruction per line.
func (p Program) String() string {
	return strings.Join(slices2.Map([]Instruction(p), Instruction.String), "\n")
}
