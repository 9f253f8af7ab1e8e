package isa

import (
	"fmt"
	"strconv"
)

// Register is a register that can be named as an operand.
type Register uint8

const (
	// NIL reads as 0 and discards writes
	NIL Register = iota
	// ACC is the accumulator
	ACC
)

func (r Register) String() string {
	switch r {
	case NIL:
		return "NIL"
	case ACC:
		return "ACC"
	default:
		return "Register(" + itoa(int64(r)) + ")"
	}
}

// OperandKind says where an operand reads or writes.
type OperandKind uint8

const (
	NoOperand OperandKind = iota
	// PortOperand is the up port for a Source and the down port for a Destination
	PortOperand
	RegisterOperand
	// LiteralOperand is only valid for a Source
	LiteralOperand
)

// Source is where an instruction reads a value from.
type Source struct {
	Kind OperandKind
	Reg  Register
	Lit  int32
}

var SrcPort = Source{Kind: PortOperand}

func SrcReg(r Register) Source {
	return Source{Kind: RegisterOperand, Reg: r}
}

// Lit returns a Source which always produces v
func Lit(v int32) Source {
	return Source{Kind: LiteralOperand, Lit: v}
}

// Content is 1 + |v| for literals and 1 for everything else.
func (s Source) Content() uint32 {
	if s.Kind == LiteralOperand {
		v := int64(s.Lit)
		if v < 0 {
			v = -v
		}
		return 1 + uint32(v)
	}
	return 1
}

func (s Source) Validate() error {
	switch s.Kind {
	case PortOperand, LiteralOperand:
		return nil
	case RegisterOperand:
		return validateRegister(s.Reg)
	default:
		return fmt.Errorf("invalid source kind %d", s.Kind)
	}
}

func (s Source) String() string {
	switch s.Kind {
	case PortOperand:
		return "UP"
	case RegisterOperand:
		return s.Reg.String()
	case LiteralOperand:
		return strconv.FormatInt(int64(s.Lit), 10)
	default:
		return "?"
	}
}

// Destination is where an instruction writes a value to.
type Destination struct {
	Kind OperandKind
	Reg  Register
}

var DstPort = Destination{Kind: PortOperand}

func DstReg(r Register) Destination {
	return Destination{Kind: RegisterOperand, Reg: r}
}

func (d Destination) Content() uint32 {
	return 1
}

func (d Destination) Validate() error {
	switch d.Kind {
	case PortOperand:
		return nil
	case RegisterOperand:
		return validateRegister(d.Reg)
	default:
		return fmt.Errorf("invalid destination kind %d", d.Kind)
	}
}

func (d Destination) String() string {
	switch d.Kind {
	case PortOperand:
		return "DOWN"
	case RegisterOperand:
		return d.Reg.String()
	default:
		return "?"
	}
}

func validateRegister(r Register) error {
	if r != NIL && r != ACC {
		return fmt.Errorf("invalid register %d", r)
	}
	return nil
}

func itoa(x int64) string {
	return strconv.FormatInt(x, 10)
}
