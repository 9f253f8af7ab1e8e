package tisvm

import (
	"errors"
	"fmt"

	"tis100.dev/superopt/isa"
)

// ErrEmptyPort is returned by Execute when an instruction reads from the up
// port and there is nothing to read.
// It is local to the instruction; Run decides what it means.
var ErrEmptyPort = errors.New("tisvm: read from empty port")

// Execute returns the Node that results from executing ix on n.
// The only failure is ErrEmptyPort, in which case n is returned unchanged.
//
// Execute panics if ix does not pass ix.Validate, for example an Unknown op
// or a zero Source. Programs from outside the process should be validated
// before they are loaded; isa.ParseProgram only produces valid instructions.
func (n Node) Execute(ix isa.Instruction) (Node, error) {
	switch ix.Op {
	case isa.NOP:
	case isa.MOV:
		next, v, err := n.resolve(ix.Src)
		if err != nil {
			return n, err
		}
		n = next.store(ix.Dst, v)
	case isa.SWP:
		n.acc, n.bac = n.bac, n.acc
	case isa.SAV:
		n.bac = n.acc
	case isa.ADD:
		next, v, err := n.resolve(ix.Src)
		if err != nil {
			return n, err
		}
		n = next
		n.acc += v
	case isa.SUB:
		next, v, err := n.resolve(ix.Src)
		if err != nil {
			return n, err
		}
		n = next
		n.acc -= v
	default:
		panic(fmt.Sprintf("tisvm: cannot execute %v", ix))
	}
	n.pc++
	return n, nil
}

// resolve reads the value of src.
// Reading the port consumes a value, so the node is returned as well.
func (n Node) resolve(src isa.Source) (Node, int32, error) {
	switch src.Kind {
	case isa.PortOperand:
		up, v, ok := n.up.Read()
		if !ok {
			return n, 0, ErrEmptyPort
		}
		n.up = up
		return n, v, nil
	case isa.RegisterOperand:
		if src.Reg == isa.ACC {
			return n, n.acc, nil
		}
		return n, 0, nil
	case isa.LiteralOperand:
		return n, src.Lit, nil
	default:
		panic(fmt.Sprintf("tisvm: invalid source %v", src))
	}
}

// store writes v to dst. Writes to NIL are discarded.
func (n Node) store(dst isa.Destination, v int32) Node {
	switch dst.Kind {
	case isa.PortOperand:
		n.down = n.down.Write(v)
	case isa.RegisterOperand:
		if dst.Reg == isa.ACC {
			n.acc = v
		}
	default:
		panic(fmt.Sprintf("tisvm: invalid destination %v", dst))
	}
	return n
}
