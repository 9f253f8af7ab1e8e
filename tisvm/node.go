// package tisvm implements a single TIS-100 execution node.
//
// Nodes and Ports are immutable values: executing an instruction returns a new
// Node and leaves the old one untouched. Many executions can start from the
// same Node, concurrently, without copying it first.
package tisvm

import (
	"fmt"

	"tis100.dev/superopt/isa"
)

type Node struct {
	acc int32
	// bac is the backup register. It is only reachable through SWP and SAV.
	bac int32
	pc  uint32

	prog isa.Program
	up   Port
	down Port
}

// New creates a node with zero registers, an empty program and empty ports.
func New() Node {
	return Node{}
}

// Load replaces the program and resets the program counter.
// Registers and ports are kept.
// prog is not validated; Run panics on instructions which fail isa.Instruction.Validate.
func (n Node) Load(prog isa.Program) Node {
	n.prog = prog.Clone()
	n.pc = 0
	return n
}

// Prime replaces the values waiting to be read on the up port.
func (n Node) Prime(input ...int32) Node {
	n.up = PortWith(input, n.up.output)
	return n
}

// ACC returns the accumulator
func (n Node) ACC() int32 {
	return n.acc
}

// PC returns the index of the next instruction
func (n Node) PC() uint32 {
	return n.pc
}

func (n Node) Program() isa.Program {
	return n.prog.Clone()
}

// Up is the port the node reads from
func (n Node) Up() Port {
	return n.up
}

// Down is the port the node writes to
func (n Node) Down() Port {
	return n.down
}

func (n Node) String() string {
	return fmt.Sprintf("{acc=%d pc=%d/%d up=%v down=%v}", n.acc, n.pc, len(n.prog), n.up.input, n.down.output)
}
