package tisvm

import (
	"errors"
	"fmt"
	"math"
)

// Unlimited can be passed to Run to keep restarting the program for as long
// as there is input.
const Unlimited = math.MaxUint64

// ErrDeadlock is returned by Run when an instruction needs input which will
// not arrive during the current pass.
type ErrDeadlock struct {
	// Node is the state before the instruction which could not complete.
	Node Node
}

func (e ErrDeadlock) Error() string {
	return fmt.Sprintf("deadlock at pc=%d: %v", e.Node.pc, e.Node)
}

func (e ErrDeadlock) Unwrap() error {
	return ErrEmptyPort
}

// ErrTimeout is returned by Run when input remains but the cycle budget has
// been used up. It does not mean the program is wrong.
type ErrTimeout struct {
	Node   Node
	Cycles uint64
}

func (e ErrTimeout) Error() string {
	return fmt.Sprintf("timeout after %d cycles: %v", e.Cycles, e.Node)
}

// Run executes the loaded program, restarting it from the top each time it
// reaches the end while there is still input to read.
// Each pass over the program is one cycle.
//
// Run returns the final Node, or an ErrDeadlock or ErrTimeout holding the
// Node at the point of failure.
func (n Node) Run(maxCycles uint64) (Node, error) {
	if len(n.prog) == 0 {
		// there is nothing that could consume the input.
		return n, nil
	}
	var cycles uint64
	for {
		if int(n.pc) < len(n.prog) {
			next, err := n.Execute(n.prog[n.pc])
			if err != nil {
				return n, ErrDeadlock{Node: n}
			}
			n = next
			continue
		}
		cycles++
		if !n.up.Available() {
			return n, nil
		}
		if cycles >= maxCycles {
			return n, ErrTimeout{Node: n, Cycles: cycles}
		}
		n.pc = 0
	}
}

// Outcome classifies the result of Run
type Outcome uint8

const (
	Success Outcome = iota
	Deadlock
	Timeout
)

// OutcomeOf returns the Outcome for an error returned by Run.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return Success
	case errors.As(err, &ErrDeadlock{}):
		return Deadlock
	case errors.As(err, &ErrTimeout{}):
		return Timeout
	default:
		panic(fmt.Sprintf("tisvm: %v is not a run outcome", err))
	}
}

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Deadlock:
		return "deadlock"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}
