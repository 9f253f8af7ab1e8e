// package search finds programs which turn a node's input into an expected output.
package search

import (
	"tis100.dev/superopt/isa"
	"tis100.dev/superopt/tisvm"
)

// Check returns true if node, running prog for at most maxCycles passes,
// writes exactly expected to its down port.
// Deadlocks and timeouts are failures.
func Check(node tisvm.Node, prog isa.Program, expected []int32, maxCycles uint64) bool {
	end, err := node.Load(prog).Run(maxCycles)
	if err != nil {
		return false
	}
	return end.Down().OutputEquals(expected)
}
