package tisvm

import "slices"

// Port is the IO channel of a Node: a queue of values to read and a queue of
// values written.
//
// Ports are values. Read and Write return new Ports and never modify the
// receiver, so Ports can be shared between hypothetical executions.
type Port struct {
	input  []int32
	output []int32
}

// NewPort creates a port with a number of readable values
func NewPort(input ...int32) Port {
	return Port{input: slices.Clone(input)}
}

// PortWith creates a port with prescribed input and output
func PortWith(input, output []int32) Port {
	return Port{input: slices.Clone(input), output: slices.Clone(output)}
}

// Read removes the first input value.
// ok is false when there is nothing to read.
func (p Port) Read() (next Port, v int32, ok bool) {
	if len(p.input) == 0 {
		return p, 0, false
	}
	return Port{input: p.input[1:], output: p.output}, p.input[0], true
}

// Write appends v to the output. It always succeeds.
func (p Port) Write(v int32) Port {
	// the full slice expression forces append to copy, so the array shared with p is never written.
	n := len(p.output)
	return Port{input: p.input, output: append(p.output[:n:n], v)}
}

// Available returns true if there is input left to read.
func (p Port) Available() bool {
	return len(p.input) > 0
}

// Input returns a copy of the values left to read, or nil if there are none.
func (p Port) Input() []int32 {
	return cloneNonEmpty(p.input)
}

// Output returns a copy of the values written so far, or nil if there are none.
func (p Port) Output() []int32 {
	return cloneNonEmpty(p.output)
}

// OutputEquals returns true if the output is exactly xs.
func (p Port) OutputEquals(xs []int32) bool {
	return slices.Equal(p.output, xs)
}

func (p Port) Equal(other Port) bool {
	return slices.Equal(p.input, other.input) && slices.Equal(p.output, other.output)
}

func cloneNonEmpty(xs []int32) []int32 {
	if len(xs) == 0 {
		return nil
	}
	return slices.Clone(xs)
}
