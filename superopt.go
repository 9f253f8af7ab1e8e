// package superopt searches for the shortest TIS-100 node programs that turn
// an input sequence into an output sequence.
package superopt

import (
	"lukechampine.com/blake3"
)

const (
	// DefaultMaxCycles is the number of program passes a candidate may take
	// before it is considered to have timed out.
	DefaultMaxCycles = 10
	// DefaultMaxProgramLength is the longest program the search will consider.
	DefaultMaxProgramLength = 3
)

// Hash returns the blake3 hash of x.
func Hash(x []byte) ID {
	return blake3.Sum256(x)
}
