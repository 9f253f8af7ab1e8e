// package isa defines the instruction set of a single TIS-100 execution node
package isa

import "strings"

// Op is an instruction opcode
type Op uint8

const (
	Unknown Op = iota

	// NOP does nothing
	NOP
	// MOV (src: Source, dst: Destination) reads a value from src and writes it to dst
	MOV
	// SWP exchanges the accumulator and the backup register
	SWP
	// SAV copies the accumulator into the backup register
	SAV
	// ADD (src: Source) adds a value to the accumulator
	ADD
	// SUB (src: Source) subtracts a value from the accumulator
	SUB
)

// Info is information about an Op
type Info struct {
	Mnemonic string
	// Operands is the number of operands the Op takes in assembly.
	Operands int
}

func (o Op) Info() Info {
	if int(o) >= len(infos) {
		return Info{}
	}
	return infos[o]
}

func (o Op) String() string {
	if info := o.Info(); info.Mnemonic != "" {
		return info.Mnemonic
	}
	return "Op(" + itoa(int64(o)) + ")"
}

// HasSource returns true if the Op reads from a Source
func (o Op) HasSource() bool {
	return o == MOV || o == ADD || o == SUB
}

// HasDestination returns true if the Op writes to a Destination
func (o Op) HasDestination() bool {
	return o == MOV
}

// OpFromMnemonic looks up an Op by its assembly name, ignoring case.
func OpFromMnemonic(x string) (Op, bool) {
	op, ok := mnemonics[strings.ToUpper(x)]
	return op, ok
}

var infos = [...]Info{
	Unknown: {},

	NOP: {"NOP", 0},
	MOV: {"MOV", 2},
	SWP: {"SWP", 0},
	SAV: {"SAV", 0},
	ADD: {"ADD", 1},
	SUB: {"SUB", 1},
}

var mnemonics = func() map[string]Op {
	ret := make(map[string]Op, len(infos))
	for i, info := range infos {
		if info.Mnemonic != "" {
			ret[info.Mnemonic] = Op(i)
		}
	}
	return ret
}()
