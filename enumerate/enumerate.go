// package enumerate lists every program over a fixed instruction alphabet.
//
// Programs are numbered by a counter. The counter is written in bijective
// base len(Alphabet()), least significant digit first, and each digit picks an
// instruction. 0 is the empty program, 1..33 are the single instructions, and
// so on. Programs never get shorter as the counter grows, and within a length
// lower content instructions come first in each position.
//
// The order only approximates increasing content: a long program of cheap
// instructions comes after a short program of expensive ones.
package enumerate

import (
	"math"
	"slices"

	"tis100.dev/superopt/isa"
)

var (
	alphabet = buildAlphabet()
	digits   = func() map[isa.Instruction]uint64 {
		ret := make(map[isa.Instruction]uint64, len(alphabet))
		for i, ix := range alphabet {
			ret[ix] = uint64(i) + 1
		}
		return ret
	}()
	radix = uint64(len(alphabet))
)

// Sources are the operands that instructions in the alphabet read from.
func Sources() []isa.Source {
	return []isa.Source{
		isa.SrcPort,
		isa.SrcReg(isa.NIL),
		isa.SrcReg(isa.ACC),
		isa.Lit(-1),
		isa.Lit(0),
		isa.Lit(1),
	}
}

// Destinations are the operands that instructions in the alphabet write to.
func Destinations() []isa.Destination {
	return []isa.Destination{
		isa.DstPort,
		isa.DstReg(isa.NIL),
		isa.DstReg(isa.ACC),
	}
}

func buildAlphabet() []isa.Instruction {
	ret := []isa.Instruction{isa.Nop(), isa.Swp(), isa.Sav()}
	for _, mk := range []func(isa.Source) isa.Instruction{isa.Add, isa.Sub} {
		for _, src := range Sources() {
			ret = append(ret, mk(src))
		}
	}
	for _, src := range Sources() {
		for _, dst := range Destinations() {
			ret = append(ret, isa.Mov(src, dst))
		}
	}
	slices.SortStableFunc(ret, func(a, b isa.Instruction) int {
		return int(a.Content()) - int(b.Content())
	})
	return ret
}

// Alphabet returns the instructions programs are built from, in digit order.
func Alphabet() []isa.Instruction {
	return slices.Clone(alphabet)
}

// Radix is the number of instructions in the alphabet.
func Radix() uint64 {
	return radix
}

// Decode returns the program numbered n.
// It is defined for every n.
func Decode(n uint64) isa.Program {
	var prog isa.Program
	for n > 0 {
		n--
		prog = append(prog, alphabet[n%radix])
		n /= radix
	}
	return prog
}

// Encode returns the number of prog.
// It returns false if prog contains an instruction outside the alphabet or
// its number does not fit in a uint64.
func Encode(prog isa.Program) (uint64, bool) {
	var n uint64
	for i := len(prog) - 1; i >= 0; i-- {
		d, ok := digits[prog[i]]
		if !ok {
			return 0, false
		}
		if n > (math.MaxUint64-d)/radix {
			return 0, false
		}
		n = n*radix + d
	}
	return n, true
}

// FirstOfLength returns the number of the first program with l instructions,
// which is also the count of programs shorter than l.
// It returns false if that number does not fit in a uint64.
func FirstOfLength(l int) (uint64, bool) {
	var n, pow uint64 = 0, 1
	for i := 0; i < l; i++ {
		if n > math.MaxUint64-pow {
			return 0, false
		}
		n += pow
		if i+1 < l {
			if pow > math.MaxUint64/radix {
				return 0, false
			}
			pow *= radix
		}
	}
	return n, true
}

// Enumerator produces every program in counter order, starting from the empty
// program. It can only be restarted by creating a new one.
type Enumerator struct {
	next uint64
}

func New() *Enumerator {
	return &Enumerator{}
}

// Next returns the next program and its number.
func (e *Enumerator) Next() (uint64, isa.Program) {
	n := e.next
	e.next++
	return n, Decode(n)
}

// Count is the number of programs produced so far.
func (e *Enumerator) Count() uint64 {
	return e.next
}
