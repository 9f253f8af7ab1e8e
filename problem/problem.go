// package problem loads the input/output pairs the search is asked to solve.
package problem

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"tis100.dev/superopt"
	"tis100.dev/superopt/isa"
	"tis100.dev/superopt/search"
	"tis100.dev/superopt/tisvm"
)

// Problem is a sequence of values fed to a node's up port, and the sequence
// expected on its down port.
type Problem struct {
	Name   string  `yaml:"name,omitempty" json:"name,omitempty"`
	Input  []int32 `yaml:"input" json:"input"`
	Output []int32 `yaml:"output" json:"output"`

	// MaxCycles and MaxLength override the search defaults when set.
	MaxCycles *uint64 `yaml:"max_cycles,omitempty" json:"max_cycles,omitempty"`
	MaxLength *int    `yaml:"max_length,omitempty" json:"max_length,omitempty"`
}

func New(input, output []int32) Problem {
	return Problem{Input: input, Output: output}
}

// Parse parses a problem from YAML.
//
//	input: [0, 1, 2, 3]
//	output: [1, 5]
func Parse(data []byte) (Problem, error) {
	return Load(bytes.NewReader(data))
}

// Load reads a problem from YAML in r.
func Load(r io.Reader) (Problem, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var p Problem
	if err := dec.Decode(&p); err != nil {
		if err == io.EOF {
			return Problem{}, fmt.Errorf("problem: empty document")
		}
		return Problem{}, fmt.Errorf("problem: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Problem{}, err
	}
	return p, nil
}

func LoadFile(p string) (Problem, error) {
	f, err := os.Open(p)
	if err != nil {
		return Problem{}, err
	}
	defer f.Close()
	prob, err := Load(f)
	if err != nil {
		return Problem{}, fmt.Errorf("loading %s: %w", p, err)
	}
	return prob, nil
}

func (p Problem) Validate() error {
	if p.MaxLength != nil && *p.MaxLength < 0 {
		return fmt.Errorf("problem: max_length must be >= 0. HAVE %d", *p.MaxLength)
	}
	return nil
}

// Node returns a fresh node with the problem's input queued on its up port.
func (p Problem) Node() tisvm.Node {
	return tisvm.New().Prime(p.Input...)
}

// Config returns defaults with the problem's overrides applied.
func (p Problem) Config(defaults search.Config) search.Config {
	cfg := defaults
	if p.MaxCycles != nil {
		cfg.MaxCycles = *p.MaxCycles
	}
	if p.MaxLength != nil {
		cfg.MaxProgramLength = *p.MaxLength
	}
	return cfg
}

// Check returns true if prog solves the problem within maxCycles.
func (p Problem) Check(prog isa.Program, maxCycles uint64) bool {
	return search.Check(p.Node(), prog, p.Output, maxCycles)
}

// ID identifies the problem by its input and output.
// The name and the search bounds do not contribute.
func (p Problem) ID() superopt.ID {
	return superopt.Hash(p.marshal(nil))
}

// marshal appends a canonical encoding of the input and output to out.
func (p Problem) marshal(out []byte) []byte {
	for _, xs := range [][]int32{p.Input, p.Output} {
		out = binary.BigEndian.AppendUint32(out, uint32(len(xs)))
		for _, x := range xs {
			out = binary.BigEndian.AppendUint32(out, uint32(x))
		}
	}
	return out
}

func (p Problem) String() string {
	if p.Name != "" {
		return fmt.Sprintf("%s %v -> %v", p.Name, p.Input, p.Output)
	}
	return fmt.Sprintf("%v -> %v", p.Input, p.Output)
}

// ParseValues parses a list of values separated by commas or whitespace,
// like "1, 2, 3".
func ParseValues(x string) ([]int32, error) {
	fields := strings.FieldsFunc(x, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	var ret []int32
	for _, f := range fields {
		v, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing values: %w", err)
		}
		ret = append(ret, int32(v))
	}
	return ret, nil
}
