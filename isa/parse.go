package isa

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrParse is returned when assembly text cannot be parsed.
type ErrParse struct {
	// Line is 1-based. It is 0 when parsing a single instruction.
	Line int
	Text string
	Msg  string
}

func (e ErrParse) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %q: %s", e.Line, e.Text, e.Msg)
	}
	return fmt.Sprintf("%q: %s", e.Text, e.Msg)
}

// ParseProgram parses one instruction per line.
// Blank lines and text after '#' are ignored.
func ParseProgram(x string) (Program, error) {
	var prog Program
	for i, line := range strings.Split(x, "\n") {
		if j := strings.IndexByte(line, '#'); j >= 0 {
			line = line[:j]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ix, err := ParseInstruction(line)
		if err != nil {
			if perr, ok := err.(ErrParse); ok {
				perr.Line = i + 1
				return nil, perr
			}
			return nil, err
		}
		prog = append(prog, ix)
	}
	return prog, nil
}

// ParseInstruction parses the form produced by Instruction.String.
// Operands may be separated by commas or whitespace.
func ParseInstruction(x string) (Instruction, error) {
	fields := strings.FieldsFunc(x, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return Instruction{}, ErrParse{Text: x, Msg: "empty instruction"}
	}
	op, ok := OpFromMnemonic(fields[0])
	if !ok {
		return Instruction{}, ErrParse{Text: x, Msg: fmt.Sprintf("unknown op %q", fields[0])}
	}
	args := fields[1:]
	if want := op.Info().Operands; len(args) != want {
		return Instruction{}, ErrParse{Text: x, Msg: fmt.Sprintf("%v takes %d operands, have %d", op, want, len(args))}
	}
	ix := Instruction{Op: op}
	if op.HasSource() {
		src, err := parseSource(args[0])
		if err != nil {
			return Instruction{}, ErrParse{Text: x, Msg: err.Error()}
		}
		ix.Src = src
	}
	if op.HasDestination() {
		dst, err := parseDestination(args[1])
		if err != nil {
			return Instruction{}, ErrParse{Text: x, Msg: err.Error()}
		}
		ix.Dst = dst
	}
	return ix, nil
}

func parseSource(x string) (Source, error) {
	switch strings.ToUpper(x) {
	case "UP":
		return SrcPort, nil
	case "NIL":
		return SrcReg(NIL), nil
	case "ACC":
		return SrcReg(ACC), nil
	}
	v, err := strconv.ParseInt(x, 10, 32)
	if err != nil {
		return Source{}, fmt.Errorf("invalid source %q", x)
	}
	return Lit(int32(v)), nil
}

func parseDestination(x string) (Destination, error) {
	switch strings.ToUpper(x) {
	case "DOWN":
		return DstPort, nil
	case "NIL":
		return DstReg(NIL), nil
	case "ACC":
		return DstReg(ACC), nil
	}
	return Destination{}, fmt.Errorf("invalid destination %q", x)
}
