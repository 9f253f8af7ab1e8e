package tiscmd

import (
	"fmt"
	"strconv"
	"strings"

	"go.brendoncarroll.net/exp/slices2"
	"go.brendoncarroll.net/star"

	"tis100.dev/superopt/enumerate"
	"tis100.dev/superopt/isa"
	"tis100.dev/superopt/search"
	"tis100.dev/superopt/solvedb"
	"tis100.dev/superopt/solver"
	"tis100.dev/superopt/tisvm"
)

var optimize = star.Command{
	Metadata: star.Metadata{
		Short: "find the first program which solves a problem file. bounds in the file take precedence over flags",
	},
	Flags: []star.IParam{DBParam, cyclesParam, lengthParam, workersParam},
	Pos:   []star.IParam{problemParam},
	F: func(c star.Context) error {
		ctx := newContext(c)
		db := solvedb.New(DBParam.Load(c))
		s := solver.New(db, 0, workersParam.Load(c))
		p := problemParam.Load(c)
		cfg := p.Config(search.NewConfig(cyclesParam.Load(c), lengthParam.Load(c)))
		sol, err := s.Solve(ctx, p, cfg)
		if err != nil {
			return err
		}
		if !sol.Found {
			c.Printf("Could not find a program within the bounds\n")
			return nil
		}
		if len(sol.Program) > 0 {
			c.Printf("%v\n", sol.Program)
		}
		c.Printf("# %d instructions, content %d, program %d, %d tried\n",
			len(sol.Program), sol.Program.Content(), sol.Index, sol.Tried)
		return nil
	},
}

var check = star.Command{
	Metadata: star.Metadata{
		Short: "check that a program solves a problem",
	},
	Flags: []star.IParam{cyclesParam},
	Pos:   []star.IParam{problemParam, programParam},
	F: func(c star.Context) error {
		p := problemParam.Load(c)
		prog := programParam.Load(c)
		maxCycles := cyclesParam.Load(c)
		if p.MaxCycles != nil {
			maxCycles = *p.MaxCycles
		}
		if !p.Check(prog, maxCycles) {
			return fmt.Errorf("FAIL: program does not solve %v", p)
		}
		c.Printf("PASS\n")
		return nil
	},
}

var run = star.Command{
	Metadata: star.Metadata{
		Short: "run a program on a node with input on its up port",
	},
	Flags: []star.IParam{inputParam, cyclesParam},
	Pos:   []star.IParam{programParam},
	F: func(c star.Context) error {
		prog := programParam.Load(c)
		node := tisvm.New().Prime(inputParam.Load(c)...).Load(prog)
		end, err := node.Run(cyclesParam.Load(c))
		c.Printf("OUTCOME: %v\n", tisvm.OutcomeOf(err))
		if err != nil {
			c.Printf("ERROR: %v\n", err)
		}
		c.Printf("OUTPUT: %v\n", end.Down().Output())
		c.Printf("ACC: %d\n", end.ACC())
		return nil
	},
}

var countParam = star.Param[uint64]{
	Name:    "n",
	Default: star.Ptr("34"),
	Parse:   parseUint64,
}

var startParam = star.Param[uint64]{
	Name:    "start",
	Default: star.Ptr("0"),
	Parse:   parseUint64,
}

func parseUint64(x string) (uint64, error) {
	return strconv.ParseUint(x, 10, 64)
}

var enum = star.Command{
	Metadata: star.Metadata{
		Short: "print programs in the order the search tries them",
	},
	Flags: []star.IParam{startParam, countParam},
	F: func(c star.Context) error {
		start, count := startParam.Load(c), countParam.Load(c)
		c.Printf("%-8s %-8s %s\n", "INDEX", "CONTENT", "PROGRAM")
		for i := uint64(0); i < count; i++ {
			n := start + i
			if n < start {
				break
			}
			prog := enumerate.Decode(n)
			c.Printf("%-8d %-8d %s\n", n, prog.Content(), oneLine(prog))
		}
		return nil
	},
}

func oneLine(prog isa.Program) string {
	return strings.Join(slices2.Map([]isa.Instruction(prog), isa.Instruction.String), "; ")
}
