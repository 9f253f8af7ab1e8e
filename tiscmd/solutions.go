package tiscmd

import (
	"go.brendoncarroll.net/star"

	"tis100.dev/superopt/solvedb"
	"tis100.dev/superopt/solver"
	"tis100.dev/superopt/tisweb"
)

var solutions = star.NewDir(star.Metadata{
	Short: "inspect the solutions stored in a database",
}, map[star.Symbol]star.Command{
	"list": listSolutions,
	"drop": dropSolutions,
})

var listSolutions = star.Command{
	Metadata: star.Metadata{
		Short: "list stored solutions, most recent first",
		Tags:  []string{"db"},
	},
	Flags: []star.IParam{DBParam},
	F: func(c star.Context) error {
		db := solvedb.New(DBParam.Load(c))
		sols, err := db.List(c)
		if err != nil {
			return err
		}
		c.Printf("%-44s %-6s %-6s %-6s %s\n", "PROBLEM", "CYCLES", "LENGTH", "FOUND", "PROGRAM")
		for _, sol := range sols {
			c.Printf("%-44v %-6d %-6d %-6t %s\n", sol.ProblemID, sol.MaxCycles, sol.MaxLength, sol.Found, oneLine(sol.Program))
		}
		return nil
	},
}

var dropSolutions = star.Command{
	Metadata: star.Metadata{
		Short: "remove the solutions for a problem",
		Tags:  []string{"db"},
	},
	Flags: []star.IParam{DBParam},
	Pos:   []star.IParam{problemIDParam},
	F: func(c star.Context) error {
		db := solvedb.New(DBParam.Load(c))
		n, err := db.Delete(c, problemIDParam.Load(c))
		if err != nil {
			return err
		}
		c.Printf("dropped %d solutions\n", n)
		return nil
	},
}

var serve = star.Command{
	Metadata: star.Metadata{
		Short: "serve the solver over HTTP",
	},
	Flags: []star.IParam{DBParam, ListenerParam, workersParam, limitCyclesParam, limitLengthParam, timeoutParam},
	F: func(c star.Context) error {
		ctx := newContext(c)
		db := solvedb.New(DBParam.Load(c))
		s := solver.New(db, 0, workersParam.Load(c))
		lis := ListenerParam.Load(c)
		lim := tisweb.DefaultLimits()
		lim.MaxCycles = limitCyclesParam.Load(c)
		lim.MaxProgramLength = limitLengthParam.Load(c)
		lim.Timeout = timeoutParam.Load(c)
		return tisweb.Serve(ctx, lis, s, db, lim)
	},
}
