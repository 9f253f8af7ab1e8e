// package tiscmd implements the tisopt command line tool.
package tiscmd

import (
	"context"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.brendoncarroll.net/star"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"tis100.dev/superopt"
	"tis100.dev/superopt/isa"
	"tis100.dev/superopt/problem"
	"tis100.dev/superopt/solvedb"
	"tis100.dev/superopt/tisweb"
	"tis100.dev/superopt/tisvm"
)

func Root() star.Command {
	return root
}

var root = star.NewDir(star.Metadata{
	Short: "search for the shortest TIS-100 node programs",
}, map[star.Symbol]star.Command{
	"optimize": optimize,
	"check":    check,
	"run":      run,
	"enum":     enum,

	"solutions": solutions,
	"serve":     serve,
})

var DBParam = star.Param[*sqlx.DB]{
	Name:    "db",
	Default: star.Ptr(":memory:"),
	Parse: func(x string) (*sqlx.DB, error) {
		db, err := solvedb.Open(x)
		if err != nil {
			return nil, err
		}
		if err := solvedb.Setup(context.Background(), db); err != nil {
			return nil, err
		}
		return db, nil
	},
}

var ListenerParam = star.Param[net.Listener]{
	Name:    "l",
	Default: star.Ptr("127.0.0.1:6100"),
	Parse: func(x string) (net.Listener, error) {
		return net.Listen("tcp", x)
	},
}

var problemParam = star.Param[problem.Problem]{
	Name:  "problem",
	Parse: problem.LoadFile,
}

var programParam = star.Param[isa.Program]{
	Name: "program",
	Parse: func(x string) (isa.Program, error) {
		data, err := os.ReadFile(x)
		if err != nil {
			return nil, err
		}
		prog, err := isa.ParseProgram(string(data))
		if err != nil {
			return nil, err
		}
		return prog, prog.Validate()
	},
}

var problemIDParam = star.Param[superopt.ID]{
	Name:  "id",
	Parse: superopt.ParseID,
}

var cyclesParam = star.Param[uint64]{
	Name:    "cycles",
	Default: star.Ptr(strconv.Itoa(superopt.DefaultMaxCycles)),
	Parse:   parseCycles,
}

var lengthParam = star.Param[int]{
	Name:    "length",
	Default: star.Ptr(strconv.Itoa(superopt.DefaultMaxProgramLength)),
	Parse:   strconv.Atoi,
}

var workersParam = star.Param[int]{
	Name:    "workers",
	Default: star.Ptr("0"),
	Parse:   strconv.Atoi,
}

var limitCyclesParam = star.Param[uint64]{
	Name:    "max-cycles",
	Default: star.Ptr(strconv.FormatUint(tisweb.DefaultLimits().MaxCycles, 10)),
	Parse:   parseCycles,
}

var limitLengthParam = star.Param[int]{
	Name:    "max-length",
	Default: star.Ptr(strconv.Itoa(tisweb.DefaultLimits().MaxProgramLength)),
	Parse:   strconv.Atoi,
}

var timeoutParam = star.Param[time.Duration]{
	Name:    "timeout",
	Default: star.Ptr(tisweb.DefaultLimits().Timeout.String()),
	Parse:   time.ParseDuration,
}

var inputParam = star.Param[[]int32]{
	Name:    "input",
	Default: star.Ptr(""),
	Parse:   problem.ParseValues,
}

// parseCycles parses a cycle budget, which can be "unlimited".
func parseCycles(x string) (uint64, error) {
	if strings.EqualFold(x, "unlimited") {
		return tisvm.Unlimited, nil
	}
	return strconv.ParseUint(x, 10, 64)
}

// newContext returns the command's context with a logger attached.
func newContext(c star.Context) context.Context {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logctx.NewContext(c.Context, l)
}
