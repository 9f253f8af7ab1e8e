// package solvedb stores the results of searches in a sqlite database.
package solvedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.brendoncarroll.net/exp/slices2"
	"go.brendoncarroll.net/tai64"

	"tis100.dev/superopt"
	"tis100.dev/superopt/isa"
	"tis100.dev/superopt/internal/dbutil"
)

// Key identifies a search: a problem and the bounds it was searched with.
type Key struct {
	ProblemID superopt.ID
	MaxCycles uint64
	MaxLength int
}

func (k Key) String() string {
	return fmt.Sprintf("%v/%d/%d", k.ProblemID, k.MaxCycles, k.MaxLength)
}

// Solution is the outcome of a search.
// Searches which found nothing are stored too, with Found = false.
type Solution struct {
	Key
	Name   string
	Input  []int32
	Output []int32

	Found   bool
	Program isa.Program
	// Index is the enumeration number of Program.
	Index uint64
	Tried uint64

	SolvedAt Timestamp
}

// Timestamp is a TAI64N time.
type Timestamp struct {
	Seconds     uint64
	Nanoseconds uint32
}

func Now() Timestamp {
	ts := tai64.Now()
	return Timestamp{Seconds: uint64(ts.Seconds), Nanoseconds: uint32(ts.Nanoseconds)}
}

// String returns the external TAI64N label.
func (ts Timestamp) String() string {
	return fmt.Sprintf("@%016x%08x", ts.Seconds, ts.Nanoseconds)
}

func (a Timestamp) Compare(b Timestamp) int {
	switch {
	case a.Seconds != b.Seconds:
		if a.Seconds < b.Seconds {
			return -1
		}
		return 1
	case a.Nanoseconds < b.Nanoseconds:
		return -1
	case a.Nanoseconds > b.Nanoseconds:
		return 1
	}
	return 0
}

type ErrNotFound struct {
	Key Key
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("no solution for %v", e.Key)
}

func IsNotFound(err error) bool {
	return errors.As(err, new(ErrNotFound))
}

// DB is a store of Solutions.
type DB struct {
	db *sqlx.DB
}

// New returns a DB using db, which must already be Setup.
func New(db *sqlx.DB) *DB {
	return &DB{db: db}
}

// Put inserts sol, replacing any solution with the same Key.
func (s *DB) Put(ctx context.Context, sol Solution) error {
	r, err := toRow(sol)
	if err != nil {
		return err
	}
	return dbutil.DoTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `INSERT OR REPLACE INTO solutions (
			problem_id, max_cycles, max_length, name, input, output,
			found, program, content, enum_index, tried, solved_at_sec, solved_at_nsec
		) VALUES (
			:problem_id, :max_cycles, :max_length, :name, :input, :output,
			:found, :program, :content, :enum_index, :tried, :solved_at_sec, :solved_at_nsec
		)`, r)
		return err
	})
}

// Get returns the solution stored under k, or ErrNotFound.
func (s *DB) Get(ctx context.Context, k Key) (*Solution, error) {
	r, err := dbutil.DoTx1(ctx, s.db, func(tx *sqlx.Tx) (row, error) {
		var r row
		err := tx.GetContext(ctx, &r, `SELECT * FROM solutions
			WHERE problem_id = ? AND max_cycles = ? AND max_length = ?`,
			k.ProblemID, int64(k.MaxCycles), int64(k.MaxLength))
		return r, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound{Key: k}
	}
	if err != nil {
		return nil, err
	}
	sol, err := r.solution()
	if err != nil {
		return nil, err
	}
	return &sol, nil
}

// List returns every solution, most recent first.
func (s *DB) List(ctx context.Context) ([]Solution, error) {
	rows, err := dbutil.DoTx1(ctx, s.db, func(tx *sqlx.Tx) ([]row, error) {
		var rows []row
		err := tx.SelectContext(ctx, &rows, `SELECT * FROM solutions
			ORDER BY solved_at_sec DESC, solved_at_nsec DESC`)
		return rows, err
	})
	if err != nil {
		return nil, err
	}
	ret := make([]Solution, 0, len(rows))
	for _, r := range rows {
		sol, err := r.solution()
		if err != nil {
			return nil, err
		}
		ret = append(ret, sol)
	}
	return ret, nil
}

// Delete removes every solution for the problem, under any bounds.
// It returns the number of solutions removed.
func (s *DB) Delete(ctx context.Context, id superopt.ID) (int64, error) {
	return dbutil.DoTx1(ctx, s.db, func(tx *sqlx.Tx) (int64, error) {
		res, err := tx.ExecContext(ctx, `DELETE FROM solutions WHERE problem_id = ?`, id)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
}

// row is a solution as it is stored.
// sqlite integers are signed, so unsigned values are stored with the same bits.
type row struct {
	ProblemID superopt.ID `db:"problem_id"`
	MaxCycles int64       `db:"max_cycles"`
	MaxLength int64       `db:"max_length"`
	Name      string      `db:"name"`
	Input     string      `db:"input"`
	Output    string      `db:"output"`

	Found   bool   `db:"found"`
	Program string `db:"program"`
	Content int64  `db:"content"`
	Index   int64  `db:"enum_index"`
	Tried   int64  `db:"tried"`

	SolvedAtSec  int64 `db:"solved_at_sec"`
	SolvedAtNsec int64 `db:"solved_at_nsec"`
}

func toRow(sol Solution) (row, error) {
	input, err := json.Marshal(nonNil(sol.Input))
	if err != nil {
		return row{}, err
	}
	output, err := json.Marshal(nonNil(sol.Output))
	if err != nil {
		return row{}, err
	}
	return row{
		ProblemID: sol.ProblemID,
		MaxCycles: int64(sol.MaxCycles),
		MaxLength: int64(sol.MaxLength),
		Name:      sol.Name,
		Input:     string(input),
		Output:    string(output),

		Found:   sol.Found,
		Program: sol.Program.String(),
		Content: int64(sol.Program.Content()),
		Index:   int64(sol.Index),
		Tried:   int64(sol.Tried),

		SolvedAtSec:  int64(sol.SolvedAt.Seconds),
		SolvedAtNsec: int64(sol.SolvedAt.Nanoseconds),
	}, nil
}

func (r row) solution() (Solution, error) {
	var input, output []int32
	if err := json.Unmarshal([]byte(r.Input), &input); err != nil {
		return Solution{}, fmt.Errorf("solution %v: input: %w", r.ProblemID, err)
	}
	if err := json.Unmarshal([]byte(r.Output), &output); err != nil {
		return Solution{}, fmt.Errorf("solution %v: output: %w", r.ProblemID, err)
	}
	prog, err := isa.ParseProgram(r.Program)
	if err != nil {
		return Solution{}, fmt.Errorf("solution %v: program: %w", r.ProblemID, err)
	}
	return Solution{
		Key: Key{
			ProblemID: r.ProblemID,
			MaxCycles: uint64(r.MaxCycles),
			MaxLength: int(r.MaxLength),
		},
		Name:   r.Name,
		Input:  emptyToNil(input),
		Output: emptyToNil(output),

		Found:   r.Found,
		Program: prog,
		Index:   uint64(r.Index),
		Tried:   uint64(r.Tried),

		SolvedAt: Timestamp{Seconds: uint64(r.SolvedAtSec), Nanoseconds: uint32(r.SolvedAtNsec)},
	}, nil
}

func nonNil(xs []int32) []int32 {
	if xs == nil {
		return []int32{}
	}
	return xs
}

func emptyToNil(xs []int32) []int32 {
	if len(xs) == 0 {
		return nil
	}
	return xs
}

// Keys returns the keys of sols, in order.
func Keys(sols []Solution) []Key {
	return slices2.Map(sols, func(sol Solution) Key { return sol.Key })
}
