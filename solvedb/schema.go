package solvedb

import (
	"context"

	"github.com/jmoiron/sqlx"

	"tis100.dev/superopt/internal/dbutil"
)

func Open(p string) (*sqlx.DB, error) {
	return dbutil.Open(p)
}

// Setup creates the tables used by a DB if they do not exist.
func Setup(ctx context.Context, db *sqlx.DB) error {
	return dbutil.DoTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS solutions (
		problem_id BLOB NOT NULL,
		max_cycles INTEGER NOT NULL,
		max_length INTEGER NOT NULL,

		name TEXT NOT NULL DEFAULT '',
		input TEXT NOT NULL,
		output TEXT NOT NULL,

		found INTEGER NOT NULL,
		program TEXT NOT NULL,
		content INTEGER NOT NULL,
		enum_index INTEGER NOT NULL,
		tried INTEGER NOT NULL,

		solved_at_sec INTEGER NOT NULL,
		solved_at_nsec INTEGER NOT NULL,

		PRIMARY KEY(problem_id, max_cycles, max_length)
	) WITHOUT ROWID, STRICT`,
	`CREATE INDEX IF NOT EXISTS solutions_solved_at ON solutions (solved_at_sec, solved_at_nsec)`,
}
