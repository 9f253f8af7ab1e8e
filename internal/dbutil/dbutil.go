// package dbutil opens sqlite databases and runs transactions against them.
package dbutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Open opens the sqlite database at p.
// p can be ":memory:" for a database which only lives as long as the returned handle.
func Open(p string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer, and every connection to ":memory:" is a different database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring sqlite: %w", err)
	}
	return db, nil
}

// DoTx runs fn in a transaction, committing if fn returns nil and rolling back otherwise.
func DoTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

// DoTx1 is DoTx for a function returning a value.
func DoTx1[T any](ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) (T, error)) (T, error) {
	var ret T
	err := DoTx(ctx, db, func(tx *sqlx.Tx) error {
		var err error
		ret, err = fn(tx)
		return err
	})
	return ret, err
}

// NewTestDB returns an in-memory database which is closed when the test is done.
func NewTestDB(t testing.TB) *sqlx.DB {
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
