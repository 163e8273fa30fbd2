// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/sowgen/apperr"
)

// ErrTaskFinished is returned when a transition is attempted on a task that
// already reached a terminal status.
var ErrTaskFinished = errors.New("task already finished")

// Store provides SQL-backed persistence for projects, sessions, tasks and
// documents. It works against PostgreSQL and SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New wraps an open database connection.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// withTx runs fn in a transaction, committing only if fn returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Persistence("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Persistence("commit transaction", err)
	}
	return nil
}

// expectOneRow distinguishes "no row matched" from a successful update.
func expectOneRow(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Persistence(fmt.Sprintf("%s rows affected", op), err)
	}
	return n == 1, nil
}
