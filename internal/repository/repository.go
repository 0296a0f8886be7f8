// Package repository provides the data access layer.
package repository

import (
	"context"
	"database/sql"
)

// DB is the subset of the sql pool the repositories need. Both *sql.DB
// and *sql.Tx satisfy it.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxRunner starts a transaction and runs fn inside it. The pool wrapper
// in internal/database satisfies it; a repository already bound to a
// *sql.Tx does not.
type TxRunner interface {
	Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error
}
