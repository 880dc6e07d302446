// Package repository provides data access for the script archive.
// Repositories accept either the database handle or a transaction carried in
// the context, so a batch can be archived atomically.
package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Queryable defines the common interface between *sqlx.DB and *sqlx.Tx.
type Queryable interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

// Compile-time verification that sqlx.DB and sqlx.Tx implement Queryable
var (
	_ Queryable = (*sqlx.DB)(nil)
	_ Queryable = (*sqlx.Tx)(nil)
)

// txContextKey is the context key for storing transactions
type txContextKey struct{}

// ContextWithTx stores a transaction in the context for use by repositories.
func ContextWithTx(ctx context.Context, tx Queryable) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext retrieves a transaction from context, or nil if not present.
func TxFromContext(ctx context.Context) Queryable {
	if tx, ok := ctx.Value(txContextKey{}).(Queryable); ok {
		return tx
	}
	return nil
}
