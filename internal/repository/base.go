package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// BaseRepository provides the table-level operations shared by repositories.
type BaseRepository[T any] struct {
	db        *sqlx.DB
	tableName string
}

// NewBaseRepository creates a new base repository for the given table.
func NewBaseRepository[T any](db *sqlx.DB, tableName string) *BaseRepository[T] {
	return &BaseRepository[T]{
		db:        db,
		tableName: tableName,
	}
}

// getQueryable returns the transaction from context if present, otherwise the db.
func (r *BaseRepository[T]) getQueryable(ctx context.Context) Queryable {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// GetBy retrieves the single record matching condition.
func (r *BaseRepository[T]) GetBy(ctx context.Context, condition string, args ...any) (*T, error) {
	var result T
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT 1", r.tableName, condition)

	if err := r.getQueryable(ctx).GetContext(ctx, &result, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, ParseDBError(err)
	}
	return &result, nil
}

// CountBy counts records matching a condition.
// The condition should be a valid SQL WHERE clause fragment.
func (r *BaseRepository[T]) CountBy(ctx context.Context, condition string, args ...any) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", r.tableName, condition)

	if err := r.getQueryable(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, ParseDBError(err)
	}
	return count, nil
}

// SelectBy returns one page of records matching condition in the given order.
func (r *BaseRepository[T]) SelectBy(ctx context.Context, condition, orderBy string, limit, offset int, args ...any) ([]T, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY %s LIMIT ? OFFSET ?", r.tableName, condition, orderBy)
	args = append(args, limit, offset)

	var result []T
	if err := r.getQueryable(ctx).SelectContext(ctx, &result, query, args...); err != nil {
		return nil, ParseDBError(err)
	}
	return result, nil
}

// DeleteBy hard deletes every record matching condition and returns the count.
func (r *BaseRepository[T]) DeleteBy(ctx context.Context, condition string, args ...any) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", r.tableName, condition)
	result, err := r.getQueryable(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, ParseDBError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, ParseDBError(err)
	}
	return rowsAffected, nil
}
