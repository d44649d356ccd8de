// Package repository runs queries and transactions over database/sql for
// the domain packages, which supply their own scan functions.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/JaimeStill/inquest/pkg/pagination"
	"github.com/JaimeStill/inquest/pkg/query"
)

// Querier is satisfied by *sql.DB, *sql.Tx, and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor is satisfied by *sql.DB, *sql.Tx, and *sql.Conn.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Scanner is a *sql.Row or *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

type ScanFunc[T any] func(Scanner) (T, error)

// WithTx runs fn in a transaction, committing when fn succeeds and
// rolling back otherwise.
func WithTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("begin: %w", err)
	}

	out, err := fn(tx)
	if err != nil {
		tx.Rollback()
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// QueryOne scans the first row. A query with no rows yields sql.ErrNoRows.
func QueryOne[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) (T, error) {
	return scan(q.QueryRowContext(ctx, query, args...))
}

// QueryMany scans every row. No rows yields an empty, non-nil slice.
func QueryMany[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ListPage counts the rows qb selects and scans the page requested.
// Sort fields on page replace the builder's default order.
func ListPage[T any](
	ctx context.Context,
	q Querier,
	qb *query.Builder,
	page pagination.PageRequest,
	scan ScanFunc[T],
) (*pagination.PageResult[T], error) {
	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := q.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := QueryMany(ctx, q, pageSQL, pageArgs, scan)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.Page, err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

// ExecExpectOne runs a statement that must touch at least one row;
// touching none yields sql.ErrNoRows.
func ExecExpectOne(ctx context.Context, e Executor, query string, args ...any) error {
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	switch {
	case err != nil:
		return err
	case n == 0:
		return sql.ErrNoRows
	}
	return nil
}

// QueryExists scans the single boolean of a SELECT EXISTS(...) query.
func QueryExists(ctx context.Context, q Querier, query string, args ...any) (bool, error) {
	var ok bool
	err := q.QueryRowContext(ctx, query, args...).Scan(&ok)
	return ok, err
}

var savepointName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Savepoint runs fn inside a named savepoint on e, which must be a
// transaction. A failed fn rolls back to the savepoint, leaving the
// transaction usable, and its error is returned unchanged.
func Savepoint(ctx context.Context, e Executor, name string, fn func() error) error {
	if !savepointName.MatchString(name) {
		return fmt.Errorf("invalid savepoint name %q", name)
	}

	if _, err := e.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	if err := fn(); err != nil {
		if _, rbErr := e.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("rollback savepoint after %w: %w", err, rbErr)
		}
		return err
	}

	if _, err := e.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}
