// Package sqlseq exposes database/sql result sets as lazy sequences.
//
// Query re-runs its statement on every iteration and is restartable;
// FromRows wraps an already-executed *sql.Rows and is single-pass. In both
// cases the rows are closed as soon as the iteration is exhausted, abandoned
// or fails, which returns the connection to the pool.
package sqlseq

import (
	"context"
	"database/sql"

	"github.com/kbukum/seqkit/seq"
	"github.com/kbukum/seqkit/validation"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ScanFunc converts the current row into a value.
type ScanFunc[T any] func(rows *sql.Rows) (T, error)

// Column scans a single-column row into T.
func Column[T any]() ScanFunc[T] {
	return func(rows *sql.Rows) (T, error) {
		var v T
		err := rows.Scan(&v)
		return v, err
	}
}

// Query returns a restartable sequence over the rows produced by query. The
// statement is executed on the first pull of each iteration, never at
// construction.
func Query[T any](db Querier, query string, args []any, scan ScanFunc[T]) (*seq.Sequence[T], error) {
	if err := validation.For("sqlseq.Query").
		Require("db", db != nil).
		Custom(query != "", "query", "must not be empty").
		Require("scan", scan != nil).
		Err(); err != nil {
		return nil, err
	}
	return seq.FromFunc(func(ctx context.Context) seq.Iterator[T] {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return &rowsIterator[T]{err: err}
		}
		return &rowsIterator[T]{rows: rows, scan: scan}
	})
}

// FromRows returns a single-pass sequence over rows. The caller must not
// use rows afterwards; the sequence closes them.
func FromRows[T any](rows *sql.Rows, scan ScanFunc[T]) (*seq.Sequence[T], error) {
	if err := validation.For("sqlseq.FromRows").
		Require("rows", rows != nil).
		Require("scan", scan != nil).
		Err(); err != nil {
		return nil, err
	}
	return seq.From[T](&rowsIterator[T]{rows: rows, scan: scan})
}

type rowsIterator[T any] struct {
	rows *sql.Rows
	scan ScanFunc[T]
	err  error
}

func (it *rowsIterator[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	if it.err != nil {
		return zero, false, it.err
	}
	if !it.rows.Next() {
		return zero, false, it.rows.Err()
	}
	v, err := it.scan(it.rows)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (it *rowsIterator[T]) Close() error {
	if it.rows == nil {
		return nil
	}
	return it.rows.Close()
}
