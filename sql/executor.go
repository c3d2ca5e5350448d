package sqlsearch

import (
	"context"
	"database/sql"

	godao "github.com/vincent3i/godao"
)

// querier is the subset of *sql.DB and *sql.Tx the executor needs.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// QueryExecutor runs compiled queries against a database handle. When the
// context carries a transaction, statements run inside it.
type QueryExecutor struct {
	db *sql.DB
}

func NewQueryExecutor(db *sql.DB) *QueryExecutor {
	return &QueryExecutor{db: db}
}

var _ Session = (*QueryExecutor)(nil)

func (e *QueryExecutor) querier(ctx context.Context) querier {
	if tx, ok := TransactionFromContext(ctx); ok && tx != nil {
		return tx
	}
	return e.db
}

// Query runs the row-fetching statement of a compiled query.
func (e *QueryExecutor) Query(ctx context.Context, q *CompiledQuery) (*sql.Rows, error) {
	rows, err := e.querier(ctx).QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, godao.WrapQueryError(err, "query", q.Meta.Name, q.SQL, q.Args)
	}
	return rows, nil
}

// QueryCount runs a single-value counting statement.
func (e *QueryExecutor) QueryCount(ctx context.Context, q *CompiledQuery) (int64, error) {
	var count int64
	row := e.querier(ctx).QueryRowContext(ctx, q.SQL, q.Args...)
	if err := row.Scan(&count); err != nil {
		return 0, godao.WrapQueryError(err, "count", q.Meta.Name, q.SQL, q.Args)
	}
	return count, nil
}

// Exec runs a compiled mutation statement.
func (e *QueryExecutor) Exec(ctx context.Context, entityType, query string, args []any) (sql.Result, error) {
	res, err := e.querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return nil, godao.WrapQueryError(err, "exec", entityType, query, args)
	}
	return res, nil
}
