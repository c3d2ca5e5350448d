package sqlsearch

import (
	"context"
	"database/sql"

	godao "github.com/vincent3i/godao"
	"github.com/vincent3i/godao/sql/adapter"
)

type txContextKey struct{}

// TransactionFromContext extracts an *sql.Tx from context when present.
func TransactionFromContext(ctx context.Context) (*sql.Tx, bool) {
	v := ctx.Value(txContextKey{})
	if v == nil {
		return nil, false
	}
	tx, ok := v.(*sql.Tx)
	return tx, ok
}

// TransactionHandler runs functions inside database transactions and
// propagates the transaction through the context so nested calls reuse it.
type TransactionHandler struct {
	db      *sql.DB
	adapter adapter.Adapter
}

func NewTransactionHandler(db *sql.DB, adpt adapter.Adapter) *TransactionHandler {
	return &TransactionHandler{db: db, adapter: adpt}
}

func (t *TransactionHandler) WithTx(ctx context.Context, fn func(context.Context) error) error {
	// Reuse existing transaction if present
	if existing, ok := TransactionFromContext(ctx); ok && existing != nil {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, t.adapter.DefaultTxOptions())
	if err != nil {
		return godao.WrapTransactionError(err, "begin")
	}
	ctxWithTx := context.WithValue(ctx, txContextKey{}, tx)
	if err := fn(ctxWithTx); err != nil {
		_ = tx.Rollback()
		return godao.WrapTransactionError(err, "rollback")
	}
	if err := tx.Commit(); err != nil {
		return godao.WrapTransactionError(err, "commit")
	}
	return nil
}

func (t *TransactionHandler) WithReadTx(ctx context.Context, fn func(context.Context) error) error {
	// Reuse existing transaction if present
	if existing, ok := TransactionFromContext(ctx); ok && existing != nil {
		return fn(ctx)
	}

	opts := t.adapter.DefaultTxOptions()
	if opts == nil {
		opts = &sql.TxOptions{}
	}
	ro := *opts
	ro.ReadOnly = true

	tx, err := t.db.BeginTx(ctx, &ro)
	if err != nil {
		return godao.WrapTransactionError(err, "begin_read")
	}
	ctxWithTx := context.WithValue(ctx, txContextKey{}, tx)
	if err := fn(ctxWithTx); err != nil {
		_ = tx.Rollback()
		return godao.WrapTransactionError(err, "rollback_read")
	}
	if err := tx.Commit(); err != nil {
		return godao.WrapTransactionError(err, "commit_read")
	}
	return nil
}
