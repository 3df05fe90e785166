// Package trm carries sqlx transactions through context so repositories can
// transparently join a transaction opened by the service layer.
package trm

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// ExtractTx returns the transaction stored in ctx, or nil when the caller is
// not inside Manager.Do.
func ExtractTx(ctx context.Context) *sqlx.Tx {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	if !ok {
		return nil
	}
	return tx
}

type Manager interface {
	Do(ctx context.Context, callback func(ctx context.Context) error) error
}

type txManager struct {
	db *sqlx.DB
}

func NewManager(db *sqlx.DB) Manager {
	return &txManager{db: db}
}

// Do runs callback inside a transaction. The transaction commits when the
// callback returns nil and rolls back otherwise.
func (t *txManager) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := callback(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
