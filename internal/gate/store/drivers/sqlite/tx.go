package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/invitegate/internal/gate/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions; the connection is already held.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// LockKeys is a no-op: the transaction began IMMEDIATE, so it already holds
// the database write lock.
func (t *txStore) LockKeys(ctx context.Context, keys ...string) error {
	return nil
}

func (t *txStore) InviteCodes() store.InviteCodes     { return &inviteCodesRepo{db: t.tx} }
func (t *txStore) Registrations() store.Registrations { return &registrationsRepo{db: t.tx} }
func (t *txStore) CodeUsages() store.CodeUsages       { return &codeUsagesRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations are applied before starting a tx
