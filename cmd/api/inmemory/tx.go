package inmemory

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/book-exchange/cmd/api/book"
	"github.com/book-exchange/cmd/api/support"
	"github.com/hashicorp/go-memdb"
)

// -- Transactions --

func (store *InMemoryStore) BeginTx(ctx context.Context, opts *sql.TxOptions) (book.Repository, driver.Tx, error) {
	txStore, tx, err := store.beginTx(ctx)
	if err != nil {
		return nil, nil, err
	}
	return txStore, tx, nil
}

func (store *InMemoryStore) BeginSupportTx(ctx context.Context, opts *sql.TxOptions) (support.Repository, driver.Tx, error) {
	txStore, tx, err := store.beginTx(ctx)
	if err != nil {
		return nil, nil, err
	}
	return txStore, tx, nil
}

func (store *InMemoryStore) beginTx(ctx context.Context) (*InMemoryStore, driver.Tx, error) {
	if store.exc != nil { //Already inside a larger transaction: join it.
		return store, nopTx{}, nil
	}
	if err := store.wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}

	txn := store.db.Txn(true)
	txStore := &InMemoryStore{
		db:      store.db,
		exc:     txn,
		latency: store.latency,
	}

	return txStore, &TxWrapper{txn: txn}, nil
}

type TxWrapper struct {
	txn *memdb.Txn
}

func (tx *TxWrapper) Commit() error {
	tx.txn.Commit()
	return nil
}

// Rollback is a no-op once the transaction was committed.
func (tx *TxWrapper) Rollback() error {
	tx.txn.Abort()
	return nil
}

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

// scope is the memdb transaction a single repository call works in: the
// store's own transaction when inside BeginTx, or a short-lived one it owns.
type scope struct {
	txn   *memdb.Txn
	owned bool
}

func (store *InMemoryStore) scope(ctx context.Context, write bool) (scope, error) {
	if store.exc != nil {
		return scope{txn: store.exc}, nil
	}
	if err := ctx.Err(); err != nil {
		return scope{}, err
	}
	if write {
		if err := store.wait(ctx); err != nil {
			return scope{}, err
		}
	}
	return scope{txn: store.db.Txn(write), owned: true}, nil
}

func (sc scope) commit() {
	if sc.owned {
		sc.txn.Commit()
	}
}

func (sc scope) end() {
	if sc.owned {
		sc.txn.Abort()
	}
}

/* Waits for the configured latency, giving up when ctx is done. */
func (store *InMemoryStore) wait(ctx context.Context) error {
	if store.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(store.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
