// Package store defines the ports to the remote transaction store.
package store

import (
	"context"
	"errors"
	"time"

	"jizhang/internal/core"
)

// ErrNotFound marks a lookup for a transaction that does not exist in
// the remote store.
var ErrNotFound = errors.New("transaction not found")

// Source reads transactions from the remote store.
type Source interface {
	// FetchRange returns every transaction of the user whose datetime
	// falls within [from, to] inclusive, expenses and incomes merged.
	// A remote failure returns an error, never a partial list.
	FetchRange(ctx context.Context, userID string, from, to time.Time) ([]core.Transaction, error)

	// FetchByID returns the single transaction with the given id in the
	// sub-collection owned by typ, or ErrNotFound.
	FetchByID(ctx context.Context, id string, typ core.TxType) (core.Transaction, error)
}

// Mutator writes transactions to the remote store.
type Mutator interface {
	Update(ctx context.Context, tx core.Transaction) error
	Delete(ctx context.Context, id string, typ core.TxType) error
}
