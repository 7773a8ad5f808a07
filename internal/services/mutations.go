package services

import (
	"context"
	"log/slog"

	"jizhang/internal/cache"
	"jizhang/internal/core"
	"jizhang/internal/notify"
	"jizhang/internal/store"
)

// Notifier hands a mutation notification off for delivery.
type Notifier interface {
	Publish(ctx context.Context, msg *notify.TransactionMessage) error
}

// Mutations is the write façade. Operations report plain success or
// failure; every lower-level error is logged here and converted to
// false so the presentation layer never sees one.
type Mutations struct {
	source   store.Source
	mutator  store.Mutator
	notifier Notifier
	caches   []*cache.Cache
	logger   *slog.Logger
}

// NewMutations builds the write façade. notifier may be nil to run
// without notifications; all given caches are invalidated on mutation.
func NewMutations(source store.Source, mutator store.Mutator, notifier Notifier, logger *slog.Logger, caches ...*cache.Cache) *Mutations {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutations{
		source:   source,
		mutator:  mutator,
		notifier: notifier,
		caches:   caches,
		logger:   logger,
	}
}

// UpdateTransaction writes the transaction back to the remote store,
// notifies best-effort, and invalidates the affected period.
func (m *Mutations) UpdateTransaction(ctx context.Context, tx core.Transaction) bool {
	if err := m.mutator.Update(ctx, tx); err != nil {
		m.logger.Error("update failed", "id", tx.ID, "type", tx.Type, "error", err)
		return false
	}

	m.notifyBestEffort(ctx, notify.NewTransactionMessage(notify.EventUpdated, tx))
	m.invalidate(ctx, tx)
	return true
}

// DeleteTransaction re-fetches the transaction first so its data is
// available for the notification and the cache invalidation period,
// then deletes it. A missing transaction fails before the delete.
func (m *Mutations) DeleteTransaction(ctx context.Context, id string, typ core.TxType) bool {
	tx, err := m.source.FetchByID(ctx, id, typ)
	if err != nil {
		m.logger.Error("delete pre-fetch failed", "id", id, "type", typ, "error", err)
		return false
	}

	if err := m.mutator.Delete(ctx, id, typ); err != nil {
		m.logger.Error("delete failed", "id", id, "type", typ, "error", err)
		return false
	}

	m.notifyBestEffort(ctx, notify.NewTransactionMessage(notify.EventDeleted, tx))
	m.invalidate(ctx, tx)
	return true
}

func (m *Mutations) notifyBestEffort(ctx context.Context, msg *notify.TransactionMessage) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Publish(ctx, msg); err != nil {
		m.logger.Warn("notification failed", "event", msg.Event, "user", msg.UserID, "error", err)
	}
}

// invalidate removes the cached entries of the transaction's period.
// When the date does not parse the period is unknown, so the user's
// whole cache namespace goes instead.
func (m *Mutations) invalidate(ctx context.Context, tx core.Transaction) {
	d, err := core.ParseLocalDate(tx.Date)
	if err != nil {
		m.logger.Warn("unparsable date, clearing user cache", "id", tx.ID, "date", tx.Date)
		for _, c := range m.caches {
			c.InvalidateUser(ctx, tx.UserID)
		}
		return
	}
	for _, c := range m.caches {
		c.Invalidate(ctx, tx.UserID, d.Year, d.Month)
	}
}
