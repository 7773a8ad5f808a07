// Package worker delivers queued mutation notifications: a push
// message to the user, and optionally a row in the Sheets ledger.
package worker

import (
	"context"
	"fmt"

	"jizhang/internal/log"
	"jizhang/internal/notify"
)

// Pusher delivers a notification text to a user.
type Pusher interface {
	Send(ctx context.Context, userID, text string) error
}

// Mirror appends a mutation to the spreadsheet ledger.
type Mirror interface {
	Append(ctx context.Context, msg *notify.TransactionMessage) error
}

// NotifyWorker handles one queued notification at a time. The push is
// the delivery guarantee: its failure requeues the message. The ledger
// mirror is best-effort.
type NotifyWorker struct {
	pusher Pusher
	mirror Mirror
	logger *log.Logger
}

// NewNotifyWorker builds the worker. mirror may be nil to run without
// the ledger.
func NewNotifyWorker(pusher Pusher, mirror Mirror, logger *log.Logger) *NotifyWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	}
	return &NotifyWorker{pusher: pusher, mirror: mirror, logger: logger}
}

// Handle processes one notification message.
func (w *NotifyWorker) Handle(ctx context.Context, msg *notify.TransactionMessage) error {
	if err := w.pusher.Send(ctx, msg.UserID, msg.Text()); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}

	if w.mirror != nil {
		if err := w.mirror.Append(ctx, msg); err != nil {
			w.logger.Warn("ledger mirror failed",
				log.FieldUser, msg.UserID, log.FieldError, err)
		}
	}

	w.logger.Info("notification delivered",
		log.FieldUser, msg.UserID, "event", string(msg.Event))
	return nil
}
