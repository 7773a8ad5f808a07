package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"jizhang/internal/core"
	"jizhang/internal/notify"
)

type fakePusher struct {
	err   error
	sent  []string
	users []string
}

func (f *fakePusher) Send(_ context.Context, userID, text string) error {
	if f.err != nil {
		return f.err
	}
	f.users = append(f.users, userID)
	f.sent = append(f.sent, text)
	return nil
}

type fakeMirror struct {
	err  error
	rows []*notify.TransactionMessage
}

func (f *fakeMirror) Append(_ context.Context, msg *notify.TransactionMessage) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, msg)
	return nil
}

func testMessage() *notify.TransactionMessage {
	return notify.NewTransactionMessage(notify.EventUpdated, core.Transaction{
		UserID:   "user-1",
		Category: "交通",
		Amount:   decimal.NewFromInt(-50),
		Date:     "2025年07月05日",
		Type:     core.TypeExpense,
	})
}

func TestHandleDeliversPushAndMirror(t *testing.T) {
	pusher := &fakePusher{}
	mirror := &fakeMirror{}
	w := NewNotifyWorker(pusher, mirror, nil)

	if err := w.Handle(context.Background(), testMessage()); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(pusher.users) != 1 || pusher.users[0] != "user-1" {
		t.Errorf("pushed to %v", pusher.users)
	}
	if len(mirror.rows) != 1 {
		t.Errorf("mirrored %d rows, want 1", len(mirror.rows))
	}
}

func TestHandlePushFailureReturnsError(t *testing.T) {
	pusher := &fakePusher{err: errors.New("push endpoint down")}
	w := NewNotifyWorker(pusher, &fakeMirror{}, nil)

	if err := w.Handle(context.Background(), testMessage()); err == nil {
		t.Error("expected error so the message is requeued")
	}
}

func TestHandleMirrorFailureIsNonFatal(t *testing.T) {
	pusher := &fakePusher{}
	mirror := &fakeMirror{err: errors.New("sheets unavailable")}
	w := NewNotifyWorker(pusher, mirror, nil)

	if err := w.Handle(context.Background(), testMessage()); err != nil {
		t.Errorf("Handle: %v, mirror failure must not requeue", err)
	}
}

func TestHandleWithoutMirror(t *testing.T) {
	pusher := &fakePusher{}
	w := NewNotifyWorker(pusher, nil, nil)

	if err := w.Handle(context.Background(), testMessage()); err != nil {
		t.Errorf("Handle: %v", err)
	}
}
