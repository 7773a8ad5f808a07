// Package notify carries mutation notifications: a queue client for
// handing them to the worker and a push client for delivering them.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"jizhang/internal/core"
)

type Event string

const (
	EventUpdated Event = "updated"
	EventDeleted Event = "deleted"
)

// TransactionMessage is the queue payload describing one mutation. It
// carries the full transaction so the worker needs no second fetch.
type TransactionMessage struct {
	Event     Event           `json:"event"`
	UserID    string          `json:"user_id"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	Type      core.TxType     `json:"type"`
	Note      string          `json:"note"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewTransactionMessage builds the message for a mutation event.
func NewTransactionMessage(event Event, tx core.Transaction) *TransactionMessage {
	return &TransactionMessage{
		Event:     event,
		UserID:    tx.UserID,
		Category:  tx.CategoryOrDefault(),
		Amount:    tx.Amount,
		Date:      tx.Date,
		Type:      tx.Type,
		Note:      tx.Note,
		Timestamp: time.Now(),
	}
}

// Text renders the human-readable notification line.
func (m *TransactionMessage) Text() string {
	verb := "已更新"
	if m.Event == EventDeleted {
		verb = "已刪除"
	}
	text := fmt.Sprintf("%s %s %s %s", verb, m.Date, m.Category, m.Amount.String())
	if m.Note != "" {
		text += " (" + m.Note + ")"
	}
	return text
}

func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionMessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
