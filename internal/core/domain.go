package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	TypeExpense TxType = "expense"
	TypeIncome  TxType = "income"
)

const (
	ViewMonth ViewType = "month"
	ViewYear  ViewType = "year"
)

const (
	TabExpense Tab = "expense"
	TabIncome  Tab = "income"
)

const (
	FrequencyDay   Frequency = "day"
	FrequencyWeek  Frequency = "week"
	FrequencyMonth Frequency = "month"
)

// Fallback labels for records stored without a category.
const (
	UncategorizedExpense = "其他"
	UncategorizedIncome  = "未分類"
)

type (
	// TxType decides which remote sub-collection owns a record and how
	// the amount sign is interpreted.
	TxType string

	// ViewType is the aggregation granularity, one month or one year.
	ViewType string

	// Tab is the type filter applied before aggregation.
	Tab string

	// Frequency is the cadence of a fixed (recurring) transaction.
	Frequency string

	// Transaction is the unified representation of an expense or income
	// record. Expense amounts are negative, income amounts positive;
	// aggregation always works on absolute values.
	Transaction struct {
		ID        string          `json:"id"`
		UserID    string          `json:"user_id"`
		Category  string          `json:"category"`
		Amount    decimal.Decimal `json:"amount"`
		Date      string          `json:"date"`
		Type      TxType          `json:"type"`
		Note      string          `json:"note"`
		IsFixed   bool            `json:"is_fixed"`
		Frequency Frequency       `json:"fixed_frequency,omitempty"`
		Interval  int             `json:"fixed_interval,omitempty"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidView      = errors.New("invalid view type")
	ErrInvalidTab       = errors.New("invalid tab")
	ErrInvalidFrequency = errors.New("invalid fixed frequency")
	ErrInvalidInterval  = errors.New("invalid fixed interval")
	ErrEmptyID          = errors.New("empty transaction id")
	ErrEmptyUserID      = errors.New("empty user id")
)

func (t TxType) IsValid() bool {
	switch t {
	case TypeExpense, TypeIncome:
		return true
	default:
		return false
	}
}

// Collection returns the remote sub-collection that owns this type.
func (t TxType) Collection() string {
	switch t {
	case TypeIncome:
		return "incomes"
	default:
		return "expenses"
	}
}

func (v ViewType) IsValid() bool {
	switch v {
	case ViewMonth, ViewYear:
		return true
	default:
		return false
	}
}

func (tb Tab) IsValid() bool {
	switch tb {
	case TabExpense, TabIncome:
		return true
	default:
		return false
	}
}

// Matches reports whether a transaction of type t belongs to this tab.
func (tb Tab) Matches(t TxType) bool {
	switch tb {
	case TabExpense:
		return t == TypeExpense
	case TabIncome:
		return t == TypeIncome
	default:
		return false
	}
}

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDay, FrequencyWeek, FrequencyMonth:
		return true
	default:
		return false
	}
}

func (tx Transaction) Validate() error {
	if strings.TrimSpace(tx.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(tx.UserID) == "" {
		return ErrEmptyUserID
	}
	if !tx.Type.IsValid() {
		return ErrInvalidType
	}
	if tx.IsFixed {
		if !tx.Frequency.IsValid() {
			return ErrInvalidFrequency
		}
		if tx.Interval < 1 {
			return ErrInvalidInterval
		}
	}
	return nil
}

// CategoryOrDefault returns the category label, substituting the
// per-type fallback for empty categories.
func (tx Transaction) CategoryOrDefault() string {
	c := strings.TrimSpace(tx.Category)
	if c != "" {
		return c
	}
	if tx.Type == TypeIncome {
		return UncategorizedIncome
	}
	return UncategorizedExpense
}

// AbsAmount returns the magnitude of the transaction amount.
func (tx Transaction) AbsAmount() decimal.Decimal {
	return tx.Amount.Abs()
}
