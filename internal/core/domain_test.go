package core

import (
	"errors"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	valid := tx("1", "餐飲", "-28", "2025年07月06日", TypeExpense)

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"empty id", func(x *Transaction) { x.ID = " " }, ErrEmptyID},
		{"empty user", func(x *Transaction) { x.UserID = "" }, ErrEmptyUserID},
		{"bad type", func(x *Transaction) { x.Type = "transfer" }, ErrInvalidType},
		{"fixed without frequency", func(x *Transaction) { x.IsFixed = true }, ErrInvalidFrequency},
		{"fixed with zero interval", func(x *Transaction) {
			x.IsFixed = true
			x.Frequency = FrequencyMonth
		}, ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := valid
			tt.mutate(&x)
			err := x.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionValidateFixed(t *testing.T) {
	x := tx("1", "房租", "-1200", "2025年07月01日", TypeExpense)
	x.IsFixed = true
	x.Frequency = FrequencyMonth
	x.Interval = 1
	if err := x.Validate(); err != nil {
		t.Errorf("fixed monthly transaction invalid: %v", err)
	}
}

func TestCategoryOrDefault(t *testing.T) {
	e := tx("1", "", "-5", "2025年07月01日", TypeExpense)
	if got := e.CategoryOrDefault(); got != UncategorizedExpense {
		t.Errorf("expense fallback = %q, want %q", got, UncategorizedExpense)
	}
	i := tx("2", "  ", "5", "2025年07月01日", TypeIncome)
	if got := i.CategoryOrDefault(); got != UncategorizedIncome {
		t.Errorf("income fallback = %q, want %q", got, UncategorizedIncome)
	}
	n := tx("3", "餐飲", "-5", "2025年07月01日", TypeExpense)
	if got := n.CategoryOrDefault(); got != "餐飲" {
		t.Errorf("category = %q, want 餐飲", got)
	}
}

func TestTabMatches(t *testing.T) {
	if !TabExpense.Matches(TypeExpense) || TabExpense.Matches(TypeIncome) {
		t.Error("expense tab matching broken")
	}
	if !TabIncome.Matches(TypeIncome) || TabIncome.Matches(TypeExpense) {
		t.Error("income tab matching broken")
	}
}

func TestCollection(t *testing.T) {
	if TypeExpense.Collection() != "expenses" {
		t.Errorf("expense collection = %q", TypeExpense.Collection())
	}
	if TypeIncome.Collection() != "incomes" {
		t.Errorf("income collection = %q", TypeIncome.Collection())
	}
}
