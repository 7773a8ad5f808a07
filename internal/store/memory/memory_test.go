package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jizhang/internal/core"
	"jizhang/internal/store"
)

func testCalendar() core.Calendar {
	zone := time.FixedZone("UTC+8", 8*60*60)
	return core.NewCalendarAt(zone, func() time.Time {
		return time.Date(2025, 7, 15, 10, 0, 0, 0, zone)
	})
}

func tx(id, date string, amount int64) core.Transaction {
	return core.Transaction{
		ID:       id,
		UserID:   "user-1",
		Category: "餐飲",
		Amount:   decimal.NewFromInt(amount),
		Date:     date,
		Type:     core.TypeExpense,
	}
}

func TestFetchRangeFiltersByUserAndPeriod(t *testing.T) {
	ctx := context.Background()
	cal := testCalendar()
	s := New(cal)

	s.Add(tx("1", "2025年07月06日", -28))
	s.Add(tx("2", "2025年06月30日", -50))
	other := tx("3", "2025年07月06日", -10)
	other.UserID = "user-2"
	s.Add(other)

	from, to := cal.MonthBounds(2025, 7)
	got, err := s.FetchRange(ctx, "user-1", from, to)
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("got %+v, want only transaction 1", got)
	}
}

func TestFetchByIDAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New(testCalendar())
	s.Add(tx("1", "2025年07月06日", -28))

	if _, err := s.FetchByID(ctx, "1", core.TypeExpense); err != nil {
		t.Fatalf("FetchByID: %v", err)
	}
	if _, err := s.FetchByID(ctx, "1", core.TypeIncome); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("wrong type lookup = %v, want ErrNotFound", err)
	}

	if err := s.Delete(ctx, "1", core.TypeExpense); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "1", core.TypeExpense); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestUpdateMissingTransaction(t *testing.T) {
	s := New(testCalendar())
	err := s.Update(context.Background(), tx("404", "2025年07月06日", -28))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update = %v, want ErrNotFound", err)
	}
}
