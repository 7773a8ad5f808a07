package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAggregateMonthExample(t *testing.T) {
	cal := NewCalendar(nil)
	txs := []Transaction{
		tx("1", "餐飲", "-28", "2025年07月06日", TypeExpense),
		tx("2", "交通", "-50", "2025年07月05日", TypeExpense),
	}

	got := Aggregate(txs, TabExpense, ViewMonth, cal, 2025, 7)

	if len(got.CategoryBuckets) != 2 {
		t.Fatalf("category buckets = %d, want 2", len(got.CategoryBuckets))
	}
	if got.CategoryBuckets[0].Name != "交通" || !got.CategoryBuckets[0].Value.Equal(dec("50")) {
		t.Errorf("top category = %s %s, want 交通 50",
			got.CategoryBuckets[0].Name, got.CategoryBuckets[0].Value)
	}
	if got.CategoryBuckets[1].Name != "餐飲" || !got.CategoryBuckets[1].Value.Equal(dec("28")) {
		t.Errorf("second category = %s %s, want 餐飲 28",
			got.CategoryBuckets[1].Name, got.CategoryBuckets[1].Value)
	}

	if len(got.TimeBuckets) != 31 {
		t.Fatalf("time buckets = %d, want 31", len(got.TimeBuckets))
	}
	day5 := got.TimeBuckets[4]
	if day5.Label != "5日" || !day5.Amount.Equal(dec("50")) || day5.Percentage != 64.1 {
		t.Errorf("day 5 = %q %s %.1f%%, want 5日 50 64.1%%", day5.Label, day5.Amount, day5.Percentage)
	}
	day6 := got.TimeBuckets[5]
	if day6.Label != "6日" || !day6.Amount.Equal(dec("28")) || day6.Percentage != 35.9 {
		t.Errorf("day 6 = %q %s %.1f%%, want 6日 28 35.9%%", day6.Label, day6.Amount, day6.Percentage)
	}
	for i, b := range got.TimeBuckets {
		if i == 4 || i == 5 {
			continue
		}
		if !b.Amount.IsZero() || b.Percentage != 0 {
			t.Errorf("bucket %q = %s %.1f%%, want zero", b.Label, b.Amount, b.Percentage)
		}
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	cal := NewCalendar(nil)
	got := Aggregate(nil, TabExpense, ViewMonth, cal, 2025, 7)
	if len(got.CategoryBuckets) != 0 || len(got.TimeBuckets) != 0 {
		t.Errorf("empty input: got %d category / %d time buckets, want 0/0",
			len(got.CategoryBuckets), len(got.TimeBuckets))
	}
}

func TestAggregateYearView(t *testing.T) {
	cal := NewCalendar(nil)
	txs := []Transaction{
		tx("1", "房租", "-1200", "2025年01月15日", TypeExpense),
		tx("2", "房租", "-1200", "2025年03月15日", TypeExpense),
		tx("3", "旅行", "-600", "2025年03月20日", TypeExpense),
	}

	got := Aggregate(txs, TabExpense, ViewYear, cal, 2025, 0)

	if len(got.TimeBuckets) != 12 {
		t.Fatalf("time buckets = %d, want 12", len(got.TimeBuckets))
	}
	if got.TimeBuckets[0].Label != "1月" || !got.TimeBuckets[0].Amount.Equal(dec("1200")) {
		t.Errorf("january = %q %s", got.TimeBuckets[0].Label, got.TimeBuckets[0].Amount)
	}
	if !got.TimeBuckets[2].Amount.Equal(dec("1800")) {
		t.Errorf("march amount = %s, want 1800", got.TimeBuckets[2].Amount)
	}

	// 房租 2400 must rank above 旅行 600.
	if got.CategoryBuckets[0].Name != "房租" || !got.CategoryBuckets[0].Value.Equal(dec("2400")) {
		t.Errorf("top category = %s %s", got.CategoryBuckets[0].Name, got.CategoryBuckets[0].Value)
	}
}

func TestAggregateTabFilter(t *testing.T) {
	cal := NewCalendar(nil)
	txs := []Transaction{
		tx("1", "餐飲", "-28", "2025年07月06日", TypeExpense),
		tx("2", "薪資", "3100", "2025年07月01日", TypeIncome),
	}

	got := Aggregate(txs, TabIncome, ViewMonth, cal, 2025, 7)
	if len(got.CategoryBuckets) != 1 || got.CategoryBuckets[0].Name != "薪資" {
		t.Fatalf("income tab categories = %+v", got.CategoryBuckets)
	}
	if !got.TimeBuckets[0].Amount.Equal(dec("3100")) {
		t.Errorf("day 1 = %s, want 3100", got.TimeBuckets[0].Amount)
	}
	if got.TimeBuckets[0].Percentage != 100 {
		t.Errorf("day 1 percentage = %.1f, want 100", got.TimeBuckets[0].Percentage)
	}
}

func TestAggregateZeroTotalPercentages(t *testing.T) {
	cal := NewCalendar(nil)
	// Expense transactions only, but the income tab is active: every
	// pre-seeded bucket stays at zero and no division happens.
	txs := []Transaction{
		tx("1", "餐飲", "-28", "2025年07月06日", TypeExpense),
	}

	got := Aggregate(txs, TabIncome, ViewMonth, cal, 2025, 7)
	if len(got.TimeBuckets) != 31 {
		t.Fatalf("time buckets = %d, want 31", len(got.TimeBuckets))
	}
	for _, b := range got.TimeBuckets {
		if b.Percentage != 0 {
			t.Errorf("bucket %q percentage = %.1f, want 0", b.Label, b.Percentage)
		}
	}
	if len(got.CategoryBuckets) != 0 {
		t.Errorf("category buckets = %+v, want none", got.CategoryBuckets)
	}
}

func TestAggregateSkipsUnparsableDates(t *testing.T) {
	cal := NewCalendar(nil)
	txs := []Transaction{
		tx("1", "餐飲", "-28", "2025年07月06日", TypeExpense),
		tx("2", "餐飲", "-100", "not a date", TypeExpense),
	}

	got := Aggregate(txs, TabExpense, ViewMonth, cal, 2025, 7)

	// The category pass still counts the bad-date transaction; only the
	// time pass skips it.
	if !got.CategoryBuckets[0].Value.Equal(dec("128")) {
		t.Errorf("category sum = %s, want 128", got.CategoryBuckets[0].Value)
	}
	total := decimal.Zero
	for _, b := range got.TimeBuckets {
		total = total.Add(b.Amount)
	}
	if !total.Equal(dec("28")) {
		t.Errorf("time bucket total = %s, want 28", total)
	}
}

func TestAggregateCategorySumMatchesFilteredTotal(t *testing.T) {
	cal := NewCalendar(nil)
	txs := []Transaction{
		tx("1", "餐飲", "-28.50", "2025年07月06日", TypeExpense),
		tx("2", "交通", "-50", "2025年07月05日", TypeExpense),
		tx("3", "", "-9.99", "2025年07月10日", TypeExpense),
		tx("4", "薪資", "3100", "2025年07月01日", TypeIncome),
	}

	got := Aggregate(txs, TabExpense, ViewMonth, cal, 2025, 7)

	want := dec("28.50").Add(dec("50")).Add(dec("9.99"))
	sum := decimal.Zero
	for _, b := range got.CategoryBuckets {
		sum = sum.Add(b.Value)
	}
	if !sum.Equal(want) {
		t.Errorf("category sum = %s, want %s", sum, want)
	}

	// Empty category lands in the expense fallback bucket.
	found := false
	for _, b := range got.CategoryBuckets {
		if b.Name == UncategorizedExpense {
			found = true
		}
	}
	if !found {
		t.Errorf("missing %q bucket: %+v", UncategorizedExpense, got.CategoryBuckets)
	}
}
