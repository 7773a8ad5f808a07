package core

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
)

type (
	// CategoryBucket is a per-category sum of absolute amounts.
	// Zero-value buckets are dropped from the series.
	CategoryBucket struct {
		Name  string          `json:"name"`
		Value decimal.Decimal `json:"value"`
	}

	// TimeBucket is a per-day (month view) or per-month (year view)
	// sum. The full period is always present, zero buckets included,
	// so chart consumers get a continuous series.
	TimeBucket struct {
		Label      string          `json:"label"`
		Unit       int             `json:"unit"`
		Amount     decimal.Decimal `json:"amount"`
		Percentage float64         `json:"percentage"`
	}

	// AggregateResult carries both aggregate views for one tab+period.
	AggregateResult struct {
		CategoryBuckets []CategoryBucket `json:"category_buckets"`
		TimeBuckets     []TimeBucket     `json:"time_buckets"`
	}
)

// Aggregate derives the category distribution and the time-bucketed
// distribution from a raw transaction list.
//
// Transactions not matching the tab are filtered out first. The category
// pass groups by category label, sums absolute amounts, drops zero-sum
// groups, and sorts descending. The time pass pre-seeds one bucket per
// calendar day (ViewMonth) or per month (ViewYear), accumulates absolute
// amounts by parsed date, and computes each bucket's percentage of the
// tab total, rounded to one decimal place. Transactions whose date does
// not parse are skipped, not fatal. An empty input list yields two empty
// slices.
func Aggregate(txs []Transaction, tab Tab, view ViewType, cal Calendar, year, month int) AggregateResult {
	if len(txs) == 0 {
		return AggregateResult{
			CategoryBuckets: []CategoryBucket{},
			TimeBuckets:     []TimeBucket{},
		}
	}

	filtered := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tab.Matches(tx.Type) {
			filtered = append(filtered, tx)
		}
	}

	return AggregateResult{
		CategoryBuckets: categoryPass(filtered),
		TimeBuckets:     timePass(filtered, view, cal, year, month),
	}
}

func categoryPass(txs []Transaction) []CategoryBucket {
	sums := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	for _, tx := range txs {
		name := tx.CategoryOrDefault()
		if _, seen := sums[name]; !seen {
			order = append(order, name)
		}
		sums[name] = sums[name].Add(tx.AbsAmount())
	}

	buckets := make([]CategoryBucket, 0, len(order))
	for _, name := range order {
		if sums[name].IsZero() {
			continue
		}
		buckets = append(buckets, CategoryBucket{Name: name, Value: sums[name]})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Value.GreaterThan(buckets[j].Value)
	})
	return buckets
}

func timePass(txs []Transaction, view ViewType, cal Calendar, year, month int) []TimeBucket {
	units := 12
	label := func(unit int) string { return fmt.Sprintf("%d月", unit) }
	if view == ViewMonth {
		units = cal.DaysInMonth(year, month)
		label = func(unit int) string { return fmt.Sprintf("%d日", unit) }
	}

	buckets := make([]TimeBucket, units)
	for i := range buckets {
		buckets[i] = TimeBucket{Label: label(i + 1), Unit: i + 1, Amount: decimal.Zero}
	}

	total := decimal.Zero
	for _, tx := range txs {
		d, err := ParseLocalDate(tx.Date)
		if err != nil {
			slog.Warn("skipping transaction with unparsable date",
				"id", tx.ID, "date", tx.Date, "error", err)
			continue
		}
		unit := d.Month
		if view == ViewMonth {
			if d.Year != year || d.Month != month {
				continue
			}
			unit = d.Day
		} else if d.Year != year {
			continue
		}
		if unit < 1 || unit > units {
			continue
		}
		buckets[unit-1].Amount = buckets[unit-1].Amount.Add(tx.AbsAmount())
		total = total.Add(tx.AbsAmount())
	}

	if !total.IsZero() {
		hundred := decimal.NewFromInt(100)
		for i := range buckets {
			pct := buckets[i].Amount.Mul(hundred).Div(total).Round(1)
			buckets[i].Percentage = pct.InexactFloat64()
		}
	}

	// Units are assigned in order, but keep the numeric sort explicit:
	// "10日" must come after "9日".
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Unit < buckets[j].Unit
	})
	return buckets
}
