package cache

import "fmt"

// Key grammar of the analytics caches. The month-scoped raw list and
// summary live under transactions_/summary_ keys; the analytics views
// add a _monthly/_yearly suffix.

// TransactionsKey is the raw per-month transaction list.
func TransactionsKey(userID string, year, month int) string {
	return fmt.Sprintf("transactions_%s_%d_%d", userID, year, month)
}

// SummaryKey is the per-month derived summary.
func SummaryKey(userID string, year, month int) string {
	return fmt.Sprintf("summary_%s_%d_%d", userID, year, month)
}

// MonthlyViewKey is the month-granularity analytics payload.
func MonthlyViewKey(userID string, year, month int) string {
	return fmt.Sprintf("transactions_%s_%d_%d_monthly", userID, year, month)
}

// YearlyViewKey is the year-granularity analytics payload.
func YearlyViewKey(userID string, year int) string {
	return fmt.Sprintf("transactions_%s_%d_yearly", userID, year)
}

// PeriodKeys lists every key affected by a mutation in user+year+month.
func PeriodKeys(userID string, year, month int) []string {
	return []string{
		TransactionsKey(userID, year, month),
		SummaryKey(userID, year, month),
		MonthlyViewKey(userID, year, month),
		YearlyViewKey(userID, year),
	}
}

// UserPrefixes lists the key prefixes that cover a user's whole
// namespace, for blanket invalidation.
func UserPrefixes(userID string) []string {
	return []string{
		"transactions_" + userID + "_",
		"summary_" + userID + "_",
	}
}
