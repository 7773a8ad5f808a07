package core

import "github.com/shopspring/decimal"

// Summary is the derived overview of a period. Totals are non-negative;
// only Balance may go below zero. Averages divide by calendar days in
// the month (month view) or by 12 (year view), never by the number of
// transactions.
type Summary struct {
	TotalExpense   decimal.Decimal `json:"total_expense"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	Balance        decimal.Decimal `json:"balance"`
	AverageExpense decimal.Decimal `json:"average_expense"`
	AverageIncome  decimal.Decimal `json:"average_income"`
	AverageBalance decimal.Decimal `json:"average_balance"`
}

// Summarize derives the period summary from a raw transaction list.
// For ViewMonth the divisor is the day count of year/month; for ViewYear
// it is 12. Averages are rounded to two decimal places.
func Summarize(txs []Transaction, view ViewType, cal Calendar, year, month int) Summary {
	totalExpense := decimal.Zero
	totalIncome := decimal.Zero

	for _, tx := range txs {
		switch tx.Type {
		case TypeExpense:
			totalExpense = totalExpense.Add(tx.AbsAmount())
		case TypeIncome:
			totalIncome = totalIncome.Add(tx.AbsAmount())
		}
	}

	divisor := decimal.NewFromInt(12)
	if view == ViewMonth {
		divisor = decimal.NewFromInt(int64(cal.DaysInMonth(year, month)))
	}

	balance := totalIncome.Sub(totalExpense)
	return Summary{
		TotalExpense:   totalExpense,
		TotalIncome:    totalIncome,
		Balance:        balance,
		AverageExpense: totalExpense.Div(divisor).Round(2),
		AverageIncome:  totalIncome.Div(divisor).Round(2),
		AverageBalance: balance.Div(divisor).Round(2),
	}
}
