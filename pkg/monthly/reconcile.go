package monthly

import (
	"github.com/shopspring/decimal"
)

// CombineExpensesData merges a (possibly partial or missing) monthly summary with
// dated line items into a complete year.
//
// Each month gets the items dated within it in the target year, in input order;
// items from other years are dropped. A month's amount is its summary value when
// positive, otherwise the sum of its items. A positive summary with no matching
// items keeps the summary value.
func CombineExpensesData(summary []MonthlyAmount, items []ExpenseItem, year int) []MonthlyAmount {
	recorded := make(map[int]decimal.Decimal, MonthsInYear)
	for _, m := range summary {
		if m.Month < 1 || m.Month > MonthsInYear {
			continue
		}
		if _, seen := recorded[m.Month]; !seen {
			recorded[m.Month] = m.Amount
		}
	}

	byMonth := make([][]ExpenseItem, MonthsInYear+1)
	for _, item := range items {
		if item.Date.Year() != year {
			continue
		}
		month := int(item.Date.Month())
		byMonth[month] = append(byMonth[month], item)
	}

	combined := make([]MonthlyAmount, 0, MonthsInYear)
	for month := 1; month <= MonthsInYear; month++ {
		monthItems := byMonth[month]
		if monthItems == nil {
			monthItems = []ExpenseItem{}
		}
		amount, ok := recorded[month]
		if !ok || !amount.IsPositive() {
			amount = SumItems(monthItems)
		}
		combined = append(combined, MonthlyAmount{Month: month, Amount: amount, Items: monthItems})
	}
	return combined
}

// ZeroYear returns twelve empty months.
func ZeroYear() []MonthlyAmount {
	return CombineExpensesData(nil, nil, 0)
}

// FindDiscrepancies reports months whose amount differs from the sum of their items.
// Months with no items and a zero amount are consistent.
func FindDiscrepancies(months []MonthlyAmount) []Discrepancy {
	discrepancies := make([]Discrepancy, 0)
	for _, m := range months {
		itemsTotal := SumItems(m.Items)
		if m.Amount.Equal(itemsTotal) {
			continue
		}
		discrepancies = append(discrepancies, Discrepancy{
			Month:      m.Month,
			Recorded:   m.Amount,
			ItemsTotal: itemsTotal,
			ItemsCount: len(m.Items),
		})
	}
	return discrepancies
}

// summaryAmounts expands a partial summary into twelve amounts, rejecting bad months.
func summaryAmounts(months []MonthlyAmount) ([MonthsInYear]decimal.Decimal, error) {
	var amounts [MonthsInYear]decimal.Decimal
	for i := range amounts {
		amounts[i] = decimal.Zero
	}
	for _, m := range months {
		if m.Month < 1 || m.Month > MonthsInYear {
			return amounts, ErrInvalidMonth
		}
		amounts[m.Month-1] = m.Amount
	}
	return amounts, nil
}

func amountsToMonths(amounts [MonthsInYear]decimal.Decimal) []MonthlyAmount {
	months := make([]MonthlyAmount, 0, MonthsInYear)
	for i, amount := range amounts {
		months = append(months, MonthlyAmount{Month: i + 1, Amount: amount})
	}
	return months
}
