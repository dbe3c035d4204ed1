package monthly

import (
	"github.com/shopspring/decimal"
)

func SumItems(items []ExpenseItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}

func CalculateTotal(months []MonthlyAmount) decimal.Decimal {
	total := decimal.Zero
	for _, m := range months {
		total = total.Add(m.Amount)
	}
	return total
}

// CalculateMonthlyAverage divides the total by the number of months, or by the
// number of non-zero months when skipZeros is set. An empty divisor yields zero.
func CalculateMonthlyAverage(months []MonthlyAmount, skipZeros bool) decimal.Decimal {
	count := 0
	for _, m := range months {
		if skipZeros && m.Amount.IsZero() {
			continue
		}
		count++
	}
	if count == 0 {
		return decimal.Zero
	}
	return CalculateTotal(months).Div(decimal.NewFromInt(int64(count)))
}

func TotalsByCategory(items []ExpenseItem) map[Category]decimal.Decimal {
	totals := make(map[Category]decimal.Decimal, len(Categories))
	for _, c := range Categories {
		totals[c] = decimal.Zero
	}
	for _, item := range items {
		totals[item.Category] = totals[item.Category].Add(item.Amount)
	}
	return totals
}

func CalculateYearStats(months []MonthlyAmount, skipZeros bool) YearStats {
	stats := YearStats{
		Total:   CalculateTotal(months),
		Average: CalculateMonthlyAverage(months, skipZeros),
	}
	for _, m := range months {
		if m.Amount.IsZero() {
			continue
		}
		stats.MonthsRecorded++
		if stats.HighestMonth == 0 || m.Amount.GreaterThan(stats.Highest) {
			stats.HighestMonth = m.Month
			stats.Highest = m.Amount
		}
		if stats.LowestMonth == 0 || m.Amount.LessThan(stats.Lowest) {
			stats.LowestMonth = m.Month
			stats.Lowest = m.Amount
		}
	}
	return stats
}
