package monthly

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func yearWith(amounts map[int]int64) []MonthlyAmount {
	months := ZeroYear()
	for month, amount := range amounts {
		months[month-1].Amount = decimal.NewFromInt(amount)
	}
	return months
}

func TestCalculateTotal(t *testing.T) {
	months := yearWith(map[int]int64{1: 100, 5: 50, 12: 25})

	assert.True(t, CalculateTotal(months).Equal(decimal.NewFromInt(175)))
	assert.True(t, CalculateTotal(nil).IsZero())
}

func TestCalculateMonthlyAverage(t *testing.T) {
	tests := []struct {
		name      string
		months    []MonthlyAmount
		skipZeros bool
		want      decimal.Decimal
	}{
		{
			name:      "single recorded month with skipped zeros",
			months:    yearWith(map[int]int64{3: 120}),
			skipZeros: true,
			want:      decimal.NewFromInt(120),
		},
		{
			name:      "single recorded month over the whole year",
			months:    yearWith(map[int]int64{3: 120}),
			skipZeros: false,
			want:      decimal.NewFromInt(10),
		},
		{
			name:      "all zero months with skipped zeros",
			months:    ZeroYear(),
			skipZeros: true,
			want:      decimal.Zero,
		},
		{
			name:      "no months",
			months:    nil,
			skipZeros: false,
			want:      decimal.Zero,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateMonthlyAverage(tt.months, tt.skipZeros)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestTotalsByCategory(t *testing.T) {
	// given
	items := []ExpenseItem{
		{Date: day(2024, time.May, 1), Category: Housing, Amount: decimal.NewFromInt(900)},
		{Date: day(2024, time.May, 2), Category: Food, Amount: decimal.RequireFromString("12.30")},
		{Date: day(2024, time.May, 3), Category: Food, Amount: decimal.RequireFromString("7.70")},
	}

	// when
	totals := TotalsByCategory(items)

	// then
	assert.Len(t, totals, len(Categories))
	assert.True(t, totals[Housing].Equal(decimal.NewFromInt(900)))
	assert.True(t, totals[Food].Equal(decimal.NewFromInt(20)))
	assert.True(t, totals[Healthcare].IsZero())
}

func TestCalculateYearStats(t *testing.T) {
	// given
	months := yearWith(map[int]int64{2: 300, 7: 100, 9: 200})

	// when
	stats := CalculateYearStats(months, true)

	// then
	assert.True(t, stats.Total.Equal(decimal.NewFromInt(600)))
	assert.True(t, stats.Average.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 3, stats.MonthsRecorded)
	assert.Equal(t, 2, stats.HighestMonth)
	assert.Equal(t, 7, stats.LowestMonth)
	assert.True(t, stats.Lowest.Equal(decimal.NewFromInt(100)))
}
