package profile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	t.Run("should compute net worth and goal progress", func(t *testing.T) {
		// given
		p := NewProfile(1)
		p.MonthlyIncome = decimal.NewFromInt(5000)
		p.MonthlyExpenses = decimal.NewFromInt(3200)
		p.Investments = []Investment{{Amount: decimal.NewFromInt(10000)}, {Amount: decimal.NewFromInt(2500)}}
		p.Debts = []Debt{{Balance: decimal.NewFromInt(4000)}}
		p.Goals = []Goal{
			{TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(250)},
			{TargetAmount: decimal.NewFromInt(3000), CurrentAmount: decimal.NewFromInt(750)},
		}

		// when
		s := Summarize(p)

		// then
		assert.True(t, s.TotalInvested.Equal(decimal.NewFromInt(12500)))
		assert.True(t, s.NetWorth.Equal(decimal.NewFromInt(8500)))
		assert.True(t, s.MonthlySurplus.Equal(decimal.NewFromInt(1800)))
		assert.True(t, s.GoalsProgress.Equal(decimal.NewFromInt(25)))
	})

	t.Run("should cap goal progress and handle no goals", func(t *testing.T) {
		p := NewProfile(1)
		assert.True(t, Summarize(p).GoalsProgress.IsZero())

		p.Goals = []Goal{{TargetAmount: decimal.NewFromInt(10), CurrentAmount: decimal.NewFromInt(40)}}
		assert.True(t, Summarize(p).GoalsProgress.Equal(decimal.NewFromInt(100)))
	})
}

func TestParseEnums(t *testing.T) {
	risk, err := ParseRiskTolerance("Aggressive")
	require.NoError(t, err)
	assert.Equal(t, Aggressive, risk)

	_, err = ParseRiskTolerance("yolo")
	assert.ErrorIs(t, err, ErrInvalidProfile)

	priority, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, Medium, priority)

	_, err = ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrInvalidGoal)
}
