package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTicks(t *testing.T) {
	t.Run("should decode single object", func(t *testing.T) {
		ticks, err := DecodeTicks([]byte(`  {"symbol":"AAPL","price":"189.5","volume":10,"timestamp":"2024-03-01T10:00:00Z"}`), 10)

		require.NoError(t, err)
		require.Len(t, ticks, 1)
		assert.Equal(t, "AAPL", ticks[0].Symbol)
		assert.True(t, decimal.RequireFromString("189.5").Equal(ticks[0].Price))
	})

	t.Run("should decode batch", func(t *testing.T) {
		ticks, err := DecodeTicks([]byte("\n[{\"symbol\":\"AAPL\",\"price\":1},{\"symbol\":\"MSFT\",\"price\":2}]"), 10)

		require.NoError(t, err)
		assert.Len(t, ticks, 2)
	})

	t.Run("should enforce batch limit", func(t *testing.T) {
		_, err := DecodeTicks([]byte(`[{"symbol":"A","price":1},{"symbol":"B","price":1}]`), 1)

		assert.ErrorIs(t, err, ErrBatchTooLarge)
	})

	t.Run("should reject malformed body", func(t *testing.T) {
		_, errEmpty := DecodeTicks([]byte("   "), 10)
		_, errJson := DecodeTicks([]byte(`{"symbol":`), 10)

		assert.ErrorIs(t, errEmpty, ErrInvalidTick)
		assert.ErrorIs(t, errJson, ErrInvalidTick)
	})
}

func TestLatestPrices(t *testing.T) {
	// given
	early := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Minute)
	ticks := []PriceTick{
		{Symbol: "AAPL", Price: decimal.NewFromInt(2), Timestamp: late},
		{Symbol: "AAPL", Price: decimal.NewFromInt(1), Timestamp: early},
		{Symbol: "MSFT", Price: decimal.NewFromInt(3), Timestamp: early},
	}

	// when
	latest := latestPrices(ticks)

	// then
	require.Len(t, latest, 2)
	assert.True(t, decimal.NewFromInt(2).Equal(latest["AAPL"].Price))
	assert.True(t, decimal.NewFromInt(3).Equal(latest["MSFT"].Price))
}
