package market

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidTick = errors.New("invalid price tick")
var ErrBatchTooLarge = errors.New("price tick batch too large")

// PriceTick is a single quote delivered by the market data provider.
type PriceTick struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// DecodeTicks accepts either one tick object or an array of ticks.
func DecodeTicks(body []byte, maxBatch int) ([]PriceTick, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidTick)
	}

	var ticks []PriceTick
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &ticks); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTick, err)
		}
	} else {
		var tick PriceTick
		if err := json.Unmarshal(trimmed, &tick); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTick, err)
		}
		ticks = []PriceTick{tick}
	}

	if maxBatch > 0 && len(ticks) > maxBatch {
		return nil, fmt.Errorf("%w: %d ticks, limit is %d", ErrBatchTooLarge, len(ticks), maxBatch)
	}
	return ticks, nil
}

func normalize(tick PriceTick, now time.Time) (PriceTick, error) {
	tick.Symbol = strings.ToUpper(strings.TrimSpace(tick.Symbol))
	if tick.Symbol == "" {
		return tick, fmt.Errorf("%w: symbol is required", ErrInvalidTick)
	}
	if !tick.Price.IsPositive() {
		return tick, fmt.Errorf("%w: price of %s must be positive", ErrInvalidTick, tick.Symbol)
	}
	if tick.Volume < 0 {
		return tick, fmt.Errorf("%w: volume of %s must not be negative", ErrInvalidTick, tick.Symbol)
	}
	if tick.Timestamp.IsZero() {
		tick.Timestamp = now
	}
	tick.Timestamp = tick.Timestamp.UTC()
	return tick, nil
}

// latestPrices keeps the most recent price per symbol.
func latestPrices(ticks []PriceTick) map[string]PriceTick {
	latest := make(map[string]PriceTick, len(ticks))
	for _, tick := range ticks {
		current, ok := latest[tick.Symbol]
		if !ok || !tick.Timestamp.Before(current.Timestamp) {
			latest[tick.Symbol] = tick
		}
	}
	return latest
}
