package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fintrack/fintrack/internal/event_bus"
	"github.com/fintrack/fintrack/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	batches [][]PriceTick
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, ticks []PriceTick) error {
	p.batches = append(p.batches, ticks)
	return p.err
}

func (p *recordingPublisher) Close() error {
	return nil
}

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestServiceImpl_Ingest(t *testing.T) {
	t.Run("should store ticks, update holdings and notify owners", func(t *testing.T) {
		// given
		repo := NewRepositoryStub()
		repo.AddInvestment(1, "aapl")
		repo.AddInvestment(2, "AAPL")
		repo.AddInvestment(3, "MSFT")
		bus := event_bus.NewEventBus()
		var notified []int
		event_bus.SubscribeTyped(bus, event_bus.ProfileUpdated, func(e event_bus.EventT[event_bus.ProfileUpdatedEvent]) error {
			notified = append(notified, e.Data.UserId)
			return nil
		})
		publisher := &recordingPublisher{}
		service := NewService(repo, publisher, bus, utils.NewMockClock(now))

		// when
		result, err := service.Ingest(context.Background(), []PriceTick{
			{Symbol: " aapl ", Price: decimal.NewFromInt(190), Timestamp: now.Add(-time.Minute)},
			{Symbol: "AAPL", Price: decimal.NewFromInt(191)},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, result.Stored)
		assert.Equal(t, 1, result.Symbols)
		assert.Equal(t, []int{1, 2}, result.UpdatedUsers)
		assert.Equal(t, []int{1, 2}, notified)
		assert.Equal(t, 2, repo.StoredTicks())
		require.NotNil(t, repo.PriceOf(1, "aapl"))
		assert.True(t, decimal.NewFromInt(191).Equal(*repo.PriceOf(1, "aapl")))
		assert.Nil(t, repo.PriceOf(3, "MSFT"))
		require.Len(t, publisher.batches, 1)
		assert.Equal(t, now, publisher.batches[0][1].Timestamp)
	})

	t.Run("should reject whole batch with an invalid tick", func(t *testing.T) {
		// given
		repo := NewRepositoryStub()
		publisher := &recordingPublisher{}
		service := NewService(repo, publisher, nil, utils.NewMockClock(now))

		// when
		_, err := service.Ingest(context.Background(), []PriceTick{
			{Symbol: "AAPL", Price: decimal.NewFromInt(1)},
			{Symbol: "MSFT", Price: decimal.Zero},
		})

		// then
		assert.ErrorIs(t, err, ErrInvalidTick)
		assert.Zero(t, repo.StoredTicks())
		assert.Empty(t, publisher.batches)
	})

	t.Run("should keep ticks when forwarding fails", func(t *testing.T) {
		repo := NewRepositoryStub()
		publisher := &recordingPublisher{err: errors.New("broker down")}
		service := NewService(repo, publisher, nil, utils.NewMockClock(now))

		result, err := service.Ingest(context.Background(), []PriceTick{{Symbol: "AAPL", Price: decimal.NewFromInt(1)}})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Stored)
		assert.Equal(t, 1, repo.StoredTicks())
	})
}
