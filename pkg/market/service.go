package market

import (
	"context"
	"fmt"

	"github.com/fintrack/fintrack/internal/event_bus"
	"github.com/fintrack/fintrack/internal/utils"
	log "github.com/sirupsen/logrus"
)

type IngestResult struct {
	Stored       int
	Symbols      int
	UpdatedUsers []int
}

type Service interface {
	Ingest(ctx context.Context, ticks []PriceTick) (IngestResult, error)
}

type ServiceImpl struct {
	repo      Repository
	publisher Publisher
	eventBus  *event_bus.EventBus
	clock     utils.Clock
}

func NewService(repo Repository, publisher Publisher, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if clock == nil {
		clock = &utils.SystemClock{}
	}
	return &ServiceImpl{repo: repo, publisher: publisher, eventBus: eventBus, clock: clock}
}

// Ingest stores the ticks, refreshes the current price of matching investments
// and notifies the owners' profiles. The batch is rejected as a whole when any
// tick is invalid.
func (s *ServiceImpl) Ingest(ctx context.Context, ticks []PriceTick) (IngestResult, error) {
	now := s.clock.Now()
	normalized := make([]PriceTick, 0, len(ticks))
	for _, tick := range ticks {
		n, err := normalize(tick, now)
		if err != nil {
			return IngestResult{}, err
		}
		normalized = append(normalized, n)
	}
	if len(normalized) == 0 {
		return IngestResult{}, nil
	}

	if err := s.repo.StoreTicks(ctx, normalized); err != nil {
		return IngestResult{}, err
	}
	latest := latestPrices(normalized)
	userIds, err := s.repo.UpdateInvestmentPrices(ctx, latest)
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to update investment prices: %w", err)
	}

	for _, userId := range userIds {
		s.publishUpdated(ctx, userId)
	}
	if err := s.publisher.Publish(ctx, normalized); err != nil {
		log.Warnf("failed to forward %d price ticks: %v", len(normalized), err)
	}

	log.Debugf("Ingested %d ticks for %d symbols, %d profiles affected", len(normalized), len(latest), len(userIds))
	return IngestResult{Stored: len(normalized), Symbols: len(latest), UpdatedUsers: userIds}, nil
}

func (s *ServiceImpl) publishUpdated(ctx context.Context, userId int) {
	if s.eventBus == nil {
		return
	}
	event := event_bus.NewEvent(ctx, event_bus.ProfileUpdated, event_bus.ProfileUpdatedEvent{UserId: userId})
	if err := s.eventBus.Publish(event); err != nil {
		log.Warnf("failed to publish price update for user %d: %v", userId, err)
	}
}
