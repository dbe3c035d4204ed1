package profile

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/fintrack/fintrack/internal/cache"
	"github.com/fintrack/fintrack/internal/event_bus"
	"github.com/fintrack/fintrack/pkg/user"
	log "github.com/sirupsen/logrus"
)

// CachedService serves profile reads from a cache keyed by user id. Entries are
// dropped whenever the profile changes or the user logs out.
type CachedService struct {
	Service
	cache cache.Cache[int, UserProfile]

	mu sync.Mutex
	// generations is bumped on every invalidation. A read only fills the cache
	// when no invalidation happened while it was loading.
	generations map[int]uint64
}

func NewCachedService(inner Service, c cache.Cache[int, UserProfile], eventBus *event_bus.EventBus) *CachedService {
	s := &CachedService{Service: inner, cache: c, generations: map[int]uint64{}}
	event_bus.SubscribeTyped(eventBus, event_bus.ProfileUpdated, func(e event_bus.EventT[event_bus.ProfileUpdatedEvent]) error {
		s.invalidate(e.Data.UserId)
		return nil
	})
	event_bus.SubscribeTyped(eventBus, event_bus.UserLoggedOut, func(e event_bus.EventT[event_bus.UserLoggedOutEvent]) error {
		s.invalidate(e.Data.UserId)
		return nil
	})
	return s
}

func (s *CachedService) GetProfile(ctx context.Context) (UserProfile, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return UserProfile{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if cached, ok := s.cache.Get(userId); ok {
		log.Tracef("profile cache hit for user %d", userId)
		return clone(cached), nil
	}

	generation := s.generation(userId)
	p, err := s.Service.GetProfile(ctx)
	if err != nil {
		return UserProfile{}, err
	}
	s.fill(userId, generation, p)
	return p, nil
}

func (s *CachedService) GetSummary(ctx context.Context) (Summary, error) {
	p, err := s.GetProfile(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(p), nil
}

func (s *CachedService) generation(userId int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userId]
}

func (s *CachedService) fill(userId int, generation uint64, p UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[userId] != generation {
		log.Tracef("profile of user %d changed while loading, not caching", userId)
		return
	}
	s.cache.Set(userId, clone(p))
}

func (s *CachedService) invalidate(userId int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userId]++
	s.cache.Delete(userId)
	log.Tracef("profile cache invalidated for user %d", userId)
}

func clone(p UserProfile) UserProfile {
	p.Goals = slices.Clone(p.Goals)
	p.Investments = slices.Clone(p.Investments)
	p.Debts = slices.Clone(p.Debts)
	return p
}
