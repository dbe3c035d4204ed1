package profile

import (
	"context"
	"slices"
	"sync"
)

type RepositoryStub struct {
	mu       sync.Mutex
	profiles map[int]UserProfile
	// Reads counts GetProfile calls.
	Reads int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{profiles: map[int]UserProfile{}}
}

func (s *RepositoryStub) GetProfile(ctx context.Context, userId int) (UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	p, ok := s.profiles[userId]
	if !ok {
		return UserProfile{}, ErrProfileNotFound
	}
	return clone(p), nil
}

func (s *RepositoryStub) CreateProfile(ctx context.Context, userId int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userId]; !ok {
		s.profiles[userId] = NewProfile(userId)
	}
	return nil
}

func (s *RepositoryStub) SaveProfile(ctx context.Context, userId int, profile UserProfile) (UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile.UserId = userId
	profile.Goals = PlanReconciliation(nil, profile.Goals).Upserts
	profile.Investments = PlanReconciliation(nil, profile.Investments).Upserts
	profile.Debts = PlanReconciliation(nil, profile.Debts).Upserts
	s.profiles[userId] = clone(profile)
	return profile, nil
}

func (s *RepositoryStub) SaveGoals(ctx context.Context, userId int, goals []Goal) ([]Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.existing(userId)
	p.Goals = PlanReconciliation(nil, goals).Upserts
	s.profiles[userId] = p
	return slices.Clone(p.Goals), nil
}

func (s *RepositoryStub) SaveInvestments(ctx context.Context, userId int, investments []Investment) ([]Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.existing(userId)
	p.Investments = PlanReconciliation(nil, investments).Upserts
	s.profiles[userId] = p
	return slices.Clone(p.Investments), nil
}

func (s *RepositoryStub) SaveDebts(ctx context.Context, userId int, debts []Debt) ([]Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.existing(userId)
	p.Debts = PlanReconciliation(nil, debts).Upserts
	s.profiles[userId] = p
	return slices.Clone(p.Debts), nil
}

func (s *RepositoryStub) SetOnboardingCompleted(ctx context.Context, userId int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userId]
	if !ok {
		return false, nil
	}
	p.OnboardingCompleted = true
	s.profiles[userId] = p
	return true, nil
}

func (s *RepositoryStub) DeleteProfile(ctx context.Context, userId int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, userId)
	return nil
}

func (s *RepositoryStub) existing(userId int) UserProfile {
	p, ok := s.profiles[userId]
	if !ok {
		return NewProfile(userId)
	}
	return p
}
