package monthly

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type summaryKey struct {
	userId int
	kind   Kind
	year   int
}

type RepositoryStub struct {
	mu        sync.Mutex
	summaries map[summaryKey][MonthsInYear]decimal.Decimal
	items     map[uuid.UUID]stubItem
}

type stubItem struct {
	userId int
	item   ExpenseItem
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		summaries: map[summaryKey][MonthsInYear]decimal.Decimal{},
		items:     map[uuid.UUID]stubItem{},
	}
}

func (s *RepositoryStub) GetSummary(ctx context.Context, userId int, kind Kind, year int) ([]MonthlyAmount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	amounts, ok := s.summaries[summaryKey{userId, kind, year}]
	if !ok {
		return nil, nil
	}
	return amountsToMonths(amounts), nil
}

func (s *RepositoryStub) SaveSummary(ctx context.Context, userId int, kind Kind, year int, amounts [MonthsInYear]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summaryKey{userId, kind, year}] = amounts
	return nil
}

func (s *RepositoryStub) ListItems(ctx context.Context, userId int, year int) ([]ExpenseItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]ExpenseItem, 0)
	for _, stored := range s.items {
		if stored.userId == userId && stored.item.Date.Year() == year {
			items = append(items, stored.item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })
	return items, nil
}

func (s *RepositoryStub) GetItem(ctx context.Context, userId int, id uuid.UUID) (ExpenseItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[id]
	if !ok || stored.userId != userId {
		return ExpenseItem{}, ErrItemNotFound
	}
	return stored.item, nil
}

func (s *RepositoryStub) StoreItem(ctx context.Context, userId int, item ExpenseItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.Id] = stubItem{userId: userId, item: item}
	return nil
}

func (s *RepositoryStub) UpdateItem(ctx context.Context, userId int, item ExpenseItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[item.Id]
	if !ok || stored.userId != userId {
		return false, nil
	}
	s.items[item.Id] = stubItem{userId: userId, item: item}
	return true, nil
}

func (s *RepositoryStub) DeleteItem(ctx context.Context, userId int, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[id]
	if !ok || stored.userId != userId {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = map[summaryKey][MonthsInYear]decimal.Decimal{}
	s.items = map[uuid.UUID]stubItem{}
}
