package market

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

type stubInvestment struct {
	userId int
	symbol string
	price  *decimal.Decimal
}

type RepositoryStub struct {
	mu          sync.Mutex
	ticks       map[string]PriceTick
	investments []stubInvestment
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{ticks: map[string]PriceTick{}}
}

// AddInvestment registers a holding so price updates have something to hit.
func (s *RepositoryStub) AddInvestment(userId int, symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investments = append(s.investments, stubInvestment{userId: userId, symbol: symbol})
}

func (s *RepositoryStub) StoreTicks(ctx context.Context, ticks []PriceTick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tick := range ticks {
		s.ticks[tick.Symbol+"@"+tick.Timestamp.String()] = tick
	}
	return nil
}

func (s *RepositoryStub) UpdateInvestmentPrices(ctx context.Context, prices map[string]PriceTick) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var userIds []int
	for i, inv := range s.investments {
		tick, ok := prices[strings.ToUpper(inv.symbol)]
		if !ok {
			continue
		}
		price := tick.Price
		s.investments[i].price = &price
		userIds = append(userIds, inv.userId)
	}
	slices.Sort(userIds)
	return slices.Compact(userIds), nil
}

func (s *RepositoryStub) StoredTicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ticks)
}

func (s *RepositoryStub) PriceOf(userId int, symbol string) *decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.investments {
		if inv.userId == userId && inv.symbol == symbol {
			return inv.price
		}
	}
	return nil
}
