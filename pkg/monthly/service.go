package monthly

import (
	"context"
	"fmt"
	"strings"

	"github.com/fintrack/fintrack/pkg/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	minYear = 1900
	maxYear = 9999
)

type Service interface {
	GetYear(ctx context.Context, kind Kind, year int) (YearView, error)
	SaveSummary(ctx context.Context, kind Kind, year int, months []MonthlyAmount) (YearView, error)
	GetStats(ctx context.Context, kind Kind, year int, skipZeros bool) (YearStats, error)
	GetCategoryTotals(ctx context.Context, year int) (map[Category]decimal.Decimal, error)
	ListItems(ctx context.Context, year int) ([]ExpenseItem, error)
	CreateItem(ctx context.Context, item ExpenseItem) (ExpenseItem, error)
	UpdateItem(ctx context.Context, item ExpenseItem) (ExpenseItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetYear(ctx context.Context, kind Kind, year int) (YearView, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return YearView{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateYear(year); err != nil {
		return YearView{}, err
	}
	return s.loadYear(ctx, userId, kind, year)
}

// SaveSummary replaces the recorded amounts of a year. Months missing from the
// input are stored as zero, so repeating the same request is harmless.
func (s *ServiceImpl) SaveSummary(ctx context.Context, kind Kind, year int, months []MonthlyAmount) (YearView, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return YearView{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateYear(year); err != nil {
		return YearView{}, err
	}
	amounts, err := summaryAmounts(months)
	if err != nil {
		return YearView{}, err
	}
	for i, amount := range amounts {
		if amount.IsNegative() {
			return YearView{}, fmt.Errorf("%w: amount for month %d is negative", ErrInvalidMonth, i+1)
		}
	}

	if err := s.repo.SaveSummary(ctx, userId, kind, year, amounts); err != nil {
		return YearView{}, err
	}
	log.Debugf("Saved %s summary for user %d, year %d", kind, userId, year)
	return s.loadYear(ctx, userId, kind, year)
}

func (s *ServiceImpl) GetStats(ctx context.Context, kind Kind, year int, skipZeros bool) (YearStats, error) {
	view, err := s.GetYear(ctx, kind, year)
	if err != nil {
		return YearStats{}, err
	}
	return CalculateYearStats(view.Months, skipZeros), nil
}

func (s *ServiceImpl) GetCategoryTotals(ctx context.Context, year int) (map[Category]decimal.Decimal, error) {
	items, err := s.ListItems(ctx, year)
	if err != nil {
		return nil, err
	}
	return TotalsByCategory(items), nil
}

func (s *ServiceImpl) ListItems(ctx context.Context, year int) ([]ExpenseItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, userId, year)
}

func (s *ServiceImpl) CreateItem(ctx context.Context, item ExpenseItem) (ExpenseItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ExpenseItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	item, err = normalizeItem(item)
	if err != nil {
		return ExpenseItem{}, err
	}
	item.Id = uuid.New()

	if err := s.repo.StoreItem(ctx, userId, item); err != nil {
		return ExpenseItem{}, err
	}
	return item, nil
}

func (s *ServiceImpl) UpdateItem(ctx context.Context, item ExpenseItem) (ExpenseItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ExpenseItem{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if item.Id == uuid.Nil {
		return ExpenseItem{}, fmt.Errorf("%w: missing id", ErrInvalidItem)
	}
	item, err = normalizeItem(item)
	if err != nil {
		return ExpenseItem{}, err
	}

	updated, err := s.repo.UpdateItem(ctx, userId, item)
	if err != nil {
		return ExpenseItem{}, err
	}
	if !updated {
		log.Warnf("expense item not updated, probably because it does not exist (%s) or the user (%d) is not the owner", item.Id, userId)
		return ExpenseItem{}, ErrItemNotFound
	}
	return s.repo.GetItem(ctx, userId, item.Id)
}

func (s *ServiceImpl) DeleteItem(ctx context.Context, id uuid.UUID) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.DeleteItem(ctx, userId, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrItemNotFound
	}
	return nil
}

func (s *ServiceImpl) loadYear(ctx context.Context, userId int, kind Kind, year int) (YearView, error) {
	summary, err := s.repo.GetSummary(ctx, userId, kind, year)
	if err != nil {
		return YearView{}, err
	}

	// Line items only exist for expenses.
	var items []ExpenseItem
	if kind == Expenses {
		items, err = s.repo.ListItems(ctx, userId, year)
		if err != nil {
			return YearView{}, err
		}
	}

	months := CombineExpensesData(summary, items, year)
	view := YearView{
		Kind:          kind,
		Year:          year,
		Months:        months,
		Total:         CalculateTotal(months),
		Average:       CalculateMonthlyAverage(months, false),
		Discrepancies: []Discrepancy{},
	}
	if kind == Expenses {
		view.Discrepancies = FindDiscrepancies(months)
	}
	return view, nil
}

func validateYear(year int) error {
	if year < minYear || year > maxYear {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return nil
}

func normalizeItem(item ExpenseItem) (ExpenseItem, error) {
	item.Description = strings.TrimSpace(item.Description)
	if item.Description == "" {
		return item, fmt.Errorf("%w: description is required", ErrInvalidItem)
	}
	if item.Date.IsZero() {
		return item, fmt.Errorf("%w: date is required", ErrInvalidItem)
	}
	if err := validateYear(item.Date.Year()); err != nil {
		return item, err
	}
	if item.Amount.IsNegative() {
		return item, fmt.Errorf("%w: amount must not be negative", ErrInvalidItem)
	}
	category, err := ParseCategory(string(item.Category))
	if err != nil {
		return item, err
	}
	item.Category = category
	return item, nil
}
