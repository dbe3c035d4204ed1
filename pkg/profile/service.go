package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/fintrack/fintrack/internal/event_bus"
	"github.com/fintrack/fintrack/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetProfile(ctx context.Context) (UserProfile, error)
	GetSummary(ctx context.Context) (Summary, error)
	SaveProfile(ctx context.Context, profile UserProfile) (UserProfile, error)
	SaveGoals(ctx context.Context, goals []Goal) ([]Goal, error)
	SaveInvestments(ctx context.Context, investments []Investment) ([]Investment, error)
	SaveDebts(ctx context.Context, debts []Debt) ([]Debt, error)
	CompleteOnboarding(ctx context.Context) (UserProfile, error)
	DeleteProfile(ctx context.Context) error
	// CreateDefaultProfile prepares an empty profile for a freshly registered user.
	CreateDefaultProfile(ctx context.Context, userId int) error
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) GetProfile(ctx context.Context) (UserProfile, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return UserProfile{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetProfile(ctx, userId)
}

func (s *ServiceImpl) GetSummary(ctx context.Context) (Summary, error) {
	p, err := s.GetProfile(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(p), nil
}

func (s *ServiceImpl) SaveProfile(ctx context.Context, profile UserProfile) (UserProfile, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return UserProfile{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateProfile(&profile); err != nil {
		return UserProfile{}, err
	}
	saved, err := s.repo.SaveProfile(ctx, userId, profile)
	if err != nil {
		return UserProfile{}, err
	}
	s.publishUpdated(ctx, userId)
	return saved, nil
}

func (s *ServiceImpl) SaveGoals(ctx context.Context, goals []Goal) ([]Goal, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateGoals(goals); err != nil {
		return nil, err
	}
	saved, err := s.repo.SaveGoals(ctx, userId, goals)
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, userId)
	return saved, nil
}

func (s *ServiceImpl) SaveInvestments(ctx context.Context, investments []Investment) ([]Investment, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateInvestments(investments); err != nil {
		return nil, err
	}
	saved, err := s.repo.SaveInvestments(ctx, userId, investments)
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, userId)
	return saved, nil
}

func (s *ServiceImpl) SaveDebts(ctx context.Context, debts []Debt) ([]Debt, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateDebts(debts); err != nil {
		return nil, err
	}
	saved, err := s.repo.SaveDebts(ctx, userId, debts)
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, userId)
	return saved, nil
}

func (s *ServiceImpl) CompleteOnboarding(ctx context.Context) (UserProfile, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return UserProfile{}, fmt.Errorf("failed to get current user: %w", err)
	}
	updated, err := s.repo.SetOnboardingCompleted(ctx, userId)
	if err != nil {
		return UserProfile{}, err
	}
	if !updated {
		return UserProfile{}, ErrProfileNotFound
	}
	s.publishUpdated(ctx, userId)
	return s.repo.GetProfile(ctx, userId)
}

func (s *ServiceImpl) DeleteProfile(ctx context.Context) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.repo.DeleteProfile(ctx, userId); err != nil {
		return err
	}
	s.publishUpdated(ctx, userId)
	return nil
}

func (s *ServiceImpl) CreateDefaultProfile(ctx context.Context, userId int) error {
	return s.repo.CreateProfile(ctx, userId)
}

func (s *ServiceImpl) publishUpdated(ctx context.Context, userId int) {
	if s.eventBus == nil {
		return
	}
	event := event_bus.NewEvent(ctx, event_bus.ProfileUpdated, event_bus.ProfileUpdatedEvent{UserId: userId})
	if err := s.eventBus.Publish(event); err != nil {
		log.Warnf("failed to publish profile update for user %d: %v", userId, err)
	}
}

func validateProfile(p *UserProfile) error {
	if p.MonthlyIncome.IsNegative() || p.MonthlyExpenses.IsNegative() {
		return fmt.Errorf("%w: income and expenses must not be negative", ErrInvalidProfile)
	}
	if p.Age < 0 || p.Age > maxAge {
		return fmt.Errorf("%w: age must be between 0 and %d", ErrInvalidProfile, maxAge)
	}
	if p.InvestmentHorizon < 0 {
		return fmt.Errorf("%w: investment horizon must not be negative", ErrInvalidProfile)
	}
	risk, err := ParseRiskTolerance(string(p.RiskTolerance))
	if err != nil {
		return err
	}
	p.RiskTolerance = risk
	p.EmploymentStatus = strings.TrimSpace(p.EmploymentStatus)

	if err := validateGoals(p.Goals); err != nil {
		return err
	}
	if err := validateInvestments(p.Investments); err != nil {
		return err
	}
	return validateDebts(p.Debts)
}

func validateGoals(goals []Goal) error {
	for i := range goals {
		g := &goals[i]
		g.Name = strings.TrimSpace(g.Name)
		if g.Name == "" {
			return fmt.Errorf("%w: name is required", ErrInvalidGoal)
		}
		if g.TargetAmount.IsNegative() || g.CurrentAmount.IsNegative() {
			return fmt.Errorf("%w: amounts of %q must not be negative", ErrInvalidGoal, g.Name)
		}
		priority, err := ParsePriority(string(g.Priority))
		if err != nil {
			return err
		}
		g.Priority = priority
	}
	return nil
}

func validateInvestments(investments []Investment) error {
	for i := range investments {
		inv := &investments[i]
		inv.Symbol = strings.ToUpper(strings.TrimSpace(inv.Symbol))
		inv.Name = strings.TrimSpace(inv.Name)
		if inv.Name == "" && inv.Symbol == "" {
			return fmt.Errorf("%w: name or symbol is required", ErrInvalidInvestment)
		}
		if inv.Amount.IsNegative() {
			return fmt.Errorf("%w: amount must not be negative", ErrInvalidInvestment)
		}
	}
	return nil
}

func validateDebts(debts []Debt) error {
	for i := range debts {
		d := &debts[i]
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			return fmt.Errorf("%w: name is required", ErrInvalidDebt)
		}
		if d.Balance.IsNegative() || d.InterestRate.IsNegative() || d.MinimumPayment.IsNegative() {
			return fmt.Errorf("%w: amounts of %q must not be negative", ErrInvalidDebt, d.Name)
		}
	}
	return nil
}
