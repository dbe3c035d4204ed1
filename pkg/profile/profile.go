package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrProfileNotFound = errors.New("profile not found")
var ErrInvalidProfile = errors.New("invalid profile")
var ErrInvalidGoal = errors.New("invalid financial goal")
var ErrInvalidInvestment = errors.New("invalid investment")
var ErrInvalidDebt = errors.New("invalid debt")
var ErrForeignEntity = errors.New("entity belongs to another user")

const maxAge = 130

type RiskTolerance string

const (
	Conservative RiskTolerance = "conservative"
	Moderate     RiskTolerance = "moderate"
	Aggressive   RiskTolerance = "aggressive"
)

func ParseRiskTolerance(s string) (RiskTolerance, error) {
	switch RiskTolerance(strings.ToLower(strings.TrimSpace(s))) {
	case Conservative:
		return Conservative, nil
	case Moderate, "":
		return Moderate, nil
	case Aggressive:
		return Aggressive, nil
	}
	return "", fmt.Errorf("%w: unknown risk tolerance %q", ErrInvalidProfile, s)
}

type Priority string

const (
	Low    Priority = "low"
	Medium Priority = "medium"
	High   Priority = "high"
)

func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case Low:
		return Low, nil
	case Medium, "":
		return Medium, nil
	case High:
		return High, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidGoal, s)
}

type Goal struct {
	Id            uuid.UUID
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	TargetDate    *time.Time
	Priority      Priority
}

type Investment struct {
	Id             uuid.UUID
	Type           string
	Symbol         string
	Name           string
	Amount         decimal.Decimal
	ExpectedReturn decimal.Decimal
	// CurrentPrice is maintained by the market feed; nil until the first tick.
	CurrentPrice *decimal.Decimal
}

type Debt struct {
	Id             uuid.UUID
	Type           string
	Name           string
	Balance        decimal.Decimal
	InterestRate   decimal.Decimal
	MinimumPayment decimal.Decimal
}

// UserProfile is the aggregate of a user's scalar settings and owned collections.
type UserProfile struct {
	UserId              int
	MonthlyIncome       decimal.Decimal
	MonthlyExpenses     decimal.Decimal
	RiskTolerance       RiskTolerance
	InvestmentHorizon   int
	EmploymentStatus    string
	Age                 int
	OnboardingCompleted bool
	Goals               []Goal
	Investments         []Investment
	Debts               []Debt
}

func NewProfile(userId int) UserProfile {
	return UserProfile{
		UserId:          userId,
		MonthlyIncome:   decimal.Zero,
		MonthlyExpenses: decimal.Zero,
		RiskTolerance:   Moderate,
		Goals:           []Goal{},
		Investments:     []Investment{},
		Debts:           []Debt{},
	}
}

type Summary struct {
	TotalInvested  decimal.Decimal
	TotalDebt      decimal.Decimal
	NetWorth       decimal.Decimal
	MonthlySurplus decimal.Decimal
	GoalsTarget    decimal.Decimal
	GoalsSaved     decimal.Decimal
	// GoalsProgress is GoalsSaved as a percentage of GoalsTarget, capped at 100.
	GoalsProgress decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

func Summarize(p UserProfile) Summary {
	s := Summary{
		TotalInvested: decimal.Zero,
		TotalDebt:     decimal.Zero,
		GoalsTarget:   decimal.Zero,
		GoalsSaved:    decimal.Zero,
		GoalsProgress: decimal.Zero,
	}
	for _, inv := range p.Investments {
		s.TotalInvested = s.TotalInvested.Add(inv.Amount)
	}
	for _, d := range p.Debts {
		s.TotalDebt = s.TotalDebt.Add(d.Balance)
	}
	for _, g := range p.Goals {
		s.GoalsTarget = s.GoalsTarget.Add(g.TargetAmount)
		s.GoalsSaved = s.GoalsSaved.Add(g.CurrentAmount)
	}
	s.NetWorth = s.TotalInvested.Sub(s.TotalDebt)
	s.MonthlySurplus = p.MonthlyIncome.Sub(p.MonthlyExpenses)
	if s.GoalsTarget.IsPositive() {
		s.GoalsProgress = decimal.Min(s.GoalsSaved.Div(s.GoalsTarget).Mul(hundred), hundred).Round(2)
	}
	return s
}

func (g *Goal) identity() uuid.UUID {
	return g.Id
}

func (g *Goal) assignId(id uuid.UUID) {
	g.Id = id
}

func (i *Investment) identity() uuid.UUID {
	return i.Id
}

func (i *Investment) assignId(id uuid.UUID) {
	i.Id = id
}

func (d *Debt) identity() uuid.UUID {
	return d.Id
}

func (d *Debt) assignId(id uuid.UUID) {
	d.Id = id
}
