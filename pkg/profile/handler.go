package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fintrack/fintrack/internal/rest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type GoalDTO struct {
	Id            string          `json:"id,omitempty"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetDate    string          `json:"targetDate,omitempty"`
	Priority      string          `json:"priority"`
}

type InvestmentDTO struct {
	Id             string           `json:"id,omitempty"`
	Type           string           `json:"type"`
	Symbol         string           `json:"symbol"`
	Name           string           `json:"name"`
	Amount         decimal.Decimal  `json:"amount"`
	ExpectedReturn decimal.Decimal  `json:"expectedReturn"`
	CurrentPrice   *decimal.Decimal `json:"currentPrice,omitempty"`
}

type DebtDTO struct {
	Id             string          `json:"id,omitempty"`
	Type           string          `json:"type"`
	Name           string          `json:"name"`
	Balance        decimal.Decimal `json:"balance"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	MinimumPayment decimal.Decimal `json:"minimumPayment"`
}

type ProfileDTO struct {
	MonthlyIncome       decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpenses     decimal.Decimal `json:"monthlyExpenses"`
	RiskTolerance       string          `json:"riskTolerance"`
	InvestmentHorizon   int             `json:"investmentHorizon"`
	EmploymentStatus    string          `json:"employmentStatus"`
	Age                 int             `json:"age"`
	OnboardingCompleted bool            `json:"onboardingCompleted"`
	Goals               []GoalDTO       `json:"goals"`
	Investments         []InvestmentDTO `json:"investments"`
	Debts               []DebtDTO       `json:"debts"`
}

type SummaryDTO struct {
	TotalInvested  decimal.Decimal `json:"totalInvested"`
	TotalDebt      decimal.Decimal `json:"totalDebt"`
	NetWorth       decimal.Decimal `json:"netWorth"`
	MonthlySurplus decimal.Decimal `json:"monthlySurplus"`
	GoalsTarget    decimal.Decimal `json:"goalsTarget"`
	GoalsSaved     decimal.Decimal `json:"goalsSaved"`
	GoalsProgress  decimal.Decimal `json:"goalsProgress"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetProfile godoc
// @Summary Get the financial profile of the current user
// @Tags Profile
// @Produce json
// @Success 200 {object} ProfileDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/profile [get]
// @Security BearerAuth
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Getting profile")

	p, err := h.service.GetProfile(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, profileToDTO(p))
}

// SaveProfile godoc
// @Summary Replace the financial profile including goals, investments and debts
// @Tags Profile
// @Accept json
// @Produce json
// @Param profile body ProfileDTO true "Profile"
// @Success 200 {object} ProfileDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/profile [put]
// @Security BearerAuth
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Saving profile")

	var dto ProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	p, err := dtoToProfile(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid profile", err.Error())
		return
	}

	saved, err := h.service.SaveProfile(r.Context(), p)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, profileToDTO(saved))
}

// DeleteProfile godoc
// @Summary Delete the financial profile
// @Tags Profile
// @Success 204 "No Content"
// @Router /api/profile [delete]
// @Security BearerAuth
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProfile(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary godoc
// @Summary Get net worth and goal progress
// @Tags Profile
// @Produce json
// @Success 200 {object} SummaryDTO
// @Router /api/profile/summary [get]
// @Security BearerAuth
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s, err := h.service.GetSummary(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, SummaryDTO{
		TotalInvested:  s.TotalInvested,
		TotalDebt:      s.TotalDebt,
		NetWorth:       s.NetWorth,
		MonthlySurplus: s.MonthlySurplus,
		GoalsTarget:    s.GoalsTarget,
		GoalsSaved:     s.GoalsSaved,
		GoalsProgress:  s.GoalsProgress,
	})
}

// CompleteOnboarding godoc
// @Summary Mark onboarding as completed
// @Tags Profile
// @Produce json
// @Success 200 {object} ProfileDTO
// @Router /api/profile/onboarding/complete [post]
// @Security BearerAuth
func (h *Handler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	p, err := h.service.CompleteOnboarding(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, profileToDTO(p))
}

// SaveGoals godoc
// @Summary Replace all financial goals
// @Tags Profile
// @Accept json
// @Produce json
// @Param goals body []GoalDTO true "Goals"
// @Success 200 {array} GoalDTO
// @Router /api/profile/goals [put]
// @Security BearerAuth
func (h *Handler) SaveGoals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var dtos []GoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	goals, err := mapAll(dtos, dtoToGoal)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid goal", err.Error())
		return
	}
	saved, err := h.service.SaveGoals(r.Context(), goals)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, mapEach(saved, goalToDTO))
}

// SaveInvestments godoc
// @Summary Replace all investments
// @Tags Profile
// @Accept json
// @Produce json
// @Param investments body []InvestmentDTO true "Investments"
// @Success 200 {array} InvestmentDTO
// @Router /api/profile/investments [put]
// @Security BearerAuth
func (h *Handler) SaveInvestments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var dtos []InvestmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	investments, err := mapAll(dtos, dtoToInvestment)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid investment", err.Error())
		return
	}
	saved, err := h.service.SaveInvestments(r.Context(), investments)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, mapEach(saved, investmentToDTO))
}

// SaveDebts godoc
// @Summary Replace all debts
// @Tags Profile
// @Accept json
// @Produce json
// @Param debts body []DebtDTO true "Debts"
// @Success 200 {array} DebtDTO
// @Router /api/profile/debts [put]
// @Security BearerAuth
func (h *Handler) SaveDebts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var dtos []DebtDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	debts, err := mapAll(dtos, dtoToDebt)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid debt", err.Error())
		return
	}
	saved, err := h.service.SaveDebts(r.Context(), debts)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, mapEach(saved, debtToDTO))
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		rest.WriteError(w, http.StatusNotFound, "Profile not found", err.Error())
	case errors.Is(err, ErrInvalidProfile), errors.Is(err, ErrInvalidGoal),
		errors.Is(err, ErrInvalidInvestment), errors.Is(err, ErrInvalidDebt):
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, ErrForeignEntity):
		rest.WriteError(w, http.StatusConflict, "Conflicting entity", err.Error())
	default:
		rest.WriteError(w, http.StatusInternalServerError, "Storage error", err.Error())
	}
}

func mapAll[D any, T any](dtos []D, fn func(D) (T, error)) ([]T, error) {
	result := make([]T, 0, len(dtos))
	for _, dto := range dtos {
		v, err := fn(dto)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

func mapEach[T any, D any](values []T, fn func(T) D) []D {
	result := make([]D, 0, len(values))
	for _, v := range values {
		result = append(result, fn(v))
	}
	return result
}

func parseId(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func dtoToGoal(dto GoalDTO) (Goal, error) {
	id, err := parseId(dto.Id)
	if err != nil {
		return Goal{}, err
	}
	g := Goal{
		Id:            id,
		Name:          dto.Name,
		TargetAmount:  dto.TargetAmount,
		CurrentAmount: dto.CurrentAmount,
		Priority:      Priority(dto.Priority),
	}
	if dto.TargetDate != "" {
		date, err := time.Parse(dateLayout, dto.TargetDate)
		if err != nil {
			return Goal{}, fmt.Errorf("targetDate must be in %s format", dateLayout)
		}
		g.TargetDate = &date
	}
	return g, nil
}

func goalToDTO(g Goal) GoalDTO {
	dto := GoalDTO{
		Id:            idString(g.Id),
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Priority:      string(g.Priority),
	}
	if g.TargetDate != nil {
		dto.TargetDate = g.TargetDate.Format(dateLayout)
	}
	return dto
}

func dtoToInvestment(dto InvestmentDTO) (Investment, error) {
	id, err := parseId(dto.Id)
	if err != nil {
		return Investment{}, err
	}
	return Investment{
		Id:             id,
		Type:           dto.Type,
		Symbol:         dto.Symbol,
		Name:           dto.Name,
		Amount:         dto.Amount,
		ExpectedReturn: dto.ExpectedReturn,
		CurrentPrice:   dto.CurrentPrice,
	}, nil
}

func investmentToDTO(i Investment) InvestmentDTO {
	return InvestmentDTO{
		Id:             idString(i.Id),
		Type:           i.Type,
		Symbol:         i.Symbol,
		Name:           i.Name,
		Amount:         i.Amount,
		ExpectedReturn: i.ExpectedReturn,
		CurrentPrice:   i.CurrentPrice,
	}
}

func dtoToDebt(dto DebtDTO) (Debt, error) {
	id, err := parseId(dto.Id)
	if err != nil {
		return Debt{}, err
	}
	return Debt{
		Id:             id,
		Type:           dto.Type,
		Name:           dto.Name,
		Balance:        dto.Balance,
		InterestRate:   dto.InterestRate,
		MinimumPayment: dto.MinimumPayment,
	}, nil
}

func debtToDTO(d Debt) DebtDTO {
	return DebtDTO{
		Id:             idString(d.Id),
		Type:           d.Type,
		Name:           d.Name,
		Balance:        d.Balance,
		InterestRate:   d.InterestRate,
		MinimumPayment: d.MinimumPayment,
	}
}

func dtoToProfile(dto ProfileDTO) (UserProfile, error) {
	goals, err := mapAll(dto.Goals, dtoToGoal)
	if err != nil {
		return UserProfile{}, err
	}
	investments, err := mapAll(dto.Investments, dtoToInvestment)
	if err != nil {
		return UserProfile{}, err
	}
	debts, err := mapAll(dto.Debts, dtoToDebt)
	if err != nil {
		return UserProfile{}, err
	}
	return UserProfile{
		MonthlyIncome:       dto.MonthlyIncome,
		MonthlyExpenses:     dto.MonthlyExpenses,
		RiskTolerance:       RiskTolerance(dto.RiskTolerance),
		InvestmentHorizon:   dto.InvestmentHorizon,
		EmploymentStatus:    dto.EmploymentStatus,
		Age:                 dto.Age,
		OnboardingCompleted: dto.OnboardingCompleted,
		Goals:               goals,
		Investments:         investments,
		Debts:               debts,
	}, nil
}

func profileToDTO(p UserProfile) ProfileDTO {
	return ProfileDTO{
		MonthlyIncome:       p.MonthlyIncome,
		MonthlyExpenses:     p.MonthlyExpenses,
		RiskTolerance:       string(p.RiskTolerance),
		InvestmentHorizon:   p.InvestmentHorizon,
		EmploymentStatus:    p.EmploymentStatus,
		Age:                 p.Age,
		OnboardingCompleted: p.OnboardingCompleted,
		Goals:               mapEach(p.Goals, goalToDTO),
		Investments:         mapEach(p.Investments, investmentToDTO),
		Debts:               mapEach(p.Debts, debtToDTO),
	}
}
