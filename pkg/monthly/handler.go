package monthly

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fintrack/fintrack/internal/rest"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type ExpenseItemDTO struct {
	Id          string          `json:"id,omitempty"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
}

type MonthlyAmountDTO struct {
	Month  int              `json:"month"`
	Amount decimal.Decimal  `json:"amount"`
	Items  []ExpenseItemDTO `json:"items"`
}

type DiscrepancyDTO struct {
	Month      int             `json:"month"`
	Recorded   decimal.Decimal `json:"recorded"`
	ItemsTotal decimal.Decimal `json:"itemsTotal"`
	ItemsCount int             `json:"itemsCount"`
}

type YearViewDTO struct {
	Kind     string             `json:"kind"`
	Year     int                `json:"year"`
	Months   []MonthlyAmountDTO `json:"months"`
	Total    decimal.Decimal    `json:"total"`
	Average  decimal.Decimal    `json:"average"`
	Warnings []DiscrepancyDTO   `json:"warnings"`
}

type SaveSummaryDTO struct {
	Months []MonthlyAmountDTO `json:"months"`
}

type YearStatsDTO struct {
	Total          decimal.Decimal `json:"total"`
	Average        decimal.Decimal `json:"average"`
	MonthsRecorded int             `json:"monthsRecorded"`
	HighestMonth   int             `json:"highestMonth,omitempty"`
	Highest        decimal.Decimal `json:"highest"`
	LowestMonth    int             `json:"lowestMonth,omitempty"`
	Lowest         decimal.Decimal `json:"lowest"`
}

type Handler struct {
	service  Service
	renderer Renderer
}

func NewHandler(service Service, renderer Renderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

// GetYear godoc
// @Summary Get a reconciled year of savings or expenses
// @Tags Monthly
// @Produce json
// @Param kind path string true "savings or expenses"
// @Param year path int true "Year"
// @Success 200 {object} YearViewDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/{kind}/{year} [get]
// @Security BearerAuth
func (h *Handler) GetYear(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	kind, year, ok := kindAndYear(w, r)
	if !ok {
		return
	}
	log.Tracef("Getting %s for year %d", kind, year)

	view, err := h.service.GetYear(r.Context(), kind, year)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, yearViewToDTO(view))
}

// SaveSummary godoc
// @Summary Store monthly amounts of a year
// @Tags Monthly
// @Accept json
// @Produce json
// @Param kind path string true "savings or expenses"
// @Param year path int true "Year"
// @Param summary body SaveSummaryDTO true "Monthly amounts"
// @Success 200 {object} YearViewDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/{kind}/{year} [put]
// @Security BearerAuth
func (h *Handler) SaveSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	kind, year, ok := kindAndYear(w, r)
	if !ok {
		return
	}
	log.Debugf("Saving %s for year %d", kind, year)

	var dto SaveSummaryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	months := make([]MonthlyAmount, 0, len(dto.Months))
	for _, m := range dto.Months {
		months = append(months, MonthlyAmount{Month: m.Month, Amount: m.Amount})
	}

	view, err := h.service.SaveSummary(r.Context(), kind, year, months)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, yearViewToDTO(view))
}

// GetStats godoc
// @Summary Get yearly statistics
// @Tags Monthly
// @Produce json
// @Param kind path string true "savings or expenses"
// @Param year path int true "Year"
// @Param skipZeros query bool false "Exclude empty months from the average"
// @Success 200 {object} YearStatsDTO
// @Router /api/{kind}/{year}/stats [get]
// @Security BearerAuth
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	kind, year, ok := kindAndYear(w, r)
	if !ok {
		return
	}
	skipZeros := false
	if raw := r.URL.Query().Get("skipZeros"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid skipZeros value", err.Error())
			return
		}
		skipZeros = parsed
	}

	stats, err := h.service.GetStats(r.Context(), kind, year, skipZeros)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, YearStatsDTO{
		Total:          stats.Total,
		Average:        stats.Average,
		MonthsRecorded: stats.MonthsRecorded,
		HighestMonth:   stats.HighestMonth,
		Highest:        stats.Highest,
		LowestMonth:    stats.LowestMonth,
		Lowest:         stats.Lowest,
	})
}

// GetCsv godoc
// @Summary Export a year as CSV
// @Tags Monthly
// @Produce text/csv
// @Param kind path string true "savings or expenses"
// @Param year path int true "Year"
// @Success 200 {string} string
// @Router /api/{kind}/{year}/csv [get]
// @Security BearerAuth
func (h *Handler) GetCsv(w http.ResponseWriter, r *http.Request) {
	kind, year, ok := kindAndYear(w, r)
	if !ok {
		return
	}
	view, err := h.service.GetYear(r.Context(), kind, year)
	if err != nil {
		handleError(w, err)
		return
	}
	content, err := h.renderer.RenderYear(view)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%d.csv", kind, year))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(content)); err != nil {
		log.Errorf("failed to write csv: %v", err)
	}
}

// GetCategoryTotals godoc
// @Summary Sum expense items per category
// @Tags Expenses
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} map[string]string
// @Router /api/expenses/{year}/categories [get]
// @Security BearerAuth
func (h *Handler) GetCategoryTotals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", err.Error())
		return
	}
	totals, err := h.service.GetCategoryTotals(r.Context(), year)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, totals)
}

// ListItems godoc
// @Summary List expense items of a year
// @Tags Expenses
// @Produce json
// @Param year path int true "Year"
// @Success 200 {array} ExpenseItemDTO
// @Router /api/expenses/{year}/items [get]
// @Security BearerAuth
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", err.Error())
		return
	}
	items, err := h.service.ListItems(r.Context(), year)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, itemsToDTO(items))
}

// CreateItem godoc
// @Summary Add an expense item
// @Tags Expenses
// @Accept json
// @Produce json
// @Param item body ExpenseItemDTO true "Expense item"
// @Success 201 {object} ExpenseItemDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/expenses/items [post]
// @Security BearerAuth
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating expense item")

	item, err := decodeItem(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	created, err := h.service.CreateItem(r.Context(), item)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, itemToDTO(created))
}

// UpdateItem godoc
// @Summary Update an expense item
// @Tags Expenses
// @Accept json
// @Produce json
// @Param itemId path string true "Item id"
// @Param item body ExpenseItemDTO true "Expense item"
// @Success 200 {object} ExpenseItemDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/expenses/items/{itemId} [put]
// @Security BearerAuth
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := uuid.Parse(mux.Vars(r)["itemId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid item id", err.Error())
		return
	}
	item, err := decodeItem(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	if item.Id != uuid.Nil && item.Id != id {
		rest.WriteError(w, http.StatusBadRequest, "Invalid item id in request body", "")
		return
	}
	item.Id = id

	updated, err := h.service.UpdateItem(r.Context(), item)
	if err != nil {
		handleError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, itemToDTO(updated))
}

// DeleteItem godoc
// @Summary Delete an expense item
// @Tags Expenses
// @Param itemId path string true "Item id"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/expenses/items/{itemId} [delete]
// @Security BearerAuth
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["itemId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid item id", err.Error())
		return
	}
	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func kindAndYear(w http.ResponseWriter, r *http.Request) (Kind, int, bool) {
	vars := mux.Vars(r)
	kind, err := ParseKind(vars["kind"])
	if err != nil {
		rest.WriteError(w, http.StatusNotFound, "Unknown series", err.Error())
		return "", 0, false
	}
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", err.Error())
		return "", 0, false
	}
	return kind, year, true
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		rest.WriteError(w, http.StatusNotFound, "Expense item not found", err.Error())
	case errors.Is(err, ErrInvalidYear), errors.Is(err, ErrInvalidMonth),
		errors.Is(err, ErrInvalidItem), errors.Is(err, ErrInvalidCategory), errors.Is(err, ErrInvalidKind):
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		rest.WriteError(w, http.StatusInternalServerError, "Storage error", err.Error())
	}
}

func decodeItem(r *http.Request) (ExpenseItem, error) {
	var dto ExpenseItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		return ExpenseItem{}, err
	}
	date, err := time.Parse(dateLayout, dto.Date)
	if err != nil {
		return ExpenseItem{}, fmt.Errorf("date must be in %s format", dateLayout)
	}
	item := ExpenseItem{
		Date:        date,
		Description: dto.Description,
		Category:    Category(dto.Category),
		Amount:      dto.Amount,
	}
	if dto.Id != "" {
		id, err := uuid.Parse(dto.Id)
		if err != nil {
			return ExpenseItem{}, err
		}
		item.Id = id
	}
	return item, nil
}

func itemToDTO(item ExpenseItem) ExpenseItemDTO {
	return ExpenseItemDTO{
		Id:          item.Id.String(),
		Date:        item.Date.Format(dateLayout),
		Description: item.Description,
		Category:    string(item.Category),
		Amount:      item.Amount,
	}
}

func itemsToDTO(items []ExpenseItem) []ExpenseItemDTO {
	dtos := make([]ExpenseItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, itemToDTO(item))
	}
	return dtos
}

func yearViewToDTO(view YearView) YearViewDTO {
	months := make([]MonthlyAmountDTO, 0, len(view.Months))
	for _, m := range view.Months {
		months = append(months, MonthlyAmountDTO{Month: m.Month, Amount: m.Amount, Items: itemsToDTO(m.Items)})
	}
	warnings := make([]DiscrepancyDTO, 0, len(view.Discrepancies))
	for _, d := range view.Discrepancies {
		warnings = append(warnings, DiscrepancyDTO{
			Month:      d.Month,
			Recorded:   d.Recorded,
			ItemsTotal: d.ItemsTotal,
			ItemsCount: d.ItemsCount,
		})
	}
	return YearViewDTO{
		Kind:     string(view.Kind),
		Year:     view.Year,
		Months:   months,
		Total:    view.Total,
		Average:  view.Average,
		Warnings: warnings,
	}
}
