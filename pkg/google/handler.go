package google

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fintrack/fintrack/internal/rest"
	"github.com/fintrack/fintrack/pkg/monthly"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type SpreadsheetDTO struct {
	Id  string `json:"id"`
	Url string `json:"url"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

// ExportYear godoc
// @Summary Export savings and expenses of a year to Google Sheets
// @Tags Google
// @Produce json
// @Param year path int true "Year"
// @Success 201 {object} SpreadsheetDTO
// @Failure 403 {object} rest.ErrorResponse "Google access not granted"
// @Router /api/integrations/google/export/{year} [post]
func (h *Handler) ExportYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", err.Error())
		return
	}

	sheet, err := h.service.ExportYear(r.Context(), year)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthenticated):
			rest.WriteError(w, http.StatusForbidden, "Google authorization required", err.Error())
		case errors.Is(err, monthly.ErrInvalidYear):
			rest.WriteError(w, http.StatusBadRequest, "Invalid year", err.Error())
		default:
			log.Errorf("Google export failed: %v", err)
			rest.WriteError(w, http.StatusBadGateway, "Failed to export to Google Sheets", err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	rest.WriteJSON(w, http.StatusCreated, SpreadsheetDTO{Id: sheet.Id, Url: sheet.Url})
}
