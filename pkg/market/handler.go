package market

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"github.com/fintrack/fintrack/internal/rest"
	log "github.com/sirupsen/logrus"
)

const SecretHeader = "X-Webhook-Secret"

const maxBodyBytes = 4 << 20

type IngestResultDTO struct {
	Stored  int `json:"stored"`
	Symbols int `json:"symbols"`
	Updated int `json:"updatedProfiles"`
}

type Handler struct {
	service      Service
	secret       string
	maxBatchSize int
}

func NewHandler(service Service, secret string, maxBatchSize int) *Handler {
	return &Handler{service: service, secret: secret, maxBatchSize: maxBatchSize}
}

// Ticks godoc
// @Summary Receive market price ticks
// @Description Accepts a single tick object or an array of ticks
// @Tags Market
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Shared webhook secret"
// @Success 202 {object} IngestResultDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 401 {object} rest.ErrorResponse
// @Failure 413 {object} rest.ErrorResponse
// @Router /api/market/ticks [post]
func (h *Handler) Ticks(w http.ResponseWriter, r *http.Request) {
	log.Trace("Receiving market ticks")
	if !h.authorized(r) {
		rest.WriteError(w, http.StatusUnauthorized, "Invalid webhook secret", "")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		rest.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large", err.Error())
		return
	}
	ticks, err := DecodeTicks(body, h.maxBatchSize)
	if err != nil {
		h.handleError(w, err)
		return
	}

	result, err := h.service.Ingest(r.Context(), ticks)
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	rest.WriteJSON(w, http.StatusAccepted, IngestResultDTO{
		Stored:  result.Stored,
		Symbols: result.Symbols,
		Updated: len(result.UpdatedUsers),
	})
}

// authorized rejects every request while no secret is configured.
func (h *Handler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	given := r.Header.Get(SecretHeader)
	return subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) == 1
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBatchTooLarge):
		rest.WriteError(w, http.StatusRequestEntityTooLarge, "Too many ticks in one request", err.Error())
	case errors.Is(err, ErrInvalidTick):
		rest.WriteError(w, http.StatusBadRequest, "Invalid price tick", err.Error())
	default:
		log.Errorf("failed to ingest price ticks: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to store price ticks", err.Error())
	}
}
