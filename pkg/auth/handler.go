package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fintrack/fintrack/internal/event_bus"
	"github.com/fintrack/fintrack/internal/rest"
	"github.com/fintrack/fintrack/pkg/user"
	log "github.com/sirupsen/logrus"
)

type RefreshRequestDTO struct {
	RefreshToken string `json:"refreshToken"`
}

type SessionDTO struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
	ExpiresAt    int64  `json:"expiresAt"`
}

type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (Session, error)
}

type Handler struct {
	refresher Refresher
	client    Client
	eventBus  *event_bus.EventBus
}

func NewHandler(refresher Refresher, client Client, eventBus *event_bus.EventBus) *Handler {
	return &Handler{refresher: refresher, client: client, eventBus: eventBus}
}

// Refresh godoc
// @Summary Exchange a refresh token for a new session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequestDTO true "Refresh token"
// @Success 200 {object} SessionDTO
// @Failure 401 {object} rest.ErrorResponse "Login required"
// @Failure 502 {object} rest.ErrorResponse "Auth service unavailable"
// @Router /api/auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Refreshing session")

	var dto RefreshRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	session, err := h.refresher.Refresh(r.Context(), dto.RefreshToken)
	if err != nil {
		if IsReauthenticationRequired(err) {
			rest.WriteError(w, http.StatusUnauthorized, "Reauthentication required", err.Error())
			return
		}
		rest.WriteError(w, http.StatusBadGateway, "Session refresh failed", err.Error())
		return
	}

	rest.WriteJSON(w, http.StatusOK, SessionDTO{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    session.TokenType,
		ExpiresIn:    session.ExpiresIn,
		ExpiresAt:    session.ExpiresAt,
	})
}

// Logout godoc
// @Summary End the current session
// @Tags Auth
// @Success 204 "No Content"
// @Router /api/auth/logout [post]
// @Security BearerAuth
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userId, err := user.CurrentId(ctx)
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
		return
	}

	if err := h.client.Logout(ctx, CurrentToken(ctx)); err != nil {
		log.Warnf("auth service logout failed for user %d: %v", userId, err)
	}

	event := event_bus.NewEvent(ctx, event_bus.UserLoggedOut, event_bus.UserLoggedOutEvent{UserId: userId})
	if err := h.eventBus.Publish(event); err != nil {
		log.Warnf("failed to publish logout of user %d: %v", userId, err)
	}
	w.WriteHeader(http.StatusNoContent)
}
