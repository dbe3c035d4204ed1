package google

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/rest"
	"github.com/fintrack/fintrack/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

var ErrUnauthenticated = errors.New("user is unauthenticated, authentication is required")

const callbackPath = "/api/integrations/google/auth/callback"

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

type GoogleAuth struct {
	store       TokenStore
	oauthConfig *oauth2.Config
}

func NewGoogleAuth(store TokenStore, cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + callbackPath,
		Scopes:       []string{sheets.DriveFileScope},
	}
	return &GoogleAuth{store: store, oauthConfig: oauthConfig}
}

// OAuthLogin godoc
// @Summary Start Google authorization
// @Tags Google
// @Produce json
// @Param finalUrl query string false "Where to send the browser afterwards"
// @Success 200 {object} googleAuthRedirect
// @Router /api/integrations/google/auth/login [get]
func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "unable to retrieve current user", err.Error())
		return
	}

	stateNonce := uuid.New().String()
	if err := g.store.StartAuthorization(r.Context(), userId, stateNonce); err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", err.Error())
		return
	}

	finalUrl := r.URL.Query().Get("finalUrl")
	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	w.Header().Set("Content-Type", "application/json")
	rest.WriteJSON(w, http.StatusOK, googleAuthRedirect{RedirectUrl: u})
}

// OAuthCallback is called by Google and redirects the browser to the finalUrl
// given at login, with a success flag.
func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	finalUrl, nonce, found := strings.Cut(r.FormValue("state"), "|")
	if !found || nonce == "" {
		rest.WriteError(w, http.StatusBadRequest, "Invalid OAuth state", "")
		return
	}

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	known, err := g.store.CompleteAuthorization(r.Context(), nonce, token)
	if err != nil || !known {
		log.Warnf("unable to complete Google authorization for nonce %s", nonce)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

// OAuthLogout godoc
// @Summary Forget the Google authorization of the current user
// @Tags Google
// @Success 204
// @Router /api/integrations/google/auth/logout [post]
func (g *GoogleAuth) OAuthLogout(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "unable to retrieve current user", err.Error())
		return
	}
	if err := g.store.DeleteToken(r.Context(), userId); err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Client returns an authorized HTTP client, or ErrUnauthenticated when the
// user has not granted access yet.
func (g *GoogleAuth) Client(ctx context.Context, userId int) (*http.Client, error) {
	token, err := g.store.GetToken(ctx, userId)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	if token == nil {
		log.Debug("user is unauthenticated, authentication is required")
		return nil, ErrUnauthenticated
	}
	return g.oauthConfig.Client(context.WithoutCancel(ctx), token), nil
}
