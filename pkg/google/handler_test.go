package google

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/test_utils"
	"github.com/fintrack/fintrack/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Application {
	cfg := config.Default()
	cfg.Google = config.Google{ClientId: "client-id", ClientSecret: "client-secret"}
	return cfg
}

func withTestUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(user.WithUser(r.Context(), test_utils.TestUser())))
	})
}

func TestHandler_ExportYear(t *testing.T) {
	t.Run("should return created spreadsheet", func(t *testing.T) {
		// given
		service, _ := setupExport(t, true)
		router := mux.NewRouter()
		router.Use(withTestUser)
		router.HandleFunc("/api/integrations/google/export/{year}", NewHandler(service).ExportYear).Methods("POST")
		resp := httptest.NewRecorder()

		// when
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/integrations/google/export/2024", nil))

		// then
		require.Equal(t, http.StatusCreated, resp.Code)
		assert.JSONEq(t, `{"id":"sheet-1","url":"https://docs.google.com/spreadsheets/d/sheet-1"}`, resp.Body.String())
	})

	t.Run("should answer forbidden without authorization", func(t *testing.T) {
		service, _ := setupExport(t, false)
		router := mux.NewRouter()
		router.Use(withTestUser)
		router.HandleFunc("/api/integrations/google/export/{year}", NewHandler(service).ExportYear).Methods("POST")
		resp := httptest.NewRecorder()

		router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/integrations/google/export/2024", nil))

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestGoogleAuth_OAuthLogin(t *testing.T) {
	// given
	store := NewTokenStoreStub()
	auth := NewGoogleAuth(store, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/integrations/google/auth/login?finalUrl=http://app/settings", nil).
		WithContext(test_utils.UserContext())
	resp := httptest.NewRecorder()

	// when
	auth.OAuthLogin(resp, req)

	// then
	require.Equal(t, http.StatusOK, resp.Code)
	var body googleAuthRedirect
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	redirect, err := url.Parse(body.RedirectUrl)
	require.NoError(t, err)
	nonce := store.Nonce(test_utils.TestUserId)
	assert.NotEmpty(t, nonce)
	assert.Equal(t, "http://app/settings|"+nonce, redirect.Query().Get("state"))
	assert.Equal(t, "offline", redirect.Query().Get("access_type"))
	assert.True(t, strings.HasSuffix(redirect.Query().Get("redirect_uri"), callbackPath))
}

func TestGoogleAuth_OAuthCallback(t *testing.T) {
	auth := NewGoogleAuth(NewTokenStoreStub(), testConfig())
	resp := httptest.NewRecorder()

	auth.OAuthCallback(resp, httptest.NewRequest(http.MethodGet, "/api/integrations/google/auth/callback?code=c&state=broken", nil))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGoogleAuth_OAuthLogout(t *testing.T) {
	// given
	store := NewTokenStoreStub()
	require.NoError(t, store.StartAuthorization(test_utils.UserContext(), test_utils.TestUserId, "nonce"))
	auth := NewGoogleAuth(store, testConfig())
	resp := httptest.NewRecorder()

	// when
	auth.OAuthLogout(resp, httptest.NewRequest(http.MethodPost, "/api/integrations/google/auth/logout", nil).
		WithContext(test_utils.UserContext()))

	// then
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, store.Nonce(test_utils.TestUserId))
}
