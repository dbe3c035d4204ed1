package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/pkg/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiddleware(t *testing.T) (*mux.Router, *user.StubUserRepository) {
	repo := user.NewStubUserRepository()
	users := user.NewUserService(repo)
	validator := NewJwtValidator(config.Auth{BaseUrl: testBaseUrl, JwtSecret: testSecret})

	r := mux.NewRouter()
	r.Use(Middleware(validator, users))
	r.HandleFunc("/api/whoami", func(w http.ResponseWriter, r *http.Request) {
		u, err := user.CurrentUser(r.Context())
		require.NoError(t, err)
		assert.NotEmpty(t, CurrentToken(r.Context()))
		_, _ = w.Write([]byte(u.Email))
	})
	return r, repo
}

func TestMiddleware(t *testing.T) {
	t.Run("should reject request without token", func(t *testing.T) {
		router, _ := setupMiddleware(t)
		resp := httptest.NewRecorder()

		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("should reject invalid token", func(t *testing.T) {
		router, _ := setupMiddleware(t)
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, []byte("wrong-secret-wrong-secret-wrong-secret"), validClaims()))
		resp := httptest.NewRecorder()

		router.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("should create local user on first request and reuse it", func(t *testing.T) {
		// given
		router, repo := setupMiddleware(t)
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

		// when
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			require.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, "jane@example.com", resp.Body.String())
		}

		// then
		u, err := repo.GetUserByUid(context.Background(), validClaims().Subject)
		require.NoError(t, err)
		assert.Equal(t, "jane", u.DisplayName)
	})
}

func TestExtractToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":  "abc",
		"bearer abc":  "abc",
		"Basic abc":   "",
		"Bearer":      "",
		"":            "",
		"Bearer a b":  "",
		"Bearer  abc": "abc",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		assert.Equal(t, want, ExtractToken(req), "header %q", header)
	}
}
