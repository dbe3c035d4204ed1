package signup

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fintrack/fintrack/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Form(t *testing.T) {
	handler := NewHandler(setup().service)
	resp := httptest.NewRecorder()

	handler.Form(resp, httptest.NewRequest(http.MethodGet, "/signup", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Body.String(), `<form method="post" action="/signup">`)
}

func TestHandler_SignUp(t *testing.T) {
	t.Run("should accept form post", func(t *testing.T) {
		// given
		handler := NewHandler(setup().service)
		form := url.Values{"email": {"jane@example.com"}, "password": {"secret1"}}
		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp := httptest.NewRecorder()

		// when
		handler.SignUp(resp, req)

		// then
		assert.Equal(t, http.StatusCreated, resp.Code)
		assert.Contains(t, resp.Body.String(), "Account for jane@example.com created")
	})

	t.Run("should re-render form with error and keep email", func(t *testing.T) {
		handler := NewHandler(setup().service)
		form := url.Values{"email": {"jane@example.com"}, "password": {"1"}}
		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp := httptest.NewRecorder()

		handler.SignUp(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), `role="alert"`)
		assert.Contains(t, resp.Body.String(), `value="jane@example.com"`)
	})

	t.Run("should accept json", func(t *testing.T) {
		// given
		handler := NewHandler(setup().service)
		req := httptest.NewRequest(http.MethodPost, "/signup",
			strings.NewReader(`{"email":"jane@example.com","password":"secret1","displayName":"Jane"}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		resp := httptest.NewRecorder()

		// when
		handler.SignUp(resp, req)

		// then
		require.Equal(t, http.StatusCreated, resp.Code)
		assert.Contains(t, resp.Body.String(), `"displayName":"Jane"`)
	})

	t.Run("should map rejection to conflict", func(t *testing.T) {
		f := setup()
		f.client.err = &auth.APIError{StatusCode: 400, Message: "User already registered"}
		handler := NewHandler(f.service)
		req := httptest.NewRequest(http.MethodPost, "/signup",
			strings.NewReader(`{"email":"jane@example.com","password":"secret1"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()

		handler.SignUp(resp, req)

		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("should map auth outage to bad gateway", func(t *testing.T) {
		f := setup()
		f.client.err = &auth.APIError{StatusCode: 500, Message: "boom"}
		handler := NewHandler(f.service)
		req := httptest.NewRequest(http.MethodPost, "/signup",
			strings.NewReader(`{"email":"jane@example.com","password":"secret1"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()

		handler.SignUp(resp, req)

		assert.Equal(t, http.StatusBadGateway, resp.Code)
	})
}
