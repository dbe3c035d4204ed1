package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/fintrack/fintrack/internal/config"
	log "github.com/sirupsen/logrus"
)

type Client interface {
	SignUp(ctx context.Context, email, password string) (AuthUser, error)
	RefreshSession(ctx context.Context, refreshToken string) (Session, error)
	Logout(ctx context.Context, accessToken string) error
}

// HttpClient talks to the REST API of the hosted auth service.
type HttpClient struct {
	baseUrl     string
	anonKey     string
	maxAttempts uint
	retryDelay  time.Duration
	http        *http.Client
}

func NewHttpClient(cfg config.Auth) *HttpClient {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}
	return &HttpClient{
		baseUrl:     Issuer(cfg.BaseUrl),
		anonKey:     cfg.AnonKey,
		maxAttempts: maxAttempts,
		retryDelay:  200 * time.Millisecond,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HttpClient) SignUp(ctx context.Context, email, password string) (AuthUser, error) {
	var response struct {
		AuthUser
		User *AuthUser `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/signup", "", body, &response); err != nil {
		return AuthUser{}, err
	}
	// The service answers with a session when sign-ups are auto-confirmed and
	// with the bare user otherwise.
	if response.User != nil {
		return *response.User, nil
	}
	if response.Id == "" {
		return AuthUser{}, fmt.Errorf("auth service returned no user id")
	}
	return response.AuthUser, nil
}

func (c *HttpClient) RefreshSession(ctx context.Context, refreshToken string) (Session, error) {
	var session Session
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.call(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

func (c *HttpClient) Logout(ctx context.Context, accessToken string) error {
	return c.call(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *HttpClient) call(ctx context.Context, method, path, bearer string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, bytes.NewReader(payload))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("apikey", c.anonKey)
			if bearer != "" {
				req.Header.Set("Authorization", "Bearer "+bearer)
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 300 {
				return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
			}
			if out == nil || resp.StatusCode == http.StatusNoContent {
				return nil
			}
			return json.NewDecoder(resp.Body).Decode(out)
		},
		retry.Context(ctx),
		retry.Attempts(c.maxAttempts),
		retry.Delay(c.retryDelay),
		retry.RetryIf(func(err error) bool {
			if isTemporary(err) {
				log.Debugf("retrying auth request %s %s: %v", method, path, err)
				return true
			}
			return false
		}),
		retry.LastErrorOnly(true),
	)
}

// readErrorMessage extracts the human readable message from an error body.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return err.Error()
	}
	var parsed struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		for _, m := range []string{parsed.Msg, parsed.Message, parsed.ErrorDescription, parsed.Error} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(raw))
}
