package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fintrack/fintrack/internal/rest"
	"github.com/fintrack/fintrack/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type UserResolver interface {
	GetOrCreateByUid(ctx context.Context, uid string, email string) (user.User, error)
}

type tokenKey struct{}

// Middleware authenticates requests by their bearer session token and puts the
// matching local user into the request context.
func Middleware(validator TokenValidator, users UserResolver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				rest.WriteError(w, http.StatusUnauthorized, "Missing or invalid token", "")
				return
			}
			claims, err := validator.Validate(token)
			if err != nil {
				log.Debugf("rejected session token: %v", err)
				rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
				return
			}

			u, err := users.GetOrCreateByUid(r.Context(), claims.Subject, claims.Email)
			if err != nil {
				if errors.Is(err, user.ErrUserDataInvalid) {
					rest.WriteError(w, http.StatusForbidden, "User not allowed", err.Error())
					return
				}
				log.Errorf("failed to resolve user %s: %v", claims.Subject, err)
				rest.WriteError(w, http.StatusInternalServerError, "Failed to resolve user", err.Error())
				return
			}
			log.Tracef("authenticated user %d", u.Id)

			ctx := user.WithUser(r.Context(), u)
			ctx = context.WithValue(ctx, tokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ExtractToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// CurrentToken returns the session token the request was authenticated with.
func CurrentToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
