package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fintrack/fintrack/internal/cache"
	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/utils"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const failureMemory = time.Hour

type SessionClient interface {
	RefreshSession(ctx context.Context, refreshToken string) (Session, error)
}

// SessionRefresher exchanges refresh tokens for new sessions. Concurrent
// requests for the same token share one call to the auth service, and a
// session obtained within the cooldown window is handed out again instead of
// refreshing anew. After MaxFailures consecutive failures for a token, or any
// rejection by the auth service, the caller has to log in again.
type SessionRefresher struct {
	client      SessionClient
	maxFailures int
	group       singleflight.Group
	recent      *cache.LRU[string, Session]
	failures    *cache.LRU[string, int]
}

func NewSessionRefresher(client SessionClient, cfg config.Session, cacheSize int, clock utils.Clock) *SessionRefresher {
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 1
	}
	return &SessionRefresher{
		client:      client,
		maxFailures: maxFailures,
		recent:      cache.NewLRU[string, Session](cacheSize, cfg.RefreshCooldown, clock),
		failures:    cache.NewLRU[string, int](cacheSize, failureMemory, clock),
	}
}

// Caches exposes the internal caches so they can be cleaned periodically.
func (r *SessionRefresher) Caches() []cache.Cleaner {
	return []cache.Cleaner{r.recent, r.failures}
}

func (r *SessionRefresher) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if refreshToken == "" {
		return Session{}, fmt.Errorf("%w: missing refresh token", ErrReauthenticationRequired)
	}
	if failures, ok := r.failures.Get(refreshToken); ok && failures >= r.maxFailures {
		return Session{}, ErrReauthenticationRequired
	}
	if session, ok := r.recent.Get(refreshToken); ok {
		log.Trace("reusing session refreshed within cooldown")
		return session, nil
	}

	v, err, shared := r.group.Do(refreshToken, func() (any, error) {
		// Shared by every waiting caller, so it must outlive the first caller's request.
		session, err := r.client.RefreshSession(context.WithoutCancel(ctx), refreshToken)
		if err != nil {
			return nil, r.recordFailure(refreshToken, err)
		}
		r.failures.Delete(refreshToken)
		r.recent.Set(refreshToken, session)
		return session, nil
	})
	if err != nil {
		return Session{}, err
	}
	if shared {
		log.Trace("session refresh shared with concurrent callers")
	}
	return v.(Session), nil
}

func (r *SessionRefresher) recordFailure(refreshToken string, err error) error {
	if !isTemporary(err) {
		r.failures.Set(refreshToken, r.maxFailures)
		log.Debugf("refresh token rejected by auth service: %v", err)
		return fmt.Errorf("%w: %v", ErrReauthenticationRequired, err)
	}

	failures, _ := r.failures.Get(refreshToken)
	failures++
	r.failures.Set(refreshToken, failures)
	log.Warnf("session refresh failed (%d/%d): %v", failures, r.maxFailures, err)
	if failures >= r.maxFailures {
		return fmt.Errorf("%w: %w", ErrReauthenticationRequired, err)
	}
	return err
}

func IsReauthenticationRequired(err error) bool {
	return errors.Is(err, ErrReauthenticationRequired)
}
