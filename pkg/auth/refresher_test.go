package auth

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnectionRefused = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

type stubSessionClient struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func (s *stubSessionClient) RefreshSession(ctx context.Context, refreshToken string) (Session, error) {
	n := s.calls.Add(1)
	if s.started != nil && n == 1 {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return Session{}, s.err
	}
	return Session{AccessToken: "access-" + refreshToken, RefreshToken: "next-" + refreshToken}, nil
}

func newRefresher(client SessionClient, clock utils.Clock) *SessionRefresher {
	cfg := config.Session{RefreshCooldown: 5 * time.Second, MaxFailures: 3}
	return NewSessionRefresher(client, cfg, 100, clock)
}

func TestSessionRefresher_Refresh(t *testing.T) {
	t.Run("should share one refresh between concurrent callers", func(t *testing.T) {
		// given
		client := &stubSessionClient{started: make(chan struct{}), release: make(chan struct{})}
		refresher := newRefresher(client, utils.NewMockClock(time.Now()))

		// when
		var wg sync.WaitGroup
		results := make([]Session, 10)
		errs := make([]error, 10)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = refresher.Refresh(context.Background(), "token")
			}()
		}
		<-client.started
		time.Sleep(20 * time.Millisecond)
		close(client.release)
		wg.Wait()

		// then
		assert.Equal(t, int32(1), client.calls.Load())
		for i := range results {
			require.NoError(t, errs[i])
			assert.Equal(t, "access-token", results[i].AccessToken)
		}
	})

	t.Run("should reuse session within cooldown and refresh after it", func(t *testing.T) {
		// given
		clock := utils.NewMockClock(time.Now())
		client := &stubSessionClient{}
		refresher := newRefresher(client, clock)

		// when
		_, err := refresher.Refresh(context.Background(), "token")
		require.NoError(t, err)
		clock.Advance(4 * time.Second)
		_, err = refresher.Refresh(context.Background(), "token")
		require.NoError(t, err)
		callsWithinCooldown := client.calls.Load()
		clock.Advance(2 * time.Second)
		_, err = refresher.Refresh(context.Background(), "token")
		require.NoError(t, err)

		// then
		assert.Equal(t, int32(1), callsWithinCooldown)
		assert.Equal(t, int32(2), client.calls.Load())
	})

	t.Run("should require login after max consecutive failures", func(t *testing.T) {
		// given
		client := &stubSessionClient{err: errConnectionRefused}
		refresher := newRefresher(client, utils.NewMockClock(time.Now()))

		// when
		_, err1 := refresher.Refresh(context.Background(), "token")
		_, err2 := refresher.Refresh(context.Background(), "token")
		_, err3 := refresher.Refresh(context.Background(), "token")
		_, err4 := refresher.Refresh(context.Background(), "token")

		// then
		assert.False(t, IsReauthenticationRequired(err1))
		assert.False(t, IsReauthenticationRequired(err2))
		assert.True(t, IsReauthenticationRequired(err3))
		assert.True(t, IsReauthenticationRequired(err4))
		assert.Equal(t, int32(3), client.calls.Load())
	})

	t.Run("should reset failures after a success", func(t *testing.T) {
		// given
		clock := utils.NewMockClock(time.Now())
		client := &stubSessionClient{err: errConnectionRefused}
		refresher := newRefresher(client, clock)
		_, _ = refresher.Refresh(context.Background(), "token")
		_, _ = refresher.Refresh(context.Background(), "token")

		// when
		client.err = nil
		_, err := refresher.Refresh(context.Background(), "token")
		require.NoError(t, err)
		clock.Advance(time.Minute)
		client.err = errConnectionRefused
		_, err = refresher.Refresh(context.Background(), "token")

		// then
		assert.Error(t, err)
		assert.False(t, IsReauthenticationRequired(err))
	})

	t.Run("should require login at once when token is rejected", func(t *testing.T) {
		client := &stubSessionClient{err: &APIError{StatusCode: 400, Message: "Invalid Refresh Token"}}
		refresher := newRefresher(client, utils.NewMockClock(time.Now()))

		_, err := refresher.Refresh(context.Background(), "token")

		assert.True(t, IsReauthenticationRequired(err))
	})

	t.Run("should require login at once when response cannot be read", func(t *testing.T) {
		// given
		client := &stubSessionClient{err: errors.New("invalid character '<' looking for beginning of value")}
		refresher := newRefresher(client, utils.NewMockClock(time.Now()))

		// when
		_, err := refresher.Refresh(context.Background(), "token")

		// then
		assert.True(t, IsReauthenticationRequired(err))
		assert.Equal(t, int32(1), client.calls.Load())
	})

	t.Run("should require login without token", func(t *testing.T) {
		refresher := newRefresher(&stubSessionClient{}, utils.NewMockClock(time.Now()))

		_, err := refresher.Refresh(context.Background(), "")

		assert.True(t, IsReauthenticationRequired(err))
	})
}
