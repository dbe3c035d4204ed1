package signup

import (
	"context"
	"errors"
	"testing"

	"github.com/fintrack/fintrack/internal/event_bus"
	"github.com/fintrack/fintrack/pkg/auth"
	"github.com/fintrack/fintrack/pkg/profile"
	"github.com/fintrack/fintrack/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthClient struct {
	err     error
	signups []string
}

func (s *stubAuthClient) SignUp(ctx context.Context, email, password string) (auth.AuthUser, error) {
	if s.err != nil {
		return auth.AuthUser{}, s.err
	}
	s.signups = append(s.signups, email)
	return auth.AuthUser{Id: "6f1c6a34-5b8e-4d7c-9d2e-1c0f3b7a9e11", Email: email}, nil
}

func (s *stubAuthClient) RefreshSession(ctx context.Context, refreshToken string) (auth.Session, error) {
	return auth.Session{}, errors.New("not supported")
}

func (s *stubAuthClient) Logout(ctx context.Context, accessToken string) error {
	return nil
}

type fixture struct {
	client   *stubAuthClient
	users    *user.StubUserRepository
	profiles *profile.RepositoryStub
	service  *ServiceImpl
}

func setup() fixture {
	client := &stubAuthClient{}
	users := user.NewStubUserRepository()
	profiles := profile.NewRepositoryStub()
	service := NewService(
		client,
		user.NewUserService(users),
		profile.NewService(profiles, event_bus.NewEventBus()),
	)
	return fixture{client: client, users: users, profiles: profiles, service: service}
}

func TestSignUp(t *testing.T) {
	t.Run("should create auth user, local user and profile", func(t *testing.T) {
		// given
		f := setup()

		// when
		created, err := f.service.SignUp(context.Background(), Request{
			Email:    " jane@example.com ",
			Password: "secret1",
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"jane@example.com"}, f.client.signups)
		assert.Equal(t, "6f1c6a34-5b8e-4d7c-9d2e-1c0f3b7a9e11", created.Uid)
		assert.Equal(t, "jane", created.DisplayName)

		stored, err := f.users.GetUserByUid(context.Background(), created.Uid)
		require.NoError(t, err)
		assert.Equal(t, created.Id, stored.Id)

		p, err := f.profiles.GetProfile(context.Background(), created.Id)
		require.NoError(t, err)
		assert.False(t, p.OnboardingCompleted)
	})

	t.Run("should reject invalid input before calling auth service", func(t *testing.T) {
		f := setup()

		_, errEmail := f.service.SignUp(context.Background(), Request{Email: "not-an-email", Password: "secret1"})
		_, errPassword := f.service.SignUp(context.Background(), Request{Email: "jane@example.com", Password: "123"})

		assert.ErrorIs(t, errEmail, ErrInvalidSignup)
		assert.ErrorIs(t, errPassword, ErrInvalidSignup)
		assert.Empty(t, f.client.signups)
	})

	t.Run("should report rejection by auth service", func(t *testing.T) {
		// given
		f := setup()
		f.client.err = &auth.APIError{StatusCode: 422, Message: "User already registered"}

		// when
		_, err := f.service.SignUp(context.Background(), Request{Email: "jane@example.com", Password: "secret1"})

		// then
		assert.ErrorIs(t, err, ErrRejected)
		assert.Contains(t, err.Error(), "User already registered")
	})

	t.Run("should not create local user when auth service is down", func(t *testing.T) {
		// given
		f := setup()
		f.client.err = &auth.APIError{StatusCode: 503, Message: "unavailable"}

		// when
		_, err := f.service.SignUp(context.Background(), Request{Email: "jane@example.com", Password: "secret1"})

		// then
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRejected)
		_, lookupErr := f.users.GetUser(context.Background(), 1)
		assert.ErrorIs(t, lookupErr, user.ErrUserNotFound)
	})
}
