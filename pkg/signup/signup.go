package signup

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/fintrack/fintrack/pkg/auth"
	"github.com/fintrack/fintrack/pkg/user"
	log "github.com/sirupsen/logrus"
)

const minPasswordLength = 6

var ErrInvalidSignup = errors.New("invalid sign up data")
var ErrRejected = errors.New("sign up rejected")

type Request struct {
	Email       string
	Password    string
	DisplayName string
}

type UserCreator interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
}

type ProfileCreator interface {
	CreateDefaultProfile(ctx context.Context, userId int) error
}

type Service interface {
	SignUp(ctx context.Context, req Request) (user.User, error)
}

// ServiceImpl registers the account with the auth service first, then creates
// the local user and an empty financial profile.
type ServiceImpl struct {
	authClient auth.Client
	users      UserCreator
	profiles   ProfileCreator
}

func NewService(authClient auth.Client, users UserCreator, profiles ProfileCreator) *ServiceImpl {
	return &ServiceImpl{authClient: authClient, users: users, profiles: profiles}
}

func (s *ServiceImpl) SignUp(ctx context.Context, req Request) (user.User, error) {
	req, err := validate(req)
	if err != nil {
		return user.User{}, err
	}

	authUser, err := s.authClient.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		var apiErr *auth.APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return user.User{}, fmt.Errorf("%w: %s", ErrRejected, apiErr.Message)
		}
		return user.User{}, fmt.Errorf("auth service sign up failed: %w", err)
	}
	log.Infof("Registered auth user %s", authUser.Id)

	created, err := s.users.CreateUser(ctx, user.User{
		Uid:         authUser.Id,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.profiles.CreateDefaultProfile(ctx, created.Id); err != nil {
		return user.User{}, fmt.Errorf("failed to create profile: %w", err)
	}
	return created, nil
}

func validate(req Request) (Request, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	address, err := mail.ParseAddress(req.Email)
	if err != nil || address.Address != req.Email {
		return req, fmt.Errorf("%w: email address is not valid", ErrInvalidSignup)
	}
	if len(req.Password) < minPasswordLength {
		return req, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidSignup, minPasswordLength)
	}
	if req.DisplayName == "" {
		req.DisplayName = strings.SplitN(req.Email, "@", 2)[0]
	}
	return req, nil
}
