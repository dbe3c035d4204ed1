package google

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

type stubAuthorization struct {
	nonce string
	token *oauth2.Token
}

type TokenStoreStub struct {
	mu   sync.Mutex
	auth map[int]stubAuthorization
}

func NewTokenStoreStub() *TokenStoreStub {
	return &TokenStoreStub{auth: map[int]stubAuthorization{}}
}

func (s *TokenStoreStub) StartAuthorization(ctx context.Context, userId int, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth[userId] = stubAuthorization{nonce: nonce}
	return nil
}

func (s *TokenStoreStub) CompleteAuthorization(ctx context.Context, nonce string, token *oauth2.Token) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userId, a := range s.auth {
		if a.nonce == nonce {
			a.token = token
			s.auth[userId] = a
			return true, nil
		}
	}
	return false, nil
}

func (s *TokenStoreStub) GetToken(ctx context.Context, userId int) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth[userId].token, nil
}

func (s *TokenStoreStub) DeleteToken(ctx context.Context, userId int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.auth, userId)
	return nil
}

// Nonce returns the pending nonce of a user.
func (s *TokenStoreStub) Nonce(userId int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth[userId].nonce
}
