package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// TokenStore keeps one pending or completed Google authorization per user.
type TokenStore interface {
	// StartAuthorization replaces any previous authorization with a pending one.
	StartAuthorization(ctx context.Context, userId int, nonce string) error
	// CompleteAuthorization attaches the token to the pending authorization
	// and reports whether the nonce was known.
	CompleteAuthorization(ctx context.Context, nonce string, token *oauth2.Token) (bool, error)
	// GetToken returns nil when the user has not authorized access.
	GetToken(ctx context.Context, userId int) (*oauth2.Token, error)
	DeleteToken(ctx context.Context, userId int) error
}

type TokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) StartAuthorization(ctx context.Context, userId int, nonce string) error {
	query := `INSERT INTO google_auth (user_id, nonce) VALUES ($1, $2)
				ON CONFLICT (user_id) DO UPDATE SET nonce = EXCLUDED.nonce, access_token = NULL, refresh_token = NULL, expiry = NULL`
	if _, err := r.db.Exec(ctx, query, userId, nonce); err != nil {
		err = fmt.Errorf("failed to store Google auth nonce for user %d: %w", userId, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *TokenRepository) CompleteAuthorization(ctx context.Context, nonce string, token *oauth2.Token) (bool, error) {
	query := `UPDATE google_auth SET access_token = $1, refresh_token = $2, expiry = $3 WHERE nonce = $4`
	tag, err := r.db.Exec(ctx, query, token.AccessToken, token.RefreshToken, token.Expiry.Unix(), nonce)
	if err != nil {
		err = fmt.Errorf("unable to store Google auth token: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TokenRepository) GetToken(ctx context.Context, userId int) (*oauth2.Token, error) {
	query := `SELECT access_token, refresh_token, expiry FROM google_auth WHERE user_id = $1 AND access_token IS NOT NULL`

	var token oauth2.Token
	var refreshToken *string
	var expiry *int64
	err := r.db.QueryRow(ctx, query, userId).Scan(&token.AccessToken, &refreshToken, &expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google auth token: %w", err)
	}
	if refreshToken != nil {
		token.RefreshToken = *refreshToken
	}
	if expiry != nil {
		token.Expiry = time.Unix(*expiry, 0)
	}
	return &token, nil
}

func (r *TokenRepository) DeleteToken(ctx context.Context, userId int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM google_auth WHERE user_id = $1`, userId); err != nil {
		err = fmt.Errorf("failed to delete Google auth row for user %d: %w", userId, err)
		log.Error(err)
		return err
	}
	return nil
}
