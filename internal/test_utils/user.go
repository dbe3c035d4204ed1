package test_utils

import (
	"context"
	"testing"

	"github.com/fintrack/fintrack/pkg/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const TestUserId = 123

type TestUserProvider struct{}

func (p TestUserProvider) GetCurrentUser(ctx context.Context) (user.User, error) {
	return TestUser(), nil
}

func TestUser() user.User {
	return user.User{
		Id:          TestUserId,
		Uid:         "6f1c2a5e-1c1f-4b59-9a43-5f2f7f0d8b11",
		Email:       "test@fintrack.local",
		DisplayName: "Test User",
	}
}

// UserContext returns a context carrying the test user.
func UserContext() context.Context {
	return user.WithUser(context.Background(), TestUser())
}

// InsertUser stores a fresh user row and returns its id, for repositories with foreign keys.
func InsertUser(t *testing.T, ctx context.Context, db *pgxpool.Pool) int {
	t.Helper()
	var id int
	err := db.QueryRow(ctx,
		`INSERT INTO users (uid, email, display_name) VALUES ($1, $2, $3) RETURNING id`,
		uuid.New(), "user@fintrack.local", "user",
	).Scan(&id)
	require.NoError(t, err)
	return id
}
