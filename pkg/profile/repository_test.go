package profile

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/fintrack/fintrack/internal/test_utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, int) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	userId := test_utils.InsertUser(t, ctx, db)
	return ctx, NewRepository(db), userId
}

func TestRepositoryImpl_GetProfile(t *testing.T) {
	t.Run("should return not found for user without profile", func(t *testing.T) {
		ctx, repo, userId := setupTestRepository(t)

		_, err := repo.GetProfile(ctx, userId)

		assert.ErrorIs(t, err, ErrProfileNotFound)
	})

	t.Run("should create default profile once", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)

		// when
		require.NoError(t, repo.CreateProfile(ctx, userId))
		require.NoError(t, repo.CreateProfile(ctx, userId))
		p, err := repo.GetProfile(ctx, userId)

		// then
		require.NoError(t, err)
		assert.Equal(t, Moderate, p.RiskTolerance)
		assert.False(t, p.OnboardingCompleted)
		assert.Empty(t, p.Goals)
	})
}

func TestRepositoryImpl_SaveProfile(t *testing.T) {
	t.Run("should store scalars and collections", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)
		targetDate := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
		p := UserProfile{
			MonthlyIncome:     decimal.RequireFromString("5200.50"),
			MonthlyExpenses:   decimal.NewFromInt(3000),
			RiskTolerance:     Aggressive,
			InvestmentHorizon: 15,
			EmploymentStatus:  "employed",
			Age:               40,
			Goals:             []Goal{{Name: "House", TargetAmount: decimal.NewFromInt(50000), TargetDate: &targetDate, Priority: High}},
			Investments:       []Investment{{Symbol: "VTI", Name: "Vanguard", Amount: decimal.NewFromInt(1000)}},
			Debts:             []Debt{{Name: "Card", Balance: decimal.RequireFromString("450.25"), InterestRate: decimal.NewFromInt(19)}},
		}

		// when
		saved, err := repo.SaveProfile(ctx, userId, p)
		require.NoError(t, err)
		loaded, err := repo.GetProfile(ctx, userId)

		// then
		require.NoError(t, err)
		assert.True(t, loaded.MonthlyIncome.Equal(p.MonthlyIncome))
		assert.Equal(t, Aggressive, loaded.RiskTolerance)
		assert.Equal(t, 40, loaded.Age)
		require.Len(t, loaded.Goals, 1)
		assert.Equal(t, saved.Goals[0].Id, loaded.Goals[0].Id)
		require.NotNil(t, loaded.Goals[0].TargetDate)
		assert.True(t, targetDate.Equal(*loaded.Goals[0].TargetDate))
		require.Len(t, loaded.Investments, 1)
		assert.Nil(t, loaded.Investments[0].CurrentPrice)
		require.Len(t, loaded.Debts, 1)
		assert.True(t, loaded.Debts[0].Balance.Equal(decimal.RequireFromString("450.25")))
	})
}

func TestRepositoryImpl_SaveGoals(t *testing.T) {
	t.Run("should delete removed goals, update kept ones and insert new ones", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)
		require.NoError(t, repo.CreateProfile(ctx, userId))
		initial, err := repo.SaveGoals(ctx, userId, []Goal{
			{Name: "A", Priority: Low, TargetAmount: decimal.NewFromInt(100)},
			{Name: "B", Priority: Low, TargetAmount: decimal.NewFromInt(200)},
		})
		require.NoError(t, err)
		a, b := initial[0], initial[1]
		b.Name = "B updated"

		// when
		_, err = repo.SaveGoals(ctx, userId, []Goal{b, {Name: "C", Priority: High}})
		require.NoError(t, err)
		p, err := repo.GetProfile(ctx, userId)

		// then
		require.NoError(t, err)
		require.Len(t, p.Goals, 2)
		ids := []uuid.UUID{p.Goals[0].Id, p.Goals[1].Id}
		assert.NotContains(t, ids, a.Id)
		assert.Contains(t, ids, b.Id)
		assert.Equal(t, "B updated", p.Goals[0].Name)
		assert.Equal(t, "C", p.Goals[1].Name)
	})

	t.Run("should not take over rows of another user", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)
		otherId := test_utils.InsertUser(t, ctx, repo.db)
		owned, err := repo.SaveDebts(ctx, otherId, []Debt{{Name: "Other"}})
		require.NoError(t, err)

		// when
		saved, err := repo.SaveDebts(ctx, userId, []Debt{{Id: owned[0].Id, Name: "Hijack"}})

		// then
		assert.ErrorIs(t, err, ErrForeignEntity)
		assert.Nil(t, saved)
		require.NoError(t, repo.CreateProfile(ctx, otherId))
		other, err := repo.GetProfile(ctx, otherId)
		require.NoError(t, err)
		require.Len(t, other.Debts, 1)
		assert.Equal(t, "Other", other.Debts[0].Name)
		require.NoError(t, repo.CreateProfile(ctx, userId))
		mine, err := repo.GetProfile(ctx, userId)
		require.NoError(t, err)
		assert.Empty(t, mine.Debts)
	})

	t.Run("should serialize concurrent saves", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)
		require.NoError(t, repo.CreateProfile(ctx, userId))
		_, err := repo.SaveInvestments(ctx, userId, []Investment{{Symbol: "OLD"}})
		require.NoError(t, err)

		// when
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.SaveInvestments(ctx, userId, []Investment{{Symbol: "NEW"}})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		p, err := repo.GetProfile(ctx, userId)

		// then
		require.NoError(t, err)
		require.NotEmpty(t, p.Investments)
		for _, inv := range p.Investments {
			assert.Equal(t, "NEW", inv.Symbol)
		}
	})

	t.Run("should serialize concurrent first saves of an empty collection", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)
		require.NoError(t, repo.CreateProfile(ctx, userId))

		// when
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.SaveInvestments(ctx, userId, []Investment{{Symbol: "NEW"}})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		p, err := repo.GetProfile(ctx, userId)

		// then
		require.NoError(t, err)
		require.Len(t, p.Investments, 1)
		assert.Equal(t, "NEW", p.Investments[0].Symbol)
	})
}

func TestRepositoryImpl_OnboardingAndDelete(t *testing.T) {
	ctx, repo, userId := setupTestRepository(t)

	completed, err := repo.SetOnboardingCompleted(ctx, userId)
	require.NoError(t, err)
	assert.False(t, completed)

	require.NoError(t, repo.CreateProfile(ctx, userId))
	completed, err = repo.SetOnboardingCompleted(ctx, userId)
	require.NoError(t, err)
	assert.True(t, completed)

	require.NoError(t, repo.DeleteProfile(ctx, userId))
	_, err = repo.GetProfile(ctx, userId)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
