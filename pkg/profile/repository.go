package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fintrack/fintrack/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	GetProfile(ctx context.Context, userId int) (UserProfile, error)
	// CreateProfile stores a default profile row unless one exists.
	CreateProfile(ctx context.Context, userId int) error
	SaveProfile(ctx context.Context, userId int, profile UserProfile) (UserProfile, error)
	SaveGoals(ctx context.Context, userId int, goals []Goal) ([]Goal, error)
	SaveInvestments(ctx context.Context, userId int, investments []Investment) ([]Investment, error)
	SaveDebts(ctx context.Context, userId int, debts []Debt) ([]Debt, error)
	SetOnboardingCompleted(ctx context.Context, userId int) (bool, error)
	DeleteProfile(ctx context.Context, userId int) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetProfile(ctx context.Context, userId int) (UserProfile, error) {
	query := `SELECT monthly_income, monthly_expenses, risk_tolerance, investment_horizon, employment_status,
       			age, onboarding_completed
				FROM profiles WHERE user_id = $1`

	profile := NewProfile(userId)
	var income, expenses pgtype.Numeric
	var risk string
	err := r.db.QueryRow(ctx, query, userId).Scan(&income, &expenses, &risk, &profile.InvestmentHorizon,
		&profile.EmploymentStatus, &profile.Age, &profile.OnboardingCompleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserProfile{}, ErrProfileNotFound
	}
	if err != nil {
		err = fmt.Errorf("could not query profile: %w", err)
		log.Error(err)
		return UserProfile{}, err
	}
	profile.MonthlyIncome = database.FromNumeric(income)
	profile.MonthlyExpenses = database.FromNumeric(expenses)
	profile.RiskTolerance = RiskTolerance(risk)

	if profile.Goals, err = r.getGoals(ctx, userId); err != nil {
		return UserProfile{}, err
	}
	if profile.Investments, err = r.getInvestments(ctx, userId); err != nil {
		return UserProfile{}, err
	}
	if profile.Debts, err = r.getDebts(ctx, userId); err != nil {
		return UserProfile{}, err
	}
	return profile, nil
}

func (r *RepositoryImpl) CreateProfile(ctx context.Context, userId int) error {
	_, err := r.db.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userId)
	if err != nil {
		err = fmt.Errorf("could not create profile: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

// SaveProfile upserts the scalar fields and reconciles all three collections in one transaction.
func (r *RepositoryImpl) SaveProfile(ctx context.Context, userId int, profile UserProfile) (UserProfile, error) {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		query := `INSERT INTO profiles (user_id, monthly_income, monthly_expenses, risk_tolerance, investment_horizon,
                      employment_status, age, onboarding_completed, updated_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
					ON CONFLICT (user_id) DO UPDATE SET monthly_income = EXCLUDED.monthly_income,
						monthly_expenses = EXCLUDED.monthly_expenses, risk_tolerance = EXCLUDED.risk_tolerance,
						investment_horizon = EXCLUDED.investment_horizon, employment_status = EXCLUDED.employment_status,
						age = EXCLUDED.age, onboarding_completed = EXCLUDED.onboarding_completed, updated_at = NOW()`
		_, err := tx.Exec(ctx, query, userId, database.ToNumeric(profile.MonthlyIncome),
			database.ToNumeric(profile.MonthlyExpenses), string(profile.RiskTolerance), profile.InvestmentHorizon,
			profile.EmploymentStatus, profile.Age, profile.OnboardingCompleted)
		if err != nil {
			return fmt.Errorf("could not upsert profile: %w", err)
		}

		if profile.Goals, err = reconcile(ctx, tx, goalsTable, userId, profile.Goals); err != nil {
			return err
		}
		if profile.Investments, err = reconcile(ctx, tx, investmentsTable, userId, profile.Investments); err != nil {
			return err
		}
		profile.Debts, err = reconcile(ctx, tx, debtsTable, userId, profile.Debts)
		return err
	})
	if err != nil {
		return UserProfile{}, err
	}
	profile.UserId = userId
	return profile, nil
}

func (r *RepositoryImpl) SaveGoals(ctx context.Context, userId int, goals []Goal) ([]Goal, error) {
	var saved []Goal
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		saved, err = reconcile(ctx, tx, goalsTable, userId, goals)
		return err
	})
	return saved, err
}

func (r *RepositoryImpl) SaveInvestments(ctx context.Context, userId int, investments []Investment) ([]Investment, error) {
	var saved []Investment
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		saved, err = reconcile(ctx, tx, investmentsTable, userId, investments)
		return err
	})
	return saved, err
}

func (r *RepositoryImpl) SaveDebts(ctx context.Context, userId int, debts []Debt) ([]Debt, error) {
	var saved []Debt
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		saved, err = reconcile(ctx, tx, debtsTable, userId, debts)
		return err
	})
	return saved, err
}

func (r *RepositoryImpl) SetOnboardingCompleted(ctx context.Context, userId int) (bool, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE profiles SET onboarding_completed = TRUE, updated_at = NOW() WHERE user_id = $1`, userId)
	if err != nil {
		err = fmt.Errorf("could not complete onboarding: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) DeleteProfile(ctx context.Context, userId int) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		for _, table := range []string{"financial_goals", "investments", "debts", "profiles"} {
			if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table), userId); err != nil {
				return fmt.Errorf("could not delete from %s: %w", table, err)
			}
		}
		return nil
	})
}

func (r *RepositoryImpl) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		log.Errorf("failed to begin transaction: %v", err)
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		log.Error(err)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		log.Errorf("failed to commit transaction: %v", err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) getGoals(ctx context.Context, userId int) ([]Goal, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, target_amount, current_amount, target_date, priority
				FROM financial_goals WHERE user_id = $1 ORDER BY name, id`, userId)
	if err != nil {
		log.Errorf("failed to query goals: %v", err)
		return nil, err
	}
	goals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Goal, error) {
		var g Goal
		var target, current pgtype.Numeric
		var priority string
		var targetDate *time.Time
		if err := row.Scan(&g.Id, &g.Name, &target, &current, &targetDate, &priority); err != nil {
			return Goal{}, err
		}
		g.TargetAmount = database.FromNumeric(target)
		g.CurrentAmount = database.FromNumeric(current)
		g.TargetDate = targetDate
		g.Priority = Priority(priority)
		return g, nil
	})
	if err != nil {
		log.Errorf("failed to scan goals: %v", err)
		return nil, err
	}
	return goals, nil
}

func (r *RepositoryImpl) getInvestments(ctx context.Context, userId int) ([]Investment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, type, symbol, name, amount, expected_return, current_price
				FROM investments WHERE user_id = $1 ORDER BY name, id`, userId)
	if err != nil {
		log.Errorf("failed to query investments: %v", err)
		return nil, err
	}
	investments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Investment, error) {
		var i Investment
		var amount, expectedReturn, currentPrice pgtype.Numeric
		if err := row.Scan(&i.Id, &i.Type, &i.Symbol, &i.Name, &amount, &expectedReturn, &currentPrice); err != nil {
			return Investment{}, err
		}
		i.Amount = database.FromNumeric(amount)
		i.ExpectedReturn = database.FromNumeric(expectedReturn)
		i.CurrentPrice = database.FromNullableNumeric(currentPrice)
		return i, nil
	})
	if err != nil {
		log.Errorf("failed to scan investments: %v", err)
		return nil, err
	}
	return investments, nil
}

func (r *RepositoryImpl) getDebts(ctx context.Context, userId int) ([]Debt, error) {
	rows, err := r.db.Query(ctx, `SELECT id, type, name, balance, interest_rate, minimum_payment
				FROM debts WHERE user_id = $1 ORDER BY name, id`, userId)
	if err != nil {
		log.Errorf("failed to query debts: %v", err)
		return nil, err
	}
	debts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Debt, error) {
		var d Debt
		var balance, rate, minimum pgtype.Numeric
		if err := row.Scan(&d.Id, &d.Type, &d.Name, &balance, &rate, &minimum); err != nil {
			return Debt{}, err
		}
		d.Balance = database.FromNumeric(balance)
		d.InterestRate = database.FromNumeric(rate)
		d.MinimumPayment = database.FromNumeric(minimum)
		return d, nil
	})
	if err != nil {
		log.Errorf("failed to scan debts: %v", err)
		return nil, err
	}
	return debts, nil
}

// collectionTable describes how one owned collection is upserted.
type collectionTable[T any] struct {
	name   string
	upsert string
	args   func(userId int, e T) []any
}

var goalsTable = collectionTable[Goal]{
	name: "financial_goals",
	upsert: `INSERT INTO financial_goals (id, user_id, name, target_amount, current_amount, target_date, priority)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, target_amount = EXCLUDED.target_amount,
					current_amount = EXCLUDED.current_amount, target_date = EXCLUDED.target_date,
					priority = EXCLUDED.priority
				WHERE financial_goals.user_id = EXCLUDED.user_id`,
	args: func(userId int, g Goal) []any {
		return []any{g.Id, userId, g.Name, database.ToNumeric(g.TargetAmount), database.ToNumeric(g.CurrentAmount),
			g.TargetDate, string(g.Priority)}
	},
}

var investmentsTable = collectionTable[Investment]{
	name: "investments",
	upsert: `INSERT INTO investments (id, user_id, type, symbol, name, amount, expected_return, current_price)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, symbol = EXCLUDED.symbol, name = EXCLUDED.name,
					amount = EXCLUDED.amount, expected_return = EXCLUDED.expected_return,
					current_price = COALESCE(EXCLUDED.current_price, investments.current_price)
				WHERE investments.user_id = EXCLUDED.user_id`,
	args: func(userId int, i Investment) []any {
		return []any{i.Id, userId, i.Type, i.Symbol, i.Name, database.ToNumeric(i.Amount),
			database.ToNumeric(i.ExpectedReturn), database.NullableNumeric(i.CurrentPrice)}
	},
}

var debtsTable = collectionTable[Debt]{
	name: "debts",
	upsert: `INSERT INTO debts (id, user_id, type, name, balance, interest_rate, minimum_payment)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, name = EXCLUDED.name,
					balance = EXCLUDED.balance, interest_rate = EXCLUDED.interest_rate,
					minimum_payment = EXCLUDED.minimum_payment
				WHERE debts.user_id = EXCLUDED.user_id`,
	args: func(userId int, d Debt) []any {
		return []any{d.Id, userId, d.Type, d.Name, database.ToNumeric(d.Balance), database.ToNumeric(d.InterestRate),
			database.ToNumeric(d.MinimumPayment)}
	},
}

// reconcile replaces the stored collection with desired. A transaction-scoped
// advisory lock on (table, user) serializes concurrent saves of the same
// collection, including the first one when no rows exist yet.
func reconcile[T any, P entity[T]](ctx context.Context, tx pgx.Tx, table collectionTable[T], userId int, desired []T) ([]T, error) {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), $2)`, table.name, userId); err != nil {
		return nil, fmt.Errorf("could not lock %s: %w", table.name, err)
	}
	rows, err := tx.Query(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE user_id = $1 FOR UPDATE`, table.name), userId)
	if err != nil {
		return nil, fmt.Errorf("could not lock %s: %w", table.name, err)
	}
	existingIds, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("could not read %s ids: %w", table.name, err)
	}

	plan := PlanReconciliation[T, P](existingIds, desired)

	if len(plan.DeleteIds) > 0 {
		query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND id = ANY($2)`, table.name)
		if _, err := tx.Exec(ctx, query, userId, plan.DeleteIds); err != nil {
			return nil, fmt.Errorf("could not delete from %s: %w", table.name, err)
		}
	}

	if len(plan.Upserts) > 0 {
		batch := &pgx.Batch{}
		for _, e := range plan.Upserts {
			batch.Queue(table.upsert, table.args(userId, e)...)
		}
		if err := execUpserts(tx.SendBatch(ctx, batch), table.name, len(plan.Upserts)); err != nil {
			return nil, err
		}
	}
	log.Debugf("Reconciled %s for user %d: %d deleted, %d upserted", table.name, userId, len(plan.DeleteIds), len(plan.Upserts))
	return plan.Upserts, nil
}

// execUpserts fails when an upsert wrote nothing, which happens when the id
// is already owned by another user.
func execUpserts(results pgx.BatchResults, table string, count int) error {
	for i := 0; i < count; i++ {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return fmt.Errorf("could not upsert %s: %w", table, err)
		}
		if tag.RowsAffected() == 0 {
			results.Close()
			return fmt.Errorf("%w: %s", ErrForeignEntity, table)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("could not upsert %s: %w", table, err)
	}
	return nil
}
