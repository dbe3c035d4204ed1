package monthly

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
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// GetSummary returns nil when nothing was recorded for the year.
	GetSummary(ctx context.Context, userId int, kind Kind, year int) ([]MonthlyAmount, error)
	SaveSummary(ctx context.Context, userId int, kind Kind, year int, amounts [MonthsInYear]decimal.Decimal) error
	ListItems(ctx context.Context, userId int, year int) ([]ExpenseItem, error)
	GetItem(ctx context.Context, userId int, id uuid.UUID) (ExpenseItem, error)
	StoreItem(ctx context.Context, userId int, item ExpenseItem) error
	UpdateItem(ctx context.Context, userId int, item ExpenseItem) (bool, error)
	DeleteItem(ctx context.Context, userId int, id uuid.UUID) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func summaryTable(kind Kind) (string, error) {
	switch kind {
	case Savings:
		return "monthly_savings", nil
	case Expenses:
		return "monthly_expenses", nil
	}
	return "", ErrInvalidKind
}

func (r *RepositoryImpl) GetSummary(ctx context.Context, userId int, kind Kind, year int) ([]MonthlyAmount, error) {
	table, err := summaryTable(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT amounts FROM %s WHERE user_id = $1 AND year = $2`, table)

	var amounts []pgtype.Numeric
	err = r.db.QueryRow(ctx, query, userId, year).Scan(&amounts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err = fmt.Errorf("could not query %s: %w", table, err)
		log.Error(err)
		return nil, err
	}

	months := make([]MonthlyAmount, 0, len(amounts))
	for i, amount := range amounts {
		months = append(months, MonthlyAmount{Month: i + 1, Amount: database.FromNumeric(amount)})
	}
	return months, nil
}

func (r *RepositoryImpl) SaveSummary(ctx context.Context, userId int, kind Kind, year int, amounts [MonthsInYear]decimal.Decimal) error {
	table, err := summaryTable(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (user_id, year, amounts, updated_at) VALUES ($1, $2, $3, NOW())
				ON CONFLICT (user_id, year) DO UPDATE SET amounts = EXCLUDED.amounts, updated_at = NOW()`, table)

	values := make([]pgtype.Numeric, 0, MonthsInYear)
	for _, amount := range amounts {
		values = append(values, database.ToNumeric(amount))
	}
	if _, err := r.db.Exec(ctx, query, userId, year, values); err != nil {
		err = fmt.Errorf("could not upsert %s: %w", table, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) ListItems(ctx context.Context, userId int, year int) ([]ExpenseItem, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	query := `SELECT id, date, description, category, amount FROM expense_items
				WHERE user_id = $1 AND date >= $2 AND date < $3 ORDER BY date, id`

	rows, err := r.db.Query(ctx, query, userId, from, to)
	if err != nil {
		err = fmt.Errorf("could not query expense items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	items := make([]ExpenseItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			log.Errorf("error scanning expense item: %v", err)
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		err = fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return items, nil
}

func (r *RepositoryImpl) GetItem(ctx context.Context, userId int, id uuid.UUID) (ExpenseItem, error) {
	query := `SELECT id, date, description, category, amount FROM expense_items WHERE user_id = $1 AND id = $2`
	item, err := scanItem(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ExpenseItem{}, ErrItemNotFound
	}
	if err != nil {
		log.Errorf("failed to get expense item: %v", err)
		return ExpenseItem{}, err
	}
	return item, nil
}

func (r *RepositoryImpl) StoreItem(ctx context.Context, userId int, item ExpenseItem) error {
	query := `INSERT INTO expense_items (id, user_id, date, description, category, amount)
				VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query, item.Id, userId, item.Date, item.Description, string(item.Category),
		database.ToNumeric(item.Amount))
	if err != nil {
		err = fmt.Errorf("could not insert expense item: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) UpdateItem(ctx context.Context, userId int, item ExpenseItem) (bool, error) {
	query := `UPDATE expense_items SET date = $1, description = $2, category = $3, amount = $4
				WHERE id = $5 AND user_id = $6`
	result, err := r.db.Exec(ctx, query, item.Date, item.Description, string(item.Category),
		database.ToNumeric(item.Amount), item.Id, userId)
	if err != nil {
		err = fmt.Errorf("could not update expense item: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) DeleteItem(ctx context.Context, userId int, id uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM expense_items WHERE id = $1 AND user_id = $2`, id, userId)
	if err != nil {
		err = fmt.Errorf("could not delete expense item: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func scanItem(row pgx.Row) (ExpenseItem, error) {
	var (
		item     ExpenseItem
		category string
		amount   pgtype.Numeric
	)
	if err := row.Scan(&item.Id, &item.Date, &item.Description, &category, &amount); err != nil {
		return ExpenseItem{}, err
	}
	item.Category = Category(category)
	item.Amount = database.FromNumeric(amount)
	return item, nil
}
