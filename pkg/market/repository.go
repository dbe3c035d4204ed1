package market

import (
	"context"
	"fmt"
	"slices"

	"github.com/fintrack/fintrack/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	StoreTicks(ctx context.Context, ticks []PriceTick) error
	// UpdateInvestmentPrices sets the current price of every investment holding
	// one of the symbols and returns the ids of the affected users.
	UpdateInvestmentPrices(ctx context.Context, prices map[string]PriceTick) ([]int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreTicks(ctx context.Context, ticks []PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}
	query := `INSERT INTO market_prices (symbol, ts, price, volume) VALUES ($1, $2, $3, $4)
				ON CONFLICT (symbol, ts) DO UPDATE SET price = EXCLUDED.price, volume = EXCLUDED.volume`

	batch := &pgx.Batch{}
	for _, tick := range ticks {
		batch.Queue(query, tick.Symbol, tick.Timestamp, database.ToNumeric(tick.Price), tick.Volume)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		err = fmt.Errorf("could not store price ticks: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) UpdateInvestmentPrices(ctx context.Context, prices map[string]PriceTick) ([]int, error) {
	if len(prices) == 0 {
		return nil, nil
	}
	query := `UPDATE investments SET current_price = $2 WHERE upper(symbol) = $1 RETURNING user_id`

	batch := &pgx.Batch{}
	for symbol, tick := range prices {
		batch.Queue(query, symbol, database.ToNumeric(tick.Price))
	}
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	var userIds []int
	for range prices {
		rows, err := results.Query()
		if err != nil {
			err = fmt.Errorf("could not update investment prices: %w", err)
			log.Error(err)
			return nil, err
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
		if err != nil {
			err = fmt.Errorf("could not read updated investments: %w", err)
			log.Error(err)
			return nil, err
		}
		userIds = append(userIds, ids...)
	}

	slices.Sort(userIds)
	return slices.Compact(userIds), nil
}
