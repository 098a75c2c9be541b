package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feiradobairro/marketplace/internal/domain/courier"
	"github.com/feiradobairro/marketplace/internal/domain/order"
)

const (
	getCourierSQL = `SELECT id, name, available, wallet, deliveries
		FROM couriers WHERE id = $1`

	upsertCourierSQL = `INSERT INTO couriers (id, name, available, wallet, deliveries)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, available = EXCLUDED.available`
)

var _ courier.Repository = (*CourierRepository)(nil)

// CourierRepository implements courier.Repository backed by PostgreSQL.
type CourierRepository struct {
	pool *pgxpool.Pool
}

// NewCourierRepository returns a CourierRepository that uses the given pool.
func NewCourierRepository(pool *pgxpool.Pool) *CourierRepository {
	return &CourierRepository{pool: pool}
}

// GetByID returns a single courier.
func (r *CourierRepository) GetByID(ctx context.Context, id string) (*courier.Courier, error) {
	rows, err := r.pool.Query(ctx, getCourierSQL, id)
	if err != nil {
		return nil, storeErr(err, "getting courier "+id)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCourier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, storeErr(err, "getting courier "+id)
	}
	return &c, nil
}

// Upsert inserts or updates a courier, preserving the wallet balance and
// delivery count.
func (r *CourierRepository) Upsert(ctx context.Context, c *courier.Courier) error {
	_, err := r.pool.Exec(ctx, upsertCourierSQL, c.ID, c.Name, c.Available, c.Wallet, c.Deliveries)
	return storeErr(err, "upserting courier "+c.ID)
}

func scanCourier(row pgx.CollectableRow) (courier.Courier, error) {
	var c courier.Courier
	err := row.Scan(&c.ID, &c.Name, &c.Available, &c.Wallet, &c.Deliveries)
	return c, err
}
