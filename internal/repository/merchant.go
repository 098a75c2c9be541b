package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feiradobairro/marketplace/internal/domain/merchant"
	"github.com/feiradobairro/marketplace/internal/domain/order"
)

const (
	getMerchantSQL = `SELECT id, name, stall, revenue FROM merchants WHERE id = $1`

	upsertMerchantSQL = `INSERT INTO merchants (id, name, stall, revenue)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, stall = EXCLUDED.stall`
)

var _ merchant.Repository = (*MerchantRepository)(nil)

// MerchantRepository implements merchant.Repository backed by PostgreSQL.
type MerchantRepository struct {
	pool *pgxpool.Pool
}

// NewMerchantRepository returns a MerchantRepository that uses the given pool.
func NewMerchantRepository(pool *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

// GetByID returns a single merchant.
func (r *MerchantRepository) GetByID(ctx context.Context, id string) (*merchant.Merchant, error) {
	rows, err := r.pool.Query(ctx, getMerchantSQL, id)
	if err != nil {
		return nil, storeErr(err, "getting merchant "+id)
	}

	m, err := pgx.CollectExactlyOneRow(rows, scanMerchant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, storeErr(err, "getting merchant "+id)
	}
	return &m, nil
}

// Upsert inserts or updates a merchant, preserving accumulated revenue.
func (r *MerchantRepository) Upsert(ctx context.Context, m *merchant.Merchant) error {
	_, err := r.pool.Exec(ctx, upsertMerchantSQL, m.ID, m.Name, m.Stall, m.Revenue)
	return storeErr(err, "upserting merchant "+m.ID)
}

func scanMerchant(row pgx.CollectableRow) (merchant.Merchant, error) {
	var m merchant.Merchant
	err := row.Scan(&m.ID, &m.Name, &m.Stall, &m.Revenue)
	return m, err
}
