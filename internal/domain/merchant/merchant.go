// Package merchant holds the merchant reference data the order lifecycle
// touches: identity and accumulated revenue.
package merchant

import (
	"context"

	"github.com/shopspring/decimal"
)

// Merchant is a stallholder selling through the marketplace.
type Merchant struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Stall   string          `json:"stall"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Repository defines persistence operations for merchants. Revenue accrual
// happens inside the order store's decision transaction, not here.
type Repository interface {
	// GetByID returns a single merchant.
	GetByID(ctx context.Context, id string) (*Merchant, error)
	// Upsert inserts or updates a merchant. Used by seeding.
	Upsert(ctx context.Context, m *Merchant) error
}
