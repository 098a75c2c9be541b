// Package courier holds the courier reference data the order lifecycle
// touches: identity, availability, and the delivery wallet.
package courier

import (
	"context"

	"github.com/shopspring/decimal"
)

// Courier is a delivery courier working the marketplace pull list.
type Courier struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Available  bool            `json:"available"`
	Wallet     decimal.Decimal `json:"wallet"`
	Deliveries int             `json:"deliveries"`
}

// Repository defines persistence operations for couriers.
type Repository interface {
	// GetByID returns a single courier.
	GetByID(ctx context.Context, id string) (*Courier, error)
	// Upsert inserts or updates a courier. Used by seeding.
	Upsert(ctx context.Context, c *Courier) error
}
