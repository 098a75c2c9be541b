// Package payment provides the simulated payment confirmation step. There is
// no real gateway behind checkout; charges always settle, but the gateway is
// idempotent so a retried confirmation never double-charges.
package payment

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Gateway confirms a charge for an order.
type Gateway interface {
	// Charge settles the given amount against the key. Charging the same key
	// twice returns the original outcome without a second settlement.
	Charge(ctx context.Context, key string, amount decimal.Decimal) (bool, error)
}

// MockGateway is an in-memory Gateway. Every first charge succeeds unless a
// Decline function is installed.
type MockGateway struct {
	mu      sync.Mutex
	settled map[string]bool

	// Decline, when set, is consulted for first-time charges. Used in tests
	// to simulate card declines.
	Decline func(key string, amount decimal.Decimal) bool
}

// NewMockGateway returns an empty MockGateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{settled: make(map[string]bool)}
}

// Charge settles the amount, idempotently per key.
func (g *MockGateway) Charge(_ context.Context, key string, amount decimal.Decimal) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if paid, ok := g.settled[key]; ok {
		return paid, nil
	}

	paid := true
	if g.Decline != nil && g.Decline(key, amount) {
		paid = false
	}
	g.settled[key] = paid
	return paid, nil
}
