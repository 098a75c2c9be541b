//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feiradobairro/marketplace/internal/domain/order"
)

func TestLifecycleHappyPath(t *testing.T) {
	ctx := context.Background()

	before, err := merchants.GetByID(ctx, "m-horta")
	require.NoError(t, err)
	walletBefore, err := couriers.GetByID(ctx, "c-marcos")
	require.NoError(t, err)

	o := checkout(t, "cust-happy")
	assert.Equal(t, order.StatusPendingPayment, o.Status)
	assert.True(t, decimal.RequireFromString("11.00").Equal(o.Subtotal))
	assert.True(t, decimal.RequireFromString("16.00").Equal(o.Total))

	o, err = svc.MarkPaid(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusAwaitingMerchantApproval, o.Status)
	require.NotNil(t, o.PaidAt)

	for _, item := range o.Items {
		_, err := svc.SetLineItemStatus(ctx, item.ID, item.MerchantID, order.ItemAccepted)
		require.NoError(t, err)
	}

	o, err = svc.ClaimForDelivery(ctx, o.ID, "c-marcos")
	require.NoError(t, err)
	assert.Equal(t, order.StatusApproved, o.Status)
	require.NotNil(t, o.CourierID)

	o, err = svc.MarkEnRoute(ctx, o.ID, "c-marcos")
	require.NoError(t, err)
	assert.Equal(t, order.StatusEnRoute, o.Status)

	o, err = svc.MarkAwaitingConfirmation(ctx, o.ID, "c-marcos")
	require.NoError(t, err)
	assert.Equal(t, order.StatusAwaitingReceiptConfirmation, o.Status)

	o, err = svc.ConfirmDelivery(ctx, o.ID, "cust-happy")
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, o.Status)

	// Merchant revenue accrued by the accepted line total.
	after, err := merchants.GetByID(ctx, "m-horta")
	require.NoError(t, err)
	gained := after.Revenue.Sub(before.Revenue)
	assert.True(t, decimal.RequireFromString("7.00").Equal(gained), "revenue delta = %s", gained)

	// Courier wallet credited with the delivery fee, delivery count bumped.
	walletAfter, err := couriers.GetByID(ctx, "c-marcos")
	require.NoError(t, err)
	credited := walletAfter.Wallet.Sub(walletBefore.Wallet)
	assert.True(t, deliveryFee.Equal(credited), "wallet delta = %s", credited)
	assert.Equal(t, walletBefore.Deliveries+1, walletAfter.Deliveries)
}

func TestMarkPaidAppliesOnce(t *testing.T) {
	ctx := context.Background()
	o := checkout(t, "cust-pay-once")

	_, err := svc.MarkPaid(ctx, o.ID)
	require.NoError(t, err)

	_, err = svc.MarkPaid(ctx, o.ID)
	require.ErrorIs(t, err, order.ErrConflict)
}

func TestMixedDecisionHoldsOrder(t *testing.T) {
	ctx := context.Background()
	o := checkout(t, "cust-mixed")
	o, err := svc.MarkPaid(ctx, o.ID)
	require.NoError(t, err)

	_, err = svc.SetLineItemStatus(ctx, o.Items[0].ID, o.Items[0].MerchantID, order.ItemAccepted)
	require.NoError(t, err)
	_, err = svc.SetLineItemStatus(ctx, o.Items[1].ID, o.Items[1].MerchantID, order.ItemRejected)
	require.NoError(t, err)

	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusAwaitingMerchantApproval, got.Status)
}

// TestDecisionRetryIsIdempotent replays a merchant decision. The replay must
// succeed without accruing revenue twice, and an opposite decision must
// conflict.
func TestDecisionRetryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	o := checkout(t, "cust-retry")
	o, err := svc.MarkPaid(ctx, o.ID)
	require.NoError(t, err)

	before, err := merchants.GetByID(ctx, "m-horta")
	require.NoError(t, err)

	var item order.LineItem
	for _, it := range o.Items {
		if it.MerchantID == "m-horta" {
			item = it
		}
	}
	require.NotEmpty(t, item.ID)

	_, err = svc.SetLineItemStatus(ctx, item.ID, "m-horta", order.ItemAccepted)
	require.NoError(t, err)
	_, err = svc.SetLineItemStatus(ctx, item.ID, "m-horta", order.ItemAccepted)
	require.NoError(t, err)

	_, err = svc.SetLineItemStatus(ctx, item.ID, "m-horta", order.ItemRejected)
	require.ErrorIs(t, err, order.ErrConflict)

	after, err := merchants.GetByID(ctx, "m-horta")
	require.NoError(t, err)
	gained := after.Revenue.Sub(before.Revenue)
	assert.True(t, item.LineTotal.Equal(gained), "revenue delta = %s", gained)
}

// TestConcurrentClaim races two couriers on the same approved order against
// the real database. Exactly one conditional update may win.
func TestConcurrentClaim(t *testing.T) {
	ctx := context.Background()
	o := checkoutApproved(t, "cust-race")

	courierIDs := []string{"c-marcos", "c-livia"}
	results := make([]error, len(courierIDs))

	var wg sync.WaitGroup
	var start sync.WaitGroup
	start.Add(1)
	for i, id := range courierIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			start.Wait()
			_, results[i] = svc.ClaimForDelivery(ctx, o.ID, id)
		}(i, id)
	}
	start.Done()
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, order.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CourierID)
	assert.Contains(t, courierIDs, *got.CourierID)
}

func TestClaimRequiresApprovedUnassigned(t *testing.T) {
	ctx := context.Background()

	o := checkout(t, "cust-unpaid-claim")
	_, err := svc.ClaimForDelivery(ctx, o.ID, "c-marcos")
	require.ErrorIs(t, err, order.ErrConflict)

	_, err = svc.ClaimForDelivery(ctx, "00000000-0000-0000-0000-000000000000", "c-marcos")
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestStaleUnpaidOrdersListed(t *testing.T) {
	ctx := context.Background()
	o := checkout(t, "cust-stale")

	// A cutoff in the future makes the fresh order eligible.
	stale, err := orders.ListStalePendingPayment(ctx, o.CreatedAt.Add(time.Minute))
	require.NoError(t, err)

	found := false
	for _, s := range stale {
		if s.ID == o.ID {
			found = true
		}
	}
	assert.True(t, found)

	require.NoError(t, orders.UpdateStatus(ctx, o.ID, order.StatusPendingPayment, order.StatusCancelled))

	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
}
