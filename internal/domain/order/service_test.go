package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feiradobairro/marketplace/internal/notify"
)

// --- Mock implementations ---

// mockOrderRepo is an in-memory Repository that reproduces the store-side
// guard semantics: conditional writes fail with ErrConflict when the guard no
// longer holds and ErrNotFound when the row is missing. DecideLineItem
// mirrors the real store's transaction, applying the item status and the
// revenue accrual together or not at all.
//
// The fail* knobs inject a single failure, consumed on first use, before any
// state mutates.
type mockOrderRepo struct {
	orders  map[string]*Order
	items   map[string]*LineItem
	revenue map[string]decimal.Decimal

	failCreate error
	failDecide error
	failRollup error
}

func newOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		orders:  make(map[string]*Order),
		items:   make(map[string]*LineItem),
		revenue: make(map[string]decimal.Decimal),
	}
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.failCreate != nil {
		err := m.failCreate
		m.failCreate = nil
		return err
	}
	clone := *o
	m.orders[o.ID] = &clone
	for i := range o.Items {
		item := o.Items[i]
		m.items[item.ID] = &item
	}
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *o
	clone.Items = nil
	for _, item := range m.items {
		if item.OrderID == id {
			clone.Items = append(clone.Items, *item)
		}
	}
	return &clone, nil
}

func (m *mockOrderRepo) GetLineItem(_ context.Context, id string) (*LineItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (m *mockOrderRepo) MarkPaid(_ context.Context, orderID string, paidAt time.Time) error {
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if o.Status != StatusPendingPayment || o.PaidAt != nil {
		return ErrConflict
	}
	o.PaidAt = &paidAt
	o.Status = StatusAwaitingMerchantApproval
	return nil
}

func (m *mockOrderRepo) DecideLineItem(_ context.Context, itemID, merchantID string, to ItemStatus) error {
	if m.failDecide != nil {
		err := m.failDecide
		m.failDecide = nil
		return err
	}
	item, ok := m.items[itemID]
	if !ok {
		return ErrNotFound
	}
	o := m.orders[item.OrderID]
	if item.MerchantID != merchantID || item.Status != ItemPending || o == nil || o.PaidAt == nil {
		return ErrConflict
	}
	item.Status = to
	if to == ItemAccepted {
		m.revenue[merchantID] = m.revenue[merchantID].Add(item.LineTotal)
	}
	return nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, orderID string, from, to Status) error {
	if m.failRollup != nil {
		err := m.failRollup
		m.failRollup = nil
		return err
	}
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrConflict
	}
	o.Status = to
	return nil
}

func (m *mockOrderRepo) AssignCourier(_ context.Context, orderID, courierID string) error {
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if o.Status != StatusApproved || o.CourierID != nil {
		return ErrConflict
	}
	o.CourierID = &courierID
	return nil
}

func (m *mockOrderRepo) UpdateStatusForCourier(_ context.Context, orderID, courierID string, from, to Status) error {
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from || o.CourierID == nil || *o.CourierID != courierID {
		return ErrConflict
	}
	o.Status = to
	return nil
}

func (m *mockOrderRepo) CompleteDelivery(_ context.Context, orderID, customerID string) error {
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if o.Status != StatusAwaitingReceiptConfirmation || o.CustomerID != customerID || o.CourierID == nil {
		return ErrConflict
	}
	o.Status = StatusDelivered
	m.revenue[*o.CourierID] = m.revenue[*o.CourierID].Add(o.DeliveryFee)
	return nil
}

func (m *mockOrderRepo) TallyItems(_ context.Context, orderID string) (ItemTally, error) {
	var tally ItemTally
	for _, item := range m.items {
		if item.OrderID != orderID {
			continue
		}
		switch item.Status {
		case ItemPending:
			tally.Pending++
		case ItemAccepted:
			tally.Accepted++
		case ItemRejected:
			tally.Rejected++
		}
	}
	return tally, nil
}

func (m *mockOrderRepo) ListMerchantPending(_ context.Context, merchantID string) ([]LineItem, error) {
	var out []LineItem
	for _, item := range m.items {
		o := m.orders[item.OrderID]
		if item.MerchantID == merchantID && item.Status == ItemPending && o != nil && o.PaidAt != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListAvailableForDelivery(_ context.Context) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.Status == StatusApproved && o.CourierID == nil {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListByCourier(_ context.Context, courierID string) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.CourierID != nil && *o.CourierID == courierID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListByCustomer(_ context.Context, customerID string, statuses []Status) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.CustomerID != customerID {
			continue
		}
		for _, st := range statuses {
			if o.Status == st {
				out = append(out, *o)
				break
			}
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListStalePendingPayment(_ context.Context, cutoff time.Time) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.Status == StatusPendingPayment && o.CreatedAt.Before(cutoff) {
			out = append(out, *o)
		}
	}
	return out, nil
}

type recordingEvents struct {
	types []notify.EventType
}

func (r *recordingEvents) Notify(_ context.Context, ev notify.Event) {
	r.types = append(r.types, ev.Type)
}

// --- Helpers ---

var testFee = decimal.RequireFromString("5.00")

func newTestService(repo *mockOrderRepo) (*Service, *recordingEvents) {
	events := &recordingEvents{}
	svc := NewService(repo, events, testFee)
	svc.now = func() time.Time { return time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC) }
	return svc, events
}

func validDraft() DraftOrder {
	return DraftOrder{
		CustomerID:     "cust-1",
		PickupEntrance: "Gate 2",
		PickupTime:     time.Date(2025, 6, 14, 11, 0, 0, 0, time.UTC),
		PaymentMethod:  "pix",
		Lines: []CartLine{
			{MerchantID: "m-1", ProductName: "Tomates", Quantity: 2, Unit: "kg", UnitPrice: decimal.RequireFromString("3.50")},
			{MerchantID: "m-2", ProductName: "Queijo minas", Quantity: 1, Unit: "un", UnitPrice: decimal.RequireFromString("4.00")},
		},
	}
}

// createPaidOrder drives an order through checkout and payment so tests of
// later transitions start from AWAITING_MERCHANT_APPROVAL.
func createPaidOrder(t *testing.T, svc *Service) *Order {
	t.Helper()
	o, err := svc.CreateOrder(context.Background(), validDraft())
	require.NoError(t, err)
	o, err = svc.MarkPaid(context.Background(), o.ID)
	require.NoError(t, err)
	return o
}

// approveOrder accepts every line item so the order rolls up to APPROVED.
func approveOrder(t *testing.T, svc *Service, o *Order) {
	t.Helper()
	for _, item := range o.Items {
		_, err := svc.SetLineItemStatus(context.Background(), item.ID, item.MerchantID, ItemAccepted)
		require.NoError(t, err)
	}
}

// --- Checkout ---

func TestCreateOrder_ComputesTotals(t *testing.T) {
	svc, events := newTestService(newOrderRepo())

	o, err := svc.CreateOrder(context.Background(), validDraft())
	require.NoError(t, err)

	assert.Equal(t, StatusPendingPayment, o.Status)
	assert.True(t, decimal.RequireFromString("11.00").Equal(o.Subtotal), "subtotal = %s", o.Subtotal)
	assert.True(t, testFee.Equal(o.DeliveryFee))
	assert.True(t, decimal.RequireFromString("16.00").Equal(o.Total), "total = %s", o.Total)
	require.Len(t, o.Items, 2)
	for _, item := range o.Items {
		assert.Equal(t, ItemPending, item.Status)
		assert.Equal(t, o.ID, item.OrderID)
		assert.NotEmpty(t, item.ID)
	}
	assert.True(t, decimal.RequireFromString("7.00").Equal(o.Items[0].LineTotal))
	assert.Equal(t, []notify.EventType{notify.OrderCreated}, events.types)
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())

	tests := []struct {
		name   string
		mutate func(*DraftOrder)
		field  string
	}{
		{"missing customer", func(d *DraftOrder) { d.CustomerID = "" }, "customer_id"},
		{"empty cart", func(d *DraftOrder) { d.Lines = nil }, "lines"},
		{"missing entrance", func(d *DraftOrder) { d.PickupEntrance = "" }, "pickup_entrance"},
		{"missing pickup time", func(d *DraftOrder) { d.PickupTime = time.Time{} }, "pickup_time"},
		{"zero quantity", func(d *DraftOrder) { d.Lines[0].Quantity = 0 }, "lines"},
		{"negative price", func(d *DraftOrder) { d.Lines[0].UnitPrice = decimal.RequireFromString("-1") }, "lines"},
		{"line without merchant", func(d *DraftOrder) { d.Lines[1].MerchantID = "" }, "lines"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(&draft)

			_, err := svc.CreateOrder(context.Background(), draft)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestCreateOrder_StoreFailure(t *testing.T) {
	repo := newOrderRepo()
	repo.failCreate = &TransientError{Err: context.DeadlineExceeded}
	svc, events := newTestService(repo)

	_, err := svc.CreateOrder(context.Background(), validDraft())

	var tErr *TransientError
	require.ErrorAs(t, err, &tErr)
	assert.Contains(t, err.Error(), "create order")
	// Nothing persisted, nothing announced.
	assert.Empty(t, repo.orders)
	assert.Empty(t, events.types)
}

// --- Payment ---

func TestMarkPaid_AdvancesOnce(t *testing.T) {
	svc, events := newTestService(newOrderRepo())
	o, err := svc.CreateOrder(context.Background(), validDraft())
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingMerchantApproval, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = svc.MarkPaid(context.Background(), o.ID)
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, events.types, notify.OrderPaid)
}

func TestMarkPaid_UnknownOrder(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())

	_, err := svc.MarkPaid(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

// --- Merchant decisions and rollup ---

func TestSetLineItemStatus_AcceptAccruesRevenue(t *testing.T) {
	repo := newOrderRepo()
	svc, _ := newTestService(repo)
	o := createPaidOrder(t, svc)

	item, err := svc.SetLineItemStatus(context.Background(), o.Items[0].ID, o.Items[0].MerchantID, ItemAccepted)
	require.NoError(t, err)

	assert.Equal(t, ItemAccepted, item.Status)
	got := repo.revenue[o.Items[0].MerchantID]
	assert.True(t, o.Items[0].LineTotal.Equal(got), "revenue = %s", got)
}

func TestSetLineItemStatus_WrongMerchantReadsAsNotFound(t *testing.T) {
	repo := newOrderRepo()
	svc, _ := newTestService(repo)
	o := createPaidOrder(t, svc)

	_, err := svc.SetLineItemStatus(context.Background(), o.Items[0].ID, "someone-else", ItemAccepted)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, repo.revenue)
}

func TestSetLineItemStatus_UnpaidOrderConflicts(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())
	o, err := svc.CreateOrder(context.Background(), validDraft())
	require.NoError(t, err)

	_, err = svc.SetLineItemStatus(context.Background(), o.Items[0].ID, o.Items[0].MerchantID, ItemAccepted)
	require.ErrorIs(t, err, ErrConflict)
}

func TestSetLineItemStatus_OppositeDecisionConflicts(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())
	o := createPaidOrder(t, svc)
	item := o.Items[0]

	_, err := svc.SetLineItemStatus(context.Background(), item.ID, item.MerchantID, ItemAccepted)
	require.NoError(t, err)

	_, err = svc.SetLineItemStatus(context.Background(), item.ID, item.MerchantID, ItemRejected)
	require.ErrorIs(t, err, ErrConflict)
}

func TestSetLineItemStatus_InvalidTarget(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())
	o := createPaidOrder(t, svc)

	_, err := svc.SetLineItemStatus(context.Background(), o.Items[0].ID, o.Items[0].MerchantID, ItemPending)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "status", vErr.Field)
}

func TestSetLineItemStatus_DecisionFailureLeavesNoPartialState(t *testing.T) {
	repo := newOrderRepo()
	svc, _ := newTestService(repo)
	o := createPaidOrder(t, svc)
	item := o.Items[0]

	repo.failDecide = &TransientError{Err: context.DeadlineExceeded}
	_, err := svc.SetLineItemStatus(context.Background(), item.ID, item.MerchantID, ItemAccepted)

	var tErr *TransientError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, ItemPending, repo.items[item.ID].Status)
	assert.Empty(t, repo.revenue)

	// The identical retry applies cleanly, once.
	got, err := svc.SetLineItemStatus(context.Background(), item.ID, item.MerchantID, ItemAccepted)
	require.NoError(t, err)
	assert.Equal(t, ItemAccepted, got.Status)
	assert.True(t, item.LineTotal.Equal(repo.revenue[item.MerchantID]))
}

func TestSetLineItemStatus_RetryRepairsLostRollup(t *testing.T) {
	repo := newOrderRepo()
	svc, events := newTestService(repo)
	o := createPaidOrder(t, svc)

	_, err := svc.SetLineItemStatus(context.Background(), o.Items[0].ID, o.Items[0].MerchantID, ItemAccepted)
	require.NoError(t, err)

	// The last decision commits but the rollup write is lost.
	repo.failRollup = &TransientError{Err: context.DeadlineExceeded}
	last := o.Items[1]
	_, err = svc.SetLineItemStatus(context.Background(), last.ID, last.MerchantID, ItemAccepted)
	var tErr *TransientError
	require.ErrorAs(t, err, &tErr)

	stuck, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingMerchantApproval, stuck.Status)

	// Retrying the identical decision re-runs the rollup and repairs the
	// order instead of reporting a conflict.
	got, err := svc.SetLineItemStatus(context.Background(), last.ID, last.MerchantID, ItemAccepted)
	require.NoError(t, err)
	assert.Equal(t, ItemAccepted, got.Status)

	repaired, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, repaired.Status)
	assert.Contains(t, events.types, notify.OrderApproved)

	// Revenue accrued exactly once per item despite the retry.
	assert.True(t, last.LineTotal.Equal(repo.revenue[last.MerchantID]))
}

func TestRollup_AllAcceptedApproves(t *testing.T) {
	svc, events := newTestService(newOrderRepo())
	o := createPaidOrder(t, svc)

	approveOrder(t, svc, o)

	got, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.Contains(t, events.types, notify.OrderApproved)
}

func TestRollup_PartialDecisionKeepsAwaiting(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())
	o := createPaidOrder(t, svc)

	_, err := svc.SetLineItemStatus(context.Background(), o.Items[0].ID, o.Items[0].MerchantID, ItemAccepted)
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingMerchantApproval, got.Status)
}

func TestRollup_MixedOutcomeKeepsAwaiting(t *testing.T) {
	svc, events := newTestService(newOrderRepo())
	o := createPaidOrder(t, svc)

	_, err := svc.SetLineItemStatus(context.Background(), o.Items[0].ID, o.Items[0].MerchantID, ItemAccepted)
	require.NoError(t, err)
	_, err = svc.SetLineItemStatus(context.Background(), o.Items[1].ID, o.Items[1].MerchantID, ItemRejected)
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingMerchantApproval, got.Status)
	assert.NotContains(t, events.types, notify.OrderApproved)
	assert.NotContains(t, events.types, notify.OrderRejected)
}

func TestRollup_AllRejectedRejects(t *testing.T) {
	repo := newOrderRepo()
	svc, events := newTestService(repo)
	o := createPaidOrder(t, svc)

	for _, item := range o.Items {
		_, err := svc.SetLineItemStatus(context.Background(), item.ID, item.MerchantID, ItemRejected)
		require.NoError(t, err)
	}

	got, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
	assert.Contains(t, events.types, notify.OrderRejected)
	assert.Empty(t, repo.revenue)
}

// --- Delivery ---

func TestClaimForDelivery_FirstClaimWins(t *testing.T) {
	svc, events := newTestService(newOrderRepo())
	o := createPaidOrder(t, svc)
	approveOrder(t, svc, o)

	claimed, err := svc.ClaimForDelivery(context.Background(), o.ID, "courier-a")
	require.NoError(t, err)
	require.NotNil(t, claimed.CourierID)
	assert.Equal(t, "courier-a", *claimed.CourierID)
	// Claim assigns the courier without leaving APPROVED; departure is a
	// separate step.
	assert.Equal(t, StatusApproved, claimed.Status)

	_, err = svc.ClaimForDelivery(context.Background(), o.ID, "courier-b")
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, events.types, notify.OrderClaimed)
}

func TestClaimForDelivery_RequiresApproval(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())
	o := createPaidOrder(t, svc)

	_, err := svc.ClaimForDelivery(context.Background(), o.ID, "courier-a")
	require.ErrorIs(t, err, ErrConflict)
}

func TestMarkEnRoute_OnlyAssignedCourier(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())
	o := createPaidOrder(t, svc)
	approveOrder(t, svc, o)
	_, err := svc.ClaimForDelivery(context.Background(), o.ID, "courier-a")
	require.NoError(t, err)

	_, err = svc.MarkEnRoute(context.Background(), o.ID, "courier-b")
	require.ErrorIs(t, err, ErrConflict)

	got, err := svc.MarkEnRoute(context.Background(), o.ID, "courier-a")
	require.NoError(t, err)
	assert.Equal(t, StatusEnRoute, got.Status)
}

func TestConfirmDelivery_CreditsCourier(t *testing.T) {
	repo := newOrderRepo()
	svc, events := newTestService(repo)
	o := createPaidOrder(t, svc)
	approveOrder(t, svc, o)

	_, err := svc.ClaimForDelivery(context.Background(), o.ID, "courier-a")
	require.NoError(t, err)
	_, err = svc.MarkEnRoute(context.Background(), o.ID, "courier-a")
	require.NoError(t, err)
	_, err = svc.MarkAwaitingConfirmation(context.Background(), o.ID, "courier-a")
	require.NoError(t, err)

	got, err := svc.ConfirmDelivery(context.Background(), o.ID, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, got.Status)
	assert.True(t, testFee.Equal(repo.revenue["courier-a"]))
	assert.Contains(t, events.types, notify.OrderDelivered)
}

func TestConfirmDelivery_OnlyOrderCustomer(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())
	o := createPaidOrder(t, svc)
	approveOrder(t, svc, o)
	_, err := svc.ClaimForDelivery(context.Background(), o.ID, "courier-a")
	require.NoError(t, err)
	_, err = svc.MarkEnRoute(context.Background(), o.ID, "courier-a")
	require.NoError(t, err)
	_, err = svc.MarkAwaitingConfirmation(context.Background(), o.ID, "courier-a")
	require.NoError(t, err)

	_, err = svc.ConfirmDelivery(context.Background(), o.ID, "impostor")
	require.ErrorIs(t, err, ErrConflict)
}

func TestConfirmDelivery_RequiresArrival(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())
	o := createPaidOrder(t, svc)
	approveOrder(t, svc, o)
	_, err := svc.ClaimForDelivery(context.Background(), o.ID, "courier-a")
	require.NoError(t, err)

	_, err = svc.ConfirmDelivery(context.Background(), o.ID, "cust-1")
	require.ErrorIs(t, err, ErrConflict)
}

// --- Queries ---

func TestMerchantPendingItems_OnlyPaidOrders(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())

	// Unpaid order: invisible to merchants.
	_, err := svc.CreateOrder(context.Background(), validDraft())
	require.NoError(t, err)
	// Paid order: both items queued.
	createPaidOrder(t, svc)

	items, err := svc.MerchantPendingItems(context.Background(), "m-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Tomates", items[0].ProductName)
}

func TestAvailableForDelivery_OnlyUnassignedApproved(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())
	first := createPaidOrder(t, svc)
	approveOrder(t, svc, first)
	second := createPaidOrder(t, svc)
	approveOrder(t, svc, second)

	_, err := svc.ClaimForDelivery(context.Background(), first.ID, "courier-a")
	require.NoError(t, err)

	available, err := svc.AvailableForDelivery(context.Background())
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, second.ID, available[0].ID)
}

func TestCustomerOrders_ScopePartition(t *testing.T) {
	svc, _ := newTestService(newOrderRepo())
	active := createPaidOrder(t, svc)

	done := createPaidOrder(t, svc)
	for _, item := range done.Items {
		_, err := svc.SetLineItemStatus(context.Background(), item.ID, item.MerchantID, ItemRejected)
		require.NoError(t, err)
	}

	got, err := svc.CustomerOrders(context.Background(), "cust-1", ScopeActive)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)

	got, err = svc.CustomerOrders(context.Background(), "cust-1", ScopeHistory)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, done.ID, got[0].ID)

	_, err = svc.CustomerOrders(context.Background(), "cust-1", Scope("everything"))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}
