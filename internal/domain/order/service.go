package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feiradobairro/marketplace/internal/notify"
)

// Service is the order lifecycle manager. It owns every status transition an
// order and its line items move through, enforces the per-actor guards, and
// derives the order-level status from the line item rollup.
type Service struct {
	orders      Repository
	events      notify.Events
	deliveryFee decimal.Decimal
	now         func() time.Time
}

// NewService creates the lifecycle manager. deliveryFee is the flat fee
// charged per order at checkout.
func NewService(orders Repository, events notify.Events, deliveryFee decimal.Decimal) *Service {
	return &Service{
		orders:      orders,
		events:      events,
		deliveryFee: deliveryFee,
		now:         time.Now,
	}
}

// CreateOrder validates the checkout draft, computes line totals, subtotal
// and total, and persists the order with all line items atomically. The new
// order starts in PENDING_PAYMENT with every item PENDING.
func (s *Service) CreateOrder(ctx context.Context, draft DraftOrder) (*Order, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]LineItem, len(draft.Lines))
	subtotal := decimal.Zero
	for i, line := range draft.Lines {
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		items[i] = LineItem{
			ID:          uuid.New().String(),
			MerchantID:  line.MerchantID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Unit:        line.Unit,
			UnitPrice:   line.UnitPrice,
			LineTotal:   lineTotal,
			Status:      ItemPending,
		}
		subtotal = subtotal.Add(lineTotal)
	}

	o := &Order{
		ID:             uuid.New().String(),
		CustomerID:     draft.CustomerID,
		Status:         StatusPendingPayment,
		PickupEntrance: draft.PickupEntrance,
		PickupTime:     draft.PickupTime,
		Subtotal:       subtotal,
		DeliveryFee:    s.deliveryFee,
		Total:          subtotal.Add(s.deliveryFee),
		PaymentMethod:  draft.PaymentMethod,
		CreatedAt:      now,
		Items:          items,
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.events.Notify(ctx, notify.Event{
		Type: notify.OrderCreated, OrderID: o.ID, ActorID: o.CustomerID, At: now,
	})
	return o, nil
}

// MarkPaid records the payment confirmation, stamping paid_at and advancing
// the order to AWAITING_MERCHANT_APPROVAL. It applies exactly once; a second
// call fails with ErrConflict.
func (s *Service) MarkPaid(ctx context.Context, orderID string) (*Order, error) {
	now := s.now()
	if err := s.orders.MarkPaid(ctx, orderID, now); err != nil {
		return nil, errors.Wrapf(err, "mark order %s paid", orderID)
	}

	s.events.Notify(ctx, notify.Event{Type: notify.OrderPaid, OrderID: orderID, At: now})
	return s.orders.GetByID(ctx, orderID)
}

// SetLineItemStatus records a merchant's accept/reject decision on one of
// their line items. The item must belong to the acting merchant (items of
// other merchants are not visible to the actor, so a mismatch reads as
// ErrNotFound), the parent order must be paid, and the item must still be
// PENDING. The decision and the revenue accrual commit in a single store
// transaction; afterwards the order-level status is recomputed from the item
// rollup. Retrying the same decision after a transient rollup failure finds
// the item already decided and re-runs the rollup, so the order-level
// derivation can never stay behind the items for good.
func (s *Service) SetLineItemStatus(ctx context.Context, itemID, merchantID string, to ItemStatus) (*LineItem, error) {
	if to != ItemAccepted && to != ItemRejected {
		return nil, &ValidationError{Field: "status", Reason: "must be ACCEPTED or REJECTED"}
	}
	if merchantID == "" {
		return nil, &ValidationError{Field: "merchant_id", Reason: "required"}
	}

	item, err := s.orders.GetLineItem(ctx, itemID)
	if err != nil {
		return nil, errors.Wrapf(err, "get line item %s", itemID)
	}
	if item.MerchantID != merchantID {
		return nil, ErrNotFound
	}

	// The store-side condition covers ownership, the paid guard, and the
	// PENDING precondition; on acceptance the revenue accrues in the same
	// transaction.
	err = s.orders.DecideLineItem(ctx, itemID, merchantID, to)
	switch {
	case errors.Is(err, ErrConflict) && item.Status == to:
		// An earlier attempt committed this same decision but may have lost
		// the rollup write. Fall through to the recompute so the retry
		// repairs the order instead of failing.
	case err != nil:
		return nil, errors.Wrapf(err, "set line item %s to %s", itemID, to)
	default:
		item.Status = to
		s.events.Notify(ctx, notify.Event{
			Type: notify.ItemDecided, OrderID: item.OrderID, ItemID: itemID, ActorID: merchantID, At: s.now(),
		})
	}

	if err := s.recomputeOrderStatus(ctx, item.OrderID); err != nil {
		return nil, errors.Wrapf(err, "recompute status of order %s", item.OrderID)
	}
	return item, nil
}

// recomputeOrderStatus applies the rollup rule. It is the only place the
// item-to-order derivation lives:
//
//   - any item PENDING            -> stay AWAITING_MERCHANT_APPROVAL
//   - none PENDING, all ACCEPTED  -> APPROVED
//   - none PENDING, all REJECTED  -> REJECTED
//   - none PENDING, mixed outcome -> stay AWAITING_MERCHANT_APPROVAL; the
//     partial outcome is held for support resolution rather than guessed at.
func (s *Service) recomputeOrderStatus(ctx context.Context, orderID string) error {
	tally, err := s.orders.TallyItems(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "tally items")
	}
	if tally.Pending > 0 {
		return nil
	}

	var to Status
	var ev notify.EventType
	switch {
	case tally.Rejected == 0:
		to, ev = StatusApproved, notify.OrderApproved
	case tally.Accepted == 0:
		to, ev = StatusRejected, notify.OrderRejected
	default:
		return nil
	}

	err = s.orders.UpdateStatus(ctx, orderID, StatusAwaitingMerchantApproval, to)
	if errors.Is(err, ErrConflict) {
		// Two merchants decided their last items at the same time and the
		// other session already applied the same rollup.
		return nil
	}
	if err != nil {
		return err
	}

	s.events.Notify(ctx, notify.Event{Type: ev, OrderID: orderID, At: s.now()})
	return nil
}

// ClaimForDelivery assigns the acting courier to an APPROVED, unassigned
// order. The assignment is a single conditional write: of two couriers
// claiming simultaneously exactly one wins and the loser gets ErrConflict.
func (s *Service) ClaimForDelivery(ctx context.Context, orderID, courierID string) (*Order, error) {
	if courierID == "" {
		return nil, &ValidationError{Field: "courier_id", Reason: "required"}
	}
	if err := s.orders.AssignCourier(ctx, orderID, courierID); err != nil {
		return nil, errors.Wrapf(err, "claim order %s", orderID)
	}

	s.events.Notify(ctx, notify.Event{
		Type: notify.OrderClaimed, OrderID: orderID, ActorID: courierID, At: s.now(),
	})
	return s.orders.GetByID(ctx, orderID)
}

// MarkEnRoute records that the assigned courier has left the market with the
// order.
func (s *Service) MarkEnRoute(ctx context.Context, orderID, courierID string) (*Order, error) {
	err := s.orders.UpdateStatusForCourier(ctx, orderID, courierID, StatusApproved, StatusEnRoute)
	if err != nil {
		return nil, errors.Wrapf(err, "mark order %s en route", orderID)
	}

	s.events.Notify(ctx, notify.Event{
		Type: notify.OrderEnRoute, OrderID: orderID, ActorID: courierID, At: s.now(),
	})
	return s.orders.GetByID(ctx, orderID)
}

// MarkAwaitingConfirmation records that the assigned courier has arrived and
// handed the order over; the customer still has to confirm receipt.
func (s *Service) MarkAwaitingConfirmation(ctx context.Context, orderID, courierID string) (*Order, error) {
	err := s.orders.UpdateStatusForCourier(ctx, orderID, courierID, StatusEnRoute, StatusAwaitingReceiptConfirmation)
	if err != nil {
		return nil, errors.Wrapf(err, "mark order %s awaiting confirmation", orderID)
	}

	s.events.Notify(ctx, notify.Event{
		Type: notify.CourierArrived, OrderID: orderID, ActorID: courierID, At: s.now(),
	})
	return s.orders.GetByID(ctx, orderID)
}

// ConfirmDelivery closes the order. Only the order's customer may confirm.
// The courier's wallet is credited with the delivery fee and their delivery
// count incremented in the same store transaction as the status change.
func (s *Service) ConfirmDelivery(ctx context.Context, orderID, customerID string) (*Order, error) {
	if customerID == "" {
		return nil, &ValidationError{Field: "customer_id", Reason: "required"}
	}
	if err := s.orders.CompleteDelivery(ctx, orderID, customerID); err != nil {
		return nil, errors.Wrapf(err, "confirm delivery of order %s", orderID)
	}

	s.events.Notify(ctx, notify.Event{
		Type: notify.OrderDelivered, OrderID: orderID, ActorID: customerID, At: s.now(),
	})
	return s.orders.GetByID(ctx, orderID)
}

// GetOrder returns a single order with its line items.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, &ValidationError{Field: "order_id", Reason: "required"}
	}
	return s.orders.GetByID(ctx, orderID)
}

// MerchantPendingItems is the merchant work queue: PENDING items whose parent
// order has been paid.
func (s *Service) MerchantPendingItems(ctx context.Context, merchantID string) ([]LineItem, error) {
	if merchantID == "" {
		return nil, &ValidationError{Field: "merchant_id", Reason: "required"}
	}
	return s.orders.ListMerchantPending(ctx, merchantID)
}

// AvailableForDelivery is the courier pull list: APPROVED, unassigned, paid
// orders.
func (s *Service) AvailableForDelivery(ctx context.Context) ([]Order, error) {
	return s.orders.ListAvailableForDelivery(ctx)
}

// CourierDeliveries lists the orders assigned to the acting courier.
func (s *Service) CourierDeliveries(ctx context.Context, courierID string) ([]Order, error) {
	if courierID == "" {
		return nil, &ValidationError{Field: "courier_id", Reason: "required"}
	}
	return s.orders.ListByCourier(ctx, courierID)
}

// CustomerOrders lists a customer's orders, either the in-flight ones
// (ScopeActive) or the closed ones (ScopeHistory).
func (s *Service) CustomerOrders(ctx context.Context, customerID string, scope Scope) ([]Order, error) {
	if customerID == "" {
		return nil, &ValidationError{Field: "customer_id", Reason: "required"}
	}

	var statuses []Status
	switch scope {
	case ScopeActive:
		statuses = ActiveStatuses
	case ScopeHistory:
		statuses = HistoryStatuses
	default:
		return nil, &ValidationError{Field: "scope", Reason: "must be active or history"}
	}
	return s.orders.ListByCustomer(ctx, customerID, statuses)
}

func validateDraft(draft DraftOrder) error {
	if draft.CustomerID == "" {
		return &ValidationError{Field: "customer_id", Reason: "required"}
	}
	if len(draft.Lines) == 0 {
		return &ValidationError{Field: "lines", Reason: "cart is empty"}
	}
	if draft.PickupEntrance == "" {
		return &ValidationError{Field: "pickup_entrance", Reason: "required"}
	}
	if draft.PickupTime.IsZero() {
		return &ValidationError{Field: "pickup_time", Reason: "required"}
	}
	for _, line := range draft.Lines {
		if line.MerchantID == "" {
			return &ValidationError{Field: "lines", Reason: "merchant required on every line"}
		}
		if line.ProductName == "" {
			return &ValidationError{Field: "lines", Reason: "product name required on every line"}
		}
		if line.Quantity <= 0 {
			return &ValidationError{Field: "lines", Reason: "quantity must be greater than 0"}
		}
		if line.UnitPrice.IsNegative() {
			return &ValidationError{Field: "lines", Reason: "unit price must not be negative"}
		}
	}
	return nil
}
