// Package order implements the marketplace order lifecycle: the state
// machines for orders and their line items, the transition guards for each
// actor role, and the rollup that derives an order's status from the
// decisions of the merchants fulfilling it.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order-level lifecycle state.
type Status string

const (
	// StatusPendingPayment is the state of a freshly checked-out order that
	// has not been paid. Orders in this state are visible only to their
	// customer and are never surfaced to merchants.
	StatusPendingPayment Status = "PENDING_PAYMENT"
	// StatusAwaitingMerchantApproval means the order is paid and merchants
	// are deciding on their line items.
	StatusAwaitingMerchantApproval Status = "AWAITING_MERCHANT_APPROVAL"
	// StatusApproved means every line item was accepted; the order sits in
	// the courier pull list until claimed.
	StatusApproved Status = "APPROVED"
	// StatusEnRoute means the assigned courier has left the market.
	StatusEnRoute Status = "EN_ROUTE"
	// StatusAwaitingReceiptConfirmation means the courier reported arrival
	// and the customer has not yet confirmed receipt.
	StatusAwaitingReceiptConfirmation Status = "AWAITING_RECEIPT_CONFIRMATION"
	// StatusDelivered is the terminal happy-path state.
	StatusDelivered Status = "DELIVERED"
	// StatusCancelled is the terminal state of an order abandoned before
	// payment.
	StatusCancelled Status = "CANCELLED"
	// StatusRejected is the terminal state of an order whose line items were
	// all rejected by their merchants.
	StatusRejected Status = "REJECTED"
)

// ItemStatus is the per-line-item state. Both ACCEPTED and REJECTED are
// terminal for the item.
type ItemStatus string

const (
	ItemPending  ItemStatus = "PENDING"
	ItemAccepted ItemStatus = "ACCEPTED"
	ItemRejected ItemStatus = "REJECTED"
)

// Scope selects which slice of a customer's orders to list.
type Scope string

const (
	ScopeActive  Scope = "active"
	ScopeHistory Scope = "history"
)

// ActiveStatuses and HistoryStatuses partition the order state space for the
// customer views.
var (
	ActiveStatuses = []Status{
		StatusPendingPayment,
		StatusAwaitingMerchantApproval,
		StatusApproved,
		StatusEnRoute,
		StatusAwaitingReceiptConfirmation,
	}
	HistoryStatuses = []Status{
		StatusDelivered,
		StatusCancelled,
		StatusRejected,
	}
)

// Order is the aggregate root. Monetary fields and pickup details are fixed
// at creation; only status, courier assignment, and paid-at mutate afterwards.
type Order struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"customer_id"`
	Status         Status          `json:"status"`
	PickupEntrance string          `json:"pickup_entrance"`
	PickupTime     time.Time       `json:"pickup_time"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  string          `json:"payment_method"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	CourierID      *string         `json:"courier_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Items          []LineItem      `json:"items,omitempty"`
}

// LineItem is one merchant's contribution to an order. The product fields are
// a snapshot taken at checkout so later catalog edits never alter history.
type LineItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	MerchantID  string          `json:"merchant_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Status      ItemStatus      `json:"status"`
}

// CartLine is one entry of a customer's cart at checkout time.
type CartLine struct {
	MerchantID  string          `json:"merchant_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// DraftOrder is the checkout value object. The customer collaborator keeps
// it until checkout; the lifecycle manager only ever receives it as an
// argument and never reads ambient state.
type DraftOrder struct {
	CustomerID     string     `json:"customer_id"`
	Lines          []CartLine `json:"lines"`
	PickupEntrance string     `json:"pickup_entrance"`
	PickupTime     time.Time  `json:"pickup_time"`
	PaymentMethod  string     `json:"payment_method"`
}

// ItemTally counts an order's line items by status. The rollup rule is a
// pure function of this tally.
type ItemTally struct {
	Pending  int
	Accepted int
	Rejected int
}

// Repository defines persistence operations for orders and their line items.
//
// Every mutating method encodes its transition guard in the store-side
// condition and must return ErrConflict when the guard no longer holds
// (zero rows affected), or ErrNotFound when the entity does not exist.
type Repository interface {
	// Create persists the order and all its line items atomically.
	Create(ctx context.Context, o *Order) error
	// GetByID returns the order with its line items.
	GetByID(ctx context.Context, id string) (*Order, error)
	// GetLineItem returns a single line item.
	GetLineItem(ctx context.Context, id string) (*LineItem, error)

	// MarkPaid sets paid_at and advances PENDING_PAYMENT to
	// AWAITING_MERCHANT_APPROVAL, conditional on paid_at still being null.
	MarkPaid(ctx context.Context, orderID string, paidAt time.Time) error
	// DecideLineItem moves a PENDING item owned by merchantID to the given
	// terminal item status and, on acceptance, accrues the line total onto
	// the merchant's revenue. Both writes commit in one store transaction,
	// so a failure leaves neither applied.
	DecideLineItem(ctx context.Context, itemID, merchantID string, to ItemStatus) error
	// UpdateStatus moves an order from one status to another.
	UpdateStatus(ctx context.Context, orderID string, from, to Status) error
	// AssignCourier sets the courier on an APPROVED, unassigned order.
	// First-claim-wins: the courier_id IS NULL condition is checked and the
	// column set in a single statement.
	AssignCourier(ctx context.Context, orderID, courierID string) error
	// UpdateStatusForCourier moves an order between statuses, conditional on
	// the assigned courier matching.
	UpdateStatusForCourier(ctx context.Context, orderID, courierID string, from, to Status) error
	// CompleteDelivery moves an order from AWAITING_RECEIPT_CONFIRMATION to
	// DELIVERED conditional on the customer matching, and credits the
	// assigned courier's wallet with the delivery fee in the same store
	// transaction.
	CompleteDelivery(ctx context.Context, orderID, customerID string) error

	// TallyItems counts the order's line items by status.
	TallyItems(ctx context.Context, orderID string) (ItemTally, error)

	// ListMerchantPending returns PENDING items of paid orders for one merchant.
	ListMerchantPending(ctx context.Context, merchantID string) ([]LineItem, error)
	// ListAvailableForDelivery returns APPROVED, unassigned, paid orders.
	ListAvailableForDelivery(ctx context.Context) ([]Order, error)
	// ListByCourier returns the orders assigned to a courier, oldest first.
	ListByCourier(ctx context.Context, courierID string) ([]Order, error)
	// ListByCustomer returns a customer's orders in any of the given statuses.
	ListByCustomer(ctx context.Context, customerID string, statuses []Status) ([]Order, error)
	// ListStalePendingPayment returns unpaid orders created before the cutoff.
	ListStalePendingPayment(ctx context.Context, cutoff time.Time) ([]Order, error)
}
