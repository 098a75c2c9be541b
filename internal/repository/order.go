package repository

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/feiradobairro/marketplace/internal/domain/order"
)

const (
	orderColumns = `id, customer_id, status, pickup_entrance, pickup_time,
		subtotal, delivery_fee, total, payment_method, paid_at, courier_id, created_at`

	itemColumns = `id, order_id, merchant_id, product_name, quantity, unit,
		unit_price, line_total, status`

	insertOrderSQL = `INSERT INTO orders
		(id, customer_id, status, pickup_entrance, pickup_time, subtotal,
		 delivery_fee, total, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	insertItemSQL = `INSERT INTO order_line_items
		(id, order_id, merchant_id, product_name, quantity, unit, unit_price,
		 line_total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	markPaidSQL = `UPDATE orders SET paid_at = $2, status = 'AWAITING_MERCHANT_APPROVAL'
		WHERE id = $1 AND status = 'PENDING_PAYMENT' AND paid_at IS NULL`

	updateItemStatusSQL = `UPDATE order_line_items li SET status = $3
		FROM orders o
		WHERE li.id = $1 AND li.merchant_id = $2 AND li.status = 'PENDING'
		  AND o.id = li.order_id AND o.paid_at IS NOT NULL`

	accrueItemRevenueSQL = `UPDATE merchants m SET revenue = m.revenue + li.line_total
		FROM order_line_items li
		WHERE li.id = $1 AND m.id = li.merchant_id`

	updateStatusSQL = `UPDATE orders SET status = $3
		WHERE id = $1 AND status = $2`

	assignCourierSQL = `UPDATE orders SET courier_id = $2
		WHERE id = $1 AND status = 'APPROVED' AND courier_id IS NULL`

	updateStatusForCourierSQL = `UPDATE orders SET status = $4
		WHERE id = $1 AND courier_id = $2 AND status = $3`

	completeDeliverySQL = `UPDATE orders SET status = 'DELIVERED'
		WHERE id = $1 AND customer_id = $2 AND status = 'AWAITING_RECEIPT_CONFIRMATION'
		RETURNING courier_id, delivery_fee`

	creditCourierSQL = `UPDATE couriers
		SET wallet = wallet + $2, deliveries = deliveries + 1
		WHERE id = $1`

	tallyItemsSQL = `SELECT status, count(*) FROM order_line_items
		WHERE order_id = $1 GROUP BY status`

	merchantPendingSQL = `SELECT li.id, li.order_id, li.merchant_id, li.product_name,
		li.quantity, li.unit, li.unit_price, li.line_total, li.status
		FROM order_line_items li
		JOIN orders o ON o.id = li.order_id
		WHERE li.merchant_id = $1 AND li.status = 'PENDING' AND o.paid_at IS NOT NULL
		ORDER BY o.pickup_time, li.id`

	availableSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE status = 'APPROVED' AND courier_id IS NULL AND paid_at IS NOT NULL
		ORDER BY pickup_time`

	byCourierSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE courier_id = $1 ORDER BY pickup_time`

	byCustomerSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE customer_id = $1 AND status = ANY($2) ORDER BY created_at DESC`

	stalePendingSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE status = 'PENDING_PAYMENT' AND created_at < $1 ORDER BY created_at`

	orderExistsSQL = `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`
	itemExistsSQL  = `SELECT EXISTS(SELECT 1 FROM order_line_items WHERE id = $1)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order and all line items in one transaction; the items
// go in as a single batch.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertOrderSQL,
			o.ID, o.CustomerID, o.Status, o.PickupEntrance, o.PickupTime,
			o.Subtotal, o.DeliveryFee, o.Total, o.PaymentMethod, o.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "insert order")
		}

		batch := &pgx.Batch{}
		for _, item := range o.Items {
			batch.Queue(insertItemSQL,
				item.ID, item.OrderID, item.MerchantID, item.ProductName,
				item.Quantity, item.Unit, item.UnitPrice, item.LineTotal, item.Status,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	return storeErr(err, "creating order "+o.ID)
}

// GetByID returns the order with its line items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, storeErr(err, "getting order "+id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, storeErr(err, "getting order "+id)
	}

	itemRows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM order_line_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, storeErr(err, "getting items of order "+id)
	}
	o.Items, err = pgx.CollectRows(itemRows, scanLineItem)
	if err != nil {
		return nil, storeErr(err, "getting items of order "+id)
	}
	return &o, nil
}

// GetLineItem returns a single line item.
func (r *OrderRepository) GetLineItem(ctx context.Context, id string) (*order.LineItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM order_line_items WHERE id = $1`, id)
	if err != nil {
		return nil, storeErr(err, "getting line item "+id)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanLineItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, storeErr(err, "getting line item "+id)
	}
	return &item, nil
}

// MarkPaid stamps paid_at, conditional on the order being unpaid.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID string, paidAt time.Time) error {
	tag, err := r.pool.Exec(ctx, markPaidSQL, orderID, paidAt)
	if err != nil {
		return storeErr(err, "marking order paid")
	}
	if tag.RowsAffected() == 0 {
		return r.guardFailure(ctx, orderExistsSQL, orderID)
	}
	return nil
}

// DecideLineItem applies the merchant's decision and, on acceptance, accrues
// the line total onto the merchant's revenue in the same transaction. The
// update condition covers ownership, the PENDING precondition, and the parent
// order being paid.
func (r *OrderRepository) DecideLineItem(ctx context.Context, itemID, merchantID string, to order.ItemStatus) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateItemStatusSQL, itemID, merchantID, to)
		if err != nil {
			return errors.Wrap(err, "update line item")
		}
		if tag.RowsAffected() == 0 {
			return r.guardFailure(ctx, itemExistsSQL, itemID)
		}
		if to != order.ItemAccepted {
			return nil
		}

		_, err = tx.Exec(ctx, accrueItemRevenueSQL, itemID)
		return errors.Wrap(err, "accrue merchant revenue")
	})
	if err != nil {
		if errors.Is(err, order.ErrConflict) || errors.Is(err, order.ErrNotFound) {
			return err
		}
		return storeErr(err, "deciding line item "+itemID)
	}
	return nil
}

// UpdateStatus moves an order between statuses.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to order.Status) error {
	tag, err := r.pool.Exec(ctx, updateStatusSQL, orderID, from, to)
	if err != nil {
		return storeErr(err, "updating order status")
	}
	if tag.RowsAffected() == 0 {
		return r.guardFailure(ctx, orderExistsSQL, orderID)
	}
	return nil
}

// AssignCourier claims an order for a courier. Zero rows affected means the
// order is gone, already claimed, or not APPROVED.
func (r *OrderRepository) AssignCourier(ctx context.Context, orderID, courierID string) error {
	tag, err := r.pool.Exec(ctx, assignCourierSQL, orderID, courierID)
	if err != nil {
		return storeErr(err, "assigning courier")
	}
	if tag.RowsAffected() == 0 {
		return r.guardFailure(ctx, orderExistsSQL, orderID)
	}
	return nil
}

// UpdateStatusForCourier moves an order between statuses, conditional on the
// assigned courier matching.
func (r *OrderRepository) UpdateStatusForCourier(ctx context.Context, orderID, courierID string, from, to order.Status) error {
	tag, err := r.pool.Exec(ctx, updateStatusForCourierSQL, orderID, courierID, from, to)
	if err != nil {
		return storeErr(err, "updating order status for courier")
	}
	if tag.RowsAffected() == 0 {
		return r.guardFailure(ctx, orderExistsSQL, orderID)
	}
	return nil
}

// CompleteDelivery closes the order and credits the courier in one
// transaction.
func (r *OrderRepository) CompleteDelivery(ctx context.Context, orderID, customerID string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var (
			courierID *string
			fee       decimal.Decimal
		)
		err := tx.QueryRow(ctx, completeDeliverySQL, orderID, customerID).Scan(&courierID, &fee)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.guardFailure(ctx, orderExistsSQL, orderID)
		}
		if err != nil {
			return errors.Wrap(err, "close order")
		}
		if courierID == nil {
			// The state machine never reaches AWAITING_RECEIPT_CONFIRMATION
			// without an assigned courier.
			return errors.Errorf("order %s has no assigned courier", orderID)
		}

		_, err = tx.Exec(ctx, creditCourierSQL, *courierID, fee)
		return errors.Wrap(err, "credit courier wallet")
	})
	if err != nil {
		if errors.Is(err, order.ErrConflict) || errors.Is(err, order.ErrNotFound) {
			return err
		}
		return storeErr(err, "completing delivery of order "+orderID)
	}
	return nil
}

// TallyItems counts the order's line items by status.
func (r *OrderRepository) TallyItems(ctx context.Context, orderID string) (order.ItemTally, error) {
	var tally order.ItemTally

	rows, err := r.pool.Query(ctx, tallyItemsSQL, orderID)
	if err != nil {
		return tally, storeErr(err, "tallying items of order "+orderID)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return tally, storeErr(err, "tallying items of order "+orderID)
		}
		switch order.ItemStatus(status) {
		case order.ItemPending:
			tally.Pending = count
		case order.ItemAccepted:
			tally.Accepted = count
		case order.ItemRejected:
			tally.Rejected = count
		}
	}
	return tally, storeErr(rows.Err(), "tallying items of order "+orderID)
}

// ListMerchantPending returns the merchant work queue, oldest pickup first.
func (r *OrderRepository) ListMerchantPending(ctx context.Context, merchantID string) ([]order.LineItem, error) {
	rows, err := r.pool.Query(ctx, merchantPendingSQL, merchantID)
	if err != nil {
		return nil, storeErr(err, "listing pending items")
	}
	items, err := pgx.CollectRows(rows, scanLineItem)
	return items, storeErr(err, "listing pending items")
}

// ListAvailableForDelivery returns the courier pull list.
func (r *OrderRepository) ListAvailableForDelivery(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, availableSQL)
	if err != nil {
		return nil, storeErr(err, "listing available orders")
	}
	os, err := pgx.CollectRows(rows, scanOrder)
	return os, storeErr(err, "listing available orders")
}

// ListByCourier returns the orders assigned to a courier.
func (r *OrderRepository) ListByCourier(ctx context.Context, courierID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, byCourierSQL, courierID)
	if err != nil {
		return nil, storeErr(err, "listing courier orders")
	}
	os, err := pgx.CollectRows(rows, scanOrder)
	return os, storeErr(err, "listing courier orders")
}

// ListByCustomer returns a customer's orders in any of the given statuses.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string, statuses []order.Status) ([]order.Order, error) {
	ss := make([]string, len(statuses))
	for i, st := range statuses {
		ss[i] = string(st)
	}

	rows, err := r.pool.Query(ctx, byCustomerSQL, customerID, ss)
	if err != nil {
		return nil, storeErr(err, "listing customer orders")
	}
	os, err := pgx.CollectRows(rows, scanOrder)
	return os, storeErr(err, "listing customer orders")
}

// ListStalePendingPayment returns unpaid orders created before the cutoff.
func (r *OrderRepository) ListStalePendingPayment(ctx context.Context, cutoff time.Time) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, stalePendingSQL, cutoff)
	if err != nil {
		return nil, storeErr(err, "listing stale unpaid orders")
	}
	os, err := pgx.CollectRows(rows, scanOrder)
	return os, storeErr(err, "listing stale unpaid orders")
}

// guardFailure distinguishes a missing row from a failed precondition after
// a conditional update affected zero rows.
func (r *OrderRepository) guardFailure(ctx context.Context, existsSQL, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, existsSQL, id).Scan(&exists); err != nil {
		return storeErr(err, "checking existence of "+id)
	}
	if !exists {
		return order.ErrNotFound
	}
	return order.ErrConflict
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.PickupEntrance, &o.PickupTime,
		&o.Subtotal, &o.DeliveryFee, &o.Total, &o.PaymentMethod,
		&o.PaidAt, &o.CourierID, &o.CreatedAt,
	)
	return o, err
}

func scanLineItem(row pgx.CollectableRow) (order.LineItem, error) {
	var item order.LineItem
	err := row.Scan(
		&item.ID, &item.OrderID, &item.MerchantID, &item.ProductName,
		&item.Quantity, &item.Unit, &item.UnitPrice, &item.LineTotal, &item.Status,
	)
	return item, err
}
