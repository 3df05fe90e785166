package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gavran-magic/order-service/internal/entities"
	"github.com/gavran-magic/order-service/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type postgresRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresRepo(db *sqlx.DB) *postgresRepo {
	return &postgresRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var orderColumns = []string{
	"order_id", "customer_id", "total_price", "name", "phone", "email",
	"address", "city", "pincode", "status", "tracking_id",
	"cancellation_reason", "cancelled_at", "created_at",
}

// CreateOrder assigns the identifier and creation time, then inserts the
// order row and its items. Run it inside trm.Manager.Do so both inserts
// commit together.
func (r *postgresRepo) CreateOrder(ctx context.Context, o entities.Order) (entities.Order, error) {
	o.ID = uuid.New()
	o.CreatedAt = time.Now().UTC()

	query, args := r.qb.Insert("orders").
		Columns("order_id", "customer_id", "total_price", "name", "phone", "email",
			"address", "city", "pincode", "status", "tracking_id", "created_at").
		Values(o.ID, o.CustomerID, o.TotalPrice, o.Name, o.Phone, nullString(o.Email),
			o.Address, o.City, o.Pincode, string(o.Status), o.TrackingID, o.CreatedAt).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	if len(o.Items) > 0 {
		q := r.qb.Insert("order_items").
			Columns("order_id", "product_id", "quantity", "price")
		for _, it := range o.Items {
			q = q.Values(o.ID, it.ProductID, it.Quantity, it.Price)
		}

		query, args := q.MustSql()
		if _, err := r.execContext(ctx, query, args...); err != nil {
			return entities.Order{}, fmt.Errorf("failed to insert order items: %w", err)
		}
	}

	return o, nil
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, orderID uuid.UUID) (entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	query, args = r.qb.Select("order_id", "product_id", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order items: %w", err)
	}

	return OrderToEntity(order, items), nil
}

// OrdersByCustomer returns the customer's orders, most recent first.
func (r *postgresRepo) OrdersByCustomer(ctx context.Context, customerID string) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"customer_id": customerID}).
		OrderBy("created_at DESC").
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}

	if len(orders) == 0 {
		return []entities.Order{}, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i, order := range orders {
		ids[i] = order.OrderID
	}

	query, args = r.qb.Select("order_id", "product_id", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}
	itemsMap := make(map[uuid.UUID][]OrderItem, len(ids))
	for _, item := range items {
		itemsMap[item.OrderID] = append(itemsMap[item.OrderID], item)
	}

	result := make([]entities.Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, OrderToEntity(order, itemsMap[order.OrderID]))
	}

	return result, nil
}

func (r *postgresRepo) UpdateTracking(ctx context.Context, orderID uuid.UUID, trackingID string) error {
	query, args := r.qb.Update("orders").
		Set("tracking_id", trackingID).
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update tracking: %w", err)
	}
	return nil
}

// MarkCancelled transitions the order to Cancelled unless it already reached a
// terminal status. Reports whether a row was actually updated, so the caller
// can detect a concurrent transition.
func (r *postgresRepo) MarkCancelled(ctx context.Context, orderID uuid.UUID, reason string, at time.Time) (bool, error) {
	query, args := r.qb.Update("orders").
		Set("status", string(entities.StatusCancelled)).
		Set("cancellation_reason", reason).
		Set("cancelled_at", at).
		Where(sq.Eq{"order_id": orderID}).
		Where(sq.NotEq{"status": []string{
			string(entities.StatusCancelled),
			string(entities.StatusDelivered),
		}}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to cancel order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpdateShipmentStatus applies a carrier status, skipping orders already in a
// terminal state. An empty trackingID leaves the stored tracking untouched.
func (r *postgresRepo) UpdateShipmentStatus(ctx context.Context, orderID uuid.UUID, status entities.Status, trackingID string) (bool, error) {
	q := r.qb.Update("orders").
		Set("status", string(status)).
		Where(sq.Eq{"order_id": orderID}).
		Where(sq.NotEq{"status": []string{
			string(entities.StatusCancelled),
			string(entities.StatusDelivered),
		}})

	if trackingID != "" {
		q = q.Set("tracking_id", trackingID)
	}

	query, args := q.MustSql()
	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update shipment status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *postgresRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *postgresRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *postgresRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
