package repo

import (
	"database/sql"
	"time"

	"github.com/gavran-magic/order-service/internal/entities"

	"github.com/google/uuid"
)

type Order struct {
	OrderID            uuid.UUID      `db:"order_id"`
	CustomerID         string         `db:"customer_id"`
	TotalPrice         float64        `db:"total_price"`
	Name               string         `db:"name"`
	Phone              string         `db:"phone"`
	Email              sql.NullString `db:"email"`
	Address            string         `db:"address"`
	City               string         `db:"city"`
	Pincode            string         `db:"pincode"`
	Status             string         `db:"status"`
	TrackingID         string         `db:"tracking_id"`
	CancellationReason sql.NullString `db:"cancellation_reason"`
	CancelledAt        sql.NullTime   `db:"cancelled_at"`
	CreatedAt          time.Time      `db:"created_at"`
}

type OrderItem struct {
	OrderID   uuid.UUID `db:"order_id"`
	ProductID string    `db:"product_id"`
	Quantity  int       `db:"quantity"`
	Price     float64   `db:"price"`
}

type Product struct {
	ProductID   uuid.UUID `db:"product_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Weight      string    `db:"weight"`
	Price       float64   `db:"price"`
	Image       string    `db:"image"`
}

func OrderToEntity(o Order, items []OrderItem) entities.Order {
	order := entities.Order{
		ID:                 o.OrderID,
		CustomerID:         o.CustomerID,
		TotalPrice:         o.TotalPrice,
		Name:               o.Name,
		Phone:              o.Phone,
		Email:              nullStringToString(o.Email),
		Address:            o.Address,
		City:               o.City,
		Pincode:            o.Pincode,
		Status:             entities.Status(o.Status),
		TrackingID:         o.TrackingID,
		CancellationReason: nullStringToString(o.CancellationReason),
		CreatedAt:          o.CreatedAt,
	}

	if o.CancelledAt.Valid {
		at := o.CancelledAt.Time
		order.CancelledAt = &at
	}

	if len(items) > 0 {
		order.Items = make([]entities.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, entities.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price,
			})
		}
	}

	return order
}

func ProductToEntity(p Product) entities.Product {
	return entities.Product{
		ID:          p.ProductID,
		Name:        p.Name,
		Description: p.Description,
		Weight:      p.Weight,
		Price:       p.Price,
		Image:       p.Image,
	}
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
