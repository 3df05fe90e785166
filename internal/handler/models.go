package handler

import (
	"time"

	"github.com/gavran-magic/order-service/internal/entities"
)

// CreateOrderRequest is the checkout payload. Totals and prices are taken as
// sent; the catalog is not consulted.
type CreateOrderRequest struct {
	UserID     string      `json:"user_id" validate:"required"`
	Products   []OrderItem `json:"products" validate:"required,min=1,dive"`
	TotalPrice float64     `json:"total_price" validate:"required"`
	Address    string      `json:"address" validate:"required"`
	City       string      `json:"city" validate:"required"`
	Pincode    string      `json:"pincode" validate:"required"`
	Phone      string      `json:"phone" validate:"required"`
	Name       string      `json:"name" validate:"required"`
	Email      string      `json:"email,omitempty" validate:"omitempty,email"`
}

// OrderItem is one purchased line item.
type OrderItem struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// CreateOrderResponse confirms a placed order.
type CreateOrderResponse struct {
	Message    string `json:"message"`
	OrderID    string `json:"order_id"`
	TrackingID string `json:"tracking_id"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

// MessageResponse is a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Order is the order document returned to callers.
type Order struct {
	OrderID            string      `json:"order_id"`
	UserID             string      `json:"user_id"`
	Products           []OrderItem `json:"products"`
	TotalPrice         float64     `json:"total_price"`
	Address            string      `json:"address"`
	City               string      `json:"city"`
	Pincode            string      `json:"pincode"`
	Phone              string      `json:"phone"`
	Name               string      `json:"name"`
	Email              string      `json:"email,omitempty"`
	OrderStatus        string      `json:"order_status"`
	TrackingID         string      `json:"tracking_id"`
	CreatedAt          time.Time   `json:"created_at"`
	CancellationReason string      `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time  `json:"cancelled_at,omitempty"`
}

// Product is a catalog record as returned to callers.
type Product struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      string  `json:"weight"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

func (r CreateOrderRequest) ToEntity() entities.Order {
	items := make([]entities.OrderItem, 0, len(r.Products))
	for _, it := range r.Products {
		items = append(items, entities.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	return entities.Order{
		CustomerID: r.UserID,
		Items:      items,
		TotalPrice: r.TotalPrice,
		Address:    r.Address,
		City:       r.City,
		Pincode:    r.Pincode,
		Phone:      r.Phone,
		Name:       r.Name,
		Email:      r.Email,
	}
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	return Order{
		OrderID:            o.ID.String(),
		UserID:             o.CustomerID,
		Products:           items,
		TotalPrice:         o.TotalPrice,
		Address:            o.Address,
		City:               o.City,
		Pincode:            o.Pincode,
		Phone:              o.Phone,
		Name:               o.Name,
		Email:              o.Email,
		OrderStatus:        string(o.Status),
		TrackingID:         o.TrackingID,
		CreatedAt:          o.CreatedAt,
		CancellationReason: o.CancellationReason,
		CancelledAt:        o.CancelledAt,
	}
}

func ProductEntityToJSON(p entities.Product) Product {
	return Product{
		ProductID:   p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Weight:      p.Weight,
		Price:       p.Price,
		Image:       p.Image,
	}
}
