package entities

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPlaced    Status = "Placed"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

// TrackingPending is the sentinel tracking value assigned before the carrier
// has responded. Only a crash between insert and the tracking update leaves it
// visible to callers.
const TrackingPending = "PENDING"

// Cancellable reports whether an order in this status may still be cancelled.
// Delivered and Cancelled are terminal for the cancellation path.
func (s Status) Cancellable() bool {
	return s != StatusDelivered && s != StatusCancelled
}

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPlaced, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

type OrderItem struct {
	ProductID string
	Quantity  int
	Price     float64
}

type Order struct {
	ID         uuid.UUID
	CustomerID string
	Items      []OrderItem
	TotalPrice float64

	Name    string
	Phone   string
	Email   string
	Address string
	City    string
	Pincode string

	Status     Status
	TrackingID string
	CreatedAt  time.Time

	CancellationReason string
	CancelledAt        *time.Time
}

// Receipt is what the caller gets back after placing an order.
type Receipt struct {
	OrderID    uuid.UUID
	TrackingID string
}

// ShipmentUpdate is a tracking event from the carrier pipeline.
type ShipmentUpdate struct {
	OrderID    uuid.UUID
	Status     Status
	TrackingID string
}

func (o *Order) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Order) Unmarshal(data []byte) error {
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	return dec.Decode(o)
}

func init() {
	gob.Register(Order{})
	gob.Register(OrderItem{})
}
