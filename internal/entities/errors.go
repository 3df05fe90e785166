package entities

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidOrderID  = errors.New("invalid order id format")
	ErrRegionNotServed = errors.New("region not served")
	ErrNotServiceable  = errors.New("no courier available for pincode")

	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidProductID = errors.New("invalid product id format")
	ErrInvalidStatus    = errors.New("invalid order status")
)

// NotCancellableError is returned when the cancellation guard rejects a
// transition out of a terminal status.
type NotCancellableError struct {
	Status Status
}

func (e NotCancellableError) Error() string {
	return fmt.Sprintf("order cannot be cancelled, current status: %s", e.Status)
}
