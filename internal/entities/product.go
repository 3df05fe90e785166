package entities

import "github.com/google/uuid"

// Product is a catalog record. The order path never re-validates item prices
// against the catalog: line items and totals are stored as the caller sent them.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Weight      string
	Price       float64
	Image       string
}
