package domain

import "time"

// Item is an inventory record. The id is assigned by the store on creation
// and never reused; quantity and price are always non-negative once past
// handler validation.
type Item struct {
	ID          int64
	Name        string
	Description string
	Quantity    int
	Price       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
