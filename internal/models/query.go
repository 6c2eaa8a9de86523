package models

import "github.com/shopspring/decimal"

// OrderSortFields is the ORDER BY whitelist for order listings.
var OrderSortFields = []string{"id", "created_at", "total_amount", "status"}

var ProductSortFields = []string{"id", "name", "price", "category", "created_at"}

type OrderQuery struct {
	Page   int
	Limit  int
	SortBy string
	Desc   bool
	// Status is matched case-insensitively; empty means no filter.
	Status string

	UserID   uint
	DriverID uint

	WithCustomer bool
}

type ProductQuery struct {
	Page     int
	Limit    int
	SortBy   string
	Desc     bool
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Search   string
	// IDs restricts the result to a search-engine hit list when non-nil.
	IDs []uint
}

type Rating struct {
	Average float64 `json:"average_rating"`
	Count   int64   `json:"total_reviews"`
}
