package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an append-only record of one successful sell.
type Sale struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
	Date        time.Time       `json:"date"`
}
