package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Weight    string          `json:"weight,omitempty"`
	Barcode   string          `json:"barcode,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ProductDraft carries the caller-supplied fields of a new product.
type ProductDraft struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
	Weight   string
	Barcode  string
}

// ProductUpdate holds a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name     *string
	Quantity *int
	Price    *decimal.Decimal
	Weight   *string
	Barcode  *string
}

// Value is the stock value of the product at its unit price.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
