package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/smart-pos/internal/core/domain"
)

// LowStockThreshold is the quantity under which a product counts as low stock.
const LowStockThreshold = 10

type HomeStats struct {
	ProductCount  int             `json:"productCount"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	SaleCount     int             `json:"saleCount"`
	LowStockCount int             `json:"lowStockCount"`
}

type DashboardRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Barcode  string `json:"barcode"`
	Weight   string `json:"weight"`
}

type AddProductForm struct {
	Barcode  string          `json:"barcode" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price" validate:"gt=0"`
	Weight   string          `json:"weight"`
}

// ProductPatch is a partial product edit; nil fields are left untouched.
type ProductPatch struct {
	Name     *string          `json:"name"`
	Quantity *int             `json:"quantity" validate:"omitempty,gte=0"`
	Price    *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Weight   *string          `json:"weight"`
	Barcode  *string          `json:"barcode"`
}

// AddProductOutcome holds either the created product or, when the barcode is
// already stocked, the existing product so the operator can restock it.
type AddProductOutcome struct {
	Created  *domain.Product `json:"created,omitempty"`
	Existing *domain.Product `json:"existing,omitempty"`
}

// Pages computes what the home, dashboard and add-product pages display.
type Pages struct {
	ledger   *Ledger
	validate *validator.Validate
	log      *logrus.Logger
}

func NewPages(ledger *Ledger, logger *logrus.Logger) *Pages {
	if logger == nil {
		logger = logrus.New()
	}
	return &Pages{
		ledger:   ledger,
		validate: newValidator(),
		log:      logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (p *Pages) HomeStats(ctx context.Context) (HomeStats, error) {
	products, err := p.ledger.ListProducts(ctx)
	if err != nil {
		return HomeStats{}, err
	}
	sales, err := p.ledger.ListSales(ctx)
	if err != nil {
		return HomeStats{}, err
	}

	stats := HomeStats{
		ProductCount: len(products),
		TotalValue:   decimal.Zero,
		SaleCount:    len(sales),
	}
	for _, prod := range products {
		stats.TotalValue = stats.TotalValue.Add(prod.Value())
		if prod.Quantity < LowStockThreshold {
			stats.LowStockCount++
		}
	}
	return stats, nil
}

func (p *Pages) Dashboard(ctx context.Context) ([]DashboardRow, error) {
	products, err := p.ledger.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]DashboardRow, 0, len(products))
	for _, prod := range products {
		rows = append(rows, DashboardRow{
			ID:       prod.ID,
			Name:     prod.Name,
			Quantity: prod.Quantity,
			Price:    prod.Price.StringFixed(2),
			Barcode:  orDash(prod.Barcode),
			Weight:   orDash(prod.Weight),
		})
	}
	return rows, nil
}

// AddProduct creates a product from the form unless its barcode is already
// stocked. A zero quantity defaults to one unit.
func (p *Pages) AddProduct(ctx context.Context, form AddProductForm) (AddProductOutcome, error) {
	form.Barcode = strings.TrimSpace(form.Barcode)
	if err := p.validate.StructPartial(form, "Barcode"); err != nil {
		return AddProductOutcome{}, validationError(err)
	}

	existing, err := p.ledger.FindByBarcode(ctx, form.Barcode)
	if err == nil {
		return AddProductOutcome{Existing: &existing}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return AddProductOutcome{}, err
	}

	form.Name = strings.TrimSpace(form.Name)
	if err := p.validate.Struct(form); err != nil {
		p.log.WithField("barcode", form.Barcode).Warnf("add product rejected: %v", err)
		return AddProductOutcome{}, validationError(err)
	}
	if form.Quantity == 0 {
		form.Quantity = 1
	}

	product, created, err := p.ledger.CreateForBarcode(ctx, domain.ProductDraft{
		Name:     form.Name,
		Quantity: form.Quantity,
		Price:    form.Price,
		Weight:   strings.TrimSpace(form.Weight),
		Barcode:  form.Barcode,
	})
	if err != nil {
		return AddProductOutcome{}, err
	}
	if !created {
		// stocked concurrently since the lookup above
		return AddProductOutcome{Existing: &product}, nil
	}
	return AddProductOutcome{Created: &product}, nil
}

// Restock adds units to an existing product.
func (p *Pages) Restock(ctx context.Context, productID string, add int) (domain.Product, error) {
	product, err := p.ledger.AddStock(ctx, productID, add)
	if err != nil {
		return domain.Product{}, err
	}

	p.log.WithFields(logrus.Fields{"product_id": productID, "added": add, "quantity": product.Quantity}).Info("product restocked")
	return product, nil
}

// UpdateProduct applies a partial edit after checking that stock and price
// stay non-negative.
func (p *Pages) UpdateProduct(ctx context.Context, productID string, patch ProductPatch) (domain.Product, error) {
	if err := p.validate.Struct(patch); err != nil {
		return domain.Product{}, validationError(err)
	}

	err := p.ledger.Update(ctx, productID, domain.ProductUpdate{
		Name:     patch.Name,
		Quantity: patch.Quantity,
		Price:    patch.Price,
		Weight:   patch.Weight,
		Barcode:  patch.Barcode,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return p.ledger.Get(ctx, productID)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "gt":
			msgs = append(msgs, field+" must be greater than "+fe.Param())
		case "gte":
			msgs = append(msgs, field+" must not be negative")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, ", "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
