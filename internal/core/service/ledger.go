package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/smart-pos/internal/core/domain"
	"github.com/rl1809/smart-pos/internal/port"
)

type SellResult struct {
	Message   string `json:"message"`
	Remaining int    `json:"remaining"`
}

// Ledger owns the products and sales collections. Every operation re-reads the
// whole collection from the store, mutates it in memory and writes it back, so
// writes made by other processes are visible on the next call.
type Ledger struct {
	store port.CollectionStore
	log   *logrus.Logger
	now   func() time.Time
	newID func() string

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

func NewLedger(store port.CollectionStore, logger *logrus.Logger) *Ledger {
	if logger == nil {
		logger = logrus.New()
	}
	return &Ledger{
		store: store,
		log:   logger,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (l *Ledger) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return loadCollection[domain.Product](ctx, l.store, port.CollectionProducts)
}

func (l *Ledger) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return loadCollection[domain.Sale](ctx, l.store, port.CollectionSales)
}

func (l *Ledger) Get(ctx context.Context, id string) (domain.Product, error) {
	products, err := l.ListProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	if i := indexOfProduct(products, id); i >= 0 {
		return products[i], nil
	}
	return domain.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
}

// FindByBarcode returns the first product whose barcode equals code exactly.
func (l *Ledger) FindByBarcode(ctx context.Context, code string) (domain.Product, error) {
	products, err := l.ListProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.Barcode == code {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("barcode %q: %w", code, ErrNotFound)
}

// Create stores the draft as-is; callers validate before creating.
func (l *Ledger) Create(ctx context.Context, draft domain.ProductDraft) (domain.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	products, err := l.ListProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	return l.create(ctx, products, draft)
}

// CreateForBarcode creates the draft unless a product already carries its
// barcode. In that case the existing product is returned with created false.
func (l *Ledger) CreateForBarcode(ctx context.Context, draft domain.ProductDraft) (domain.Product, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	products, err := l.ListProducts(ctx)
	if err != nil {
		return domain.Product{}, false, err
	}
	for _, p := range products {
		if p.Barcode == draft.Barcode {
			return p, false, nil
		}
	}

	product, err := l.create(ctx, products, draft)
	if err != nil {
		return domain.Product{}, false, err
	}
	return product, true, nil
}

func (l *Ledger) create(ctx context.Context, products []domain.Product, draft domain.ProductDraft) (domain.Product, error) {
	product := domain.Product{
		ID:        l.newID(),
		Name:      draft.Name,
		Quantity:  draft.Quantity,
		Price:     draft.Price,
		Weight:    draft.Weight,
		Barcode:   draft.Barcode,
		CreatedAt: l.now(),
	}
	products = append(products, product)

	if err := saveCollection(ctx, l.store, port.CollectionProducts, products); err != nil {
		return domain.Product{}, err
	}

	l.log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"barcode":    product.Barcode,
		"quantity":   product.Quantity,
	}).Info("product created")
	return product, nil
}

// Update merges the non-nil fields of upd into the product. Nothing is written
// when the product does not exist.
func (l *Ledger) Update(ctx context.Context, id string, upd domain.ProductUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.update(ctx, id, upd)
}

func (l *Ledger) update(ctx context.Context, id string, upd domain.ProductUpdate) error {
	products, err := l.ListProducts(ctx)
	if err != nil {
		return err
	}

	i := indexOfProduct(products, id)
	if i < 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	p := &products[i]
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Quantity != nil {
		p.Quantity = *upd.Quantity
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Weight != nil {
		p.Weight = *upd.Weight
	}
	if upd.Barcode != nil {
		p.Barcode = *upd.Barcode
	}

	return saveCollection(ctx, l.store, port.CollectionProducts, products)
}

// AddStock raises the quantity of a product by add within one locked
// read-modify-write cycle.
func (l *Ledger) AddStock(ctx context.Context, id string, add int) (domain.Product, error) {
	if add < 1 {
		return domain.Product{}, fmt.Errorf("%w: quantity to add must be at least 1", ErrValidation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	products, err := l.ListProducts(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	i := indexOfProduct(products, id)
	if i < 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if add > math.MaxInt-products[i].Quantity {
		return domain.Product{}, fmt.Errorf("%w: restock of %d would overflow quantity %d",
			ErrValidation, add, products[i].Quantity)
	}
	products[i].Quantity += add

	if err := saveCollection(ctx, l.store, port.CollectionProducts, products); err != nil {
		return domain.Product{}, err
	}
	return products[i], nil
}

// Delete is idempotent.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	products, err := l.ListProducts(ctx)
	if err != nil {
		return err
	}

	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}

	if err := saveCollection(ctx, l.store, port.CollectionProducts, kept); err != nil {
		return err
	}
	l.log.WithField("product_id", id).Info("product deleted")
	return nil
}

// Sell decrements stock and appends a sale record. It fails closed: when the
// product is missing or stock is short nothing is written.
func (l *Ledger) Sell(ctx context.Context, id string, quantity int) (SellResult, error) {
	if quantity < 1 {
		return SellResult{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	products, err := l.ListProducts(ctx)
	if err != nil {
		return SellResult{}, err
	}

	i := indexOfProduct(products, id)
	if i < 0 {
		return SellResult{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	product := products[i]
	if quantity > product.Quantity {
		l.log.WithFields(logrus.Fields{
			"product_id": id,
			"requested":  quantity,
			"available":  product.Quantity,
		}).Warn("sell rejected")
		return SellResult{}, fmt.Errorf("%w: %d of %s requested, %d available",
			ErrInsufficientStock, quantity, product.Name, product.Quantity)
	}

	remaining := product.Quantity - quantity
	sale := domain.Sale{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Price:       product.Price,
		Total:       product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Date:        l.now(),
	}

	sales, err := l.ListSales(ctx)
	if err != nil {
		return SellResult{}, err
	}
	if err := saveCollection(ctx, l.store, port.CollectionSales, append(sales, sale)); err != nil {
		return SellResult{}, err
	}
	if err := l.update(ctx, id, domain.ProductUpdate{Quantity: &remaining}); err != nil {
		return SellResult{}, err
	}

	l.log.WithFields(logrus.Fields{
		"product_id": id,
		"quantity":   quantity,
		"remaining":  remaining,
		"total":      sale.Total.String(),
	}).Info("product sold")

	return SellResult{
		Message:   fmt.Sprintf("Sold %d of %s", quantity, product.Name),
		Remaining: remaining,
	}, nil
}

func indexOfProduct(products []domain.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
