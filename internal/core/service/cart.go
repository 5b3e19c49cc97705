package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/smart-pos/internal/core/domain"
)

type ScanAction string

const (
	ScanAdded       ScanAction = "added"
	ScanIncremented ScanAction = "incremented"
)

type ScanResult struct {
	Action  ScanAction      `json:"action"`
	Product domain.Product  `json:"product"`
	Line    domain.CartLine `json:"line"`
}

// LineResult is the outcome of selling one cart line during checkout.
type LineResult struct {
	Index     int             `json:"index"`
	Line      domain.CartLine `json:"line"`
	OK        bool            `json:"ok"`
	Message   string          `json:"message"`
	Remaining int             `json:"remaining"`
	Err       error           `json:"-"`
}

// CheckoutError reports a checkout where at least one line could not be sold.
// Lines that did sell are already reflected in the ledger.
type CheckoutError struct {
	Lines []LineResult
}

func (e *CheckoutError) Error() string {
	failed := e.Failed()
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, r.Line.Name+": "+r.Message)
	}
	return fmt.Sprintf("%s: %d of %d lines not sold (%s)",
		ErrCheckoutFailed, len(failed), len(e.Lines), strings.Join(parts, "; "))
}

func (e *CheckoutError) Is(target error) bool {
	return target == ErrCheckoutFailed
}

func (e *CheckoutError) Failed() []LineResult {
	var failed []LineResult
	for _, r := range e.Lines {
		if !r.OK {
			failed = append(failed, r)
		}
	}
	return failed
}

// Cart collects scanned lines for one sell-page visit. Stock is only touched
// at checkout.
type Cart struct {
	ledger *Ledger
	log    *logrus.Logger

	// optional, set when the cart belongs to a Till
	session *SessionManager
	publish func(domain.Receipt)
	newID   func() string
	now     func() time.Time

	mu    sync.Mutex
	lines []domain.CartLine
}

func NewCart(ledger *Ledger, logger *logrus.Logger) *Cart {
	if logger == nil {
		logger = logrus.New()
	}
	return &Cart{
		ledger: ledger,
		log:    logger,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

func (c *Cart) Scan(ctx context.Context, barcode string) (ScanResult, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return ScanResult{}, fmt.Errorf("%w: barcode is required", ErrValidation)
	}

	product, err := c.ledger.FindByBarcode(ctx, barcode)
	if err != nil {
		return ScanResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == product.ID {
			c.lines[i].Quantity++
			return ScanResult{Action: ScanIncremented, Product: product, Line: c.lines[i]}, nil
		}
	}

	line := domain.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  1,
		Barcode:   product.Barcode,
	}
	c.lines = append(c.lines, line)
	return ScanResult{Action: ScanAdded, Product: product, Line: line}, nil
}

// SetLineQuantity removes the line when quantity drops below 1.
func (c *Cart) SetLineQuantity(index, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.lines) {
		return ErrLineIndex
	}
	if quantity < 1 {
		c.removeLine(index)
		return nil
	}
	c.lines[index].Quantity = quantity
	return nil
}

func (c *Cart) RemoveLine(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.lines) {
		return ErrLineIndex
	}
	c.removeLine(index)
	return nil
}

func (c *Cart) removeLine(index int) {
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]domain.CartLine{}, c.lines...)
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	return linesTotal(c.lines)
}

// Checkout sells every line through the ledger. When all lines sell the cart
// is cleared and a receipt is returned. Otherwise the cart is left as it was
// and a *CheckoutError describes every line; lines that sold before the
// failure are not rolled back.
func (c *Cart) Checkout(ctx context.Context) (*domain.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.lines) == 0 {
		return nil, ErrEmptyCart
	}

	results := make([]LineResult, 0, len(c.lines))
	failed := 0
	for i, line := range c.lines {
		res, err := c.ledger.Sell(ctx, line.ProductID, line.Quantity)
		r := LineResult{Index: i, Line: line}
		if err != nil {
			failed++
			r.Err = err
			r.Message = sellFailureReason(err)
		} else {
			r.OK = true
			r.Message = res.Message
			r.Remaining = res.Remaining
		}
		results = append(results, r)
	}

	if failed > 0 {
		c.log.WithFields(logrus.Fields{
			"lines":  len(c.lines),
			"failed": failed,
		}).Warn("checkout incomplete")
		return nil, &CheckoutError{Lines: results}
	}

	receipt := domain.Receipt{
		ID:        c.newID(),
		Lines:     append([]domain.CartLine{}, c.lines...),
		Total:     linesTotal(c.lines),
		ItemsSold: len(c.lines),
		IssuedAt:  c.now(),
	}
	if c.session != nil {
		receipt.Operator = c.session.operatorName(ctx)
	}
	c.lines = nil

	c.log.WithFields(logrus.Fields{
		"receipt_id": receipt.ID,
		"total":      receipt.Total.String(),
		"items":      receipt.ItemsSold,
	}).Info("checkout complete")

	if c.publish != nil {
		c.publish(receipt)
	}
	return &receipt, nil
}

func linesTotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func sellFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "Insufficient quantity"
	case errors.Is(err, ErrNotFound):
		return "Product not found"
	default:
		return err.Error()
	}
}
