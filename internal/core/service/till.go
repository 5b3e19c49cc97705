package service

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/smart-pos/internal/core/domain"
)

// Till owns the cart of the current sell-page visit and the queue of receipts
// waiting to be printed.
type Till struct {
	ledger  *Ledger
	session *SessionManager
	log     *logrus.Logger

	mu       sync.Mutex
	cart     *Cart
	receipts chan domain.Receipt
	closed   bool
}

func NewTill(ledger *Ledger, session *SessionManager, logger *logrus.Logger, queueSize int) *Till {
	if logger == nil {
		logger = logrus.New()
	}
	return &Till{
		ledger:   ledger,
		session:  session,
		log:      logger,
		receipts: make(chan domain.Receipt, queueSize),
	}
}

// StartVisit discards the previous cart and opens an empty one.
func (t *Till) StartVisit() *Cart {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cart = t.newCart()
	return t.cart
}

// Cart returns the current cart, starting a visit if none is open.
func (t *Till) Cart() *Cart {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cart == nil {
		t.cart = t.newCart()
	}
	return t.cart
}

func (t *Till) newCart() *Cart {
	cart := NewCart(t.ledger, t.log)
	cart.session = t.session
	cart.publish = t.publish
	return cart
}

func (t *Till) Receipts() <-chan domain.Receipt {
	return t.receipts
}

// publish never blocks a checkout: a full queue drops the receipt.
func (t *Till) publish(receipt domain.Receipt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	select {
	case t.receipts <- receipt:
	default:
		t.log.WithField("receipt_id", receipt.ID).Warn("receipt queue full, receipt not printed")
	}
}

func (t *Till) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	close(t.receipts)
}
