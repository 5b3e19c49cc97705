package port

import (
	"context"

	"github.com/rl1809/smart-pos/internal/core/domain"
)

type ReceiptPrinter interface {
	// Print renders a completed sale receipt
	Print(ctx context.Context, receipt domain.Receipt) error
}
