package printer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/smart-pos/internal/core/domain"
)

// LogPrinter prints receipts as structured log entries.
type LogPrinter struct {
	log *logrus.Logger
}

func NewLogPrinter(logger *logrus.Logger) *LogPrinter {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogPrinter{log: logger}
}

func (p *LogPrinter) Print(ctx context.Context, receipt domain.Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := p.log.WithFields(logrus.Fields{
		"receipt_id": receipt.ID,
		"operator":   receipt.Operator,
	})
	for _, line := range receipt.Lines {
		entry.WithFields(logrus.Fields{
			"product":  line.Name,
			"quantity": line.Quantity,
			"price":    line.Price.StringFixed(2),
			"subtotal": line.Subtotal().StringFixed(2),
		}).Info("receipt line")
	}
	entry.WithFields(logrus.Fields{
		"total":      receipt.Total.StringFixed(2),
		"items_sold": receipt.ItemsSold,
		"issued_at":  receipt.IssuedAt,
	}).Info("receipt printed")
	return nil
}
