package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/storefront/backoffice/internal/core/ports"
)

// LogSender writes receipts to the structured log. It stands in for a mail
// or webhook sender.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "receipts").Logger()}
}

func (s *LogSender) SendReceipt(ctx context.Context, order ports.OrderDTO) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lines := zerolog.Arr()
	for _, it := range order.Items {
		lines.Dict(zerolog.Dict().
			Str("product", it.ProductName).
			Int("quantity", it.Quantity).
			Str("unit_price", it.UnitPrice.StringFixed(2)))
	}

	s.log.Info().
		Int64("order_id", order.ID).
		Str("customer", order.CustomerName).
		Time("order_date", order.OrderDate).
		Str("total", order.TotalAmount.StringFixed(2)).
		Array("items", lines).
		Msg("order receipt")
	return nil
}
