package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/storefront/backoffice/internal/core/ports"
)

func TestLogSender_SendReceipt(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(zerolog.New(&buf))

	err := s.SendReceipt(context.Background(), ports.OrderDTO{
		ID:           7,
		CustomerName: "Ana",
		TotalAmount:  decimal.RequireFromString("6"),
		Items:        []ports.OrderItemDTO{{ProductName: "p1", Quantity: 3, UnitPrice: decimal.NewFromInt(2)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"order_id":7`, `"total":"6.00"`, `"product":"p1"`, `"component":"receipts"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestLogSender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewLogSender(zerolog.Nop()).SendReceipt(ctx, ports.OrderDTO{ID: 1}); err == nil {
		t.Fatal("expected context error")
	}
}
