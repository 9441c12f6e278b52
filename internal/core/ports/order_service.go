package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemInput is one requested order line.
type OrderItemInput struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// PlaceOrderInput is everything the caller supplies to place an order.
type PlaceOrderInput struct {
	CustomerName     string
	DigitalSignature string
	Items            []OrderItemInput
}

// OrderItemDTO carries product name and image resolved when the order is read.
type OrderItemDTO struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ImageURL    string          `json:"imageUrl"`
}

type OrderDTO struct {
	ID               int64           `json:"id"`
	OrderDate        time.Time       `json:"orderDate"`
	CustomerName     string          `json:"customerName"`
	DigitalSignature string          `json:"digitalSignature"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Items            []OrderItemDTO  `json:"items"`
}

type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*OrderDTO, error)
	ListOrders(ctx context.Context) ([]OrderDTO, error)
}

// SignatureGuard claims a digital signature so the same order cannot be
// placed twice. Claim reports false when the signature is already held.
type SignatureGuard interface {
	Claim(ctx context.Context, signature string) (bool, error)
	Release(ctx context.Context, signature string) error
}

// OrderPublisher receives committed orders for asynchronous follow-up work.
// Publish must not block on slow consumers.
type OrderPublisher interface {
	Publish(order OrderDTO)
}

// ReceiptSender delivers an order receipt to the customer.
type ReceiptSender interface {
	SendReceipt(ctx context.Context, order OrderDTO) error
}
