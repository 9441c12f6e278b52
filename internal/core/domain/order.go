package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownProductName is shown for line items whose product no longer exists.
const UnknownProductName = "Unknown product"

// OrderItem is one line of an order. ProductID is a weak reference: the
// product may be deleted later without touching the order.
type OrderItem struct {
	ID        int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal

	// Product is resolved at read time and is nil when the product is gone.
	Product *Product
}

// Subtotal is Quantity × UnitPrice.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a placed transaction. It is created once and never mutated.
type Order struct {
	ID               int64
	OrderDate        time.Time
	CustomerName     string
	DigitalSignature string
	TotalAmount      decimal.Decimal
	Items            []OrderItem
}

// OrderTotal sums Quantity × UnitPrice over items.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// NewOrder builds an order dated now with its total computed from items.
// A non-positive total, a non-positive line quantity or an amount that cannot
// be stored in cents is an invalid order.
func NewOrder(customerName, digitalSignature string, items []OrderItem, now time.Time) (*Order, error) {
	total := OrderTotal(items)

	var fe fieldErrors
	if !total.IsPositive() {
		fe.add("totalAmount", "order total must be greater than zero")
	} else if msg := validAmount(total); msg != "" {
		fe.add("totalAmount", "order total "+msg)
	}
	for i, it := range items {
		if it.Quantity <= 0 {
			fe.add(fmt.Sprintf("items[%d].quantity", i), "quantity must be greater than zero")
		}
		if msg := validAmount(it.UnitPrice); msg != "" {
			fe.add(fmt.Sprintf("items[%d].unitPrice", i), "unit price "+msg)
		}
	}
	if err := fe.err(ErrInvalidOrder); err != nil {
		return nil, err
	}

	lines := make([]OrderItem, len(items))
	copy(lines, items)

	return &Order{
		OrderDate:        now.UTC(),
		CustomerName:     strings.TrimSpace(customerName),
		DigitalSignature: digitalSignature,
		TotalAmount:      total,
		Items:            lines,
	}, nil
}

// StockDemand is the total quantity an order takes from one product.
type StockDemand struct {
	ProductID int64
	Quantity  int
}

// StockDemands sums line quantities per product, ordered by product id so
// concurrent orders lock product rows in the same sequence.
func (o *Order) StockDemands() []StockDemand {
	byProduct := make(map[int64]int, len(o.Items))
	for _, it := range o.Items {
		byProduct[it.ProductID] += it.Quantity
	}
	out := make([]StockDemand, 0, len(byProduct))
	for id, qty := range byProduct {
		out = append(out, StockDemand{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// StockPolicy decides what happens when an order asks for more units than
// a product has in stock.
type StockPolicy string

const (
	// StockPolicyFloor clamps the remaining stock at zero and accepts the order.
	StockPolicyFloor StockPolicy = "floor"
	// StockPolicyReject fails the whole order with ErrInsufficientStock.
	StockPolicyReject StockPolicy = "reject"
)

// ParseStockPolicy returns StockPolicyFloor for anything it does not recognise.
func ParseStockPolicy(s string) StockPolicy {
	if StockPolicy(strings.ToLower(strings.TrimSpace(s))) == StockPolicyReject {
		return StockPolicyReject
	}
	return StockPolicyFloor
}

// Decrement applies the policy to one product's stock.
func (p StockPolicy) Decrement(stock, quantity int) (int, error) {
	remaining := stock - quantity
	if remaining >= 0 {
		return remaining, nil
	}
	if p == StockPolicyReject {
		return stock, ErrInsufficientStock
	}
	return 0, nil
}

// PricePolicy decides where an order line's unit price comes from.
type PricePolicy string

const (
	// PricePolicyClient trusts the unit price sent by the caller.
	PricePolicyClient PricePolicy = "client"
	// PricePolicyCatalog replaces it with the product's current price.
	PricePolicyCatalog PricePolicy = "catalog"
)

// ParsePricePolicy returns PricePolicyClient for anything it does not recognise.
func ParsePricePolicy(s string) PricePolicy {
	if PricePolicy(strings.ToLower(strings.TrimSpace(s))) == PricePolicyCatalog {
		return PricePolicyCatalog
	}
	return PricePolicyClient
}
