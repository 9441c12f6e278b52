package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

// OrderService places and lists orders.
type OrderService struct {
	orders      ports.OrderRepository
	products    ports.ProductRepository
	log         zerolog.Logger
	stockPolicy domain.StockPolicy
	pricePolicy domain.PricePolicy
	guard       ports.SignatureGuard
	publisher   ports.OrderPublisher
	now         func() time.Time
}

type OrderOption func(*OrderService)

// WithStockPolicy selects floor-at-zero (default) or rejection on shortfall.
func WithStockPolicy(p domain.StockPolicy) OrderOption {
	return func(s *OrderService) { s.stockPolicy = p }
}

// WithPricePolicy selects caller-supplied (default) or catalog unit prices.
func WithPricePolicy(p domain.PricePolicy) OrderOption {
	return func(s *OrderService) { s.pricePolicy = p }
}

// WithSignatureGuard rejects repeated orders carrying the same digital signature.
func WithSignatureGuard(g ports.SignatureGuard) OrderOption {
	return func(s *OrderService) { s.guard = g }
}

// WithPublisher hands every committed order to p.
func WithPublisher(p ports.OrderPublisher) OrderOption {
	return func(s *OrderService) { s.publisher = p }
}

func NewOrderService(orders ports.OrderRepository, products ports.ProductRepository, log zerolog.Logger, opts ...OrderOption) *OrderService {
	s := &OrderService{
		orders:      orders,
		products:    products,
		log:         log,
		stockPolicy: domain.StockPolicyFloor,
		pricePolicy: domain.PricePolicyClient,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder persists the order and decrements stock as one unit, then
// re-reads it so line items carry current product names and images.
// It is not idempotent unless a SignatureGuard is configured.
func (s *OrderService) PlaceOrder(ctx context.Context, in ports.PlaceOrderInput) (*ports.OrderDTO, error) {
	items, err := s.lineItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	order, err := domain.NewOrder(in.CustomerName, in.DigitalSignature, items, s.now())
	if err != nil {
		return nil, err
	}

	claimed, err := s.claimSignature(ctx, order.DigitalSignature)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, order, s.stockPolicy); err != nil {
		if claimed {
			s.releaseSignature(ctx, order.DigitalSignature)
		}
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		s.log.Error().Err(err).Str("customer", order.CustomerName).Msg("failed to place order")
		return nil, fmt.Errorf("place order: %w", err)
	}

	complete, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("place order: reload %d: %w", order.ID, err)
	}

	dto := toOrderDTO(complete)
	if s.publisher != nil {
		s.publisher.Publish(dto)
	}

	s.log.Info().
		Int64("order_id", dto.ID).
		Str("customer", dto.CustomerName).
		Str("total", dto.TotalAmount.StringFixed(2)).
		Int("items", len(dto.Items)).
		Msg("order placed")

	return &dto, nil
}

// ListOrders returns every order, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]ports.OrderDTO, error) {
	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})

	out := make([]ports.OrderDTO, len(orders))
	for i, o := range orders {
		out[i] = toOrderDTO(o)
	}
	return out, nil
}

// lineItems maps the requested lines, replacing unit prices with catalog
// prices under PricePolicyCatalog.
func (s *OrderService) lineItems(ctx context.Context, in []ports.OrderItemInput) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, len(in))
	for i, it := range in {
		items[i] = domain.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
		if s.pricePolicy != domain.PricePolicyCatalog {
			continue
		}
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			return nil, fmt.Errorf("place order: price lookup: %w", err)
		}
		items[i].UnitPrice = p.Price
	}
	return items, nil
}

// claimSignature reports whether this call now holds signature. A guard
// outage is logged and the order proceeds unguarded.
func (s *OrderService) claimSignature(ctx context.Context, signature string) (bool, error) {
	if s.guard == nil || signature == "" {
		return false, nil
	}
	ok, err := s.guard.Claim(ctx, signature)
	if err != nil {
		s.log.Warn().Err(err).Msg("signature dedup check failed, placing order anyway")
		return false, nil
	}
	if !ok {
		return false, domain.ErrDuplicateOrder
	}
	return true, nil
}

func (s *OrderService) releaseSignature(ctx context.Context, signature string) {
	if err := s.guard.Release(ctx, signature); err != nil {
		s.log.Warn().Err(err).Msg("failed to release signature claim")
	}
}
