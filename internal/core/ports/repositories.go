package ports

import (
	"context"

	"github.com/storefront/backoffice/internal/core/domain"
)

// UserRepository persists back office users. Lookups of a missing user
// return domain.ErrUserNotFound; Create returns domain.ErrUserExists when the
// username or email is already taken.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// ProductRepository persists catalog products. GetByID returns
// domain.ErrProductNotFound for a missing id.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetAll(ctx context.Context) ([]*domain.Product, error)
	// GetPaged returns one page ordered by name ascending plus the total count.
	GetPaged(ctx context.Context, page domain.PageRequest) ([]*domain.Product, int64, error)
	// Create assigns p.ID.
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	// Delete reports false, not an error, when id does not exist.
	Delete(ctx context.Context, id int64) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// OrderRepository persists orders. Reads expand every item with its product
// (nil when the product no longer exists).
type OrderRepository interface {
	// Create stores the order and its items and decrements each referenced
	// product's stock according to policy, all in one atomic unit. Items whose
	// product does not exist are stored without a stock change. With
	// domain.StockPolicyReject a shortfall fails the whole unit with
	// domain.ErrInsufficientStock. Create assigns order.ID and item IDs.
	Create(ctx context.Context, order *domain.Order, policy domain.StockPolicy) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// GetAll returns every order, newest first.
	GetAll(ctx context.Context) ([]*domain.Order, error)
}
