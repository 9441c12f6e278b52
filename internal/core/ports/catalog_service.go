package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductDTO is the catalog view of a product.
type ProductDTO struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"imageUrl"`
}

// ProductInput carries the full set of editable product fields.
type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Stock    int
	ImageURL string
}

// PagedResponse is one page of T plus paging metadata.
type PagedResponse[T any] struct {
	Data            []T   `json:"data"`
	PageNumber      int   `json:"pageNumber"`
	PageSize        int   `json:"pageSize"`
	TotalRecords    int64 `json:"totalRecords"`
	TotalPages      int   `json:"totalPages"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

type CatalogService interface {
	List(ctx context.Context, pageNumber, pageSize int) (*PagedResponse[ProductDTO], error)
	GetByID(ctx context.Context, id int64) (*ProductDTO, error)
	Create(ctx context.Context, in ProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id int64, in ProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
