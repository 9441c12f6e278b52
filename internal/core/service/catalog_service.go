package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

// CatalogService implements product CRUD and paging.
type CatalogService struct {
	repo ports.ProductRepository
	log  zerolog.Logger
}

func NewCatalogService(repo ports.ProductRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log}
}

// List returns one page of products ordered by name. Out-of-range paging
// values are normalized rather than rejected.
func (s *CatalogService) List(ctx context.Context, pageNumber, pageSize int) (*ports.PagedResponse[ports.ProductDTO], error) {
	page := domain.PageRequest{PageNumber: pageNumber, PageSize: pageSize}.Normalize()

	products, total, err := s.repo.GetPaged(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	data := make([]ports.ProductDTO, len(products))
	for i, p := range products {
		data[i] = toProductDTO(p)
	}

	totalPages := domain.TotalPages(total, page.PageSize)
	return &ports.PagedResponse[ports.ProductDTO]{
		Data:            data,
		PageNumber:      page.PageNumber,
		PageSize:        page.PageSize,
		TotalRecords:    total,
		TotalPages:      totalPages,
		HasPreviousPage: page.PageNumber > 1,
		HasNextPage:     page.PageNumber < totalPages,
	}, nil
}

func (s *CatalogService) GetByID(ctx context.Context, id int64) (*ports.ProductDTO, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	dto := toProductDTO(p)
	return &dto, nil
}

func (s *CatalogService) Create(ctx context.Context, in ports.ProductInput) (*ports.ProductDTO, error) {
	p, err := domain.NewProduct(toProductFields(in))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error().Err(err).Str("name", p.Name).Msg("failed to create product")
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.Info().Int64("product_id", p.ID).Str("name", p.Name).Msg("product created")
	dto := toProductDTO(p)
	return &dto, nil
}

// Update replaces every editable field of product id after re-validating them.
func (s *CatalogService) Update(ctx context.Context, id int64, in ports.ProductInput) (*ports.ProductDTO, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	updated, err := current.WithFields(toProductFields(in))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		s.log.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	s.log.Info().Int64("product_id", id).Msg("product updated")
	dto := toProductDTO(&updated)
	return &dto, nil
}

// Delete reports false when id does not exist.
func (s *CatalogService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return false, fmt.Errorf("delete product %d: %w", id, err)
	}
	if deleted {
		s.log.Info().Int64("product_id", id).Msg("product deleted")
	}
	return deleted, nil
}
