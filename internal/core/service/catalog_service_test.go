package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

func widget() ports.ProductInput {
	return ports.ProductInput{Name: "Widget", Price: decimal.RequireFromString("9.99"), Stock: 5}
}

func TestCatalogService_Create_Success(t *testing.T) {
	svc := NewCatalogService(newStubProductRepo(), discardLogger)

	p, err := svc.Create(context.Background(), widget())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID <= 0 {
		t.Errorf("expected assigned id > 0, got %d", p.ID)
	}
	if !p.Price.Equal(decimal.RequireFromString("9.99")) || p.Stock != 5 {
		t.Errorf("unexpected product: %+v", p)
	}
}

func TestCatalogService_Create_EmptyName(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewCatalogService(repo, discardLogger)

	in := widget()
	in.Name = ""
	_, err := svc.Create(context.Background(), in)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || !ve.Has("name") {
		t.Fatalf("expected validation error on name, got %v", err)
	}
	if len(repo.products) != 0 {
		t.Fatal("invalid product must not be persisted")
	}
}

func TestCatalogService_List_NormalizesPaging(t *testing.T) {
	repo := newStubProductRepo()
	for i := 12; i >= 1; i-- {
		repo.seed(domain.Product{Name: fmt.Sprintf("Product %02d", i), Price: decimal.NewFromInt(1)})
	}
	svc := NewCatalogService(repo, discardLogger)

	page, err := svc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.PageNumber != 1 || page.PageSize != 10 {
		t.Fatalf("expected page 1 size 10, got %d/%d", page.PageNumber, page.PageSize)
	}
	if len(page.Data) != 10 || page.Data[0].Name != "Product 01" || page.Data[9].Name != "Product 10" {
		t.Fatalf("expected first ten by name, got %d items starting %q", len(page.Data), page.Data[0].Name)
	}
	if page.TotalRecords != 12 || page.TotalPages != 2 {
		t.Fatalf("expected 12 records in 2 pages, got %d/%d", page.TotalRecords, page.TotalPages)
	}
	if page.HasPreviousPage || !page.HasNextPage {
		t.Fatalf("unexpected navigation flags: prev=%v next=%v", page.HasPreviousPage, page.HasNextPage)
	}
}

func TestCatalogService_List_LastPage(t *testing.T) {
	repo := newStubProductRepo()
	for i := 0; i < 12; i++ {
		repo.seed(domain.Product{Name: fmt.Sprintf("P%02d", i), Price: decimal.NewFromInt(1)})
	}
	svc := NewCatalogService(repo, discardLogger)

	page, err := svc.List(context.Background(), 2, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.PageSize != 10 || len(page.Data) != 2 {
		t.Fatalf("expected 2 items on page 2 of size 10, got %d (size %d)", len(page.Data), page.PageSize)
	}
	if !page.HasPreviousPage || page.HasNextPage {
		t.Fatalf("unexpected navigation flags: prev=%v next=%v", page.HasPreviousPage, page.HasNextPage)
	}
}

func TestCatalogService_List_RepositoryError(t *testing.T) {
	repo := newStubProductRepo()
	repo.err = errors.New("boom")
	svc := NewCatalogService(repo, discardLogger)

	if _, err := svc.List(context.Background(), 1, 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestCatalogService_GetByID(t *testing.T) {
	repo := newStubProductRepo()
	seeded := repo.seed(domain.Product{Name: "Widget", Price: decimal.NewFromInt(2), Stock: 1, ImageURL: "w.png"})
	svc := NewCatalogService(repo, discardLogger)

	p, err := svc.GetByID(context.Background(), seeded.ID)
	if err != nil || p.ImageURL != "w.png" {
		t.Fatalf("unexpected result: %+v, %v", p, err)
	}

	if _, err := svc.GetByID(context.Background(), 999); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogService_Update(t *testing.T) {
	repo := newStubProductRepo()
	seeded := repo.seed(domain.Product{Name: "Widget", Price: decimal.NewFromInt(2), Stock: 1, ImageURL: "w.png"})
	svc := NewCatalogService(repo, discardLogger)

	got, err := svc.Update(context.Background(), seeded.ID, ports.ProductInput{Name: "Gadget", Price: decimal.NewFromInt(3), Stock: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Gadget" || got.Stock != 7 || got.ImageURL != "" {
		t.Fatalf("expected every field replaced, got %+v", got)
	}
	if repo.products[seeded.ID].Name != "Gadget" {
		t.Fatal("update not persisted")
	}
}

func TestCatalogService_Update_NotFound(t *testing.T) {
	svc := NewCatalogService(newStubProductRepo(), discardLogger)

	if _, err := svc.Update(context.Background(), 5, widget()); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogService_Update_InvalidLeavesStoredProduct(t *testing.T) {
	repo := newStubProductRepo()
	seeded := repo.seed(domain.Product{Name: "Widget", Price: decimal.NewFromInt(2), Stock: 1})
	svc := NewCatalogService(repo, discardLogger)

	_, err := svc.Update(context.Background(), seeded.ID, ports.ProductInput{Name: "Widget", Price: decimal.NewFromInt(2), Stock: -1})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if repo.products[seeded.ID].Stock != 1 {
		t.Fatal("stored product changed by a rejected update")
	}
}

func TestCatalogService_Delete(t *testing.T) {
	repo := newStubProductRepo()
	seeded := repo.seed(domain.Product{Name: "Widget", Price: decimal.NewFromInt(2)})
	svc := NewCatalogService(repo, discardLogger)

	ok, err := svc.Delete(context.Background(), seeded.ID)
	if err != nil || !ok {
		t.Fatalf("expected deletion, got %v, %v", ok, err)
	}

	ok, err = svc.Delete(context.Background(), seeded.ID)
	if err != nil || ok {
		t.Fatalf("expected false without error for a missing id, got %v, %v", ok, err)
	}
}
