package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxProductNameLength is counted in characters, not bytes.
const MaxProductNameLength = 150

// Product is a catalog item.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Stock    int
	ImageURL string
}

// ProductFields is the full set of caller-editable product attributes.
// Create and update both take all of them; there is no partial update.
type ProductFields struct {
	Name     string
	Price    decimal.Decimal
	Stock    int
	ImageURL string
}

// Validate checks every field independently and reports all failures at once.
func (f ProductFields) Validate() error {
	var fe fieldErrors
	switch {
	case strings.TrimSpace(f.Name) == "":
		fe.add("name", "name is required")
	case utf8.RuneCountInString(f.Name) > MaxProductNameLength:
		fe.add("name", "name must not exceed 150 characters")
	}
	if !f.Price.IsPositive() {
		fe.add("price", "price must be greater than zero")
	} else if msg := validAmount(f.Price); msg != "" {
		fe.add("price", "price "+msg)
	}
	if f.Stock < 0 {
		fe.add("stock", "stock must not be negative")
	}
	return fe.err(nil)
}

// NewProduct returns a validated, not yet persisted product.
func NewProduct(f ProductFields) (*Product, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &Product{
		Name:     f.Name,
		Price:    f.Price,
		Stock:    f.Stock,
		ImageURL: f.ImageURL,
	}, nil
}

// WithFields returns a copy of p with every editable field replaced.
// p itself is never modified, so a failed validation leaves no trace.
func (p Product) WithFields(f ProductFields) (Product, error) {
	if err := f.Validate(); err != nil {
		return Product{}, err
	}
	p.Name = f.Name
	p.Price = f.Price
	p.Stock = f.Stock
	p.ImageURL = f.ImageURL
	return p, nil
}
