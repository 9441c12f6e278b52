package service

import (
	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

func toProductDTO(p *domain.Product) ports.ProductDTO {
	return ports.ProductDTO{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		ImageURL: p.ImageURL,
	}
}

func toProductFields(in ports.ProductInput) domain.ProductFields {
	return domain.ProductFields{
		Name:     in.Name,
		Price:    in.Price,
		Stock:    in.Stock,
		ImageURL: in.ImageURL,
	}
}

// toOrderDTO resolves product name and image from the item's product; a
// missing product maps to id 0 and UnknownProductName.
func toOrderDTO(o *domain.Order) ports.OrderDTO {
	items := make([]ports.OrderItemDTO, len(o.Items))
	for i, it := range o.Items {
		dto := ports.OrderItemDTO{
			ProductName: domain.UnknownProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
		if it.Product != nil {
			dto.ProductID = it.ProductID
			dto.ProductName = it.Product.Name
			dto.ImageURL = it.Product.ImageURL
		}
		items[i] = dto
	}

	return ports.OrderDTO{
		ID:               o.ID,
		OrderDate:        o.OrderDate.UTC(),
		CustomerName:     o.CustomerName,
		DigitalSignature: o.DigitalSignature,
		TotalAmount:      o.TotalAmount,
		Items:            items,
	}
}
