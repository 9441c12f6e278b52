package handler

import "github.com/shopspring/decimal"

// --- Request types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email"    validate:"required"`
}

// productRequest carries every editable field; create and update share it.
type productRequest struct {
	Name     string          `json:"name"     validate:"required,max=150"`
	Price    decimal.Decimal `json:"price"    swaggertype:"number"`
	Stock    int             `json:"stock"    validate:"gte=0"`
	ImageURL string          `json:"imageUrl" validate:"omitempty,max=2048"`
}

type orderItemRequest struct {
	ProductID int64           `json:"productId" validate:"gt=0"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" swaggertype:"number"`
}

type createOrderRequest struct {
	CustomerName     string             `json:"customerName"`
	DigitalSignature string             `json:"digitalSignature"`
	Items            []orderItemRequest `json:"items" validate:"dive"`
}

// --- Response types ---

// errorResponse documents the error envelope rendered by the HTTP error handler.
type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
