package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/backoffice/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusUnauthorized, "invalid token"), http.StatusUnauthorized, "invalid token"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"inactive", domain.ErrInactiveAccount, http.StatusForbidden, "account is inactive"},
		{"product not found", fmt.Errorf("item 0: %w", domain.ErrProductNotFound), http.StatusNotFound, "product not found"},
		{"duplicate user", domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{"duplicate order", domain.ErrDuplicateOrder, http.StatusConflict, "order already placed"},
		{"insufficient stock", domain.ErrInsufficientStock, http.StatusBadRequest, "insufficient stock"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tt.msg {
				t.Fatalf("expected %q, got %q", tt.msg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationFields(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	err := &domain.ValidationError{
		Fields: []domain.FieldError{{Field: "totalAmount", Message: "order total must be greater than zero"}},
		Kind:   domain.ErrInvalidOrder,
	}
	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Error != "invalid order" || len(body.Fields) != 1 || body.Fields[0].Field != "totalAmount" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHTTPErrorHandler_LogsUnknownErrors(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/products/1", nil), rec)

	NewHTTPErrorHandler(zerolog.New(&logs))(errors.New("disk full"), c)

	out := logs.String()
	if !strings.Contains(out, "disk full") || !strings.Contains(out, `"method":"DELETE"`) {
		t.Fatalf("expected cause and method in log, got %s", out)
	}
	if strings.Contains(rec.Body.String(), "disk full") {
		t.Fatal("internal cause leaked to the client")
	}
}
