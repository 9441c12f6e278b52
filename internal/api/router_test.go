package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
	"github.com/storefront/backoffice/internal/infrastructure/http/handlers"
	"github.com/storefront/backoffice/internal/infrastructure/security"
)

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, username, password string) (*ports.AuthResponse, error) {
	if username == "alice" && password == "secret" {
		return &ports.AuthResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 60, TokenType: "Bearer"}, nil
	}
	return nil, domain.ErrInvalidCredentials
}

func (fakeAuth) Register(context.Context, string, string, string) (*ports.AuthResponse, error) {
	return nil, domain.ErrUserExists
}

type fakeCatalog struct{}

func (fakeCatalog) List(_ context.Context, pn, ps int) (*ports.PagedResponse[ports.ProductDTO], error) {
	return &ports.PagedResponse[ports.ProductDTO]{
		Data:       []ports.ProductDTO{{ID: 1, Name: "Widget", Price: decimal.RequireFromString("9.99"), Stock: 5}},
		PageNumber: 1, PageSize: 10, TotalRecords: 1, TotalPages: 1,
	}, nil
}

func (fakeCatalog) GetByID(_ context.Context, id int64) (*ports.ProductDTO, error) {
	return nil, domain.ErrProductNotFound
}

func (fakeCatalog) Create(_ context.Context, in ports.ProductInput) (*ports.ProductDTO, error) {
	return nil, errors.New("database unavailable")
}

func (fakeCatalog) Update(context.Context, int64, ports.ProductInput) (*ports.ProductDTO, error) {
	return nil, domain.ErrProductNotFound
}

func (fakeCatalog) Delete(context.Context, int64) (bool, error) { return false, nil }

type fakeOrders struct{}

func (fakeOrders) PlaceOrder(_ context.Context, in ports.PlaceOrderInput) (*ports.OrderDTO, error) {
	if len(in.Items) == 0 {
		return nil, &domain.ValidationError{
			Fields: []domain.FieldError{{Field: "totalAmount", Message: "order total must be greater than zero"}},
			Kind:   domain.ErrInvalidOrder,
		}
	}
	return &ports.OrderDTO{ID: 1, CustomerName: in.CustomerName, TotalAmount: decimal.NewFromInt(6)}, nil
}

func (fakeOrders) ListOrders(context.Context) ([]ports.OrderDTO, error) { return []ports.OrderDTO{}, nil }

const (
	testIssuer   = "backoffice-api"
	testAudience = "backoffice-clients"
)

func newTestRouter(t *testing.T) (*echo.Echo, string) {
	t.Helper()
	signer := security.NewJWTSigner("secret", testIssuer, testAudience)
	now := time.Now()
	token, err := signer.Sign(ports.TokenClaims{
		Subject: "1", Name: "alice", Issuer: testIssuer, Audience: testAudience,
		IssuedAt: now, ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	e := NewRouter(Dependencies{
		Log:      zerolog.Nop(),
		Auth:     fakeAuth{},
		Catalog:  fakeCatalog{},
		Orders:   fakeOrders{},
		Signer:   signer,
		Checks:   map[string]handlers.Checker{"store": func(context.Context) error { return nil }},
		Registry: prometheus.NewRegistry(),
	})
	return e, token
}

func do(e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Routes(t *testing.T) {
	e, token := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		token  string
		body   string
		code   int
	}{
		{"liveness", http.MethodGet, "/health", "", "", http.StatusOK},
		{"readiness", http.MethodGet, "/health/ready", "", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"login", http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"secret"}`, http.StatusOK},
		{"login rejected", http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"nope"}`, http.StatusUnauthorized},
		{"register duplicate", http.MethodPost, "/api/auth/register", "", `{"username":"a","password":"b","email":"a@b"}`, http.StatusConflict},
		{"products need token", http.MethodGet, "/api/products", "", "", http.StatusUnauthorized},
		{"products with token", http.MethodGet, "/api/products", token, "", http.StatusOK},
		{"product missing", http.MethodGet, "/api/products/9", token, "", http.StatusNotFound},
		{"product update missing", http.MethodPut, "/api/products/9", token, `{"name":"x","price":1,"stock":1}`, http.StatusNotFound},
		{"product delete missing", http.MethodDelete, "/api/products/9", token, "", http.StatusNotFound},
		{"product create failure", http.MethodPost, "/api/products", token, `{"name":"x","price":1,"stock":1}`, http.StatusInternalServerError},
		{"orders need token", http.MethodGet, "/api/orders", "", "", http.StatusUnauthorized},
		{"orders list", http.MethodGet, "/api/orders", token, "", http.StatusOK},
		{"order placed", http.MethodPost, "/api/orders", token, `{"items":[{"productId":1,"quantity":3,"unitPrice":2}]}`, http.StatusCreated},
		{"empty order", http.MethodPost, "/api/orders", token, `{"items":[]}`, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/nope", "", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.target, tt.token, tt.body)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_DecimalsRenderAsNumbers(t *testing.T) {
	decimal.MarshalJSONWithoutQuotes = true
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = false })

	e, token := newTestRouter(t)
	rec := do(e, http.MethodGet, "/api/products", token, "")

	var body struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if price, ok := body.Data[0]["price"].(float64); !ok || price != 9.99 {
		t.Fatalf("expected numeric price, got %#v", body.Data[0]["price"])
	}
}

func TestRouter_OrderCustomerDefaultsToUsername(t *testing.T) {
	e, token := newTestRouter(t)
	rec := do(e, http.MethodPost, "/api/orders", token, `{"items":[{"productId":1,"quantity":1,"unitPrice":6}]}`)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["customerName"] != "alice" {
		t.Fatalf("expected customer alice, got %v", body["customerName"])
	}
}
