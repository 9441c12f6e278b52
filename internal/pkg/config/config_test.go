package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadContext_Defaults(t *testing.T) {
	cfg, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.StoreDriver != DriverMongo || !cfg.IsDevelopment() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.AccessTTL != 60*time.Minute || !cfg.Auth.AdminBypass {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Auth.Issuer != "backoffice-api" || cfg.Auth.Audience != "backoffice-clients" {
		t.Fatalf("unexpected issuer/audience: %+v", cfg.Auth)
	}
	if cfg.Orders.StockPolicy != "floor" || cfg.Orders.PricePolicy != "client" || cfg.Orders.SignatureDedup {
		t.Fatalf("unexpected order defaults: %+v", cfg.Orders)
	}
	if cfg.Orders.SignatureTTL != 24*time.Hour || cfg.Orders.ReceiptWorkers != 4 {
		t.Fatalf("unexpected order defaults: %+v", cfg.Orders)
	}
}

func TestLoadContext_Overrides(t *testing.T) {
	cfg, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         "s3cret",
		"STORE_DRIVER":       "Postgres",
		"AUTH_ADMIN_BYPASS":  "false",
		"ORDER_STOCK_POLICY": "reject",
		"JWT_ACCESS_TTL":     "15m",
		"ENV":                "production",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StoreDriver != DriverPostgres || cfg.Auth.AdminBypass || cfg.Orders.StockPolicy != "reject" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Auth.AccessTTL != 15*time.Minute || cfg.IsDevelopment() {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadContext_Errors(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret": {},
		"unknown driver": {"JWT_SECRET": "s", "STORE_DRIVER": "sqlite"},
		"bad ttl":        {"JWT_SECRET": "s", "JWT_ACCESS_TTL": "soon"},
		"zero ttl":       {"JWT_SECRET": "s", "JWT_ACCESS_TTL": "0s"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadContext(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
