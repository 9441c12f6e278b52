package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/storefront/backoffice/internal/api"
	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
	"github.com/storefront/backoffice/internal/core/service"
	mongostore "github.com/storefront/backoffice/internal/infrastructure/db/mongo"
	pgstore "github.com/storefront/backoffice/internal/infrastructure/db/postgres"
	redisstore "github.com/storefront/backoffice/internal/infrastructure/db/redis"
	"github.com/storefront/backoffice/internal/infrastructure/http/handlers"
	"github.com/storefront/backoffice/internal/infrastructure/notify"
	"github.com/storefront/backoffice/internal/infrastructure/queue"
	"github.com/storefront/backoffice/internal/infrastructure/security"
	"github.com/storefront/backoffice/internal/pkg/config"
	"github.com/storefront/backoffice/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                       Back Office API
// @version                     1.0
// @description                 Catalog, order and authentication API for the store back office.
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
func main() {
	cfg := config.Load()

	decimal.MarshalJSONWithoutQuotes = true

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "backoffice-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		log := logger.Get()
		log.Error().Err(err).Msg("backoffice-api exited")
		os.Exit(1)
	}
}

// run serves until ctx is cancelled. It owns every resource it opens, so
// returning an error still closes them.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer st.close()

	checks := map[string]handlers.Checker{cfg.StoreDriver: st.ping}

	orderOpts := []service.OrderOption{
		service.WithStockPolicy(domain.ParseStockPolicy(cfg.Orders.StockPolicy)),
		service.WithPricePolicy(domain.ParsePricePolicy(cfg.Orders.PricePolicy)),
	}

	if cfg.Orders.SignatureDedup {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		defer rdb.Close()

		checks["redis"] = redisstore.Ping(rdb)
		orderOpts = append(orderOpts, service.WithSignatureGuard(redisstore.NewSignatureGuard(rdb, cfg.Orders.SignatureTTL)))
	}

	dispatcher := queue.NewReceiptDispatcher(cfg.Orders.ReceiptWorkers, notify.NewLogSender(logger.Component("receipts")), logger.Component("dispatcher"))
	// Close drains queued receipts, so workers outlive the signal context.
	dispatcher.Start(context.WithoutCancel(ctx))
	orderOpts = append(orderOpts, service.WithPublisher(dispatcher))

	signer := security.NewJWTSigner(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience)
	tokens := service.NewTokenIssuer(signer, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.AccessTTL)

	authSvc := service.NewAuthService(st.users, security.NewBcryptHasher(cfg.Auth.BcryptCost), tokens,
		logger.Component("auth"), service.WithAdminBypass(cfg.Auth.AdminBypass))
	catalogSvc := service.NewCatalogService(st.products, logger.Component("catalog"))
	orderSvc := service.NewOrderService(st.orders, st.products, logger.Component("orders"), orderOpts...)

	e := api.NewRouter(api.Dependencies{
		Log:     logger.Component("http"),
		Auth:    authSvc,
		Catalog: catalogSvc,
		Orders:  orderSvc,
		Signer:  signer,
		Checks:  checks,
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("driver", cfg.StoreDriver).
			Str("stock_policy", cfg.Orders.StockPolicy).
			Str("price_policy", cfg.Orders.PricePolicy).
			Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-serveErr:
		if ok {
			log.Error().Err(err).Msg("http server stopped unexpectedly")
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	dispatcher.Close()

	log.Info().Msg("bye")
	return runErr
}

// store bundles the repositories of one persistence driver.
type store struct {
	users    ports.UserRepository
	products ports.ProductRepository
	orders   ports.OrderRepository
	ping     handlers.Checker
	close    func()
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := pgstore.Connect(ctx, pgstore.Config{URL: cfg.Postgres.URL, MaxOpenConns: cfg.Postgres.MaxOpenConns})
		if err != nil {
			return nil, err
		}
		if err := pgstore.Migrate(ctx, db, logger.Component("migrations")); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &store{
			users:    pgstore.NewUserRepository(db),
			products: pgstore.NewProductRepository(db),
			orders:   pgstore.NewOrderRepository(db),
			ping:     pgstore.Ping(db),
			close: func() {
				if err := db.Close(); err != nil {
					log.Warn().Err(err).Msg("postgres close")
				}
			},
		}, nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		products := mongostore.NewProductRepository(db)
		return &store{
			users:    mongostore.NewUserRepository(db),
			products: products,
			orders:   mongostore.NewOrderRepository(db, products),
			ping:     mongostore.Ping(client),
			close: func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := client.Disconnect(disconnectCtx); err != nil {
					log.Warn().Err(err).Msg("mongo disconnect")
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
