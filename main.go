package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appcart "github.com/chronomart/storefront/internal/application/cart"
	appcatalog "github.com/chronomart/storefront/internal/application/catalog"
	appcheckout "github.com/chronomart/storefront/internal/application/checkout"
	appidentity "github.com/chronomart/storefront/internal/application/identity"
	appsettlement "github.com/chronomart/storefront/internal/application/settlement"
	domaincart "github.com/chronomart/storefront/internal/domain/cart"
	domaincatalog "github.com/chronomart/storefront/internal/domain/catalog"
	domainidentity "github.com/chronomart/storefront/internal/domain/identity"
	domainoutbox "github.com/chronomart/storefront/internal/domain/outbox"
	domainpayment "github.com/chronomart/storefront/internal/domain/payment"
	"github.com/chronomart/storefront/internal/infrastructure/auth"
	"github.com/chronomart/storefront/internal/infrastructure/config"
	"github.com/chronomart/storefront/internal/infrastructure/memory"
	obsprovider "github.com/chronomart/storefront/internal/infrastructure/observability"
	"github.com/chronomart/storefront/internal/infrastructure/observability/prometrics"
	"github.com/chronomart/storefront/internal/infrastructure/observability/zaplogger"
	"github.com/chronomart/storefront/internal/infrastructure/outbox"
	paymentclient "github.com/chronomart/storefront/internal/infrastructure/payment"
	redisstore "github.com/chronomart/storefront/internal/infrastructure/redis"
	"github.com/chronomart/storefront/internal/observability"
	httptransport "github.com/chronomart/storefront/internal/presentation/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := zaplogger.New(
		observability.F("service", cfg.App.Name),
		observability.F("env", cfg.App.Env),
	)
	metrics := prometrics.Register(cfg.App.Name, prometheus.DefaultRegisterer)
	tel := obsprovider.New(obsprovider.Tracer(cfg.App.Name), logger, metrics)

	taxRate, err := cfg.Tax.TaxRate()
	if err != nil {
		logger.Error("config_invalid", observability.F("error", err.Error()))
		os.Exit(1)
	}

	// Storage: Redis when configured, in-memory otherwise.
	var (
		cartRepo  domaincart.Repository
		processed appsettlement.IdempotencyStore
	)
	if cfg.Redis.Addr != "" {
		client, err := redisstore.NewClient(redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Error("redis_connect_failed", observability.F("error", err.Error()))
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()
		cartRepo = redisstore.NewCartRepository(client)
		processed = redisstore.NewIdempotencyStore(client)
	} else {
		cartRepo = memory.NewCartRepository()
		processed = memory.NewIdempotencyStore()
	}

	catalogRepo := memory.NewCatalogRepository(seedProducts()...)
	userRepo := memory.NewUserRepository(seedUsers()...)

	var gateway domainpayment.SessionCreator
	if cfg.Payment.BaseURL != "" {
		gateway, err = paymentclient.NewClient(paymentclient.Config{
			BaseURL:   cfg.Payment.BaseURL,
			APIKey:    cfg.Payment.APIKey,
			ReturnURL: cfg.Payment.ReturnURL,
			Timeout:   cfg.Payment.Timeout,
		})
		if err != nil {
			logger.Error("payment_client_failed", observability.F("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Warn("payment_provider_unconfigured")
		gateway = unconfiguredGateway{}
	}

	bus := outbox.NewBus(logger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	bus.Subscribe(domainpayment.SettlementCompletedEvent{}.EventName(), func(ctx context.Context, e domainoutbox.Event) error {
		if ev, ok := e.(domainpayment.SettlementCompletedEvent); ok {
			logger.Info("order_settled",
				observability.F("session_id", ev.CartSessionID),
				observability.F("reference", appsettlement.Reference(ev.PaymentSessionID)),
			)
		}
		return nil
	})

	catalogService := appcatalog.NewService(catalogRepo)
	cartService := appcart.NewService(cartRepo, taxRate, tel)
	cartService.Subscribe(func(e domaincart.ChangedEvent) {
		logger.Debug("cart_badge_update",
			observability.F("session_id", e.SessionID),
			observability.F("item_count", e.ItemCount),
		)
	})

	gate := appidentity.NewGate(userRepo, tel)
	adminService := appidentity.NewAdmin(userRepo, gate, tel)
	checkoutUseCase := appcheckout.NewUseCase(cartService, gateway, gate, cfg.Payment.Timeout, tel)
	settlementService := appsettlement.NewService(cartService, processed, bus, cfg.Settlement.GuardTTL, tel)

	tokens := auth.NewTokenParser(cfg.JWT.Secret, cfg.JWT.Issuer)
	handler := httptransport.NewHandler(catalogService, cartService, checkoutUseCase, settlementService, adminService, tokens)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", httptransport.ObservabilityMiddleware(tel)(handler.Router()))

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http_server_start", observability.F("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", observability.F("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", observability.F("error", err.Error()))
	} else {
		logger.Info("http_server_stopped")
	}
}

// unconfiguredGateway fails checkout loudly instead of pretending a provider
// exists. Lets the rest of the storefront run without payment credentials.
type unconfiguredGateway struct{}

func (unconfiguredGateway) CreateSession(context.Context, domainpayment.SessionRequest) (*domainpayment.Session, error) {
	return nil, errors.New("payment provider not configured")
}

func seedProducts() []domaincatalog.Product {
	return []domaincatalog.Product{
		{ID: "wt-1001", Name: "Meridian Classic Chronograph", Description: "Hand-wound chronograph with a domed sapphire crystal.", PriceCents: 250000, CategoryID: "luxury", IsFeatured: true, InStock: true},
		{ID: "wt-1002", Name: "Harbor Field Watch", Description: "38mm field watch on a leather strap.", PriceCents: 15000, CategoryID: "casual", IsFeatured: true, InStock: true},
		{ID: "wt-1003", Name: "Atlas GMT", Description: "Dual-time bezel for travelers.", PriceCents: 84500, CategoryID: "sport", InStock: true},
		{ID: "wt-1004", Name: "Lumen Diver 300", Description: "300m dive watch with lumed markers.", PriceCents: 62000, CategoryID: "sport", IsFeatured: true, InStock: true},
		{ID: "wt-1005", Name: "Vesper Dress Watch", Description: "Slim two-hand dress watch.", PriceCents: 39900, CategoryID: "luxury", InStock: true},
	}
}

func seedUsers() []domainidentity.User {
	users := []domainidentity.User{}
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		users = append(users, domainidentity.User{
			ID:    "admin",
			Email: email,
			Role:  domainidentity.RoleAdmin,
		})
	}
	return users
}
