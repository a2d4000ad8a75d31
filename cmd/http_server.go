package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/auth"
	authpg "github.com/mohamedahmedessam757/futurethinking-backend/internal/auth/postgres"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/booking"
	bookingpg "github.com/mohamedahmedessam757/futurethinking-backend/internal/booking/postgres"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/cache"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/catalog"
	catalogpg "github.com/mohamedahmedessam757/futurethinking-backend/internal/catalog/postgres"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/checkout"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/core/events"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/entitlement"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/gateway"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/metrics"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/notification"
	notifpg "github.com/mohamedahmedessam757/futurethinking-backend/internal/notification/postgres"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/storage"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction"
	txpg "github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction/postgres"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transport"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transport/rest"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/user"
	userpg "github.com/mohamedahmedessam757/futurethinking-backend/internal/user/postgres"
	"github.com/mohamedahmedessam757/futurethinking-backend/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Cache  *cache.RedisCache
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if deps.Cache != nil {
			if err := deps.Cache.Close(); err != nil {
				deps.Logger.Error("cache close error", "error", err)
			}
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over db connection: %w", err)
	}

	var redisCache *cache.RedisCache
	if config.Redis.Enabled() {
		redisCache, err = cache.New(config.Redis.Addr, config.Redis.Password, config.Redis.DB)
		if err != nil {
			// the catalog works without a cache, just slower
			log.Warn("redis unavailable, continuing without cache", "error", err)
			redisCache = nil
		}
	}

	metrics.Init()

	eventBus := events.NewEventBus(log)
	baseHandler := transport.NewBaseHandler(log)

	// repositories
	authRepo := authpg.NewRepository(gormDB)
	txRepo := txpg.NewTransactionRepository(gormDB)
	catalogRepo := catalogpg.NewCatalogRepository(gormDB)
	bookingRepo := bookingpg.NewBookingRepository(gormDB)
	notifRepo := notifpg.NewNotificationRepository(gormDB)
	userRepo := userpg.NewUserRepository(gormDB)

	// services
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost)
	rbac := auth.NewRBACAuthorization(&auth.DefaultPermissionChecker{}, log)

	txService := transaction.NewService(txRepo, log)
	notifService := notification.NewService(notifRepo, log)
	userService := user.NewService(userRepo, log)
	bookingService := booking.NewService(bookingRepo, log)

	var downloader catalog.Downloader
	if config.Storage.Enabled() {
		s3Store, err := storage.New(storage.Config{
			AccessKey: config.Storage.AccessKeyID,
			SecretKey: config.Storage.SecretAccessKey,
			Bucket:    config.Storage.Bucket,
			Region:    config.Storage.Region,
			Endpoint:  config.Storage.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		downloader = s3Store
	}

	var catalogCache catalog.Cache
	if redisCache != nil {
		catalogCache = redisCache
	}
	catalogService := catalog.NewService(catalogRepo, catalogCache, downloader, log)

	granter := entitlement.NewService(
		catalogRepo,
		catalogRepo,
		bookingRepo,
		userService,
		notifService,
		eventBus,
		log,
	)

	gatewayClient := gateway.NewClient(
		config.Gateway.APIURL,
		config.Gateway.SecretKey,
		config.Gateway.Currency,
		config.Gateway.RequestTimeout,
		log,
	)

	callbackURL := config.Server.BaseURL + "/api/v1/payments/callback"
	checkoutService := checkout.NewService(
		txService,
		granter,
		gatewayClient,
		catalogRepo,
		eventBus,
		config.Gateway.PublishableKey,
		callbackURL,
		log,
	)

	// async notification fan-out on payment events
	notification.NewEventHandler(notifService, log).RegisterEventHandlers(eventBus)

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService),
		RBAC:         rbac,
		User:         user.NewHandler(baseHandler, userService, log),
		Catalog:      catalog.NewHandler(baseHandler, catalogService, log),
		Checkout:     checkout.NewHandler(baseHandler, checkoutService, log),
		Webhook:      checkout.NewWebhookHandler(baseHandler, txService, granter, eventBus, log),
		ApplePay:     checkout.NewApplePayHandler(baseHandler, txService, granter, gatewayClient, eventBus, log),
		Transaction:  transaction.NewHandler(baseHandler, txService, granter, log),
		Booking:      booking.NewHandler(baseHandler, bookingService, log),
		Notification: notification.NewHandler(baseHandler, notifService, log),
	}

	router := chi.NewRouter()
	var pinger rest.Pinger
	if redisCache != nil {
		pinger = redisCache
	}
	rest.RegisterAllRoutes(router, db.DB, pinger, handlers, log)

	return &Dependencies{
		Config: config,
		DB:     db,
		Cache:  redisCache,
		Router: router,
		Logger: log,
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
