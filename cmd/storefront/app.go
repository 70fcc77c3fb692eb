package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/cache"
	"github.com/agamariel/storefront/internal/config"
	"github.com/agamariel/storefront/internal/courier"
	"github.com/agamariel/storefront/internal/handlers"
	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/migrations"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/notify"
	"github.com/agamariel/storefront/internal/rabbitmq"
	"github.com/agamariel/storefront/internal/services"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/agamariel/storefront/internal/tracing"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const serviceName = "storefront"

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg      *config.Config
	dbPool   *pgxpool.Pool
	echo     *echo.Echo
	metrics  *metrics.Registry
	tracing  *tracing.Controller
	rabbit   *rabbitmq.Client
	notifier *notify.Notifier
	janitor  *cache.Janitor

	// Handlers
	orderHandler  *handlers.OrderHandler
	riskHandler   *handlers.RiskHandler
	healthHandler *handlers.HealthHandler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		cfg:     cfg,
		metrics: metrics.NewRegistry(),
	}

	tc, err := tracing.Init(cfg.JaegerEndpoint, serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.tracing = tc

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initDependencies(); err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase инициализирует подключение к базе данных и выполняет миграции.
func (app *App) initDatabase(ctx context.Context) error {
	if app.cfg.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}

	// Применение миграций
	log.Println("Running database migrations...")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(ctx, sqlDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Migrations completed successfully")

	// Подключение к базе данных через pgxpool
	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	log.Println("Successfully connected to database")

	return nil
}

// initDependencies инициализирует все зависимости приложения (storage, services, handlers).
func (app *App) initDependencies() error {
	// Storage layer
	orderStorage := storage.NewPostgresOrderStorage(app.dbPool)
	productStorage := storage.NewPostgresProductStorage(app.dbPool)
	settingsStorage := storage.NewPostgresSettingsStorage(app.dbPool)

	senders, err := app.initSenders(settingsStorage)
	if err != nil {
		return err
	}
	app.notifier = notify.NewNotifier(app.cfg.NotifyTimeout, app.metrics, log.Default(), senders...)

	var courierClient courier.Client
	if app.cfg.CourierAPIURL != "" {
		courierClient = courier.NewHTTPClient(app.cfg.CourierAPIURL, app.cfg.CourierAPIKey, app.cfg.CourierTimeout)
	} else {
		log.Println("WARNING: COURIER_API_URL is not configured. Courier history will be reported as unavailable")
	}

	historyCache := cache.NewMemoryCache[*models.CombinedHistoryResponse](app.cfg.CourierCacheTTL)
	app.janitor = cache.NewJanitor(historyCache, time.Minute, log.Default())

	// Service layer
	orderService := services.NewOrderService(orderStorage, productStorage, settingsStorage, app.notifier, app.metrics, log.Default())
	riskService := services.NewRiskService(orderStorage, courierClient, historyCache, app.metrics, log.Default())

	// Handler layer
	app.orderHandler = handlers.NewOrderHandler(orderService)
	app.riskHandler = handlers.NewRiskHandler(riskService)
	app.healthHandler = handlers.NewHealthHandler(app.dbPool)

	return nil
}

// initSenders собирает каналы уведомлений. Канал без URL отключён.
func (app *App) initSenders(settings notify.SettingsReader) ([]notify.Sender, error) {
	cfg := app.cfg
	var senders []notify.Sender

	if cfg.ConversionAPIURL != "" && cfg.ConversionPixelID != "" {
		senders = append(senders, notify.NewConversionSender(cfg.ConversionAPIURL, cfg.ConversionPixelID, cfg.ConversionAccessToken, cfg.NotifyTimeout))
	} else {
		log.Println("Conversion notifications are disabled")
	}

	if cfg.SMSAPIURL != "" {
		senders = append(senders, notify.NewSMSSender(settings, cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSenderID, cfg.NotifyTimeout))
	} else {
		log.Println("SMS notifications are disabled")
	}

	if cfg.EmailAPIURL != "" {
		senders = append(senders, notify.NewEmailSender(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.AdminEmail, cfg.NotifyTimeout))
	} else {
		log.Println("Email notifications are disabled")
	}

	if cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(cfg.RabbitMQURL)
		if err != nil {
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		if err := client.DeclareExchange(cfg.OrderEventsExchange); err != nil {
			client.Close()
			return nil, fmt.Errorf("declare exchange %s: %w", cfg.OrderEventsExchange, err)
		}
		app.rabbit = client
		senders = append(senders, notify.NewEventSender(client, cfg.OrderEventsExchange))
	} else {
		log.Println("Order events are disabled")
	}

	return senders, nil
}

// initServer инициализирует HTTP-сервер и настраивает маршруты.
func (app *App) initServer() {
	e := echo.New()
	e.HTTPErrorHandler = handlers.ErrorHandler

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(tracing.Middleware(serviceName))
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
	}))

	e.GET("/healthz", app.healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(app.metrics.Handler()))

	// Публичные маршруты
	e.POST("/api/orders", app.orderHandler.PlaceOrder)

	// Бэк-офис (требует токен администратора)
	admin := e.Group("/api/admin")
	admin.Use(auth.JWTMiddleware(app.cfg.JWTSecret), auth.RequireRole(auth.RoleAdmin))
	admin.POST("/customers/history", app.riskHandler.CustomerHistory)
	admin.POST("/customers/courier-history", app.riskHandler.CombinedHistory)

	app.echo = e
}

// StartWorkers запускает чистку кэша курьерских проверок. Канал закрывается после остановки по ctx.
func (app *App) StartWorkers(ctx context.Context) <-chan struct{} {
	return app.janitor.Start(ctx)
}

// Serve обслуживает HTTP до вызова Shutdown.
func (app *App) Serve() error {
	log.Printf("Starting server on %s", app.cfg.RunAddress)
	if err := app.echo.Start(app.cfg.RunAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
// Уведомления, запущенные до остановки, дорабатывают в пределах ctx.
func (app *App) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	drained := make(chan struct{})
	go func() {
		app.notifier.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		log.Println("WARNING: notifications still in flight at shutdown")
	}

	if app.rabbit != nil {
		if err := app.rabbit.Close(); err != nil {
			log.Printf("failed to close rabbitmq: %v", err)
		}
	}

	if err := app.tracing.Shutdown(ctx); err != nil {
		log.Printf("failed to flush traces: %v", err)
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	log.Println("Server gracefully stopped")
	return nil
}
