// Package app assembles stores, services and the HTTP router from config.
package app

import (
	"context"
	"errors"
	"fmt"

	"game-exchange/internal/config"
	httpHandler "game-exchange/internal/delivery/http/handler"
	"game-exchange/internal/delivery/http/middleware"
	"game-exchange/internal/delivery/http/route"
	"game-exchange/internal/logger"
	"game-exchange/internal/metrics"
	"game-exchange/internal/notification"
	"game-exchange/internal/observability"
	"game-exchange/internal/repository"
	"game-exchange/internal/repository/memory"
	"game-exchange/internal/repository/mongodb"
	"game-exchange/internal/repository/postgresql"
	"game-exchange/internal/service"
	utils "game-exchange/pkg"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type App struct {
	Router *gin.Engine
	Offers *service.OfferService

	log     *logger.Logger
	closers []func(context.Context) error
}

func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	a := &App{log: log}
	if err := a.build(ctx, cfg); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

func (a *App) build(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := observability.SetupTracing(ctx, a.log, cfg.ServiceName, cfg.Metrics.OtlpEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	a.onClose(shutdownTracing)

	catalogStore, offerStore, err := a.openStores(cfg)
	if err != nil {
		return err
	}
	history, err := a.openHistory(ctx, cfg)
	if err != nil {
		return err
	}

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
	}

	opts := []service.OfferOption{
		service.WithHistory(history),
		service.WithStoreTimeout(cfg.Store.Timeout),
		service.WithSelfTradeGuard(cfg.Offers.RejectSelfTrade),
	}
	if recorder != nil {
		opts = append(opts, service.WithMetrics(recorder))
	}
	publisher, err := a.openPublisher(cfg)
	if err != nil {
		return err
	}
	if publisher != nil {
		opts = append(opts, service.WithNotifier(publisher))
	}

	tokens := utils.NewTokenIssuer(cfg.JWT.Secret, cfg.JWTTTL(), cfg.JWT.Issuer)
	a.Offers = service.NewOfferService(catalogStore, offerStore, a.log, opts...)
	catalog := service.NewCatalogService(catalogStore, tokens, a.log, cfg.Store.Timeout)

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Metrics.OtlpEndpoint != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(middleware.RequestLogger(a.log))

	handlers := route.Handlers{
		Users:  httpHandler.NewUserHandler(catalog),
		Games:  httpHandler.NewGameHandler(catalog),
		Offers: httpHandler.NewOfferHandler(a.Offers),
		Tokens: tokens,
	}
	if recorder != nil {
		r.Use(middleware.Metrics(recorder))
		handlers.Metrics = recorder.Handler()
	}
	route.SetupRoute(r, handlers)

	a.Router = r
	return nil
}

func (a *App) openStores(cfg config.Config) (repository.CatalogStore, repository.OfferStore, error) {
	switch cfg.Store.Driver {
	case "memory":
		entities := memory.NewEntityStore()
		return entities, memory.NewOfferStore(entities), nil
	case "sqlite", "postgres":
		dsn := cfg.Store.DatabaseURL
		if cfg.Store.Driver == "sqlite" {
			dsn = cfg.Store.SQLitePath
		}
		db, err := postgresql.Open(cfg.Store.Driver, dsn)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		a.onClose(func(context.Context) error { return sqlDB.Close() })
		a.log.Info("sql store ready", "driver", cfg.Store.Driver)
		return postgresql.NewCatalogStore(db, a.log), postgresql.NewOfferRepository(db, a.log), nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (a *App) openHistory(ctx context.Context, cfg config.Config) (repository.HistoryRepository, error) {
	if cfg.Mongo.URI == "" {
		return memory.NewHistoryRepository(), nil
	}
	client, err := mongodb.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return nil, err
	}
	a.onClose(client.Disconnect)
	a.log.Info("mongo history ready", "database", cfg.Mongo.Database)
	return mongodb.NewHistoryRepository(client, cfg.Mongo.Database), nil
}

func (a *App) openPublisher(cfg config.Config) (*notification.Publisher, error) {
	var gateway notification.Gateway
	switch cfg.Notify.Driver {
	case "none", "":
		return nil, nil
	case "log":
		gateway = notification.NewLogGateway(a.log)
	case "kafka":
		writer := notification.NewKafkaWriter(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		gateway = notification.NewKafkaGateway(writer)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Notify.RedisAddr})
		gateway = notification.NewRedisGateway(client, cfg.Notify.RedisChannel)
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Notify.Driver)
	}

	publisher := notification.NewPublisher(gateway, cfg.Notify.Buffer, a.log)
	a.onClose(func(context.Context) error { return publisher.Close() })
	a.log.Info("notifications enabled", "driver", cfg.Notify.Driver)
	return publisher, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
