// @title                      Mechanic Shop API
// @version                    1.0
// @description                Customers, mechanics, inventory and service tickets of a vehicle repair shop.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/mechshop/service-api/docs"
	"github.com/mechshop/service-api/internal/api"
	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
	"github.com/mechshop/service-api/internal/core/service"
	"github.com/mechshop/service-api/internal/infrastructure/config"
	"github.com/mechshop/service-api/internal/infrastructure/db/mongo"
	redisstore "github.com/mechshop/service-api/internal/infrastructure/db/redis"
	"github.com/mechshop/service-api/internal/infrastructure/db/sqlstore"
	"github.com/mechshop/service-api/internal/infrastructure/http/handlers"
	"github.com/mechshop/service-api/internal/infrastructure/queue"
	"github.com/mechshop/service-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "mechshop-api",
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	deps := map[string]handlers.Pinger{}

	// --- Storage ---
	repos, closeStore, err := openStore(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info().Str("driver", cfg.Store.Driver).Msg("store ready")

	// --- Ranking cache (optional) ---
	var ranking ports.RankingCache
	if cfg.Redis.Enabled() {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			URL:      cfg.Redis.URL,
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		ranking = redisstore.NewRankingCache(rdb, cfg.Redis.RankingCacheTTL)
		deps["redis"] = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		log.Info().Msg("ranking cache enabled")
	}

	// --- Ticket activity ---
	var sink ports.ActivitySink = queue.NewLogSink(logger.Component("activity"))
	if cfg.Activity.AMQPURL != "" {
		pub, err := queue.NewAMQPPublisher(cfg.Activity.AMQPURL, cfg.Activity.Exchange)
		if err != nil {
			return err
		}
		defer pub.Close()
		sink = pub
		deps["rabbitmq"] = pub
		log.Info().Str("exchange", cfg.Activity.Exchange).Msg("activity publisher connected")
	}
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, sink, logger.Component("activity"))
	dispatcher.Start(dispatchCtx)
	defer func() {
		stopDispatch()
		dispatcher.Wait()
	}()

	// --- Core ---
	codec, err := service.NewJWTCodec(service.TokenConfig{
		Secret:    cfg.Auth.JWTSecret,
		Algorithm: cfg.Auth.JWTAlgorithm,
		TTL:       cfg.Auth.TokenTTL,
	})
	if err != nil {
		return err
	}
	verifier := service.NewBcryptVerifier(cfg.Auth.BcryptCost)
	principals := service.NewPrincipalStore(repos.Mechanics, repos.Customers)

	router := api.NewRouter(api.RouterConfig{
		Services: api.Services{
			Auth:         service.NewAuthService(principals, verifier, codec, logger.Component("auth")),
			Mechanics:    service.NewMechanicService(repos.Mechanics, verifier, ranking, log),
			Customers:    service.NewCustomerService(repos.Customers, repos.Tickets, verifier, ranking, log),
			Tickets:      service.NewTicketService(repos.Tickets, repos.Customers, ranking, log),
			Parts:        service.NewPartService(repos.Parts, log),
			Associations: service.NewAssociationManager(repos, ranking, dispatcher, logger.Component("associations")),
			Ranking:      service.NewRankingAggregator(repos.Mechanics, repos.Memberships, ranking, log),
		},
		Guards: api.Guards{
			Mechanic: service.NewAccessGuard(codec, principals, domain.RoleMechanic),
			Customer: service.NewAccessGuard(codec, principals, domain.RoleCustomer),
		},
		Health: handlers.NewHealthDependenciesHandler(deps),
		Logger: log,
	})

	// --- Serve ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return router.Shutdown(shutdownCtx)
}

// openStore connects the configured backend and registers it for readiness.
func openStore(ctx context.Context, cfg *config.Config, deps map[string]handlers.Pinger) (ports.Repositories, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		store, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return ports.Repositories{}, nil, err
		}
		deps["mongodb"] = store
		return store.Repositories(), func() { _ = store.Close(context.Background()) }, nil
	default:
		sqlCfg := sqlstore.Config{Dialect: sqlstore.SQLite, DSN: cfg.SQLite.Path}
		if cfg.Store.Driver == config.DriverMySQL {
			sqlCfg = sqlstore.Config{Dialect: sqlstore.MySQL, DSN: cfg.MySQL.DSN}
		}
		db, err := sqlstore.Open(ctx, sqlCfg)
		if err != nil {
			return ports.Repositories{}, nil, err
		}
		deps[cfg.Store.Driver] = db
		return db.Repositories(), func() { _ = db.Close() }, nil
	}
}
