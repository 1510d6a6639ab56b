// Command api serves sloper drafts, cutting markers and measurement
// profiles over HTTP.
package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/innermond/sloper"
	"github.com/innermond/sloper/internal/cache"
	"github.com/innermond/sloper/internal/config"
	"github.com/innermond/sloper/internal/store"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.New,
			newLogger,
			newDrafter,
			newRepository,
			newCache,
			NewHandler,
			newGinEngine,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Invoke(startServer),
	)

	app.Run()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return cfg.Logger()
}

func newDrafter(cfg *config.Config, logger *zap.Logger) (*sloper.Drafter, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	return sloper.Initialize(sloper.WithRules(rules), sloper.WithLogger(logger))
}

func newRepository(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (store.Repository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return repo.Close()
		},
	})
	return repo, nil
}

// newCache connects to redis when it is configured and caches nothing
// otherwise.
func newCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	if cfg.RedisURL == "" {
		logger.Info("render cache disabled")
		return cache.Nop{}, nil
	}
	c, err := cache.NewRedis(context.Background(), cfg.RedisURL, cfg.CacheTTL, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
	return c, nil
}

func newGinEngine(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestID())
	engine.Use(accessLog(logger))
	engine.Use(cors())
	return engine
}

func startServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, engine *gin.Engine, h *Handler) {
	h.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return errors.Wrap(err, "listen")
			}
			logger.Info("starting server",
				zap.String("addr", srv.Addr),
				zap.String("environment", cfg.Environment),
				zap.Int("max_concurrent", cfg.MaxConcurrent),
			)
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("server stopped", zap.Error(err))
				}
			}()
			h.setHealthy(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			h.setHealthy(false)
			logger.Info("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
}
