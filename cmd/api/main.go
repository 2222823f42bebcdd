// Command api runs the moving-marketplace HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"movemarket/auth"
	"movemarket/bid"
	"movemarket/config"
	"movemarket/db"
	"movemarket/httpapi"
	"movemarket/livefeed"
	"movemarket/outbox"
	"movemarket/request"
	"movemarket/seed"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer pool.Close()

	if cfg.SeedDemo {
		if err := seed.Run(ctx, pool); err != nil {
			sugar.Fatalw("seed error", "error", err.Error())
		}
		sugar.Info("demo data seeded")
	}

	out := outbox.NewWriter()
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg.JWTSecret)
	adminSvc := auth.NewAdminService(authRepo)
	requestRepo := request.NewRepository(pool)
	requestSvc := request.NewService(pool, requestRepo, out)
	bidSvc := bid.NewService(pool, bid.NewRepository(pool), requestRepo, authRepo).WithOutbox(out)
	feedSvc := livefeed.NewService(livefeed.NewRepository(pool), authRepo)

	authMw := httpapi.NewAuthMiddleware(authSvc)
	h := httpapi.NewHandler(authSvc, adminSvc, requestSvc, bidSvc, feedSvc, logger, authMw)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: h.SetupRouter(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
