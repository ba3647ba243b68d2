package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"engcalc/internal/apiclient"
	"engcalc/internal/calculator"
	"engcalc/internal/config"
	"engcalc/internal/fan"
	"engcalc/internal/observability"
	"engcalc/internal/server"
	"engcalc/internal/tool"
	"engcalc/internal/web"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {

	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	if cfg.OTelEnabled {
		shutdown, err := initTelemetry(ctx)
		if err != nil {
			observability.Logger.Fatal("initializing telemetry", zap.Error(err))
		}
		defer shutdown(ctx)
	}

	// Fan presets
	if err := os.MkdirAll(filepath.Dir(cfg.FanDBPath), 0o755); err != nil {
		observability.Logger.Fatal("creating fan database directory", zap.Error(err))
	}
	fans, err := fan.Open(cfg.FanDBPath)
	if err != nil {
		observability.Logger.Fatal("opening fan database", zap.String("path", cfg.FanDBPath), zap.Error(err))
	}
	defer fans.Close()

	// Tool pages
	tools, err := loadTools(cfg.ToolsDir)
	if err != nil {
		observability.Logger.Fatal("loading tool definitions", zap.Error(err))
	}

	calculators := calculator.NewRegistry()
	client := apiclient.New(cfg.CalculationURL())
	defer client.Close()

	pages, err := web.New(web.Deps{
		Tools:   tools,
		Backend: tool.Remote(client),
		Local:   tool.LocalBackend{Registry: calculators},
		Fans:    fans,
	})
	if err != nil {
		observability.Logger.Fatal("creating pages", zap.Error(err))
	}

	// Router
	router := server.NewRouter(server.Deps{
		Calculators: calculators,
		Fans:        fans,
		Pages:       pages,
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	if err := serve(srv, client.BaseURL()); err != nil {
		observability.Logger.Error("server failed", zap.Error(err))
	}
}

func loadTools(dir string) (*tool.Registry, error) {
	if dir == "" {
		return tool.LoadEmbedded()
	}
	return tool.LoadDir(dir)
}

// serve runs srv until SIGINT or SIGTERM, then shuts it down gracefully.
func serve(srv *http.Server, backendURL string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		observability.Logger.Info("server started",
			zap.String("addr", srv.Addr),
			zap.String("backend", backendURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
