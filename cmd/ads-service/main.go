package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/milos55/marketscraper/internal/catalogue"
	"github.com/milos55/marketscraper/internal/config"
	"github.com/milos55/marketscraper/internal/controller"
	"github.com/milos55/marketscraper/internal/filter"
	"github.com/milos55/marketscraper/internal/scraper"
	"github.com/milos55/marketscraper/internal/service"
	"github.com/milos55/marketscraper/internal/session"
	adshttp "github.com/milos55/marketscraper/internal/transport/http"
	"github.com/milos55/marketscraper/internal/upstream"
	logctx "github.com/milos55/marketscraper/pkg/log"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting ads-service", "env", cfg.Env, "source", cfg.Source.Kind)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()
	rootCtx = logctx.Into(rootCtx, log)

	src := newSource(cfg)
	cat := catalogue.New()
	svc := service.New(src, cat, *cfg)

	// Первичная загрузка каталога; сбой — деградация, не фатал:
	// каталог пуст, /healthz отдаёт 503, фоновый цикл дотянет.
	if err := svc.RefreshCatalogue(rootCtx); err != nil {
		log.Warn("initial_refresh_failed", slog.String("err", err.Error()))
	}

	if cfg.Catalogue.RefreshInterval > 0 {
		go func() {
			if err := svc.StartAutoRefresh(rootCtx); err != nil {
				log.Error("auto_refresh_failed", slog.String("err", err.Error()))
			}
		}()
	}

	pipe := filter.New(cat)
	sessions := session.NewRegistry(cfg.Session.TTL, func() *controller.Controller {
		return controller.New(rootCtx, pipe, cfg.Limits.PageSize, cfg.Debounce.Interval)
	})
	go sessions.StartEviction(rootCtx)

	handler := adshttp.NewRouter(svc, sessions, adshttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
	})

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	log.Info("service_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

// newSource выбирает источник каталога по конфигурации.
func newSource(cfg *config.Config) service.Source {
	client := &http.Client{Timeout: cfg.Upstream.Timeout}

	if cfg.Source.Kind == config.SourcePazar3 {
		return scraper.New(cfg.Source.Pazar3URL, cfg.Source.Pazar3Pages, client)
	}

	return upstream.New(cfg.Upstream.BaseURL, client)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
