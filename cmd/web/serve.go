// cmd/web/serve.go
//
// HTTP server boot.
//
// Request life-cycle
// ------------------
//
//  1. Load config (conf/.env → conf/global.yaml → ASKFORM_* env, vault refs).
//
//  2. Start the rotating file logger (tees to console when running in a TTY).
//
//  3. Install form settings (CSRF key, fill-time window) and layer on-disk
//     form overrides over the embedded definitions.
//
//  4. Open the optional GeoIP database and load the theme.
//
//  5. Init every component, then mount:
//
//     • /metrics          – Prometheus
//     • /assets/*         – theme assets
//     • module paths      – exact GET routes (e.g. /debug)
//     • components        – at “/” (contact form, /validate, /live)
//
//  6. Serve until SIGINT/SIGTERM, then drain for up to ten seconds.
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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/askform/internal/component"
	"github.com/yanizio/askform/internal/config"
	"github.com/yanizio/askform/internal/form"
	"github.com/yanizio/askform/internal/logger"
	"github.com/yanizio/askform/internal/middleware"
	"github.com/yanizio/askform/internal/module"
	"github.com/yanizio/askform/internal/requestinfo"
	"github.com/yanizio/askform/internal/server"
	"github.com/yanizio/askform/internal/theme"
	"github.com/yanizio/askform/internal/view"
	"github.com/yanizio/askform/web"

	_ "github.com/yanizio/askform/modules/debug" // /debug diagnostics
)

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Early boot logs go to stderr until the file logger is up.
	logger.NewConsole("info")

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Paths.Root, cfg.Log.Level, logger.Tee(cfg.Log.Tee))
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	handler, err := bootstrap(cfg, log)
	if err != nil {
		log.Errorw("bootstrap failed", "err", err)
		return err
	}
	defer requestinfo.CloseGeo()

	srv := server.New(cfg.HTTP.ListenAddr, handler, server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down", "grace", shutdownGrace)
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Errorw("server stopped", "err", err)
		return err
	}
	log.Infow("server stopped")
	return nil
}

// bootstrap installs process-wide state from cfg and returns the root
// handler.
func bootstrap(cfg *config.Config, log *zap.SugaredLogger) (http.Handler, error) {
	key, err := form.DecodeKey(cfg.Form.CSRFKey)
	if err != nil {
		return nil, fmt.Errorf("form.csrf_key: %w", err)
	}
	form.Configure(form.Settings{
		CSRFKey:     key,
		MinFillTime: cfg.Form.MinFillTime,
		MaxAge:      cfg.Form.MaxAge,
	})
	if err := form.RegisterOverrides(cfg.Form.OverrideDir); err != nil {
		return nil, err
	}

	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		return nil, err
	}

	mgr := theme.Manager{FS: web.FS}
	th, err := mgr.Load(cfg.Theme.Name, view.FuncMap(nil))
	if err != nil {
		return nil, err
	}
	view.UseTheme(th)

	if err := component.InitAll(component.StaticEnv{Cfg: cfg, Log: log, Th: th}); err != nil {
		return nil, fmt.Errorf("component init: %w", err)
	}

	return newRouter(cfg, log, th), nil
}

func newRouter(cfg *config.Config, log *zap.SugaredLogger, th *theme.Theme) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS))
	r.Use(middleware.Security)
	r.Use(requestinfo.Enrich)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle(theme.AssetPrefix+"*", th.Assets())
	for _, p := range module.Paths() {
		r.Method(http.MethodGet, p, module.HTTP(p))
	}
	for _, c := range component.All() {
		r.Mount("/", c.Routes())
		log.Debugw("component mounted", "component", c.Name())
	}
	return r
}
