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

	"github.com/spf13/pflag"

	"cosmos-catalog/internal/api"
	"cosmos-catalog/internal/auth"
	"cosmos-catalog/internal/catalog"
	"cosmos-catalog/internal/config"
	"cosmos-catalog/internal/db"
	"cosmos-catalog/internal/featureflags"
	mw "cosmos-catalog/internal/http/middleware"
	"cosmos-catalog/internal/idgen"
	"cosmos-catalog/internal/logger"
	"cosmos-catalog/internal/slot"
	"cosmos-catalog/internal/web"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "path to YAML config (default $CATALOG_CONFIG)")
		addr       = pflag.String("addr", "", "API listen address")
		webAddr    = pflag.String("web-addr", "", "local UI listen address")
		backend    = pflag.String("store", "", "remote store backend: memory or postgres")
		logLevel   = pflag.String("log-level", "", "debug, info, warn or error")
	)
	pflag.Parse()

	if err := run(*configPath, func(c *config.Config) {
		if *addr != "" {
			c.HTTPAddr = *addr
		}
		if *webAddr != "" {
			c.WebAddr = *webAddr
		}
		if *backend != "" {
			c.Store.Backend = *backend
		}
		if *logLevel != "" {
			c.LogLevel = *logLevel
		}
	}); err != nil {
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, override func(*config.Config)) error {
	// 1) Config: defaults, file, env, then flags
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	override(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2) Levelled logger, then feature flags (non-fatal)
	logger.Init(cfg.LogLevel)
	flagCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	if err := featureflags.Init(flagCtx, cfg.Flags.RolloutAPIKey, cfg.LogLevel); err != nil {
		logger.Warnf("feature flags init warning: %v", err)
	} else if featureflags.Ready() {
		logger.Infof("feature flags ready: offline=%v, logLevel=%s", featureflags.Offline(), featureflags.LogLevel())
	}
	cancel()
	defer featureflags.Shutdown()

	logger.SetLevel(featureflags.LogLevel())
	logger.Infof("log level set to %s", logger.GetLevel())
	go watchLogLevel(ctx, 5*time.Second)

	// 3) Remote catalog store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 4) API router
	opts := api.Options{
		Store:         store,
		Offline:       featureflags.Offline,
		AllowedOrigin: cfg.CORS.AllowedOrigin,
		Flags: func() map[string]any {
			return map[string]any{
				"offline":  featureflags.Offline(),
				"logLevel": featureflags.LogLevel(),
			}
		},
	}
	if cfg.Auth.UsersRequireToken {
		opts.UsersAuth = auth.RequireBearer(cfg.Auth.JWTSecret)
	}

	// 5) Local catalog backed by a file slot
	local, err := openLocal(ctx, cfg)
	if err != nil {
		return err
	}
	ui, err := web.NewUI(local)
	if err != nil {
		return err
	}
	uiHandler := mw.RequestID(mw.Recover(mw.LogRequests()(ui.Handler())))

	servers := []*http.Server{
		{Addr: cfg.HTTPAddr, Handler: api.NewRouter(opts), ReadHeaderTimeout: 5 * time.Second},
		{Addr: cfg.WebAddr, Handler: uiHandler, ReadHeaderTimeout: 5 * time.Second},
	}
	errCh := make(chan error, len(servers))
	for _, s := range servers {
		go func(s *http.Server) {
			logger.Infof("catalog listening on %s", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen %s: %w", s.Addr, err)
			}
		}(s)
	}

	// 6) Graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
		logger.Infof("shutting down")
	case runErr = <-errCh:
		logger.Errorf("server failed: %v", runErr)
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	for _, s := range servers {
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("shutdown %s: %v", s.Addr, err)
		}
	}
	return runErr
}

func openStore(ctx context.Context, cfg config.Config) (catalog.Store, func(), error) {
	seed := catalog.DefaultProducts()
	if cfg.Store.SeedFile != "" {
		loaded, err := catalog.LoadSeedFile(cfg.Store.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		seed = make([]catalog.Product, 0, len(loaded))
		for _, p := range loaded {
			n, err := catalog.Normalize(p)
			if err != nil {
				return nil, nil, fmt.Errorf("seed %s: %w", cfg.Store.SeedFile, err)
			}
			seed = append(seed, n)
		}
	}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		sqlDB, err := db.Init(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database init failed: %w", err)
		}
		pg := catalog.NewPGStore(sqlDB, cfg.Store.Schema)
		if err := pg.Migrate(ctx); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		if err := pg.SeedIfEmpty(ctx, seed); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		logger.Infof("remote catalog on postgres schema %s", cfg.Store.Schema)
		return pg, func() { _ = sqlDB.Close() }, nil
	default:
		c := catalog.NewCollection(catalog.WithValidation(), catalog.WithSeed(seed))
		logger.Infof("remote catalog in memory, %d products", c.Len())
		return c, func() {}, nil
	}
}

func openLocal(ctx context.Context, cfg config.Config) (*catalog.Collection, error) {
	s, err := slot.NewFileSlot(cfg.Local.DataDir, cfg.Local.SlotName)
	if err != nil {
		return nil, err
	}
	c, err := catalog.LoadCollection(ctx, s, catalog.WithIDGenerator(idgen.TimeRandom()))
	if err != nil {
		return nil, err
	}
	logger.Infof("local catalog %s: %d products", s.Path(), c.Len())
	return c, nil
}

func watchLogLevel(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	prev := featureflags.LogLevel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if cur := featureflags.LogLevel(); cur != prev {
				logger.SetLevel(cur)
				logger.Infof("log level changed to %s", logger.GetLevel())
				prev = cur
			}
		}
	}
}
