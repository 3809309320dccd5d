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

	"GoldBean/internal/api"
	"GoldBean/internal/cache"
	"GoldBean/internal/config"
	"GoldBean/internal/history"
	"GoldBean/internal/logging"
	"GoldBean/internal/model"
	"GoldBean/internal/notifier"
	"GoldBean/internal/pricing"
	"GoldBean/internal/provider"
	"GoldBean/internal/scheduler"
	"GoldBean/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found")
	}
	log := logging.New("goldbean")
	log.Info("GoldBean starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("config validation")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init store
	st, err := openStore(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer st.Close()

	prefs := cache.NewPreferences(st)
	if first, err := prefs.EnsureFirstLaunch(ctx); err != nil {
		log.WithError(err).Warn("apply first launch defaults")
	} else if first {
		log.Info("first launch, real data enabled")
	}
	seedHoldings(ctx, cfg, st, log)

	// Init price chain
	price := pricing.NewService(buildProviders(cfg), provider.NewHTTPProber(cfg.Sources.ProbeURL, provider.HTTPOptions{
		Timeout: cfg.Sources.ProbeTimeout,
		Proxy:   cfg.Proxy,
	}), cache.NewPriceCache(st), log, pricing.WithObservations(st))
	if err := price.Init(ctx); err != nil {
		log.WithError(err).Warn("load cached price")
	}

	// Init history
	histOpts := []history.Option{history.WithObservations(st)}
	if cfg.History.RemoteDSN != "" {
		connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
		remote, err := history.ConnectPostgres(connectCtx, cfg.History.RemoteDSN, cfg.History.RemoteMaxConns, log)
		connectCancel()
		if err != nil {
			log.WithError(err).Warn("remote history unavailable, using local sources")
		} else {
			defer remote.Close()
			histOpts = append(histOpts, history.WithRemote(remote))
			log.Info("remote history connected")
		}
	}
	hist := history.NewService(st, prefs, price, log, histOpts...)
	if _, err := hist.Load(ctx); err != nil {
		log.WithError(err).Warn("load cached history")
	}
	if _, err := hist.SeedIfEmpty(ctx); err != nil {
		log.WithError(err).Warn("seed sample history")
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, price, hist, st, tn, log)
	if err := sched.RegisterAll(cfg.Schedule.UpdateCron, cfg.Schedule.ReportCron); err != nil {
		log.WithError(err).Fatal("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	go sched.RunUpdateNow()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	} else {
		log.Info("telegram not configured, bot disabled")
	}

	// HTTP API
	if os.Getenv("ENVIRONMENT") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.API.Listen,
		Handler:           api.NewRouter(price, hist, st, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.API.Listen).Info("api server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("api server")
		}
	}()

	log.Info("GoldBean is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("api shutdown")
	}
	cancel()
	log.Info("GoldBean stopped")
}

func openStore(cfg *config.Config, log *logrus.Logger) (store.Store, error) {
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0755); err != nil {
			return nil, err
		}
		st, err := store.NewSQLiteStore(cfg.Database.SQLitePath, log)
		if err == nil {
			return st, nil
		}
		log.WithError(err).Warn("init sqlite store failed, using state file")
	}
	return store.NewFileStore(cfg.Database.StateFile)
}

func buildProviders(cfg *config.Config) []provider.Provider {
	opts := func(timeout time.Duration) provider.HTTPOptions {
		return provider.HTTPOptions{Timeout: timeout, Proxy: cfg.Proxy}
	}
	var providers []provider.Provider
	for _, name := range cfg.Sources.Order {
		switch name {
		case config.SourceScrape:
			providers = append(providers, provider.NewScrapeProvider(cfg.Sources.ScrapeURL, opts(cfg.Sources.ScrapeTimeout)))
		case config.SourceExchange:
			providers = append(providers, provider.NewExchangeRateProvider(cfg.Sources.ExchangeURL,
				cfg.Sources.BasePriceUSD, cfg.Sources.Markup, opts(cfg.Sources.ExchangeTimeout)))
		case config.SourceCoinbase:
			providers = append(providers, provider.NewCoinbaseProvider(cfg.Sources.CoinbaseURL,
				cfg.Sources.Markup, opts(cfg.Sources.CoinbaseTimeout)))
		}
	}
	return providers
}

// seedHoldings imports configured holdings on an empty record store.
func seedHoldings(ctx context.Context, cfg *config.Config, st store.HoldingStore, log *logrus.Logger) {
	if len(cfg.Holdings) == 0 {
		return
	}
	existing, err := st.ListHoldings(ctx)
	if err != nil {
		log.WithError(err).Warn("list holdings")
		return
	}
	if len(existing) > 0 {
		return
	}
	for _, h := range cfg.Holdings {
		rec := model.NewHoldingRecord(h.Name, h.Weight, h.PurchasePrice, h.PurchaseDate)
		rec.Notes = h.Notes
		if err := st.UpsertHolding(ctx, rec); err != nil {
			log.WithError(err).WithField("name", h.Name).Warn("import holding")
		}
	}
	log.WithField("count", len(cfg.Holdings)).Info("imported holdings from config")
}
