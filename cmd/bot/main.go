// Package main is the entry point for the inventory bot and its API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ladiossato/k2-inventory/internal/bot"
	"github.com/ladiossato/k2-inventory/internal/catalog"
	"github.com/ladiossato/k2-inventory/internal/config"
	"github.com/ladiossato/k2-inventory/internal/conversation"
	"github.com/ladiossato/k2-inventory/internal/engine"
	"github.com/ladiossato/k2-inventory/internal/events"
	"github.com/ladiossato/k2-inventory/internal/handler"
	"github.com/ladiossato/k2-inventory/internal/middleware"
	"github.com/ladiossato/k2-inventory/internal/ratelimit"
	"github.com/ladiossato/k2-inventory/internal/report"
	"github.com/ladiossato/k2-inventory/internal/schedule"
	"github.com/ladiossato/k2-inventory/internal/session"
	"github.com/ladiossato/k2-inventory/internal/store"
	"github.com/ladiossato/k2-inventory/internal/telegram"
	"github.com/ladiossato/k2-inventory/pkg/logger"
	"github.com/ladiossato/k2-inventory/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting k2 inventory bot", zap.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		tp, err := tracing.Init(ctx, "k2-inventory", cfg.OTLPEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					log.Warn("tracing shutdown", zap.Error(err))
				}
			}()
		}
	}

	// Delivery calendars are validated before anything else runs.
	sched := schedule.NewModel(schedule.DefaultCalendars())
	if err := sched.Validate(); err != nil {
		log.Error("invalid delivery calendar", zap.Error(err))
		os.Exit(1)
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", zap.String("path", cfg.DatabasePath), zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	catalogStore := store.NewCatalogStore(db)
	if err := catalogStore.Seed(ctx, config.DefaultCatalog()); err != nil {
		log.Error("failed to seed catalog", zap.Error(err))
		os.Exit(1)
	}
	snapshotStore := store.NewSnapshotStore(db)
	requestStore := store.NewRequestStore(db)

	// Eventing is optional: without NATS_URL the journal is a no-op.
	var natsClient *events.Client
	var journal *events.Journal
	if cfg.NATSURL != "" {
		natsClient, err = events.Connect(cfg.NATSURL, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()

		journal = events.NewJournal(natsClient)
		if err := journal.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			os.Exit(1)
		}
	}

	tz := cfg.BusinessLocation()
	eng := engine.New(sched, cfg.BufferDays)
	items := catalog.New(catalogStore, cfg.CatalogCacheTTL)
	sessions := session.NewStore(cfg.SessionTTL)
	limiter := ratelimit.New(cfg.RateLimit, cfg.RatePeriod)

	tgClient := telegram.NewClient(cfg.BotToken, cfg.PollTimeout, log)
	convo := conversation.New(items, snapshotStore, requestStore, journal, report.SubmissionSummary, tz, log)

	router := bot.NewRouter(bot.Config{
		Sender:    tgClient,
		Sessions:  sessions,
		Limiter:   limiter,
		Convo:     convo,
		Engine:    eng,
		Schedule:  sched,
		Catalog:   items,
		Snapshots: snapshotStore,
		Requests:  requestStore,
		Journal:   journal,
		Timezone:  tz,
		Buffer:    cfg.BufferDays,
		Logger:    log,
	})
	poller := bot.NewPoller(tgClient, router, log)

	go func() {
		log.Info("polling for updates")
		if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("poller stopped", zap.Error(err))
			stop()
		}
	}()

	healthHandler := handler.NewHealthHandler(db, natsClient, cfg.NATSURL != "")
	inventoryHandler := handler.NewInventoryHandler(items, snapshotStore, eng, sched, tz)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(60, time.Minute))

		r.Route("/locations/{location}", func(r chi.Router) {
			r.Get("/status", inventoryHandler.Status)
			r.Get("/requests", inventoryHandler.Requests)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("stopped")
}
