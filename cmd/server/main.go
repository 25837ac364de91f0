package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/exportquote/internal/calculator"
	"github.com/Simplici0/exportquote/internal/config"
	"github.com/Simplici0/exportquote/internal/db"
	"github.com/Simplici0/exportquote/internal/history"
	"github.com/Simplici0/exportquote/internal/masterdata"
	"github.com/Simplici0/exportquote/internal/migrations"
	"github.com/Simplici0/exportquote/internal/observability"
	"github.com/Simplici0/exportquote/internal/rates"
	"github.com/Simplici0/exportquote/internal/seed"
)

type server struct {
	db         *sql.DB
	auth       *authService
	masterData *masterdata.Store
	history    *history.Store
	calculator *calculator.Service
	logger     *zap.Logger
}

func newServer(database *sql.DB, cfg config.Config, logger *zap.Logger) *server {
	md := masterdata.NewStore(database, cfg.MasterDataCacheTTL)
	hist := history.NewStore(database, cfg.HistoryLimit)
	provider := rates.NewByName(cfg.RateProvider, md)
	return &server{
		db:         database,
		auth:       newAuthService(database, cfg.SessionSecret),
		masterData: md,
		history:    hist,
		calculator: calculator.NewService(md, provider, hist),
		logger:     logger,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(observability.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.authMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
		r.Get("/products", s.handleListProducts)
		r.Post("/products", s.handleSaveProduct)
		r.Get("/products/{id}", s.handleGetProduct)
		r.Get("/containers", s.handleListContainers)
		r.Post("/containers", s.handleSaveContainer)
		r.Get("/locations", s.handleListLocations)
		r.Post("/locations", s.handleSaveLocation)
		r.Get("/ports", s.handleListPorts)
		r.Post("/ports", s.handleSavePort)
		r.Get("/countries", s.handleListCountries)
		r.Post("/countries", s.handleSaveCountry)
		r.Get("/destination-ports", s.handleListDestinationPorts)
		r.Post("/destination-ports", s.handleSaveDestinationPort)
		r.Get("/freight-lanes", s.handleListFreightLanes)
		r.Post("/freight-lanes", s.handleSaveFreightLane)
		r.Get("/certifications", s.handleListCertifications)
		r.Post("/certifications", s.handleSaveCertification)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/packing", s.handlePacking)
		r.Get("/distance", s.handleDistance)
		r.Get("/quotes", s.handleListQuotes)
		r.Post("/quotes", s.handleCreateQuote)
		r.Get("/quotes/{id}", s.handleGetQuote)
		r.Post("/quotes/{id}/overrides", s.handleQuoteOverrides)
	})

	r.Get("/quotes/{id}/text", s.handleQuoteText)
	r.Get("/quotes/{id}/whatsapp", s.handleQuoteWhatsApp)
	r.Get("/quotes/{id}/print", s.handleQuotePrint)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	version, err := migrations.Version(s.db)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "schema_version": version})
}

func main() {
	cfg := config.Load()

	logger := observability.NewLogger(observability.LoggerConfig{Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = logger.Sync() }()
	if cfg.DotEnvKeys > 0 {
		logger.Info("loaded dotenv", zap.Int("keys", cfg.DotEnvKeys))
	}
	for _, warning := range cfg.Warnings {
		logger.Warn("config", zap.String("warning", warning))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(ctx, database); err != nil {
			logger.Fatal("failed to run database migrations", zap.Error(err))
		}
	}

	stats, err := seed.Run(ctx, database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}
	logger.Info("seed completed", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	srv := newServer(database, cfg, logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("rate_provider", cfg.RateProvider))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
