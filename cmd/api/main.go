// Package main is the entry point for the travel agenda API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/pkordes/travel-agenda/internal/calendar"
	"github.com/pkordes/travel-agenda/internal/config"
	"github.com/pkordes/travel-agenda/internal/handler"
	"github.com/pkordes/travel-agenda/internal/middleware"
	"github.com/pkordes/travel-agenda/internal/places"
	"github.com/pkordes/travel-agenda/internal/repo"
	"github.com/pkordes/travel-agenda/internal/service"
	"github.com/pkordes/travel-agenda/internal/weather"
	"github.com/pkordes/travel-agenda/migrations"
	"github.com/pkordes/travel-agenda/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A missing .env is fine: production sets real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(context.Background(), pool); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// --- Services ---------------------------------------------------------
	schedules := repo.NewScheduleRepo(pool)
	activityCatalog := repo.NewActivityRepo(pool)
	dayActivities := repo.NewDayActivityRepo(pool)
	users := repo.NewUserInfoRepo(pool)

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	tokens := service.NewTokenService(repo.NewTokenRepo(pool), &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarScope},
	}, httpClient)

	exporter, err := calendar.NewGoogleExporter(calendar.GoogleConfig{
		TimeZone: cfg.Calendar.TimeZone,
		Timeout:  cfg.HTTPClientTimeout,
	}, logger)
	if err != nil {
		slog.Error("invalid calendar configuration", "error", err)
		os.Exit(1)
	}
	encoder, err := calendar.NewEncoder(cfg.Calendar.TimeZone)
	if err != nil {
		slog.Error("invalid calendar configuration", "error", err)
		os.Exit(1)
	}

	deps := handler.Deps{
		Schedules:   service.NewScheduleService(schedules),
		Agenda:      service.NewAgendaService(schedules, dayActivities, activityCatalog),
		Export:      service.NewExportService(schedules, dayActivities, tokens, exporter),
		ICS:         encoder,
		Favorites:   service.NewFavoriteService(activityCatalog, repo.NewFavoriteRepo(pool)),
		Profiles:    service.NewUserInfoService(users),
		Users:       service.NewUserService(users),
		StateSecret: []byte(cfg.JWTSecret),
		OpenAPI:     spec.OpenAPI,
		Logger:      logger,
	}

	// Optional integrations stay nil (and their routes answer 503) when unconfigured.
	if cfg.Places.APIKey != "" {
		client := places.New(places.Config{
			APIKey:     cfg.Places.APIKey,
			BaseURL:    cfg.Places.BaseURL,
			Timeout:    cfg.HTTPClientTimeout,
			QueryDelay: cfg.Places.QueryDelay,
		}, logger)
		deps.Places = service.NewPlacesService(client, schedules)
	} else {
		slog.Warn("PLACES_API_KEY not set; places routes disabled")
	}
	if cfg.Weather.APIKey != "" {
		client := weather.New(cfg.Weather.APIKey, "", cfg.HTTPClientTimeout, logger)
		deps.Forecast = service.NewForecastService(schedules, client)
	}
	if cfg.Google.Enabled() {
		deps.Calendar = tokens
	} else {
		slog.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set; calendar connection disabled")
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srvHandler := handler.NewServer(deps)
	r.Mount("/", srvHandler.Routes(middleware.NewAuthHandler([]byte(cfg.JWTSecret))))

	// --- HTTP Server ------------------------------------------------------
	// A category search runs several spaced upstream queries, so the write
	// timeout is wider than a single outbound call.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations through a database/sql view of the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "count", len(results))
	return nil
}
