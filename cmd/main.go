// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"flashdeck/internal/config"
	"flashdeck/internal/handlers"
	"flashdeck/internal/middleware"
	"flashdeck/internal/scheduler"
	"flashdeck/internal/selection"
	"flashdeck/internal/service"
	"flashdeck/internal/session"
	"flashdeck/internal/store"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// 設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	if err := config.LoadConfig("configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...", slog.String("app", config.AppName), slog.String("version", config.AppVersion))

	// 2. データベース接続 (GORM)
	db, err := store.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// ストアの初期化（スキーマのマイグレーション込み）。失敗したら起動しない
	appStore := store.NewGormStore(db)
	if err := appStore.Initialize(context.Background()); err != nil {
		slog.Error("Error initializing store", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Dependency Injection
	datasetService := service.NewDatasetService(appStore)
	exchangeService := service.NewExchangeService(datasetService)

	tracker := selection.NewTracker(appStore, logger)
	tracker.Hydrate(context.Background())

	engine := session.NewEngine(appStore, session.NopSynthesizer{}, logger, config.Cfg.SnapshotDebounce())
	defer engine.Close()

	pruner := scheduler.New(appStore, logger, config.Cfg.App.SessionRetentionDays)
	if err := pruner.Start(config.Cfg.App.PruneIntervalHours); err != nil {
		slog.Error("Error starting session pruning scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	defer pruner.Stop()

	datasetHandler := handlers.NewDatasetHandler(datasetService, exchangeService, logger)
	selectionHandler := handlers.NewSelectionHandler(tracker, datasetService, logger)
	sessionHandler := handlers.NewSessionHandler(engine, tracker, logger)

	// 4. Setup Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewStructuredLogger(logger))

	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	corsHandler := cors.New(corsOptions)
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Dataset routes
		r.Route("/datasets", func(r chi.Router) {
			r.Post("/", datasetHandler.PostDataset)
			r.Get("/", datasetHandler.GetDatasets)
			r.Post("/import", datasetHandler.ImportJSON)
			r.Post("/import/excel", datasetHandler.ImportExcel)
			r.Get("/{dataset_id}", datasetHandler.GetDataset)
			r.Patch("/{dataset_id}", datasetHandler.PatchDataset)
			r.Delete("/{dataset_id}", datasetHandler.DeleteDataset)
			r.Get("/{dataset_id}/export", datasetHandler.ExportDataset)
		})

		// Selection routes
		r.Route("/selection", func(r chi.Router) {
			r.Get("/", selectionHandler.GetSelection)
			r.Post("/toggle/{dataset_id}", selectionHandler.ToggleSelection)
			r.Delete("/", selectionHandler.ClearSelection)
		})

		// Session routes
		r.Route("/session", func(r chi.Router) {
			r.Post("/", sessionHandler.StartSession)
			r.Get("/", sessionHandler.GetSession)
			r.Get("/stats", sessionHandler.GetStats)
			r.Put("/settings", sessionHandler.PutSettings)
			r.Post("/next", sessionHandler.NextCard)
			r.Post("/previous", sessionHandler.PreviousCard)
			r.Post("/flip", sessionHandler.FlipCard)
			r.Post("/shuffle", sessionHandler.ShuffleCards)
			r.Post("/reset", sessionHandler.ResetSession)
			r.Post("/autoplay", sessionHandler.ToggleAutoPlay)
			r.Post("/goto", sessionHandler.GoToCard)
			r.Post("/mark", sessionHandler.MarkCard)
			r.Post("/keypress", sessionHandler.KeyPress)
			r.Post("/speak", sessionHandler.Speak)
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 5. Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
