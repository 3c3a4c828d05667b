package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/rentinout/internal/config"
	"github.com/joshua-takyi/rentinout/internal/connect"
	"github.com/joshua-takyi/rentinout/internal/container"
	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/identity"
	"github.com/joshua-takyi/rentinout/internal/mailer"
	"github.com/joshua-takyi/rentinout/internal/metrics"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/realtime"
	"github.com/joshua-takyi/rentinout/internal/routes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting rentinout API server", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := connect.MongoDBConnect(cfg)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully")

	store := models.MongodbNewRepo(mongoClient, cfg.MongoDBDatabase, cfg.MongoDBTransactions)
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := store.EnsureIndexes(indexCtx); err != nil {
		logger.Error("Failed to create indexes", "error", err)
		cancel()
		os.Exit(1)
	}
	cancel()

	cld, err := connect.CloudinaryCredentials(cfg)
	if err != nil {
		logger.Error("Failed to connect to Cloudinary", "error", err)
		os.Exit(1)
	}
	if cld == nil {
		logger.Warn("Cloudinary not configured, image deletion disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	deps := container.Deps{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Media:    helpers.NewCloudinaryMedia(cld),
		Registry: registry,
		Metrics:  m,
	}

	var closers []func() error

	var transport mailer.Dispatcher = mailer.LogDispatcher{Logger: logger}
	if cfg.MailConfigured() {
		transport = mailer.NewSMTPMailer(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass)
	} else {
		logger.Warn("Mail credentials not set, outbound mail is logged only")
	}

	if cfg.RabbitURL != "" {
		publisher, err := mailer.NewQueuePublisher(cfg.RabbitURL, cfg.MailExchange)
		if err != nil {
			logger.Error("Failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		worker, err := mailer.NewWorker(cfg.RabbitURL, cfg.MailExchange, cfg.MailQueue, transport, logger)
		if err != nil {
			logger.Error("Failed to start mail worker", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Mail worker stopped", "error", err)
			}
		}()
		closers = append(closers, publisher.Close, worker.Close)
		transport = publisher
		logger.Info("Mail queued through RabbitMQ", "exchange", cfg.MailExchange, "queue", cfg.MailQueue)
	}
	async := mailer.NewAsyncDispatcher(transport, logger, m.MailDispatch)
	deps.Mail = async

	jwksURL := cfg.GoogleJWKSURL
	if cfg.GoogleClientID == "" {
		// audience checks need a client id
		jwksURL = ""
	}
	google, err := identity.NewGoogleVerifier(identity.GoogleOptions{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		UserInfoURL:  cfg.GoogleUserInfoURL,
		JWKSURL:      jwksURL,
	})
	if err != nil {
		logger.Warn("Google JWKS unavailable, falling back to userinfo lookups", "error", err)
		google, err = identity.NewGoogleVerifier(identity.GoogleOptions{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			UserInfoURL:  cfg.GoogleUserInfoURL,
		})
	}
	if err == nil {
		deps.Google = google
		defer google.Close()
	}

	if cfg.RedisURL != "" {
		rdb, err := connect.RedisConnect(cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		deps.Backplane = realtime.NewRedisBackplane(rdb, realtime.DefaultChannel)
		closers = append(closers, rdb.Close)
		logger.Info("Relay backplane enabled", "channel", realtime.DefaultChannel)
	}

	appContainer := container.NewContainer(deps)
	go func() {
		if err := appContainer.Hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Relay hub stopped", "error", err)
		}
	}()

	router := routes.SetupRoutes(appContainer)

	// WriteTimeout stays unset: it would cut long-lived socket connections.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "origins", strings.Join(cfg.AllowedOrigins, ","))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// let queued verification and reset mails finish
	async.Wait()
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("Error closing connection", "error", err)
		}
	}
	if err := connect.MongoDBDisconnect(mongoClient); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}
