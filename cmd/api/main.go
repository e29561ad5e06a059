package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sablehq/frontdesk-ai-platform/internal/admin"
	"github.com/sablehq/frontdesk-ai-platform/internal/api/router"
	"github.com/sablehq/frontdesk-ai-platform/internal/booking"
	appconfig "github.com/sablehq/frontdesk-ai-platform/internal/config"
	"github.com/sablehq/frontdesk-ai-platform/internal/http/handlers"
	"github.com/sablehq/frontdesk-ai-platform/internal/notify"
	"github.com/sablehq/frontdesk-ai-platform/internal/observability/metrics"
	"github.com/sablehq/frontdesk-ai-platform/internal/personalize"
	"github.com/sablehq/frontdesk-ai-platform/internal/store"
	"github.com/sablehq/frontdesk-ai-platform/internal/tenancy"
	"github.com/sablehq/frontdesk-ai-platform/internal/tenantctx"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting frontdesk-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	dataStore := store.New(pool)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		defer func() { _ = redisClient.Close() }()
	}

	resolver, err := tenancy.NewResolver(dataStore, cfg.DefaultTenantID, logger)
	if err != nil {
		logger.Error("failed to create tenant resolver", "error", err)
		os.Exit(1)
	}

	contextCache := tenantctx.NewCache(dataStore, cfg.ContextCacheTTL, logger)
	if listener := tenantctx.NewListener(redisClient, contextCache, logger); listener != nil {
		go listener.Run(ctx)
	}

	// A nil *HTTPSMSSender stored directly in the interface would pass the
	// service's nil check.
	var smsSender notify.SMSSender
	if sender := notify.NewHTTPSMSSender(notify.HTTPSMSConfig{
		BaseURL:    cfg.SMSAPIBaseURL,
		APIKey:     cfg.SMSAPIKey,
		FromNumber: cfg.SMSFromNumber,
	}, logger); sender != nil {
		smsSender = sender
	}

	notifier := notify.NewService(emailSender(ctx, cfg, logger), smsSender, dataStore, logger)

	intents := booking.NewHandlers(booking.Config{
		Store:     dataStore,
		TenantCtx: contextCache,
		Notifier:  notifier,
		Logger:    logger,
	})

	webhookMetrics := metrics.NewWebhookMetrics(nil)
	webhook := handlers.NewAssistantWebhookHandler(handlers.AssistantWebhookConfig{
		Resolver: resolver,
		Intents:  intents,
		Injector: personalize.NewInjector(contextCache, logger),
		Metrics:  webhookMetrics,
		Logger:   logger,
		APIKey:   cfg.VoiceAPIKey,
		Timeout:  cfg.RequestTimeout,
	})

	var adminHandler *admin.Handler
	if db, err := sql.Open("postgres", cfg.DatabaseURL); err != nil {
		logger.Warn("admin endpoints disabled: failed to open sql db", "error", err)
	} else {
		defer func() { _ = db.Close() }()
		adminHandler = admin.NewHandler(admin.Config{DB: db, Redis: redisClient, Logger: logger})
	}

	r := router.New(&router.Config{
		Logger:             logger,
		AssistantWebhook:   webhook,
		AdminHandler:       adminHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// emailSender picks the configured email provider. Unknown or absent
// providers disable email; SMS and the booking path are unaffected.
func emailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, email disabled")
	case "ses":
		client, err := sesClient(ctx, cfg)
		if err != nil {
			logger.Warn("SES selected but AWS config failed, email disabled", "error", err)
			return nil
		}
		return notify.NewSESSender(client, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	case "none", "":
	default:
		logger.Warn("unknown email provider, email disabled", "provider", cfg.EmailProvider)
	}
	return nil
}

func sesClient(ctx context.Context, cfg *appconfig.Config) (*sesv2.Client, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, err
	}
	return sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if cfg.AWSEndpointOverride != "" {
			o.BaseEndpoint = &cfg.AWSEndpointOverride
		}
	}), nil
}
