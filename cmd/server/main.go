package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/gym_site/internal/config"
	"github.com/Skotchmaster/gym_site/internal/db"
	"github.com/Skotchmaster/gym_site/internal/email"
	"github.com/Skotchmaster/gym_site/internal/events"
	"github.com/Skotchmaster/gym_site/internal/httpserver"
	"github.com/Skotchmaster/gym_site/internal/logging"
	"github.com/Skotchmaster/gym_site/internal/media"
	"github.com/Skotchmaster/gym_site/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/gym_site/internal/middleware/logging"
	"github.com/Skotchmaster/gym_site/internal/middleware/ratelimit"
	"github.com/Skotchmaster/gym_site/internal/repo"
	"github.com/Skotchmaster/gym_site/internal/search"
	"github.com/Skotchmaster/gym_site/internal/service"
	"github.com/Skotchmaster/gym_site/internal/tokens"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	ctx := logging.IntoContext(context.Background(), logger)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var publisher events.Publisher = events.Noop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
		publisher = producer
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var indexer service.Indexer
	searchHandler := &httpserver.SearchHTTP{}
	if searchClient, err := search.NewClient(search.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	}); err != nil {
		logger.Warn("search_disabled", "error", err)
	} else {
		esCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := searchClient.EnsureIndex(esCtx); err != nil {
			logger.Error("search_index_error", "error", err)
		}
		cancel()
		indexer = searchClient
		searchHandler.Svc = searchClient
	}

	mediaHandler := &httpserver.MediaHTTP{}
	if cfg.S3Bucket != "" {
		store, err := media.NewS3Store(ctx, media.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
		if err != nil {
			log.Fatalf("s3 init error: %v", err)
		}
		mediaHandler.Svc = media.NewService(store, cfg.MediaPublicURL, media.Limits{
			MaxImageSize: cfg.MediaMaxImageSize,
			MaxVideoSize: cfg.MediaMaxVideoSize,
		})
	} else {
		logger.Warn("media_disabled", "reason", "S3_BUCKET is empty")
	}

	mailer := email.NewClient(cfg.PostmarkServerToken, cfg.ContactFromEmail, cfg.ContactToEmail)
	if !mailer.Configured() {
		logger.Warn("email_disabled", "reason", "postmark token or contact addresses missing")
	}

	ipExtractor, err := ratelimit.IPExtractor(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	gormRepo := repo.NewGormRepo(gdb)
	tokenSvc := tokens.NewService(cfg.JWTSecret, cfg.JWTTTL)

	deps := &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.UserService{
			Repo:              gormRepo,
			Tokens:            tokenSvc,
			AdminEmail:        cfg.AdminEmail,
			AdminPasswordHash: cfg.AdminPasswordHash,
			Events:            publisher,
		}},
		ContentHandler: &httpserver.ContentHTTP{
			Svc: service.NewContentService(gormRepo, cfg.SingletonContentTypes, publisher, indexer),
		},
		ContactHandler: &httpserver.ContactHTTP{Svc: &service.ContactService{
			Repo:     gormRepo,
			Notifier: mailer,
			Events:   publisher,
		}},
		MediaHandler:  mediaHandler,
		SearchHandler: searchHandler,
		Guard:         auth.NewGuard(tokenSvc, cfg.AdminEmail),
		Limiter:       ratelimit.New(),
		RateLimits: httpserver.RateLimits{
			Login:      cfg.LoginLimit,
			AdminLogin: cfg.AdminLoginLimit,
			Register:   cfg.RegisterLimit,
			Contact:    cfg.ContactLimit,
			Upload:     cfg.UploadLimit,
		},
		IPExtractor:   ipExtractor,
		MaxUploadSize: max(cfg.MediaMaxImageSize, cfg.MediaMaxVideoSize),
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, gdb)
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(logger),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}),
	)
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("http_server_stopped")
}
