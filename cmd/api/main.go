package main

import (
	"context"
	"log"
	"time"

	"saunakirje/config"
	"saunakirje/internal/domain/newsletter"
	"saunakirje/internal/domain/profile"
	"saunakirje/internal/domain/subscriber"
	"saunakirje/internal/handler"
	"saunakirje/internal/mailer"
	appredis "saunakirje/internal/redis"
	"saunakirje/internal/repository"
	"saunakirje/internal/server"
	"saunakirje/internal/services"
	"saunakirje/internal/storage"
	"saunakirje/pkg/database"
	"saunakirje/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	// Connect to Database
	database.Connect(cfg)

	if err := database.DB.AutoMigrate(
		&subscriber.Subscriber{},
		&profile.Profile{},
		&newsletter.Newsletter{},
		&newsletter.RecipientLog{},
	); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	// Raw migrations hold the unique indexes, so they run after the tables exist.
	if err := database.ApplyRawMigrations("migrations"); err != nil {
		log.Fatalf("Failed to apply raw migrations: %v", err)
	}

	repos := repository.NewRepositories(database.DB)

	var m mailer.Mailer
	switch cfg.MailProvider {
	case "smtp":
		m = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	default:
		m = mailer.NewResendMailer(cfg.ResendAPIKey, cfg.ResendBaseURL)
	}

	var limiter *appredis.RateLimiter
	if redisClient, err := appredis.NewClient(cfg); err != nil {
		l.Warnf("Redis unavailable, rate limiting disabled: %s", err)
	} else {
		limiter = appredis.NewRateLimiter(redisClient, appredis.DefaultRateLimitConfig())
	}

	var uploadSvc *services.UploadService
	if cfg.S3Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		storageClient, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
		})
		cancel()
		if err != nil {
			l.Warnf("S3 storage unavailable, image uploads disabled: %s", err)
		} else {
			uploadSvc = services.NewUploadService(storageClient)
		}
	}
	if uploadSvc == nil {
		uploadSvc = services.NewUploadService(nil)
	}

	authService := services.NewAuthService(repos.Profiles, cfg)
	newsletterService := services.NewNewsletterService(repos, m, cfg, l)
	subscriberService := services.NewSubscriberService(repos.Subscribers, l)

	handlers := &server.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Newsletter: handler.NewNewsletterHandler(newsletterService),
		Subscriber: handler.NewSubscriberHandler(subscriberService),
		Upload:     handler.NewUploadHandler(uploadSvc),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
