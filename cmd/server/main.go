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

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"edufunkids/internal/audio"
	"edufunkids/internal/cache"
	"edufunkids/internal/config"
	"edufunkids/internal/content"
	"edufunkids/internal/database"
	"edufunkids/internal/handlers"
	"edufunkids/internal/logger"
	"edufunkids/internal/repository"
	"edufunkids/internal/security"
	"edufunkids/internal/service"
)

const (
	sessionCleanupInterval   = 5 * time.Minute
	rateLimitCleanupInterval = 10 * time.Minute
	resetCleanupInterval     = time.Hour
	ttsConcurrency           = 4
	shutdownTimeout          = 15 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startup := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepServices,
		handlers.StepAudio,
	)

	// Initialize database with config (supports sqlite, postgres, mysql)
	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close()
	log.Info("Database connection established", "type", cfg.DatabaseType)
	startup.CompleteStep(handlers.StepDatabase)

	startup.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}
	log.Info("Migrations completed successfully")
	startup.CompleteStep(handlers.StepMigrations)

	// Initialize repositories
	startup.SetCurrentStep(handlers.StepServices)
	accountRepo := repository.NewAccountRepository(db)
	var profiles repository.ProfileStore = repository.NewProfileRepository(db)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppURL, log)
	if err != nil {
		log.Fatal("Failed to initialize email service", "error", err)
	}

	var badgeBus *cache.BadgeBus
	if cfg.CacheEnabled() {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
		profiles = cache.NewProfileCache(profiles, rdb, cfg.CacheTTL, log)
		badgeBus = cache.NewBadgeBus(rdb, log)
		log.Info("Redis profile cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	// Initialize services
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(accountRepo, profiles, tokens, emailService, cfg.DemoEnabled, log)
	progressService := service.NewProgressService(profiles, cfg.SessionIdleTimeout, log)
	settingsService := service.NewSettingsService(progressService, log)
	notificationService := service.NewNotificationService(accountRepo, profiles, emailService, log)

	// Badge notifications go through Redis when it is configured so every
	// instance sees them; otherwise they are handled in process.
	var localBadges *service.LocalBadgePublisher
	if badgeBus != nil {
		err := badgeBus.StartForwarder(ctx, func(event cache.BadgeEvent) {
			if err := notificationService.HandleBadgeEvent(ctx, event); err != nil {
				log.Warn("Failed to handle badge event", "user_id", event.UserID, "error", err)
			}
		})
		if err != nil {
			log.Fatal("Failed to subscribe to badge events", "error", err)
		}
		progressService.SetBadgePublisher(badgeBus)
	} else {
		localBadges = service.NewLocalBadgePublisher(notificationService.HandleBadgeEvent, log)
		progressService.SetBadgePublisher(localBadges)
	}

	var oauthHandler *handlers.OAuthHandler
	if cfg.GoogleSignInEnabled() {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		}
		oauthHandler = handlers.NewOAuthHandler(authService, oauthConfig, handlers.GoogleUserInfoURL,
			security.NewStateSigner(cfg.JWTSecret), cfg.AppURL, log)
	}

	ttsService := audio.NewTTSService(cfg.AudioDir, cfg.TTSLanguage, log)
	limiter := security.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	startup.CompleteStep(handlers.StepServices)

	// Initialize handlers
	mux := handlers.NewRouter(handlers.Handlers{
		Middleware: handlers.NewMiddleware(authService, limiter, log),
		Auth:       handlers.NewAuthHandler(authService, log),
		OAuth:      oauthHandler,
		Games:      handlers.NewGameHandler(progressService, cfg.UploadMaxSize, log),
		Lessons:    handlers.NewLessonHandler(progressService, ttsService, log),
		Profile:    handlers.NewProfileHandler(progressService, settingsService, authService, log),
		Startup:    startup,
		AudioDir:   cfg.AudioDir,
	})

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.Logging(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	// Pronunciation audio is generated while the server already answers
	// /health with the startup progress
	startup.SetCurrentStep(handlers.StepAudio)
	if cfg.TTSOnStartup {
		if _, err := ttsService.BatchGenerate(ctx, content.SpeechPhrases(), ttsConcurrency); err != nil {
			log.Warn("Some pronunciation audio could not be generated", "error", err)
		}
	}
	startup.CompleteStep(handlers.StepAudio)
	startup.MarkReady()

	// Start background cleanup
	go progressService.RunCleanup(ctx, sessionCleanupInterval)
	go limiter.RunCleanup(ctx, rateLimitCleanupInterval)
	go cleanupExpiredPasswordResets(ctx, authService, log)

	<-ctx.Done()
	log.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
	if n := progressService.Flush(shutdownCtx); n > 0 {
		log.Warn("Profiles left unsaved at shutdown", "count", n)
	}
	if localBadges != nil {
		localBadges.Wait()
	}
}

// cleanupExpiredPasswordResets periodically removes expired reset tokens
func cleanupExpiredPasswordResets(ctx context.Context, authService *service.AuthService, log *logger.Logger) {
	ticker := time.NewTicker(resetCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authService.CleanupExpiredPasswordResets(ctx)
			if err != nil {
				log.Error("Error cleaning up password reset tokens", "error", err)
				continue
			}
			if n > 0 {
				log.Info("Expired password reset tokens cleaned up", "count", n)
			}
		}
	}
}
