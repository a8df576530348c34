package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fittra/trailstack/internal/auth"
	"github.com/fittra/trailstack/internal/blob"
	"github.com/fittra/trailstack/internal/database"
	"github.com/fittra/trailstack/internal/logging"
	"github.com/fittra/trailstack/internal/push"
	"github.com/fittra/trailstack/internal/server"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	godotenv.Load()

	logger := logging.Setup(os.Getenv("TRAILSTACK_LOG_LEVEL"))

	port := envDefault("TRAILSTACK_PORT", "8080")
	dbPath := envDefault("TRAILSTACK_DB_PATH", "trailstack.db")
	baseURL := envDefault("TRAILSTACK_BASE_URL", "http://localhost:"+port)

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	codesPath := envDefault("TRAILSTACK_ACCESS_CODES", "access_codes.json")
	registry, err := auth.LoadRegistry(codesPath)
	if err != nil {
		log.Fatalf("failed to load access codes from %s: %v", codesPath, err)
	}
	logger.Info("access codes loaded", "path", codesPath, "roles", registry.Len())

	s3Cfg := blob.S3Config{
		Endpoint:      os.Getenv("TRAILSTACK_S3_ENDPOINT"),
		Bucket:        os.Getenv("TRAILSTACK_S3_BUCKET"),
		Region:        envDefault("TRAILSTACK_S3_REGION", "auto"),
		AccessKey:     os.Getenv("TRAILSTACK_S3_ACCESS_KEY"),
		SecretKey:     os.Getenv("TRAILSTACK_S3_SECRET_KEY"),
		PublicBaseURL: os.Getenv("TRAILSTACK_S3_PUBLIC_URL"),
	}
	var blobs blob.Store
	if s3Cfg.Configured() {
		blobs = blob.NewS3(s3Cfg)
		logger.Info("blob storage configured", "bucket", s3Cfg.Bucket)
	} else {
		blobs = blob.NewMemory()
		logger.Warn("S3 not configured, files will not survive restarts")
	}

	leadDays, _ := strconv.Atoi(envDefault("TRAILSTACK_REMINDER_LEAD_DAYS", "3"))

	srv := server.New(db, registry, blobs, server.Config{
		BaseURL:          baseURL,
		ReminderLeadDays: leadDays,
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("TRAILSTACK_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("TRAILSTACK_VAPID_PRIVATE_KEY"),
		},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
		logger.Info("departure reminders enabled", "lead_days", leadDays)
	}

	// Hourly housekeeping: expired sessions, stale rate limit entries, old
	// reminder dedup rows.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("cleanup sessions", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
				if err := srv.PushStore().CleanupSent(time.Now().AddDate(0, -6, 0)); err != nil {
					logger.Error("cleanup sent reminders", "error", err)
				}
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("trailstack listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
