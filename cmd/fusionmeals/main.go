package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/fusionmeals/internal/amazon"
	"github.com/dukerupert/fusionmeals/internal/backup"
	"github.com/dukerupert/fusionmeals/internal/billing/stripe"
	"github.com/dukerupert/fusionmeals/internal/database"
	"github.com/dukerupert/fusionmeals/internal/email"
	"github.com/dukerupert/fusionmeals/internal/llm"
	"github.com/dukerupert/fusionmeals/internal/logging"
	"github.com/dukerupert/fusionmeals/internal/metrics"
	"github.com/dukerupert/fusionmeals/internal/push"
	"github.com/dukerupert/fusionmeals/internal/server"
)

const envPrefix = "FUSION_"

func env(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := env(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring invalid integer setting", "key", envPrefix+key, "value", v)
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(env("LOG_LEVEL", "info"), env("LOG_FORMAT", "text"))

	port := env("PORT", "8000")
	dbPath := env("DB_PATH", "fusionmeals.db")
	frontendURL := env("FRONTEND_URL", "http://localhost:3000")
	secureCookies := strings.HasPrefix(frontendURL, "https://")

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	m := metrics.New()

	apiKey := env("OPENAI_API_KEY", os.Getenv("OPENAI_API_KEY"))
	llmOpts := []llm.Option{
		llm.WithLogger(logger.With("component", "llm")),
		llm.WithObserver(m.ObserveLLM),
	}
	if baseURL := env("OPENAI_BASE_URL", ""); baseURL != "" {
		llmOpts = append(llmOpts, llm.WithBaseURL(baseURL))
	}
	llmClient := llm.NewClient(apiKey, llmOpts...)

	var completions llm.Completions
	var images llm.Images
	if llmClient.Configured() {
		completions = llmClient
		images = llmClient
	} else {
		slog.Warn("OPENAI_API_KEY not set, AI features disabled")
	}

	sessionSecret := env("SESSION_SECRET", "")
	if sessionSecret == "" {
		sessionSecret = randomSecret()
		slog.Warn("FUSION_SESSION_SECRET not set, OAuth state will not survive restarts")
	}
	oauth := amazon.NewOAuth(amazon.OAuthConfig{
		ClientID:      env("AMAZON_CLIENT_ID", ""),
		ClientSecret:  env("AMAZON_CLIENT_SECRET", ""),
		RedirectURL:   env("AMAZON_REDIRECT_URL", ""),
		SessionSecret: sessionSecret,
	})
	oauth.SetSecureCookies(secureCookies)

	cfg := server.Config{
		Completions: completions,
		Images:      images,
		Email:       email.NewClient(env("POSTMARK_TOKEN", ""), env("EMAIL_FROM", "")),
		Stripe: stripe.NewClient(stripe.Config{
			SecretKey:     env("STRIPE_SECRET_KEY", ""),
			WebhookSecret: env("STRIPE_WEBHOOK_SECRET", ""),
			PriceID:       env("STRIPE_PRICE_ID", ""),
			SuccessURL:    env("STRIPE_SUCCESS_URL", frontendURL+"/subscription/success"),
			CancelURL:     env("STRIPE_CANCEL_URL", frontendURL+"/subscription/upgrade"),
		}),
		AmazonOAuth: oauth,
		Push: push.Config{
			VAPIDPublicKey:  env("VAPID_PUBLIC_KEY", ""),
			VAPIDPrivateKey: env("VAPID_PRIVATE_KEY", ""),
		},
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  env("S3_ENDPOINT", ""),
				Bucket:    env("S3_BUCKET", ""),
				Region:    env("S3_REGION", ""),
				AccessKey: env("S3_ACCESS_KEY", ""),
				SecretKey: env("S3_SECRET_KEY", ""),
			},
			DBPath:        dbPath,
			Passphrase:    env("BACKUP_PASSPHRASE", ""),
			Hour:          envInt("BACKUP_HOUR", 3),
			RetentionDays: envInt("BACKUP_RETENTION_DAYS", 30),
		},
		Metrics:       m,
		CORSOrigins:   splitList(env("CORS_ORIGINS", frontendURL)),
		FrontendURL:   frontendURL,
		SecureCookies: secureCookies,
		AdminToken:    env("ADMIN_TOKEN", ""),

		TrustedProxies: splitList(env("TRUSTED_PROXIES", "")),
	}

	srv, err := server.New(db, cfg, logger)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Weekly meal plans can take minutes to generate.
		WriteTimeout: 4 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Background cleanup goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				srv.RateLimiter().Cleanup(time.Hour)
			case <-bgCtx.Done():
				return
			}
		}
	}()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(bgCtx)
		defer sched.Stop()
	} else {
		slog.Info("VAPID keys not set, pantry reminders disabled")
	}

	srv.BackupManager().Start(bgCtx)
	defer srv.BackupManager().Stop()

	go func() {
		slog.Info("fusionmeals starting", "addr", ":"+port, "db", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	bgCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
