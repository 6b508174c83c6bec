package main

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/ironbrothers/ironbrothers/auth"
	"github.com/ironbrothers/ironbrothers/config"
	"github.com/ironbrothers/ironbrothers/crypto"
	"github.com/ironbrothers/ironbrothers/email"
	"github.com/ironbrothers/ironbrothers/media"
	"github.com/ironbrothers/ironbrothers/middleware"
	"github.com/ironbrothers/ironbrothers/ratelimit"
	"github.com/ironbrothers/ironbrothers/redis"
	"github.com/ironbrothers/ironbrothers/store"
)

const currentVersion = "0.1.0"

var buildstamp = "dev"

func main() {
	configFile := flag.String("config", "ironbrothers.yaml", "Path to config file")
	initDB := flag.Bool("init-db", false, "Initialize database schema")
	generateKeys := flag.Bool("generate-keys", false, "Generate secure cryptographic keys and exit")
	flag.Parse()

	if *generateKeys {
		printGeneratedKeys()
		return
	}

	fmt.Printf("Iron Brothers v%s (build: %s)\n", currentVersion, buildstamp)

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := store.New(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	if *initDB {
		fmt.Println("Initializing database schema...")
		if err := db.InitSchema(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize schema: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Schema initialized")
	}

	version, err := db.GetSchemaVersion()
	if err != nil {
		fmt.Println("Warning: Could not get schema version (run with -init-db to initialize)")
	} else {
		fmt.Printf("Schema version: %d\n", version)
	}

	tokenKey, err := base64.StdEncoding.DecodeString(cfg.Auth.TokenKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode token key: %v\n", err)
		os.Exit(1)
	}
	authService := auth.New(auth.Config{
		TokenKey:      tokenKey,
		SessionExpiry: time.Duration(cfg.Auth.SessionExpireIn) * time.Second,
		RefreshExpiry: time.Duration(cfg.Auth.RefreshExpireIn) * time.Second,
	})
	validator := auth.NewValidator(cfg.Auth.MinPasswordLength)

	// Redis is optional in development; without it refresh tokens are not
	// allowlisted and the council works single-node only.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			NodeID:   cfg.Redis.NodeID,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to Redis: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		fmt.Printf("Connected to Redis (node: %s)\n", cfg.Redis.NodeID)
	}

	hub := NewHub()
	hub.SetRedis(redisClient)
	go hub.Run()

	var pubsubCancel context.CancelFunc
	if redisClient != nil {
		var pubsubCtx context.Context
		pubsubCtx, pubsubCancel = context.WithCancel(context.Background())

		councilPubsub := redisClient.NewPubSub(hub.HandlePubSubMessage)
		if err := councilPubsub.Subscribe(pubsubCtx, "council"); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to subscribe to council channel: %v\n", err)
			os.Exit(1)
		}
		go councilPubsub.Listen(pubsubCtx)
	}

	encryptor, err := crypto.NewEncryptorFromBase64(cfg.Database.EncryptionKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize encryptor: %v\n", err)
		os.Exit(1)
	}

	emailService := email.New(email.Config{
		Enabled:  cfg.Email.Enabled,
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
		AppURL:   cfg.Email.BaseURL,
	})

	inviteKey, err := base64.StdEncoding.DecodeString(cfg.Auth.InviteKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode invite key: %v\n", err)
		os.Exit(1)
	}
	inviteTokenGen, err := crypto.NewInviteTokenGenerator(inviteKey, 7*24*time.Hour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize invite token generator: %v\n", err)
		os.Exit(1)
	}

	mediaProcessor := media.NewProcessor(media.Config{
		UploadPath:    cfg.Media.UploadDir,
		MaxUploadSize: cfg.Media.MaxSize,
	})

	loginLimiter := ratelimit.New(cfg.Auth.LoginRateLimit, time.Minute)

	handlers := NewHandlers(db, authService, validator, redisClient, hub,
		encryptor, emailService, inviteTokenGen, mediaProcessor, loginLimiter, cfg)

	srv := NewServer(hub, cfg, handlers)
	router := mux.NewRouter()
	srv.SetupRoutes(router)

	corsMiddleware := middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Requested-With"},
		MaxAge:         86400,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      corsMiddleware(router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		fmt.Printf("Listening on %s (timeouts: read=%ds, write=%ds, idle=%ds)\n",
			cfg.Server.Listen, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "HTTP server error: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if pubsubCancel != nil {
		pubsubCancel()
	}

	hub.Shutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "HTTP server shutdown error: %v\n", err)
		httpServer.Close()
	}

	fmt.Println("Server stopped")
}

// generateSecureKey generates a cryptographically secure random key.
func generateSecureKey(bytes int) string {
	key := make([]byte, bytes)
	if _, err := cryptorand.Read(key); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate secure key: %v\n", err)
		os.Exit(1)
	}
	return base64.StdEncoding.EncodeToString(key)
}

// printGeneratedKeys outputs secure keys for configuration.
func printGeneratedKeys() {
	fmt.Println("# Generated secure keys for Iron Brothers configuration")
	fmt.Println("# Copy these values to your ironbrothers.yaml or set as environment variables")
	fmt.Println("#")
	fmt.Println("# WARNING: These keys are generated fresh each time.")
	fmt.Println("# Changing keys after deployment will invalidate existing data!")
	fmt.Println("")
	fmt.Println("# Environment variables (recommended for production):")
	fmt.Printf("export TOKEN_KEY='%s'\n", generateSecureKey(32))
	fmt.Printf("export INVITE_KEY='%s'\n", generateSecureKey(32))
	fmt.Printf("export ENCRYPTION_KEY='%s'\n", generateSecureKey(32))
	fmt.Println("")
	fmt.Println("# Or YAML configuration:")
	fmt.Println("auth:")
	fmt.Printf("  token_key: %s\n", generateSecureKey(32))
	fmt.Printf("  invite_key: %s\n", generateSecureKey(32))
	fmt.Println("database:")
	fmt.Printf("  encryption_key: %s\n", generateSecureKey(32))
}
