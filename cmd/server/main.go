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

	"smartair-backend/internal/config"
	"smartair-backend/internal/database"
	"smartair-backend/internal/handlers"
	"smartair-backend/internal/middleware"
	"smartair-backend/internal/repository"
	"smartair-backend/internal/router"
	"smartair-backend/internal/services"
	"smartair-backend/internal/web"
	"smartair-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting SmartAir API...")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ──── Step 1: Load Configuration ────
	cfg := config.Load()
	log.Println("✓ Configuration loaded")

	policy, err := services.ParseStatusPolicy(cfg.StatusPolicy)
	if err != nil {
		log.Fatalf("✗ %v", err)
	}

	// ──── Step 2: Initialize Reservation Store ────
	var (
		store        repository.ReservationStore
		redisClients *database.RedisClients
	)
	switch cfg.Store {
	case "memory":
		store = repository.NewMemoryStore()
		log.Println("✓ In-memory reservation store (state is lost on restart)")
	case "redis":
		redisClients, err = database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()
		store = repository.NewRedisStore(redisClients.Store)
		log.Println("✓ Redis reservation store connected")
	case "postgres":
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		if err := database.RunMigrations(pool, database.Migrations()); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		store = repository.NewPostgresStore(pool)
		log.Println("✓ PostgreSQL reservation store connected")
	default:
		log.Fatalf("✗ Unknown store %q (want memory, redis or postgres)", cfg.Store)
	}

	// ──── Step 3: Start WebSocket Hub ────
	wsHub := newHub(redisClients)
	go wsHub.Run(ctx)
	log.Println("✓ WebSocket hub started")

	// ──── Step 4: Initialize Gemini Client ────
	persona, err := web.Persona(cfg.PersonaPath)
	if err != nil {
		log.Fatalf("✗ Persona load failed: %v", err)
	}

	var generator services.Generator
	geminiService, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	var cfgErr *services.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		log.Printf("⚠ Chat disabled: %v", cfgErr)
	case err != nil:
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	default:
		defer geminiService.Close()
		generator = geminiService
		log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)
	}

	// ──── Initialize Services & Handlers ────
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.NotifyEmail)
	reservationService := services.NewReservationService(store, policy, services.Publishers{wsHub, emailService})
	chatService := services.NewChatService(generator, persona)
	if !chatService.Configured() {
		log.Println("⚠ POST /chat will answer NOT_CONFIGURED until GEMINI_API_KEY is set")
	}

	reservationHandler := handlers.NewReservationHandler(reservationService)
	chatHandler := handlers.NewChatHandler(chatService)

	var chatLimiter *middleware.RateLimiter
	if cfg.ChatRateLimit > 0 {
		chatLimiter = middleware.NewRateLimiter(cfg.ChatRateLimit, time.Minute)
		defer chatLimiter.Stop()
	}

	// ──── Step 5: Start HTTP Server ────
	r := router.New(reservationHandler, chatHandler, wsHub, chatLimiter, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Printf("Shutting down (%d admin connections open)...", wsHub.ConnectionCount())
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("✓ SmartAir API ready on http://localhost:%s", cfg.Port)
	log.Printf("  Admin: http://localhost:%s/admin", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

func newHub(clients *database.RedisClients) *websocket.Hub {
	if clients == nil {
		return websocket.NewHub(nil)
	}
	return websocket.NewHub(clients.PubSub)
}
