package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ms-fyyur/internal/auth"
	"ms-fyyur/internal/cache"
	"ms-fyyur/internal/config"
	"ms-fyyur/internal/database"
	"ms-fyyur/internal/kafka"
	"ms-fyyur/internal/logger"
	"ms-fyyur/internal/trivia"
	trivia_db "ms-fyyur/internal/trivia/db"
	"ms-fyyur/internal/trivia/trivia_api"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(logger.Options{Service: "trivia", Dir: cfg.Log.Dir, Color: cfg.Log.Color})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("APP", "Starting Trivia API")
	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	ctx := context.Background()

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Database.AutoSchema {
		if err := database.CreateSchema(ctx, bunDB); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to create schema: %v", err))
		}
	}
	if cfg.Database.Seed {
		if err := database.Seed(ctx, bunDB); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to seed: %v", err))
		}
	}

	// A nil interface, not a nil *CategoryCache, keeps the service off the cache.
	var categoryCache trivia.CategoryCache
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, log)
		if err != nil {
			log.Warn("REDIS", fmt.Sprintf("Category cache disabled: %v", err))
		} else {
			defer client.Close()
			categoryCache = cache.NewCategoryCache(client, cfg.Redis.CategoryTTL)
		}
	} else {
		log.Info("REDIS", "REDIS_ADDR not set, category cache disabled")
	}

	events := kafka.NewPublisher(ctx, cfg.Kafka, trivia.Topics, log)
	defer events.Close()

	guard, err := auth.NewGuard(ctx, cfg.Auth.OIDCIssuer, log)
	if err != nil {
		log.Fatal("AUTH", err.Error())
	}

	gin.SetMode(cfg.Trivia.GinMode)
	service := trivia.NewTriviaService(&trivia_db.DB{Bun: bunDB}, categoryCache, events, log)
	router := trivia_api.NewRouter(trivia_api.NewHandler(service, guard, log))

	server := &http.Server{
		Addr:         cfg.Trivia.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Trivia API running on %s", cfg.Trivia.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Trivia API shutdown complete")
	}
}
