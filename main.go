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
	"ms-fyyur/internal/booking"
	"ms-fyyur/internal/booking/booking_api"
	booking_db "ms-fyyur/internal/booking/db"
	"ms-fyyur/internal/booking/qr"
	"ms-fyyur/internal/config"
	"ms-fyyur/internal/database"
	"ms-fyyur/internal/kafka"
	"ms-fyyur/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(logger.Options{Service: "fyyur", Dir: cfg.Log.Dir, Color: cfg.Log.Color})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("APP", "Starting Fyyur booking site")
	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	ctx := context.Background()

	loc, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Database.AutoSchema {
		if err := database.CreateSchema(ctx, bunDB); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to create schema: %v", err))
		}
		log.Info("DATABASE", "Schema ensured from models")
	}
	if cfg.Database.Seed {
		if err := database.Seed(ctx, bunDB); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to seed: %v", err))
		}
	}

	events := kafka.NewPublisher(ctx, cfg.Kafka, booking.Topics, log)
	defer events.Close()

	guard, err := auth.NewGuard(ctx, cfg.Auth.OIDCIssuer, log)
	if err != nil {
		log.Fatal("AUTH", err.Error())
	}

	service := booking.NewBookingService(&booking_db.DB{Bun: bunDB}, events, loc, log)
	handler, err := booking_api.NewHandler(service, qr.NewGenerator(cfg.Booking.PublicURL), guard, log)
	if err != nil {
		log.Fatal("HTTP", fmt.Sprintf("Failed to load templates: %v", err))
	}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(log.Middleware)
	handler.RegisterRoutes(r)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Fyyur running on %s", cfg.Server.Port))
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
		log.Info("HTTP", "✅ Fyyur shutdown complete")
	}
}
