package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ms-fyyur/internal/booking"
	"ms-fyyur/internal/config"
	"ms-fyyur/internal/kafka"
	"ms-fyyur/internal/logger"
	"ms-fyyur/internal/trivia"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"
)

// event-log tails the booking and trivia topics into the service log.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(logger.Options{Service: "event-log", Dir: cfg.Log.Dir, Color: cfg.Log.Color})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if !cfg.Kafka.Enabled {
		log.Fatal("KAFKA", "KAFKA_ENABLED is false, nothing to tail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	topics := append(append([]string{}, booking.Topics...), trivia.Topics...)
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topics, log)
	defer consumer.Close()

	log.Info("KAFKA", fmt.Sprintf("Tailing %v as group %s", topics, cfg.Kafka.GroupID))
	err = consumer.Run(ctx, func(ctx context.Context, msg kafkago.Message) error {
		log.LogKafka("RECEIVED", msg.Topic, fmt.Sprintf("key=%s value=%s", msg.Key, msg.Value))
		return nil
	})
	if err != nil {
		log.Fatal("KAFKA", err.Error())
	}
	log.Info("APP", "Event log stopped")
}
