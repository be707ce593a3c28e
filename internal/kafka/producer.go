package kafka

import (
	"context"
	"fmt"
	"time"

	"ms-fyyur/internal/config"
	"ms-fyyur/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Publisher delivers domain events. Implemented by Producer and NopPublisher.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	Logger *logger.Logger
}

// NewProducer builds a writer without a fixed topic so every message names its own.
func NewProducer(brokers []string, clientID string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		Transport:              &kafka.Transport{ClientID: clientID},
	}
	return &Producer{Writer: writer, Logger: log}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	err := p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	p.Logger.LogKafka("PUBLISHED", topic, key)
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NopPublisher logs events instead of sending them; used when Kafka is disabled.
type NopPublisher struct {
	Logger *logger.Logger
}

func (n NopPublisher) Publish(_ context.Context, topic, key string, value []byte) error {
	n.Logger.LogKafka("SKIPPED", topic, fmt.Sprintf("%s %s", key, value))
	return nil
}

func (n NopPublisher) Close() error { return nil }

// NewPublisher returns a Producer when Kafka is enabled and a NopPublisher otherwise.
// Topic creation failures are logged; AllowAutoTopicCreation still covers most brokers.
func NewPublisher(ctx context.Context, cfg config.KafkaConfig, topics []string, log *logger.Logger) Publisher {
	if !cfg.Enabled {
		log.Info("KAFKA", "Kafka disabled, domain events are only logged")
		return NopPublisher{Logger: log}
	}

	log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers %v", cfg.Brokers))
	if err := EnsureTopicsExist(ctx, cfg.Brokers, topics); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		log.Info("KAFKA", "Required topics ensured successfully")
	}
	return NewProducer(cfg.Brokers, cfg.ClientID, log)
}
