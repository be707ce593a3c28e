package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ms-fyyur/internal/logger"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	Reader MessageReader
	Logger *logger.Logger
}

// NewConsumer joins groupID and reads every topic in topics.
func NewConsumer(brokers []string, groupID string, topics []string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    10e3, // 10KB
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{Reader: reader, Logger: log}
}

// Run hands each message to handle until ctx is cancelled or the reader is closed.
// A message is committed once handle returns, even when it failed.
func (c *Consumer) Run(ctx context.Context, handle func(context.Context, kafka.Message) error) error {
	c.Logger.Info("KAFKA", "🔄 Kafka consumer started")
	for {
		msg, err := c.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := handle(ctx, msg); err != nil {
			c.Logger.Error("KAFKA", fmt.Sprintf("Failed to handle %s message at offset %d: %v", msg.Topic, msg.Offset, err))
		}
		if err := c.Reader.CommitMessages(ctx, msg); err != nil {
			c.Logger.Warn("KAFKA", fmt.Sprintf("Failed to commit %s offset %d: %v", msg.Topic, msg.Offset, err))
		}
	}
}

func (c *Consumer) Close() error {
	return c.Reader.Close()
}
