package kafka

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key, value []byte) error

// handlerAttempts bounds how often one message is handed to the handler.
const handlerAttempts = 3

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  messageReader
	logger  zerolog.Logger
	backoff time.Duration
}

func NewConsumer(brokers []string, topic, groupID string, logger zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{
		reader:  reader,
		logger:  logger.With().Str("topic", topic).Str("group", groupID).Logger(),
		backoff: time.Second,
	}
}

// Consume hands every message to handler and commits it afterwards. A
// message the handler keeps failing on is logged and committed so the group
// does not stall.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error().Err(err).Msg("fetch message")
			if err := wait(ctx, c.backoff); err != nil {
				return err
			}
			continue
		}

		c.handle(ctx, handler, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("commit message")
		}
	}
}

func (c *Consumer) handle(ctx context.Context, handler MessageHandler, msg kafka.Message) {
	var err error
	for attempt := 1; attempt <= handlerAttempts; attempt++ {
		if err = handler(ctx, msg.Key, msg.Value); err == nil {
			return
		}
		if attempt < handlerAttempts {
			if wait(ctx, c.backoff*time.Duration(attempt)) != nil {
				return
			}
		}
	}
	c.logger.Error().Err(err).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Str("key", string(msg.Key)).
		Msg("giving up on message")
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
