package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes events as JSON, keyed so that one aggregate's events
// stay on one partition in order.
type Producer struct {
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer}
}

func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// LoggingPublisher publishes through a Producer and logs failures instead of
// returning them. Events reach it only after they are stored, so a broker
// outage must not fail the payment that produced them.
type LoggingPublisher struct {
	producer *Producer
	logger   zerolog.Logger
}

func NewLoggingPublisher(producer *Producer, logger zerolog.Logger) *LoggingPublisher {
	return &LoggingPublisher{producer: producer, logger: logger.With().Str("component", "kafka-publisher").Logger()}
}

func (p *LoggingPublisher) Publish(ctx context.Context, key string, event any) error {
	if err := p.producer.Publish(ctx, key, event); err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("publish event")
	}
	return nil
}
