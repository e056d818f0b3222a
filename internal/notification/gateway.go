// Package notification delivers offer events to users through a pluggable
// gateway (Kafka, Redis pub/sub or the log) behind a non-blocking publisher.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entity "game-exchange/internal/domain"
	"game-exchange/internal/logger"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// Gateway makes one delivery attempt per Send.
type Gateway interface {
	Send(ctx context.Context, msg entity.Notification) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer the gateway uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaGateway struct {
	writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaGateway(writer MessageWriter) *KafkaGateway {
	return &KafkaGateway{writer: writer}
}

func (g *KafkaGateway) Send(ctx context.Context, msg entity.Notification) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	err = g.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Type),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write notification to kafka: %w", err)
	}
	return nil
}

func (g *KafkaGateway) Close() error { return g.writer.Close() }

// RedisPublisher is the subset of *redis.Client the gateway uses.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

type RedisGateway struct {
	client  RedisPublisher
	channel string
}

func NewRedisGateway(client RedisPublisher, channel string) *RedisGateway {
	return &RedisGateway{client: client, channel: channel}
}

func (g *RedisGateway) Send(ctx context.Context, msg entity.Notification) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := g.client.Publish(ctx, g.channel, value).Err(); err != nil {
		return fmt.Errorf("publish notification to redis: %w", err)
	}
	return nil
}

func (g *RedisGateway) Close() error { return g.client.Close() }

// LogGateway writes notifications to the log instead of a broker.
type LogGateway struct {
	log *logger.Logger
}

func NewLogGateway(log *logger.Logger) *LogGateway {
	return &LogGateway{log: log.With("gateway", "log")}
}

func (g *LogGateway) Send(_ context.Context, msg entity.Notification) error {
	g.log.Info("notification",
		"type", msg.Type,
		"recipients", msg.Recipients,
		"subject", msg.Subject,
	)
	return nil
}

func (g *LogGateway) Close() error { return nil }
