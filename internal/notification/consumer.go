package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	entity "game-exchange/internal/domain"
	"game-exchange/internal/logger"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the subset of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// Consumer turns notifications read from Kafka into email deliveries. The
// mailer here is the log: each message is rendered and logged.
type Consumer struct {
	reader MessageReader
	log    *logger.Logger
}

func NewConsumer(reader MessageReader, log *logger.Logger) *Consumer {
	return &Consumer{reader: reader, log: log.With("component", "notification.Consumer")}
}

// Run blocks until ctx is cancelled or the reader fails for good.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("email consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.log.Info("email consumer stopping")
				return nil
			}
			return fmt.Errorf("read notification: %w", err)
		}

		var n entity.Notification
		if err := json.Unmarshal(msg.Value, &n); err != nil {
			c.log.Warn("skipping malformed notification", "offset", msg.Offset, "err", err)
			continue
		}
		if len(n.Recipients) == 0 {
			c.log.Warn("skipping notification without recipients", "offset", msg.Offset, "type", n.Type)
			continue
		}
		c.log.Info("email sent",
			"type", n.Type,
			"recipients", n.Recipients,
			"subject", n.Subject,
			"body", RenderEmail(n),
		)
	}
}

func (c *Consumer) Close() error { return c.reader.Close() }

// RenderEmail formats the message part of a notification as plain text.
// Addresses are left out; they travel in the recipients field only.
func RenderEmail(n entity.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n\n", n.Subject)
	b.WriteString(n.Body)
	return b.String()
}
