package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	entity "game-exchange/internal/domain"
	"game-exchange/internal/logger"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var sample = entity.Notification{
	Type:       entity.NotificationOfferCreated,
	Recipients: []string{"alice@example.com"},
	Subject:    "New trade offer",
	Body:       "You received an offer.",
}

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestKafkaGatewaySend(t *testing.T) {
	w := &fakeWriter{}
	g := NewKafkaGateway(w)

	if err := g.Send(context.Background(), sample); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != entity.NotificationOfferCreated {
		t.Fatalf("expected key %q, got %q", entity.NotificationOfferCreated, w.msgs[0].Key)
	}
	var got entity.Notification
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatalf("value is not JSON: %v", err)
	}
	if got.Subject != sample.Subject || got.Recipients[0] != "alice@example.com" {
		t.Fatalf("unexpected payload %+v", got)
	}

	w.err = errors.New("broker unavailable")
	if err := g.Send(context.Background(), sample); err == nil {
		t.Fatalf("expected error from writer")
	}
}

type fakeRedis struct {
	channel string
	payload []byte
	err     error
}

func (r *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	r.channel = channel
	r.payload, _ = message.([]byte)
	return redis.NewIntResult(1, r.err)
}

func (r *fakeRedis) Close() error { return nil }

func TestRedisGatewaySend(t *testing.T) {
	r := &fakeRedis{}
	g := NewRedisGateway(r, "email_notifications")

	if err := g.Send(context.Background(), sample); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if r.channel != "email_notifications" {
		t.Fatalf("unexpected channel %q", r.channel)
	}
	if !strings.Contains(string(r.payload), `"type":"offer_created"`) {
		t.Fatalf("unexpected payload %s", r.payload)
	}

	r.err = errors.New("connection refused")
	if err := g.Send(context.Background(), sample); err == nil {
		t.Fatalf("expected error from redis")
	}
}

// blockingGateway holds every Send until release is closed.
type blockingGateway struct {
	release chan struct{}
	mu      sync.Mutex
	sent    []entity.Notification
	fails   int
}

func (g *blockingGateway) Send(_ context.Context, msg entity.Notification) error {
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fails > 0 {
		g.fails--
		return errors.New("transient")
	}
	g.sent = append(g.sent, msg)
	return nil
}

func (g *blockingGateway) Close() error { return nil }

func (g *blockingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

func TestPublisherDropsWhenFull(t *testing.T) {
	g := &blockingGateway{release: make(chan struct{})}
	p := NewPublisher(g, 1, logger.Nop())

	accepted := 0
	for i := 0; i < 10; i++ {
		if p.Publish(sample) {
			accepted++
		}
	}
	// One message may be held by the worker plus one in the buffer.
	if accepted < 1 || accepted > 2 {
		t.Fatalf("expected 1 or 2 accepted messages, got %d", accepted)
	}

	close(g.release)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if g.count() != accepted {
		t.Fatalf("expected %d delivered, got %d", accepted, g.count())
	}
	if p.Publish(sample) {
		t.Fatalf("publish after close must be refused")
	}
}

func TestPublisherRetriesTransientFailures(t *testing.T) {
	g := &blockingGateway{release: make(chan struct{}), fails: 2}
	close(g.release)
	p := NewPublisher(g, 4, logger.Nop())
	p.backoff = time.Millisecond

	if !p.Publish(sample) {
		t.Fatalf("expected message to be queued")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if g.count() != 1 {
		t.Fatalf("expected delivery after retries, got %d", g.count())
	}
}

type fakeReader struct {
	msgs []kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumerLogsEmailsAndSkipsMalformed(t *testing.T) {
	value, _ := json.Marshal(sample)
	noRecipients, _ := json.Marshal(entity.Notification{Type: "offer_created", Subject: "x"})
	reader := &fakeReader{msgs: []kafka.Message{
		{Value: []byte("{not json"), Offset: 1},
		{Value: noRecipients, Offset: 2},
		{Value: value, Offset: 3},
	}}

	core, logs := observer.New(zap.InfoLevel)
	c := NewConsumer(reader, logger.NewFromZap(zap.New(core)))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n := logs.FilterMessage("email sent").Len(); n != 1 {
		t.Fatalf("expected 1 email, got %d", n)
	}
	if n := logs.FilterMessage("skipping malformed notification").Len(); n != 1 {
		t.Fatalf("expected 1 malformed skip, got %d", n)
	}
	if n := logs.FilterMessage("skipping notification without recipients").Len(); n != 1 {
		t.Fatalf("expected 1 empty-recipient skip, got %d", n)
	}
}

func TestRenderEmail(t *testing.T) {
	got := RenderEmail(entity.Notification{
		Recipients: []string{"a@example.com", "b@example.com"},
		Subject:    "Trade offer accepted",
		Body:       "Enjoy your game.",
	})
	want := "Subject: Trade offer accepted\n\nEnjoy your game."
	if got != want {
		t.Fatalf("unexpected email:\n%s", got)
	}
}

func TestConsumerDoesNotLogRawAddresses(t *testing.T) {
	value, _ := json.Marshal(entity.Notification{
		Type:       entity.NotificationOfferCreated,
		Recipients: []string{"alice@example.com"},
		Subject:    "s",
		Body:       "b",
	})
	reader := &fakeReader{msgs: []kafka.Message{{Value: value, Offset: 1}}}

	core, logs := observer.New(zap.InfoLevel)
	c := NewConsumer(reader, logger.NewFromZap(zap.New(core)))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sent := logs.FilterMessage("email sent").All()
	if len(sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sent))
	}
	for key, val := range sent[0].ContextMap() {
		if strings.Contains(fmt.Sprint(val), "alice@example.com") {
			t.Fatalf("field %q carries a raw address: %v", key, val)
		}
	}
}
