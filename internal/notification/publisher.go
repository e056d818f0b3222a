package notification

import (
	"context"
	"sync"
	"time"

	entity "game-exchange/internal/domain"
	"game-exchange/internal/logger"
)

const (
	sendTimeout  = 5 * time.Second
	sendAttempts = 3
	retryBackoff = 200 * time.Millisecond
)

// Publisher queues notifications for a single worker that forwards them to
// the gateway. Publish never blocks the caller; a full queue drops the message.
type Publisher struct {
	gateway Gateway
	log     *logger.Logger
	queue   chan entity.Notification
	done    chan struct{}

	mu     sync.RWMutex
	closed bool

	backoff time.Duration
}

func NewPublisher(gateway Gateway, buffer int, log *logger.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 1
	}
	p := &Publisher{
		gateway: gateway,
		log:     log.With("component", "notification.Publisher"),
		queue:   make(chan entity.Notification, buffer),
		done:    make(chan struct{}),
		backoff: retryBackoff,
	}
	go p.run()
	return p
}

// Publish reports whether msg was queued.
func (p *Publisher) Publish(msg entity.Notification) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- msg:
		return true
	default:
		p.log.Warn("notification queue full, dropping message", "type", msg.Type)
		return false
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		p.deliver(msg)
	}
}

func (p *Publisher) deliver(msg entity.Notification) {
	var err error
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err = p.gateway.Send(ctx, msg)
		cancel()
		if err == nil {
			return
		}
		p.log.Warn("notification send failed", "type", msg.Type, "attempt", attempt, "err", err)
		if attempt < sendAttempts {
			time.Sleep(p.backoff * time.Duration(attempt))
		}
	}
	p.log.Error("notification delivery gave up", "type", msg.Type, "err", err)
}

// Close stops accepting messages, drains the queue, then closes the gateway.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.gateway.Close()
}
