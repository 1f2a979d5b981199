package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"salon-server/events"
)

const publishTimeout = 5 * time.Second

// channel is the part of *amqp.Channel the publisher uses
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher forwards change events to a topic exchange. Forward only
// enqueues; Run drains the queue onto the broker.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string

	mu      sync.Mutex
	queue   chan events.Event
	closed  bool
	dropped uint64
}

// NewPublisher dials url and declares a durable topic exchange.
func NewPublisher(url, exchange string, buffer int) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	p := newPublisher(ch, exchange, buffer)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 100
	}
	return &Publisher{ch: ch, exchange: exchange, queue: make(chan events.Event, buffer)}
}

// Forward queues ev for publishing. A full queue drops the event.
func (p *Publisher) Forward(ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- ev:
	default:
		p.dropped++
		log.Printf("⚠️ Relay queue is full, dropping %s for %s %s", ev.Type, ev.Kind, ev.EntityID)
	}
}

// Run publishes queued events until ctx is cancelled or the publisher is
// closed. Broker errors are logged and the event is dropped.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-p.queue:
			if !ok {
				return
			}
			pctx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := p.PublishJSON(pctx, ev.RoutingKey(), ev); err != nil {
				log.Printf("❌ Failed to relay %s: %v", ev.RoutingKey(), err)
			}
			cancel()
		}
	}
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         b,
	})
}

func (p *Publisher) Dropped() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Close stops accepting events and closes the broker connection. Events
// still queued are discarded.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
