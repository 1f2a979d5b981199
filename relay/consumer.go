package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"salon-server/events"
)

// Handler processes one relayed event. Returning an error requeues it once.
type Handler func(ctx context.Context, ev events.Event) error

type ConsumerConfig struct {
	URL      string
	Exchange string
	// Queue is ignored when Exclusive is set; the broker names the queue.
	Queue     string
	Bindings  []string
	Exclusive bool
	Prefetch  int
	Name      string
}

type Consumer struct {
	cfg   ConsumerConfig
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewConsumer connects, declares the exchange and queue, and binds the
// routing keys. A durable queue survives restarts; an exclusive one lives
// as long as the connection.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(format string, err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf(format, err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange: %w", err)
	}

	var q amqp.Queue
	if cfg.Exclusive {
		q, err = ch.QueueDeclare("", false, true, true, false, nil)
	} else {
		q, err = ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	}
	if err != nil {
		return fail("declare queue: %w", err)
	}

	bindings := cfg.Bindings
	if len(bindings) == 0 {
		bindings = []string{"#"}
	}
	for _, key := range bindings {
		if err := ch.QueueBind(q.Name, key, cfg.Exchange, false, nil); err != nil {
			return fail("bind queue: %w", err)
		}
	}

	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 8
	}
	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		return fail("set qos: %w", err)
	}

	return &Consumer{cfg: cfg, conn: conn, ch: ch, queue: q.Name}, nil
}

// ConnectWithRetry keeps calling NewConsumer until it succeeds or ctx ends.
func ConnectWithRetry(ctx context.Context, cfg ConsumerConfig, wait time.Duration) (*Consumer, error) {
	for {
		c, err := NewConsumer(cfg)
		if err == nil {
			return c, nil
		}
		log.Printf("⚠️ RabbitMQ connect failed: %v; retry in %s", err, wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// session is one connected consumer.
type session interface {
	Queue() string
	Run(ctx context.Context, h Handler) error
	Close() error
}

// Consume delivers events to h until ctx ends. When the broker closes the
// channel it reconnects after wait.
func Consume(ctx context.Context, cfg ConsumerConfig, wait time.Duration, h Handler) error {
	connect := func(ctx context.Context) (session, error) {
		return ConnectWithRetry(ctx, cfg, wait)
	}
	return consumeLoop(ctx, connect, wait, h)
}

func consumeLoop(ctx context.Context, connect func(context.Context) (session, error), wait time.Duration, h Handler) error {
	for {
		s, err := connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		log.Printf("📥 Consuming queue %s", s.Queue())

		err = s.Run(ctx, h)
		_ = s.Close()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Printf("⚠️ Consumer stopped: %v; reconnecting in %s", err, wait)
		} else {
			log.Printf("⚠️ RabbitMQ channel closed; reconnecting in %s", wait)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

func (c *Consumer) Queue() string {
	return c.queue
}

// Run consumes until ctx is cancelled or the channel closes.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.queue, c.cfg.Name, false, c.cfg.Exclusive, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			handleDelivery(ctx, d, h)
		}
	}
}

// handleDelivery acks handled events and nacks the rest. Bodies that are
// not events are never requeued.
func handleDelivery(ctx context.Context, d amqp.Delivery, h Handler) {
	var ev events.Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		log.Printf("❌ Discarding malformed event key=%s: %v", d.RoutingKey, err)
		_ = d.Nack(false, false)
		return
	}
	if err := h(ctx, ev); err != nil {
		// One retry per message; a second failure drops it.
		requeue := !d.Redelivered
		log.Printf("⚠️ Handler failed key=%s: %v (requeue=%v)", d.RoutingKey, err, requeue)
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
