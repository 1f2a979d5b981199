package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-server/events"
	"salon-server/models"
)

type fakeChannel struct {
	mu   sync.Mutex
	keys []string
	body [][]byte
	sent chan struct{}
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.body = append(f.body, msg.Body)
	f.mu.Unlock()
	f.sent <- struct{}{}
	return nil
}

func (f *fakeChannel) Close() error { return nil }

type fakeAck struct {
	acked, nacked, requeued int
}

func (a *fakeAck) Ack(uint64, bool) error { a.acked++; return nil }
func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}
func (a *fakeAck) Reject(uint64, bool) error { return nil }

type captureNotifier struct {
	subjects []string
	messages []string
}

func (c *captureNotifier) Notify(subject, message string) error {
	c.subjects = append(c.subjects, subject)
	c.messages = append(c.messages, message)
	return nil
}

func TestPublisherForwardsWithRoutingKey(t *testing.T) {
	ch := &fakeChannel{sent: make(chan struct{}, 4)}
	p := newPublisher(ch, "salon.events", 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	b := &models.Booking{ID: "b1", Status: models.BookingStatusSeen}
	p.Forward(events.NewStatusChange(b, models.BookingStatusPending))

	select {
	case <-ch.sent:
	case <-time.After(time.Second):
		t.Fatal("event was not published")
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	assert.Equal(t, []string{"booking.status_changed"}, ch.keys)

	var got events.Event
	require.NoError(t, json.Unmarshal(ch.body[0], &got))
	assert.Equal(t, models.BookingStatusPending, got.PreviousStatus)
}

func TestPublisherDropsWhenFull(t *testing.T) {
	p := newPublisher(&fakeChannel{sent: make(chan struct{}, 4)}, "x", 1)
	ev := events.Event{Kind: models.KindOrder, Type: events.Created}
	p.Forward(ev)
	p.Forward(ev)
	assert.Equal(t, uint64(1), p.Dropped())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	p.Forward(ev)
}

func TestHandleDelivery(t *testing.T) {
	body, err := json.Marshal(events.Event{ID: "e1", Kind: models.KindBooking, Type: events.Created})
	require.NoError(t, err)

	ack := &fakeAck{}
	handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: body}, func(context.Context, events.Event) error {
		return nil
	})
	assert.Equal(t, 1, ack.acked)

	failing := func(context.Context, events.Event) error { return errors.New("telegram down") }

	ack = &fakeAck{}
	handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: body}, failing)
	assert.Equal(t, 1, ack.requeued)

	ack = &fakeAck{}
	handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: true}, failing)
	assert.Equal(t, 1, ack.nacked)
	assert.Zero(t, ack.requeued)

	ack = &fakeAck{}
	handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{")}, failing)
	assert.Equal(t, 1, ack.nacked)
	assert.Zero(t, ack.requeued)
}

func TestDescribe(t *testing.T) {
	b := &models.Booking{ID: "b1", CustomerName: "Asha", Phone: "98765", ServiceName: "Haircut",
		Date: "2026-10-20", Time: "10:30", Status: models.BookingStatusPending}
	subject, message, ok := Describe(events.New(events.Created, b))
	require.True(t, ok)
	assert.Equal(t, "📅 New booking", subject)
	assert.Equal(t, "Asha (98765) booked Haircut on 2026-10-20 at 10:30", message)

	o := &models.Order{ID: "o1", CustomerName: "Meena", Phone: "123", TotalAmount: decimal.NewFromInt(1300),
		Items: []models.OrderItem{{Quantity: 2}, {Quantity: 1}}}
	_, message, ok = Describe(events.New(events.Created, o))
	require.True(t, ok)
	assert.Equal(t, "Meena (123) ordered 3 item(s), total 1300.00", message)

	o.Status = models.OrderStatusProcessing
	subject, message, ok = Describe(events.NewStatusChange(o, models.OrderStatusPending))
	require.True(t, ok)
	assert.Equal(t, "🔄 Order status changed", subject)
	assert.Contains(t, message, "Pending → Processing")

	_, _, ok = Describe(events.New(events.Updated, b))
	assert.False(t, ok)
	_, _, ok = Describe(events.New(events.Created, &models.Service{ID: "s1"}))
	assert.False(t, ok)
}

func TestNotifyHandlerSkipsQuietEvents(t *testing.T) {
	n := &captureNotifier{}
	h := NotifyHandler(n)

	e := &models.Enquiry{ID: "q1", Name: "Ravi", Email: "ravi@example.com", Type: "Franchise", Message: "Hello"}
	require.NoError(t, h(context.Background(), events.New(events.Created, e)))
	require.NoError(t, h(context.Background(), events.New(events.Deleted, e)))

	require.Len(t, n.subjects, 1)
	assert.Equal(t, "Ravi <ravi@example.com> about Franchise: Hello", n.messages[0])
	assert.NoError(t, LogNotifier{}.Notify("x", "y"))
}

type fakeSession struct {
	block  bool
	closed bool
}

func (s *fakeSession) Queue() string { return "test" }

func (s *fakeSession) Run(ctx context.Context, _ Handler) error {
	if s.block {
		<-ctx.Done()
	}
	return nil
}

func (s *fakeSession) Close() error { s.closed = true; return nil }

func TestConsumeReconnectsAfterChannelClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sessions []*fakeSession
	connect := func(context.Context) (session, error) {
		s := &fakeSession{}
		if len(sessions) == 2 {
			s.block = true
			cancel()
		}
		sessions = append(sessions, s)
		return s, nil
	}

	err := consumeLoop(ctx, connect, time.Millisecond, func(context.Context, events.Event) error { return nil })
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	for _, s := range sessions {
		assert.True(t, s.closed)
	}
}

func TestConsumeReturnsConnectError(t *testing.T) {
	boom := errors.New("boom")
	err := consumeLoop(context.Background(), func(context.Context) (session, error) {
		return nil, boom
	}, time.Millisecond, nil)
	assert.ErrorIs(t, err, boom)
}
