package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"salon-server/events"
	"salon-server/models"
	"salon-server/services"
	"salon-server/websocket"
)

type countingPruner struct{ limiters, carts int }

func (p *countingPruner) Cleanup(time.Duration) int { p.limiters++; return 2 }
func (p *countingPruner) Prune(time.Time) int       { p.carts++; return 1 }

type failingTokens struct{}

func (failingTokens) CleanupExpiredTokens(context.Context) (int64, error) {
	return 0, errors.New("db down")
}

func TestCleanupRunOnce(t *testing.T) {
	p := &countingPruner{}
	job := NewCleanupJob(p, p, failingTokens{}, time.Hour)

	stats := job.RunOnce(context.Background())
	assert.Equal(t, CleanupStats{Limiters: 2, Carts: 1}, stats)

	job.Start()
	job.Stop()
	job.Stop()
}

type staticSource struct {
	mu    sync.Mutex
	calls int
}

func (s *staticSource) Notifications(context.Context) (*services.NotificationSummary, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return &services.NotificationSummary{Total: 2, GeneratedAt: time.Now()}, nil
}

// recordingHub is a real hub whose socket broadcasts are captured.
type recordingHub struct {
	*websocket.Hub
	mu   sync.Mutex
	sent []*websocket.Message
	got  chan struct{}
}

func (h *recordingHub) BroadcastMessage(msg *websocket.Message) {
	h.mu.Lock()
	h.sent = append(h.sent, msg)
	h.mu.Unlock()
	select {
	case h.got <- struct{}{}:
	default:
	}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no summary pushed")
	}
}

func TestSummaryPushedOnRelevantEvents(t *testing.T) {
	hub := &recordingHub{Hub: websocket.NewHub(8, 8), got: make(chan struct{}, 8)}
	src := &staticSource{}
	job := NewSummaryJob(src, hub, time.Hour)
	job.Start()
	defer job.Stop()

	hub.Publish(events.Event{Kind: models.KindProduct, Type: events.Created})
	hub.Publish(events.Event{Kind: models.KindBooking, Type: events.Created})
	waitFor(t, hub.got)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	assert.Len(t, hub.sent, 1)
	assert.Equal(t, "summary", hub.sent[0].Type)
}

func TestSummaryPushedOnTick(t *testing.T) {
	hub := &recordingHub{Hub: websocket.NewHub(8, 8), got: make(chan struct{}, 8)}
	job := NewSummaryJob(&staticSource{}, hub, 20*time.Millisecond)
	job.Start()
	waitFor(t, hub.got)
	job.Stop()
	job.Stop()
}
