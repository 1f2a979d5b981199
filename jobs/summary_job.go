package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"salon-server/models"
	"salon-server/services"
	"salon-server/websocket"
)

// SummarySource computes the admin notification summary
type SummarySource interface {
	Notifications(ctx context.Context) (*services.NotificationSummary, error)
}

// SummaryTarget is where summaries are pushed and where change events come
// from.
type SummaryTarget interface {
	Subscribe() *websocket.Observer
	Unsubscribe(*websocket.Observer)
	BroadcastMessage(*websocket.Message)
}

// SummaryJob keeps admin consoles' notification bells current. It has two
// independent triggers over the same read: every booking or enquiry change
// event, and a fixed tick that catches anything a dropped event missed.
type SummaryJob struct {
	source   SummarySource
	target   SummaryTarget
	interval time.Duration

	observer *websocket.Observer
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewSummaryJob(source SummarySource, target SummaryTarget, interval time.Duration) *SummaryJob {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &SummaryJob{source: source, target: target, interval: interval, stopChan: make(chan struct{})}
}

func (j *SummaryJob) Start() {
	j.observer = j.target.Subscribe()
	j.wg.Add(2)
	go j.onEvents()
	go j.onTick()
	log.Printf("🚀 Summary job started (every %s and on change)", j.interval)
}

func (j *SummaryJob) Stop() {
	j.once.Do(func() {
		close(j.stopChan)
		j.target.Unsubscribe(j.observer)
		j.wg.Wait()
		log.Println("🛑 Summary job stopped")
	})
}

func (j *SummaryJob) onEvents() {
	defer j.wg.Done()
	for ev := range j.observer.Events() {
		if ev.Kind != models.KindBooking && ev.Kind != models.KindEnquiry {
			continue
		}
		j.Push(context.Background())
	}
}

func (j *SummaryJob) onTick() {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.Push(context.Background())
		case <-j.stopChan:
			return
		}
	}
}

// Push recomputes the summary and sends it to every connected console.
func (j *SummaryJob) Push(ctx context.Context) {
	summary, err := j.source.Notifications(ctx)
	if err != nil {
		log.Printf("❌ Error computing notification summary: %v", err)
		return
	}
	j.target.BroadcastMessage(&websocket.Message{
		Type:      "summary",
		Timestamp: summary.GeneratedAt,
		Data:      summary,
	})
}
