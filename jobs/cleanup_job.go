package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// LimiterPruner drops rate limiters that have gone quiet
type LimiterPruner interface {
	Cleanup(maxIdle time.Duration) int
}

// CartPruner drops abandoned session carts
type CartPruner interface {
	Prune(now time.Time) int
}

// TokenPruner deletes refresh tokens that can no longer be used
type TokenPruner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// CleanupStats reports what one cleanup pass removed
type CleanupStats struct {
	Limiters int
	Carts    int
	Tokens   int64
}

// CleanupJob periodically releases memory and rows nobody will use again
type CleanupJob struct {
	limiters    LimiterPruner
	carts       CartPruner
	tokens      TokenPruner
	interval    time.Duration
	limiterIdle time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewCleanupJob creates a new cleanup job. Any pruner may be nil.
func NewCleanupJob(limiters LimiterPruner, carts CartPruner, tokens TokenPruner, interval time.Duration) *CleanupJob {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CleanupJob{
		limiters:    limiters,
		carts:       carts,
		tokens:      tokens,
		interval:    interval,
		limiterIdle: time.Hour,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the cleanup job
func (j *CleanupJob) Start() {
	j.wg.Add(1)
	go j.run()
	log.Println("🚀 Cleanup job started")
}

// Stop stops the cleanup job and waits for a running pass to finish
func (j *CleanupJob) Stop() {
	j.once.Do(func() {
		close(j.stopChan)
		j.wg.Wait()
		log.Println("🛑 Cleanup job stopped")
	})
}

func (j *CleanupJob) run() {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce(context.Background())
		case <-j.stopChan:
			return
		}
	}
}

// RunOnce performs a single cleanup pass.
func (j *CleanupJob) RunOnce(ctx context.Context) CleanupStats {
	var stats CleanupStats
	if j.limiters != nil {
		stats.Limiters = j.limiters.Cleanup(j.limiterIdle)
	}
	if j.carts != nil {
		stats.Carts = j.carts.Prune(time.Now())
	}
	if j.tokens != nil {
		n, err := j.tokens.CleanupExpiredTokens(ctx)
		if err != nil {
			log.Printf("❌ Error cleaning up refresh tokens: %v", err)
		}
		stats.Tokens = n
	}

	if stats.Limiters+stats.Carts > 0 || stats.Tokens > 0 {
		log.Printf("🧹 Cleanup removed %d limiters, %d carts, %d refresh tokens", stats.Limiters, stats.Carts, stats.Tokens)
	}
	return stats
}
