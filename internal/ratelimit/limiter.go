package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour
)

type Config struct {
	PerMinute int `mapstructure:"per_minute"`
	PerHour   int `mapstructure:"per_hour"`
}

func DefaultConfig() Config {
	return Config{
		PerMinute: 10,
		PerHour:   50,
	}
}

// Decision is the outcome of an admission check. RetryAfterSeconds is set
// only on denial.
type Decision struct {
	Allowed           bool
	RetryAfterSeconds int
}

// Limiter bounds request volume per client over two sliding windows. The
// client map lock is held only for lookups; each client record carries its
// own mutex, so admission checks for different clients proceed in parallel.
type Limiter struct {
	mu      sync.RWMutex
	clients map[string]*clientRecord
	config  Config
	logger  *zap.Logger
	now     func() time.Time
}

type clientRecord struct {
	mu sync.Mutex
	// stamps holds admitted-request times within the last hour, oldest first.
	stamps []time.Time
}

func New(config Config, logger *zap.Logger) *Limiter {
	return &Limiter{
		clients: make(map[string]*clientRecord),
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Admit checks both windows for clientID and records the request when
// admitted. The minute window is checked first; its denial wins when both
// windows would trigger.
func (l *Limiter) Admit(clientID string) Decision {
	return l.admitAt(clientID, l.now())
}

func (l *Limiter) admitAt(clientID string, now time.Time) Decision {
	l.mu.RLock()
	rec, ok := l.clients[clientID]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		if rec, ok = l.clients[clientID]; !ok {
			rec = &clientRecord{}
			l.clients[clientID] = rec
		}
		l.mu.Unlock()
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	// Drop everything outside the hour window; what remains is the hour count.
	hourCut := now.Add(-hourWindow)
	keep := 0
	for keep < len(rec.stamps) && rec.stamps[keep].Before(hourCut) {
		keep++
	}
	if keep > 0 {
		remaining := make([]time.Time, len(rec.stamps)-keep)
		copy(remaining, rec.stamps[keep:])
		rec.stamps = remaining
	}

	minuteCut := now.Add(-minuteWindow)
	lastMinute := 0
	for i := len(rec.stamps) - 1; i >= 0 && !rec.stamps[i].Before(minuteCut); i-- {
		lastMinute++
	}

	if lastMinute >= l.config.PerMinute {
		l.logger.Warn("Rate limit exceeded (per minute)",
			zap.String("client_id", clientID),
			zap.Int("requests_last_minute", lastMinute),
		)
		return Decision{RetryAfterSeconds: int(minuteWindow.Seconds())}
	}
	if len(rec.stamps) >= l.config.PerHour {
		l.logger.Warn("Rate limit exceeded (per hour)",
			zap.String("client_id", clientID),
			zap.Int("requests_last_hour", len(rec.stamps)),
		)
		return Decision{RetryAfterSeconds: int(hourWindow.Seconds())}
	}

	rec.stamps = append(rec.stamps, now)
	return Decision{Allowed: true}
}

// EvictIdle removes clients whose newest request is older than cutoff and
// returns how many were removed. Keys are snapshotted under a read lock so
// concurrent Admit calls are never blocked behind a full scan.
func (l *Limiter) EvictIdle(cutoff time.Time) int {
	l.mu.RLock()
	var idle []string
	for id, rec := range l.clients {
		if rec.idleSince(cutoff) {
			idle = append(idle, id)
		}
	}
	l.mu.RUnlock()

	if len(idle) == 0 {
		return 0
	}

	removed := 0
	l.mu.Lock()
	for _, id := range idle {
		if rec, ok := l.clients[id]; ok && rec.idleSince(cutoff) {
			delete(l.clients, id)
			removed++
		}
	}
	l.mu.Unlock()
	return removed
}

func (r *clientRecord) idleSince(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stamps) == 0 || r.stamps[len(r.stamps)-1].Before(cutoff)
}

// RunSweeper drops idle client records on every tick until ctx is cancelled.
func (l *Limiter) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Rate limiter sweeper stopped")
			return
		case <-ticker.C:
			if removed := l.EvictIdle(l.now().Add(-maxIdle)); removed > 0 {
				l.logger.Info("Evicted idle rate limit records", zap.Int("removed", removed))
			}
		}
	}
}
