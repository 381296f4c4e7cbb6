package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter is a fixed-window counter keyed by an arbitrary string, usually a
// client IP. It guards the workspace-create endpoint only.
type Limiter struct {
	window time.Duration
	limit  int

	mu      sync.Mutex
	buckets map[string]*bucket
	stopCh  chan struct{}
}

type bucket struct {
	windowStart time.Time
	count       int
}

// Result reports the outcome of a limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

// NewLimiter creates a limiter allowing limit hits per window per key.
func NewLimiter(window time.Duration, limit int) *Limiter {
	return &Limiter{
		window:  window,
		limit:   limit,
		buckets: make(map[string]*bucket),
		stopCh:  make(chan struct{}),
	}
}

// Allow records a hit for key and reports whether it is within the limit.
// A hit that is rejected does not consume budget.
func (l *Limiter) Allow(key string) Result {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.windowStart) >= l.window {
		b = &bucket{windowStart: now}
		l.buckets[key] = b
	}

	reset := l.window - now.Sub(b.windowStart)
	if b.count >= l.limit {
		return Result{Allowed: false, Limit: l.limit, Remaining: 0, ResetAfter: reset}
	}

	b.count++
	return Result{Allowed: true, Limit: l.limit, Remaining: l.limit - b.count, ResetAfter: reset}
}

// Start launches the janitor that drops buckets whose window has passed.
func (l *Limiter) Start() {
	ticker := time.NewTicker(l.window)
	go func() {
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-l.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the janitor.
func (l *Limiter) Stop() {
	close(l.stopCh)
}

func (l *Limiter) sweep() {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if now.Sub(b.windowStart) >= l.window {
			delete(l.buckets, key)
		}
	}
}

// ClientIP resolves the client address of a request, consulting in order:
// the first X-Forwarded-For entry, X-Real-IP, then the peer socket address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
