package ratelimit

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// Strategy defines the backoff intervals applied after throttled responses
type Strategy struct {
	Intervals  []time.Duration
	MaxStrikes int
}

// DefaultStrategy returns the backoff schedule for Street View throttling.
// The tile endpoint limits by IP when large areas are downloaded in a short
// window; short waits do not clear it, so the schedule escalates in minutes.
func DefaultStrategy() *Strategy {
	return &Strategy{
		Intervals: []time.Duration{
			5 * time.Minute,  // First retry after 5 mins
			10 * time.Minute, // Second retry after 10 mins
			15 * time.Minute, // Third retry after 15 mins
			20 * time.Minute, // Fourth retry after 20 mins
			30 * time.Minute, // Fifth+ retries after 30 mins
		},
		MaxStrikes: 10, // Maximum number of cool-downs before giving up
	}
}

// IsLimitStatus reports whether an HTTP status indicates upstream throttling.
func IsLimitStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusForbidden || // Google uses this for rate limits
		code == 509 // Bandwidth Limit Exceeded
}

// Event represents one throttling occurrence
type Event struct {
	Timestamp  time.Time
	StatusCode int
	Strike     int // 0 = first occurrence
	ResumeAt   time.Time
}

// Limiter tracks upstream throttling and imposes a cool-down between
// downloads. Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	strategy *Strategy
	current  *Event
	onLimit  func(event Event) // Callback for progress reporting
}

// NewLimiter creates a limiter. A nil strategy selects the default.
func NewLimiter(strategy *Strategy) *Limiter {
	if strategy == nil {
		strategy = DefaultStrategy()
	}
	return &Limiter{strategy: strategy}
}

// SetOnLimit sets the callback invoked when a new throttling event is recorded
func (l *Limiter) SetOnLimit(callback func(event Event)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onLimit = callback
}

// Record notes a throttled response and schedules the next allowed attempt.
// Repeated reports during an active cool-down keep the existing schedule;
// a throttled response after the cool-down expired escalates the backoff.
// It returns the remaining wait, or an error once the strike budget is
// exhausted.
func (l *Limiter) Record(statusCode int) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if l.current != nil && now.Before(l.current.ResumeAt) {
		// Same throttling wave, likely several concurrent downloads
		// failing together.
		return time.Until(l.current.ResumeAt), nil
	}

	strike := 0
	if l.current != nil {
		strike = l.current.Strike + 1
	}
	if strike >= l.strategy.MaxStrikes {
		return 0, fmt.Errorf("upstream rate limit persists after %d cool-downs", strike)
	}

	var interval time.Duration
	if strike < len(l.strategy.Intervals) {
		interval = l.strategy.Intervals[strike]
	} else {
		// Use last interval for all subsequent strikes
		interval = l.strategy.Intervals[len(l.strategy.Intervals)-1]
	}

	event := Event{
		Timestamp:  now,
		StatusCode: statusCode,
		Strike:     strike,
		ResumeAt:   now.Add(interval),
	}
	l.current = &event

	log.Printf("[RateLimit] throttled by upstream (HTTP %d, strike %d), pausing %s",
		statusCode, strike+1, interval)

	if l.onLimit != nil {
		go l.onLimit(event)
	}
	return interval, nil
}

// Clear resets the limiter after a successful download.
func (l *Limiter) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil {
		l.current = nil
		log.Printf("[RateLimit] upstream rate limit cleared - downloads resumed")
	}
}

// Current returns a copy of the active throttling event, or nil.
func (l *Limiter) Current() *Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return nil
	}
	event := *l.current
	return &event
}

// Wait blocks until the active cool-down expires or ctx is cancelled. It
// returns immediately when no throttling is active.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	var wait time.Duration
	if l.current != nil {
		wait = time.Until(l.current.ResumeAt)
	}
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
