package session

import (
	"sync"
	"time"
)

// Scheduler abstracts the refresh cadence that drives a preview loop, so
// the same loop runs against a wall-clock ticker on screen and against a
// synthetic clock for headless export and tests. Ticks are serialized: one
// tick runs to completion before the next is delivered.
type Scheduler interface {
	Start(tick func(now time.Time))
	Stop()
}

// TickerScheduler delivers ticks at a fixed wall-clock rate.
type TickerScheduler struct {
	interval time.Duration
	mu       sync.Mutex
	stop     chan struct{}
}

func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 30
	}
	return &TickerScheduler{interval: time.Second / time.Duration(fps)}
}

func (s *TickerScheduler) Start(tick func(now time.Time)) {
	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go func() {
		tk := time.NewTicker(s.interval)
		defer tk.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-tk.C:
				tick(now)
			}
		}
	}()
}

// Stop cancels the pending ticks. Safe to call from inside a tick and when
// already stopped.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.mu.Unlock()
}

// OfflineScheduler delivers ticks as fast as the consumer renders them,
// with timestamps advancing in exact 1/fps steps. An export driven by it is
// frame-accurate and typically much faster than realtime.
type OfflineScheduler struct {
	fps  int
	mu   sync.Mutex
	stop chan struct{}
}

func NewOfflineScheduler(fps int) *OfflineScheduler {
	if fps <= 0 {
		fps = 30
	}
	return &OfflineScheduler{fps: fps}
}

func (s *OfflineScheduler) Start(tick func(now time.Time)) {
	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	step := time.Second / time.Duration(s.fps)
	go func() {
		now := time.Unix(0, 0)
		for {
			select {
			case <-stop:
				return
			default:
			}
			tick(now)
			now = now.Add(step)
		}
	}()
}

func (s *OfflineScheduler) Stop() {
	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.mu.Unlock()
}
