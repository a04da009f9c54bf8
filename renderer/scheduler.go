package renderer

import (
	"context"
	"sync"
	"time"
)

// FrameFunc runs one frame. now is a monotonic timestamp from the scheduler's clock.
type FrameFunc func(now time.Duration)

// Scheduler drives the frame loop. A host supplies one backed by its own
// vsync or timer; the session only ever calls Start and Stop.
type Scheduler interface {
	// Now returns the scheduler's current timestamp.
	Now() time.Duration
	// Start schedules frame to run once per tick until Stop.
	Start(frame FrameFunc)
	// Stop cancels the schedule. No frame runs after Stop returns.
	Stop()
}

// ManualScheduler runs frames only when Advance is called. Tests and offline
// hosts use it to control time exactly.
type ManualScheduler struct {
	now   time.Duration
	frame FrameFunc
}

func (s *ManualScheduler) Now() time.Duration { return s.now }

func (s *ManualScheduler) Start(frame FrameFunc) { s.frame = frame }

func (s *ManualScheduler) Stop() { s.frame = nil }

// Pending reports whether a frame callback is scheduled.
func (s *ManualScheduler) Pending() bool { return s.frame != nil }

// Advance moves the clock by d and runs the scheduled frame, if any.
// It reports whether a frame ran.
func (s *ManualScheduler) Advance(d time.Duration) bool {
	s.now += d
	if s.frame == nil {
		return false
	}
	s.frame(s.now)
	return true
}

// LoopScheduler ticks at a fixed interval on the goroutine that calls Run.
// Deltas are still measured, so a late tick advances the clock by the real gap.
type LoopScheduler struct {
	Interval time.Duration
	// AfterFrame runs after every frame, e.g. to swap buffers.
	AfterFrame func()

	epoch time.Time
	mu    sync.Mutex
	frame FrameFunc
}

// NewLoopScheduler returns a scheduler ticking every interval.
func NewLoopScheduler(interval time.Duration) *LoopScheduler {
	return &LoopScheduler{Interval: interval, epoch: time.Now()}
}

func (s *LoopScheduler) Now() time.Duration { return time.Since(s.epoch) }

func (s *LoopScheduler) Start(frame FrameFunc) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
}

func (s *LoopScheduler) Stop() {
	s.mu.Lock()
	s.frame = nil
	s.mu.Unlock()
}

func (s *LoopScheduler) current() FrameFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Run blocks, running the scheduled frame every tick, until ctx is done or
// the schedule is stopped.
func (s *LoopScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		frame := s.current()
		if frame == nil {
			return nil
		}
		frame(s.Now())
		if s.AfterFrame != nil {
			s.AfterFrame()
		}
	}
}
