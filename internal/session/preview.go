package session

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/deenply/promoreel/internal/camera"
	"github.com/deenply/promoreel/internal/compositor"
	"github.com/deenply/promoreel/internal/scene"
	"github.com/deenply/promoreel/internal/system"
	"github.com/deenply/promoreel/internal/timeline"
)

// FrameFunc receives every rendered frame. The buffer is owned by the loop
// and reused between ticks; consumers must not retain it.
type FrameFunc func(frame *image.RGBA, t, elapsed float64)

// PreviewLoop drives the compositor once per scheduler tick, indefinitely,
// for on-screen feedback. It performs no encoding; a recording session taps
// the rendered frames through a FrameFunc.
//
// States: Stopped and Running. Start on a running loop cancels the current
// one first; Stop on a stopped loop is a no-op. Ticks run on the scheduler
// goroutine and Stop may run concurrently on any other, so a tick snapshots
// the loop fields under the mutex, renders unlocked, and a Stop that lands
// mid-render leaves the frame buffer for the tick to release. A cancelled
// tick is dropped at its next running check, never interrupted mid-render.
type PreviewLoop struct {
	scheduler Scheduler

	mu        sync.Mutex
	clock     *timeline.Clock
	comp      *compositor.Compositor
	scn       *scene.Scene
	frame     *image.RGBA
	onFrame   FrameFunc
	running   bool
	rendering int
	gen       int // bumped on Start; a stale scheduler's late tick is dropped
}

func NewPreviewLoop(scheduler Scheduler) *PreviewLoop {
	return &PreviewLoop{scheduler: scheduler}
}

// SetFrameFunc attaches a frame consumer. Must be called before Start.
func (l *PreviewLoop) SetFrameFunc(fn FrameFunc) {
	l.mu.Lock()
	l.onFrame = fn
	l.mu.Unlock()
}

// Running reports whether the loop is currently producing frames.
func (l *PreviewLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Start resets the timeline and begins rendering the scene on every tick.
// A running loop is restarted.
func (l *PreviewLoop) Start(scn *scene.Scene) error {
	l.Stop()

	comp, err := compositor.New(scn)
	if err != nil {
		return fmt.Errorf("start preview: %w", err)
	}

	l.mu.Lock()
	l.scn = scn
	l.comp = comp
	l.clock = timeline.NewClock(float64(scn.Duration))
	l.clock.Start()
	l.frame = system.GetFrame(image.Rect(0, 0, scn.Width, scn.Height))
	l.running = true
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	l.scheduler.Start(func(now time.Time) { l.tick(gen, now) })
	return nil
}

// Stop cancels further ticks and releases the frame buffer. When a tick is
// mid-render the release is deferred to that tick. No-op when already
// stopped; safe to call from inside a FrameFunc.
func (l *PreviewLoop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	if l.rendering == 0 && l.frame != nil {
		system.PutFrame(l.frame)
		l.frame = nil
	}
	l.mu.Unlock()

	l.scheduler.Stop()
}

func (l *PreviewLoop) tick(gen int, now time.Time) {
	l.mu.Lock()
	if !l.running || gen != l.gen {
		l.mu.Unlock()
		return
	}
	clock, comp, scn := l.clock, l.comp, l.scn
	frame, onFrame := l.frame, l.onFrame
	l.rendering++
	l.mu.Unlock()

	t, elapsed, err := clock.Tick(now)
	if err == nil {
		comp.Render(frame, scn, camera.At(t), elapsed)
		if onFrame != nil {
			onFrame(frame, t, elapsed)
		}
	}

	l.mu.Lock()
	l.rendering--
	// A Stop that ran while we rendered deferred the buffer release to us.
	if !l.running && l.rendering == 0 && l.frame != nil {
		system.PutFrame(l.frame)
		l.frame = nil
	}
	l.mu.Unlock()
}
