package session

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/deenply/promoreel/internal/config"
	"github.com/deenply/promoreel/internal/encoder"
	"github.com/deenply/promoreel/internal/scene"
	"github.com/deenply/promoreel/internal/script"
)

// manualScheduler delivers ticks only when the test calls advance, so state
// transitions happen at deterministic timestamps.
type manualScheduler struct {
	tick    func(time.Time)
	running bool
}

func (m *manualScheduler) Start(tick func(time.Time)) {
	m.tick = tick
	m.running = true
}

func (m *manualScheduler) Stop() { m.running = false }

func (m *manualScheduler) advance(now time.Time) {
	if m.running && m.tick != nil {
		m.tick(now)
	}
}

// fakeEncoder records frame timestamps and can be told to fail at Begin,
// fail on the n-th frame, or spin up slowly.
type fakeEncoder struct {
	failBegin  bool
	failFrame  int           // fail on this frame number (1-based), 0 = never
	beginDelay time.Duration // simulated encoder spin-up

	begun      bool
	ended      bool
	timestamps []int
}

func (f *fakeEncoder) Begin(width, height, fps int) error {
	if f.failBegin {
		return fmt.Errorf("no capture backend: %w", encoder.ErrUnavailable)
	}
	if f.beginDelay > 0 {
		time.Sleep(f.beginDelay)
	}
	f.begun = true
	return nil
}

func (f *fakeEncoder) EncodeFrame(img *image.RGBA, timestampMs int) error {
	if f.failFrame > 0 && len(f.timestamps)+1 >= f.failFrame {
		return errors.New("pipe broke")
	}
	f.timestamps = append(f.timestamps, timestampMs)
	return nil
}

func (f *fakeEncoder) End() ([]byte, error) {
	f.ended = true
	return []byte("container"), nil
}

func (f *fakeEncoder) MimeType() string { return "video/webm" }
func (f *fakeEncoder) FileExt() string  { return ".webm" }

func testScene(duration int) *scene.Scene {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	return scene.New(img, config.AspectStory, duration, script.Default())
}

func newTestSession(enc *fakeEncoder) (*RecordingSession, *manualScheduler) {
	sched := &manualScheduler{}
	loop := NewPreviewLoop(sched)
	sess := NewRecordingSession(loop, func() encoder.Encoder { return enc }, 30)
	return sess, sched
}

func TestFullLifecycle(t *testing.T) {
	enc := &fakeEncoder{}
	sess, sched := newTestSession(enc)

	if sess.State() != StateIdle {
		t.Fatalf("initial state %s, want idle", sess.State())
	}

	if err := sess.Start(testScene(5)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.State() != StateRecording {
		t.Fatalf("state after Start = %s, want recording", sess.State())
	}
	if !enc.begun {
		t.Fatal("encoder never initialized")
	}

	t0 := time.Unix(1000, 0)
	sched.advance(t0)
	sched.advance(t0.Add(2 * time.Second))
	sched.advance(t0.Add(5 * time.Second)) // reaches the duration, auto-stop

	sess.Wait()
	if sess.State() != StateReady {
		t.Fatalf("state after duration = %s, want ready (err: %v)", sess.State(), sess.Err())
	}

	want := []int{0, 2000, 5000}
	if len(enc.timestamps) != len(want) {
		t.Fatalf("encoded %d frames, want %d", len(enc.timestamps), len(want))
	}
	for i, ts := range want {
		if enc.timestamps[i] != ts {
			t.Errorf("frame %d at %dms, want %dms", i, enc.timestamps[i], ts)
		}
	}

	art := sess.Artifact()
	if art == nil {
		t.Fatal("no artifact after Ready")
	}
	if string(art.Bytes) != "container" {
		t.Errorf("artifact bytes = %q", art.Bytes)
	}
	if art.MimeType != "video/webm" {
		t.Errorf("artifact mime = %q", art.MimeType)
	}
	if art.FileName != "deen-ply-instagram-9x16.webm" {
		t.Errorf("artifact name = %q", art.FileName)
	}
	if art.Frames != 3 {
		t.Errorf("artifact frame count = %d, want 3", art.Frames)
	}

	// Ticks after Ready are ignored.
	sched.advance(t0.Add(6 * time.Second))
	if len(enc.timestamps) != 3 {
		t.Errorf("frame encoded after Ready")
	}
}

func TestManualStopTruncates(t *testing.T) {
	enc := &fakeEncoder{}
	sess, sched := newTestSession(enc)

	if err := sess.Start(testScene(60)); err != nil {
		t.Fatalf("Start: %v", err)
	}

	t0 := time.Unix(1000, 0)
	for i := 0; i < 4; i++ {
		sched.advance(t0.Add(time.Duration(i) * time.Second))
	}

	if err := sess.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if sess.State() != StateReady {
		t.Fatalf("state after manual stop = %s, want ready", sess.State())
	}

	// The artifact holds only the elapsed portion, not the full 60s.
	if len(enc.timestamps) != 4 {
		t.Errorf("encoded %d frames, want the 4 delivered before Stop", len(enc.timestamps))
	}
	if last := enc.timestamps[len(enc.timestamps)-1]; last != 3000 {
		t.Errorf("last timestamp %dms, want 3000", last)
	}
	if sess.Artifact() == nil {
		t.Error("manual stop produced no artifact")
	}
}

func TestInvalidSceneKeepsIdle(t *testing.T) {
	tests := []struct {
		name string
		scn  *scene.Scene
	}{
		{"nil scene", nil},
		{"missing image", scene.New(nil, config.AspectStory, 15, script.Default())},
		{"too short", testScene(4)},
		{"too long", testScene(61)},
		{"missing script", scene.New(image.NewRGBA(image.Rect(0, 0, 8, 8)), config.AspectStory, 15, nil)},
	}

	for _, tt := range tests {
		enc := &fakeEncoder{}
		sess, _ := newTestSession(enc)

		err := sess.Start(tt.scn)
		if !errors.Is(err, ErrInvalidScene) {
			t.Errorf("%s: err = %v, want ErrInvalidScene", tt.name, err)
		}
		if sess.State() != StateIdle {
			t.Errorf("%s: state = %s, want idle", tt.name, sess.State())
		}
		if enc.begun {
			t.Errorf("%s: encoder touched for an invalid scene", tt.name)
		}
	}
}

func TestEncoderUnavailable(t *testing.T) {
	enc := &fakeEncoder{failBegin: true}
	sess, _ := newTestSession(enc)

	err := sess.Start(testScene(10))
	if !errors.Is(err, encoder.ErrUnavailable) {
		t.Fatalf("err = %v, want encoder.ErrUnavailable in chain", err)
	}
	if sess.State() != StateErrored {
		t.Fatalf("state = %s, want errored", sess.State())
	}
	if sess.Artifact() != nil {
		t.Error("errored session exposed an artifact")
	}

	sess.Wait() // must not block once Errored
}

func TestEncodeFailureDiscardsOutput(t *testing.T) {
	enc := &fakeEncoder{failFrame: 2}
	sess, sched := newTestSession(enc)

	if err := sess.Start(testScene(10)); err != nil {
		t.Fatalf("Start: %v", err)
	}

	t0 := time.Unix(1000, 0)
	sched.advance(t0)
	sched.advance(t0.Add(time.Second))

	sess.Wait()
	if sess.State() != StateErrored {
		t.Fatalf("state = %s, want errored", sess.State())
	}
	if sess.Err() == nil {
		t.Error("errored session has no error")
	}
	if sess.Artifact() != nil {
		t.Error("failed recording exposed an artifact")
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	enc := &fakeEncoder{}
	sess, sched := newTestSession(enc)

	if err := sess.Start(testScene(5)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t0 := time.Unix(1000, 0)
	sched.advance(t0)
	sched.advance(t0.Add(5 * time.Second))
	sess.Wait()

	if err := sess.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if sess.State() != StateIdle {
		t.Fatalf("state after Reset = %s, want idle", sess.State())
	}
	if sess.Artifact() != nil {
		t.Error("artifact survived Reset")
	}

	// A reset session records again from scratch.
	if err := sess.Start(testScene(5)); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if sess.State() != StateRecording {
		t.Errorf("state after second Start = %s, want recording", sess.State())
	}
}

func TestResetInvalidFromRecording(t *testing.T) {
	enc := &fakeEncoder{}
	sess, _ := newTestSession(enc)

	if err := sess.Start(testScene(10)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sess.Reset(); err == nil {
		t.Error("Reset accepted while recording")
	}
	if err := sess.Start(testScene(10)); err == nil {
		t.Error("second Start accepted while recording")
	}
}

func TestSlowEncoderStartLosesNoFrames(t *testing.T) {
	enc := &fakeEncoder{beginDelay: 120 * time.Millisecond}
	loop := NewPreviewLoop(NewOfflineScheduler(10))
	sess := NewRecordingSession(loop, func() encoder.Encoder { return enc }, 10)

	if err := sess.Start(testScene(5)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sess.Wait()
	if sess.State() != StateReady {
		t.Fatalf("state = %s, want ready (err: %v)", sess.State(), sess.Err())
	}

	// The offline scheduler must not tick while the encoder spins up: the
	// clip starts at 0ms and covers the full 5s, endpoints inclusive.
	if len(enc.timestamps) == 0 {
		t.Fatal("no frames encoded")
	}
	if enc.timestamps[0] != 0 {
		t.Errorf("first frame at %dms, want 0; encoder spin-up ate the head of the clip", enc.timestamps[0])
	}
	if last := enc.timestamps[len(enc.timestamps)-1]; last != 5000 {
		t.Errorf("last frame at %dms, want 5000", last)
	}
	if got := len(enc.timestamps); got != 51 {
		t.Errorf("encoded %d frames, want 51 (10 fps over 5s, endpoints inclusive)", got)
	}
	if art := sess.Artifact(); art == nil || art.Frames != 51 {
		t.Errorf("artifact = %+v, want 51 frames", art)
	}
}

func TestStopDuringLiveTicks(t *testing.T) {
	// Stop races the ticker goroutine's in-flight tick; run under -race.
	scn := testScene(10)
	loop := NewPreviewLoop(NewTickerScheduler(1000))

	for i := 0; i < 15; i++ {
		if err := loop.Start(scn); err != nil {
			t.Fatalf("Start: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
		loop.Stop()
		if loop.Running() {
			t.Fatal("stopped loop reports running")
		}
	}
}

func TestSchedulerZeroFPSClamped(t *testing.T) {
	ticker := NewTickerScheduler(0) // must not divide by zero
	ticked := make(chan struct{})
	var once sync.Once
	ticker.Start(func(now time.Time) { once.Do(func() { close(ticked) }) })
	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("clamped ticker never ticked")
	}
	ticker.Stop()

	offline := NewOfflineScheduler(0)
	ticked2 := make(chan struct{})
	var once2 sync.Once
	offline.Start(func(now time.Time) { once2.Do(func() { close(ticked2) }) })
	select {
	case <-ticked2:
	case <-time.After(2 * time.Second):
		t.Fatal("clamped offline scheduler never ticked")
	}
	offline.Stop()
}

func TestSuggestedFileName(t *testing.T) {
	tests := []struct {
		aspect config.Aspect
		ext    string
		want   string
	}{
		{config.AspectStory, ".webm", "deen-ply-instagram-9x16.webm"},
		{config.AspectFeed, ".webm", "deen-ply-instagram-4x5.webm"},
		{config.AspectFeed, ".avi", "deen-ply-instagram-4x5.avi"},
	}
	for _, tt := range tests {
		if got := SuggestedFileName(tt.aspect, tt.ext); got != tt.want {
			t.Errorf("SuggestedFileName(%s, %s) = %q, want %q", tt.aspect, tt.ext, got, tt.want)
		}
	}
}

func TestPreviewLoopStates(t *testing.T) {
	sched := &manualScheduler{}
	loop := NewPreviewLoop(sched)

	if loop.Running() {
		t.Fatal("new loop reports running")
	}
	loop.Stop() // no-op on a stopped loop

	frames := 0
	loop.SetFrameFunc(func(frame *image.RGBA, tt, elapsed float64) { frames++ })

	if err := loop.Start(testScene(10)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !loop.Running() {
		t.Fatal("started loop not running")
	}

	t0 := time.Unix(1000, 0)
	sched.advance(t0)
	sched.advance(t0.Add(time.Second))
	if frames != 2 {
		t.Errorf("delivered %d frames, want 2", frames)
	}

	// The preview keeps ticking past the clip duration (t clamps at 1).
	sched.advance(t0.Add(30 * time.Second))
	if frames != 3 {
		t.Errorf("loop stopped at duration; preview should run until stopped")
	}

	loop.Stop()
	if loop.Running() {
		t.Fatal("stopped loop reports running")
	}
	sched.advance(t0.Add(31 * time.Second))
	if frames != 3 {
		t.Errorf("frame delivered after Stop")
	}
}
