package session

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/deenply/promoreel/internal/config"
	"github.com/deenply/promoreel/internal/encoder"
	"github.com/deenply/promoreel/internal/scene"
)

// ErrInvalidScene is returned by Start when the scene cannot be recorded:
// missing image or out-of-range duration. The session stays Idle and any
// prior artifact is untouched.
var ErrInvalidScene = errors.New("session: invalid scene")

// State is the recording session lifecycle.
type State int

const (
	StateIdle State = iota
	StatePreviewing
	StateRecording
	StateFinalizing
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Artifact is the finished output of a successful recording session.
type Artifact struct {
	Bytes    []byte
	MimeType string
	FileName string
	Frames   int // frames actually encoded, including the endpoint frame
}

// SuggestedFileName builds the download name for an aspect and container
// extension, e.g. deen-ply-instagram-9x16.webm.
func SuggestedFileName(aspect config.Aspect, ext string) string {
	return "deen-ply-instagram-" + strings.ReplaceAll(string(aspect), ":", "x") + ext
}

// RecordingSession orchestrates a bounded-duration capture: it starts the
// preview loop, feeds every rendered frame to an encoder, stops itself when
// the configured duration has elapsed, and exposes the finished artifact.
//
// Lifecycle: Idle -> Previewing -> Recording -> Finalizing -> Ready, with
// Errored reachable from any non-terminal state. All per-session state
// (timeline, frame buffer, encoder) lives here; sessions are constructed
// fresh rather than shared process-wide.
type RecordingSession struct {
	mu         sync.Mutex
	state      State
	loop       *PreviewLoop
	newEncoder func() encoder.Encoder
	enc        encoder.Encoder
	fps        int
	scn        *scene.Scene
	frames     int
	artifact   *Artifact
	lastErr    error
	done       chan struct{}
}

func NewRecordingSession(loop *PreviewLoop, newEncoder func() encoder.Encoder, fps int) *RecordingSession {
	return &RecordingSession{
		loop:       loop,
		newEncoder: newEncoder,
		fps:        fps,
		done:       make(chan struct{}),
	}
}

// Start validates the scene, attaches the encoder and begins the render
// loop. Valid only from Idle. A validation failure keeps the session Idle;
// an encoder initialization failure moves it to Errored with
// encoder.ErrUnavailable in the chain.
func (s *RecordingSession) Start(scn *scene.Scene) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("start: invalid from state %s", s.state)
	}
	if err := validateScene(scn); err != nil {
		s.mu.Unlock()
		return err
	}
	s.scn = scn
	s.state = StatePreviewing
	s.mu.Unlock()

	// The encoder must be attached before the first tick is scheduled: the
	// clock latches on the first tick, so any frame rendered while Begin is
	// still spinning up would be cut from the head of the clip.
	s.enc = s.newEncoder()
	if err := s.enc.Begin(scn.Width, scn.Height, s.fps); err != nil {
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.state = StateRecording
	s.mu.Unlock()

	s.loop.SetFrameFunc(s.consumeFrame)
	if err := s.loop.Start(scn); err != nil {
		s.fail(err)
		return err
	}
	return nil
}

// Stop finalizes the encoder and assembles the artifact. Valid only from
// Recording. Stopping before the configured duration truncates the output
// to the elapsed portion (manual cancel-to-export).
func (s *RecordingSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return fmt.Errorf("stop: invalid from state %s", s.state)
	}
	s.finalizeLocked()
	if s.state == StateErrored {
		return s.lastErr
	}
	return nil
}

// Reset discards the artifact and timeline state and returns to Idle.
// Valid from Ready or Errored.
func (s *RecordingSession) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady && s.state != StateErrored {
		return fmt.Errorf("reset: invalid from state %s", s.state)
	}
	s.artifact = nil
	s.lastErr = nil
	s.scn = nil
	s.enc = nil
	s.frames = 0
	s.state = StateIdle
	s.done = make(chan struct{})
	return nil
}

// Wait blocks until the session reaches Ready or Errored.
func (s *RecordingSession) Wait() {
	<-s.done
}

func (s *RecordingSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Artifact returns the finished artifact, or nil before Ready.
func (s *RecordingSession) Artifact() *Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

// Err returns the error that moved the session to Errored, if any.
func (s *RecordingSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// consumeFrame runs inside the scheduler tick. Frames reach the encoder in
// strict timestamp order; once the configured duration has elapsed the
// session finalizes itself with no caller action.
func (s *RecordingSession) consumeFrame(frame *image.RGBA, t, elapsed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return
	}

	tsMs := int(elapsed*1000 + 0.5)
	if err := s.enc.EncodeFrame(frame, tsMs); err != nil {
		s.failLocked(fmt.Errorf("encode frame: %w", err))
		return
	}
	s.frames++

	if elapsed >= float64(s.scn.Duration) {
		s.finalizeLocked()
	}
}

func (s *RecordingSession) finalizeLocked() {
	s.state = StateFinalizing
	data, err := s.enc.End()
	if err != nil {
		s.failLocked(fmt.Errorf("finalize: %w", err))
		return
	}
	s.artifact = &Artifact{
		Bytes:    data,
		MimeType: s.enc.MimeType(),
		FileName: SuggestedFileName(s.scn.Aspect, s.enc.FileExt()),
		Frames:   s.frames,
	}
	s.loop.Stop()
	s.state = StateReady
	close(s.done)
}

func (s *RecordingSession) fail(err error) {
	s.mu.Lock()
	s.failLocked(err)
	s.mu.Unlock()
}

// failLocked moves the session to Errored. Partially buffered frames are
// discarded rather than emitted as a corrupt artifact.
func (s *RecordingSession) failLocked(err error) {
	if s.state == StateErrored {
		return
	}
	prev := s.state
	s.state = StateErrored
	s.lastErr = err
	s.loop.Stop()
	if s.enc != nil && (prev == StateRecording) {
		s.enc.End() // best effort: release the encoder, drop its output
	}
	close(s.done)
}

func validateScene(scn *scene.Scene) error {
	if scn == nil || scn.Image == nil {
		return fmt.Errorf("%w: missing source image", ErrInvalidScene)
	}
	if scn.Duration < config.MinDuration || scn.Duration > config.MaxDuration {
		return fmt.Errorf("%w: duration %ds out of range [%d,%d]",
			ErrInvalidScene, scn.Duration, config.MinDuration, config.MaxDuration)
	}
	if scn.Script == nil {
		return fmt.Errorf("%w: missing overlay script", ErrInvalidScene)
	}
	return nil
}
