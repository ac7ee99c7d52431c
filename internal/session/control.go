package session

import (
	"fmt"

	"github.com/deenply/promoreel/internal/encoder"
	"github.com/deenply/promoreel/internal/scene"
)

// Controller is the session control surface the UI layer talks to. It owns
// the single rendering surface: starting a recording implicitly cancels a
// bare preview, and vice versa, so there is never more than one writer.
//
// The UI hands a scene in through OnSceneReady; the controller knows
// nothing about how the image was obtained.
type Controller struct {
	newScheduler func() Scheduler
	newEncoder   func() encoder.Encoder
	fps          int

	scn  *scene.Scene
	loop *PreviewLoop
	sess *RecordingSession
}

func NewController(newScheduler func() Scheduler, newEncoder func() encoder.Encoder, fps int) *Controller {
	return &Controller{
		newScheduler: newScheduler,
		newEncoder:   newEncoder,
		fps:          fps,
	}
}

// OnSceneReady installs a new scene. A running preview restarts on the new
// scene; a running recording keeps the scene it started with.
func (c *Controller) OnSceneReady(scn *scene.Scene) error {
	c.scn = scn
	if c.loop != nil && c.loop.Running() {
		return c.loop.Start(scn)
	}
	return nil
}

// StartPreview begins a live, non-encoding render loop of the current scene.
func (c *Controller) StartPreview() error {
	if c.scn == nil {
		return fmt.Errorf("start preview: no scene ready")
	}
	c.cancelSession()
	if c.loop == nil {
		c.loop = NewPreviewLoop(c.newScheduler())
	}
	return c.loop.Start(c.scn)
}

// StopPreview stops the live loop. No-op when nothing is running.
func (c *Controller) StopPreview() {
	if c.loop != nil {
		c.loop.Stop()
	}
}

// StartRecording constructs a fresh recording session for the current
// scene, invalidating any prior preview or session first.
func (c *Controller) StartRecording() (*RecordingSession, error) {
	if c.scn == nil {
		return nil, fmt.Errorf("start recording: no scene ready")
	}
	c.StopPreview()
	c.cancelSession()

	c.sess = NewRecordingSession(NewPreviewLoop(c.newScheduler()), c.newEncoder, c.fps)
	if err := c.sess.Start(c.scn); err != nil {
		return nil, err
	}
	return c.sess, nil
}

// StopRecording finalizes the active session early, truncating the output
// to the elapsed portion.
func (c *Controller) StopRecording() error {
	if c.sess == nil {
		return fmt.Errorf("stop recording: no active session")
	}
	return c.sess.Stop()
}

// Session returns the most recent recording session, or nil.
func (c *Controller) Session() *RecordingSession {
	return c.sess
}

// cancelSession tears down a prior session so the new one owns the surface.
func (c *Controller) cancelSession() {
	if c.sess == nil {
		return
	}
	if c.sess.State() == StateRecording {
		c.sess.Stop()
	}
	c.sess = nil
}
