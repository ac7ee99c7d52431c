package scene

import (
	"image"

	"github.com/deenply/promoreel/internal/config"
	"github.com/deenply/promoreel/internal/script"
)

// Scene bundles everything a session needs to render: the decoded source
// image, the overlay script, and the derived frame geometry. The caller owns
// the scene and passes it by reference into each session; the frame size is
// immutable once a session starts.
type Scene struct {
	Image    image.Image
	Aspect   config.Aspect
	Duration int // seconds
	Width    int
	Height   int
	Script   *script.Script
}

// New derives the frame size from the aspect and returns the scene. It does
// not validate: malformed scenes are rejected by the session before any
// render call.
func New(img image.Image, aspect config.Aspect, durationSeconds int, sc *script.Script) *Scene {
	w, h := aspect.FrameSize()
	return &Scene{
		Image:    img,
		Aspect:   aspect,
		Duration: durationSeconds,
		Width:    w,
		Height:   h,
		Script:   sc,
	}
}
