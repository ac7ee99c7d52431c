package config

import (
	"fmt"
	"math"
)

// Aspect is a recognized output aspect ratio.
type Aspect string

const (
	AspectStory Aspect = "9:16" // Reels/Stories/TikTok
	AspectFeed  Aspect = "4:5"  // Instagram feed
)

// BaseWidth is the fixed pixel width of every output frame. The height is
// derived from the aspect ratio.
const BaseWidth = 540

const (
	MinDuration = 5
	MaxDuration = 60
)

// ParseAspect validates an aspect string from the CLI.
func ParseAspect(s string) (Aspect, error) {
	switch Aspect(s) {
	case AspectStory, AspectFeed:
		return Aspect(s), nil
	default:
		return "", fmt.Errorf("unknown aspect %q (expected 9:16 or 4:5)", s)
	}
}

// Ratio returns the width/height ratio.
func (a Aspect) Ratio() float64 {
	switch a {
	case AspectFeed:
		return 4.0 / 5.0
	default:
		return 9.0 / 16.0
	}
}

// FrameSize returns the pixel dimensions for the aspect:
// width is fixed at BaseWidth, height = round(width / ratio).
func (a Aspect) FrameSize() (width, height int) {
	width = BaseWidth
	height = int(math.Round(float64(width) / a.Ratio()))
	return width, height
}

// Config holds everything the CLI passes into a render.
type Config struct {
	ImagePath    string
	OutputVideo  string
	ScriptPath   string
	Aspect       Aspect
	Duration     int // seconds
	FPS          int
	Quality      int // VP9 CRF
	ShowStats    bool
	BuildVersion string
}

// Validate rejects out-of-range settings before any session is created.
func (c *Config) Validate() error {
	if c.Duration < MinDuration || c.Duration > MaxDuration {
		return fmt.Errorf("duration %ds out of range [%d,%d]", c.Duration, MinDuration, MaxDuration)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if _, err := ParseAspect(string(c.Aspect)); err != nil {
		return err
	}
	return nil
}
