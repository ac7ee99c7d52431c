package compositor

import (
	"github.com/deenply/promoreel/internal/camera"
	"github.com/deenply/promoreel/internal/script"
)

// Schedule maps elapsed time to opacity: zero before Delay, then a linear
// ramp reaching 1 after FadeIn seconds.
type Schedule struct {
	Delay  float64
	FadeIn float64
}

// OpacityAt returns the element opacity in [0,1] at the given elapsed time.
func (s Schedule) OpacityAt(elapsed float64) float64 {
	if s.FadeIn <= 0 {
		if elapsed >= s.Delay {
			return 1
		}
		return 0
	}
	return camera.Clamp01((elapsed - s.Delay) / s.FadeIn)
}

// BadgeOpacity is 1 at every elapsed time once rendering has started.
func BadgeOpacity(elapsed float64) float64 {
	if elapsed < 0 {
		return 0
	}
	return 1
}

// HeadlineOpacity follows an ease-out-cubic curve over the fade window:
// 0 at elapsed 0, 1 at elapsed >= fade, monotonic in between.
func HeadlineOpacity(elapsed, fade float64) float64 {
	if fade <= 0 {
		fade = script.DefaultHeadlineFade
	}
	return camera.EaseOutCubic(camera.Clamp01(elapsed / fade))
}

// BulletSchedule returns the appearance schedule of bullet item i: it
// begins fading at BulletDelay + i*BulletStep and ramps over FadeIn.
func BulletSchedule(i int, tm script.Timing) Schedule {
	return Schedule{
		Delay:  tm.BulletDelay + float64(i)*tm.BulletStep,
		FadeIn: tm.FadeIn,
	}
}
