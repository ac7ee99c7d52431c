package camera

import "math"

// State represents the virtual camera at a specific moment.
type State struct {
	Zoom float64 // scale multiplier on top of cover-fit (1.0 = no zoom)
	PanX float64 // horizontal offset as a fraction of the frame width
	PanY float64 // vertical offset as a fraction of the frame height
}

// Motion amplitudes for the Ken-Burns path. Zoom drifts from 5% to 17% over
// the full duration while the pan oscillates once around the center.
const (
	zoomBase  = 1.05
	zoomRange = 0.12
	panAmpX   = 0.05
	panAmpY   = 0.04
)

// At returns the camera state for normalized progress t. Stateless and
// deterministic: the same t always yields the same state, which makes
// frame-accurate scrubbing and reproducible tests possible.
func At(t float64) State {
	return State{
		Zoom: zoomBase + zoomRange*t,
		PanX: panAmpX * math.Sin(2*math.Pi*t),
		PanY: panAmpY * math.Cos(2*math.Pi*t),
	}
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseOutCubic maps x in [0,1] onto a decelerating curve 1-(1-x)^3.
func EaseOutCubic(x float64) float64 {
	inv := 1 - x
	return 1 - inv*inv*inv
}

// Clamp01 clamps x to [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
