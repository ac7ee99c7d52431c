package script

// Script describes the text overlays of a promo clip and their appearance
// schedules. It is edited by hand or generated with Default, the same way
// camera scenarios were handled before text overlays replaced them.
type Script struct {
	Version  string   `yaml:"version"`
	Badge    string   `yaml:"badge"`
	Headline string   `yaml:"headline"`
	Bullets  []string `yaml:"bullets"`
	CTA      string   `yaml:"cta"`
	QRLink   string   `yaml:"qr_link,omitempty"`
	Timing   Timing   `yaml:"timing"`
}

// Timing holds the appearance schedule knobs. Zero values are replaced by
// the stock schedule in Normalize.
type Timing struct {
	HeadlineFade float64 `yaml:"headline_fade"` // seconds until the headline is fully visible
	BulletDelay  float64 `yaml:"bullet_delay"`  // offset of the first bullet item
	BulletStep   float64 `yaml:"bullet_step"`   // stagger between bullet items
	FadeIn       float64 `yaml:"fade_in"`       // linear ramp of bullets and CTA
	CTADelay     float64 `yaml:"cta_delay"`     // offset of the call-to-action pill
}

// Stock schedule: headline eases in over 2s, bullet i starts at 4+3i and
// ramps for 1.5s, the CTA pill starts at 12s.
const (
	DefaultHeadlineFade = 2.0
	DefaultBulletDelay  = 4.0
	DefaultBulletStep   = 3.0
	DefaultFadeIn       = 1.5
	DefaultCTADelay     = 12.0
)

// Default returns a ready-to-edit script with the stock schedule.
func Default() *Script {
	s := &Script{
		Version:  "1.0",
		Badge:    "DEEN PLY",
		Headline: "Premium plywood for spaces that last",
		Bullets: []string{
			"Calibrated 100% hardwood core",
			"Boiling waterproof IS:710 grade",
			"Lifetime warranty on delamination",
		},
		CTA: "Visit deenply.com",
	}
	s.Normalize()
	return s
}

// Normalize fills unset timing fields with the stock schedule.
func (s *Script) Normalize() {
	if s.Timing.HeadlineFade <= 0 {
		s.Timing.HeadlineFade = DefaultHeadlineFade
	}
	if s.Timing.BulletDelay <= 0 {
		s.Timing.BulletDelay = DefaultBulletDelay
	}
	if s.Timing.BulletStep <= 0 {
		s.Timing.BulletStep = DefaultBulletStep
	}
	if s.Timing.FadeIn <= 0 {
		s.Timing.FadeIn = DefaultFadeIn
	}
	if s.Timing.CTADelay <= 0 {
		s.Timing.CTADelay = DefaultCTADelay
	}
}
