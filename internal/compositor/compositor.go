package compositor

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"

	"github.com/deenply/promoreel/internal/camera"
	"github.com/deenply/promoreel/internal/layout"
	"github.com/deenply/promoreel/internal/scene"
	qrcode "github.com/skip2/go-qrcode"
)

// Frame margins and element metrics, tuned for the 540px base width and
// scaled with it for other sizes.
const (
	marginPx       = 24
	badgeFontPx    = 13
	headlineFontPx = 34
	headlineLineH  = 42
	bulletFontPx   = 17
	bulletLineH    = 30
	ctaFontPx      = 16
	pillHeightPx   = 44
	pillPadX       = 18
	qrSizePx       = 72

	// The legibility gradient covers the bottom 40% of the frame and ramps
	// to 65% black at the bottom edge.
	gradientStartFrac = 0.60
	gradientMaxAlpha  = 0.65
)

var (
	textWhite = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	badgeFill = color.NRGBA{R: 16, G: 16, B: 16, A: 140}
	pillFill  = color.NRGBA{R: 255, G: 179, B: 0, A: 255}
	pillText  = color.NRGBA{R: 24, G: 20, B: 12, A: 255}
)

// Compositor renders complete frames for one scene. Everything static
// (font faces, wrapped headline lines, the QR code) is prepared once in New;
// Render only computes per-frame opacity and camera placement.
type Compositor struct {
	width  int
	height int
	scale  float64 // width / 540

	badgeFace    font.Face
	headlineFace font.Face
	bulletFace   font.Face
	ctaFace      font.Face

	headlineLines []string
	qr            image.Image
}

// New prepares a compositor for the scene's frame size and overlay script.
func New(scn *scene.Scene) (*Compositor, error) {
	c := &Compositor{
		width:  scn.Width,
		height: scn.Height,
		scale:  float64(scn.Width) / 540.0,
	}

	var err error
	if c.badgeFace, err = layout.LoadFace(badgeFontPx*c.scale, true); err != nil {
		return nil, fmt.Errorf("badge face: %w", err)
	}
	if c.headlineFace, err = layout.LoadFace(headlineFontPx*c.scale, true); err != nil {
		return nil, fmt.Errorf("headline face: %w", err)
	}
	if c.bulletFace, err = layout.LoadFace(bulletFontPx*c.scale, false); err != nil {
		return nil, fmt.Errorf("bullet face: %w", err)
	}
	if c.ctaFace, err = layout.LoadFace(ctaFontPx*c.scale, true); err != nil {
		return nil, fmt.Errorf("cta face: %w", err)
	}

	maxWidth := float64(c.width - 2*c.px(marginPx))
	c.headlineLines = layout.Wrap(scn.Script.Headline, maxWidth, layout.Measurer(c.headlineFace))

	if scn.Script.QRLink != "" {
		qr, err := qrcode.New(scn.Script.QRLink, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("qr code: %w", err)
		}
		c.qr = qr.Image(c.px(qrSizePx))
	}

	return c, nil
}

// px scales a 540-width-relative metric to the actual frame width.
func (c *Compositor) px(v int) int {
	return int(float64(v)*c.scale + 0.5)
}

// Render overwrites dst with the complete frame at the given camera state
// and elapsed time. Draw order is an invariant: later elements rely on
// earlier ones for contrast (the gradient must sit between the photo and
// the text).
func (c *Compositor) Render(dst *image.RGBA, scn *scene.Scene, cam camera.State, elapsed float64) {
	tm := scn.Script.Timing

	// 1. Background: solid black under any letterboxing.
	fillRect(dst, dst.Bounds(), color.NRGBA{A: 255})

	// 2. Cover-fit source image with zoom and pan applied.
	drawCover(dst, scn.Image, cam)

	// 3. Legibility gradient over the bottom of the frame.
	drawBottomGradient(dst, gradientStartFrac, gradientMaxAlpha)

	// 4. Badge: always fully visible once a frame exists.
	c.drawBadge(dst, scn.Script.Badge, BadgeOpacity(elapsed))

	// 5..7. Text block, stacked bottom-up from the CTA pill.
	pillTop := c.height - c.px(marginPx) - c.px(pillHeightPx)
	bulletsBottom := pillTop - c.px(20)
	bulletsTop := bulletsBottom - len(scn.Script.Bullets)*c.px(bulletLineH)
	headlineBottom := bulletsTop - c.px(16)
	headlineTop := headlineBottom - len(c.headlineLines)*c.px(headlineLineH)

	c.drawHeadline(dst, headlineTop, HeadlineOpacity(elapsed, tm.HeadlineFade))

	for i, item := range scn.Script.Bullets {
		op := BulletSchedule(i, tm).OpacityAt(elapsed)
		if op <= 0 {
			continue
		}
		y := bulletsTop + i*c.px(bulletLineH)
		c.drawBullet(dst, item, y, op)
	}

	ctaOp := Schedule{Delay: tm.CTADelay, FadeIn: tm.FadeIn}.OpacityAt(elapsed)
	if ctaOp > 0 {
		c.drawCTA(dst, scn.Script.CTA, pillTop, ctaOp)
		if c.qr != nil {
			at := image.Pt(c.px(marginPx), c.height-c.px(marginPx)-c.px(qrSizePx))
			drawImageFaded(dst, c.qr, at, ctaOp)
		}
	}
}

func (c *Compositor) drawBadge(dst *image.RGBA, label string, opacity float64) {
	if label == "" || opacity <= 0 {
		return
	}
	textW := int(layout.Measurer(c.badgeFace)(label))
	padX, padY := c.px(12), c.px(7)
	x0, y0 := c.px(marginPx), c.px(40)
	rect := image.Rect(x0, y0, x0+textW+2*padX, y0+c.px(badgeFontPx)+2*padY)

	fillRoundedRect(dst, rect, float64(c.px(6)), scaleAlpha(badgeFill, opacity))
	baseline := y0 + padY + c.px(badgeFontPx) - c.px(2)
	drawString(dst, c.badgeFace, label, x0+padX, baseline, scaleAlpha(textWhite, opacity))
}

func (c *Compositor) drawHeadline(dst *image.RGBA, top int, opacity float64) {
	if opacity <= 0 {
		return
	}
	col := scaleAlpha(textWhite, opacity)
	ascent := c.px(headlineFontPx)
	for i, line := range c.headlineLines {
		baseline := top + i*c.px(headlineLineH) + ascent
		drawString(dst, c.headlineFace, line, c.px(marginPx), baseline, col)
	}
}

func (c *Compositor) drawBullet(dst *image.RGBA, item string, top int, opacity float64) {
	col := scaleAlpha(textWhite, opacity)
	baseline := top + c.px(bulletFontPx)
	drawString(dst, c.bulletFace, "•  "+item, c.px(marginPx), baseline, col)
}

func (c *Compositor) drawCTA(dst *image.RGBA, label string, top int, opacity float64) {
	if label == "" {
		return
	}
	textW := int(layout.Measurer(c.ctaFace)(label))
	pillW := textW + 2*c.px(pillPadX)
	x1 := c.width - c.px(marginPx)
	rect := image.Rect(x1-pillW, top, x1, top+c.px(pillHeightPx))

	fillRoundedRect(dst, rect, float64(c.px(pillHeightPx))/2, scaleAlpha(pillFill, opacity))
	baseline := top + (c.px(pillHeightPx)+c.px(ctaFontPx))/2 - c.px(2)
	drawString(dst, c.ctaFace, label, x1-pillW+c.px(pillPadX), baseline, scaleAlpha(pillText, opacity))
}

// scaleAlpha multiplies a color's alpha by an opacity in [0,1].
func scaleAlpha(col color.NRGBA, opacity float64) color.NRGBA {
	col.A = uint8(float64(col.A)*camera.Clamp01(opacity) + 0.5)
	return col
}
