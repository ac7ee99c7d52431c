package compositor

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/deenply/promoreel/internal/camera"
)

// fillRect overwrites a rectangle with a solid color.
func fillRect(dst *image.RGBA, r image.Rectangle, col color.NRGBA) {
	xdraw.Draw(dst, r, image.NewUniform(col), image.Point{}, xdraw.Src)
}

// drawCover scales the source image so it fully covers the frame, applies
// the camera zoom on top, centers it, and offsets by the pan fractions.
// The destination rectangle may extend past the frame; the scaler clips.
func drawCover(dst *image.RGBA, src image.Image, cam camera.State) {
	if src == nil {
		return
	}
	fb := dst.Bounds()
	sb := src.Bounds()
	fw, fh := float64(fb.Dx()), float64(fb.Dy())
	iw, ih := float64(sb.Dx()), float64(sb.Dy())
	if iw == 0 || ih == 0 {
		return
	}

	scale := math.Max(fw/iw, fh/ih) * cam.Zoom
	dw, dh := iw*scale, ih*scale
	x0 := (fw-dw)/2 + cam.PanX*fw
	y0 := (fh-dh)/2 + cam.PanY*fh

	dr := image.Rect(
		fb.Min.X+int(math.Round(x0)),
		fb.Min.Y+int(math.Round(y0)),
		fb.Min.X+int(math.Round(x0+dw)),
		fb.Min.Y+int(math.Round(y0+dh)),
	)
	xdraw.ApproxBiLinear.Scale(dst, dr, src, sb, xdraw.Src, nil)
}

// drawBottomGradient darkens the frame from startFrac of the height down to
// the bottom edge, with alpha ramping linearly from 0 to maxAlpha.
func drawBottomGradient(dst *image.RGBA, startFrac, maxAlpha float64) {
	b := dst.Bounds()
	y0 := b.Min.Y + int(float64(b.Dy())*startFrac)
	span := b.Max.Y - 1 - y0
	if span <= 0 {
		return
	}

	for y := y0; y < b.Max.Y; y++ {
		a := maxAlpha * float64(y-y0) / float64(span)
		keep := uint32(math.Round((1 - a) * 255))
		i := dst.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Pix[i+0] = uint8(uint32(dst.Pix[i+0]) * keep / 255)
			dst.Pix[i+1] = uint8(uint32(dst.Pix[i+1]) * keep / 255)
			dst.Pix[i+2] = uint8(uint32(dst.Pix[i+2]) * keep / 255)
			i += 4
		}
	}
}

// blendPixel composites col over the destination pixel.
func blendPixel(dst *image.RGBA, x, y int, col color.NRGBA) {
	if !(image.Point{X: x, Y: y}.In(dst.Rect)) || col.A == 0 {
		return
	}
	a := uint32(col.A)
	i := dst.PixOffset(x, y)
	dst.Pix[i+0] = uint8((uint32(col.R)*a + uint32(dst.Pix[i+0])*(255-a)) / 255)
	dst.Pix[i+1] = uint8((uint32(col.G)*a + uint32(dst.Pix[i+1])*(255-a)) / 255)
	dst.Pix[i+2] = uint8((uint32(col.B)*a + uint32(dst.Pix[i+2])*(255-a)) / 255)
	dst.Pix[i+3] = 255
}

// fillRoundedRect fills a rectangle with rounded corners, blending the
// translucent fill over whatever is underneath.
func fillRoundedRect(dst *image.RGBA, r image.Rectangle, radius float64, col color.NRGBA) {
	maxR := math.Min(float64(r.Dx()), float64(r.Dy())) / 2
	if radius > maxR {
		radius = maxR
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5

			// Distance check only matters inside the corner squares.
			cx := math.Max(float64(r.Min.X)+radius-fx, fx-(float64(r.Max.X)-radius))
			cy := math.Max(float64(r.Min.Y)+radius-fy, fy-(float64(r.Max.Y)-radius))
			if cx > 0 && cy > 0 && math.Hypot(cx, cy) > radius {
				continue
			}
			blendPixel(dst, x, y, col)
		}
	}
}

// drawString renders text with the given face and color, baseline at (x, y).
func drawString(dst *image.RGBA, face font.Face, s string, x, y int, col color.NRGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawImageFaded composites img at the given point with a global opacity,
// used for the QR code that shares the CTA fade.
func drawImageFaded(dst *image.RGBA, img image.Image, at image.Point, opacity float64) {
	op := camera.Clamp01(opacity)
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a == 0 {
				continue
			}
			blendPixel(dst, at.X+x, at.Y+y, color.NRGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(bl >> 8),
				A: uint8(float64(a>>8) * op),
			})
		}
	}
}
