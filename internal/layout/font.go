package layout

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// LoadFace creates a font face of the given pixel size from the embedded Go
// fonts, so no font files need to ship next to the binary.
func LoadFace(size float64, bold bool) (font.Face, error) {
	data := goregular.TTF
	if bold {
		data = gobold.TTF
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// Measurer adapts a font face to a MeasureFunc for Wrap.
func Measurer(face font.Face) MeasureFunc {
	return func(s string) float64 {
		return float64(font.MeasureString(face, s).Ceil())
	}
}
