package encoder

import (
	"errors"
	"fmt"
	"image"

	"github.com/deenply/promoreel/internal/system"
)

// ErrUnavailable means no encoder could be initialized on this host. A
// session that hits it never produces an artifact.
var ErrUnavailable = errors.New("encoder: unavailable")

// Encoder consumes rendered frames in strict timestamp order and yields the
// finished byte stream on End.
type Encoder interface {
	// Begin initializes the encoder for the given frame geometry. Failing
	// here must not leave anything behind: no partial artifact, no temp
	// files.
	Begin(width, height, fps int) error

	// EncodeFrame appends one frame. Timestamps must be strictly
	// increasing; out-of-order frames are rejected.
	EncodeFrame(img *image.RGBA, timestampMs int) error

	// End finalizes the stream and returns the encoded bytes. After End
	// (successful or not) the encoder cannot be reused.
	End() ([]byte, error)

	// MimeType and FileExt describe the produced container.
	MimeType() string
	FileExt() string
}

// NewBest picks the best encoder available on this host: VP9-in-WebM when
// ffmpeg is present, MJPEG AVI as a fallback for hosts without it.
func NewBest(quality int) Encoder {
	if path, ok := system.FindFFmpeg(); ok {
		if system.HasEncoder(path, "libvpx-vp9") {
			return NewVP9Encoder(path, quality)
		}
		fmt.Println("[!] ffmpeg has no libvpx-vp9, falling back to MJPEG AVI")
	} else {
		fmt.Println("[!] ffmpeg not found, falling back to MJPEG AVI")
	}
	return NewMJPEGEncoder(85)
}
