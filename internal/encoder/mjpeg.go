package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"
)

// MJPEGEncoder writes a Motion-JPEG AVI. It needs no external binary, so
// hosts without ffmpeg still get a playable artifact.
type MJPEGEncoder struct {
	quality int

	writer  mjpeg.AviWriter
	tmpDir  string
	outPath string
	lastTs  int
	done    bool
}

func NewMJPEGEncoder(quality int) *MJPEGEncoder {
	if quality <= 0 {
		quality = 85
	}
	return &MJPEGEncoder{quality: quality, lastTs: -1}
}

func (e *MJPEGEncoder) MimeType() string { return "video/avi" }
func (e *MJPEGEncoder) FileExt() string  { return ".avi" }

func (e *MJPEGEncoder) Begin(width, height, fps int) error {
	tmpDir, err := os.MkdirTemp("", "promoreel_")
	if err != nil {
		return fmt.Errorf("%w: temp dir: %v", ErrUnavailable, err)
	}
	e.tmpDir = tmpDir
	e.outPath = filepath.Join(tmpDir, "out.avi")

	writer, err := mjpeg.New(e.outPath, int32(width), int32(height), int32(fps))
	if err != nil {
		os.RemoveAll(tmpDir)
		e.tmpDir = ""
		return fmt.Errorf("%w: avi writer: %v", ErrUnavailable, err)
	}
	e.writer = writer
	return nil
}

func (e *MJPEGEncoder) EncodeFrame(img *image.RGBA, timestampMs int) error {
	if e.done {
		return fmt.Errorf("encode frame: encoder already finalized")
	}
	if timestampMs <= e.lastTs {
		return fmt.Errorf("encode frame: timestamp %dms not after %dms", timestampMs, e.lastTs)
	}
	e.lastTs = timestampMs

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return fmt.Errorf("jpeg encode: %w", err)
	}
	return e.writer.AddFrame(buf.Bytes())
}

func (e *MJPEGEncoder) End() ([]byte, error) {
	if e.done {
		return nil, fmt.Errorf("end: encoder already finalized")
	}
	e.done = true
	defer func() {
		if e.tmpDir != "" {
			os.RemoveAll(e.tmpDir)
			e.tmpDir = ""
		}
	}()

	if err := e.writer.Close(); err != nil {
		return nil, fmt.Errorf("close avi: %w", err)
	}
	return os.ReadFile(e.outPath)
}
