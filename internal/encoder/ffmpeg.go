package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// VP9Encoder pipes raw RGBA frames into an ffmpeg process producing a
// VP9-in-WebM stream, the streaming-capable container browsers expect.
type VP9Encoder struct {
	ffmpegPath string
	quality    int // CRF, 0 = default

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	grp     *errgroup.Group
	logBuf  bytes.Buffer
	tmpDir  string
	outPath string
	lastTs  int
	done    bool
}

func NewVP9Encoder(ffmpegPath string, quality int) *VP9Encoder {
	if quality <= 0 {
		quality = 32
	}
	return &VP9Encoder{ffmpegPath: ffmpegPath, quality: quality, lastTs: -1}
}

func (e *VP9Encoder) MimeType() string { return "video/webm" }
func (e *VP9Encoder) FileExt() string  { return ".webm" }

func (e *VP9Encoder) Begin(width, height, fps int) error {
	tmpDir, err := os.MkdirTemp("", "promoreel_")
	if err != nil {
		return fmt.Errorf("%w: temp dir: %v", ErrUnavailable, err)
	}
	e.tmpDir = tmpDir
	e.outPath = filepath.Join(tmpDir, "out.webm")

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-c:v", "libvpx-vp9",
		"-b:v", "0",
		"-crf", fmt.Sprintf("%d", e.quality),
		"-deadline", "realtime",
		"-cpu-used", "4",
		"-row-mt", "1",
		"-threads", fmt.Sprintf("%d", runtime.NumCPU()),
		"-pix_fmt", "yuv420p",
		e.outPath,
	}

	e.cmd = exec.Command(e.ffmpegPath, args...)
	e.cmd.Stdout = &e.logBuf

	stderr, err := e.cmd.StderrPipe()
	if err != nil {
		e.cleanup()
		return fmt.Errorf("%w: stderr pipe: %v", ErrUnavailable, err)
	}
	e.stdin, err = e.cmd.StdinPipe()
	if err != nil {
		e.cleanup()
		return fmt.Errorf("%w: stdin pipe: %v", ErrUnavailable, err)
	}

	if err := e.cmd.Start(); err != nil {
		e.cleanup()
		return fmt.Errorf("%w: ffmpeg start: %v", ErrUnavailable, err)
	}

	// Drain stderr while frames stream in, otherwise ffmpeg can stall on a
	// full pipe.
	e.grp = new(errgroup.Group)
	e.grp.Go(func() error {
		_, err := io.Copy(&e.logBuf, stderr)
		return err
	})

	return nil
}

func (e *VP9Encoder) EncodeFrame(img *image.RGBA, timestampMs int) error {
	if e.done {
		return fmt.Errorf("encode frame: encoder already finalized")
	}
	if timestampMs <= e.lastTs {
		return fmt.Errorf("encode frame: timestamp %dms not after %dms", timestampMs, e.lastTs)
	}
	e.lastTs = timestampMs

	if err := writeRawRGBA(e.stdin, img); err != nil {
		return fmt.Errorf("write raw frame: %w", err)
	}
	return nil
}

func (e *VP9Encoder) End() ([]byte, error) {
	if e.done {
		return nil, fmt.Errorf("end: encoder already finalized")
	}
	e.done = true
	defer e.cleanup()

	e.stdin.Close()
	pipeErr := e.grp.Wait()
	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %v\nlog: %s", err, e.logBuf.String())
	}
	if pipeErr != nil {
		return nil, fmt.Errorf("ffmpeg log pipe: %w", pipeErr)
	}

	data, err := os.ReadFile(e.outPath)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return data, nil
}

func (e *VP9Encoder) cleanup() {
	if e.stdin != nil {
		e.stdin.Close()
	}
	if e.tmpDir != "" {
		os.RemoveAll(e.tmpDir)
		e.tmpDir = ""
	}
}

// writeRawRGBA streams the pixel data of img, converting on the fly when
// the buffer does not have the canonical stride.
func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
