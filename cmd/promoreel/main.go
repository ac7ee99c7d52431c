package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/deenply/promoreel/internal/config"
	"github.com/deenply/promoreel/internal/encoder"
	"github.com/deenply/promoreel/internal/scene"
	"github.com/deenply/promoreel/internal/script"
	"github.com/deenply/promoreel/internal/session"
	"github.com/deenply/promoreel/internal/source"
	"github.com/deenply/promoreel/internal/system"
)

func main() {
	system.InitResourceLimits()

	imagePtr := flag.String("image", "", "Path to the source image (JPEG/PNG) or a PDF whose first page is used")
	aspectPtr := flag.String("aspect", "9:16", "Output aspect: 9:16 or 4:5")
	durationPtr := flag.Int("duration", 15, "Clip duration in seconds (5..60)")
	fpsPtr := flag.Int("fps", 30, "Frames per second")
	scriptPtr := flag.String("script", "", "Path to an overlay script YAML (stock overlays if empty)")
	writeScriptPtr := flag.String("write-script", "", "Write the stock overlay script to this path and exit")
	outputPtr := flag.String("output", "", "Output path (derived from the aspect if empty)")
	qualityPtr := flag.Int("quality", 0, "VP9 CRF (0 = default 32)")
	statsPtr := flag.Bool("stats", false, "Print timing stats after the export")

	flag.Parse()

	if *writeScriptPtr != "" {
		if err := script.Write(script.Default(), *writeScriptPtr); err != nil {
			log.Fatalf("[-] Could not write script: %v", err)
		}
		fmt.Printf("[+++] Stock overlay script written: %s\n", *writeScriptPtr)
		return
	}

	aspect, err := config.ParseAspect(*aspectPtr)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	cfg := &config.Config{
		ImagePath:   *imagePtr,
		OutputVideo: *outputPtr,
		ScriptPath:  *scriptPtr,
		Aspect:      aspect,
		Duration:    *durationPtr,
		FPS:         *fpsPtr,
		Quality:     *qualityPtr,
		ShowStats:   *statsPtr,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}
	if cfg.ImagePath == "" {
		log.Fatalf("[-] -image is required")
	}

	if cfg.ShowStats {
		system.LogSnapshot()
	}

	src, err := source.Open(cfg.ImagePath)
	if err != nil {
		log.Fatalf("[-] Could not open source: %v", err)
	}
	defer src.Close()

	img, err := src.Render()
	if err != nil {
		log.Fatalf("[-] Could not decode source: %v", err)
	}

	sc := script.Default()
	if cfg.ScriptPath != "" {
		sc, err = script.Read(cfg.ScriptPath)
		if err != nil {
			log.Fatalf("[-] Could not read script: %v", err)
		}
	}

	scn := scene.New(img, cfg.Aspect, cfg.Duration, sc)
	fmt.Printf("[*] Source: %s | Frame: %dx%d @ %d FPS | Duration: %ds\n",
		filepath.Base(cfg.ImagePath), scn.Width, scn.Height, cfg.FPS, cfg.Duration)

	ctl := session.NewController(
		func() session.Scheduler { return session.NewOfflineScheduler(cfg.FPS) },
		func() encoder.Encoder { return encoder.NewBest(cfg.Quality) },
		cfg.FPS,
	)
	if err := ctl.OnSceneReady(scn); err != nil {
		log.Fatalf("[-] %v", err)
	}

	startTime := time.Now()
	sess, err := ctl.StartRecording()
	if err != nil {
		if errors.Is(err, session.ErrInvalidScene) {
			log.Fatalf("[-] Invalid scene: %v", err)
		}
		if errors.Is(err, encoder.ErrUnavailable) {
			log.Fatalf("[-] No encoder available: %v", err)
		}
		log.Fatalf("[-] Recording failed to start: %v", err)
	}
	sess.Wait()

	if sess.State() != session.StateReady {
		log.Fatalf("[-] Recording failed: %v", sess.Err())
	}

	artifact := sess.Artifact()
	outPath := cfg.OutputVideo
	if outPath == "" {
		outPath = artifact.FileName
	}
	if err := os.WriteFile(outPath, artifact.Bytes, 0644); err != nil {
		log.Fatalf("[-] Could not write output: %v", err)
	}

	if cfg.ShowStats {
		total := time.Since(startTime)
		fmt.Printf("--- [EXPORT REPORT] ---\n"+
			"Total Time: %.2fs\n"+
			"Frames: %d\n"+
			"Effective FPS: %.2f\n"+
			"Artifact: %d KB (%s)\n"+
			"-----------------------\n",
			total.Seconds(), artifact.Frames, float64(artifact.Frames)/total.Seconds(),
			len(artifact.Bytes)/1024, artifact.MimeType)
	}

	fmt.Printf("[+++] Success! Result: %s\n", outPath)
}
