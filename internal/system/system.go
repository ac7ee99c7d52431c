package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit so ffmpeg and temp frame
// files do not hit the default cap on macOS/Linux.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read open-file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not raise open-file limit: %v", err)
	}
}

// FindFFmpeg locates an ffmpeg binary on PATH or in the usual install
// directories. Returns the path and whether one was found.
func FindFFmpeg() (string, bool) {
	names := []string{"ffmpeg"}
	if runtime.GOOS == "windows" {
		names = []string{"ffmpeg.exe", "ffmpeg"}
	}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}

	var commonPaths []string
	switch runtime.GOOS {
	case "darwin":
		commonPaths = []string{"/usr/local/bin/ffmpeg", "/opt/homebrew/bin/ffmpeg", "/opt/local/bin/ffmpeg"}
	case "linux":
		commonPaths = []string{"/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg"}
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	return "", false
}

// HasEncoder checks whether the given ffmpeg binary supports an encoder,
// e.g. libvpx-vp9.
func HasEncoder(ffmpegPath, encoder string) bool {
	out, err := exec.Command(ffmpegPath, "-encoders").CombinedOutput()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), encoder)
}

// LogSnapshot prints a one-line hardware summary before an export starts.
func LogSnapshot() {
	cores, err := cpu.Counts(true)
	if err != nil {
		cores = runtime.NumCPU()
	}
	line := fmt.Sprintf("[*] System: %d logical cores", cores)
	if vm, err := mem.VirtualMemory(); err == nil {
		line += fmt.Sprintf(" | RAM available: %d MB", vm.Available/1024/1024)
	}
	fmt.Println(line)
}
