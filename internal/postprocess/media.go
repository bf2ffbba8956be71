package postprocess

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// CommandRunner abstracts process execution so tests can stub ffmpeg.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("postprocess: %s: %w: %s", name, err, out)
	}
	return nil
}

// FFmpeg wraps the ffmpeg binary for audio and video normalization.
type FFmpeg struct {
	Path   string
	Runner CommandRunner
}

func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{Path: path, Runner: execRunner{}}
}

// NormalizeAudio applies EBU R128 loudness normalization and returns the
// re-encoded bytes as mp3.
func (f *FFmpeg) NormalizeAudio(ctx context.Context, data []byte) ([]byte, error) {
	return f.transform(ctx, data, ".mp3", "-af", "loudnorm=I=-16:TP=-1.5:LRA=11", "-codec:a", "libmp3lame", "-q:a", "2")
}

// RemuxVideo rewrites the container with the moov atom up front so browsers
// can start playback before the full download finishes.
func (f *FFmpeg) RemuxVideo(ctx context.Context, data []byte) ([]byte, error) {
	return f.transform(ctx, data, ".mp4", "-c", "copy", "-movflags", "+faststart")
}

func (f *FFmpeg) transform(ctx context.Context, data []byte, ext string, args ...string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "adforge-ffmpeg-*")
	if err != nil {
		return nil, fmt.Errorf("postprocess: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in"+ext)
	out := filepath.Join(dir, "out"+ext)
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, fmt.Errorf("postprocess: write input: %w", err)
	}

	full := append([]string{"-y", "-i", in}, args...)
	full = append(full, out)
	if err := f.Runner.Run(ctx, f.Path, full...); err != nil {
		return nil, err
	}

	result, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("postprocess: read output: %w", err)
	}
	return result, nil
}
