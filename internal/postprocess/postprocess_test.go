package postprocess

import (
	"context"
	"image"
	"os"
	"testing"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o600)
}

func TestAssetKeyIsContentAddressed(t *testing.T) {
	a := assetKey("owner-1", []byte("same bytes"), ".webp")
	b := assetKey("owner-1", []byte("same bytes"), ".webp")
	if a != b {
		t.Errorf("same content produced different keys: %q vs %q", a, b)
	}
	c := assetKey("owner-1", []byte("other bytes"), ".webp")
	if a == c {
		t.Error("different content produced the same key")
	}
	d := assetKey("owner-2", []byte("same bytes"), ".webp")
	if a == d {
		t.Error("different owners share a key")
	}
}

func TestMediaClass(t *testing.T) {
	cases := map[string]string{
		"image/webp":               "image",
		"video/mp4":                "video",
		"audio/mpeg; charset=bin":  "audio",
		"application/octet-stream": "application",
	}
	for in, want := range cases {
		if got := mediaClass(in); got != want {
			t.Errorf("mediaClass(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDownscaleKeepsAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4000, 2000))
	out := downscale(src, 2048)
	b := out.Bounds()
	if b.Dx() != 2048 || b.Dy() != 1024 {
		t.Errorf("downscale = %dx%d, want 2048x1024", b.Dx(), b.Dy())
	}
}

func TestDownscalePassThrough(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 600))
	if out := downscale(src, 2048); out != image.Image(src) {
		t.Error("in-bounds image should pass through unchanged")
	}
}

type recordingRunner struct {
	name string
	args []string
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) error {
	r.name = name
	r.args = args
	// Emulate ffmpeg writing the output file.
	out := args[len(args)-1]
	return writeFile(out, []byte("encoded"))
}

func TestFFmpegNormalizeAudio(t *testing.T) {
	runner := &recordingRunner{}
	f := &FFmpeg{Path: "ffmpeg", Runner: runner}

	out, err := f.NormalizeAudio(context.Background(), []byte("raw audio"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "encoded" {
		t.Errorf("output = %q", out)
	}
	if runner.name != "ffmpeg" {
		t.Errorf("ran %q", runner.name)
	}
	found := false
	for _, a := range runner.args {
		if a == "loudnorm=I=-16:TP=-1.5:LRA=11" {
			found = true
		}
	}
	if !found {
		t.Errorf("loudnorm filter missing from args %v", runner.args)
	}
}
