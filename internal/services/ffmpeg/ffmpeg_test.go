package ffmpeg_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clipper/internal/services"
	"clipper/internal/services/ffmpeg"
	"clipper/internal/timecode"
)

type captureExecutor struct {
	args []string
	err  error
	wait time.Duration
}

func (c *captureExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	c.args = args
	if c.wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.wait):
		}
	}
	return c.err
}

var target = ffmpeg.Target{
	VideoCodec:   "libx264",
	PixelFormat:  "yuv420p",
	Preset:       "fast",
	CRF:          23,
	AudioCodec:   "aac",
	AudioBitrate: "192k",
}

func TestCopyModeArgs(t *testing.T) {
	exec := &captureExecutor{}
	client, err := ffmpeg.New("ffmpeg", ffmpeg.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	start, _ := timecode.Parse("00:02:21")
	slice := &ffmpeg.Slice{Start: start, DurationSeconds: 29}
	if err := client.Transcode(context.Background(), "in.mkv", "out.mkv", slice, ffmpeg.ModeCopy, target, time.Minute); err != nil {
		t.Fatalf("Transcode returned error: %v", err)
	}

	joined := strings.Join(exec.args, " ")
	if !strings.Contains(joined, "-ss 00:02:21 -i in.mkv -t 29") {
		t.Fatalf("slice args wrong: %q", joined)
	}
	if !strings.Contains(joined, "-c copy") {
		t.Fatalf("copy mode missing: %q", joined)
	}
	if strings.Contains(joined, "libx264") {
		t.Fatalf("copy mode must not carry encoder args: %q", joined)
	}
}

func TestEncodeModeArgs(t *testing.T) {
	exec := &captureExecutor{}
	client, err := ffmpeg.New("ffmpeg", ffmpeg.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := client.Transcode(context.Background(), "in.mkv", "out.mp4", nil, ffmpeg.ModeEncode, target, time.Minute); err != nil {
		t.Fatalf("Transcode returned error: %v", err)
	}

	joined := strings.Join(exec.args, " ")
	for _, want := range []string{"-c:v libx264", "-pix_fmt yuv420p", "-c:a aac", "-b:a 192k", "-crf 23"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %q", want, joined)
		}
	}
	if strings.Contains(joined, "-ss") || strings.Contains(joined, "-t ") {
		t.Fatalf("no slice requested but slice args present: %q", joined)
	}
}

func TestNonZeroExitIsTranscodeFailure(t *testing.T) {
	exec := &captureExecutor{err: errors.New("exit status 1")}
	client, err := ffmpeg.New("ffmpeg", ffmpeg.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	err = client.Transcode(context.Background(), "in.mkv", "out.mkv", nil, ffmpeg.ModeCopy, target, time.Minute)
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected ErrTranscode, got %v", err)
	}
}

func TestTimeoutSurfacedDistinctly(t *testing.T) {
	exec := &captureExecutor{wait: time.Second}
	client, err := ffmpeg.New("ffmpeg", ffmpeg.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	err = client.Transcode(context.Background(), "in.mkv", "out.mkv", nil, ffmpeg.ModeEncode, target, 10*time.Millisecond)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if errors.Is(err, services.ErrTranscode) {
		t.Fatal("timeout must not classify as generic transcode failure")
	}
}
