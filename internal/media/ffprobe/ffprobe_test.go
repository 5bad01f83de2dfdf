package ffprobe_test

import (
	"encoding/json"
	"testing"

	"clipper/internal/media/ffprobe"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "vp9", "codec_type": "video", "pix_fmt": "yuv420p", "width": 1920, "height": 1080},
    {"index": 1, "codec_name": "opus", "codec_type": "audio"}
  ],
  "format": {"filename": "clip.mkv", "duration": "3600.043000", "size": "123456789", "format_name": "matroska,webm"}
}`

func decode(t *testing.T) ffprobe.Result {
	t.Helper()
	var result ffprobe.Result
	if err := json.Unmarshal([]byte(sampleOutput), &result); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	return result
}

func TestDurationSeconds(t *testing.T) {
	result := decode(t)
	if got := result.DurationSeconds(); got < 3600 || got > 3601 {
		t.Fatalf("unexpected duration: %v", got)
	}
}

func TestDurationSecondsHandlesGarbage(t *testing.T) {
	result := ffprobe.Result{Format: ffprobe.Format{Duration: "N/A"}}
	if got := result.DurationSeconds(); got != 0 {
		t.Fatalf("expected 0 for unparsable duration, got %v", got)
	}
}

func TestPrimaryVideo(t *testing.T) {
	result := decode(t)
	stream, ok := result.PrimaryVideo()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if stream.CodecName != "vp9" || stream.PixFmt != "yuv420p" {
		t.Fatalf("unexpected stream: %+v", stream)
	}

	audioOnly := ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "audio"}}}
	if _, ok := audioOnly.PrimaryVideo(); ok {
		t.Fatal("audio-only result must not report a video stream")
	}
}

func TestContainer(t *testing.T) {
	result := decode(t)
	if result.Container() != "matroska,webm" {
		t.Fatalf("unexpected container: %q", result.Container())
	}
}
