package services_test

import (
	"errors"
	"strings"
	"testing"

	"clipper/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("exit status 1")
	err := services.Wrap(services.ErrTranscode, "ffmpeg", "copy trim", "stream copy rejected", inner)
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatal("expected ErrTranscode marker")
	}
	if !errors.Is(err, inner) {
		t.Fatal("expected wrapped cause to be preserved")
	}
	for _, fragment := range []string{"ffmpeg", "copy trim", "stream copy rejected"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("missing %q in %q", fragment, err.Error())
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrAcquisition, "yt-dlp", "resolve", "no file produced", nil)
	if !errors.Is(err, services.ErrAcquisition) {
		t.Fatal("expected ErrAcquisition marker")
	}
}

func TestTruncateBoundsOutput(t *testing.T) {
	long := strings.Repeat("x", 2*services.DetailLimit)
	got := services.Truncate(long, 0)
	if len(got) > services.DetailLimit+len(" [truncated]") {
		t.Fatalf("truncation did not bound output: %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "[truncated]") {
		t.Fatal("expected truncation marker")
	}
	if services.Truncate("short", 0) != "short" {
		t.Fatal("short strings must pass through unchanged")
	}
}

func TestOutputTailKeepsLastLines(t *testing.T) {
	tail := services.NewOutputTail(3)
	for _, line := range []string{"a", "b", "c", "d", "e"} {
		tail.Append(line)
	}
	got := tail.String()
	if strings.Contains(got, "a") || strings.Contains(got, "b") {
		t.Fatalf("old lines retained: %q", got)
	}
	for _, want := range []string{"c", "d", "e"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in %q", want, got)
		}
	}
}
