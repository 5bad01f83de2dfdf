package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/services"
	"clipper/internal/services/ytdlp"
	"clipper/internal/timecode"
)

type fakeExecutor struct {
	err      error
	onRun    func(args []string)
	produces []string
	dir      string
	lines    []string
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	if f.onRun != nil {
		f.onRun(args)
	}
	for _, line := range f.lines {
		onLine(line)
	}
	for _, name := range f.produces {
		if err := os.WriteFile(filepath.Join(f.dir, name), []byte("media"), 0o644); err != nil {
			return err
		}
	}
	return f.err
}

func mustParse(t *testing.T, s string) timecode.TimeCode {
	t.Helper()
	tc, err := timecode.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return tc
}

func TestFetchSegmentRequestsOnlyTheWindow(t *testing.T) {
	dir := t.TempDir()
	var captured []string
	exec := &fakeExecutor{dir: dir, produces: []string{"clip_aa_00-02-21_00-02-50.mkv"}, onRun: func(args []string) {
		captured = args
	}}
	client, err := ytdlp.New("yt-dlp", "bv*+ba/b", "mkv", 600, ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	start, end := mustParse(t, "00:02:21"), mustParse(t, "00:02:50")
	path, err := client.FetchSegment(context.Background(), "https://youtu.be/abc", dir, "clip_aa_00-02-21_00-02-50", start, end)
	if err != nil {
		t.Fatalf("FetchSegment returned error: %v", err)
	}
	if filepath.Base(path) != "clip_aa_00-02-21_00-02-50.mkv" {
		t.Fatalf("unexpected artifact: %q", path)
	}

	joined := strings.Join(captured, " ")
	if !strings.Contains(joined, "--download-sections *00:02:21-00:02:50") {
		t.Fatalf("window not requested: %q", joined)
	}
	if !strings.Contains(joined, "--merge-output-format mkv") {
		t.Fatalf("container not requested: %q", joined)
	}
}

func TestResolveFallsBackThroughKnownExtensions(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{dir: dir, produces: []string{"stem.webm"}}
	client, err := ytdlp.New("yt-dlp", "", "mkv", 600, ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	path, err := client.FetchSegment(context.Background(), "https://youtu.be/abc", dir, "stem",
		mustParse(t, "00:00:01"), mustParse(t, "00:00:02"))
	if err != nil {
		t.Fatalf("FetchSegment returned error: %v", err)
	}
	if filepath.Base(path) != "stem.webm" {
		t.Fatalf("unexpected artifact: %q", path)
	}
}

func TestResolveLastResortPrefixScan(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{dir: dir, produces: []string{"stem.f137.unexpected"}}
	client, err := ytdlp.New("yt-dlp", "", "mkv", 600, ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	path, err := client.FetchSegment(context.Background(), "https://youtu.be/abc", dir, "stem",
		mustParse(t, "00:00:01"), mustParse(t, "00:00:02"))
	if err != nil {
		t.Fatalf("FetchSegment returned error: %v", err)
	}
	if filepath.Base(path) != "stem.f137.unexpected" {
		t.Fatalf("unexpected artifact: %q", path)
	}
}

func TestCleanExitWithoutFileIsAcquisitionFailure(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{dir: dir}
	client, err := ytdlp.New("yt-dlp", "", "mkv", 600, ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.FetchSegment(context.Background(), "https://youtu.be/abc", dir, "stem",
		mustParse(t, "00:00:01"), mustParse(t, "00:00:02"))
	if !errors.Is(err, services.ErrAcquisition) {
		t.Fatalf("expected ErrAcquisition, got %v", err)
	}
	if !errors.Is(err, ytdlp.ErrNoArtifact) {
		t.Fatalf("expected ErrNoArtifact cause, got %v", err)
	}
}

func TestToolFailureIsDistinguishedFromMissingFile(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{dir: dir, err: errors.New("exit status 1"), lines: []string{"ERROR: video unavailable"}}
	client, err := ytdlp.New("yt-dlp", "", "mkv", 600, ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.FetchSegment(context.Background(), "https://youtu.be/abc", dir, "stem",
		mustParse(t, "00:00:01"), mustParse(t, "00:00:02"))
	if !errors.Is(err, services.ErrAcquisition) {
		t.Fatalf("expected ErrAcquisition, got %v", err)
	}
	if errors.Is(err, ytdlp.ErrNoArtifact) {
		t.Fatal("tool failure must not report ErrNoArtifact")
	}
	if !strings.Contains(err.Error(), "video unavailable") {
		t.Fatalf("diagnostic tail missing: %v", err)
	}
}

func TestStemNamespacesByRequestID(t *testing.T) {
	start, end := mustParse(t, "00:02:21"), mustParse(t, "00:02:50")
	a := ytdlp.Stem("0f8fad5b-d9cb-469f-a165-70867728950e", start, end)
	b := ytdlp.Stem("7c9e6679-7425-40de-944b-e07fc1f90ae7", start, end)
	if a == b {
		t.Fatal("identical windows on different requests must not collide")
	}
	if !strings.Contains(a, "00-02-21") || !strings.Contains(a, "00-02-50") {
		t.Fatalf("stem missing window: %q", a)
	}
	if strings.ContainsAny(a, ": ") {
		t.Fatalf("stem not filesystem-safe: %q", a)
	}
}
