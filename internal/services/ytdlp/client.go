package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/services"
	"clipper/internal/timecode"
)

// ErrNoArtifact reports that the downloader exited cleanly but no output
// file could be located.
var ErrNoArtifact = errors.New("downloader produced no file")

// knownExtensions lists container extensions the downloader is known to
// emit, in resolution preference order.
var knownExtensions = []string{".mkv", ".mp4", ".webm", ".m4a"}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp segment acquisition.
type Client struct {
	binary    string
	format    string
	container string
	timeout   time.Duration
	exec      services.Executor
}

// New constructs a downloader client.
func New(binary, format, container string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("downloader binary required")
	}
	client := &Client{
		binary:    binary,
		format:    format,
		container: strings.TrimPrefix(strings.TrimSpace(container), "."),
		timeout:   time.Duration(timeoutSeconds) * time.Second,
		exec:      services.CommandExecutor{},
	}
	if client.format == "" {
		client.format = "bv*+ba/b"
	}
	if client.container == "" {
		client.container = "mkv"
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Stem builds the deterministic output name stem for a request. The request
// ID prefix keeps concurrent requests for overlapping windows from
// colliding on disk.
func Stem(requestID string, start, end timecode.TimeCode) string {
	id := strings.ReplaceAll(strings.TrimSpace(requestID), "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("clip_%s_%s_%s", id, start.Slug(), end.Slug())
}

// FetchSegment asks the downloader for only [start, end) of the source and
// returns the path of the file it produced. The tool chooses the final
// extension at runtime, so the result is located by probing rather than
// trusting the exit status alone. A logical failure may still leave partial
// files on disk; callers sweep by stem.
func (c *Client) FetchSegment(ctx context.Context, locator, destDir, stem string, start, end timecode.TimeCode) (string, error) {
	if strings.TrimSpace(locator) == "" {
		return "", services.Wrap(services.ErrAcquisition, "downloader", "fetch", "empty locator", nil)
	}
	if strings.TrimSpace(stem) == "" {
		return "", services.Wrap(services.ErrAcquisition, "downloader", "fetch", "empty output stem", nil)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrAcquisition, "downloader", "prepare destination", "", err)
	}

	fetchCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	section := fmt.Sprintf("*%s-%s", start, end)
	outTemplate := filepath.Join(destDir, stem) + ".%(ext)s"
	args := []string{
		"--no-playlist",
		"-f", c.format,
		"--merge-output-format", c.container,
		"--download-sections", section,
		"-o", outTemplate,
		"--",
		locator,
	}

	tail := services.NewOutputTail(8)
	if err := c.exec.Run(fetchCtx, c.binary, args, tail.Append); err != nil {
		if fetchCtx.Err() != nil && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "downloader", "fetch",
				fmt.Sprintf("gave up after %s", c.timeout), err)
		}
		return "", services.Wrap(services.ErrAcquisition, "downloader", "fetch", tail.String(), err)
	}

	if path, ok := c.resolve(destDir, stem); ok {
		return path, nil
	}
	return "", services.Wrap(services.ErrAcquisition, "downloader", "resolve", "", ErrNoArtifact)
}

// resolve locates the downloader's output. The expected canonical extension
// is checked first, then the known container extensions, then any regular
// file sharing the stem prefix. Directory scanning is the last resort: the
// tool reports success without telling us the file name it chose.
func (c *Client) resolve(destDir, stem string) (string, bool) {
	base := filepath.Join(destDir, stem)

	if path, ok := regularFile(base + "." + c.container); ok {
		return path, ok
	}
	for _, ext := range knownExtensions {
		if path, ok := regularFile(base + ext); ok {
			return path, ok
		}
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), stem) {
			continue
		}
		return filepath.Join(destDir, entry.Name()), true
	}
	return "", false
}

func regularFile(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
