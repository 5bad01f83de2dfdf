package transcode

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/fileutil"
	"clipper/internal/logging"
	"clipper/internal/media/ffprobe"
	"clipper/internal/services"
	"clipper/internal/services/ffmpeg"
	"clipper/internal/timecode"
)

// Artifact describes a file acquired for one request. Fields beyond Path
// are populated by the probe step; Probed reports whether they can be
// trusted.
type Artifact struct {
	Path        string
	Duration    float64
	Container   string
	VideoCodec  string
	PixelFormat string
	Probed      bool
}

// Transcoder is the slice of the ffmpeg client the engine needs.
type Transcoder interface {
	Transcode(ctx context.Context, input, output string, slice *ffmpeg.Slice, mode ffmpeg.Mode, target ffmpeg.Target, timeout time.Duration) error
}

// ProbeFunc inspects a media file. Injected so tests can run without
// ffprobe on the PATH.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Config carries the fixed policy knobs for the decision engine.
type Config struct {
	FFprobeBinary          string
	Target                 ffmpeg.Target
	CompatibleVideoCodecs  []string
	CompatiblePixelFormats []string
	OversizeFactor         float64
	CopyTimeout            time.Duration
	EncodeTimeout          time.Duration
}

// Option configures the engine.
type Option func(*Engine)

// WithProbeFunc injects a custom prober (primarily for tests).
func WithProbeFunc(probe ProbeFunc) Option {
	return func(e *Engine) {
		if probe != nil {
			e.probe = probe
		}
	}
}

// Engine decides the minimum-cost path from an acquired artifact to a
// delivery-ready file and executes it.
type Engine struct {
	cfg        Config
	transcoder Transcoder
	probe      ProbeFunc
	logger     *slog.Logger
}

// NewEngine constructs a decision engine around the given transcoder.
func NewEngine(cfg Config, transcoder Transcoder, logger *slog.Logger, opts ...Option) *Engine {
	engine := &Engine{
		cfg:        cfg,
		transcoder: transcoder,
		logger:     logging.WithComponent(logger, "transcode"),
	}
	engine.probe = func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, cfg.FFprobeBinary, path)
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Prepare turns the acquired file at path into a delivery-ready file for the
// requested [start, end) window and returns its path. Every successful
// transcode step deletes its input immediately, so at most two files exist
// at any instant. The returned path may be the input itself when the
// artifact is already the requested window in a compatible format.
func (e *Engine) Prepare(ctx context.Context, path string, start, end timecode.TimeCode) (string, error) {
	artifact := e.inspect(ctx, path)
	window := end.TotalSeconds() - start.TotalSeconds()

	// Probe failure means compatibility is unknown; the only safe path is a
	// full re-encode to the compatibility target.
	if !artifact.Probed {
		e.logger.Warn("probe inconclusive, forcing conservative re-encode",
			logging.String("artifact", path))
		return e.encode(ctx, path, nil)
	}

	if e.needsTrim(artifact, window) {
		return e.trim(ctx, artifact, start, window)
	}

	if !e.compatible(artifact) {
		e.logger.Info("compatibility re-encode required",
			logging.String("video_codec", artifact.VideoCodec),
			logging.String("pixel_format", artifact.PixelFormat))
		return e.encode(ctx, path, nil)
	}

	e.logger.Info("artifact usable unchanged",
		logging.Float64("duration_seconds", artifact.Duration))
	return path, nil
}

func (e *Engine) inspect(ctx context.Context, path string) Artifact {
	artifact := Artifact{Path: path}
	result, err := e.probe(ctx, path)
	if err != nil {
		e.logger.Warn("probe failed", logging.Error(err))
		return artifact
	}
	artifact.Duration = result.DurationSeconds()
	artifact.Container = result.Container()
	if video, ok := result.PrimaryVideo(); ok {
		artifact.VideoCodec = video.CodecName
		artifact.PixelFormat = video.PixFmt
	}
	artifact.Probed = true
	return artifact
}

// needsTrim reports whether the downloader ignored the requested window and
// handed back (most of) the whole source.
func (e *Engine) needsTrim(artifact Artifact, windowSeconds int) bool {
	if artifact.Duration <= 0 || windowSeconds <= 0 {
		return false
	}
	return artifact.Duration > float64(windowSeconds)*e.cfg.OversizeFactor
}

// trim slices [start, start+window) out of the artifact. Stream copy is
// attempted first because it is near-instant; it commonly fails when the
// cut point does not land on a keyframe or the container rejects copy-trim,
// so a single re-encode fallback follows. The fallback has no fallback.
func (e *Engine) trim(ctx context.Context, artifact Artifact, start timecode.TimeCode, windowSeconds int) (string, error) {
	slice := &ffmpeg.Slice{Start: start, DurationSeconds: windowSeconds}

	// An incompatible artifact would need a re-encode even after a
	// successful copy-trim, so skip the copy attempt and slice and convert
	// in one pass.
	if !e.compatible(artifact) {
		e.logger.Info("trim requires re-encode, artifact not compatible",
			logging.String("video_codec", artifact.VideoCodec))
		return e.encode(ctx, artifact.Path, slice)
	}

	output := derivedPath(artifact.Path, "cut", filepath.Ext(artifact.Path))
	err := e.transcoder.Transcode(ctx, artifact.Path, output, slice, ffmpeg.ModeCopy, e.cfg.Target, e.cfg.CopyTimeout)
	if err == nil {
		e.logger.Info("stream-copy trim succeeded", logging.Int("window_seconds", windowSeconds))
		if removeErr := fileutil.RemoveIfExists(artifact.Path); removeErr != nil {
			e.logger.Warn("failed to remove trim input", logging.Error(removeErr))
		}
		return output, nil
	}
	if errors.Is(err, services.ErrTimeout) {
		return "", err
	}

	e.logger.Info("stream-copy trim rejected, falling back to re-encode",
		logging.Error(err))
	_ = fileutil.RemoveIfExists(output)
	return e.encode(ctx, artifact.Path, slice)
}

// encode re-encodes input to the compatibility target, optionally slicing,
// and deletes the input on success. Failure here is fatal for the run.
func (e *Engine) encode(ctx context.Context, input string, slice *ffmpeg.Slice) (string, error) {
	output := derivedPath(input, "enc", ".mp4")
	if err := e.transcoder.Transcode(ctx, input, output, slice, ffmpeg.ModeEncode, e.cfg.Target, e.cfg.EncodeTimeout); err != nil {
		_ = fileutil.RemoveIfExists(output)
		return "", err
	}
	if err := fileutil.RemoveIfExists(input); err != nil {
		e.logger.Warn("failed to remove encode input", logging.Error(err))
	}
	return output, nil
}

func (e *Engine) compatible(artifact Artifact) bool {
	if !artifact.Probed {
		return false
	}
	return contains(e.cfg.CompatibleVideoCodecs, artifact.VideoCodec) &&
		contains(e.cfg.CompatiblePixelFormats, artifact.PixelFormat)
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

func derivedPath(input, tag, ext string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if !strings.HasPrefix(ext, ".") && ext != "" {
		ext = "." + ext
	}
	return base + "." + tag + ext
}
