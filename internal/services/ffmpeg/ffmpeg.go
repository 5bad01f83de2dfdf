package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clipper/internal/services"
	"clipper/internal/timecode"
)

// Mode selects between repackaging streams unchanged and a full re-encode.
type Mode int

const (
	// ModeCopy repackages without re-encoding. Fast, but the container or
	// cut-point alignment may reject it.
	ModeCopy Mode = iota
	// ModeEncode re-encodes to the compatibility target.
	ModeEncode
)

func (m Mode) String() string {
	if m == ModeCopy {
		return "copy"
	}
	return "encode"
}

// Slice selects [Start, Start+DurationSeconds) of the input.
type Slice struct {
	Start           timecode.TimeCode
	DurationSeconds int
}

// Target holds the fixed compatibility profile used for re-encodes.
type Target struct {
	VideoCodec   string
	PixelFormat  string
	Preset       string
	CRF          int
	AudioCodec   string
	AudioBitrate string
}

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

// Client wraps ffmpeg invocations.
type Client struct {
	binary string
	exec   services.Executor
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{binary: binary, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Transcode produces output from input under the given mode, optionally
// slicing a window first. The timeout is a hard wall-clock budget; crossing
// it is fatal for the whole pipeline, so it is surfaced as ErrTimeout.
func (c *Client) Transcode(ctx context.Context, input, output string, slice *Slice, mode Mode, target Target, timeout time.Duration) error {
	if strings.TrimSpace(input) == "" || strings.TrimSpace(output) == "" {
		return services.Wrap(services.ErrTranscode, "ffmpeg", mode.String(), "input and output paths required", nil)
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := buildArgs(input, output, slice, mode, target)
	tail := services.NewOutputTail(8)
	if err := c.exec.Run(runCtx, c.binary, args, tail.Append); err != nil {
		if runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "ffmpeg", mode.String(),
				fmt.Sprintf("gave up after %s", timeout), err)
		}
		return services.Wrap(services.ErrTranscode, "ffmpeg", mode.String(), tail.String(), err)
	}
	return nil
}

// buildArgs assembles the ffmpeg command line. -ss is placed before -i for
// fast seeking; -t bounds the slice duration.
func buildArgs(input, output string, slice *Slice, mode Mode, target Target) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}

	if slice != nil {
		args = append(args, "-ss", slice.Start.String())
	}
	args = append(args, "-i", input)
	if slice != nil {
		args = append(args, "-t", strconv.Itoa(slice.DurationSeconds))
	}

	switch mode {
	case ModeCopy:
		args = append(args, "-c", "copy", "-avoid_negative_ts", "make_zero")
	case ModeEncode:
		args = append(args,
			"-c:v", target.VideoCodec,
			"-preset", target.Preset,
			"-crf", strconv.Itoa(target.CRF),
			"-pix_fmt", target.PixelFormat,
			"-c:a", target.AudioCodec,
			"-b:a", target.AudioBitrate,
			"-movflags", "+faststart",
		)
	}

	return append(args, output)
}
