// Package delivery checks finished clips against the configured size
// policy and hands them to a transport.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"clipper/internal/fileutil"
	"clipper/internal/logging"
	"clipper/internal/services"
)

// Mode names the size band a clip was delivered in.
type Mode string

const (
	// ModeCompact is the band for clips under the tight ceiling of
	// transports that reject large payloads.
	ModeCompact Mode = "compact"
	// ModeBulk is the band between the compact ceiling and the absolute
	// maximum.
	ModeBulk Mode = "bulk"
)

// Transport moves a finished clip to its destination. Implementations may
// copy to a directory, upload somewhere, or hand the file to a chat
// integration.
type Transport interface {
	// Deliver sends the file at path under the given caption and returns
	// the destination it ended up at.
	Deliver(ctx context.Context, path, caption string) (string, error)
}

// Delivered reports where a clip went and how large it was.
type Delivered struct {
	Destination string
	Size        int64
	Mode        Mode
}

// Gate applies the size policy before handing clips to the transport. The
// source file is always deleted afterwards, delivered or not; the pipeline
// guarantees nothing outlives a run inside the work area.
type Gate struct {
	transport    Transport
	compactLimit int64
	maxLimit     int64
	logger       *slog.Logger
}

// NewGate constructs a delivery gate. Limits are in bytes; a zero limit
// disables that ceiling.
func NewGate(transport Transport, compactLimit, maxLimit int64, logger *slog.Logger) *Gate {
	return &Gate{
		transport:    transport,
		compactLimit: compactLimit,
		maxLimit:     maxLimit,
		logger:       logging.WithComponent(logger, "delivery"),
	}
}

// Send measures the clip at path, picks the size band for it, and hands it
// to the transport. The source is deleted either way. A clip above the
// absolute ceiling yields ErrTooLarge with both the measured and permitted
// sizes in the message and never reaches the transport.
func (g *Gate) Send(ctx context.Context, path, caption string) (Delivered, error) {
	defer func() {
		if err := fileutil.RemoveIfExists(path); err != nil {
			g.logger.Warn("failed to remove delivered source", logging.Error(err))
		}
	}()

	info, err := os.Stat(path)
	if err != nil {
		return Delivered{}, services.Wrap(services.ErrDelivery, "delivery", "stat", "finished clip missing", err)
	}
	size := info.Size()

	if g.maxLimit > 0 && size > g.maxLimit {
		detail := fmt.Sprintf("clip is %s, limit is %s", formatBytes(size), formatBytes(g.maxLimit))
		g.logger.Info("clip rejected by size gate",
			logging.Int64("size_bytes", size),
			logging.Int64("limit_bytes", g.maxLimit))
		return Delivered{}, services.Wrap(services.ErrTooLarge, "delivery", "size", detail, nil)
	}
	mode := ModeCompact
	if g.compactLimit > 0 && size > g.compactLimit {
		mode = ModeBulk
	}

	destination, err := g.transport.Deliver(ctx, path, caption)
	if err != nil {
		return Delivered{}, services.Wrap(services.ErrDelivery, "delivery", "transport", "", err)
	}

	g.logger.Info("clip delivered",
		logging.String("destination", destination),
		logging.String("mode", string(mode)),
		logging.Int64("size_bytes", size))
	return Delivered{Destination: destination, Size: size, Mode: mode}, nil
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%.1f MiB", float64(n)/float64(mb))
	}
	return fmt.Sprintf("%d B", n)
}

// DirTransport copies clips into a flat destination directory. It is the
// default transport for headless operation.
type DirTransport struct {
	Dir string
}

// Deliver copies the clip into the destination directory, keeping its base
// name.
func (d DirTransport) Deliver(ctx context.Context, path, caption string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", err
	}
	destination := filepath.Join(d.Dir, filepath.Base(path))
	if err := fileutil.CopyFile(path, destination); err != nil {
		return "", err
	}
	return destination, nil
}
