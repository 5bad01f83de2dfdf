// Package pipeline drives a segment request through acquisition, transcode
// and delivery as a single background run.
package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"clipper/internal/conversation"
	"clipper/internal/delivery"
	"clipper/internal/fileutil"
	"clipper/internal/logging"
	"clipper/internal/runs"
	"clipper/internal/services/ytdlp"
	"clipper/internal/timecode"
)

// Fetcher acquires the requested segment into the work directory.
type Fetcher interface {
	FetchSegment(ctx context.Context, locator, destDir, stem string, start, end timecode.TimeCode) (string, error)
}

// Preparer turns an acquired artifact into a delivery-ready clip.
type Preparer interface {
	Prepare(ctx context.Context, path string, start, end timecode.TimeCode) (string, error)
}

// Deliverer sends a finished clip through the size gate.
type Deliverer interface {
	Send(ctx context.Context, path, caption string) (delivery.Delivered, error)
}

// Option configures the runner.
type Option func(*Runner)

// WithIDGenerator overrides run ID generation (for tests).
func WithIDGenerator(generate func() string) Option {
	return func(r *Runner) {
		if generate != nil {
			r.newID = generate
		}
	}
}

// Runner owns the end-to-end execution of segment requests. Each request
// runs in its own goroutine; the registry row carries its progress.
type Runner struct {
	store     *runs.Store
	fetcher   Fetcher
	preparer  Preparer
	deliverer Deliverer
	workDir   string
	logger    *slog.Logger
	newID     func() string
	wg        sync.WaitGroup
}

// NewRunner constructs a pipeline runner.
func NewRunner(store *runs.Store, fetcher Fetcher, preparer Preparer, deliverer Deliverer, workDir string, logger *slog.Logger, opts ...Option) *Runner {
	runner := &Runner{
		store:     store,
		fetcher:   fetcher,
		preparer:  preparer,
		deliverer: deliverer,
		workDir:   workDir,
		logger:    logging.WithComponent(logger, "pipeline"),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Launch registers the request and starts its run in the background,
// returning the run ID immediately. The context governs the whole run, not
// just the launch.
func (r *Runner) Launch(ctx context.Context, sessionID string, req conversation.Request) (string, error) {
	id := r.newID()
	run := runs.Run{
		ID:        id,
		SessionID: sessionID,
		Locator:   req.Locator,
		Start:     req.Start.String(),
		End:       req.End.String(),
	}
	if err := r.store.Create(ctx, run); err != nil {
		return "", err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(ctx, id, req)
	}()
	return id, nil
}

// Wait blocks until every launched run has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, id string, req conversation.Request) {
	logger := r.logger.With(logging.String("run_id", id))
	stem := ytdlp.Stem(id, req.Start, req.End)

	// Whatever happens, nothing with this run's stem survives in the work
	// area.
	defer func() {
		if removed, err := fileutil.SweepPrefix(r.workDir, stem); err != nil {
			logger.Warn("work area sweep incomplete", logging.Error(err))
		} else if removed > 0 {
			logger.Info("swept leftover intermediates", logging.Int("removed", removed))
		}
	}()

	r.setStatus(ctx, logger, id, runs.StatusDownloading)
	artifact, err := r.fetcher.FetchSegment(ctx, req.Locator, r.workDir, stem, req.Start, req.End)
	if err != nil {
		r.fail(ctx, logger, id, err)
		return
	}
	logger.Info("segment acquired", logging.String("artifact", artifact))

	r.setStatus(ctx, logger, id, runs.StatusTranscoding)
	clip, err := r.preparer.Prepare(ctx, artifact, req.Start, req.End)
	if err != nil {
		r.fail(ctx, logger, id, err)
		return
	}

	r.setStatus(ctx, logger, id, runs.StatusDelivering)
	caption := "Segment " + req.Start.String() + "-" + req.End.String()
	delivered, err := r.deliverer.Send(ctx, clip, caption)
	if err != nil {
		r.fail(ctx, logger, id, err)
		return
	}

	message := caption + " delivered"
	if err := r.store.Finish(ctx, id, runs.StatusCompleted, message, delivered.Destination, delivered.Size); err != nil {
		logger.Error("failed to record completion", logging.Error(err))
		return
	}
	logger.Info("run completed",
		logging.String("destination", delivered.Destination),
		logging.Int64("size_bytes", delivered.Size))
}

func (r *Runner) setStatus(ctx context.Context, logger *slog.Logger, id string, status runs.Status) {
	if err := r.store.SetStatus(ctx, id, status); err != nil {
		logger.Warn("failed to record status", logging.String("status", string(status)), logging.Error(err))
	}
}

func (r *Runner) fail(ctx context.Context, logger *slog.Logger, id string, cause error) {
	message := UserMessage(cause)
	logger.Error("run failed", logging.Error(cause))
	if err := r.store.Finish(ctx, id, runs.StatusFailed, message, "", 0); err != nil {
		logger.Error("failed to record failure", logging.Error(err))
	}
}
