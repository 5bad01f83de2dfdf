package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"
	"time"

	"clipper/internal/daemon"
	"clipper/internal/logging"
	"clipper/internal/logs"
	"clipper/internal/runs"
)

const (
	defaultAwaitWait = time.Second
	maxAwaitWait     = 30 * time.Second
	awaitPollEvery   = 100 * time.Millisecond
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. requestStop
// is invoked when a client asks the daemon to shut down; it must not block.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, requestStop func(), logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, requestStop: requestStop, logger: logging.WithComponent(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Clipper", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logging.WithComponent(logger, "ipc"),
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path), logging.Error(err))
	}
}

type service struct {
	daemon      *daemon.Daemon
	requestStop func()
	logger      *slog.Logger
	ctx         context.Context
}

// Say feeds one line of user text into a session. A completed request
// launches its run before the reply goes back.
func (s *service) Say(req SayRequest, resp *SayResponse) error {
	if strings.TrimSpace(req.SessionID) == "" {
		return errors.New("say requires a session id")
	}
	reply, runID, err := s.daemon.Say(s.ctx, req.SessionID, req.Text)
	if err != nil {
		return err
	}
	resp.Reply = reply
	resp.RunID = runID
	return nil
}

// Cancel discards a session's collected state.
func (s *service) Cancel(req CancelRequest, resp *CancelResponse) error {
	resp.Cancelled = s.daemon.Cancel(req.SessionID)
	return nil
}

// Await blocks up to the requested wait for a run to finish. Consuming a
// terminal disposition removes the registry row, so each result is
// delivered exactly once.
func (s *service) Await(req AwaitRequest, resp *AwaitResponse) error {
	if strings.TrimSpace(req.RunID) == "" {
		return errors.New("await requires a run id")
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 {
		wait = defaultAwaitWait
	}
	if wait > maxAwaitWait {
		wait = maxAwaitWait
	}

	deadline := time.Now().Add(wait)
	for {
		run, err := s.daemon.Run(s.ctx, req.RunID)
		if err != nil {
			return err
		}
		if run.Status.Terminal() {
			resp.Done = true
			resp.Status = string(run.Status)
			resp.Message = run.Message
			resp.Destination = run.Destination
			resp.SizeBytes = run.SizeBytes
			if err := s.daemon.ConsumeRun(s.ctx, req.RunID); err != nil && !errors.Is(err, runs.ErrNotFound) {
				s.logger.Warn("failed to consume run", logging.String("run_id", req.RunID), logging.Error(err))
			}
			return nil
		}
		if !time.Now().Before(deadline) {
			resp.Done = false
			resp.Status = string(run.Status)
			return nil
		}
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case <-time.After(awaitPollEvery):
		}
	}
}

// Status reports daemon runtime information.
func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.RegistryPath = status.RegistryPath
	resp.LockPath = status.LockFilePath
	resp.SocketPath = status.SocketPath
	resp.Runs = make([]RunSummary, 0, len(status.Runs))
	for _, run := range status.Runs {
		resp.Runs = append(resp.Runs, RunSummary{
			ID:        run.ID,
			SessionID: run.SessionID,
			Locator:   run.Locator,
			Window:    run.Start + "-" + run.End,
			Status:    string(run.Status),
			Message:   run.Message,
		})
	}
	resp.Dependencies = make([]DependencyStatus, 0, len(status.Dependencies))
	for _, dep := range status.Dependencies {
		resp.Dependencies = append(resp.Dependencies, DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	return nil
}

// LogTail returns daemon log lines starting at the requested offset.
func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

// Stop asks the daemon process to shut down.
func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Info("daemon stop requested via ipc")
	if s.requestStop != nil {
		s.requestStop()
	}
	resp.Stopped = true
	return nil
}
