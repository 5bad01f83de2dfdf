// Command clipperd runs the clip pipeline daemon: it owns the conversation
// sessions, executes segment runs, and serves the control socket.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipper/internal/config"
	"clipper/internal/conversation"
	"clipper/internal/daemon"
	"clipper/internal/delivery"
	"clipper/internal/ipc"
	"clipper/internal/logging"
	"clipper/internal/pipeline"
	"clipper/internal/runs"
	"clipper/internal/services/ffmpeg"
	"clipper/internal/services/ytdlp"
	"clipper/internal/transcode"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFileLogger(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}, cfg.Paths.LogDir, "clipperd.log", os.Stdout)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := runs.Open(cfg.RegistryPath())
	if err != nil {
		log.Fatalf("open run registry: %v", err)
	}

	fetcher, err := ytdlp.New(cfg.Downloader.Binary, cfg.Downloader.Format,
		cfg.Downloader.Container, cfg.Downloader.TimeoutSeconds)
	if err != nil {
		log.Fatalf("init downloader: %v", err)
	}
	transcoder, err := ffmpeg.New(cfg.Transcode.FFmpegBinary)
	if err != nil {
		log.Fatalf("init transcoder: %v", err)
	}

	engine := transcode.NewEngine(transcode.Config{
		FFprobeBinary: cfg.Transcode.FFprobeBinary,
		Target: ffmpeg.Target{
			VideoCodec:   cfg.Transcode.VideoCodec,
			PixelFormat:  cfg.Transcode.PixelFormat,
			Preset:       cfg.Transcode.Preset,
			CRF:          cfg.Transcode.CRF,
			AudioCodec:   cfg.Transcode.AudioCodec,
			AudioBitrate: cfg.Transcode.AudioBitrate,
		},
		CompatibleVideoCodecs:  cfg.Transcode.CompatibleVideoCodecs,
		CompatiblePixelFormats: cfg.Transcode.CompatiblePixelFormats,
		OversizeFactor:         cfg.Transcode.OversizeFactor,
		CopyTimeout:            time.Duration(cfg.Transcode.CopyTimeoutSeconds) * time.Second,
		EncodeTimeout:          time.Duration(cfg.Transcode.EncodeTimeoutSeconds) * time.Second,
	}, transcoder, logger)

	gate := delivery.NewGate(delivery.DirTransport{Dir: cfg.Paths.DeliveryDir},
		cfg.CompactLimitBytes(), cfg.MaxLimitBytes(), logger)
	runner := pipeline.NewRunner(store, fetcher, engine, gate,
		cfg.Paths.WorkDir, logger)
	sessions := conversation.NewManager(cfg.Hosts.Allowed)

	d, err := daemon.New(cfg, store, sessions, runner, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, cfg.SocketPath(), d, cancel, logger)
	if err != nil {
		log.Fatalf("start ipc server: %v", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	<-ctx.Done()
	logger.Info("clipperd shutting down")
}
