package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/surfguard/surfguard/internal/testfeed"
	"github.com/surfguard/surfguard/pkg/logger"
)

// Default feed configuration constants.
const (
	defaultAddr   = ":9181"
	defaultWidth  = 640
	defaultHeight = 480
	defaultFPS    = 30
)

func main() {
	var (
		addr   = flag.String("addr", defaultAddr, "Listen address for the frame stream")
		width  = flag.Int("width", defaultWidth, "Frame width in pixels")
		height = flag.Int("height", defaultHeight, "Frame height in pixels")
		fps    = flag.Int("fps", defaultFPS, "Frames per second to emit")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := testfeed.ServerConfig{
		Addr:   *addr,
		Width:  *width,
		Height: *height,
		FPS:    *fps,
	}
	if err := testfeed.Serve(ctx, cfg); err != nil {
		os.Stderr.WriteString("frame server failed: " + err.Error() + "\n")
	}
}
