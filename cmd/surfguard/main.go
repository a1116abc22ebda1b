package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/surfguard/surfguard/internal/adapters/camera"
	"github.com/surfguard/surfguard/internal/adapters/httpapi"
	"github.com/surfguard/surfguard/internal/adapters/overlay"
	"github.com/surfguard/surfguard/internal/app"
	"github.com/surfguard/surfguard/internal/blur"
	"github.com/surfguard/surfguard/internal/config"
	"github.com/surfguard/surfguard/internal/domain/detect"
	"github.com/surfguard/surfguard/internal/domain/gaze"
	"github.com/surfguard/surfguard/internal/eventlog"
	"github.com/surfguard/surfguard/internal/perf"
	"github.com/surfguard/surfguard/pkg/logger"
	"github.com/surfguard/surfguard/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// the system metrics updater collects its own.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		durationFlag = flag.Duration("duration", 0, "run for this long then stop (0 runs until interrupted)")
		headlessFlag = flag.Bool("headless", false, "run the detection loop without the HTTP surface")
		cameraFlag   = flag.String("camera-url", "", "override the camera WebSocket URL")
		logLevelFlag = flag.String("log-level", "", "override the configured log level")
	)
	flag.Parse()

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Get().Error(context.Background(), "failed to sync logger", logger.Error(err))
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if *cameraFlag != "" {
		cfg.CameraURL = *cameraFlag
	}
	if *logLevelFlag != "" {
		cfg.LogLevel = *logLevelFlag
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	monitor := perf.NewMonitor(perf.WithWindowSize(cfg.PerfWindowSize))

	detector, err := detect.New(ctx,
		[]detect.Loader{detect.NewCascadeLoader(cfg.CascadePath)},
		detect.WithConfidenceThreshold(cfg.FaceConfidence),
		detect.WithIoUThreshold(cfg.IoUThreshold),
		detect.WithMonitor(monitor),
		detect.WithLogger(loggerInstance.Named("detect")),
	)
	if err != nil {
		loggerInstance.Error(ctx, "no detection backend available", logger.Error(err))
		return
	}

	sink, err := eventlog.NewJSONLSink(cfg.EventLogPath)
	if err != nil {
		loggerInstance.Error(ctx, "failed to open event sink", logger.String("path", cfg.EventLogPath), logger.Error(err))
		return
	}
	defer func() {
		if err := sink.Close(); err != nil {
			loggerInstance.Error(ctx, "failed to close event sink", logger.Error(err))
		}
	}()

	events := eventlog.New(sink,
		eventlog.WithExportDir(cfg.ExportDir),
		eventlog.WithLogger(loggerInstance.Named("events")),
	)

	hub := overlay.NewWSHub()
	blurMgr := blur.New(hub,
		blur.WithIntensity(cfg.BlurIntensity),
		blur.WithOpacity(cfg.BlurOpacity),
	)

	source := camera.NewWSSource(cfg.CameraURL)

	opts := []app.Option{
		app.WithBlurManager(blurMgr),
		app.WithEventLog(events),
		app.WithMonitor(monitor),
		app.WithMinFacesForAlert(cfg.MinFacesForAlert),
		app.WithFrameSkip(cfg.FrameSkip),
		app.WithLatencyCeiling(cfg.LatencyCeilingMS),
		app.WithBlurEnabled(cfg.EnableBlur),
		app.WithLogger(loggerInstance.Named("app")),
	}
	if cfg.EnableGaze {
		estimator := gaze.New(ctx, loadMeshBackend(ctx, loggerInstance),
			gaze.WithMonitor(monitor),
			gaze.WithLogger(loggerInstance.Named("gaze")),
		)
		opts = append(opts, app.WithGazeEstimator(estimator))
	}

	system := app.New(source, detector, opts...)

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	if !*headlessFlag {
		mux := http.NewServeMux()
		httpapi.NewServer(system).Register(mux)
		mux.HandleFunc("/ws/overlay", hub.HandleWS)

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           mux,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		}

		go func() {
			loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
			}
		}()
	}

	if err := system.Run(ctx, *durationFlag); err != nil {
		loggerInstance.Error(ctx, "detection loop failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "stopped")
}

// loadMeshBackend is the hook for wiring a facial landmark provider. No
// in-process provider ships yet, so gaze analysis starts disabled.
func loadMeshBackend(ctx context.Context, lg logger.Logger) gaze.Backend {
	lg.Info(ctx, "no landmark backend configured; gaze analysis disabled")
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
