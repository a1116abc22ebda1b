package testfeed

import (
	"context"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"

	"github.com/surfguard/surfguard/pkg/logger"
)

// ServerConfig configures the synthetic frame server.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":9181".
	Addr string

	// Width and Height describe the emitted frames.
	Width  int
	Height int

	// FPS paces frame emission.
	FPS int
}

// wireFrame is the CBOR frame record streamed to detection clients.
type wireFrame struct {
	Type      string  `cbor:"type"`
	Width     int     `cbor:"width"`
	Height    int     `cbor:"height"`
	Pixels    []byte  `cbor:"pixels"`
	Timestamp float64 `cbor:"timestamp"`
	FPS       float64 `cbor:"fps,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Serve runs a WebSocket server that streams synthetic CBOR frames at
// /frames until the context is canceled.
func Serve(ctx context.Context, cfg ServerConfig) error {
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	lg := logger.Named("testfeed")

	mux := http.NewServeMux()
	mux.HandleFunc("/frames", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			lg.Warn(r.Context(), "upgrade failed", logger.Error(err))
			return
		}
		defer conn.Close()

		lg.Info(r.Context(), "detection client connected", logger.String("remote", r.RemoteAddr))
		streamFrames(ctx, conn, cfg)
		lg.Info(r.Context(), "detection client disconnected", logger.String("remote", r.RemoteAddr))
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Info(ctx, "synthetic frame server listening", logger.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// streamFrames pushes frames to one client at the configured rate.
func streamFrames(ctx context.Context, conn *websocket.Conn, cfg ServerConfig) {
	interval := time.Second / time.Duration(cfg.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pixels := make([]byte, cfg.Width*cfg.Height)
	for i := range pixels {
		pixels[i] = 0x80
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload, err := cbor.Marshal(wireFrame{
				Type:      "frame",
				Width:     cfg.Width,
				Height:    cfg.Height,
				Pixels:    pixels,
				Timestamp: float64(time.Now().UnixMicro()) / 1e6,
				FPS:       float64(cfg.FPS),
			})
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
				return
			}
		}
	}
}
