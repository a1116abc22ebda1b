// Package camera provides frame-source adapters for the detection
// pipeline. The production source is an external capture process that
// streams CBOR-encoded frames over a WebSocket.
package camera

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"

	"github.com/surfguard/surfguard/internal/domain/model"
	"github.com/surfguard/surfguard/pkg/logger"
)

// Default WebSocket source constants.
const (
	defaultDialTimeout = 5 * time.Second
	defaultReadTimeout = 2 * time.Second
	maxFrameBytes      = 8 << 20
)

// wireFrame mirrors the capture process's CBOR frame record.
type wireFrame struct {
	Type      string  `cbor:"type"`
	Width     int     `cbor:"width"`
	Height    int     `cbor:"height"`
	Pixels    []byte  `cbor:"pixels"`
	Timestamp float64 `cbor:"timestamp"`
	FPS       float64 `cbor:"fps,omitempty"`
}

// WSSource reads frames from a capture process over a WebSocket. It
// tolerates repeated Open/Close cycles; each Open dials a fresh
// connection.
type WSSource struct {
	url         string
	dialTimeout time.Duration
	readTimeout time.Duration
	logger      logger.Logger

	mu    sync.Mutex
	conn  *websocket.Conn
	props map[string]any
}

// Option applies a configuration option to the WSSource.
type Option func(*WSSource)

// WithDialTimeout bounds connection establishment.
func WithDialTimeout(d time.Duration) Option {
	return func(s *WSSource) {
		if d > 0 {
			s.dialTimeout = d
		}
	}
}

// WithReadTimeout bounds a single frame read.
func WithReadTimeout(d time.Duration) Option {
	return func(s *WSSource) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// NewWSSource creates a WebSocket frame source for the given endpoint.
func NewWSSource(url string, opts ...Option) *WSSource {
	s := &WSSource{
		url:         url,
		dialTimeout: defaultDialTimeout,
		readTimeout: defaultReadTimeout,
		logger:      logger.Named("camera"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open dials the capture process.
func (s *WSSource) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.dialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, s.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	conn.SetReadLimit(maxFrameBytes)

	s.conn = conn
	s.props = map[string]any{"url": s.url}
	s.logger.Info(ctx, "camera stream connected", logger.String("url", s.url))
	return nil
}

// ReadFrame blocks for the next frame from the stream.
func (s *WSSource) ReadFrame(_ context.Context) (*model.Frame, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil, ErrNotOpen
	}

	if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	_, payload, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	var wf wireFrame
	if err := cbor.Unmarshal(payload, &wf); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrReadFailed, err)
	}
	if wf.Type != "frame" {
		return nil, fmt.Errorf("%w: unexpected message type %q", ErrReadFailed, wf.Type)
	}

	frame := &model.Frame{
		Pixels:    wf.Pixels,
		Width:     wf.Width,
		Height:    wf.Height,
		Timestamp: time.UnixMicro(int64(wf.Timestamp * 1e6)),
	}
	if !frame.Valid() {
		return nil, fmt.Errorf("%w: malformed frame %dx%d with %d pixels",
			ErrReadFailed, wf.Width, wf.Height, len(wf.Pixels))
	}

	s.mu.Lock()
	s.props = map[string]any{
		"url":    s.url,
		"width":  wf.Width,
		"height": wf.Height,
		"fps":    wf.FPS,
	}
	s.mu.Unlock()

	return frame, nil
}

// Close tears down the connection. Subsequent Open calls reconnect.
func (s *WSSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Properties returns the last observed stream properties.
func (s *WSSource) Properties() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]any, len(s.props))
	for k, v := range s.props {
		out[k] = v
	}
	return out
}
