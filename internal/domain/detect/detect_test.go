package detect_test

import (
	"context"
	"errors"
	"testing"
	"time"

	detect "github.com/surfguard/surfguard/internal/domain/detect"
	"github.com/surfguard/surfguard/internal/domain/model"
	"github.com/surfguard/surfguard/internal/perf"
	"github.com/surfguard/surfguard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubBackend struct {
	name       string
	detections []model.FaceDetection
	err        error
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Detect(context.Context, *model.Frame) ([]model.FaceDetection, error) {
	return s.detections, s.err
}

func loaderFor(b *stubBackend) detect.Loader {
	return func() (detect.Backend, error) { return b, nil }
}

func failingLoader(err error) detect.Loader {
	return func() (detect.Backend, error) { return nil, err }
}

func testFrame() *model.Frame {
	return &model.Frame{
		Pixels:    make([]uint8, 64*48),
		Width:     64,
		Height:    48,
		Timestamp: time.Now(),
	}
}

func TestNewDetector(t *testing.T) {
	Convey("Given a chain of backend loaders", t, func() {
		ctx := context.Background()

		Convey("When the chain is empty", func() {
			d, err := detect.New(ctx, nil)

			Convey("Then construction fails", func() {
				So(d, ShouldBeNil)
				So(errors.Is(err, detect.ErrNoBackend), ShouldBeTrue)
			})
		})

		Convey("When the first loader succeeds", func() {
			primary := &stubBackend{name: "primary"}
			d, err := detect.New(ctx, []detect.Loader{loaderFor(primary)})

			Convey("Then the primary backend is active", func() {
				So(err, ShouldBeNil)
				So(d.BackendName(), ShouldEqual, "primary")
			})
		})

		Convey("When the first loader fails and a fallback succeeds", func() {
			fallback := &stubBackend{name: "fallback"}
			d, err := detect.New(ctx, []detect.Loader{
				failingLoader(errors.New("weights missing")),
				loaderFor(fallback),
			})

			Convey("Then the fallback backend is active", func() {
				So(err, ShouldBeNil)
				So(d.BackendName(), ShouldEqual, "fallback")
			})
		})

		Convey("When every loader fails", func() {
			d, err := detect.New(ctx, []detect.Loader{
				failingLoader(errors.New("first down")),
				failingLoader(errors.New("second down")),
			})

			Convey("Then construction fails with the backend error", func() {
				So(d, ShouldBeNil)
				So(errors.Is(err, detect.ErrNoBackend), ShouldBeTrue)
			})
		})
	})
}

func TestDetectorDetect(t *testing.T) {
	Convey("Given a detector over a stub backend", t, func() {
		ctx := context.Background()

		Convey("When the frame is malformed", func() {
			d, err := detect.New(ctx, []detect.Loader{loaderFor(&stubBackend{name: "stub"})})
			So(err, ShouldBeNil)

			Convey("Then no detections are returned", func() {
				So(d.Detect(ctx, nil), ShouldBeNil)
				So(d.Detect(ctx, &model.Frame{Width: 10, Height: 10}), ShouldBeNil)
			})
		})

		Convey("When the backend fails", func() {
			backend := &stubBackend{name: "stub", err: errors.New("inference failed")}
			d, err := detect.New(ctx, []detect.Loader{loaderFor(backend)})
			So(err, ShouldBeNil)

			Convey("Then the frame is skipped without detections", func() {
				So(d.Detect(ctx, testFrame()), ShouldBeNil)
			})
		})

		Convey("When detections straddle the confidence threshold", func() {
			backend := &stubBackend{
				name: "stub",
				detections: []model.FaceDetection{
					model.NewFaceDetection(model.BBox{X: 0, Y: 0, W: 40, H: 40}, 0.9),
					model.NewFaceDetection(model.BBox{X: 100, Y: 0, W: 40, H: 40}, 0.3),
					model.NewFaceDetection(model.BBox{X: 200, Y: 0, W: 40, H: 40}, 0.6),
				},
			}
			d, err := detect.New(ctx, []detect.Loader{loaderFor(backend)},
				detect.WithConfidenceThreshold(0.5),
			)
			So(err, ShouldBeNil)

			out := d.Detect(ctx, testFrame())

			Convey("Then low-confidence detections are dropped", func() {
				So(len(out), ShouldEqual, 2)
				for _, det := range out {
					So(det.Confidence, ShouldBeGreaterThanOrEqualTo, 0.5)
				}
			})
		})

		Convey("When a monitor is attached", func() {
			monitor := perf.NewMonitor()
			d, err := detect.New(ctx, []detect.Loader{loaderFor(&stubBackend{name: "stub"})},
				detect.WithMonitor(monitor),
			)
			So(err, ShouldBeNil)

			d.Detect(ctx, testFrame())

			Convey("Then detection latency is sampled", func() {
				So(monitor.AvgDetectionTime(), ShouldBeGreaterThanOrEqualTo, 0)
			})
		})

		Convey("When reading the IoU threshold", func() {
			d, err := detect.New(ctx, []detect.Loader{loaderFor(&stubBackend{name: "stub"})},
				detect.WithIoUThreshold(0.45),
			)
			So(err, ShouldBeNil)

			Convey("Then the configured value is reported", func() {
				So(d.IoUThreshold(), ShouldAlmostEqual, 0.45)
			})
		})
	})
}
