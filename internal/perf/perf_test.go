package perf_test

import (
	"testing"

	perf "github.com/surfguard/surfguard/internal/perf"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWindow(t *testing.T) {
	Convey("Given a latency sample window", t, func() {
		Convey("When created with a positive capacity", func() {
			w := perf.NewWindow(5)

			Convey("Then it should start empty", func() {
				So(w.Len(), ShouldEqual, 0)
				So(w.Avg(), ShouldEqual, 0)
			})
		})

		Convey("When created with a non-positive capacity", func() {
			w := perf.NewWindow(0)

			Convey("Then it should fall back to a usable default", func() {
				So(func() { w.Record(1) }, ShouldNotPanic)
				So(w.Len(), ShouldEqual, 1)
			})
		})

		Convey("When recording fewer samples than capacity", func() {
			w := perf.NewWindow(5)
			w.Record(10)
			w.Record(20)
			w.Record(30)

			Convey("Then the average covers exactly the recorded samples", func() {
				So(w.Len(), ShouldEqual, 3)
				So(w.Avg(), ShouldAlmostEqual, 20.0)
			})
		})

		Convey("When recording more samples than capacity", func() {
			w := perf.NewWindow(3)
			for _, ms := range []float64{100, 100, 100, 10, 10, 10} {
				w.Record(ms)
			}

			Convey("Then the length never exceeds capacity", func() {
				So(w.Len(), ShouldEqual, 3)
			})

			Convey("Then only the newest samples remain", func() {
				So(w.Avg(), ShouldAlmostEqual, 10.0)
			})
		})
	})
}

func TestMonitor(t *testing.T) {
	Convey("Given a performance monitor", t, func() {
		Convey("When no samples were recorded", func() {
			m := perf.NewMonitor()

			Convey("Then FPS and averages are zero", func() {
				So(m.FPS(), ShouldEqual, 0)
				So(m.AvgFrameTime(), ShouldEqual, 0)
				So(m.AvgDetectionTime(), ShouldEqual, 0)
			})
		})

		Convey("When frame times are recorded", func() {
			m := perf.NewMonitor()
			m.RecordFrameTime(20)
			m.RecordFrameTime(30)

			Convey("Then FPS derives from the average frame time", func() {
				So(m.AvgFrameTime(), ShouldAlmostEqual, 25.0)
				So(m.FPS(), ShouldAlmostEqual, 40.0)
			})
		})

		Convey("When detection times are recorded", func() {
			m := perf.NewMonitor()
			m.RecordDetectionTime(5)
			m.RecordDetectionTime(15)

			Convey("Then the detection average is independent of frames", func() {
				So(m.AvgDetectionTime(), ShouldAlmostEqual, 10.0)
				So(m.AvgFrameTime(), ShouldEqual, 0)
			})
		})

		Convey("When a custom window size is configured", func() {
			m := perf.NewMonitor(perf.WithWindowSize(2))
			m.RecordFrameTime(100)
			m.RecordFrameTime(10)
			m.RecordFrameTime(10)

			Convey("Then older samples are evicted", func() {
				So(m.AvgFrameTime(), ShouldAlmostEqual, 10.0)
			})
		})

		Convey("When taking a snapshot", func() {
			m := perf.NewMonitor()
			m.RecordFrameTime(50)
			m.RecordDetectionTime(8)

			s := m.Metrics()

			Convey("Then the snapshot mirrors the monitor state", func() {
				So(s.FPS, ShouldAlmostEqual, 20.0)
				So(s.AvgFrameTimeMS, ShouldAlmostEqual, 50.0)
				So(s.AvgDetectionTimeMS, ShouldAlmostEqual, 8.0)
			})
		})
	})
}
