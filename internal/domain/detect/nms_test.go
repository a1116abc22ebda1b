package detect_test

import (
	"testing"

	detect "github.com/surfguard/surfguard/internal/domain/detect"
	"github.com/surfguard/surfguard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIoU(t *testing.T) {
	Convey("Given pairs of bounding boxes", t, func() {
		Convey("When the boxes are identical", func() {
			b := model.BBox{X: 10, Y: 10, W: 100, H: 100}

			Convey("Then IoU is 1", func() {
				So(detect.IoU(b, b), ShouldAlmostEqual, 1.0)
			})
		})

		Convey("When the boxes are disjoint", func() {
			a := model.BBox{X: 0, Y: 0, W: 50, H: 50}
			b := model.BBox{X: 100, Y: 100, W: 50, H: 50}

			Convey("Then IoU is 0", func() {
				So(detect.IoU(a, b), ShouldEqual, 0)
			})
		})

		Convey("When one box half-overlaps the other", func() {
			a := model.BBox{X: 0, Y: 0, W: 100, H: 100}
			b := model.BBox{X: 50, Y: 0, W: 100, H: 100}

			Convey("Then IoU is intersection over union", func() {
				// intersection 50*100=5000, union 20000-5000=15000
				So(detect.IoU(a, b), ShouldAlmostEqual, 1.0/3.0)
			})
		})

		Convey("When both boxes are degenerate", func() {
			a := model.BBox{X: 10, Y: 10, W: 0, H: 0}
			b := model.BBox{X: 10, Y: 10, W: 0, H: 0}

			Convey("Then IoU is 0 rather than dividing by zero", func() {
				So(detect.IoU(a, b), ShouldEqual, 0)
			})
		})

		Convey("When the arguments are swapped", func() {
			a := model.BBox{X: 0, Y: 0, W: 80, H: 60}
			b := model.BBox{X: 40, Y: 20, W: 80, H: 60}

			Convey("Then IoU is symmetric", func() {
				So(detect.IoU(a, b), ShouldAlmostEqual, detect.IoU(b, a))
			})
		})
	})
}

func TestSuppressOverlaps(t *testing.T) {
	Convey("Given a set of face detections", t, func() {
		Convey("When there is at most one detection", func() {
			single := []model.FaceDetection{
				model.NewFaceDetection(model.BBox{X: 0, Y: 0, W: 50, H: 50}, 0.9),
			}

			Convey("Then the input is returned unchanged", func() {
				So(detect.SuppressOverlaps(nil, 0.3), ShouldBeNil)
				out := detect.SuppressOverlaps(single, 0.3)
				So(len(out), ShouldEqual, 1)
				So(out[0], ShouldResemble, single[0])
			})
		})

		Convey("When two detections heavily overlap", func() {
			dets := []model.FaceDetection{
				model.NewFaceDetection(model.BBox{X: 0, Y: 0, W: 100, H: 100}, 0.7),
				model.NewFaceDetection(model.BBox{X: 5, Y: 5, W: 100, H: 100}, 0.9),
			}

			out := detect.SuppressOverlaps(dets, 0.3)

			Convey("Then only the higher-confidence detection survives", func() {
				So(len(out), ShouldEqual, 1)
				So(out[0].Confidence, ShouldAlmostEqual, 0.9)
			})
		})

		Convey("When detections do not overlap", func() {
			dets := []model.FaceDetection{
				model.NewFaceDetection(model.BBox{X: 0, Y: 0, W: 50, H: 50}, 0.8),
				model.NewFaceDetection(model.BBox{X: 200, Y: 0, W: 50, H: 50}, 0.6),
				model.NewFaceDetection(model.BBox{X: 400, Y: 0, W: 50, H: 50}, 0.9),
			}

			out := detect.SuppressOverlaps(dets, 0.3)

			Convey("Then all detections are kept", func() {
				So(len(out), ShouldEqual, 3)
			})

			Convey("Then the result is ordered by confidence descending", func() {
				So(out[0].Confidence, ShouldAlmostEqual, 0.9)
				So(out[1].Confidence, ShouldAlmostEqual, 0.8)
				So(out[2].Confidence, ShouldAlmostEqual, 0.6)
			})
		})

		Convey("When a cluster of duplicates surrounds one true face", func() {
			dets := []model.FaceDetection{
				model.NewFaceDetection(model.BBox{X: 0, Y: 0, W: 100, H: 100}, 0.5),
				model.NewFaceDetection(model.BBox{X: 2, Y: 2, W: 100, H: 100}, 0.95),
				model.NewFaceDetection(model.BBox{X: 4, Y: 4, W: 100, H: 100}, 0.7),
				model.NewFaceDetection(model.BBox{X: 300, Y: 0, W: 100, H: 100}, 0.6),
			}

			out := detect.SuppressOverlaps(dets, 0.3)

			Convey("Then one detection per face remains", func() {
				So(len(out), ShouldEqual, 2)
				So(out[0].Confidence, ShouldAlmostEqual, 0.95)
				So(out[1].Confidence, ShouldAlmostEqual, 0.6)
			})
		})

		Convey("When applying suppression twice", func() {
			dets := []model.FaceDetection{
				model.NewFaceDetection(model.BBox{X: 0, Y: 0, W: 100, H: 100}, 0.9),
				model.NewFaceDetection(model.BBox{X: 10, Y: 10, W: 100, H: 100}, 0.8),
				model.NewFaceDetection(model.BBox{X: 250, Y: 0, W: 100, H: 100}, 0.7),
			}

			once := detect.SuppressOverlaps(dets, 0.3)
			twice := detect.SuppressOverlaps(once, 0.3)

			Convey("Then suppression is idempotent", func() {
				So(twice, ShouldResemble, once)
			})
		})

		Convey("When suppression runs", func() {
			dets := []model.FaceDetection{
				model.NewFaceDetection(model.BBox{X: 0, Y: 0, W: 100, H: 100}, 0.9),
				model.NewFaceDetection(model.BBox{X: 1, Y: 1, W: 100, H: 100}, 0.8),
			}
			before := make([]model.FaceDetection, len(dets))
			copy(before, dets)

			detect.SuppressOverlaps(dets, 0.3)

			Convey("Then the input slice is not reordered", func() {
				So(dets, ShouldResemble, before)
			})
		})
	})
}
