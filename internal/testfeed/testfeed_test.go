package testfeed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/surfguard/surfguard/internal/testfeed"
	"github.com/surfguard/surfguard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestCamera(t *testing.T) {
	Convey("Given a synthetic camera", t, func() {
		ctx := context.Background()

		Convey("When reading before open", func() {
			c := testfeed.NewCamera(30)

			_, err := c.ReadFrame(ctx)

			Convey("Then the read is rejected", func() {
				So(errors.Is(err, testfeed.ErrClosed), ShouldBeTrue)
			})
		})

		Convey("When open", func() {
			c := testfeed.NewCamera(30)
			So(c.Open(ctx), ShouldBeNil)

			frame, err := c.ReadFrame(ctx)

			Convey("Then frames carry the synthetic geometry", func() {
				So(err, ShouldBeNil)
				So(frame.Valid(), ShouldBeTrue)
				So(frame.Width, ShouldEqual, testfeed.FrameWidth)
				So(frame.Height, ShouldEqual, testfeed.FrameHeight)
				So(c.FrameCount(), ShouldEqual, 1)
			})

			Convey("Then the properties describe the capture", func() {
				props := c.Properties()
				So(props["source"], ShouldEqual, "synthetic")
				So(props["fps"], ShouldEqual, 30)
			})
		})

		Convey("When closed and reopened", func() {
			c := testfeed.NewCamera(30)
			So(c.Open(ctx), ShouldBeNil)
			So(c.Close(), ShouldBeNil)

			_, err := c.ReadFrame(ctx)
			So(errors.Is(err, testfeed.ErrClosed), ShouldBeTrue)

			Convey("Then opening again restores reads", func() {
				So(c.Open(ctx), ShouldBeNil)
				_, readErr := c.ReadFrame(ctx)
				So(readErr, ShouldBeNil)
			})
		})
	})
}

func TestScriptedBackend(t *testing.T) {
	Convey("Given a scripted detection backend", t, func() {
		ctx := context.Background()

		Convey("When the script is empty", func() {
			b := testfeed.NewBackend(nil)

			faces, err := b.Detect(ctx, nil)

			Convey("Then no faces are reported", func() {
				So(err, ShouldBeNil)
				So(faces, ShouldBeEmpty)
			})
		})

		Convey("When walking a script", func() {
			b := testfeed.NewBackend([]int{0, 1, 2})

			var counts []int
			for i := 0; i < 5; i++ {
				faces, err := b.Detect(ctx, nil)
				So(err, ShouldBeNil)
				counts = append(counts, len(faces))
			}

			Convey("Then the final entry repeats once exhausted", func() {
				So(counts, ShouldResemble, []int{0, 1, 2, 2, 2})
			})
		})

		Convey("When fabricating faces", func() {
			faces := testfeed.Faces(2)

			Convey("Then they are laterally spaced and confident", func() {
				So(len(faces), ShouldEqual, 2)
				So(faces[0].Confidence, ShouldAlmostEqual, 0.95)
				So(faces[1].BBox.X, ShouldBeGreaterThan, faces[0].BBox.X+faces[0].BBox.W)
			})
		})
	})
}
