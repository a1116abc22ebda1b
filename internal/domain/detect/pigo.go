package detect

import (
	"context"
	"fmt"
	"os"

	pigo "github.com/esimov/pigo/core"

	"github.com/surfguard/surfguard/internal/domain/model"
)

// Cascade tuning constants. The quality score of the pixel-intensity
// cascade saturates around 10, which maps onto the [0,1] confidence scale.
const (
	cascadeMinSize     = 30
	cascadeMaxSize     = 300
	cascadeShiftFactor = 0.1
	cascadeScaleFactor = 1.1
	cascadeClusterIoU  = 0.2
	cascadeQualityCap  = 10.0
)

// cascadeBackend detects faces with a pure-Go pixel-intensity comparison
// cascade. It is the low-fidelity end of the fallback chain.
type cascadeBackend struct {
	classifier *pigo.Pigo
}

// NewCascadeLoader returns a Loader that reads a binary cascade file.
func NewCascadeLoader(path string) Loader {
	return func() (Backend, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read cascade file: %w", err)
		}
		classifier, err := pigo.NewPigo().Unpack(data)
		if err != nil {
			return nil, fmt.Errorf("unpack cascade: %w", err)
		}
		return &cascadeBackend{classifier: classifier}, nil
	}
}

func (b *cascadeBackend) Name() string { return "cascade" }

func (b *cascadeBackend) Detect(_ context.Context, frame *model.Frame) ([]model.FaceDetection, error) {
	params := pigo.CascadeParams{
		MinSize:     cascadeMinSize,
		MaxSize:     cascadeMaxSize,
		ShiftFactor: cascadeShiftFactor,
		ScaleFactor: cascadeScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: frame.Pixels,
			Rows:   frame.Height,
			Cols:   frame.Width,
			Dim:    frame.Width,
		},
	}

	found := b.classifier.RunCascade(params, 0.0)
	found = b.classifier.ClusterDetections(found, cascadeClusterIoU)

	detections := make([]model.FaceDetection, 0, len(found))
	for _, det := range found {
		confidence := float64(det.Q) / cascadeQualityCap
		if confidence > 1.0 {
			confidence = 1.0
		}
		bbox := model.BBox{
			X: det.Col - det.Scale/2,
			Y: det.Row - det.Scale/2,
			W: det.Scale,
			H: det.Scale,
		}
		if bbox.W <= 0 || bbox.H <= 0 || bbox.X < 0 || bbox.Y < 0 {
			continue
		}
		detections = append(detections, model.NewFaceDetection(bbox, confidence))
	}
	return detections, nil
}
