package detect

import (
	"sort"

	"github.com/surfguard/surfguard/internal/domain/model"
	"github.com/surfguard/surfguard/pkg/metrics"
)

// IoU computes the intersection-over-union of two axis-aligned boxes.
// A degenerate union (area <= 0) yields 0.
func IoU(a, b model.BBox) float64 {
	xi1 := max(a.X, b.X)
	yi1 := max(a.Y, b.Y)
	xi2 := min(a.X+a.W, b.X+b.W)
	yi2 := min(a.Y+a.H, b.Y+b.H)

	intersection := max(0, xi2-xi1) * max(0, yi2-yi1)
	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// SuppressOverlaps removes duplicate detections of the same face using
// greedy non-max suppression: detections are walked in descending
// confidence order (stable, so ties keep their original order) and a
// detection is dropped when its IoU against any already-kept detection
// exceeds the threshold. The result never grows and always retains the
// single highest-confidence detection.
func SuppressOverlaps(detections []model.FaceDetection, iouThreshold float64) []model.FaceDetection {
	if len(detections) <= 1 {
		return detections
	}

	sorted := make([]model.FaceDetection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := sorted[:1]
	for _, det := range sorted[1:] {
		duplicate := false
		for _, k := range kept {
			if IoU(det.BBox, k.BBox) > iouThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, det)
		}
	}

	if dropped := len(detections) - len(kept); dropped > 0 {
		metrics.RecordDuplicatesSuppressed(dropped)
	}
	return kept
}
