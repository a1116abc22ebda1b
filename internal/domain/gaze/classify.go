package gaze

import "github.com/surfguard/surfguard/internal/domain/model"

// Classification thresholds. The screen check is deliberately stricter
// than the direction thresholds, so a "center" direction can still carry
// is_looking_at_screen=false.
const (
	lateralThreshold  = 0.25
	downThreshold     = 0.25
	screenXThreshold  = 0.3
	screenYThreshold  = 0.5
	opennessScale     = 3.0
	defaultConfidence = 0.5
)

// Face mesh landmark index sets, following the MediaPipe mesh topology.
var (
	leftEyeIndices   = []int{33, 160, 158, 133, 153, 144}
	rightEyeIndices  = []int{362, 385, 387, 263, 373, 380}
	leftIrisIndices  = []int{468, 469, 470, 471, 472}
	rightIrisIndices = []int{473, 474, 475, 476, 477}

	// Eyelid pairs used for the openness estimate: (top, bottom) per eye.
	leftEyelidTop     = 159
	leftEyelidBottom  = 145
	rightEyelidTop    = 386
	rightEyelidBottom = 374

	// Landmarks sampled for the confidence estimate.
	qualityIndices = []int{33, 160, 158, 133, 362, 385, 387, 263, 468, 469, 472, 473, 476, 477}

	maxLandmarkIndex = 477
)

// Classify maps a unit-normalized gaze vector onto a direction and the
// looking-at-screen judgment. It is a pure function.
func Classify(gx, gy float64) (model.GazeDirection, bool) {
	centered := abs(gx) < screenXThreshold && abs(gy) < screenYThreshold

	if abs(gx) > abs(gy) {
		// Primarily horizontal gaze.
		switch {
		case gx < -lateralThreshold:
			return model.GazeLeft, false
		case gx > lateralThreshold:
			return model.GazeRight, false
		default:
			return model.GazeCenter, centered
		}
	}

	// Primarily vertical gaze.
	if gy > downThreshold {
		return model.GazeDown, false
	}
	return model.GazeCenter, centered
}

// eyeOpenness estimates how open the eyes are from the vertical eyelid
// separation, averaged across both eyes and clamped to [0,1].
func eyeOpenness(mesh Mesh) float64 {
	left := abs(mesh[leftEyelidTop].Y - mesh[leftEyelidBottom].Y)
	right := abs(mesh[rightEyelidTop].Y - mesh[rightEyelidBottom].Y)

	openness := (left + right) / 2 * opennessScale
	if openness > 1 {
		return 1
	}
	if openness < 0 {
		return 0
	}
	return openness
}

// meshConfidence averages the depth/quality channel of the sampled
// landmarks, defaulting when the sample set is empty.
func meshConfidence(mesh Mesh) float64 {
	var sum float64
	var n int
	for _, i := range qualityIndices {
		if i < len(mesh) {
			sum += mesh[i].Z
			n++
		}
	}
	if n == 0 {
		return defaultConfidence
	}
	return sum / float64(n)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
