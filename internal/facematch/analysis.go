package facematch

import (
	"github.com/kozaktomas/style-genie/internal/landmark"
)

// Analyze runs both classifiers over one detector frame.
// An empty landmark set is landmark.ErrNoFaceDetected.
func Analyze(set landmark.Set, width, height int) (AnalysisResult, error) {
	geometry, err := ClassifyShape(set, width, height)
	if err != nil {
		return AnalysisResult{}, err
	}
	if geometry == nil {
		return AnalysisResult{}, landmark.ErrNoFaceDetected
	}

	gender, err := ClassifyGender(set, width, height)
	if err != nil {
		return AnalysisResult{}, err
	}

	return AnalysisResult{Geometry: *geometry, Gender: gender}, nil
}

// AnalyzeFrame is Analyze over a validated frame.
func AnalyzeFrame(f *landmark.Frame) (AnalysisResult, error) {
	if err := f.Validate(); err != nil {
		return AnalysisResult{}, err
	}
	return Analyze(f.Landmarks, f.ImageWidth, f.ImageHeight)
}
