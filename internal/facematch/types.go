// Package facematch classifies face shape and apparent gender from detector landmarks.
// All functions are pure: the same landmarks and dimensions always yield the same result.
package facematch

import "github.com/kozaktomas/style-genie/internal/landmark"

// Shape is one of the six face-shape labels.
type Shape string

const (
	ShapeOval    Shape = "Oval"
	ShapeRound   Shape = "Round"
	ShapeSquare  Shape = "Square"
	ShapeOblong  Shape = "Oblong"
	ShapeHeart   Shape = "Heart"
	ShapeDiamond Shape = "Diamond"
)

// Shapes lists every valid label.
var Shapes = []Shape{ShapeOval, ShapeRound, ShapeSquare, ShapeOblong, ShapeHeart, ShapeDiamond}

// Valid reports whether s is one of the six labels.
func (s Shape) Valid() bool {
	for _, v := range Shapes {
		if s == v {
			return true
		}
	}
	return false
}

// Gender is the apparent gender label produced by the landmark heuristic.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Measurements are pixel-space distances between fixed landmark pairs.
type Measurements struct {
	FaceLength    float64 `json:"faceLength"`
	CheekWidth    float64 `json:"cheekWidth"`
	JawWidth      float64 `json:"jawWidth"`
	ForeheadWidth float64 `json:"foreheadWidth"`
}

// Metrics are the measurements plus the ratio that drives the first split of the tree.
type Metrics struct {
	Measurements
	LengthToWidthRatio float64 `json:"lengthToWidthRatio"`
}

// FaceGeometry is the result of shape classification.
type FaceGeometry struct {
	Shape      Shape   `json:"shape"`
	Confidence float64 `json:"confidence"`
	Metrics    Metrics `json:"metrics"`
	Reasoning  string  `json:"reasoning"`
}

// GenderMetrics are the ratios used by the gender heuristic.
type GenderMetrics struct {
	JawCheekRatio float64 `json:"jawCheekRatio"`
	LipRatio      float64 `json:"lipRatio"`
}

// GenderEstimate is a signed score; its sign decides the label and the
// magnitude is diagnostic only.
type GenderEstimate struct {
	Gender  Gender        `json:"gender"`
	Score   int           `json:"score"`
	Metrics GenderMetrics `json:"metrics"`
}

// AnalysisResult combines both classifications. Built once by Analyze.
type AnalysisResult struct {
	Geometry FaceGeometry   `json:"geometry"`
	Gender   GenderEstimate `json:"gender"`
}

// Landmark pairs measured by the classifier.
var (
	lengthPair   = [2]landmark.Index{landmark.ForeheadTop, landmark.Chin}
	cheekPair    = [2]landmark.Index{landmark.LeftCheek, landmark.RightCheek}
	jawPair      = [2]landmark.Index{landmark.LeftJaw, landmark.RightJaw}
	foreheadPair = [2]landmark.Index{landmark.LeftForehead, landmark.RightForehead}
	lipPair      = [2]landmark.Index{landmark.UpperLip, landmark.LowerLip}
	mouthPair    = [2]landmark.Index{landmark.MouthLeft, landmark.MouthRight}
)
