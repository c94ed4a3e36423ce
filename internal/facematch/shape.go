package facematch

import (
	"fmt"

	"github.com/kozaktomas/style-genie/internal/landmark"
)

// Decision tree thresholds.
const (
	longFaceRatio    = 1.45
	shortFaceRatio   = 1.15
	strongJawRatio   = 0.9
	heartJawRatio    = 0.75
	diamondJawRatio  = 0.7
	defaultReasoning = "Balanced features detected."
)

// ClassifyShape measures the landmarks and runs the shape decision tree.
// It returns nil without error when the set is empty, a *landmark.MissingLandmarkError
// when a required index is absent and ErrDegenerateFace when the cheek width is zero.
func ClassifyShape(set landmark.Set, width, height int) (*FaceGeometry, error) {
	if set.Empty() {
		return nil, nil
	}
	if err := landmark.ValidateTopology(set); err != nil {
		return nil, err
	}

	m, err := Measure(set, width, height)
	if err != nil {
		return nil, fmt.Errorf("measuring face: %w", err)
	}

	geometry, err := ClassifyByMeasurements(m)
	if err != nil {
		return nil, err
	}
	return &geometry, nil
}

// ClassifyByMeasurements runs the decision tree on precomputed distances.
func ClassifyByMeasurements(m Measurements) (FaceGeometry, error) {
	lengthToWidth, err := ratio(m.FaceLength, m.CheekWidth)
	if err != nil {
		return FaceGeometry{}, err
	}
	jawToCheek, _ := ratio(m.JawWidth, m.CheekWidth)

	g := FaceGeometry{
		Shape:      ShapeOval,
		Confidence: 0.85,
		Metrics:    Metrics{Measurements: m, LengthToWidthRatio: lengthToWidth},
		Reasoning:  defaultReasoning,
	}

	switch {
	case lengthToWidth > longFaceRatio:
		if jawToCheek > strongJawRatio {
			g.Shape, g.Confidence = ShapeSquare, 0.90
			g.Reasoning = "High face length with strong angular jawline."
		} else {
			g.Shape, g.Confidence = ShapeOblong, 0.88
			g.Reasoning = "Face length is significantly greater than width."
		}

	case lengthToWidth < shortFaceRatio:
		if jawToCheek > strongJawRatio {
			g.Shape, g.Confidence = ShapeSquare, 0.92
			g.Reasoning = "Face width and length are similar with strong jaw."
		} else {
			g.Shape, g.Confidence = ShapeRound, 0.91
			g.Reasoning = "Face width and length are similar with soft jaw."
		}

	case m.JawWidth < m.ForeheadWidth && jawToCheek < heartJawRatio:
		g.Shape, g.Confidence = ShapeHeart, 0.89
		g.Reasoning = "Forehead is wider than jawline, tapering down."

	case m.CheekWidth > m.ForeheadWidth && m.CheekWidth > m.JawWidth:
		if jawToCheek < diamondJawRatio {
			g.Shape, g.Confidence = ShapeDiamond, 0.87
			g.Reasoning = "Cheekbones are widest point, narrow forehead and jaw."
		} else {
			g.Shape, g.Confidence = ShapeOval, 0.95
			g.Reasoning = "Balanced proportions with cheekbones slightly wider than jaw."
		}
	}

	return g, nil
}

// Hint formats the geometry as the short text sent to the style oracle.
func (g *FaceGeometry) Hint() string {
	if g == nil {
		return "Unknown"
	}
	return string(g.Shape)
}
