package facematch

import (
	"errors"
	"math"

	"github.com/kozaktomas/style-genie/internal/landmark"
)

// ErrDegenerateFace is returned when a reference width is zero, so no ratio can be formed.
var ErrDegenerateFace = errors.New("face landmarks are degenerate")

// PixelDistance is the planar Euclidean distance between two normalized points
// after scaling them to pixel space.
func PixelDistance(a, b landmark.Point, width, height int) float64 {
	dx := (a.X - b.X) * float64(width)
	dy := (a.Y - b.Y) * float64(height)
	return math.Sqrt(dx*dx + dy*dy)
}

// pairDistance measures the distance between two indexed landmarks.
func pairDistance(set landmark.Set, pair [2]landmark.Index, width, height int) (float64, error) {
	a, err := set.At(pair[0])
	if err != nil {
		return 0, err
	}
	b, err := set.At(pair[1])
	if err != nil {
		return 0, err
	}
	return PixelDistance(a, b, width, height), nil
}

// Measure computes the four shape distances from a landmark set.
func Measure(set landmark.Set, width, height int) (Measurements, error) {
	var m Measurements
	var err error

	if m.FaceLength, err = pairDistance(set, lengthPair, width, height); err != nil {
		return Measurements{}, err
	}
	if m.CheekWidth, err = pairDistance(set, cheekPair, width, height); err != nil {
		return Measurements{}, err
	}
	if m.JawWidth, err = pairDistance(set, jawPair, width, height); err != nil {
		return Measurements{}, err
	}
	if m.ForeheadWidth, err = pairDistance(set, foreheadPair, width, height); err != nil {
		return Measurements{}, err
	}
	return m, nil
}

// ratio divides a by b, failing on a zero denominator.
func ratio(a, b float64) (float64, error) {
	if b == 0 || math.IsNaN(b) {
		return 0, ErrDegenerateFace
	}
	return a / b, nil
}
