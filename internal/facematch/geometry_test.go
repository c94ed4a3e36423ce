package facematch

import (
	"errors"
	"math"
	"testing"

	"github.com/kozaktomas/style-genie/internal/landmark"
)

const testSize = 1000

// faceLandmarks places the measured landmark pairs so that, on a 1000x1000
// image, the pixel distances equal the given values.
func faceLandmarks(length, cheek, jaw, forehead, lipHeight, mouthWidth float64) landmark.Set {
	half := func(v float64) float64 { return v / 2 / testSize }
	return landmark.SparseSet(map[landmark.Index]landmark.Point{
		landmark.ForeheadTop:   {X: 0.5, Y: 0.1},
		landmark.Chin:          {X: 0.5, Y: 0.1 + length/testSize},
		landmark.LeftCheek:     {X: 0.5 - half(cheek), Y: 0.45},
		landmark.RightCheek:    {X: 0.5 + half(cheek), Y: 0.45},
		landmark.LeftJaw:       {X: 0.5 - half(jaw), Y: 0.7},
		landmark.RightJaw:      {X: 0.5 + half(jaw), Y: 0.7},
		landmark.LeftForehead:  {X: 0.5 - half(forehead), Y: 0.2},
		landmark.RightForehead: {X: 0.5 + half(forehead), Y: 0.2},
		landmark.UpperLip:      {X: 0.5, Y: 0.8},
		landmark.LowerLip:      {X: 0.5, Y: 0.8 + lipHeight/testSize},
		landmark.MouthLeft:     {X: 0.5 - half(mouthWidth), Y: 0.8},
		landmark.MouthRight:    {X: 0.5 + half(mouthWidth), Y: 0.8},
	})
}

func TestPixelDistance(t *testing.T) {
	tests := []struct {
		name          string
		a, b          landmark.Point
		width, height int
		expected      float64
	}{
		{
			name:     "same point",
			a:        landmark.Point{X: 0.3, Y: 0.3},
			b:        landmark.Point{X: 0.3, Y: 0.3},
			width:    100,
			height:   100,
			expected: 0,
		},
		{
			name:     "horizontal",
			a:        landmark.Point{X: 0.1, Y: 0.5},
			b:        landmark.Point{X: 0.6, Y: 0.5},
			width:    200,
			height:   100,
			expected: 100,
		},
		{
			name:     "3-4-5 triangle with non-square image",
			a:        landmark.Point{X: 0, Y: 0},
			b:        landmark.Point{X: 0.3, Y: 0.2},
			width:    10,
			height:   20,
			expected: 5,
		},
		{
			name:     "z is ignored",
			a:        landmark.Point{X: 0, Y: 0, Z: 10},
			b:        landmark.Point{X: 0, Y: 0.5, Z: -10},
			width:    100,
			height:   100,
			expected: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PixelDistance(tt.a, tt.b, tt.width, tt.height)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("PixelDistance() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMeasure(t *testing.T) {
	set := faceLandmarks(300, 200, 160, 180, 20, 100)

	m, err := Measure(set, testSize, testSize)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}

	checks := map[string][2]float64{
		"faceLength":    {m.FaceLength, 300},
		"cheekWidth":    {m.CheekWidth, 200},
		"jawWidth":      {m.JawWidth, 160},
		"foreheadWidth": {m.ForeheadWidth, 180},
	}
	for name, c := range checks {
		if math.Abs(c[0]-c[1]) > 1e-6 {
			t.Errorf("%s = %v, want %v", name, c[0], c[1])
		}
	}
}

func TestMeasure_MissingLandmark(t *testing.T) {
	set := landmark.SparseSet(map[landmark.Index]landmark.Point{
		landmark.ForeheadTop: {X: 0.5, Y: 0.1},
		landmark.Chin:        {X: 0.5, Y: 0.9},
	})

	_, err := Measure(set, testSize, testSize)
	var missing *landmark.MissingLandmarkError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingLandmarkError, got %v", err)
	}
	if missing.Index != landmark.LeftCheek {
		t.Errorf("expected missing index %d, got %d", landmark.LeftCheek, missing.Index)
	}
}
