package landmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Box is the detector's coarse forehead region, used when mesh points are unavailable.
type Box struct {
	Top   Point `json:"top"`
	Left  Point `json:"left"`
	Right Point `json:"right"`
}

// BoxFromSet derives a forehead box from the mesh points 10, 338 and 109.
// It returns nil when any of them is absent.
func BoxFromSet(s Set) *Box {
	top, errTop := s.At(ForeheadTop)
	left, errLeft := s.At(ForeheadLeft)
	right, errRight := s.At(ForeheadRight)
	if errTop != nil || errLeft != nil || errRight != nil {
		return nil
	}
	return &Box{Top: top, Left: left, Right: right}
}

// Frame is one detector result: the points plus the dimensions they are relative to.
type Frame struct {
	Landmarks   Set  `json:"landmarks"`
	ImageWidth  int  `json:"imageWidth"`
	ImageHeight int  `json:"imageHeight"`
	ForeheadBox *Box `json:"foreheadBox,omitempty"`
}

// Validate checks dimensions and topology. An empty landmark set is ErrNoFaceDetected.
func (f *Frame) Validate() error {
	if f.Landmarks.Empty() && f.ForeheadBox == nil {
		return ErrNoFaceDetected
	}
	if f.ImageWidth <= 0 || f.ImageHeight <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", f.ImageWidth, f.ImageHeight)
	}
	return ValidateTopology(f.Landmarks)
}

// Box returns the explicit forehead box or one derived from the mesh.
func (f *Frame) Box() *Box {
	if f.ForeheadBox != nil {
		return f.ForeheadBox
	}
	return BoxFromSet(f.Landmarks)
}

// DecodeFrame reads a detector payload from JSON.
func DecodeFrame(r io.Reader) (*Frame, error) {
	var f Frame
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoFaceDetected
		}
		return nil, fmt.Errorf("decoding landmarks: %w", err)
	}
	return &f, nil
}
