// Package overlay places a hairstyle image on a face photo.
package overlay

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/kozaktomas/style-genie/internal/landmark"
)

const (
	// baseScale widens the hair past the cheeks so it covers the head.
	baseScale = 2.2
	// verticalLift moves the hair up so its fringe sits on the anchor.
	verticalLift = 0.65
)

// AnchorSource says which detector output positioned the overlay.
type AnchorSource string

const (
	AnchorLandmarks   AnchorSource = "landmarks"
	AnchorForeheadBox AnchorSource = "forehead_box"
)

// Input is everything needed to place one hairstyle.
type Input struct {
	Landmarks        landmark.Set
	ImageWidth       int
	ImageHeight      int
	AssetAspectRatio float64 // width / height of the hairstyle image
	Adjustments      Adjustments
	// ForeheadBox is used when the mesh lacks the forehead or cheek points.
	ForeheadBox *landmark.Box
}

// Transform is the placement of the hairstyle in base image pixels. Drawing
// translates to the anchor, rotates, then draws a Width x Height box at
// (TranslateX, TranslateY).
type Transform struct {
	AnchorX         float64      `json:"anchorX"`
	AnchorY         float64      `json:"anchorY"`
	AnchorSource    AnchorSource `json:"anchorSource"`
	FaceWidth       float64      `json:"faceWidth"`
	RotationRadians float64      `json:"rotationRadians"`
	Scale           float64      `json:"scale"`
	TranslateX      float64      `json:"translateX"`
	TranslateY      float64      `json:"translateY"`
	Width           float64      `json:"width"`
	Height          float64      `json:"height"`
}

// ComputeTransform places the hairstyle. It is a pure function of its input.
func ComputeTransform(in Input) (Transform, error) {
	if in.ImageWidth <= 0 || in.ImageHeight <= 0 {
		return Transform{}, fmt.Errorf("invalid image dimensions %dx%d", in.ImageWidth, in.ImageHeight)
	}
	if in.AssetAspectRatio <= 0 || math.IsNaN(in.AssetAspectRatio) || math.IsInf(in.AssetAspectRatio, 0) {
		return Transform{}, fmt.Errorf("invalid asset aspect ratio %v", in.AssetAspectRatio)
	}

	t, err := anchor(in)
	if err != nil {
		return Transform{}, err
	}

	t.RotationRadians = eyeAngle(in) + in.Adjustments.RotationDegrees*math.Pi/180
	t.Scale = baseScale * in.Adjustments.multiplier()
	t.Width = t.FaceWidth * t.Scale
	t.Height = t.Width / in.AssetAspectRatio
	t.TranslateX = -t.Width/2 + in.Adjustments.OffsetX
	t.TranslateY = -t.Height*verticalLift + in.Adjustments.OffsetY
	return t, nil
}

func anchor(in Input) (Transform, error) {
	w, h := in.ImageWidth, in.ImageHeight

	top, errTop := in.Landmarks.At(landmark.ForeheadTop)
	left, errLeft := in.Landmarks.At(landmark.LeftCheek)
	right, errRight := in.Landmarks.At(landmark.RightCheek)
	if meshErr := errors.Join(errTop, errLeft, errRight); meshErr == nil {
		ax, ay := top.Pixel(w, h)
		lx, _ := left.Pixel(w, h)
		rx, _ := right.Pixel(w, h)
		return Transform{
			AnchorX:      ax,
			AnchorY:      ay,
			AnchorSource: AnchorLandmarks,
			FaceWidth:    math.Abs(rx - lx),
		}, nil
	}

	box := in.ForeheadBox
	if box == nil {
		box = landmark.BoxFromSet(in.Landmarks)
	}
	if box == nil {
		// Report the first missing mesh point.
		for _, err := range []error{errTop, errLeft, errRight} {
			if err != nil {
				return Transform{}, err
			}
		}
	}

	ax, ay := box.Top.Pixel(w, h)
	return Transform{
		AnchorX:      ax,
		AnchorY:      ay,
		AnchorSource: AnchorForeheadBox,
		FaceWidth:    math.Abs(box.Right.X-box.Left.X) * float64(w),
	}, nil
}

// eyeAngle is the head tilt from the outer eye corners, or 0 when either is missing.
func eyeAngle(in Input) float64 {
	leftEye, errL := in.Landmarks.At(landmark.LeftEye)
	rightEye, errR := in.Landmarks.At(landmark.RightEye)
	if errL != nil || errR != nil {
		return 0
	}
	dy := (rightEye.Y - leftEye.Y) * float64(in.ImageHeight)
	dx := (rightEye.X - leftEye.X) * float64(in.ImageWidth)
	return math.Atan2(dy, dx)
}

// Matrix maps hairstyle image pixels (origin at the asset's top-left) to base
// image pixels for an asset of assetW x assetH.
func (t Transform) Matrix(assetW, assetH int) f64.Aff3 {
	sx := t.Width / float64(assetW)
	sy := t.Height / float64(assetH)
	sin, cos := math.Sincos(t.RotationRadians)
	return f64.Aff3{
		cos * sx, -sin * sy, cos*t.TranslateX - sin*t.TranslateY + t.AnchorX,
		sin * sx, cos * sy, sin*t.TranslateX + cos*t.TranslateY + t.AnchorY,
	}
}

// apply maps a hairstyle pixel to base image coordinates.
func apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}
