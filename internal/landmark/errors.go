package landmark

import (
	"errors"
	"fmt"
)

// ErrNoFaceDetected is returned when the detector produced no landmarks at all.
var ErrNoFaceDetected = errors.New("no face detected")

// MissingLandmarkError reports a required mesh index that is absent from a set.
type MissingLandmarkError struct {
	Index Index
}

func (e *MissingLandmarkError) Error() string {
	return fmt.Sprintf("required landmark %d (%s) is missing", int(e.Index), e.Index)
}

// TopologyError reports a landmark set that does not match the detector's mesh.
type TopologyError struct {
	Got    int
	Reason string
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("landmark topology mismatch: got %d, %s", e.Got, e.Reason)
}
