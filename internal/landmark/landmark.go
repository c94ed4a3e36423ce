// Package landmark models the face-mesh points produced by the upstream detector.
//
// Points are normalized to [0,1] relative to the image dimensions and are
// addressed by the detector's fixed mesh indices. Only the indices named in
// this package are consumed anywhere in the service.
package landmark

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Index is a position in the detector's canonical mesh ordering.
type Index int

// Mesh indices consumed by classification and compositing.
const (
	ForeheadTop   Index = 10
	UpperLip      Index = 13
	LowerLip      Index = 14
	LeftEye       Index = 33
	LeftJaw       Index = 58
	MouthLeft     Index = 61
	LeftForehead  Index = 103
	ForeheadRight Index = 109
	Chin          Index = 152
	LeftCheek     Index = 234
	RightEye      Index = 263
	RightJaw      Index = 288
	MouthRight    Index = 291
	RightForehead Index = 332
	ForeheadLeft  Index = 338
	RightCheek    Index = 454
)

// Mesh sizes reported by the detector: 468 for the base mesh, 478 with iris refinement.
const (
	BaseMeshSize    = 468
	RefinedMeshSize = 478
)

var indexNames = map[Index]string{
	ForeheadTop:   "forehead top",
	UpperLip:      "upper lip",
	LowerLip:      "lower lip",
	LeftEye:       "left eye",
	LeftJaw:       "left jaw",
	MouthLeft:     "mouth left corner",
	LeftForehead:  "left forehead",
	ForeheadRight: "forehead box right",
	Chin:          "chin",
	LeftCheek:     "left cheek",
	RightEye:      "right eye",
	RightJaw:      "right jaw",
	MouthRight:    "mouth right corner",
	RightForehead: "right forehead",
	ForeheadLeft:  "forehead box left",
	RightCheek:    "right cheek",
}

func (i Index) String() string {
	if name, ok := indexNames[i]; ok {
		return name
	}
	return "landmark " + strconv.Itoa(int(i))
}

// KnownIndices returns every index this service reads, in ascending order.
func KnownIndices() []Index {
	out := make([]Index, 0, len(indexNames))
	for i := range indexNames {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Point is a normalized detector coordinate. Z is carried but never used for classification.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Pixel returns the point scaled to pixel space.
func (p Point) Pixel(width, height int) (float64, float64) {
	return p.X * float64(width), p.Y * float64(height)
}

// Set is a read-only collection of detector points keyed by mesh index.
// The zero value is an empty set.
type Set struct {
	points map[Index]Point
	size   int
	dense  bool // built from the detector's full ordered output
}

// NewSet builds a set from the detector's ordered output.
func NewSet(points []Point) Set {
	m := make(map[Index]Point, len(points))
	for i, p := range points {
		m[Index(i)] = p
	}
	return Set{points: m, size: len(points), dense: true}
}

// SparseSet builds a set holding only the given indices. The sequence length
// is taken as the highest index plus one.
func SparseSet(points map[Index]Point) Set {
	m := make(map[Index]Point, len(points))
	size := 0
	for i, p := range points {
		m[i] = p
		if int(i)+1 > size {
			size = int(i) + 1
		}
	}
	return Set{points: m, size: size}
}

// At returns the point at index i or a *MissingLandmarkError.
func (s Set) At(i Index) (Point, error) {
	p, ok := s.points[i]
	if !ok {
		return Point{}, &MissingLandmarkError{Index: i}
	}
	return p, nil
}

// Has reports whether index i is present.
func (s Set) Has(i Index) bool {
	_, ok := s.points[i]
	return ok
}

// Len is the length of the detector sequence the set was built from.
func (s Set) Len() int {
	return s.size
}

// Empty reports whether the detector returned nothing.
func (s Set) Empty() bool {
	return len(s.points) == 0
}

// Require returns the first missing index among the given ones.
func (s Set) Require(indices ...Index) error {
	for _, i := range indices {
		if !s.Has(i) {
			return &MissingLandmarkError{Index: i}
		}
	}
	return nil
}

// ValidateTopology fails when the set cannot have come from the expected mesh.
// A dense sequence must be exactly the base or refined mesh; index-keyed sets
// may be partial and consumers report the specific missing index.
func ValidateTopology(s Set) error {
	if s.dense && s.size > 0 && s.size != BaseMeshSize && s.size != RefinedMeshSize {
		return &TopologyError{Got: s.size, Reason: fmt.Sprintf("dense mesh must have %d or %d points", BaseMeshSize, RefinedMeshSize)}
	}
	if s.size > RefinedMeshSize {
		return &TopologyError{Got: s.size, Reason: fmt.Sprintf("mesh has at most %d points", RefinedMeshSize)}
	}
	for i := range s.points {
		if i < 0 {
			return &TopologyError{Got: int(i), Reason: "negative mesh index"}
		}
	}
	return nil
}

// MarshalJSON encodes the set as a dense array; absent indices become null.
func (s Set) MarshalJSON() ([]byte, error) {
	out := make([]*Point, s.size)
	for i, p := range s.points {
		if i >= 0 && int(i) < s.size {
			out[int(i)] = &p
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts either the detector's dense array (null entries are
// treated as absent) or an object keyed by mesh index.
func (s *Set) UnmarshalJSON(data []byte) error {
	var dense []*Point
	if err := json.Unmarshal(data, &dense); err == nil {
		m := make(map[Index]Point, len(dense))
		for i, p := range dense {
			if p != nil {
				m[Index(i)] = *p
			}
		}
		*s = Set{points: m, size: len(dense), dense: true}
		return nil
	}

	var sparse map[string]Point
	if err := json.Unmarshal(data, &sparse); err != nil {
		return fmt.Errorf("landmarks must be an array or an index-keyed object: %w", err)
	}
	m := make(map[Index]Point, len(sparse))
	for k, p := range sparse {
		i, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("invalid landmark index %q: %w", k, err)
		}
		m[Index(i)] = p
	}
	*s = SparseSet(m)
	return nil
}
