package overlay

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// Adjustments are the user's manual tweaks on top of the landmark placement.
type Adjustments struct {
	ScaleMultiplier float64 `json:"scale" validate:"gte=0.5,lte=2"`
	OffsetX         float64 `json:"x" validate:"gte=-250,lte=250"`
	OffsetY         float64 `json:"y" validate:"gte=-250,lte=250"`
	RotationDegrees float64 `json:"rotation" validate:"gte=-45,lte=45"`
}

// DefaultAdjustments leaves the landmark placement untouched.
func DefaultAdjustments() Adjustments {
	return Adjustments{ScaleMultiplier: 1}
}

// Reset restores the defaults.
func (a *Adjustments) Reset() {
	*a = DefaultAdjustments()
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks every field against its slider range.
func (a Adjustments) Validate() error {
	return validatorInstance().Struct(a)
}

// multiplier treats an unset scale as 1.
func (a Adjustments) multiplier() float64 {
	if a.ScaleMultiplier == 0 {
		return 1
	}
	return a.ScaleMultiplier
}

// Slider describes one adjustment control.
type Slider struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// Sliders lists the adjustment controls in display order.
func Sliders() []Slider {
	d := DefaultAdjustments()
	return []Slider{
		{Name: "scale", Label: "Size", Min: 0.5, Max: 2.0, Step: 0.05, Default: d.ScaleMultiplier},
		{Name: "x", Label: "Horizontal", Min: -250, Max: 250, Step: 1, Default: d.OffsetX},
		{Name: "y", Label: "Vertical", Min: -250, Max: 250, Step: 1, Default: d.OffsetY},
		{Name: "rotation", Label: "Rotation", Min: -45, Max: 45, Step: 1, Default: d.RotationDegrees},
	}
}
