// Package session tracks one user's path through upload, analysis and try-on,
// and makes sure only the newest analysis of a session is ever delivered.
package session

import (
	"time"

	"github.com/kozaktomas/style-genie/internal/overlay"
)

// Step is where a session is in the flow.
type Step string

const (
	StepUpload    Step = "upload"
	StepAnalyzing Step = "analyzing"
	StepResults   Step = "results"
	StepTryOn     Step = "try_on"
)

// NoSelection is the SelectedIndex before the user picks a hairstyle.
const NoSelection = -1

// State is an immutable snapshot of a session. Transition methods return a new value.
type State struct {
	ID            string              `json:"id"`
	Step          Step                `json:"step"`
	SelectedIndex int                 `json:"selectedIndex"`
	Adjustments   overlay.Adjustments `json:"adjustments"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// NewState starts a session at the upload step.
func NewState(id string, now time.Time) State {
	return State{
		ID:            id,
		Step:          StepUpload,
		SelectedIndex: NoSelection,
		Adjustments:   overlay.DefaultAdjustments(),
		UpdatedAt:     now,
	}
}

// Analyzing moves to the analysis step and forgets any previous pick.
func (s State) Analyzing(now time.Time) State {
	s.Step = StepAnalyzing
	s.SelectedIndex = NoSelection
	s.Adjustments = overlay.DefaultAdjustments()
	s.UpdatedAt = now
	return s
}

// Results records that recommendations were delivered.
func (s State) Results(now time.Time) State {
	s.Step = StepResults
	s.UpdatedAt = now
	return s
}

// Select picks a recommendation for try-on. Adjustments start over for every pick.
func (s State) Select(index int, now time.Time) State {
	s.Step = StepTryOn
	s.SelectedIndex = index
	s.Adjustments = overlay.DefaultAdjustments()
	s.UpdatedAt = now
	return s
}

// Adjust replaces the manual adjustments.
func (s State) Adjust(a overlay.Adjustments, now time.Time) State {
	s.Adjustments = a
	s.UpdatedAt = now
	return s
}

// Reset returns to the upload step.
func (s State) Reset(now time.Time) State {
	return NewState(s.ID, now)
}
