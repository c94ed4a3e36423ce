// Package recommend picks up to three hairstyles for an analyzed face, falling
// back from the AI oracle to a catalog query to a built-in default.
package recommend

import (
	"fmt"

	"github.com/kozaktomas/style-genie/internal/ai"
	"github.com/kozaktomas/style-genie/internal/catalog"
	"github.com/kozaktomas/style-genie/internal/facematch"
)

// Source names the tier that produced a result.
type Source string

const (
	SourceAI      Source = "AI"
	SourceHybrid  Source = "Hybrid"
	SourceDefault Source = "Default"
)

const (
	ExplanationAI      = "AI Recommended"
	ExplanationDefault = "Universal style."
	NoticeDefault      = "Showing a safe default — live recommendation unavailable"

	defaultClothingSuggestion = "Classic styles work well."

	warnGenderFiltered = "AI suggestions did not match the detected presentation; showing the best catalog matches instead."
	warnNoValidPicks   = "AI suggestions could not be matched to the catalog; showing the best catalog matches instead."
)

// Request is one recommendation job.
type Request struct {
	ImageData []byte
	// Geometry is the landmark classification, or nil when it was not available.
	Geometry *facematch.FaceGeometry
}

// Recommendation is an asset with a one-line reason it was picked.
type Recommendation struct {
	Asset       catalog.HairstyleAsset `json:"asset"`
	Explanation string                 `json:"explanation"`
}

// Findings are facts about the person that tiers pass down the chain.
type Findings struct {
	FaceShape          string
	Gender             catalog.Gender
	ClothingSuggestion string
	OutfitSuggestions  []ai.OutfitSuggestion
}

// TierError is why a tier produced nothing. Warning, when set, is shown to the user.
type TierError struct {
	Tier    Source
	Err     error
	Warning string
}

func (e *TierError) Error() string {
	return fmt.Sprintf("%s tier: %v", e.Tier, e.Err)
}

func (e *TierError) Unwrap() error {
	return e.Err
}

// TierResult is the outcome of one tier. Exactly one of Recommendations or Err is set.
type TierResult struct {
	Recommendations []Recommendation
	Findings        Findings
	Err             *TierError
}

// Result is what the selector hands back. Recommendations always holds 1 to 3 entries.
type Result struct {
	Recommendations    []Recommendation      `json:"recommendations"`
	FaceShape          string                `json:"faceShape"`
	Gender             catalog.Gender        `json:"gender"`
	Source             Source                `json:"source"`
	ClothingSuggestion string                `json:"clothingSuggestion"`
	OutfitSuggestions  []ai.OutfitSuggestion `json:"outfitSuggestions"`
	Warnings           []string              `json:"warnings,omitempty"`
	Notice             string                `json:"notice,omitempty"`
}

// DefaultOutfits are used whenever the oracle gave none.
func DefaultOutfits() []ai.OutfitSuggestion {
	return []ai.OutfitSuggestion{
		{Style: "Casual", Description: "Classic t-shirt and jeans", Colors: []string{"Blue", "White"}},
		{Style: "Formal", Description: "Standard business attire", Colors: []string{"Grey", "Black"}},
	}
}
