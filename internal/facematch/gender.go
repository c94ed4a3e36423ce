package facematch

import (
	"fmt"

	"github.com/kozaktomas/style-genie/internal/landmark"
)

// ClassifyGender scores jaw squareness and lip fullness. The label is Male iff the score is >= 0.
func ClassifyGender(set landmark.Set, width, height int) (GenderEstimate, error) {
	cheek, err := pairDistance(set, cheekPair, width, height)
	if err != nil {
		return GenderEstimate{}, fmt.Errorf("measuring cheeks: %w", err)
	}
	jaw, err := pairDistance(set, jawPair, width, height)
	if err != nil {
		return GenderEstimate{}, fmt.Errorf("measuring jaw: %w", err)
	}
	lipHeight, err := pairDistance(set, lipPair, width, height)
	if err != nil {
		return GenderEstimate{}, fmt.Errorf("measuring lips: %w", err)
	}
	mouthWidth, err := pairDistance(set, mouthPair, width, height)
	if err != nil {
		return GenderEstimate{}, fmt.Errorf("measuring mouth: %w", err)
	}

	jawCheek, err := ratio(jaw, cheek)
	if err != nil {
		return GenderEstimate{}, err
	}
	lip, err := ratio(lipHeight, mouthWidth)
	if err != nil {
		return GenderEstimate{}, err
	}

	score := ScoreGender(jawCheek, lip)
	return GenderEstimate{
		Gender:  genderForScore(score),
		Score:   score,
		Metrics: GenderMetrics{JawCheekRatio: jawCheek, LipRatio: lip},
	}, nil
}

// ScoreGender applies the fixed threshold bands to the two ratios.
func ScoreGender(jawCheekRatio, lipRatio float64) int {
	score := 0

	switch {
	case jawCheekRatio > 0.92:
		score += 3
	case jawCheekRatio > 0.88:
		score++
	case jawCheekRatio < 0.82:
		score--
	}

	switch {
	case lipRatio > 0.35:
		score -= 3
	case lipRatio > 0.25:
		score--
	case lipRatio < 0.15:
		score += 2
	}

	return score
}

func genderForScore(score int) Gender {
	if score >= 0 {
		return GenderMale
	}
	return GenderFemale
}
