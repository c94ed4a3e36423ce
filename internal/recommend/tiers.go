package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/style-genie/internal/ai"
	"github.com/kozaktomas/style-genie/internal/catalog"
	"github.com/kozaktomas/style-genie/internal/constants"
	"github.com/kozaktomas/style-genie/internal/facematch"
	"github.com/kozaktomas/style-genie/internal/log"
)

var errNoOracle = errors.New("no AI provider configured")

// primary asks the oracle to choose from a catalog excerpt.
func (s *Selector) primary(ctx context.Context, req *Request, prior Findings) TierResult {
	fail := func(f Findings, err error, warning string) TierResult {
		return TierResult{Findings: f, Err: &TierError{Tier: SourceAI, Err: err, Warning: warning}}
	}

	if s.oracle == nil {
		return fail(prior, errNoOracle, "")
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	excerpt, err := s.store.CatalogExcerpt(storeCtx, s.opts.ExcerptLimit)
	cancel()
	if err != nil {
		return fail(prior, fmt.Errorf("loading catalog excerpt: %w", err), "")
	}
	if len(excerpt) == 0 {
		return fail(prior, catalog.ErrEmptyCatalog, "")
	}

	inventory := make([]ai.InventoryItem, 0, len(excerpt))
	byID := make(map[int64]catalog.HairstyleAsset, len(excerpt))
	for _, a := range excerpt {
		inventory = append(inventory, ai.InventoryItem{ID: a.ID, Name: a.Name, Gender: string(a.Gender), Tags: a.Tags})
		byID[a.ID] = a
	}

	oracleCtx, cancel := context.WithTimeout(ctx, s.opts.OracleTimeout)
	analysis, err := s.oracle.RecommendStyles(oracleCtx, &ai.StyleRequest{
		ImageData: req.ImageData,
		ShapeHint: req.Geometry.Hint(),
		Inventory: inventory,
	})
	cancel()
	if err != nil {
		return fail(prior, err, "")
	}

	findings := prior
	if shape, ok := facematch.ParseShape(analysis.FaceShape); ok {
		findings.FaceShape = string(shape)
	}
	findings.Gender = catalog.ParseGender(analysis.Gender)
	findings.ClothingSuggestion = strings.TrimSpace(analysis.ClothingSuggestion)
	findings.OutfitSuggestions = analysis.OutfitSuggestions

	recs, stats := pickFromExcerpt(analysis, byID, findings.Gender)
	if stats.unknown > 0 || stats.filtered > 0 {
		log.WithRequestID(ctx).WithFields(log.Fields{
			"unknown_ids":     stats.unknown,
			"gender_filtered": stats.filtered,
			"ai_gender":       findings.Gender,
		}).Warn("Discarded AI picks")
	}
	if len(recs) == 0 {
		warning := warnNoValidPicks
		if stats.filtered > 0 {
			warning = warnGenderFiltered
		}
		return fail(findings, errors.New("no usable AI picks"), warning)
	}

	return TierResult{Recommendations: recs, Findings: findings}
}

type pickStats struct {
	unknown  int
	filtered int
}

// pickFromExcerpt maps oracle ids onto excerpt assets, dropping unknown ids,
// duplicates and gender mismatches.
func pickFromExcerpt(analysis *ai.StyleAnalysis, byID map[int64]catalog.HairstyleAsset, gender catalog.Gender) ([]Recommendation, pickStats) {
	var (
		recs  []Recommendation
		stats pickStats
		seen  = make(map[int64]bool)
	)
	for i, id := range analysis.SelectedIDs {
		if len(recs) == constants.MaxRecommendations {
			break
		}
		asset, ok := byID[id]
		if !ok {
			stats.unknown++
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if !asset.Gender.Matches(gender) {
			stats.filtered++
			continue
		}

		explanation := ExplanationAI
		if i < len(analysis.Reasoning) && strings.TrimSpace(analysis.Reasoning[i]) != "" {
			explanation = strings.TrimSpace(analysis.Reasoning[i])
		}
		asset.Name = catalog.DisplayName(asset.Name)
		recs = append(recs, Recommendation{Asset: asset, Explanation: explanation})
	}
	return recs, stats
}

// secondary queries the catalog by face shape and gender.
func (s *Selector) secondary(ctx context.Context, req *Request, prior Findings) TierResult {
	findings := prior
	findings.FaceShape = resolveShape(prior, req)
	if !findings.Gender.Known() {
		findings.Gender = catalog.GenderUnknown
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	assets, err := s.store.QueryByShapeAndGender(storeCtx,
		[]string{strings.ToLower(findings.FaceShape)},
		catalog.AllowedGenders(findings.Gender))
	if err != nil {
		return TierResult{Findings: findings, Err: &TierError{Tier: SourceHybrid, Err: fmt.Errorf("querying catalog: %w", err)}}
	}

	explanation := fmt.Sprintf("Best fit for %s face shape.", findings.FaceShape)
	recs := make([]Recommendation, 0, constants.MaxRecommendations)
	for _, a := range assets {
		if len(recs) == constants.MaxRecommendations {
			break
		}
		a.Name = catalog.DisplayName(a.Name)
		recs = append(recs, Recommendation{Asset: a, Explanation: explanation})
	}
	if len(recs) == 0 {
		return TierResult{Findings: findings, Err: &TierError{
			Tier: SourceHybrid,
			Err:  fmt.Errorf("no %s hairstyles for %s gender", findings.FaceShape, findings.Gender),
		}}
	}
	return TierResult{Recommendations: recs, Findings: findings}
}

// tertiary always succeeds with the built-in default.
func (s *Selector) tertiary(_ context.Context, req *Request, prior Findings) TierResult {
	findings := prior
	findings.FaceShape = resolveShape(prior, req)
	return TierResult{
		Recommendations: []Recommendation{{Asset: s.fallback, Explanation: ExplanationDefault}},
		Findings:        findings,
	}
}

// resolveShape prefers the oracle's shape, then the landmark shape, then Oval.
func resolveShape(prior Findings, req *Request) string {
	if prior.FaceShape != "" {
		return prior.FaceShape
	}
	if req.Geometry != nil && req.Geometry.Shape.Valid() {
		return string(req.Geometry.Shape)
	}
	return constants.FallbackShape
}
