package recommend

import (
	"context"
	"time"

	"github.com/kozaktomas/style-genie/internal/ai"
	"github.com/kozaktomas/style-genie/internal/catalog"
	"github.com/kozaktomas/style-genie/internal/constants"
	"github.com/kozaktomas/style-genie/internal/log"
)

// Options tune the selector. Zero values fall back to the package defaults.
type Options struct {
	ExcerptLimit  int
	OracleTimeout time.Duration
	StoreTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.ExcerptLimit <= 0 {
		o.ExcerptLimit = constants.DefaultExcerptLimit
	}
	if o.OracleTimeout <= 0 {
		o.OracleTimeout = 30 * time.Second
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = 5 * time.Second
	}
	return o
}

// tier is one step of the fallback chain. It sees the findings of earlier tiers.
type tier func(ctx context.Context, req *Request, prior Findings) TierResult

// Selector runs the tiers in order and keeps the first that yields anything.
type Selector struct {
	oracle   ai.Oracle
	store    catalog.Reader
	fallback catalog.HairstyleAsset
	opts     Options
}

// NewSelector builds a selector. oracle may be nil, in which case the AI tier is skipped.
func NewSelector(oracle ai.Oracle, store catalog.Reader, opts Options) *Selector {
	return &Selector{
		oracle:   oracle,
		store:    store,
		fallback: catalog.UniversalFallback(),
		opts:     opts.withDefaults(),
	}
}

// Select never fails: when every live tier fails the built-in default is returned.
func (s *Selector) Select(ctx context.Context, req *Request) Result {
	logger := log.WithRequestID(ctx)

	tiers := []struct {
		source Source
		run    tier
	}{
		{SourceAI, s.primary},
		{SourceHybrid, s.secondary},
		{SourceDefault, s.tertiary},
	}

	var (
		findings Findings
		warnings []string
	)
	for _, t := range tiers {
		res := t.run(ctx, req, findings)
		findings = res.Findings

		if res.Err != nil {
			logger.WithError(res.Err).WithField("tier", t.source).Warn("Recommendation tier failed")
			if res.Err.Warning != "" {
				warnings = append(warnings, res.Err.Warning)
			}
			continue
		}

		recs := enforceGender(res.Recommendations, findings.Gender)
		if len(recs) == 0 {
			logger.WithField("tier", t.source).Warn("Gender check removed every recommendation")
			continue
		}

		logger.WithFields(log.Fields{
			"tier":  t.source,
			"count": len(recs),
			"shape": findings.FaceShape,
		}).Info("Recommendations selected")
		return s.result(req, t.source, recs, findings, warnings)
	}

	// Unreachable while the default tier is in the chain; kept so Select cannot return nothing.
	return s.result(req, SourceDefault, []Recommendation{{Asset: s.fallback, Explanation: ExplanationDefault}}, findings, warnings)
}

func (s *Selector) result(req *Request, source Source, recs []Recommendation, f Findings, warnings []string) Result {
	gender := f.Gender
	if !gender.Known() {
		gender = catalog.GenderUnknown
	}
	outfits := f.OutfitSuggestions
	if len(outfits) == 0 {
		outfits = DefaultOutfits()
	}
	clothing := f.ClothingSuggestion
	if clothing == "" {
		clothing = defaultClothingSuggestion
	}

	res := Result{
		Recommendations:    recs,
		FaceShape:          resolveShape(f, req),
		Gender:             gender,
		Source:             source,
		ClothingSuggestion: clothing,
		OutfitSuggestions:  outfits,
		Warnings:           warnings,
	}
	if source == SourceDefault {
		res.Notice = NoticeDefault
	}
	return res
}

// enforceGender drops anything that would show the wrong presentation, whichever tier produced it.
func enforceGender(recs []Recommendation, target catalog.Gender) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if r.Asset.Gender.Matches(target) {
			out = append(out, r)
		}
	}
	return out
}
