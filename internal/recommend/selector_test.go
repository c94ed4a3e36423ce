package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/style-genie/internal/ai"
	"github.com/kozaktomas/style-genie/internal/catalog"
	"github.com/kozaktomas/style-genie/internal/facematch"
)

type fakeOracle struct {
	mu       sync.Mutex
	analysis *ai.StyleAnalysis
	err      error
	block    bool
	requests []*ai.StyleRequest
}

func (f *fakeOracle) Name() string { return "fake" }

func (f *fakeOracle) RecommendStyles(ctx context.Context, req *ai.StyleRequest) (*ai.StyleAnalysis, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.analysis, f.err
}

// Ids follow insertion order: 1..8.
func testCatalog() *catalog.MemoryStore {
	return catalog.NewMemoryStore(
		catalog.HairstyleAsset{Name: "Buzz Cut M", Gender: catalog.GenderMale, FaceShapeMatch: []string{"oval", "square"}},
		catalog.HairstyleAsset{Name: "Quiff M", Gender: catalog.GenderMale, FaceShapeMatch: []string{"round", "square"}},
		catalog.HairstyleAsset{Name: "Side Part M", Gender: catalog.GenderMale, FaceShapeMatch: []string{"square"}},
		catalog.HairstyleAsset{Name: "Long Layers F", Gender: catalog.GenderFemale, FaceShapeMatch: []string{"oval", "round"}},
		catalog.HairstyleAsset{Name: "Pixie Cut F", Gender: catalog.GenderFemale, FaceShapeMatch: []string{"heart", "oval"}},
		catalog.HairstyleAsset{Name: "Bob F", Gender: catalog.GenderFemale, FaceShapeMatch: []string{"square", "oblong"}},
		catalog.HairstyleAsset{Name: "Shag Cut", Gender: catalog.GenderUnisex, FaceShapeMatch: []string{"round", "heart"}},
		catalog.HairstyleAsset{Name: "Curly Top", Gender: catalog.GenderUnisex, FaceShapeMatch: []string{"square", "diamond"}},
	)
}

func squareGeometry() *facematch.FaceGeometry {
	return &facematch.FaceGeometry{Shape: facematch.ShapeSquare, Confidence: 0.9}
}

func names(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Asset.Name
	}
	return out
}

func TestSelect_AITier(t *testing.T) {
	oracle := &fakeOracle{analysis: &ai.StyleAnalysis{
		FaceShape:          "Square",
		Gender:             "Male",
		ClothingSuggestion: "Structured jackets",
		OutfitSuggestions:  []ai.OutfitSuggestion{{Style: "Casual", Description: "Denim", Colors: []string{"Navy"}}},
		SelectedIDs:        []int64{3, 1, 8},
		Reasoning:          []string{"Sharp part", "", "Adds texture"},
	}}
	s := NewSelector(oracle, testCatalog(), Options{})

	res := s.Select(context.Background(), &Request{ImageData: []byte("img"), Geometry: squareGeometry()})

	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, []string{"Side Part", "Buzz Cut", "Curly Top"}, names(res.Recommendations))
	assert.Equal(t, "Sharp part", res.Recommendations[0].Explanation)
	assert.Equal(t, ExplanationAI, res.Recommendations[1].Explanation)
	assert.Equal(t, "Adds texture", res.Recommendations[2].Explanation)
	assert.Equal(t, "Square", res.FaceShape)
	assert.Equal(t, catalog.GenderMale, res.Gender)
	assert.Equal(t, "Structured jackets", res.ClothingSuggestion)
	assert.Equal(t, "Denim", res.OutfitSuggestions[0].Description)
	assert.Empty(t, res.Notice)
	assert.Empty(t, res.Warnings)

	require.Len(t, oracle.requests, 1)
	assert.Equal(t, "Square", oracle.requests[0].ShapeHint)
	assert.Len(t, oracle.requests[0].Inventory, 8)
}

func TestSelect_AIHallucinatedAndDuplicateIDs(t *testing.T) {
	oracle := &fakeOracle{analysis: &ai.StyleAnalysis{
		FaceShape:   "Round",
		Gender:      "Female",
		SelectedIDs: []int64{404, 4, 4, 7, 5, 6},
		Reasoning:   []string{"a", "b", "c", "d", "e", "f"},
	}}
	s := NewSelector(oracle, testCatalog(), Options{})

	res := s.Select(context.Background(), &Request{})

	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, []string{"Long Layers", "Shag Cut", "Pixie Cut"}, names(res.Recommendations))
	assert.Equal(t, "b", res.Recommendations[0].Explanation)
	assert.Equal(t, "d", res.Recommendations[1].Explanation)
}

func TestSelect_ExcerptLimit(t *testing.T) {
	oracle := &fakeOracle{analysis: &ai.StyleAnalysis{Gender: "Female", SelectedIDs: []int64{5, 4}}}
	s := NewSelector(oracle, testCatalog(), Options{ExcerptLimit: 4})

	res := s.Select(context.Background(), &Request{})

	require.Len(t, oracle.requests, 1)
	assert.Len(t, oracle.requests[0].Inventory, 4)
	assert.Equal(t, "Unknown", oracle.requests[0].ShapeHint)
	// id 5 is outside the excerpt
	assert.Equal(t, []string{"Long Layers"}, names(res.Recommendations))
	assert.Equal(t, SourceAI, res.Source)
}

func TestSelect_GenderFilterFallsToHybrid(t *testing.T) {
	oracle := &fakeOracle{analysis: &ai.StyleAnalysis{
		FaceShape:   "Oblong",
		Gender:      "Female",
		SelectedIDs: []int64{1, 2, 3},
	}}
	s := NewSelector(oracle, testCatalog(), Options{})

	res := s.Select(context.Background(), &Request{Geometry: squareGeometry()})

	assert.Equal(t, SourceHybrid, res.Source)
	assert.Equal(t, []string{"Bob"}, names(res.Recommendations))
	assert.Equal(t, "Best fit for Oblong face shape.", res.Recommendations[0].Explanation)
	assert.Equal(t, "Oblong", res.FaceShape)
	assert.Equal(t, catalog.GenderFemale, res.Gender)
	assert.Equal(t, []string{warnGenderFiltered}, res.Warnings)
}

func TestSelect_OracleErrorUsesHintAndUnknownGender(t *testing.T) {
	oracle := &fakeOracle{err: &ai.ProviderError{Provider: "fake", Op: "recommend", Err: errors.New("quota")}}
	s := NewSelector(oracle, testCatalog(), Options{})

	res := s.Select(context.Background(), &Request{Geometry: squareGeometry()})

	assert.Equal(t, SourceHybrid, res.Source)
	assert.Equal(t, catalog.GenderUnknown, res.Gender)
	assert.Equal(t, "Square", res.FaceShape)
	// Only unisex assets are safe without a known gender
	assert.Equal(t, []string{"Curly Top"}, names(res.Recommendations))
	assert.Equal(t, "Best fit for Square face shape.", res.Recommendations[0].Explanation)
	assert.Equal(t, DefaultOutfits(), res.OutfitSuggestions)
	assert.Equal(t, defaultClothingSuggestion, res.ClothingSuggestion)
	assert.Empty(t, res.Warnings)
}

func TestSelect_NoOracleNoGeometryQueriesOval(t *testing.T) {
	store := catalog.NewMemoryStore(
		catalog.HairstyleAsset{Name: "A", Gender: catalog.GenderUnisex, FaceShapeMatch: []string{"oval"}},
		catalog.HairstyleAsset{Name: "B", Gender: catalog.GenderUnisex, FaceShapeMatch: []string{"Oval"}},
		catalog.HairstyleAsset{Name: "C", Gender: catalog.GenderUnisex, FaceShapeMatch: []string{"oval"}},
		catalog.HairstyleAsset{Name: "D", Gender: catalog.GenderUnisex, FaceShapeMatch: []string{"oval"}},
	)
	s := NewSelector(nil, store, Options{})

	res := s.Select(context.Background(), &Request{})

	assert.Equal(t, SourceHybrid, res.Source)
	assert.Equal(t, "Oval", res.FaceShape)
	assert.Len(t, res.Recommendations, 3)
}

func TestSelect_EmptyCatalogFallsToDefault(t *testing.T) {
	oracle := &fakeOracle{analysis: &ai.StyleAnalysis{SelectedIDs: []int64{1}}}
	s := NewSelector(oracle, catalog.NewMemoryStore(), Options{})

	res := s.Select(context.Background(), &Request{Geometry: squareGeometry()})

	assert.Equal(t, SourceDefault, res.Source)
	assert.Empty(t, oracle.requests, "oracle is not called without a catalog")
	require.Len(t, res.Recommendations, 1)
	rec := res.Recommendations[0]
	assert.Equal(t, int64(999), rec.Asset.ID)
	assert.Equal(t, "Classic Taper", rec.Asset.Name)
	assert.Equal(t, ExplanationDefault, rec.Explanation)
	assert.Equal(t, NoticeDefault, res.Notice)
	assert.Equal(t, "Square", res.FaceShape)
}

func TestSelect_StoreDownFallsToDefault(t *testing.T) {
	store := testCatalog()
	store.ExcerptError = errors.New("connection refused")
	store.QueryError = errors.New("connection refused")
	oracle := &fakeOracle{}
	s := NewSelector(oracle, store, Options{})

	res := s.Select(context.Background(), &Request{})

	assert.Equal(t, SourceDefault, res.Source)
	assert.Equal(t, "Oval", res.FaceShape)
	assert.Equal(t, catalog.GenderUnknown, res.Gender)
	assert.Len(t, res.Recommendations, 1)
}

func TestSelect_OracleTimeout(t *testing.T) {
	oracle := &fakeOracle{block: true}
	s := NewSelector(oracle, testCatalog(), Options{OracleTimeout: 20 * time.Millisecond})

	start := time.Now()
	res := s.Select(context.Background(), &Request{Geometry: squareGeometry()})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, SourceHybrid, res.Source)
}

func TestSelect_NeverReturnsOppositeGender(t *testing.T) {
	genders := []string{"Male", "Female", "", "robot"}
	shapes := []string{"Square", "Round", "Heart", "Oval", "Diamond", "Oblong", ""}
	picks := [][]int64{{1, 2, 3}, {4, 5, 6}, {7, 8}, {1, 4, 7}, {99}}

	for _, g := range genders {
		for _, shape := range shapes {
			for _, ids := range picks {
				oracle := &fakeOracle{analysis: &ai.StyleAnalysis{FaceShape: shape, Gender: g, SelectedIDs: ids}}
				res := NewSelector(oracle, testCatalog(), Options{}).Select(context.Background(), &Request{})

				require.NotEmpty(t, res.Recommendations)
				assert.LessOrEqual(t, len(res.Recommendations), 3)
				for _, r := range res.Recommendations {
					assert.True(t, r.Asset.Gender.Matches(res.Gender),
						"%s asset %q shown for %s (source %s)", r.Asset.Gender, r.Asset.Name, res.Gender, res.Source)
				}
			}
		}
	}
}

func TestEnforceGender(t *testing.T) {
	recs := []Recommendation{
		{Asset: catalog.HairstyleAsset{Name: "m", Gender: catalog.GenderMale}},
		{Asset: catalog.HairstyleAsset{Name: "u", Gender: catalog.GenderUnisex}},
	}
	assert.Len(t, enforceGender(recs, catalog.GenderMale), 2)
	assert.Len(t, enforceGender(recs, catalog.GenderFemale), 1)
	assert.Len(t, enforceGender(recs, catalog.GenderUnknown), 1)
}

func TestTierError(t *testing.T) {
	cause := catalog.ErrEmptyCatalog
	err := &TierError{Tier: SourceAI, Err: cause}
	assert.ErrorIs(t, err, catalog.ErrEmptyCatalog)
	assert.Equal(t, "AI tier: hairstyle catalog is empty", err.Error())
}
