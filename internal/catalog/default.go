package catalog

// UniversalFallbackID is the id of the built-in default asset. It never collides
// with store ids because the store is expected to hold far fewer entries.
const UniversalFallbackID int64 = 999

// UniversalFallback is the static asset used when no live recommendation is available.
func UniversalFallback() HairstyleAsset {
	return HairstyleAsset{
		ID:             UniversalFallbackID,
		Name:           "Classic Taper",
		Gender:         GenderUnisex,
		Tags:           []string{"short", "classic"},
		FaceShapeMatch: []string{"oval", "round", "square", "oblong", "heart", "diamond"},
		ImageURL:       "https://images.unsplash.com/photo-1621605815971-fbc98d665033",
		Description:    "A clean taper that suits most face shapes.",
	}
}
