// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Recommendation constants
const (
	// MaxRecommendations is the most hairstyles returned for one photo
	MaxRecommendations = 3

	// DefaultExcerptLimit is the number of catalog entries shown to the style oracle
	DefaultExcerptLimit = 20

	// FallbackShape is used when neither the oracle nor the classifier produced a shape
	FallbackShape = "Oval"
)

// Image processing constants
const (
	// OracleImageSize is the maximum dimension of photos sent to AI providers
	OracleImageSize = 800

	// MaxAssetDownloadSize caps the bytes read when fetching a hairstyle image
	MaxAssetDownloadSize = 20 << 20
)

// Processing constants
const (
	// DefaultConcurrency is the default number of parallel workers for catalog sync
	DefaultConcurrency = 5

	// OracleMaxRetries is how often a provider is re-asked after an unparsable answer
	OracleMaxRetries = 3
)
