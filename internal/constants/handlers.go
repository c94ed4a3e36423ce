// Package constants provides shared constants used across the codebase.
package constants

import "time"

// File upload constants
const (
	// MaxUploadSize is the maximum photo upload size in bytes (10MB)
	MaxUploadSize = 10 << 20

	// MaxMultipartMemory is the part of a multipart form kept in memory before spilling to disk
	MaxMultipartMemory = MaxUploadSize + 1<<20
)

// Session constants
const (
	// SessionTTL is how long an idle analysis session is kept
	SessionTTL = 30 * time.Minute

	// SessionCleanupInterval is how often expired sessions are swept
	SessionCleanupInterval = 5 * time.Minute
)

// Gallery constants
const (
	// DefaultGalleryPageSize is the default number of hairstyles per gallery page
	DefaultGalleryPageSize = 100
)
