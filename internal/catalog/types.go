// Package catalog holds the hairstyle asset model and the store interfaces the
// recommendation pipeline reads from.
package catalog

import (
	"context"
	"strings"
	"time"
)

// Gender is the presentation a hairstyle asset is intended for.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnisex  Gender = "unisex"
	GenderUnknown Gender = "unknown"
)

// ParseGender normalizes free-text gender labels. Anything unrecognized is GenderUnknown.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "man", "men":
		return GenderMale
	case "female", "f", "woman", "women":
		return GenderFemale
	case "unisex", "neutral", "any":
		return GenderUnisex
	default:
		return GenderUnknown
	}
}

// Known reports whether g is a concrete presentation (male or female).
func (g Gender) Known() bool {
	return g == GenderMale || g == GenderFemale
}

// Matches reports whether an asset of gender g may be shown to a person of gender target.
// Unisex assets match everyone; with an unknown target only unisex assets match.
func (g Gender) Matches(target Gender) bool {
	if g == GenderUnisex {
		return true
	}
	return target.Known() && g == target
}

// AllowedGenders lists the asset genders acceptable for target.
func AllowedGenders(target Gender) []Gender {
	if target.Known() {
		return []Gender{target, GenderUnisex}
	}
	return []Gender{GenderUnisex}
}

// HairstyleAsset is one overlay image with its matching metadata.
type HairstyleAsset struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Gender         Gender    `json:"gender"`
	Tags           []string  `json:"tags"`
	FaceShapeMatch []string  `json:"face_shape_match"`
	ImageURL       string    `json:"image_url"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
}

// FilterByGender keeps only assets that match target, preserving order.
func FilterByGender(assets []HairstyleAsset, target Gender) []HairstyleAsset {
	var out []HairstyleAsset
	for _, a := range assets {
		if a.Gender.Matches(target) {
			out = append(out, a)
		}
	}
	return out
}

// Reader provides read-only access to the hairstyle catalog.
type Reader interface {
	// QueryByShapeAndGender returns assets whose face_shape_match overlaps shapes
	// and whose gender is one of genders.
	QueryByShapeAndGender(ctx context.Context, shapes []string, genders []Gender) ([]HairstyleAsset, error)
	// CatalogExcerpt returns at most limit assets in stable order.
	CatalogExcerpt(ctx context.Context, limit int) ([]HairstyleAsset, error)
	// ListAll returns every asset, newest first.
	ListAll(ctx context.Context) ([]HairstyleAsset, error)
	// Get returns an asset by id, or nil if it does not exist.
	Get(ctx context.Context, id int64) (*HairstyleAsset, error)
}

// Writer adds assets to the catalog.
type Writer interface {
	// Insert stores the asset and sets its ID and CreatedAt.
	Insert(ctx context.Context, asset *HairstyleAsset) error
	// ExistsByNameOrURL reports whether an asset with this name or image URL is already stored.
	ExistsByNameOrURL(ctx context.Context, name, imageURL string) (bool, error)
}

// Store is a full read-write catalog.
type Store interface {
	Reader
	Writer
}
