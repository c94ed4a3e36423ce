package ai

import (
	"context"
	"sync"
)

// InventoryItem is the slice of a catalog asset the oracle gets to choose from.
type InventoryItem struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Gender string   `json:"gender"`
	Tags   []string `json:"tags"`
}

// StyleRequest asks the oracle to pick hairstyles for the face in ImageData.
type StyleRequest struct {
	ImageData []byte
	// ShapeHint is the geometric classifier's shape, or "Unknown".
	ShapeHint string
	Inventory []InventoryItem
}

// OutfitSuggestion is one outfit idea returned alongside the hairstyles.
type OutfitSuggestion struct {
	Style       string   `json:"style"`
	Description string   `json:"description"`
	Colors      []string `json:"colors"`
}

// StyleAnalysis is the oracle's answer. SelectedIDs may reference ids outside
// the inventory; callers must check.
type StyleAnalysis struct {
	FaceShape          string             `json:"faceShape"`
	Gender             string             `json:"gender"`
	ClothingSuggestion string             `json:"clothingSuggestion"`
	OutfitSuggestions  []OutfitSuggestion `json:"outfitSuggestions"`
	SelectedIDs        []int64            `json:"selectedIds"`
	Reasoning          []string           `json:"reasoning"`
}

// AssetDescription is catalog metadata generated from a hairstyle image.
type AssetDescription struct {
	Name           string   `json:"name"`
	Tags           []string `json:"tags"`
	FaceShapeMatch []string `json:"face_shape_match"`
	Description    string   `json:"description"`
}

// Oracle recommends hairstyles from a photo and an inventory excerpt.
type Oracle interface {
	Name() string
	RecommendStyles(ctx context.Context, req *StyleRequest) (*StyleAnalysis, error)
}

// Describer writes catalog metadata for a hairstyle image.
type Describer interface {
	DescribeAsset(ctx context.Context, imageData []byte, gender string) (*AssetDescription, error)
}

// Provider defines the interface for AI backends.
type Provider interface {
	Oracle
	Describer

	// Usage tracking.
	GetUsage() Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}

// usageMeter is shared by all providers. Requests run concurrently under the
// web server, so it is mutex guarded.
type usageMeter struct {
	mu      sync.Mutex
	usage   Usage
	pricing RequestPricing
}

func (m *usageMeter) track(inputTokens, outputTokens int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage.InputTokens += int(inputTokens)
	m.usage.OutputTokens += int(outputTokens)
	m.usage.TotalCost += float64(inputTokens) / 1_000_000 * m.pricing.Input
	m.usage.TotalCost += float64(outputTokens) / 1_000_000 * m.pricing.Output
}

func (m *usageMeter) GetUsage() Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}

func (m *usageMeter) ResetUsage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = Usage{}
}
