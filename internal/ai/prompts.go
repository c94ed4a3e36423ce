package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed prompts/style_recommendation.txt
var styleRecommendationPrompt string

//go:embed prompts/asset_description.txt
var assetDescriptionPrompt string

const jsonRetryFeedback = "JSON error: %v. Please fix the JSON and try again. Remember to escape quotes inside strings with backslash. Output ONLY valid JSON, no other text."

func buildStylePrompt(req *StyleRequest) string {
	hint := strings.TrimSpace(req.ShapeHint)
	if hint == "" {
		hint = "Unknown"
	}
	inventory := req.Inventory
	if inventory == nil {
		inventory = []InventoryItem{}
	}
	inventoryJSON, _ := json.Marshal(inventory)
	return fmt.Sprintf(styleRecommendationPrompt, hint, string(inventoryJSON))
}

func buildAssetPrompt(gender string) string {
	if gender == "" {
		gender = "unisex"
	}
	return fmt.Sprintf(assetDescriptionPrompt, gender)
}
