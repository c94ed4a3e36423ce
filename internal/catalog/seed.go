package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedEntry struct {
	Name           string   `yaml:"name"`
	Gender         string   `yaml:"gender"`
	Tags           []string `yaml:"tags"`
	FaceShapeMatch []string `yaml:"face_shape_match"`
	ImageURL       string   `yaml:"image_url"`
	Description    string   `yaml:"description"`
}

// SeedAssets returns the bundled demo catalog.
func SeedAssets() ([]HairstyleAsset, error) {
	var entries []seedEntry
	if err := yaml.Unmarshal(seedYAML, &entries); err != nil {
		return nil, fmt.Errorf("parsing seed catalog: %w", err)
	}

	assets := make([]HairstyleAsset, 0, len(entries))
	for _, e := range entries {
		assets = append(assets, HairstyleAsset{
			Name:           e.Name,
			Gender:         ParseGender(e.Gender),
			Tags:           e.Tags,
			FaceShapeMatch: e.FaceShapeMatch,
			ImageURL:       e.ImageURL,
			Description:    e.Description,
		})
	}
	return assets, nil
}
