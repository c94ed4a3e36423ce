package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/style-genie/internal/config"
	"github.com/kozaktomas/style-genie/internal/facematch"
	"github.com/kozaktomas/style-genie/internal/landmark"
	"github.com/kozaktomas/style-genie/internal/recommend"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify a face and recommend hairstyles",
	Long: `Classify face shape and presentation from a landmarks file and pick
up to three hairstyles from the catalog.

Example:
  style-genie analyze --image photo.jpg --landmarks photo.landmarks.json --provider gemini`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("image", "", "Photo file (required)")
	analyzeCmd.Flags().String("landmarks", "", "Detector output JSON file (required)")
	analyzeCmd.Flags().String("provider", "", "AI provider: gemini, openai, ollama or none (default AI_PROVIDER)")
	analyzeCmd.Flags().Bool("json", false, "Print the result as JSON")
	analyzeCmd.MarkFlagRequired("image")
	analyzeCmd.MarkFlagRequired("landmarks")
}

// loadPhotoAndFrame reads a photo and its landmarks file. Missing frame
// dimensions are taken from the photo.
func loadPhotoAndFrame(imagePath, landmarksPath string) ([]byte, *landmark.Frame, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image: %w", err)
	}

	f, err := os.Open(landmarksPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open landmarks: %w", err)
	}
	defer f.Close()

	frame, err := landmark.DecodeFrame(f)
	if err != nil {
		return nil, nil, err
	}

	if frame.ImageWidth == 0 || frame.ImageHeight == 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read image dimensions: %w", err)
		}
		frame.ImageWidth, frame.ImageHeight = cfg.Width, cfg.Height
	}
	return imageData, frame, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	imageData, frame, err := loadPhotoAndFrame(mustGetString(cmd, "image"), mustGetString(cmd, "landmarks"))
	if err != nil {
		return err
	}

	analysis, err := facematch.AnalyzeFrame(frame)
	if err != nil {
		return fmt.Errorf("face analysis failed: %w", err)
	}

	backend, err := openCatalog(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer backend.Close()

	provider, err := newProvider(ctx, cfg, resolveProviderName(mustGetString(cmd, "provider"), cfg))
	if err != nil {
		return err
	}

	selector := recommend.NewSelector(provider, backend.Reader, recommend.Options{
		ExcerptLimit:  cfg.Pipeline.ExcerptLimit,
		OracleTimeout: cfg.Pipeline.OracleTimeout,
		StoreTimeout:  cfg.Pipeline.StoreTimeout,
	})
	result := selector.Select(ctx, &recommend.Request{ImageData: imageData, Geometry: &analysis.Geometry})

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Analysis facematch.AnalysisResult `json:"analysis"`
			Result   recommend.Result         `json:"result"`
		}{analysis, result})
	}

	printAnalysis(analysis, result)
	printUsage(provider)
	return nil
}

func printAnalysis(analysis facematch.AnalysisResult, result recommend.Result) {
	g := analysis.Geometry
	fmt.Printf("Landmark shape:  %s (confidence %.2f)\n", g.Shape, g.Confidence)
	fmt.Printf("  %s\n", g.Reasoning)
	fmt.Printf("  length/width %.2f, cheek %.0fpx, jaw %.0fpx, forehead %.0fpx\n",
		g.Metrics.LengthToWidthRatio, g.Metrics.CheekWidth, g.Metrics.JawWidth, g.Metrics.ForeheadWidth)
	fmt.Printf("Landmark gender: %s (score %d)\n\n", analysis.Gender.Gender, analysis.Gender.Score)

	fmt.Printf("Source:     %s\n", result.Source)
	fmt.Printf("Face shape: %s\n", result.FaceShape)
	fmt.Printf("Gender:     %s\n", result.Gender)
	if result.Notice != "" {
		fmt.Printf("Notice:     %s\n", result.Notice)
	}
	for _, w := range result.Warnings {
		fmt.Printf("Warning:    %s\n", w)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGENDER\tWHY")
	fmt.Fprintln(w, "--\t----\t------\t---")
	for _, rec := range result.Recommendations {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", rec.Asset.ID, rec.Asset.Name, rec.Asset.Gender, rec.Explanation)
	}
	w.Flush()

	fmt.Printf("\nClothing: %s\n", result.ClothingSuggestion)
	for _, o := range result.OutfitSuggestions {
		fmt.Printf("  %s: %s (%s)\n", o.Style, o.Description, strings.Join(o.Colors, ", "))
	}
}
