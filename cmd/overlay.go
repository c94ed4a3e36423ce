package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/style-genie/internal/overlay"
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Render a try-on preview",
	Long: `Place a hairstyle image on a photo using its face landmarks and write a PNG.

Example:
  style-genie overlay --image photo.jpg --landmarks photo.landmarks.json \
    --asset https://cdn.example.com/bob-f.png --out preview.png --scale 1.1 --rotation -5`,
	RunE: runOverlay,
}

func init() {
	rootCmd.AddCommand(overlayCmd)

	overlayCmd.Flags().String("image", "", "Photo file (required)")
	overlayCmd.Flags().String("landmarks", "", "Detector output JSON file (required)")
	overlayCmd.Flags().String("asset", "", "Hairstyle image URL or local file (required)")
	overlayCmd.Flags().String("out", "preview.png", "Output PNG file")
	overlayCmd.Flags().Float64("scale", 1, "Size multiplier (0.5 to 2)")
	overlayCmd.Flags().Float64("x", 0, "Horizontal offset in pixels (-250 to 250)")
	overlayCmd.Flags().Float64("y", 0, "Vertical offset in pixels (-250 to 250)")
	overlayCmd.Flags().Float64("rotation", 0, "Extra rotation in degrees (-45 to 45)")
	overlayCmd.MarkFlagRequired("image")
	overlayCmd.MarkFlagRequired("landmarks")
	overlayCmd.MarkFlagRequired("asset")
}

func runOverlay(cmd *cobra.Command, args []string) error {
	adj := overlay.Adjustments{
		ScaleMultiplier: mustGetFloat64(cmd, "scale"),
		OffsetX:         mustGetFloat64(cmd, "x"),
		OffsetY:         mustGetFloat64(cmd, "y"),
		RotationDegrees: mustGetFloat64(cmd, "rotation"),
	}
	if err := adj.Validate(); err != nil {
		return fmt.Errorf("invalid adjustments: %w", err)
	}

	imageData, frame, err := loadPhotoAndFrame(mustGetString(cmd, "image"), mustGetString(cmd, "landmarks"))
	if err != nil {
		return err
	}
	if err := frame.Validate(); err != nil {
		return err
	}

	base, err := overlay.DecodeImage(bytes.NewReader(imageData), mustGetString(cmd, "image"))
	if err != nil {
		return err
	}

	asset := mustGetString(cmd, "asset")
	loader := &overlay.SourceLoader{HTTP: overlay.NewHTTPLoader(&http.Client{Timeout: 30 * time.Second})}
	if !isURL(asset) {
		abs, err := filepath.Abs(asset)
		if err != nil {
			return fmt.Errorf("invalid asset path: %w", err)
		}
		loader.Files = &overlay.FileLoader{Root: filepath.Dir(abs)}
		asset = filepath.Base(abs)
	}

	composite, err := overlay.Render(context.Background(), base, loader, asset, overlay.Input{
		Landmarks:   frame.Landmarks,
		ImageWidth:  frame.ImageWidth,
		ImageHeight: frame.ImageHeight,
		Adjustments: adj,
		ForeheadBox: frame.Box(),
	})
	if err != nil {
		return fmt.Errorf("rendering preview: %w", err)
	}

	out := mustGetString(cmd, "out")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()
	if err := png.Encode(f, composite.Image); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	if composite.Notice != "" || composite.Transform == nil {
		fmt.Printf("%s; wrote the original photo to %s\n", composite.Notice, out)
		return nil
	}
	t := composite.Transform
	fmt.Printf("Wrote %s (anchor %.0f,%.0f via %s, %.0fx%.0f px, rotation %.1f°)\n",
		out, t.AnchorX, t.AnchorY, t.AnchorSource, t.Width, t.Height, t.RotationRadians*180/math.Pi)
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
