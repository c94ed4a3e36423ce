package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "style-genie",
	Short: "Hairstyle recommendations and virtual try-on from face landmarks",
	Long: `StyleGenie classifies face shape from detector landmarks, recommends
hairstyles from a catalog (with an AI stylist when one is configured) and
renders try-on previews with the chosen hairstyle placed on the photo.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
