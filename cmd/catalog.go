package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/style-genie/internal/assetsync"
	"github.com/kozaktomas/style-genie/internal/catalog"
	"github.com/kozaktomas/style-genie/internal/config"
	"github.com/kozaktomas/style-genie/internal/constants"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and maintain the hairstyle catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hairstyles, newest first",
	RunE:  runCatalogList,
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the bundled demo hairstyles into the database",
	Long: `Insert the bundled demo hairstyles. Entries whose name or image URL
already exist are skipped, so seeding twice is harmless.`,
	RunE: runCatalogSeed,
}

var catalogSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import new hairstyle images from the asset bucket",
	Long: `Import every image in the asset bucket that is not yet in the catalog.
Gender comes from the file name ("-m" male, "-f" female, otherwise unisex).
Name, tags and matching face shapes are written by the AI provider, with
generic metadata used when it is unavailable.

Example:
  style-genie catalog sync --provider gemini --concurrency 3
  style-genie catalog sync --dry-run`,
	RunE: runCatalogSync,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogSeedCmd, catalogSyncCmd)

	catalogListCmd.Flags().String("gender", "", "Only male, female or unisex hairstyles (unisex is always included)")

	catalogSyncCmd.Flags().Bool("dry-run", false, "Show what would be imported without calling AI or writing")
	catalogSyncCmd.Flags().Int("concurrency", constants.DefaultConcurrency, "Number of parallel imports")
	catalogSyncCmd.Flags().String("provider", "", "AI provider: gemini, openai, ollama or none (default AI_PROVIDER)")
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	backend, err := openCatalog(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer backend.Close()

	assets, err := backend.Reader.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list hairstyles: %w", err)
	}

	if raw := mustGetString(cmd, "gender"); raw != "" {
		gender := catalog.ParseGender(raw)
		if gender == catalog.GenderUnknown {
			return fmt.Errorf("unknown gender: %s", raw)
		}
		assets = catalog.FilterByGender(assets, gender)
	}

	if len(assets) == 0 {
		fmt.Println("No hairstyles found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGENDER\tSHAPES\tTAGS")
	fmt.Fprintln(w, "--\t----\t------\t------\t----")
	for _, a := range assets {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Gender,
			strings.Join(a.FaceShapeMatch, ","), strings.Join(a.Tags, ","))
	}
	w.Flush()

	fmt.Printf("\nTotal: %d hairstyles\n", len(assets))
	return nil
}

func runCatalogSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	backend, err := openCatalog(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer backend.Close()

	assets, err := catalog.SeedAssets()
	if err != nil {
		return err
	}

	inserted := 0
	for i := range assets {
		a := &assets[i]
		exists, err := backend.Store.ExistsByNameOrURL(ctx, a.Name, a.ImageURL)
		if err != nil {
			return err
		}
		if exists {
			fmt.Printf("  skip   %s (already in catalog)\n", a.Name)
			continue
		}
		if err := backend.Store.Insert(ctx, a); err != nil {
			return err
		}
		inserted++
		fmt.Printf("  insert %s (id %d)\n", a.Name, a.ID)
	}

	if inserted > 0 {
		backend.Invalidate(ctx)
	}
	fmt.Printf("\nSeeded %d of %d hairstyles\n", inserted, len(assets))
	return nil
}

func runCatalogSync(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	dryRun := mustGetBool(cmd, "dry-run")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nCancelling sync...")
		cancel()
	}()

	backend, err := openCatalog(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer backend.Close()

	bucket, err := assetsync.NewS3Bucket(&cfg.Storage)
	if err != nil {
		return err
	}

	provider, err := newProvider(ctx, cfg, resolveProviderName(mustGetString(cmd, "provider"), cfg))
	if err != nil {
		return err
	}
	if provider == nil && !dryRun {
		fmt.Println("No AI provider configured; imported hairstyles get generic metadata.")
	}

	fmt.Printf("Syncing bucket %q...\n", cfg.Storage.Bucket)

	result, err := assetsync.New(bucket, backend.Store, provider).Run(ctx, assetsync.Options{
		DryRun:       dryRun,
		Concurrency:  mustGetInt(cmd, "concurrency"),
		ShowProgress: true,
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Println()

	if dryRun {
		for _, item := range result.Items {
			if item.Status == assetsync.StatusPlanned {
				fmt.Printf("  would import %s as %q (%s)\n", item.Key, item.Asset.Name, item.Asset.Gender)
			}
		}
	}
	for _, item := range result.Items {
		if item.DuplicateOf != "" {
			fmt.Printf("  duplicate: %s matches %s\n", item.Key, item.DuplicateOf)
		}
	}
	for _, err := range result.Errors() {
		fmt.Printf("  error: %v\n", err)
	}

	if result.Inserted > 0 {
		backend.Invalidate(ctx)
	}

	fmt.Printf("\nInserted: %d  Skipped: %d  Failed: %d", result.Inserted, result.Skipped, result.Failed)
	if dryRun {
		fmt.Printf("  Planned: %d", result.Planned)
	}
	fmt.Println()
	printUsage(provider)
	return nil
}
