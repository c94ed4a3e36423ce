package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/style-genie/internal/config"
	"github.com/kozaktomas/style-genie/internal/constants"
	"github.com/kozaktomas/style-genie/internal/log"
	"github.com/kozaktomas/style-genie/internal/overlay"
	"github.com/kozaktomas/style-genie/internal/recommend"
	"github.com/kozaktomas/style-genie/internal/session"
	"github.com/kozaktomas/style-genie/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the StyleGenie HTTP API.
The API accepts a photo with its face landmarks, returns hairstyle
recommendations and renders try-on previews.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (default WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().String("provider", "", "AI provider: gemini, openai, ollama or none (default AI_PROVIDER)")
	serveCmd.Flags().String("assets-dir", "", "Serve hairstyle images referenced by relative path from this directory")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := openCatalog(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer backend.Close()

	provider, err := newProvider(ctx, cfg, resolveProviderName(mustGetString(cmd, "provider"), cfg))
	if err != nil {
		return err
	}
	if provider == nil {
		log.Warn(nil, "No AI provider configured, recommendations use the catalog only")
	} else {
		log.Info(log.Fields{"provider": provider.Name()}, "AI stylist enabled")
	}

	selector := recommend.NewSelector(provider, backend.Reader, recommend.Options{
		ExcerptLimit:  cfg.Pipeline.ExcerptLimit,
		OracleTimeout: cfg.Pipeline.OracleTimeout,
		StoreTimeout:  cfg.Pipeline.StoreTimeout,
	})

	loader := &overlay.SourceLoader{HTTP: overlay.NewHTTPLoader(&http.Client{Timeout: 15 * time.Second})}
	if dir := mustGetString(cmd, "assets-dir"); dir != "" {
		loader.Files = &overlay.FileLoader{Root: dir}
	}

	server := web.NewServer(cfg, web.Deps{
		Recommender: selector,
		Catalog:     backend.Reader,
		Loader:      loader,
		Sessions:    session.NewTracker(constants.SessionTTL, constants.SessionCleanupInterval),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
		printUsage(provider)
	}()

	fmt.Printf("Starting StyleGenie API on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
