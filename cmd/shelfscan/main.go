// shelfscan is a barcode-driven library cataloging tool: scan book
// barcodes, enrich their metadata from external services, track loans,
// and print Code 128 library cards.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shelfscan/internal/catalog"
	"shelfscan/internal/config"
	"shelfscan/internal/keywords"
	"shelfscan/internal/lookup"
	"shelfscan/internal/pipeline"
	"shelfscan/internal/store"
)

var (
	// Global flags
	cfgPath string
	dbPath  string
	verbose bool

	// Built in PersistentPreRunE
	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shelfscan",
	Short: "shelfscan - scan book barcodes into a local library database",
	Long: `shelfscan catalogs books from their barcodes.

A scanned code is resolved to an ISBN through EANSearch, enriched with
metadata from Open Library, Google Books, and UPCitemdb, and stored in
a local SQLite database together with loan records. Library cards with
Code 128 barcodes can be printed for registered patrons.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DatabasePath = dbPath
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "override database path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	return store.Open(cfg.DatabasePath, logger.Named("store"))
}

// buildServices assembles the enrichment pipeline in configured order.
func buildServices() []lookup.Service {
	timeout := cfg.Lookup.Timeout
	var services []lookup.Service
	for _, name := range cfg.Lookup.Pipeline {
		switch name {
		case "openlibrary":
			services = append(services, lookup.NewOpenLibrary(cfg.Lookup.OpenLibrary.BaseURL, timeout))
		case "googlebooks":
			services = append(services, lookup.NewGoogleBooks(cfg.Lookup.GoogleBooks.BaseURL, timeout))
		case "upcitemdb":
			services = append(services, lookup.NewUPCItemDB(cfg.Lookup.UPCItemDB.BaseURL, timeout))
		default:
			logger.Warn("unknown pipeline service, skipping", zap.String("service", name))
		}
	}
	return services
}

// buildExtractor picks the configured keyword extractor, falling back
// to the offline one when GenAI is not usable.
func buildExtractor(ctx context.Context) keywords.Extractor {
	if cfg.Keywords.Extractor == "genai" {
		ext, err := keywords.NewGenAI(ctx, cfg.Keywords.GenAIAPIKey, cfg.Keywords.GenAIModel)
		if err == nil {
			return ext
		}
		logger.Warn("GenAI extractor unavailable, using frequency extractor", zap.Error(err))
	}
	return keywords.NewFrequency()
}

// newCatalog wires a full catalog service: store, EANSearch resolver,
// and the enrichment pipeline. The caller owns the returned store.
func newCatalog(ctx context.Context) (*catalog.Catalog, *store.Store, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	ean, err := lookup.NewEANSearch(
		cfg.Lookup.EANSearch.BaseURL,
		cfg.Lookup.EANSearch.APIKey,
		cfg.Lookup.Timeout,
		logger.Named("eansearch"),
	)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("%w (set SHELFSCAN_LOOKUP_EANSEARCH_API_KEY)", err)
	}

	pipe := pipeline.New(logger.Named("pipeline"), buildExtractor(ctx), cfg.Keywords.Max, buildServices()...)
	return catalog.New(st, ean, pipe, logger.Named("catalog")), st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// commandContext returns a context bounded only by the command's own
// lifetime; long batches still honor Ctrl-C via cobra's context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// reasonableBatchTimeout bounds a one-shot batch so a hung upstream
// cannot wedge the command forever.
func reasonableBatchTimeout(n int) time.Duration {
	d := time.Duration(n) * 30 * time.Second
	if d < time.Minute {
		d = time.Minute
	}
	return d
}
