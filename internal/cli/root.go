package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iffystrayer/AITM-sub002/config"
	"github.com/iffystrayer/AITM-sub002/internal/attack"
	"github.com/iffystrayer/AITM-sub002/internal/cache"
)

var (
	// Global flags
	configPath   string
	cacheDir     string
	sourceURL    string
	offline      bool
	outputFormat string
	verbose      bool

	// Shared resources
	cfg          *config.Config
	coordinator  *attack.Coordinator
	catalogCache cache.Store
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "attackmap",
	Short: "MITRE ATT&CK knowledge base and attack path generator",
	Long: `attackmap - Query the MITRE ATT&CK catalog and generate attack paths.

Loads the enterprise ATT&CK catalog from the network, a local cache, or an
embedded dataset, then answers technique queries, maps system components and
entry points to relevant techniques, and generates multi-step attack paths.

Examples:
  # Search the catalog
  attackmap search "sql injection"

  # Show one technique with its mitigations
  attackmap technique T1190

  # List the tactic progression
  attackmap tactics

  # Map a system description to relevant techniques
  attackmap map --system system.yaml

  # Generate attack paths through a system
  attackmap paths --system system.yaml --max-path-length 4

  # Validate the loaded catalog
  attackmap validate`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		return initSnapshot(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if catalogCache != nil {
			_ = catalogCache.Close()
		}
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "",
		"Directory for the catalog file cache (overrides config)")
	rootCmd.PersistentFlags().StringVar(&sourceURL, "source-url", "",
		"Catalog source URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false,
		"Skip the network source and rely on cache or embedded data")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json",
		"Output format: json or text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Human-readable verbose output")

	// Add subcommands
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(techniqueCmd)
	rootCmd.AddCommand(tacticsCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// initSnapshot builds the shared coordinator and loads a catalog snapshot
func initSnapshot(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	applyFlagOverrides(cfg)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Attackmap.Logging.SlogLevel(),
	}))
	slog.SetDefault(logger)

	store, err := newCacheStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open catalog cache: %w", err)
	}
	catalogCache = store

	fetcher := attack.NewHTTPFetcher(cfg.Attackmap.Catalog.SourceURL, cfg.Attackmap.Catalog.FetchTimeout)
	loader := attack.NewLoader(attack.LoaderConfig{
		Fetcher: fetcher,
		Cache:   store,
		Logger:  logger,
		Offline: cfg.Attackmap.Catalog.Offline,
	})
	coordinator = attack.NewCoordinator(loader, logger)

	if _, err := coordinator.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	return nil
}

// applyFlagOverrides lets global flags win over config file values
func applyFlagOverrides(cfg *config.Config) {
	if sourceURL != "" {
		cfg.Attackmap.Catalog.SourceURL = sourceURL
	}
	if offline {
		cfg.Attackmap.Catalog.Offline = true
	}
	if cacheDir != "" {
		cfg.Attackmap.Cache.Backend = "file"
		cfg.Attackmap.Cache.File.Path = filepath.Join(cacheDir, "enterprise-attack.json")
	}
}

// newCacheStore builds the configured cache backend
func newCacheStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Attackmap.Cache.Backend {
	case "", "none":
		return cache.Nop{}, nil
	case "file":
		return cache.NewFileStore(cfg.Attackmap.Cache.File.Path)
	case "redis":
		rc := cfg.Attackmap.Cache.Redis
		return cache.NewRedisStore(cache.RedisConfig{
			Addr:      rc.Addr,
			Password:  rc.Password,
			DB:        rc.DB,
			KeyPrefix: rc.KeyPrefix,
			TTL:       rc.TTL,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cfg.Attackmap.Cache.Backend)
	}
}

// currentSnapshot returns the loaded catalog snapshot
func currentSnapshot() (*attack.Snapshot, error) {
	if coordinator == nil {
		return nil, attack.ErrNotInitialized
	}
	return coordinator.Snapshot()
}

// getFormat returns the output format based on flags
func getFormat() attack.OutputFormat {
	if outputFormat == "text" || verbose {
		return attack.FormatText
	}
	return attack.FormatJSON
}
