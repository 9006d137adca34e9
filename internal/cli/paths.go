package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iffystrayer/AITM-sub002/internal/attack"
)

var (
	pathsSystemFile   string
	pathsPerEntry     int
	pathsMaxLength    int
	pathsMinStepScore float64
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Generate attack paths through a described system",
	Long: `Generate multi-step attack paths from each entry point of a described
system, following the tactic progression from initial access toward impact.

Each path starts with a technique relevant to its entry point, advances
through later tactics against the system's components, and is rated for
likelihood and impact. Paths starting from the same entry point vary in
their first step.

Examples:
  # Generate paths for a system
  attackmap paths --system system.yaml

  # More alternatives per entry point, shorter paths
  attackmap paths --system system.yaml --paths-per-entry 5 --max-path-length 3

  # Human-readable paths
  attackmap paths --system system.yaml --verbose`,
	RunE: runPaths,
}

func init() {
	pathsCmd.Flags().StringVarP(&pathsSystemFile, "system", "s", "",
		"Path to system description YAML file")
	pathsCmd.Flags().IntVar(&pathsPerEntry, "paths-per-entry", 0,
		"Number of paths to attempt per entry point (default: 3)")
	pathsCmd.Flags().IntVar(&pathsMaxLength, "max-path-length", 0,
		"Maximum steps per path (default: 5)")
	pathsCmd.Flags().Float64Var(&pathsMinStepScore, "min-step-score", 0,
		"Minimum relevance for a technique to appear as a step (default: 1.0)")
}

func runPaths(cmd *cobra.Command, args []string) error {
	snap, err := currentSnapshot()
	if err != nil {
		return err
	}

	sys, err := loadSystemFile(pathsSystemFile)
	if err != nil {
		return err
	}

	opts := generatorOptions()
	mapper := attack.NewMapper(snap.Store, snap.Index)
	generator := attack.NewGenerator(snap.Store, mapper)

	paths, err := generator.Generate(sys.Assets, sys.EntryPoints, sys.Components, opts)
	if err != nil {
		return fmt.Errorf("failed to generate paths: %w", err)
	}

	resp := attack.BuildPathResponse(paths, cfg.Attackmap.Response.TokenBudget)
	output, err := attack.FormatPaths(resp, getFormat())
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Println(output)
	return nil
}

// generatorOptions merges config defaults with command flags
func generatorOptions() attack.Options {
	opts := attack.Options{
		PathsPerEntry: cfg.Attackmap.Generator.PathsPerEntry,
		MaxPathLength: cfg.Attackmap.Generator.MaxPathLength,
		MinStepScore:  cfg.Attackmap.Generator.MinStepScore,
	}
	if pathsPerEntry > 0 {
		opts.PathsPerEntry = pathsPerEntry
	}
	if pathsMaxLength > 0 {
		opts.MaxPathLength = pathsMaxLength
	}
	if pathsMinStepScore > 0 {
		opts.MinStepScore = pathsMinStepScore
	}
	return opts
}
