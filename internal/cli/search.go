package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iffystrayer/AITM-sub002/internal/attack"
)

// defaultSearchLimit caps search output when --limit is not given
const defaultSearchLimit = 10

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search techniques by name, tactic, or description",
	Long: `Search the loaded catalog for techniques matching a free-text query.

Matches technique names, tactic names, and descriptions, ranked by relevance.
Agent output is trimmed to a token budget; use --verbose for human-readable
detailed output.

Examples:
  # Search by technique name
  attackmap search "process injection"

  # Search by theme and limit results
  attackmap search credential dumping --limit 5

  # Human-readable results
  attackmap search phishing --verbose`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0,
		"Maximum number of techniques to return (default: 10)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	snap, err := currentSnapshot()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	scored := snap.Index.Search(query)

	limit := searchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	resp := attack.BuildTechniqueResponse(scored, snap.Store, cfg.Attackmap.Response.TokenBudget)
	output, err := attack.FormatSearchResults(resp, getFormat())
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Println(output)
	return nil
}
