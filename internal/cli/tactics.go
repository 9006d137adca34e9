package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iffystrayer/AITM-sub002/internal/attack"
)

var tacticsCmd = &cobra.Command{
	Use:   "tactics",
	Short: "List tactics in kill-chain order",
	Long: `List the catalog's tactics in kill-chain order with technique counts.

Tactics on the progression backbone are ordered from initial-access through
impact; tactics outside the backbone are listed after it.

Examples:
  # List tactics
  attackmap tactics

  # Human-readable listing
  attackmap tactics --verbose`,
	RunE: runTactics,
}

func runTactics(cmd *cobra.Command, args []string) error {
	snap, err := currentSnapshot()
	if err != nil {
		return err
	}

	output, err := attack.FormatTactics(snap.Store, getFormat())
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Println(output)
	return nil
}
