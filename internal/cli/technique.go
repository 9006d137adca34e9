package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iffystrayer/AITM-sub002/internal/attack"
)

var techniqueCmd = &cobra.Command{
	Use:   "technique <technique-id>",
	Short: "Show a specific technique by ID",
	Long: `Show a single technique with its tactics, platforms, and mitigations.

Examples:
  # Show a technique
  attackmap technique T1190

  # Human-readable detail
  attackmap technique T1059 --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runTechnique,
}

func runTechnique(cmd *cobra.Command, args []string) error {
	snap, err := currentSnapshot()
	if err != nil {
		return err
	}

	id := args[0]
	t, ok := snap.Store.Technique(id)
	if !ok {
		return fmt.Errorf("technique not found: %s", id)
	}

	output, err := attack.FormatTechniqueDetail(t, snap.Store, getFormat())
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Println(output)
	return nil
}
