package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iffystrayer/AITM-sub002/internal/attack"
)

var validateCmd = &cobra.Command{
	Use:   "validate [technique-id]",
	Short: "Validate the loaded catalog",
	Long: `Validate catalog records against the schema requirements.

Checks required fields, tactic coverage, platform data, and mitigation
references. Exits non-zero when any record has errors.

Examples:
  # Validate the whole catalog
  attackmap validate

  # Validate a specific technique
  attackmap validate T1190`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	snap, err := currentSnapshot()
	if err != nil {
		return err
	}

	var results []attack.ValidationResult
	if len(args) > 0 {
		id := args[0]
		t, ok := snap.Store.Technique(id)
		if !ok {
			return fmt.Errorf("technique not found: %s", id)
		}
		results = []attack.ValidationResult{
			attack.ValidateTechnique(*t, snap.Catalog.MitigationNames),
		}
	} else {
		results = attack.ValidateCatalog(snap.Catalog)
	}

	output, err := attack.FormatValidation(results, getFormat())
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Println(output)

	if errCount, _ := attack.CountIssues(results); errCount > 0 {
		os.Exit(1)
	}
	return nil
}
