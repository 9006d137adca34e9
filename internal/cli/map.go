package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iffystrayer/AITM-sub002/internal/attack"
)

var (
	mapSystemFile string
	mapLimit      int
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Map a system description to relevant techniques",
	Long: `Map the components and entry points of a described system to the catalog
techniques most relevant to each, ranked by relevance.

The system description is a YAML file listing components (name, type,
technologies), entry points (name, type, exposure, auth_required), and
critical assets (name, criticality).

Examples:
  # Map a system description
  attackmap map --system system.yaml

  # Keep only the top 5 techniques per component
  attackmap map --system system.yaml --limit 5

  # Human-readable mapping
  attackmap map --system system.yaml --verbose`,
	RunE: runMap,
}

func init() {
	mapCmd.Flags().StringVarP(&mapSystemFile, "system", "s", "",
		"Path to system description YAML file")
	mapCmd.Flags().IntVar(&mapLimit, "limit", 0,
		"Maximum techniques per component (default: 10)")
}

func runMap(cmd *cobra.Command, args []string) error {
	snap, err := currentSnapshot()
	if err != nil {
		return err
	}

	sys, err := loadSystemFile(mapSystemFile)
	if err != nil {
		return err
	}

	mapper := attack.NewMapper(snap.Store, snap.Index)

	components, err := mapper.ScoreComponents(sys.Components, mapLimit)
	if err != nil {
		return fmt.Errorf("failed to map components: %w", err)
	}
	entryPoints := mapper.ScoreEntryPoints(sys.EntryPoints)

	output, err := attack.FormatSystemMapping(attack.SystemMapping{
		Components:  components,
		EntryPoints: entryPoints,
	}, getFormat())
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Println(output)
	return nil
}
