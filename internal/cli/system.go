package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iffystrayer/AITM-sub002/internal/attack"
)

// SystemDescription is the YAML input consumed by the map and paths commands.
//
// Example file:
//
//	name: payments
//	components:
//	  - name: storefront
//	    type: web
//	    technologies: [nginx, react]
//	  - name: orders-db
//	    type: database
//	    technologies: [postgresql]
//	entry_points:
//	  - name: public-site
//	    type: web
//	    exposure: external
//	    auth_required: false
//	critical_assets:
//	  - name: orders-db
//	    criticality: critical
type SystemDescription struct {
	Name        string                 `yaml:"name"`
	Components  []attack.Component     `yaml:"components"`
	EntryPoints []attack.EntryPoint    `yaml:"entry_points"`
	Assets      []attack.CriticalAsset `yaml:"critical_assets"`
}

// loadSystemFile reads and parses a system description YAML file
func loadSystemFile(path string) (*SystemDescription, error) {
	if path == "" {
		return nil, fmt.Errorf("no system file given: pass --system <file.yaml>")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system file: %w", err)
	}

	var sys SystemDescription
	if err := yaml.Unmarshal(data, &sys); err != nil {
		return nil, fmt.Errorf("failed to parse system file %s: %w", path, err)
	}
	return &sys, nil
}
