package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/iffystrayer/AITM-sub002/internal/attack"
)

// SystemFile is the YAML shape of a system description input file.
// This mirrors cli.SystemDescription but is defined here to avoid import cycles
type SystemFile struct {
	Name        string                 `yaml:"name"`
	Components  []attack.Component     `yaml:"components"`
	EntryPoints []attack.EntryPoint    `yaml:"entry_points"`
	Assets      []attack.CriticalAsset `yaml:"critical_assets"`
}

// DefaultSystem returns a small web shop description used across CLI tests
func DefaultSystem() SystemFile {
	return SystemFile{
		Name: "webshop",
		Components: []attack.Component{
			{Name: "storefront", Type: "web", Technologies: []string{"nginx", "react"}},
			{Name: "orders-api", Type: "api", Technologies: []string{"go", "rest"}},
			{Name: "orders-db", Type: "database", Technologies: []string{"postgresql", "linux"}},
		},
		EntryPoints: []attack.EntryPoint{
			{Name: "public-site", Type: "web", Exposure: "external", AuthRequired: false},
			{Name: "admin-portal", Type: "web", Exposure: "external", AuthRequired: true},
		},
		Assets: []attack.CriticalAsset{
			{Name: "orders-db", Criticality: "critical"},
		},
	}
}

// WriteSystemFile writes a system description to a temporary directory and
// returns the file path
func WriteSystemFile(tb testing.TB, sys SystemFile) string {
	tb.Helper()

	data, err := yaml.Marshal(&sys)
	if err != nil {
		tb.Fatalf("Failed to marshal system file: %v", err)
	}

	path := filepath.Join(tb.TempDir(), "system.yaml")
	// #nosec G306 -- Test files don't need restrictive permissions
	if err := os.WriteFile(path, data, 0644); err != nil {
		tb.Fatalf("Failed to write system file: %v", err)
	}
	return path
}
