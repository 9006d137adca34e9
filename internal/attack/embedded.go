package attack

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// The embedded catalog is the loader's last-resort tier: a curated core of
// enterprise techniques compiled into the binary so every command works with
// no network and no cache.
//
//go:embed dataset/enterprise-core.yaml
var embeddedRaw []byte

// EmbeddedCatalog parses the compiled-in dataset. Unlike the remote and cache
// tiers a failure here is fatal, since it means the binary itself is broken.
func EmbeddedCatalog() (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(embeddedRaw, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("parse embedded dataset: %w", err)
	}
	if len(catalog.Techniques) == 0 {
		return Catalog{}, fmt.Errorf("embedded dataset contains no techniques")
	}
	return catalog, nil
}
