package attack

import "time"

// Technique represents a single adversary behavior from the catalog
type Technique struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`

	// Tactics holds the attack stages this technique serves (a technique
	// may belong to more than one)
	Tactics []string `yaml:"tactics" json:"tactics"`

	// Platforms this technique applies to (e.g. Linux, Windows, Containers)
	Platforms []string `yaml:"platforms,omitempty" json:"platforms,omitempty"`

	// Mitigations lists the identifiers of mitigations that counter
	// this technique
	Mitigations []string `yaml:"mitigations,omitempty" json:"mitigations,omitempty"`
}

// Tactic represents a named stage of an attack progression
type Tactic struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	ShortName   string `yaml:"short_name" json:"short_name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Mitigation pairs a mitigation identifier with its display name
type Mitigation struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Catalog is the normalized technique/tactic/mitigation dataset produced by
// one loader run. It is the unit that round-trips through the local cache.
type Catalog struct {
	Version    string      `yaml:"version,omitempty" json:"version,omitempty"`
	Techniques []Technique `yaml:"techniques" json:"techniques"`
	Tactics    []Tactic    `yaml:"tactics" json:"tactics"`

	// MitigationNames maps mitigation ID to its display name
	MitigationNames map[string]string `yaml:"mitigation_names,omitempty" json:"mitigation_names,omitempty"`
}

// Snapshot is one immutable, fully-loaded catalog plus its derived lookup
// structures. Query operations never mutate it, so any number of readers may
// share one snapshot without locking.
type Snapshot struct {
	Catalog Catalog
	Store   *Store
	Index   *Index

	// Source names the loader tier that produced this snapshot
	// ("primary", "cache", or "embedded")
	Source string

	// SkippedRecords counts malformed catalog entries dropped during parsing
	SkippedRecords int

	LoadedAt time.Time
}

// Exposure values for entry points.
const (
	ExposureInternal = "internal"
	ExposureExternal = "external"
)

// Criticality values for assets, lowest to highest.
const (
	CriticalityLow      = "low"
	CriticalityMedium   = "medium"
	CriticalityHigh     = "high"
	CriticalityCritical = "critical"
)

// Component describes one piece of a system under analysis. Supplied by the
// caller; this package only reads it.
type Component struct {
	Name         string   `yaml:"name" json:"name"`
	Type         string   `yaml:"type" json:"type"`
	Technologies []string `yaml:"technologies,omitempty" json:"technologies,omitempty"`
}

// EntryPoint describes a way into the system under analysis
type EntryPoint struct {
	Name         string `yaml:"name" json:"name"`
	Type         string `yaml:"type" json:"type"`
	Exposure     string `yaml:"exposure" json:"exposure"`
	AuthRequired bool   `yaml:"auth_required" json:"auth_required"`
}

// CriticalAsset describes a target worth protecting
type CriticalAsset struct {
	Name        string `yaml:"name" json:"name"`
	Criticality string `yaml:"criticality" json:"criticality"`
}

// ScoredTechnique pairs a technique with its relevance to some context.
// Produced transiently by search and mapping; never persisted.
type ScoredTechnique struct {
	Technique *Technique `json:"technique"`
	Score     float64    `json:"score"`
}

// Likelihood values for attack paths.
const (
	LikelihoodLow    = "low"
	LikelihoodMedium = "medium"
	LikelihoodHigh   = "high"
)

// AttackStep is a single stage of an attack path
type AttackStep struct {
	Step            int    `json:"step"`
	TechniqueID     string `json:"technique_id"`
	TechniqueName   string `json:"technique_name"`
	Tactic          string `json:"tactic"`
	TargetComponent string `json:"target_component"`
	Description     string `json:"description"`
}

// AttackPath is an ordered multi-step compromise from an entry point toward a
// target asset. Steps are ordered by Step and never regress in canonical
// tactic order.
type AttackPath struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	EntryPoint string       `json:"entry_point"`
	Steps      []AttackStep `json:"steps"`
	Likelihood string       `json:"likelihood"`
	Impact     string       `json:"impact"`

	// TargetAsset names the critical asset the path's impact was rated
	// against; empty when no assets were supplied
	TargetAsset string `json:"target_asset,omitempty"`
}

// criticalityRank orders asset criticality for comparisons; unknown values
// rank lowest.
func criticalityRank(c string) int {
	switch c {
	case CriticalityCritical:
		return 4
	case CriticalityHigh:
		return 3
	case CriticalityMedium:
		return 2
	case CriticalityLow:
		return 1
	default:
		return 0
	}
}
