package attack

import (
	"fmt"
	"strings"
)

// DefaultComponentLimit bounds ScoreComponent results when the caller passes
// a zero limit.
const DefaultComponentLimit = 10

// componentRoute maps a family of component-type keywords to the query used
// to pull that family's candidate techniques from the index.
type componentRoute struct {
	name     string
	keywords []string
	query    string
}

// componentRoutes routes a component's declared type onto a technique
// family. First matching route wins; unmatched types fall back to a generic
// candidate set.
var componentRoutes = []componentRoute{
	{
		name:     "web",
		keywords: []string{"web", "webapp", "website", "application", "frontend", "ui", "cms", "portal"},
		query:    "web application exploit public facing injection server software",
	},
	{
		name:     "database",
		keywords: []string{"database", "db", "datastore", "storage", "cache", "warehouse"},
		query:    "database repositories records data store query information",
	},
	{
		name:     "api",
		keywords: []string{"api", "rest", "graphql", "grpc", "service", "microservice", "endpoint", "backend"},
		query:    "api exposed remote services application exploit facing",
	},
	{
		name:     "host",
		keywords: []string{"server", "host", "vm", "machine", "compute", "workstation", "desktop", "container"},
		query:    "operating system services execution privilege escalation scheduled local",
	},
	{
		name:     "network",
		keywords: []string{"network", "gateway", "router", "firewall", "proxy", "loadbalancer", "vpn", "dns"},
		query:    "network service remote protocol denial scanning infrastructure",
	},
}

// platformHints infers OS/runtime platforms from technology keywords, used
// for the low-weight platform overlap term.
var platformHints = map[string]string{
	"linux": "linux", "ubuntu": "linux", "debian": "linux", "centos": "linux",
	"rhel": "linux", "alpine": "linux", "unix": "linux",
	"windows": "windows", "iis": "windows", "dotnet": "windows", "net": "windows",
	"mssql": "windows", "exchange": "windows", "activedirectory": "windows",
	"macos": "macos", "osx": "macos", "darwin": "macos",
	"docker": "containers", "kubernetes": "containers", "k8s": "containers",
	"container": "containers", "containerd": "containers",
	"aws": "iaas", "azure": "iaas", "gcp": "iaas", "ec2": "iaas",
	"terraform": "iaas", "cloud": "iaas",
	"saas": "saas", "salesforce": "saas", "o365": "saas", "workspace": "saas",
}

// Mapper scores techniques against caller-supplied component and entry-point
// descriptors. Built per snapshot over that snapshot's store and index.
type Mapper struct {
	store *Store
	index *Index
}

func NewMapper(store *Store, index *Index) *Mapper {
	return &Mapper{store: store, index: index}
}

// routeForType finds the route whose keywords match the component type.
// Matching is case-insensitive over the tokenized type string.
func routeForType(componentType string) *componentRoute {
	tokens := Tokenize(componentType)
	if len(tokens) == 0 {
		return nil
	}
	for i := range componentRoutes {
		route := &componentRoutes[i]
		for _, kw := range route.keywords {
			for _, tok := range tokens {
				if tok == kw {
					return route
				}
			}
		}
	}
	return nil
}

// ScoreComponent ranks techniques by how strongly they apply to a component.
// The score combines a type-match term (dominant), technology keyword
// overlap with the technique's text (medium), and platform overlap inferred
// from the technologies (low). A limit of zero means DefaultComponentLimit;
// a negative limit is a contract violation. Unknown types and empty
// technology lists degrade to a generic candidate set, never an error.
func (m *Mapper) ScoreComponent(c Component, limit int) ([]ScoredTechnique, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative component limit %d", ErrInvalidQuery, limit)
	}
	if limit == 0 {
		limit = DefaultComponentLimit
	}

	// Candidate pool: techniques from the type route (these carry the type
	// weight) plus techniques surfaced by the technologies themselves.
	typed := make(map[string]*Technique)
	pool := make(map[string]*Technique)

	route := routeForType(c.Type)
	if route != nil {
		for _, hit := range m.index.Search(route.query) {
			typed[hit.Technique.ID] = hit.Technique
			pool[hit.Technique.ID] = hit.Technique
		}
	} else {
		// Generic fallback keeps unknown component types useful.
		for _, t := range m.store.TechniquesByTactic(TacticInitialAccess) {
			pool[t.ID] = t
		}
		for _, t := range m.store.TechniquesByTactic(TacticDiscovery) {
			pool[t.ID] = t
		}
	}

	techTokens := []string{}
	for _, tech := range c.Technologies {
		techTokens = append(techTokens, Tokenize(tech)...)
	}
	if len(techTokens) > 0 {
		for _, hit := range m.index.Search(strings.Join(techTokens, " ")) {
			pool[hit.Technique.ID] = hit.Technique
		}
	}

	platforms := inferPlatforms(c.Technologies)

	// An unrouted type with no usable technology tokens has nothing to score
	// on; the generic pool then survives on a uniform floor instead of being
	// filtered to nothing.
	floor := route == nil && len(techTokens) == 0

	results := []ScoredTechnique{}
	for id, t := range pool {
		score := 0.0
		if _, ok := typed[id]; ok {
			score += weightTypeMatch
		}
		if len(techTokens) > 0 {
			text := tokenSet(t.Name + " " + t.Description)
			score += weightTechOverlap * float64(overlapCount(techTokens, text))
		}
		for _, p := range t.Platforms {
			if platforms[strings.ToLower(p)] {
				score += weightPlatform
			}
		}
		if score <= 0 {
			if !floor {
				continue
			}
			score = weightGenericFloor
		}
		results = append(results, ScoredTechnique{Technique: t, Score: score})
	}

	sortScored(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ScoreEntryPoint ranks techniques for a way into the system. Candidates are
// the catalog's initial-access techniques plus any surfaced by the entry
// point's type and name. External exposure outranks internal, and an entry
// point without authentication outranks the same entry point with it.
func (m *Mapper) ScoreEntryPoint(e EntryPoint) []ScoredTechnique {
	initial := make(map[string]*Technique)
	pool := make(map[string]*Technique)
	for _, t := range m.store.TechniquesByTactic(TacticInitialAccess) {
		initial[t.ID] = t
		pool[t.ID] = t
	}

	typed := make(map[string]*Technique)
	if query := strings.TrimSpace(e.Type + " " + e.Name); query != "" {
		for _, hit := range m.index.Search(query) {
			typed[hit.Technique.ID] = hit.Technique
			pool[hit.Technique.ID] = hit.Technique
		}
	}

	exposure := weightExposureInternal
	if e.Exposure == ExposureExternal {
		exposure = weightExposureExternal
	}

	results := []ScoredTechnique{}
	for id, t := range pool {
		score := exposure
		if _, ok := initial[id]; ok {
			score += weightInitialAccess
		}
		if _, ok := typed[id]; ok {
			score += weightTypeMatch
		}
		if !e.AuthRequired {
			score += weightNoAuth
		}
		results = append(results, ScoredTechnique{Technique: t, Score: score})
	}

	sortScored(results)
	return results
}

// ScoreComponents is the batch form of ScoreComponent, keyed by component
// name. A duplicate name keeps the last component's results.
func (m *Mapper) ScoreComponents(components []Component, limit int) (map[string][]ScoredTechnique, error) {
	out := make(map[string][]ScoredTechnique, len(components))
	for _, c := range components {
		scored, err := m.ScoreComponent(c, limit)
		if err != nil {
			return nil, err
		}
		out[c.Name] = scored
	}
	return out, nil
}

// ScoreEntryPoints is the batch form of ScoreEntryPoint, keyed by entry
// point name.
func (m *Mapper) ScoreEntryPoints(entries []EntryPoint) map[string][]ScoredTechnique {
	out := make(map[string][]ScoredTechnique, len(entries))
	for _, e := range entries {
		out[e.Name] = m.ScoreEntryPoint(e)
	}
	return out
}

// inferPlatforms maps technology keywords onto catalog platform names.
func inferPlatforms(technologies []string) map[string]bool {
	out := make(map[string]bool)
	for _, tech := range technologies {
		for _, tok := range Tokenize(tech) {
			if p, ok := platformHints[tok]; ok {
				out[p] = true
			}
		}
	}
	return out
}
