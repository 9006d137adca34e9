package attack

import (
	"sort"
	"strings"
)

// Store provides fast lookups over one loaded catalog. It is built once by
// NewStore and never mutated afterwards, so readers share it without locking;
// catalog refreshes build a new Store rather than touching this one.
type Store struct {
	techniques []Technique
	tactics    []Tactic

	byID         map[string]*Technique
	byTactic     map[string][]*Technique
	byPlatform   map[string][]*Technique
	byMitigation map[string][]*Technique

	mitigationNames map[string]string
}

// NewStore builds the lookup structures from a catalog. Input slices are
// copied; later changes to the catalog do not affect the store.
func NewStore(c Catalog) *Store {
	s := &Store{
		techniques:      make([]Technique, len(c.Techniques)),
		byID:            make(map[string]*Technique, len(c.Techniques)),
		byTactic:        make(map[string][]*Technique),
		byPlatform:      make(map[string][]*Technique),
		byMitigation:    make(map[string][]*Technique),
		mitigationNames: make(map[string]string, len(c.MitigationNames)),
	}

	copy(s.techniques, c.Techniques)
	sort.Slice(s.techniques, func(i, j int) bool {
		return s.techniques[i].ID < s.techniques[j].ID
	})

	for i := range s.techniques {
		t := &s.techniques[i]
		s.byID[t.ID] = t
		for _, tactic := range t.Tactics {
			key := NormalizeTactic(tactic)
			s.byTactic[key] = append(s.byTactic[key], t)
		}
		for _, platform := range t.Platforms {
			key := strings.ToLower(platform)
			s.byPlatform[key] = append(s.byPlatform[key], t)
		}
		for _, mit := range t.Mitigations {
			s.byMitigation[mit] = append(s.byMitigation[mit], t)
		}
	}

	for id, name := range c.MitigationNames {
		s.mitigationNames[id] = name
	}

	s.tactics = sortTactics(c.Tactics)
	return s
}

// sortTactics orders tactics by canonical progression, with stages outside
// the progression after it, alphabetically by short name. Duplicate short
// names keep the first occurrence.
func sortTactics(tactics []Tactic) []Tactic {
	seen := make(map[string]bool, len(tactics))
	out := make([]Tactic, 0, len(tactics))
	for _, t := range tactics {
		key := NormalizeTactic(t.ShortName)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		t.ShortName = key
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		ri, rj := TacticRank(out[i].ShortName), TacticRank(out[j].ShortName)
		onBackboneI, onBackboneJ := ri >= 0, rj >= 0
		if onBackboneI != onBackboneJ {
			return onBackboneI
		}
		if onBackboneI && ri != rj {
			return ri < rj
		}
		return out[i].ShortName < out[j].ShortName
	})
	return out
}

// Technique returns the technique with the given identifier.
func (s *Store) Technique(id string) (*Technique, bool) {
	t, ok := s.byID[strings.ToUpper(strings.TrimSpace(id))]
	return t, ok
}

// Techniques returns all techniques ordered by identifier.
func (s *Store) Techniques() []*Technique {
	out := make([]*Technique, len(s.techniques))
	for i := range s.techniques {
		out[i] = &s.techniques[i]
	}
	return out
}

// TechniquesByTactic returns the techniques that serve the given tactic,
// ordered by identifier. The result is never nil.
func (s *Store) TechniquesByTactic(tactic string) []*Technique {
	return copyTechniques(s.byTactic[NormalizeTactic(tactic)])
}

// TechniquesByPlatform returns the techniques applicable to a platform,
// ordered by identifier. The result is never nil.
func (s *Store) TechniquesByPlatform(platform string) []*Technique {
	return copyTechniques(s.byPlatform[strings.ToLower(strings.TrimSpace(platform))])
}

// TechniquesForMitigation returns the techniques a mitigation counters,
// ordered by identifier. The result is never nil.
func (s *Store) TechniquesForMitigation(mitigationID string) []*Technique {
	return copyTechniques(s.byMitigation[strings.ToUpper(strings.TrimSpace(mitigationID))])
}

// MitigationsForTechnique returns the sorted mitigation identifiers linked
// to a technique. The result is never nil.
func (s *Store) MitigationsForTechnique(techniqueID string) []string {
	out := []string{}
	t, ok := s.Technique(techniqueID)
	if !ok {
		return out
	}
	out = append(out, t.Mitigations...)
	sort.Strings(out)
	return out
}

// MitigationName returns the display name for a mitigation identifier, or
// the empty string when unknown.
func (s *Store) MitigationName(id string) string {
	return s.mitigationNames[strings.ToUpper(strings.TrimSpace(id))]
}

// Tactics returns the catalog's tactics in canonical progression order.
func (s *Store) Tactics() []Tactic {
	out := make([]Tactic, len(s.tactics))
	copy(out, s.tactics)
	return out
}

// Len returns the number of techniques in the store.
func (s *Store) Len() int {
	return len(s.techniques)
}

// copyTechniques returns a caller-owned, never-nil copy of a postings slice.
// Postings are built in ID order, so the copy keeps that order.
func copyTechniques(in []*Technique) []*Technique {
	out := make([]*Technique, len(in))
	copy(out, in)
	return out
}
