package attack

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// stixBundle is the envelope of an ATT&CK STIX 2.x bundle. Objects stay raw
// so one malformed entry cannot fail the whole document.
type stixBundle struct {
	Type    string            `json:"type"`
	Objects []json.RawMessage `json:"objects"`
}

// stixEnvelope carries the fields needed to route an object on first pass.
type stixEnvelope struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Revoked    bool   `json:"revoked"`
	Deprecated bool   `json:"x_mitre_deprecated"`
}

type stixExternalRef struct {
	SourceName string `json:"source_name"`
	ExternalID string `json:"external_id"`
}

type stixAttackPattern struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	ExternalRefs    []stixExternalRef `json:"external_references"`
	KillChainPhases []struct {
		PhaseName string `json:"phase_name"`
	} `json:"kill_chain_phases"`
	Platforms []string `json:"x_mitre_platforms"`
}

type stixTactic struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	ShortName    string            `json:"x_mitre_shortname"`
	ExternalRefs []stixExternalRef `json:"external_references"`
}

type stixCourseOfAction struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ExternalRefs []stixExternalRef `json:"external_references"`
}

type stixRelationship struct {
	RelationshipType string `json:"relationship_type"`
	SourceRef        string `json:"source_ref"`
	TargetRef        string `json:"target_ref"`
}

// mitreExternalID pulls the human-readable ATT&CK identifier (T1190, M1050,
// TA0001) out of an object's external references.
func mitreExternalID(refs []stixExternalRef) string {
	for _, r := range refs {
		if strings.EqualFold(r.SourceName, "mitre-attack") && r.ExternalID != "" {
			return r.ExternalID
		}
	}
	return ""
}

// ParseSTIXBundle normalizes an ATT&CK STIX bundle into a Catalog. Individual
// malformed or incomplete records are skipped and counted, never fatal; only
// an unparseable envelope is an error. Revoked and deprecated objects are
// dropped without counting, since they are well-formed but retired.
func ParseSTIXBundle(data []byte) (Catalog, int, error) {
	var bundle stixBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return Catalog{}, 0, fmt.Errorf("parse STIX bundle: %w", err)
	}
	if bundle.Type != "bundle" && bundle.Type != "" {
		return Catalog{}, 0, fmt.Errorf("parse STIX bundle: unexpected document type %q", bundle.Type)
	}

	catalog := Catalog{MitigationNames: make(map[string]string)}
	skipped := 0

	// STIX internal id -> ATT&CK id, for resolving relationship endpoints.
	techByStixID := make(map[string]string)
	mitByStixID := make(map[string]string)
	seenTechnique := make(map[string]bool)

	var mitigates []stixRelationship

	for _, raw := range bundle.Objects {
		var env stixEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			skipped++
			continue
		}
		if env.Revoked || env.Deprecated {
			continue
		}

		switch env.Type {
		case "attack-pattern":
			var ap stixAttackPattern
			if err := json.Unmarshal(raw, &ap); err != nil {
				skipped++
				continue
			}
			id := mitreExternalID(ap.ExternalRefs)
			if id == "" || ap.Name == "" || len(ap.KillChainPhases) == 0 {
				skipped++
				continue
			}
			if seenTechnique[id] {
				skipped++
				continue
			}
			seenTechnique[id] = true

			tactics := make([]string, 0, len(ap.KillChainPhases))
			for _, phase := range ap.KillChainPhases {
				if phase.PhaseName != "" {
					tactics = append(tactics, NormalizeTactic(phase.PhaseName))
				}
			}
			if len(tactics) == 0 {
				skipped++
				continue
			}

			catalog.Techniques = append(catalog.Techniques, Technique{
				ID:          id,
				Name:        ap.Name,
				Description: ap.Description,
				Tactics:     tactics,
				Platforms:   ap.Platforms,
			})
			techByStixID[ap.ID] = id

		case "x-mitre-tactic":
			var tac stixTactic
			if err := json.Unmarshal(raw, &tac); err != nil {
				skipped++
				continue
			}
			if tac.Name == "" {
				skipped++
				continue
			}
			shortName := tac.ShortName
			if shortName == "" {
				shortName = NormalizeTactic(tac.Name)
			}
			catalog.Tactics = append(catalog.Tactics, Tactic{
				ID:          mitreExternalID(tac.ExternalRefs),
				Name:        tac.Name,
				ShortName:   NormalizeTactic(shortName),
				Description: tac.Description,
			})

		case "course-of-action":
			var coa stixCourseOfAction
			if err := json.Unmarshal(raw, &coa); err != nil {
				skipped++
				continue
			}
			id := mitreExternalID(coa.ExternalRefs)
			if id == "" || coa.Name == "" {
				skipped++
				continue
			}
			catalog.MitigationNames[id] = coa.Name
			mitByStixID[coa.ID] = id

		case "relationship":
			var rel stixRelationship
			if err := json.Unmarshal(raw, &rel); err != nil {
				skipped++
				continue
			}
			if rel.RelationshipType == "mitigates" {
				mitigates = append(mitigates, rel)
			}
			// Other relationship kinds (uses, subtechnique-of) are out of
			// scope for this catalog.
		}
	}

	// Second pass: attach mitigation links now that both endpoints resolve.
	linkedMits := make(map[string][]string)
	for _, rel := range mitigates {
		mitID := mitByStixID[rel.SourceRef]
		techID := techByStixID[rel.TargetRef]
		if mitID == "" || techID == "" {
			continue
		}
		linkedMits[techID] = append(linkedMits[techID], mitID)
	}
	for i := range catalog.Techniques {
		if mits := linkedMits[catalog.Techniques[i].ID]; len(mits) > 0 {
			catalog.Techniques[i].Mitigations = dedupeSorted(mits)
		}
	}

	return catalog, skipped, nil
}

// dedupeSorted returns a sorted copy of the input with duplicates removed.
func dedupeSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
