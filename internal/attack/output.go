package attack

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// OutputFormat specifies the output format
type OutputFormat string

// Output format constants.
const (
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "text"
)

// FormatSearchResults formats a technique response for display
func FormatSearchResults(resp TechniqueResponse, format OutputFormat) (string, error) {
	if format == FormatText {
		return formatSearchText(resp), nil
	}
	return marshalJSON(resp)
}

func formatSearchText(resp TechniqueResponse) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Found %d matching technique(s), showing %d\n", resp.MatchCount, resp.Included))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i, t := range resp.Techniques {
		sb.WriteString(fmt.Sprintf("[%d] %s: %s (relevance %.1f)\n", i+1, t.ID, t.Name, t.Relevance))
		sb.WriteString(fmt.Sprintf("    Tactics: %s\n", strings.Join(t.Tactics, ", ")))
		if len(t.Mitigations) > 0 {
			sb.WriteString(fmt.Sprintf("    Mitigations: %s\n", strings.Join(t.Mitigations, ", ")))
		}
		sb.WriteString("\n")
	}

	if resp.TokenLimitReached {
		sb.WriteString("(truncated to token budget)\n")
	}
	return sb.String()
}

// FormatTechniqueDetail formats a single technique for detailed display,
// resolving mitigation names through the store.
func FormatTechniqueDetail(t *Technique, store *Store, format OutputFormat) (string, error) {
	if format == FormatText {
		return formatTechniqueText(t, store), nil
	}

	detail := struct {
		Technique
		MitigationNames []Mitigation `json:"mitigation_details,omitempty"`
	}{Technique: *t}
	for _, id := range store.MitigationsForTechnique(t.ID) {
		detail.MitigationNames = append(detail.MitigationNames, Mitigation{ID: id, Name: store.MitigationName(id)})
	}
	return marshalJSON(detail)
}

func formatTechniqueText(t *Technique, store *Store) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s\n", t.ID, t.Name))
	tactics := make([]string, len(t.Tactics))
	for i, tactic := range t.Tactics {
		tactics[i] = TacticDisplayName(tactic)
	}
	sb.WriteString(fmt.Sprintf("Tactics: %s\n", strings.Join(tactics, ", ")))
	if len(t.Platforms) > 0 {
		sb.WriteString(fmt.Sprintf("Platforms: %s\n", strings.Join(t.Platforms, ", ")))
	}
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	sb.WriteString("DESCRIPTION\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(strings.TrimSpace(t.Description) + "\n\n")

	mitigations := store.MitigationsForTechnique(t.ID)
	if len(mitigations) > 0 {
		sb.WriteString("MITIGATIONS\n")
		sb.WriteString(strings.Repeat("-", 40) + "\n")
		for _, id := range mitigations {
			name := store.MitigationName(id)
			if name == "" {
				name = id
			}
			sb.WriteString(fmt.Sprintf("[%s] %s\n", id, name))
		}
	}

	return sb.String()
}

// FormatTactics formats the tactic progression with per-tactic technique
// counts.
func FormatTactics(store *Store, format OutputFormat) (string, error) {
	tactics := store.Tactics()

	if format != FormatText {
		type tacticRow struct {
			Tactic
			Techniques int `json:"techniques"`
		}
		rows := make([]tacticRow, 0, len(tactics))
		for _, t := range tactics {
			rows = append(rows, tacticRow{Tactic: t, Techniques: len(store.TechniquesByTactic(t.ShortName))})
		}
		return marshalJSON(rows)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d tactic(s)\n", len(tactics)))
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	for _, t := range tactics {
		marker := " "
		if TacticRank(t.ShortName) >= 0 {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %-12s %-22s %3d technique(s)\n",
			marker, t.ID, t.ShortName, len(store.TechniquesByTactic(t.ShortName))))
	}
	sb.WriteString("\n* = canonical attack progression stage\n")
	return sb.String(), nil
}

// FormatMapping formats batch relevance results keyed by descriptor name.
func FormatMapping(results map[string][]ScoredTechnique, format OutputFormat) (string, error) {
	if format != FormatText {
		return marshalJSON(results)
	}
	return formatMappingText(results), nil
}

func formatMappingText(results map[string][]ScoredTechnique) string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("%s\n", name))
		sb.WriteString(strings.Repeat("-", 40) + "\n")
		for i, st := range results[name] {
			sb.WriteString(fmt.Sprintf("  [%d] %s: %s (%.1f)\n", i+1, st.Technique.ID, st.Technique.Name, st.Score))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SystemMapping pairs component and entry point relevance results for one
// system description.
type SystemMapping struct {
	Components  map[string][]ScoredTechnique `json:"components"`
	EntryPoints map[string][]ScoredTechnique `json:"entry_points"`
}

// FormatSystemMapping formats relevance results for a whole system.
func FormatSystemMapping(m SystemMapping, format OutputFormat) (string, error) {
	if format != FormatText {
		return marshalJSON(m)
	}

	var sb strings.Builder
	sb.WriteString("COMPONENTS\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(formatMappingText(m.Components))
	sb.WriteString("ENTRY POINTS\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(formatMappingText(m.EntryPoints))
	return sb.String(), nil
}

// FormatPaths formats generated attack paths.
func FormatPaths(resp PathResponse, format OutputFormat) (string, error) {
	if format == FormatText {
		return formatPathsText(resp), nil
	}
	return marshalJSON(resp)
}

func formatPathsText(resp PathResponse) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generated %d attack path(s), showing %d\n", resp.PathCount, resp.Included))
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, p := range resp.Paths {
		sb.WriteString(fmt.Sprintf("%s\n", p.Name))
		sb.WriteString(fmt.Sprintf("  id: %s\n", p.ID))
		sb.WriteString(fmt.Sprintf("  likelihood: %s | impact: %s", p.Likelihood, p.Impact))
		if p.TargetAsset != "" {
			sb.WriteString(fmt.Sprintf(" | target: %s", p.TargetAsset))
		}
		sb.WriteString("\n")
		for _, s := range p.Steps {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s -> %s (%s)\n",
				s.Step, s.TechniqueID, s.TechniqueName, s.TargetComponent, s.Tactic))
		}
		sb.WriteString("\n")
	}

	if resp.TokenLimitReached {
		sb.WriteString("(truncated to token budget)\n")
	}
	return sb.String()
}

// FormatValidation formats catalog validation results, listing only records
// with issues.
func FormatValidation(results []ValidationResult, format OutputFormat) (string, error) {
	if format != FormatText {
		flagged := make([]ValidationResult, 0)
		for _, r := range results {
			if len(r.Errors) > 0 || len(r.Warnings) > 0 {
				flagged = append(flagged, r)
			}
		}
		return marshalJSON(flagged)
	}

	errors, warnings := CountIssues(results)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validated %d technique(s): %d error(s), %d warning(s)\n",
		len(results), errors, warnings))
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	for _, r := range results {
		for _, issue := range r.Errors {
			sb.WriteString(issue.String() + "\n")
		}
		for _, issue := range r.Warnings {
			sb.WriteString(issue.String() + "\n")
		}
	}
	return sb.String(), nil
}

func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}
