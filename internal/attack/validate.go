package attack

import (
	"fmt"
	"strings"
)

// ValidationIssue represents a single problem found in a catalog record
type ValidationIssue struct {
	RecordID string
	Field    string
	Message  string
	Severity string // "error" or "warning"
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("[%s] %s: %s - %s", i.Severity, i.RecordID, i.Field, i.Message)
}

// ValidationResult holds all issues for a single technique
type ValidationResult struct {
	RecordID string
	IsValid  bool
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

// ValidateTechnique checks one technique against the catalog's mitigation
// table. Errors mark records the query surface would misbehave on; warnings
// mark records that work but carry weak signal.
func ValidateTechnique(t Technique, mitigationNames map[string]string) ValidationResult {
	result := ValidationResult{
		RecordID: t.ID,
		IsValid:  true,
		Errors:   make([]ValidationIssue, 0),
		Warnings: make([]ValidationIssue, 0),
	}

	result.checkRequired(t.ID, "id", t.ID)
	result.checkRequired(t.ID, "name", t.Name)

	if len(t.Tactics) == 0 {
		result.addError(t.ID, "tactics", "technique belongs to no tactic")
	} else {
		onBackbone := false
		for _, tactic := range t.Tactics {
			if TacticRank(tactic) >= 0 {
				onBackbone = true
				break
			}
		}
		if !onBackbone {
			result.addWarning(t.ID, "tactics",
				"no tactic on the canonical progression; technique is searchable but never a path step")
		}
	}

	if len(t.Platforms) == 0 {
		result.addWarning(t.ID, "platforms", "no platforms declared")
	}

	if len(strings.TrimSpace(t.Description)) < 40 {
		result.addWarning(t.ID, "description", "description too short to carry search signal")
	}

	for _, mit := range t.Mitigations {
		if _, ok := mitigationNames[mit]; !ok {
			result.addError(t.ID, "mitigations",
				fmt.Sprintf("references unknown mitigation %s", mit))
		}
	}

	return result
}

// ValidateCatalog validates every technique plus cross-record invariants.
// Duplicate technique identifiers are an error on the later record.
func ValidateCatalog(c Catalog) []ValidationResult {
	results := make([]ValidationResult, 0, len(c.Techniques))
	seen := make(map[string]bool, len(c.Techniques))

	for _, t := range c.Techniques {
		result := ValidateTechnique(t, c.MitigationNames)
		if t.ID != "" && seen[t.ID] {
			result.addError(t.ID, "id", "duplicate technique identifier")
		}
		seen[t.ID] = true
		results = append(results, result)
	}
	return results
}

// CountIssues sums errors and warnings across validation results.
func CountIssues(results []ValidationResult) (errors, warnings int) {
	for _, r := range results {
		errors += len(r.Errors)
		warnings += len(r.Warnings)
	}
	return errors, warnings
}

func (r *ValidationResult) checkRequired(recordID, field, value string) {
	if value == "" {
		r.addError(recordID, field, "required field is empty")
	}
}

func (r *ValidationResult) addError(recordID, field, message string) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationIssue{
		RecordID: recordID,
		Field:    field,
		Message:  message,
		Severity: "error",
	})
}

func (r *ValidationResult) addWarning(recordID, field, message string) {
	r.Warnings = append(r.Warnings, ValidationIssue{
		RecordID: recordID,
		Field:    field,
		Message:  message,
		Severity: "warning",
	})
}
