package attack

import (
	"strings"
	"testing"
)

func validTechnique() Technique {
	return Technique{
		ID:   "T1190",
		Name: "Exploit Public-Facing Application",
		Description: "Adversaries may attempt to exploit a weakness in an " +
			"internet-facing host or system to initially access a network.",
		Tactics:     []string{"initial-access"},
		Platforms:   []string{"linux", "windows"},
		Mitigations: []string{"M1030"},
	}
}

func validMitigationNames() map[string]string {
	return map[string]string{"M1030": "Network Segmentation"}
}

// TestValidateTechnique_CleanRecord tests that a well-formed technique passes
// with no issues
func TestValidateTechnique_CleanRecord(t *testing.T) {
	result := ValidateTechnique(validTechnique(), validMitigationNames())

	if !result.IsValid {
		t.Errorf("Clean technique marked invalid: %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Clean technique has %d errors, want 0", len(result.Errors))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Clean technique has %d warnings, want 0: %v", len(result.Warnings), result.Warnings)
	}
}

// TestValidateTechnique_MissingRequiredFields tests that empty id and name are
// errors
func TestValidateTechnique_MissingRequiredFields(t *testing.T) {
	technique := validTechnique()
	technique.ID = ""
	technique.Name = ""

	result := ValidateTechnique(technique, validMitigationNames())

	if result.IsValid {
		t.Error("Technique with empty id and name marked valid")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	for _, issue := range result.Errors {
		if issue.Message != "required field is empty" {
			t.Errorf("Unexpected error message: %q", issue.Message)
		}
	}
}

// TestValidateTechnique_NoTactics tests that a technique outside every tactic
// is an error
func TestValidateTechnique_NoTactics(t *testing.T) {
	technique := validTechnique()
	technique.Tactics = nil

	result := ValidateTechnique(technique, validMitigationNames())

	if result.IsValid {
		t.Error("Technique with no tactics marked valid")
	}
	if len(result.Errors) != 1 || result.Errors[0].Field != "tactics" {
		t.Errorf("Expected one tactics error, got %v", result.Errors)
	}
}

// TestValidateTechnique_OffProgressionWarns tests that a technique whose only
// tactic sits outside the canonical progression warns but stays valid
func TestValidateTechnique_OffProgressionWarns(t *testing.T) {
	technique := validTechnique()
	technique.Tactics = []string{"command-and-control"}

	result := ValidateTechnique(technique, validMitigationNames())

	if !result.IsValid {
		t.Errorf("Off-progression technique marked invalid: %v", result.Errors)
	}
	found := false
	for _, issue := range result.Warnings {
		if issue.Field == "tactics" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a tactics warning, got %v", result.Warnings)
	}
}

// TestValidateTechnique_WeakSignalWarnings tests the warning rules for missing
// platforms and short descriptions
func TestValidateTechnique_WeakSignalWarnings(t *testing.T) {
	technique := validTechnique()
	technique.Platforms = nil
	technique.Description = "Too short."

	result := ValidateTechnique(technique, validMitigationNames())

	if !result.IsValid {
		t.Errorf("Weak-signal technique marked invalid: %v", result.Errors)
	}
	fields := make(map[string]bool)
	for _, issue := range result.Warnings {
		fields[issue.Field] = true
	}
	if !fields["platforms"] {
		t.Error("Expected a platforms warning")
	}
	if !fields["description"] {
		t.Error("Expected a description warning")
	}
}

// TestValidateTechnique_UnknownMitigation tests that dangling mitigation
// references are errors
func TestValidateTechnique_UnknownMitigation(t *testing.T) {
	technique := validTechnique()
	technique.Mitigations = []string{"M1030", "M9999"}

	result := ValidateTechnique(technique, validMitigationNames())

	if result.IsValid {
		t.Error("Technique with dangling mitigation marked valid")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "M9999") {
		t.Errorf("Error does not name the unknown mitigation: %q", result.Errors[0].Message)
	}
}

// TestValidateCatalog_DuplicateID tests that a repeated technique identifier
// is flagged on the later record
func TestValidateCatalog_DuplicateID(t *testing.T) {
	first := validTechnique()
	second := validTechnique()
	second.Name = "Duplicate Of The First"
	catalog := Catalog{
		Techniques:      []Technique{first, second},
		MitigationNames: validMitigationNames(),
	}

	results := ValidateCatalog(catalog)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if !results[0].IsValid {
		t.Errorf("First record flagged: %v", results[0].Errors)
	}
	if results[1].IsValid {
		t.Error("Duplicate record not flagged")
	}
	if len(results[1].Errors) != 1 || results[1].Errors[0].Message != "duplicate technique identifier" {
		t.Errorf("Expected duplicate identifier error, got %v", results[1].Errors)
	}
}

// TestCountIssues tests the error and warning tally across results
func TestCountIssues(t *testing.T) {
	broken := validTechnique()
	broken.ID = ""
	broken.Platforms = nil
	catalog := Catalog{
		Techniques:      []Technique{validTechnique(), broken},
		MitigationNames: validMitigationNames(),
	}

	results := ValidateCatalog(catalog)
	errCount, warnCount := CountIssues(results)

	if errCount != 1 {
		t.Errorf("CountIssues errors = %d, want 1", errCount)
	}
	if warnCount != 1 {
		t.Errorf("CountIssues warnings = %d, want 1", warnCount)
	}
}

// TestValidationIssue_String tests the rendered issue line
func TestValidationIssue_String(t *testing.T) {
	issue := ValidationIssue{
		RecordID: "T1190",
		Field:    "platforms",
		Message:  "no platforms declared",
		Severity: "warning",
	}

	got := issue.String()
	want := "[warning] T1190: platforms - no platforms declared"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
