package attack

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestFormatSearchResults_Text tests the human-readable search listing
func TestFormatSearchResults_Text(t *testing.T) {
	store := NewStore(testCatalog())
	resp := BuildTechniqueResponse(sampleScored(t, store, "T1190", "T1566"), store, 0)

	out, err := FormatSearchResults(resp, FormatText)
	if err != nil {
		t.Fatalf("FormatSearchResults failed: %v", err)
	}

	if !strings.Contains(out, "Found 2 matching technique(s), showing 2") {
		t.Errorf("Missing header in output:\n%s", out)
	}
	if !strings.Contains(out, "[1] T1190: Exploit Public-Facing Application (relevance 10.0)") {
		t.Errorf("Missing ranked line in output:\n%s", out)
	}
	if !strings.Contains(out, "Mitigations: M1030, M1050") {
		t.Errorf("Missing mitigations line in output:\n%s", out)
	}
	if strings.Contains(out, "(truncated to token budget)") {
		t.Error("Truncation note shown for a response under budget")
	}
}

// TestFormatSearchResults_TextTruncationNote tests the budget marker
func TestFormatSearchResults_TextTruncationNote(t *testing.T) {
	resp := TechniqueResponse{MatchCount: 5, Included: 1, TokenLimitReached: true}

	out, err := FormatSearchResults(resp, FormatText)
	if err != nil {
		t.Fatalf("FormatSearchResults failed: %v", err)
	}
	if !strings.Contains(out, "(truncated to token budget)") {
		t.Errorf("Missing truncation note:\n%s", out)
	}
}

// TestFormatSearchResults_JSON tests that JSON output round-trips
func TestFormatSearchResults_JSON(t *testing.T) {
	store := NewStore(testCatalog())
	resp := BuildTechniqueResponse(sampleScored(t, store, "T1190"), store, 0)

	out, err := FormatSearchResults(resp, FormatJSON)
	if err != nil {
		t.Fatalf("FormatSearchResults failed: %v", err)
	}

	var decoded TechniqueResponse
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.MatchCount != 1 || decoded.Included != 1 {
		t.Errorf("Decoded counts = %d/%d, want 1/1", decoded.MatchCount, decoded.Included)
	}
	if len(decoded.Techniques) != 1 || decoded.Techniques[0].ID != "T1190" {
		t.Errorf("Decoded techniques = %+v", decoded.Techniques)
	}
}

// TestFormatTechniqueDetail_Text tests the detail view with resolved
// mitigation names
func TestFormatTechniqueDetail_Text(t *testing.T) {
	store := NewStore(testCatalog())
	technique, _ := store.Technique("T1190")

	out, err := FormatTechniqueDetail(technique, store, FormatText)
	if err != nil {
		t.Fatalf("FormatTechniqueDetail failed: %v", err)
	}

	if !strings.Contains(out, "T1190: Exploit Public-Facing Application") {
		t.Errorf("Missing header in output:\n%s", out)
	}
	if !strings.Contains(out, "Tactics: Initial Access") {
		t.Errorf("Missing display-form tactics in output:\n%s", out)
	}
	if !strings.Contains(out, "DESCRIPTION") {
		t.Errorf("Missing description section in output:\n%s", out)
	}
	if !strings.Contains(out, "[M1030] Network Segmentation") {
		t.Errorf("Missing resolved mitigation in output:\n%s", out)
	}
}

// TestFormatTechniqueDetail_JSON tests that mitigation details ride along in
// JSON mode
func TestFormatTechniqueDetail_JSON(t *testing.T) {
	store := NewStore(testCatalog())
	technique, _ := store.Technique("T1190")

	out, err := FormatTechniqueDetail(technique, store, FormatJSON)
	if err != nil {
		t.Fatalf("FormatTechniqueDetail failed: %v", err)
	}

	var decoded struct {
		ID               string       `json:"id"`
		MitigationDetail []Mitigation `json:"mitigation_details"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.ID != "T1190" {
		t.Errorf("Decoded id = %s, want T1190", decoded.ID)
	}
	if len(decoded.MitigationDetail) != 2 {
		t.Fatalf("Decoded %d mitigation details, want 2", len(decoded.MitigationDetail))
	}
	if decoded.MitigationDetail[0].ID != "M1030" || decoded.MitigationDetail[0].Name != "Network Segmentation" {
		t.Errorf("First mitigation detail = %+v", decoded.MitigationDetail[0])
	}
}

// TestFormatTactics_Text tests the progression listing with backbone markers
func TestFormatTactics_Text(t *testing.T) {
	store := NewStore(testCatalog())

	out, err := FormatTactics(store, FormatText)
	if err != nil {
		t.Fatalf("FormatTactics failed: %v", err)
	}

	if !strings.Contains(out, "10 tactic(s)") {
		t.Errorf("Missing header in output:\n%s", out)
	}
	if !strings.Contains(out, "* TA0001") {
		t.Errorf("Backbone tactic not marked:\n%s", out)
	}
	if !strings.Contains(out, "  TA0011") {
		t.Errorf("Off-backbone tactic carries a marker:\n%s", out)
	}
	if !strings.Contains(out, "canonical attack progression stage") {
		t.Errorf("Missing marker legend:\n%s", out)
	}
}

// TestFormatTactics_JSON tests tactic rows with technique counts
func TestFormatTactics_JSON(t *testing.T) {
	store := NewStore(testCatalog())

	out, err := FormatTactics(store, FormatJSON)
	if err != nil {
		t.Fatalf("FormatTactics failed: %v", err)
	}

	var rows []struct {
		ID         string `json:"id"`
		ShortName  string `json:"short_name"`
		Techniques int    `json:"techniques"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("Decoded %d rows, want 10", len(rows))
	}
	if rows[0].ShortName != "initial-access" || rows[0].Techniques != 2 {
		t.Errorf("First row = %+v, want initial-access with 2 techniques", rows[0])
	}
}

// TestFormatSystemMapping_Text tests the two-section system view in name
// order
func TestFormatSystemMapping_Text(t *testing.T) {
	store := NewStore(testCatalog())
	scored := sampleScored(t, store, "T1190")
	mapping := SystemMapping{
		Components:  map[string][]ScoredTechnique{"zeta-db": scored, "alpha-web": scored},
		EntryPoints: map[string][]ScoredTechnique{"public-site": scored},
	}

	out, err := FormatSystemMapping(mapping, FormatText)
	if err != nil {
		t.Fatalf("FormatSystemMapping failed: %v", err)
	}

	if !strings.Contains(out, "COMPONENTS") || !strings.Contains(out, "ENTRY POINTS") {
		t.Errorf("Missing section headers:\n%s", out)
	}
	if strings.Index(out, "alpha-web") > strings.Index(out, "zeta-db") {
		t.Errorf("Component sections not in name order:\n%s", out)
	}
	if !strings.Contains(out, "public-site") {
		t.Errorf("Missing entry point section:\n%s", out)
	}
}

// TestFormatSystemMapping_JSON tests the combined JSON document
func TestFormatSystemMapping_JSON(t *testing.T) {
	store := NewStore(testCatalog())
	scored := sampleScored(t, store, "T1190")
	mapping := SystemMapping{
		Components:  map[string][]ScoredTechnique{"orders-db": scored},
		EntryPoints: map[string][]ScoredTechnique{"public-site": scored},
	}

	out, err := FormatSystemMapping(mapping, FormatJSON)
	if err != nil {
		t.Fatalf("FormatSystemMapping failed: %v", err)
	}

	var decoded map[string]map[string][]ScoredTechnique
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if _, ok := decoded["components"]["orders-db"]; !ok {
		t.Errorf("Missing components.orders-db in output:\n%s", out)
	}
	if _, ok := decoded["entry_points"]["public-site"]; !ok {
		t.Errorf("Missing entry_points.public-site in output:\n%s", out)
	}
}

// TestFormatPaths_Text tests the rendered path walkthrough
func TestFormatPaths_Text(t *testing.T) {
	resp := BuildPathResponse(samplePaths(), 0)

	out, err := FormatPaths(resp, FormatText)
	if err != nil {
		t.Fatalf("FormatPaths failed: %v", err)
	}

	if !strings.Contains(out, "Generated 2 attack path(s), showing 2") {
		t.Errorf("Missing header in output:\n%s", out)
	}
	if !strings.Contains(out, "likelihood: high | impact: critical | target: orders-db") {
		t.Errorf("Missing rating line in output:\n%s", out)
	}
	if !strings.Contains(out, "1. [T1190] Exploit Public-Facing Application -> storefront (initial-access)") {
		t.Errorf("Missing step line in output:\n%s", out)
	}
	if strings.Contains(out, "target: \n") {
		t.Error("Asset-less path rendered an empty target")
	}
}

// TestFormatPaths_JSON tests that the path response round-trips
func TestFormatPaths_JSON(t *testing.T) {
	resp := BuildPathResponse(samplePaths(), 0)

	out, err := FormatPaths(resp, FormatJSON)
	if err != nil {
		t.Fatalf("FormatPaths failed: %v", err)
	}

	var decoded PathResponse
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.PathCount != 2 || len(decoded.Paths) != 2 {
		t.Errorf("Decoded %d/%d paths, want 2/2", decoded.PathCount, len(decoded.Paths))
	}
	if decoded.Paths[0].Steps[1].TechniqueID != "T1486" {
		t.Errorf("Decoded step = %+v", decoded.Paths[0].Steps[1])
	}
}

// TestFormatValidation_Text tests the issue summary line
func TestFormatValidation_Text(t *testing.T) {
	broken := validTechnique()
	broken.ID = ""
	catalog := Catalog{
		Techniques:      []Technique{validTechnique(), broken},
		MitigationNames: validMitigationNames(),
	}

	out, err := FormatValidation(ValidateCatalog(catalog), FormatText)
	if err != nil {
		t.Fatalf("FormatValidation failed: %v", err)
	}

	if !strings.Contains(out, "Validated 2 technique(s): 1 error(s), 0 warning(s)") {
		t.Errorf("Missing summary line in output:\n%s", out)
	}
	if !strings.Contains(out, "[error]") {
		t.Errorf("Missing issue line in output:\n%s", out)
	}
}

// TestFormatValidation_JSONListsOnlyFlagged tests that clean records are
// omitted from JSON output
func TestFormatValidation_JSONListsOnlyFlagged(t *testing.T) {
	broken := validTechnique()
	broken.Platforms = nil
	catalog := Catalog{
		Techniques:      []Technique{validTechnique(), broken},
		MitigationNames: validMitigationNames(),
	}

	out, err := FormatValidation(ValidateCatalog(catalog), FormatJSON)
	if err != nil {
		t.Fatalf("FormatValidation failed: %v", err)
	}

	var decoded []ValidationResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Errorf("Decoded %d flagged records, want 1", len(decoded))
	}
}
