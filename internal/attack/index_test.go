package attack

import (
	"reflect"
	"testing"
)

func newTestIndex() (*Store, *Index) {
	store := NewStore(testCatalog())
	return store, NewIndex(store)
}

// TestSearch_ExactNameRanksFirst tests that a query matching a full technique
// name puts that technique first
func TestSearch_ExactNameRanksFirst(t *testing.T) {
	_, idx := newTestIndex()

	results := idx.Search("Exploit Public-Facing Application")
	if len(results) == 0 {
		t.Fatal("Search returned no results")
	}
	if results[0].Technique.ID != "T1190" {
		t.Errorf("Top result = %s, want T1190", results[0].Technique.ID)
	}

	// Exact-name hit outranks any token-only match
	for _, r := range results[1:] {
		if r.Score >= results[0].Score {
			t.Errorf("Non-exact match %s scored %.1f, not below top %.1f",
				r.Technique.ID, r.Score, results[0].Score)
		}
	}
}

// TestSearch_DescriptionKeywords tests matching on description-only terms
func TestSearch_DescriptionKeywords(t *testing.T) {
	_, idx := newTestIndex()

	results := idx.Search("sql injection")
	if len(results) == 0 {
		t.Fatal("Search(sql injection) returned no results")
	}
	if results[0].Technique.ID != "T1190" {
		t.Errorf("Top result = %s, want T1190", results[0].Technique.ID)
	}
}

// TestSearch_TacticTerm tests that tactic names participate in matching
func TestSearch_TacticTerm(t *testing.T) {
	_, idx := newTestIndex()

	results := idx.Search("exfiltration")
	found := false
	for _, r := range results {
		if r.Technique.ID == "T1041" {
			found = true
		}
	}
	if !found {
		t.Error("Search(exfiltration) did not return T1041")
	}
}

// TestSearch_Deterministic tests that repeated identical queries return
// identical ordered results
func TestSearch_Deterministic(t *testing.T) {
	_, idx := newTestIndex()

	first := idx.Search("remote access credentials")
	for i := 0; i < 10; i++ {
		again := idx.Search("remote access credentials")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Run %d differed from first run:\nfirst: %v\nagain: %v", i, first, again)
		}
	}
}

// TestSearch_TieBreakByID tests that equal scores order by technique ID
func TestSearch_TieBreakByID(t *testing.T) {
	_, idx := newTestIndex()

	// Every fixture description contains "adversaries", so all techniques
	// tie on one description hit and must come back in ID order.
	results := idx.Search("adversaries")
	if len(results) != 11 {
		t.Fatalf("Search(adversaries) returned %d results, want 11", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score == results[i].Score &&
			results[i-1].Technique.ID >= results[i].Technique.ID {
			t.Errorf("Tied results out of ID order: %s before %s",
				results[i-1].Technique.ID, results[i].Technique.ID)
		}
	}
}

// TestSearch_EmptyQuery tests empty and whitespace-only queries
func TestSearch_EmptyQuery(t *testing.T) {
	_, idx := newTestIndex()

	for _, query := range []string{"", "   \t\n  ", "a of the"} {
		results := idx.Search(query)
		if results == nil {
			t.Errorf("Search(%q) = nil, want empty slice", query)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) returned %d results, want 0", query, len(results))
		}
	}
}

// TestSearch_NoMatches tests a query with no catalog overlap
func TestSearch_NoMatches(t *testing.T) {
	_, idx := newTestIndex()

	results := idx.Search("zzzz qqqq")
	if results == nil || len(results) != 0 {
		t.Errorf("Search(zzzz qqqq) = %v, want empty slice", results)
	}
}

// TestSearch_NameOutweighsDescription tests the field weighting contract:
// a name hit scores above a description hit for the same token
func TestSearch_NameOutweighsDescription(t *testing.T) {
	_, idx := newTestIndex()

	// "remote" is in T1021's name but only in T1046's description.
	results := idx.Search("remote")
	scores := make(map[string]float64, len(results))
	for _, r := range results {
		scores[r.Technique.ID] = r.Score
	}
	if _, ok := scores["T1046"]; !ok {
		t.Fatal("Search(remote) did not return description hit T1046")
	}
	if scores["T1021"] <= scores["T1046"] {
		t.Errorf("Name hit T1021 (%.1f) did not outscore description hit T1046 (%.1f)",
			scores["T1021"], scores["T1046"])
	}
}

// TestSearch_SingleWordExactName tests that a one-word query matching a full
// technique name collects the exact-name weight on top of the token weights
func TestSearch_SingleWordExactName(t *testing.T) {
	_, idx := newTestIndex()

	results := idx.Search("phishing")
	if len(results) == 0 || results[0].Technique.ID != "T1566" {
		t.Fatalf("Search(phishing) top = %v, want T1566", results)
	}
	want := weightExactName + weightNameToken + weightDescToken
	if results[0].Score != want {
		t.Errorf("Score = %.1f, want %.1f", results[0].Score, want)
	}
}
