package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/iffystrayer/AITM-sub002/internal/attack"
	"github.com/iffystrayer/AITM-sub002/internal/cli/testutil"
)

// resetPathsFlags resets paths command flags and global variables
func resetPathsFlags() {
	pathsSystemFile = ""
	pathsPerEntry = 0
	pathsMaxLength = 0
	pathsMinStepScore = 0
	verbose = false
	outputFormat = "json"
}

// TestPathsCommand_GeneratesPaths tests path generation for a system file
func TestPathsCommand_GeneratesPaths(t *testing.T) {
	setupSnapshot(t)
	resetPathsFlags()
	pathsSystemFile = testutil.WriteSystemFile(t, testutil.DefaultSystem())

	var err error
	output := captureOutput(func() {
		err = runPaths(pathsCmd, []string{})
	})

	if err != nil {
		t.Fatalf("Paths command failed: %v", err)
	}

	var result attack.PathResponse
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	if result.PathCount < 2 {
		t.Fatalf("Expected paths from both entry points, got %d", result.PathCount)
	}

	declared := map[string]bool{"public-site": true, "admin-portal": true}
	for _, p := range result.Paths {
		if !declared[p.EntryPoint] {
			t.Errorf("Path starts from undeclared entry point %q", p.EntryPoint)
		}
		if len(p.Steps) == 0 {
			t.Errorf("Path %s has no steps", p.ID)
		}
		if p.Steps[0].Step != 1 {
			t.Errorf("Path %s steps are not numbered from 1", p.ID)
		}
		if p.Likelihood == "" {
			t.Errorf("Path %s has no likelihood rating", p.ID)
		}
	}
}

// TestPathsCommand_MaxLengthFlag tests that --max-path-length caps steps
func TestPathsCommand_MaxLengthFlag(t *testing.T) {
	setupSnapshot(t)
	resetPathsFlags()
	pathsSystemFile = testutil.WriteSystemFile(t, testutil.DefaultSystem())
	pathsMaxLength = 2

	var err error
	output := captureOutput(func() {
		err = runPaths(pathsCmd, []string{})
	})

	if err != nil {
		t.Fatalf("Paths command with max length failed: %v", err)
	}

	var result attack.PathResponse
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	for _, p := range result.Paths {
		if len(p.Steps) > 2 {
			t.Errorf("Path %s has %d steps, want at most 2", p.ID, len(p.Steps))
		}
	}
}

// TestPathsCommand_PathsPerEntryFlag tests that --paths-per-entry caps
// variants per entry point
func TestPathsCommand_PathsPerEntryFlag(t *testing.T) {
	setupSnapshot(t)
	resetPathsFlags()
	pathsSystemFile = testutil.WriteSystemFile(t, testutil.DefaultSystem())
	pathsPerEntry = 1

	var err error
	output := captureOutput(func() {
		err = runPaths(pathsCmd, []string{})
	})

	if err != nil {
		t.Fatalf("Paths command with paths-per-entry failed: %v", err)
	}

	var result attack.PathResponse
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	perEntry := make(map[string]int)
	for _, p := range result.Paths {
		perEntry[p.EntryPoint]++
	}
	for entry, n := range perEntry {
		if n > 1 {
			t.Errorf("Entry point %s has %d paths, want at most 1", entry, n)
		}
	}
}

// TestPathsCommand_MissingSystemFlag tests the error when --system is absent
func TestPathsCommand_MissingSystemFlag(t *testing.T) {
	setupSnapshot(t)
	resetPathsFlags()

	err := runPaths(pathsCmd, []string{})
	if err == nil {
		t.Fatal("Expected error without --system, got none")
	}
	if !contains(err.Error(), "no system file given") {
		t.Errorf("Expected 'no system file given' error, got: %v", err)
	}
}

// TestPathsCommand_VerboseMode tests the human-readable path walkthrough
func TestPathsCommand_VerboseMode(t *testing.T) {
	setupSnapshot(t)
	resetPathsFlags()
	pathsSystemFile = testutil.WriteSystemFile(t, testutil.DefaultSystem())
	verbose = true

	var err error
	output := captureOutput(func() {
		err = runPaths(pathsCmd, []string{})
	})

	if err != nil {
		t.Fatalf("Paths command in verbose mode failed: %v", err)
	}

	if !contains(output, "attack path(s)") {
		t.Error("Expected verbose output to contain the path header")
	}
	if !contains(output, "likelihood:") {
		t.Error("Expected verbose output to contain path ratings")
	}
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Error("Expected human-readable output, got JSON")
	}
}
