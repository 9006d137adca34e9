package attack

import "strings"

// Search scoring weights. The magnitudes are an implementation choice; the
// ordering (exact name > name token > tactic token > description token) is a
// contract the tests pin down.
const (
	weightExactName   = 10.0
	weightNameToken   = 3.0
	weightTacticToken = 1.5
	weightDescToken   = 1.0
)

// Component/entry-point relevance weights. Type match dominates, technology
// keyword overlap is secondary, platform overlap is a nudge. The generic
// floor, below every real signal, is what a candidate scores when the
// component description carries nothing to score on. Entry points add
// exposure and authentication terms on top of the base candidate score.
const (
	weightTypeMatch    = 5.0
	weightTechOverlap  = 2.0
	weightPlatform     = 0.5
	weightGenericFloor = 0.25

	weightInitialAccess    = 3.0
	weightExposureExternal = 2.0
	weightExposureInternal = 1.0
	weightNoAuth           = 1.5
)

// Path construction weights and thresholds. Step selection prefers switching
// target components (lateral movement) and, on terminal stages, components
// holding high-criticality assets. Likelihood buckets the mean step
// relevance.
const (
	weightEntryCarry      = 0.25
	weightComponentSwitch = 1.0
	weightAssetPull       = 1.0

	likelihoodHighMin   = 6.5
	likelihoodMediumMin = 4.0
)

// stopwords are tokens too common to carry relevance signal.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "its": true, "may": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "to": true, "use": true, "used": true,
	"via": true, "with": true,
}

// Tokenize splits free text into lowercase index tokens. Punctuation is
// stripped, stopwords and single characters are dropped, duplicates kept
// (callers dedupe when they need sets).
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		}
		return true
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// tokenSet builds a membership set from text.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range Tokenize(text) {
		set[t] = true
	}
	return set
}

// overlapCount counts how many of the query tokens appear in the set.
// Duplicate query tokens count once.
func overlapCount(queryTokens []string, set map[string]bool) int {
	seen := make(map[string]bool, len(queryTokens))
	n := 0
	for _, t := range queryTokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			n++
		}
	}
	return n
}

// normalizeName reduces a technique name to a comparable form for exact-match
// detection: lowercased with collapsed whitespace and punctuation removed.
func normalizeName(name string) string {
	return strings.Join(Tokenize(name), " ")
}
