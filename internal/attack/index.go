package attack

import "sort"

// indexEntry caches one technique's tokenized fields so queries never
// re-tokenize catalog text.
type indexEntry struct {
	technique *Technique
	nameNorm  string
	nameSet   map[string]bool
	tacticSet map[string]bool
	descSet   map[string]bool
}

// Index supports keyword search over technique text with relevance ranking.
// Built once per snapshot from a Store and immutable afterwards, so queries
// run lock-free.
type Index struct {
	entries []indexEntry

	// byWord maps a token to the entries containing it in any field,
	// as sorted positions into entries.
	byWord map[string][]int

	// byName maps a normalized full technique name to its entry position.
	byName map[string]int
}

// NewIndex builds the search index over every technique in the store.
func NewIndex(store *Store) *Index {
	techniques := store.Techniques()
	idx := &Index{
		entries: make([]indexEntry, 0, len(techniques)),
		byWord:  make(map[string][]int),
		byName:  make(map[string]int, len(techniques)),
	}

	for _, t := range techniques {
		entry := indexEntry{
			technique: t,
			nameNorm:  normalizeName(t.Name),
			nameSet:   tokenSet(t.Name),
			tacticSet: make(map[string]bool),
			descSet:   tokenSet(t.Description),
		}
		for _, tactic := range t.Tactics {
			for _, tok := range Tokenize(TacticDisplayName(tactic)) {
				entry.tacticSet[tok] = true
			}
		}

		pos := len(idx.entries)
		idx.entries = append(idx.entries, entry)

		if _, exists := idx.byName[entry.nameNorm]; !exists {
			idx.byName[entry.nameNorm] = pos
		}

		seen := make(map[string]bool)
		for tok := range entry.nameSet {
			seen[tok] = true
		}
		for tok := range entry.tacticSet {
			seen[tok] = true
		}
		for tok := range entry.descSet {
			seen[tok] = true
		}
		for tok := range seen {
			idx.byWord[tok] = append(idx.byWord[tok], pos)
		}
	}

	return idx
}

// Search returns techniques matching the query, ordered by descending
// relevance with ties broken by technique ID. The ranking is a pure function
// of the index contents and the query: identical queries yield identical
// ordered results. Empty and whitespace-only queries return an empty list.
func (idx *Index) Search(query string) []ScoredTechnique {
	results := []ScoredTechnique{}

	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return results
	}
	unique := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			unique = append(unique, tok)
		}
	}

	candidates := make(map[int]bool)
	for _, tok := range unique {
		for _, pos := range idx.byWord[tok] {
			candidates[pos] = true
		}
	}

	queryNorm := normalizeName(query)
	if pos, ok := idx.byName[queryNorm]; ok {
		candidates[pos] = true
	}

	for pos := range candidates {
		entry := &idx.entries[pos]

		score := 0.0
		if entry.nameNorm != "" && entry.nameNorm == queryNorm {
			score += weightExactName
		}
		for _, tok := range unique {
			if entry.nameSet[tok] {
				score += weightNameToken
			}
			if entry.tacticSet[tok] {
				score += weightTacticToken
			}
			if entry.descSet[tok] {
				score += weightDescToken
			}
		}
		if score <= 0 {
			continue
		}
		results = append(results, ScoredTechnique{Technique: entry.technique, Score: score})
	}

	sortScored(results)
	return results
}

// sortScored orders by descending score with ascending technique ID as the
// tie break, the determinism contract every ranked result shares.
func sortScored(results []ScoredTechnique) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Technique.ID < results[j].Technique.ID
	})
}
