package attack

import "encoding/json"

// DefaultTokenBudget is the maximum token count for agent-mode responses.
const DefaultTokenBudget = 500

// TechniqueSummary is the agent-facing slice of a scored technique.
type TechniqueSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Tactics     []string `json:"tactics"`
	Relevance   float64  `json:"relevance"`
	Mitigations []string `json:"mitigations,omitempty"`
}

// TechniqueResponse is a token-budgeted set of ranked techniques.
type TechniqueResponse struct {
	MatchCount        int                `json:"match_count"`
	Included          int                `json:"included"`
	TokenCount        int                `json:"token_count,omitempty"`
	TokenLimitReached bool               `json:"token_limit_reached,omitempty"`
	Techniques        []TechniqueSummary `json:"techniques"`
}

// PathResponse is a token-budgeted set of generated attack paths.
type PathResponse struct {
	PathCount         int          `json:"path_count"`
	Included          int          `json:"included"`
	TokenCount        int          `json:"token_count,omitempty"`
	TokenLimitReached bool         `json:"token_limit_reached,omitempty"`
	Paths             []AttackPath `json:"paths"`
}

// BuildTechniqueResponse packs ranked techniques into a token budget for
// agent consumption. The first result is always included even when it alone
// exceeds the budget; once anything is in, results that would overflow are
// dropped and the response marked.
func BuildTechniqueResponse(scored []ScoredTechnique, store *Store, budget int) TechniqueResponse {
	meter := newTokenBudget(budget)

	resp := TechniqueResponse{
		MatchCount: len(scored),
		Techniques: make([]TechniqueSummary, 0, len(scored)),
	}

	for _, st := range scored {
		summary := TechniqueSummary{
			ID:          st.Technique.ID,
			Name:        st.Technique.Name,
			Tactics:     st.Technique.Tactics,
			Relevance:   st.Score,
			Mitigations: store.MitigationsForTechnique(st.Technique.ID),
		}

		payload, _ := json.Marshal(summary)
		if !meter.admit(payload) {
			break
		}
		resp.Techniques = append(resp.Techniques, summary)
	}

	resp.Included = len(resp.Techniques)
	resp.TokenCount = meter.spent
	resp.TokenLimitReached = meter.closed
	return resp
}

// BuildPathResponse packs generated paths into a token budget with the same
// always-include-the-first rule as BuildTechniqueResponse.
func BuildPathResponse(paths []AttackPath, budget int) PathResponse {
	meter := newTokenBudget(budget)

	resp := PathResponse{
		PathCount: len(paths),
		Paths:     make([]AttackPath, 0, len(paths)),
	}

	for _, p := range paths {
		payload, _ := json.Marshal(p)
		if !meter.admit(payload) {
			break
		}
		resp.Paths = append(resp.Paths, p)
	}

	resp.Included = len(resp.Paths)
	resp.TokenCount = meter.spent
	resp.TokenLimitReached = meter.closed
	return resp
}
