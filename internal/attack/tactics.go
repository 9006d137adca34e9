package attack

import "strings"

// CanonicalTactics is the fixed tactic progression that attack paths follow,
// from first foothold to final objective. Generated paths may skip stages but
// never move backward through this list.
var CanonicalTactics = []string{
	TacticInitialAccess,
	TacticExecution,
	TacticPersistence,
	TacticPrivilegeEscalation,
	TacticDefenseEvasion,
	TacticCredentialAccess,
	TacticDiscovery,
	TacticLateralMovement,
	TacticCollection,
	TacticExfiltration,
	TacticImpact,
}

// Canonical tactic short names.
const (
	TacticInitialAccess       = "initial-access"
	TacticExecution           = "execution"
	TacticPersistence         = "persistence"
	TacticPrivilegeEscalation = "privilege-escalation"
	TacticDefenseEvasion      = "defense-evasion"
	TacticCredentialAccess    = "credential-access"
	TacticDiscovery           = "discovery"
	TacticLateralMovement     = "lateral-movement"
	TacticCollection          = "collection"
	TacticExfiltration        = "exfiltration"
	TacticImpact              = "impact"
)

// tacticRanks maps canonical tactic short names to their position in the
// progression. Exfiltration and impact share the terminal rank: both are
// end-of-path objectives, neither follows the other.
var tacticRanks = map[string]int{
	TacticInitialAccess:       0,
	TacticExecution:           1,
	TacticPersistence:         2,
	TacticPrivilegeEscalation: 3,
	TacticDefenseEvasion:      4,
	TacticCredentialAccess:    5,
	TacticDiscovery:           6,
	TacticLateralMovement:     7,
	TacticCollection:          8,
	TacticExfiltration:        9,
	TacticImpact:              9,
}

// TacticRank returns the canonical progression rank for a tactic name, or -1
// for tactics outside the backbone such as command-and-control. Off-backbone
// tactics stay searchable but never qualify as path steps.
func TacticRank(name string) int {
	rank, ok := tacticRanks[NormalizeTactic(name)]
	if !ok {
		return -1
	}
	return rank
}

// NormalizeTactic converts a tactic display name or slug to the canonical
// short-name form used as map keys ("Initial Access" -> "initial-access").
func NormalizeTactic(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	return s
}

// TacticDisplayName converts a canonical short name back to a display form
// ("privilege-escalation" -> "Privilege Escalation").
func TacticDisplayName(shortName string) string {
	parts := strings.Split(NormalizeTactic(shortName), "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
