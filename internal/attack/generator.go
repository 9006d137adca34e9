package attack

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generation defaults, used when Options fields are zero.
const (
	DefaultPathsPerEntry = 3
	DefaultMaxPathLength = 5
	DefaultMinStepScore  = 1.0
)

// generatorComponentLimit bounds the per-component candidate pool the
// generator draws steps from. Wider than the mapper's caller-facing default
// so later tactics still have material to choose from.
const generatorComponentLimit = 25

// pathNamespace is the fixed namespace for deterministic path identifiers.
var pathNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("attackmap/path"))

// Options tunes path generation. Zero values mean defaults; negative values
// are contract violations.
type Options struct {
	// PathsPerEntry caps how many path variants each entry point yields.
	PathsPerEntry int

	// MaxPathLength caps the number of steps in one path.
	MaxPathLength int

	// MinStepScore is the relevance floor a technique must clear to qualify
	// as a step.
	MinStepScore float64
}

func (o Options) withDefaults() Options {
	if o.PathsPerEntry == 0 {
		o.PathsPerEntry = DefaultPathsPerEntry
	}
	if o.MaxPathLength == 0 {
		o.MaxPathLength = DefaultMaxPathLength
	}
	if o.MinStepScore == 0 {
		o.MinStepScore = DefaultMinStepScore
	}
	return o
}

func (o Options) validate() error {
	if o.PathsPerEntry < 0 {
		return fmt.Errorf("%w: negative paths per entry %d", ErrInvalidQuery, o.PathsPerEntry)
	}
	if o.MaxPathLength < 0 {
		return fmt.Errorf("%w: negative max path length %d", ErrInvalidQuery, o.MaxPathLength)
	}
	if o.MinStepScore < 0 {
		return fmt.Errorf("%w: negative minimum step score %g", ErrInvalidQuery, o.MinStepScore)
	}
	return nil
}

// Generator synthesizes multi-step attack paths from entry points toward
// critical assets, walking the canonical tactic progression.
type Generator struct {
	store  *Store
	mapper *Mapper
}

func NewGenerator(store *Store, mapper *Mapper) *Generator {
	return &Generator{store: store, mapper: mapper}
}

// componentContext caches per-component scoring for one generation run.
type componentContext struct {
	component Component
	order     int

	// scores maps technique ID to the component-relevance score.
	scores map[string]float64

	// techniques holds the scored candidates in rank order.
	techniques []ScoredTechnique

	// assetName and assetRank carry the highest-criticality asset associated
	// with this component by name overlap; rank 0 means none.
	assetName string
	assetRank int
}

// stepCandidate is one (technique, tactic, component) choice under
// consideration for the next path step.
type stepCandidate struct {
	technique *Technique
	tactic    string
	rank      int
	target    *componentContext

	// relevance feeds the path's likelihood aggregate.
	relevance float64

	// selection adds the construction bonuses on top of relevance.
	selection float64
}

// Generate builds up to PathsPerEntry paths per entry point. Paths step
// through tactics in canonical order, never regressing, and prefer moving
// across components and ending on the component holding the most critical
// asset. Empty entry point or component lists yield an empty result, not an
// error. Output is a deterministic function of the inputs.
func (g *Generator) Generate(assets []CriticalAsset, entries []EntryPoint, components []Component, opts Options) ([]AttackPath, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	paths := []AttackPath{}
	if len(entries) == 0 || len(components) == 0 {
		return paths, nil
	}

	contexts, err := g.buildContexts(assets, components)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		ranked := g.mapper.ScoreEntryPoint(entry)

		// Carry a fraction of the entry ranking into step selection so the
		// entry's likeliest techniques stay preferred mid-path.
		entryScores := make(map[string]float64, len(ranked))
		for _, st := range ranked {
			entryScores[st.Technique.ID] = st.Score * weightEntryCarry
		}

		seen := make(map[string]bool)
		variants := 0
		for _, first := range ranked {
			if variants >= opts.PathsPerEntry {
				break
			}
			if first.Score < opts.MinStepScore {
				break
			}
			tactic, rank := earliestTactic(first.Technique)
			if rank < 0 {
				continue
			}

			path := g.buildPath(entry, first, tactic, rank, contexts, entryScores, assets, opts)

			key := stepKey(path.Steps)
			if seen[key] {
				continue
			}
			seen[key] = true
			paths = append(paths, path)
			variants++
		}
	}

	return paths, nil
}

// buildContexts scores every component once and associates assets to the
// components whose names they overlap.
func (g *Generator) buildContexts(assets []CriticalAsset, components []Component) ([]*componentContext, error) {
	contexts := make([]*componentContext, 0, len(components))
	for i, c := range components {
		scored, err := g.mapper.ScoreComponent(c, generatorComponentLimit)
		if err != nil {
			return nil, err
		}

		ctx := &componentContext{
			component:  c,
			order:      i,
			scores:     make(map[string]float64, len(scored)),
			techniques: scored,
		}
		for _, st := range scored {
			ctx.scores[st.Technique.ID] = st.Score
		}
		contexts = append(contexts, ctx)
	}

	for _, a := range assets {
		rank := criticalityRank(a.Criticality)
		if rank == 0 {
			rank = 1
		}
		target := matchAssetComponent(a, contexts)
		if target == nil {
			continue
		}
		if rank > target.assetRank {
			target.assetRank = rank
			target.assetName = a.Name
		}
	}

	return contexts, nil
}

// matchAssetComponent associates an asset with the component sharing the
// most name tokens. No overlap associates the asset with no component.
func matchAssetComponent(a CriticalAsset, contexts []*componentContext) *componentContext {
	assetTokens := Tokenize(a.Name)
	if len(assetTokens) == 0 {
		return nil
	}

	var best *componentContext
	bestOverlap := 0
	for _, ctx := range contexts {
		set := tokenSet(ctx.component.Name + " " + ctx.component.Type)
		overlap := overlapCount(assetTokens, set)
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = ctx
		}
	}
	return best
}

// buildPath constructs one path starting from a chosen first technique,
// extending it step by step until the length cap or the end of the tactic
// progression.
func (g *Generator) buildPath(entry EntryPoint, first ScoredTechnique, firstTactic string, firstRank int, contexts []*componentContext, entryScores map[string]float64, assets []CriticalAsset, opts Options) AttackPath {
	firstTarget := bestTargetFor(first.Technique.ID, contexts)

	used := map[string]bool{first.Technique.ID: true}
	steps := []AttackStep{newStep(1, first.Technique, firstTactic, firstTarget.component.Name)}
	relevances := []float64{first.Score}

	prevRank := firstRank
	prevTarget := firstTarget

	for len(steps) < opts.MaxPathLength {
		next, ok := g.nextStep(prevRank, prevTarget, contexts, entryScores, used, opts.MinStepScore)
		if !ok {
			break
		}

		used[next.technique.ID] = true
		steps = append(steps, newStep(len(steps)+1, next.technique, next.tactic, next.target.component.Name))
		relevances = append(relevances, next.relevance)
		prevRank = next.rank
		prevTarget = next.target
	}

	impact, targetAsset := ratePathImpact(prevTarget, assets)

	return AttackPath{
		ID:          pathID(entry.Name, steps),
		Name:        fmt.Sprintf("%s via %s", entry.Name, first.Technique.Name),
		EntryPoint:  entry.Name,
		Steps:       steps,
		Likelihood:  rateLikelihood(relevances),
		Impact:      impact,
		TargetAsset: targetAsset,
	}
}

// nextStep picks the best qualifying (technique, tactic, component) for the
// step after prevRank. Candidates must advance to a strictly later tactic,
// clear the minimum relevance, and not repeat a technique already on the
// path. Selection prefers higher relevance, a component switch, and, on
// terminal stages, the component holding the most critical asset; ties fall
// to technique ID then component order.
func (g *Generator) nextStep(prevRank int, prevTarget *componentContext, contexts []*componentContext, entryScores map[string]float64, used map[string]bool, minScore float64) (stepCandidate, bool) {
	var best stepCandidate
	found := false

	for _, ctx := range contexts {
		for _, st := range ctx.techniques {
			if st.Score < minScore || used[st.Technique.ID] {
				continue
			}
			for _, tacticName := range st.Technique.Tactics {
				rank := TacticRank(tacticName)
				if rank <= prevRank {
					continue
				}

				cand := stepCandidate{
					technique: st.Technique,
					tactic:    NormalizeTactic(tacticName),
					rank:      rank,
					target:    ctx,
					relevance: st.Score,
				}
				cand.selection = st.Score + entryScores[st.Technique.ID]
				if ctx != prevTarget {
					cand.selection += weightComponentSwitch
				}
				if rank == TacticRank(TacticImpact) && ctx.assetRank > 0 {
					cand.selection += weightAssetPull * float64(ctx.assetRank)
				}

				if !found || betterCandidate(cand, best) {
					best = cand
					found = true
				}
			}
		}
	}
	return best, found
}

// betterCandidate orders step candidates: selection score descending, then
// technique ID ascending, then component input order.
func betterCandidate(a, b stepCandidate) bool {
	if a.selection != b.selection {
		return a.selection > b.selection
	}
	if a.technique.ID != b.technique.ID {
		return a.technique.ID < b.technique.ID
	}
	return a.target.order < b.target.order
}

// bestTargetFor chooses the component a technique most strongly applies to.
// With no scores anywhere the first component stands in.
func bestTargetFor(techniqueID string, contexts []*componentContext) *componentContext {
	best := contexts[0]
	bestScore := best.scores[techniqueID]
	for _, ctx := range contexts[1:] {
		if s := ctx.scores[techniqueID]; s > bestScore {
			best = ctx
			bestScore = s
		}
	}
	return best
}

// earliestTactic returns the technique's earliest canonical tactic and its
// rank. Techniques with only off-progression tactics return rank -1 and
// never start a path.
func earliestTactic(t *Technique) (string, int) {
	bestRank := -1
	bestName := ""
	for _, tacticName := range t.Tactics {
		rank := TacticRank(tacticName)
		if rank < 0 {
			continue
		}
		if bestRank < 0 || rank < bestRank {
			bestRank = rank
			bestName = NormalizeTactic(tacticName)
		}
	}
	return bestName, bestRank
}

func newStep(index int, t *Technique, tactic, target string) AttackStep {
	return AttackStep{
		Step:            index,
		TechniqueID:     t.ID,
		TechniqueName:   t.Name,
		Tactic:          tactic,
		TargetComponent: target,
		Description:     fmt.Sprintf("%s (%s) against %s for %s", t.Name, t.ID, target, strings.ToLower(TacticDisplayName(tactic))),
	}
}

// rateLikelihood buckets the mean step relevance into low/medium/high.
func rateLikelihood(relevances []float64) string {
	if len(relevances) == 0 {
		return LikelihoodLow
	}
	sum := 0.0
	for _, r := range relevances {
		sum += r
	}
	mean := sum / float64(len(relevances))

	switch {
	case mean >= likelihoodHighMin:
		return LikelihoodHigh
	case mean >= likelihoodMediumMin:
		return LikelihoodMedium
	default:
		return LikelihoodLow
	}
}

// ratePathImpact rates impact from the criticality of the asset the path
// ends on: the asset associated with the final component when there is one,
// otherwise the most critical declared asset. With no assets declared the
// impact stays at the lowest tier with no target named.
func ratePathImpact(finalTarget *componentContext, assets []CriticalAsset) (string, string) {
	if finalTarget.assetRank > 0 {
		return criticalityName(finalTarget.assetRank), finalTarget.assetName
	}

	bestRank := 0
	bestName := ""
	for _, a := range assets {
		rank := criticalityRank(a.Criticality)
		if rank == 0 {
			rank = 1
		}
		if rank > bestRank {
			bestRank = rank
			bestName = a.Name
		}
	}
	if bestRank == 0 {
		return CriticalityLow, ""
	}
	return criticalityName(bestRank), bestName
}

// criticalityName is the inverse of criticalityRank.
func criticalityName(rank int) string {
	switch rank {
	case 4:
		return CriticalityCritical
	case 3:
		return CriticalityHigh
	case 2:
		return CriticalityMedium
	default:
		return CriticalityLow
	}
}

// pathID derives a stable identifier from the entry point and the exact
// technique sequence, so identical inputs always name identical paths.
func pathID(entryName string, steps []AttackStep) string {
	parts := make([]string, 0, len(steps)+1)
	parts = append(parts, entryName)
	for _, s := range steps {
		parts = append(parts, s.TechniqueID)
	}
	return uuid.NewSHA1(pathNamespace, []byte(strings.Join(parts, "|"))).String()
}

// stepKey fingerprints a path's technique sequence for variant dedup.
func stepKey(steps []AttackStep) string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.TechniqueID
	}
	return strings.Join(ids, "|")
}
