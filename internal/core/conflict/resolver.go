package conflict

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/graphloom/loom/internal/core/model"
)

// defaultStrategies orders the resolution strategies per conflict kind;
// the first entry is the default when the caller supplies no override.
var defaultStrategies = map[Kind][]string{
	EntityNameConflict: {
		StrategyHighestConfidence, StrategyMostFrequent,
		StrategyLongestName, StrategyManualReview,
	},
	EntityTypeConflict: {
		StrategyMostSpecificType, StrategyHighestConfidence, StrategyVote,
	},
	PropertyValueConflict: {
		StrategyHighestConfidence, StrategyMostRecent, StrategyVote,
		StrategyAverageNumeric, StrategyUnionLists,
	},
	RelationTypeConflict: {
		StrategyHighestConfidence, StrategyMostFrequent, StrategyManualReview,
	},
	TemporalConflict: {
		StrategyMostRecent, StrategyHighestConfidence,
	},
	ContradictoryRelations: {
		StrategyHighestConfidence, StrategySourceAuthority,
		StrategyTemporalPrecedence, StrategyManualReview,
	},
}

// Resolver resolves conflicts and keeps a process-lifetime history of
// everything it resolved. Not safe for concurrent use.
type Resolver struct {
	Overrides map[Kind]string

	history []Conflict
}

// NewResolver returns a resolver with no per-kind overrides.
func NewResolver() *Resolver {
	return &Resolver{Overrides: make(map[Kind]string)}
}

// Strategies returns the ordered strategy list for a kind.
func Strategies(kind Kind) []string {
	return append([]string{}, defaultStrategies[kind]...)
}

// Resolve applies the given strategy, or the kind's default when
// strategy is empty, mutating the conflict exactly once and appending it
// to the history. Any failure inside a strategy falls back to the first
// conflicting item with confidence 0.1; a batch never aborts.
func (r *Resolver) Resolve(c Conflict, strategy string) Conflict {
	if strategy == "" {
		if override, ok := r.Overrides[c.Kind]; ok {
			strategy = override
		} else if list := defaultStrategies[c.Kind]; len(list) > 0 {
			strategy = list[0]
		} else {
			strategy = StrategyHighestConfidence
		}
	}
	c.ResolutionStrategy = strategy

	if err := r.apply(&c, strategy); err != nil {
		log.Printf("conflict %s: strategy %s failed (%v), falling back to first item", c.ID, strategy, err)
		if len(c.ConflictingItems) > 0 {
			c.ResolvedValue = c.ConflictingItems[0]
		}
		c.ResolutionConfidence = 0.1
	}

	r.history = append(r.history, c)
	return c
}

// BatchResolve resolves every conflict, applying per-kind overrides when
// present. A failing item never stops the batch.
func (r *Resolver) BatchResolve(conflicts []Conflict) []Conflict {
	resolved := make([]Conflict, 0, len(conflicts))
	for _, c := range conflicts {
		resolved = append(resolved, r.Resolve(c, ""))
	}
	return resolved
}

// History returns the append-only log of resolved conflicts.
func (r *Resolver) History() []Conflict {
	return r.history
}

var errNoItems = errors.New("no conflicting items")

func (r *Resolver) apply(c *Conflict, strategy string) error {
	if len(c.ConflictingItems) == 0 {
		return errNoItems
	}

	switch strategy {
	case StrategyHighestConfidence:
		return resolveHighestConfidence(c)
	case StrategyMostFrequent, StrategyVote:
		return resolveVote(c)
	case StrategyLongestName:
		return resolveLongestString(c, 0.7)
	case StrategyMostSpecificType:
		return resolveLongestString(c, 0.8)
	case StrategyAverageNumeric:
		if err := resolveAverageNumeric(c); err != nil {
			return resolveVote(c)
		}
		return nil
	case StrategyUnionLists:
		if err := resolveUnionLists(c); err != nil {
			return resolveVote(c)
		}
		return nil
	case StrategySourceAuthority:
		c.ResolvedValue = c.ConflictingItems[0]
		c.ResolutionConfidence = 0.6
		return nil
	}

	// Strategies without an implementation (manual_review, most_recent,
	// temporal_precedence) keep the first item at medium confidence.
	c.ResolvedValue = c.ConflictingItems[0]
	c.ResolutionConfidence = 0.5
	return nil
}

func resolveHighestConfidence(c *Conflict) error {
	if len(c.ConfidenceScores) != len(c.ConflictingItems) {
		return fmt.Errorf("confidence scores do not match items: %d vs %d",
			len(c.ConfidenceScores), len(c.ConflictingItems))
	}
	maxIdx := 0
	for i, score := range c.ConfidenceScores {
		if score > c.ConfidenceScores[maxIdx] {
			maxIdx = i
		}
	}
	c.ResolvedValue = c.ConflictingItems[maxIdx]
	c.ResolutionConfidence = c.ConfidenceScores[maxIdx]
	return nil
}

func resolveVote(c *Conflict) error {
	counts := make(map[string]int)
	for _, item := range c.ConflictingItems {
		counts[itemText(item)]++
	}
	bestIdx := 0
	bestCount := counts[itemText(c.ConflictingItems[0])]
	seen := map[string]struct{}{itemText(c.ConflictingItems[0]): {}}
	for i, item := range c.ConflictingItems[1:] {
		t := itemText(item)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if counts[t] > bestCount {
			bestIdx = i + 1
			bestCount = counts[t]
		}
	}
	c.ResolvedValue = c.ConflictingItems[bestIdx]
	c.ResolutionConfidence = float64(bestCount) / float64(len(c.ConflictingItems))
	return nil
}

func resolveLongestString(c *Conflict, confidence float64) error {
	longest := ""
	found := false
	for _, item := range c.ConflictingItems {
		s, ok := item.(string)
		if !ok {
			return fmt.Errorf("item %v is not a string", item)
		}
		if !found || utf8.RuneCountInString(s) > utf8.RuneCountInString(longest) {
			longest = s
			found = true
		}
	}
	c.ResolvedValue = longest
	c.ResolutionConfidence = confidence
	return nil
}

func resolveAverageNumeric(c *Conflict) error {
	var sum float64
	for _, item := range c.ConflictingItems {
		n, err := numericItem(item)
		if err != nil {
			return err
		}
		sum += n
	}
	c.ResolvedValue = model.Number(sum / float64(len(c.ConflictingItems)))
	c.ResolutionConfidence = 0.8
	return nil
}

func numericItem(item any) (float64, error) {
	switch v := item.(type) {
	case model.Value:
		switch v.Kind {
		case model.KindNumber:
			return v.Num, nil
		case model.KindString:
			return strconv.ParseFloat(v.Str, 64)
		}
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	}
	return 0, fmt.Errorf("item %v is not numeric", item)
}

func resolveUnionLists(c *Conflict) error {
	var merged []string
	seen := make(map[string]struct{})
	for _, item := range c.ConflictingItems {
		v, ok := item.(model.Value)
		if !ok || v.Kind != model.KindList {
			return fmt.Errorf("item %v is not a list", item)
		}
		for _, s := range v.List {
			if _, dup := seen[s]; !dup {
				seen[s] = struct{}{}
				merged = append(merged, s)
			}
		}
	}
	c.ResolvedValue = model.List(merged...)
	c.ResolutionConfidence = 0.9
	return nil
}

func itemText(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case model.Value:
		return v.Text()
	case model.Relation:
		return v.ID
	}
	return fmt.Sprintf("%v", item)
}

func sortedKeys(p model.Properties) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Statistics summarizes a conflict batch: totals by kind and the
// distribution of resolution confidence.
type Statistics struct {
	Total              int            `json:"total"`
	ByKind             map[string]int `json:"by_kind"`
	ResolvedCount      int            `json:"resolved_count"`
	HighConfidence     int            `json:"high_confidence"` // > 0.8
	AverageResolutionC float64        `json:"average_resolution_confidence"`
}

// Summarize computes statistics over a set of conflicts.
func Summarize(conflicts []Conflict) Statistics {
	stats := Statistics{ByKind: make(map[string]int)}
	var total float64
	for _, c := range conflicts {
		stats.Total++
		stats.ByKind[string(c.Kind)]++
		if !c.Resolved() {
			continue
		}
		stats.ResolvedCount++
		total += c.ResolutionConfidence
		if c.ResolutionConfidence > 0.8 {
			stats.HighConfidence++
		}
	}
	if stats.ResolvedCount > 0 {
		stats.AverageResolutionC = total / float64(stats.ResolvedCount)
	}
	return stats
}
