// Package selector buckets extracted insights into learning tiers using
// data-driven keyword tables. Matching is plain substring membership over
// case-folded text; no scoring or weighting, first match wins and input
// order is preserved within each group.
package selector

import (
	"sort"
	"strings"
	"unicode/utf8"

	"microlearn/internal/core"
	"microlearn/internal/fallback"
	"microlearn/internal/logger"
)

// Tier is a learning tier of the three-level journey.
type Tier string

const (
	// TierFoundation covers core definitions and first principles.
	TierFoundation Tier = "foundation"
	// TierApplication covers hands-on practice.
	TierApplication Tier = "application"
	// TierMastery covers advanced integration.
	TierMastery Tier = "mastery"
)

// DefaultCap is the maximum number of insights returned per tier.
const DefaultCap = 4

// minPreferred is the match count under which backfill kicks in.
const minPreferred = 3

// KeywordTable maps each tier to its ordered keyword list. Kept as data
// rather than inline conditionals so tests and localization can swap it.
type KeywordTable map[Tier][]string

// DefaultKeywords returns the built-in keyword table, covering both the
// Portuguese source material and English passthrough content.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		TierFoundation: {
			"básico", "basico", "basic", "fundamental", "fundamento",
			"definição", "definicao", "definition", "conceito", "core concept",
			"essencial", "primeiro passo", "começar", "comecar",
		},
		TierApplication: {
			"como", "how to", "aplicar", "apply", "aplicação", "aplicacao",
			"prática", "pratica", "practice", "exercício", "exercicio",
			"rotina", "hábito", "habito", "passo a passo",
		},
		TierMastery: {
			"avançado", "avancado", "advanced", "complexo", "complex",
			"integrar", "integrate", "dominar", "mastery", "maestria",
			"estratégia", "estrategia", "longo prazo", "sistema",
		},
	}
}

// Classify returns the tiers whose keyword lists match the text. Text is
// case-folded before matching. An insight matching several tiers appears
// under each; cross-tier dedup is the caller's responsibility.
func Classify(text string, table KeywordTable) []Tier {
	folded := strings.ToLower(text)
	var tiers []Tier
	for _, tier := range []Tier{TierFoundation, TierApplication, TierMastery} {
		for _, keyword := range table[tier] {
			if strings.Contains(folded, keyword) {
				tiers = append(tiers, tier)
				break
			}
		}
	}
	return tiers
}

// Selector picks insights for a tier against a keyword table.
type Selector struct {
	table KeywordTable
	cap   int
}

// New creates a selector with the default keyword table and cap.
func New() *Selector {
	return &Selector{table: DefaultKeywords(), cap: DefaultCap}
}

// NewWithTable creates a selector with a custom table and cap. A
// non-positive cap falls back to the default.
func NewWithTable(table KeywordTable, cap int) *Selector {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Selector{table: table, cap: cap}
}

// Select returns at most the configured cap of insights for the tier,
// preferring keyword matches in input order, then tier-specific backfill
// from the remainder. An empty input never yields an empty result: the
// fallback insight is substituted so callers always have material.
func (s *Selector) Select(insights []core.Insight, tier Tier) []core.Insight {
	if len(insights) == 0 {
		logger.Debug("No insights to select from, substituting fallback", "tier", string(tier))
		return []core.Insight{fallback.Insight()}
	}

	keywords := s.table[tier]
	matched := make([]core.Insight, 0, len(insights))
	var rest []core.Insight

	for _, insight := range insights {
		haystack := strings.ToLower(insight.Insight + " " + insight.Application)
		if containsAny(haystack, keywords) {
			matched = append(matched, insight)
		} else {
			rest = append(rest, insight)
		}
	}

	if len(matched) < minPreferred {
		matched = append(matched, s.backfill(rest, tier)...)
	}

	// Backfill can come up empty (application filters, nothing qualifies);
	// callers rely on at least one insight whenever the input had any.
	if len(matched) == 0 {
		matched = insights[:1]
	}

	if len(matched) > s.cap {
		matched = matched[:s.cap]
	}
	return matched
}

// backfill orders the unmatched remainder by the tier's secondary rule.
// Foundation prefers the shortest principles (easiest to state), mastery
// the longest (most to integrate), application anything with substance in
// its application field.
func (s *Selector) backfill(rest []core.Insight, tier Tier) []core.Insight {
	switch tier {
	case TierFoundation:
		ordered := make([]core.Insight, len(rest))
		copy(ordered, rest)
		sort.SliceStable(ordered, func(i, j int) bool {
			return wordCount(ordered[i].Insight) < wordCount(ordered[j].Insight)
		})
		return ordered
	case TierApplication:
		var filtered []core.Insight
		for _, insight := range rest {
			if utf8.RuneCountInString(insight.Application) > 50 {
				filtered = append(filtered, insight)
			}
		}
		return filtered
	case TierMastery:
		ordered := make([]core.Insight, len(rest))
		copy(ordered, rest)
		sort.SliceStable(ordered, func(i, j int) bool {
			return utf8.RuneCountInString(ordered[i].Insight) > utf8.RuneCountInString(ordered[j].Insight)
		})
		return ordered
	default:
		return rest
	}
}

func containsAny(haystack string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
