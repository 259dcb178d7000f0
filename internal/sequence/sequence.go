// Package sequence arranges content, quiz and quote items into the slot
// pattern of a learning level. Assembly is entirely deterministic: given
// the same pools and pattern it always produces the same ordering.
package sequence

import (
	"strings"

	"microlearn/internal/core"
	"microlearn/internal/logger"
)

const (
	// MaxItems is the hard ceiling on items per learning unit.
	MaxItems = 8
	// MinItems is the soft floor; backfill runs until it is met or the
	// pools run dry.
	MinItems = 3
)

// Pools holds the unconsumed items available for assembly, per slot type.
type Pools struct {
	Content []core.ContentItem // Pool for "content" slots
	Quiz    []core.QuizItem    // Pool for "quiz" slots
	Quote   []core.ContentItem // Pool for "quote" slots
}

// total counts items remaining across all pools.
func (p *Pools) total() int {
	return len(p.Content) + len(p.Quiz) + len(p.Quote)
}

// ParsePattern splits a slot-pattern string such as
// "content → quiz → content → quote" into its ordered tokens. Both the
// arrow glyph and "->" are accepted; empty and unknown tokens are dropped.
func ParsePattern(pattern string) []core.ItemType {
	normalized := strings.ReplaceAll(pattern, "->", "→")
	var tokens []core.ItemType
	for _, part := range strings.Split(normalized, "→") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "content":
			tokens = append(tokens, core.ItemTypeContent)
		case "quiz":
			tokens = append(tokens, core.ItemTypeQuiz)
		case "quote":
			tokens = append(tokens, core.ItemTypeQuote)
		case "":
			// Skip artifacts of doubled separators.
		default:
			logger.Debug("Unknown slot token in pattern, skipped", "token", strings.TrimSpace(part))
		}
	}
	return tokens
}

// Assemble walks the pattern consuming one pooled item per matching token.
// Exhausted pools are skipped without stalling; the walk stops early at
// MaxItems. If fewer than MinItems were placed, remaining pool items
// backfill in content, quiz, quote priority order. A non-nil marker is
// prepended as a progress indicator when the assembled count allows it.
func Assemble(pattern string, pools Pools, marker *core.ContentItem) []core.FlexibleItem {
	items := make([]core.FlexibleItem, 0, MaxItems)

	for _, token := range ParsePattern(pattern) {
		if len(items) >= MaxItems {
			break
		}
		if item, ok := take(&pools, token); ok {
			items = append(items, item)
		}
	}

	for len(items) < MinItems && pools.total() > 0 && len(items) < MaxItems {
		for _, token := range []core.ItemType{core.ItemTypeContent, core.ItemTypeQuiz, core.ItemTypeQuote} {
			if item, ok := take(&pools, token); ok {
				items = append(items, item)
				break
			}
		}
	}

	if marker != nil && len(items) < MaxItems {
		items = append([]core.FlexibleItem{core.NewContentSlot(*marker)}, items...)
	}

	return items
}

// take consumes the next item of the given type from its pool. The second
// return value is false when that pool is exhausted.
func take(pools *Pools, token core.ItemType) (core.FlexibleItem, bool) {
	switch token {
	case core.ItemTypeContent:
		if len(pools.Content) == 0 {
			return core.FlexibleItem{}, false
		}
		item := pools.Content[0]
		pools.Content = pools.Content[1:]
		return core.NewContentSlot(item), true
	case core.ItemTypeQuiz:
		if len(pools.Quiz) == 0 {
			return core.FlexibleItem{}, false
		}
		item := pools.Quiz[0]
		pools.Quiz = pools.Quiz[1:]
		return core.NewQuizSlot(item), true
	case core.ItemTypeQuote:
		if len(pools.Quote) == 0 {
			return core.FlexibleItem{}, false
		}
		item := pools.Quote[0]
		pools.Quote = pools.Quote[1:]
		item.Type = core.ItemTypeQuote
		return core.NewContentSlot(item), true
	default:
		return core.FlexibleItem{}, false
	}
}
