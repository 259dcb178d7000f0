// Package levels holds the static per-tier configuration of the learning
// journey: slot patterns, pacing, focus areas and the prompts' tone notes.
// The table is defined once and never mutated at runtime.
package levels

import (
	"microlearn/internal/core"
	"microlearn/internal/selector"
)

// Order is the canonical journey order of the tiers.
var Order = []selector.Tier{selector.TierFoundation, selector.TierApplication, selector.TierMastery}

// Get returns the configuration for the given tier. Unknown tiers get the
// foundation configuration.
func Get(tier selector.Tier) core.LevelConfig {
	switch tier {
	case selector.TierApplication:
		return core.LevelConfig{
			Difficulty:    string(core.DifficultyAdvanced),
			Sequence:      "content → quiz → content → quiz → quote → content",
			DurationRange: [2]int{240, 360},
			FocusAreas: []string{
				"prática deliberada",
				"aplicação em situações reais",
				"construção de hábitos",
			},
			ContentCharacteristics: []string{
				"orientado a ação",
				"exemplos concretos do cotidiano",
				"passos numerados convertidos em frases corridas",
			},
		}
	case selector.TierMastery:
		return core.LevelConfig{
			Difficulty:    string(core.DifficultyAdvanced),
			Sequence:      "content → content → quiz → quote → content → quiz",
			DurationRange: [2]int{300, 420},
			FocusAreas: []string{
				"integração entre conceitos",
				"estratégia de longo prazo",
				"ensinar e multiplicar o aprendizado",
			},
			ContentCharacteristics: []string{
				"nuances e exceções",
				"conexões entre princípios",
				"reflexão profunda",
			},
		}
	default:
		return core.LevelConfig{
			Difficulty:    string(core.DifficultyBeginner),
			Sequence:      "content → quiz → content → quote",
			DurationRange: [2]int{180, 300},
			FocusAreas: []string{
				"conceitos essenciais",
				"definições claras",
				"primeiros passos",
			},
			ContentCharacteristics: []string{
				"linguagem simples e acolhedora",
				"uma ideia por cartão",
				"sem jargão",
			},
		}
	}
}

// DifficultyFor maps a tier to the two-level difficulty used by the
// generators: foundation is beginner, everything above is advanced.
func DifficultyFor(tier selector.Tier) core.Difficulty {
	if tier == selector.TierFoundation {
		return core.DifficultyBeginner
	}
	return core.DifficultyAdvanced
}

// EstimatedDuration returns a duration in seconds inside the tier's range,
// scaled by how full the unit is relative to the maximum item count.
func EstimatedDuration(tier selector.Tier, itemCount int, maxItems int) int {
	config := Get(tier)
	min, max := config.DurationRange[0], config.DurationRange[1]
	if maxItems <= 0 || itemCount <= 0 {
		return min
	}
	if itemCount > maxItems {
		itemCount = maxItems
	}
	return min + (max-min)*itemCount/maxItems
}
