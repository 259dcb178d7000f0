// Package pipeline orchestrates the full generation flow for one piece of
// source material: extraction → tier selection → generation → compliance →
// validation → enhancement → assembly → narrative threading. All state is
// carried in an explicit Context; there are no package-level caches, so
// concurrent runs only need separate Context values.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"microlearn/internal/config"
	"microlearn/internal/core"
	"microlearn/internal/enhance"
	"microlearn/internal/extract"
	"microlearn/internal/generate"
	"microlearn/internal/levels"
	"microlearn/internal/llm"
	"microlearn/internal/logger"
	"microlearn/internal/narrative"
	"microlearn/internal/selector"
	"microlearn/internal/sequence"
	"microlearn/internal/sources"
	"microlearn/internal/validate"
)

// LLMClient is the generation surface shared by every stage.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error)
}

// maxChunks bounds how many chunks of a long document are sent to
// extraction before the insight budget applies.
const maxChunks = 3

// tierLabels are the display names used in unit titles.
var tierLabels = map[selector.Tier]string{
	selector.TierFoundation:  "Fundamentos",
	selector.TierApplication: "Aplicação",
	selector.TierMastery:     "Maestria",
}

// Journey is the packaged result of one pipeline run: one learning unit
// per tier plus the narrative thread connecting them.
type Journey struct {
	ID         string               `json:"id"`         // Unique journey identifier
	Topic      string               `json:"topic"`      // Source material title
	SourcePath string               `json:"sourcePath"` // Where the material came from
	Thread     core.NarrativeThread `json:"thread"`     // Connective narrative text
	Units      []core.LearningUnit  `json:"units"`      // One unit per tier, journey order
	Insights   []core.Insight       `json:"insights"`   // Deduplicated extracted insights
	Provenance core.Provenance      `json:"provenance"` // Worst case across all stages
}

// Context carries everything one pipeline run needs. Build one per run (or
// reuse across runs with the same configuration); there is no hidden
// shared state behind it.
type Context struct {
	cfg       *config.Config
	extractor *extract.Extractor
	generator *generate.Generator
	validator *validate.Validator
	selector  *selector.Selector
}

// NewContext wires the pipeline stages for the given configuration and
// optional LLM client. A nil client yields a fully deterministic
// fallback-only pipeline.
func NewContext(cfg *config.Config, client LLMClient) *Context {
	return &Context{
		cfg:       cfg,
		extractor: extract.New(client),
		generator: generate.New(client),
		validator: validate.New(client),
		selector:  selector.New(),
	}
}

// Run executes the full pipeline for one piece of source material.
func (c *Context) Run(ctx context.Context, material *sources.Material) (*Journey, error) {
	if material == nil {
		return nil, fmt.Errorf("material is nil")
	}

	journeyID := uuid.NewString()
	topic := material.Title
	logger.Info("Pipeline run started", "journey_id", journeyID, "topic", topic, "format", material.Format)

	insights, provenance := c.extractInsights(ctx, material)
	thread := narrative.Build(topic)

	units := make([]core.LearningUnit, 0, len(levels.Order))
	for i, tier := range levels.Order {
		unit := c.buildUnit(ctx, journeyID, topic, tier, i, insights, thread)
		if unit.Metadata.ContentSource == string(core.ProvenanceFallback) {
			provenance = core.ProvenanceFallback
		}
		units = append(units, unit)
	}

	logger.Info("Pipeline run finished", "journey_id", journeyID, "units", len(units), "insights", len(insights), "provenance", string(provenance))
	return &Journey{
		ID:         journeyID,
		Topic:      topic,
		SourcePath: material.Path,
		Thread:     thread,
		Units:      units,
		Insights:   insights,
		Provenance: provenance,
	}, nil
}

// extractInsights chunks long material, extracts per chunk and dedups by
// insight text. The configured insight budget caps the result.
func (c *Context) extractInsights(ctx context.Context, material *sources.Material) ([]core.Insight, core.Provenance) {
	chunks := sources.Chunk(material.Content, c.cfg.Content.ChunkSize, c.cfg.Content.ChunkOverlap)
	if len(chunks) > maxChunks {
		chunks = chunks[:maxChunks]
	}

	provenance := core.ProvenanceModel
	var all []core.Insight
	for _, chunk := range chunks {
		insights, chunkProvenance := c.extractor.Extract(ctx, material.Title, chunk)
		if chunkProvenance == core.ProvenanceFallback {
			provenance = core.ProvenanceFallback
		}
		all = append(all, insights...)
		if len(all) >= c.cfg.Content.MaxInsights {
			break
		}
	}

	deduped := dedupeInsights(all)
	if len(deduped) > c.cfg.Content.MaxInsights {
		deduped = deduped[:c.cfg.Content.MaxInsights]
	}
	return deduped, provenance
}

// buildUnit generates, validates, enhances and assembles one tier's unit.
func (c *Context) buildUnit(ctx context.Context, journeyID string, topic string, tier selector.Tier, position int, insights []core.Insight, thread core.NarrativeThread) core.LearningUnit {
	selected := c.selector.Select(insights, tier)

	// The validation/enhancement pair below needs cards[0]; a
	// hand-constructed config can carry a zero card count past Load's
	// validation, so floor it here.
	cardCount := c.cfg.Content.ContentCards
	if cardCount < 1 {
		cardCount = 1
	}
	cards, cardProvenance := c.generator.ContentCards(ctx, topic, selected, tier, cardCount)
	questions, quizProvenance := c.generator.Questions(ctx, topic, selected, tier, c.cfg.Content.QuizQuestions)
	quote, quoteProvenance := c.generator.Quote(ctx, topic, selected)

	validation := c.validator.Validate(ctx, cards[0].Content, questions, selected)
	logger.Debug("Validation decision", "tier", string(tier), "decision", string(validation.Decision), "relevance", validation.RelevanceScore)

	content, questions := enhance.Apply(cards[0].Content, questions, validation, selected)
	cards[0].Content = content

	pools := sequence.Pools{
		Content: cards,
		Quiz:    questions,
		Quote:   []core.ContentItem{quote},
	}
	items := sequence.Assemble(levels.Get(tier).Sequence, pools, narrative.ProgressMarker(thread, tier))

	contentSource := core.ProvenanceModel
	for _, provenance := range []core.Provenance{cardProvenance, quizProvenance, quoteProvenance, validation.Provenance} {
		if provenance == core.ProvenanceFallback {
			contentSource = core.ProvenanceFallback
			break
		}
	}

	unit := core.LearningUnit{
		Title:             fmt.Sprintf("%s — Nível %d: %s", topic, position+1, tierLabels[tier]),
		Dimension:         c.cfg.Content.Dimension,
		Archetype:         c.cfg.Content.Archetype,
		RelatedToType:     "journey",
		RelatedToID:       journeyID,
		EstimatedDuration: levels.EstimatedDuration(tier, len(items), sequence.MaxItems),
		CoinsReward:       c.cfg.Content.CoinsPerItem * len(items),
		FlexibleItems:     items,
		Metadata: core.UnitMetadata{
			Language:        c.cfg.Content.Language,
			Region:          c.cfg.Content.Region,
			Version:         c.cfg.Content.Version,
			GeneratedAt:     time.Now().UTC(),
			ContentSource:   string(contentSource),
			ValidationScore: validation.RelevanceScore,
		},
	}
	return unit
}

// dedupeInsights keeps the first occurrence of each insight text,
// case-folded. Cross-tier dedup happens here, at the caller, because the
// selector deliberately allows one insight to match several tiers.
func dedupeInsights(insights []core.Insight) []core.Insight {
	seen := make(map[string]bool, len(insights))
	out := make([]core.Insight, 0, len(insights))
	for _, insight := range insights {
		key := strings.ToLower(strings.TrimSpace(insight.Insight))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, insight)
	}
	return out
}
