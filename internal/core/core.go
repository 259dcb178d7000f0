package core

import "time"

// Provenance records whether a generated artifact came from the model or
// from the deterministic fallback path. Callers use it to distinguish real
// output from degraded output without inspecting the text itself.
type Provenance string

const (
	// ProvenanceModel marks content produced by the LLM collaborator.
	ProvenanceModel Provenance = "model"
	// ProvenanceFallback marks content produced by the deterministic fallback templates.
	ProvenanceFallback Provenance = "fallback"
)

// Difficulty is the pacing level content is generated for.
type Difficulty string

const (
	// DifficultyBeginner targets readers new to the material.
	DifficultyBeginner Difficulty = "beginner"
	// DifficultyAdvanced targets readers past the basics.
	DifficultyAdvanced Difficulty = "advanced"
)

// ItemType identifies the kind of a flexible item slot.
type ItemType string

const (
	// ItemTypeContent is a short displayable text card.
	ItemTypeContent ItemType = "content"
	// ItemTypeQuiz is a multiple-choice question.
	ItemTypeQuiz ItemType = "quiz"
	// ItemTypeQuote is a motivational quote card.
	ItemTypeQuote ItemType = "quote"
)

// Insight represents one extracted nugget of source wisdom.
// Instances are created by the extraction stage and immutable thereafter;
// they are passed by value into the generators.
type Insight struct {
	Insight     string `json:"insight"`     // The principle or wisdom itself
	Application string `json:"application"` // How to apply it in practice
	Example     string `json:"example"`     // A concrete scenario
	Category    string `json:"category"`    // Open-ended tag, e.g. "principle", "pillar", "strategy"
}

// ContentItem is a displayable unit of text bound to the mobile UI schema.
// Content must fall in [50,300] characters with no newlines or bullet
// markers; the compliance rules guarantee this before emission.
type ContentItem struct {
	Type       ItemType   `json:"type"`             // ItemTypeContent or ItemTypeQuote
	Content    string     `json:"content"`          // The card text, 50-300 chars, single line
	Author     string     `json:"author,omitempty"` // Optional attribution (quotes)
	Tips       []string   `json:"tips,omitempty"`   // Optional short tips, each length-bounded
	Provenance Provenance `json:"-"`                // model or fallback; not serialized
}

// QuizItem is a multiple-choice question.
//
// CorrectAnswer is always 0: every generation path places the correct
// option first. This is a deliberate product simplification (no answer
// shuffling anywhere), kept as-is pending product review.
type QuizItem struct {
	Type          ItemType   `json:"type"`          // Always ItemTypeQuiz
	Question      string     `json:"question"`      // 15-120 chars
	Options       []string   `json:"options"`       // Exactly 4, each 3-60 chars, unique after trimming
	CorrectAnswer int        `json:"correctAnswer"` // Index into Options, always 0
	Explanation   string     `json:"explanation"`   // 30-250 chars
	Provenance    Provenance `json:"-"`             // model or fallback; not serialized
}

// Decision is the three-way outcome of a content quality check.
type Decision string

const (
	// DecisionApproved keeps the content/quiz pair unchanged.
	DecisionApproved Decision = "approved"
	// DecisionEnhanced applies bounded textual patches to the pair.
	DecisionEnhanced Decision = "enhanced"
	// DecisionRegenerated discards the pair and rebuilds it from insights.
	DecisionRegenerated Decision = "regenerated"
)

// ValidationResult is the outcome of a relevance/enrichment check on a
// content/quiz pair. Produced once per pair by the validation stage and
// consumed immediately by the enhancement decision handlers; not persisted.
type ValidationResult struct {
	Decision        Decision   `json:"decision"`         // approved, enhanced or regenerated
	RelevanceScore  float64    `json:"relevance_score"`  // 0.0-1.0
	EnrichmentScore float64    `json:"enrichment_score"` // 0.0-1.0
	Improvements    []string   `json:"improvements"`     // Free-text improvement instructions, in order
	Reasoning       string     `json:"reasoning"`        // Why this decision was made
	Provenance      Provenance `json:"-"`                // model or fallback
}

// LevelConfig is the static configuration for one learning tier.
// Defined once at process start; never mutated.
type LevelConfig struct {
	Difficulty             string   // "beginner" or "advanced"
	Sequence               string   // Slot pattern, e.g. "content → quiz → content → quote"
	DurationRange          [2]int   // Min/max estimated duration in seconds
	FocusAreas             []string // What this tier emphasizes
	ContentCharacteristics []string // Tone and pacing notes for generation prompts
}

// NarrativeThread is the cross-level connective text for one journey.
// Built once per journey and referenced by each level's assembled unit.
type NarrativeThread struct {
	OpeningHook       string            `json:"opening_hook"`       // Journey opener shown before the first level
	Transitions       map[string]string `json:"transitions"`        // Level name -> transition text into that level
	ProgressMarkers   map[string]string `json:"progress_markers"`   // Level name -> progress marker content
	ClosingReflection string            `json:"closing_reflection"` // Shown after the last level
}

// UnitMetadata describes the packaging context of a learning unit.
type UnitMetadata struct {
	Language        string    `json:"language"`         // e.g. "pt-BR"
	Region          string    `json:"region"`           // e.g. "BR"
	Version         string    `json:"version"`          // Schema/content version string
	GeneratedAt     time.Time `json:"generated_at"`     // When the unit was assembled
	ContentSource   string    `json:"content_source"`   // model or fallback, worst case across items
	ValidationScore float64   `json:"validation_score"` // Relevance score from the validation stage
}

// LearningUnit is one assembled micro-learning package for a single tier.
// FlexibleItems holds at most 8 entries, each a ContentItem or QuizItem.
type LearningUnit struct {
	Title             string         `json:"title"`             // Display title
	Dimension         string         `json:"dimension"`         // Persona dimension, e.g. "mentalHealth"
	Archetype         string         `json:"archetype"`         // Persona archetype, e.g. "sage"
	RelatedToType     string         `json:"relatedToType"`     // Type of the related entity
	RelatedToID       string         `json:"relatedToId"`       // ID of the related entity
	EstimatedDuration int            `json:"estimatedDuration"` // Seconds
	CoinsReward       int            `json:"coinsReward"`       // Gamification reward
	FlexibleItems     []FlexibleItem `json:"flexibleItems"`     // Ordered items, max 8
	Metadata          UnitMetadata   `json:"metadata"`          // Packaging metadata
}

// FlexibleItem is a tagged union over the item kinds that can occupy a
// slot in a learning unit. Exactly one of Content or Quiz is set,
// discriminated by Kind.
type FlexibleItem struct {
	Kind    ItemType     `json:"-"` // Discriminator; serialization uses the embedded item's own type field
	Content *ContentItem `json:"-"` // Set when Kind is content or quote
	Quiz    *QuizItem    `json:"-"` // Set when Kind is quiz
}

// NewContentSlot wraps a ContentItem as a flexible item, normalizing its
// type tag to content unless it is a quote.
func NewContentSlot(item ContentItem) FlexibleItem {
	if item.Type != ItemTypeQuote {
		item.Type = ItemTypeContent
	}
	return FlexibleItem{Kind: item.Type, Content: &item}
}

// NewQuizSlot wraps a QuizItem as a flexible item.
func NewQuizSlot(item QuizItem) FlexibleItem {
	item.Type = ItemTypeQuiz
	return FlexibleItem{Kind: ItemTypeQuiz, Quiz: &item}
}

// Provenance reports the provenance of whichever item occupies the slot.
func (f FlexibleItem) Provenance() Provenance {
	switch {
	case f.Quiz != nil:
		return f.Quiz.Provenance
	case f.Content != nil:
		return f.Content.Provenance
	default:
		return ProvenanceFallback
	}
}
