// Package validate scores a generated content/quiz pair for relevance and
// enrichment and produces the three-way enhancement decision. The scoring
// itself is delegated to the LLM collaborator; this package only builds
// the prompt, parses the result and degrades to an approving fallback when
// the collaborator is absent or fails.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"microlearn/internal/core"
	"microlearn/internal/extract"
	"microlearn/internal/fallback"
	"microlearn/internal/llm"
	"microlearn/internal/logger"
)

// LLMClient is the narrow generation surface the validator consumes.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error)
}

// Decision thresholds used when the model returns scores but an unusable
// decision string.
const (
	approveThreshold = 0.8
	enhanceThreshold = 0.5
)

// systemMessage fixes the reviewer persona for validation calls.
const systemMessage = "Você revisa microconteúdo de desenvolvimento pessoal, avaliando relevância e riqueza do material em relação aos princípios de origem. Seja criterioso e objetivo, em português do Brasil."

// Validator checks content/quiz pairs against their source insights.
type Validator struct {
	client LLMClient // nil means every pair is approved via fallback
}

// New creates a validator. A nil client is valid; it approves everything.
func New(client LLMClient) *Validator {
	return &Validator{client: client}
}

func validationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"decision": {
				Type:        genai.TypeString,
				Description: "approved quando o conteúdo está pronto; enhanced quando precisa de ajustes pontuais; regenerated quando deve ser refeito",
				Enum:        []string{"approved", "enhanced", "regenerated"},
			},
			"relevance_score": {
				Type:        genai.TypeNumber,
				Description: "Quão relevante o conteúdo é para os princípios, de 0.0 a 1.0",
			},
			"enrichment_score": {
				Type:        genai.TypeNumber,
				Description: "Quão rico e específico o conteúdo é, de 0.0 a 1.0",
			},
			"improvements": {
				Type:        genai.TypeArray,
				Description: "Instruções de melhoria, em ordem de prioridade",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
			"reasoning": {
				Type:        genai.TypeString,
				Description: "Justificativa da decisão",
			},
		},
		Required: []string{"decision", "relevance_score", "enrichment_score", "reasoning"},
	}
}

func buildPrompt(content string, questions []core.QuizItem, insights []core.Insight) string {
	var b strings.Builder
	b.WriteString("Avalie o conteúdo abaixo em relação aos princípios de origem.\n\n")

	b.WriteString("CONTEÚDO:\n")
	b.WriteString(content)
	b.WriteString("\n\nPERGUNTAS:\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s (correta: %s)\n", i+1, q.Question, firstOption(q))
	}

	b.WriteString("\nPRINCÍPIOS DE ORIGEM:\n")
	for i, insight := range insights {
		fmt.Fprintf(&b, "%d. %s | Aplicação: %s\n", i+1, insight.Insight, insight.Application)
	}

	b.WriteString("\nResponda apenas com o JSON pedido.")
	return b.String()
}

// Validate scores the pair and returns the enhancement decision. It never
// returns an error: when the collaborator is missing, errors out or
// returns an unparseable response, the approving fallback result is used.
func (v *Validator) Validate(ctx context.Context, content string, questions []core.QuizItem, insights []core.Insight) core.ValidationResult {
	if v.client == nil {
		return fallback.Validation()
	}

	response, err := v.client.GenerateText(ctx, buildPrompt(content, questions, insights), llm.TextGenerationOptions{
		SystemMessage:  systemMessage,
		MaxTokens:      800,
		Temperature:    0.2,
		ResponseSchema: validationSchema(),
	})
	if err != nil {
		logger.Warn("Validation call failed, approving via fallback", "error", err.Error())
		return fallback.Validation()
	}

	result, err := ParseResult(response)
	if err != nil {
		logger.Warn("Validation response unparseable, approving via fallback", "error", err.Error())
		return fallback.Validation()
	}
	return result
}

// ParseResult decodes a validation response, clamping scores to [0,1] and
// deriving the decision from the relevance score when the decision string
// is not one of the three known values.
func ParseResult(response string) (core.ValidationResult, error) {
	var result core.ValidationResult
	if err := json.Unmarshal([]byte(extract.StripCodeFence(response)), &result); err != nil {
		return core.ValidationResult{}, fmt.Errorf("validation response unparseable: %w", err)
	}

	result.RelevanceScore = clamp(result.RelevanceScore)
	result.EnrichmentScore = clamp(result.EnrichmentScore)
	if result.Improvements == nil {
		result.Improvements = []string{}
	}

	switch result.Decision {
	case core.DecisionApproved, core.DecisionEnhanced, core.DecisionRegenerated:
	default:
		result.Decision = decisionFromScore(result.RelevanceScore)
	}

	result.Provenance = core.ProvenanceModel
	return result, nil
}

// decisionFromScore maps a relevance score onto the decision ladder.
func decisionFromScore(score float64) core.Decision {
	switch {
	case score >= approveThreshold:
		return core.DecisionApproved
	case score >= enhanceThreshold:
		return core.DecisionEnhanced
	default:
		return core.DecisionRegenerated
	}
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func firstOption(q core.QuizItem) string {
	if len(q.Options) == 0 {
		return ""
	}
	return q.Options[0]
}
