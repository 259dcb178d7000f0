// Package extract turns raw source text into structured insights through
// the LLM collaborator. A missing client, a failed call, an empty response
// and an unparseable response are all treated the same way: the fixed
// fallback insight is substituted and the pipeline continues.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"microlearn/internal/core"
	"microlearn/internal/fallback"
	"microlearn/internal/llm"
	"microlearn/internal/logger"
)

// LLMClient is the narrow generation surface the extractor consumes.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error)
}

// DefaultMaxInsights caps how many insights one extraction requests.
const DefaultMaxInsights = 8

// systemMessage fixes the persona for extraction calls.
const systemMessage = "Você é um especialista em desenvolvimento pessoal que destila textos em princípios práticos e aplicáveis, sempre em português do Brasil."

// Extractor extracts insights from source material.
type Extractor struct {
	client LLMClient // nil means fallback-only operation
	max    int
}

// New creates an extractor. A nil client is valid and produces fallback
// insights only.
func New(client LLMClient) *Extractor {
	return &Extractor{client: client, max: DefaultMaxInsights}
}

// insightSchema constrains the model to the exact JSON shape we unmarshal.
func insightSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"insights": {
				Type:        genai.TypeArray,
				Description: "Lista de princípios extraídos do texto",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"insight": {
							Type:        genai.TypeString,
							Description: "O princípio ou sabedoria em uma frase",
						},
						"application": {
							Type:        genai.TypeString,
							Description: "Como aplicar o princípio na prática",
						},
						"example": {
							Type:        genai.TypeString,
							Description: "Um cenário concreto de aplicação",
						},
						"category": {
							Type:        genai.TypeString,
							Description: "Categoria do princípio, ex.: principle, pillar, strategy",
						},
					},
					Required: []string{"insight", "application", "example", "category"},
				},
			},
		},
		Required: []string{"insights"},
	}
}

// buildPrompt creates the extraction prompt for one piece of source text.
func buildPrompt(title string, content string, max int) string {
	return fmt.Sprintf(`Analise o texto abaixo e extraia até %d princípios de sabedoria prática.

Título: %s

Texto:
%s

Para cada princípio, informe:
- insight: o princípio em uma frase clara
- application: como aplicar no dia a dia
- example: um cenário concreto
- category: principle, pillar ou strategy

Responda apenas com o JSON pedido.`, max, title, content)
}

// Extract returns the insights found in the source text and the
// provenance of the result. It never returns an empty slice and never
// returns an error: every failure path substitutes the fallback insight.
func (e *Extractor) Extract(ctx context.Context, title string, content string) ([]core.Insight, core.Provenance) {
	if e.client == nil {
		logger.Debug("No LLM client configured, using fallback insight")
		return []core.Insight{fallback.Insight()}, core.ProvenanceFallback
	}
	if strings.TrimSpace(content) == "" {
		logger.Warn("Empty source content, using fallback insight", "title", title)
		return []core.Insight{fallback.Insight()}, core.ProvenanceFallback
	}

	response, err := e.client.GenerateText(ctx, buildPrompt(title, content, e.max), llm.TextGenerationOptions{
		SystemMessage:  systemMessage,
		MaxTokens:      2000,
		Temperature:    0.4,
		ResponseSchema: insightSchema(),
	})
	if err != nil {
		logger.Warn("Insight extraction call failed, using fallback insight", "error", err.Error())
		return []core.Insight{fallback.Insight()}, core.ProvenanceFallback
	}

	insights, err := ParseInsights(response)
	if err != nil {
		logger.Warn("Insight extraction response unparseable, using fallback insight", "error", err.Error())
		return []core.Insight{fallback.Insight()}, core.ProvenanceFallback
	}

	if len(insights) > e.max {
		insights = insights[:e.max]
	}
	return insights, core.ProvenanceModel
}

// ParseInsights decodes the extraction response. It accepts the schema
// shape ({"insights": [...]}) as well as a bare JSON array, with or
// without a markdown code fence.
func ParseInsights(response string) ([]core.Insight, error) {
	cleaned := StripCodeFence(response)

	var envelope struct {
		Insights []core.Insight `json:"insights"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err == nil {
		if filtered := nonEmpty(envelope.Insights); len(filtered) > 0 {
			return filtered, nil
		}
	}

	var bare []core.Insight
	if err := json.Unmarshal([]byte(cleaned), &bare); err == nil {
		if filtered := nonEmpty(bare); len(filtered) > 0 {
			return filtered, nil
		}
	}

	return nil, fmt.Errorf("response contains no insights")
}

// StripCodeFence removes a surrounding markdown code fence from a model
// response, tolerating a language tag after the opening fence.
func StripCodeFence(response string) string {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.Index(trimmed, "\n"); newline >= 0 {
		trimmed = trimmed[newline+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// nonEmpty drops entries whose insight text is blank; an all-blank list
// would otherwise slip past the parse check.
func nonEmpty(insights []core.Insight) []core.Insight {
	out := insights[:0]
	for _, insight := range insights {
		if strings.TrimSpace(insight.Insight) != "" {
			out = append(out, insight)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
