// Package generate produces the content cards, quiz questions and quotes
// for one learning level. Generation prompts are built from the selected
// insights and the level's pacing characteristics; any failure on the
// model path degrades to the deterministic fallback templates, so every
// operation here returns usable items no matter what.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"microlearn/internal/compliance"
	"microlearn/internal/core"
	"microlearn/internal/extract"
	"microlearn/internal/fallback"
	"microlearn/internal/levels"
	"microlearn/internal/llm"
	"microlearn/internal/logger"
	"microlearn/internal/selector"
)

// LLMClient is the narrow generation surface this package consumes.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error)
}

// systemMessage fixes the persona and output language for generation calls.
const systemMessage = "Você cria microconteúdo de desenvolvimento pessoal para um aplicativo móvel, em português do Brasil. Cada texto deve caber em um cartão: frases corridas, sem listas, sem quebras de linha."

// Generator builds level items from insights.
type Generator struct {
	client LLMClient // nil means fallback-only operation
}

// New creates a generator. A nil client is valid and produces fallback
// items only.
func New(client LLMClient) *Generator {
	return &Generator{client: client}
}

// ContentCards generates count content cards for the tier. The second
// return value reports whether the cards came from the model or the
// fallback templates.
func (g *Generator) ContentCards(ctx context.Context, topic string, insights []core.Insight, tier selector.Tier, count int) ([]core.ContentItem, core.Provenance) {
	if count <= 0 {
		return []core.ContentItem{}, core.ProvenanceModel
	}

	if g.client != nil {
		if cards, err := g.modelCards(ctx, topic, insights, tier, count); err == nil {
			return cards, core.ProvenanceModel
		} else {
			logger.Warn("Content generation degraded to fallback", "tier", string(tier), "error", err.Error())
		}
	}

	return g.fallbackCards(insights, tier, count), core.ProvenanceFallback
}

// Questions generates count quiz questions for the tier.
func (g *Generator) Questions(ctx context.Context, topic string, insights []core.Insight, tier selector.Tier, count int) ([]core.QuizItem, core.Provenance) {
	if count <= 0 {
		return []core.QuizItem{}, core.ProvenanceModel
	}

	if g.client != nil {
		if questions, err := g.modelQuestions(ctx, topic, insights, tier, count); err == nil {
			return questions, core.ProvenanceModel
		} else {
			logger.Warn("Quiz generation degraded to fallback", "tier", string(tier), "error", err.Error())
		}
	}

	return fallback.Questions(topic, levels.DifficultyFor(tier), count), core.ProvenanceFallback
}

// Quote generates one motivational quote for the journey topic.
func (g *Generator) Quote(ctx context.Context, topic string, insights []core.Insight) (core.ContentItem, core.Provenance) {
	if g.client != nil {
		if quote, err := g.modelQuote(ctx, topic, insights); err == nil {
			return quote, core.ProvenanceModel
		} else {
			logger.Warn("Quote generation degraded to fallback", "error", err.Error())
		}
	}
	return fallback.Quote(), core.ProvenanceFallback
}

// ============================================================================
// Model path
// ============================================================================

func cardSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"cards": {
				Type:        genai.TypeArray,
				Description: "Cartões de conteúdo",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"content": {
							Type:        genai.TypeString,
							Description: "Texto do cartão, 50 a 300 caracteres, uma única linha",
						},
						"tips": {
							Type:        genai.TypeArray,
							Description: "Até três dicas curtas opcionais",
							Items:       &genai.Schema{Type: genai.TypeString},
						},
					},
					Required: []string{"content"},
				},
			},
		},
		Required: []string{"cards"},
	}
}

func questionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"questions": {
				Type:        genai.TypeArray,
				Description: "Perguntas de múltipla escolha",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question": {
							Type:        genai.TypeString,
							Description: "Pergunta com 15 a 120 caracteres",
						},
						"options": {
							Type:        genai.TypeArray,
							Description: "Exatamente quatro opções; a primeira é sempre a correta",
							Items:       &genai.Schema{Type: genai.TypeString},
						},
						"explanation": {
							Type:        genai.TypeString,
							Description: "Explicação da resposta, 30 a 250 caracteres",
						},
					},
					Required: []string{"question", "options", "explanation"},
				},
			},
		},
		Required: []string{"questions"},
	}
}

func quoteSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"content": {
				Type:        genai.TypeString,
				Description: "A citação, 50 a 300 caracteres",
			},
			"author": {
				Type:        genai.TypeString,
				Description: "Autor da citação, ou 'Sabedoria popular' se desconhecido",
			},
		},
		Required: []string{"content", "author"},
	}
}

func (g *Generator) modelCards(ctx context.Context, topic string, insights []core.Insight, tier selector.Tier, count int) ([]core.ContentItem, error) {
	config := levels.Get(tier)
	prompt := fmt.Sprintf(`Crie %d cartões de conteúdo sobre "%s" para o nível %s.

Características do nível: %s.
Foco: %s.

Princípios a transmitir:
%s

Cada cartão tem entre 50 e 300 caracteres, em uma única linha, sem marcadores. Responda apenas com o JSON pedido.`,
		count, topic, tier, strings.Join(config.ContentCharacteristics, "; "),
		strings.Join(config.FocusAreas, "; "), formatInsights(insights))

	response, err := g.client.GenerateText(ctx, prompt, llm.TextGenerationOptions{
		SystemMessage:  systemMessage,
		MaxTokens:      1500,
		Temperature:    0.7,
		ResponseSchema: cardSchema(),
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Cards []struct {
			Content string   `json:"content"`
			Tips    []string `json:"tips"`
		} `json:"cards"`
	}
	if err := json.Unmarshal([]byte(extract.StripCodeFence(response)), &payload); err != nil {
		return nil, fmt.Errorf("card response unparseable: %w", err)
	}
	if len(payload.Cards) == 0 {
		return nil, fmt.Errorf("card response contains no cards")
	}

	cards := make([]core.ContentItem, 0, count)
	for _, card := range payload.Cards {
		if len(cards) == count {
			break
		}
		cards = append(cards, core.ContentItem{
			Type:       core.ItemTypeContent,
			Content:    compliance.Enforce(card.Content, compliance.RoleContent),
			Tips:       compliance.EnforceTips(card.Tips),
			Provenance: core.ProvenanceModel,
		})
	}
	for len(cards) < count {
		cards = append(cards, g.fallbackCards(insights, tier, 1)[0])
	}
	return cards, nil
}

func (g *Generator) modelQuestions(ctx context.Context, topic string, insights []core.Insight, tier selector.Tier, count int) ([]core.QuizItem, error) {
	prompt := fmt.Sprintf(`Crie %d perguntas de múltipla escolha sobre "%s" para o nível %s.

Princípios cobrados:
%s

Cada pergunta tem exatamente quatro opções e a primeira opção é sempre a correta. Responda apenas com o JSON pedido.`,
		count, topic, tier, formatInsights(insights))

	response, err := g.client.GenerateText(ctx, prompt, llm.TextGenerationOptions{
		SystemMessage:  systemMessage,
		MaxTokens:      1500,
		Temperature:    0.6,
		ResponseSchema: questionSchema(),
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Questions []struct {
			Question    string   `json:"question"`
			Options     []string `json:"options"`
			Explanation string   `json:"explanation"`
		} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(extract.StripCodeFence(response)), &payload); err != nil {
		return nil, fmt.Errorf("question response unparseable: %w", err)
	}
	if len(payload.Questions) == 0 {
		return nil, fmt.Errorf("question response contains no questions")
	}

	questions := make([]core.QuizItem, 0, count)
	for _, q := range payload.Questions {
		if len(questions) == count {
			break
		}
		questions = append(questions, core.QuizItem{
			Type:          core.ItemTypeQuiz,
			Question:      compliance.Enforce(q.Question, compliance.RoleQuestion),
			Options:       NormalizeOptions(q.Options),
			CorrectAnswer: 0,
			Explanation:   compliance.Enforce(q.Explanation, compliance.RoleExplanation),
			Provenance:    core.ProvenanceModel,
		})
	}
	if missing := count - len(questions); missing > 0 {
		questions = append(questions, fallback.Questions(topic, levels.DifficultyFor(tier), missing)...)
	}
	return questions, nil
}

func (g *Generator) modelQuote(ctx context.Context, topic string, insights []core.Insight) (core.ContentItem, error) {
	prompt := fmt.Sprintf(`Escolha ou crie uma citação motivacional relacionada a "%s".

Contexto:
%s

Responda apenas com o JSON pedido.`, topic, formatInsights(insights))

	response, err := g.client.GenerateText(ctx, prompt, llm.TextGenerationOptions{
		SystemMessage:  systemMessage,
		MaxTokens:      400,
		Temperature:    0.8,
		ResponseSchema: quoteSchema(),
	})
	if err != nil {
		return core.ContentItem{}, err
	}

	var payload struct {
		Content string `json:"content"`
		Author  string `json:"author"`
	}
	if err := json.Unmarshal([]byte(extract.StripCodeFence(response)), &payload); err != nil {
		return core.ContentItem{}, fmt.Errorf("quote response unparseable: %w", err)
	}
	if strings.TrimSpace(payload.Content) == "" {
		return core.ContentItem{}, fmt.Errorf("quote response is empty")
	}

	author := strings.TrimSpace(payload.Author)
	if author == "" {
		author = "Sabedoria popular"
	}
	return core.ContentItem{
		Type:       core.ItemTypeQuote,
		Content:    compliance.Enforce(payload.Content, compliance.RoleContent),
		Author:     author,
		Provenance: core.ProvenanceModel,
	}, nil
}

// ============================================================================
// Fallback path
// ============================================================================

// fallbackCards builds deterministic cards, one per insight, cycling when
// count exceeds the insight list.
func (g *Generator) fallbackCards(insights []core.Insight, tier selector.Tier, count int) []core.ContentItem {
	difficulty := levels.DifficultyFor(tier)
	cards := make([]core.ContentItem, 0, count)
	for i := 0; i < count; i++ {
		rotated := insights
		if len(insights) > 0 {
			k := i % len(insights)
			rotated = make([]core.Insight, 0, len(insights))
			rotated = append(rotated, insights[k:]...)
			rotated = append(rotated, insights[:k]...)
		}
		cards = append(cards, core.ContentItem{
			Type:       core.ItemTypeContent,
			Content:    fallback.Content(rotated, difficulty),
			Provenance: core.ProvenanceFallback,
		})
	}
	return cards
}

// NormalizeOptions forces the option list to exactly four bounded, unique
// entries, preserving the first (correct) option. Missing or duplicate
// slots are filled with fixed distractors.
func NormalizeOptions(options []string) []string {
	fillers := []string{
		"Nenhuma ação é necessária",
		"Depende apenas de sorte",
		"Evitar o assunto por completo",
		"Adiar a decisão indefinidamente",
	}

	seen := make(map[string]bool, 4)
	out := make([]string, 0, 4)
	for _, option := range options {
		if len(out) == 4 {
			break
		}
		trimmed := compliance.Enforce(option, compliance.RoleOption)
		if seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	for _, filler := range fillers {
		if len(out) == 4 {
			break
		}
		trimmed := compliance.Enforce(filler, compliance.RoleOption)
		if seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}

// formatInsights renders insights as a numbered prompt block.
func formatInsights(insights []core.Insight) string {
	if len(insights) == 0 {
		insights = []core.Insight{fallback.Insight()}
	}
	var b strings.Builder
	for i, insight := range insights {
		fmt.Fprintf(&b, "%d. %s | Aplicação: %s | Exemplo: %s\n", i+1, insight.Insight, insight.Application, insight.Example)
	}
	return b.String()
}
