// Package fallback produces minimally valid content without any external
// dependency. It is the last line of defense when no model is configured,
// the model response is empty, or the response fails to parse: every
// function here is total, side-effect free and never returns a
// structurally invalid object.
package fallback

import (
	"fmt"
	"strings"

	"microlearn/internal/compliance"
	"microlearn/internal/core"
)

// genericTopic substitutes empty or whitespace-only topics.
const genericTopic = "desenvolvimento pessoal"

// Insight returns one fixed, fully populated insight. Downstream stages
// assume at least one insight is always available; this guarantees it.
func Insight() core.Insight {
	return core.Insight{
		Insight:     "O crescimento pessoal acontece através de pequenas ações consistentes",
		Application: "Escolha uma pequena ação e pratique todos os dias no mesmo horário",
		Example:     "Dedicar dez minutos por dia à leitura antes de dormir",
		Category:    "principle",
	}
}

// Content builds a deterministic content string from the first insight,
// phrased for the given difficulty. With no insights it falls back to a
// fixed generic sentence. The result is passed through the compliance
// rules before being returned.
func Content(insights []core.Insight, difficulty core.Difficulty) string {
	var text string
	if len(insights) > 0 {
		first := insights[0]
		if difficulty == core.DifficultyAdvanced {
			text = fmt.Sprintf("Estratégia avançada: %s. Na prática: %s", first.Insight, first.Application)
		} else {
			text = fmt.Sprintf("Conceito fundamental: %s. Como aplicar: %s", first.Insight, first.Application)
		}
	} else {
		text = "Todo aprendizado começa com um primeiro passo: escolha um conceito e aplique-o hoje mesmo na sua rotina."
	}
	return compliance.Enforce(text, compliance.RoleContent)
}

// questionTemplates are the fixed quiz shapes, parameterized only by topic.
// The correct option is always first; downstream code never shuffles.
var questionTemplates = []struct {
	question    string
	correct     string
	distractors [3]string
	explanation string
}{
	{
		question:    "Qual é a melhor forma de aplicar %s no dia a dia?",
		correct:     "Praticar de forma consistente",
		distractors: [3]string{"Esperar o momento perfeito", "Aplicar apenas quando for fácil", "Deixar para depois"},
		explanation: "A prática consistente é o que transforma conhecimento sobre %s em resultado real.",
	},
	{
		question:    "O que é mais importante ao começar com %s?",
		correct:     "Dar o primeiro passo, mesmo que pequeno",
		distractors: [3]string{"Dominar toda a teoria antes", "Comparar-se com outras pessoas", "Buscar resultados imediatos"},
		explanation: "Pequenos passos iniciais criam o hábito que sustenta o progresso em %s.",
	},
	{
		question:    "Como manter o progresso em %s ao longo do tempo?",
		correct:     "Revisar e ajustar a prática regularmente",
		distractors: [3]string{"Repetir sempre o mesmo sem avaliar", "Aumentar a intensidade de uma vez", "Confiar apenas na motivação"},
		explanation: "Revisões regulares mantêm a prática de %s alinhada com a sua evolução.",
	},
}

// Questions returns count quiz items built from fixed templates. Templates
// repeat in order when count exceeds the template table. A non-positive
// count yields an empty slice, never nil panics.
func Questions(topic string, difficulty core.Difficulty, count int) []core.QuizItem {
	if count <= 0 {
		return []core.QuizItem{}
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = genericTopic
	}

	items := make([]core.QuizItem, 0, count)
	for i := 0; i < count; i++ {
		tmpl := questionTemplates[i%len(questionTemplates)]
		question := fmt.Sprintf(tmpl.question, topic)
		explanation := fmt.Sprintf(tmpl.explanation, topic)
		if difficulty == core.DifficultyAdvanced {
			explanation += " Em nível avançado, integre essa prática às suas outras rotinas."
		}

		items = append(items, core.QuizItem{
			Type:     core.ItemTypeQuiz,
			Question: compliance.Enforce(question, compliance.RoleQuestion),
			Options: []string{
				compliance.Enforce(tmpl.correct, compliance.RoleOption),
				compliance.Enforce(tmpl.distractors[0], compliance.RoleOption),
				compliance.Enforce(tmpl.distractors[1], compliance.RoleOption),
				compliance.Enforce(tmpl.distractors[2], compliance.RoleOption),
			},
			CorrectAnswer: 0,
			Explanation:   compliance.Enforce(explanation, compliance.RoleExplanation),
			Provenance:    core.ProvenanceFallback,
		})
	}
	return items
}

// Quote returns a fixed motivational quote card.
func Quote() core.ContentItem {
	return core.ContentItem{
		Type:       core.ItemTypeQuote,
		Content:    compliance.Enforce("A jornada de mil milhas começa com um único passo, dado com intenção e repetido com constância.", compliance.RoleContent),
		Author:     "Lao Tsé",
		Provenance: core.ProvenanceFallback,
	}
}

// Validation returns the neutral validation outcome used when the
// validation stage itself is unavailable: approve and move on.
func Validation() core.ValidationResult {
	return core.ValidationResult{
		Decision:        core.DecisionApproved,
		RelevanceScore:  0.7,
		EnrichmentScore: 0.7,
		Improvements:    []string{},
		Reasoning:       "Validação indisponível; conteúdo aprovado pelo caminho determinístico.",
		Provenance:      core.ProvenanceFallback,
	}
}
