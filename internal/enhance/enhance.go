// Package enhance applies the three-way enhancement decision to a
// generated content/quiz pair: keep it, patch it, or rebuild it from the
// source insights. The decision itself always arrives from outside in a
// ValidationResult; nothing here scores content. One call applies exactly
// one transition and the caller owns sequencing.
package enhance

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"microlearn/internal/compliance"
	"microlearn/internal/core"
	"microlearn/internal/fallback"
	"microlearn/internal/logger"
)

// applicationClauseLimit caps the appended application excerpt.
const applicationClauseLimit = 40

// explanationLimit caps rewritten quiz explanations.
const explanationLimit = 250

// regenDistractors are the fixed wrong options used for rebuilt quizzes.
var regenDistractors = [3]string{
	"Ignorar o contexto e improvisar",
	"Esperar que aconteça sozinho",
	"Aplicar apenas uma única vez",
}

// Apply runs one transition on the pair and returns the resulting content
// and questions. The transition is chosen solely by result.Decision; an
// unknown decision behaves like approved. Apply is deterministic and total:
// any insight slice, including an empty one, is acceptable.
func Apply(content string, questions []core.QuizItem, result core.ValidationResult, insights []core.Insight) (string, []core.QuizItem) {
	if len(insights) == 0 {
		insights = []core.Insight{fallback.Insight()}
	}

	switch result.Decision {
	case core.DecisionEnhanced:
		return enhance(content, questions, result.Improvements, insights)
	case core.DecisionRegenerated:
		return regenerate(insights)
	case core.DecisionApproved:
		return content, questions
	default:
		logger.Debug("Unknown enhancement decision, keeping pair unchanged", "decision", string(result.Decision))
		return content, questions
	}
}

// enhance applies bounded textual patches keyed by substring-matching each
// improvement instruction. Instructions that match no known trigger are
// dropped silently; that mirrors the product's current behavior and is
// logged at debug level for review.
func enhance(content string, questions []core.QuizItem, improvements []string, insights []core.Insight) (string, []core.QuizItem) {
	first := insights[0]

	for _, improvement := range improvements {
		folded := strings.ToLower(improvement)
		switch {
		case strings.Contains(folded, "específic") || strings.Contains(folded, "specific"):
			content = appendClause(content, "Exemplos: "+first.Example)
		case strings.Contains(folded, "aplicável") || strings.Contains(folded, "aplicavel") || strings.Contains(folded, "practical"):
			content = appendClause(content, "Aplicação: "+truncateRunes(first.Application, applicationClauseLimit))
		case strings.Contains(folded, "perguntas") || strings.Contains(folded, "questions"):
			questions = rewriteExplanations(questions, insights)
		default:
			logger.Debug("Improvement instruction matched no trigger, ignored", "improvement", improvement)
		}
	}

	return compliance.Enforce(content, compliance.RoleContent), questions
}

// regenerate discards the original pair entirely and rebuilds it from the
// highest-priority insight plus up to two quizzes from the first two.
func regenerate(insights []core.Insight) (string, []core.QuizItem) {
	first := insights[0]
	content := compliance.Enforce(
		fmt.Sprintf("%s. Aplicação prática: %s", first.Insight, first.Application),
		compliance.RoleContent,
	)

	limit := 2
	if len(insights) < limit {
		limit = len(insights)
	}

	questions := make([]core.QuizItem, 0, limit)
	for _, insight := range insights[:limit] {
		questions = append(questions, core.QuizItem{
			Type:     core.ItemTypeQuiz,
			Question: compliance.Enforce(fmt.Sprintf("Como colocar em prática: %s?", insight.Insight), compliance.RoleQuestion),
			Options: []string{
				compliance.Enforce(insight.Application, compliance.RoleOption),
				compliance.Enforce(regenDistractors[0], compliance.RoleOption),
				compliance.Enforce(regenDistractors[1], compliance.RoleOption),
				compliance.Enforce(regenDistractors[2], compliance.RoleOption),
			},
			CorrectAnswer: 0,
			Explanation:   compliance.Enforce(joinApplicationExample(insight), compliance.RoleExplanation),
			Provenance:    core.ProvenanceFallback,
		})
	}

	return content, questions
}

// rewriteExplanations replaces each quiz explanation with text derived
// from the corresponding insight, falling back to the first insight when
// there are more questions than insights.
func rewriteExplanations(questions []core.QuizItem, insights []core.Insight) []core.QuizItem {
	out := make([]core.QuizItem, len(questions))
	for i, question := range questions {
		insight := insights[0]
		if i < len(insights) {
			insight = insights[i]
		}
		question.Explanation = compliance.Enforce(joinApplicationExample(insight), compliance.RoleExplanation)
		out[i] = question
	}
	return out
}

// appendClause appends ". <clause>" to content, trimming the clause so the
// combined text stays within the content budget. When not even a minimal
// excerpt fits, the content is left untouched.
func appendClause(content string, clause string) string {
	max := compliance.BoundsFor(compliance.RoleContent).Max
	content = strings.TrimRight(strings.TrimSpace(content), ".")
	budget := max - utf8.RuneCountInString(content) - 2 // separator ". "
	if budget < 12 {
		return content + "."
	}
	return content + ". " + truncateRunes(strings.TrimSpace(clause), budget)
}

// joinApplicationExample builds the explanation text used by both the
// rewrite and regeneration paths.
func joinApplicationExample(insight core.Insight) string {
	text := strings.TrimSpace(insight.Application)
	if example := strings.TrimSpace(insight.Example); example != "" {
		text = text + ". " + example
	}
	return truncateRunes(text, explanationLimit)
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit]))
}
