package generate

import (
	"context"
	"errors"
	"testing"

	"microlearn/internal/compliance"
	"microlearn/internal/core"
	"microlearn/internal/llm"
	"microlearn/internal/selector"
)

type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

var testInsights = []core.Insight{
	{
		Insight:     "A consistência supera a intensidade",
		Application: "Reserve dez minutos por dia para a prática",
		Example:     "Ler uma página toda manhã",
		Category:    "principle",
	},
	{
		Insight:     "Ambientes moldam comportamentos",
		Application: "Deixe os gatilhos certos à vista",
		Example:     "Livro na mesa de cabeceira",
		Category:    "strategy",
	},
}

func TestContentCardsModelPath(t *testing.T) {
	client := &fakeClient{response: `{"cards": [
		{"content": "A consistência diária constrói resultados que a intensidade ocasional nunca alcança.", "tips": ["Comece com dez minutos por dia"]},
		{"content": "O ambiente certo faz o comportamento desejado virar o caminho de menor resistência."}
	]}`}

	cards, provenance := New(client).ContentCards(context.Background(), "hábitos", testInsights, selector.TierFoundation, 2)
	if provenance != core.ProvenanceModel {
		t.Errorf("Expected model provenance, got %s", provenance)
	}
	if len(cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(cards))
	}
	for i, card := range cards {
		if !compliance.Compliant(card.Content, compliance.RoleContent) {
			t.Errorf("Card %d not compliant: %q", i, card.Content)
		}
		if card.Provenance != core.ProvenanceModel {
			t.Errorf("Card %d: expected model provenance, got %s", i, card.Provenance)
		}
	}
	if len(cards[0].Tips) != 1 {
		t.Errorf("Expected 1 tip on the first card, got %d", len(cards[0].Tips))
	}
}

func TestContentCardsNilClientFallsBack(t *testing.T) {
	cards, provenance := New(nil).ContentCards(context.Background(), "hábitos", testInsights, selector.TierFoundation, 3)
	if provenance != core.ProvenanceFallback {
		t.Errorf("Expected fallback provenance, got %s", provenance)
	}
	if len(cards) != 3 {
		t.Fatalf("Expected 3 fallback cards, got %d", len(cards))
	}
	for i, card := range cards {
		if !compliance.Compliant(card.Content, compliance.RoleContent) {
			t.Errorf("Card %d not compliant: %q", i, card.Content)
		}
		if card.Provenance != core.ProvenanceFallback {
			t.Errorf("Card %d: expected fallback provenance, got %s", i, card.Provenance)
		}
	}
	// Cycling over the insights must produce distinct cards, not one
	// repeated card.
	if cards[0].Content == cards[1].Content {
		t.Error("Expected fallback cards to rotate insights")
	}
}

func TestContentCardsClientErrorFallsBack(t *testing.T) {
	client := &fakeClient{err: errors.New("timeout")}
	cards, provenance := New(client).ContentCards(context.Background(), "hábitos", testInsights, selector.TierApplication, 2)
	if provenance != core.ProvenanceFallback {
		t.Errorf("Expected fallback provenance after error, got %s", provenance)
	}
	if len(cards) != 2 {
		t.Errorf("Expected 2 cards, got %d", len(cards))
	}
}

func TestContentCardsUnparseableResponseFallsBack(t *testing.T) {
	client := &fakeClient{response: "não consegui gerar"}
	cards, provenance := New(client).ContentCards(context.Background(), "hábitos", testInsights, selector.TierFoundation, 1)
	if provenance != core.ProvenanceFallback {
		t.Errorf("Expected fallback provenance, got %s", provenance)
	}
	if len(cards) != 1 {
		t.Errorf("Expected 1 card, got %d", len(cards))
	}
}

func TestContentCardsTopsUpShortResponse(t *testing.T) {
	client := &fakeClient{response: `{"cards": [
		{"content": "Um único cartão vindo do modelo com texto suficiente para o orçamento do cartão."}
	]}`}

	cards, provenance := New(client).ContentCards(context.Background(), "hábitos", testInsights, selector.TierFoundation, 3)
	if provenance != core.ProvenanceModel {
		t.Errorf("Expected model provenance for a partially model-built set, got %s", provenance)
	}
	if len(cards) != 3 {
		t.Fatalf("Expected short response topped up to 3 cards, got %d", len(cards))
	}
	if cards[1].Provenance != core.ProvenanceFallback || cards[2].Provenance != core.ProvenanceFallback {
		t.Error("Expected top-up cards marked as fallback")
	}
}

func TestContentCardsZeroCount(t *testing.T) {
	client := &fakeClient{response: "ignored"}
	cards, _ := New(client).ContentCards(context.Background(), "hábitos", testInsights, selector.TierFoundation, 0)
	if len(cards) != 0 {
		t.Errorf("Expected no cards for zero count, got %d", len(cards))
	}
	if client.calls != 0 {
		t.Error("Expected no model call for zero count")
	}
}

func TestQuestionsModelPath(t *testing.T) {
	client := &fakeClient{response: `{"questions": [
		{"question": "O que sustenta o progresso de longo prazo?", "options": ["Consistência diária", "Sorte", "Talento", "Pressa"], "explanation": "A repetição diária consolida o comportamento até virar parte da rotina."}
	]}`}

	questions, provenance := New(client).Questions(context.Background(), "hábitos", testInsights, selector.TierFoundation, 1)
	if provenance != core.ProvenanceModel {
		t.Errorf("Expected model provenance, got %s", provenance)
	}
	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}

	q := questions[0]
	if q.CorrectAnswer != 0 {
		t.Errorf("Expected correct answer at index 0, got %d", q.CorrectAnswer)
	}
	if len(q.Options) != 4 {
		t.Errorf("Expected 4 options, got %d", len(q.Options))
	}
	if !compliance.Compliant(q.Question, compliance.RoleQuestion) {
		t.Errorf("Question not compliant: %q", q.Question)
	}
	if !compliance.Compliant(q.Explanation, compliance.RoleExplanation) {
		t.Errorf("Explanation not compliant: %q", q.Explanation)
	}
}

func TestQuestionsFallback(t *testing.T) {
	questions, provenance := New(nil).Questions(context.Background(), "hábitos", testInsights, selector.TierMastery, 2)
	if provenance != core.ProvenanceFallback {
		t.Errorf("Expected fallback provenance, got %s", provenance)
	}
	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if q.CorrectAnswer != 0 || len(q.Options) != 4 {
			t.Errorf("Question %d: unexpected shape %+v", i, q)
		}
	}
}

func TestQuoteModelPath(t *testing.T) {
	client := &fakeClient{response: `{"content": "O que você repete todos os dias define quem você se torna ao longo dos anos.", "author": "Provérbio"}`}

	quote, provenance := New(client).Quote(context.Background(), "hábitos", testInsights)
	if provenance != core.ProvenanceModel {
		t.Errorf("Expected model provenance, got %s", provenance)
	}
	if quote.Type != core.ItemTypeQuote {
		t.Errorf("Expected quote type, got %s", quote.Type)
	}
	if quote.Author != "Provérbio" {
		t.Errorf("Expected author preserved, got %q", quote.Author)
	}
	if !compliance.Compliant(quote.Content, compliance.RoleContent) {
		t.Errorf("Quote not compliant: %q", quote.Content)
	}
}

func TestQuoteMissingAuthorGetsDefault(t *testing.T) {
	client := &fakeClient{response: `{"content": "O que você repete todos os dias define quem você se torna ao longo dos anos.", "author": "  "}`}

	quote, _ := New(client).Quote(context.Background(), "hábitos", testInsights)
	if quote.Author != "Sabedoria popular" {
		t.Errorf("Expected default author, got %q", quote.Author)
	}
}

func TestQuoteFallback(t *testing.T) {
	quote, provenance := New(nil).Quote(context.Background(), "hábitos", testInsights)
	if provenance != core.ProvenanceFallback {
		t.Errorf("Expected fallback provenance, got %s", provenance)
	}
	if quote.Content == "" || quote.Author == "" {
		t.Errorf("Expected populated fallback quote, got %+v", quote)
	}
}

func TestNormalizeOptions(t *testing.T) {
	tests := []struct {
		name  string
		input []string
	}{
		{"exact four", []string{"Praticar hoje", "Esperar", "Adiar", "Desistir"}},
		{"too few", []string{"Praticar hoje"}},
		{"empty", nil},
		{"duplicates", []string{"Praticar hoje", "Praticar hoje", "Esperar"}},
		{"too many", []string{"Um dos caminhos", "Outro caminho", "Mais um caminho", "Quarto caminho", "Quinto caminho"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NormalizeOptions(tt.input)
			if len(out) != 4 {
				t.Fatalf("Expected exactly 4 options, got %d", len(out))
			}
			seen := make(map[string]bool)
			for i, option := range out {
				if seen[option] {
					t.Errorf("Duplicate option %q", option)
				}
				seen[option] = true
				if !compliance.Compliant(option, compliance.RoleOption) {
					t.Errorf("Option %d not compliant: %q", i, option)
				}
			}
			if len(tt.input) > 0 {
				if want := compliance.Enforce(tt.input[0], compliance.RoleOption); out[0] != want {
					t.Errorf("Expected first option preserved as %q, got %q", want, out[0])
				}
			}
		})
	}
}
