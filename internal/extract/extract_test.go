package extract

import (
	"context"
	"errors"
	"testing"

	"microlearn/internal/core"
	"microlearn/internal/llm"
)

// fakeClient returns a canned response or error and records the last prompt.
type fakeClient struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeClient) GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const validResponse = `{"insights": [
	{"insight": "A consistência supera a intensidade", "application": "Pratique dez minutos por dia", "example": "Ler uma página por manhã", "category": "principle"},
	{"insight": "Ambientes moldam comportamentos", "application": "Deixe os gatilhos à vista", "example": "Livro na cabeceira", "category": "strategy"}
]}`

func TestExtractSuccess(t *testing.T) {
	client := &fakeClient{response: validResponse}
	insights, provenance := New(client).Extract(context.Background(), "Hábitos", "texto fonte com material suficiente")

	if provenance != core.ProvenanceModel {
		t.Errorf("Expected model provenance, got %s", provenance)
	}
	if len(insights) != 2 {
		t.Fatalf("Expected 2 insights, got %d", len(insights))
	}
	if insights[0].Insight != "A consistência supera a intensidade" {
		t.Errorf("Unexpected first insight: %q", insights[0].Insight)
	}
	if client.lastPrompt == "" {
		t.Error("Expected prompt sent to client")
	}
}

func TestExtractNilClientFallsBack(t *testing.T) {
	insights, provenance := New(nil).Extract(context.Background(), "Hábitos", "texto fonte")

	if provenance != core.ProvenanceFallback {
		t.Errorf("Expected fallback provenance, got %s", provenance)
	}
	if len(insights) != 1 || insights[0].Insight == "" {
		t.Errorf("Expected the single fallback insight, got %+v", insights)
	}
}

func TestExtractEmptyContentFallsBack(t *testing.T) {
	client := &fakeClient{response: validResponse}
	insights, provenance := New(client).Extract(context.Background(), "Hábitos", "   ")

	if provenance != core.ProvenanceFallback {
		t.Errorf("Expected fallback provenance for empty content, got %s", provenance)
	}
	if len(insights) != 1 {
		t.Errorf("Expected the single fallback insight, got %d", len(insights))
	}
	if client.lastPrompt != "" {
		t.Error("Expected no model call for empty content")
	}
}

func TestExtractClientErrorFallsBack(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}
	insights, provenance := New(client).Extract(context.Background(), "Hábitos", "texto fonte")

	if provenance != core.ProvenanceFallback {
		t.Errorf("Expected fallback provenance after client error, got %s", provenance)
	}
	if len(insights) != 1 {
		t.Errorf("Expected the single fallback insight, got %d", len(insights))
	}
}

func TestExtractUnparseableResponseFallsBack(t *testing.T) {
	client := &fakeClient{response: "desculpe, não consegui gerar o JSON"}
	insights, provenance := New(client).Extract(context.Background(), "Hábitos", "texto fonte")

	if provenance != core.ProvenanceFallback {
		t.Errorf("Expected fallback provenance for unparseable response, got %s", provenance)
	}
	if len(insights) != 1 {
		t.Errorf("Expected the single fallback insight, got %d", len(insights))
	}
}

func TestExtractCapsInsightCount(t *testing.T) {
	response := `{"insights": [`
	for i := 0; i < 12; i++ {
		if i > 0 {
			response += ","
		}
		response += `{"insight": "princípio repetido para o teste", "application": "aplicar", "example": "exemplo", "category": "principle"}`
	}
	response += `]}`

	insights, _ := New(&fakeClient{response: response}).Extract(context.Background(), "Hábitos", "texto fonte")
	if len(insights) > DefaultMaxInsights {
		t.Errorf("Expected at most %d insights, got %d", DefaultMaxInsights, len(insights))
	}
}

func TestParseInsights(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{"envelope shape", validResponse, 2, false},
		{"bare array", `[{"insight": "um princípio", "application": "a", "example": "e", "category": "principle"}]`, 1, false},
		{"fenced json", "```json\n" + validResponse + "\n```", 2, false},
		{"fence without tag", "```\n" + validResponse + "\n```", 2, false},
		{"blank insights filtered", `{"insights": [{"insight": "  "}, {"insight": "válido"}]}`, 1, false},
		{"all blank", `{"insights": [{"insight": ""}]}`, 0, true},
		{"empty list", `{"insights": []}`, 0, true},
		{"not json", "texto solto", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insights, err := ParseInsights(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %d insights", len(insights))
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(insights) != tt.wantLen {
				t.Errorf("Expected %d insights, got %d", tt.wantLen, len(insights))
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{`{"a": 1}`, `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		if got := StripCodeFence(tt.input); got != tt.want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
