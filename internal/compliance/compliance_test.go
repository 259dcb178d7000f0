package compliance

import (
	"strings"
	"testing"
	"unicode/utf8"
)

var allRoles = []Role{RoleContent, RoleQuestion, RoleOption, RoleExplanation, RoleTip}

var messyInputs = []string{
	"",
	"   ",
	"Item curto",
	"Conteúdo: um texto rotulado que precisa perder o prefixo antes de ser exibido no cartão",
	"- primeiro ponto da lista\n- segundo ponto da lista\n- terceiro ponto da lista com mais detalhes",
	"1. passo inicial do processo\n2. passo seguinte do processo\n3. passo final com explicação longa",
	"- - Uma ideia importante sobre constância que precisa caber no cartão do aplicativo móvel",
	"1. 2. passo inicial com marcador numerado duplicado e texto suficiente para dar corpo",
	"Linha um\nLinha dois\nLinha três com um pouco mais de conteúdo para dar corpo ao texto",
	"Texto   com    espaços        repetidos e\ttabulações que precisam ser normalizados agora",
	strings.Repeat("Uma frase de teste com tamanho médio e um ponto final. ", 12),
	strings.Repeat("a", 310),
	strings.Repeat("çãé", 150),
}

func TestEnforceBounds(t *testing.T) {
	for _, role := range allRoles {
		bounds := BoundsFor(role)
		for _, input := range messyInputs {
			result := Enforce(input, role)
			length := utf8.RuneCountInString(result)

			if length < bounds.Min || length > bounds.Max {
				t.Errorf("Enforce(%.30q, %s) length %d outside [%d,%d]", input, role, length, bounds.Min, bounds.Max)
			}
			if strings.ContainsAny(result, "\n\r") {
				t.Errorf("Enforce(%.30q, %s) contains a line break: %q", input, role, result)
			}
			if bulletMarker.MatchString(result) {
				t.Errorf("Enforce(%.30q, %s) starts with a bullet marker: %q", input, role, result)
			}
		}
	}
}

func TestEnforceIdempotent(t *testing.T) {
	for _, role := range allRoles {
		for _, input := range messyInputs {
			once := Enforce(input, role)
			twice := Enforce(once, role)
			if once != twice {
				t.Errorf("Enforce not idempotent for role %s input %.30q:\n once: %q\ntwice: %q", role, input, once, twice)
			}
		}
	}
}

func TestEnforcePadsShortContent(t *testing.T) {
	result := Enforce("Item curto", RoleContent)
	if utf8.RuneCountInString(result) < 50 {
		t.Errorf("Expected padded content of at least 50 chars, got %d: %q", utf8.RuneCountInString(result), result)
	}
	if !strings.HasPrefix(result, "Item curto") {
		t.Errorf("Expected original text preserved at the front, got %q", result)
	}
}

func TestEnforceTruncatesAtSentenceBoundary(t *testing.T) {
	input := strings.Repeat("Uma frase completa com ponto final para o teste de corte. ", 6)
	if utf8.RuneCountInString(input) <= 300 {
		t.Fatalf("test input must exceed the content maximum, got %d", utf8.RuneCountInString(input))
	}

	result := Enforce(input, RoleContent)
	if !strings.HasSuffix(result, ".") {
		t.Errorf("Expected truncation at a sentence boundary, got %q", result)
	}
	if utf8.RuneCountInString(result) > 295 {
		t.Errorf("Expected sentence-boundary result within 295 chars, got %d", utf8.RuneCountInString(result))
	}
}

func TestEnforceHardTruncatesWithoutSentenceBoundary(t *testing.T) {
	input := strings.Repeat("a", 310)
	result := Enforce(input, RoleContent)

	if !strings.HasSuffix(result, "...") {
		t.Errorf("Expected ellipsis marker after hard truncation, got %q", result)
	}
	if utf8.RuneCountInString(result) > 300 {
		t.Errorf("Expected hard-truncated result within 300 chars, got %d", utf8.RuneCountInString(result))
	}
}

func TestEnforceSubstitutesRoleDefaultForEmptyInput(t *testing.T) {
	for _, role := range allRoles {
		result := Enforce("   ", role)
		if result == "" {
			t.Errorf("Expected role default for empty input on role %s", role)
		}
		if !Compliant(result, role) {
			t.Errorf("Role default for %s is not compliant: %q", role, result)
		}
	}
}

func TestEnforceStripsLabels(t *testing.T) {
	result := Enforce("Conteúdo: A constância diária transforma pequenas ações em grandes resultados ao longo do tempo.", RoleContent)
	if strings.HasPrefix(result, "Conteúdo:") {
		t.Errorf("Expected label prefix stripped, got %q", result)
	}

	stacked := Enforce("Conteúdo: Conteúdo: A constância diária transforma pequenas ações em grandes resultados de verdade.", RoleContent)
	if strings.Contains(stacked, "Conteúdo:") {
		t.Errorf("Expected stacked labels stripped, got %q", stacked)
	}
}

func TestEnforceCollapsesLinesAndBullets(t *testing.T) {
	input := "- Primeira ideia da lista original\n- Segunda ideia da lista original\n- Terceira ideia para dar tamanho"
	result := Enforce(input, RoleContent)

	if strings.Contains(result, "\n") {
		t.Errorf("Expected single line, got %q", result)
	}
	if strings.Contains(result, "- ") {
		t.Errorf("Expected bullet markers removed, got %q", result)
	}
	if !strings.Contains(result, "Primeira ideia") || !strings.Contains(result, "Segunda ideia") {
		t.Errorf("Expected list text preserved, got %q", result)
	}
}

func TestEnforceStripsStackedBullets(t *testing.T) {
	tests := []string{
		"- - Uma ideia importante sobre constância que precisa caber no cartão do aplicativo móvel",
		"1. 2. passo inicial com marcador numerado duplicado e texto suficiente para dar corpo",
		"• - 3. mistura de marcadores empilhados antes de um texto com tamanho razoável para o cartão",
	}

	for _, input := range tests {
		once := Enforce(input, RoleContent)
		if bulletMarker.MatchString(once) {
			t.Errorf("Enforce(%.40q) still carries a list marker: %q", input, once)
		}
		if !Compliant(once, RoleContent) {
			t.Errorf("Enforce(%.40q) output rejected by Compliant: %q", input, once)
		}
		if twice := Enforce(once, RoleContent); once != twice {
			t.Errorf("Enforce(%.40q) not idempotent:\n once: %q\ntwice: %q", input, once, twice)
		}
	}
}

func TestCompliant(t *testing.T) {
	tests := []struct {
		name string
		text string
		role Role
		want bool
	}{
		{"valid content", strings.Repeat("bom texto ", 8), RoleContent, true},
		{"too short", "curto", RoleContent, false},
		{"has newline", "linha um\nlinha dois com texto suficiente para passar do mínimo exigido aqui", RoleContent, false},
		{"bulleted", "- item de lista com texto suficiente para passar do mínimo exigido no cartão", RoleContent, false},
		{"valid option", "Praticar diariamente", RoleOption, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compliant(tt.text, tt.role); got != tt.want {
				t.Errorf("Compliant(%q, %s) = %v, want %v", tt.text, tt.role, got, tt.want)
			}
		})
	}
}

func TestEnforceTips(t *testing.T) {
	tips := EnforceTips([]string{"dica curta", "", "  ", "Uma dica com tamanho razoável para ser exibida"})
	if len(tips) != 2 {
		t.Fatalf("Expected 2 tips after dropping empties, got %d", len(tips))
	}
	for _, tip := range tips {
		if !Compliant(tip, RoleTip) {
			t.Errorf("Tip not compliant: %q", tip)
		}
	}

	if EnforceTips(nil) != nil {
		t.Error("Expected nil tips to stay nil")
	}
}

func TestPadNarrowBudgetUsesShortFiller(t *testing.T) {
	// Every bound in the role table is wider than the full filler clause,
	// so the narrow-budget branch only fires for custom bounds.
	narrow := Bounds{Min: 40, Max: 60}
	result := pad("texto", narrow)

	length := utf8.RuneCountInString(result)
	if length < narrow.Min || length > narrow.Max {
		t.Errorf("pad length %d outside [%d,%d]: %q", length, narrow.Min, narrow.Max, result)
	}
	if !strings.Contains(result, strings.TrimSpace(shortFiller)) {
		t.Errorf("Expected short filler in narrow-budget padding, got %q", result)
	}
	if strings.Contains(result, strings.TrimSpace(fillerClause)) {
		t.Errorf("Expected full filler clause avoided for narrow budget, got %q", result)
	}
}

func TestBoundsForUnknownRole(t *testing.T) {
	bounds := BoundsFor(Role("mystery"))
	if bounds != roleBounds[RoleContent] {
		t.Errorf("Expected content bounds for unknown role, got %+v", bounds)
	}
}
