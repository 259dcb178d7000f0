// Package narrative builds the connective text that turns three isolated
// learning levels into one journey: an opening hook, a transition into
// each level, a progress marker per level and a closing reflection.
//
// Variant selection is keyed by FNV-1a over the theme's UTF-8 bytes, not
// by any runtime hash, so the same theme picks the same variants on every
// run and platform.
package narrative

import (
	"fmt"
	"hash/fnv"
	"strings"

	"microlearn/internal/compliance"
	"microlearn/internal/core"
	"microlearn/internal/selector"
)

// genericTheme substitutes empty themes so every template has a subject.
const genericTheme = "sua jornada de desenvolvimento"

var hookTemplates = []string{
	"Você está prestes a explorar %s de um jeito que cabe no seu dia: uma ideia de cada vez.",
	"Cada grande mudança começa pequena. Hoje, o primeiro passo é entender %s.",
	"Esqueça a pressa. Dominar %s é uma jornada em três níveis, e ela começa agora.",
}

var reflectionTemplates = []string{
	"Você percorreu os três níveis de %s. O que aprendeu só vira resultado quando aplicado: escolha uma prática e comece hoje.",
	"Fim da jornada por %s, início da prática. Revisite os cartões sempre que precisar renovar o foco.",
	"Concluir %s não é o fim: é o ponto em que o conhecimento passa a trabalhar para você, um hábito de cada vez.",
}

var transitionTemplates = map[selector.Tier][]string{
	selector.TierFoundation: {
		"Vamos começar pela base: os conceitos essenciais de %s.",
		"Todo edifício precisa de fundação. Aqui estão os pilares de %s.",
	},
	selector.TierApplication: {
		"Com a base firme, é hora de colocar %s em prática no seu cotidiano.",
		"Agora você sai da teoria: aplique %s em situações reais.",
	},
	selector.TierMastery: {
		"Último nível: integre tudo o que aprendeu sobre %s e leve ao próximo patamar.",
		"A maestria em %s vem de conectar os princípios entre si. É o que faremos agora.",
	},
}

var markerTemplates = map[selector.Tier]string{
	selector.TierFoundation:  "Nível 1 de 3 concluído: você dominou os fundamentos de %s. A base está pronta para a prática.",
	selector.TierApplication: "Nível 2 de 3 concluído: %s já faz parte da sua rotina. Falta um passo para a maestria.",
	selector.TierMastery:     "Nível 3 de 3 concluído: você integrou %s por completo. Continue praticando para consolidar.",
}

// Build assembles the narrative thread for a journey theme. The thread is
// built once per journey and shared by every level's unit; all fields are
// compliance-checked content strings.
func Build(theme string) core.NarrativeThread {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = genericTheme
	}

	transitions := make(map[string]string, len(transitionTemplates))
	markers := make(map[string]string, len(markerTemplates))
	for tier, options := range transitionTemplates {
		transitions[string(tier)] = render(pick(theme+":"+string(tier), options), theme)
	}
	for tier, template := range markerTemplates {
		markers[string(tier)] = render(template, theme)
	}

	return core.NarrativeThread{
		OpeningHook:       render(pick(theme, hookTemplates), theme),
		Transitions:       transitions,
		ProgressMarkers:   markers,
		ClosingReflection: render(pick(theme+":closing", reflectionTemplates), theme),
	}
}

// ProgressMarker returns the progress content card for one tier of the
// thread, ready to prepend to an assembled unit.
func ProgressMarker(thread core.NarrativeThread, tier selector.Tier) *core.ContentItem {
	text, ok := thread.ProgressMarkers[string(tier)]
	if !ok || text == "" {
		return nil
	}
	return &core.ContentItem{
		Type:       core.ItemTypeContent,
		Content:    text,
		Provenance: core.ProvenanceFallback,
	}
}

// pick selects a template variant by FNV-1a(seed) mod len(options).
func pick(seed string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	hasher := fnv.New32a()
	hasher.Write([]byte(seed))
	return options[int(hasher.Sum32())%len(options)]
}

// render fills the theme into a template and normalizes the result to the
// content budget.
func render(template string, theme string) string {
	return compliance.Enforce(fmt.Sprintf(template, theme), compliance.RoleContent)
}
