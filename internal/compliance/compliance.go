// Package compliance enforces the mobile UI formatting rules: per-role
// character budgets, single-line text, no bullet or label prefixes.
// Everything here is pure string processing with no external calls, so the
// same input always produces the same output.
package compliance

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"microlearn/internal/logger"
)

// Role tags the UI slot a piece of text is destined for. Each role carries
// its own character budget.
type Role string

const (
	// RoleContent is a content or quote card body.
	RoleContent Role = "content"
	// RoleQuestion is a quiz question.
	RoleQuestion Role = "question"
	// RoleOption is a single quiz answer option.
	RoleOption Role = "option"
	// RoleExplanation is a quiz answer explanation.
	RoleExplanation Role = "explanation"
	// RoleTip is a short supporting tip on a content card.
	RoleTip Role = "tip"
)

// Bounds is the inclusive character budget for a role, counted in runes.
type Bounds struct {
	Min int // Minimum length after padding
	Max int // Maximum length after truncation
}

// roleBounds maps each role to its mobile character budget.
var roleBounds = map[Role]Bounds{
	RoleContent:     {Min: 50, Max: 300},
	RoleQuestion:    {Min: 15, Max: 120},
	RoleOption:      {Min: 3, Max: 60},
	RoleExplanation: {Min: 30, Max: 250},
	RoleTip:         {Min: 20, Max: 150},
}

// roleDefaults is the substitute text used when the input is empty or
// whitespace-only. Padding nonsense onto nothing would produce garbage, so
// a role-appropriate sentence is used instead.
var roleDefaults = map[Role]string{
	RoleContent:     "Reflita sobre este conceito e como ele se aplica ao seu desenvolvimento pessoal no dia a dia.",
	RoleQuestion:    "Qual é o ponto principal deste conteúdo?",
	RoleOption:      "Aplicar o conceito na prática",
	RoleExplanation: "A aplicação consistente deste conceito fortalece o seu desenvolvimento.",
	RoleTip:         "Pratique este conceito diariamente.",
}

// fillerClause is appended (repeatedly if needed) to pad short text up to
// the role minimum.
const fillerClause = " Reflita sobre como aplicar isso no seu dia a dia."

// shortFiller pads roles whose budget window is narrower than the full
// filler clause, so padding cannot overshoot the maximum.
const shortFiller = " Pense nisso."

// ellipsis marks a hard truncation.
const ellipsis = "..."

var (
	// labelPrefixes are generation artifacts the model sometimes prepends.
	labelPrefixes = []string{
		"Conteúdo:", "Conteudo:", "Content:", "Texto:",
		"Pergunta:", "Question:", "Explicação:", "Explicacao:", "Resposta:",
	}

	// bulletMarker matches a leading bullet or numbered-list marker on a line.
	bulletMarker = regexp.MustCompile(`^\s*(?:[-•*]|\d+[.)])\s+`)

	// multiSpace collapses runs of whitespace.
	multiSpace = regexp.MustCompile(`\s{2,}`)
)

// BoundsFor returns the character budget for the given role. Unknown roles
// get the content budget, the widest one.
func BoundsFor(role Role) Bounds {
	if b, ok := roleBounds[role]; ok {
		return b
	}
	return roleBounds[RoleContent]
}

// Enforce normalizes raw text to satisfy the role's budget and the
// single-line rule. The result is guaranteed to have rune length within
// [Min,Max], contain no newlines and carry no leading label or bullet
// marker. Enforce is idempotent: applying it to its own output is a no-op.
func Enforce(raw string, role Role) string {
	bounds := BoundsFor(role)

	text := stripLabels(raw)
	text = stripBullets(text)
	text = flatten(text)

	if text == "" {
		text = roleDefaults[role]
		if text == "" {
			text = roleDefaults[RoleContent]
		}
	}

	if utf8.RuneCountInString(text) > bounds.Max {
		text = truncate(text, bounds.Max, role)
	}
	if utf8.RuneCountInString(text) < bounds.Min {
		text = pad(text, bounds)
	}
	return text
}

// Compliant reports whether text already satisfies the role's rules.
func Compliant(text string, role Role) bool {
	bounds := BoundsFor(role)
	length := utf8.RuneCountInString(text)
	if length < bounds.Min || length > bounds.Max {
		return false
	}
	if strings.ContainsAny(text, "\n\r") {
		return false
	}
	return !bulletMarker.MatchString(text)
}

// EnforceTips bounds each tip and drops empties. An empty slice stays nil.
func EnforceTips(tips []string) []string {
	if len(tips) == 0 {
		return nil
	}
	out := make([]string, 0, len(tips))
	for _, tip := range tips {
		if strings.TrimSpace(tip) == "" {
			continue
		}
		out = append(out, Enforce(tip, RoleTip))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// stripLabels removes leading labels such as "Conteúdo:". Repeats until no
// label matches so stacked labels cannot survive a single pass.
func stripLabels(text string) string {
	trimmed := strings.TrimSpace(text)
	for {
		stripped := trimmed
		for _, label := range labelPrefixes {
			if len(stripped) >= len(label) && strings.EqualFold(stripped[:len(label)], label) {
				stripped = strings.TrimSpace(stripped[len(label):])
				break
			}
		}
		if stripped == trimmed {
			return trimmed
		}
		trimmed = stripped
	}
}

// stripBullets removes leading bullet/number markers from every line.
// Markers can stack ("- - item", "1. 2. passo"), so each line is stripped
// to a fixed point.
func stripBullets(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for {
			stripped := bulletMarker.ReplaceAllString(line, "")
			if stripped == line {
				break
			}
			line = stripped
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// flatten collapses all line breaks and repeated whitespace into single
// spaces.
func flatten(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\t", " ")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// truncate shortens text to fit the budget, preferring the last sentence
// boundary that keeps the result within max-5 characters. When no sentence
// boundary qualifies it hard-truncates to max-5 and appends an ellipsis.
func truncate(text string, max int, role Role) string {
	runes := []rune(text)
	target := max - 5
	if target < 1 {
		target = max
	}

	window := string(runes[:target])
	if cut := strings.LastIndex(window, "."); cut > 0 {
		candidate := strings.TrimSpace(window[:cut+1])
		if candidate != "" && candidate != ellipsis {
			return candidate
		}
	}

	logger.Warn("Hard truncation applied", "role", string(role), "original_length", len(runes), "max", max)
	return strings.TrimSpace(string(runes[:target])) + ellipsis
}

// pad appends the filler clause until the minimum bound is met. The loop
// terminates because the filler is non-empty; the final clamp keeps the
// padded text inside the maximum for budgets narrower than one filler.
func pad(text string, bounds Bounds) string {
	filler := fillerClause
	if bounds.Max-bounds.Min < utf8.RuneCountInString(fillerClause) {
		filler = shortFiller
	}
	for utf8.RuneCountInString(text) < bounds.Min {
		text = strings.TrimSpace(text + filler)
	}
	if utf8.RuneCountInString(text) > bounds.Max {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:bounds.Max]))
	}
	return text
}
