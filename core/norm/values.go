package norm

import (
	"slices"
	"strings"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/schema"
)

// severityLevels are the ranked levels in the order they are tested.
var severityLevels = []schema.Severity{schema.SeverityS, schema.SeverityA, schema.SeverityB, schema.SeverityC}

// Severity maps a raw token to a level. A token that matches no level, or
// more than one, is UNCLASSIFIED.
func (n *Normalizer) Severity(raw string) schema.Severity {
	trimmed := strings.TrimSpace(raw)
	if _, ok := schema.ValidSeverities[schema.Severity(trimmed)]; ok {
		return schema.Severity(trimmed)
	}
	token := contract.Fold(trimmed)
	if token == "" {
		return schema.SeverityUnclassified
	}

	var matched []schema.Severity
	for _, level := range severityLevels {
		if leadingLetter(token, level) || containsAny(token, n.severityWords[level]) {
			matched = append(matched, level)
		}
	}
	if len(matched) != 1 {
		return schema.SeverityUnclassified
	}
	return matched[0]
}

// DefectType classifies a raw token. Negators beat program keywords; any
// other non-empty token takes the configured default.
func (n *Normalizer) DefectType(raw string) schema.DefectType {
	trimmed := strings.TrimSpace(raw)
	if _, ok := schema.ValidDefectTypes[schema.DefectType(trimmed)]; ok {
		return schema.DefectType(trimmed)
	}
	token := contract.Fold(trimmed)
	switch {
	case token == "":
		return schema.DefectUnclassified
	case containsAny(token, n.negators):
		return schema.NonProgramBug
	case containsAny(token, n.program):
		return schema.ProgramBug
	default:
		return n.defaultType
	}
}

// fixNegations turn a following fixed keyword into a refusal, as in "暂不修复".
var fixNegations = []string{"不", "无", "未", "待", "别", "没"}

// FixStatus classifies a raw token. Unfixed keywords are checked first since
// most of them contain a fixed keyword. A fixed keyword right after a negation
// counts as unfixed.
func (n *Normalizer) FixStatus(raw string) schema.FixStatus {
	trimmed := strings.TrimSpace(raw)
	if _, ok := schema.ValidFixStatuses[schema.FixStatus(trimmed)]; ok {
		return schema.FixStatus(trimmed)
	}
	token := contract.Fold(trimmed)
	switch {
	case token == "":
		return schema.StatusUnclassified
	case containsAny(token, n.unfixed):
		return schema.Unfixed
	case containsAny(token, n.fixed):
		if negatedFix(token, n.fixed) {
			return schema.Unfixed
		}
		return schema.Fixed
	default:
		return schema.StatusUnclassified
	}
}

// negatedFix reports whether any fixed keyword in token is preceded by a negation,
// allowing one particle such as 予 or 需 in between.
func negatedFix(token string, fixed []string) bool {
	for _, word := range fixed {
		for i := strings.Index(token, word); i >= 0; {
			before := []rune(token[:i])
			if len(before) > 0 && slices.Contains(fixNegations, string(before[len(before)-1])) {
				return true
			}
			if len(before) > 1 && slices.Contains(fixNegations, string(before[len(before)-2])) {
				return true
			}
			next := strings.Index(token[i+len(word):], word)
			if next < 0 {
				break
			}
			i += len(word) + next
		}
	}
	return false
}

// leadingLetter reports whether token starts with the level letter standing on its own,
// as in "s", "s级" or "s-严重" but not "small".
func leadingLetter(token string, level schema.Severity) bool {
	letter := strings.ToLower(string(level))
	if !strings.HasPrefix(token, letter) {
		return false
	}
	rest := token[len(letter):]
	if rest == "" {
		return true
	}
	next := rest[0]
	return (next < 'a' || next > 'z') && (next < 'A' || next > 'Z')
}

func containsAny(token string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(token, w) {
			return true
		}
	}
	return false
}
