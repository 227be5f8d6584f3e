package merge

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Defaults used when a file name carries no date or tester.
const (
	UnknownDate   = "未识别"
	DefaultTester = "质检"
)

// datePatterns capture month then day, tried in order.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`记录(\d{2})(\d{2})`),
	regexp.MustCompile(`(\d{1,2})月(\d{1,2})日?`),
	regexp.MustCompile(`(?:^|\D)(\d{2})[-/](\d{2})(?:\D|$)`),
	regexp.MustCompile(`(?:^|\D)(\d{2})(\d{2})(?:\D|$)`),
	regexp.MustCompile(`(?:^|\D)(\d{1,2})\.(\d{1,2})(?:\D|$)`),
}

var (
	underscoreName = regexp.MustCompile(`_([^_.]+)$`)
	trailingName   = regexp.MustCompile(`(\p{Han}{2,4})$`)
)

// notNames are words that end report file names without naming anyone.
var notNames = []string{"记录", "报告", "测试", "分析", "统计", "汇总", "公司"}

// SourceLabel derives a short "MMDD_tester" label from a file name, such as
// "0804_王超" for "bug记录0804_王超.xlsx".
func SourceLabel(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%s", labelDate(stem), labelTester(stem))
}

func labelDate(stem string) string {
	for _, pattern := range datePatterns {
		for _, m := range pattern.FindAllStringSubmatch(stem, -1) {
			month, _ := strconv.Atoi(m[1])
			day, _ := strconv.Atoi(m[2])
			if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
				return fmt.Sprintf("%02d%02d", month, day)
			}
		}
	}
	return UnknownDate
}

func labelTester(stem string) string {
	if m := underscoreName.FindStringSubmatch(stem); m != nil && plausibleName(m[1]) {
		return m[1]
	}
	if m := trailingName.FindStringSubmatch(stem); m != nil && plausibleName(m[1]) {
		return m[1]
	}
	return DefaultTester
}

func plausibleName(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || len(runes) > 4 {
		return false
	}
	hasHan := false
	for _, r := range runes {
		if unicode.Is(unicode.Han, r) {
			hasHan = true
			break
		}
	}
	if !hasHan {
		return false
	}
	for _, word := range notNames {
		if strings.Contains(s, word) {
			return false
		}
	}
	return true
}
