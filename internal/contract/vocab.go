package contract

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/bugsheet/schema"
	"golang.org/x/text/width"
)

// Vocabulary is the declarative table the normalizer binds headers and values with.
// Every keyword list is ordered: earlier entries win.
type Vocabulary struct {
	Synonyms          map[schema.Field][]string    `yaml:"synonyms" validate:"required,dive,min=1,dive,required"`
	SeverityWords     map[schema.Severity][]string `yaml:"severity_words" validate:"required,dive,dive,required"`
	DefectNegators    []string                     `yaml:"defect_negators" validate:"required,min=1,dive,required"`
	ProgramKeywords   []string                     `yaml:"program_keywords" validate:"dive,required"`
	FixedKeywords     []string                     `yaml:"fixed_keywords" validate:"required,min=1,dive,required"`
	UnfixedKeywords   []string                     `yaml:"unfixed_keywords" validate:"required,min=1,dive,required"`
	DefaultDefectType schema.DefectType            `yaml:"default_defect_type" validate:"oneof=PROGRAM_BUG NON_PROGRAM_BUG UNCLASSIFIED"`
}

// VocabularyRawInput holds vocabulary overrides from the YAML config file.
// A non-empty list replaces the default list for that entry.
type VocabularyRawInput struct {
	Synonyms        map[string][]string `mapstructure:"synonyms"`
	SeverityWords   map[string][]string `mapstructure:"severity_words"`
	DefectNegators  []string            `mapstructure:"defect_negators"`
	ProgramKeywords []string            `mapstructure:"program_keywords"`
	FixedKeywords   []string            `mapstructure:"fixed_keywords"`
	UnfixedKeywords []string            `mapstructure:"unfixed_keywords"`
}

var vocabValidator = validator.New()

// DefaultVocabulary returns a fresh copy of the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Synonyms: map[schema.Field][]string{
			schema.SeverityField: {
				"严重级别", "严重程度", "严重性", "缺陷等级", "bug等级", "bug级别", "问题级别", "级别", "等级",
				"severity", "priority", "level",
			},
			schema.DefectTypeField: {
				"bug类型", "缺陷类型", "问题类型", "缺陷分类", "问题分类", "类型", "分类",
				"defect type", "defect_type", "bug type", "type", "category",
			},
			schema.FixStatusField: {
				"修复状态", "修复情况", "解决状态", "处理状态", "处理结果", "状态",
				"fix status", "fix_status", "resolution", "status",
			},
			schema.ModuleField: {
				"所属模块", "功能模块", "模块", "module", "component",
			},
			schema.ReportedAtField: {
				"发现日期", "提交日期", "报告日期", "日期", "时间",
				"reported_at", "reported", "created", "date",
			},
		},
		SeverityWords: map[schema.Severity][]string{
			schema.SeverityS: {"严重", "致命", "critical", "blocker", "fatal"},
			schema.SeverityA: {"重要", "major", "high"},
			schema.SeverityB: {"一般", "normal", "medium", "moderate"},
			schema.SeverityC: {"轻微", "提示", "minor", "low", "trivial"},
		},
		DefectNegators: []string{
			"非程序", "非bug", "非缺陷", "not a bug", "not-a-bug", "non-program", "non_program", "non program",
		},
		ProgramKeywords: []string{"程序", "bug", "缺陷", "代码", "program", "code", "defect"},
		FixedKeywords: []string{
			"已修复", "已解决", "已关闭", "已处理", "修复", "解决", "关闭",
			"fixed", "resolved", "closed", "done",
		},
		UnfixedKeywords: []string{
			"未修复", "未解决", "待修复", "未处理", "待处理", "修复中", "处理中", "未关闭", "重新打开",
			"不修复", "暂不修复", "无需修复", "无法修复", "不予修复", "不予解决", "不解决", "无法解决", "不处理", "暂不处理",
			"unfixed", "not fixed", "unresolved", "won't fix", "wont fix", "wontfix",
			"open", "pending", "in progress",
		},
		DefaultDefectType: schema.DefaultDefectType,
	}
}

// ProcessVocabulary merges config overrides onto the default vocabulary and validates the result.
func ProcessVocabulary(raw VocabularyRawInput, defaultDefectType string) (Vocabulary, error) {
	vocab := DefaultVocabulary()

	for key, words := range raw.Synonyms {
		field := schema.Field(strings.ToLower(strings.TrimSpace(key)))
		if !slices.Contains(schema.BindableFields, field) {
			return Vocabulary{}, fmt.Errorf("invalid vocabulary field '%s'. must be one of severity, defect_type, fix_status, module, reported_at", key)
		}
		if words = cleanWords(words); len(words) > 0 {
			vocab.Synonyms[field] = words
		}
	}
	for key, words := range raw.SeverityWords {
		level := schema.Severity(strings.ToUpper(strings.TrimSpace(key)))
		if _, ok := schema.ValidSeverities[level]; !ok || level == schema.SeverityUnclassified {
			return Vocabulary{}, fmt.Errorf("invalid severity level '%s'. must be S, A, B, C", key)
		}
		if words = cleanWords(words); len(words) > 0 {
			vocab.SeverityWords[level] = words
		}
	}
	vocab.DefectNegators = override(vocab.DefectNegators, raw.DefectNegators)
	vocab.ProgramKeywords = override(vocab.ProgramKeywords, raw.ProgramKeywords)
	vocab.FixedKeywords = override(vocab.FixedKeywords, raw.FixedKeywords)
	vocab.UnfixedKeywords = override(vocab.UnfixedKeywords, raw.UnfixedKeywords)

	if defaultDefectType != "" {
		vocab.DefaultDefectType = schema.DefectType(strings.ToUpper(strings.TrimSpace(defaultDefectType)))
	}

	if err := vocab.Validate(); err != nil {
		return Vocabulary{}, err
	}
	return vocab, nil
}

// Validate checks the vocabulary is complete enough to normalize with.
func (v Vocabulary) Validate() error {
	if err := vocabValidator.Struct(v); err != nil {
		return fmt.Errorf("invalid vocabulary: %w", err)
	}
	for _, field := range schema.BindableFields {
		if len(v.Synonyms[field]) == 0 {
			return fmt.Errorf("invalid vocabulary: no synonyms for field %s", field)
		}
	}
	return nil
}

// Clone returns a deep copy of the vocabulary.
func (v Vocabulary) Clone() Vocabulary {
	clone := v
	clone.Synonyms = make(map[schema.Field][]string, len(v.Synonyms))
	for k, words := range v.Synonyms {
		clone.Synonyms[k] = slices.Clone(words)
	}
	clone.SeverityWords = make(map[schema.Severity][]string, len(v.SeverityWords))
	for k, words := range v.SeverityWords {
		clone.SeverityWords[k] = slices.Clone(words)
	}
	clone.DefectNegators = slices.Clone(v.DefectNegators)
	clone.ProgramKeywords = slices.Clone(v.ProgramKeywords)
	clone.FixedKeywords = slices.Clone(v.FixedKeywords)
	clone.UnfixedKeywords = slices.Clone(v.UnfixedKeywords)
	return clone
}

// Fingerprint returns a stable digest of the vocabulary for cache keys.
func (v Vocabulary) Fingerprint() string {
	// encoding/json sorts map keys, so equal vocabularies hash equally
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))[:16]
}

// Fold prepares text for keyword matching: trims it, folds full-width forms and lower-cases it.
func Fold(s string) string {
	return strings.ToLower(width.Fold.String(strings.TrimSpace(s)))
}

func cleanWords(words []string) []string {
	var out []string
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func override(current, replacement []string) []string {
	if cleaned := cleanWords(replacement); len(cleaned) > 0 {
		return cleaned
	}
	return current
}
