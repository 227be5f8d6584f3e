package norm

import (
	"testing"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/schema"
	"github.com/stretchr/testify/assert"
)

func TestSeverity(t *testing.T) {
	tests := []struct {
		input    string
		expected schema.Severity
	}{
		{"S", schema.SeverityS},
		{"s", schema.SeverityS},
		{" A ", schema.SeverityA},
		{"B级", schema.SeverityB},
		{"C-轻微", schema.SeverityC},
		{"Ｓ级", schema.SeverityS},
		{"严重", schema.SeverityS},
		{"致命", schema.SeverityS},
		{"重要", schema.SeverityA},
		{"一般", schema.SeverityB},
		{"轻微", schema.SeverityC},
		{"Critical", schema.SeverityS},
		{"Minor", schema.SeverityC},
		{"A级-重要", schema.SeverityA},
		{"UNCLASSIFIED", schema.SeverityUnclassified},
		{"", schema.SeverityUnclassified},
		{"X", schema.SeverityUnclassified},
		{"small", schema.SeverityUnclassified},
		{"1", schema.SeverityUnclassified},
		// Ambiguous tokens are never guessed
		{"B-major", schema.SeverityUnclassified},
		{"严重/一般", schema.SeverityUnclassified},
	}

	n := newDefault()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Severity(tt.input))
		})
	}
}

func TestDefectType(t *testing.T) {
	tests := []struct {
		input    string
		expected schema.DefectType
	}{
		{"程序Bug", schema.ProgramBug},
		{"代码缺陷", schema.ProgramBug},
		{"非程序Bug", schema.NonProgramBug},
		{"非bug", schema.NonProgramBug},
		{"Not a bug", schema.NonProgramBug},
		{"not-a-bug", schema.NonProgramBug},
		{"NON_PROGRAM_BUG", schema.NonProgramBug},
		{"PROGRAM_BUG", schema.ProgramBug},
		{"UI建议", schema.ProgramBug},
		{"", schema.DefectUnclassified},
		{"   ", schema.DefectUnclassified},
	}

	n := newDefault()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.DefectType(tt.input))
		})
	}
}

func TestDefectTypeConfigurableDefault(t *testing.T) {
	vocab := contract.DefaultVocabulary()
	vocab.DefaultDefectType = schema.DefectUnclassified
	n := New(vocab)

	assert.Equal(t, schema.DefectUnclassified, n.DefectType("UI建议"))
	assert.Equal(t, schema.ProgramBug, n.DefectType("程序问题"))
	assert.Equal(t, schema.NonProgramBug, n.DefectType("非程序"))
}

func TestFixStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected schema.FixStatus
	}{
		{"已修复", schema.Fixed},
		{"修复", schema.Fixed},
		{"已关闭", schema.Fixed},
		{"Resolved", schema.Fixed},
		{"FIXED", schema.Fixed},
		{"未修复", schema.Unfixed},
		{"待修复", schema.Unfixed},
		{"修复中", schema.Unfixed},
		{"重新打开", schema.Unfixed},
		{"Open", schema.Unfixed},
		{"UNFIXED", schema.Unfixed},
		{"不修复", schema.Unfixed},
		{"暂不修复", schema.Unfixed},
		{"无需修复", schema.Unfixed},
		{"无法修复", schema.Unfixed},
		{"不予解决", schema.Unfixed},
		{"暂不处理", schema.Unfixed},
		{"Won't Fix", schema.Unfixed},
		{"wontfix", schema.Unfixed},
		{"修复后已关闭", schema.Fixed},
		{"", schema.StatusUnclassified},
		{"挂起", schema.StatusUnclassified},
	}

	n := newDefault()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.FixStatus(tt.input))
		})
	}
}

func TestCustomVocabulary(t *testing.T) {
	vocab := contract.DefaultVocabulary()
	vocab.Synonyms[schema.SeverityField] = []string{"优先级"}
	vocab.SeverityWords[schema.SeverityS] = []string{"P0"}
	n := New(vocab)

	assert.Equal(t, map[schema.Field]int{schema.SeverityField: 0}, n.Bind([]string{"优先级"}).Fields)
	assert.Equal(t, schema.SeverityS, n.Severity("p0"))
	assert.Empty(t, n.Bind([]string{"严重级别"}).Fields)
}
