package schema

// TypeBreakdown counts one defect type and how many of those were fixed.
type TypeBreakdown struct {
	Total   int     `json:"total"`
	Fixed   int     `json:"fixed"`
	Unfixed int     `json:"unfixed"`
	FixRate float64 `json:"fix_rate"`
}

// SourceStats is the per-file slice of a merged table.
type SourceStats struct {
	Source         string           `json:"source"`
	Label          string           `json:"label"`
	Rows           int              `json:"rows"`
	Severity       map[Severity]int `json:"severity"`
	ProgramBugs    TypeBreakdown    `json:"program_bugs"`
	NonProgramBugs TypeBreakdown    `json:"non_program_bugs"`
	Fixed          int              `json:"fixed"`
	Unfixed        int              `json:"unfixed"`
	FixRate        float64          `json:"fix_rate"`
}

// DailyStats is one reporting day with its per-type fix counts.
type DailyStats struct {
	Date           string        `json:"date"`
	Total          int           `json:"total"`
	ProgramBugs    TypeBreakdown `json:"program_bugs"`
	NonProgramBugs TypeBreakdown `json:"non_program_bugs"`
	Fixed          int           `json:"fixed"`
	Unfixed        int           `json:"unfixed"`
	FixRate        float64       `json:"fix_rate"`
}

// NamedCount is a label with an occurrence count.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ColumnCount is a column with a cell count.
type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// AggregateStats is the immutable result of analyzing one table.
type AggregateStats struct {
	TotalRows      int                `json:"total_rows"`
	TotalColumns   int                `json:"total_columns"`
	Severity       map[Severity]int   `json:"severity"`
	DefectType     map[DefectType]int `json:"defect_type"`
	FixStatus      map[FixStatus]int  `json:"fix_status"`
	FixRate        float64            `json:"fix_rate"`
	ProgramBugs    TypeBreakdown      `json:"program_bugs"`
	NonProgramBugs TypeBreakdown      `json:"non_program_bugs"`
	BySource       []SourceStats      `json:"by_source,omitempty"`
	Modules        []NamedCount       `json:"modules,omitempty"`
	Daily          []DailyStats       `json:"daily,omitempty"`
	ColumnKinds    map[CellKind]int   `json:"column_kinds"`
	EmptyCells     int                `json:"empty_cells"`
	EmptyByColumn  []ColumnCount      `json:"empty_by_column,omitempty"`
	Completeness   float64            `json:"completeness"`
	DuplicateRows  int                `json:"duplicate_rows"`
	BoundFields    []Field            `json:"bound_fields,omitempty"`
	Merged         bool               `json:"merged"`
}

// NewSeverityCounts returns a counter with every severity present at zero.
func NewSeverityCounts() map[Severity]int {
	counts := make(map[Severity]int, len(AllSeverities))
	for _, s := range AllSeverities {
		counts[s] = 0
	}
	return counts
}

// NewDefectTypeCounts returns a counter with every defect type present at zero.
func NewDefectTypeCounts() map[DefectType]int {
	counts := make(map[DefectType]int, len(AllDefectTypes))
	for _, d := range AllDefectTypes {
		counts[d] = 0
	}
	return counts
}

// NewFixStatusCounts returns a counter with every fix state present at zero.
func NewFixStatusCounts() map[FixStatus]int {
	counts := make(map[FixStatus]int, len(AllFixStatuses))
	for _, s := range AllFixStatuses {
		counts[s] = 0
	}
	return counts
}

// FixRate returns fixed / (fixed + unfixed), or 0 when nothing is classified.
func FixRate(fixed, unfixed int) float64 {
	if fixed+unfixed == 0 {
		return 0
	}
	return float64(fixed) / float64(fixed+unfixed)
}
