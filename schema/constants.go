package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the summary output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// Severity is the canonical severity level of a bug record.
	Severity string

	// DefectType is the canonical defect classification of a bug record.
	DefectType string

	// FixStatus is the canonical fix state of a bug record.
	FixStatus string

	// Field names a canonical bug-record column.
	Field string

	// CellKind is the inferred kind of a spreadsheet cell.
	CellKind string

	// AnomalyKind classifies a structural problem found while cleaning or normalizing.
	AnomalyKind string

	// FileStatus is the per-file outcome of a run.
	FileStatus string

	// Stage names a pipeline step reported on the progress channel.
	Stage string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Severity levels, from most to least severe.
const (
	SeverityS            Severity = "S"
	SeverityA            Severity = "A"
	SeverityB            Severity = "B"
	SeverityC            Severity = "C"
	SeverityUnclassified Severity = "UNCLASSIFIED"
)

// Defect types.
const (
	ProgramBug         DefectType = "PROGRAM_BUG"
	NonProgramBug      DefectType = "NON_PROGRAM_BUG"
	DefectUnclassified DefectType = "UNCLASSIFIED"
	DefaultDefectType             = ProgramBug
)

// Fix states.
const (
	Fixed              FixStatus = "FIXED"
	Unfixed            FixStatus = "UNFIXED"
	StatusUnclassified FixStatus = "UNCLASSIFIED"
)

// Canonical fields. SourceFileField is only ever added by the merger.
const (
	SeverityField   Field = "severity"
	DefectTypeField Field = "defect_type"
	FixStatusField  Field = "fix_status"
	ModuleField     Field = "module"
	ReportedAtField Field = "reported_at"
	SourceFileField Field = "source_file"
)

// Cell kinds.
const (
	KindText   CellKind = "text"
	KindNumber CellKind = "number"
	KindDate   CellKind = "date"
	KindEmpty  CellKind = "empty"
)

// Anomaly kinds.
const (
	DuplicateHeader        AnomalyKind = "duplicate_header"
	UnnamedColumn          AnomalyKind = "unnamed_column"
	UnparseableCell        AnomalyKind = "unparseable_cell"
	EmptySheet             AnomalyKind = "empty_sheet"
	SchemaBindingAmbiguity AnomalyKind = "schema_binding_ambiguity"
)

// Per-file outcomes.
const (
	FileSucceeded FileStatus = "succeeded"
	FileSkipped   FileStatus = "skipped"
)

// Pipeline stages.
const (
	StageStart       Stage = "start"
	StageFileDone    Stage = "file_done"
	StageFileSkipped Stage = "file_skipped"
	StageMerge       Stage = "merge"
	StageAnalyze     Stage = "analyze"
	StageDone        Stage = "done"
)

// UnclassifiedModule is the module value used for empty module cells.
const UnclassifiedModule = "UNCLASSIFIED"

// AllSeverities lists severity levels in report order.
var AllSeverities = []Severity{SeverityS, SeverityA, SeverityB, SeverityC, SeverityUnclassified}

// AllDefectTypes lists defect types in report order.
var AllDefectTypes = []DefectType{ProgramBug, NonProgramBug, DefectUnclassified}

// AllFixStatuses lists fix states in report order.
var AllFixStatuses = []FixStatus{Fixed, Unfixed, StatusUnclassified}

// BindableFields lists the fields the normalizer binds, in binding order.
var BindableFields = []Field{SeverityField, DefectTypeField, FixStatusField, ModuleField, ReportedAtField}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSeverities lists all valid severity values.
var ValidSeverities = map[Severity]struct{}{
	SeverityS:            {},
	SeverityA:            {},
	SeverityB:            {},
	SeverityC:            {},
	SeverityUnclassified: {},
}

// ValidDefectTypes lists all valid defect types.
var ValidDefectTypes = map[DefectType]struct{}{
	ProgramBug:         {},
	NonProgramBug:      {},
	DefectUnclassified: {},
}

// ValidFixStatuses lists all valid fix states.
var ValidFixStatuses = map[FixStatus]struct{}{
	Fixed:              {},
	Unfixed:            {},
	StatusUnclassified: {},
}

// SeverityLabels maps severity levels to report display labels.
var SeverityLabels = map[Severity]string{
	SeverityS:            "S级",
	SeverityA:            "A级",
	SeverityB:            "B级",
	SeverityC:            "C级",
	SeverityUnclassified: "未分级",
}

// DefectTypeLabels maps defect types to report display labels.
var DefectTypeLabels = map[DefectType]string{
	ProgramBug:         "程序Bug",
	NonProgramBug:      "非程序Bug",
	DefectUnclassified: "未分类",
}

// FixStatusLabels maps fix states to report display labels.
var FixStatusLabels = map[FixStatus]string{
	Fixed:              "已修复",
	Unfixed:            "未修复",
	StatusUnclassified: "未分类",
}

// FieldLabels maps canonical fields to the column headers used in rendered reports.
var FieldLabels = map[Field]string{
	SeverityField:   "严重级别",
	DefectTypeField: "Bug类型",
	FixStatusField:  "修复状态",
	ModuleField:     "模块",
	ReportedAtField: "日期",
	SourceFileField: "文件来源",
}
