package contracts

import "context"

// FormulaRepository loads department scoring configurations.
type FormulaRepository interface {
	// GetFormula returns the CSAT scoring configuration for a
	// department in a given academic year.
	GetFormula(ctx context.Context, deptID int64, year int) (*FormulaData, error)

	// GetPracticalFormula returns the practical scoring configuration,
	// score table included.
	GetPracticalFormula(ctx context.Context, deptID int64, year int) (*PracticalFormulaData, error)

	// CopyYear duplicates every formula configuration from one academic
	// year into another, returning the number of departments copied.
	CopyYear(ctx context.Context, fromYear, toYear int) (int, error)
}

// ReferenceRepository loads year-level reference tables shared across
// departments.
type ReferenceRepository interface {
	// GetHighestScores returns the subject → highest-standard-score map
	// for a year (모형 = 수능).
	GetHighestScores(ctx context.Context, year int) (HighestScoreMap, error)

	// GetConversionMap returns a department's elective conversion
	// table, or an empty map when the department has none.
	GetConversionMap(ctx context.Context, deptID int64) (*ConversionMap, error)
}

// DepartmentRepository lists admitting units.
type DepartmentRepository interface {
	ListUniversities(ctx context.Context, year int) ([]University, error)
	ListDepartments(ctx context.Context, year int, univID int64) ([]Department, error)
	GetDepartment(ctx context.Context, deptID int64) (*Department, error)
	ListYears(ctx context.Context) ([]int, error)
}

// StudentRepository loads applicants and their score sheets.
type StudentRepository interface {
	ListStudents(ctx context.Context, year int) ([]Student, error)
	GetScores(ctx context.Context, studentID int64) (*StudentScores, error)
	GetPracticals(ctx context.Context, studentID int64) (*StudentPracticalData, error)
}

// ChangeLogRepository records and lists configuration edits.
type ChangeLogRepository interface {
	Append(ctx context.Context, log *ChangeLog) error
	List(ctx context.Context, deptID int64, limit int) ([]ChangeLog, error)
}
