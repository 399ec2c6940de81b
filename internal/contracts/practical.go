package contracts

// Practical mode labels.
const (
	PracticalModeBasic   = "basic"
	PracticalModeSpecial = "special"
)

// Below-minimum (미달처리) policy labels.
const (
	FailRuleZero  = "0점"  // 미달 시 실기 0점 처리
	FailRuleFloor = "최하점" // 미달 시 기본점수로 대체
)

// Gender labels for practical score table rows.
const (
	GenderMale   = "남"
	GenderFemale = "여"
	GenderCommon = "공통"
)

// PracticalScoreRecord is one row of a department's practical score
// table: for this event and gender, a recorded value (or bucket
// threshold) worth this many points. 기록 is kept as the raw string to
// preserve exact time/distance formatting ("11.5", "285", "통과").
type PracticalScoreRecord struct {
	Event  string      `json:"종목명"`
	Gender string      `json:"성별"` // 남 | 여 | 공통
	Record interface{} `json:"기록"` // string or number upstream
	Score  interface{} `json:"배점"` // string or number upstream
}

// PracticalFormulaData is a department's practical scoring
// configuration.
type PracticalFormulaData struct {
	UID    int   `json:"U_ID,omitempty"`
	DeptID int64 `json:"dept_id,omitempty"`

	Mode       string                 `json:"실기모드"` // basic | special
	Total      float64                `json:"실기총점"`
	BaseScore  float64                `json:"기본점수"`
	FailRule   string                 `json:"미달처리"` // 0점 | 최하점
	ScoreTable []PracticalScoreRecord `json:"실기배점"`

	// 실기특수설정: tagged special-rule config; arrives as object or
	// JSON string, parsed through calcutil.SafeParse.
	SpecialConfig interface{} `json:"실기특수설정,omitempty"`
}

// PracticalSpecialConfig is the parsed form of 실기특수설정. Type tags a
// named rule; the remaining fields are that rule's parameters.
type PracticalSpecialConfig struct {
	Type string `json:"type"` // lookup | simple_sum | weighted | average | top_n | formula | pass_count

	// lookup
	Table [][]float64 `json:"table,omitempty"` // [threshold, score] rows, descending

	// simple_sum / average / pass_count
	BaseScore float64 `json:"baseScore,omitempty"`

	// weighted
	Weights     map[string]float64 `json:"weights,omitempty"`
	TargetScore float64            `json:"targetScore,omitempty"`

	// average
	Count      int     `json:"count,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`

	// top_n
	N        int     `json:"n,omitempty"`
	MaxScore float64 `json:"maxScore,omitempty"`

	// formula: arithmetic over the summed event scores, or the
	// "manual_standards" marker with per-event min/max bounds
	Formula   string                          `json:"formula,omitempty"`
	Events    int                             `json:"events,omitempty"`
	Standards map[string]map[string]ScoreBand `json:"standards,omitempty"` // event → gender → band

	// pass_count
	ScorePerPass float64 `json:"scorePerPass,omitempty"`
}

// Practical special rule type tags.
const (
	PracticalRuleLookup    = "lookup"
	PracticalRuleSimpleSum = "simple_sum"
	PracticalRuleWeighted  = "weighted"
	PracticalRuleAverage   = "average"
	PracticalRuleTopN      = "top_n"
	PracticalRuleFormula   = "formula"
	PracticalRulePassCount = "pass_count"

	// Formula marker for interpolation against manual min/max bounds.
	PracticalFormulaManualStandards = "manual_standards"
)

// ScoreBand is a min/max bound pair for manual-standards interpolation.
// min > max means lower recorded values score higher (달리기 등 기록
// 경기는 방향이 반대).
type ScoreBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PracticalRecord is one recorded event result for a student.
type PracticalRecord struct {
	Event string `json:"event"`
	Value string `json:"value"`
}

// StudentPracticalData is a student's practical test sheet.
type StudentPracticalData struct {
	Gender     string            `json:"gender"` // 남 | 여
	Practicals []PracticalRecord `json:"practicals"`
}
