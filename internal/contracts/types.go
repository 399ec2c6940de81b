package contracts

import (
	"encoding/json"
	"strconv"
)

// Score type labels used throughout department configurations.
// 국가 입시 도메인 용어라서 한글 값을 그대로 사용함
const (
	ScoreTypeStandard  = "표준점수"
	ScoreTypePercent   = "백분위"
	ScoreTypeConverted = "변환표준점수"
)

// Subject name labels as they appear in student score rows.
const (
	SubjectKorean  = "국어"
	SubjectMath    = "수학"
	SubjectEnglish = "영어"
	SubjectHistory = "한국사"
	SubjectInquiry = "탐구"
)

// Calculation type labels for FormulaData.
const (
	CalcTypeBasic   = "기본비율"
	CalcTypeSpecial = "특수공식"
)

// SubjectScore is one row of a student's CSAT score sheet.
// Upstream sources disagree on the converted-standard-score field name
// (converted_std / vstd / conv_std), so UnmarshalJSON folds the aliases
// into the canonical ConvertedStd at the ingestion boundary.
type SubjectScore struct {
	Name         string  `json:"name"`              // 국어/수학/영어/한국사/탐구
	Subject      string  `json:"subject,omitempty"` // 선택과목명 (예: 물리학I)
	Std          float64 `json:"std,omitempty"`     // 표준점수
	Percentile   float64 `json:"percentile,omitempty"`
	Grade        int     `json:"grade,omitempty"` // 1~9
	ConvertedStd float64 `json:"converted_std,omitempty"`
}

// UnmarshalJSON accepts the historical field aliases for converted
// standard scores.
func (s *SubjectScore) UnmarshalJSON(data []byte) error {
	type plain SubjectScore
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*s = SubjectScore(p)
	if s.ConvertedStd != 0 {
		return nil
	}

	var aliases struct {
		VStd    float64 `json:"vstd"`
		ConvStd float64 `json:"conv_std"`
	}
	if err := json.Unmarshal(data, &aliases); err == nil {
		if aliases.VStd != 0 {
			s.ConvertedStd = aliases.VStd
		} else if aliases.ConvStd != 0 {
			s.ConvertedStd = aliases.ConvStd
		}
	}
	return nil
}

// StudentScores is a student's full CSAT score sheet.
type StudentScores struct {
	Subjects []SubjectScore `json:"subjects"`
}

// Find returns the first row with the given subject name, or nil.
func (s *StudentScores) Find(name string) *SubjectScore {
	for i := range s.Subjects {
		if s.Subjects[i].Name == name {
			return &s.Subjects[i]
		}
	}
	return nil
}

// Inquiries returns all elective (탐구) rows in sheet order.
// 탐구 과목이 없는 학생도 있으므로 빈 슬라이스가 정상 입력임
func (s *StudentScores) Inquiries() []SubjectScore {
	var rows []SubjectScore
	for _, row := range s.Subjects {
		if row.Name == SubjectInquiry {
			rows = append(rows, row)
		}
	}
	return rows
}

// FormulaData is a department's full CSAT scoring configuration.
// The JSON-ish columns (score_config, selection_rules, bonus_rules,
// english_scores, history_scores) arrive either as parsed objects or as
// JSON-encoded strings depending on the upstream source; consumers must
// go through calcutil.SafeParse rather than assume a shape.
type FormulaData struct {
	UID    int   `json:"U_ID,omitempty"`
	DeptID int64 `json:"dept_id,omitempty"`
	Year   int   `json:"학년도,omitempty"`

	TotalScore   float64 `json:"총점"`
	SuneungRatio float64 `json:"수능"`
	KoreanRatio  float64 `json:"국어"`
	MathRatio    float64 `json:"수학"`
	EnglishRatio float64 `json:"영어"`
	InquiryRatio float64 `json:"탐구"`
	InquiryCount int     `json:"탐구수"`
	HistoryRatio float64 `json:"한국사"`

	CalcType       string `json:"계산유형,omitempty"` // 기본비율 | 특수공식
	SpecialFormula string `json:"특수공식,omitempty"`

	ScoreConfig    interface{} `json:"score_config,omitempty"`
	SelectionRules interface{} `json:"selection_rules,omitempty"`
	BonusRules     interface{} `json:"bonus_rules,omitempty"`
	EnglishScores  interface{} `json:"english_scores,omitempty"`
	HistoryScores  interface{} `json:"history_scores,omitempty"`

	EnglishHandling string `json:"영어처리,omitempty"`
	EnglishRemark   string `json:"영어비고,omitempty"`

	InquiryConv *ConversionMap `json:"탐구변표,omitempty"`
}

// ScoreConfig declares, per subject group, which score type to read and
// how to resolve the subject's ceiling score.
type ScoreConfig struct {
	KoreanMath SubjectScoreConfig `json:"korean_math"`
	Inquiry    SubjectScoreConfig `json:"inquiry"`
	English    EnglishScoreConfig `json:"english"`
}

// SubjectScoreConfig picks score type and max-score resolution for a
// subject group.
type SubjectScoreConfig struct {
	Type           string `json:"type"`             // 표준점수 | 백분위 | 변환표준점수
	MaxScoreMethod string `json:"max_score_method"` // fixed_100 | fixed_200 | highest_of_year
}

// EnglishScoreConfig resolves the English ceiling.
type EnglishScoreConfig struct {
	Type     string  `json:"type"` // fixed_max_score | ""
	MaxScore float64 `json:"max_score"`
}

// SelectionRule declares a top-K or ranked-weights subject selection.
type SelectionRule struct {
	Type    string    `json:"type"` // select_topk | select_ranked_weights
	From    []string  `json:"from"`
	Take    int       `json:"take,omitempty"`
	Method  string    `json:"method,omitempty"` // 평균 | 합계
	Weights []float64 `json:"weights,omitempty"`
}

// Selection rule type tags.
const (
	SelectTopK          = "select_topk"
	SelectRankedWeights = "select_ranked_weights"
)

// BonusRule is an additive (or subtractive) adjustment applied when a
// student's score satisfies a threshold condition.
type BonusRule struct {
	Subject   string  `json:"subject"`          // 국어/수학/영어/한국사/탐구
	Metric    string  `json:"metric"`           // grade | percentile | std
	Op        string  `json:"op"`               // gte | lte | eq
	Threshold float64 `json:"threshold"`
	Points    float64 `json:"points"`           // 음수면 감점
	Note      string  `json:"note,omitempty"`
}

// GradeTable maps grade (1..9) to an awarded score. Stored upstream as
// {"1": 100, "2": 95, ...}.
type GradeTable map[int]float64

// UnmarshalJSON accepts string-keyed grade maps.
func (g *GradeTable) UnmarshalJSON(data []byte) error {
	var raw map[string]json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(GradeTable, len(raw))
	for k, v := range raw {
		grade, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		f, err := v.Float64()
		if err != nil {
			continue
		}
		out[grade] = f
	}
	*g = out
	return nil
}

// HighestScoreMap maps subject name to the highest standard score any
// test-taker achieved that year.
type HighestScoreMap map[string]float64

// ConversionMap holds per-track percentile → converted-standard-score
// tables for the elective subjects.
type ConversionMap struct {
	Social  map[string]float64 `json:"사탐"`
	Science map[string]float64 `json:"과탐"`
}

// ForGroup returns the table for an inquiry group label (사탐/과탐).
func (c *ConversionMap) ForGroup(group string) map[string]float64 {
	if c == nil {
		return nil
	}
	if group == "과탐" {
		return c.Science
	}
	return c.Social
}

// Empty reports whether the conversion map carries no entries.
func (c *ConversionMap) Empty() bool {
	return c == nil || (len(c.Social) == 0 && len(c.Science) == 0)
}

// CalcResult is the outcome of one score calculation: a single total,
// per-subject attribution, and the narrative audit log.
type CalcResult struct {
	TotalScore     float64            `json:"totalScore"`
	Breakdown      map[string]float64 `json:"breakdown"`
	CalculationLog []string           `json:"calculationLog"`
}
