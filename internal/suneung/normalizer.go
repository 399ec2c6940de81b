// Package suneung implements the CSAT (수능) score calculation engine:
// subject normalization, the special-formula variable context, and the
// calculator orchestrating basic-ratio, selection-rule, and
// special-formula scoring modes. The package is purely functional —
// every entry point is a deterministic function of its inputs and does
// no I/O.
package suneung

import (
	"sort"
	"strings"

	"github.com/paca/jungsi/backend/internal/calcutil"
	"github.com/paca/jungsi/backend/internal/contracts"
)

// PickByType extracts a subject row's score for the configured score
// type. 표준점수/변환표준점수 read the standard score; anything else
// reads the percentile. A missing row contributes 0.
func PickByType(row *contracts.SubjectScore, scoreType string) float64 {
	if row == nil {
		return 0
	}
	if scoreType == contracts.ScoreTypeStandard || scoreType == contracts.ScoreTypeConverted {
		return calcutil.SafeNumber(row.Std, 0)
	}
	return calcutil.SafeNumber(row.Percentile, 0)
}

// KoreanSubjectName returns the student's Korean elective name, falling
// back to the group label.
func KoreanSubjectName(row *contracts.SubjectScore) string {
	if row != nil && row.Subject != "" {
		return row.Subject
	}
	return contracts.SubjectKorean
}

// MathSubjectName returns the student's Math elective name.
func MathSubjectName(row *contracts.SubjectScore) string {
	if row != nil && row.Subject != "" {
		return row.Subject
	}
	return contracts.SubjectMath
}

// InquirySubjectName returns an elective row's course name.
func InquirySubjectName(row *contracts.SubjectScore) string {
	if row != nil && row.Subject != "" {
		return row.Subject
	}
	return contracts.SubjectInquiry
}

// ResolveTotal returns the department's target scale, defaulting to
// 1000 when absent or non-positive.
func ResolveTotal(f *contracts.FormulaData) float64 {
	if f == nil {
		return 1000
	}
	t := calcutil.SafeNumber(f.TotalScore, 0)
	if t > 0 {
		return t
	}
	return 1000
}

var bonusKeywords = []string{"가산점", "가감점", "가점", "감점"}

// DetectEnglishAsBonus reports whether a department treats English as a
// flat bonus/penalty instead of a weighted subject. The upstream data
// never carries an explicit flag, so this scans the free-text English
// handling fields for bonus keywords, and finally treats a zero English
// ratio combined with a present grade table as bonus mode.
func DetectEnglishAsBonus(f *contracts.FormulaData) bool {
	if f == nil {
		return false
	}

	if containsAny(f.EnglishHandling, bonusKeywords) {
		return true
	}
	if containsAny(f.EnglishRemark, bonusKeywords) {
		return true
	}

	// Remarks sometimes live in other free-text columns; scan any
	// string field whose JSON key mentions 영어/비고/설명/기타.
	for key, val := range freeTextFields(f) {
		if !keyMentionsEnglish(key) {
			continue
		}
		if strings.Contains(val, "영어") && containsAny(val, bonusKeywords) {
			return true
		}
	}

	if calcutil.SafeNumber(f.EnglishRatio, 0) == 0 && f.EnglishScores != nil {
		return true
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func keyMentionsEnglish(key string) bool {
	for _, frag := range []string{"영어", "비고", "설명", "기타"} {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}

// freeTextFields collects the formula's free-text columns keyed by
// their upstream names.
func freeTextFields(f *contracts.FormulaData) map[string]string {
	fields := map[string]string{
		"영어처리": f.EnglishHandling,
		"영어비고": f.EnglishRemark,
	}

	// String-typed raw config columns count as free text too: a JSON
	// blob mentioning 영어 가산점 in a remark field is how several
	// departments encode this.
	for key, raw := range map[string]interface{}{
		"score_config":    f.ScoreConfig,
		"selection_rules": f.SelectionRules,
		"bonus_rules":     f.BonusRules,
	} {
		if s, ok := raw.(string); ok {
			fields[key+"기타"] = s
		}
	}
	return fields
}

// IsSubjectUsedInRules reports whether a subject name appears in any
// selection rule's from list. Rules arrive as a single object or an
// array.
func IsSubjectUsedInRules(name string, rules []contracts.SelectionRule) bool {
	for _, r := range rules {
		for _, from := range r.From {
			if from == name {
				return true
			}
		}
	}
	return false
}

// InquiryPick is one elective candidate with its resolved value.
type InquiryPick struct {
	Row     contracts.SubjectScore
	Subject string
	Value   float64
}

// InquiryRepresentative is the outcome of electing representative
// inquiry scores: the mean of the picked subset plus both lists for
// the calculation log.
type InquiryRepresentative struct {
	Rep    float64
	Sorted []InquiryPick
	Picked []InquiryPick
}

// CalcInquiryRepresentative sorts the available elective rows
// descending by the configured score field, takes the top count
// (minimum 1), and returns their arithmetic mean. Absent electives are
// fine: an empty input yields a zero representative.
func CalcInquiryRepresentative(rows []contracts.SubjectScore, scoreType string, count int) InquiryRepresentative {
	sorted := make([]InquiryPick, 0, len(rows))
	for _, row := range rows {
		r := row
		sorted = append(sorted, InquiryPick{
			Row:     r,
			Subject: InquirySubjectName(&r),
			Value:   PickByType(&r, scoreType),
		})
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	if len(sorted) == 0 {
		return InquiryRepresentative{Rep: 0, Sorted: sorted, Picked: nil}
	}

	n := count
	if n < 1 {
		n = 1
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	picked := sorted[:n]

	sum := 0.0
	for _, p := range picked {
		sum += p.Value
	}

	return InquiryRepresentative{
		Rep:    sum / float64(len(picked)),
		Sorted: sorted,
		Picked: picked,
	}
}

// MaxScores carries each subject group's resolved ceiling.
type MaxScores struct {
	Korean  float64
	Math    float64
	English float64
	Inquiry float64
}

// ResolveMaxScores determines each subject group's ceiling score.
// Korean/Math default to 200 for standard-score (or fixed_200)
// departments and 100 otherwise; highest_of_year overrides them
// per-subject from the year's highest-score map keyed by the student's
// chosen course. The inquiry ceiling is 100 under current policy. The
// English ceiling is 100 unless fixed by config or inferable from the
// department's grade table.
func ResolveMaxScores(
	cfg *contracts.ScoreConfig,
	englishScores contracts.GradeTable,
	highest contracts.HighestScoreMap,
	student *contracts.StudentScores,
) MaxScores {
	kmType := contracts.ScoreTypePercent
	kmMethod := ""
	if cfg != nil {
		if cfg.KoreanMath.Type != "" {
			kmType = cfg.KoreanMath.Type
		}
		kmMethod = cfg.KoreanMath.MaxScoreMethod
	}

	korMax := 100.0
	if kmType == contracts.ScoreTypeStandard || kmMethod == "fixed_200" {
		korMax = 200
	}
	mathMax := korMax

	if kmMethod == "highest_of_year" && highest != nil && student != nil {
		korKey := KoreanSubjectName(student.Find(contracts.SubjectKorean))
		mathKey := MathSubjectName(student.Find(contracts.SubjectMath))
		if v, ok := highest[korKey]; ok {
			korMax = calcutil.SafeNumber(v, korMax)
		}
		if v, ok := highest[mathKey]; ok {
			mathMax = calcutil.SafeNumber(v, mathMax)
		}
	}

	engMax := 100.0
	if cfg != nil && cfg.English.Type == "fixed_max_score" && calcutil.SafeNumber(cfg.English.MaxScore, 0) > 0 {
		engMax = cfg.English.MaxScore
	} else if len(englishScores) > 0 {
		inferred := 0.0
		for _, v := range englishScores {
			if v > inferred {
				inferred = v
			}
		}
		if inferred > 0 {
			engMax = inferred
		}
	}

	// 탐구 만점은 현행 정책상 100 고정
	return MaxScores{
		Korean:  korMax,
		Math:    mathMax,
		English: engMax,
		Inquiry: 100,
	}
}

// ReadConvertedStd reads an elective's converted standard score,
// falling back through the standard score, then percentile, then 0.
// The field aliases themselves are folded at the contracts ingestion
// boundary.
func ReadConvertedStd(row *contracts.SubjectScore) float64 {
	if row == nil {
		return 0
	}
	if row.ConvertedStd != 0 {
		return calcutil.SafeNumber(row.ConvertedStd, 0)
	}
	if row.Std != 0 {
		return calcutil.SafeNumber(row.Std, 0)
	}
	return calcutil.SafeNumber(row.Percentile, 0)
}

var scienceKeywords = []string{"물리", "화학", "생명", "지구"}

// GuessInquiryGroup classifies an elective course name into 과탐
// (science track) or 사탐 (humanities track) by keyword. Pure string
// heuristic, no external lookup.
func GuessInquiryGroup(subjectName string) string {
	for _, kw := range scienceKeywords {
		if strings.Contains(subjectName, kw) {
			return "과탐"
		}
	}
	return "사탐"
}

// ParseSelectionRules resolves the selection_rules column (single
// object or array, string or parsed) into a typed slice.
func ParseSelectionRules(raw interface{}) []contracts.SelectionRule {
	if raw == nil {
		return nil
	}

	var many []contracts.SelectionRule
	if calcutil.DecodeConfig(raw, &many) && len(many) > 0 {
		return many
	}

	var one contracts.SelectionRule
	if calcutil.DecodeConfig(raw, &one) && (one.Type != "" || len(one.From) > 0) {
		return []contracts.SelectionRule{one}
	}
	return nil
}

// ParseBonusRules resolves the bonus_rules column into a typed slice.
func ParseBonusRules(raw interface{}) []contracts.BonusRule {
	if raw == nil {
		return nil
	}

	var many []contracts.BonusRule
	if calcutil.DecodeConfig(raw, &many) && len(many) > 0 {
		return many
	}

	var one contracts.BonusRule
	if calcutil.DecodeConfig(raw, &one) && one.Subject != "" {
		return []contracts.BonusRule{one}
	}
	return nil
}

// ParseScoreConfig resolves the score_config column.
func ParseScoreConfig(raw interface{}) *contracts.ScoreConfig {
	if raw == nil {
		return nil
	}
	var cfg contracts.ScoreConfig
	if calcutil.DecodeConfig(raw, &cfg) {
		return &cfg
	}
	return nil
}

// ParseGradeTable resolves an english_scores/history_scores column.
func ParseGradeTable(raw interface{}) contracts.GradeTable {
	if raw == nil {
		return nil
	}
	var table contracts.GradeTable
	if calcutil.DecodeConfig(raw, &table) && len(table) > 0 {
		return table
	}
	return nil
}
