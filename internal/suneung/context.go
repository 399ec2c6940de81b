package suneung

import (
	"github.com/paca/jungsi/backend/internal/calcutil"
	"github.com/paca/jungsi/backend/internal/contracts"
)

// Default grade tables applied when a department declares none.
// ⭐ SSOT: 기본 등급표는 여기서만 정의
var (
	defaultEnglishTable = contracts.GradeTable{
		1: 100, 2: 95, 3: 90, 4: 85, 5: 80, 6: 75, 7: 70, 8: 65, 9: 60,
	}
	defaultHistoryTable = contracts.GradeTable{
		1: 10, 2: 10, 3: 10, 4: 9.8, 5: 9.6, 6: 9.4, 7: 9.2, 8: 9.0, 9: 8.8,
	}
)

// GradeScore looks a grade up in a table, falling back to the given
// default table, then 0. Grade 0 (미응시) always scores 0.
func GradeScore(grade int, table, fallback contracts.GradeTable) float64 {
	if grade <= 0 {
		return 0
	}
	if table != nil {
		if v, ok := table[grade]; ok {
			return calcutil.SafeNumber(v, 0)
		}
	}
	if fallback != nil {
		if v, ok := fallback[grade]; ok {
			return calcutil.SafeNumber(v, 0)
		}
	}
	return 0
}

// ContextOptions supplies the reference data the context builder needs
// beyond the student sheet and the department formula.
type ContextOptions struct {
	MaxScores  MaxScores
	Conversion *contracts.ConversionMap
	English    contracts.GradeTable
	History    contracts.GradeTable
}

// BuildSpecialContext assembles the flat variable mapping a special
// formula may reference. This is the single seam between raw student
// data and formula text: every value passes through SafeNumber, so a
// missing subject contributes 0 rather than poisoning the expression.
func BuildSpecialContext(
	student *contracts.StudentScores,
	f *contracts.FormulaData,
	opts ContextOptions,
) map[string]float64 {
	ctx := make(map[string]float64, 32)

	kor := student.Find(contracts.SubjectKorean)
	math := student.Find(contracts.SubjectMath)
	eng := student.Find(contracts.SubjectEnglish)
	hist := student.Find(contracts.SubjectHistory)
	inqs := student.Inquiries()

	ctx["kor_std"] = rowStd(kor)
	ctx["kor_pct"] = rowPct(kor)
	ctx["math_std"] = rowStd(math)
	ctx["math_pct"] = rowPct(math)

	ctx["eng_grade_score"] = GradeScore(rowGrade(eng), opts.English, defaultEnglishTable)
	ctx["hist_grade_score"] = GradeScore(rowGrade(hist), opts.History, defaultHistoryTable)

	var inq1, inq2 *contracts.SubjectScore
	if len(inqs) > 0 {
		inq1 = &inqs[0]
	}
	if len(inqs) > 1 {
		inq2 = &inqs[1]
	}

	ctx["inq1_std"] = rowStd(inq1)
	ctx["inq1_pct"] = rowPct(inq1)
	ctx["inq1_conv"] = convertedStd(inq1, opts.Conversion)
	ctx["inq2_std"] = rowStd(inq2)
	ctx["inq2_pct"] = rowPct(inq2)
	ctx["inq2_conv"] = convertedStd(inq2, opts.Conversion)

	ctx["inq_avg_pct"] = (ctx["inq1_pct"] + ctx["inq2_pct"]) / 2
	ctx["inq_sum_std"] = ctx["inq1_std"] + ctx["inq2_std"]
	ctx["inq_sum_converted"] = ctx["inq1_conv"] + ctx["inq2_conv"]
	ctx["inq_avg_converted"] = ctx["inq_sum_converted"] / 2

	// 탐구 1과목 학생은 평균 변수도 그 한 과목 기준으로 계산
	if inq2 == nil && inq1 != nil {
		ctx["inq_avg_pct"] = ctx["inq1_pct"]
		ctx["inq_avg_converted"] = ctx["inq1_conv"]
	}

	ctx["kor_max"] = calcutil.SafeNumber(opts.MaxScores.Korean, 100)
	ctx["math_max"] = calcutil.SafeNumber(opts.MaxScores.Math, 100)

	if f != nil {
		addRatioConstants(ctx, f)
	}
	return ctx
}

// addRatioConstants exposes the department's subject ratios both as raw
// percentages (ratio_kor) and normalized shares (ratio_kor_norm, the
// ratio divided by the sum of all declared ratios).
func addRatioConstants(ctx map[string]float64, f *contracts.FormulaData) {
	ratios := map[string]float64{
		"ratio_kor":  calcutil.SafeNumber(f.KoreanRatio, 0),
		"ratio_math": calcutil.SafeNumber(f.MathRatio, 0),
		"ratio_eng":  calcutil.SafeNumber(f.EnglishRatio, 0),
		"ratio_inq":  calcutil.SafeNumber(f.InquiryRatio, 0),
		"ratio_hist": calcutil.SafeNumber(f.HistoryRatio, 0),
	}

	sum := 0.0
	for _, v := range ratios {
		sum += v
	}

	for name, v := range ratios {
		ctx[name] = v
		if sum > 0 {
			ctx[name+"_norm"] = v / sum
		} else {
			ctx[name+"_norm"] = 0
		}
	}

	ctx["total"] = ResolveTotal(f)
	ctx["suneung_ratio"] = calcutil.SafeNumber(f.SuneungRatio, 100)
}

func rowStd(row *contracts.SubjectScore) float64 {
	if row == nil {
		return 0
	}
	return calcutil.SafeNumber(row.Std, 0)
}

func rowPct(row *contracts.SubjectScore) float64 {
	if row == nil {
		return 0
	}
	return calcutil.SafeNumber(row.Percentile, 0)
}

func rowGrade(row *contracts.SubjectScore) int {
	if row == nil {
		return 0
	}
	return row.Grade
}

// convertedStd resolves an elective's converted standard score. When a
// department carries a 탐구변표 the student's percentile is mapped
// through the track table (과탐/사탐 by course-name heuristic); the
// sheet's own converted value is the fallback chain otherwise.
func convertedStd(row *contracts.SubjectScore, conv *contracts.ConversionMap) float64 {
	if row == nil {
		return 0
	}
	if !conv.Empty() {
		group := GuessInquiryGroup(InquirySubjectName(row))
		if table := conv.ForGroup(group); len(table) > 0 {
			return calcutil.MapPercentileToConverted(table, rowPct(row))
		}
	}
	return ReadConvertedStd(row)
}
