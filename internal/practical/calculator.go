package practical

import (
	"fmt"

	"github.com/paca/jungsi/backend/internal/calcutil"
	"github.com/paca/jungsi/backend/internal/contracts"
)

// CalculatePracticalScore computes a student's practical component for
// one department: per-event table lookup (or a named special rule),
// the below-minimum policy, and the ceiling cap. Malformed tables
// degrade to zero contribution per event; an unknown special rule
// degrades to the basic lookup-and-sum path.
func CalculatePracticalScore(
	f *contracts.PracticalFormulaData,
	student *contracts.StudentPracticalData,
) *contracts.CalcResult {
	breakdown := make(map[string]float64)
	var logs []string
	logf := func(format string, args ...interface{}) {
		logs = append(logs, fmt.Sprintf(format, args...))
	}

	if f == nil || student == nil {
		return &contracts.CalcResult{Breakdown: breakdown}
	}

	logf("[실기] 모드 %s, 총점 %.0f, 기본점수 %.0f, 미달처리 %s",
		modeOrDefault(f.Mode), f.Total, f.BaseScore, failRuleOrDefault(f.FailRule))

	scores := lookupAll(f, student, breakdown, logf)

	total, usedSpecial := applySpecialRule(f, student, scores, logf)
	if !usedSpecial {
		total = f.BaseScore
		for _, s := range scores {
			total += s.Score
		}
		logf("[실기] 기본 합산: 기본점수 %.1f + 종목 합계 → %.2f", f.BaseScore, total)
	}

	total = applyFailRule(f, total, logf)

	if f.Total > 0 && total > f.Total {
		logf("[실기] 총점 상한 %.0f 적용 (계산값 %.2f)", f.Total, total)
		total = f.Total
	}

	return &contracts.CalcResult{
		TotalScore:     calcutil.Round2(total),
		Breakdown:      breakdown,
		CalculationLog: logs,
	}
}

// lookupAll resolves every recorded event through the score table and
// fills the per-event breakdown.
func lookupAll(
	f *contracts.PracticalFormulaData,
	student *contracts.StudentPracticalData,
	breakdown map[string]float64,
	logf func(string, ...interface{}),
) []eventScore {
	scores := make([]eventScore, 0, len(student.Practicals))

	for _, rec := range student.Practicals {
		rules := EventRules(f.ScoreTable, rec.Event, student.Gender)
		raw := calcutil.SafeNumber(rec.Value, 0)

		es := eventScore{Event: rec.Event, RawValue: raw, HasTable: len(rules) > 0}

		if len(rules) == 0 {
			logf("[종목] %s: 배점표 없음, 0점 처리", rec.Event)
			scores = append(scores, es)
			breakdown[rec.Event] = 0
			continue
		}

		if score, ok := LookupScore(rules, raw); ok {
			es.Score, es.Met = score, true
			logf("[종목] %s 기록 %s → %.1f점", rec.Event, rec.Value, score)
		} else if score, ok := ConvertGradeToScore(rules, rec.Value); ok {
			es.Score, es.Met = score, true
			logf("[종목] %s 기록 %q 등급 매칭 → %.1f점", rec.Event, rec.Value, score)
		} else if failRuleOrDefault(f.FailRule) == contracts.FailRuleFloor {
			es.Score = FindMinScore(rules)
			logf("[종목] %s 기록 %s 미달 → 최하점 %.1f점", rec.Event, rec.Value, es.Score)
		} else {
			logf("[종목] %s 기록 %s 미달 → 0점", rec.Event, rec.Value)
		}

		breakdown[rec.Event] = calcutil.Round2(es.Score)
		scores = append(scores, es)
	}
	return scores
}

// applySpecialRule parses 실기특수설정 and dispatches it when the mode
// allows. Returns handled=false when no special rule applies.
func applySpecialRule(
	f *contracts.PracticalFormulaData,
	student *contracts.StudentPracticalData,
	scores []eventScore,
	logf func(string, ...interface{}),
) (float64, bool) {
	if f.SpecialConfig == nil {
		return 0, false
	}

	var cfg contracts.PracticalSpecialConfig
	if !calcutil.DecodeConfig(f.SpecialConfig, &cfg) || cfg.Type == "" {
		logf("[실기] 특수설정 해석 실패, 기본 합산으로 진행")
		return 0, false
	}

	logf("[실기] 특수규칙 %s 적용", cfg.Type)
	total, handled := CalcSpecial(&cfg, f, student, scores, logf)
	if !handled {
		logf("[실기] 알 수 없는 규칙 %q, 기본 합산으로 진행", cfg.Type)
	}
	return total, handled
}

// applyFailRule applies 미달처리 when the computed total falls below
// the department's base score: 0점 zeroes the practical component,
// 최하점 substitutes the base score.
func applyFailRule(f *contracts.PracticalFormulaData, total float64, logf func(string, ...interface{})) float64 {
	if f.BaseScore <= 0 || total >= f.BaseScore {
		return total
	}

	switch failRuleOrDefault(f.FailRule) {
	case contracts.FailRuleFloor:
		logf("[미달처리] 계산값 %.2f < 기본점수 %.1f → 최하점 %.1f", total, f.BaseScore, f.BaseScore)
		return f.BaseScore
	default:
		logf("[미달처리] 계산값 %.2f < 기본점수 %.1f → 0점", total, f.BaseScore)
		return 0
	}
}

func modeOrDefault(mode string) string {
	if mode == "" {
		return contracts.PracticalModeBasic
	}
	return mode
}

func failRuleOrDefault(rule string) string {
	if rule == "" {
		return contracts.FailRuleZero
	}
	return rule
}
