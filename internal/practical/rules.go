package practical

import (
	"regexp"
	"sort"

	"github.com/paca/jungsi/backend/internal/calcutil"
	"github.com/paca/jungsi/backend/internal/contracts"
	"github.com/paca/jungsi/backend/internal/suneung/formula"
)

// eventScore is a student's one event after table lookup.
type eventScore struct {
	Event    string
	RawValue float64
	Score    float64
	Met      bool // false면 해당 종목 미달
	HasTable bool // 배점표에 이 종목 행이 있었는지
}

// CalcSpecial applies a department's named special rule. The second
// return is false for an unrecognized rule type; the caller degrades to
// the basic lookup-and-sum path in that case.
func CalcSpecial(
	cfg *contracts.PracticalSpecialConfig,
	f *contracts.PracticalFormulaData,
	student *contracts.StudentPracticalData,
	scores []eventScore,
	logf func(string, ...interface{}),
) (float64, bool) {
	if cfg == nil {
		return 0, false
	}

	switch cfg.Type {
	case contracts.PracticalRuleLookup:
		return calcLookup(cfg, student, logf), true
	case contracts.PracticalRuleSimpleSum:
		return calcSimpleSum(cfg, scores, logf), true
	case contracts.PracticalRuleWeighted:
		return calcWeighted(cfg, student, logf), true
	case contracts.PracticalRuleAverage:
		return calcAverage(cfg, scores, logf), true
	case contracts.PracticalRuleTopN:
		return calcTopN(cfg, scores, logf), true
	case contracts.PracticalRuleFormula:
		return calcFormula(cfg, f, student, scores, logf), true
	case contracts.PracticalRulePassCount:
		return calcPassCount(cfg, scores, logf), true
	default:
		return 0, false
	}
}

// calcLookup sums the raw recorded values and maps the sum through the
// rule's [threshold, score] table (descending thresholds, first
// satisfied row wins).
func calcLookup(cfg *contracts.PracticalSpecialConfig, student *contracts.StudentPracticalData, logf func(string, ...interface{})) float64 {
	sum := 0.0
	for _, rec := range student.Practicals {
		sum += calcutil.SafeNumber(rec.Value, 0)
	}
	logf("[lookup] 기록 합계 %.1f", sum)

	for _, row := range cfg.Table {
		if len(row) < 2 {
			continue
		}
		if sum >= row[0] {
			logf("[lookup] 구간 %.1f 이상 → %.1f점", row[0], row[1])
			return row[1]
		}
	}

	// 어느 구간에도 못 들면 표의 마지막(최하) 구간
	if n := len(cfg.Table); n > 0 && len(cfg.Table[n-1]) >= 2 {
		return cfg.Table[n-1][1]
	}
	return 0
}

func calcSimpleSum(cfg *contracts.PracticalSpecialConfig, scores []eventScore, logf func(string, ...interface{})) float64 {
	sum := cfg.BaseScore
	for _, s := range scores {
		sum += s.Score
	}
	logf("[simple_sum] 기본 %.1f + 종목 합계 → %.1f", cfg.BaseScore, sum)
	return sum
}

// calcWeighted multiplies each named event's raw recorded value by its
// coefficient, then rescales to targetScore when one is declared.
func calcWeighted(cfg *contracts.PracticalSpecialConfig, student *contracts.StudentPracticalData, logf func(string, ...interface{})) float64 {
	total := 0.0
	for _, rec := range student.Practicals {
		w, ok := cfg.Weights[rec.Event]
		if !ok {
			continue
		}
		contrib := calcutil.SafeNumber(rec.Value, 0) * w
		total += contrib
		logf("[weighted] %s %.1f × %.2f = %.2f", rec.Event, calcutil.SafeNumber(rec.Value, 0), w, contrib)
	}

	if cfg.MaxScore > 0 && cfg.TargetScore > 0 {
		scaled := total / cfg.MaxScore * cfg.TargetScore
		logf("[weighted] %.2f / %.0f × %.0f = %.2f", total, cfg.MaxScore, cfg.TargetScore, scaled)
		return scaled
	}
	return total
}

// calcAverage averages the best count event scores, then applies the
// multiplier and base offset.
func calcAverage(cfg *contracts.PracticalSpecialConfig, scores []eventScore, logf func(string, ...interface{})) float64 {
	count := cfg.Count
	if count < 1 {
		count = len(scores)
	}
	best := topScores(scores, count)

	sum := 0.0
	for _, s := range best {
		sum += s
	}
	if len(best) == 0 {
		return cfg.BaseScore
	}

	avg := sum / float64(len(best))
	multiplier := cfg.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	total := avg*multiplier + cfg.BaseScore
	logf("[average] 상위 %d종목 평균 %.2f × %.1f + %.1f = %.2f", len(best), avg, multiplier, cfg.BaseScore, total)
	return total
}

// calcTopN sums the n highest event scores, capped at maxScore.
func calcTopN(cfg *contracts.PracticalSpecialConfig, scores []eventScore, logf func(string, ...interface{})) float64 {
	n := cfg.N
	if n < 1 {
		n = len(scores)
	}

	sum := 0.0
	for _, s := range topScores(scores, n) {
		sum += s
	}
	if cfg.MaxScore > 0 && sum > cfg.MaxScore {
		logf("[top_n] 합계 %.1f이 상한 %.1f 초과, 상한 적용", sum, cfg.MaxScore)
		sum = cfg.MaxScore
	}
	logf("[top_n] 상위 %d종목 합계 %.2f", n, sum)
	return sum
}

var formulaIdent = regexp.MustCompile(`\b(sum|avg|n)\b`)

// calcFormula evaluates the rule's fixed arithmetic template over the
// summed event scores (variables: sum, avg, n), or runs the
// manual-standards interpolation when the formula field carries that
// marker.
func calcFormula(
	cfg *contracts.PracticalSpecialConfig,
	f *contracts.PracticalFormulaData,
	student *contracts.StudentPracticalData,
	scores []eventScore,
	logf func(string, ...interface{}),
) float64 {
	if cfg.Formula == contracts.PracticalFormulaManualStandards {
		return calcManualStandards(cfg, f, student, logf)
	}

	n := cfg.Events
	if n < 1 {
		n = len(scores)
	}
	best := topScores(scores, n)

	sum := 0.0
	for _, s := range best {
		sum += s
	}
	avg := 0.0
	if len(best) > 0 {
		avg = sum / float64(len(best))
	}

	expr := formulaIdent.ReplaceAllString(cfg.Formula, "{$1}")
	ctx := map[string]float64{"sum": sum, "avg": avg, "n": float64(len(best))}

	val, err := formula.Evaluate(expr, ctx, nil)
	if err != nil {
		logf("[formula] 평가 실패 (%v), 합계로 대체", err)
		return sum
	}
	logf("[formula] %s (sum=%.1f) = %.2f", cfg.Formula, sum, val)
	return val
}

// calcManualStandards interpolates each recorded value against the
// event's declared min/max band for the student's gender. A reversed
// band (min > max) marks a lower-is-better event; the linear fraction
// handles both directions. Each event is worth an equal share of the
// practical total.
func calcManualStandards(
	cfg *contracts.PracticalSpecialConfig,
	f *contracts.PracticalFormulaData,
	student *contracts.StudentPracticalData,
	logf func(string, ...interface{}),
) float64 {
	if len(cfg.Standards) == 0 {
		return 0
	}

	perEvent := f.Total / float64(len(cfg.Standards))
	total := 0.0

	for _, rec := range student.Practicals {
		bands, ok := cfg.Standards[rec.Event]
		if !ok {
			continue
		}
		band, ok := bands[student.Gender]
		if !ok {
			continue
		}

		span := band.Max - band.Min
		if span == 0 {
			continue
		}
		frac := (calcutil.SafeNumber(rec.Value, 0) - band.Min) / span
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}

		contrib := frac * perEvent
		total += contrib
		logf("[manual_standards] %s %s 기준 %.1f~%.1f, 달성률 %.1f%% → %.2f",
			rec.Event, student.Gender, band.Min, band.Max, frac*100, contrib)
	}
	return total
}

// calcPassCount awards a flat score per passed event on top of the base
// score. 배점표가 있으면 조회 점수가 양수인 종목, 없으면 기록 자체가
// 양수인 종목을 통과로 본다.
func calcPassCount(cfg *contracts.PracticalSpecialConfig, scores []eventScore, logf func(string, ...interface{})) float64 {
	passes := 0
	for _, s := range scores {
		if (s.Met && s.Score > 0) || (!s.HasTable && s.RawValue > 0) {
			passes++
		}
	}
	total := cfg.BaseScore + float64(passes)*cfg.ScorePerPass
	logf("[pass_count] 통과 %d종목 × %.1f + 기본 %.1f = %.2f", passes, cfg.ScorePerPass, cfg.BaseScore, total)
	return total
}

func topScores(scores []eventScore, n int) []float64 {
	vals := make([]float64, 0, len(scores))
	for _, s := range scores {
		vals = append(vals, s.Score)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	if n > len(vals) {
		n = len(vals)
	}
	return vals[:n]
}
