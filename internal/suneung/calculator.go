package suneung

import (
	"fmt"
	"sort"

	"github.com/paca/jungsi/backend/internal/calcutil"
	"github.com/paca/jungsi/backend/internal/contracts"
	"github.com/paca/jungsi/backend/internal/suneung/formula"
)

// CalculateScore computes a student's CSAT score for one department
// configuration. The highest-score map is consulted only when the
// department resolves ceilings by highest_of_year.
func CalculateScore(
	f *contracts.FormulaData,
	student *contracts.StudentScores,
	highest contracts.HighestScoreMap,
) (*contracts.CalcResult, error) {
	return CalculateScoreWithConv(f, student, nil, nil, highest)
}

// CalculateScoreWithConv is CalculateScore plus a per-department
// elective conversion table (탐구변표) and an optional log hook that
// receives each calculation-log line as it is appended.
//
// The decision tree, in order: special formula owns the whole
// computation when configured; otherwise selection rules; otherwise the
// basic weighted-ratio path. Data-quality problems degrade to zero
// contributions; only a broken special formula returns an error.
func CalculateScoreWithConv(
	f *contracts.FormulaData,
	student *contracts.StudentScores,
	conv *contracts.ConversionMap,
	logHook func(string),
	highest contracts.HighestScoreMap,
) (*contracts.CalcResult, error) {
	if f == nil || student == nil {
		return &contracts.CalcResult{Breakdown: map[string]float64{}}, nil
	}

	c := &calculation{
		formula:   f,
		student:   student,
		conv:      pickConversion(f, conv),
		highest:   highest,
		logHook:   logHook,
		breakdown: make(map[string]float64),
	}
	c.prepare()

	// 1. 특수공식: 공식이 전체 계산을 소유함
	if f.CalcType == contracts.CalcTypeSpecial && f.SpecialFormula != "" {
		return c.runSpecialFormula()
	}

	// 2. 선택규칙 (상위 N 평균/합, 순위별 가중치)
	if len(c.selectionRules) > 0 {
		return c.runSelectionRules()
	}

	// 3. 기본비율
	return c.runBasicRatio()
}

// pickConversion prefers the formula's embedded 탐구변표 over the
// externally supplied one.
func pickConversion(f *contracts.FormulaData, external *contracts.ConversionMap) *contracts.ConversionMap {
	if f != nil && !f.InquiryConv.Empty() {
		return f.InquiryConv
	}
	return external
}

// calculation carries the per-call working state so the three scoring
// paths share one prepared view of the configuration.
type calculation struct {
	formula *contracts.FormulaData
	student *contracts.StudentScores
	conv    *contracts.ConversionMap
	highest contracts.HighestScoreMap
	logHook func(string)

	scoreConfig    *contracts.ScoreConfig
	selectionRules []contracts.SelectionRule
	bonusRules     []contracts.BonusRule
	englishTable   contracts.GradeTable
	historyTable   contracts.GradeTable
	englishIsBonus bool
	maxScores      MaxScores
	total          float64
	suneungShare   float64 // 수능 반영비율을 0..1로

	breakdown map[string]float64
	logs      []string
}

func (c *calculation) prepare() {
	f := c.formula

	c.scoreConfig = ParseScoreConfig(f.ScoreConfig)
	c.selectionRules = ParseSelectionRules(f.SelectionRules)
	c.bonusRules = ParseBonusRules(f.BonusRules)
	c.englishTable = ParseGradeTable(f.EnglishScores)
	c.historyTable = ParseGradeTable(f.HistoryScores)
	c.englishIsBonus = DetectEnglishAsBonus(f)
	c.maxScores = ResolveMaxScores(c.scoreConfig, c.englishTable, c.highest, c.student)
	c.total = ResolveTotal(f)

	ratio := calcutil.SafeNumber(f.SuneungRatio, 0)
	if ratio <= 0 {
		ratio = 100
	}
	c.suneungShare = ratio / 100

	c.logf("[설정] 총점 %.0f, 수능 반영비율 %.0f%%", c.total, ratio)
}

func (c *calculation) logf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	c.logs = append(c.logs, line)
	if c.logHook != nil {
		c.logHook(line)
	}
}

func (c *calculation) result(total float64) *contracts.CalcResult {
	return &contracts.CalcResult{
		TotalScore:     calcutil.Round2(total),
		Breakdown:      c.breakdown,
		CalculationLog: c.logs,
	}
}

// ---- 특수공식 ----

func (c *calculation) runSpecialFormula() (*contracts.CalcResult, error) {
	c.logf("[계산유형] 특수공식")

	ctx := BuildSpecialContext(c.student, c.formula, ContextOptions{
		MaxScores:  c.maxScores,
		Conversion: c.conv,
		English:    c.englishTable,
		History:    c.historyTable,
	})

	before := len(c.logs)
	val, err := formula.Evaluate(c.formula.SpecialFormula, ctx, &c.logs)
	if err != nil {
		// 공식 자체가 깨진 건 데이터 문제와 달리 호출자에게 알림
		return nil, err
	}
	if c.logHook != nil {
		for _, line := range c.logs[before:] {
			c.logHook(line)
		}
	}

	c.breakdown["특수공식"] = calcutil.Round2(val)
	c.logf("[특수공식 결과] %.2f", val)
	return c.result(val), nil
}

// ---- 선택규칙 ----

// subjectCandidate is one subject's normalized (0..1) score entering a
// selection rule.
type subjectCandidate struct {
	name string
	norm float64
}

func (c *calculation) runSelectionRules() (*contracts.CalcResult, error) {
	c.logf("[계산유형] 선택규칙 %d건", len(c.selectionRules))

	share := 0.0
	for _, rule := range c.selectionRules {
		share += c.applySelectionRule(rule)
	}

	base := share * c.total * c.suneungShare
	c.logf("[선택규칙 합산] %.4f × %.0f × %.2f = %.2f", share, c.total, c.suneungShare, base)

	total := base
	total += c.addEnglishOutsideRules()
	total += c.addHistoryContribution()
	total += c.applyBonusRules()

	return c.result(total), nil
}

func (c *calculation) applySelectionRule(rule contracts.SelectionRule) float64 {
	candidates := make([]subjectCandidate, 0, len(rule.From))
	for _, name := range rule.From {
		candidates = append(candidates, subjectCandidate{
			name: name,
			norm: c.normalizedSubjectScore(name),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].norm > candidates[j].norm
	})

	for _, cand := range candidates {
		c.logf("[선택규칙 후보] %s = %.4f", cand.name, cand.norm)
	}

	switch rule.Type {
	case contracts.SelectRankedWeights:
		share := 0.0
		for i, w := range rule.Weights {
			if i >= len(candidates) {
				break
			}
			contrib := w * candidates[i].norm
			share += contrib
			c.attribute(candidates[i].name, contrib*c.total*c.suneungShare)
			c.logf("[순위가중] %d위 %s × %.2f = %.4f", i+1, candidates[i].name, w, contrib)
		}
		return share

	case contracts.SelectTopK:
		k := rule.Take
		if k < 1 {
			k = 1
		}
		if k > len(candidates) {
			k = len(candidates)
		}
		// 평균 방식에서는 과목별 기여도 1/k로 나눠야 분해 합이
		// 규칙 기여분과 일치함
		divisor := 1.0
		if rule.Method != "합계" {
			divisor = float64(k)
		}

		sum := 0.0
		for _, cand := range candidates[:k] {
			sum += cand.norm
			c.attribute(cand.name, cand.norm/divisor*c.total*c.suneungShare)
		}
		if rule.Method == "합계" {
			c.logf("[상위선택] %d과목 합계 = %.4f", k, sum)
			return sum
		}
		avg := sum / float64(k)
		c.logf("[상위선택] %d과목 평균 = %.4f", k, avg)
		return avg

	default:
		c.logf("[선택규칙] 알 수 없는 유형 %q, 건너뜀", rule.Type)
		return 0
	}
}

// normalizedSubjectScore resolves a subject's 0..1 score for selection
// rules: raw value over its ceiling.
func (c *calculation) normalizedSubjectScore(name string) float64 {
	switch name {
	case contracts.SubjectKorean:
		return safeDiv(c.subjectValue(contracts.SubjectKorean), c.maxScores.Korean)
	case contracts.SubjectMath:
		return safeDiv(c.subjectValue(contracts.SubjectMath), c.maxScores.Math)
	case contracts.SubjectEnglish:
		return safeDiv(c.englishScore(), c.maxScores.English)
	case contracts.SubjectInquiry:
		return safeDiv(c.inquiryRepresentative().Rep, c.maxScores.Inquiry)
	case contracts.SubjectHistory:
		return safeDiv(c.historyScore(), maxTableScore(c.historyTable, defaultHistoryTable))
	default:
		return 0
	}
}

// addEnglishOutsideRules adds the English contribution when no
// selection rule already consumed it.
func (c *calculation) addEnglishOutsideRules() float64 {
	if IsSubjectUsedInRules(contracts.SubjectEnglish, c.selectionRules) {
		return 0
	}
	return c.englishContribution()
}

// ---- 기본비율 ----

func (c *calculation) runBasicRatio() (*contracts.CalcResult, error) {
	c.logf("[계산유형] 기본비율")

	total := 0.0
	f := c.formula

	kmType := contracts.ScoreTypePercent
	if c.scoreConfig != nil && c.scoreConfig.KoreanMath.Type != "" {
		kmType = c.scoreConfig.KoreanMath.Type
	}

	if ratio := calcutil.SafeNumber(f.KoreanRatio, 0); ratio > 0 {
		row := c.student.Find(contracts.SubjectKorean)
		val := PickByType(row, kmType)
		contrib := safeDiv(val, c.maxScores.Korean) * (ratio / 100) * c.total * c.suneungShare
		c.attribute(contracts.SubjectKorean, contrib)
		c.logf("[국어] %s %.1f / %.0f × %.0f%% → %.2f", kmType, val, c.maxScores.Korean, ratio, contrib)
		total += contrib
	}

	if ratio := calcutil.SafeNumber(f.MathRatio, 0); ratio > 0 {
		row := c.student.Find(contracts.SubjectMath)
		val := PickByType(row, kmType)
		contrib := safeDiv(val, c.maxScores.Math) * (ratio / 100) * c.total * c.suneungShare
		c.attribute(contracts.SubjectMath, contrib)
		c.logf("[수학] %s %.1f / %.0f × %.0f%% → %.2f", kmType, val, c.maxScores.Math, ratio, contrib)
		total += contrib
	}

	if ratio := calcutil.SafeNumber(f.InquiryRatio, 0); ratio > 0 {
		rep := c.inquiryRepresentative()
		contrib := safeDiv(rep.Rep, c.maxScores.Inquiry) * (ratio / 100) * c.total * c.suneungShare
		c.attribute(contracts.SubjectInquiry, contrib)
		c.logf("[탐구] 대표값 %.2f (%d과목 중 %d과목) / %.0f × %.0f%% → %.2f",
			rep.Rep, len(rep.Sorted), len(rep.Picked), c.maxScores.Inquiry, ratio, contrib)
		total += contrib
	}

	total += c.englishContribution()
	total += c.addHistoryContribution()
	total += c.applyBonusRules()

	return c.result(total), nil
}

// ---- 영어 / 한국사 / 가산점 ----

func (c *calculation) englishScore() float64 {
	row := c.student.Find(contracts.SubjectEnglish)
	return GradeScore(rowGrade(row), c.englishTable, defaultEnglishTable)
}

func (c *calculation) historyScore() float64 {
	row := c.student.Find(contracts.SubjectHistory)
	return GradeScore(rowGrade(row), c.historyTable, defaultHistoryTable)
}

// englishContribution applies the department's English mode: a flat
// bonus added after scaling, or a ratio-weighted subject like any
// other.
func (c *calculation) englishContribution() float64 {
	score := c.englishScore()
	ratio := calcutil.SafeNumber(c.formula.EnglishRatio, 0)

	if c.englishIsBonus || ratio <= 0 {
		if score == 0 {
			return 0
		}
		c.attribute(contracts.SubjectEnglish, score)
		c.logf("[영어] 가산점 방식 → %.2f점 가산", score)
		return score
	}

	contrib := safeDiv(score, c.maxScores.English) * (ratio / 100) * c.total * c.suneungShare
	c.attribute(contracts.SubjectEnglish, contrib)
	c.logf("[영어] 등급환산 %.1f / %.0f × %.0f%% → %.2f", score, c.maxScores.English, ratio, contrib)
	return contrib
}

// addHistoryContribution treats 한국사 as a ratio subject only when a
// ratio is declared; the national default is a small flat bonus from
// the grade table.
func (c *calculation) addHistoryContribution() float64 {
	score := c.historyScore()
	if score == 0 {
		return 0
	}

	ratio := calcutil.SafeNumber(c.formula.HistoryRatio, 0)
	if ratio > 0 {
		histMax := maxTableScore(c.historyTable, defaultHistoryTable)
		contrib := safeDiv(score, histMax) * (ratio / 100) * c.total * c.suneungShare
		c.attribute(contracts.SubjectHistory, contrib)
		c.logf("[한국사] 등급환산 %.1f / %.1f × %.0f%% → %.2f", score, histMax, ratio, contrib)
		return contrib
	}

	c.attribute(contracts.SubjectHistory, score)
	c.logf("[한국사] 가산점 %.2f점", score)
	return score
}

// applyBonusRules evaluates each additive/subtractive rule against the
// student's sheet and returns the net adjustment.
func (c *calculation) applyBonusRules() float64 {
	adjust := 0.0
	for _, rule := range c.bonusRules {
		if !c.bonusRuleMatches(rule) {
			continue
		}
		adjust += rule.Points
		c.attribute("가산점:"+rule.Subject, rule.Points)
		c.logf("[가산점] %s %s %s %.1f → %+.2f점 (%s)",
			rule.Subject, rule.Metric, rule.Op, rule.Threshold, rule.Points, rule.Note)
	}
	return adjust
}

func (c *calculation) bonusRuleMatches(rule contracts.BonusRule) bool {
	row := c.student.Find(rule.Subject)
	if row == nil && rule.Subject == contracts.SubjectInquiry {
		inqs := c.student.Inquiries()
		if len(inqs) > 0 {
			row = &inqs[0]
		}
	}
	if row == nil {
		return false
	}

	var metric float64
	switch rule.Metric {
	case "grade":
		metric = float64(row.Grade)
	case "percentile":
		metric = calcutil.SafeNumber(row.Percentile, 0)
	case "std":
		metric = calcutil.SafeNumber(row.Std, 0)
	default:
		return false
	}

	switch rule.Op {
	case "gte":
		return metric >= rule.Threshold
	case "lte":
		return metric <= rule.Threshold
	case "eq":
		return metric == rule.Threshold
	default:
		return false
	}
}

// ---- helpers ----

// subjectValue reads a non-elective subject's configured score type.
func (c *calculation) subjectValue(name string) float64 {
	kmType := contracts.ScoreTypePercent
	if c.scoreConfig != nil && c.scoreConfig.KoreanMath.Type != "" {
		kmType = c.scoreConfig.KoreanMath.Type
	}
	return PickByType(c.student.Find(name), kmType)
}

// inquiryRepresentative elects the representative elective value per
// the configured score type. 변환표준점수는 변표 매핑을 거친 값으로
// 대표값을 뽑는다.
func (c *calculation) inquiryRepresentative() InquiryRepresentative {
	inqType := contracts.ScoreTypePercent
	if c.scoreConfig != nil && c.scoreConfig.Inquiry.Type != "" {
		inqType = c.scoreConfig.Inquiry.Type
	}
	count := c.formula.InquiryCount
	if count < 1 {
		count = 2
	}

	rows := c.student.Inquiries()
	if inqType != contracts.ScoreTypeConverted {
		return CalcInquiryRepresentative(rows, inqType, count)
	}

	converted := make([]contracts.SubjectScore, len(rows))
	for i, row := range rows {
		r := row
		converted[i] = row
		converted[i].Std = convertedStd(&r, c.conv)
	}
	return CalcInquiryRepresentative(converted, contracts.ScoreTypeStandard, count)
}

func (c *calculation) attribute(name string, contrib float64) {
	c.breakdown[name] = calcutil.Round2(c.breakdown[name] + contrib)
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func maxTableScore(table, fallback contracts.GradeTable) float64 {
	src := table
	if len(src) == 0 {
		src = fallback
	}
	max := 0.0
	for _, v := range src {
		if v > max {
			max = v
		}
	}
	return max
}
