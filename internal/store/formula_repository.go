// Package store implements the contracts repository interfaces on
// PostgreSQL. Each repository owns one concern's tables; all queries go
// through a shared pgxpool.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paca/jungsi/backend/internal/calcutil"
	"github.com/paca/jungsi/backend/internal/contracts"
	"github.com/paca/jungsi/backend/pkg/logger"
)

// FormulaRepository implements contracts.FormulaRepository.
// ⭐ SSOT: 학과 계산식 조회는 여기서만
type FormulaRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewFormulaRepository creates a new formula repository.
func NewFormulaRepository(pool *pgxpool.Pool, log *logger.Logger) *FormulaRepository {
	return &FormulaRepository{pool: pool, log: log}
}

// subjectsConfig is the JSON shape of formula_configs.subjects_config.
type subjectsConfig struct {
	Korean  subjectEntry `json:"korean"`
	Math    subjectEntry `json:"math"`
	English subjectEntry `json:"english"`
	Inquiry subjectEntry `json:"inquiry"`
	History subjectEntry `json:"history"`
}

type subjectEntry struct {
	Ratio float64 `json:"ratio"`
	Count int     `json:"count"`
	Mode  string  `json:"mode"` // 표준점수 | 백분위 | 변환표준점수
}

// GetFormula loads and assembles a department's CSAT scoring
// configuration for one academic year.
func (r *FormulaRepository) GetFormula(ctx context.Context, deptID int64, year int) (*contracts.FormulaData, error) {
	query := `
		SELECT f.dept_id, COALESCE(f.legacy_uid, 0),
		       COALESCE(f.total_score, 1000), COALESCE(f.suneung_ratio, 100),
		       COALESCE(f.subjects_config, '{}'),
		       COALESCE(f.selection_rules, ''), COALESCE(f.bonus_rules, ''),
		       COALESCE(f.legacy_formula, ''),
		       COALESCE(f.english_scores, ''), COALESCE(f.history_scores, ''),
		       d.year_id
		FROM formula_configs f
		JOIN departments d ON f.dept_id = d.dept_id
		WHERE f.dept_id = $1 AND d.year_id = $2
	`

	var (
		f                contracts.FormulaData
		subjectsRaw      string
		selectionRules   string
		bonusRules       string
		specialFormula   string
		englishScores    string
		historyScores    string
	)
	err := r.pool.QueryRow(ctx, query, deptID, year).Scan(
		&f.DeptID, &f.UID, &f.TotalScore, &f.SuneungRatio,
		&subjectsRaw, &selectionRules, &bonusRules, &specialFormula,
		&englishScores, &historyScores, &f.Year,
	)
	if err != nil {
		return nil, fmt.Errorf("formula query dept %d year %d: %w", deptID, year, err)
	}

	var sc subjectsConfig
	if err := json.Unmarshal([]byte(subjectsRaw), &sc); err != nil {
		r.log.WithDept(deptID).WithError(err).Warn("subjects_config 파싱 실패, 비율 0으로 진행")
	}
	f.KoreanRatio = sc.Korean.Ratio
	f.MathRatio = sc.Math.Ratio
	f.EnglishRatio = sc.English.Ratio
	f.InquiryRatio = sc.Inquiry.Ratio
	f.HistoryRatio = sc.History.Ratio
	f.InquiryCount = sc.Inquiry.Count
	if f.InquiryCount == 0 {
		f.InquiryCount = 2
	}

	if sc.Korean.Mode != "" || sc.Inquiry.Mode != "" || sc.English.Mode != "" {
		cfg := contracts.ScoreConfig{
			KoreanMath: contracts.SubjectScoreConfig{Type: sc.Korean.Mode},
			Inquiry:    contracts.SubjectScoreConfig{Type: sc.Inquiry.Mode},
		}
		f.ScoreConfig = cfg
	}

	if selectionRules != "" {
		f.SelectionRules = selectionRules
	}
	if bonusRules != "" {
		f.BonusRules = bonusRules
	}
	if specialFormula != "" {
		f.CalcType = contracts.CalcTypeSpecial
		f.SpecialFormula = specialFormula
	} else {
		f.CalcType = contracts.CalcTypeBasic
	}
	if englishScores != "" {
		f.EnglishScores = englishScores
		r.warnNonMonotonic(deptID, "english_scores", englishScores)
	}
	if historyScores != "" {
		f.HistoryScores = historyScores
		r.warnNonMonotonic(deptID, "history_scores", historyScores)
	}

	return &f, nil
}

// warnNonMonotonic logs when a grade table awards a worse grade more
// points than a better one. 비단조 등급표를 의도적으로 쓰는 학과가
// 있을 수 있어 막지는 않고 기록만 남긴다.
func (r *FormulaRepository) warnNonMonotonic(deptID int64, field, raw string) {
	var table contracts.GradeTable
	if !calcutil.DecodeConfig(raw, &table) {
		return
	}
	for grade := 1; grade < 9; grade++ {
		better, okB := table[grade]
		worse, okW := table[grade+1]
		if okB && okW && worse > better {
			r.log.WithDept(deptID).WithFields(map[string]interface{}{
				"field": field,
				"grade": grade,
			}).Warn("등급표가 단조감소가 아님")
			return
		}
	}
}

// GetPracticalFormula loads a department's practical configuration:
// the mode/total/policy columns, the full score table, and the special
// rule when one is registered.
func (r *FormulaRepository) GetPracticalFormula(ctx context.Context, deptID int64, year int) (*contracts.PracticalFormulaData, error) {
	query := `
		SELECT f.dept_id, COALESCE(f.legacy_uid, 0),
		       COALESCE(f.practical_mode, 'basic'),
		       COALESCE(f.practical_total, 0),
		       COALESCE(f.practical_base_score, 0),
		       COALESCE(f.practical_fail_rule, '0점'),
		       COALESCE(f.practical_special_config, '')
		FROM formula_configs f
		JOIN departments d ON f.dept_id = d.dept_id
		WHERE f.dept_id = $1 AND d.year_id = $2
	`

	var (
		f             contracts.PracticalFormulaData
		specialConfig string
	)
	err := r.pool.QueryRow(ctx, query, deptID, year).Scan(
		&f.DeptID, &f.UID, &f.Mode, &f.Total, &f.BaseScore, &f.FailRule, &specialConfig,
	)
	if err != nil {
		return nil, fmt.Errorf("practical formula query dept %d year %d: %w", deptID, year, err)
	}

	f.ScoreTable, err = r.loadScoreTable(ctx, deptID)
	if err != nil {
		return nil, err
	}

	// practical_calc_rules가 practical_special_config보다 우선
	rule, err := r.loadSpecialRule(ctx, deptID)
	if err != nil {
		return nil, err
	}
	if rule != "" {
		f.SpecialConfig = rule
	} else if specialConfig != "" {
		f.SpecialConfig = specialConfig
	}

	return &f, nil
}

func (r *FormulaRepository) loadScoreTable(ctx context.Context, deptID int64) ([]contracts.PracticalScoreRecord, error) {
	query := `
		SELECT 종목명, 성별, 기록, 점수
		FROM practical_scores
		WHERE dept_id = $1
		ORDER BY 종목명, 성별, 점수 DESC
	`

	rows, err := r.pool.Query(ctx, query, deptID)
	if err != nil {
		return nil, fmt.Errorf("practical scores query dept %d: %w", deptID, err)
	}
	defer rows.Close()

	var table []contracts.PracticalScoreRecord
	for rows.Next() {
		var (
			rec    contracts.PracticalScoreRecord
			record string
			score  float64
		)
		if err := rows.Scan(&rec.Event, &rec.Gender, &record, &score); err != nil {
			return nil, err
		}
		rec.Record = record
		rec.Score = score
		table = append(table, rec)
	}
	return table, rows.Err()
}

// loadSpecialRule merges practical_calc_rules.rule_type into the
// rule_config JSON so the calculator sees one tagged object.
func (r *FormulaRepository) loadSpecialRule(ctx context.Context, deptID int64) (string, error) {
	query := `
		SELECT rule_type, rule_config
		FROM practical_calc_rules
		WHERE dept_id = $1
		LIMIT 1
	`

	var ruleType, ruleConfig string
	err := r.pool.QueryRow(ctx, query, deptID).Scan(&ruleType, &ruleConfig)
	if err != nil {
		if isNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("practical rule query dept %d: %w", deptID, err)
	}

	var cfg map[string]interface{}
	if err := json.Unmarshal([]byte(ruleConfig), &cfg); err != nil {
		r.log.WithDept(deptID).WithError(err).Warn("rule_config 파싱 실패, 특수규칙 무시")
		return "", nil
	}
	cfg["type"] = ruleType

	merged, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(merged), nil
}

// CopyYear duplicates every department's configuration rows from one
// academic year into the next. Runs in a single transaction so a
// half-copied year never becomes visible.
func (r *FormulaRepository) CopyYear(ctx context.Context, fromYear, toYear int) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	deptQuery := `
		INSERT INTO departments (univ_id, year_id, dept_name, 모집군, 모집인원, legacy_uid)
		SELECT univ_id, $2, dept_name, 모집군, 모집인원, legacy_uid
		FROM departments
		WHERE year_id = $1
		ON CONFLICT (univ_id, year_id, dept_name) DO NOTHING
	`
	if _, err := tx.Exec(ctx, deptQuery, fromYear, toYear); err != nil {
		return 0, fmt.Errorf("copy departments %d→%d: %w", fromYear, toYear, err)
	}

	formulaQuery := `
		INSERT INTO formula_configs (
			dept_id, legacy_uid, total_score, suneung_ratio, subjects_config,
			selection_rules, bonus_rules, legacy_formula, english_scores, history_scores,
			practical_mode, practical_total, practical_base_score, practical_fail_rule,
			practical_special_config
		)
		SELECT nd.dept_id, f.legacy_uid, f.total_score, f.suneung_ratio, f.subjects_config,
		       f.selection_rules, f.bonus_rules, f.legacy_formula, f.english_scores, f.history_scores,
		       f.practical_mode, f.practical_total, f.practical_base_score, f.practical_fail_rule,
		       f.practical_special_config
		FROM formula_configs f
		JOIN departments od ON f.dept_id = od.dept_id AND od.year_id = $1
		JOIN departments nd ON nd.univ_id = od.univ_id
			AND nd.dept_name = od.dept_name AND nd.year_id = $2
		ON CONFLICT (dept_id) DO NOTHING
	`
	tag, err := tx.Exec(ctx, formulaQuery, fromYear, toYear)
	if err != nil {
		return 0, fmt.Errorf("copy formulas %d→%d: %w", fromYear, toYear, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	copied := int(tag.RowsAffected())
	r.log.Infof("학년도 복사 완료: %d → %d (%d개 학과)", fromYear, toYear, copied)
	return copied, nil
}
