package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/paca/jungsi/backend/internal/contracts"
	"github.com/paca/jungsi/backend/internal/practical"
	"github.com/paca/jungsi/backend/internal/store"
	"github.com/paca/jungsi/backend/internal/suneung"
	"github.com/paca/jungsi/backend/pkg/config"
	"github.com/paca/jungsi/backend/pkg/database"
	"github.com/paca/jungsi/backend/pkg/logger"
)

// calcCmd represents the calc command
var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "한 학생의 환산 점수 계산",
	Long: `한 학생의 수능(및 실기) 환산 점수를 계산하고 계산 로그를 출력합니다.

이 명령어는:
- 학과 계산식 로드
- 학생 성적/실기 기록 로드
- 수능 환산 점수 계산 (계산 로그 포함)
- 실기 설정이 있으면 실기 점수도 계산

Example:
  go run ./cmd/jungsi calc --dept 12 --student 3
  go run ./cmd/jungsi calc --dept 12 --student 3 --year 2026`,
	RunE: runCalc,
}

var (
	calcDeptID    int64
	calcStudentID int64
	calcYear      int
)

func init() {
	rootCmd.AddCommand(calcCmd)

	calcCmd.Flags().Int64Var(&calcDeptID, "dept", 0, "학과 ID (필수)")
	calcCmd.Flags().Int64Var(&calcStudentID, "student", 0, "학생 ID (필수)")
	calcCmd.Flags().IntVar(&calcYear, "year", 0, "학년도 (기본: config)")
	calcCmd.MarkFlagRequired("dept")
	calcCmd.MarkFlagRequired("student")
}

func runCalc(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	year := calcYear
	if year == 0 {
		year = cfg.Engine.DefaultYear
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	formulaRepo := store.NewFormulaRepository(db.Pool, log)
	refRepo := store.NewReferenceRepository(db.Pool)
	studentRepo := store.NewStudentRepository(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	formulaData, err := formulaRepo.GetFormula(ctx, calcDeptID, year)
	if err != nil {
		return fmt.Errorf("load formula (dept %d, year %d): %w", calcDeptID, year, err)
	}

	scores, err := studentRepo.GetScores(ctx, calcStudentID)
	if err != nil {
		return fmt.Errorf("load student scores (student %d): %w", calcStudentID, err)
	}

	highest, err := refRepo.GetHighestScores(ctx, year)
	if err != nil {
		log.WithError(err).Warn("최고표점 조회 실패, 빈 테이블로 진행")
		highest = contracts.HighestScoreMap{}
	}
	conv, err := refRepo.GetConversionMap(ctx, calcDeptID)
	if err != nil {
		conv = nil
	}

	fmt.Printf("=== 수능 환산 점수 (dept %d, student %d, %d학년도) ===\n", calcDeptID, calcStudentID, year)

	result, err := suneung.CalculateScoreWithConv(formulaData, scores, conv, nil, highest)
	if err != nil {
		return fmt.Errorf("calculation failed: %w", err)
	}

	printResult(result)

	// 실기 설정이 없는 학과는 그대로 끝
	practicalFormula, err := formulaRepo.GetPracticalFormula(ctx, calcDeptID, year)
	if err != nil || practicalFormula == nil || len(practicalFormula.ScoreTable) == 0 {
		return nil
	}

	practicals, err := studentRepo.GetPracticals(ctx, calcStudentID)
	if err != nil || practicals == nil || len(practicals.Practicals) == 0 {
		fmt.Println("\n(실기 기록 없음)")
		return nil
	}

	fmt.Println("\n=== 실기 점수 ===")
	printResult(practical.CalculatePracticalScore(practicalFormula, practicals))
	return nil
}

// printResult prints total, per-subject attribution, and the audit log.
func printResult(result *contracts.CalcResult) {
	fmt.Printf("총점: %.2f\n", result.TotalScore)

	if len(result.Breakdown) > 0 {
		keys := make([]string, 0, len(result.Breakdown))
		for k := range result.Breakdown {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Println("과목별 기여:")
		for _, k := range keys {
			fmt.Printf("  %-12s %10.2f\n", k, result.Breakdown[k])
		}
	}

	if verbose && len(result.CalculationLog) > 0 {
		fmt.Println("계산 로그:")
		for _, line := range result.CalculationLog {
			fmt.Printf("  %s\n", line)
		}
	}
}
