package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/paca/jungsi/backend/internal/contracts"
	"github.com/paca/jungsi/backend/internal/store"
	"github.com/paca/jungsi/backend/internal/suneung"
	"github.com/paca/jungsi/backend/internal/suneung/formula"
	"github.com/paca/jungsi/backend/pkg/config"
	"github.com/paca/jungsi/backend/pkg/database"
	"github.com/paca/jungsi/backend/pkg/logger"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "전체 학과 계산식 일괄 검증",
	Long: `한 학년도의 모든 학과 계산식을 일괄 검증합니다.

이 명령어는:
- 모든 학과의 특수공식 문법 검증
- 내장 검증 프로필(만점형/중위권/하위권/과탐전문)로 실제 계산 실행
- DB에 학생이 있으면 실제 성적으로도 계산 실행
- 계산 실패(깨진 공식, 빈 설정)를 학과별로 보고

입학처 배포 전 설정 오류를 잡는 용도입니다.

Example:
  go run ./cmd/jungsi verify
  go run ./cmd/jungsi verify --year 2026
  go run ./cmd/jungsi verify --year 2026 --dept 12`,
	RunE: runVerify,
}

var (
	verifyYear   int
	verifyDeptID int64
)

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().IntVar(&verifyYear, "year", 0, "학년도 (기본: config)")
	verifyCmd.Flags().Int64Var(&verifyDeptID, "dept", 0, "특정 학과만 검증")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	year := verifyYear
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
	deptRepo := store.NewDepartmentRepository(db.Pool)
	studentRepo := store.NewStudentRepository(db.Pool)

	// 전수 검증은 오래 걸릴 수 있음
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	fmt.Printf("=== %d학년도 계산식 일괄 검증 ===\n", year)

	depts, err := deptRepo.ListDepartments(ctx, year, 0)
	if err != nil {
		return fmt.Errorf("list departments: %w", err)
	}
	if verifyDeptID != 0 {
		var filtered []contracts.Department
		for _, d := range depts {
			if d.ID == verifyDeptID {
				filtered = append(filtered, d)
			}
		}
		depts = filtered
	}

	students, err := studentRepo.ListStudents(ctx, year)
	if err != nil {
		return fmt.Errorf("list students: %w", err)
	}

	highest, err := refRepo.GetHighestScores(ctx, year)
	if err != nil {
		log.WithError(err).Warn("최고표점 조회 실패, 빈 테이블로 진행")
		highest = contracts.HighestScoreMap{}
	}

	// 내장 검증 프로필이 기본, DB 학생이 있으면 추가
	sheets := make(map[string]*contracts.StudentScores)
	for name, profile := range verificationProfiles() {
		sheets[name] = profile
	}
	for _, s := range students {
		scores, err := studentRepo.GetScores(ctx, s.ID)
		if err != nil {
			log.WithError(err).Warnf("학생 %d 성적 로드 실패, 건너뜀", s.ID)
			continue
		}
		sheets[fmt.Sprintf("학생 %d", s.ID)] = scores
	}

	fmt.Printf("학과 %d개, 검증 성적표 %d건\n\n", len(depts), len(sheets))

	var formulaErrors, calcErrors, checked int
	for _, dept := range depts {
		formulaData, err := formulaRepo.GetFormula(ctx, dept.ID, year)
		if err != nil {
			fmt.Printf("❌ [%s %s] 계산식 로드 실패: %v\n", dept.UnivName, dept.Name, err)
			formulaErrors++
			continue
		}

		// 1단계: 특수공식 문법 검증
		if formulaData.CalcType == contracts.CalcTypeSpecial && formulaData.SpecialFormula != "" {
			if res := formula.Validate(formulaData.SpecialFormula); !res.Valid {
				fmt.Printf("❌ [%s %s] 특수공식 오류: %s\n", dept.UnivName, dept.Name, res.Error)
				formulaErrors++
				continue
			}
		}

		conv, err := refRepo.GetConversionMap(ctx, dept.ID)
		if err != nil {
			conv = nil
		}

		// 2단계: 검증 프로필과 실제 학생 성적으로 계산 실행
		failed := false
		for label, scores := range sheets {
			if _, err := suneung.CalculateScoreWithConv(formulaData, scores, conv, nil, highest); err != nil {
				fmt.Printf("❌ [%s %s] %s 계산 실패: %v\n", dept.UnivName, dept.Name, label, err)
				calcErrors++
				failed = true
				break
			}
			checked++
		}
		if !failed && verbose {
			fmt.Printf("✅ [%s %s]\n", dept.UnivName, dept.Name)
		}
	}

	fmt.Printf("\n검증 완료: 계산 %d건, 공식 오류 %d건, 계산 오류 %d건\n", checked, formulaErrors, calcErrors)
	if formulaErrors+calcErrors > 0 {
		return fmt.Errorf("%d개 학과에서 오류 발견", formulaErrors+calcErrors)
	}
	fmt.Println("✅ 모든 학과 검증 통과")
	return nil
}

// verificationProfiles returns the built-in score sheets swept against
// every department. 실제 학생 데이터가 없어도 설정 오류가 드러나도록
// 점수대를 고르게 깐다.
func verificationProfiles() map[string]*contracts.StudentScores {
	return map[string]*contracts.StudentScores{
		"만점형": {
			Subjects: []contracts.SubjectScore{
				{Name: contracts.SubjectKorean, Subject: "화법과작문", Std: 150, Percentile: 100, Grade: 1},
				{Name: contracts.SubjectMath, Subject: "미적분", Std: 150, Percentile: 100, Grade: 1},
				{Name: contracts.SubjectEnglish, Grade: 1},
				{Name: contracts.SubjectHistory, Grade: 1},
				{Name: contracts.SubjectInquiry, Subject: "사회문화", Std: 75, Percentile: 100, Grade: 1},
				{Name: contracts.SubjectInquiry, Subject: "생활과윤리", Std: 75, Percentile: 100, Grade: 1},
			},
		},
		"중위권": {
			Subjects: []contracts.SubjectScore{
				{Name: contracts.SubjectKorean, Subject: "언어와매체", Std: 118, Percentile: 70, Grade: 3},
				{Name: contracts.SubjectMath, Subject: "확률과통계", Std: 115, Percentile: 65, Grade: 4},
				{Name: contracts.SubjectEnglish, Grade: 3},
				{Name: contracts.SubjectHistory, Grade: 3},
				{Name: contracts.SubjectInquiry, Subject: "한국지리", Std: 58, Percentile: 68, Grade: 3},
				{Name: contracts.SubjectInquiry, Subject: "세계사", Std: 55, Percentile: 60, Grade: 4},
			},
		},
		"하위권": {
			Subjects: []contracts.SubjectScore{
				{Name: contracts.SubjectKorean, Subject: "화법과작문", Std: 85, Percentile: 20, Grade: 7},
				{Name: contracts.SubjectMath, Subject: "확률과통계", Std: 80, Percentile: 15, Grade: 8},
				{Name: contracts.SubjectEnglish, Grade: 6},
				{Name: contracts.SubjectHistory, Grade: 5},
				{Name: contracts.SubjectInquiry, Subject: "사회문화", Std: 42, Percentile: 18, Grade: 7},
			},
		},
		"과탐전문": {
			Subjects: []contracts.SubjectScore{
				{Name: contracts.SubjectKorean, Subject: "언어와매체", Std: 125, Percentile: 82, Grade: 2},
				{Name: contracts.SubjectMath, Subject: "기하", Std: 132, Percentile: 92, Grade: 2},
				{Name: contracts.SubjectEnglish, Grade: 2},
				{Name: contracts.SubjectHistory, Grade: 2},
				{Name: contracts.SubjectInquiry, Subject: "물리학I", Std: 68, Percentile: 94, Grade: 2},
				{Name: contracts.SubjectInquiry, Subject: "지구과학I", Std: 66, Percentile: 90, Grade: 2},
			},
		},
	}
}
