package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/paca/jungsi/backend/internal/store"
	"github.com/paca/jungsi/backend/pkg/config"
	"github.com/paca/jungsi/backend/pkg/database"
	"github.com/paca/jungsi/backend/pkg/logger"
)

// yearCmd groups academic-year maintenance commands
var yearCmd = &cobra.Command{
	Use:   "year",
	Short: "학년도 관리",
	Long:  `학년도 단위의 설정 관리 명령을 제공합니다.`,
}

// yearCopyCmd copies all department configurations into a new year
var yearCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "학년도 설정 일괄 복사",
	Long: `한 학년도의 모든 학과와 계산식 설정을 다른 학년도로 복사합니다.

새 입시 연도를 시작할 때 전년도 설정을 출발점으로 삼는 용도입니다.
이미 존재하는 학과는 건너뜁니다 (덮어쓰지 않음).

Example:
  go run ./cmd/jungsi year copy --from 2025 --to 2026`,
	RunE: runYearCopy,
}

var (
	yearCopyFrom int
	yearCopyTo   int
)

func init() {
	rootCmd.AddCommand(yearCmd)
	yearCmd.AddCommand(yearCopyCmd)

	yearCopyCmd.Flags().IntVar(&yearCopyFrom, "from", 0, "원본 학년도 (필수)")
	yearCopyCmd.Flags().IntVar(&yearCopyTo, "to", 0, "대상 학년도 (필수)")
	yearCopyCmd.MarkFlagRequired("from")
	yearCopyCmd.MarkFlagRequired("to")
}

func runYearCopy(cmd *cobra.Command, args []string) error {
	if yearCopyFrom == yearCopyTo {
		return fmt.Errorf("원본과 대상 학년도가 같습니다: %d", yearCopyFrom)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	formulaRepo := store.NewFormulaRepository(db.Pool, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("=== 학년도 복사: %d → %d ===\n", yearCopyFrom, yearCopyTo)

	copied, err := formulaRepo.CopyYear(ctx, yearCopyFrom, yearCopyTo)
	if err != nil {
		return fmt.Errorf("copy year: %w", err)
	}

	fmt.Printf("✅ %d개 학과 설정 복사 완료\n", copied)
	return nil
}
