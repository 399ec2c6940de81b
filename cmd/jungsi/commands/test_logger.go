package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paca/jungsi/backend/pkg/config"
	"github.com/paca/jungsi/backend/pkg/logger"
)

// testLoggerCmd represents the test-logger command
var testLoggerCmd = &cobra.Command{
	Use:   "test-logger",
	Short: "Logger 기능 테스트",
	Long: `구조화된 로깅 기능을 테스트합니다.

이 명령어는:
- JSON/Console 포맷 테스트
- 로그 레벨 테스트
- 구조화된 필드 로깅
- 에러 컨텍스트 로깅

Example:
  go run ./cmd/jungsi test-logger
  go run ./cmd/jungsi test-logger --env production`,
	RunE: runTestLogger,
}

func init() {
	rootCmd.AddCommand(testLoggerCmd)
}

func runTestLogger(cmd *cobra.Command, args []string) error {
	fmt.Println("=== 정시 점수 계산 시스템 Logger Test ===")

	fmt.Println("1. JSON Format (Production)")
	fmt.Println("--------------------------------")
	logJSON := logger.New(&config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	})
	logJSON.Info("계산 서비스 시작")
	logJSON.Warn("변환표준점수표 없음, 백분위로 대체")
	logJSON.Error("계산식 로드 실패")
	fmt.Println()

	fmt.Println("2. Console Format (Development)")
	fmt.Println("--------------------------------")
	logConsole := logger.New(&config.Config{
		Env:       "development",
		LogLevel:  "debug",
		LogFormat: "console",
	})
	logConsole.Debug("계산 흐름 추적")
	logConsole.Info("계산 요청 수신")
	logConsole.Warn("캐시 미스, DB에서 조회")
	fmt.Println()

	fmt.Println("3. Structured Logging with Fields")
	fmt.Println("--------------------------------")
	logJSON.WithDept(12).Info("학과 계산식 로드")
	logJSON.WithFields(map[string]interface{}{
		"student_id": 3,
		"year":       2026,
		"total":      874.52,
	}).Info("환산 점수 계산 완료")
	logJSON.WithField("module", "suneung").
		WithField("calc_type", "특수공식").
		Info("특수공식 평가 시작")
	fmt.Println()

	fmt.Println("4. Error Logging")
	fmt.Println("--------------------------------")
	err := errors.New("특수공식에 허용되지 않은 토큰이 포함되어 있습니다.")
	logJSON.WithError(err).WithDept(12).Error("특수공식 평가 실패")
	fmt.Println()

	fmt.Println("✅ All logger tests completed!")
	return nil
}
