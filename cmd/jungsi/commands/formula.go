package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paca/jungsi/backend/internal/suneung/formula"
)

// formulaCmd groups special-formula tooling
var formulaCmd = &cobra.Command{
	Use:   "formula",
	Short: "특수공식 도구",
	Long:  `특수공식 검증 도구를 제공합니다.`,
}

// formulaValidateCmd validates a special formula from the command line
var formulaValidateCmd = &cobra.Command{
	Use:   "validate [공식]",
	Short: "특수공식 문법 검증",
	Long: `특수공식을 저장하기 전에 문법을 검증합니다.
DB 연결 없이 동작합니다.

Example:
  go run ./cmd/jungsi formula validate "{kor_std} * 1.2 + {math_std} * 1.2"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFormulaValidate,
}

func init() {
	rootCmd.AddCommand(formulaCmd)
	formulaCmd.AddCommand(formulaValidateCmd)
}

func runFormulaValidate(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	res := formula.Validate(text)
	if !res.Valid {
		fmt.Printf("❌ %s\n", res.Error)
		return fmt.Errorf("공식 검증 실패")
	}

	fmt.Println("✅ 공식이 유효합니다")
	if vars := formula.ExtractVariables(text); len(vars) > 0 {
		fmt.Printf("사용 변수: %s\n", strings.Join(vars, ", "))
	}
	return nil
}
