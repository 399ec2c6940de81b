package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jungsi",
	Short: "정시 점수 계산 시스템",
	Long: `정시 점수 계산 통합 CLI

대학별 수능/실기 환산 점수 계산 시스템.
학과 설정 기반의 선언적 계산식과 특수공식을 지원합니다.

Usage:
  go run ./cmd/jungsi [command]

Examples:
  go run ./cmd/jungsi api
  go run ./cmd/jungsi calc --dept 12 --student 3
  go run ./cmd/jungsi verify --year 2026
  go run ./cmd/jungsi year copy --from 2025 --to 2026
  go run ./cmd/jungsi test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
