package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/paca/jungsi/backend/internal/api"
	"github.com/paca/jungsi/backend/internal/api/handlers"
	"github.com/paca/jungsi/backend/internal/realtime"
	"github.com/paca/jungsi/backend/internal/scheduler"
	"github.com/paca/jungsi/backend/internal/scheduler/jobs"
	"github.com/paca/jungsi/backend/internal/store"
	"github.com/paca/jungsi/backend/pkg/config"
	"github.com/paca/jungsi/backend/pkg/database"
	"github.com/paca/jungsi/backend/pkg/logger"
	"github.com/paca/jungsi/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "점수 계산 API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 점수 계산 엔드포인트 제공
- 학과/학생 조회 엔드포인트 제공
- 변경 이력 기록 및 WebSocket 구독 제공
- 참조 테이블 캐시 워밍 스케줄러 실행

Endpoints:
  GET  /health                        - Health check
  POST /api/calculate/suneung        - 수능 환산 점수 계산
  POST /api/calculate/practical      - 실기 점수 계산
  POST /api/formulas/validate        - 특수공식 문법 검증
  GET  /api/formulas/{deptId}        - 학과 계산식 조회
  GET  /api/universities             - 대학 목록
  GET  /api/departments              - 학과 목록
  GET  /api/students                 - 학생 목록
  GET  /api/change-logs              - 변경 이력 조회
  GET  /ws/change-logs               - 변경 이력 실시간 구독

Example:
  go run ./cmd/jungsi api
  go run ./cmd/jungsi api --port 8087`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: config)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== 정시 점수 계산 API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
		"year": cfg.Engine.DefaultYear,
	}).Info("API 서버 초기화")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("데이터베이스 연결 완료")

	// 4. Connect to Redis (optional, degrades to no caching)
	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	cache := redis.NewCache(rdb, "jungsi")

	// 5. Create repositories, cached where it pays off
	formulaRepo := store.NewFormulaRepository(db.Pool, log)
	refRepo := store.NewReferenceRepository(db.Pool)
	deptRepo := store.NewDepartmentRepository(db.Pool)
	studentRepo := store.NewStudentRepository(db.Pool)
	changeRepo := store.NewChangeLogRepository(db.Pool)

	cachedFormulas := store.NewCachedFormulaRepository(formulaRepo, cache, cfg.Engine.CacheTTL)
	cachedRefs := store.NewCachedReferenceRepository(refRepo, cache)

	// 6. Real-time change-log hub
	hub := realtime.NewHub(log)
	defer hub.Stop()

	// 7. Cache warm scheduler
	sched := scheduler.New(log)
	if rdb.Enabled() {
		warmJobs := []scheduler.Job{
			jobs.NewHighestScoreWarmJob(refRepo, cache, cfg.Engine.DefaultYear, log),
			jobs.NewConversionWarmJob(deptRepo, refRepo, cache, cfg.Engine.DefaultYear, log),
		}
		for _, job := range warmJobs {
			if err := sched.AddJob(job); err != nil {
				return fmt.Errorf("register job: %w", err)
			}
		}
		sched.Start()
		defer sched.Stop()
	} else {
		log.Warn("Redis 비활성화 상태라 캐시 워밍 스케줄러를 건너뜀")
	}

	// 8. Create handlers
	calcHandler := handlers.NewCalculateHandler(cachedFormulas, cachedRefs, studentRepo, cfg, log)
	catalogHandler := handlers.NewCatalogHandler(deptRepo, studentRepo, cfg, log)
	changeHandler := handlers.NewChangeLogHandler(changeRepo, hub, log)

	// 9. Create router and server
	router := api.NewRouter(cfg, calcHandler, catalogHandler, changeHandler, log)
	server := api.New(cfg, log, router)

	// 10. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("서버 시작 실패")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("서버 종료 중...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("서버 종료됨")
	return nil
}
