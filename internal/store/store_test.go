package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/paca/jungsi/backend/pkg/config"
	"github.com/paca/jungsi/backend/pkg/database"
	"github.com/paca/jungsi/backend/pkg/logger"
)

// Integration tests run only against a real database.

func testDB(t *testing.T) (*database.DB, *config.Config) {
	t.Helper()

	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(db.Close)

	return db, cfg
}

func TestListYears(t *testing.T) {
	db, _ := testDB(t)

	repo := NewDepartmentRepository(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	years, err := repo.ListYears(ctx)
	if err != nil {
		t.Fatalf("ListYears() error = %v", err)
	}

	// 최신 학년도부터 내림차순
	for i := 1; i < len(years); i++ {
		if years[i-1] < years[i] {
			t.Errorf("years not descending: %v", years)
			break
		}
	}
}

func TestListDepartmentsAndGetFormula(t *testing.T) {
	db, cfg := testDB(t)
	log := logger.New(cfg)

	deptRepo := NewDepartmentRepository(db.Pool)
	formulaRepo := NewFormulaRepository(db.Pool, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	depts, err := deptRepo.ListDepartments(ctx, cfg.Engine.DefaultYear, 0)
	if err != nil {
		t.Fatalf("ListDepartments() error = %v", err)
	}
	if len(depts) == 0 {
		t.Skip("no departments for the configured year")
	}

	dept := depts[0]
	f, err := formulaRepo.GetFormula(ctx, dept.ID, cfg.Engine.DefaultYear)
	if err != nil {
		t.Fatalf("GetFormula(%d) error = %v", dept.ID, err)
	}

	if f.TotalScore <= 0 {
		t.Errorf("TotalScore = %v, want positive", f.TotalScore)
	}
	if f.CalcType != "기본비율" && f.CalcType != "특수공식" {
		t.Errorf("CalcType = %q, want 기본비율 or 특수공식", f.CalcType)
	}
}

func TestGetHighestScores(t *testing.T) {
	db, cfg := testDB(t)

	repo := NewReferenceRepository(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	highest, err := repo.GetHighestScores(ctx, cfg.Engine.DefaultYear)
	if err != nil {
		t.Fatalf("GetHighestScores() error = %v", err)
	}

	for subject, score := range highest {
		if score <= 0 {
			t.Errorf("highest score for %q = %v, want positive", subject, score)
		}
	}
}

func TestChangeLogRoundTrip(t *testing.T) {
	db, _ := testDB(t)

	repo := NewChangeLogRepository(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logs, err := repo.List(ctx, 0, 5)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(logs) > 5 {
		t.Errorf("List(limit=5) returned %d rows", len(logs))
	}
}
