package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paca/jungsi/backend/internal/contracts"
)

// ReferenceRepository implements contracts.ReferenceRepository.
// ⭐ SSOT: 최고표점/변환표 조회는 여기서만
type ReferenceRepository struct {
	pool *pgxpool.Pool
}

// NewReferenceRepository creates a new reference repository.
func NewReferenceRepository(pool *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

// GetHighestScores returns the year's subject → highest standard score
// map for the CSAT model.
func (r *ReferenceRepository) GetHighestScores(ctx context.Context, year int) (contracts.HighestScoreMap, error) {
	query := `
		SELECT 과목명, 최고점
		FROM highest_scores
		WHERE year_id = $1 AND 모형 = '수능'
	`

	rows, err := r.pool.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("highest scores query year %d: %w", year, err)
	}
	defer rows.Close()

	m := make(contracts.HighestScoreMap)
	for rows.Next() {
		var (
			subject string
			score   float64
		)
		if err := rows.Scan(&subject, &score); err != nil {
			return nil, err
		}
		m[subject] = score
	}
	return m, rows.Err()
}

// GetConversionMap returns a department's 탐구 percentile → converted
// standard score tables, split by track. Departments without a table
// get an empty map, not an error.
func (r *ReferenceRepository) GetConversionMap(ctx context.Context, deptID int64) (*contracts.ConversionMap, error) {
	query := `
		SELECT 계열, 백분위, 변환표준점수
		FROM inquiry_conv_tables
		WHERE dept_id = $1
	`

	rows, err := r.pool.Query(ctx, query, deptID)
	if err != nil {
		return nil, fmt.Errorf("conversion query dept %d: %w", deptID, err)
	}
	defer rows.Close()

	conv := &contracts.ConversionMap{
		Social:  make(map[string]float64),
		Science: make(map[string]float64),
	}
	for rows.Next() {
		var (
			track      string
			percentile int
			converted  float64
		)
		if err := rows.Scan(&track, &percentile, &converted); err != nil {
			return nil, err
		}
		key := strconv.Itoa(percentile)
		switch track {
		case "사탐":
			conv.Social[key] = converted
		case "과탐":
			conv.Science[key] = converted
		}
	}
	return conv, rows.Err()
}
