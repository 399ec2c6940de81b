package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paca/jungsi/backend/internal/contracts"
)

// ChangeLogRepository implements contracts.ChangeLogRepository.
// 설정 변경 이력은 검증 스크립트가 점수 차이의 원인을 추적할 때 쓴다.
type ChangeLogRepository struct {
	pool *pgxpool.Pool
}

// NewChangeLogRepository creates a new change-log repository.
func NewChangeLogRepository(pool *pgxpool.Pool) *ChangeLogRepository {
	return &ChangeLogRepository{pool: pool}
}

// Append records one configuration edit.
func (r *ChangeLogRepository) Append(ctx context.Context, log *contracts.ChangeLog) error {
	query := `
		INSERT INTO change_logs (dept_id, table_name, field_name, old_value, new_value, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING log_id
	`

	if log.ChangedAt.IsZero() {
		log.ChangedAt = time.Now()
	}

	err := r.pool.QueryRow(ctx, query,
		log.DeptID, log.Table, log.Field, log.OldValue, log.NewValue,
		log.ChangedBy, log.ChangedAt,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("change log insert dept %d: %w", log.DeptID, err)
	}
	return nil
}

// List returns a department's recent edits, newest first. deptID 0
// lists across all departments.
func (r *ChangeLogRepository) List(ctx context.Context, deptID int64, limit int) ([]contracts.ChangeLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT log_id, dept_id, table_name, field_name, old_value, new_value, changed_by, changed_at
		FROM change_logs
		WHERE $1 = 0 OR dept_id = $1
		ORDER BY changed_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, deptID, limit)
	if err != nil {
		return nil, fmt.Errorf("change log query dept %d: %w", deptID, err)
	}
	defer rows.Close()

	var logs []contracts.ChangeLog
	for rows.Next() {
		var l contracts.ChangeLog
		if err := rows.Scan(&l.ID, &l.DeptID, &l.Table, &l.Field,
			&l.OldValue, &l.NewValue, &l.ChangedBy, &l.ChangedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
