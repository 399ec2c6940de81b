package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paca/jungsi/backend/internal/contracts"
)

// StudentRepository implements contracts.StudentRepository.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// ListStudents returns the year's applicants.
func (r *StudentRepository) ListStudents(ctx context.Context, year int) ([]contracts.Student, error) {
	query := `
		SELECT student_id, name, COALESCE(gender, ''), year_id
		FROM students
		WHERE year_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("students query year %d: %w", year, err)
	}
	defer rows.Close()

	var students []contracts.Student
	for rows.Next() {
		var s contracts.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Gender, &s.Year); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// GetScores returns a student's full CSAT sheet. Absent rows simply do
// not appear; the calculator treats missing subjects as 0.
func (r *StudentRepository) GetScores(ctx context.Context, studentID int64) (*contracts.StudentScores, error) {
	query := `
		SELECT 과목, COALESCE(선택과목, ''), COALESCE(표준점수, 0),
		       COALESCE(백분위, 0), COALESCE(등급, 0), COALESCE(변환표준점수, 0)
		FROM student_scores
		WHERE student_id = $1
		ORDER BY score_id
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("scores query student %d: %w", studentID, err)
	}
	defer rows.Close()

	sheet := &contracts.StudentScores{}
	for rows.Next() {
		var row contracts.SubjectScore
		if err := rows.Scan(&row.Name, &row.Subject, &row.Std,
			&row.Percentile, &row.Grade, &row.ConvertedStd); err != nil {
			return nil, err
		}
		sheet.Subjects = append(sheet.Subjects, row)
	}
	return sheet, rows.Err()
}

// GetPracticals returns a student's recorded practical events.
func (r *StudentRepository) GetPracticals(ctx context.Context, studentID int64) (*contracts.StudentPracticalData, error) {
	query := `
		SELECT s.gender, p.종목명, p.기록
		FROM student_practicals p
		JOIN students s ON s.student_id = p.student_id
		WHERE p.student_id = $1
		ORDER BY p.record_id
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("practicals query student %d: %w", studentID, err)
	}
	defer rows.Close()

	data := &contracts.StudentPracticalData{}
	for rows.Next() {
		var rec contracts.PracticalRecord
		if err := rows.Scan(&data.Gender, &rec.Event, &rec.Value); err != nil {
			return nil, err
		}
		data.Practicals = append(data.Practicals, rec)
	}
	return data, rows.Err()
}
