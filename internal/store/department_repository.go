package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paca/jungsi/backend/internal/contracts"
)

// DepartmentRepository implements contracts.DepartmentRepository.
type DepartmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository creates a new department repository.
func NewDepartmentRepository(pool *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

// ListUniversities returns every university with at least one admitting
// unit in the given year.
func (r *DepartmentRepository) ListUniversities(ctx context.Context, year int) ([]contracts.University, error) {
	query := `
		SELECT DISTINCT u.univ_id, u.univ_name
		FROM universities u
		JOIN departments d ON d.univ_id = u.univ_id
		WHERE d.year_id = $1
		ORDER BY u.univ_name
	`

	rows, err := r.pool.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("universities query year %d: %w", year, err)
	}
	defer rows.Close()

	var univs []contracts.University
	for rows.Next() {
		var u contracts.University
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		univs = append(univs, u)
	}
	return univs, rows.Err()
}

// ListDepartments returns a university's admitting units for one year;
// univID 0 lists every department of the year.
func (r *DepartmentRepository) ListDepartments(ctx context.Context, year int, univID int64) ([]contracts.Department, error) {
	query := `
		SELECT d.dept_id, d.univ_id, u.univ_name, d.year_id, d.dept_name,
		       COALESCE(d.모집군, ''), COALESCE(d.모집인원, 0), COALESCE(d.legacy_uid, 0)
		FROM departments d
		JOIN universities u ON u.univ_id = d.univ_id
		WHERE d.year_id = $1 AND ($2 = 0 OR d.univ_id = $2)
		ORDER BY u.univ_name, d.dept_name
	`

	rows, err := r.pool.Query(ctx, query, year, univID)
	if err != nil {
		return nil, fmt.Errorf("departments query year %d univ %d: %w", year, univID, err)
	}
	defer rows.Close()

	var depts []contracts.Department
	for rows.Next() {
		var d contracts.Department
		if err := rows.Scan(&d.ID, &d.UnivID, &d.UnivName, &d.Year, &d.Name,
			&d.Group, &d.Capacity, &d.LegacyUID); err != nil {
			return nil, err
		}
		depts = append(depts, d)
	}
	return depts, rows.Err()
}

// GetDepartment returns one admitting unit by id.
func (r *DepartmentRepository) GetDepartment(ctx context.Context, deptID int64) (*contracts.Department, error) {
	query := `
		SELECT d.dept_id, d.univ_id, u.univ_name, d.year_id, d.dept_name,
		       COALESCE(d.모집군, ''), COALESCE(d.모집인원, 0), COALESCE(d.legacy_uid, 0)
		FROM departments d
		JOIN universities u ON u.univ_id = d.univ_id
		WHERE d.dept_id = $1
	`

	var d contracts.Department
	err := r.pool.QueryRow(ctx, query, deptID).Scan(&d.ID, &d.UnivID, &d.UnivName,
		&d.Year, &d.Name, &d.Group, &d.Capacity, &d.LegacyUID)
	if err != nil {
		return nil, fmt.Errorf("department query %d: %w", deptID, err)
	}
	return &d, nil
}

// ListYears returns the academic years present in the data, newest
// first.
func (r *DepartmentRepository) ListYears(ctx context.Context) ([]int, error) {
	query := `SELECT DISTINCT year_id FROM departments ORDER BY year_id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("years query: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}
