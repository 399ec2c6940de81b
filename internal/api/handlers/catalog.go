package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/paca/jungsi/backend/internal/contracts"
	"github.com/paca/jungsi/backend/pkg/config"
	"github.com/paca/jungsi/backend/pkg/logger"
)

// CatalogHandler serves the university/department/student listings the
// admin UI browses before running calculations.
type CatalogHandler struct {
	depts    contracts.DepartmentRepository
	students contracts.StudentRepository
	config   *config.Config
	logger   *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	depts contracts.DepartmentRepository,
	students contracts.StudentRepository,
	cfg *config.Config,
	log *logger.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		depts:    depts,
		students: students,
		config:   cfg,
		logger:   log,
	}
}

// ListUniversities lists admitting institutions for a year
// GET /api/universities?year=2026
func (h *CatalogHandler) ListUniversities(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", h.config.Engine.DefaultYear)

	univs, err := h.depts.ListUniversities(r.Context(), year)
	if err != nil {
		h.logger.WithError(err).Error("대학 목록 조회 실패")
		respondError(w, http.StatusInternalServerError, "대학 목록을 불러오지 못했습니다")
		return
	}

	respondJSON(w, http.StatusOK, univs)
}

// ListDepartments lists admitting units, optionally for one university
// GET /api/departments?year=2026&univ_id=3
func (h *CatalogHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", h.config.Engine.DefaultYear)
	univID := int64(queryInt(r, "univ_id", 0))

	depts, err := h.depts.ListDepartments(r.Context(), year, univID)
	if err != nil {
		h.logger.WithError(err).Error("학과 목록 조회 실패")
		respondError(w, http.StatusInternalServerError, "학과 목록을 불러오지 못했습니다")
		return
	}

	respondJSON(w, http.StatusOK, depts)
}

// GetDepartment returns one admitting unit
// GET /api/departments/{deptId}
func (h *CatalogHandler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	deptID, err := strconv.ParseInt(mux.Vars(r)["deptId"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "deptId가 올바르지 않습니다")
		return
	}

	dept, err := h.depts.GetDepartment(r.Context(), deptID)
	if err != nil {
		h.logger.WithError(err).WithDept(deptID).Error("학과 조회 실패")
		respondError(w, http.StatusNotFound, "학과를 찾을 수 없습니다")
		return
	}

	respondJSON(w, http.StatusOK, dept)
}

// ListYears lists the academic years with stored configurations
// GET /api/years
func (h *CatalogHandler) ListYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.depts.ListYears(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("학년도 목록 조회 실패")
		respondError(w, http.StatusInternalServerError, "학년도 목록을 불러오지 못했습니다")
		return
	}

	respondJSON(w, http.StatusOK, years)
}

// ListStudents lists applicants for a year
// GET /api/students?year=2026
func (h *CatalogHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", h.config.Engine.DefaultYear)

	students, err := h.students.ListStudents(r.Context(), year)
	if err != nil {
		h.logger.WithError(err).Error("학생 목록 조회 실패")
		respondError(w, http.StatusInternalServerError, "학생 목록을 불러오지 못했습니다")
		return
	}

	respondJSON(w, http.StatusOK, students)
}

// StudentScoresResponse bundles a student's CSAT sheet with the
// practical records, so the UI loads both in one round trip.
type StudentScoresResponse struct {
	Scores     *contracts.StudentScores        `json:"scores"`
	Practicals *contracts.StudentPracticalData `json:"practicals,omitempty"`
}

// GetStudentScores returns one applicant's score sheets
// GET /api/students/{studentId}/scores
func (h *CatalogHandler) GetStudentScores(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.ParseInt(mux.Vars(r)["studentId"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "studentId가 올바르지 않습니다")
		return
	}

	scores, err := h.students.GetScores(r.Context(), studentID)
	if err != nil {
		h.logger.WithError(err).Error("학생 성적 조회 실패")
		respondError(w, http.StatusNotFound, "학생 성적을 찾을 수 없습니다")
		return
	}

	// 실기 기록이 없는 학생도 정상이므로 실패해도 성적만 응답
	practicals, err := h.students.GetPracticals(r.Context(), studentID)
	if err != nil {
		practicals = nil
	}

	respondJSON(w, http.StatusOK, StudentScoresResponse{
		Scores:     scores,
		Practicals: practicals,
	})
}
