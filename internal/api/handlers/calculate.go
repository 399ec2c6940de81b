package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/paca/jungsi/backend/internal/contracts"
	"github.com/paca/jungsi/backend/internal/practical"
	"github.com/paca/jungsi/backend/internal/suneung"
	"github.com/paca/jungsi/backend/internal/suneung/formula"
	"github.com/paca/jungsi/backend/pkg/config"
	"github.com/paca/jungsi/backend/pkg/logger"
)

// CalculateHandler handles score calculation endpoints
// ⭐ SSOT: 점수 계산 API 핸들러는 이 구조체에서만
type CalculateHandler struct {
	formulas contracts.FormulaRepository
	refs     contracts.ReferenceRepository
	students contracts.StudentRepository
	config   *config.Config
	logger   *logger.Logger
}

// NewCalculateHandler creates a new calculation handler
func NewCalculateHandler(
	formulas contracts.FormulaRepository,
	refs contracts.ReferenceRepository,
	students contracts.StudentRepository,
	cfg *config.Config,
	log *logger.Logger,
) *CalculateHandler {
	return &CalculateHandler{
		formulas: formulas,
		refs:     refs,
		students: students,
		config:   cfg,
		logger:   log,
	}
}

// SuneungRequest asks for a CSAT score under one department's
// configuration. Either StudentID or inline Scores must be present;
// inline wins when both are given (모의 계산 용도).
type SuneungRequest struct {
	DeptID    int64                    `json:"dept_id"`
	Year      int                      `json:"year_id,omitempty"`
	StudentID int64                    `json:"student_id,omitempty"`
	Scores    *contracts.StudentScores `json:"student_scores,omitempty"`
}

// CalculateSuneung computes a CSAT score
// POST /api/calculate/suneung
func (h *CalculateHandler) CalculateSuneung(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SuneungRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "요청 본문이 올바르지 않습니다")
		return
	}
	if req.DeptID == 0 {
		respondError(w, http.StatusBadRequest, "dept_id는 필수입니다")
		return
	}
	if req.Year == 0 {
		req.Year = h.config.Engine.DefaultYear
	}

	scores := req.Scores
	if scores == nil {
		if req.StudentID == 0 {
			respondError(w, http.StatusBadRequest, "student_id 또는 student_scores가 필요합니다")
			return
		}
		loaded, err := h.students.GetScores(ctx, req.StudentID)
		if err != nil {
			h.logger.WithError(err).Error("학생 성적 조회 실패")
			respondError(w, http.StatusNotFound, "학생 성적을 찾을 수 없습니다")
			return
		}
		scores = loaded
	}

	formulaData, err := h.formulas.GetFormula(ctx, req.DeptID, req.Year)
	if err != nil {
		h.logger.WithError(err).WithDept(req.DeptID).Error("계산식 조회 실패")
		respondError(w, http.StatusNotFound, "학과 계산식을 찾을 수 없습니다")
		return
	}

	// 참조 테이블은 없어도 계산은 진행됨 (해당 방식만 0점 처리)
	highest, err := h.refs.GetHighestScores(ctx, req.Year)
	if err != nil {
		h.logger.WithError(err).Warn("최고점 조회 실패, 빈 테이블로 진행")
		highest = contracts.HighestScoreMap{}
	}
	conv, err := h.refs.GetConversionMap(ctx, req.DeptID)
	if err != nil {
		h.logger.WithError(err).Warn("변환표준점수표 조회 실패, 빈 표로 진행")
		conv = nil
	}

	result, err := suneung.CalculateScoreWithConv(formulaData, scores, conv, nil, highest)
	if err != nil {
		// 공식 자체가 깨진 설정 오류라 4xx로 노출
		h.logger.WithError(err).WithDept(req.DeptID).Error("특수공식 평가 실패")
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// PracticalRequest asks for a practical score. Either StudentID or
// inline Practical must be present.
type PracticalRequest struct {
	DeptID    int64                           `json:"dept_id"`
	Year      int                             `json:"year_id,omitempty"`
	StudentID int64                           `json:"student_id,omitempty"`
	Practical *contracts.StudentPracticalData `json:"student_practical,omitempty"`
}

// CalculatePractical computes a practical score
// POST /api/calculate/practical
func (h *CalculateHandler) CalculatePractical(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PracticalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "요청 본문이 올바르지 않습니다")
		return
	}
	if req.DeptID == 0 {
		respondError(w, http.StatusBadRequest, "dept_id는 필수입니다")
		return
	}
	if req.Year == 0 {
		req.Year = h.config.Engine.DefaultYear
	}

	student := req.Practical
	if student == nil {
		if req.StudentID == 0 {
			respondError(w, http.StatusBadRequest, "student_id 또는 student_practical이 필요합니다")
			return
		}
		loaded, err := h.students.GetPracticals(ctx, req.StudentID)
		if err != nil {
			h.logger.WithError(err).Error("학생 실기 기록 조회 실패")
			respondError(w, http.StatusNotFound, "학생 실기 기록을 찾을 수 없습니다")
			return
		}
		student = loaded
	}

	formulaData, err := h.formulas.GetPracticalFormula(ctx, req.DeptID, req.Year)
	if err != nil {
		h.logger.WithError(err).WithDept(req.DeptID).Error("실기 계산식 조회 실패")
		respondError(w, http.StatusNotFound, "학과 실기 계산식을 찾을 수 없습니다")
		return
	}

	result := practical.CalculatePracticalScore(formulaData, student)
	respondJSON(w, http.StatusOK, result)
}

// ValidateRequest carries a formula to dry-run.
type ValidateRequest struct {
	Formula string `json:"formula"`
}

// ValidateResponse is the dry-run outcome plus the variables the
// formula references, for editor autocompletion.
type ValidateResponse struct {
	Valid     bool     `json:"valid"`
	Error     string   `json:"error,omitempty"`
	Variables []string `json:"variables,omitempty"`
}

// ValidateFormula dry-runs a special formula without storing it
// POST /api/formulas/validate
func (h *CalculateHandler) ValidateFormula(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "요청 본문이 올바르지 않습니다")
		return
	}

	res := formula.Validate(req.Formula)
	respondJSON(w, http.StatusOK, ValidateResponse{
		Valid:     res.Valid,
		Error:     res.Error,
		Variables: formula.ExtractVariables(req.Formula),
	})
}

// GetFormula returns a department's full scoring configuration
// GET /api/formulas/{deptId}?year=2026
func (h *CalculateHandler) GetFormula(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deptID, err := strconv.ParseInt(mux.Vars(r)["deptId"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "deptId가 올바르지 않습니다")
		return
	}
	year := queryInt(r, "year", h.config.Engine.DefaultYear)

	formulaData, err := h.formulas.GetFormula(ctx, deptID, year)
	if err != nil {
		h.logger.WithError(err).WithDept(deptID).Error("계산식 조회 실패")
		respondError(w, http.StatusNotFound, "학과 계산식을 찾을 수 없습니다")
		return
	}

	respondJSON(w, http.StatusOK, formulaData)
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
