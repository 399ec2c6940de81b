package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/paca/jungsi/backend/internal/contracts"
	"github.com/paca/jungsi/backend/internal/realtime"
	"github.com/paca/jungsi/backend/pkg/logger"
)

// ChangeLogHandler records configuration edits and serves the audit
// trail, pushing each new entry to WebSocket subscribers.
type ChangeLogHandler struct {
	repo   contracts.ChangeLogRepository
	hub    *realtime.Hub
	logger *logger.Logger
}

// NewChangeLogHandler creates a new change log handler
func NewChangeLogHandler(repo contracts.ChangeLogRepository, hub *realtime.Hub, log *logger.Logger) *ChangeLogHandler {
	return &ChangeLogHandler{
		repo:   repo,
		hub:    hub,
		logger: log,
	}
}

// List returns recent configuration edits
// GET /api/change-logs?dept_id=12&limit=50
func (h *ChangeLogHandler) List(w http.ResponseWriter, r *http.Request) {
	deptID := int64(queryInt(r, "dept_id", 0))
	limit := queryInt(r, "limit", 0)

	logs, err := h.repo.List(r.Context(), deptID, limit)
	if err != nil {
		h.logger.WithError(err).Error("변경 이력 조회 실패")
		respondError(w, http.StatusInternalServerError, "변경 이력을 불러오지 못했습니다")
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

// Append records one configuration edit and broadcasts it
// POST /api/change-logs
func (h *ChangeLogHandler) Append(w http.ResponseWriter, r *http.Request) {
	var entry contracts.ChangeLog
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		respondError(w, http.StatusBadRequest, "요청 본문이 올바르지 않습니다")
		return
	}
	if entry.DeptID == 0 || entry.Table == "" || entry.Field == "" {
		respondError(w, http.StatusBadRequest, "dept_id, table_name, field_name은 필수입니다")
		return
	}

	if err := h.repo.Append(r.Context(), &entry); err != nil {
		h.logger.WithError(err).WithDept(entry.DeptID).Error("변경 이력 기록 실패")
		respondError(w, http.StatusInternalServerError, "변경 이력을 기록하지 못했습니다")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(&entry)
	}

	respondJSON(w, http.StatusCreated, entry)
}

// Subscribe upgrades to a WebSocket feed of configuration edits
// GET /ws/change-logs
func (h *ChangeLogHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "실시간 구독이 비활성화되어 있습니다")
		return
	}
	h.hub.ServeWS(w, r)
}
