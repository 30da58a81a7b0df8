package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/planforge/planforge-backend/internal/domain/plan"
	"github.com/planforge/planforge-backend/internal/platform/logger"
	"github.com/planforge/planforge-backend/internal/scheduler/conflict"
	"github.com/planforge/planforge-backend/internal/scheduler/engine"
	"github.com/planforge/planforge-backend/internal/services"
)

type RescheduleHandler struct {
	log        *logger.Logger
	previewSvc services.PreviewService
	commitSvc  services.CommitService
}

func NewRescheduleHandler(log *logger.Logger, previewSvc services.PreviewService, commitSvc services.CommitService) *RescheduleHandler {
	return &RescheduleHandler{
		log:        log.With("handler", "RescheduleHandler"),
		previewSvc: previewSvc,
		commitSvc:  commitSvc,
	}
}

type rescheduleBody struct {
	GroupID       uuid.UUID               `json:"group_id"`
	Adjustments   []types.AdjustmentInput `json:"adjustments"`
	RescheduleWin engine.DateWindow       `json:"reschedule_window"`
	PlacementWin  engine.DateWindow       `json:"placement_window"`
	IncludeToday  bool                    `json:"include_today"`
	Reason        string                  `json:"reason"`
}

func (b rescheduleBody) toRequest() services.PreviewRequest {
	return services.PreviewRequest{
		GroupID:       b.GroupID,
		Adjustments:   b.Adjustments,
		RescheduleWin: b.RescheduleWin,
		PlacementWin:  b.PlacementWin,
		IncludeToday:  b.IncludeToday,
	}
}

// POST /api/reschedule/preview
// Compute the hypothetical plan set and its conflicts. Nothing is persisted.
func (h *RescheduleHandler) Preview(c *gin.Context) {
	var body rescheduleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("invalid request body"))
		return
	}
	result, conflicts, err := h.previewSvc.Preview(c.Request.Context(), body.toRequest())
	if err != nil {
		h.log.Warn("preview failed", "group_id", body.GroupID, "error", err)
		respondServiceError(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []conflict.Conflict{}
	}
	RespondOK(c, gin.H{"preview": result, "conflicts": conflicts})
}

// POST /api/reschedule/commit
// Apply the adjustments atomically and open a rollback window.
func (h *RescheduleHandler) Commit(c *gin.Context) {
	var body rescheduleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("invalid request body"))
		return
	}
	result, err := h.commitSvc.Commit(c.Request.Context(), body.toRequest(), body.Reason)
	if err != nil {
		h.log.Warn("commit failed", "group_id", body.GroupID, "error", err)
		respondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// POST /api/reschedule/:logID/rollback
// Restore the schedule as it was before the given commit.
func (h *RescheduleHandler) Rollback(c *gin.Context) {
	logID, err := uuid.Parse(c.Param("logID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_log_id", errors.New("invalid log id"))
		return
	}
	result, err := h.commitSvc.Rollback(c.Request.Context(), logID)
	if err != nil {
		h.log.Warn("rollback failed", "log_id", logID, "error", err)
		respondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
